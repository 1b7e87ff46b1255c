package handlers

import (
	"net/http"

	"github.com/ghuser/emssupply/pkg/auth"
	"github.com/ghuser/emssupply/pkg/errhttp"
	"github.com/ghuser/emssupply/pkg/httpx"
	"github.com/ghuser/emssupply/pkg/logger"
	pkgvalidator "github.com/ghuser/emssupply/pkg/validator"
	appsvcs "github.com/ghuser/emssupply/services/identity/application/services"
	"github.com/ghuser/emssupply/services/identity/domain/models"
)

// UpdateMeRequest is the request body for PUT /users/me.
type UpdateMeRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone"      validate:"omitempty,max=20"`
	Password  *string `json:"password"   validate:"omitempty,min=8"`
} // @name UpdateMeRequest

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255" example:"medic@county-ems.org"`
	Password  string `json:"password"   validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Role      string `json:"role"       validate:"required,role" example:"medic"`
	Phone     string `json:"phone"      validate:"max=20"`
} // @name CreateUserRequest

// UpdateUserRequest is the request body for PUT /users/{id}.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name"  validate:"omitempty,min=1,max=100"`
	Role      *string `json:"role"       validate:"omitempty,role"`
	Phone     *string `json:"phone"      validate:"omitempty,max=20"`
	Active    *bool   `json:"active"`
	Password  *string `json:"password"   validate:"omitempty,min=8"`
} // @name UpdateUserRequest

// UserHandler serves /users.
type UserHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewUserHandler(svc *appsvcs.Services, log logger.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// Me returns the caller's profile.
//
//	@Summary	Current user
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UserEnvelope
//	@Router		/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	u, err := h.svc.Users.Me(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: userResponse(u)})
}

// UpdateMe edits the caller's name, phone or password.
//
//	@Summary	Update current user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		UpdateMeRequest	true	"Fields to change"
//	@Success	200		{object}	UserEnvelope
//	@Failure	400		{object}	ErrorResponse
//	@Router		/users/me [put]
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateMeRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Users.UpdateMe(r.Context(), p, models.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Password:  req.Password,
	})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: userResponse(u)})
}

// List returns every user of the agency.
//
//	@Summary	List users
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	UsersResponse
//	@Failure	403	{object}	ErrorResponse
//	@Router		/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	users, err := h.svc.Users.List(r.Context(), p)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i])
	}
	httpx.JSON(w, http.StatusOK, UsersResponse{Users: out})
}

// Get returns one user of the agency.
//
//	@Summary	Get user
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	UserEnvelope
//	@Failure	404	{object}	ErrorResponse
//	@Router		/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	u, err := h.svc.Users.Get(r.Context(), p, id)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: userResponse(u)})
}

// Create adds a user to the agency.
//
//	@Summary	Create user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		CreateUserRequest	true	"New user"
//	@Success	201		{object}	UserEnvelope
//	@Failure	409		{object}	ErrorResponse
//	@Router		/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[CreateUserRequest](w, r)
	if !ok {
		return
	}
	u, err := h.svc.Users.Create(r.Context(), p, appsvcs.NewUser{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      auth.Role(req.Role),
		Phone:     req.Phone,
	})
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, UserEnvelope{User: userResponse(u)})
}

// Update edits any user of the agency.
//
//	@Summary	Update user
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string				true	"User ID"
//	@Param		body	body		UpdateUserRequest	true	"Fields to change"
//	@Success	200		{object}	UserEnvelope
//	@Failure	404		{object}	ErrorResponse
//	@Router		/users/{id} [put]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateUserRequest](w, r)
	if !ok {
		return
	}
	patch := models.Patch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Active:    req.Active,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		patch.Role = &role
	}
	u, err := h.svc.Users.Update(r.Context(), p, id, patch)
	if err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UserEnvelope{User: userResponse(u)})
}

// Deactivate disables a user account.
//
//	@Summary	Deactivate user
//	@Tags		users
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	MessageResponse
//	@Failure	400	{object}	ErrorResponse
//	@Router		/users/{id} [delete]
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := httpx.UUIDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Users.Deactivate(r.Context(), p, id); err != nil {
		errhttp.WriteError(r.Context(), w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "User deactivated successfully"})
}
