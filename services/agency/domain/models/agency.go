package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/agency/domain"
)

// DefaultAlertExpiringDays applies when an agency has not configured thresholds.
var DefaultAlertExpiringDays = []int{30, 60, 90}

// Settings is the agency's JSON settings blob.
type Settings struct {
	AlertExpiringDays []int `json:"alert_expiring_days"`
}

// WithDefaults fills unset values.
func (s Settings) WithDefaults() Settings {
	if len(s.AlertExpiringDays) == 0 {
		s.AlertExpiringDays = slices.Clone(DefaultAlertExpiringDays)
	}
	return s
}

// Validate rejects non-positive thresholds. Thresholds are stored sorted.
func (s *Settings) Validate() error {
	for _, d := range s.AlertExpiringDays {
		if d <= 0 {
			return fmt.Errorf("%w: alert_expiring_days must be positive, got %d", domain.ErrInvalidInput, d)
		}
	}
	slices.Sort(s.AlertExpiringDays)
	s.AlertExpiringDays = slices.Compact(s.AlertExpiringDays)
	return nil
}

// Agency is a tenant. Every other record belongs to exactly one agency.
type Agency struct {
	ID        uuid.UUID
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Phone     string
	Email     string
	Settings  Settings
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgencyPatch is a partial update of the agency profile. Nil fields are unchanged.
type AgencyPatch struct {
	Name     *string
	Address  *string
	City     *string
	State    *string
	Zip      *string
	Phone    *string
	Email    *string
	Settings *Settings
}

func (p AgencyPatch) Apply(a *Agency) error {
	setString(&a.Name, p.Name)
	setString(&a.Address, p.Address)
	setString(&a.City, p.City)
	setString(&a.State, p.State)
	setString(&a.Zip, p.Zip)
	setString(&a.Phone, p.Phone)
	setString(&a.Email, p.Email)
	if p.Settings != nil {
		s := *p.Settings
		if err := s.Validate(); err != nil {
			return err
		}
		a.Settings = s
	}
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
