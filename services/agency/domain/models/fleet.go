package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/emssupply/services/agency/domain"
)

// Station is a fixed location that stocks supplies and houses units.
type Station struct {
	ID        uuid.UUID
	AgencyID  uuid.UUID
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// UnitCount is the number of active units assigned, filled on listing.
	UnitCount int
}

// StationPatch is a partial station update. Nil fields are unchanged.
type StationPatch struct {
	Name    *string
	Address *string
	City    *string
	State   *string
	Zip     *string
	Active  *bool
}

func (p StationPatch) Apply(s *Station) error {
	setString(&s.Name, p.Name)
	setString(&s.Address, p.Address)
	setString(&s.City, p.City)
	setString(&s.State, p.State)
	setString(&s.Zip, p.Zip)
	if p.Active != nil {
		s.Active = *p.Active
	}
	if s.Name == "" {
		return fmt.Errorf("%w: station name is required", domain.ErrInvalidInput)
	}
	return nil
}

// UnitType is the service level of a vehicle.
type UnitType string

const (
	UnitALS        UnitType = "als"
	UnitBLS        UnitType = "bls"
	UnitSupervisor UnitType = "supervisor"
	UnitFlyCar     UnitType = "fly_car"
	UnitOther      UnitType = "other"
)

func (t UnitType) Valid() bool {
	switch t {
	case UnitALS, UnitBLS, UnitSupervisor, UnitFlyCar, UnitOther:
		return true
	default:
		return false
	}
}

// Unit is a vehicle that carries supplies. It may be assigned to a station.
type Unit struct {
	ID        uuid.UUID
	AgencyID  uuid.UUID
	StationID *uuid.UUID
	Name      string
	Type      UnitType
	VehicleID string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time

	StationName string
}

// UnitPatch is a partial unit update. Nil fields are unchanged; a StationID
// pointing at uuid.Nil unassigns the unit.
type UnitPatch struct {
	Name      *string
	Type      *UnitType
	StationID *uuid.UUID
	VehicleID *string
	Active    *bool
}

func (p UnitPatch) Apply(u *Unit) error {
	setString(&u.Name, p.Name)
	setString(&u.VehicleID, p.VehicleID)
	if p.Type != nil {
		u.Type = *p.Type
	}
	if p.StationID != nil {
		if *p.StationID == uuid.Nil {
			u.StationID = nil
		} else {
			id := *p.StationID
			u.StationID = &id
		}
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
	return u.Validate()
}

func (u *Unit) Validate() error {
	if u.Name == "" {
		return fmt.Errorf("%w: unit name is required", domain.ErrInvalidInput)
	}
	if !u.Type.Valid() {
		return fmt.Errorf("%w: unknown unit type %q", domain.ErrInvalidInput, u.Type)
	}
	return nil
}
