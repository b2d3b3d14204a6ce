package model

import (
	"ems_backend/internal/common"
	"time"
)

// Role is a closed set. Signup payloads are parsed through ParseRole so an
// unrecognized role string is rejected instead of silently skipping the
// approval gate.
type Role string

const (
	RoleAdmin                Role = "admin"
	RoleInvestigationOfficer Role = "investigation-officer"
	RoleForensicExpert       Role = "forensic-expert"
	RoleUser                 Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleInvestigationOfficer, RoleForensicExpert, RoleUser:
		return Role(s), nil
	}
	return "", common.Errorf("unknown role %q: %w", s, common.ErrValidation)
}

// Status is the approval state. Admin accounts are created approved, everyone
// else starts pending and is moved to approved or rejected exactly once by a
// station admin; both outcomes are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", common.Errorf("unknown status %q: %w", s, common.ErrValidation)
}

type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"` // Not exposed
	Role           Role   `json:"role"`
	PoliceStation  string `json:"policeStation"`
	// StationCode is the slugged form of PoliceStation, used for the
	// one-admin-per-station uniqueness check so "Central Station" and
	// "central station" group together.
	StationCode string    `json:"-"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
