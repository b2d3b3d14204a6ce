package service

import (
	"context"
	"errors"
	"fmt"

	"ems_backend/internal/common"
	"ems_backend/internal/common/security"
	"ems_backend/internal/domain/model"
	"ems_backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type RegistrationService struct {
	userRepo repository.UserRepository
	notifier *NotificationService
}

func NewRegistrationService(userRepo repository.UserRepository, notifier *NotificationService) *RegistrationService {
	return &RegistrationService{userRepo: userRepo, notifier: notifier}
}

type SignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	PoliceStation string `json:"policeStation"`
	Role          string `json:"role"`
}

// RegisterAdmin bootstraps the single admin account for a police station.
// The account is created already approved; the admin still logs in separately.
func (s *RegistrationService) RegisterAdmin(ctx context.Context, req SignupRequest) (string, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.PoliceStation == "" {
		return "", common.ErrBadRequest
	}

	stationCode := slug.Make(req.PoliceStation)

	_, err := s.userRepo.FindStationAdmin(ctx, stationCode)
	if err == nil {
		return "", common.ErrAdminExists
	}
	if !errors.Is(err, common.ErrNotFound) {
		return "", fmt.Errorf("failed to check for existing admin: %w", err)
	}

	user, err := s.newUser(req, model.RoleAdmin, stationCode, model.StatusApproved)
	if err != nil {
		return "", err
	}
	// The partial unique index backs this up if two admin signups race past
	// the existence check above.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}
	return "Admin registered successfully", nil
}

// RegisterOfficer creates a pending officer or forensic expert account, gated
// on the station already having an admin, and notifies that admin.
func (s *RegistrationService) RegisterOfficer(ctx context.Context, req SignupRequest) (string, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.PoliceStation == "" {
		return "", common.ErrBadRequest
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return "", err
	}
	if role == model.RoleAdmin {
		return "", fmt.Errorf("admin accounts must use the admin signup: %w", common.ErrValidation)
	}

	stationCode := slug.Make(req.PoliceStation)

	if _, err := s.userRepo.FindStationAdmin(ctx, stationCode); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNoStationAdmin
		}
		return "", fmt.Errorf("failed to look up station admin: %w", err)
	}

	user, err := s.newUser(req, role, stationCode, model.StatusPending)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", err
	}

	if err := s.notifier.NotifyAdminOfSignup(ctx, user); err != nil {
		// The pending record is already persisted and is never deleted by
		// this workflow; the caller learns the admin was not reached.
		return "", err
	}
	return "Registration successful. Waiting for admin approval", nil
}

func (s *RegistrationService) newUser(req SignupRequest, role model.Role, stationCode string, status model.Status) (*model.User, error) {
	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
		PoliceStation:  req.PoliceStation,
		StationCode:    stationCode,
		Status:         status,
	}, nil
}
