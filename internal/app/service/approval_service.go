package service

import (
	"context"
	"log"

	"ems_backend/internal/domain/model"
	"ems_backend/internal/domain/repository"
)

type ApprovalService struct {
	userRepo repository.UserRepository
	notifier *NotificationService
}

func NewApprovalService(userRepo repository.UserRepository, notifier *NotificationService) *ApprovalService {
	return &ApprovalService{userRepo: userRepo, notifier: notifier}
}

// Approve moves the user to approved and queues a notice to them. Approving
// an already-terminal user re-asserts the status without error. The status
// change is final whether or not the notice can be delivered.
func (s *ApprovalService) Approve(ctx context.Context, userID string) (*model.User, error) {
	return s.transition(ctx, userID, model.StatusApproved)
}

// Reject is symmetric to Approve.
func (s *ApprovalService) Reject(ctx context.Context, userID string) (*model.User, error) {
	return s.transition(ctx, userID, model.StatusRejected)
}

func (s *ApprovalService) transition(ctx context.Context, userID string, status model.Status) (*model.User, error) {
	user, err := s.userRepo.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, err
	}
	if err := s.notifier.NotifyStatusChange(ctx, user); err != nil {
		log.Printf("Failed to queue %s notification for %s: %v", status, user.Email, err)
	}
	return user, nil
}

func (s *ApprovalService) ListPending(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.ListByStatus(ctx, model.StatusPending)
}
