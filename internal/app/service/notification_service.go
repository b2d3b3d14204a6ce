package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ems_backend/internal/common"
	"ems_backend/internal/common/security"
	"ems_backend/internal/domain/model"
	"ems_backend/internal/domain/repository"
	"ems_backend/internal/platform/config"
	"ems_backend/internal/platform/mailer"

	"github.com/redis/go-redis/v9"
)

// NotificationService builds the workflow emails and hands them to the SMTP
// sender or the redis outbox queue. It makes no approval decisions itself.
type NotificationService struct {
	userRepo repository.UserRepository
	sender   mailer.Sender
	rdb      *redis.Client
}

func NewNotificationService(userRepo repository.UserRepository, sender mailer.Sender, rdb *redis.Client) *NotificationService {
	return &NotificationService{userRepo: userRepo, sender: sender, rdb: rdb}
}

// NotifyAdminOfSignup mails the station admin a review link for a freshly
// created pending user. Structural failures (no user id, token minting) are
// returned and fail the signup; a transport failure falls back to the outbox
// queue so the signup can still succeed, and only a failure of both paths is
// reported as an error.
func (s *NotificationService) NotifyAdminOfSignup(ctx context.Context, user *model.User) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("invalid user data for approval notification: %w", common.ErrValidation)
	}

	approvalToken, err := security.GenerateApprovalToken(user.ID)
	if err != nil {
		return fmt.Errorf("failed to generate approval token: %w", err)
	}
	approvalLink := config.AppConfig.FrontendURL + "/approve-user/" + approvalToken

	adminEmail := s.resolveAdminEmail(ctx, user.StationCode)

	roleCapitalized := capitalize(string(user.Role))
	msg := &mailer.Message{
		To:      adminEmail,
		Subject: roleCapitalized + " Registration Approval Required",
		HTMLBody: fmt.Sprintf(`<h3>%s Registration Request</h3>
<p>A new %s has registered and requires your approval:</p>
<ul>
  <li>Name: %s</li>
  <li>Email: %s</li>
  <li>Role: %s</li>
  <li>Police Station: %s</li>
</ul>
<p>Click the link below to approve or reject this registration:</p>
<a href="%s">Review Registration</a>`,
			roleCapitalized, user.Role, user.Name, user.Email, user.Role, user.PoliceStation, approvalLink),
	}

	sendCtx, cancel := context.WithTimeout(ctx, config.AppConfig.MailSendTimeout)
	defer cancel()
	if err := s.sender.Send(sendCtx, msg); err != nil {
		log.Printf("Approval email send failed, queueing for retry: %v", err)
		msg.Attempts = 1
		if qErr := s.enqueue(ctx, msg); qErr != nil {
			return fmt.Errorf("%w: %v", common.ErrNotification, qErr)
		}
	}
	return nil
}

// NotifyStatusChange queues the approved/rejected notice addressed to the
// user. Delivery is best-effort; the status transition has already committed.
func (s *NotificationService) NotifyStatusChange(ctx context.Context, user *model.User) error {
	var body string
	switch user.Status {
	case model.StatusApproved:
		body = `<h3>Account Approved</h3>
<p>Your account has been approved. You can now login to the Evidence Management System.</p>`
	case model.StatusRejected:
		body = `<h3>Account Registration Update</h3>
<p>We regret to inform you that your account registration has been rejected.</p>`
	default:
		return fmt.Errorf("no notification defined for status %q", user.Status)
	}

	msg := &mailer.Message{
		To:       user.Email,
		Subject:  "Account Registration Status",
		HTMLBody: body,
	}
	return s.enqueue(ctx, msg)
}

func (s *NotificationService) enqueue(ctx context.Context, msg *mailer.Message) error {
	payload, err := msg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal mail message: %w", err)
	}
	if err := s.rdb.LPush(ctx, config.AppConfig.MailQueueName, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue mail message: %w", err)
	}
	return nil
}

// resolveAdminEmail returns the station admin's address, degrading to the
// configured operator mailbox when the station has no admin on record or the
// record carries no email.
func (s *NotificationService) resolveAdminEmail(ctx context.Context, stationCode string) string {
	admin, err := s.userRepo.FindStationAdmin(ctx, stationCode)
	if err != nil || admin.Email == "" {
		log.Printf("No admin email for station %q, falling back to operator mailbox", stationCode)
		return config.AppConfig.SMTPUser
	}
	return admin.Email
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
