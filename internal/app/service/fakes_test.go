package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ems_backend/internal/common"
	"ems_backend/internal/common/security"
	"ems_backend/internal/domain/model"
	"ems_backend/internal/platform/config"
	"ems_backend/internal/platform/mailer"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// --- test wiring helpers ---

func setupConfig(t *testing.T) {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:                  []byte("test-secret"),
		JWTExp:                  time.Hour,
		MailQueueName:           "mail_outbox_queue",
		MailSendTimeout:         time.Second,
		MailMaxDeliveryAttempts: 2,
		SMTPUser:                "operator@ems.gov",
		SMTPFrom:                "noreply@ems.gov",
		FrontendURL:             "http://localhost:3000",
	}
	security.InitJWT()
}

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func queuedMessages(t *testing.T, rdb *redis.Client) []*mailer.Message {
	t.Helper()
	payloads, err := rdb.LRange(context.Background(), config.AppConfig.MailQueueName, 0, -1).Result()
	if err != nil {
		t.Fatalf("LRange error: %v", err)
	}
	msgs := make([]*mailer.Message, 0, len(payloads))
	for _, p := range payloads {
		msg, err := mailer.UnmarshalMessage([]byte(p))
		if err != nil {
			t.Fatalf("UnmarshalMessage error: %v", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// --- fakes ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.Role == model.RoleAdmin {
		for _, u := range f.users {
			if u.Role == model.RoleAdmin && u.StationCode == user.StationCode {
				return common.ErrAdminExists
			}
		}
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindStationAdmin(ctx context.Context, stationCode string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Role == model.RoleAdmin && u.StationCode == stationCode {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) ListByStatus(ctx context.Context, status model.Status) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []*model.User{}
	for _, u := range f.users {
		if u.Status == status {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Status = status
	cp := *u
	return &cp, nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []*mailer.Message
	err  error
}

func (f *fakeSender) Send(ctx context.Context, msg *mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *msg
	f.sent = append(f.sent, &cp)
	return nil
}

func (f *fakeSender) sentMessages() []*mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*mailer.Message{}, f.sent...)
}
