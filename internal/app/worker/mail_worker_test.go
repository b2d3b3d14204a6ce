package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ems_backend/internal/platform/config"
	"ems_backend/internal/platform/mailer"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func setupWorker(t *testing.T, sender *fakeSender) (*MailWorker, *redis.Client) {
	t.Helper()
	config.AppConfig = &config.Config{
		MailQueueName:           "mail_outbox_queue",
		MailSendTimeout:         time.Second,
		MailMaxDeliveryAttempts: 2,
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewMailWorker(rdb, sender), rdb
}

func payload(t *testing.T, msg *mailer.Message) string {
	t.Helper()
	data, err := msg.Marshal()
	require.NoError(t, err)
	return string(data)
}

func queueLen(t *testing.T, rdb *redis.Client) int64 {
	t.Helper()
	n, err := rdb.LLen(context.Background(), config.AppConfig.MailQueueName).Result()
	require.NoError(t, err)
	return n
}

func TestProcess_Delivers(t *testing.T) {
	sender := &fakeSender{}
	w, rdb := setupWorker(t, sender)

	w.process(context.Background(), payload(t, &mailer.Message{
		To: "bob@station.gov", Subject: "Account Registration Status", HTMLBody: "<p>ok</p>",
	}))

	require.Equal(t, 1, sender.sentCount())
	assert.Equal(t, "bob@station.gov", sender.sent[0].To)
	assert.Zero(t, queueLen(t, rdb))
}

func TestProcess_RequeuesOnFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	w, rdb := setupWorker(t, sender)

	w.process(context.Background(), payload(t, &mailer.Message{To: "bob@station.gov"}))

	// One failed attempt, one retry left on the queue.
	require.EqualValues(t, 1, queueLen(t, rdb))
	raw, err := rdb.LRange(context.Background(), config.AppConfig.MailQueueName, 0, -1).Result()
	require.NoError(t, err)
	msg, err := mailer.UnmarshalMessage([]byte(raw[0]))
	require.NoError(t, err)
	assert.Equal(t, 1, msg.Attempts)
}

func TestProcess_GivesUpAfterMaxAttempts(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp down")}
	w, rdb := setupWorker(t, sender)

	w.process(context.Background(), payload(t, &mailer.Message{To: "bob@station.gov", Attempts: 1}))

	// Attempt count reached the cap; the message is dropped, not requeued.
	assert.Zero(t, queueLen(t, rdb))
}

func TestProcess_DropsUndecodablePayload(t *testing.T) {
	sender := &fakeSender{}
	w, rdb := setupWorker(t, sender)

	w.process(context.Background(), "{not json")

	assert.Zero(t, sender.sentCount())
	assert.Zero(t, queueLen(t, rdb))
}

func TestStart_DrainsQueue(t *testing.T) {
	sender := &fakeSender{}
	w, rdb := setupWorker(t, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	err := rdb.LPush(ctx, config.AppConfig.MailQueueName,
		payload(t, &mailer.Message{To: "bob@station.gov"})).Err()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return sender.sentCount() == 1
	}, 3*time.Second, 10*time.Millisecond)
}
