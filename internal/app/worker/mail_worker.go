package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"ems_backend/internal/platform/config"
	"ems_backend/internal/platform/mailer"

	"github.com/redis/go-redis/v9"
)

// MailWorker drains the outbox queue and delivers emails with a bounded
// per-send timeout. Requests enqueue and move on; this loop is the only place
// a slow SMTP provider can spend time.
type MailWorker struct {
	rdb    *redis.Client
	sender mailer.Sender
}

func NewMailWorker(rdb *redis.Client, sender mailer.Sender) *MailWorker {
	return &MailWorker{rdb: rdb, sender: sender}
}

func (w *MailWorker) Start(ctx context.Context) {
	log.Println("Mail worker started, listening to queue:", config.AppConfig.MailQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Mail worker stopping...")
			return
		default:
			result, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.MailQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from queue '%s': %v", config.AppConfig.MailQueueName, err)
				time.Sleep(5 * time.Second)
				continue
			}
			// result[0] is the queue name, result[1] the payload
			if len(result) < 2 {
				continue
			}
			w.process(ctx, result[1])
		}
	}
}

func (w *MailWorker) process(ctx context.Context, payload string) {
	msg, err := mailer.UnmarshalMessage([]byte(payload))
	if err != nil {
		log.Printf("ERROR: Dropping undecodable mail message: %v", err)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, config.AppConfig.MailSendTimeout)
	defer cancel()
	err = w.sender.Send(sendCtx, msg)
	if err == nil {
		log.Printf("Notification sent to %s", msg.To)
		return
	}
	log.Printf("ERROR: Failed to send notification to %s: %v", msg.To, err)

	msg.Attempts++
	if msg.Attempts >= config.AppConfig.MailMaxDeliveryAttempts {
		log.Printf("Giving up on notification to %s after %d attempts", msg.To, msg.Attempts)
		return
	}
	data, err := msg.Marshal()
	if err != nil {
		log.Printf("ERROR: Failed to re-marshal mail message: %v", err)
		return
	}
	if err := w.rdb.LPush(ctx, config.AppConfig.MailQueueName, data).Err(); err != nil {
		log.Printf("ERROR: Failed to requeue notification to %s: %v", msg.To, err)
	}
}
