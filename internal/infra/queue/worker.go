package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/infra/mail"
)

// LeadMailer sends the emails for one new lead. *mail.EmailSender satisfies it.
type LeadMailer interface {
	SendLeadEmails(data mail.LeadEmailData) error
}

type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel Consumer
	Mailer  LeadMailer
	logger  zerolog.Logger
}

func NewWorker(ch Consumer, mailer LeadMailer, logger zerolog.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Mailer:  mailer,
		logger:  logger.With().Str("component", "lead-worker").Logger(),
	}
}

// Start consumes QueueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.Channel.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.logger.Info().Str("queue", QueueName).Msg("worker waiting for messages")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("delivery channel closed")
				return nil
			}
			if err := w.handle(d.Body); err != nil {
				w.logger.Error().Err(err).Str("message_id", d.MessageId).Msg("rejecting message")
				// no requeue: the queue dead-letters into the DLQ
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) handle(body []byte) error {
	var payload LeadCreatedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if payload.Email == "" {
		return fmt.Errorf("lead %s has no email", payload.LeadID)
	}

	err := w.Mailer.SendLeadEmails(mail.LeadEmailData{
		Name:      payload.Name,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Company:   payload.Company,
		Service:   payload.Service,
		Message:   payload.Message,
		IPAddress: payload.IPAddress,
	})
	if err != nil {
		return fmt.Errorf("send lead %s emails: %w", payload.LeadID, err)
	}

	w.logger.Info().Str("lead_id", payload.LeadID).Msg("lead notification sent")
	return nil
}
