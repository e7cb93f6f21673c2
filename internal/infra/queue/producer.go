package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/naass/lead-api/internal/entity"
)

// LeadCreatedPayload carries what the notification worker needs to email
// about a new lead, so the worker never reads the database.
type LeadCreatedPayload struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Service   string    `json:"service"`
	Message   string    `json:"message,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLeadCreatedPayload(lead *entity.Lead) LeadCreatedPayload {
	return LeadCreatedPayload{
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Company:   lead.Company,
		Service:   lead.Service,
		Message:   lead.Message,
		IPAddress: lead.IPAddress,
		CreatedAt: lead.CreatedAt,
	}
}

type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// NotifyLeadCreated queues the notification instead of sending it inline.
func (p *RabbitMQProducer) NotifyLeadCreated(ctx context.Context, lead *entity.Lead) error {
	return p.PublishLeadCreated(ctx, NewLeadCreatedPayload(lead))
}

func (p *RabbitMQProducer) PublishLeadCreated(ctx context.Context, payload LeadCreatedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.LeadID,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead %s: %w", payload.LeadID, err)
	}
	return nil
}
