// internal/infrastructure/messaging/rabbitmq/publisher.go
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/Akshat090803/ecommerce-final-project/internal/domain/order"
)

const (
	OrderPlacedEvent = "OrderPlaced"
	producerName     = "storefront-api"
	publishTimeout   = 3 * time.Second
)

// Channel is the subset of *amqp.Channel the publisher needs
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Envelope wraps every published event
type Envelope[T any] struct {
	EventName    string    `json:"eventName"`
	EventVersion int       `json:"eventVersion"`
	EventID      string    `json:"eventId"`
	Producer     string    `json:"producer"`
	PartitionKey string    `json:"partitionKey"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      T         `json:"payload"`
}

// OrderPlaced is the payload of the order placed event
type OrderPlaced struct {
	OrderID     string            `json:"orderId"`
	OwnerID     string            `json:"ownerId"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	PaymentRef  string            `json:"paymentRef"`
	Status      string            `json:"status"`
	Lines       []OrderPlacedLine `json:"lines"`
}

type OrderPlacedLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Publisher sends order events to a durable queue on the default exchange
type Publisher struct {
	mu    sync.Mutex
	ch    Channel
	queue string
	now   func() time.Time
}

// Dial connects to the broker
func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

// NewPublisher opens a channel on conn and declares the queue
func NewPublisher(conn *amqp.Connection, queue string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return newPublisherWithChannel(ch, queue)
}

func newPublisherWithChannel(ch Channel, queue string) (*Publisher, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", queue, err)
	}
	return &Publisher{
		ch:    ch,
		queue: queue,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close closes the channel
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// OrderPlaced publishes a committed order
func (p *Publisher) OrderPlaced(ctx context.Context, o order.Order) error {
	ev := Envelope[OrderPlaced]{
		EventName:    OrderPlacedEvent,
		EventVersion: 1,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: o.OwnerID,
		OccurredAt:   p.now(),
		Payload: OrderPlaced{
			OrderID:     o.ID,
			OwnerID:     o.OwnerID,
			TotalAmount: o.TotalAmount,
			PaymentRef:  o.PaymentRef,
			Status:      string(o.Status),
			Lines:       make([]OrderPlacedLine, len(o.Lines)),
		},
	}
	for i, l := range o.Lines {
		ev.Payload.Lines[i] = OrderPlacedLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", OrderPlacedEvent, err)
	}

	return p.publishJSON(ctx, ev.EventID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, messageID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.PublishWithContext(
		pubCtx,
		"",      // default exchange
		p.queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    messageID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	return nil
}
