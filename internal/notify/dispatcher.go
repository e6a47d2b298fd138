// Package notify delivers order notifications off the request path.
package notify

import (
	"context"
	"github.com/rs/zerolog"
	"os"
	"storefront-service/internal/entity"
	"sync"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Kind string

const (
	KindOrderConfirmation Kind = "order_confirmation"
	KindAdminNewOrder     Kind = "admin_new_order"
)

// Message is one rendered email.
type Message struct {
	Kind    Kind     `json:"kind"`
	OrderID string   `json:"orderId"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender delivers a message to its transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	Workers     int
	QueueSize   int
	SendTimeout time.Duration
	AdminEmail  string
	StoreName   string
	OrderURL    string
}

// Dispatcher queues messages on a bounded channel and sends them from a
// fixed pool of workers. Enqueueing never blocks: a full queue drops the
// message and logs it.
type Dispatcher struct {
	sender Sender
	cfg    Config
	queue  chan Message

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		sender: sender,
		cfg:    cfg,
		queue:  make(chan Message, cfg.QueueSize),
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Msgf("Panic sending %s notification for order %s: %v", msg.Kind, msg.OrderID, p)
		}
	}()

	if err := d.sender.Send(ctx, msg); err != nil {
		logger.Error().Err(err).Msgf("Error sending %s notification for order %s", msg.Kind, msg.OrderID)
		return
	}
	logger.Info().Msgf("Sent %s notification for order %s", msg.Kind, msg.OrderID)
}

// Enqueue reports whether the message was accepted.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		logger.Warn().Msgf("Dispatcher closed, dropping %s notification for order %s", msg.Kind, msg.OrderID)
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		logger.Warn().Msgf("Notification queue full, dropping %s notification for order %s", msg.Kind, msg.OrderID)
		return false
	}
}

// OrderPlaced queues the customer confirmation and the admin notification
// for a committed order.
func (d *Dispatcher) OrderPlaced(order *entity.Order) {
	confirmation, err := BuildOrderConfirmation(order, d.cfg.StoreName, d.cfg.OrderURL)
	if err != nil {
		logger.Error().Err(err).Msgf("Error rendering confirmation for order %s", order.OrderID)
	} else {
		d.Enqueue(confirmation)
	}

	if d.cfg.AdminEmail == "" {
		logger.Warn().Msgf("Admin email not configured, skipping admin notification for order %s", order.OrderID)
		return
	}
	adminMsg, err := BuildAdminNotification(order, d.cfg.AdminEmail, d.cfg.StoreName)
	if err != nil {
		logger.Error().Err(err).Msgf("Error rendering admin notification for order %s", order.OrderID)
		return
	}
	d.Enqueue(adminMsg)
}

// Close stops accepting messages and waits for queued ones to be sent, or
// for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogSender only logs messages. Used when no mail transport is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msgf("Notification %s for order %s", msg.Kind, msg.OrderID)
	return nil
}
