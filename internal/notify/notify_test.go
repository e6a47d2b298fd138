package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/entity"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
	gate chan struct{}
}

func (s *recordingSender) Send(ctx context.Context, msg Message) error {
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return s.err
}

func (s *recordingSender) sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.msgs...)
}

func sampleOrder() *entity.Order {
	return &entity.Order{
		OrderID:         "ORD-1700000000000-abc123",
		CustomerName:    "Asha <b>Rao</b>",
		CustomerEmail:   "asha@example.com",
		CustomerPhone:   "9876543210",
		ShippingAddress: "12 MG Road",
		City:            "Bengaluru",
		State:           "Karnataka",
		Pincode:         "560001",
		TotalPrice:      decimal.RequireFromString("1099.97"),
		TotalItems:      3,
		Status:          entity.StatusPending,
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Poster", ProductPrice: decimal.RequireFromString("349.99"), Quantity: 1, Subtotal: decimal.RequireFromString("349.99")},
			{ProductID: "p2", ProductName: "Mug", ProductPrice: decimal.RequireFromString("374.99"), Quantity: 2, Subtotal: decimal.RequireFromString("749.98")},
		},
	}
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, Config{Workers: 3})
	d.Start()

	for i := 0; i < 10; i++ {
		assert.True(t, d.Enqueue(Message{Kind: KindOrderConfirmation, OrderID: "ORD-1"}))
	}
	closeDispatcher(t, d)

	assert.Len(t, sender.sent(), 10)
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	sender := &recordingSender{gate: gate}
	d := NewDispatcher(sender, Config{Workers: 1, QueueSize: 1})
	d.Start()

	// The single worker blocks on the first message; the queue then holds
	// one more and the third is dropped.
	require.True(t, d.Enqueue(Message{OrderID: "1"}))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, d.Enqueue(Message{OrderID: "2"}))
	assert.False(t, d.Enqueue(Message{OrderID: "3"}))

	close(gate)
	closeDispatcher(t, d)
	assert.Len(t, sender.sent(), 2)
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, Config{})
	d.Start()
	closeDispatcher(t, d)

	assert.False(t, d.Enqueue(Message{OrderID: "late"}))
	closeDispatcher(t, d)
}

func TestDispatcherSurvivesSenderFailures(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, Config{Workers: 1})
	d.Start()

	d.Enqueue(Message{OrderID: "1"})
	d.Enqueue(Message{OrderID: "2"})
	closeDispatcher(t, d)

	assert.Len(t, sender.sent(), 2)
}

type panickingSender struct{ calls int }

func (s *panickingSender) Send(context.Context, Message) error {
	s.calls++
	panic("boom")
}

func TestDispatcherRecoversFromPanics(t *testing.T) {
	sender := &panickingSender{}
	d := NewDispatcher(sender, Config{Workers: 1})
	d.Start()

	d.Enqueue(Message{OrderID: "1"})
	d.Enqueue(Message{OrderID: "2"})
	closeDispatcher(t, d)

	assert.Equal(t, 2, sender.calls)
}

func TestOrderPlacedQueuesBothNotifications(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, Config{Workers: 1, AdminEmail: "owner@example.com", StoreName: "Poster Shop"})
	d.Start()

	d.OrderPlaced(sampleOrder())
	closeDispatcher(t, d)

	msgs := sender.sent()
	require.Len(t, msgs, 2)
	kinds := map[Kind]Message{}
	for _, m := range msgs {
		kinds[m.Kind] = m
	}

	confirmation := kinds[KindOrderConfirmation]
	assert.Equal(t, []string{"asha@example.com"}, confirmation.To)
	assert.Equal(t, "Order Confirmation - ORD-1700000000000-abc123", confirmation.Subject)

	admin := kinds[KindAdminNewOrder]
	assert.Equal(t, []string{"owner@example.com"}, admin.To)
	assert.Equal(t, "New Order Received - ORD-1700000000000-abc123", admin.Subject)
}

func TestOrderPlacedWithoutAdminEmail(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, Config{Workers: 1})
	d.Start()

	d.OrderPlaced(sampleOrder())
	closeDispatcher(t, d)

	msgs := sender.sent()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindOrderConfirmation, msgs[0].Kind)
}

func TestConfirmationTemplate(t *testing.T) {
	msg, err := BuildOrderConfirmation(sampleOrder(), "Poster Shop", "https://shop.example.com/orders/%s")
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "ORD-1700000000000-abc123")
	assert.Contains(t, msg.HTML, "₹1099.97")
	assert.Contains(t, msg.HTML, "₹749.98")
	assert.Contains(t, msg.HTML, "Bengaluru, Karnataka - 560001")
	assert.Contains(t, msg.HTML, "https://shop.example.com/orders/ORD-1700000000000-abc123")
	assert.Contains(t, msg.HTML, "Thank you for shopping with Poster Shop!")

	// Customer input is escaped.
	assert.NotContains(t, msg.HTML, "<b>Rao</b>")
	assert.Contains(t, msg.HTML, "&lt;b&gt;Rao&lt;/b&gt;")
}

func TestAdminTemplate(t *testing.T) {
	msg, err := BuildAdminNotification(sampleOrder(), "owner@example.com", "Poster Shop")
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "New Order Alert!")
	assert.Contains(t, msg.HTML, "asha@example.com")
	assert.Contains(t, msg.HTML, "9876543210")
	assert.Contains(t, msg.HTML, "Quantity: 2")
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func TestKafkaSenderPublishesMessage(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSender{writer: w}

	msg := Message{Kind: KindAdminNewOrder, OrderID: "ORD-1", To: []string{"owner@example.com"}, Subject: "New", HTML: "<p>hi</p>"}
	require.NoError(t, s.Send(context.Background(), msg))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "notification.admin_new_order.ORD-1", string(w.msgs[0].Key))

	var decoded Message
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, msg, decoded)
}

type fakeReader struct {
	msgs []kafka.Message
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func TestRelayDeliversAndSkipsGarbage(t *testing.T) {
	payload, err := json.Marshal(Message{Kind: KindOrderConfirmation, OrderID: "ORD-2", To: []string{"a@b.co"}})
	require.NoError(t, err)

	sender := &recordingSender{}
	r := &Relay{
		reader: &fakeReader{msgs: []kafka.Message{
			{Key: []byte("bad"), Value: []byte("{not json")},
			{Key: []byte("good"), Value: payload},
		}},
		sender: sender,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, "ORD-2", sender.sent()[0].OrderID)
}

func TestSMTPSenderBuildsMIMEMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte

	s := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "Poster Shop <shop@example.com>"})
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), Message{OrderID: "ORD-1", To: []string{"a@b.co"}, Subject: "Order Confirmation - ORD-1", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"a@b.co"}, gotTo)
	body := string(gotBody)
	assert.True(t, strings.HasPrefix(body, "From: Poster Shop <shop@example.com>\r\n"))
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(body, "\r\n\r\n<p>hi</p>"))
}

func TestSMTPSenderRequiresRecipients(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25})
	assert.Error(t, s.Send(context.Background(), Message{OrderID: "ORD-1"}))
}
