package notify

import (
	"bytes"
	"fmt"
	"github.com/shopspring/decimal"
	"html/template"
	"storefront-service/internal/entity"
	"strings"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return "₹" + d.StringFixed(2) },
}

const itemsPartial = `{{define "items"}}{{range .Items}}
<div style="border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; margin-bottom: 12px;">
  {{if .ProductImage}}<img src="{{.ProductImage}}" alt="{{.ProductName}}" style="width: 80px; height: 80px; object-fit: cover;" />{{end}}
  <h3 style="margin: 0 0 8px 0;">{{.ProductName}}</h3>
  <p style="margin: 0;">Quantity: {{.Quantity}}</p>
  <p style="margin: 0;">Price: {{money .ProductPrice}}</p>
  <p style="margin: 8px 0 0 0; font-weight: bold;">Subtotal: {{money .Subtotal}}</p>
</div>{{end}}{{end}}
{{define "address"}}
<p style="margin: 0;">{{.ShippingAddress}}</p>
{{if .Apartment}}<p style="margin: 0;">{{.Apartment}}</p>{{end}}
<p style="margin: 0;">{{.City}}, {{.State}} - {{.Pincode}}</p>{{end}}`

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(itemsPartial + `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Thank you for your order!</h1>
  <p>Hi {{.Order.CustomerName}},</p>
  <p>Your order <strong>{{.Order.OrderID}}</strong> has been confirmed!</p>
  <h2>Order Details</h2>
  {{template "items" .Order}}
  <p style="font-size: 18px; font-weight: bold;">Total: {{money .Order.TotalPrice}}</p>
  <h3>Shipping Address</h3>
  {{template "address" .Order}}
  {{if .OrderURL}}<p><a href="{{.OrderURL}}">Track your order</a></p>{{end}}
  <p style="color: #6b7280;">Thank you for shopping with {{.StoreName}}!</p>
</div>`))

var adminTmpl = template.Must(template.New("admin").Funcs(funcs).Parse(itemsPartial + `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>New Order Alert!</h1>
  <p><strong>Order ID:</strong> {{.Order.OrderID}}</p>
  <p><strong>Customer:</strong> {{.Order.CustomerName}}</p>
  <p><strong>Email:</strong> {{.Order.CustomerEmail}}</p>
  <p><strong>Phone:</strong> {{.Order.CustomerPhone}}</p>
  <p style="font-size: 18px; font-weight: bold;">Total: {{money .Order.TotalPrice}}</p>
  <h3>Ordered Items</h3>
  {{template "items" .Order}}
  <h3>Shipping Address</h3>
  {{template "address" .Order}}
  <p style="font-weight: bold;">Process this order in the admin dashboard!</p>
</div>`))

type templateData struct {
	Order     *entity.Order
	StoreName string
	OrderURL  string
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildOrderConfirmation renders the customer email. orderURL may contain
// a %s placeholder for the order id.
func BuildOrderConfirmation(order *entity.Order, storeName, orderURL string) (Message, error) {
	if strings.Contains(orderURL, "%s") {
		orderURL = fmt.Sprintf(orderURL, order.OrderID)
	}
	html, err := render(confirmationTmpl, templateData{Order: order, StoreName: storeName, OrderURL: orderURL})
	if err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Message{
		Kind:    KindOrderConfirmation,
		OrderID: order.OrderID,
		To:      []string{order.CustomerEmail},
		Subject: "Order Confirmation - " + order.OrderID,
		HTML:    html,
	}, nil
}

// BuildAdminNotification renders the new-order alert for the shop owner.
func BuildAdminNotification(order *entity.Order, adminEmail, storeName string) (Message, error) {
	html, err := render(adminTmpl, templateData{Order: order, StoreName: storeName})
	if err != nil {
		return Message{}, fmt.Errorf("render admin notification: %w", err)
	}
	return Message{
		Kind:    KindAdminNewOrder,
		OrderID: order.OrderID,
		To:      []string{adminEmail},
		Subject: "New Order Received - " + order.OrderID,
		HTML:    html,
	}, nil
}
