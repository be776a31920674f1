// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"fmt"
	"strings"

	orderdom "farmlink/internal/domain/order"
)

// OrderMailer sends the buyer a plain-text confirmation listing every
// order produced by the checkout. Implements usecase.OrderMailer.
type OrderMailer struct {
	client      EmailClient
	fromAddress string
}

func NewOrderMailer(client EmailClient, fromAddress string) *OrderMailer {
	return &OrderMailer{
		client:      client,
		fromAddress: strings.TrimSpace(fromAddress),
	}
}

func (m *OrderMailer) SendOrderConfirmation(ctx context.Context, toEmail string, orders []orderdom.Order) error {
	if m == nil || m.client == nil {
		return fmt.Errorf("order_mailer: email client is nil")
	}
	if len(orders) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Your FarmLink order confirmation (%d order%s)", len(orders), plural(len(orders)))
	return m.client.Send(ctx, m.fromAddress, strings.TrimSpace(toEmail), subject, buildConfirmationBody(orders))
}

func buildConfirmationBody(orders []orderdom.Order) string {
	var b strings.Builder

	b.WriteString("Thank you for your order!\n\n")
	b.WriteString("Your purchase was split into one order per farm:\n\n")

	var grand float64
	for _, o := range orders {
		fmt.Fprintf(&b, "Order %s from %s\n", o.ID, o.FarmerEmail)
		for _, it := range o.Items {
			fmt.Fprintf(&b, "  %d x %s (%s): %.2f\n", it.Quantity, it.ProductName, it.ProductUnit, it.TotalPrice)
		}
		fmt.Fprintf(&b, "  Order total: %.2f\n\n", o.TotalAmount)
		grand += o.TotalAmount
	}

	fmt.Fprintf(&b, "Grand total: %.2f\n\n", grand)

	d := orders[0].DeliveryInfo
	b.WriteString("Delivery to:\n")
	fmt.Fprintf(&b, "  %s\n  %s, %s\n  %s\n", d.FullName, d.Address, d.City, d.Phone)
	if strings.TrimSpace(d.Notes) != "" {
		fmt.Fprintf(&b, "  Notes: %s\n", d.Notes)
	}

	b.WriteString("\n-- \nFarmLink")
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
