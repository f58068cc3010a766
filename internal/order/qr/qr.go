package qr

import (
	"encoding/json"

	"lunchbox-orders/internal/models"

	"github.com/skip2/go-qrcode"
)

// reference is what pickup staff scan off the order success page.
type reference struct {
	OrderID  string `json:"order_id"`
	Contact  string `json:"contact"`
	Location string `json:"location"`
}

// GenerateOrderQR renders a 256px PNG QR code carrying the order reference.
func GenerateOrderQR(order models.Order) ([]byte, error) {
	data, err := json.Marshal(reference{
		OrderID:  order.ID,
		Contact:  order.Contact,
		Location: order.Location,
	})
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
