package models

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Order represents one delivery request. Orders are never updated after creation.
type Order struct {
	ID               uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username         string    `json:"-" gorm:"type:varchar(255);not null;index"`
	PurchaseDate     time.Time `json:"purchaseDate" gorm:"type:date;not null;index"`
	DeliveryTime     string    `json:"deliveryTime" gorm:"type:time;not null"`
	DeliveryLocation string    `json:"deliveryLocation" gorm:"type:varchar(100);not null"`
	ProductName      string    `json:"productName" gorm:"type:varchar(100);not null"`
	Quantity         int       `json:"quantity" gorm:"not null"`
	Message          *string   `json:"message" gorm:"type:varchar(500)"`
	CreatedAt        time.Time `json:"-"`
}

// OrderRequest is the payload submitted to place an order.
// Pointer fields distinguish "absent" from zero values.
// Field order is the order in which rules are reported.
type OrderRequest struct {
	PurchaseDate     string  `json:"purchaseDate" validate:"required,isodate,opendate"`
	DeliveryTime     string  `json:"deliveryTime" validate:"required,deliveryslot"`
	DeliveryLocation string  `json:"deliveryLocation" validate:"required,district"`
	ProductName      string  `json:"productName" validate:"required,product"`
	Quantity         *int    `json:"quantity" validate:"required,min=1,max=100"`
	Message          *string `json:"message" validate:"omitempty,max=500"`
}

// OrderResponse is the outward view of an order.
type OrderResponse struct {
	ID               uint64  `json:"id"`
	PurchaseDate     string  `json:"purchaseDate"`
	DeliveryTime     string  `json:"deliveryTime"`
	DeliveryLocation string  `json:"deliveryLocation"`
	ProductName      string  `json:"productName"`
	Quantity         int     `json:"quantity"`
	Message          *string `json:"message"`
}

// ToResponse converts the stored order into its outward view.
func (o *Order) ToResponse() OrderResponse {
	return OrderResponse{
		ID:               o.ID,
		PurchaseDate:     o.PurchaseDate.Format(DateLayout),
		DeliveryTime:     ShortTime(o.DeliveryTime),
		DeliveryLocation: o.DeliveryLocation,
		ProductName:      o.ProductName,
		Quantity:         o.Quantity,
		Message:          o.Message,
	}
}

// ToResponses converts a slice of orders, never returning nil.
func ToResponses(orders []Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, orders[i].ToResponse())
	}
	return out
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// StorageTime expands an HH:MM slot into the HH:MM:SS form kept in the time column.
func StorageTime(slot string) string {
	if len(slot) == 5 {
		return slot + ":00"
	}
	return slot
}

// ShortTime trims a stored HH:MM:SS value back to its HH:MM slot.
func ShortTime(stored string) string {
	if len(stored) >= 5 {
		return stored[:5]
	}
	return stored
}
