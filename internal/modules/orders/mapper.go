package orders

import (
	"time"

	"logitrack-server/internal/models"

	"github.com/google/uuid"
)

// wireOrder is the snake_case record shape of the remote orders table.
// UpdatedAt travels as an ISO timestamp string on the wire but as epoch
// milliseconds in the domain.
type wireOrder struct {
	ID              string   `json:"id,omitempty"`
	OrderCode       string   `json:"order_code"`
	CustomerName    string   `json:"customer_name"`
	CustomerPhone   string   `json:"customer_phone"`
	CustomerAddress string   `json:"customer_address"`
	ProductName     string   `json:"product_name"`
	Quantity        int      `json:"quantity"`
	TotalPrice      float64  `json:"total_price"`
	Status          string   `json:"status"`
	CurrentLocation string   `json:"current_location"`
	UpdatedAt       string   `json:"updated_at"`
	CustomerLat     *float64 `json:"customer_lat,omitempty"`
	CustomerLng     *float64 `json:"customer_lng,omitempty"`
	DriverLat       *float64 `json:"driver_lat,omitempty"`
	DriverLng       *float64 `json:"driver_lng,omitempty"`
}

// toWire maps a domain order to the wire schema, defaulting every optional
// field so the payload never carries a null where the backend expects a
// value. The record ID is server-owned and never sent.
func toWire(o models.Order, now time.Time) wireOrder {
	w := wireOrder{
		OrderCode:       o.OrderCode,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		ProductName:     o.ProductName,
		Quantity:        o.Quantity,
		TotalPrice:      o.TotalPrice,
		Status:          string(o.Status),
		CurrentLocation: o.CurrentPhysicalLocation,
		UpdatedAt:       now.UTC().Format(time.RFC3339Nano),
	}
	if w.Quantity < 1 {
		w.Quantity = 1
	}
	if w.TotalPrice < 0 {
		w.TotalPrice = 0
	}
	if w.Status == "" {
		w.Status = string(models.StatusChinaStore)
	}
	if o.CustomerLocation != nil {
		w.CustomerLat = &o.CustomerLocation.Lat
		w.CustomerLng = &o.CustomerLocation.Lng
	}
	if o.DriverLocation != nil {
		w.DriverLat = &o.DriverLocation.Lat
		w.DriverLng = &o.DriverLocation.Lng
	}
	return w
}

// fromWire maps a remote record to the domain shape. Every field is
// defaulted so a malformed record never yields an order with missing
// required fields: a blank ID gets a generated one, a blank name becomes
// "No Name", and an unparseable timestamp falls back to now.
func fromWire(w wireOrder, now time.Time) models.Order {
	o := models.Order{
		ID:                      w.ID,
		OrderCode:               w.OrderCode,
		CustomerName:            w.CustomerName,
		CustomerPhone:           w.CustomerPhone,
		CustomerAddress:         w.CustomerAddress,
		ProductName:             w.ProductName,
		Quantity:                w.Quantity,
		TotalPrice:              w.TotalPrice,
		Status:                  models.OrderStatus(w.Status),
		CurrentPhysicalLocation: w.CurrentLocation,
		UpdatedAt:               parseWireTime(w.UpdatedAt, now),
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CustomerName == "" {
		o.CustomerName = "No Name"
	}
	if o.Quantity < 1 {
		o.Quantity = 1
	}
	if o.TotalPrice < 0 {
		o.TotalPrice = 0
	}
	if !o.Status.Valid() {
		o.Status = models.StatusChinaStore
	}
	if o.CurrentPhysicalLocation == "" {
		o.CurrentPhysicalLocation = o.Status.Label()
	}
	if w.CustomerLat != nil && w.CustomerLng != nil {
		o.CustomerLocation = &models.Location{Lat: *w.CustomerLat, Lng: *w.CustomerLng}
	}
	if w.DriverLat != nil && w.DriverLng != nil {
		o.DriverLocation = &models.Location{Lat: *w.DriverLat, Lng: *w.DriverLng}
	}
	return o
}

// parseWireTime converts the remote ISO timestamp to epoch milliseconds.
// PostgREST emits RFC 3339 with or without an explicit zone.
func parseWireTime(raw string, fallback time.Time) int64 {
	if raw == "" {
		return fallback.UnixMilli()
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli()
		}
	}
	return fallback.UnixMilli()
}
