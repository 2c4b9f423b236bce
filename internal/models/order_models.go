package models

// OrderStatus is the progression stage of a shipment. The stages are ordered
// by convention only; the repository does not enforce a state machine and any
// value may transition to any other.
type OrderStatus string

const (
	StatusChinaStore     OrderStatus = "China_Store"
	StatusChinaWarehouse OrderStatus = "China_Warehouse"
	StatusEnRoute        OrderStatus = "En_Route"
	StatusLibyaWarehouse OrderStatus = "Libya_Warehouse"
	StatusOutForDelivery OrderStatus = "Out_for_Delivery"
	StatusDelivered      OrderStatus = "Delivered"
)

// AllStatuses lists every stage in progression order.
var AllStatuses = []OrderStatus{
	StatusChinaStore,
	StatusChinaWarehouse,
	StatusEnRoute,
	StatusLibyaWarehouse,
	StatusOutForDelivery,
	StatusDelivered,
}

var statusLabels = map[OrderStatus]string{
	StatusChinaStore:     "Pending",
	StatusChinaWarehouse: "Warehouse CN",
	StatusEnRoute:        "En Route",
	StatusLibyaWarehouse: "Warehouse LY",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
}

// Valid reports whether s is one of the known stages.
func (s OrderStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the human-readable label for the stage, falling back to the
// raw value for unknown stages.
func (s OrderStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Location is a latitude/longitude pair, present only when live positions are
// being tracked for an order.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Order is the shipment record tracked by the system. OrderCode is the
// user-facing tracking code (business key, uppercase by convention); ID is the
// internal identity, server-assigned when remote-backed and client-generated
// otherwise. UpdatedAt is milliseconds since epoch and is refreshed on every
// write.
type Order struct {
	ID                      string      `json:"id"`
	OrderCode               string      `json:"orderCode"`
	CustomerName            string      `json:"customerName"`
	CustomerPhone           string      `json:"customerPhone"`
	CustomerAddress         string      `json:"customerAddress"`
	ProductName             string      `json:"productName"`
	Quantity                int         `json:"quantity"`
	TotalPrice              float64     `json:"totalPrice"`
	Status                  OrderStatus `json:"status"`
	CurrentPhysicalLocation string      `json:"currentPhysicalLocation"`
	UpdatedAt               int64       `json:"updatedAt"`
	CustomerLocation        *Location   `json:"customerLocation,omitempty"`
	DriverLocation          *Location   `json:"driverLocation,omitempty"`
}

// SaveOrderRequest is the admin payload for creating or updating an order.
// The repository upserts by OrderCode, so the same request shape serves both.
type SaveOrderRequest struct {
	ID                      string      `json:"id,omitempty"`
	OrderCode               string      `json:"orderCode" validate:"required"`
	CustomerName            string      `json:"customerName" validate:"required"`
	CustomerPhone           string      `json:"customerPhone,omitempty"`
	CustomerAddress         string      `json:"customerAddress,omitempty"`
	ProductName             string      `json:"productName,omitempty"`
	Quantity                int         `json:"quantity,omitempty"`
	TotalPrice              float64     `json:"totalPrice,omitempty" validate:"omitempty,gte=0"`
	Status                  OrderStatus `json:"status,omitempty"`
	CurrentPhysicalLocation string      `json:"currentPhysicalLocation,omitempty"`
	CustomerLocation        *Location   `json:"customerLocation,omitempty"`
	DriverLocation          *Location   `json:"driverLocation,omitempty"`
}

// ErrorResponse is the normalized error body returned by every handler.
type ErrorResponse struct {
	Message string `json:"message"`
}
