package orders

import (
	"context"
	"errors"

	"logitrack-server/internal/models"
	"logitrack-server/internal/notify"
	"logitrack-server/internal/remote"
)

// NotificationRecorder is implemented by the notifications module. Recording
// is best-effort; implementations must not fail the save path.
type NotificationRecorder interface {
	RecordStatusChange(ctx context.Context, order models.Order, previous *models.OrderStatus)
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	ListOrders(ctx context.Context) []models.Order
	SaveOrder(ctx context.Context, req models.SaveOrderRequest) (models.Order, error)
	DeleteOrder(ctx context.Context, id string) bool
	TrackOrder(ctx context.Context, code string) (*models.Order, error)
}

// Service implements the order service logic: admin operations run with the
// admin credential, the public tracking lookup with the user credential, and
// every successful mutation is broadcast on the hub.
type Service struct {
	repo     RepositoryInterface
	hub      *notify.Hub
	notifier NotificationRecorder // optional
}

// NewService creates a new order service. notifier may be nil.
func NewService(repo RepositoryInterface, hub *notify.Hub, notifier NotificationRecorder) *Service {
	return &Service{repo: repo, hub: hub, notifier: notifier}
}

// ListOrders returns the full admin view of the collection.
func (s *Service) ListOrders(ctx context.Context) []models.Order {
	return s.repo.FetchOrders(ctx, remote.RoleAdmin)
}

// SaveOrder upserts an order from the admin form. Required-field validation
// happens here, in one place, so the repository can stay lenient.
func (s *Service) SaveOrder(ctx context.Context, req models.SaveOrderRequest) (models.Order, error) {
	order := models.Order{
		ID:                      req.ID,
		OrderCode:               req.OrderCode,
		CustomerName:            req.CustomerName,
		CustomerPhone:           req.CustomerPhone,
		CustomerAddress:         req.CustomerAddress,
		ProductName:             req.ProductName,
		Quantity:                req.Quantity,
		TotalPrice:              req.TotalPrice,
		Status:                  req.Status,
		CurrentPhysicalLocation: req.CurrentPhysicalLocation,
		CustomerLocation:        req.CustomerLocation,
		DriverLocation:          req.DriverLocation,
	}

	// Capture the previous status before the upsert so a transition can be
	// detected for the notifications feed.
	var previous *models.OrderStatus
	if existing, err := s.repo.FindByCode(ctx, remote.RoleAdmin, req.OrderCode); err == nil {
		status := existing.Status
		previous = &status
	} else if !errors.Is(err, models.ErrNotFound) {
		previous = nil
	}

	saved, err := s.repo.SyncOrder(ctx, order)
	if err != nil {
		return models.Order{}, err
	}

	s.hub.Publish(notify.Event{OrderCode: saved.OrderCode, Kind: notify.KindUpdated})
	if s.notifier != nil && (previous == nil || *previous != saved.Status) {
		s.notifier.RecordStatusChange(ctx, saved, previous)
	}
	return saved, nil
}

// DeleteOrder removes an order by identity and broadcasts the deletion.
func (s *Service) DeleteOrder(ctx context.Context, id string) bool {
	code := ""
	if existing, err := s.repo.FindByID(id); err == nil {
		code = existing.OrderCode
	}

	removed := s.repo.DeleteOrder(ctx, id)
	if removed {
		s.hub.Publish(notify.Event{OrderCode: code, Kind: notify.KindDeleted})
	}
	return removed
}

// TrackOrder is the public lookup by tracking code. It must only ever
// present the publishable credential.
func (s *Service) TrackOrder(ctx context.Context, code string) (*models.Order, error) {
	return s.repo.FindByCode(ctx, remote.RoleUser, code)
}
