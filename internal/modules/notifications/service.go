package notifications

import (
	"context"
	"fmt"

	"logitrack-server/internal/models"

	"go.uber.org/zap"
)

// Mailer sends an operational email. Implementations must be safe to call
// with a disabled/unconfigured backend.
type Mailer interface {
	Send(ctx context.Context, subject, body string) error
}

// ServiceInterface defines the contract for the notifications service.
type ServiceInterface interface {
	List(ctx context.Context) []models.AppNotification
	MarkRead(ctx context.Context, id string) error
	RecordStatusChange(ctx context.Context, order models.Order, previous *models.OrderStatus)
}

// Service implements the notifications feed. Everything here is best-effort:
// the feed degrades to empty and a failed record never disturbs the order
// save that triggered it.
type Service struct {
	repo   RepositoryInterface
	mailer Mailer // optional
	log    *zap.Logger
}

func NewService(repo RepositoryInterface, mailer Mailer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, mailer: mailer, log: log}
}

// List returns the feed, degrading to empty when the remote is unavailable.
func (s *Service) List(ctx context.Context) []models.AppNotification {
	feed, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn("service.List: notifications unavailable", zap.Error(err))
		return []models.AppNotification{}
	}
	return feed
}

// MarkRead flags one feed entry as read.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("service.MarkRead: %w", err)
	}
	return nil
}

// RecordStatusChange appends a feed entry for a created order or a status
// transition, and emails the ops inbox when a shipment is delivered.
func (s *Service) RecordStatusChange(ctx context.Context, order models.Order, previous *models.OrderStatus) {
	n := models.AppNotification{
		OrderCode: order.OrderCode,
		Title:     fmt.Sprintf("Order %s updated", order.OrderCode),
		Body:      fmt.Sprintf("Current stage: %s", order.Status.Label()),
	}
	if previous == nil {
		n.Title = fmt.Sprintf("Order %s created", order.OrderCode)
	} else {
		n.Body = fmt.Sprintf("Now %s (was %s)", order.Status.Label(), previous.Label())
	}

	if err := s.repo.Insert(ctx, n); err != nil {
		s.log.Warn("service.RecordStatusChange: insert failed", zap.Error(err))
	}

	if s.mailer != nil && order.Status == models.StatusDelivered {
		subject := fmt.Sprintf("Shipment %s delivered", order.OrderCode)
		body := fmt.Sprintf("Order %s for %s was marked delivered at %s.",
			order.OrderCode, order.CustomerName, order.CurrentPhysicalLocation)
		if err := s.mailer.Send(ctx, subject, body); err != nil {
			s.log.Warn("service.RecordStatusChange: mail failed", zap.Error(err))
		}
	}
}
