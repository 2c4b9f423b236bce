package notifications

import (
	"context"
	"net/url"
	"time"

	"logitrack-server/internal/models"
	"logitrack-server/internal/remote"

	"github.com/google/uuid"
)

// RepositoryInterface is the remote-backed notifications feed. There is no
// local mirror for notifications; a not-ready remote just means an empty
// feed, matching how the views treat it.
type RepositoryInterface interface {
	List(ctx context.Context) ([]models.AppNotification, error)
	MarkRead(ctx context.Context, id string) error
	Insert(ctx context.Context, n models.AppNotification) error
}

type wireNotification struct {
	ID        string `json:"id,omitempty"`
	OrderCode string `json:"order_code"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Repository implements the RepositoryInterface against the remote
// notifications table.
type Repository struct {
	remote *remote.Client
	now    func() time.Time
}

func NewRepository(rc *remote.Client, now func() time.Time) *Repository {
	if now == nil {
		now = time.Now
	}
	return &Repository{remote: rc, now: now}
}

// List returns the feed newest-first. A not-ready remote yields an empty
// feed, not an error.
func (r *Repository) List(ctx context.Context) ([]models.AppNotification, error) {
	if !r.remote.Ready(remote.RoleAdmin) {
		return []models.AppNotification{}, nil
	}

	query := url.Values{"select": {"*"}, "order": {"created_at.desc"}}
	var rows []wireNotification
	if err := r.remote.Select(ctx, "notifications", remote.RoleAdmin, query, &rows); err != nil {
		return nil, err
	}

	feed := make([]models.AppNotification, 0, len(rows))
	now := r.now()
	for _, w := range rows {
		feed = append(feed, fromWire(w, now))
	}
	return feed, nil
}

// MarkRead flips the is_read flag on one entry.
func (r *Repository) MarkRead(ctx context.Context, id string) error {
	if !r.remote.Ready(remote.RoleAdmin) {
		return nil
	}
	body := map[string]bool{"is_read": true}
	return r.remote.Update(ctx, "notifications", remote.Eq("id", id), body)
}

// Insert appends a new entry to the feed.
func (r *Repository) Insert(ctx context.Context, n models.AppNotification) error {
	if !r.remote.Ready(remote.RoleAdmin) {
		return nil
	}
	w := wireNotification{
		OrderCode: n.OrderCode,
		Title:     n.Title,
		Body:      n.Body,
		IsRead:    n.IsRead,
		CreatedAt: r.now().UTC().Format(time.RFC3339Nano),
	}
	return r.remote.Insert(ctx, "notifications", w, nil)
}

func fromWire(w wireNotification, now time.Time) models.AppNotification {
	n := models.AppNotification{
		ID:        w.ID,
		OrderCode: w.OrderCode,
		Title:     w.Title,
		Body:      w.Body,
		IsRead:    w.IsRead,
		Timestamp: now.UnixMilli(),
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if t, err := time.Parse(time.RFC3339Nano, w.CreatedAt); err == nil {
		n.Timestamp = t.UnixMilli()
	}
	return n
}
