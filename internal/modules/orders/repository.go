package orders

import (
	"context"
	"net/url"
	"strings"
	"time"

	"logitrack-server/internal/mirror"
	"logitrack-server/internal/models"
	"logitrack-server/internal/remote"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RepositoryInterface mediates between the remote data service and the local
// mirror. All operations are best-effort against the remote: a network
// failure never escapes to the caller, it degrades to the mirror instead.
type RepositoryInterface interface {
	FetchOrders(ctx context.Context, role remote.Role) []models.Order
	FindByCode(ctx context.Context, role remote.Role, code string) (*models.Order, error)
	FindByID(id string) (*models.Order, error)
	SyncOrder(ctx context.Context, order models.Order) (models.Order, error)
	DeleteOrder(ctx context.Context, id string) bool
}

// Repository implements the RepositoryInterface.
//
// Write ordering policy: the mirror is written FIRST so the UI gets an
// immediate read-after-write view, then the remote call is attempted. There
// is no rollback on remote failure; the mirror converges back to the remote
// state on the next successful FetchOrders.
type Repository struct {
	remote *remote.Client
	mirror mirror.Store
	now    func() time.Time
	log    *zap.Logger
}

// NewRepository creates an order repository. now is injectable for tests and
// defaults to time.Now when nil.
func NewRepository(rc *remote.Client, store mirror.Store, now func() time.Time, log *zap.Logger) *Repository {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{remote: rc, mirror: store, now: now, log: log}
}

// FetchOrders returns all orders, most-recently-updated first when
// remote-backed. Not-ready configuration and remote failures both degrade to
// the last mirror snapshot; this method never fails.
func (r *Repository) FetchOrders(ctx context.Context, role remote.Role) []models.Order {
	if !r.remote.Ready(role) {
		return r.cached()
	}

	query := url.Values{"select": {"*"}, "order": {"updated_at.desc"}}
	var rows []wireOrder
	if err := r.remote.Select(ctx, "orders", role, query, &rows); err != nil {
		r.log.Warn("repository.FetchOrders: remote unavailable, serving mirror", zap.Error(err))
		return r.cached()
	}

	orders := make([]models.Order, 0, len(rows))
	now := r.now()
	for _, w := range rows {
		orders = append(orders, fromWire(w, now))
	}
	if err := r.mirror.Save(orders); err != nil {
		r.log.Warn("repository.FetchOrders: mirror write failed", zap.Error(err))
	}
	return orders
}

// FindByCode looks up a single order by tracking code using the given role's
// credential. The code is case-normalized. Remote failures and a not-ready
// remote fall back to the mirror; a reachable remote with no match is
// authoritative and yields ErrNotFound.
func (r *Repository) FindByCode(ctx context.Context, role remote.Role, code string) (*models.Order, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, models.ErrNotFound
	}

	if r.remote.Ready(role) {
		query := url.Values{"select": {"*"}}
		query.Set("order_code", "eq."+code)
		var rows []wireOrder
		err := r.remote.Select(ctx, "orders", role, query, &rows)
		if err == nil {
			if len(rows) == 0 {
				return nil, models.ErrNotFound
			}
			order := fromWire(rows[0], r.now())
			return &order, nil
		}
		r.log.Warn("repository.FindByCode: remote unavailable, serving mirror", zap.Error(err))
	}

	for _, o := range r.cached() {
		if strings.EqualFold(strings.TrimSpace(o.OrderCode), code) {
			cp := o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// FindByID looks up an order by identity in the mirror only. It exists for
// callers that need the tracking code of a locally known record (e.g. to
// broadcast a deletion) and deliberately skips the remote.
func (r *Repository) FindByID(id string) (*models.Order, error) {
	for _, o := range r.cached() {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

// SyncOrder upserts an order. Defaults are normalized, UpdatedAt is stamped
// with the repository clock (a caller-supplied timestamp never survives), the
// mirror is written first, then the remote is updated by tracking code:
// PATCH when a record with the code exists, POST otherwise. A remote failure
// is logged and swallowed; the local write stands.
func (r *Repository) SyncOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if strings.TrimSpace(order.OrderCode) == "" || strings.TrimSpace(order.CustomerName) == "" {
		return models.Order{}, models.ErrMissingRequiredFields
	}

	now := r.now()
	normalizeOrder(&order, now)

	current := r.cached()
	idx := -1
	for i := range current {
		if (order.ID != "" && current[i].ID == order.ID) ||
			strings.EqualFold(current[i].OrderCode, order.OrderCode) {
			idx = i
			break
		}
	}
	if order.ID == "" {
		if idx >= 0 {
			order.ID = current[idx].ID
		} else {
			order.ID = uuid.NewString()
		}
	}

	var updated []models.Order
	if idx >= 0 {
		updated = make([]models.Order, len(current))
		copy(updated, current)
		updated[idx] = order
	} else {
		updated = append([]models.Order{order}, current...)
	}
	if err := r.mirror.Save(updated); err != nil {
		return models.Order{}, err
	}

	if r.remote.Ready(remote.RoleAdmin) {
		r.pushRemote(ctx, &order, now)
	}
	return order, nil
}

// pushRemote performs the existence-check-then-write round trips. On a
// successful create the server-assigned ID replaces the client-generated one
// in both the returned order and the mirror.
func (r *Repository) pushRemote(ctx context.Context, order *models.Order, now time.Time) {
	var existing []wireOrder
	if err := r.remote.Select(ctx, "orders", remote.RoleAdmin, remote.Eq("order_code", order.OrderCode), &existing); err != nil {
		r.log.Warn("repository.SyncOrder: existence check failed, local write stands", zap.Error(err))
		return
	}

	payload := toWire(*order, now)
	if len(existing) > 0 {
		if err := r.remote.Update(ctx, "orders", remote.Eq("order_code", order.OrderCode), payload); err != nil {
			r.log.Warn("repository.SyncOrder: remote update failed, local write stands", zap.Error(err))
			return
		}
		if existing[0].ID != "" && existing[0].ID != order.ID {
			r.adoptID(order, existing[0].ID)
		}
		return
	}

	var created []wireOrder
	if err := r.remote.Insert(ctx, "orders", payload, &created); err != nil {
		r.log.Warn("repository.SyncOrder: remote create failed, local write stands", zap.Error(err))
		return
	}
	if len(created) > 0 && created[0].ID != "" && created[0].ID != order.ID {
		r.adoptID(order, created[0].ID)
	}
}

// adoptID rewrites the order's identity to the server-assigned one so the
// mirror matches what the next fetch will return.
func (r *Repository) adoptID(order *models.Order, id string) {
	old := order.ID
	order.ID = id
	current := r.cached()
	for i := range current {
		if current[i].ID == old || strings.EqualFold(current[i].OrderCode, order.OrderCode) {
			current[i].ID = id
			break
		}
	}
	if err := r.mirror.Save(current); err != nil {
		r.log.Warn("repository.SyncOrder: mirror id reconcile failed", zap.Error(err))
	}
}

// DeleteOrder removes the order locally and issues a best-effort remote
// delete. It reports whether a local record was removed; remote failure does
// not undo the local removal.
func (r *Repository) DeleteOrder(ctx context.Context, id string) bool {
	current := r.cached()
	filtered := make([]models.Order, 0, len(current))
	for _, o := range current {
		if o.ID != id {
			filtered = append(filtered, o)
		}
	}
	removed := len(filtered) != len(current)
	if removed {
		if err := r.mirror.Save(filtered); err != nil {
			r.log.Warn("repository.DeleteOrder: mirror write failed", zap.Error(err))
		}
	}

	if r.remote.Ready(remote.RoleAdmin) {
		if err := r.remote.Delete(ctx, "orders", remote.Eq("id", id)); err != nil {
			r.log.Warn("repository.DeleteOrder: remote delete failed", zap.Error(err))
		}
	}
	return removed
}

func (r *Repository) cached() []models.Order {
	orders, err := r.mirror.Load()
	if err != nil {
		r.log.Warn("repository: mirror read failed", zap.Error(err))
		return []models.Order{}
	}
	return orders
}

// normalizeOrder applies the write-time defaults: uppercase tracking code,
// quantity >= 1, non-negative price, initial status, location auto-filled
// from the status label, and UpdatedAt stamped with the repository clock.
func normalizeOrder(o *models.Order, now time.Time) {
	o.OrderCode = strings.ToUpper(strings.TrimSpace(o.OrderCode))
	o.CustomerName = strings.TrimSpace(o.CustomerName)
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
	o.UpdatedAt = now.UnixMilli()
}
