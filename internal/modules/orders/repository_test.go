package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"logitrack-server/internal/mirror"
	"logitrack-server/internal/models"
	"logitrack-server/internal/remote"

	"github.com/spf13/afero"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type recordedRequest struct {
	method string
	query  url.Values
	apikey string
}

// fakeBackend emulates the remote orders table: a stateful PostgREST stand-in
// so create/update/delete flows can be exercised end to end.
type fakeBackend struct {
	records  []wireOrder
	requests []recordedRequest
	nextID   int
}

func (b *fakeBackend) transport() roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		query := req.URL.Query()
		b.requests = append(b.requests, recordedRequest{
			method: req.Method,
			query:  query,
			apikey: req.Header.Get("apikey"),
		})

		codeFilter := strings.TrimPrefix(query.Get("order_code"), "eq.")
		idFilter := strings.TrimPrefix(query.Get("id"), "eq.")

		switch req.Method {
		case http.MethodGet:
			matched := []wireOrder{}
			for _, r := range b.records {
				if codeFilter != "" && r.OrderCode != codeFilter {
					continue
				}
				matched = append(matched, r)
			}
			return jsonResponse(http.StatusOK, matched), nil

		case http.MethodPost:
			var w wireOrder
			if err := json.NewDecoder(req.Body).Decode(&w); err != nil {
				return jsonResponse(http.StatusBadRequest, nil), nil
			}
			b.nextID++
			w.ID = fmt.Sprintf("srv-%d", b.nextID)
			b.records = append(b.records, w)
			return jsonResponse(http.StatusCreated, []wireOrder{w}), nil

		case http.MethodPatch:
			var w wireOrder
			if err := json.NewDecoder(req.Body).Decode(&w); err != nil {
				return jsonResponse(http.StatusBadRequest, nil), nil
			}
			for i := range b.records {
				if b.records[i].OrderCode == codeFilter {
					w.ID = b.records[i].ID
					b.records[i] = w
				}
			}
			return emptyResponse(http.StatusNoContent), nil

		case http.MethodDelete:
			kept := b.records[:0]
			for _, r := range b.records {
				if r.ID != idFilter {
					kept = append(kept, r)
				}
			}
			b.records = kept
			return emptyResponse(http.StatusNoContent), nil
		}
		return emptyResponse(http.StatusMethodNotAllowed), nil
	}
}

func jsonResponse(status int, body any) *http.Response {
	data, _ := json.Marshal(body)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(data)),
		Header:     http.Header{},
	}
}

func emptyResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
		Header:     http.Header{},
	}
}

const (
	repoSecretKey      = "sb_secret_0123456789abcdef"
	repoPublishableKey = "sb_publishable_0123456789abcdef"
)

func newTestRepo(t *testing.T, rt http.RoundTripper) (*Repository, *mirror.FileStore) {
	t.Helper()
	client := remote.NewClient(
		"https://proj.supabase.co",
		remote.StaticKeys{Secret: repoSecretKey, Publishable: repoPublishableKey},
		&http.Client{Transport: rt},
		nil,
	)
	store := mirror.NewFileStore(afero.NewMemMapFs(), "orders.json")
	return NewRepository(client, store, func() time.Time { return testClock }, nil), store
}

func newOfflineRepo(t *testing.T) (*Repository, *mirror.FileStore) {
	t.Helper()
	// Placeholder URL: configuration is not ready for any role.
	client := remote.NewClient("https://YOUR_PROJECT_REF.supabase.co", remote.StaticKeys{}, nil, nil)
	store := mirror.NewFileStore(afero.NewMemMapFs(), "orders.json")
	return NewRepository(client, store, func() time.Time { return testClock }, nil), store
}

func failingTransport() roundTripFunc {
	return func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}
}

func TestFetchOrdersNotReadyServesMirror(t *testing.T) {
	repo, store := newOfflineRepo(t)
	seed := []models.Order{{ID: "a1", OrderCode: "LY-001", CustomerName: "Ali", Quantity: 1, Status: models.StatusEnRoute}}
	if err := store.Save(seed); err != nil {
		t.Fatal(err)
	}

	got := repo.FetchOrders(context.Background(), remote.RoleAdmin)
	if len(got) != 1 || got[0].OrderCode != "LY-001" {
		t.Fatalf("FetchOrders = %+v; want mirror snapshot", got)
	}
}

func TestFetchOrdersMapsAndMirrors(t *testing.T) {
	backend := &fakeBackend{records: []wireOrder{
		{ID: "srv-1", OrderCode: "LY-001", CustomerName: "Ali", Quantity: 2, TotalPrice: 150, Status: "En_Route", CurrentLocation: "En Route", UpdatedAt: "2024-05-01T09:00:00Z"},
		{ID: "srv-2", OrderCode: "LY-002", CustomerName: "", Quantity: 0, Status: "garbage", UpdatedAt: ""},
	}}
	repo, store := newTestRepo(t, backend.transport())

	got := repo.FetchOrders(context.Background(), remote.RoleAdmin)
	if len(got) != 2 {
		t.Fatalf("got %d orders; want 2", len(got))
	}
	if got[0].ID != "srv-1" || got[0].Status != models.StatusEnRoute {
		t.Errorf("first order mapped wrong: %+v", got[0])
	}
	// Malformed records get defaults, they are never dropped.
	if got[1].CustomerName != "No Name" || got[1].Quantity != 1 || got[1].Status != models.StatusChinaStore {
		t.Errorf("defaults not applied: %+v", got[1])
	}

	mirrored, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(mirrored) != 2 || mirrored[0].ID != got[0].ID {
		t.Errorf("mirror snapshot = %+v; want same as fetch result", mirrored)
	}
}

func TestSyncOrderCreatesThenUpdatesSameRecord(t *testing.T) {
	backend := &fakeBackend{}
	repo, _ := newTestRepo(t, backend.transport())
	ctx := context.Background()

	created, err := repo.SyncOrder(ctx, models.Order{OrderCode: "LY-001", CustomerName: "Ali", Quantity: 2, TotalPrice: 150})
	if err != nil {
		t.Fatalf("SyncOrder create: %v", err)
	}
	if len(backend.records) != 1 {
		t.Fatalf("backend has %d records; want 1", len(backend.records))
	}
	// The server-assigned identity replaces the client-generated one.
	if created.ID != "srv-1" {
		t.Errorf("created.ID = %q; want srv-1", created.ID)
	}

	updated, err := repo.SyncOrder(ctx, models.Order{OrderCode: "LY-001", CustomerName: "Ali", Quantity: 2, TotalPrice: 150, Status: models.StatusDelivered})
	if err != nil {
		t.Fatalf("SyncOrder update: %v", err)
	}
	if len(backend.records) != 1 {
		t.Fatalf("update created a duplicate: backend has %d records", len(backend.records))
	}
	if updated.ID != created.ID {
		t.Errorf("update changed identity: %q -> %q", created.ID, updated.ID)
	}
	if backend.records[0].Status != string(models.StatusDelivered) {
		t.Errorf("backend status = %q; want Delivered", backend.records[0].Status)
	}

	fetched := repo.FetchOrders(ctx, remote.RoleAdmin)
	if len(fetched) != 1 || fetched[0].ID != created.ID || fetched[0].Status != models.StatusDelivered {
		t.Errorf("fetch after sync = %+v; want single delivered LY-001", fetched)
	}
}

func TestSyncOrderStampsRepositoryClock(t *testing.T) {
	backend := &fakeBackend{}
	repo, _ := newTestRepo(t, backend.transport())

	stale := testClock.Add(-48 * time.Hour).UnixMilli()
	saved, err := repo.SyncOrder(context.Background(), models.Order{OrderCode: "LY-001", CustomerName: "Ali", UpdatedAt: stale})
	if err != nil {
		t.Fatal(err)
	}
	if saved.UpdatedAt != testClock.UnixMilli() {
		t.Errorf("UpdatedAt = %d; want repository clock %d", saved.UpdatedAt, testClock.UnixMilli())
	}
	if saved.UpdatedAt < stale {
		t.Error("caller-supplied timestamp survived lower than the clock")
	}
}

func TestSyncOrderAppliesDefaults(t *testing.T) {
	repo, _ := newOfflineRepo(t)

	saved, err := repo.SyncOrder(context.Background(), models.Order{OrderCode: " ly-007 ", CustomerName: "Omar", Quantity: -3, TotalPrice: -1, Status: "bogus"})
	if err != nil {
		t.Fatal(err)
	}
	if saved.OrderCode != "LY-007" {
		t.Errorf("OrderCode = %q; want normalized LY-007", saved.OrderCode)
	}
	if saved.Quantity != 1 || saved.TotalPrice != 0 {
		t.Errorf("numeric defaults not applied: %+v", saved)
	}
	if saved.Status != models.StatusChinaStore || saved.CurrentPhysicalLocation != "Pending" {
		t.Errorf("status defaults not applied: %+v", saved)
	}
	if saved.ID == "" {
		t.Error("offline create must generate a client ID")
	}
}

func TestSyncOrderRejectsMissingRequiredFields(t *testing.T) {
	repo, _ := newOfflineRepo(t)

	if _, err := repo.SyncOrder(context.Background(), models.Order{OrderCode: "LY-001"}); !errors.Is(err, models.ErrMissingRequiredFields) {
		t.Errorf("missing name: err = %v", err)
	}
	if _, err := repo.SyncOrder(context.Background(), models.Order{CustomerName: "Ali"}); !errors.Is(err, models.ErrMissingRequiredFields) {
		t.Errorf("missing code: err = %v", err)
	}
}

func TestSyncOrderSurvivesOutage(t *testing.T) {
	repo, _ := newTestRepo(t, failingTransport())
	ctx := context.Background()

	saved, err := repo.SyncOrder(ctx, models.Order{OrderCode: "LY-001", CustomerName: "Ali", Quantity: 2})
	if err != nil {
		t.Fatalf("SyncOrder during outage: %v", err)
	}

	// Still unreachable: the fetch must serve the local record.
	fetched := repo.FetchOrders(ctx, remote.RoleAdmin)
	if len(fetched) != 1 || fetched[0].ID != saved.ID || fetched[0].OrderCode != "LY-001" {
		t.Errorf("fetch during outage = %+v; want the locally synced record", fetched)
	}
}

func TestDeleteOrderRemovesLocallyAndRemotely(t *testing.T) {
	backend := &fakeBackend{records: []wireOrder{{ID: "srv-1", OrderCode: "LY-001", CustomerName: "Ali", Quantity: 1, Status: "China_Store", UpdatedAt: "2024-05-01T09:00:00Z"}}}
	repo, _ := newTestRepo(t, backend.transport())
	ctx := context.Background()

	repo.FetchOrders(ctx, remote.RoleAdmin) // warm the mirror

	if removed := repo.DeleteOrder(ctx, "srv-1"); !removed {
		t.Fatal("DeleteOrder = false; want true")
	}
	if len(backend.records) != 0 {
		t.Errorf("backend still has %d records", len(backend.records))
	}
	if fetched := repo.FetchOrders(ctx, remote.RoleAdmin); len(fetched) != 0 {
		t.Errorf("fetch after delete = %+v; want empty", fetched)
	}
}

func TestDeleteOrderOutageStillRemovesLocally(t *testing.T) {
	repo, store := newTestRepo(t, failingTransport())
	if err := store.Save([]models.Order{{ID: "a1", OrderCode: "LY-001", CustomerName: "Ali"}}); err != nil {
		t.Fatal(err)
	}

	if removed := repo.DeleteOrder(context.Background(), "a1"); !removed {
		t.Fatal("DeleteOrder = false; want true")
	}
	snapshot, _ := store.Load()
	if len(snapshot) != 0 {
		t.Errorf("mirror still has %+v after delete", snapshot)
	}
}

func TestUserRoleNeverPresentsSecretKey(t *testing.T) {
	backend := &fakeBackend{records: []wireOrder{{ID: "srv-1", OrderCode: "LY-001", CustomerName: "Ali", Quantity: 1, Status: "En_Route", UpdatedAt: "2024-05-01T09:00:00Z"}}}
	repo, _ := newTestRepo(t, backend.transport())
	ctx := context.Background()

	repo.FetchOrders(ctx, remote.RoleUser)
	if _, err := repo.FindByCode(ctx, remote.RoleUser, "LY-001"); err != nil {
		t.Fatalf("FindByCode: %v", err)
	}

	for _, req := range backend.requests {
		if req.apikey != repoPublishableKey {
			t.Errorf("user-role request presented %q; want publishable key only", req.apikey)
		}
	}
}

func TestFindByCodeRemoteMissIsAuthoritative(t *testing.T) {
	backend := &fakeBackend{}
	repo, store := newTestRepo(t, backend.transport())
	// Mirror has a stale record that the remote no longer knows about.
	if err := store.Save([]models.Order{{ID: "a1", OrderCode: "LY-001", CustomerName: "Ali"}}); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.FindByCode(context.Background(), remote.RoleUser, "LY-001"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v; want ErrNotFound when the remote answers empty", err)
	}
}

func TestFindByCodeFallsBackToMirror(t *testing.T) {
	repo, store := newTestRepo(t, failingTransport())
	if err := store.Save([]models.Order{{ID: "a1", OrderCode: "LY-001", CustomerName: "Ali"}}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindByCode(context.Background(), remote.RoleUser, "  ly-001 ")
	if err != nil {
		t.Fatalf("FindByCode during outage: %v", err)
	}
	if got.ID != "a1" {
		t.Errorf("FindByCode = %+v; want mirror record a1", got)
	}
}
