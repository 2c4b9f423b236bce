package mirror

import (
	"testing"

	"logitrack-server/internal/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyList(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), "data/orders.json")

	orders, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NotNil(t, orders)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), "data/orders.json")

	in := []models.Order{
		{ID: "a1", OrderCode: "LY-001", CustomerName: "Ali", Quantity: 2, TotalPrice: 150, Status: models.StatusEnRoute, UpdatedAt: 1700000000000},
		{ID: "b2", OrderCode: "LY-002", CustomerName: "Sara", Quantity: 1, Status: models.StatusDelivered, UpdatedAt: 1700000001000,
			DriverLocation: &models.Location{Lat: 32.9, Lng: 13.2}},
	}
	require.NoError(t, s.Save(in))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveFullyReplacesSnapshot(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), "orders.json")

	require.NoError(t, s.Save([]models.Order{{ID: "a1", OrderCode: "LY-001"}, {ID: "b2", OrderCode: "LY-002"}}))
	require.NoError(t, s.Save([]models.Order{{ID: "b2", OrderCode: "LY-002"}}))

	out, err := s.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b2", out[0].ID)
}

func TestLoadCorruptSnapshotFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "orders.json", []byte("{not json"), 0o644))

	s := NewFileStore(fs, "orders.json")
	_, err := s.Load()
	assert.Error(t, err)
}

func TestSaveNilStoresEmptyList(t *testing.T) {
	s := NewFileStore(afero.NewMemMapFs(), "orders.json")
	require.NoError(t, s.Save(nil))

	out, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
}
