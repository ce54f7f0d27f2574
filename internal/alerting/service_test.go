package alerting_test

import (
	"testing"

	"github.com/civicwatch/civicwatch/internal/geo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveNear(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	for range 3 {
		f.submit(t)
	}
	for range 3 {
		f.submit(t, withOffset(0, 8000))
	}

	alerts, err := f.service.ActiveNear(t.Context(), center, 2000)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.InDelta(t, center.Lat, alerts[0].Latitude, 1e-9)

	alerts, err = f.service.ActiveNear(t.Context(), center, 10000)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	_, err = f.service.ActiveNear(t.Context(), geo.Point{Lat: 0, Lng: 181}, 1000)
	require.ErrorIs(t, err, geo.ErrInvalidCoordinates)
}

func TestGetAlert(t *testing.T) {
	t.Parallel()
	f := setupService(t)

	for range 3 {
		f.submit(t)
	}
	alerts := f.store.Alerts()
	require.Len(t, alerts, 1)

	alert, err := f.service.Get(t.Context(), alerts[0].ID)
	require.NoError(t, err)
	assert.Equal(t, alerts[0].ID, alert.ID)

	_, err = f.service.Get(t.Context(), uuid.New())
	require.Error(t, err)
}
