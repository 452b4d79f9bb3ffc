package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ride-pool/internal/carpool/domain"
	"ride-pool/pkg/logger"
)

func newDirectoryEnv() (*Directory, *memData) {
	data := newMemData()
	return NewDirectory(&memRides{d: data}, logger.NewLogger("test")), data
}

func TestCreateRideClampsNegativeSeats(t *testing.T) {
	dir, _ := newDirectoryEnv()

	dto, err := dir.CreateRide(context.Background(), "owner-1", domain.RideAttributes{
		Route:          "airport run",
		ScheduledAt:    time.Now().Add(time.Hour),
		SeatsAvailable: -3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, dto.SeatsAvailable)
	assert.Equal(t, "owner-1", dto.OwnerID)
}

func TestCreateRideRequiresIdentity(t *testing.T) {
	dir, data := newDirectoryEnv()

	_, err := dir.CreateRide(context.Background(), "", domain.RideAttributes{Route: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Empty(t, data.rides)
}

func TestListRidesOrderedByScheduledTime(t *testing.T) {
	dir, _ := newDirectoryEnv()
	ctx := context.Background()

	base := time.Now()
	for _, offset := range []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour} {
		_, err := dir.CreateRide(ctx, "owner-1", domain.RideAttributes{
			Route:          "r",
			ScheduledAt:    base.Add(offset),
			SeatsAvailable: 1,
		})
		require.NoError(t, err)
	}

	dtos, err := dir.ListRides(ctx)
	require.NoError(t, err)
	require.Len(t, dtos, 3)
	for i := 1; i < len(dtos); i++ {
		assert.False(t, dtos[i].ScheduledAt.Before(dtos[i-1].ScheduledAt))
	}
}

func TestDeleteRideCascades(t *testing.T) {
	data := newMemData()
	log := logger.NewLogger("test")
	dir := NewDirectory(&memRides{d: data}, log)
	lc := NewLifecycle(&memRides{d: data}, &memRequests{d: data}, log)
	ctx := context.Background()

	dto, err := dir.CreateRide(ctx, "owner-1", domain.RideAttributes{
		Route:          "r",
		ScheduledAt:    time.Now().Add(time.Hour),
		SeatsAvailable: 2,
	})
	require.NoError(t, err)
	_, err = lc.RequestToJoin(ctx, "rider-1", dto.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, dir.DeleteRide(ctx, "rider-1", dto.ID), domain.ErrNotOwner)
	assert.ErrorIs(t, dir.DeleteRide(ctx, "", dto.ID), domain.ErrUnauthenticated)

	require.NoError(t, dir.DeleteRide(ctx, "owner-1", dto.ID))
	assert.Empty(t, data.rides)
	assert.Empty(t, data.requests, "requests go with the ride")

	assert.ErrorIs(t, dir.DeleteRide(ctx, "owner-1", dto.ID), domain.ErrNotFound)
}
