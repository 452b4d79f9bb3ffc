package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRideClampsNegativeSeats(t *testing.T) {
	ride := NewRide("ride-1", "owner-1", RideAttributes{
		Route:          "r",
		ScheduledAt:    time.Now(),
		SeatsAvailable: -5,
	})

	assert.Equal(t, 0, ride.SeatsAvailable())
	assert.False(t, ride.HasSeats())
}

func TestRideOwnership(t *testing.T) {
	ride := NewRide("ride-1", "owner-1", RideAttributes{Route: "r"})

	assert.True(t, ride.IsOwnedBy("owner-1"))
	assert.False(t, ride.IsOwnedBy("someone-else"))
	assert.False(t, ride.IsOwnedBy(""), "an anonymous caller owns nothing")
}
