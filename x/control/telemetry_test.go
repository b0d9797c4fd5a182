package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTelemetryTracksDistanceAndSpeed(t *testing.T) {
	tel := NewTelemetry(65, 360)
	t0 := time.Unix(0, 0)

	tel.Update(0, t0)
	rpm, speed, dist := tel.Snapshot()
	require.Equal(t, float32(0), rpm)
	require.Equal(t, float32(0), speed)
	require.Equal(t, float32(0), dist)

	// One full revolution (360 ticks) over 1 second -> 60 RPM.
	tel.Update(360, t0.Add(time.Second))
	rpm, speed, dist = tel.Snapshot()
	require.InDelta(t, float64(60)*smoothingAlpha, float64(rpm), 0.01)
	require.Greater(t, speed, float32(0))
	require.Greater(t, dist, float32(0))
}

func TestTelemetryIgnoresNonPositiveInterval(t *testing.T) {
	tel := NewTelemetry(65, 360)
	t0 := time.Unix(0, 0)
	tel.Update(0, t0)
	tel.Update(360, t0) // same timestamp: dt=0

	rpm, _, dist := tel.Snapshot()
	require.Equal(t, float32(0), rpm)
	require.Equal(t, float32(0), dist)
}
