package trackmap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/perception"
)

func worldAt(encoder int64, corner perception.CornerDirection) perception.WorldState {
	return perception.WorldState{
		Timestamp:   time.Unix(encoder, 0),
		EncoderPos:  encoder,
		CornerAhead: corner,
		Walls:       perception.WallInfo{HasLeft: true, LeftMM: 300, HasRight: true, RightMM: 300},
	}
}

func TestTrackMapFirstLapCornerCounting(t *testing.T) {
	p := params.Default()
	m := New()

	m.Update(worldAt(0, perception.CornerNone), p)
	m.Update(worldAt(150, perception.CornerRight), p)
	require.Equal(t, 1, m.CornerCount())
	m.Update(worldAt(300, perception.CornerRight), p)
	require.Equal(t, 2, m.CornerCount())
	m.Update(worldAt(450, perception.CornerRight), p)
	require.Equal(t, 3, m.CornerCount())
	require.False(t, m.FirstLapComplete())
	m.Update(worldAt(600, perception.CornerRight), p)
	require.Equal(t, 4, m.CornerCount())

	require.True(t, m.FirstLapComplete())
	length, ok := m.LapLength()
	require.True(t, ok)
	require.Equal(t, int64(600), length)
}

func TestTrackMapCornerToleranceDropsDuplicates(t *testing.T) {
	p := params.Default()
	m := New()

	m.Update(worldAt(0, perception.CornerRight), p)
	require.Equal(t, 1, m.CornerCount())
	// within corner_tolerance (~100 ticks): dropped.
	m.Update(worldAt(50, perception.CornerRight), p)
	require.Equal(t, 1, m.CornerCount())
	// beyond tolerance: recorded.
	m.Update(worldAt(150, perception.CornerRight), p)
	require.Equal(t, 2, m.CornerCount())
}

func TestTrackMapReadOnlyAfterFirstLap(t *testing.T) {
	p := params.Default()
	m := New()
	m.Update(worldAt(0, perception.CornerNone), p)
	for _, enc := range []int64{150, 300, 450, 600} {
		m.Update(worldAt(enc, perception.CornerRight), p)
	}
	require.True(t, m.FirstLapComplete())
	before := m.CornerCount()

	m.Update(worldAt(750, perception.CornerRight), p)
	require.Equal(t, before, m.CornerCount())
	length, _ := m.LapLength()
	require.Equal(t, int64(600), length)
}

func TestTrackMapPillarToleranceDedup(t *testing.T) {
	p := params.Default()
	m := New()

	w := worldAt(0, perception.CornerNone)
	w.Pillars = []perception.Pillar{{Color: perception.ColorRed, AngleDeg: 20, DistanceMM: 500}}
	m.Update(w, p)

	w2 := worldAt(10, perception.CornerNone)
	w2.Pillars = []perception.Pillar{{Color: perception.ColorRed, AngleDeg: 20, DistanceMM: 480}}
	m.Update(w2, p)

	require.Len(t, m.pillars, 1)

	w3 := worldAt(200, perception.CornerNone)
	w3.Pillars = []perception.Pillar{{Color: perception.ColorRed, AngleDeg: -20, DistanceMM: 500}}
	m.Update(w3, p)
	require.Len(t, m.pillars, 2)
	require.Equal(t, SideLeft, m.pillars[1].Side)
}

func TestTrackMapUpdateIdempotentOnRepeatedWorld(t *testing.T) {
	p := params.Default()
	m1 := New()
	m2 := New()

	w := worldAt(100, perception.CornerRight)
	m1.Update(w, p)
	m1.Update(w, p) // second call with the identical world: duplicate corner suppressed

	m2.Update(w, p)

	require.Equal(t, m1.CornerCount(), m2.CornerCount())
}

func TestTrackMapNextCornerWrapsAfterFirstLap(t *testing.T) {
	p := params.Default()
	m := New()
	m.Update(worldAt(0, perception.CornerNone), p)
	for _, enc := range []int64{150, 300, 450, 600} {
		m.Update(worldAt(enc, perception.CornerRight), p)
	}
	require.True(t, m.FirstLapComplete())

	dist, dir, ok := m.NextCorner(620)
	require.True(t, ok)
	require.Equal(t, perception.CornerRight, dir)
	require.Greater(t, dist, int64(0))
}
