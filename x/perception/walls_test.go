package perception

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nthnlss/wro-brain/pkg/params"
)

func TestAverageWallExtraction(t *testing.T) {
	p := params.Default()
	var scan Scan
	for a := -5; a <= 5; a++ {
		scan.Set(a, 2000, 50)
	}
	for a := 80; a <= 100; a++ {
		scan.Set(a, 400, 50)
	}
	for a := 260; a <= 280; a++ {
		scan.Set(a, 300, 50)
	}

	w := AverageWallExtraction{}.ExtractWalls(scan, nil, p)
	require.True(t, w.HasFront)
	require.True(t, w.HasRight)
	require.True(t, w.HasLeft)
	require.InDelta(t, float64(2000), float64(w.FrontMM), 1)
	require.InDelta(t, float64(400), float64(w.RightMM), 1)
	require.InDelta(t, float64(300), float64(w.LeftMM), 1)
}

func TestAverageWallExtractionMissingSide(t *testing.T) {
	p := params.Default()
	var scan Scan
	for a := 80; a <= 100; a++ {
		scan.Set(a, 400, 50)
	}

	w := AverageWallExtraction{}.ExtractWalls(scan, nil, p)
	require.True(t, w.HasRight)
	require.False(t, w.HasLeft)
	require.False(t, w.HasFront)
	_, ok := w.CorridorWidthMM()
	require.False(t, ok)
}

func TestClusterWallExtractionPrefersWallKindOnly(t *testing.T) {
	clusters := []DetectedObject{
		{AngleDeg: 0, DistanceMM: 2000, Kind: KindWall},
		{AngleDeg: 2, DistanceMM: 500, Kind: KindPillar}, // closer but a pillar; must be ignored
		{AngleDeg: 90, DistanceMM: 400, Kind: KindWall},
		{AngleDeg: 270, DistanceMM: 300, Kind: KindWall},
	}
	w := ClusterWallExtraction{AngleToleranceDeg: 45}.ExtractWalls(Scan{}, clusters, params.Default())
	require.True(t, w.HasFront)
	require.Equal(t, float32(2000), w.FrontMM)
	require.True(t, w.HasRight)
	require.Equal(t, float32(400), w.RightMM)
	require.True(t, w.HasLeft)
	require.Equal(t, float32(300), w.LeftMM)
}

func TestDetectCornerDirection(t *testing.T) {
	p := params.Default()

	w := WallInfo{HasFront: true, FrontMM: 200, HasLeft: true, LeftMM: 500, HasRight: true, RightMM: 200}
	require.Equal(t, CornerLeft, DetectCorner(w, p))

	w2 := WallInfo{HasFront: true, FrontMM: 200, HasLeft: true, LeftMM: 200, HasRight: true, RightMM: 500}
	require.Equal(t, CornerRight, DetectCorner(w2, p))

	w3 := WallInfo{HasFront: true, FrontMM: 1000}
	require.Equal(t, CornerNone, DetectCorner(w3, p))

	w4 := WallInfo{}
	require.Equal(t, CornerNone, DetectCorner(w4, p))
}
