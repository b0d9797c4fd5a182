package perception

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nthnlss/wro-brain/pkg/params"
)

func TestAngularClusteringGroupsAdjacentPoints(t *testing.T) {
	p := params.Default()
	var scan Scan
	for a := 10; a <= 14; a++ {
		scan.Set(a, 500, 50)
	}
	for a := 100; a <= 103; a++ {
		scan.Set(a, 1000, 50)
	}

	objs := AngularClustering{}.Cluster(scan, p)
	require.Len(t, objs, 2)
}

func TestAngularClusteringDropsShortGroups(t *testing.T) {
	p := params.Default()
	var scan Scan
	scan.Set(10, 500, 50)
	scan.Set(11, 500, 50)

	objs := AngularClustering{}.Cluster(scan, p)
	require.Empty(t, objs)
}

func TestAngularClusteringClassifiesPillarVsWall(t *testing.T) {
	p := params.Default()

	var narrow Scan
	for a := 10; a <= 13; a++ {
		narrow.Set(a, 500, 50)
	}
	objs := AngularClustering{}.Cluster(narrow, p)
	require.Len(t, objs, 1)
	require.Equal(t, KindPillar, objs[0].Kind)

	var wide Scan
	for a := 10; a <= 60; a++ {
		wide.Set(a, 500, 50)
	}
	objs = AngularClustering{}.Cluster(wide, p)
	require.Len(t, objs, 1)
	require.Equal(t, KindWall, objs[0].Kind)
}

func TestAngularClusteringIgnoresOutOfRangePoints(t *testing.T) {
	p := params.Default()
	var scan Scan
	for a := 10; a <= 13; a++ {
		scan.Set(a, p.LidarMaxDistanceMM+500, 50) // too far
	}
	for a := 100; a <= 103; a++ {
		scan.Set(a, 500, 1) // too low quality
	}

	objs := AngularClustering{}.Cluster(scan, p)
	require.Empty(t, objs)
}
