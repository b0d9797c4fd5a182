package perception

import (
	"time"

	"github.com/nthnlss/wro-brain/pkg/params"
)

// defaultParkingDistanceMM is the fallback distance used when a Magenta
// blob is seen but no LIDAR reading falls inside its projected window.
const defaultParkingDistanceMM = 500

// Fuser runs the full per-tick fusion algorithm: wall extraction, corner
// detection, clustering, blob/cluster matching, and parking detection,
// packaged into a fresh WorldState. Fuse never returns an error; missing
// inputs degrade to absent WorldState fields.
type Fuser struct {
	Clustering     ClusteringStrategy
	WallExtraction WallExtractionStrategy
}

// NewFuser returns a Fuser using the preferred defaults: raster clustering
// feeding cluster-based wall extraction.
func NewFuser() Fuser {
	return Fuser{
		Clustering:     RasterClustering{},
		WallExtraction: ClusterWallExtraction{AngleToleranceDeg: 45},
	}
}

// Fuse cross-references blobs against pillar-sized clusters and packages
// the result, plus wall and corner info, into a WorldState stamped with now
// and encoderPos. It is a pure function of its inputs.
func (f Fuser) Fuse(scan Scan, blobs []ColorBlob, encoderPos int64, p params.Parameters, now time.Time) WorldState {
	clusters := f.Clustering.Cluster(scan, p)
	walls := f.WallExtraction.ExtractWalls(scan, clusters, p)
	corner := DetectCorner(walls, p)

	pillars := matchPillars(clusters, blobs, p)
	parkingMM, hasParking := detectParking(scan, blobs, p)

	return WorldState{
		Timestamp:        now,
		EncoderPos:       encoderPos,
		Walls:            walls,
		Pillars:          pillars,
		CornerAhead:      corner,
		ParkingMarkerMM:  parkingMM,
		HasParkingMarker: hasParking,
	}
}

// lidarToCameraDeg reconciles a LIDAR-frame angle (0-360) into a
// camera-signed degree, subtracting 360 from angles beyond 180 and
// applying the (nominally zero) extrinsic yaw offset.
func lidarToCameraDeg(lidarAngleDeg float32, p params.Parameters) float32 {
	a := lidarAngleDeg
	if a > 180 {
		a -= 360
	}
	return a - p.CameraLidarYawOffsetDeg
}

// cameraToLidarDeg is the inverse projection, used to look up a camera
// blob's LIDAR-frame angle for parking-marker range lookup.
func cameraToLidarDeg(cameraAngleDeg float32, p params.Parameters) float32 {
	a := cameraAngleDeg + p.CameraLidarYawOffsetDeg
	return normalizeDeg(a)
}

type pillarCandidate struct {
	blobIdx    int
	clusterIdx int
	diff       float32
}

// matchPillars cross-references Red/Green blobs against pillar-sized
// clusters. Each side is consumed at most once; when several blobs could
// match the same cluster, the nearer-angle blob wins.
func matchPillars(clusters []DetectedObject, blobs []ColorBlob, p params.Parameters) []Pillar {
	var candidates []pillarCandidate
	for bi, b := range blobs {
		if b.Color != ColorRed && b.Color != ColorGreen {
			continue
		}
		for ci, c := range clusters {
			if c.Kind != KindPillar {
				continue
			}
			if c.WidthMM < p.PillarSizeMinMM || c.WidthMM > p.PillarSizeMaxMM {
				continue
			}
			clusterCameraAngle := lidarToCameraDeg(c.AngleDeg, p)
			diff := b.AngleDeg - clusterCameraAngle
			if diff < 0 {
				diff = -diff
			}
			if diff >= p.AngleMatchThresholdDeg {
				continue
			}
			candidates = append(candidates, pillarCandidate{blobIdx: bi, clusterIdx: ci, diff: diff})
		}
	}

	// Greedily accept the smallest-diff candidate first so a cluster
	// contested by two blobs goes to the nearer-angle one.
	consumedBlob := make(map[int]bool, len(blobs))
	consumedCluster := make(map[int]bool, len(clusters))
	var pillars []Pillar
	for {
		bestIdx := -1
		for i, cand := range candidates {
			if consumedBlob[cand.blobIdx] || consumedCluster[cand.clusterIdx] {
				continue
			}
			if bestIdx == -1 || cand.diff < candidates[bestIdx].diff {
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}
		cand := candidates[bestIdx]
		consumedBlob[cand.blobIdx] = true
		consumedCluster[cand.clusterIdx] = true
		blob := blobs[cand.blobIdx]
		cluster := clusters[cand.clusterIdx]
		pillars = append(pillars, Pillar{
			Color:      blob.Color,
			AngleDeg:   blob.AngleDeg,
			DistanceMM: cluster.DistanceMM,
		})
	}
	return pillars
}

// detectParking looks up the LIDAR distance to the largest Magenta blob's
// projected angle, falling back to a constant when no reading is present.
func detectParking(scan Scan, blobs []ColorBlob, p params.Parameters) (float32, bool) {
	best := -1
	for i, b := range blobs {
		if b.Color != ColorMagenta {
			continue
		}
		if best == -1 || b.AreaPx > blobs[best].AreaPx {
			best = i
		}
	}
	if best == -1 {
		return 0, false
	}

	lidarAngle := cameraToLidarDeg(blobs[best].AngleDeg, p)
	center := int(lidarAngle)
	if d, ok := windowMean(scan, center, 5, p); ok {
		return d, true
	}
	return defaultParkingDistanceMM, true
}
