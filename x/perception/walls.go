package perception

import "github.com/nthnlss/wro-brain/pkg/params"

// WallExtractionStrategy reduces a scan (optionally alongside a prior
// clustering pass) to the three cardinal wall distances.
type WallExtractionStrategy interface {
	ExtractWalls(scan Scan, clusters []DetectedObject, p params.Parameters) WallInfo
}

// AverageWallExtraction averages raw scan distances inside a fixed angular
// window around each cardinal direction: front +-5 deg, right/left +-10 deg.
type AverageWallExtraction struct{}

func windowMean(scan Scan, centerDeg, halfWidthDeg int, p params.Parameters) (float32, bool) {
	var sum float32
	var n int
	for off := -halfWidthDeg; off <= halfWidthDeg; off++ {
		d, q, ok := scan.At(centerDeg + off)
		if !ok || !validPoint(d, q, p) {
			continue
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float32(n), true
}

// ExtractWalls implements WallExtractionStrategy.
func (AverageWallExtraction) ExtractWalls(scan Scan, _ []DetectedObject, p params.Parameters) WallInfo {
	var w WallInfo
	if d, ok := windowMean(scan, 0, 5, p); ok {
		w.FrontMM, w.HasFront = d, true
	}
	if d, ok := windowMean(scan, 90, 10, p); ok {
		w.RightMM, w.HasRight = d, true
	}
	if d, ok := windowMean(scan, 270, 10, p); ok {
		w.LeftMM, w.HasLeft = d, true
	}
	return w
}

// ClusterWallExtraction reuses a prior clustering pass, keeping only
// Wall-kind objects, and for each cardinal direction picks the nearest one
// within angle tolerance. This is pillar-robust (a pillar sitting in the
// window can't be mistaken for the wall behind it) and is the preferred
// default.
type ClusterWallExtraction struct {
	AngleToleranceDeg float32
}

func nearestWall(clusters []DetectedObject, targetDeg, toleranceDeg float32) (float32, bool) {
	best := float32(0)
	bestDiff := toleranceDeg
	found := false
	for _, c := range clusters {
		if c.Kind != KindWall {
			continue
		}
		diff := angularDiff(c.AngleDeg, targetDeg)
		if diff < bestDiff || (!found && diff <= toleranceDeg) {
			if diff <= toleranceDeg {
				best = c.DistanceMM
				bestDiff = diff
				found = true
			}
		}
	}
	return best, found
}

func angularDiff(a, b float32) float32 {
	d := normalizeDeg(a) - normalizeDeg(b)
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	if d < 0 {
		d = -d
	}
	return d
}

// ExtractWalls implements WallExtractionStrategy.
func (c ClusterWallExtraction) ExtractWalls(_ Scan, clusters []DetectedObject, _ params.Parameters) WallInfo {
	tol := c.AngleToleranceDeg
	if tol <= 0 {
		tol = 45
	}
	var w WallInfo
	if d, ok := nearestWall(clusters, 0, tol); ok {
		w.FrontMM, w.HasFront = d, true
	}
	if d, ok := nearestWall(clusters, 90, tol); ok {
		w.RightMM, w.HasRight = d, true
	}
	if d, ok := nearestWall(clusters, 270, tol); ok {
		w.LeftMM, w.HasLeft = d, true
	}
	return w
}

// DetectCorner reports whether the wall layout implies an upcoming turn:
// the front wall closing in below corner_threshold signals a corner, whose
// direction follows whichever side has more clearance.
func DetectCorner(w WallInfo, p params.Parameters) CornerDirection {
	if !w.HasFront || w.FrontMM >= p.CornerThresholdMM {
		return CornerNone
	}
	if w.HasLeft && w.HasRight {
		if w.LeftMM > w.RightMM {
			return CornerLeft
		}
		return CornerRight
	}
	if w.HasLeft {
		return CornerLeft
	}
	if w.HasRight {
		return CornerRight
	}
	// No side reference; default to the more common competition layout.
	return CornerRight
}
