package perception

import (
	"github.com/chewxy/math32"

	"github.com/nthnlss/wro-brain/pkg/params"
)

// ClusteringStrategy reduces a raw scan into a list of DetectedObjects.
// Raster and angular-sweep implementations are interchangeable; a consumer
// may run either, or both, against the same scan.
type ClusteringStrategy interface {
	Cluster(scan Scan, p params.Parameters) []DetectedObject
}

func classify(widthMM float32, p params.Parameters) ObjectKind {
	if widthMM < p.PillarMaxWidthMM {
		return KindPillar
	}
	return KindWall
}

func validPoint(distanceMM, quality float32, p params.Parameters) bool {
	if distanceMM < p.LidarMinDistanceMM || distanceMM > p.LidarMaxDistanceMM {
		return false
	}
	if quality < p.LidarMinQuality {
		return false
	}
	return true
}

// AngularClustering walks the scan in ascending angle order and groups
// consecutive points whose angular gap and range delta both stay under
// threshold, per the angular-sweep clustering contract.
type AngularClustering struct{}

// Cluster implements ClusteringStrategy.
func (AngularClustering) Cluster(scan Scan, p params.Parameters) []DetectedObject {
	type pt struct {
		angle, dist float32
	}
	pts := make([]pt, 0, 360)
	for a := 0; a < 360; a++ {
		d, q, ok := scan.At(a)
		if !ok || !validPoint(d, q, p) {
			continue
		}
		pts = append(pts, pt{angle: float32(a), dist: d})
	}
	if len(pts) == 0 {
		return nil
	}

	var objects []DetectedObject
	group := []pt{pts[0]}

	flush := func() {
		if len(group) < p.ClusterMinPoints {
			group = nil
			return
		}
		var sumAngle, sumDist float32
		for _, g := range group {
			sumAngle += g.angle
			sumDist += g.dist
		}
		n := float32(len(group))
		meanAngle := sumAngle / n
		meanDist := sumDist / n
		span := group[len(group)-1].angle - group[0].angle
		widthMM := 2 * meanDist * math32.Tan(deg2rad(span/2))
		if widthMM < 0 {
			widthMM = -widthMM
		}
		objects = append(objects, DetectedObject{
			AngleDeg:   normalizeDeg(meanAngle),
			DistanceMM: meanDist,
			WidthMM:    widthMM,
			Kind:       classify(widthMM, p),
		})
		group = nil
	}

	for i := 1; i < len(pts); i++ {
		prev := pts[i-1]
		cur := pts[i]
		angleGap := cur.angle - prev.angle
		distDiff := cur.dist - prev.dist
		if distDiff < 0 {
			distDiff = -distDiff
		}
		if angleGap <= p.ClusterAngleGapDeg && distDiff < p.ClusterDistanceDiffMM {
			group = append(group, cur)
			continue
		}
		flush()
		group = []pt{cur}
	}
	flush()

	return objects
}

func deg2rad(deg float32) float32 {
	return deg * (math32.Pi / 180)
}

func normalizeDeg(deg float32) float32 {
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
