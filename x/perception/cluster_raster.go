package perception

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	cv "gocv.io/x/gocv"

	"github.com/nthnlss/wro-brain/pkg/params"
)

// RasterClustering rasterizes the scan into a bird's-eye pixel canvas,
// dilates to bridge sub-cluster gaps, and extracts external contours as
// DetectedObjects. This is the preferred clustering strategy; it tolerates
// the small angular holes a raw angular sweep cannot bridge.
type RasterClustering struct{}

// Cluster implements ClusteringStrategy.
func (RasterClustering) Cluster(scan Scan, p params.Parameters) []DetectedObject {
	size := p.RasterImageSizePx
	if size <= 0 {
		size = 500
	}
	maxRange := p.RasterMaxRangeMM
	if maxRange <= 0 {
		maxRange = 3000
	}
	scalePxPerMM := float32(size) / (2 * maxRange)
	center := float32(size) / 2

	canvas := cv.NewMatWithSize(size, size, cv.MatTypeCV8U)
	defer canvas.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	pointRadius := 2
	any := false
	for a := 0; a < 360; a++ {
		d, q, ok := scan.At(a)
		if !ok || !validPoint(d, q, p) {
			continue
		}
		rad := deg2rad(float32(a))
		dx := d * math32.Sin(rad)
		dy := d * math32.Cos(rad)
		px := int(center + dx*scalePxPerMM)
		py := int(center - dy*scalePxPerMM)
		if px < 0 || px >= size || py < 0 || py >= size {
			continue
		}
		cv.Circle(&canvas, image.Pt(px, py), pointRadius, white, -1)
		any = true
	}
	if !any {
		return nil
	}

	k := p.RasterDilateKernel
	if k <= 0 {
		k = 7
	}
	iters := p.RasterDilateIters
	if iters <= 0 {
		iters = 2
	}
	kernel := cv.GetStructuringElement(cv.MorphRect, image.Pt(k, k))
	defer kernel.Close()

	dilated := cv.NewMat()
	defer dilated.Close()
	cv.DilateWithParams(canvas, &dilated, kernel, image.Pt(-1, -1), iters, cv.BorderConstant, cv.NewScalar(0, 0, 0, 0))

	contours := cv.FindContours(dilated, cv.RetrievalExternal, cv.ChainApproxSimple)
	defer contours.Close()

	minAreaPx := p.RasterMinAreaPx
	if minAreaPx <= 0 {
		minAreaPx = 20
	}

	var objects []DetectedObject
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		area := cv.ContourArea(pv)
		if area < minAreaPx {
			continue
		}
		moments := cv.Moments(pv, false)
		m00 := moments["m00"]
		if m00 == 0 {
			continue
		}
		cx := float32(moments["m10"] / m00)
		cy := float32(moments["m01"] / m00)

		bbox := cv.BoundingRect(pv)
		bw, bh := float32(bbox.Dx()), float32(bbox.Dy())
		widest := bw
		if bh > widest {
			widest = bh
		}

		ddx := (cx - center) / scalePxPerMM
		ddy := (center - cy) / scalePxPerMM
		distanceMM := math32.Sqrt(ddx*ddx + ddy*ddy)
		angleDeg := normalizeDeg(math32.Atan2(ddx, ddy) * (180 / math32.Pi))
		widthMM := widest / scalePxPerMM

		objects = append(objects, DetectedObject{
			AngleDeg:   angleDeg,
			DistanceMM: distanceMM,
			WidthMM:    widthMM,
			Kind:       classify(widthMM, p),
		})
	}

	return objects
}
