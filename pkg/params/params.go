// Package params holds the process-wide tunable Parameters record and the
// atomic snapshot primitive used to publish it to the tick loop without
// locking, mirroring the single-writer/many-reader discipline the rest of
// this tree uses for shared device state.
package params

import "sync/atomic"

// HSVWindow is a camera collaborator tuning window, forwarded to the blob
// extractor unchanged. The core never reads it directly; it exists here
// because Parameters is the one externally-tunable record for the whole
// process.
type HSVWindow struct {
	HMin, HMax uint8
	SMin, SMax uint8
	VMin, VMax uint8
}

// Parameters is the full externally-tunable configuration record, snapshot
// by value at the start of every tick by each consumer. Defaults match the
// configuration constants table.
type Parameters struct {
	// Camera collaborator tuning, forwarded only.
	HSV             map[string]HSVWindow
	MinContourAreaPx float64

	// Drivetrain geometry.
	WheelDiameterMM     float32
	EncoderCountsPerRev int

	// Scheduling.
	ControlLoopHz float64

	// Speeds and steering.
	NormalSpeed     float32
	SlowSpeed       float32
	SteeringCenter  float32
	WallFollowKp    float32
	MinWallClearance float32

	// Corner / wall detection.
	CornerThresholdMM float32

	// LIDAR acquisition gates.
	LidarMinDistanceMM float32
	LidarMaxDistanceMM float32
	LidarMinQuality    float32

	// Angular-sweep clustering.
	ClusterAngleGapDeg    float32
	ClusterDistanceDiffMM float32
	ClusterMinPoints      int

	// Raster clustering.
	RasterImageSizePx   int
	RasterMaxRangeMM    float32
	RasterMinAreaPx     float64
	RasterDilateKernel  int
	RasterDilateIters   int

	// Clustering kind assignment (distinct from the fusion match window
	// below: this is the Pillar-vs-Wall classification threshold).
	PillarMaxWidthMM float32

	// Fusion blob/cluster match window and gate.
	PillarSizeMinMM       float32
	PillarSizeMaxMM       float32
	AngleMatchThresholdDeg float32
	CameraLidarYawOffsetDeg float32

	// Blocking-pillar gate (world-state derived query).
	BlockingPillarAngleDeg float32

	// Avoidance.
	MinAvoidFrames      int
	ClearDistanceMM     float32
	ClearAngleDeg       float32
	AvoidMinSteerOffset float32
	AvoidMaxSteerOffset float32
	AvoidAngleGain      float32
	// AvoidUrgencyMaxDistanceMM normalizes the urgency curve
	// (u = sqrt(1 - min(distance/max, 1))); distinct from ClearDistanceMM,
	// which gates the state transition back to WallFollow.
	AvoidUrgencyMaxDistanceMM float32

	// Corner strategy.
	CornerTurnOffsetDeg float32

	// WallFollow strategy steering clamp, symmetric around SteeringCenter.
	WallFollowSteerLimitDeg float32

	// Track map tolerances.
	CornerToleranceTicks int64
	PillarToleranceTicks int64

	// Race progression.
	TargetLaps                   int
	ParkingPrepareThresholdTicks int64

	InstantUpdate bool
}

// Default returns the configuration constants table from the external
// interfaces section, as concrete Go values.
func Default() Parameters {
	return Parameters{
		HSV:                  map[string]HSVWindow{},
		MinContourAreaPx:      50,
		WheelDiameterMM:       65,
		EncoderCountsPerRev:   360,
		ControlLoopHz:         50,
		NormalSpeed:           60,
		SlowSpeed:             35,
		SteeringCenter:        90,
		WallFollowKp:          0.5,
		MinWallClearance:      150,
		CornerThresholdMM:     400,
		LidarMinDistanceMM:    60,
		LidarMaxDistanceMM:    3000,
		LidarMinQuality:       10,
		ClusterAngleGapDeg:    5,
		ClusterDistanceDiffMM: 150,
		ClusterMinPoints:      3,
		RasterImageSizePx:     500,
		RasterMaxRangeMM:      3000,
		RasterMinAreaPx:       20,
		RasterDilateKernel:    7,
		RasterDilateIters:     2,
		PillarMaxWidthMM:       120,
		PillarSizeMinMM:        30,
		PillarSizeMaxMM:        1000,
		AngleMatchThresholdDeg: 40,
		CameraLidarYawOffsetDeg: 0,
		BlockingPillarAngleDeg: 30,
		MinAvoidFrames:         25,
		ClearDistanceMM:        600,
		ClearAngleDeg:          65,
		AvoidMinSteerOffset:    45,
		AvoidMaxSteerOffset:    80,
		AvoidAngleGain:         0.8,
		AvoidUrgencyMaxDistanceMM: 800,
		CornerTurnOffsetDeg:    25,
		WallFollowSteerLimitDeg: 30,
		CornerToleranceTicks:   100,
		PillarToleranceTicks:   50,
		TargetLaps:                   3,
		ParkingPrepareThresholdTicks: 200,
		InstantUpdate:                false,
	}
}

// Store is a single-writer, many-reader snapshot handle for Parameters.
// The writer publishes a new value by swapping the pointer; readers take
// an instantaneous copy that never tears, following the swap-a-pointer
// pattern used elsewhere in this tree for shared provider state.
type Store struct {
	p atomic.Pointer[Parameters]
}

// NewStore returns a Store pre-loaded with Default().
func NewStore() *Store {
	s := &Store{}
	d := Default()
	s.p.Store(&d)
	return s
}

// Snapshot returns the current Parameters by value.
func (s *Store) Snapshot() Parameters {
	p := s.p.Load()
	if p == nil {
		return Default()
	}
	return *p
}

// Publish swaps in a new Parameters snapshot. Unknown-key/out-of-range
// validation is the caller's responsibility; a configuration fault here is
// a warn-and-keep-prior-value situation, not a panic.
func (s *Store) Publish(p Parameters) {
	s.p.Store(&p)
}
