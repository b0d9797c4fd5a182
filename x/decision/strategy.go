package decision

import (
	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/perception"
	"github.com/nthnlss/wro-brain/x/trackmap"
)

// Config is the per-tick strategy configuration snapshot, cloned from
// Parameters at the top of StateMachine.Decide so every strategy dispatched
// within the same tick sees one coherent view even if a concurrent
// parameter publish lands mid-tick, per DESIGN NOTES "Runtime-tunable
// parameters".
type Config struct {
	NormalSpeed    float32
	SlowSpeed      float32
	SteeringCenter float32

	WallFollowKp            float32
	MinWallClearance        float32
	WallFollowSteerLimitDeg float32

	AvoidMinSteerOffset       float32
	AvoidMaxSteerOffset       float32
	AvoidAngleGain            float32
	AvoidUrgencyMaxDistanceMM float32

	CornerTurnOffsetDeg float32
}

// NewConfig snapshots the strategy-relevant fields out of a full Parameters
// record.
func NewConfig(p params.Parameters) Config {
	return Config{
		NormalSpeed:    p.NormalSpeed,
		SlowSpeed:      p.SlowSpeed,
		SteeringCenter: p.SteeringCenter,

		WallFollowKp:            p.WallFollowKp,
		MinWallClearance:        p.MinWallClearance,
		WallFollowSteerLimitDeg: p.WallFollowSteerLimitDeg,

		AvoidMinSteerOffset:       p.AvoidMinSteerOffset,
		AvoidMaxSteerOffset:       p.AvoidMaxSteerOffset,
		AvoidAngleGain:            p.AvoidAngleGain,
		AvoidUrgencyMaxDistanceMM: p.AvoidUrgencyMaxDistanceMM,

		CornerTurnOffsetDeg: p.CornerTurnOffsetDeg,
	}
}

// WallFollowStrategy steers to hold the robot centered (or offset by
// MinWallClearance when only one wall is visible) in the corridor.
type WallFollowStrategy interface {
	Compute(walls perception.WallInfo, cfg Config) MotorCommand
}

// AvoidanceStrategy steers around the latched-color pillar while it is
// being passed.
type AvoidanceStrategy interface {
	Compute(world perception.WorldState, ctx AvoidCtx, cfg Config) MotorCommand
}

// CornerStrategy emits a fixed threshold turn for the detected direction.
type CornerStrategy interface {
	Compute(dir perception.CornerDirection, cfg Config) MotorCommand
}

// ParkingStrategy is specified only as an interface: the original
// implementation this spec was distilled from leaves the parking maneuver
// unimplemented (see DESIGN.md).
type ParkingStrategy interface {
	Compute(world perception.WorldState, track *trackmap.TrackMap, cfg Config) MotorCommand
	IsComplete() bool
	Reset()
}
