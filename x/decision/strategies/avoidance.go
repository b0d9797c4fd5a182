package strategies

import (
	"github.com/chewxy/math32"

	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
)

// Avoidance is the proportional pillar-pass strategy: it steers away from
// the latched-color pillar with urgency that grows as the pillar closes,
// and corrects harder when the pillar sits on the same side as the steer
// direction.
type Avoidance struct{}

func directionSign(c perception.Color) float32 {
	if c == perception.ColorRed {
		// Red is passed on the right: steer left.
		return -1
	}
	// Green is passed on the left: steer right.
	return 1
}

// Compute implements decision.AvoidanceStrategy.
func (Avoidance) Compute(world perception.WorldState, ctx decision.AvoidCtx, cfg decision.Config) decision.MotorCommand {
	dir := directionSign(ctx.AvoidingColor)

	pillar, visible := findPillar(world, ctx.AvoidingColor)
	if !visible {
		// Blind interval: hold the hardest steer toward the pass side.
		steering := cfg.SteeringCenter + dir*cfg.AvoidMaxSteerOffset
		steering = clamp(steering, cfg.SteeringCenter-cfg.AvoidMaxSteerOffset, cfg.SteeringCenter+cfg.AvoidMaxSteerOffset)
		return decision.MotorCommand{Speed: cfg.SlowSpeed, Steering: steering}
	}

	ratio := pillar.DistanceMM / cfg.AvoidUrgencyMaxDistanceMM
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	urgency := math32.Sqrt(1 - ratio)

	base := cfg.AvoidMinSteerOffset + urgency*(cfg.AvoidMaxSteerOffset-cfg.AvoidMinSteerOffset)
	angleCorrection := dir * pillar.AngleDeg * cfg.AvoidAngleGain
	offset := clamp(base+angleCorrection, cfg.AvoidMinSteerOffset, cfg.AvoidMaxSteerOffset)

	steering := cfg.SteeringCenter + dir*offset
	steering = clamp(steering, cfg.SteeringCenter-cfg.AvoidMaxSteerOffset, cfg.SteeringCenter+cfg.AvoidMaxSteerOffset)
	return decision.MotorCommand{Speed: cfg.SlowSpeed, Steering: steering}
}

func findPillar(world perception.WorldState, color perception.Color) (perception.Pillar, bool) {
	for _, p := range world.Pillars {
		if p.Color == color {
			return p, true
		}
	}
	return perception.Pillar{}, false
}
