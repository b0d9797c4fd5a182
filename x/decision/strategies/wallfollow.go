// Package strategies implements the concrete WallFollow, Avoidance, Corner
// and Parking strategies dispatched by decision.StateMachine.
package strategies

import (
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
)

// WallFollow is the proportional corridor-centering strategy: it steers
// toward a target right-wall distance derived from the corridor width (or
// a fixed clearance when only one wall is visible).
type WallFollow struct{}

// Compute implements decision.WallFollowStrategy.
func (WallFollow) Compute(walls perception.WallInfo, cfg decision.Config) decision.MotorCommand {
	var errMM float32
	switch {
	case walls.HasLeft && walls.HasRight:
		corridor := walls.LeftMM + walls.RightMM
		target := corridor / 2
		if target < cfg.MinWallClearance {
			target = cfg.MinWallClearance
		}
		if max := corridor - cfg.MinWallClearance; target > max {
			target = max
		}
		errMM = walls.RightMM - target
	case walls.HasRight:
		errMM = walls.RightMM - cfg.MinWallClearance
	case walls.HasLeft:
		errMM = cfg.MinWallClearance - walls.LeftMM
	default:
		errMM = 0
	}

	steering := cfg.SteeringCenter + cfg.WallFollowKp*errMM
	steering = clamp(steering, cfg.SteeringCenter-cfg.WallFollowSteerLimitDeg, cfg.SteeringCenter+cfg.WallFollowSteerLimitDeg)
	return decision.MotorCommand{Speed: cfg.NormalSpeed, Steering: steering}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
