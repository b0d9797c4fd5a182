// Package decision holds the priority-ordered state machine and the
// swappable strategy set that turns a fused WorldState plus TrackMap into
// a single (speed, steering) MotorCommand each tick.
package decision

import "github.com/nthnlss/wro-brain/x/perception"

// RobotState is the discrete state driven by the state machine.
type RobotState int

const (
	StateIdle RobotState = iota
	StateWallFollow
	StateAvoidPillar
	StateCorner
	StateParking
	StateDone
)

func (s RobotState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateWallFollow:
		return "wall_follow"
	case StateAvoidPillar:
		return "avoid_pillar"
	case StateCorner:
		return "corner"
	case StateParking:
		return "parking"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// AvoidPhase tracks progress through a pillar pass, independent of (and in
// addition to) the frame-count/distance/angle clearance predicate that
// gates the state transition back to WallFollow.
type AvoidPhase int

const (
	AvoidApproach AvoidPhase = iota
	AvoidPassing
	AvoidClearing
)

// AvoidCtx is only valid while the state machine's current state is
// StateAvoidPillar. It is reset whenever AvoidPillar is entered.
type AvoidCtx struct {
	AvoidingColor perception.Color
	Phase         AvoidPhase
	FramesInState int
}

// reset reinitializes the context for a fresh pillar pass.
func (c *AvoidCtx) reset(color perception.Color) {
	c.AvoidingColor = color
	c.Phase = AvoidApproach
	c.FramesInState = 0
}

// updateAvoidPhase advances the distance-gated Approach->Passing->Clearing
// label from the pass, independent of the transition-back-to-WallFollow
// predicate in statemachine.go. Passing begins once the latched-color pillar
// closes inside passingDistanceMM; Clearing begins once it (or its
// disappearance) opens back past clearingDistanceMM.
func updateAvoidPhase(ctx *AvoidCtx, world perception.WorldState, passingDistanceMM, clearingDistanceMM float32) {
	pillar, visible := findPillar(world, ctx.AvoidingColor)
	switch ctx.Phase {
	case AvoidApproach:
		if visible && pillar.DistanceMM <= passingDistanceMM {
			ctx.Phase = AvoidPassing
		}
	case AvoidPassing:
		if !visible || pillar.DistanceMM >= clearingDistanceMM {
			ctx.Phase = AvoidClearing
		}
	case AvoidClearing:
		// Terminal label for the pass; the state transition (not this
		// phase) decides when to leave AvoidPillar entirely.
	}
}

func findPillar(world perception.WorldState, color perception.Color) (perception.Pillar, bool) {
	for _, p := range world.Pillars {
		if p.Color == color {
			return p, true
		}
	}
	return perception.Pillar{}, false
}

// MotorCommand is the state machine's per-tick output: a drive speed and a
// steering angle in the wire convention of §6 (steering_center=90, <90
// steer left, >90 steer right).
type MotorCommand struct {
	Speed    float32
	Steering float32
}
