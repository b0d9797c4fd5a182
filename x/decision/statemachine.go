package decision

import (
	"github.com/nthnlss/wro-brain/pkg/logger"
	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/perception"
	"github.com/nthnlss/wro-brain/x/trackmap"
)

// StateMachine holds the current discrete state, enforces priority
// transitions with hysteresis, and dispatches each tick to the active
// state's strategy. It is owned exclusively by the tick loop; no external
// mutation.
type StateMachine struct {
	WallFollow WallFollowStrategy
	Avoidance  AvoidanceStrategy
	Corner     CornerStrategy
	Parking    ParkingStrategy

	state     RobotState
	direction trackmap.Direction
	avoid     AvoidCtx
	lapCount  int

	// cornerExitCount counts every Corner -> WallFollow transition (one
	// per corner actually driven through, lap after lap); TrackMap.corners
	// freezes after the first lap, so lap counting can't key off it past
	// that point.
	cornerExitCount int
}

// New returns a StateMachine in the Idle state, wired with the given
// strategy set.
func New(wallFollow WallFollowStrategy, avoidance AvoidanceStrategy, corner CornerStrategy, parking ParkingStrategy) *StateMachine {
	return &StateMachine{
		WallFollow: wallFollow,
		Avoidance:  avoidance,
		Corner:     corner,
		Parking:    parking,
		state:      StateIdle,
	}
}

// State reports the current discrete state.
func (m *StateMachine) State() RobotState { return m.state }

// LapCount reports the number of completed laps.
func (m *StateMachine) LapCount() int { return m.lapCount }

// Start moves Idle -> WallFollow and resets lap/avoidance counters. It is a
// no-op once the machine has left Idle.
func (m *StateMachine) Start() {
	if m.state != StateIdle {
		return
	}
	m.state = StateWallFollow
	m.lapCount = 0
	m.avoid = AvoidCtx{}
	logger.Log.Info().Msg("state machine started: wall_follow")
}

func (m *StateMachine) transitionTo(next RobotState) {
	if next == m.state {
		return
	}
	logger.Log.Info().Str("from", m.state.String()).Str("to", next.String()).Msg("state transition")
	m.state = next
}

// Decide runs one tick of the priority-ordered transition table against
// world and track, then dispatches to the active strategy. It is a pure
// function of (state, world, track, p) aside from the state machine's own
// internal bookkeeping (avoid-frame counters, lap count, latched
// direction), matching §4.E's determinism requirement for identical input
// sequences.
func (m *StateMachine) Decide(world perception.WorldState, track *trackmap.TrackMap, p params.Parameters) MotorCommand {
	if m.state == StateIdle || m.state == StateDone {
		return MotorCommand{Speed: 0, Steering: p.SteeringCenter}
	}

	cfg := NewConfig(p)

	if m.direction == trackmap.DirectionUnknown {
		if d := track.Direction(); d != trackmap.DirectionUnknown {
			m.direction = d
		}
	}

	m.evaluateTransitions(world, track, p)

	switch m.state {
	case StateWallFollow:
		return m.WallFollow.Compute(world.Walls, cfg)
	case StateAvoidPillar:
		return m.Avoidance.Compute(world, m.avoid, cfg)
	case StateCorner:
		return m.Corner.Compute(world.CornerAhead, cfg)
	case StateParking:
		return m.Parking.Compute(world, track, cfg)
	case StateIdle, StateDone:
		// A transition landed here mid-tick (e.g. Corner -> Done on the
		// final lap); there is no strategy for a terminal state.
		return MotorCommand{Speed: 0, Steering: p.SteeringCenter}
	default:
		// Unreachable: the logic fault case in §7. Force back to
		// WallFollow rather than propagate an undefined command.
		logger.Log.Error().Str("state", m.state.String()).Msg("state machine reached an unhandled state; forcing wall_follow")
		m.state = StateWallFollow
		return m.WallFollow.Compute(world.Walls, cfg)
	}
}

func (m *StateMachine) evaluateTransitions(world perception.WorldState, track *trackmap.TrackMap, p params.Parameters) {
	switch m.state {
	case StateWallFollow:
		m.evaluateFromWallFollow(world, p)
	case StateAvoidPillar:
		m.evaluateFromAvoidPillar(world, p)
	case StateCorner:
		m.evaluateFromCorner(world, track, p)
	case StateParking:
		if m.Parking.IsComplete() {
			m.transitionTo(StateDone)
		}
	}
}

func (m *StateMachine) evaluateFromWallFollow(world perception.WorldState, p params.Parameters) {
	if pillar, ok := world.BlockingPillar(p.BlockingPillarAngleDeg); ok {
		m.avoid.reset(pillar.Color)
		m.transitionTo(StateAvoidPillar)
		return
	}
	if world.IsCornerApproaching() {
		m.transitionTo(StateCorner)
		return
	}
	if m.lapCount >= p.TargetLaps && world.IsParkingVisible() {
		m.Parking.Reset()
		m.transitionTo(StateParking)
	}
}

func (m *StateMachine) evaluateFromAvoidPillar(world perception.WorldState, p params.Parameters) {
	m.avoid.FramesInState++
	if m.avoid.FramesInState < p.MinAvoidFrames {
		// Mandatory hysteresis: without this the robot oscillates when
		// the pillar briefly leaves the camera's FOV mid-pass.
		return
	}

	updateAvoidPhase(&m.avoid, world, 300, 400)

	pillar, visible := findPillar(world, m.avoid.AvoidingColor)
	cleared := false
	switch {
	case !visible && m.avoid.FramesInState > 2*p.MinAvoidFrames:
		cleared = true
	case visible && pillar.DistanceMM > p.ClearDistanceMM:
		cleared = true
	case visible:
		angle := pillar.AngleDeg
		if angle < 0 {
			angle = -angle
		}
		if angle > p.ClearAngleDeg {
			cleared = true
		}
	}
	if cleared {
		m.transitionTo(StateWallFollow)
	}
}

func (m *StateMachine) evaluateFromCorner(world perception.WorldState, track *trackmap.TrackMap, p params.Parameters) {
	if pillar, ok := world.BlockingPillar(p.BlockingPillarAngleDeg); ok {
		m.avoid.reset(pillar.Color)
		m.transitionTo(StateAvoidPillar)
		return
	}
	if world.CornerAhead == perception.CornerNone {
		m.cornerExitCount++
		if m.cornerExitCount%4 == 0 {
			m.lapCount++
			logger.Log.Info().Int("lap", m.lapCount).Msg("lap complete")
		}
		if m.lapCount >= p.TargetLaps {
			m.transitionTo(StateDone)
			return
		}
		m.transitionTo(StateWallFollow)
	}
}
