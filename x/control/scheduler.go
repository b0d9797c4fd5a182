package control

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nthnlss/wro-brain/pkg/logger"
	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
	"github.com/nthnlss/wro-brain/x/trackmap"
)

// statsLogInterval is how often (in seconds) the scheduler logs a one-line
// status summary, mirroring the original's periodic stats logging.
const statsLogInterval = 5 // * control_loop_hz ticks, computed at Run time

// Scheduler drives the perception -> fusion -> track -> decide -> actuate
// pipeline at a fixed frequency and coordinates the separate watchdog
// keepalive cadence, per §4.F and §5. The tick loop is the sole writer to
// TrackMap and StateMachine.
type Scheduler struct {
	Scan     perception.ScanProvider
	Blobs    perception.BlobProvider
	Encoder  perception.EncoderProvider
	Fuser    perception.Fuser
	Track    *trackmap.TrackMap
	Machine  *decision.StateMachine
	Params   *params.Store
	Motor    *MotorLink

	// OnWorldState, if set, is called with each tick's fused snapshot —
	// the publish-for-observers step in §4.F. It must not block; this is
	// the extension point a web debug server or recorder would hang off,
	// both out of core scope.
	OnWorldState func(perception.WorldState)

	running   atomic.Bool
	ticks     int64
	lastWorld perception.WorldState
}

// Running reports whether the scheduler has been started and has not yet
// observed StateDone (or been stopped externally).
func (s *Scheduler) Running() bool { return s.running.Load() }

// Stop signals both Run and RunKeepalive to exit at their next boundary
// check, mirroring the single `running` flag cancellation model of §5.
func (s *Scheduler) Stop() { s.running.Store(false) }

// Run executes the tick loop at p.ControlLoopHz until the state machine
// reaches StateDone, ctx is canceled, or Stop is called. On exit it forces
// the motor target to (0, center) and sends a final stop command, per §5's
// shutdown contract.
func (s *Scheduler) Run(ctx context.Context) error {
	s.running.Store(true)
	s.Machine.Start()

	p := s.Params.Snapshot()
	period := time.Duration(float64(time.Second) / p.ControlLoopHz)
	next := time.Now().Add(period)
	statsEvery := int64(statsLogInterval * p.ControlLoopHz)

	defer s.shutdown(p)

	for s.running.Load() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		p = s.Params.Snapshot()
		s.tick(p)
		s.ticks++

		if statsEvery > 0 && s.ticks%statsEvery == 0 {
			s.logStats()
		}

		if s.Machine.State() == decision.StateDone {
			logger.Log.Info().Msg("state machine reached done; stopping tick loop")
			s.running.Store(false)
			break
		}

		sleep := time.Until(next)
		if sleep > 0 {
			time.Sleep(sleep)
		} else {
			logger.Log.Debug().Dur("overrun", -sleep).Msg("tick loop overran its budget")
		}
		next = next.Add(period)
		if sleep < 0 {
			// Absorb negative slack without trying to catch up multiple
			// missed periods in a burst.
			next = time.Now().Add(period)
		}
	}
	return nil
}

func (s *Scheduler) tick(p params.Parameters) {
	defer func() {
		if r := recover(); r != nil {
			// A fault inside fusion/clustering/decide aborts only this
			// tick, per §7; the next tick re-enters cleanly.
			logger.Log.Error().Interface("panic", r).Msg("tick aborted by unexpected fault")
		}
	}()

	now := time.Now()
	if s.Motor != nil {
		s.Motor.PollStatus(now)
	}

	scan := perception.Scan{}
	if s.Scan != nil {
		scan = s.Scan.GetScan()
	}
	var blobs []perception.ColorBlob
	if s.Blobs != nil {
		blobs = s.Blobs.GetBlobs()
	}
	var encoder int64
	if s.Encoder != nil {
		encoder = s.Encoder.GetEncoder()
	}

	world := s.Fuser.Fuse(scan, blobs, encoder, p, now)
	s.lastWorld = world

	if s.OnWorldState != nil {
		s.OnWorldState(world)
	}

	s.Track.Update(world, p)
	cmd := s.Machine.Decide(world, s.Track, p)

	if s.Motor != nil {
		s.Motor.SetTarget(cmd.Speed, cmd.Steering)
	}
}

func (s *Scheduler) logStats() {
	logger.Log.Info().
		Str("state", s.Machine.State().String()).
		Int("lap", s.Machine.LapCount()).
		Int64("tick", s.ticks).
		Int64("encoder", s.lastWorld.EncoderPos).
		Float32("front_mm", s.lastWorld.Walls.FrontMM).
		Msg("tick loop status")
}

func (s *Scheduler) shutdown(p params.Parameters) {
	if s.Motor == nil {
		return
	}
	s.Motor.SetTarget(0, p.SteeringCenter)
	if err := s.Motor.Retransmit(); err != nil {
		logger.Log.Error().Err(err).Msg("failed to send final stop command")
	}
	if err := s.Motor.EmergencyStop(); err != nil {
		logger.Log.Error().Err(err).Msg("failed to send emergency stop")
	}
}

// RunKeepalive re-sends the current motor target every period so the
// downstream watchdog is fed even if the tick loop briefly exceeds its
// budget (e.g. during clustering). It never alters the target, only
// retransmits it, and drains incoming status frames on its own cadence so
// a paused tick loop doesn't starve the controller link.
func (s *Scheduler) RunKeepalive(ctx context.Context, period time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.running.Load() {
				continue
			}
			if s.Motor == nil {
				continue
			}
			if err := s.Motor.Retransmit(); err != nil {
				logger.Log.Error().Err(err).Msg("keepalive retransmit failed")
			}
			s.Motor.PollStatus(time.Now())
		}
	}
}
