package strategies

import (
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
	"github.com/nthnlss/wro-brain/x/trackmap"
)

// Parking is a placeholder implementation of decision.ParkingStrategy: the
// original implementation this spec was distilled from leaves the parking
// maneuver itself unimplemented (see DESIGN.md), so this creeps forward at
// a fraction of slow speed for a fixed number of ticks, holding center
// steering, and then reports completion. Replace with a real
// marker-centering maneuver before competition use.
type Parking struct {
	ticks     int
	completed bool
}

const parkingCreepTicks = 75 // ~1.5s at 50Hz

// Compute implements decision.ParkingStrategy.
func (p *Parking) Compute(world perception.WorldState, track *trackmap.TrackMap, cfg decision.Config) decision.MotorCommand {
	if p.ticks >= parkingCreepTicks {
		p.completed = true
		return decision.MotorCommand{Speed: 0, Steering: cfg.SteeringCenter}
	}
	p.ticks++
	return decision.MotorCommand{Speed: cfg.SlowSpeed / 2, Steering: cfg.SteeringCenter}
}

// IsComplete implements decision.ParkingStrategy.
func (p *Parking) IsComplete() bool { return p.completed }

// Reset implements decision.ParkingStrategy.
func (p *Parking) Reset() {
	p.ticks = 0
	p.completed = false
}
