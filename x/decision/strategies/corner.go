package strategies

import (
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
)

// Corner is the threshold turn strategy: a fixed steering offset in the
// detected direction at slow speed.
type Corner struct{}

// Compute implements decision.CornerStrategy.
func (Corner) Compute(dir perception.CornerDirection, cfg decision.Config) decision.MotorCommand {
	steering := cfg.SteeringCenter
	switch dir {
	case perception.CornerLeft:
		steering -= cfg.CornerTurnOffsetDeg
	case perception.CornerRight:
		steering += cfg.CornerTurnOffsetDeg
	}
	return decision.MotorCommand{Speed: cfg.SlowSpeed, Steering: steering}
}
