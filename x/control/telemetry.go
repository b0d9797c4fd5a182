package control

import (
	"sync"
	"time"
)

// Telemetry is derived motor status computed from encoder deltas between
// status lines: RPM, linear speed, and cumulative distance. It is read-only
// side information — it never feeds back into WorldState or the state
// machine, per §2's one-way-within-a-tick control flow.
type Telemetry struct {
	mu sync.Mutex

	wheelDiameterMM     float32
	encoderCountsPerRev int

	lastEncoder int64
	lastTime    time.Time
	hasLast     bool

	rpm          float32
	speedCmPerS  float32
	distanceCm   float32
}

// NewTelemetry returns a Telemetry tracker for the given drivetrain
// geometry.
func NewTelemetry(wheelDiameterMM float32, encoderCountsPerRev int) *Telemetry {
	return &Telemetry{
		wheelDiameterMM:     wheelDiameterMM,
		encoderCountsPerRev: encoderCountsPerRev,
	}
}

// smoothingAlpha weights the new sample against the running average:
// 0.7*old + 0.3*new, matching the original's exponential moving average.
const smoothingAlpha = 0.3

// Update folds in one status line's encoder reading.
func (t *Telemetry) Update(encoderPos int64, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.hasLast {
		t.lastEncoder = encoderPos
		t.lastTime = now
		t.hasLast = true
		return
	}

	dt := now.Sub(t.lastTime).Seconds()
	if dt <= 0 || t.encoderCountsPerRev <= 0 {
		t.lastEncoder = encoderPos
		t.lastTime = now
		return
	}

	deltaTicks := encoderPos - t.lastEncoder
	revsPerSec := float32(float64(deltaTicks)/float64(t.encoderCountsPerRev)) / float32(dt)
	newRPM := revsPerSec * 60
	circumferenceCm := 3.14159265 * t.wheelDiameterMM / 10

	t.rpm = smoothingAlpha*newRPM + (1-smoothingAlpha)*t.rpm
	t.speedCmPerS = t.rpm / 60 * circumferenceCm
	t.distanceCm += float32(deltaTicks) / float32(t.encoderCountsPerRev) * circumferenceCm

	t.lastEncoder = encoderPos
	t.lastTime = now
}

// Snapshot returns the current derived telemetry values.
func (t *Telemetry) Snapshot() (rpm, speedCmPerS, distanceCm float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rpm, t.speedCmPerS, t.distanceCm
}
