package control

import (
	"bytes"
	"math"
	"sync/atomic"
	"time"

	"github.com/nthnlss/wro-brain/pkg/logger"
	"github.com/nthnlss/wro-brain/x/devices"
)

// MotorLink owns the serial connection to the downstream motor controller.
// Two writers touch it per §5: the tick loop (SetTarget only) and the
// keepalive activity (Retransmit, which reads the target and owns the
// serial port after connect). Target fields are atomic at field
// granularity so neither writer needs a lock.
type MotorLink struct {
	serial devices.Serial
	buf    []byte

	invertedServo bool

	targetSpeedBits    atomic.Uint32
	targetSteeringBits atomic.Uint32

	Telemetry *Telemetry
}

// NewMotorLink wraps serial with the line protocol, centering steering at
// 90 until the first SetTarget call. invertedServo applies the §6 wire
// adapter ("180 - steering") when the physical servo is mounted reversed;
// it never changes the core's internal <90-left/>90-right convention.
func NewMotorLink(serial devices.Serial, invertedServo bool, telemetry *Telemetry) *MotorLink {
	m := &MotorLink{
		serial:        serial,
		invertedServo: invertedServo,
		Telemetry:     telemetry,
	}
	m.SetTarget(0, 90)
	return m
}

// SetTarget publishes a new target (speed, steering). Called by the tick
// loop only.
func (m *MotorLink) SetTarget(speed, steeringDeg float32) {
	m.targetSpeedBits.Store(math.Float32bits(speed))
	m.targetSteeringBits.Store(math.Float32bits(steeringDeg))
}

// Target returns the currently published target.
func (m *MotorLink) Target() (speed, steeringDeg float32) {
	return math.Float32frombits(m.targetSpeedBits.Load()), math.Float32frombits(m.targetSteeringBits.Load())
}

func (m *MotorLink) wireSteering(steeringDeg float32) float32 {
	if m.invertedServo {
		return 180 - steeringDeg
	}
	return steeringDeg
}

// Retransmit re-sends the current target to satisfy the controller's
// watchdog. It never alters the target, only encodes and writes it; called
// by the keepalive activity on its fixed cadence.
func (m *MotorLink) Retransmit() error {
	speed, steering := m.Target()
	_, err := m.serial.Write(EncodeCommand(speed, m.wireSteering(steering)))
	return err
}

// EmergencyStop immediately writes the "E\n" command, bypassing the target
// fields entirely.
func (m *MotorLink) EmergencyStop() error {
	_, err := m.serial.Write(EncodeEmergencyStop())
	return err
}

// ResetEncoder writes the "R\n" command.
func (m *MotorLink) ResetEncoder() error {
	_, err := m.serial.Write(EncodeResetEncoder())
	return err
}

// PollStatus drains whatever is currently available on the serial port
// without blocking: the tick thread must never wait on the downstream
// link. Each call reads until the underlying Serial.Read reports no more
// bytes this round, reassembling lines across calls via an internal
// leftover buffer. A malformed line is discarded (the buffer is simply
// advanced past it) rather than aborting the scan, per §7's protocol-fault
// handling, and the most recent successfully parsed status is returned.
func (m *MotorLink) PollStatus(now time.Time) (Status, bool) {
	var last Status
	var ok bool

	tmp := make([]byte, 256)
	for {
		n, err := m.serial.Read(tmp)
		if n > 0 {
			m.buf = append(m.buf, tmp[:n]...)
		}
		for {
			idx := bytes.IndexByte(m.buf, '\n')
			if idx < 0 {
				break
			}
			line := string(m.buf[:idx])
			m.buf = m.buf[idx+1:]

			if status, parsed := ParseStatus(line); parsed {
				last, ok = status, true
				if m.Telemetry != nil {
					m.Telemetry.Update(status.EncoderPos, now)
				}
				continue
			}
			if code, isErr := ParseErrorLine(line); isErr {
				logger.Log.Warn().Str("code", code).Msg("motor controller reported an error")
				continue
			}
			if line != "" {
				logger.Log.Debug().Str("line", line).Msg("discarding malformed motor status line")
			}
		}
		if n == 0 || err != nil {
			break
		}
	}
	return last, ok
}
