package ld06

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/nthnlss/wro-brain/x/devices"
	"github.com/nthnlss/wro-brain/x/perception"
)

// Device streams LD06 packets over a serial link and assembles them into
// full-rotation scans, implementing perception.ScanProvider. It owns its own
// read goroutine and hands back self-consistent snapshots safe to call from
// the tick thread.
type Device struct {
	ser    devices.Serial
	ctx    context.Context
	cancel func()

	// parser state
	buf      []byte
	building perception.Scan

	// rotation detection
	lastEndAngleDeg float64
	rotationStarted bool

	mu        sync.Mutex
	latest    perception.Scan
	startOnce sync.Once
}

// New creates an LD06 driver reading from ser. The internal read loop starts
// in Start and stops when ctx is done.
func New(ctx context.Context, ser devices.Serial) *Device {
	cctx, cancel := context.WithCancel(ctx)
	return &Device{
		ser:             ser,
		ctx:             cctx,
		cancel:          cancel,
		buf:             make([]byte, 0, 4096),
		lastEndAngleDeg: -1,
	}
}

// Close stops the internal read loop.
func (d *Device) Close() {
	if d.cancel != nil {
		d.cancel()
	}
}

// Start begins the internal read loop. Safe to call more than once; only
// the first call has an effect.
func (d *Device) Start() {
	d.startOnce.Do(func() {
		go d.readLoop()
	})
}

// GetScan implements perception.ScanProvider, returning the most recently
// completed full rotation. Before the first rotation completes it returns a
// zero-value Scan (no angle marked Valid), which Fuse degrades to gracefully.
func (d *Device) GetScan() perception.Scan {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest
}

func (d *Device) readLoop() {
	tmp := make([]byte, 1024)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}
		n, err := d.ser.Read(tmp)
		if n > 0 {
			d.buf = append(d.buf, tmp[:n]...)
			for {
				consumed := d.consumeOnePacket()
				if consumed == 0 {
					break
				}
				copy(d.buf, d.buf[consumed:])
				d.buf = d.buf[:len(d.buf)-consumed]
			}
		}
		if err != nil {
			if err == io.EOF {
				return
			}
			// continue on transient errors
		}
	}
}

func (d *Device) consumeOnePacket() int {
	const header = 0x54
	i := 0
	for i < len(d.buf) && d.buf[i] != header {
		i++
	}
	if i > 0 {
		return i
	}
	if len(d.buf) < 2 {
		return 0
	}

	// Data length (byte 1)
	dataLen := int(d.buf[1])
	if dataLen == 0 || dataLen > 255 {
		return 1 // skip invalid header
	}

	// Packet length = 6 (header + len + speed + startAngle) + 3*dataLen + 2 (endAngle) + 2 (timestamp) + 1 (CRC)
	packetLen := 6 + 3*dataLen + 2 + 2 + 1
	if len(d.buf) < packetLen {
		return 0 // wait for more data
	}

	packet := d.buf[:packetLen]

	// Verify CRC8
	expectedCRC := packet[packetLen-1]
	if crc8(packet[:packetLen-1]) != expectedCRC {
		return 1 // bad CRC, skip header
	}

	// 4-5: start angle (0.01° units, int16)
	startAngleRaw := int16(binary.LittleEndian.Uint16(packet[4:6]))
	startAngleDeg := float64(startAngleRaw) * 0.01

	// 6..(6+3n-1): data points
	// (6+3n)..(6+3n+1): end angle
	endAngleRaw := int16(binary.LittleEndian.Uint16(packet[6+3*dataLen : 6+3*dataLen+2]))
	endAngleDeg := float64(endAngleRaw) * 0.01

	// Normalize angles to [0, 360)
	startAngleDeg = normalizeAngle(startAngleDeg)
	endAngleDeg = normalizeAngle(endAngleDeg)

	// Check for rotation completion: if end angle < start angle (wraparound)
	// LD06 sends packets continuously; a full rotation is detected when
	// the end angle wraps around (e.g., end=10°, start=350°)
	rotationComplete := false
	if d.rotationStarted && d.lastEndAngleDeg >= 0 {
		angleDiff := endAngleDeg - d.lastEndAngleDeg
		if angleDiff < -180 {
			// Wrapped around (e.g., lastEnd=350°, end=10°)
			rotationComplete = true
		} else if startAngleDeg > endAngleDeg+180 {
			// Start angle is much larger than end angle (wraparound in this packet)
			rotationComplete = true
		}
	} else {
		d.rotationStarted = true
	}

	// Linear interpolation of angles between start and end
	angleSpan := endAngleDeg - startAngleDeg
	if angleSpan < -180 {
		angleSpan += 360 // handle wraparound
	}
	angleStep := angleSpan / float64(dataLen)

	for i := 0; i < dataLen; i++ {
		// Distance (mm, uint16, little-endian)
		offset := 6 + 3*i
		distMm := uint16(packet[offset]) | (uint16(packet[offset+1]) << 8)
		intensity := packet[offset+2]

		angle := startAngleDeg + angleStep*float64(i)
		angle = normalizeAngle(angle)

		d.building.Set(int(math.Round(angle)), float32(distMm), float32(intensity))
	}

	d.lastEndAngleDeg = endAngleDeg

	// If rotation complete, publish and start a fresh one.
	if rotationComplete {
		d.emitScan()
	}

	return packetLen
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

func (d *Device) emitScan() {
	d.mu.Lock()
	d.latest = d.building
	d.mu.Unlock()

	d.building = perception.Scan{}
	d.rotationStarted = false
	d.lastEndAngleDeg = -1
}
