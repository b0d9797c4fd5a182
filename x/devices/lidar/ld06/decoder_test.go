package ld06

import (
	"context"
	"testing"
	"time"
)

type stubSerial struct {
	data []byte
	pos  int
}

func (s *stubSerial) Read(p []byte) (int, error) {
	if s.pos >= len(s.data) {
		time.Sleep(5 * time.Millisecond)
		return 0, nil
	}
	n := copy(p, s.data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *stubSerial) Write(p []byte) (int, error) { return len(p), nil }
func (s *stubSerial) Buffered() int               { return 0 }

func TestCRC8(t *testing.T) {
	// Test CRC8 calculation
	b := []byte{0x54, 0x01, 0x00, 0x00}
	crc := crc8(b)
	if crc == 0 {
		t.Fatal("CRC should not be zero")
	}

	// Test that CRC validates correctly
	packet := append(b, crc)
	if crc8(packet[:len(packet)-1]) != packet[len(packet)-1] {
		t.Fatal("CRC validation failed")
	}
}

func TestParseAndAssembleFullRotation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ser := &stubSerial{}
	dev := New(ctx, ser)

	var stream []byte
	// Build packets that form a full rotation
	// Packet 1: 0° to 120°
	dist1 := make([]uint16, 10)
	int1 := make([]uint8, 10)
	for i := range dist1 {
		dist1[i] = uint16(1000 + i*10)
		int1[i] = 100
	}
	stream = append(stream, BuildMeasurementPacket(10.0, 0.0, 120.0, dist1, int1)...)

	// Packet 2: 120° to 240°
	dist2 := make([]uint16, 10)
	int2 := make([]uint8, 10)
	for i := range dist2 {
		dist2[i] = uint16(2000 + i*10)
		int2[i] = 100
	}
	stream = append(stream, BuildMeasurementPacket(10.0, 120.0, 240.0, dist2, int2)...)

	// Packet 3: 240° to 10° (wraparound - triggers rotation complete)
	dist3 := make([]uint16, 10)
	int3 := make([]uint8, 10)
	for i := range dist3 {
		dist3[i] = uint16(3000 + i*10)
		int3[i] = 100
	}
	stream = append(stream, BuildMeasurementPacket(10.0, 240.0, 10.0, dist3, int3)...)

	ser.data = stream

	dev.Start()

	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-tick.C:
			scan := dev.GetScan()
			if scan.Valid[0] {
				// Point at angle 0 comes from packet 1's first sample.
				dist, _, ok := scan.At(0)
				if !ok {
					t.Fatal("expected angle 0 to be valid")
				}
				if dist != 1000 {
					t.Fatalf("expected distance 1000 at angle 0, got %v", dist)
				}
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for scan")
		}
	}
}
