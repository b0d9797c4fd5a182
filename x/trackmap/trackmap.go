// Package trackmap accumulates corner positions, corridor widths, pillar
// locations, and the parking zone during the first lap of a race, then
// answers lookahead queries against the frozen map on later laps.
package trackmap

import (
	"github.com/nthnlss/wro-brain/pkg/logger"
	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/perception"
)

// Direction is the track's rotational sense, latched once it can be
// inferred from the first corner encountered.
type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionCW
	DirectionCCW
)

// Side is which side of the track a pillar record sits on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Corner is a recorded turn, indexed by encoder position.
type Corner struct {
	EncoderPos int64
	Direction  perception.CornerDirection
}

// Section is a stretch of track between two corners, carrying the running
// average corridor width observed while driving it.
type Section struct {
	StartEncoder int64
	EndEncoder   int64
	AvgWidthMM   float32

	sampleSum   float32
	sampleCount int
}

// PillarRecord is a remembered colored marker, keyed by encoder position.
type PillarRecord struct {
	EncoderPos int64
	Color      perception.Color
	Side       Side
	AngleDeg   float32
}

// ParkingZone is the encoder range where the parking strategy should
// engage.
type ParkingZone struct {
	StartEncoder int64
	EndEncoder   int64
}

// TrackMap is the single-writer, tick-loop-owned map of the track. It
// starts in the Building phase and becomes read-only (Finalized) once the
// fourth corner of the first lap is recorded.
type TrackMap struct {
	direction Direction
	corners   []Corner
	sections  []Section
	pillars   []PillarRecord
	parking   *ParkingZone

	lapLength        int64
	hasLapLength     bool
	firstLapComplete bool

	started          bool
	lapStartEncoder  int64
	lastCornerEncoder int64
	hasLastCorner    bool
}

// New returns an empty, Building TrackMap.
func New() *TrackMap {
	return &TrackMap{}
}

// Direction reports the latched track rotational sense.
func (m *TrackMap) Direction() Direction { return m.direction }

// FirstLapComplete reports whether the map has converted to read-only.
func (m *TrackMap) FirstLapComplete() bool { return m.firstLapComplete }

// LapLength returns the recorded lap length in encoder ticks, if set.
func (m *TrackMap) LapLength() (int64, bool) { return m.lapLength, m.hasLapLength }

// CornerCount returns the number of recorded corners.
func (m *TrackMap) CornerCount() int { return len(m.corners) }

// Update consumes one tick's WorldState. It is a no-op once
// FirstLapComplete is true, per the map's mutable-then-frozen lifecycle.
func (m *TrackMap) Update(w perception.WorldState, p params.Parameters) {
	if m.firstLapComplete {
		return
	}

	if !m.started {
		m.started = true
		m.lapStartEncoder = w.EncoderPos
		m.sections = append(m.sections, Section{StartEncoder: w.EncoderPos})
	}

	if m.direction == DirectionUnknown && w.CornerAhead != perception.CornerNone {
		if w.CornerAhead == perception.CornerRight {
			m.direction = DirectionCW
		} else {
			m.direction = DirectionCCW
		}
	}

	if w.CornerAhead != perception.CornerNone {
		if !m.hasLastCorner || w.EncoderPos-m.lastCornerEncoder > p.CornerToleranceTicks {
			m.addCorner(w.EncoderPos, w.CornerAhead)
		}
	}

	if width, ok := w.Walls.CorridorWidthMM(); ok && len(m.sections) > 0 {
		cur := &m.sections[len(m.sections)-1]
		cur.sampleSum += width
		cur.sampleCount++
		cur.AvgWidthMM = cur.sampleSum / float32(cur.sampleCount)
	}

	for _, pillar := range w.Pillars {
		m.addPillarIfNew(pillar, w.EncoderPos, p)
	}

	if w.HasParkingMarker && m.parking == nil {
		zone := ParkingZone{StartEncoder: w.EncoderPos - 100, EndEncoder: w.EncoderPos + 300}
		m.parking = &zone
	}

	if len(m.corners) >= 4 && !m.hasLapLength {
		m.lapLength = w.EncoderPos - m.lapStartEncoder
		m.hasLapLength = true
		m.firstLapComplete = true
		logger.Log.Info().Int64("lap_length", m.lapLength).Msg("first lap complete")
	}
}

func (m *TrackMap) addCorner(encoderPos int64, dir perception.CornerDirection) {
	if len(m.sections) > 0 {
		cur := &m.sections[len(m.sections)-1]
		cur.EndEncoder = encoderPos
	}
	m.corners = append(m.corners, Corner{EncoderPos: encoderPos, Direction: dir})
	m.lastCornerEncoder = encoderPos
	m.hasLastCorner = true
	m.sections = append(m.sections, Section{StartEncoder: encoderPos})
	logger.Log.Debug().Int64("encoder", encoderPos).Int("count", len(m.corners)).Msg("corner recorded")
}

func (m *TrackMap) addPillarIfNew(pillar perception.Pillar, encoderPos int64, p params.Parameters) {
	if pillar.Color != perception.ColorRed && pillar.Color != perception.ColorGreen {
		return
	}
	for _, rec := range m.pillars {
		if rec.Color != pillar.Color {
			continue
		}
		d := encoderPos - rec.EncoderPos
		if d < 0 {
			d = -d
		}
		if d <= p.PillarToleranceTicks {
			return
		}
	}
	side := SideLeft
	if pillar.AngleDeg > 0 {
		side = SideRight
	}
	m.pillars = append(m.pillars, PillarRecord{
		EncoderPos: encoderPos,
		Color:      pillar.Color,
		Side:       side,
		AngleDeg:   pillar.AngleDeg,
	})
}

// normalize maps an encoder position into [0, lapLength) once the first
// lap has been recorded; before that it is returned unchanged relative to
// the lap start.
func (m *TrackMap) normalize(encoderPos int64) int64 {
	rel := encoderPos - m.lapStartEncoder
	if !m.hasLapLength || m.lapLength <= 0 {
		return rel
	}
	rel = rel % m.lapLength
	if rel < 0 {
		rel += m.lapLength
	}
	return rel
}

// NextCorner returns the distance (in encoder ticks, always non-negative)
// and direction of the next corner ahead of encoderPos. On the first lap
// this is a plain linear scan, and ok is false when no recorded corner lies
// ahead. On later laps the position is normalized modulo lap length with
// wraparound: the first corner strictly ahead wins, and if none are ahead,
// it wraps to the first corner overall.
func (m *TrackMap) NextCorner(encoderPos int64) (distance int64, direction perception.CornerDirection, ok bool) {
	if len(m.corners) == 0 {
		return 0, perception.CornerNone, false
	}
	if !m.hasLapLength {
		for _, c := range m.corners {
			if c.EncoderPos > encoderPos {
				return c.EncoderPos - encoderPos, c.Direction, true
			}
		}
		return 0, perception.CornerNone, false
	}

	pos := m.normalize(encoderPos)
	for _, c := range m.corners {
		cp := m.normalize(c.EncoderPos)
		if cp > pos {
			return cp - pos, c.Direction, true
		}
	}
	first := m.corners[0]
	cp := m.normalize(first.EncoderPos)
	return m.lapLength - pos + cp, first.Direction, true
}

// ExpectedPillars returns the pillar records within lookaheadTicks of
// encoderPos, using the same lap-normalized wraparound logic as
// NextCorner.
func (m *TrackMap) ExpectedPillars(encoderPos int64, lookaheadTicks int64) []PillarRecord {
	var out []PillarRecord
	if !m.hasLapLength {
		for _, rec := range m.pillars {
			if rec.EncoderPos > encoderPos && rec.EncoderPos-encoderPos <= lookaheadTicks {
				out = append(out, rec)
			}
		}
		return out
	}

	pos := m.normalize(encoderPos)
	for _, rec := range m.pillars {
		rp := m.normalize(rec.EncoderPos)
		d := rp - pos
		if d < 0 {
			d += m.lapLength
		}
		if d <= lookaheadTicks {
			out = append(out, rec)
		}
	}
	return out
}

// SectionWidth returns the recorded average corridor width for the section
// containing the (normalized) encoder position, if any sample was ever
// recorded for it.
func (m *TrackMap) SectionWidth(encoderPos int64) (float32, bool) {
	if len(m.sections) == 0 {
		return 0, false
	}
	if !m.hasLapLength {
		for _, s := range m.sections {
			if encoderPos >= s.StartEncoder && (s.EndEncoder == 0 || encoderPos < s.EndEncoder) {
				if s.sampleCount == 0 {
					return 0, false
				}
				return s.AvgWidthMM, true
			}
		}
		last := m.sections[len(m.sections)-1]
		if last.sampleCount == 0 {
			return 0, false
		}
		return last.AvgWidthMM, true
	}

	pos := m.normalize(encoderPos)
	for _, s := range m.sections {
		start := m.normalize(s.StartEncoder)
		end := m.normalize(s.EndEncoder)
		if start <= end {
			if pos >= start && pos < end {
				if s.sampleCount == 0 {
					return 0, false
				}
				return s.AvgWidthMM, true
			}
		} else if pos >= start || pos < end {
			if s.sampleCount == 0 {
				return 0, false
			}
			return s.AvgWidthMM, true
		}
	}
	return 0, false
}

// DistanceToParking returns the encoder ticks remaining until the parking
// zone start, if a parking zone has been latched.
func (m *TrackMap) DistanceToParking(encoderPos int64) (int64, bool) {
	if m.parking == nil {
		return 0, false
	}
	d := m.parking.StartEncoder - encoderPos
	if d < 0 {
		d = 0
	}
	return d, true
}

// ShouldPreparePlanning reports whether the vehicle is within
// thresholdTicks of the latched parking zone on the lap it is meant to
// park, per the original's lap-count-aware parking trigger.
func (m *TrackMap) ShouldPreparePlanning(encoderPos int64, lapCount int, targetLaps int, thresholdTicks int64) bool {
	if m.parking == nil {
		return false
	}
	if lapCount < targetLaps {
		return false
	}
	d, ok := m.DistanceToParking(encoderPos)
	if !ok {
		return false
	}
	return d <= thresholdTicks
}
