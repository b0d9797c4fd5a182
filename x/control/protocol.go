// Package control implements the real-time tick scheduler and the
// downstream motor controller link: the line-delimited ASCII protocol of
// spec §6, the watchdog-feeding keepalive cadence of §4.F, and the
// single-writer/many-reader target fields of §5.
package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire protocol line prefixes, §6.
const (
	cmdPrefixCommand = "C:"
	cmdEmergencyStop = "E"
	cmdResetEncoder  = "R"
	statusPrefix     = "S:"
	errorPrefix      = "E:"
)

// EncodeCommand formats a drive command line: "C:<speed>,<steering>\n".
// speed and steering are written as whole-number wire values; callers are
// responsible for having already clamped speed to [-100,100] and steering
// to [0,180].
func EncodeCommand(speed, steeringDeg float32) []byte {
	return []byte(fmt.Sprintf("%s%d,%d\n", cmdPrefixCommand, int(speed), int(steeringDeg)))
}

// EncodeEmergencyStop formats the "E\n" emergency-stop command.
func EncodeEmergencyStop() []byte {
	return []byte(cmdEmergencyStop + "\n")
}

// EncodeResetEncoder formats the "R\n" encoder-reset command.
func EncodeResetEncoder() []byte {
	return []byte(cmdResetEncoder + "\n")
}

// Status is a parsed "S:<encoder>,<speed>,<steering>" line from the
// controller.
type Status struct {
	EncoderPos int64
	Speed      float32
	SteeringDeg float32
}

// ParseStatus parses a status line, returning ok=false on any malformed
// input. The caller (MotorLink.PollStatus) discards a malformed line and
// keeps parsing the bytes after its newline; it does not clear the rest of
// its input buffer.
func ParseStatus(line string) (Status, bool) {
	line = strings.TrimSpace(line)
	body, ok := strings.CutPrefix(line, statusPrefix)
	if !ok {
		return Status{}, false
	}
	fields := strings.Split(body, ",")
	if len(fields) != 3 {
		return Status{}, false
	}
	encoder, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Status{}, false
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 32)
	if err != nil {
		return Status{}, false
	}
	steering, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 32)
	if err != nil {
		return Status{}, false
	}
	return Status{EncoderPos: encoder, Speed: float32(speed), SteeringDeg: float32(steering)}, true
}

// ParseErrorLine parses an "E:<code>" error line from the controller.
func ParseErrorLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	code, ok := strings.CutPrefix(line, errorPrefix)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}
