package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	require.Equal(t, "C:60,90\n", string(EncodeCommand(60, 90)))
	require.Equal(t, "C:-35,120\n", string(EncodeCommand(-35, 120)))
}

func TestEncodeEmergencyStopAndResetEncoder(t *testing.T) {
	require.Equal(t, "E\n", string(EncodeEmergencyStop()))
	require.Equal(t, "R\n", string(EncodeResetEncoder()))
}

func TestParseStatusValid(t *testing.T) {
	status, ok := ParseStatus("S:1234,60,90\n")
	require.True(t, ok)
	require.Equal(t, int64(1234), status.EncoderPos)
	require.Equal(t, float32(60), status.Speed)
	require.Equal(t, float32(90), status.SteeringDeg)
}

func TestParseStatusMalformed(t *testing.T) {
	for _, line := range []string{"S:1,2", "S:a,b,c", "garbage", "", "S:1,2,3,4"} {
		_, ok := ParseStatus(line)
		require.False(t, ok, "line %q should not parse", line)
	}
}

func TestParseErrorLine(t *testing.T) {
	code, ok := ParseErrorLine("E:03\n")
	require.True(t, ok)
	require.Equal(t, "03", code)

	_, ok = ParseErrorLine("S:1,2,3")
	require.False(t, ok)
}
