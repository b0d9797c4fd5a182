package strategies

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/perception"
)

func TestWallFollowCenteredCorridor(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	walls := perception.WallInfo{LeftMM: 400, RightMM: 400, HasLeft: true, HasRight: true}

	cmd := WallFollow{}.Compute(walls, cfg)

	require.InDelta(t, float64(60), float64(cmd.Speed), 0.001)
	require.InDelta(t, float64(90), float64(cmd.Steering), 0.001)
}

func TestWallFollowOffCenterCorridor(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	walls := perception.WallInfo{LeftMM: 300, RightMM: 500, HasLeft: true, HasRight: true}

	cmd := WallFollow{}.Compute(walls, cfg)

	require.InDelta(t, float64(60), float64(cmd.Speed), 0.001)
	require.InDelta(t, float64(120), float64(cmd.Steering), 0.001)
}

func TestWallFollowOnlyRightVisible(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	walls := perception.WallInfo{RightMM: 300, HasRight: true}

	cmd := WallFollow{}.Compute(walls, cfg)

	// 90 + 0.5*(300-150) = 165, clamped to the 90+30 steering limit.
	require.InDelta(t, float64(90+30), float64(cmd.Steering), 0.001)
}

func TestAvoidanceRedPillarAhead(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	world := perception.WorldState{Pillars: []perception.Pillar{{Color: perception.ColorRed, AngleDeg: 12, DistanceMM: 500}}}
	ctx := decision.AvoidCtx{AvoidingColor: perception.ColorRed}

	cmd := Avoidance{}.Compute(world, ctx, cfg)

	require.InDelta(t, float64(35), float64(cmd.Speed), 0.001)
	require.InDelta(t, float64(34), float64(cmd.Steering), 1)
}

func TestAvoidanceGreenSteersRight(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	world := perception.WorldState{Pillars: []perception.Pillar{{Color: perception.ColorGreen, AngleDeg: 0, DistanceMM: 800}}}
	ctx := decision.AvoidCtx{AvoidingColor: perception.ColorGreen}

	cmd := Avoidance{}.Compute(world, ctx, cfg)

	require.Greater(t, cmd.Steering, cfg.SteeringCenter)
}

func TestAvoidanceBlindHold(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	ctx := decision.AvoidCtx{AvoidingColor: perception.ColorRed}

	cmd := Avoidance{}.Compute(perception.WorldState{}, ctx, cfg)

	require.InDelta(t, float64(35), float64(cmd.Speed), 0.001)
	require.InDelta(t, float64(10), float64(cmd.Steering), 0.001)
}

func TestCornerTurnOffset(t *testing.T) {
	cfg := decision.NewConfig(params.Default())

	left := Corner{}.Compute(perception.CornerLeft, cfg)
	require.InDelta(t, float64(65), float64(left.Steering), 0.001)

	right := Corner{}.Compute(perception.CornerRight, cfg)
	require.InDelta(t, float64(115), float64(right.Steering), 0.001)
}

func TestParkingCompletesAfterCreep(t *testing.T) {
	cfg := decision.NewConfig(params.Default())
	p := &Parking{}

	for i := 0; i < parkingCreepTicks; i++ {
		require.False(t, p.IsComplete())
		p.Compute(perception.WorldState{}, nil, cfg)
	}
	p.Compute(perception.WorldState{}, nil, cfg)
	require.True(t, p.IsComplete())

	p.Reset()
	require.False(t, p.IsComplete())
}
