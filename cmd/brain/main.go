// Command brain wires the perception -> fusion -> decision -> actuation
// core into a runnable process. It is a thin wiring demo, not a feature of
// the core: the scan and blob providers are the external camera/LIDAR
// collaborators specified only by their interfaces in §4.A, and this
// binary falls back to stub providers when none are configured so the
// pipeline can still be exercised end to end against the motor link.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nthnlss/wro-brain/pkg/logger"
	"github.com/nthnlss/wro-brain/pkg/params"
	"github.com/nthnlss/wro-brain/x/control"
	"github.com/nthnlss/wro-brain/x/decision"
	"github.com/nthnlss/wro-brain/x/decision/strategies"
	"github.com/nthnlss/wro-brain/x/devices"
	"github.com/nthnlss/wro-brain/x/devices/lidar/ld06"
	"github.com/nthnlss/wro-brain/x/perception"
	"github.com/nthnlss/wro-brain/x/trackmap"
)

var (
	motorPort     = flag.String("motor-port", "", "Serial device for the downstream motor controller (e.g. /dev/ttyUSB0)")
	motorBaud     = flag.Int("motor-baud", 115200, "Motor controller serial baud rate")
	invertedServo = flag.Bool("inverted-servo", false, "Apply the 180-steering wire transform for a reverse-wired steering servo")
	keepaliveMs   = flag.Int("keepalive-ms", 20, "Motor watchdog keepalive period in milliseconds")
	lidarPort     = flag.String("lidar-port", "", "Serial device for the LD06 LIDAR (e.g. /dev/ttyUSB1); omit to run without a scan provider")
)

// nullScanProvider stands in for the LIDAR collaborator when none is wired;
// it returns an always-empty scan, which Fuse degrades to gracefully.
type nullScanProvider struct{}

func (nullScanProvider) GetScan() perception.Scan { return perception.Scan{} }

// nullBlobProvider stands in for the camera collaborator when none is
// wired.
type nullBlobProvider struct{}

func (nullBlobProvider) GetBlobs() []perception.ColorBlob { return nil }

// nullEncoderProvider stands in for the drivetrain encoder when the motor
// controller's own status line isn't feeding one back yet.
type nullEncoderProvider struct{}

func (nullEncoderProvider) GetEncoder() int64 { return 0 }

func main() {
	flag.Parse()

	if *motorPort == "" {
		logger.Log.Error().Msg("motor-port is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ser, err := devices.NewTarmSerial(*motorPort, *motorBaud, 5*time.Millisecond)
	if err != nil {
		logger.Log.Error().Err(err).Str("port", *motorPort).Msg("failed to open motor serial port")
		os.Exit(1)
	}
	defer ser.Close()

	paramStore := params.NewStore()
	p := paramStore.Snapshot()

	telemetry := control.NewTelemetry(p.WheelDiameterMM, p.EncoderCountsPerRev)
	motor := control.NewMotorLink(ser, *invertedServo, telemetry)

	machine := decision.New(
		strategies.WallFollow{},
		strategies.Avoidance{},
		strategies.Corner{},
		&strategies.Parking{},
	)

	var scan perception.ScanProvider = nullScanProvider{}
	if *lidarPort != "" {
		lidarSer, err := devices.NewSerial(*lidarPort)
		if err != nil {
			logger.Log.Error().Err(err).Str("port", *lidarPort).Msg("failed to open LIDAR serial port")
			os.Exit(1)
		}
		defer lidarSer.Close()

		lidar := ld06.New(ctx, lidarSer)
		lidar.Start()
		defer lidar.Close()
		scan = lidar
	}

	sched := &control.Scheduler{
		Scan:    scan,
		Blobs:   nullBlobProvider{},
		Encoder: nullEncoderProvider{},
		Fuser:   perception.NewFuser(),
		Track:   trackmap.New(),
		Machine: machine,
		Params:  paramStore,
		Motor:   motor,
	}

	errCh := make(chan error, 2)
	go func() { errCh <- sched.Run(ctx) }()
	go func() { errCh <- sched.RunKeepalive(ctx, time.Duration(*keepaliveMs)*time.Millisecond) }()

	select {
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Log.Error().Err(err).Msg("scheduler exited with error")
		}
	case <-ctx.Done():
	}

	sched.Stop()
	logger.Log.Info().Msg("brain shutting down")
}
