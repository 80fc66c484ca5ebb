package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/grindlemire/go-track/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testConfig(frames, boxes int) config.Config {
	return config.Config{
		FrameRate: 60,
		Logging:   config.Logging{Level: "warn"},
		Demo:      config.Demo{Boxes: boxes, Frames: frames, Width: 40, Height: 12},
	}
}

// advance moves clk forward one frame at a time until ctx ends.
func advance(ctx context.Context, clk *testclock.Clock, step time.Duration) {
	for ctx.Err() == nil {
		if err := clk.WaitAdvance(step, 50*time.Millisecond, 1); err != nil {
			continue
		}
	}
}

func TestDemo_RunsConfiguredFrames(t *testing.T) {
	clk := testclock.NewClock(epoch)
	var out bytes.Buffer
	d := &demo{cfg: testConfig(5, 2), log: zap.NewNop(), out: &out, clock: clk}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stepped := make(chan struct{})
	go func() {
		defer close(stepped)
		advance(ctx, clk, time.Second/60)
	}()

	sum, err := d.run(context.Background())
	cancel()
	<-stepped
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if sum.frames < 5 {
		t.Errorf("frames = %d, want at least 5", sum.frames)
	}
	if sum.faults != 0 {
		t.Errorf("faults = %d, want 0", sum.faults)
	}
	// panel, two boxes, and the first box against the cursor.
	if len(sum.final) != 4 {
		t.Fatalf("final entries = %d, want 4", len(sum.final))
	}
	if sum.reports == 0 || !strings.Contains(out.String(), "box1") {
		t.Errorf("no changes printed:\n%s", out.String())
	}

	// The panel sits 2 in and 1 down from the 40x12 viewport edges.
	if got := sum.final[0].relative.String(); got != "(2,1,2,1)" {
		t.Errorf("panel relative = %s, want (2,1,2,1)", got)
	}
}

func TestDemo_CancelStopsRun(t *testing.T) {
	clk := testclock.NewClock(epoch)
	d := &demo{cfg: testConfig(1000000, 1), log: zap.NewNop(), out: &bytes.Buffer{}, clock: clk}

	ctx, cancel := context.WithCancel(context.Background())
	stepped := make(chan struct{})
	go func() {
		defer close(stepped)
		advance(ctx, clk, time.Second/60)
	}()
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := d.run(ctx)
	<-stepped
	if !errors.Is(err, context.Canceled) {
		t.Errorf("run() error = %v, want context.Canceled", err)
	}
}

func TestRootCmd_Version(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("output %q does not contain version %q", out.String(), version)
	}
}

func TestRootCmd_RunRejectsBadFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--frame-rate", "500"})

	err := cmd.Execute()
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("Execute() error = %v, want config.ErrInvalid", err)
	}
}

func TestRenderSummary(t *testing.T) {
	s := summary{frames: 3, reports: 7, faults: 1, final: []report{{name: "panel"}}}
	got := renderSummary(s)
	for _, want := range []string{"3 frames", "7 changes", "1 faults", "panel"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}
