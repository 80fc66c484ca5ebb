package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/juju/clock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	track "github.com/grindlemire/go-track"
	"github.com/grindlemire/go-track/internal/config"
	"github.com/grindlemire/go-track/internal/geom"
	"github.com/grindlemire/go-track/internal/scene"
)

// report is one change delivered by a listener.
type report struct {
	frame    uint64
	name     string
	relative track.Position
	size     track.Size
}

// summary is what a finished run prints.
type summary struct {
	frames  uint64
	reports int
	faults  int
	final   []report
}

type demo struct {
	cfg   config.Config
	log   *zap.Logger
	out   io.Writer
	clock clock.Clock
}

// cursor is a virtual rectangle sweeping across the viewport, standing in
// for something the scene does not own (a pointer, a drag preview).
type cursor struct {
	mu    sync.Mutex
	pos   track.Position
	step  float64
	limit float64
}

func (c *cursor) Snapshot() track.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *cursor) advance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pos.Right+c.step > c.limit || c.pos.Left+c.step < 0 {
		c.step = -c.step
	}
	c.pos.Left += c.step
	c.pos.Right += c.step
}

// run animates the scene for cfg.Demo.Frames frames, streaming every
// reported change to d.out. It returns early with ctx's error when ctx is
// cancelled.
func (d *demo) run(ctx context.Context) (summary, error) {
	w, h := float64(d.cfg.Demo.Width), float64(d.cfg.Demo.Height)
	s := scene.New(w, h)
	panel := s.Add(nil, "panel", geom.Point{X: 2, Y: 1}, geom.Size{Width: w - 4, Height: h - 2})

	var bouncers []*scene.Bouncer
	for i := 0; i < d.cfg.Demo.Boxes; i++ {
		b := s.Add(panel, fmt.Sprintf("box%d", i+1),
			geom.Point{X: float64(2 * i), Y: float64(i)},
			geom.Size{Width: 4, Height: 2},
		)
		bouncers = append(bouncers, &scene.Bouncer{
			Box:      b,
			Velocity: geom.Point{X: 0.5 + 0.25*float64(i), Y: 0.3 + 0.15*float64(i)},
		})
	}

	var (
		mu  sync.Mutex
		sum summary
	)
	e, err := track.NewEngine(s,
		track.WithFrameRate(d.cfg.FrameRate),
		track.WithClock(d.clock),
		track.WithLogger(d.log),
		track.WithFaultHandler(func(error) {
			mu.Lock()
			sum.faults++
			mu.Unlock()
		}),
	)
	if err != nil {
		return summary{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	reports := make(chan report, 64)

	var frame uint64
	listen := func(name string) track.ListenerFunc {
		return func(t *track.Tracker) {
			r := report{frame: frame, name: name, relative: t.RelativePosition(), size: t.Size()}
			select {
			case reports <- r:
			case <-gctx.Done():
			}
		}
	}

	type named struct {
		name string
		t    *track.Tracker
	}
	var trackers []named
	follow := func(name string, t *track.Tracker, opts ...track.ListenOption) {
		t.On(listen(name), opts...)
		trackers = append(trackers, named{name: name, t: t})
	}

	follow("panel", e.Track(panel, track.RelativeTo(track.Document)))
	for _, b := range bouncers {
		follow(b.Box.Name(), e.Track(b.Box, track.RelativeTo(panel)), track.WithSize(false))
	}

	// The first box is also tracked against the cursor.
	cur := &cursor{pos: track.Position{Right: 10, Bottom: h}, step: 1.5, limit: w}
	first := bouncers[0].Box
	follow(first.Name()+"@cursor", e.Track(first, track.Virtual{Position: cur, Update: cur.advance}), track.WithSize(false))

	done := make(chan struct{})
	var finish sync.Once
	e.Schedule(track.PhaseRender, func(time.Time) {
		frame++
		s.Step(bouncers)
		if frame >= uint64(d.cfg.Demo.Frames) {
			finish.Do(func() { close(done) })
		}
	}, true)

	g.Go(func() error {
		for r := range reports {
			fmt.Fprintln(d.out, renderReport(r))
			mu.Lock()
			sum.reports++
			mu.Unlock()
		}
		return nil
	})

	g.Go(func() error {
		// Close stops every listener before the channel is closed.
		defer close(reports)
		defer e.Close()

		select {
		case <-done:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	})

	if err := g.Wait(); err != nil {
		return summary{}, err
	}

	sum.frames = frame
	for _, n := range trackers {
		sum.final = append(sum.final, report{frame: frame, name: n.name, relative: n.t.RelativePosition(), size: n.t.Size()})
		n.t.Destroy()
	}
	d.log.Info("demo finished",
		zap.Uint64("frames", sum.frames),
		zap.Int("reports", sum.reports),
		zap.Int("faults", sum.faults),
	)
	return sum, nil
}
