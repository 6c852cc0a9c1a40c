package operation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"

	"go.viam.com/swerve/logging"
)

type countingManeuver struct {
	finishAfter int

	starts      int
	ticks       int
	finishes    int
	interrupted bool
}

func (m *countingManeuver) OnStart(ctx context.Context) { m.starts++ }
func (m *countingManeuver) OnTick(ctx context.Context)  { m.ticks++ }

func (m *countingManeuver) IsFinished() bool {
	return m.finishAfter > 0 && m.ticks >= m.finishAfter
}

func (m *countingManeuver) OnFinish(ctx context.Context, interrupted bool) {
	m.finishes++
	m.interrupted = interrupted
}

func TestSchedulerTick(t *testing.T) {
	ctx := context.Background()
	s := NewScheduler(clock.NewMock(), logging.NewTestLogger(t))
	s.Tick(ctx)
	test.That(t, s.Current(), test.ShouldBeNil)

	m := &countingManeuver{finishAfter: 3}
	op := s.Schedule(ctx, "count", m)
	test.That(t, m.starts, test.ShouldEqual, 1)
	test.That(t, s.Current(), test.ShouldEqual, op)
	test.That(t, op.Name, test.ShouldEqual, "count")

	for i := 0; i < 5; i++ {
		s.Tick(ctx)
	}
	test.That(t, m.ticks, test.ShouldEqual, 3)
	test.That(t, m.finishes, test.ShouldEqual, 1)
	test.That(t, m.interrupted, test.ShouldBeFalse)
	test.That(t, s.Current(), test.ShouldBeNil)
	test.That(t, s.Ticks(), test.ShouldEqual, 6)
}

func TestSchedulerInterrupts(t *testing.T) {
	ctx := context.Background()
	s := NewScheduler(clock.NewMock(), logging.NewTestLogger(t))

	first := &countingManeuver{}
	s.Schedule(ctx, "first", first)
	s.Tick(ctx)

	second := &countingManeuver{}
	op := s.Schedule(ctx, "second", second)
	test.That(t, first.finishes, test.ShouldEqual, 1)
	test.That(t, first.interrupted, test.ShouldBeTrue)
	test.That(t, second.starts, test.ShouldEqual, 1)
	test.That(t, s.Current().ID, test.ShouldEqual, op.ID)

	test.That(t, s.Cancel(ctx), test.ShouldBeTrue)
	test.That(t, second.finishes, test.ShouldEqual, 1)
	test.That(t, second.interrupted, test.ShouldBeTrue)
	test.That(t, s.Cancel(ctx), test.ShouldBeFalse)
	test.That(t, second.finishes, test.ShouldEqual, 1)
}

func TestSchedulerRun(t *testing.T) {
	clk := clock.NewMock()
	s := NewScheduler(clk, logging.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := &countingManeuver{}
	s.Schedule(ctx, "forever", m)

	var periodic atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, 20*time.Millisecond, func(ctx context.Context) { periodic.Add(1) })
	}()

	for periodic.Load() < 3 {
		clk.Add(20 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}
	test.That(t, s.Running(), test.ShouldBeTrue)
	test.That(t, s.Run(ctx, 20*time.Millisecond, nil), test.ShouldNotBeNil)

	cancel()
	test.That(t, <-done, test.ShouldEqual, context.Canceled)
	test.That(t, s.Running(), test.ShouldBeFalse)
	test.That(t, m.finishes, test.ShouldEqual, 1)
	test.That(t, m.interrupted, test.ShouldBeTrue)

	test.That(t, s.Run(context.Background(), 0, nil), test.ShouldNotBeNil)
}
