package nav_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"panelnav/internal/nav"
	"panelnav/internal/nav/navtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func d(panel string) nav.Descriptor {
	return nav.Descriptor{Panel: panel}
}

func panels(ds []nav.Descriptor) []string {
	out := make([]string, len(ds))
	for i, x := range ds {
		out[i] = x.Panel
	}
	return out
}

func TestStack_PushPopScenario(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	require.NoError(t, s.Push(ctx, d("home")))
	require.NoError(t, s.Push(ctx, d("settings")))
	assert.Equal(t, []string{"home", "settings"}, panels(s.Entries()))
	top, ok := s.Top()
	require.True(t, ok)
	assert.Equal(t, "settings", top.Panel)

	popped, err := s.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "settings", popped.Panel)
	assert.Equal(t, []string{"home"}, panels(s.Entries()))
	top, ok = s.Top()
	require.True(t, ok)
	assert.Equal(t, "home", top.Panel)

	require.NoError(t, s.PushMany(ctx, d("settings"), d("profile")))
	require.NoError(t, s.PopToIndex(ctx, 0))
	assert.Equal(t, []string{"home"}, panels(s.Entries()))
}

func TestStack_TopAfterPushIsPushed(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	for i, p := range []string{"a", "b", "a", "c"} {
		opts := map[string]int{"i": i}
		require.NoError(t, s.Push(ctx, nav.Descriptor{Panel: p, Options: opts}))
		top, ok := s.Top()
		require.True(t, ok)
		assert.Equal(t, p, top.Panel)
		assert.Equal(t, opts, top.Options)
		assert.Equal(t, i+1, s.Len())
	}
	// Equal descriptors may coexist at different depths.
	first, err := s.At(0)
	require.NoError(t, err)
	third, err := s.At(2)
	require.NoError(t, err)
	assert.Equal(t, first.Panel, third.Panel)
}

func TestStack_EmptyTop(t *testing.T) {
	s := nav.New()
	defer s.Close()

	_, ok := s.Top()
	assert.False(t, ok)
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Entries())
}

func TestStack_IndexingErrorsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	rec := navtest.NewRecorder("rec")
	s := nav.New()
	defer s.Close()
	s.AddController(rec)

	_, err := s.Pop(ctx)
	assert.ErrorIs(t, err, nav.ErrEmpty)
	assert.ErrorIs(t, err, nav.ErrOutOfRange)

	require.NoError(t, s.PushMany(ctx, d("a"), d("b")))
	require.Equal(t, 1, rec.Calls())

	tests := []struct {
		name string
		op   func() error
	}{
		{"pop count above depth", func() error { return s.PopCount(ctx, 3) }},
		{"negative pop count", func() error { return s.PopCount(ctx, -1) }},
		{"pop to index below floor", func() error { return s.PopToIndex(ctx, -2) }},
		{"detached pop count above depth", func() error { return s.Detached().PopCount(5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.ErrorIs(t, err, nav.ErrOutOfRange)
			assert.Equal(t, []string{"a", "b"}, panels(s.Entries()))
			assert.Equal(t, 1, rec.Calls(), "no round may start after an indexing error")
		})
	}

	_, err = s.At(2)
	assert.ErrorIs(t, err, nav.ErrOutOfRange)
	_, err = s.At(-1)
	assert.ErrorIs(t, err, nav.ErrOutOfRange)
}

func TestStack_PopCount(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	require.NoError(t, s.PushMany(ctx, d("a"), d("b"), d("c"), d("d")))
	require.NoError(t, s.PopCount(ctx, 0))
	assert.Equal(t, 4, s.Len())
	require.NoError(t, s.PopCount(ctx, 3))
	assert.Equal(t, []string{"a"}, panels(s.Entries()))
	require.NoError(t, s.PopCount(ctx, 1))
	assert.Zero(t, s.Len())
}

func TestStack_PopToIndex(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"truncate to bottom", 0, []string{"home"}},
		{"truncate to middle", 1, []string{"home", "settings"}},
		{"index at top is a no-op", 2, []string{"home", "settings", "profile"}},
		{"index above top is a no-op", 10, []string{"home", "settings", "profile"}},
		{"minus one empties", -1, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rec := navtest.NewRecorder("rec")
			s := nav.New()
			defer s.Close()
			require.NoError(t, s.PushMany(ctx, d("home"), d("settings"), d("profile")))
			s.AddController(rec)

			require.NoError(t, s.PopToIndex(ctx, tt.index))
			assert.Equal(t, tt.want, panels(s.Entries()))
			assert.Equal(t, 1, rec.Calls(), "pop to index always runs a round")
		})
	}
}

func TestStack_CountProperty(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	pushes, popped := 0, 0
	steps := []int{3, -1, 2, -2, -1, 4, -3, 1}
	for _, n := range steps {
		if n > 0 {
			for range n {
				require.NoError(t, s.Push(ctx, d("x")))
				pushes++
			}
			continue
		}
		require.NoError(t, s.PopCount(ctx, -n))
		popped += -n
	}
	assert.Equal(t, pushes-popped, s.Len())

	err := s.PopCount(ctx, s.Len()+1)
	assert.ErrorIs(t, err, nav.ErrOutOfRange)
	assert.Equal(t, pushes-popped, s.Len())
}

func TestStack_ClearAlwaysRunsRound(t *testing.T) {
	ctx := context.Background()
	rec := navtest.NewRecorder("rec")
	s := nav.New()
	defer s.Close()
	s.AddController(rec)

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 1, rec.Calls())

	require.NoError(t, s.PushMany(ctx, d("a"), d("b")))
	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())
	assert.Equal(t, 3, rec.Calls())
}

func TestStack_NoControllers(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	require.NoError(t, s.Push(ctx, d("home")))
	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Controllers())
	assert.Zero(t, s.Len())
}

func TestStack_SingleControllerSeesMutation(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()

	boom := errors.New("boom")
	var seen []string
	s.AddController(nav.Func("only", func(ctx context.Context, view nav.Reader) error {
		seen = panels(view.Entries())
		if top, _ := view.Top(); top.Panel == "broken" {
			return boom
		}
		return nil
	}))

	require.NoError(t, s.Push(ctx, d("home")))
	assert.Equal(t, []string{"home"}, seen)

	err := s.Push(ctx, d("broken"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, nav.ErrTransition)
	assert.Contains(t, err.Error(), "only")
	assert.Equal(t, []string{"home", "broken"}, seen)
}

func TestStack_FanInWaitsForSlowestBeforeFailing(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	fast := navtest.NewRecorder("fast")
	failing := navtest.NewRecorder("failing").WithError(boom)
	slow := navtest.NewGate("slow")

	s := nav.New()
	defer s.Close()
	s.AddController(fast)
	s.AddController(failing)
	s.AddController(slow)

	result := make(chan error, 1)
	go func() {
		result <- s.Push(ctx, d("home"))
	}()

	<-slow.Entered()
	require.Eventually(t, func() bool {
		return fast.Calls() == 1 && failing.Calls() == 1
	}, time.Second, 5*time.Millisecond)

	select {
	case err := <-result:
		t.Fatalf("round reported before the slowest controller settled: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	slow.Release(nil)
	err := <-result
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, nav.ErrTransition)
}

func TestStack_AllFailuresReported(t *testing.T) {
	ctx := context.Background()
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	s := nav.New()
	defer s.Close()
	s.AddController(navtest.NewRecorder("a").WithError(errA))
	s.AddController(navtest.NewRecorder("b").WithError(errB).WithDelay(10 * time.Millisecond))
	s.AddController(navtest.NewRecorder("c"))

	err := s.Push(ctx, d("home"))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestStack_ControllerPanicIsRecovered(t *testing.T) {
	ctx := context.Background()
	ok := navtest.NewRecorder("ok")
	s := nav.New()
	defer s.Close()
	s.AddController(ok)
	s.AddController(navtest.NewRecorder("panicky").WithPanic("kaboom"))

	err := s.Push(ctx, d("home"))
	assert.ErrorIs(t, err, nav.ErrControllerPanic)
	assert.Contains(t, err.Error(), "kaboom")
	assert.Equal(t, 1, ok.Calls())
	assert.Equal(t, 1, s.Len())
}

func TestStack_PushManyRunsOneRound(t *testing.T) {
	ctx := context.Background()
	recs := []*navtest.Recorder{navtest.NewRecorder("a"), navtest.NewRecorder("b")}
	s := nav.New()
	defer s.Close()
	for _, r := range recs {
		s.AddController(r)
	}

	require.NoError(t, s.PushMany(ctx, d("A"), d("B"), d("C")))
	assert.Equal(t, []string{"A", "B", "C"}, panels(s.Entries()))
	for _, r := range recs {
		assert.Equal(t, 1, r.Calls())
		rounds := r.Rounds()
		require.Len(t, rounds, 1)
		assert.Equal(t, nav.OpPushMany, rounds[0].Op)
		assert.Equal(t, 3, rounds[0].Depth)
		assert.Equal(t, "C", rounds[0].Top)
		assert.Equal(t, 2, rounds[0].Controllers)
	}
}

func TestStack_Registration(t *testing.T) {
	ctx := context.Background()
	rec := navtest.NewRecorder("rec")
	s := nav.New()
	defer s.Close()

	assert.True(t, s.AddController(rec))
	assert.False(t, s.AddController(rec), "duplicate registration is ignored")
	assert.False(t, s.AddController(nil))
	assert.Equal(t, 1, s.Controllers())

	require.NoError(t, s.Push(ctx, d("home")))
	assert.Equal(t, 1, rec.Calls())

	assert.True(t, s.RemoveController(rec))
	assert.False(t, s.RemoveController(rec))
	require.NoError(t, s.Push(ctx, d("next")))
	assert.Equal(t, 1, rec.Calls())
}

func TestStack_ResetClearsEntriesAndControllers(t *testing.T) {
	ctx := context.Background()
	rec := navtest.NewRecorder("rec")
	s := nav.New()
	defer s.Close()
	s.AddController(rec)
	s.AddController(navtest.NewRecorder("other"))
	require.NoError(t, s.PushMany(ctx, d("a"), d("b")))

	s.Reset()
	assert.Zero(t, s.Len())
	assert.Zero(t, s.Controllers())
	assert.Equal(t, 1, rec.Calls(), "reset does not run a round")

	require.NoError(t, s.Push(ctx, d("fresh")))
	assert.Equal(t, 1, rec.Calls())
	assert.Equal(t, []string{"fresh"}, panels(s.Entries()))
}

func TestStack_Close(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	require.NoError(t, s.Push(ctx, d("home")))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Push(ctx, d("x")), nav.ErrClosed)
	assert.ErrorIs(t, s.Detached().Push(d("x")), nav.ErrClosed)
	assert.Equal(t, 1, s.Len(), "reads keep working after close")
}

func TestStack_EntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := nav.New()
	defer s.Close()
	require.NoError(t, s.Push(ctx, d("home")))

	entries := s.Entries()
	entries[0].Panel = "mutated"
	top, _ := s.Top()
	assert.Equal(t, "home", top.Panel)
}

func TestStack_TransitionTimeout(t *testing.T) {
	ctx := context.Background()
	s := nav.New(nav.WithTransitionTimeout(20 * time.Millisecond))
	defer s.Close()
	s.AddController(navtest.NewRecorder("slow").WithDelay(time.Second))

	err := s.Push(ctx, d("home"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, s.Len())
}

func TestStack_RoundHooks(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	hooks := &navtest.HookRecorder{}
	s := nav.New(nav.WithRoundHook(hooks), nav.WithRoundHook(nil))
	defer s.Close()

	require.NoError(t, s.Push(ctx, d("home")))
	s.AddController(navtest.NewRecorder("bad").WithError(boom))
	_, err := s.Pop(ctx)
	require.ErrorIs(t, err, boom)

	started := hooks.Started()
	finished, errs := hooks.Finished()
	require.Len(t, started, 2)
	require.Len(t, finished, 2)
	assert.Equal(t, nav.OpPush, finished[0].Op)
	assert.Equal(t, nav.OpPop, finished[1].Op)
	assert.Less(t, finished[0].ID, finished[1].ID)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], boom)
}

func TestStack_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	rec := navtest.NewRecorder("rec")
	s := nav.New()
	defer s.Close()
	s.AddController(rec)

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			assert.NoError(t, s.Push(ctx, d("x")))
		})
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
	assert.Equal(t, 50, rec.Calls())
}
