package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/stagerun/internal/model"
	"github.com/slok/stagerun/internal/progress"
)

func TestGroupRun(t *testing.T) {
	tests := map[string]struct {
		units     func(t *testing.T) []*progress.Unit
		opts      progress.RunOptions
		expOK     bool
		expFailed string
		expErr    error
	}{
		"An empty group should succeed.": {
			units: func(t *testing.T) []*progress.Unit { return nil },
			expOK: true,
		},

		"A group with all units completing should succeed.": {
			units: func(t *testing.T) []*progress.Unit {
				return []*progress.Unit{
					progress.NewUnit("a", completeFn),
					progress.NewUnit("b", func(_ context.Context, s *progress.StatusCell) {
						time.Sleep(20 * time.Millisecond)
						s.Complete()
					}),
				}
			},
			expOK: true,
		},

		"A group with a failed unit should fail citing it.": {
			units: func(t *testing.T) []*progress.Unit {
				return []*progress.Unit{
					progress.NewUnit("a", completeFn),
					progress.NewUnit("b", failFn),
				}
			},
			expFailed: "b",
			expErr:    model.ErrUnitFailed,
		},

		"A group with an incomplete unit should fail citing it.": {
			units: func(t *testing.T) []*progress.Unit {
				return []*progress.Unit{
					progress.NewUnit("a", func(_ context.Context, _ *progress.StatusCell) {}),
				}
			},
			expFailed: "a",
			expErr:    model.ErrIncomplete,
		},

		"A group with a unit exceeding the default timeout should fail citing it.": {
			units: func(t *testing.T) []*progress.Unit {
				work, _ := blockFn(t)
				return []*progress.Unit{
					progress.NewUnit("a", completeFn),
					progress.NewUnit("slow", work),
				}
			},
			opts:      progress.RunOptions{UnitTimeout: 20 * time.Millisecond},
			expFailed: "slow",
			expErr:    model.ErrUnitTimeout,
		},

		"A unit timeout should override the default timeout.": {
			units: func(t *testing.T) []*progress.Unit {
				work, _ := blockFn(t)
				u := progress.NewUnit("slow", work)
				u.SetTimeout(20 * time.Millisecond)
				return []*progress.Unit{u}
			},
			opts:      progress.RunOptions{UnitTimeout: time.Hour},
			expFailed: "slow",
			expErr:    model.ErrUnitTimeout,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			g := progress.NewGroup("test")
			for _, u := range test.units(t) {
				g.AddUnit(u)
			}

			res := g.Run(context.Background(), test.opts)

			assert.Equal(t, test.expOK, res.OK())
			if test.expFailed != "" {
				require.NotNil(t, res.Failed)
				assert.Equal(t, test.expFailed, res.Failed.Label())
				assert.ErrorIs(t, res.Err, test.expErr)
			} else {
				assert.Nil(t, res.Failed)
				assert.NoError(t, res.Err)
				for _, u := range g.Units() {
					assert.Equal(t, model.ExecutionStatusCompleted, u.Status())
				}
			}
		})
	}
}

func TestGroupRunDispatchesUnitsConcurrently(t *testing.T) {
	// Each unit waits for the other one, a sequential dispatch would deadlock.
	aStarted := make(chan struct{})
	bStarted := make(chan struct{})

	g := progress.NewGroup("test")
	g.AddUnit(progress.NewUnit("a", func(_ context.Context, s *progress.StatusCell) {
		close(aStarted)
		<-bStarted
		s.Complete()
	}))
	g.AddUnit(progress.NewUnit("b", func(_ context.Context, s *progress.StatusCell) {
		close(bStarted)
		<-aStarted
		s.Complete()
	}))

	res := g.Run(context.Background(), progress.RunOptions{})
	assert.True(t, res.OK())
}

func TestGroupRunFailureIsNotDelayedBySlowSiblings(t *testing.T) {
	slow, _ := blockFn(t)

	g := progress.NewGroup("test")
	g.AddUnit(progress.NewUnit("slow", slow))
	g.AddUnit(progress.NewUnit("fails", failFn))

	start := time.Now()
	res := g.Run(context.Background(), progress.RunOptions{})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.NotNil(t, res.Failed)
	assert.Equal(t, "fails", res.Failed.Label())
	assert.Equal(t, model.ExecutionStatusRunning, g.Units()[0].Status())
}

func TestGroupRunCancelledContext(t *testing.T) {
	slow, _ := blockFn(t)

	g := progress.NewGroup("test")
	g.AddUnit(progress.NewUnit("slow", slow))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res := g.Run(ctx, progress.RunOptions{})

	assert.Nil(t, res.Failed)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestGroupIsFrozenOnceStarted(t *testing.T) {
	g := progress.NewGroup("test")
	g.AddUnit(progress.NewUnit("a", completeFn))
	assert.False(t, g.Started())

	res := g.Run(context.Background(), progress.RunOptions{})
	require.True(t, res.OK())
	assert.True(t, g.Started())

	assert.PanicsWithError(t, `could not add unit "b" to group "test": group already started`, func() {
		g.AddUnit(progress.NewUnit("b", completeFn))
	})
	assert.Panics(t, func() { g.Run(context.Background(), progress.RunOptions{}) })
	assert.Len(t, g.Units(), 1)
}

func TestGroupUnitsKeepInsertionOrder(t *testing.T) {
	g := progress.NewGroup("test")
	labels := []string{"c", "a", "b"}
	for _, l := range labels {
		g.AddUnit(progress.NewUnit(l, completeFn))
	}

	got := []string{}
	for _, u := range g.Units() {
		got = append(got, u.Label())
	}
	assert.Equal(t, labels, got)
}
