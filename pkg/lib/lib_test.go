package lib_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/stagerun/pkg/lib"
)

func TestNewManager(t *testing.T) {
	tests := map[string]struct {
		cfg    lib.Config
		expErr bool
	}{
		"An empty config should work.": {
			cfg: lib.Config{},
		},

		"A negative interval should fail.": {
			cfg:    lib.Config{Interval: -1},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := lib.NewManager(test.cfg)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, m)
		})
	}
}

func TestStartExitsOnFailure(t *testing.T) {
	var out bytes.Buffer
	var exitCode int
	m, err := lib.NewManager(lib.Config{
		Out:        &out,
		OutputMode: lib.OutputPlain,
		NoColor:    true,
		Exit:       func(code int) { exitCode = code },
	})
	require.NoError(t, err)

	g := lib.NewGroup("deploy")
	g.AddUnit(lib.NewUnit("ok", func(_ context.Context, s *lib.StatusCell) { s.Complete() }))
	g.AddUnit(lib.NewUnit("ko", func(_ context.Context, s *lib.StatusCell) { s.Fail() }))
	m.AddGroup(g)

	m.Start(context.Background())

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, out.String(), "stage 1 failed: ko")
}

func TestUnitTimeout(t *testing.T) {
	var out bytes.Buffer
	m, err := lib.NewManager(lib.Config{
		Out:         &out,
		OutputMode:  lib.OutputPlain,
		NoColor:     true,
		UnitTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)

	g := lib.NewGroup("deploy")
	u := lib.NewUnit("hangs", func(_ context.Context, s *lib.StatusCell) {
		<-release
		s.Complete()
	})
	g.AddUnit(u)
	m.AddGroup(g)

	err = m.Run(context.Background())
	assert.True(t, errors.Is(err, lib.ErrUnitTimeout))
	assert.Equal(t, lib.StatusIncomplete, u.Status())
	assert.Contains(t, out.String(), "  [1/1] hangs ?")
}

func TestDispatchTwicePanics(t *testing.T) {
	u := lib.NewUnit("once", func(_ context.Context, s *lib.StatusCell) { s.Complete() })
	u.Dispatch(context.Background())
	defer u.Join()

	assert.Panics(t, func() { u.Dispatch(context.Background()) })
}
