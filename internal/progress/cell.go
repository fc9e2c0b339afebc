package progress

import (
	"sync"
	"sync/atomic"

	"github.com/slok/stagerun/internal/model"
)

// StatusCell holds the lifecycle status of a single unit. It is shared by the unit worker
// (writer) and any observer (render loop, group wait).
//
// Reads are lock free snapshots of the whole status. Writes only move a Running cell into a
// terminal status, the first terminal write wins and later ones are ignored.
type StatusCell struct {
	status atomic.Uint32

	mu   sync.Mutex
	err  error
	done chan struct{}
}

func newStatusCell() *StatusCell {
	return &StatusCell{done: make(chan struct{})}
}

// Load returns the current status.
func (c *StatusCell) Load() model.ExecutionStatus {
	return model.ExecutionStatus(c.status.Load())
}

// Complete marks the cell as completed. Returns false if the cell was not running.
func (c *StatusCell) Complete() bool {
	return c.finish(model.ExecutionStatusCompleted, nil)
}

// Fail marks the cell as failed. Returns false if the cell was not running.
func (c *StatusCell) Fail() bool {
	return c.finish(model.ExecutionStatusFailed, nil)
}

// FailWith marks the cell as failed recording the cause of the failure.
func (c *StatusCell) FailWith(err error) bool {
	return c.finish(model.ExecutionStatusFailed, err)
}

// Err returns the failure cause if any.
func (c *StatusCell) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Done is closed once the cell reaches a terminal status.
func (c *StatusCell) Done() <-chan struct{} {
	return c.done
}

func (c *StatusCell) start() bool {
	return c.status.CompareAndSwap(uint32(model.ExecutionStatusPending), uint32(model.ExecutionStatusRunning))
}

func (c *StatusCell) finish(s model.ExecutionStatus, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.CompareAndSwap(uint32(model.ExecutionStatusRunning), uint32(s)) {
		return false
	}
	c.err = err
	close(c.done)

	return true
}
