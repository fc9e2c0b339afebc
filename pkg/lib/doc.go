// Package lib provides a Go SDK to run multi-stage operations with a live
// terminal status view.
//
// A run is made of stages ([Group]) executed one after another. The units
// ([Unit]) of a stage run concurrently, each one on its own goroutine, and the
// stage ends when all of them completed or as soon as one of them failed.
//
// # Quick Start
//
//	m, err := lib.NewManager(lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	build := lib.NewGroup("build")
//	build.AddUnit(lib.NewUnit("compile", func(ctx context.Context, s *lib.StatusCell) {
//	    if err := compile(ctx); err != nil {
//	        s.FailWith(err)
//	        return
//	    }
//	    s.Complete()
//	}))
//	m.AddGroup(build)
//
//	// Exits the process with code 1 on the first failed stage.
//	m.Start(ctx)
//
// # Work functions
//
// A [WorkFunc] must set its status cell to completed or failed before
// returning. A work function that returns without doing so ends as
// [StatusIncomplete] and a panic ends as [StatusFailed]; both halt the run.
//
// There is no cancellation: once dispatched a unit runs until its work
// function returns. A unit that never returns blocks its stage forever unless
// a timeout is set with [Config].UnitTimeout or [Unit.SetTimeout]. A timed out
// unit is marked as incomplete, its goroutine keeps running until the process
// exits.
//
// # Fail fast
//
// [Manager.Start] terminates the process on failure. Use [Manager.Run] to get
// the failure as a [*StageFailedError] instead and decide what to do:
//
//	if err := m.Run(ctx); err != nil {
//	    if sfe, ok := lib.IsStageFailed(err); ok {
//	        fmt.Printf("stage %d (%s) failed on %s\n", sfe.Stage, sfe.Group, sfe.Unit)
//	    }
//	    os.Exit(1)
//	}
//
// # Misuse
//
// Dispatching a unit twice, adding units to a started group or groups to a
// started manager panic with an error wrapping [ErrAlreadyDispatched],
// [ErrGroupStarted] or [ErrManagerStarted].
package lib
