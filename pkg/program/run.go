package program

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/buildbarn/bb-event-sink/pkg/util"
)

// Routine that can be executed as part of a program. Routines include
// the ingestion listener, the flush coordinator and the diagnostics
// HTTP server.
//
// Each routine is capable of launching additional routines that either
// run as siblings, or as dependencies of the current routine and its
// siblings. Siblings are all terminated at the same time, while
// dependencies are only terminated after all of the siblings of the
// current routine have completed. This allows the flush coordinator
// to outlive the listener that feeds it.
type Routine func(ctx context.Context, siblingsGroup, dependenciesGroup Group) error

// Group of routines. This interface can be used to launch additional
// routines.
type Group interface {
	Go(routine Routine)
}

// siblingsGroup is a group of routines that are all siblings with
// respect to each other.
type siblingsGroup struct {
	errorLogger         util.ErrorLogger
	wait                *sync.WaitGroup
	siblingsActive      atomic.Uint32
	siblingsContext     context.Context
	dependenciesContext context.Context
	dependenciesCancel  context.CancelFunc
}

// newSiblingsGroup constructs a new siblingsGroup that contains exactly
// one routine. The caller MUST call runRoutine() on it after creation
// to actually start execution of this routine.
func newSiblingsGroup(siblingsContext context.Context, errorLogger util.ErrorLogger, wait *sync.WaitGroup) *siblingsGroup {
	dependenciesContext, dependenciesCancel := context.WithCancel(context.WithoutCancel(siblingsContext))
	sg := &siblingsGroup{
		errorLogger:         errorLogger,
		wait:                wait,
		siblingsContext:     siblingsContext,
		dependenciesContext: dependenciesContext,
		dependenciesCancel:  dependenciesCancel,
	}
	sg.siblingsActive.Store(1)
	wait.Add(1)
	return sg
}

func (sg *siblingsGroup) runRoutine(routine Routine) {
	if err := routine(
		sg.siblingsContext,
		sg,
		dependenciesGroup{siblingsGroup: sg},
	); err != nil {
		sg.errorLogger.Log(err)
	}

	if sg.siblingsActive.Add(^uint32(0)) == 0 {
		// Last sibling terminated. Dependencies may now be
		// shut down as well.
		sg.dependenciesCancel()
		sg.wait.Done()
	}
}

func (sg *siblingsGroup) Go(routine Routine) {
	if sg.siblingsActive.Add(1) < 2 {
		panic("Attempted to create a goroutine in a group that is already completed")
	}
	go sg.runRoutine(routine)
}

type dependenciesGroup struct {
	siblingsGroup *siblingsGroup
}

func (dg dependenciesGroup) Go(routine Routine) {
	sg := dg.siblingsGroup
	if sg.siblingsActive.Load() == 0 {
		panic("Attempted to create a goroutine in a group that is already completed")
	}

	// Give the dependency its own set of siblings.
	childSG := newSiblingsGroup(sg.dependenciesContext, sg.errorLogger, sg.wait)
	go childSG.runRoutine(routine)
}

// run a routine and all of the routines it spawns, until all of them
// have terminated. Errors returned by routines are passed to the error
// logger, which is expected to cancel the context.
func run(ctx context.Context, errorLogger util.ErrorLogger, routine Routine) {
	var wait sync.WaitGroup
	sg := newSiblingsGroup(ctx, errorLogger, &wait)
	go sg.runRoutine(routine)
	wait.Wait()
}

type runLocalErrorLogger struct {
	shutdownStarted sync.Once
	firstError      error
	cancel          context.CancelFunc
}

func (el *runLocalErrorLogger) Log(err error) {
	el.shutdownStarted.Do(func() {
		el.firstError = err
		el.cancel()
	})
}

// RunLocal runs a routine and all of the routines it spawns until
// completion, without installing signal handlers. The first error
// returned by any of the routines cancels all others and is returned.
func RunLocal(ctx context.Context, routine Routine) error {
	innerCtx, cancel := context.WithCancel(ctx)
	errorLogger := &runLocalErrorLogger{
		cancel: cancel,
	}
	run(innerCtx, errorLogger, routine)
	errorLogger.shutdownStarted.Do(cancel)
	return errorLogger.firstError
}
