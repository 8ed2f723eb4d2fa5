package program

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"
)

// runMainErrorLogger captures errors returned by routines launched by
// RunMain(). Each error is logged, and the first one initiates
// shutdown with a non-zero exit code.
type runMainErrorLogger struct {
	shutdownStarted sync.Once
	shutdownFunc    func()
	cancel          context.CancelFunc
}

func (el *runMainErrorLogger) Log(err error) {
	log.Print("Fatal error: ", err)
	el.startShutdown(func() {
		os.Exit(1)
	})
}

func (el *runMainErrorLogger) startShutdown(shutdownFunc func()) {
	el.shutdownStarted.Do(func() {
		el.shutdownFunc = shutdownFunc
		el.cancel()
	})
}

// terminateWithSignal terminates the current process by raising the
// signal that caused graceful shutdown once again, with the default
// signal handler in place.
func terminateWithSignal(terminationSignal os.Signal) {
	if runtime.GOOS == "windows" {
		os.Exit(1)
	}

	signal.Reset(terminationSignal)
	process, err := os.FindProcess(os.Getpid())
	if err != nil {
		panic(err)
	}
	if err := process.Signal(terminationSignal); err != nil {
		panic(err)
	}

	// process.Signal() does not guarantee delivery to the current
	// thread. See https://github.com/golang/go/issues/19326.
	time.Sleep(5 * time.Millisecond)
	os.Exit(1)
}

// RunMain runs a program that supports graceful termination. The
// program terminates when one of the following occurs:
//
//   - All routines have terminated. The exit code is zero.
//
//   - One of the routines fails with a non-nil error. The exit code is
//     one.
//
//   - The program receives SIGINT or SIGTERM. The program terminates
//     with that signal.
//
// Upon termination, remaining routines are cancelled in the order of
// their dependencies. Buffered records can thus still be flushed after
// the ingestion listener is closed.
func RunMain(routine Routine) {
	ctx, cancel := context.WithCancel(context.Background())
	errorLogger := &runMainErrorLogger{
		cancel: cancel,
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		receivedSignal := <-signalChan
		log.Printf("Received %#v signal. Initiating graceful shutdown.", receivedSignal.String())
		errorLogger.startShutdown(func() {
			terminateWithSignal(receivedSignal)
		})
	}()

	run(ctx, errorLogger, routine)

	errorLogger.startShutdown(func() {
		os.Exit(0)
	})
	errorLogger.shutdownFunc()
}
