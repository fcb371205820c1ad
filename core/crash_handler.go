package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu      sync.Mutex
	crashCleanup func()

	// Replaced in tests
	crashOutput io.Writer = os.Stderr
	crashExit             = os.Exit
)

// SetCrashCleanup registers the function restoring the terminal before a crash report
// The screen owner registers it once the screen is initialized, nil clears it
func SetCrashCleanup(fn func()) {
	crashMu.Lock()
	crashCleanup = fn
	crashMu.Unlock()
}

// HandleCrash is the unified panic handler that restores the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	cleanup := crashCleanup
	crashCleanup = nil
	crashMu.Unlock()

	if cleanup != nil {
		// A second panic during cleanup must not hide the original report
		func() {
			defer func() { _ = recover() }()
			cleanup()
		}()
	}

	// Use \r\n in case the terminal is still in raw mode
	fmt.Fprintf(crashOutput, "\r\n\x1b[31mMPC-CAR CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOutput, "Stack Trace:\r\n%s\r\n", debug.Stack())

	crashExit(1)
}
