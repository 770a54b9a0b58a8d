//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// The hotkey library needs the process main thread on macOS and
	// Windows; the rest of the app runs in a goroutine.
	mainthread.Init(run)
}
