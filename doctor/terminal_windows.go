//go:build windows

package doctor

import (
	"os"
	"os/signal"
)

func resetTerminal() {
	// Console modes are left alone on Windows.
}

func setupInterruptHandler() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		println("\nInterrupted")
		os.Exit(1)
	}()
}
