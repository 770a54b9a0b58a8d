//go:build !windows

package doctor

import (
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// resetTerminal undoes raw mode left behind by hotkey capture.
func resetTerminal() {
	exec.Command("stty", "sane").Run()
}

func setupInterruptHandler() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		resetTerminal()
		println("\nInterrupted")
		os.Exit(1)
	}()
}
