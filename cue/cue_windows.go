//go:build windows

package cue

// No audio cue playback on Windows.

func Play(Kind) {}
