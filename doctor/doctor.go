package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"murmur/audio"
	"murmur/config"
	"murmur/dictation"
	"murmur/hotkey"
	"murmur/inject"
	"murmur/transcriber"
)

// Run executes interactive diagnostic checks against the loaded configuration
// and returns an exit code (0=all pass, 1=any fail).
func Run(cfg config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("murmur doctor - interactive system diagnostics")
	fmt.Println("==============================================")

	allPass := true

	if !checkHotkey(cfg) {
		allPass = false
	}
	if allPass && !checkMicAndTranscription(cfg) {
		allPass = false
	}
	if allPass && !checkInjection(cfg) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkHotkey(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[1/3] Hotkey detection")
	fmt.Printf("Press %s...\n", cfg.Hotkeys.Toggle)

	combo, err := hotkey.ParseCombo(cfg.Hotkeys.Toggle)
	if err != nil {
		fmt.Printf("  FAIL: invalid toggle hotkey: %v\n", err)
		return false
	}

	hk, err := hotkey.New([]hotkey.Binding{{Action: hotkey.ActionToggle, Combo: combo}})
	if err != nil {
		fmt.Printf("  FAIL: could not create hotkey listener: %v\n", err)
		if hint, derr := hotkey.Diagnose(); derr == nil {
			fmt.Printf("  %s\n", hint)
		}
		return false
	}
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Events():
		fmt.Println("  PASS: hotkey detected")
		// Hotkey capture may leave the terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkMicAndTranscription(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[2/3] Microphone and transcription")

	reader := bufio.NewReader(os.Stdin)

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	device, ok := pickDevice(actx, reader)
	if !ok {
		return false
	}

	trans, err := transcriber.Resolve(cfg.Model.Backend, cfg.Model.Language)
	if err != nil {
		fmt.Printf("  FAIL: backend %q: %v\n", cfg.Model.Backend, err)
		return false
	}
	fmt.Printf("Backend: %s\n", trans.Name())

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	stop := make(chan struct{})
	go func() {
		time.Sleep(3 * time.Second)
		close(stop)
	}()

	samples, err := recordAudio(actx, device, cfg, stop)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return false
	}
	if len(samples) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return false
	}

	level := dictation.RMS(samples)
	fmt.Printf("  Captured %.1fs of audio, peak level %.3f\n",
		float64(len(samples))/float64(cfg.Audio.SampleRate), level)
	if level < cfg.Silence.Threshold {
		fmt.Printf("  WARN: level below silence threshold %.3f; microphone may be muted\n",
			cfg.Silence.Threshold)
	}

	sess, err := trans.NewSession(context.Background(), transcriber.SessionConfig{
		Format:     cfg.Model.Format,
		Language:   cfg.Model.Language,
		SampleRate: cfg.Audio.SampleRate,
	})
	if err != nil {
		fmt.Printf("  FAIL: session error: %v\n", err)
		return false
	}
	sess.Feed(samples)
	result, err := sess.Close()
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func pickDevice(actx audio.Context, reader *bufio.Reader) (*audio.DeviceInfo, bool) {
	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}
	if len(devices) == 1 {
		fmt.Printf("Using device: %s\n", devices[0].Name)
		return &devices[0], true
	}

	fmt.Println()
	fmt.Println("Select input device:")
	for i, d := range devices {
		fmt.Printf("  %d. %s\n", i+1, d.Name)
	}
	fmt.Printf("Choice [1-%d]: ", len(devices))

	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(choice)
	idx := 0
	if choice != "" {
		fmt.Sscanf(choice, "%d", &idx)
		idx--
	}
	if idx < 0 || idx >= len(devices) {
		fmt.Println("  FAIL: invalid choice")
		return nil, false
	}
	fmt.Printf("Selected: %s\n", devices[idx].Name)
	return &devices[idx], true
}

func recordAudio(actx audio.Context, device *audio.DeviceInfo, cfg config.Config, stop <-chan struct{}) ([]int16, error) {
	queue := audio.NewFrameQueue(cfg.Audio.QueueDepth)

	captureDevice, err := actx.NewCapture(device, audio.CaptureConfig{
		SampleRate: uint32(cfg.Audio.SampleRate),
		Channels:   uint32(cfg.Audio.Channels),
	})
	if err != nil {
		return nil, err
	}
	captureDevice.SetCallback(func(data []byte, _ uint32) { queue.Push(data) })

	if err := captureDevice.Start(); err != nil {
		captureDevice.Close()
		return nil, err
	}

	var samples []int16
	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case frame := <-queue.Frames():
				mu.Lock()
				samples = append(samples, frame.Samples...)
				mu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Print(".")
		case <-done:
			fmt.Println(" done")
			captureDevice.Stop()
			captureDevice.Close()
			mu.Lock()
			defer mu.Unlock()
			return samples, nil
		}
	}
}

func checkInjection(cfg config.Config) bool {
	fmt.Println()
	fmt.Println("[3/3] Text injection strategies")

	injector, err := inject.New(cfg.Inject.Strategies, cfg.Inject.RestoreClipboard)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	anyAvailable := false
	for _, probe := range injector.Probe() {
		if probe.Err != nil {
			fmt.Printf("  skip %-10s %v\n", probe.Strategy, probe.Err)
			continue
		}
		fmt.Printf("  ok   %s\n", probe.Strategy)
		anyAvailable = true
	}
	if !anyAvailable {
		fmt.Println("  FAIL: no injection strategy available")
		return false
	}

	fmt.Println("  PASS: injection chain ready")
	return true
}
