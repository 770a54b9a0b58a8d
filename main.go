package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"murmur/audio"
	"murmur/config"
	"murmur/cue"
	"murmur/dictation"
	"murmur/doctor"
	"murmur/hotkey"
	"murmur/inject"
	"murmur/log"
	"murmur/transcriber"
)

var version = "dev"

func run() {
	configFlag := flag.String("config", "", "Config file path (default: OS config dir)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device interactively")
	backendFlag := flag.String("backend", "", "Override transcription backend (e.g. groq:whisper-large-v3-turbo)")
	langFlag := flag.String("lang", "", "Override transcription language")
	streamFlag := flag.Bool("stream", false, "Buffer in streaming windows instead of whole utterances")
	quietFlag := flag.Bool("quiet", false, "Disable audio cues")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	// Route panics to a file; a background dictation daemon has no terminal
	// to print them to.
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *deviceFlag != "" {
		cfg.Audio.Device = *deviceFlag
	}
	if *backendFlag != "" {
		cfg.Model.Backend = *backendFlag
	}
	if *langFlag != "" {
		cfg.Model.Language = *langFlag
	}
	if *streamFlag {
		cfg.Buffer.Mode = config.ModeStreaming
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log.SetLevel(cfg.Log.Level)
	if cfg.Log.Dir != "" && *logPathFlag == "" {
		log.SetDir(cfg.Log.Dir)
	}
	if *quietFlag {
		cue.Disable()
	}

	if *doctorFlag {
		os.Exit(doctor.Run(cfg))
	}

	// Resolve -setup into a device name early, before daemonization.
	if *setupFlag && cfg.Audio.Device == "" {
		actx, err := audio.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		if dev, err := audio.SelectDevice(actx); err == nil && dev != nil {
			cfg.Audio.Device = dev.Name
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: device selection failed: %v\n", err)
			fmt.Fprintln(os.Stderr, "Falling back to default device")
		}
		actx.Close()
	}

	// Daemonize in non-TUI mode: re-exec in background, return shell prompt.
	if !*tuiFlag && os.Getenv("_MURMUR_BG") == "" {
		args := os.Args[1:]
		if cfg.Audio.Device != "" {
			args = append(args, "-device", cfg.Audio.Device)
		}
		exe, _ := os.Executable()
		cmd := exec.Command(exe, args...)
		cmd.Env = append(os.Environ(), "_MURMUR_BG=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	trans, err := transcriber.Resolve(cfg.Model.Backend, cfg.Model.Language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	injector, err := inject.New(cfg.Inject.Strategies, cfg.Inject.RestoreClipboard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer actx.Close()

	bindings, err := hotkey.ParseBindings(map[hotkey.Action]string{
		hotkey.ActionToggle:   cfg.Hotkeys.Toggle,
		hotkey.ActionCopyLast: cfg.Hotkeys.CopyLast,
		hotkey.ActionExit:     cfg.Hotkeys.Exit,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid hotkeys: %v\n", err)
		os.Exit(1)
	}
	listener, err := hotkey.New(bindings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint, derr := hotkey.Diagnose(); derr == nil {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
	if err := listener.Register(); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering hotkeys: %v\n", err)
		os.Exit(1)
	}
	defer listener.Unregister()

	machine := dictation.New(cfg, actx, trans, injector)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go machine.Run(ctx)
	go dispatchHotkeys(ctx, listener, machine, cancel)

	log.Info(fmt.Sprintf("murmur %s ready, backend=%s mode=%s", version, trans.Name(), cfg.Buffer.Mode))

	if *tuiFlag {
		runTUI(ctx, cancel, cfg, machine, trans.Name())
	} else {
		runHeadless(ctx, machine)
	}
}

// dispatchHotkeys turns global key chords into machine operations.
func dispatchHotkeys(ctx context.Context, listener hotkey.Listener, machine *dictation.Machine, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case action := <-listener.Events():
			switch action {
			case hotkey.ActionToggle:
				machine.Toggle()
			case hotkey.ActionCopyLast:
				if err := machine.CopyLast(); err != nil {
					log.Warnf("copy-last: %v", err)
				} else {
					log.Info("last transcript copied to clipboard")
				}
			case hotkey.ActionExit:
				log.Info("exit hotkey pressed")
				cancel()
			}
		}
	}
}

// runHeadless consumes machine events for logging and cues only.
func runHeadless(ctx context.Context, machine *dictation.Machine) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-machine.Events():
			playCue(ev)
		}
	}
}

func playCue(ev dictation.Event) {
	switch ev.Kind {
	case dictation.EventSession:
		cue.Play(cue.Listen)
	case dictation.EventInjected:
		cue.Play(cue.Done)
	case dictation.EventFailure:
		cue.Play(cue.Error)
	}
}
