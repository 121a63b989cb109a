// Command turntabled is the entrypoint that wires together the hardware
// abstraction, track store, thread coordination and engine facade into a
// running process (spec §6 Lifecycle, SPEC_FULL.md Packaging).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lodsb/turntable-core/internal/audio"
	"github.com/lodsb/turntable-core/internal/buttons"
	"github.com/lodsb/turntable-core/internal/coord"
	"github.com/lodsb/turntable-core/internal/engine"
	"github.com/lodsb/turntable-core/internal/errs"
	"github.com/lodsb/turntable-core/internal/hwio"
	"github.com/lodsb/turntable-core/internal/logx"
	"github.com/lodsb/turntable-core/internal/mapping"
	"github.com/lodsb/turntable-core/internal/settings"
	"github.com/lodsb/turntable-core/internal/status"
	"github.com/lodsb/turntable-core/internal/track"
	"github.com/spf13/pflag"
)

func main() {
	var (
		settingsPath = pflag.StringP("settings", "s", "", "Path to a YAML settings file overriding the defaults.")
		gpioChip     = pflag.String("gpio-chip", "", "gpiochip name to use in place of the real hardware backend (e.g. gpiochip0). Enables desktop/bring-up mode.")
		rtPriority   = pflag.IntP("rt-priority", "p", 10, "SCHED_FIFO priority for the realtime thread. 0 disables priority elevation.")
		mlockBlocks  = pflag.Bool("mlock", false, "Pin newly-allocated PCM blocks into RAM.")
		help         = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - input and coordination core for a DJ-style turntable-emulation appliance.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	log := logx.Default()

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*errs.Error); ok && e.Kind() == errs.ProgrammerError {
				log.Errorf("programmer error, aborting: %v", e)
				os.Exit(1)
			}
			panic(r)
		}
	}()

	cfg, err := settings.Load(*settingsPath)
	if err != nil {
		log.Fatalf("loading settings: %v", err)
	}

	sink := status.Func(func(m status.Message) {
		log.Infof("[%s] %s", m.Level, m.Text)
	})

	hw := selectHardware(*gpioChip, log)
	defer hw.Close()

	table := mapping.NewTable(defaultMappingTable())
	registry := track.NewRegistry(*mlockBlocks)

	au := audio.NewPortAudioBackend(float64(cfg.SampleRate), log)

	eng := engine.New(cfg, hw, table, registry, au, log, sink)

	ctx := context.Background()
	if !eng.Init(ctx) {
		log.Warnf("no hardware surfaces present, running in fallback mode")
	}
	if !au.Init() {
		log.Warnf("audio subsystem unavailable, running without a renderer")
	}
	defer au.Close()

	rig, err := coord.NewRig(log, sink)
	if err != nil {
		log.Fatalf("creating coordination thread: %v", err)
	}
	defer rig.Close()
	eng.SetRig(rig)

	rt := coord.NewRealtime(*rtPriority, engine.AudioHandlerAdapter{AU: au})
	if err := rt.Start(ctx); err != nil {
		log.Fatalf("starting realtime thread: %v", err)
	}
	defer rt.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Infof("shutting down")
		_ = rig.Quit(ctx)
	}()

	go pollLoop(ctx, eng, rig)

	if err := rig.Run(ctx, nil); err != nil {
		log.Errorf("coordination thread exited: %v", err)
	}
}

// pollLoop drives the engine facade's decimated tick at a fixed period,
// derived from the configured period size and sample rate (spec §6
// Lifecycle "poll(engine) is called once per coordination tick").
func pollLoop(ctx context.Context, eng *engine.Engine, rig *coord.Rig) {
	cfg := eng.Settings
	period := time.Second
	if cfg.SampleRate > 0 && cfg.PeriodSize > 0 {
		period = time.Duration(float64(cfg.PeriodSize) / float64(cfg.SampleRate) * float64(time.Second))
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	statsTicker := time.NewTicker(time.Second)
	defer statsTicker.Stop()

	for {
		select {
		case <-ticker.C:
			eng.Poll(ctx)
		case <-statsTicker.C:
			eng.LogStats()
		}
	}
}

// defaultMappingTable is a minimal bring-up mapping and the only mapping
// table this binary uses: the settings file carries no mapping table. It
// wires the handful of port-1 GPIO buttons a bare board exposes without
// any expander or MIDI controller attached.
func defaultMappingTable() []*mapping.Entry {
	return []*mapping.Entry{
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 0, EdgeType: buttons.Pressed, Action: mapping.ActionPrevFile, DeckNo: 1},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 1, EdgeType: buttons.Pressed, Action: mapping.ActionNextFile, DeckNo: 1},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 2, EdgeType: buttons.Pressed, Action: mapping.ActionPrevFile, DeckNo: 0},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 3, EdgeType: buttons.Pressed, Action: mapping.ActionNextFile, DeckNo: 0},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 4, Pullup: true, EdgeType: buttons.Pressed, Action: mapping.ActionJogPitch, DeckNo: 1},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 5, Pullup: true, EdgeType: buttons.Holding, Action: mapping.ActionVolUpHold, DeckNo: 0},
		{Type: mapping.TypeIO, GPIOPort: 1, Pin: 6, Pullup: true, EdgeType: buttons.Holding, Action: mapping.ActionVolDownHold, DeckNo: 0},
	}
}

// selectHardware picks the production Linux backend, or the desktop/
// bring-up character-device backend when --gpio-chip names a chip (spec
// §9 "Polymorphism": one production, one desktop-fallback implementation).
func selectHardware(gpioChip string, log *logx.Logger) hwio.Hardware {
	if gpioChip != "" {
		return hwio.NewCdevBackend(gpioChip, log)
	}
	return hwio.NewLinuxBackend(log)
}
