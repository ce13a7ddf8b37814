package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gekko3d/orrery"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Scene file (YAML). The built-in Sun, Earth and Moon scene is used when empty")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg := orrery.DefaultConfig()
	if *configPath != "" {
		loaded, err := orrery.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "orrery: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	logger := orrery.NewDefaultLogger("orrery", *debug || cfg.Debug)

	def, err := cfg.SceneDef()
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := orrery.NewApp().
		UseStates(orrery.StateInitializing, orrery.StateShuttingDown).
		UseModules(
			orrery.LoggingModule{Logger: logger},
			orrery.ClientModule{
				WindowWidth:  cfg.Window.Width,
				WindowHeight: cfg.Window.Height,
				WindowTitle:  cfg.Window.Title,
			},
		)
	// glfw.GetTime needs an initialized glfw
	if app.Err() == nil {
		app.UseModules(
			orrery.TimeModule{Source: glfw.GetTime, MaxFPS: cfg.MaxFPS},
			orrery.InputModule{},
			orrery.AssetServerModule{},
			orrery.SceneModule{Def: def, Provider: cfg.NewProvider(time.Now())},
			orrery.MetricsModule{Addr: cfg.MetricsAddr},
			orrery.TelemetryModule{Addr: cfg.TelemetryAddr},
		)
	}
	logger.Debugf("provider %s, %d bodies", cfg.Provider.Kind, len(def.Bodies))

	if err := app.Run(ctx); err != nil {
		logger.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}
