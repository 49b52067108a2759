package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"
	"time"

	"dropview/internal/app"
	"dropview/internal/assets"
	"dropview/internal/config"
	"dropview/internal/graphics"
	"dropview/internal/viewer"
	"dropview/internal/window"

	"github.com/go-gl/glfw/v3.3/glfw"
	"gopkg.in/natefinch/lumberjack.v2"
)

const overlayFontPixels = 18

// defined flags
var (
	levelFlag   logLevelFlag
	urlFlag     = flag.String("url", "", "STL model to drop: a path, file:// or http(s):// URL")
	compactFlag = flag.Bool("compact", false, "Start with the compact, centered layout")
	configFlag  = flag.String("config", "", "YAML settings file overlaying the defaults")
	logFileFlag = flag.String("logfile", "", "Write logs to this file instead of the console")
	statsFlag   = flag.Bool("stats", false, "Show the stats overlay on start")
	seedFlag    = flag.Uint64("seed", 0, "Seed for spawn budget and orientations, 0 picks one")
)

func init() {
	// GLFW and GL calls must stay on the main thread
	runtime.LockOSThread()
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}

func main() {
	flag.Parse()
	if *urlFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: dropview -url <model.stl> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	slog.SetLogLoggerLevel(levelFlag.value)
	if *logFileFlag != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   *logFileFlag,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}

	settings := config.Default()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			log.Fatalf("Failed to load settings %s: %s", *configFlag, err)
		}
	}
	if *statsFlag {
		settings.Render.ShowStats = true
	}
	config.InitToggles(settings.Render)
	os.Exit(run(settings))
}

// run owns the window for the process lifetime and returns the exit code once
// every deferred release has run
func run(settings config.Settings) int {
	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	win, err := window.New(window.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer win.Destroy()

	overlay, err := graphics.NewTextOverlay(settings.Render.ShadersDir, overlayFontPixels)
	if err != nil {
		panic(err)
	}
	defer overlay.Dispose()

	seed := *seedFlag
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	slog.Debug("random seed", "seed", seed)

	a := app.New(win, overlay, app.Options{
		URL:      *urlFlag,
		Compact:  *compactFlag,
		Settings: settings,
		Loader:   assets.NewSTLLoader(nil, slog.Default()),
		NewRenderer: func() (viewer.Renderer, error) {
			r, err := graphics.NewRenderer(settings.Render.ShadersDir, settings.Render.ClearColor)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Rand: newRand(seed),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := a.Run(ctx); err != nil {
		slog.Error("viewer stopped", "error", err)
		return 1
	}
	return 0
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
