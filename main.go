// Package main provides the entry point for the Image Processor application.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"image-processor/internal/app"
	"image-processor/internal/clipboard"
	"image-processor/internal/engine"
	"image-processor/internal/logging"
	"image-processor/internal/version"
	"image-processor/ui/mainwindow"
	"image-processor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "io.github.imageprocessor"
	appTitle = "Image Processor"
)

func main() {
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logJSON := flag.Bool("log-json", false, "log as JSON")
	flag.Parse()

	if err := logging.Configure(os.Stderr, *logLevel, *logJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := logging.Logger()
	logger.Info("starting", "app", appTitle, "version", version.String())

	// Fyne fails to parse the locale when LANG=C
	if lang := os.Getenv("LANG"); lang == "" || lang == "C" {
		os.Setenv("LANG", "en_US.UTF-8")
	}

	fyneApp := fyneapp.NewWithID(appID)
	appPrefs := prefs.Load()

	clip := clipboard.NewSystem()
	if !clip.Available() {
		logger.Warn("system clipboard unavailable, using in-process clipboard")
	}
	state := app.NewState(engine.NewCV(), clip, appPrefs)
	fyneApp.Settings().SetTheme(app.NewTheme(state.Settings().Theme))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go state.Run(ctx)

	win := mainwindow.New(fyneApp, state)

	if path := flag.Arg(0); path != "" {
		if err := state.Session.LoadFile(path); err != nil {
			logger.Error("failed to load image", "path", path, "err", err)
		}
	} else {
		win.RestoreLastImage()
	}

	win.ShowAndRun()
	logger.Info("exiting")
}
