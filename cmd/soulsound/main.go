package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sk88studiosinc-maker/Soulsound/internal/app"
	"github.com/sk88studiosinc-maker/Soulsound/internal/capture"
	"github.com/sk88studiosinc-maker/Soulsound/internal/config"
	"github.com/sk88studiosinc-maker/Soulsound/internal/telemetry"
	"github.com/sk88studiosinc-maker/Soulsound/internal/tui"
)

const localArtist = "local"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logPath := flag.String("log", "soulsound.log", "log file (the terminal is taken by the UI)")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := telemetry.New(logFile, cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	_, events, unsubscribe := rt.Hub.Subscribe(localArtist, 64)
	defer unsubscribe()

	sess := rt.Services.SessionFactory()(localArtist)
	if err := sess.Restore(ctx); err != nil {
		logger.Warn("project_restore_failed", "error", err)
	}
	ctl := app.NewController(sess, logger)
	defer ctl.Close()

	camera := capture.NewFFmpegDevice(capture.FFmpegConfig{
		Input:       cfg.CameraDevice,
		Format:      cfg.CameraFormat,
		AudioInput:  cfg.MicDevice,
		AudioFormat: cfg.MicFormat,
	})
	m := tui.NewModel(tui.Options{
		Controller: ctl,
		Events:     events,
		Keys:       rt.Keys,
		Speech:     rt.Speech,
		Media:      rt.Media,
		Studio: func(ctx context.Context) (*capture.Session, error) {
			return capture.Open(ctx, camera, camera, capture.Options{Logger: logger})
		},
	})

	program := tea.NewProgram(m, tea.WithAltScreen())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	final, err := program.Run()
	if fm, ok := final.(tui.Model); ok {
		fm.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
