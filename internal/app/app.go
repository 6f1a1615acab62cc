package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lcalzada-xor/wbands/internal/adapters/mqtt"
	"github.com/lcalzada-xor/wbands/internal/adapters/reporting"
	"github.com/lcalzada-xor/wbands/internal/adapters/scansource"
	webserver "github.com/lcalzada-xor/wbands/internal/adapters/web/server"
	"github.com/lcalzada-xor/wbands/internal/config"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
	"github.com/lcalzada-xor/wbands/internal/core/services/analytics"
	"github.com/lcalzada-xor/wbands/internal/core/services/scanner"
	"github.com/lcalzada-xor/wbands/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config       *config.Config
	Source       *scansource.Worker
	Orchestrator *scanner.Orchestrator
	Analytics    *analytics.Cache
	WebServer    *webserver.Server
	Publisher    *mqtt.Publisher

	logger *slog.Logger
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
		logger: slog.Default(),
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation
	telemetry.InitMetrics()

	// 2. Scan source
	backend, err := app.initBackend()
	if err != nil {
		return err
	}
	app.Source = scansource.NewWorker(backend, scansource.WithMinInterval(app.Config.ScanInterval))

	// 3. Domain services
	app.Orchestrator = scanner.NewOrchestrator(app.Source, scanner.Config{
		TickInterval: app.Config.TickInterval,
		ScanInterval: app.Config.ScanInterval,
		StaleWindow:  app.Config.StaleWindow,
		HistoryCap:   app.Config.HistoryCap,
	}, scanner.WithLogger(app.logger.With("component", "scanner")))
	app.Analytics = analytics.NewCache(app.Orchestrator, analytics.NewEngine())
	app.Orchestrator.OnReset(app.Analytics.Invalidate)

	// 4. Outer surfaces
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Orchestrator, app.Analytics,
		reporting.NewPDFExporter(), app.Config.AllowedOrigins...)

	if app.Config.MQTT.Enabled {
		app.Publisher = mqtt.NewPublisher(app.mqttConfig(), app.Orchestrator, app.Analytics)
	}
	return nil
}

func (app *Application) initBackend() (scansource.Backend, error) {
	if app.Config.MockMode {
		app.logger.Info("Mock Mode Active: simulating wireless environment",
			"scenario", app.Config.MockScenario, "seed", app.Config.MockSeed)
		return scansource.NewMockBackend(app.Config.MockScenario, app.Config.MockSeed), nil
	}
	backend, err := scansource.NewIWBackend(app.Config.Interface)
	if err != nil {
		return nil, fmt.Errorf("init iw backend: %w", err)
	}
	return backend, nil
}

func (app *Application) mqttConfig() mqtt.Config {
	m := app.Config.MQTT
	return mqtt.Config{
		Enabled:     m.Enabled,
		Broker:      m.Broker,
		Port:        m.Port,
		ClientID:    m.ClientID,
		Username:    m.Username,
		Password:    m.Password,
		TopicPrefix: m.TopicPrefix,
		QoS:         byte(m.QoS),
		Retain:      m.Retain,
		Interval:    m.PublishInterval,
	}
}

// Run starts scanning and serves until ctx is cancelled or a server fails.
func (app *Application) Run(ctx context.Context) error {
	app.logger.Info("Starting wbands components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if app.Config.AutoStart {
		// Missing hardware is not fatal: the API reports it and
		// POST /api/scan/start can retry once WiFi is enabled.
		if err := app.Orchestrator.Start(ctx); err != nil {
			if !errors.Is(err, domain.ErrNoInterface) {
				return err
			}
			app.logger.Warn("Scanning not started", "error", err)
		}
	}

	var wg sync.WaitGroup
	errChan := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.Publisher != nil {
		if err := app.Publisher.Connect(); err != nil {
			app.logger.Error("MQTT connect failed", "error", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.Publisher.Run(ctx)
		}()
	}

	app.logger.Info("wbands ready", "addr", app.Config.Addr, "mock", app.Config.MockMode)

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Termination signal received")
	case runErr = <-errChan:
	}

	cancel()
	app.shutdown()
	wg.Wait()
	return runErr
}

// shutdown stops the poll loop before releasing the hardware worker.
func (app *Application) shutdown() {
	app.Orchestrator.Stop()
	app.Source.Close()
}
