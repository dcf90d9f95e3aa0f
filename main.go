package main

import (
	"embed"
	"io"
	"log"
	"os"

	"picviewer/internal/app"
	"picviewer/internal/config"
	"picviewer/internal/infrastructure/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatal(err)
	}

	appLogger, closer := newLogger(cfg)
	defer closer.Close()

	// Create an instance of the app structure
	application := app.NewApp(cfg, appLogger, os.Args[1:])

	err = wails.Run(&options.App{
		Title:            cfg.Window.Title,
		Width:            cfg.Window.Width,
		Height:           cfg.Window.Height,
		MinWidth:         400,
		MinHeight:        300,
		BackgroundColour: &options.RGBA{R: 32, G: 32, B: 32, A: 255},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Logger:           logging.NewWailsLoggerAdapterWithLevel(appLogger, logging.ParseLevel(cfg.Logging.Level)),
		LogLevel:         wailsLogLevel(cfg.Logging.Level),
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: options.Normal,
		Bind: []interface{}{
			application,
		},
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			ZoomFactor:           1.0,
		},
		Mac: &mac.Options{
			TitleBar:   mac.TitleBarDefault(),
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   cfg.Window.Title,
				Message: "",
			},
		},
	})

	if err != nil {
		appLogger.Error("Application exited with error", "error", err)
		log.Fatal(err)
	}
}

// newLogger logs to a rotating file when one is configured, otherwise to stderr
func newLogger(cfg *config.Config) (logging.Logger, io.Closer) {
	if opts, ok := cfg.FileLogging(); ok {
		return logging.NewFileLogger(opts)
	}
	return logging.NewWriterLogger(os.Stderr, logging.ParseLevel(cfg.Logging.Level)), io.NopCloser(nil)
}

func wailsLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
