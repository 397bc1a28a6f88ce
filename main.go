package main

import (
	"embed"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.ghostframe.dev/ghostframe/config"
	"go.ghostframe.dev/ghostframe/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      config.LogLevel(),
		TimeFormat: time.Kitchen,
	})))
	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	appService := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Ghostframe",
		Description: "Invisible AI overlay for meetings and interviews",
		Services: []application.Service{
			application.NewService(appService),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			ActivationPolicy: application.ActivationPolicyAccessory,
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// Frameless, transparent, always on top
	overlay := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:          "Ghostframe",
		Width:          900,
		Height:         420,
		URL:            "/",
		Frameless:      true,
		AlwaysOnTop:    true,
		BackgroundType: application.BackgroundTypeTransparent,
		Mac: application.MacWindow{
			Backdrop:    application.MacBackdropTransparent,
			WindowLevel: application.MacWindowLevelFloating,
		},
		DevToolsEnabled: version == "dev",
	})

	// Hide instead of destroy so the tray and hotkeys can bring it back
	overlay.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		overlay.Hide()
	})

	appService.Init(wailsApp, overlay)

	systemTray := wailsApp.SystemTray.New()
	systemTray.SetLabel("GF")

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show / Hide").
		SetAccelerator("CmdOrCtrl+\\").
		OnClick(func(*application.Context) { logErr("toggle visibility", appService.ToggleVisibility()) })
	trayMenu.Add("Start / Stop Recording").
		OnClick(func(*application.Context) {
			go func() { logErr("toggle recording", appService.ToggleRecording()) }()
		})
	trayMenu.Add("Toggle Content Protection").
		OnClick(func(*application.Context) { logErr("toggle content protection", appService.ToggleContentProtection()) })
	trayMenu.Add("Toggle Click-Through").
		OnClick(func(*application.Context) { logErr("toggle click-through", appService.ToggleClickThrough()) })
	trayMenu.Add("Start Automation").
		OnClick(func(*application.Context) { logErr("start automation", appService.StartAutomation()) })

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(*application.Context) {
			appService.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}

func logErr(op string, err error) {
	if err != nil {
		slog.Warn(op, "error", err)
	}
}
