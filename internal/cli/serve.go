package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/amterp/ra"
	"go.uber.org/zap"

	"github.com/amterp/forts/internal/api"
)

const shutdownTimeout = 10 * time.Second

func registerServe(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("serve")
	cmd.SetDescription("Start web interface")

	ctx.ServePort, _ = ra.NewInt("port").
		SetOptional(true).
		SetDefault(0).
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Port to listen on (default from config; will try incrementally if in use)").
		Register(cmd)

	ctx.ServeDev, _ = ra.NewBool("dev").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Reload pages when templates change").
		Register(cmd)

	ctx.ServeTemplates, _ = ra.NewString("templates").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Template directory to serve and watch in dev mode").
		Register(cmd)

	ctx.ServeNoOpen, _ = ra.NewBool("no-open").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Don't open browser automatically").
		Register(cmd)

	ctx.ServeUsed, _ = parent.RegisterCmd(cmd)
}

func runServe(configPath string, port int, dev bool, templateDir string, noOpen bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := mustApp(ctx, AppOptions{ConfigPath: configPath, Server: true})
	defer app.Close()

	cfg := app.Config
	dev = dev || cfg.Server.Dev
	if port == 0 {
		port = cfg.Server.Port
	}
	if !dev {
		templateDir = ""
	}

	images := api.NewImagePolicy(cfg.ImageHosts())
	views, err := api.NewViews(api.TemplatesFS(templateDir), api.TemplateFuncs(images), app.Logger)
	if err != nil {
		app.Fatal(err)
	}
	handler := api.NewHandler(app.Service, views, images, app.Logger)

	actualPort := findAvailablePort(port)
	server := api.NewServer(handler, api.ServerOptions{
		Port:         actualPort,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		Dev:          dev,
		TemplateDir:  templateDir,
	}, app.Logger, app.Metrics)

	url := fmt.Sprintf("http://localhost:%d", actualPort)
	fmt.Printf("Forts web server running at %s\n", RenderURL(url))
	if dev {
		PrintInfo("Dev mode: pages reload when templates change")
	}
	fmt.Println("Press Ctrl+C to stop")

	if !noOpen {
		openBrowser(url + "/forts")
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			app.Fatal(err)
		}
	case <-ctx.Done():
		app.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("shutdown did not complete", zap.Error(err))
		}
	}
}

// findAvailablePort tries ports starting from startPort until it finds one that's available.
func findAvailablePort(startPort int) int {
	maxAttempts := 100
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		if isPortAvailable(port) {
			return port
		}
	}
	return startPort
}

func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
