package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/internal/telemetry"
	"github.com/marmos91/glasshouse/pkg/config"
	"github.com/marmos91/glasshouse/pkg/filesystem"
	"github.com/marmos91/glasshouse/pkg/geolocation"
	"github.com/marmos91/glasshouse/pkg/metrics"
	"github.com/marmos91/glasshouse/pkg/reputation"
	"github.com/marmos91/glasshouse/pkg/shell"
	"github.com/marmos91/glasshouse/pkg/sshserver"
	"github.com/marmos91/glasshouse/pkg/store"

	// Registers the Prometheus-backed metrics constructors via init().
	_ "github.com/marmos91/glasshouse/pkg/metrics/prometheus"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the glasshouse honeypot",
	Long: `Start the glasshouse SSH honeypot with the specified configuration.

By default, the honeypot runs in the background (daemon mode). Use
--foreground to run in the foreground for debugging or when managed by a
process supervisor.

Examples:
  # Start in background (default)
  glasshouse start

  # Start in foreground
  glasshouse start --foreground

  # Start with a custom config file
  glasshouse start --config /etc/glasshouse/config.yaml`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/glasshouse/glasshouse.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/glasshouse/glasshouse.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "glasshouse",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "glasshouse",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	fmt.Println("glasshouse - an SSH honeypot")
	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()), "interfaces", cfg.Interfaces)

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	db, err := store.Open(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	actor := store.NewActor(db)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		actor.Shutdown(shutdownCtx)
	}()

	fs := filesystem.New()
	if !cfg.DisableBaseTarGzLoading && cfg.BaseTarGzPath != "" {
		if err := seedFilesystem(fs, cfg.BaseTarGzPath); err != nil {
			logger.Warn("failed to seed filesystem from archive", logger.Path(cfg.BaseTarGzPath), logger.Err(err))
		}
	}

	var repClient *reputation.Client
	if cfg.Reputation.APIKey != "" {
		repClient = reputation.NewClient(cfg.Reputation.APIKey, actor, cfg.Reputation.MaxAge, metrics.NewEnrichmentMetrics())
	}
	geoClient := geolocation.NewClient(actor, cfg.Geolocation.MaxAge, cfg.Geolocation.Disabled, metrics.NewEnrichmentMetrics())

	sup, err := sshserver.NewSupervisor(cfg, sshserver.Deps{
		FS:          fs,
		Registry:    shell.NewDefaultRegistry(),
		Actor:       actor,
		Reputation:  repClient,
		Geolocation: geoClient,
		Metrics:     metrics.NewSessionMetrics(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize ssh supervisor: %w", err)
	}

	var httpServer *http.Server
	if cfg.HTTP.Enabled {
		httpServer = newControlServer(cfg)
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("control http server error", logger.Err(err))
			}
		}()
		logger.Info("control surface listening", "addr", cfg.HTTP.Addr)
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() { serverDone <- sup.Serve(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("honeypot is running, press ctrl+c to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, draining sessions")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", logger.Err(err))
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", logger.Err(err))
			return err
		}
	}

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}

	logger.Info("honeypot stopped")
	return nil
}

func seedFilesystem(fs *filesystem.FS, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	count, err := fs.IngestArchive(f)
	if err != nil {
		return err
	}
	logger.Info("filesystem seeded from archive", "entries", count)
	return nil
}

// newControlServer builds the ambient /healthz and /metrics surface. It is
// entirely separate from the honeypot's SSH listeners, for operators and
// monitoring only.
func newControlServer(cfg *config.Config) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Metrics.Enabled {
		if reg := metrics.GetRegistry(); reg != nil {
			r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		}
	}

	return &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: r,
	}
}

func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

// startDaemon starts the honeypot as a detached background process.
func startDaemon() error {
	stateDir := GetDefaultStateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	pidPath := pidFile
	if pidPath == "" {
		pidPath = filepath.Join(stateDir, "glasshouse.pid")
	}

	if _, err := os.Stat(pidPath); err == nil {
		if pidData, err := os.ReadFile(pidPath); err == nil {
			var pid int
			if _, err := fmt.Sscanf(string(pidData), "%d", &pid); err == nil {
				if process, err := os.FindProcess(pid); err == nil {
					if err := process.Signal(syscall.Signal(0)); err == nil {
						return fmt.Errorf("glasshouse is already running (PID %d)\nUse 'glasshouse stop' to stop the running instance", pid)
					}
				}
			}
		}
		_ = os.Remove(pidPath)
	}

	logPath := logFile
	if logPath == "" {
		logPath = filepath.Join(stateDir, "glasshouse.log")
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	daemonArgs := []string{"start", "--foreground", "--pid-file", pidPath}
	if GetConfigFile() != "" {
		daemonArgs = append(daemonArgs, "--config", GetConfigFile())
	}

	cmd := exec.Command(executable, daemonArgs...)

	logFileHandle, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	cmd.Stdout = logFileHandle
	cmd.Stderr = logFileHandle
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		_ = logFileHandle.Close()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	_ = logFileHandle.Close()

	fmt.Printf("glasshouse started in background (PID %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", pidPath)
	fmt.Printf("  Log file: %s\n", logPath)
	fmt.Println("\nUse 'glasshouse stop' to stop the daemon")

	return nil
}
