package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/daemon"
	"github.com/openbob/openbob/internal/database"
	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/internal/metrics"
	"github.com/openbob/openbob/internal/reporter"
	"github.com/openbob/openbob/internal/tracker"
	"github.com/openbob/openbob/internal/web"
	"github.com/openbob/openbob/pkg/detector"
	"github.com/openbob/openbob/pkg/utils"
	"github.com/openbob/openbob/pkg/window"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const appName = "openbob"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	if command == "help" || command == "--help" || command == "-h" {
		printUsage()
		return
	}

	opts, err := parseOptions(command, os.Args[2:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	switch command {
	case "run":
		runForeground(opts)
	case "start":
		startDaemon(opts)
	case "stop":
		stopDaemon(opts)
	case "status":
		showStatus(opts)
	case "report":
		generateReport(opts)
	case "clear":
		clearDatabase(opts)
	case "version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
		fmt.Printf("  platforms: %s\n", strings.Join(detector.Supported(), ", "))
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`openbob - Window observation and time accounting

Usage:
  openbob <command> [options]

Commands:
  run                Track windows in the foreground with a live table
  start              Start the tracking daemon
  stop               Stop the tracking daemon
  status             Show daemon status and the windows open right now
  report [period]    Generate time report (period: day, week, month)
  clear              Clear all journal data from the database
  version            Show version information
  help               Show this help message

Options:
  --config PATH      YAML config file (default: %s)
  --simulate         Track a simulated household instead of real windows
  --seed N           Simulation seed (implies --simulate)
  --people N         Simulated people, 2-9
  --web              Serve the HTTP API
  --port N           HTTP API port (implies --web)
  --interval D       Poll interval, e.g. 2s
  --json             JSON report output
  --yes              Do not ask before clearing
  --older-than D     clear only sessions older than D, e.g. 720h
  --quiet            No live table for run

Examples:
  openbob run --simulate --seed 7
  openbob start --web
  openbob report week --json
  openbob stop

Environment Variables:
  OPENBOB_TRACKER_POLL_INTERVAL   Poll interval (100ms-60s)
  OPENBOB_TRACKER_SIMULATE        Use the simulation provider (true/false)
  OPENBOB_TRACKER_EXCLUDE_TITLES  Comma separated window titles to ignore
  OPENBOB_DATABASE_PATH           Database file path
  OPENBOB_DATABASE_ENABLED        Write the session journal (true/false)
  OPENBOB_DAEMON_PID_FILE         PID file path
  OPENBOB_WEB_PORT                HTTP API port
  OPENBOB_LOG_LEVEL               debug, info, warn, error

Version: %s
`, defaultConfigPath(), version)
}

func defaultConfigPath() string {
	p, err := config.DefaultFilePath()
	if err != nil {
		return "none"
	}
	return p
}

func fatal(msg string, err error) {
	logger.Error(msg, err)
	os.Exit(1)
}

func mustConfig(opts *options) *config.Config {
	cfg, err := loadConfig(opts)
	if err != nil {
		fatal("Failed to load configuration", err)
	}
	return cfg
}

func runForeground(opts *options) {
	cfg := mustConfig(opts)

	dm := daemon.New(cfg.Daemon.PIDFile)
	if running, pid, _ := dm.IsRunning(); running {
		logger.Warnf("A tracking daemon is already running (PID: %d); both will write the journal", pid)
	}

	if err := runTracker(cfg, !opts.quiet); err != nil {
		fatal("Tracker error", err)
	}
}

func startDaemon(opts *options) {
	cfg := mustConfig(opts)

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		fatal("Failed to check daemon status", err)
	}
	if running {
		fmt.Printf("Daemon is already running (PID: %d)\n", pid)
		os.Exit(1)
	}

	if !daemon.IsChild() {
		// Parent process: spawn the detached child and exit
		pid, err := daemon.Spawn(os.Args)
		if err != nil {
			fatal("Failed to start daemon", err)
		}
		fmt.Printf("Daemon started successfully (PID: %d)\n", pid)
		if cfg.Web.Enabled {
			fmt.Printf("Web API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
		}
		fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
		return
	}

	if err := logger.SetOutputFile(cfg.Daemon.LogFile); err != nil {
		fatal("Failed to open log file", err)
	}
	defer logger.CloseLogFile()

	if err := dm.WritePID(); err != nil {
		fatal("Failed to write PID file", err)
	}
	defer dm.RemovePID()

	if err := runTracker(cfg, false); err != nil {
		logger.Error("Tracker error", err)
	}
}

// runTracker wires provider, journal, metrics and web server around one
// tracker service and blocks until SIGINT/SIGTERM
func runTracker(cfg *config.Config, live bool) error {
	exclude := window.ExcludeProcess(os.Getpid())

	provider, err := detector.New(detector.Options{
		Window:   window.Options{Exclude: exclude, ExcludedTitles: cfg.Tracker.ExcludeTitles},
		Simulate: cfg.Tracker.Simulate,
		Seed:     cfg.Tracker.SimulationSeed,
		People:   cfg.Tracker.SimulationPeople,
	})
	if err != nil {
		return err
	}
	defer provider.Close()
	logger.Infof("Window provider initialized: %s", provider.Name())

	m := metrics.New()
	svcOpts := []tracker.Option{tracker.WithExclude(exclude), tracker.WithRecorder(m)}

	var repo *database.Repository
	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Initialize(); err != nil {
			return err
		}

		repo = database.NewRepository(db)
		journal := database.NewJournal(repo, provider.Name())
		svcOpts = append(svcOpts, tracker.WithSink(journal))
		logger.Infof("Session journal %s", journal.SessionID())
	}

	svc := tracker.NewService(cfg, provider, svcOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var webServer *web.Server
	if cfg.Web.Enabled {
		webServer = web.NewServer(cfg, svc.Accumulator(), repo, m, 0)
		go func() {
			if err := webServer.Start(); err != nil {
				logger.Error("Web server error", err)
			}
		}()
	}

	if live {
		go showLive(ctx, svc, cfg.Tracker.PollInterval, provider.Name())
	}

	logger.Infof("Starting %s tracker...", appName)
	logger.Debugf("%s", cfg.String())

	err = svc.Start(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("Received shutdown signal")
		err = nil
	}

	if webServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := webServer.Shutdown(shutdownCtx); serr != nil {
			logger.Error("Error shutting down web server", serr)
		}
	}

	if err == nil {
		logger.Info("Tracker stopped successfully")
	}
	return err
}

func showLive(ctx context.Context, svc *tracker.Service, interval time.Duration, provider string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Print(clearScreen)
			acc := svc.Accumulator()
			renderLive(os.Stdout, acc.Snapshot(), acc.Stats(), provider)
		}
	}
}

func stopDaemon(opts *options) {
	cfg := mustConfig(opts)
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		fatal("Failed to check daemon status", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		fatal("Failed to stop daemon", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus(opts *options) {
	cfg := mustConfig(opts)
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		fatal("Failed to check daemon status", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
		if cfg.Web.Enabled {
			fmt.Printf("Web API: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
		}
	}

	if cfg.Database.Enabled {
		dbPath := cfg.Database.Path
		if dbPath == "" {
			dbPath, _ = database.GetDefaultDBPath()
		}
		fmt.Printf("Database: %s\n", dbPath)
		showLatestSession(cfg)
	}

	// One poll shows what the tracker would see right now
	provider, err := detector.New(detector.Options{
		Window:   window.Options{Exclude: window.ExcludeProcess(os.Getpid()), ExcludedTitles: cfg.Tracker.ExcludeTitles},
		Simulate: cfg.Tracker.Simulate,
		Seed:     cfg.Tracker.SimulationSeed,
		People:   cfg.Tracker.SimulationPeople,
	})
	if err != nil {
		fmt.Printf("\nCould not detect windows: %v\n", err)
		fmt.Printf("Supported platforms: %s\n", strings.Join(detector.Supported(), ", "))
		return
	}
	defer provider.Close()

	svc := tracker.NewService(cfg, provider)
	if err := svc.PollOnce(); err != nil {
		fmt.Printf("\nCould not enumerate windows: %v\n", err)
		return
	}

	fmt.Printf("\nProvider: %s\n", provider.Name())
	acc := svc.Accumulator()
	renderLive(os.Stdout, acc.Snapshot(), acc.Stats(), provider.Name())
}

func showLatestSession(cfg *config.Config) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		return
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return
	}

	latest, err := database.NewRepository(db).GetLatestSession()
	if err != nil || latest == nil {
		return
	}
	fmt.Printf("Last recorded window: %s - %s (%s, focus %s)\n",
		latest.AppName, utils.Truncate(latest.Title, 50),
		latest.LastSeenAt.Format("2006-01-02 15:04"),
		utils.FormatDuration(time.Duration(latest.FocusSeconds*float64(time.Second))))
}

func openRepository(cfg *config.Config) (*database.DB, *database.Repository) {
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		fatal("Failed to connect to database", err)
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		fatal("Failed to initialize database", err)
	}
	return db, database.NewRepository(db)
}

func generateReport(opts *options) {
	cfg := mustConfig(opts)
	periodType := opts.arg(0, "day")

	db, repo := openRepository(cfg)
	defer db.Close()

	rep := reporter.New(cfg, repo)
	report, err := rep.GenerateReport(periodType)
	if err != nil {
		fatal("Failed to generate report", err)
	}

	if opts.jsonOut {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			fatal("Failed to format JSON", err)
		}
		fmt.Println(jsonStr)
		return
	}
	fmt.Println(rep.FormatReportText(report))
}

func clearDatabase(opts *options) {
	cfg := mustConfig(opts)

	if opts.olderThan > 0 {
		db, repo := openRepository(cfg)
		defer db.Close()

		deleted, err := repo.DeleteOldSessions(time.Now().Add(-opts.olderThan))
		if err != nil {
			fatal("Failed to delete old sessions", err)
		}
		fmt.Printf("Deleted %d sessions older than %v\n", deleted, opts.olderThan)
		return
	}

	if !opts.yes {
		fmt.Print("This will delete all journal data. Are you sure? (yes/no): ")
		response, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "yes" && response != "y" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	db, repo := openRepository(cfg)
	defer db.Close()

	if err := repo.Clear(); err != nil {
		fatal("Failed to clear database", err)
	}

	fmt.Println("Database cleared successfully")
}
