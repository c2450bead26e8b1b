package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/logger"
)

// options are the flags shared by every command
type options struct {
	configPath string
	simulate   bool
	seed       int64
	people     int
	web        bool
	port       int
	interval   time.Duration
	jsonOut    bool
	yes        bool
	olderThan  time.Duration
	quiet      bool

	set  map[string]bool
	args []string
}

func newFlagSet(name string, o *options, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.BoolVar(&o.simulate, "simulate", false, "track a simulated household instead of real windows")
	fs.Int64Var(&o.seed, "seed", 0, "simulation seed")
	fs.IntVar(&o.people, "people", 0, "simulated people (2-9, 0 picks one from the seed)")
	fs.BoolVar(&o.web, "web", false, "serve the HTTP API")
	fs.IntVar(&o.port, "port", 0, "HTTP API port")
	fs.DurationVar(&o.interval, "interval", 0, "poll interval")
	fs.BoolVar(&o.jsonOut, "json", false, "print JSON")
	fs.BoolVar(&o.yes, "yes", false, "skip the confirmation prompt")
	fs.DurationVar(&o.olderThan, "older-than", 0, "clear only sessions older than this")
	fs.BoolVar(&o.quiet, "quiet", false, "log only, no live table")
	return fs
}

// parseOptions accepts flags before, between and after positional arguments,
// so both "report week --json" and "report --json week" work
func parseOptions(name string, args []string, out io.Writer) (*options, error) {
	o := &options{set: make(map[string]bool)}
	fs := newFlagSet(name, o, out)

	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		o.args = append(o.args, rest[0])
		args = rest[1:]
	}

	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// arg returns the i-th positional argument or def
func (o *options) arg(i int, def string) string {
	if i < len(o.args) {
		return o.args[i]
	}
	return def
}

// loadConfig applies defaults < file < env < flags and validates the result
func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.set["simulate"] {
		cfg.Tracker.Simulate = o.simulate
	}
	if o.set["seed"] {
		cfg.Tracker.SimulationSeed = o.seed
		cfg.Tracker.Simulate = true
	}
	if o.set["people"] {
		cfg.Tracker.SimulationPeople = o.people
	}
	if o.set["web"] {
		cfg.Web.Enabled = o.web
	}
	if o.set["port"] {
		if err := cfg.SetWebPort(o.port); err != nil {
			return nil, err
		}
		cfg.Web.Enabled = true
	}
	if o.set["interval"] {
		if err := cfg.SetPollInterval(o.interval); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}
