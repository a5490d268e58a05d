package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/theimaginaryfoundation/inbox-stats/inbox"
	"github.com/theimaginaryfoundation/inbox-stats/logger"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	if cfg.PrintSchema {
		if err := printSchema(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err.Error())
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := inbox.Run(ctx, runOptions(cfg, log))
	if err != nil {
		_ = log.Sync()
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "conversations=%d threads_scanned=%d threads_charted=%d bytes_written=%d out=%s\n",
		res.Conversations, res.ThreadsScanned, res.ThreadsCharted, res.BytesWritten, cfg.OutputPath)
}

func runOptions(cfg Config, log *zap.Logger) inbox.Options {
	return inbox.Options{
		MeIdentity:   cfg.MeIdentity,
		MinMessages:  cfg.MinMessages,
		InputRoot:    cfg.InputRoot,
		OutputPath:   cfg.OutputPath,
		ReportPath:   cfg.ReportPath,
		PrettyReport: cfg.Pretty,
		Chart: inbox.ChartOptions{
			Width:         vg.Length(cfg.WidthInches) * vg.Inch,
			Height:        vg.Length(cfg.HeightInches) * vg.Inch,
			MaxLabelRunes: cfg.MaxLabelRunes,
		},
		Logger: log,
	}
}

func printSchema() error {
	schema, err := inbox.ThreadSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	fl := defaultConfig()

	// Avoid mutating the global FlagSet if called from tests.
	fs.SetOutput(os.Stderr)

	fs.StringVar(&fl.InputRoot, "in", fl.InputRoot, "Directory holding one folder per conversation (Messenger-style inbox export)")
	fs.StringVar(&fl.OutputPath, "out", fl.OutputPath, "Path to write the SVG bar chart to (replaced if it exists)")
	fs.StringVar(&fl.ReportPath, "report", "", "Optional path to write a JSON report of every scanned thread")
	fs.StringVar(&fl.MeIdentity, "me", fl.MeIdentity, "Sender name whose messages count as sent by me")
	fs.Uint64Var(&fl.MinMessages, "min-messages", fl.MinMessages, "Only chart threads with more than this many messages")
	fs.Float64Var(&fl.WidthInches, "width", 0, "Chart width in inches (0 = sized to the number of bars)")
	fs.Float64Var(&fl.HeightInches, "height", 0, "Chart height in inches (0 = 6in)")
	fs.IntVar(&fl.MaxLabelRunes, "max-label-chars", 0, "Truncate thread titles on the x axis to this many characters (0 = no limit)")
	fs.BoolVar(&fl.Pretty, "pretty", false, "Pretty-print the JSON report")
	fs.StringVar(&fl.LogLevel, "log-level", fl.LogLevel, "Log level: debug|info|warn|error")
	fs.BoolVar(&fl.LogJSON, "log-json", false, "Emit JSON logs instead of console output")
	fs.StringVar(&fl.ConfigPath, "config", "", "Optional YAML config file; flags given explicitly override it")
	fs.BoolVar(&fl.PrintSchema, "print-schema", false, "Print the JSON Schema of a thread file and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/inbox-chart")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/inbox-chart -in bin/inbox -out chart.svg -me \"Will Taylor\" -min-messages 1000")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/inbox-chart -config inbox-chart.yaml -report stats.json -pretty")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()
	if fl.ConfigPath != "" {
		if err := loadConfigFile(fl.ConfigPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Explicit flags win over the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "in":
			cfg.InputRoot = fl.InputRoot
		case "out":
			cfg.OutputPath = fl.OutputPath
		case "report":
			cfg.ReportPath = fl.ReportPath
		case "me":
			cfg.MeIdentity = fl.MeIdentity
		case "min-messages":
			cfg.MinMessages = fl.MinMessages
		case "width":
			cfg.WidthInches = fl.WidthInches
		case "height":
			cfg.HeightInches = fl.HeightInches
		case "max-label-chars":
			cfg.MaxLabelRunes = fl.MaxLabelRunes
		case "pretty":
			cfg.Pretty = fl.Pretty
		case "log-level":
			cfg.LogLevel = fl.LogLevel
		case "log-json":
			cfg.LogJSON = fl.LogJSON
		}
	})
	cfg.ConfigPath = fl.ConfigPath
	cfg.PrintSchema = fl.PrintSchema

	if cfg.InputRoot != "" {
		cfg.InputRoot = filepath.Clean(cfg.InputRoot)
	}
	if cfg.OutputPath != "" {
		cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	}
	if cfg.ReportPath != "" {
		cfg.ReportPath = filepath.Clean(cfg.ReportPath)
	}
	return cfg, nil
}
