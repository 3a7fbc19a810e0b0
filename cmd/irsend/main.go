// irsend replays a device's full IR command table over MQTT.
//
// It is the validation tool used when bringing up a new code file
// against live hardware: every command in the file is published in
// order, with an operator confirmation between commands, so each code
// can be checked against the physical device before the file is
// shipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/smartir-dispatch/internal/codes"
	"github.com/nerrad567/smartir-dispatch/internal/controller"
	"github.com/nerrad567/smartir-dispatch/internal/history"
	"github.com/nerrad567/smartir-dispatch/internal/infrastructure/config"
	"github.com/nerrad567/smartir-dispatch/internal/infrastructure/database"
	"github.com/nerrad567/smartir-dispatch/internal/infrastructure/logging"
	"github.com/nerrad567/smartir-dispatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/smartir-dispatch/internal/runner"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// cliOptions holds the parsed command-line flags.
type cliOptions struct {
	configPath string
	codesPath  string
	device     string
	unattended bool
}

func main() {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", getConfigPath(), "path to YAML config file (optional)")
	flag.StringVar(&opts.codesPath, "codes", "", "path to device code file (overrides config)")
	flag.StringVar(&opts.device, "device", "", "device label for logs and history (defaults to the code file path)")
	flag.BoolVar(&opts.unattended, "yes", false, "do not prompt between commands, send everything")
	flag.Parse()

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) so the runner can
	// stop between commands and the defer chain can tear down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context, opts cliOptions) error {
	log := logging.Default()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.codesPath != "" {
		cfg.Codes.Path = opts.codesPath
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting IR command replay",
		"version", version,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"topic", cfg.Device.Topic,
		"codes", cfg.Codes.Path,
	)

	// Load and flatten the command table before anything touches the
	// network: a bad file must never cost a broker connection.
	table, err := codes.Load(cfg.Codes.Path)
	if err != nil {
		return fmt.Errorf("loading code file: %w", err)
	}
	commands := table.Flatten()
	if len(commands) == 0 {
		return fmt.Errorf("%w in %s", codes.ErrNoCommands, cfg.Codes.Path)
	}
	log.Info("code file loaded",
		"manufacturer", table.Manufacturer(),
		"models", table.SupportedModels(),
		"commands", len(commands),
	)

	// Resolve the controller spec early for the same reason: an
	// unsupported kind or encoding must fail before connecting.
	spec, err := buildSpec(cfg)
	if err != nil {
		return err
	}
	warnOnMetadataMismatch(log, table, cfg)

	label := opts.device
	if label == "" {
		label = cfg.Codes.Path
	}

	var recorder runner.Recorder
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening history database: %w", dbErr)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				log.Error("closing history database", "error", closeErr)
			}
		}()

		repo, repoErr := history.NewRepository(ctx, db.DB)
		if repoErr != nil {
			return fmt.Errorf("initialising run history: %w", repoErr)
		}
		recorder = repo
		log.Info("run history enabled", "path", db.Path())
	}

	prompter, cleanup, err := buildPrompter(opts.unattended)
	if err != nil {
		return err
	}
	defer cleanup()

	batch, err := runner.New(runner.Options{
		Connect:  connectFunc(cfg, spec, log),
		Prompter: prompter,
		Commands: commands,
		Device:   label,
		Delay:    cfg.GetSendDelay(),
		Logger:   log.With("component", "runner"),
		Recorder: recorder,
	})
	if err != nil {
		return fmt.Errorf("preparing batch run: %w", err)
	}

	report, err := batch.Run(ctx)
	if err != nil {
		return err
	}

	log.Info("run summary",
		"run_id", report.RunID,
		"total", report.Total,
		"sent", report.Sent,
		"failed", report.Failed,
		"skipped", report.Skipped,
	)
	return nil
}

// buildSpec converts device configuration into a validated controller spec.
func buildSpec(cfg *config.Config) (controller.Spec, error) {
	kind, err := controller.ParseKind(cfg.Device.Controller)
	if err != nil {
		return controller.Spec{}, fmt.Errorf("device.controller: %w", err)
	}
	encoding, err := controller.ParseEncoding(cfg.Device.Encoding)
	if err != nil {
		return controller.Spec{}, fmt.Errorf("device.encoding: %w", err)
	}

	spec := controller.Spec{
		Kind:      kind,
		Encoding:  encoding,
		Topic:     cfg.Device.Topic,
		QoS:       byte(cfg.MQTT.QoS),
		SendDelay: cfg.GetSendDelay(),
	}
	if err := spec.Validate(); err != nil {
		return controller.Spec{}, err
	}
	return spec, nil
}

// connectFunc builds the runner's connection step: connect to the
// broker, then resolve the controller against the live client. The
// spec was validated before this is ever called, so the resolve cannot
// fail on kind or encoding after the connection is up.
func connectFunc(cfg *config.Config, spec controller.Spec, log *logging.Logger) runner.ConnectFunc {
	return func() (runner.Sender, runner.CloseFunc, error) {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return nil, nil, err
		}

		client.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		client.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		ctrl, err := controller.Resolve(spec, client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}

		log.Info("MQTT connected",
			"client_id", cfg.MQTT.Broker.ClientID,
			"controller", string(ctrl.Kind()),
		)
		return ctrl, client.Close, nil
	}
}

// buildPrompter returns the operator-pacing implementation: scripted
// continue-everything for unattended runs, readline otherwise.
func buildPrompter(unattended bool) (runner.Prompter, func(), error) {
	if unattended {
		return &runner.ScriptPrompter{}, func() {}, nil
	}

	prompter, err := runner.NewReadlinePrompter()
	if err != nil {
		return nil, nil, fmt.Errorf("initialising prompt: %w", err)
	}
	return prompter, func() { _ = prompter.Close() }, nil
}

// warnOnMetadataMismatch compares the code file's declared controller
// and encoding against the configured device, when the file carries
// that metadata.
func warnOnMetadataMismatch(log *logging.Logger, table *codes.Table, cfg *config.Config) {
	if enc := table.CommandsEncoding(); enc != "" && enc != cfg.Device.Encoding {
		log.Warn("code file encoding differs from device config",
			"file", enc,
			"config", cfg.Device.Encoding,
		)
	}
	if ctrl := table.SupportedController(); ctrl != "" && ctrl != cfg.Device.Controller {
		log.Warn("code file controller differs from device config",
			"file", ctrl,
			"config", cfg.Device.Controller,
		)
	}
}

// getConfigPath returns the configuration file path.
// Uses SMARTIR_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SMARTIR_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
