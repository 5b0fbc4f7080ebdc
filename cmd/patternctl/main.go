// Command patternctl detects design patterns in TypeScript sources and
// builds, validates and embeds a labeled pattern dataset.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/config"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	vlog "github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "patternctl: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string) error {
	return execute(args, os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(&app{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

// app carries the state shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	envFile    string
	verbose    bool
	jsonLogs   bool

	cfg     *config.Config
	secrets config.Secrets
	logger  *slog.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "patternctl",
		Short:         "Design pattern detection and dataset tooling for TypeScript",
		Version:       version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file (default: discovered .patternctl.yml)")
	pf.StringVar(&a.envFile, "env-file", ".env", "Environment file with GITHUB_TOKEN and S3 credentials")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug messages")
	pf.BoolVar(&a.jsonLogs, "log-json", false, "Log as JSON")

	root.AddCommand(
		newDetectCmd(a),
		newMineCmd(a),
		newCurateCmd(a),
		newValidateCmd(a),
		newEmbedCmd(a),
		newMetricsCmd(a),
		newDriftCmd(a),
	)
	return root
}

// setup loads the config, the secrets and the logger once flags are parsed.
func (a *app) setup() error {
	a.logger = vlog.New(a.stderr, vlog.Options{Verbose: a.verbose, JSON: a.jsonLogs})

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg, path, err := config.Resolve(a.configPath, cwd)
	if err != nil {
		return err
	}
	if path != "" {
		a.logger.Debug("config loaded", "path", path)
	}
	a.cfg = cfg

	secrets, err := config.LoadSecrets(a.envFile)
	if err != nil {
		return err
	}
	a.secrets = secrets
	return nil
}

// newEngine builds an engine from the configured rules, counting
// detections on reg when it is non-nil.
func (a *app) newEngine(reg prometheus.Registerer) (*engine.Engine, error) {
	table, errs := a.cfg.Table()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, errs[0])
	}
	var opts []engine.Option
	if reg != nil {
		opts = append(opts, engine.WithMetrics(engine.NewMetrics(reg)))
	}
	return engine.NewWithRules(table, opts...), nil
}

// metricsFlag registers --metrics-file on fs.
func metricsFlag(fs *flag.FlagSet, dst *string) {
	fs.StringVar(dst, "metrics-file", "", "Write Prometheus counters to this textfile after the run")
}

// writeMetrics writes reg to path in the textfile exposition format.
func writeMetrics(path string, reg *prometheus.Registry) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
