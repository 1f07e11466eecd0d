// Package commands provides the CLI commands for the go-taint-trace tool.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/l3aro/go-taint-trace/internal/config"
	"github.com/l3aro/go-taint-trace/internal/log"
	"github.com/l3aro/go-taint-trace/pkg/module"
	"github.com/l3aro/go-taint-trace/pkg/tracer"
)

// ErrIssuesFound is returned by scan when at least one issue was reported.
var ErrIssuesFound = errors.New("issues found")

var cfg *config.Config

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "gtt",
	Short: "go-taint-trace - Backward taint tracing for JavaScript and TypeScript",
	Long: `go-taint-trace finds where the values of JavaScript and TypeScript
expressions come from, across functions and modules, and runs security
detectors on top of the traces.

Commands:
  trace       Print every origin of an expression
  scan        Run the security detectors over a project
  init        Create a configuration file interactively

Use "gtt [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		var err error
		if configPath != "" {
			cfg, err = config.LoadFromFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.Configure(level, cfg.LogJSON)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "Config file (default: .gtt/config.yaml, then ~/.gtt/config.yaml)")
	RootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	RootCmd.AddCommand(traceCmd)
	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(initCmd)
}

// engine is the loader, resolver and tracer shared by one command run.
type engine struct {
	loader   *module.Loader
	resolver *module.Resolver
	tracer   *tracer.Tracer
	log      log.Logger
}

func newEngine() *engine {
	logger := log.Default()
	resolver := module.NewResolver(module.ResolverOptions{})
	if cfg.CacheFile != "" {
		if err := resolver.Load(cfg.CacheFile); err != nil {
			logger.Warn("ignoring resolve cache", "path", cfg.CacheFile, "error", err)
		}
	}
	loader := module.NewLoader(module.LoaderOptions{
		CacheSize: cfg.ParseCacheSize,
		Logger:    logger,
	})
	return &engine{
		loader:   loader,
		resolver: resolver,
		tracer: tracer.New(tracer.Options{
			CycleBound:      cfg.CycleBound,
			MaxCallDepth:    cfg.MaxCallDepth,
			MaxNestedTraces: cfg.MaxNestedTraces,
			Debug:           cfg.Debug,
			Logger:          logger,
			Loader:          loader,
			Resolver:        resolver,
		}),
		log: logger,
	}
}

// close persists the resolve cache.
func (e *engine) close() {
	if cfg.CacheFile == "" {
		return
	}
	if err := e.resolver.Save(cfg.CacheFile); err != nil {
		e.log.Warn("saving resolve cache", "path", cfg.CacheFile, "error", err)
		return
	}
	loads, resolves := e.loader.Stats(), e.resolver.Stats()
	e.log.Debug("cache usage",
		"modules", loads.Length, "module_hit_rate", loads.HitRate(),
		"resolutions", resolves.Length, "resolve_hit_rate", resolves.HitRate())
}

func useColors() bool {
	return color.SupportColor() && os.Getenv("NO_COLOR") == ""
}
