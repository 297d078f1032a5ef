package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nebulabroadcast/html-template-builder/internal/config"
	"github.com/nebulabroadcast/html-template-builder/internal/logging"
)

const envPrefix = "TEMPLATE_BUILDER"

var cfgFile string

var (
	watchMode bool
	distMode  bool
)

// rootCmd builds every template, then optionally watches or packages.
var rootCmd = &cobra.Command{
	Use:   "template-builder",
	Short: "Build HTML broadcast graphics templates",
	Long: `Builds every template under the source directory into a self-contained
HTML page and an XML descriptor for the playout server.

Each template is a directory holding any of template.html, template.sass
(or template.scss), template.js and manifest.json. Other files are copied
next to the output unchanged.

Examples:
  template-builder                 Build all templates once
  template-builder --watch         Build, then rebuild on every change
  template-builder --dist          Build, then package each template as a zip
  template-builder list -f json    Show what each template contains`,
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is .template-builder.yml, can also use TEMPLATE_BUILDER_CONFIG_FILE env var)")
	pf.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("src", config.DefaultSrcDir, "template source directory")
	pf.String("build", config.DefaultBuildDir, "build output directory")
	pf.String("dist-dir", config.DefaultDistDir, "distribution archive directory")
	pf.String("core", config.DefaultCoreDir, "directory holding core.html, core.sass and core.js")

	bindFlags(pf, map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
		"src":        "paths.src_dir",
		"build":      "paths.build_dir",
		"dist-dir":   "paths.dist_dir",
		"core":       "paths.core_dir",
	})

	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "rebuild templates when their sources change")
	rootCmd.Flags().BoolVarP(&distMode, "dist", "d", false, "package built templates into zip archives (overrides --watch)")
}

// initConfig initializes the configuration system with support for multiple config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. TEMPLATE_BUILDER_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .template-builder.yml in current directory
//
// A .env file in the working directory is loaded first, so it can supply any
// TEMPLATE_BUILDER_ variable. Variables already set in the environment win.
func initConfig() {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: cannot load .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv(envPrefix + "_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".template-builder")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the configuration.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = cfg.Log.Format
	return logging.NewLogger(lc), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a, err := newApp(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		logger.Error(ctx, err, "Startup failed")
		return err
	}
	defer a.Close()

	return run(ctx, a, distMode, watchMode)
}

// run executes the selected mode. Per-template failures are reported but
// never turn into an error; only the registry or the watcher failing does.
func run(ctx context.Context, a *app, dist, watch bool) error {
	results, err := a.buildAll(ctx)
	if err != nil {
		return err
	}

	switch {
	case dist:
		a.distribute(ctx, results)
		return nil
	case watch:
		if err := a.watch(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			a.report.Infof("Keyboard interrupt. Shutting down")
		}
		return nil
	}
	return nil
}
