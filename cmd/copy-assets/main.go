package main

import (
	"errors"
	"os"
	"strings"

	"github.com/MarkoPoloResearchLab/copy_assets/internal/config"
	"github.com/MarkoPoloResearchLab/copy_assets/internal/logging"
	"github.com/MarkoPoloResearchLab/copy_assets/internal/mirror"
	"github.com/MarkoPoloResearchLab/copy_assets/internal/stamp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	logger  *zap.Logger
	rootCmd = &cobra.Command{
		Use:   "copy-assets [flags] [source_dir] [build_dir] [project_name]",
		Short: "Mirror static assets into the build directory",
		Long: "Copies <source_dir>/assets into <build_dir>/assets, honoring .assetignore and skipping\n" +
			"files that are already up to date. For Emscripten builds it also stamps\n" +
			"<source_dir>/web/index.html into <build_dir>/<project_name>.html.",
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args)
			if err != nil {
				logger.Error("invalid configuration", zap.Error(err))
				return err
			}
			return run(cfg, logger)
		},
	}
)

// errStepFailed is returned in strict mode when any step reported an error.
var errStepFailed = errors.New("one or more steps failed")

// run mirrors the assets and, for Emscripten builds, stamps the HTML page.
// The steps are independent: a failure in one is logged and the next still runs.
func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("copying assets",
		zap.String("source", cfg.AssetSource()),
		zap.String("target", cfg.AssetTarget()),
		zap.String("platform", string(cfg.Platform)),
	)

	failures := 0
	result, err := mirror.Mirror(mirror.Options{
		SourceRoot: cfg.AssetSource(),
		TargetRoot: cfg.AssetTarget(),
		DryRun:     cfg.DryRun,
	}, logger)
	if err != nil || result.Count(mirror.ActionFailed) > 0 {
		failures++
	}

	if cfg.Platform == config.PlatformEmscripten {
		if cfg.DryRun {
			logger.Info("would stamp template",
				zap.String("source", cfg.TemplateSource()),
				zap.String("target", cfg.TemplateTarget()),
			)
		} else if _, err := stamp.Stamp(stamp.Options{
			SourcePath:  cfg.TemplateSource(),
			TargetPath:  cfg.TemplateTarget(),
			ProjectName: cfg.ProjectName,
		}, logger); err != nil {
			failures++
		}
	}

	if failures > 0 && cfg.Strict {
		return errStepFailed
	}
	return nil
}

func init() {
	flags := rootCmd.Flags()
	flags.String("source-dir", config.DefaultSourceDir, "project root holding assets/ and web/")
	flags.String("build-dir", config.DefaultBuildDir, "build output directory")
	flags.String("assets-dir", "", "asset source directory (default <source-dir>/assets)")
	flags.String("project-name", config.DefaultProjectName, "project name used for the stamped HTML page")
	flags.String("platform", "", "target platform: native or emscripten (default from CMAKE_SYSTEM_NAME)")
	flags.Bool("dry-run", false, "report what would be copied without writing")
	flags.Bool("strict", false, "exit with an error when any step fails")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "console", "log format: console or json")

	viper.SetEnvPrefix("ASSETS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	bindConfig(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		viper.SetConfigName("copy-assets")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return err
			}
		}

		var err error
		logger, err = logging.NewLogger()
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("loaded config file", zap.String("path", used))
		}
		return nil
	}
}

func bindConfig(cmd *cobra.Command) {
	for _, name := range []string{
		"source-dir", "build-dir", "assets-dir", "project-name", "platform",
		"dry-run", "strict", "log-level", "log-format",
	} {
		viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}
	viper.BindEnv("cmake-system-name", "CMAKE_SYSTEM_NAME")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		} else {
			os.Stderr.WriteString(err.Error() + "\n")
		}
		os.Exit(1)
	}
	if logger != nil {
		_ = logger.Sync()
	}
}
