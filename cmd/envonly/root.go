package main

import (
	"os"

	charm "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/HugoDaniel/envonly/internal/config"
	"github.com/HugoDaniel/envonly/internal/logger"
)

// app holds the flags shared by every command.
type app struct {
	configFile string
	noConfig   bool
	verbose    bool

	log *charm.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logger.Default()}

	root := &cobra.Command{
		Use:   "envonly",
		Short: "Separate server-only and client-only JavaScript",
		Long: `envonly rewrites env-only macro calls for one environment and removes
the code that becomes unreachable. It can also check imports against
per-environment deny rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Use specific config `file`")
	flags.BoolVar(&a.noConfig, "no-config", false, "Ignore config files")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output")

	root.AddCommand(newTransformCmd(a), newCheckCmd(a), newVersionCmd())
	return root
}

// loadConfig reads the config selected by the flags. startDir is where
// the search for a config file begins.
func (a *app) loadConfig(cmd *cobra.Command, startDir string) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	switch {
	case a.noConfig:
		cfg, err = config.FromEnv()
	case a.configFile != "":
		cfg, err = config.LoadFile(a.configFile)
		path = a.configFile
	default:
		if startDir == "" {
			startDir, _ = os.Getwd()
		}
		cfg, path, err = config.Load(startDir)
	}
	if err != nil {
		return nil, err
	}

	if err := a.setupLogger(cmd, cfg); err != nil {
		return nil, err
	}
	if path != "" {
		a.log.Debug("using config", "path", path)
	}
	return cfg, nil
}

func (a *app) setupLogger(cmd *cobra.Command, cfg *config.Config) error {
	level, err := logger.ParseLevel(cfg.LogLevelValue())
	if err != nil {
		return err
	}
	if a.verbose {
		level = charm.DebugLevel
	}
	a.log = logger.New(cmd.ErrOrStderr(), level)
	logger.SetDefault(a.log)
	return nil
}
