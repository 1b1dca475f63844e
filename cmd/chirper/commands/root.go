package commands

import (
	"github.com/spf13/cobra"

	"github.com/headline-hq/chirper/internal/config"
	"github.com/headline-hq/chirper/internal/logger"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
)

func Execute() error {
	root := &cobra.Command{
		Use:           "chirper",
		Short:         "News-to-social posting bot",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log, err = logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}

			log.DebugObj("configuration loaded", "config_loaded", cfg.Redacted())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (optional)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(runCmd(), startCmd())
	return root.Execute()
}
