package cmd

import (
	"fmt"
	"log"
	"os/user"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/app"
	"github.com/abhisek/mockprep/internal/config"
	"github.com/abhisek/mockprep/internal/logger"
)

var (
	// Used for flags.
	cfgFile string

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:   config.AppName,
		Short: "Timed mock interviews in the terminal",
		Long: "mockprep runs five-question mock interviews (technical, behavioral, managerial),\n" +
			"scores the answers and keeps a history of past attempts.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterview(cmd, "")
		},
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "a config file (default is mockprep.yaml in current directory)")
	flags.String("db", "", "path to the SQLite database (overrides MOCKPREP_DB)")
	flags.String("user", "", "user id to record assessments under (default is the OS user)")
	flags.BoolP("debug", "d", false, "verbose/debug output")
	flags.BoolP("json", "j", false, "json format for logging")

	bindFlag("db", "db")
	bindFlag("user.id", "user")
	bindFlag("log.debug", "debug")
	bindFlag("log.json", "json")

	rootCmd.AddCommand(interviewCmd, historyCmd, questionsCmd, llmCmd, serveCmd, versionCmd)
}

func bindFlag(key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Fatalf("binding %s flag: %v", flag, err)
	}
}

// loadConfig reads .env, mockprep.yaml, the environment and flags.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ResolveDB(); err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	if cfg.User.ID == "" {
		if u, err := user.Current(); err == nil {
			cfg.User.ID = u.Username
		}
	}
	return cfg, nil
}

// openApp loads configuration and opens the application container. The
// caller must Close it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	a, err := app.Open(cmd.Context(), cfg, l)
	if err != nil {
		return nil, err
	}
	l.Debug("opened", zap.String("db", cfg.DB), zap.String("version", version))
	return a, nil
}

// closeApp flushes telemetry and closes the store, logging any failure.
func closeApp(cmd *cobra.Command, a *app.App) {
	if err := a.Close(cmd.Context()); err != nil {
		a.Log.Warn("closing", zap.Error(err))
	}
	_ = a.Log.Sync()
}
