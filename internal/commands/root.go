package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/notewise/internal/buildinfo"
	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/logger"
	"github.com/cleared-dev/notewise/internal/rules"
)

const (
	configFile   = "notewise.yaml"
	rulesFile    = "rules.yaml"
	templateFile = "template.yaml"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "notewise",
		Short:   "Financial statement notes from a classified trial balance",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", configFile, "path to notewise.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newRunCommand(&configPath))
	rootCmd.AddCommand(newCheckCommand(&configPath))
	rootCmd.AddCommand(newClassifyCommand(&configPath))

	return rootCmd
}

// environment is what every working command needs: config, rule tables and
// a context carrying a run-scoped logger.
type environment struct {
	cfg   *config.Config
	rules rules.Set
	ctx   context.Context
}

// setup loads configuration. A missing config file falls back to defaults so
// check and classify work outside an initialized directory.
func setup(cmd *cobra.Command, configPath string) (*environment, error) {
	cfg, err := config.Load(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = config.Default("", "")
	case err != nil:
		return nil, err
	}

	if err := cfg.ApplyEnv(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	log := logger.Init(cfg.Log.Level, cmd.ErrOrStderr()).With("run_id", uuid.NewString(), "command", cmd.Name())
	ctx := logger.ToContext(cmd.Context(), log)

	rs := rules.Default()
	if p := cfg.RulesPath(configPath); p != "" {
		rs, err = rules.Load(p)
		if err != nil {
			return nil, err
		}
	}
	log.Debug("configuration loaded", "config", configPath, "rules", cfg.RulesPath(configPath), "level", cfg.Log.Level)

	return &environment{cfg: cfg, rules: rs, ctx: ctx}, nil
}

func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}
