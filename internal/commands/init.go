package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/rules"
)

func newInitCommand() *cobra.Command {
	var name string
	var businessType string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new notewise engagement",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := resolve(dir)
			if err != nil {
				return err
			}

			return runInit(cmd.OutOrStdout(), absDir, name, businessType)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&businessType, "business-type", rules.Trading, "business type: Trading or Manufacturing")

	return cmd
}

func runInit(out io.Writer, dir, name, businessType string) error {
	cfgPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	if err := os.MkdirAll(filepath.Join(dir, "disclosures"), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default(name, businessType)
	cfg.Rules = rulesFile
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := rules.Save(filepath.Join(dir, rulesFile), rules.Default()); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}

	if err := config.SaveTemplate(filepath.Join(dir, templateFile), config.DefaultTemplate()); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	env := config.EnvLogLevel + "=info\n"
	if err := os.WriteFile(filepath.Join(dir, ".env.example"), []byte(env), 0o644); err != nil {
		return fmt.Errorf("writing .env.example: %w", err)
	}

	fmt.Fprintf(out, "Initialized notewise engagement at %s\n", dir)
	return nil
}
