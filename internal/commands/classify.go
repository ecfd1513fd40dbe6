package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/notewise/internal/engine"
)

func newClassifyCommand(configPath *string) *cobra.Command {
	var businessType string

	cmd := &cobra.Command{
		Use:   "classify <item> [stock group]",
		Short: "Print the inventory category of a stock item",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			if businessType != "" {
				env.cfg.Business.Type = businessType
			}

			var group string
			if len(args) > 1 {
				group = args[1]
			}

			category := engine.New(env.cfg, env.rules).ClassifyStockItem(args[0], group)
			fmt.Fprintln(cmd.OutOrStdout(), category)
			return nil
		},
	}

	cmd.Flags().StringVar(&businessType, "business-type", "", "override the configured business type")

	return cmd
}
