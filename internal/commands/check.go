package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/formula"
	"github.com/cleared-dev/notewise/internal/logger"
)

func newCheckCommand(configPath *string) *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report formula references, parse errors and reference cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			tmpl, err := config.LoadTemplate(templatePath)
			if err != nil {
				return err
			}
			if err := runCheck(cmd.OutOrStdout(), tmpl); err != nil {
				logger.FromContext(env.ctx).Error("template check failed", "template", templatePath, "error", err.Error())
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&templatePath, "template", templateFile, "template YAML with formulas")

	return cmd
}

func runCheck(out io.Writer, tmpl *config.Template) error {
	ids := make([]string, 0, len(tmpl.Formulas))
	for id := range tmpl.Formulas {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		src := tmpl.Formulas[id]
		refs := formula.ExtractReferences(src)
		fmt.Fprintf(out, "%s\n", id)
		if len(refs.Notes) > 0 {
			fmt.Fprintf(out, "  rows: %s\n", strings.Join(refs.Notes, ", "))
		}
		if len(refs.Vars) > 0 {
			fmt.Fprintf(out, "  vars: %s\n", strings.Join(refs.Vars, ", "))
		}
		if _, err := formula.Compile(src); err != nil {
			fmt.Fprintf(out, "  error: %v\n", err)
		}
	}

	order, err := formula.Plan(tmpl.Formulas, tmpl.Structure())
	var ce *formula.CycleError
	switch {
	case errors.As(err, &ce):
		fmt.Fprintf(out, "\ncycle: %s\n", strings.Join(ce.Path, " -> "))
		return err
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "\norder: %s\n", strings.Join(order, ", "))
	return nil
}
