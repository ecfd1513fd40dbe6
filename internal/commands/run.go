package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/disclosure"
	"github.com/cleared-dev/notewise/internal/engine"
	"github.com/cleared-dev/notewise/internal/ledger"
	"github.com/cleared-dev/notewise/internal/model"
)

func newRunCommand(configPath *string) *cobra.Command {
	var ledgerPaths []string
	var templatePath string
	var disclosurePath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute notes and template formulas for one or more trial balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if disclosurePath != "" && len(ledgerPaths) > 1 {
				return errors.New("--disclosure needs exactly one --ledgers file")
			}
			env, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			return runRun(cmd.OutOrStdout(), env, ledgerPaths, templatePath, disclosurePath)
		},
	}

	cmd.Flags().StringSliceVar(&ledgerPaths, "ledgers", nil, "trial-balance CSV (repeatable for a batch run)")
	_ = cmd.MarkFlagRequired("ledgers")
	cmd.Flags().StringVar(&templatePath, "template", "", "template YAML with formulas")
	cmd.Flags().StringVar(&disclosurePath, "disclosure", "", "write the reclassification disclosure CSV here")

	return cmd
}

func runRun(out io.Writer, env *environment, ledgerPaths []string, templatePath, disclosurePath string) error {
	var tmpl *config.Template
	if templatePath != "" {
		var err error
		tmpl, err = config.LoadTemplate(templatePath)
		if err != nil {
			return err
		}
	}

	engs := make([]engine.Engagement, 0, len(ledgerPaths))
	for _, p := range ledgerPaths {
		rows, err := readLedgers(p)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		engs = append(engs, engine.Engagement{Name: name, Ledgers: rows, Template: tmpl})
	}

	eng := engine.New(env.cfg, env.rules)
	reports, err := eng.RunBatch(env.ctx, engs)
	if err != nil {
		return err
	}

	for i, rep := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := printReport(out, rep, tmpl); err != nil {
			return err
		}
	}

	if disclosurePath != "" {
		if err := disclosure.WriteFile(disclosurePath, reports[0].Disclosure); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nWrote %d reclassification(s) to %s\n", len(reports[0].Disclosure), disclosurePath)
	}
	return nil
}

func readLedgers(path string) ([]model.LedgerRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledgers: %w", err)
	}
	defer f.Close()

	rows, err := ledger.ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func printReport(out io.Writer, rep *engine.Report, tmpl *config.Template) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "== %s\t\n", rep.Engagement)
	if len(rep.Rejected) > 0 {
		fmt.Fprintf(tw, "rejected rows\t%d\t\n", len(rep.Rejected))
	}
	if len(rep.Reclassed) > 0 {
		fmt.Fprintf(tw, "reclassified\t%d\t\n", len(rep.Reclassed))
	}

	fmt.Fprintf(tw, "Notes\t\t\n")
	for _, k := range rep.Notes.Keys() {
		fmt.Fprintf(tw, "%s\t%s\t\n", k, rep.Notes.Values[k].StringFixed(2))
	}

	if tmpl != nil && len(rep.Order) > 0 {
		fmt.Fprintf(tw, "Formulas\t\t\n")
		for _, id := range formulaRows(tmpl, rep.Order) {
			v, _ := rep.Formula(id)
			if err, ok := rep.Diagnostics[id]; ok {
				fmt.Fprintf(tw, "%s\t%s\t(%v)\n", id, v.StringFixed(2), err)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", id, v.StringFixed(2))
		}
	}
	return tw.Flush()
}

// formulaRows lists computed rows in template display order, followed by
// any formula rows the template does not place.
func formulaRows(tmpl *config.Template, order []string) []string {
	seen := make(map[string]bool, len(order))
	var ids []string
	for _, id := range tmpl.Rows {
		if _, ok := tmpl.Formulas[id]; ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range order {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}
