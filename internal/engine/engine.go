// Package engine runs an engagement end to end: filter the trial balance,
// reclassify contra balances, roll ledgers up into notes and evaluate the
// template's formulas in dependency order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cleared-dev/notewise/internal/config"
	"github.com/cleared-dev/notewise/internal/formula"
	"github.com/cleared-dev/notewise/internal/fuzzy"
	"github.com/cleared-dev/notewise/internal/ledger"
	"github.com/cleared-dev/notewise/internal/logger"
	"github.com/cleared-dev/notewise/internal/model"
	"github.com/cleared-dev/notewise/internal/notes"
	"github.com/cleared-dev/notewise/internal/reclass"
	"github.com/cleared-dev/notewise/internal/rules"
	"github.com/cleared-dev/notewise/internal/sign"
)

// Engagement is one entity's trial balance plus the template to compute.
// A nil Template skips formula evaluation.
type Engagement struct {
	Name     string
	Ledgers  []model.LedgerRow
	Template *config.Template
}

// Contra is a ledger whose balance sits on the opposite side to its
// category's natural side.
type Contra struct {
	Ledger  string
	Natural model.BalanceSign
	Actual  model.BalanceSign
	Signed  decimal.Decimal // balance on the uniform +Cr/-Dr scale
}

// Report is the outcome of one Run.
type Report struct {
	Engagement  string
	Rejected    []ledger.Rejection
	Contras     []Contra
	Reclassed   []reclass.Result // reclassified rows only, in input order
	Disclosure  []reclass.Line
	Notes       notes.Result
	Order       []string                   // formula evaluation order
	Values      map[string]decimal.Decimal // note values plus computed formulas
	Diagnostics map[string]error           // formulas that collapsed to zero, by row ID
}

// Formula returns the computed value of a template row, and whether that
// row was evaluated.
func (r *Report) Formula(id string) (decimal.Decimal, bool) {
	if _, ok := r.Diagnostics[id]; ok {
		return decimal.Zero, true
	}
	if slices.Contains(r.Order, id) {
		return r.Values[id], true
	}
	return decimal.Zero, false
}

// Engine holds the immutable components built from config and rule tables.
// It is safe for concurrent use.
type Engine struct {
	businessType string
	parallelism  int
	normalizer   *sign.Normalizer
	classifier   *fuzzy.Classifier
	reclass      *reclass.Engine
	notes        *notes.Aggregator
}

// New builds an Engine. Each component takes its own copy of rs.
func New(cfg *config.Config, rs rules.Set) *Engine {
	return &Engine{
		businessType: cfg.Business.Type,
		parallelism:  cfg.Batch.Parallelism,
		normalizer:   sign.NewNormalizer(rs.Signs, cfg.FallbackSign()),
		classifier:   fuzzy.NewClassifier(rs.Stock, cfg.Classification.FuzzyThreshold),
		reclass:      reclass.NewEngine(rs.Reclass),
		notes:        notes.NewAggregator(rs.Notes, rs.Vocabulary, cfg.NoteLevel()),
	}
}

// ClassifyStockItem classifies an inventory item for the configured
// business type.
func (e *Engine) ClassifyStockItem(item, group string) string {
	return e.classifier.ClassifyStockItem(item, group, e.businessType)
}

// Run processes one engagement. It refuses to evaluate a template whose
// formulas form a reference cycle, returning a *formula.CycleError.
func (e *Engine) Run(ctx context.Context, eng Engagement) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ctx = logger.With(ctx, "engagement", eng.Name)
	log := logger.FromContext(ctx)

	rep := &Report{Engagement: eng.Name}
	rows, rejected := ledger.FilterClassified(ctx, eng.Ledgers)
	rep.Rejected = rejected

	for _, row := range rows {
		if !e.normalizer.Contra(row) {
			continue
		}
		actual := e.normalizer.ActualSign(row)
		rep.Contras = append(rep.Contras, Contra{
			Ledger:  row.Name,
			Natural: e.normalizer.RowNaturalSign(row),
			Actual:  actual,
			Signed:  sign.NormalizedSignedAmount(row.Balance(), actual),
		})
	}

	viewed, results := e.reclass.Apply(rows)
	for i, res := range results {
		if !res.Reclassified {
			continue
		}
		if len(res.Fired) > 1 {
			log.Warn("overlapping reclassification rules", "ledger", res.Ledger, "fired", res.Fired)
		}
		log.Info("ledger reclassified", "ledger", res.Ledger, "from", res.OriginalArea, "to", res.NewArea, "rule", res.Rule)
		rep.Reclassed = append(rep.Reclassed, res)
		rep.Disclosure = append(rep.Disclosure, reclass.LineFor(rows[i], res))
	}

	rep.Notes = e.notes.Aggregate(viewed)
	rep.Values = make(map[string]decimal.Decimal, len(rep.Notes.Values))
	for k, v := range rep.Notes.Values {
		rep.Values[k] = v
	}

	if eng.Template == nil {
		return rep, nil
	}

	order, err := formula.Plan(eng.Template.Formulas, eng.Template.Structure())
	if err != nil {
		var ce *formula.CycleError
		if errors.As(err, &ce) {
			log.Error("template refused", "cycle", ce.Path)
		}
		return nil, fmt.Errorf("engagement %s: %w", eng.Name, err)
	}
	rep.Order = order

	fctx := eng.Template.Context(rep.Values)
	for _, id := range order {
		v, err := evalFormula(eng.Template.Formulas[id], fctx)
		if err != nil {
			if rep.Diagnostics == nil {
				rep.Diagnostics = make(map[string]error)
			}
			rep.Diagnostics[id] = err
			log.Debug("formula evaluated to zero", "row", id, "formula", eng.Template.Formulas[id], "error", err.Error())
		}
		fctx.Values[id] = v
	}
	rep.Values = fctx.Values

	log.Info("engagement complete",
		"ledgers", len(eng.Ledgers),
		"rejected", len(rep.Rejected),
		"reclassified", len(rep.Reclassed),
		"notes", len(rep.Notes.Values),
		"formulas", len(order),
	)
	return rep, nil
}

func evalFormula(src string, ctx *formula.Context) (decimal.Decimal, error) {
	p, err := formula.Compile(src)
	if err != nil {
		return decimal.Zero, err
	}
	return p.Eval(ctx)
}

// RunBatch runs engagements concurrently, bounded by the configured
// parallelism. Reports are returned in input order. The first error cancels
// engagements that have not started.
func (e *Engine) RunBatch(ctx context.Context, engs []Engagement) ([]*Report, error) {
	reports := make([]*Report, len(engs))
	g, gctx := errgroup.WithContext(ctx)
	if e.parallelism > 0 {
		g.SetLimit(e.parallelism)
	}
	for i, eng := range engs {
		g.Go(func() error {
			rep, err := e.Run(gctx, eng)
			if err != nil {
				return err
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
