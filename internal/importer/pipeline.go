package importer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/csv2ledger-dev/csv2ledger/internal/dates"
	"github.com/csv2ledger-dev/csv2ledger/internal/ledger"
	"github.com/csv2ledger-dev/csv2ledger/internal/model"
	"github.com/csv2ledger-dev/csv2ledger/internal/money"
	"github.com/csv2ledger-dev/csv2ledger/internal/rules"
)

// Pipeline is one run's worth of wired-up import machinery.
type Pipeline struct {
	cfg    *rules.Config
	tag    language.Tag
	loc    *time.Location
	engine *rules.Engine
	format *ledger.Formatter
}

// Stats counts what happened to the rows of one run.
type Stats struct {
	Imported       int
	SkippedPending int
	SkippedBadDate int
	MarkerFound    bool
}

// Result is the outcome of one run. Marker is the row to persist after a
// successful journal append: the last row that survived all filtering, or the
// previous marker when nothing survived.
type Result struct {
	Blocks []string
	Marker model.RawRecord
	Stats  Stats
}

// New wires a Pipeline from a validated rules config. Configs using
// transformers need a predicate evaluator; pattern configs pass nil.
func New(cfg *rules.Config, eval rules.Evaluator) (*Pipeline, error) {
	tag, err := cfg.LanguageTag()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	engine, err := rules.NewEngine(cfg, eval)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:    cfg,
		tag:    tag,
		loc:    loc,
		engine: engine,
		format: ledger.NewFormatter(money.NewFormatter(tag, cfg.Currency)),
	}, nil
}

// Run processes rows (in the CSV's native latest-first order) against the
// previous marker. Pending and unparseable-date rows are dropped and counted;
// an unparseable amount or balance is a data error that aborts the whole run,
// so nothing is appended and the marker stays put.
func (p *Pipeline) Run(rows []model.RawRecord, last model.RawRecord) (*Result, error) {
	window, found := Window(rows, last)

	res := &Result{Marker: last}
	res.Stats.MarkerFound = found

	for _, rec := range window {
		if IsPending(rec) {
			res.Stats.SkippedPending++
			continue
		}

		date, err := dates.Parse(p.cfg.DateFormat, rec[model.FieldDate], p.loc)
		if err != nil {
			res.Stats.SkippedBadDate++
			continue
		}

		amount, err := money.ResolveAmount(rec, p.tag)
		if err != nil {
			return nil, err
		}

		tx := model.Transaction{
			Date:        date,
			Description: strings.TrimSpace(rec[model.FieldDescription]),
			Amount:      amount,
		}
		if v := strings.TrimSpace(rec[model.FieldBalance]); v != "" {
			bal, err := money.ParseCurrency(v, p.tag)
			if err != nil {
				return nil, err
			}
			tx.Balance = decimal.NullDecimal{Decimal: bal, Valid: true}
		}

		if err := p.engine.Enrich(&tx); err != nil {
			return nil, err
		}

		res.Blocks = append(res.Blocks, p.format.Render(tx))
		res.Marker = rec
		res.Stats.Imported++
	}
	return res, nil
}
