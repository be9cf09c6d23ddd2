package rules

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/csv2ledger-dev/csv2ledger/internal/model"
)

// Evaluator evaluates a predicate expression against a transaction's fields.
// It keeps the engine independent of any particular rule-expression grammar.
type Evaluator interface {
	Evaluate(expr json.RawMessage, record map[string]any) (bool, error)
}

// matcher decides whether one rule applies to a transaction.
type matcher interface {
	matches(tx *model.Transaction) (bool, error)
}

// patternMatcher searches the description with a regular expression,
// case-sensitive, match anywhere.
type patternMatcher struct {
	re *regexp.Regexp
}

func (m patternMatcher) matches(tx *model.Transaction) (bool, error) {
	return m.re.MatchString(tx.Description), nil
}

// predicateMatcher delegates to the configured Evaluator.
type predicateMatcher struct {
	expr json.RawMessage
	eval Evaluator
}

func (m predicateMatcher) matches(tx *model.Transaction) (bool, error) {
	return m.eval.Evaluate(m.expr, txRecord(tx))
}

// overrides are the output fields one rule sets on match. nil means "leave
// the current value alone".
type overrides struct {
	payee    *string
	comment  *string
	account1 *string
	account2 *string
}

type rule struct {
	match  matcher
	values overrides
}

// Engine applies the configured rule list to transactions. Both rule shapes
// share the one cumulative-overwrite loop: every rule is evaluated, each
// matching rule overwrites only the fields it carries, later rules win.
type Engine struct {
	account1 string
	account2 string
	rules    []rule
}

// NewEngine compiles the config's rule list. Transformer configs need a
// predicate Evaluator; pattern configs do not.
func NewEngine(cfg *Config, eval Evaluator) (*Engine, error) {
	e := &Engine{account1: cfg.Account1, account2: cfg.Account2}

	switch {
	case len(cfg.TxRules) > 0:
		for i, r := range cfg.TxRules {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("txRules[%d]: %w", i, err)
			}
			e.rules = append(e.rules, rule{
				match:  patternMatcher{re: re},
				values: overrides{payee: r.Payee, comment: r.Comment, account1: r.Account1, account2: r.Account2},
			})
		}
	case len(cfg.Transformers) > 0:
		if eval == nil {
			return nil, fmt.Errorf("transformers require a predicate evaluator")
		}
		for _, t := range cfg.Transformers {
			e.rules = append(e.rules, rule{
				match:  predicateMatcher{expr: t.Rule, eval: eval},
				values: overridesFromMap(t.NewValues),
			})
		}
	}
	return e, nil
}

// Enrich seeds the transaction with payee = description and the default
// accounts, then applies the rules in list order.
func (e *Engine) Enrich(tx *model.Transaction) error {
	tx.Payee = tx.Description
	tx.Account1 = e.account1
	tx.Account2 = e.account2

	for i, r := range e.rules {
		ok, err := r.match.matches(tx)
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		if !ok {
			continue
		}
		if r.values.payee != nil {
			tx.Payee = *r.values.payee
		}
		if r.values.comment != nil {
			tx.Comment = *r.values.comment
		}
		if r.values.account1 != nil {
			tx.Account1 = *r.values.account1
		}
		if r.values.account2 != nil {
			tx.Account2 = *r.values.account2
		}
	}
	return nil
}

func overridesFromMap(m map[string]string) overrides {
	var o overrides
	for k, v := range m {
		v := v
		switch k {
		case "payee":
			o.payee = &v
		case "comment":
			o.comment = &v
		case "account1":
			o.account1 = &v
		case "account2":
			o.account2 = &v
		}
	}
	return o
}

// txRecord exposes the transaction to predicate expressions as plain JSON
// types. Rules evaluate against the current enriched state, so a later
// predicate can see an earlier rule's effect.
func txRecord(tx *model.Transaction) map[string]any {
	amount, _ := tx.Amount.Float64()
	rec := map[string]any{
		"date":        tx.Date.Format("2006-01-02"),
		"description": tx.Description,
		"amount":      amount,
		"payee":       tx.Payee,
		"comment":     tx.Comment,
		"account1":    tx.Account1,
		"account2":    tx.Account2,
	}
	if tx.Balance.Valid {
		balance, _ := tx.Balance.Decimal.Float64()
		rec["balance"] = balance
	}
	return rec
}
