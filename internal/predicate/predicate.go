// Package predicate implements the rules.Evaluator interface with JSON Logic.
package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/diegoholiveira/jsonlogic/v3"
)

// Logic evaluates JSON Logic expressions against a transaction record.
type Logic struct{}

// Evaluate applies expr to record and reduces the result to a boolean using
// JSON Logic truthiness.
func (Logic) Evaluate(expr json.RawMessage, record map[string]any) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("encoding record: %w", err)
	}

	var out bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(expr), bytes.NewReader(data), &out); err != nil {
		return false, fmt.Errorf("evaluating rule: %w", err)
	}

	var result any
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		return false, fmt.Errorf("decoding rule result: %w", err)
	}
	return truthy(result), nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}
