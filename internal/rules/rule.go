// Package rules implements the quality rule engine: a fixed, ordered
// catalogue of independent checks that together produce a validity verdict
// and a continuous quality score for each raw item.
package rules

import (
	"context"

	"finchwire.dev/newsvet/internal/news"
)

// Spec describes a rule's identity and its effect on the verdict. A failing
// critical rule rejects the item; a failing non-critical rule subtracts
// Penalty from the quality score.
type Spec struct {
	Name        string
	Critical    bool
	Penalty     float64
	Description string
}

// Rule is one check in the catalogue. Evaluate reports whether the item
// passed and may enrich the working record; it must not mutate the raw
// item. An evaluation error is treated as a pass by the engine so a single
// broken rule never blocks the pipeline.
type Rule interface {
	Spec() Spec
	Evaluate(ctx context.Context, item news.RawItem, work *news.ProcessedItem) (bool, error)
}
