// Package segment bulk-filters clients with the workflow engine's condition
// evaluator. There is exactly one evaluator implementation; segmentation and
// branch matching cannot drift apart.
package segment

import (
	"context"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/engine"
	"github.com/lumera-app/lumera/pkg/models"
)

// Definition is a reusable segment: condition groups combined with one
// logic, no branch or action concept.
type Definition struct {
	ID     string                  `json:"id,omitempty"`
	Name   string                  `json:"name,omitempty"`
	Logic  models.GroupLogic       `json:"logic"  validate:"required,oneof=AND OR"`
	Groups []models.ConditionGroup `json:"groups"`
}

// Result is the matching subset and its cardinality.
type Result struct {
	Clients []*models.Client `json:"clients"`
	Count   int              `json:"count"`
}

// Filter evaluates segment definitions over the client directory.
type Filter struct {
	evaluator *engine.Evaluator
	directory directory.Directory
	logger    *slog.Logger
}

func NewFilter(evaluator *engine.Evaluator, dir directory.Directory, logger *slog.Logger) *Filter {
	return &Filter{
		evaluator: evaluator,
		directory: dir,
		logger:    logger.With("module", "segment_filter"),
	}
}

// Matches evaluates the definition against one client, with the exact
// semantics of branch matching: the same fold over the same evaluator.
func (f *Filter) Matches(def Definition, client *models.Client) bool {
	return f.evaluator.EvaluateGroups(def.Logic, def.Groups, client)
}

// FilterSegment returns every client in the directory matching the
// definition, plus the count shown to operators.
func (f *Filter) FilterSegment(ctx context.Context, def Definition) (*Result, error) {
	clients, err := f.directory.List(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Client, 0, len(clients))

	for _, client := range clients {
		if f.Matches(def, client) {
			matching = append(matching, client)
		}
	}

	f.logger.Debug("Segment filtered",
		"segment", def.Name,
		"total", len(clients),
		"matched", len(matching))

	return &Result{Clients: matching, Count: len(matching)}, nil
}

// Validate checks the definition's conditions at authoring time.
func (d Definition) Validate() error {
	for _, g := range d.Groups {
		if err := g.Validate(); err != nil {
			return err
		}
	}

	return nil
}
