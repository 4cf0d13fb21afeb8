package engine

import (
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
)

// Selector matches branches and picks the first satisfied one.
type Selector struct {
	evaluator *Evaluator
	logger    *slog.Logger
}

func NewSelector(evaluator *Evaluator, logger *slog.Logger) *Selector {
	return &Selector{
		evaluator: evaluator,
		logger:    logger.With("module", "selector"),
	}
}

// MatchBranch folds the branch's condition groups with the branch's group
// logic, using each group's boolean as the fold input. An empty group list
// always matches; that is how a catch-all can be expressed as an ordinary
// last branch.
func (s *Selector) MatchBranch(b models.Branch, client *models.Client) bool {
	return s.evaluator.EvaluateGroups(b.GroupLogic, b.ConditionGroups, client)
}

// SelectBranch walks the branches in priority order (stored order field,
// lower first) and returns the first one that matches. Strict
// first-match-wins: overlapping branches must be ordered narrowest-first by
// the author. The second return is false when no branch matched and the
// else-actions apply.
func (s *Selector) SelectBranch(workflow *models.Workflow, client *models.Client) (models.Branch, bool) {
	for _, b := range workflow.OrderedBranches() {
		if s.MatchBranch(b, client) {
			s.logger.Debug("Branch matched",
				"workflow_id", workflow.ID,
				"client_id", client.ID,
				"branch_id", b.ID,
				"branch_name", b.Name)

			return b, true
		}
	}

	return models.Branch{}, false
}
