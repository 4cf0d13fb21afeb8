package services

import (
	"context"
	"fmt"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/persistence"
)

// Stats aggregates execution records into per-workflow statistics shown next
// to the builder.
type Stats struct {
	persistence persistence.Persistence
}

// NewStats creates a new statistics service.
func NewStats(persist persistence.Persistence) *Stats {
	return &Stats{
		persistence: persist,
	}
}

// BranchStat is the firing count for one branch, labeled for display.
type BranchStat struct {
	BranchID   string `json:"branch_id"`
	BranchName string `json:"branch_name,omitempty"`
	Firings    int    `json:"firings"`
}

// WorkflowStats is the per-workflow aggregate: firings per branch (the
// "else" and "none" outcomes included) and permanent action failures per
// action type.
type WorkflowStats struct {
	WorkflowID     string                    `json:"workflow_id"`
	TotalFirings   int                       `json:"total_firings"`
	Branches       []BranchStat              `json:"branches"`
	ActionFailures map[models.ActionType]int `json:"action_failures"`
}

// WorkflowStats aggregates execution records for one workflow version.
func (s *Stats) WorkflowStats(ctx context.Context, workflowID string) (*WorkflowStats, error) {
	workflow, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	counts, err := s.persistence.ExecutionRepository().BranchCounts(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate branch counts: %w", err)
	}

	failures, err := s.persistence.ExecutionRepository().ActionFailureCounts(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate action failures: %w", err)
	}

	stats := &WorkflowStats{
		WorkflowID:     workflowID,
		Branches:       make([]BranchStat, 0, len(counts)),
		ActionFailures: failures,
	}

	names := make(map[string]string, len(workflow.Branches))
	for _, branch := range workflow.Branches {
		names[branch.ID] = branch.Name
	}

	// Defined branches first, in priority order, so the builder can render
	// counts next to each branch including zeroes.
	for _, branch := range workflow.OrderedBranches() {
		stats.Branches = append(stats.Branches, BranchStat{
			BranchID:   branch.ID,
			BranchName: branch.Name,
			Firings:    counts[branch.ID],
		})
		stats.TotalFirings += counts[branch.ID]

		delete(counts, branch.ID)
	}

	for _, sentinel := range []string{models.MatchedBranchElse, models.MatchedBranchNone} {
		if n, ok := counts[sentinel]; ok {
			stats.Branches = append(stats.Branches, BranchStat{BranchID: sentinel, Firings: n})
			stats.TotalFirings += n

			delete(counts, sentinel)
		}
	}

	// Branches removed in later versions still show up under their ID.
	for branchID, n := range counts {
		stats.Branches = append(stats.Branches, BranchStat{BranchID: branchID, BranchName: names[branchID], Firings: n})
		stats.TotalFirings += n
	}

	return stats, nil
}

// Execution returns one execution record by ID.
func (s *Stats) Execution(ctx context.Context, id string) (*models.ExecutionRecord, error) {
	return s.persistence.ExecutionRepository().GetByID(ctx, id)
}

// RecentExecutions returns the execution history matching the query, newest
// first.
func (s *Stats) RecentExecutions(ctx context.Context, q persistence.ExecutionQuery) ([]*models.ExecutionRecord, error) {
	records, err := s.persistence.ExecutionRepository().Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}

	return records, nil
}
