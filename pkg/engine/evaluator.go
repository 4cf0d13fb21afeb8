// Package engine implements condition evaluation, branch selection, action
// dispatch and the firing runner. Segmentation reuses the same Evaluator, so
// segment previews and workflow matching can never disagree.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lumera-app/lumera/pkg/models"
)

// ErrConditionConfig marks a malformed condition discovered at evaluation
// time (type mismatch, inverted range, unknown field or operator). The
// condition evaluates to false; the error is logged, never propagated.
var ErrConditionConfig = errors.New("condition configuration error")

// Evaluator evaluates atomic conditions and condition groups against one
// client. The zero clock defaults to time.Now.
type Evaluator struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewEvaluator(logger *slog.Logger) *Evaluator {
	return &Evaluator{
		logger: logger.With("module", "evaluator"),
		now:    time.Now,
	}
}

// NewEvaluatorAt pins the evaluation clock, for deterministic date and
// last-visit comparisons in tests and replays.
func NewEvaluatorAt(logger *slog.Logger, now func() time.Time) *Evaluator {
	e := NewEvaluator(logger)
	e.now = now

	return e
}

// fieldValue is a client attribute resolved to the condition value domain.
type fieldValue struct {
	kind models.ValueKind
	str  string
	num  float64
	date time.Time
	set  []string
}

// resolveField reads the condition's field off the client. The second return
// is false when the attribute is absent: absence evaluates to false by
// policy, it is not an error.
func (e *Evaluator) resolveField(c models.Condition, client *models.Client) (fieldValue, bool) {
	switch c.Field {
	case models.FieldClientType:
		return fieldValue{kind: models.KindString, str: client.ClientType}, client.ClientType != ""
	case models.FieldTotalSpent:
		return fieldValue{kind: models.KindNumber, num: client.TotalSpent}, true
	case models.FieldVisitCount:
		return fieldValue{kind: models.KindNumber, num: float64(client.VisitCount)}, true
	case models.FieldLastVisit:
		if client.LastVisitAt == nil {
			return fieldValue{}, false
		}

		days := e.now().Sub(*client.LastVisitAt).Hours() / 24

		return fieldValue{kind: models.KindNumber, num: days}, true
	case models.FieldTags:
		return fieldValue{kind: models.KindSet, set: client.Tags}, true
	case models.FieldService:
		return fieldValue{kind: models.KindString, str: client.LastService}, client.LastService != ""
	case models.FieldDate:
		return fieldValue{kind: models.KindDate, date: e.now()}, true
	case models.FieldCustom:
		v, ok := client.Custom[c.CustomKey]

		return fieldValue{kind: models.KindString, str: v}, ok
	}

	return fieldValue{}, false
}

// EvaluateCondition evaluates one atomic condition against a client.
//
// A missing field evaluates to false without error: "never visited" clients
// must not match "last visit > 60 days ago" unless explicitly modeled. A
// malformed condition also evaluates to false, but returns an
// ErrConditionConfig-wrapped error for observability.
func (e *Evaluator) EvaluateCondition(c models.Condition, client *models.Client) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrConditionConfig, err)
	}

	field, present := e.resolveField(c, client)
	if !present {
		return false, nil
	}

	switch c.Operator {
	case models.OperatorEquals:
		return equalValue(field, c.Value), nil
	case models.OperatorNotEquals:
		return !equalValue(field, c.Value), nil
	case models.OperatorGreaterThan:
		return compareOrdered(field, c.Value) > 0, nil
	case models.OperatorLessThan:
		return compareOrdered(field, c.Value) < 0, nil
	case models.OperatorContains:
		return containsValue(field, c.Value), nil
	case models.OperatorIn:
		return inSet(field, c.Value), nil
	case models.OperatorBetween:
		return compareOrdered(field, c.Value) >= 0 && compareOrdered(field, *c.Value2) <= 0, nil
	}

	// unreachable, Validate rejects unknown operators
	return false, fmt.Errorf("%w: operator %q", ErrConditionConfig, c.Operator)
}

// EvaluateGroup folds the group's conditions left to right with the group's
// logic, short-circuiting. An empty condition list is vacuously true.
// Malformed conditions contribute false and are logged, never raised.
func (e *Evaluator) EvaluateGroup(g models.ConditionGroup, client *models.Client) bool {
	if len(g.Conditions) == 0 {
		return true
	}

	for _, c := range g.Conditions {
		matched, err := e.EvaluateCondition(c, client)
		if err != nil {
			e.logger.Warn("Condition misconfigured, evaluating as false",
				"condition_id", c.ID,
				"field", c.Field,
				"operator", c.Operator,
				"error", err)
		}

		if g.Logic == models.LogicAnd && !matched {
			return false
		}

		if g.Logic == models.LogicOr && matched {
			return true
		}
	}

	// AND saw no false condition; OR saw no true one.
	return g.Logic == models.LogicAnd
}

// EvaluateGroups folds per-group booleans with the given logic, the same
// binary fold as inside a group applied one level up. Branch matching and
// segmentation both call this, so the two can never disagree. An empty group
// list is vacuously true.
func (e *Evaluator) EvaluateGroups(logic models.GroupLogic, groups []models.ConditionGroup, client *models.Client) bool {
	if len(groups) == 0 {
		return true
	}

	for _, g := range groups {
		matched := e.EvaluateGroup(g, client)

		if logic == models.LogicAnd && !matched {
			return false
		}

		if logic == models.LogicOr && matched {
			return true
		}
	}

	return logic == models.LogicAnd
}

func equalValue(field fieldValue, value models.ConditionValue) bool {
	switch field.kind {
	case models.KindString:
		return field.str == value.String
	case models.KindNumber:
		return field.num == value.Number
	case models.KindDate:
		return value.Date != nil && sameDay(field.date, *value.Date)
	case models.KindSet:
		// sets have no equality operator, rejected at authoring time
		return false
	}

	return false
}

// compareOrdered returns <0, 0 or >0 comparing the field against the value.
// Date comparisons are at day granularity: the builder authors dates, not
// instants.
func compareOrdered(field fieldValue, value models.ConditionValue) int {
	switch field.kind {
	case models.KindNumber:
		switch {
		case field.num < value.Number:
			return -1
		case field.num > value.Number:
			return 1
		default:
			return 0
		}
	case models.KindDate:
		if value.Date == nil {
			return 0
		}

		fd, vd := dayOf(field.date), dayOf(*value.Date)
		switch {
		case fd.Before(vd):
			return -1
		case fd.After(vd):
			return 1
		default:
			return 0
		}
	case models.KindString, models.KindSet:
		return 0
	}

	return 0
}

func containsValue(field fieldValue, value models.ConditionValue) bool {
	switch field.kind {
	case models.KindString:
		return strings.Contains(field.str, value.String)
	case models.KindSet:
		for _, member := range field.set {
			if member == value.String {
				return true
			}
		}

		return false
	case models.KindNumber, models.KindDate:
		return false
	}

	return false
}

func inSet(field fieldValue, value models.ConditionValue) bool {
	for _, member := range value.Set {
		switch field.kind {
		case models.KindString:
			if field.str == member {
				return true
			}
		case models.KindNumber:
			if n, err := strconv.ParseFloat(member, 64); err == nil && n == field.num {
				return true
			}
		case models.KindDate, models.KindSet:
			// not a membership domain
		}
	}

	return false
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
