// Package models defines the core domain models for conditional client automation.
package models

import (
	"errors"
	"fmt"
	"time"
)

// ConditionField is the closed set of client attributes a condition may test.
type ConditionField string

const (
	FieldClientType ConditionField = "clientType"
	FieldTotalSpent ConditionField = "totalSpent"
	FieldVisitCount ConditionField = "visitCount"
	FieldLastVisit  ConditionField = "lastVisit" // days since the last visit
	FieldTags       ConditionField = "tags"
	FieldService    ConditionField = "service"
	FieldDate       ConditionField = "date" // date of evaluation
	FieldCustom     ConditionField = "custom"
)

// ConditionOperator is the closed set of comparison operators.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "notEquals"
	OperatorGreaterThan ConditionOperator = "greaterThan"
	OperatorLessThan    ConditionOperator = "lessThan"
	OperatorContains    ConditionOperator = "contains"
	OperatorIn          ConditionOperator = "in"
	OperatorBetween     ConditionOperator = "between"
)

// ValueKind tags the variant held by a ConditionValue.
type ValueKind string

const (
	KindString ValueKind = "string"
	KindNumber ValueKind = "number"
	KindDate   ValueKind = "date"
	KindSet    ValueKind = "set"
)

// ConditionValue is a tagged value variant resolved at authoring time, so the
// evaluator never type-sniffs at runtime. Exactly one payload field is
// meaningful for a given Kind.
type ConditionValue struct {
	Kind   ValueKind  `json:"kind"`
	String string     `json:"string,omitempty"`
	Number float64    `json:"number,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Set    []string   `json:"set,omitempty"`
}

func StringValue(s string) ConditionValue {
	return ConditionValue{Kind: KindString, String: s}
}

func NumberValue(n float64) ConditionValue {
	return ConditionValue{Kind: KindNumber, Number: n}
}

func DateValue(t time.Time) ConditionValue {
	return ConditionValue{Kind: KindDate, Date: &t}
}

func SetValue(members ...string) ConditionValue {
	return ConditionValue{Kind: KindSet, Set: members}
}

// Condition is an atomic field/operator/value test. Immutable once attached
// to a group.
type Condition struct {
	ID        string            `json:"id"`
	Field     ConditionField    `json:"field"    validate:"required"`
	Operator  ConditionOperator `json:"operator" validate:"required"`
	Value     ConditionValue    `json:"value"`
	Value2    *ConditionValue   `json:"value2,omitempty"` // only for "between"
	CustomKey string            `json:"custom_key,omitempty"`
	Label     string            `json:"label,omitempty"`
}

// GroupLogic combines booleans within a group or across groups.
type GroupLogic string

const (
	LogicAnd GroupLogic = "AND"
	LogicOr  GroupLogic = "OR"
)

// ConditionGroup combines atomic conditions with a single AND/OR. An empty
// condition list evaluates to true: a group with no conditions imposes no
// constraint.
type ConditionGroup struct {
	ID         string      `json:"id"`
	Logic      GroupLogic  `json:"logic"      validate:"required,oneof=AND OR"`
	Conditions []Condition `json:"conditions"`
}

var (
	ErrUnknownField    = errors.New("unknown condition field")
	ErrUnknownOperator = errors.New("unknown condition operator")
	ErrValueMismatch   = errors.New("condition value does not fit field and operator")
	ErrInvertedRange   = errors.New("between range has low bound greater than high bound")
)

// fieldKind maps each field to the value kind it resolves to on a client.
func fieldKind(f ConditionField) (ValueKind, bool) {
	switch f {
	case FieldClientType, FieldService, FieldCustom:
		return KindString, true
	case FieldTotalSpent, FieldVisitCount, FieldLastVisit:
		return KindNumber, true
	case FieldDate:
		return KindDate, true
	case FieldTags:
		return KindSet, true
	}

	return "", false
}

// FieldKind exposes the resolved kind of a field for evaluator use.
func FieldKind(f ConditionField) (ValueKind, bool) {
	return fieldKind(f)
}

// Validate checks the condition at authoring time. Operator/value shape
// mismatches are construction-time errors surfaced to the builder, never
// per-evaluation branches.
func (c Condition) Validate() error {
	kind, ok := fieldKind(c.Field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, c.Field)
	}

	if c.Field == FieldCustom && c.CustomKey == "" {
		return fmt.Errorf("%w: custom field requires custom_key", ErrValueMismatch)
	}

	switch c.Operator {
	case OperatorEquals, OperatorNotEquals:
		if kind == KindSet {
			return fmt.Errorf("%w: %s does not support equality", ErrValueMismatch, c.Field)
		}

		if c.Value.Kind != kind {
			return fmt.Errorf("%w: %s expects %s value, got %s", ErrValueMismatch, c.Field, kind, c.Value.Kind)
		}
	case OperatorGreaterThan, OperatorLessThan:
		if kind != KindNumber && kind != KindDate {
			return fmt.Errorf("%w: %s is not ordered", ErrValueMismatch, c.Field)
		}

		if c.Value.Kind != kind {
			return fmt.Errorf("%w: %s expects %s value, got %s", ErrValueMismatch, c.Field, kind, c.Value.Kind)
		}
	case OperatorContains:
		if kind != KindString && kind != KindSet {
			return fmt.Errorf("%w: %s does not support contains", ErrValueMismatch, c.Field)
		}

		if c.Value.Kind != KindString {
			return fmt.Errorf("%w: contains expects a string value", ErrValueMismatch)
		}
	case OperatorIn:
		if kind != KindString && kind != KindNumber {
			return fmt.Errorf("%w: %s does not support membership", ErrValueMismatch, c.Field)
		}

		if c.Value.Kind != KindSet {
			return fmt.Errorf("%w: in expects a set value", ErrValueMismatch)
		}
	case OperatorBetween:
		if kind != KindNumber && kind != KindDate {
			return fmt.Errorf("%w: %s is not ordered", ErrValueMismatch, c.Field)
		}

		if c.Value2 == nil {
			return fmt.Errorf("%w: between requires value2", ErrValueMismatch)
		}

		if c.Value.Kind != kind || c.Value2.Kind != kind {
			return fmt.Errorf("%w: between bounds must both be %s", ErrValueMismatch, kind)
		}

		switch kind {
		case KindNumber:
			if c.Value.Number > c.Value2.Number {
				return ErrInvertedRange
			}
		case KindDate:
			if c.Value.Date != nil && c.Value2.Date != nil && c.Value.Date.After(*c.Value2.Date) {
				return ErrInvertedRange
			}
		case KindString, KindSet:
			// unreachable, kind is restricted above
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperator, c.Operator)
	}

	return nil
}

// Validate checks every condition in the group.
func (g ConditionGroup) Validate() error {
	if g.Logic != LogicAnd && g.Logic != LogicOr {
		return fmt.Errorf("condition group %s: invalid logic %q", g.ID, g.Logic)
	}

	for _, c := range g.Conditions {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("condition %s: %w", c.ID, err)
		}
	}

	return nil
}
