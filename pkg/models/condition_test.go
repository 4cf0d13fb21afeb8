package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionValidate(t *testing.T) {
	date := func(y int, m time.Month, d int) ConditionValue {
		return DateValue(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}

	testCases := []struct {
		name      string
		condition Condition
		wantErr   error
	}{
		{
			name: "string equals",
			condition: Condition{
				Field:    FieldClientType,
				Operator: OperatorEquals,
				Value:    StringValue("vip"),
			},
		},
		{
			name: "number between",
			condition: Condition{
				Field:    FieldTotalSpent,
				Operator: OperatorBetween,
				Value:    NumberValue(100),
				Value2:   &ConditionValue{Kind: KindNumber, Number: 500},
			},
		},
		{
			name: "date between",
			condition: Condition{
				Field:    FieldDate,
				Operator: OperatorBetween,
				Value:    date(2025, 6, 1),
				Value2:   ptr(date(2025, 6, 30)),
			},
		},
		{
			name: "tags contains",
			condition: Condition{
				Field:    FieldTags,
				Operator: OperatorContains,
				Value:    StringValue("loyal"),
			},
		},
		{
			name: "in with set",
			condition: Condition{
				Field:    FieldClientType,
				Operator: OperatorIn,
				Value:    SetValue("vip", "premium"),
			},
		},
		{
			name: "custom with key",
			condition: Condition{
				Field:     FieldCustom,
				Operator:  OperatorEquals,
				CustomKey: "referral",
				Value:     StringValue("instagram"),
			},
		},
		{
			name: "unknown field",
			condition: Condition{
				Field:    "shoeSize",
				Operator: OperatorEquals,
				Value:    NumberValue(42),
			},
			wantErr: ErrUnknownField,
		},
		{
			name: "unknown operator",
			condition: Condition{
				Field:    FieldTotalSpent,
				Operator: "approximately",
				Value:    NumberValue(100),
			},
			wantErr: ErrUnknownOperator,
		},
		{
			name: "value kind mismatch",
			condition: Condition{
				Field:    FieldTotalSpent,
				Operator: OperatorEquals,
				Value:    StringValue("100"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "equality on set field",
			condition: Condition{
				Field:    FieldTags,
				Operator: OperatorEquals,
				Value:    StringValue("loyal"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "ordering on string field",
			condition: Condition{
				Field:    FieldClientType,
				Operator: OperatorGreaterThan,
				Value:    StringValue("vip"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "between missing second bound",
			condition: Condition{
				Field:    FieldTotalSpent,
				Operator: OperatorBetween,
				Value:    NumberValue(100),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "between inverted number range",
			condition: Condition{
				Field:    FieldTotalSpent,
				Operator: OperatorBetween,
				Value:    NumberValue(500),
				Value2:   &ConditionValue{Kind: KindNumber, Number: 100},
			},
			wantErr: ErrInvertedRange,
		},
		{
			name: "between inverted date range",
			condition: Condition{
				Field:    FieldDate,
				Operator: OperatorBetween,
				Value:    date(2025, 6, 30),
				Value2:   ptr(date(2025, 6, 1)),
			},
			wantErr: ErrInvertedRange,
		},
		{
			name: "custom without key",
			condition: Condition{
				Field:    FieldCustom,
				Operator: OperatorEquals,
				Value:    StringValue("x"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "in without set value",
			condition: Condition{
				Field:    FieldClientType,
				Operator: OperatorIn,
				Value:    StringValue("vip"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "in with number field",
			condition: Condition{
				Field:    FieldVisitCount,
				Operator: OperatorIn,
				Value:    SetValue("3", "5"),
			},
		},
		{
			name: "in on set field",
			condition: Condition{
				Field:    FieldTags,
				Operator: OperatorIn,
				Value:    SetValue("vip", "premium"),
			},
			wantErr: ErrValueMismatch,
		},
		{
			name: "in on date field",
			condition: Condition{
				Field:    FieldDate,
				Operator: OperatorIn,
				Value:    SetValue("2025-06-01"),
			},
			wantErr: ErrValueMismatch,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.condition.Validate()

			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestConditionGroupValidate(t *testing.T) {
	valid := Condition{Field: FieldClientType, Operator: OperatorEquals, Value: StringValue("vip")}
	broken := Condition{Field: "shoeSize", Operator: OperatorEquals, Value: NumberValue(42)}

	require.NoError(t, ConditionGroup{Logic: LogicAnd, Conditions: []Condition{valid}}.Validate())
	assert.Error(t, ConditionGroup{Logic: LogicAnd, Conditions: []Condition{valid, broken}}.Validate())
	assert.Error(t, ConditionGroup{Logic: "XOR", Conditions: []Condition{valid}}.Validate())
}

func ptr(v ConditionValue) *ConditionValue {
	return &v
}
