package wear

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/toolwear/internal/domain/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		accumulated int64
		usefulLife  int64
		want        models.Condition
	}{
		{name: "fresh tool", accumulated: 0, usefulLife: 100000, want: models.ConditionOK},
		{name: "just below warn", accumulated: 69999, usefulLife: 100000, want: models.ConditionOK},
		{name: "exactly warn boundary", accumulated: 70000, usefulLife: 100000, want: models.ConditionWarn},
		{name: "mid warn", accumulated: 75000, usefulLife: 100000, want: models.ConditionWarn},
		{name: "just below replace", accumulated: 79999, usefulLife: 100000, want: models.ConditionWarn},
		{name: "exactly replace boundary", accumulated: 80000, usefulLife: 100000, want: models.ConditionReplace},
		{name: "past useful life", accumulated: 150000, usefulLife: 100000, want: models.ConditionReplace},
		{name: "odd useful life warn", accumulated: 7, usefulLife: 10, want: models.ConditionWarn},
		{name: "odd useful life ok", accumulated: 2, usefulLife: 3, want: models.ConditionOK},
		{name: "non-positive useful life", accumulated: 0, usefulLife: 0, want: models.ConditionReplace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.accumulated, tt.usefulLife))
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	const life = 1234
	rank := map[models.Condition]int{
		models.ConditionOK:      0,
		models.ConditionWarn:    1,
		models.ConditionReplace: 2,
	}

	prev := Classify(0, life)
	for produced := int64(1); produced <= 2*life; produced++ {
		cur := Classify(produced, life)
		assert.GreaterOrEqual(t, rank[cur], rank[prev], "condition regressed at %d", produced)
		prev = cur
	}
}

func TestApply(t *testing.T) {
	tool := models.Tool{UsefulLife: 200000, AccumulatedProduction: 144000}
	Apply(&tool)

	assert.Equal(t, models.ConditionWarn, tool.Condition)
	assert.True(t, tool.Warning)

	tool.AccumulatedProduction = 0
	Apply(&tool)
	assert.Equal(t, models.ConditionOK, tool.Condition)
	assert.False(t, tool.Warning)
}
