package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLifecycleState_CanTransition(t *testing.T) {
	tests := []struct {
		from LifecycleState
		to   LifecycleState
		want bool
	}{
		{"", StateCreated, true},
		{"", StateIndexed, false},
		{StateCreated, StateIndexed, true},
		{StateCreated, StateDeleted, true},
		{StateIndexed, StateActive, true},
		{StateActive, StateDeleted, true},
		{StateActive, StateCreated, false},
		{StateDeleted, StateActive, false},
		{StateDeleted, StateCreated, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestRiskLevel_IsValid(t *testing.T) {
	assert.True(t, RiskLow.IsValid())
	assert.True(t, RiskHigh.IsValid())
	assert.False(t, RiskLevel("severe").IsValid())
	assert.False(t, RiskLevel("").IsValid())
}

func TestRelationType_IsValid(t *testing.T) {
	for _, rt := range AllRelationTypes() {
		assert.True(t, rt.IsValid(), rt)
	}
	assert.False(t, RelationType("BLOCKS").IsValid())
}

func TestEngineeringLogic_Normalise(t *testing.T) {
	l := EngineeringLogic{Summary: "s"}.Normalise()

	assert.NotNil(t, l.DecisionBackground)
	assert.NotNil(t, l.KeyClauses)
	assert.NotNil(t, l.Risks)
	assert.NotNil(t, l.Entities)
	assert.NotNil(t, l.CausalRelations)
	assert.NotNil(t, l.AffectedComponents)
	assert.Equal(t, "s", l.Summary)
}

func TestExtraction_Kinds(t *testing.T) {
	var fixed Extraction = FixedExtraction{Logic: EngineeringLogic{Summary: "x"}}
	var custom Extraction = CustomExtraction{AgentID: "a1", Payload: map[string]any{"k": "v"}}

	assert.Equal(t, ExtractionFixed, fixed.Kind())
	assert.Equal(t, ExtractionCustom, custom.Kind())
	assert.Equal(t, map[string]any{"k": "v"}, Payload(custom))
	assert.Equal(t, "x", Payload(fixed).(EngineeringLogic).Summary)
	assert.Nil(t, Payload(nil))
}
