package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetParts(t *testing.T) {
	tg := NewTarget(TargetLabelGroup, "group-1")
	assert.Equal(t, Target("GROUP:group-1"), tg)
	assert.Equal(t, "GROUP", tg.Label())
	assert.Equal(t, "group-1", tg.Value())

	bare := Target("group-1")
	assert.Equal(t, "", bare.Label())
	assert.Equal(t, "group-1", bare.Value())
}

func TestTargetValidate(t *testing.T) {
	assert.NoError(t, Target("GROUP:g1").Validate())
	assert.NoError(t, Target("bare-value").Validate())
	assert.NoError(t, Target("X-PRIVATE:anything at all").Validate())

	assert.Error(t, Target("").Validate())
	assert.Error(t, Target("GROUP:").Validate())
	assert.Error(t, Target(":value").Validate())
	assert.Error(t, Target("dotted.label:value").Validate())
}

func TestTargetsSubset(t *testing.T) {
	super := []Target{"group-1", "private-value", "GROUP:g2"}

	assert.True(t, TargetsSubset(nil, super))
	assert.True(t, TargetsSubset([]Target{"group-1"}, super))
	assert.True(t, TargetsSubset([]Target{"group-1", "GROUP:g2"}, super))
	assert.False(t, TargetsSubset([]Target{"group-1", "group-2"}, super))
	assert.False(t, TargetsSubset([]Target{"other"}, nil))

	// Labeled and bare forms are distinct tags.
	assert.False(t, TargetsSubset([]Target{"g2"}, super))

	// Empty superset admits only the empty subset.
	assert.True(t, TargetsSubset(nil, nil))
}
