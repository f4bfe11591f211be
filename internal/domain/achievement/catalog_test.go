package achievement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInMemoryCatalog_ValidatesDefinitions(t *testing.T) {
	catalog, err := NewInMemoryCatalog(BuiltinDefinitions())
	assert.NoError(t, err)
	assert.NotEmpty(t, catalog.All())
}

func TestNewInMemoryCatalog_RejectsDuplicateIDs(t *testing.T) {
	defs := []Achievement{
		{
			ID:       "first-steps",
			Name:     "First Steps",
			Category: CategoryMilestones,
			Rarity:   RarityCommon,
			Points:   10,
			Criteria: Criteria{
				Type:       CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 1},
			},
		},
		{
			ID:       "first-steps",
			Name:     "First Steps Again",
			Category: CategoryMilestones,
			Rarity:   RarityCommon,
			Points:   10,
			Criteria: Criteria{
				Type:       CriteriaSessionCount,
				Conditions: SessionCountConditions{Target: 2},
			},
		},
	}

	_, err := NewInMemoryCatalog(defs)
	assert.Error(t, err)
}

func TestCatalog_AvailableTo(t *testing.T) {
	catalog, err := NewInMemoryCatalog(BuiltinDefinitions())
	assert.NoError(t, err)

	free := catalog.AvailableTo(false)
	for _, a := range free {
		assert.False(t, a.IsPremium)
		assert.False(t, a.IsDisabled)
	}

	premium := catalog.AvailableTo(true)
	assert.Greater(t, len(premium), len(free))
}

func TestCatalog_RecommendableFor(t *testing.T) {
	catalog, err := NewInMemoryCatalog(BuiltinDefinitions())
	assert.NoError(t, err)

	earned := map[string]bool{"first-steps": true}
	recs := catalog.RecommendableFor(false, earned)

	for _, a := range recs {
		assert.False(t, a.IsSecret, "secret achievements are never candidates")
		assert.False(t, a.IsPremium)
		assert.False(t, earned[a.ID], "earned achievements are never candidates")
	}
}

func TestRarity_String(t *testing.T) {
	assert.Equal(t, "common", RarityCommon.String())
	assert.Equal(t, "epic", RarityEpic.String())
}
