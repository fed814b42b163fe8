package filter_test

import (
	"testing"

	"github.com/helix-engine/helix/assert"
	"github.com/helix-engine/helix/filter"
	"github.com/helix-engine/helix/types"
)

type alpha struct{}

func (alpha) Name() string { return "alpha" }

type beta struct{}

func (beta) Name() string { return "beta" }

type gamma struct{}

func (gamma) Name() string { return "gamma" }

var layoutAB = []types.Component{alpha{}, beta{}}

func TestContains(t *testing.T) {
	assert.True(t, filter.Contains(filter.Component[alpha]()).MatchesComponents(layoutAB))
	assert.True(t, filter.Contains(filter.Component[alpha](), filter.Component[beta]()).MatchesComponents(layoutAB))
	assert.False(t, filter.Contains(filter.Component[gamma]()).MatchesComponents(layoutAB))
	assert.True(t, filter.ContainsComponents(beta{}).MatchesComponents(layoutAB))
}

func TestExact(t *testing.T) {
	assert.True(t, filter.Exact(filter.Component[alpha](), filter.Component[beta]()).MatchesComponents(layoutAB))
	assert.False(t, filter.Exact(filter.Component[alpha]()).MatchesComponents(layoutAB))
	assert.False(t,
		filter.Exact(filter.Component[alpha](), filter.Component[beta](), filter.Component[gamma]()).
			MatchesComponents(layoutAB))
}

func TestCombinators(t *testing.T) {
	hasAlpha := filter.Contains(filter.Component[alpha]())
	hasGamma := filter.Contains(filter.Component[gamma]())

	assert.True(t, filter.And(hasAlpha, filter.Not(hasGamma)).MatchesComponents(layoutAB))
	assert.False(t, filter.And(hasAlpha, hasGamma).MatchesComponents(layoutAB))
	assert.True(t, filter.Or(hasAlpha, hasGamma).MatchesComponents(layoutAB))
	assert.False(t, filter.Not(hasAlpha).MatchesComponents(layoutAB))
	assert.True(t, filter.All().MatchesComponents(nil))
}
