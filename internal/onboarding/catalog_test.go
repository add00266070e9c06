package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	require.Len(t, c.Languages, 3)
	tl, ok := c.Language("TL")
	require.True(t, ok)
	assert.Equal(t, "Itakda ang Gustong Wika:", tl.Title)
	assert.Equal(t, "Magpatuloy", tl.Confirm)
	assert.Equal(t, "May negosyo na ako", tl.Path.Option1)

	ceb, ok := c.Language("ceb")
	require.True(t, ok)
	assert.Equal(t, "Padayun", ceb.Confirm)
	assert.Equal(t, "Padayon", ceb.Path.Confirm)

	_, ok = c.Language("fr")
	assert.False(t, ok)

	p, ok := c.Route("option1")
	require.True(t, ok)
	assert.Equal(t, "existing", p.Route)
	p, ok = c.Route("option2")
	require.True(t, ok)
	assert.Equal(t, "start", p.Route)
	_, ok = c.Route("option3")
	assert.False(t, ok)

	codes := make([]string, 0, len(c.StoreTypes))
	for _, st := range c.StoreTypes {
		codes = append(codes, st.Code)
	}
	assert.Equal(t, []string{"sari-sari", "gulayan", "bakery", "foodstall", "butcher"}, codes)
	st, ok := c.StoreType("butcher")
	require.True(t, ok)
	assert.Equal(t, "/assets/butchery.png", st.Image)

	assert.Equal(t, "Let's get to know each other, Ate!", c.Vendor.Title)
	require.Len(t, c.Inventory.Starter, 3)
	assert.Equal(t, StarterItem{Name: "Fishball", Pcs: 100, Cost: 0.5, Price: 1, Image: "/assets/fishball.png"}, c.Inventory.Starter[0])
}

func TestParseRejectsIncompleteCatalog(t *testing.T) {
	tests := map[string]string{
		"no languages": "paths: {option1: {route: a}, option2: {route: b}}\nstore_types: [{code: x}]\n",
		"missing copy": "languages: [{code: en, title: T}]\npaths: {option1: {route: a}, option2: {route: b}}\nstore_types: [{code: x}]\n",
		"no route":     "languages: [{code: en, title: T, confirm: C, path: {title: a, option1: b, option2: c, confirm: d}}]\npaths: {option1: {route: a}}\nstore_types: [{code: x}]\n",
		"bad starter":  "languages: [{code: en, title: T, confirm: C, path: {title: a, option1: b, option2: c, confirm: d}}]\npaths: {option1: {route: a}, option2: {route: b}}\nstore_types: [{code: x}]\ninventory: {starter: [{name: X, pcs: -1}]}\n",
		"not yaml":     "languages: [unclosed",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
