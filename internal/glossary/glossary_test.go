package glossary

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func terms(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Term
	}
	return out
}

func TestSearch_EmptyReturnsAllSorted(t *testing.T) {
	all := Search("  ")
	require.Len(t, all, len(entries))
	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
		return all[i].Term < all[j].Term
	}))
	assert.Equal(t, all, All())
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	assert.Equal(t, []string{"Bollinger Bands"}, terms(Search("BOLL")))
	assert.Equal(t, []string{"D/E Ratio", "P/B Ratio", "P/E Ratio"}, terms(Search("ratio")))
	assert.Equal(t, []string{"Moving Average"}, terms(Search("moving")))
}

func TestSearch_NoMatch(t *testing.T) {
	assert.Empty(t, Search("cryptocurrency"))
}

func TestSearch_DoesNotMutateEntries(t *testing.T) {
	before := append([]Entry(nil), entries...)
	_ = Search("a")
	assert.Equal(t, before, entries)
}
