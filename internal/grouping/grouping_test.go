package grouping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

func movements(values ...[]string) []*artwork.Record {
	records := make([]*artwork.Record, len(values))
	for i, v := range values {
		records[i] = &artwork.Record{Index: i, ID: fmt.Sprintf("Q%d", i), Movement: v}
	}
	return records
}

func filter(records []*artwork.Record, p func(*artwork.Record) bool) []int {
	var out []int
	for _, r := range records {
		if p(r) {
			out = append(out, r.Index)
		}
	}
	return out
}

func TestThreeRecordScenario(t *testing.T) {
	records := movements([]string{"Impressionism"}, []string{"Impressionism"}, []string{"Cubism"})

	g := GroupByAttribute(records, artwork.AttrMovement, 0.5)

	require.Contains(t, g.Groups, "Impressionism")
	require.Contains(t, g.Groups, OtherKey)
	assert.NotContains(t, g.Groups, "Cubism")
	assert.Equal(t, []string{"Cubism"}, g.OtherKeys)
	assert.Len(t, g.Groups["Impressionism"].Members, 2)
	assert.True(t, g.IsOther(OtherKey))
	assert.False(t, g.IsOther("Impressionism"))

	sel := NewSelection()
	sel.ToggleGroup(g, "Impressionism")
	p := sel.Predicate(artwork.AttrMovement)
	require.NotNil(t, p)
	assert.Equal(t, []int{0, 1}, filter(records, p))
}

func TestHundredRecordThreshold(t *testing.T) {
	var values [][]string
	for i := 0; i < 4; i++ {
		values = append(values, []string{"Fauvism"})
	}
	for i := 0; i < 6; i++ {
		values = append(values, []string{"Baroque"})
	}
	for len(values) < 100 {
		values = append(values, []string{"Romanticism"})
	}
	records := movements(values...)

	g := GroupByAttribute(records, artwork.AttrMovement, DefaultThreshold)

	assert.Equal(t, []string{"Fauvism"}, g.OtherKeys)
	assert.Contains(t, g.Groups, "Baroque")
	assert.Contains(t, g.Groups, "Romanticism")
	assert.Len(t, g.Groups[OtherKey].Members, 4)
}

func TestExactlyAtThresholdIsFolded(t *testing.T) {
	var values [][]string
	for i := 0; i < 5; i++ {
		values = append(values, []string{"Dada"})
	}
	for len(values) < 100 {
		values = append(values, []string{"Realism"})
	}

	g := GroupByAttribute(movements(values...), artwork.AttrMovement, 0)

	assert.Equal(t, DefaultThreshold, g.Threshold)
	assert.Equal(t, []string{"Dada"}, g.OtherKeys)
}

func TestNoOtherGroupWhenNothingFalls(t *testing.T) {
	records := movements([]string{"A"}, []string{"A"}, []string{"B"}, []string{"B"})

	g := GroupByAttribute(records, artwork.AttrMovement, 0.25)

	assert.NotContains(t, g.Groups, OtherKey)
	assert.Empty(t, g.OtherKeys)
}

func TestMultiValuedMemberships(t *testing.T) {
	records := movements(
		[]string{"Cubism", "Futurism"},
		[]string{"Cubism"},
		nil,
	)

	g := GroupByAttribute(records, artwork.AttrMovement, 0.4)

	// cutoff is 1.2: Cubism (2) stays, Futurism (1) folds
	assert.Len(t, g.Groups["Cubism"].Members, 2)
	assert.Equal(t, []string{"Futurism"}, g.OtherKeys)
	assert.Equal(t, records[0], g.Groups[OtherKey].Members[0].Record)
	assert.True(t, g.Groups[OtherKey].Members[0].Other)
}

func TestOtherGroupRecordsAreDistinct(t *testing.T) {
	records := movements([]string{"X", "Y"}, []string{"Z"}, []string{"Z"}, []string{"Z"})

	g := GroupByAttribute(records, artwork.AttrMovement, 0.25)

	other := g.Groups[OtherKey]
	require.NotNil(t, other)
	assert.Len(t, other.Members, 2)
	assert.Len(t, other.Records(), 1)
}

func TestFoldingIgnoresInsertionOrder(t *testing.T) {
	a := movements([]string{"A"}, []string{"B"}, []string{"B"}, []string{"C"}, []string{"B"})
	b := movements([]string{"B"}, []string{"C"}, []string{"B"}, []string{"A"}, []string{"B"})

	ga := GroupByAttribute(a, artwork.AttrMovement, 0.2)
	gb := GroupByAttribute(b, artwork.AttrMovement, 0.2)

	assert.ElementsMatch(t, ga.OtherKeys, gb.OtherKeys)
	assert.ElementsMatch(t, ga.Keys(), gb.Keys())
}

func TestLegendOrder(t *testing.T) {
	records := movements(
		[]string{"Rococo"},
		[]string{"Baroque"},
		[]string{"Baroque"},
		[]string{"Rococo"},
		[]string{"Mannerism"},
		[]string{"Baroque"},
	)

	g := GroupByAttribute(records, artwork.AttrMovement, 0.2)

	assert.Equal(t, []LegendEntry{
		{Key: "Baroque", Count: 3},
		{Key: "Rococo", Count: 2},
		{Key: OtherKey, Count: 1, Other: true},
	}, g.Legend())
}

func TestRealOtherCategoryIsFolded(t *testing.T) {
	records := movements([]string{"Other"}, []string{"Other"}, []string{"Other"}, []string{"Pop art"})

	g := GroupByAttribute(records, artwork.AttrMovement, 0.1)

	assert.True(t, g.IsOther(OtherKey))
	assert.Equal(t, []string{"Other"}, g.OtherKeys)
	assert.Contains(t, g.Groups, "Pop art")
}

func TestGroupByEmpty(t *testing.T) {
	g := GroupByAttribute(nil, artwork.AttrGenre, DefaultThreshold)

	assert.Empty(t, g.Groups)
	assert.Empty(t, g.OtherKeys)
	assert.Empty(t, g.Legend())
}
