package aggregate

import (
	"reflect"
	"testing"

	"github.com/lehigh-university-libraries/crossview/internal/artwork"
)

func paintings() []*artwork.Record {
	return []*artwork.Record{
		{Index: 0, Country: "France", Depicts: []string{"tree", "river", "woman"}},
		{Index: 1, Country: "France", Depicts: []string{"woman"}},
		{Index: 2, Country: "Spain", Depicts: []string{"horse", "tree"}},
		{Index: 3, Country: " ", Depicts: nil},
	}
}

func TestAggregateMultiValuedCountsMemberships(t *testing.T) {
	records := paintings()

	table := Aggregate(records, artwork.AttrDepicts, Options{})

	expected := FrequencyTable{"tree": 2, "river": 1, "woman": 2, "horse": 1}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("Expected %v, got %v", expected, table)
	}

	memberships := 0
	for _, r := range records {
		memberships += len(r.Depicts)
	}
	if total := Total(table); total != memberships {
		t.Errorf("Expected total %d, got %d", memberships, total)
	}
	if Total(table) == len(records) {
		t.Error("Expected total to count memberships, not records")
	}
}

func TestAggregateDropSingletons(t *testing.T) {
	table := Aggregate(paintings(), artwork.AttrDepicts, Options{DropSingletons: true})

	expected := FrequencyTable{"tree": 2, "woman": 2}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("Expected %v, got %v", expected, table)
	}
}

func TestAggregateScalarSkipsBlank(t *testing.T) {
	table := Aggregate(paintings(), artwork.AttrCountry, Options{})

	expected := FrequencyTable{"France": 2, "Spain": 1}
	if !reflect.DeepEqual(table, expected) {
		t.Errorf("Expected %v, got %v", expected, table)
	}
}

func TestAggregateEmpty(t *testing.T) {
	table := Aggregate(nil, artwork.AttrMovement, Options{})

	if table == nil {
		t.Fatal("Expected non-nil table")
	}
	if len(table) != 0 {
		t.Errorf("Expected empty table, got %v", table)
	}
	if entries := Ranked(nil, artwork.AttrMovement, Options{}); len(entries) != 0 {
		t.Errorf("Expected no entries, got %v", entries)
	}
}

func TestRanked(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		expected []Entry
	}{
		{
			name: "count then first seen",
			opts: Options{},
			expected: []Entry{
				{Value: "tree", Count: 2},
				{Value: "woman", Count: 2},
				{Value: "river", Count: 1},
				{Value: "horse", Count: 1},
			},
		},
		{
			name:     "drop singletons",
			opts:     Options{DropSingletons: true},
			expected: []Entry{{Value: "tree", Count: 2}, {Value: "woman", Count: 2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Ranked(paintings(), artwork.AttrDepicts, tt.opts)
			if !reflect.DeepEqual(entries, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, entries)
			}
		})
	}
}
