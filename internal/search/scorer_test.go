package search

import (
	"reflect"
	"testing"

	"github.com/searchlab/retrieval-eval-platform/internal/index"
)

func buildSampleIndex() *index.Index {
	return index.Build([]string{
		"the cat sat",
		"the dog ran",
		"cats and dogs",
	})
}

func TestScore(t *testing.T) {
	idx := buildSampleIndex()

	tests := []struct {
		name  string
		query string
		want  []ScoredDoc
	}{
		{
			name:  "single term matches plural form",
			query: "cat",
			want:  []ScoredDoc{{DocID: 1, Score: 1}, {DocID: 3, Score: 1}},
		},
		{
			name:  "multi term accumulates across postings",
			query: "cat dog",
			want: []ScoredDoc{
				{DocID: 3, Score: 2},
				{DocID: 1, Score: 1},
				{DocID: 2, Score: 1},
			},
		},
		{
			name:  "no matching documents",
			query: "zebra",
			want:  nil,
		},
		{
			name:  "stop words only",
			query: "the and",
			want:  nil,
		},
		{
			name:  "empty query",
			query: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.query, idx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestScoreRepeatedTermWeighting(t *testing.T) {
	idx := index.Build([]string{
		"cat",
		"cat cat cat",
	})
	got := Score("cat", idx)
	want := []ScoredDoc{{DocID: 2, Score: 3}, {DocID: 1, Score: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Score(cat) = %v, want %v", got, want)
	}
}

func TestScoreTieBreaksByDocID(t *testing.T) {
	idx := index.Build([]string{"dog", "dog", "dog"})
	got := Score("dog", idx)
	for i, doc := range got {
		if doc.DocID != i+1 {
			t.Fatalf("tied results out of ingestion order: %v", got)
		}
	}
}

func TestRun(t *testing.T) {
	idx := buildSampleIndex()

	t.Run("truncates to limit but keeps total", func(t *testing.T) {
		result := Run("cat dog", idx, 2)
		if result.TotalHits != 3 {
			t.Errorf("TotalHits = %d, want 3", result.TotalHits)
		}
		if len(result.Results) != 2 {
			t.Errorf("len(Results) = %d, want 2", len(result.Results))
		}
	})

	t.Run("zero result query returns empty slice", func(t *testing.T) {
		result := Run("zebra", idx, 10)
		if result.TotalHits != 0 {
			t.Errorf("TotalHits = %d, want 0", result.TotalHits)
		}
		if result.Results == nil {
			t.Error("Results is nil, want empty slice")
		}
	})

	t.Run("unlimited when limit is zero", func(t *testing.T) {
		result := Run("cat dog", idx, 0)
		if len(result.Results) != 3 {
			t.Errorf("len(Results) = %d, want 3", len(result.Results))
		}
	})
}

func TestDocIDs(t *testing.T) {
	ranked := []ScoredDoc{{DocID: 3, Score: 2}, {DocID: 1, Score: 1}}
	if got := DocIDs(ranked); !reflect.DeepEqual(got, []int{3, 1}) {
		t.Errorf("DocIDs() = %v, want [3 1]", got)
	}
	if got := DocIDs(nil); len(got) != 0 {
		t.Errorf("DocIDs(nil) = %v, want empty", got)
	}
}
