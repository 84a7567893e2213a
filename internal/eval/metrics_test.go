package eval

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/searchlab/retrieval-eval-platform/pkg/errors"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []int
		retrieved []int
		want      Report
	}{
		{
			name:      "mixed ranking",
			relevant:  []int{1, 3, 5},
			retrieved: []int{3, 2, 1, 4, 5, 6, 7, 8, 9, 10, 11},
			want: Report{
				PrecisionAt10: 0.3,
				Recall:        3.0 / 11.0,
				MAP:           (1.0/1.0 + 2.0/3.0 + 3.0/5.0) / 3.0,
				MRR:           1.0,
			},
		},
		{
			name:      "perfect ranking",
			relevant:  []int{1, 2},
			retrieved: []int{1, 2},
			want: Report{
				PrecisionAt10: 0.2,
				Recall:        1.0,
				MAP:           1.0,
				MRR:           1.0,
			},
		},
		{
			name:      "first relevant at rank three",
			relevant:  []int{7},
			retrieved: []int{4, 5, 7},
			want: Report{
				PrecisionAt10: 0.1,
				Recall:        1.0 / 3.0,
				MAP:           1.0 / 3.0,
				MRR:           1.0 / 3.0,
			},
		},
		{
			name:      "no relevant judged",
			relevant:  nil,
			retrieved: []int{1, 2, 3},
			want:      Report{},
		},
		{
			name:      "nothing retrieved",
			relevant:  []int{1, 2},
			retrieved: nil,
			want:      Report{},
		},
		{
			name:      "nothing relevant retrieved",
			relevant:  []int{100, 200},
			retrieved: []int{1, 2, 3},
			want:      Report{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.relevant, tt.retrieved)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if !almostEqual(got.PrecisionAt10, tt.want.PrecisionAt10) {
				t.Errorf("PrecisionAt10 = %v, want %v", got.PrecisionAt10, tt.want.PrecisionAt10)
			}
			if !almostEqual(got.Recall, tt.want.Recall) {
				t.Errorf("Recall = %v, want %v", got.Recall, tt.want.Recall)
			}
			if !almostEqual(got.MAP, tt.want.MAP) {
				t.Errorf("MAP = %v, want %v", got.MAP, tt.want.MAP)
			}
			if !almostEqual(got.MRR, tt.want.MRR) {
				t.Errorf("MRR = %v, want %v", got.MRR, tt.want.MRR)
			}
		})
	}
}

func TestEvaluateRejectsNonPositiveIDs(t *testing.T) {
	tests := []struct {
		name      string
		relevant  []int
		retrieved []int
	}{
		{"zero in relevant", []int{0, 1}, []int{1}},
		{"negative in relevant", []int{-5}, []int{1}},
		{"zero in retrieved", []int{1}, []int{0}},
		{"negative in retrieved", []int{1}, []int{2, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.relevant, tt.retrieved)
			if err == nil {
				t.Fatal("Evaluate() error = nil, want invalid input")
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestEvaluateMetricsInUnitRange(t *testing.T) {
	relevant := []int{2, 4, 6, 8}
	retrieved := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	report, err := Evaluate(relevant, retrieved)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for name, v := range map[string]float64{
		"PrecisionAt10": report.PrecisionAt10,
		"Recall":        report.Recall,
		"MAP":           report.MAP,
		"MRR":           report.MRR,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, outside [0,1]", name, v)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	relevant := []int{1, 3, 5}
	retrieved := []int{5, 4, 3, 2, 1}
	first, err := Evaluate(relevant, retrieved)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Evaluate(relevant, retrieved)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if again != first {
			t.Fatalf("run %d gave %+v, first gave %+v", i, again, first)
		}
	}
}

func TestReportString(t *testing.T) {
	report := Report{PrecisionAt10: 0.3, Recall: 0.25, MAP: 0.5, MRR: 1}
	want := "P@10=0.3000 Recall=0.2500 MAP=0.5000 MRR=1.0000"
	if got := report.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
