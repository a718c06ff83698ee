package split

import (
	"errors"
	"reflect"
	"testing"
)

func TestPlanFixedWindow(t *testing.T) {
	splits, err := Plan(9, 6, 1, false)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []Split{
		{ID: "Slice01", Analysis: Range{0, 6}, Assessment: Range{6, 7}},
		{ID: "Slice02", Analysis: Range{1, 7}, Assessment: Range{7, 8}},
		{ID: "Slice03", Analysis: Range{2, 8}, Assessment: Range{8, 9}},
	}
	if !reflect.DeepEqual(splits, want) {
		t.Errorf("Plan() = %+v, want %+v", splits, want)
	}
}

func TestPlanCumulativeWindow(t *testing.T) {
	splits, err := Plan(9, 6, 1, true)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []Split{
		{ID: "Slice01", Analysis: Range{0, 6}, Assessment: Range{6, 7}},
		{ID: "Slice02", Analysis: Range{0, 7}, Assessment: Range{7, 8}},
		{ID: "Slice03", Analysis: Range{0, 8}, Assessment: Range{8, 9}},
	}
	if !reflect.DeepEqual(splits, want) {
		t.Errorf("Plan() = %+v, want %+v", splits, want)
	}
}

func TestPlanSplitCount(t *testing.T) {
	tests := []struct {
		name        string
		nRows       int
		initialSize int
		assessSize  int
		cumulative  bool
	}{
		{"fixed single assess", 24, 12, 1, false},
		{"fixed wide assess", 24, 12, 3, false},
		{"fixed exact fit", 10, 5, 5, false},
		{"cumulative single assess", 24, 12, 1, true},
		{"cumulative wide assess", 24, 12, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := Plan(tt.nRows, tt.initialSize, tt.assessSize, tt.cumulative)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			wantCount := tt.nRows - tt.initialSize - tt.assessSize + 1
			if len(splits) != wantCount {
				t.Fatalf("got %d splits, want %d", len(splits), wantCount)
			}
			for k, s := range splits {
				if s.Analysis.End != s.Assessment.Start {
					t.Errorf("split %d: analysis end %d != assessment start %d",
						k+1, s.Analysis.End, s.Assessment.Start)
				}
				if s.Assessment.Len() != tt.assessSize {
					t.Errorf("split %d: assessment width = %d, want %d",
						k+1, s.Assessment.Len(), tt.assessSize)
				}
				wantAnalysis := tt.initialSize
				if tt.cumulative {
					wantAnalysis = tt.initialSize + k
				}
				if s.Analysis.Len() != wantAnalysis {
					t.Errorf("split %d: analysis width = %d, want %d",
						k+1, s.Analysis.Len(), wantAnalysis)
				}
			}
		})
	}
}

func TestPlanInsufficientData(t *testing.T) {
	_, err := Plan(9, 6, 4, false)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Plan() error = %v, want ErrInsufficientData", err)
	}
}

func TestPlanInvalidArguments(t *testing.T) {
	tests := []struct {
		name        string
		nRows       int
		initialSize int
		assessSize  int
	}{
		{"zero rows", 0, 1, 1},
		{"zero initial", 10, 0, 1},
		{"zero assess", 10, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Plan(tt.nRows, tt.initialSize, tt.assessSize, false); err == nil {
				t.Error("Plan() expected error, got nil")
			}
		})
	}
}

func TestPlanIdempotent(t *testing.T) {
	first, err := Plan(40, 12, 3, false)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	second, err := Plan(40, 12, 3, false)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical arguments produced different plans")
	}
}
