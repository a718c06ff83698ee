package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		dates   []time.Time
		wantErr error
	}{
		{
			name:  "sorted",
			dates: []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 3)},
		},
		{
			name:    "duplicate date",
			dates:   []time.Time{day(2020, 1, 1), day(2020, 1, 1)},
			wantErr: ErrDuplicateDate,
		},
		{
			name:    "out of order",
			dates:   []time.Time{day(2020, 1, 2), day(2020, 1, 1)},
			wantErr: ErrUnsorted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New("v")
			for _, d := range tt.dates {
				if err := f.Append(d, 1.0); err != nil {
					t.Fatalf("Append() error = %v", err)
				}
			}
			err := f.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAppendWrongWidth(t *testing.T) {
	f := New("a", "b")
	if err := f.Append(day(2020, 1, 1), 1.0); err == nil {
		t.Error("Append() with wrong value count expected error")
	}
}

func TestResampleMonthly(t *testing.T) {
	f := New("close")
	dates := []time.Time{
		day(2020, 1, 2), day(2020, 1, 15), day(2020, 1, 31),
		day(2020, 2, 3), day(2020, 2, 28),
		day(2020, 3, 2),
	}
	for i, d := range dates {
		if err := f.Append(d, float64(i+1)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	monthly := f.ResampleMonthly()
	if monthly.Len() != 3 {
		t.Fatalf("got %d monthly rows, want 3", monthly.Len())
	}
	wantDates := []time.Time{day(2020, 1, 1), day(2020, 2, 1), day(2020, 3, 1)}
	wantValues := []float64{3, 5, 6}
	for i := range wantDates {
		if !monthly.Date(i).Equal(wantDates[i]) {
			t.Errorf("row %d: date = %v, want %v", i, monthly.Date(i), wantDates[i])
		}
		v, err := monthly.Value(i, "close")
		if err != nil {
			t.Fatalf("Value() error = %v", err)
		}
		if v != wantValues[i] {
			t.Errorf("row %d: value = %v, want %v", i, v, wantValues[i])
		}
	}
}

func TestReturns(t *testing.T) {
	f := New("close")
	values := []float64{100, 110, 99}
	for i, v := range values {
		if err := f.Append(day(2020, 1, i+1), v); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	returns, err := f.Returns("close", "ret")
	if err != nil {
		t.Fatalf("Returns() error = %v", err)
	}
	if returns.Len() != 2 {
		t.Fatalf("got %d return rows, want 2", returns.Len())
	}
	want := []float64{0.10, -0.10}
	got, err := returns.Column("ret")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("return %d = %v, want %v", i, got[i], want[i])
		}
	}
	if !returns.Date(0).Equal(day(2020, 1, 2)) {
		t.Errorf("return keeps date of later observation, got %v", returns.Date(0))
	}
}

func TestJoin(t *testing.T) {
	left := New("ret")
	right := New("rf")
	for i := 1; i <= 3; i++ {
		if err := left.Append(day(2020, 1, i), float64(i)); err != nil {
			t.Fatal(err)
		}
	}
	// right misses Jan 2 and has an extra date.
	for _, d := range []int{1, 3, 4} {
		if err := right.Append(day(2020, 1, d), 0.5); err != nil {
			t.Fatal(err)
		}
	}

	joined, err := left.Join(right)
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if joined.Len() != 2 {
		t.Fatalf("got %d joined rows, want 2", joined.Len())
	}
	if !joined.Date(0).Equal(day(2020, 1, 1)) || !joined.Date(1).Equal(day(2020, 1, 3)) {
		t.Errorf("joined dates = %v, %v", joined.Date(0), joined.Date(1))
	}

	if _, err := left.Join(left); err == nil {
		t.Error("Join() with colliding columns expected error")
	}
}

func TestMatrixAndVector(t *testing.T) {
	f := New("a", "b")
	for i := 0; i < 4; i++ {
		if err := f.Append(day(2020, 1, i+1), float64(i), float64(i*10)); err != nil {
			t.Fatal(err)
		}
	}

	m, err := f.Matrix([]string{"b", "a"}, 1, 3)
	if err != nil {
		t.Fatalf("Matrix() error = %v", err)
	}
	if len(m) != 2 || m[0][0] != 10 || m[0][1] != 1 || m[1][0] != 20 {
		t.Errorf("Matrix() = %v", m)
	}

	v, err := f.Vector("a", 0, 4)
	if err != nil {
		t.Fatalf("Vector() error = %v", err)
	}
	if len(v) != 4 || v[3] != 3 {
		t.Errorf("Vector() = %v", v)
	}

	if _, err := f.Matrix([]string{"missing"}, 0, 1); err == nil {
		t.Error("Matrix() with unknown column expected error")
	}
	if _, err := f.Matrix([]string{"a"}, 2, 9); err == nil {
		t.Error("Matrix() out of range expected error")
	}
}

func TestWithColumnAndSelect(t *testing.T) {
	f := New("a")
	for i := 0; i < 3; i++ {
		if err := f.Append(day(2020, 1, i+1), float64(i)); err != nil {
			t.Fatal(err)
		}
	}
	g, err := f.WithColumn("b", []float64{5, 6, 7})
	if err != nil {
		t.Fatalf("WithColumn() error = %v", err)
	}
	sel, err := g.Select("b")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	got, _ := sel.Column("b")
	if got[0] != 5 || got[2] != 7 {
		t.Errorf("Select() values = %v", got)
	}

	if _, err := g.WithColumn("b", []float64{1, 2, 3}); err == nil {
		t.Error("WithColumn() duplicate name expected error")
	}
	if _, err := f.WithColumn("c", []float64{1}); err == nil {
		t.Error("WithColumn() wrong length expected error")
	}
}
