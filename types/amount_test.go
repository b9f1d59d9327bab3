package types

import (
	"math"
	"testing"
)

func TestAmountAddChecked(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want Amount
		ok   bool
	}{
		{"simple", 100, 200, 300, true},
		{"zero", 0, 0, 0, true},
		{"at max", MaxAmount - 1, 1, MaxAmount, true},
		{"overflow", MaxAmount, 1, 0, false},
		{"overflow both large", MaxAmount / 2, MaxAmount/2 + 2, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.AddChecked(tt.b)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("sum: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountSubChecked(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want Amount
		ok   bool
	}{
		{"simple", 500, 200, 300, true},
		{"to zero", 200, 200, 0, true},
		{"underflow", 100, 200, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.SubChecked(tt.b)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("diff: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountMulChecked(t *testing.T) {
	tests := []struct {
		name string
		a, b Amount
		want Amount
		ok   bool
	}{
		{"simple", 100, 3, 300, true},
		{"zero left", 0, math.MaxUint64, 0, true},
		{"zero right", math.MaxUint64, 0, 0, true},
		{"overflow", MaxAmount, 2, 0, false},
		{"royalty style", 1_000_000, 250, 250_000_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.MulChecked(tt.b)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("product: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSumChecked(t *testing.T) {
	if got, ok := SumChecked(1, 2, 3); !ok || got != 6 {
		t.Errorf("SumChecked(1,2,3) = %d, %v", got, ok)
	}
	if got, ok := SumChecked(); !ok || got != 0 {
		t.Errorf("SumChecked() = %d, %v", got, ok)
	}
	if _, ok := SumChecked(MaxAmount, 1); ok {
		t.Error("expected overflow")
	}
}

func TestAmountMinMax(t *testing.T) {
	if got := Amount(3).Min(5); got != 3 {
		t.Errorf("Min: got %d", got)
	}
	if got := Amount(3).Max(5); got != 5 {
		t.Errorf("Max: got %d", got)
	}
}

func TestAmountString(t *testing.T) {
	if got := Amount(42).String(); got != "42" {
		t.Errorf("String: got %q", got)
	}
}
