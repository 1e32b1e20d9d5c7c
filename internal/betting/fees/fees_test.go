package fees

import (
	"math"
	"testing"
)

func TestNormalizeOdds(t *testing.T) {
	tests := []struct {
		name string
		odds float64
		want float64
	}{
		{"decimal multiplier 2.0", 2.0, 2.0},
		{"decimal multiplier 1.0", 1.0, 1.0},
		{"decimal multiplier 10.0", 10.0, 10.0},
		{"american +100", 100, 2.0},
		{"american +150", 150, 2.5},
		{"american -110", -110, 1.909090909},
		{"american -200", -200, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeOdds(tt.odds)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("normalizeOdds(%v) = %v, want %v", tt.odds, got, tt.want)
			}
		})
	}
}

func TestCalculateBreakdown(t *testing.T) {
	bd := Default.Calculate(100, 2.0)

	if bd.TotalPot != 200 {
		t.Fatalf("totalPot = %v, want 200", bd.TotalPot)
	}
	if math.Abs(bd.PlatformFee-1.5) > 1e-9 {
		t.Fatalf("platformFee = %v, want 1.5", bd.PlatformFee)
	}
	if math.Abs(bd.WinnerPayout-198.5) > 1e-9 {
		t.Fatalf("winnerPayout = %v, want 198.5", bd.WinnerPayout)
	}
	if bd.TreasuryShare+bd.RelayTips > bd.PlatformFee {
		t.Fatalf("treasury+relay (%v) exceeds platform fee (%v)",
			bd.TreasuryShare+bd.RelayTips, bd.PlatformFee)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	a := Default.Calculate(37.5, -135)
	b := Default.Calculate(37.5, -135)
	if a != b {
		t.Fatalf("same inputs produced different breakdowns: %+v vs %+v", a, b)
	}
}

func TestAmericanEquivalence(t *testing.T) {
	// +100 em odds americanas equivale ao multiplicador 2.0
	decimal := Default.Calculate(100, 2.0)
	american := Default.Calculate(100, 100)

	if decimal.TotalPot != american.TotalPot {
		t.Fatalf("totalPot differs: decimal=%v american=%v", decimal.TotalPot, american.TotalPot)
	}
	if decimal.WinnerPayout != american.WinnerPayout {
		t.Fatalf("winnerPayout differs: decimal=%v american=%v", decimal.WinnerPayout, american.WinnerPayout)
	}
}

func TestZeroAmount(t *testing.T) {
	bd := Default.Calculate(0, 2.0)
	if bd.TotalPot != 0 || bd.PlatformFee != 0 || bd.WinnerPayout != 0 {
		t.Fatalf("zero amount should produce zero breakdown, got %+v", bd)
	}
}
