package combat

import "testing"

func TestDefaultTypeChart(t *testing.T) {
	chart := DefaultTypeChart()
	cases := []struct {
		attack, defense string
		want            float64
	}{
		{"water", "fire", 2},
		{"fire", "nature", 2},
		{"nature", "water", 2},
		{"fire", "water", 0.5},
		{"ghost", "normal", 0},
		{"Water", " FIRE ", 2},
		{"rock", "fire", 1},
		{"", "fire", 1},
		{"water", "", 1},
	}
	for _, tc := range cases {
		if got := chart.Multiplier(tc.attack, tc.defense); got != tc.want {
			t.Fatalf("Multiplier(%q, %q) = %v, want %v", tc.attack, tc.defense, got, tc.want)
		}
	}
}

func TestTypeChartSetOverrides(t *testing.T) {
	chart := NewTypeChart(nil)
	chart.Set("steel", "fairy", 2)
	chart.Set("STEEL", "fairy", 3)
	chart.Set("", "fairy", 9)
	if got := chart.Multiplier("steel", "fairy"); got != 3 {
		t.Fatalf("expected override to win, got %v", got)
	}
	if chart.Len() != 1 {
		t.Fatalf("expected one entry, got %d", chart.Len())
	}
}

func TestNilChartIsNeutral(t *testing.T) {
	var chart *TypeChart
	if got := chart.Multiplier("water", "fire"); got != 1 {
		t.Fatalf("expected nil chart to be neutral, got %v", got)
	}
}
