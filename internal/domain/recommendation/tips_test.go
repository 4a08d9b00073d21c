package recommendation

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTipsTierBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		healthScore float64
		concerns    []string
		want        []string
	}{
		{name: "just below manage", healthScore: 0.5999, want: cautionTips},
		{name: "manage lower edge", healthScore: 0.6, want: manageTips},
		{name: "just below maintain", healthScore: 0.7999, want: manageTips},
		{name: "maintain lower edge", healthScore: 0.8, want: maintainTips},
		{name: "negative score", healthScore: -1, want: cautionTips},
		{name: "above one", healthScore: 1.5, want: maintainTips},
		{
			name:        "concern tips follow tier",
			healthScore: 0.5,
			concerns:    []string{"redness"},
			want:        append(slices.Clone(cautionTips), concernTips["redness"]...),
		},
		{
			name:        "three concerns truncate to six",
			healthScore: 0.9,
			concerns:    []string{"acne", "redness", "dark_spots"},
			want:        append(slices.Clone(maintainTips), concernTips["acne"]...),
		},
		{
			name:        "unknown concern adds nothing",
			healthScore: 0.7,
			concerns:    []string{"wrinkles"},
			want:        manageTips,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := buildTips(tc.healthScore, tc.concerns)
			require.Equal(t, tc.want, got)
			require.LessOrEqual(t, len(got), maxTips)
		})
	}
}

func TestCautionTipsText(t *testing.T) {
	require.Equal(t, []string{
		"Simplify your routine and focus on barrier repair",
		"Avoid harsh exfoliants until your skin recovers",
		"Consider consulting a dermatologist for persistent concerns",
		"Patch test new products before full application",
	}, buildTips(0.3, nil))
}

func TestBuildTipsDoesNotAliasTierSlices(t *testing.T) {
	got := buildTips(0.9, nil)
	got[0] = "mutated"
	require.NotEqual(t, "mutated", maintainTips[0])
}
