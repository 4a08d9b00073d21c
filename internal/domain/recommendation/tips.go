package recommendation

const (
	maxTips            = 6
	maintainTierScore  = 0.8
	manageTierMinScore = 0.6
)

var (
	maintainTips = []string{
		"Your skin is in great condition - keep up your current routine",
		"Continue using sunscreen daily to protect your skin",
		"Stay hydrated and maintain a balanced diet",
		"Get adequate sleep to support skin regeneration",
	}
	manageTips = []string{
		"Focus on consistent daily skincare habits",
		"Consider adding a targeted serum to your routine",
		"Use a gentle cleanser to avoid stripping natural oils",
		"Apply moisturizer while skin is still slightly damp",
	}
	cautionTips = []string{
		"Simplify your routine and focus on barrier repair",
		"Avoid harsh exfoliants until your skin recovers",
		"Consider consulting a dermatologist for persistent concerns",
		"Patch test new products before full application",
	}

	concernTips = map[string][]string{
		"acne": {
			"Avoid touching your face throughout the day",
			"Change pillowcases regularly to reduce bacteria buildup",
		},
		"redness": {
			"Avoid hot water when cleansing your face",
			"Look for fragrance-free and soothing formulations",
		},
		"dark_spots": {
			"Apply broad-spectrum SPF 30+ every morning",
			"Be patient - brightening ingredients take 8-12 weeks to show results",
		},
	}
)

func tierTips(healthScore float64) []string {
	switch {
	case healthScore >= maintainTierScore:
		return maintainTips
	case healthScore >= manageTierMinScore:
		return manageTips
	default:
		return cautionTips
	}
}

func buildTips(healthScore float64, concerns []string) []string {
	tips := make([]string, 0, maxTips)
	tips = append(tips, tierTips(healthScore)...)
	for _, concern := range concerns {
		if len(tips) >= maxTips {
			break
		}
		tips = append(tips, concernTips[concern]...)
	}
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}
