package recommendation

type timeOfDay int

const (
	morning timeOfDay = iota
	evening
)

const (
	maxRoutineSteps     = 3
	defaultInstructions = "Use as directed"
)

type slot struct {
	category Category
	time     timeOfDay
}

var instructions = map[slot]string{
	{CategoryCleanser, morning}:    "Apply to damp skin and rinse thoroughly",
	{CategoryCleanser, evening}:    "Apply to damp skin and rinse thoroughly",
	{CategorySerum, morning}:       "Apply a small amount and gently pat into skin",
	{CategorySerum, evening}:       "Apply a small amount and gently pat into skin",
	{CategoryMoisturizer, morning}: "Apply to slightly damp skin",
	{CategoryMoisturizer, evening}: "Apply to slightly damp skin",
	{CategorySunscreen, morning}:   "Apply generously and reapply every 2 hours",
	{CategorySunscreen, evening}:   "Not needed in evening",
	{CategoryTreatment, morning}:   "Use as directed, typically 2-3 times per week",
	{CategoryTreatment, evening}:   "Use as directed, typically 2-3 times per week",
}

// routineSlots says when each category may be used.
var routineSlots = map[Category][]timeOfDay{
	CategoryCleanser:    {morning, evening},
	CategorySerum:       {morning, evening},
	CategoryMoisturizer: {morning, evening},
	CategorySunscreen:   {morning},
	CategoryTreatment:   {evening},
}

// buildRoutine buckets ranked products into morning and evening, keeping rank order.
func buildRoutine(ranked []ScoredProduct) Routine {
	var am, pm []ScoredProduct
	for _, sp := range ranked {
		for _, t := range routineSlots[sp.Category] {
			switch t {
			case morning:
				am = append(am, sp)
			case evening:
				pm = append(pm, sp)
			}
		}
	}
	return Routine{
		Morning: toSteps(am, morning),
		Evening: toSteps(pm, evening),
	}
}

func toSteps(products []ScoredProduct, t timeOfDay) []RoutineStep {
	if len(products) > maxRoutineSteps {
		products = products[:maxRoutineSteps]
	}
	steps := make([]RoutineStep, 0, len(products))
	for i, sp := range products {
		steps = append(steps, RoutineStep{
			Step:         i + 1,
			Product:      sp.Name,
			Category:     sp.Category,
			Instructions: instructionFor(sp.Category, t),
		})
	}
	return steps
}

func instructionFor(c Category, t timeOfDay) string {
	if text, ok := instructions[slot{c, t}]; ok {
		return text
	}
	return defaultInstructions
}
