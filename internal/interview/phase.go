package interview

// phaseRank orders phases so transitions can be clamped forward-only.
var phaseRank = map[Phase]int{
	PhaseSetup:                 0,
	PhaseIntroduction:          1,
	PhaseTechnicalBasic:        2,
	PhaseTechnicalIntermediate: 3,
	PhaseTechnicalAdvanced:     4,
	PhaseBehavioral:            5,
	PhaseClosing:               6,
}

// DifficultyFor maps the interviewer question count to a difficulty tier.
// The mapping is a step function, so difficulty never regresses as the
// count grows.
func DifficultyFor(questionCount int) Difficulty {
	switch {
	case questionCount <= 3:
		return DifficultyEasy
	case questionCount <= 6:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// PhaseFor maps the question count and the (already recomputed) difficulty
// to an interview phase. The bands are ranked: each is only reachable once
// the earlier numeric thresholds are exceeded.
func PhaseFor(questionCount int, difficulty Difficulty) Phase {
	switch {
	case questionCount <= 2:
		return PhaseIntroduction
	case questionCount <= 5 && difficulty == DifficultyEasy:
		return PhaseTechnicalBasic
	case questionCount <= 8 && difficulty == DifficultyMedium:
		return PhaseTechnicalIntermediate
	case questionCount <= 12 && difficulty == DifficultyHard:
		return PhaseTechnicalAdvanced
	case questionCount <= 15:
		return PhaseBehavioral
	default:
		return PhaseClosing
	}
}

// Advance recomputes difficulty and then phase from the current question
// count. The phase is clamped so it never moves backward, and a session in
// the closing phase stays there.
func Advance(m *Memory) {
	m.Difficulty = DifficultyFor(m.QuestionCount)

	next := PhaseFor(m.QuestionCount, m.Difficulty)
	if phaseRank[next] > phaseRank[m.Phase] {
		m.Phase = next
	}
}
