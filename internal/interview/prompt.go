package interview

import (
	"fmt"
	"strings"
)

const transcriptWindow = 10

const personaBlock = `You are an experienced technical interviewer conducting a realistic mock interview.
Stay in character as a professional, encouraging interviewer. Assess answers
fairly, probe for depth, and keep the conversation moving.`

// difficultyInstructions selects the per-tier guidance for the model. An
// unrecognized tier falls back to the easy instruction.
var difficultyInstructions = map[Difficulty]string{
	DifficultyEasy:   "Ask foundational, approachable questions. Build the candidate's confidence before going deeper.",
	DifficultyMedium: "Ask questions that require applied knowledge and concrete examples from the candidate's experience.",
	DifficultyHard:   "Ask challenging questions about trade-offs, edge cases, and system-level reasoning. Push for specifics.",
}

// ComposePrompt renders the session state and the candidate's latest
// utterance into a single prompt for the generation service. It is
// deterministic given its inputs: no randomness and no time reads beyond
// what the memory already holds.
func ComposePrompt(m *Memory, utterance string) string {
	var b strings.Builder

	b.WriteString(personaBlock)
	b.WriteString("\n\n")

	if !m.Profile.Empty() {
		b.WriteString("Candidate profile:\n")
		if m.Profile.Role != "" {
			fmt.Fprintf(&b, "- Target role: %s\n", m.Profile.Role)
		}
		if m.Profile.Experience != "" {
			fmt.Fprintf(&b, "- Experience level: %s\n", m.Profile.Experience)
		}
		if m.Profile.Company != "" {
			fmt.Fprintf(&b, "- Target company: %s\n", m.Profile.Company)
		}
		if m.Profile.Focus != "" {
			fmt.Fprintf(&b, "- Focus area: %s\n", m.Profile.Focus)
		}
		if m.Profile.Industry != "" {
			fmt.Fprintf(&b, "- Industry: %s\n", m.Profile.Industry)
		}
		if m.Profile.Skills != "" {
			fmt.Fprintf(&b, "- Skills: %s\n", m.Profile.Skills)
		}
		b.WriteString("\n")
	}

	instruction, ok := difficultyInstructions[m.Difficulty]
	if !ok {
		instruction = difficultyInstructions[DifficultyEasy]
	}
	fmt.Fprintf(&b, "Difficulty guidance: %s\n\n", instruction)

	if recent := m.RecentWindow(transcriptWindow); len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, turn := range recent {
			fmt.Fprintf(&b, "%s: %s\n", speakerLabel(turn.Speaker), turn.Text)
		}
		b.WriteString("\n")
	}

	topics := "none yet"
	if ts := m.Topics(); len(ts) > 0 {
		topics = strings.Join(ts, ", ")
	}
	fmt.Fprintf(&b, "Current phase: %s\nQuestions asked: %d\nTopics covered: %s\n\n", m.Phase, m.QuestionCount, topics)

	fmt.Fprintf(&b, "Candidate's latest response: %s\n\n", utterance)

	if m.QuestionCount == 0 {
		b.WriteString("Give a warm introduction")
		if m.Profile.Role != "" {
			fmt.Fprintf(&b, " for the %s position", m.Profile.Role)
		}
		if m.Profile.Company != "" {
			fmt.Fprintf(&b, " at %s", m.Profile.Company)
		}
		b.WriteString(" and ask the candidate to introduce themselves.")
	} else {
		fmt.Fprintf(&b, "Continue the interview naturally at the %s phase and %s difficulty.", m.Phase, m.Difficulty)
	}
	b.WriteString(" Keep your response to 2-3 sentences and end with a question.")

	return b.String()
}

func speakerLabel(s Speaker) string {
	if s == SpeakerInterviewer {
		return "Interviewer"
	}
	return "Candidate"
}
