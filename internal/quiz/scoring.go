package quiz

// CorrectAnswerPoints is the flat award for a correct answer.
const CorrectAnswerPoints = 10

type Outcome string

const (
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
	OutcomeNoAnswer  Outcome = "no_answer"
)

// Score returns whether selected is the correct option and the points it earns.
func Score(question Question, selected int) (bool, int) {
	if selected == question.CorrectOption {
		return true, CorrectAnswerPoints
	}
	return false, 0
}

// ValidOption reports whether selected indexes one of the question's options.
func ValidOption(question Question, selected int) bool {
	return selected >= 0 && selected < len(question.Options)
}

// OutcomeOf classifies a participant's answer to a question. A nil answer is
// a missing submission, not a wrong one.
func OutcomeOf(answer *Answer) Outcome {
	switch {
	case answer == nil:
		return OutcomeNoAnswer
	case answer.IsCorrect:
		return OutcomeCorrect
	default:
		return OutcomeIncorrect
	}
}

// OptionCounts tallies answers to questionID per option.
func OptionCounts(question Question, answers []Answer) []int {
	counts := make([]int, len(question.Options))
	for _, answer := range answers {
		if answer.QuestionID != question.ID {
			continue
		}
		if answer.SelectedOption >= 0 && answer.SelectedOption < len(counts) {
			counts[answer.SelectedOption]++
		}
	}
	return counts
}
