package domain

type QuizQuestion struct {
	ID                 string   `json:"id"`
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// Unanswered marks a question the learner skipped.
const Unanswered = -1

type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Answer     int    `json:"answer"`
	Correct    bool   `json:"correct"`
}

type QuizResult struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Results []QuestionResult `json:"results"`
}

// ScoreQuiz grades answers positionally against quiz. Missing trailing answers
// count as Unanswered; extra answers are ignored.
func ScoreQuiz(quiz []QuizQuestion, answers []int) QuizResult {
	res := QuizResult{Total: len(quiz), Results: make([]QuestionResult, 0, len(quiz))}
	for i, q := range quiz {
		ans := Unanswered
		if i < len(answers) {
			ans = answers[i]
		}
		ok := ans != Unanswered && ans == q.CorrectAnswerIndex
		if ok {
			res.Score++
		}
		res.Results = append(res.Results, QuestionResult{QuestionID: q.ID, Answer: ans, Correct: ok})
	}
	return res
}
