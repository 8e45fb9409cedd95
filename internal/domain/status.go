package domain

type ProcessingStatus string

const (
	StatusIdle                 ProcessingStatus = "idle"
	StatusAnalyzing            ProcessingStatus = "analyzing"
	StatusGeneratingFlashcards ProcessingStatus = "generating_flashcards"
	StatusGeneratingQuiz       ProcessingStatus = "generating_quiz"
	StatusComplete             ProcessingStatus = "complete"
	StatusError                ProcessingStatus = "error"
)

// InProgress reports whether a pipeline run is between start and a terminal state.
func (s ProcessingStatus) InProgress() bool {
	switch s {
	case StatusAnalyzing, StatusGeneratingFlashcards, StatusGeneratingQuiz:
		return true
	default:
		return false
	}
}

func (s ProcessingStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}
