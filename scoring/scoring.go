package scoring

const (
	// FirstTryPoints is awarded for a correct answer on the first attempt.
	FirstTryPoints = 25
	// RetryPenalty is deducted for every attempt before the correct one.
	RetryPenalty = 5
	// MinimumPoints is the floor for a correct answer.
	MinimumPoints = 5
)

// Score returns the points for an attempt. Wrong answers earn nothing.
func Score(attemptNumber int, isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	if attemptNumber < 1 {
		attemptNumber = 1
	}

	points := FirstTryPoints - (attemptNumber-1)*RetryPenalty
	if points < MinimumPoints {
		return MinimumPoints
	}
	return points
}

// IsFirstTry reports whether a correct attempt qualifies for a badge.
func IsFirstTry(attemptNumber int, isCorrect bool) bool {
	return isCorrect && attemptNumber == 1
}
