package game

import "StockGuess/internal/model"

// CrossesPause reports whether a revealed bar halts playback for a guess.
func CrossesPause(bar model.Bar, pausePrice float64) bool {
	return bar.Close > pausePrice
}

// Evaluate scores a guess against the bar that follows the paused one.
//
// The point value depends only on whether the next close finishes above the
// target, not on which direction was guessed: a correct "down" call earns
// nothing. Points are credited only when the guess is correct.
func Evaluate(guess model.Direction, index int, next model.Bar, targetPrice float64) model.GuessOutcome {
	actual := model.Down
	pointsEarned := 0
	if next.Close > targetPrice {
		actual = model.Up
		pointsEarned = 1
	}
	out := model.GuessOutcome{
		Index:     index,
		Guess:     guess,
		Actual:    actual,
		IsCorrect: guess == actual,
		NextBar:   next,
	}
	if out.IsCorrect {
		out.Points = pointsEarned
	}
	return out
}
