package notifier

import (
	"fmt"
	"strings"

	"StockGuess/internal/model"
)

// Formatter renders game messages as Telegram HTML.
type Formatter struct {
	Symbol   string
	Currency string
}

func (f Formatter) money(v float64) string {
	return fmt.Sprintf("%s%.2f", f.Currency, v)
}

// GuessRequest announces a pause above the pause price.
func (f Formatter) GuessRequest(bar model.Bar, pausePrice float64) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("⏸ <b>%s</b> | %s\n\n", f.Symbol, bar.Day()))
	b.WriteString(fmt.Sprintf("Close %s is above %s.\n", f.money(bar.Close), f.money(pausePrice)))
	b.WriteString("Will the next close be above target? /up or /down")
	return b.String()
}

// GuessResult reports an evaluated guess and the running score.
func (f Formatter) GuessResult(out model.GuessOutcome, score model.Score, targetPrice float64) string {
	var b strings.Builder
	if out.IsCorrect {
		b.WriteString("✅ <b>Correct!</b>\n\n")
	} else {
		b.WriteString("❌ <b>Wrong</b>\n\n")
	}
	b.WriteString(fmt.Sprintf("You said %s, next close %s on %s (target %s)\n",
		strings.ToUpper(string(out.Guess)), f.money(out.NextBar.Close), out.NextBar.Day(), f.money(targetPrice)))
	if out.IsCorrect && out.Points > 0 {
		b.WriteString(fmt.Sprintf("+%d point\n", out.Points))
	}
	b.WriteString("\n")
	b.WriteString(f.Score(score))
	b.WriteString("\n/continue to keep playing")
	return b.String()
}

// GameOver summarises a finished game.
func (f Formatter) GameOver(score model.Score) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏁 <b>Game over</b> | %s\n\n", f.Symbol))
	b.WriteString(f.Score(score))
	b.WriteString("\n/start to play again")
	return b.String()
}

// Score renders the running score.
func (f Formatter) Score(s model.Score) string {
	return fmt.Sprintf("Score: %d/%d correct (%.0f%%) | Points: %d",
		s.CorrectGuesses, s.TotalGuesses, s.Accuracy()*100, s.Points)
}

// State renders a snapshot for /score.
func (f Formatter) State(snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", f.Symbol, snap.Mode))
	b.WriteString(fmt.Sprintf("Bar %d of %d\n", len(snap.Visible), snap.SeriesLength))
	if n := len(snap.Visible); n > 0 {
		last := snap.Visible[n-1]
		b.WriteString(fmt.Sprintf("Last close: %s on %s\n", f.money(last.Close), last.Day()))
	}
	b.WriteString(fmt.Sprintf("Pause %s | Target %s\n", f.money(snap.PausePrice), f.money(snap.TargetPrice)))
	b.WriteString(f.Score(snap.Score))
	return b.String()
}

// Help lists the chat commands.
func (f Formatter) Help() string {
	return "Commands:\n" +
		"• /start start or resume playback\n" +
		"• /pause pause playback\n" +
		"• /up /down guess the next close\n" +
		"• /continue resume after a guess\n" +
		"• /reset start over\n" +
		"• /score show the current game\n" +
		"• /sound toggle sound effects"
}
