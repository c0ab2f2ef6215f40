package quiz

import (
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// Callback payloads carried in the Telegram callback-data field. These are
// stable tokens; changing them breaks buttons in existing chat history.
const (
	// AnswerPrefix prefixes an answer selection: game_{movieId}.
	AnswerPrefix = "game_"

	// NextQuestionCallback advances to the next question or the summary.
	NextQuestionCallback = "next_question"

	// NewGameCallback starts a fresh game.
	NewGameCallback = "new_game"
)

// EncodeAnswer encodes a movie id into an answer callback payload.
func EncodeAnswer(movieID string) string {
	return AnswerPrefix + movieID
}

// DecodeAnswer extracts the movie id from an answer callback payload.
func DecodeAnswer(data string) (string, bool) {
	if !strings.HasPrefix(data, AnswerPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(data, AnswerPrefix)
	if id == "" {
		return "", false
	}
	return id, true
}

// KeyboardBuilder builds Telegram inline keyboards for the quiz.
type KeyboardBuilder struct{}

// NewKeyboardBuilder creates a new KeyboardBuilder instance.
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{}
}

// BuildOptions builds the answer keyboard, one option per row.
func (kb *KeyboardBuilder) BuildOptions(q *Question) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	rows := make([][]tele.InlineButton, 0, len(q.Options))
	for _, opt := range q.Options {
		rows = append(rows, []tele.InlineButton{
			{
				Text: opt.Title,
				Data: EncodeAnswer(opt.MovieID),
			},
		})
	}

	markup.InlineKeyboard = rows
	return markup
}

// BuildNext builds the advance keyboard shown after an answer is judged.
func (kb *KeyboardBuilder) BuildNext(finished bool) *tele.ReplyMarkup {
	text := "➡️ Следующий вопрос"
	if finished {
		text = "🏁 Показать результат"
	}

	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{
					Text: text,
					Data: NextQuestionCallback,
				},
			},
		},
	}
}

// BuildNewGame builds the restart keyboard shown with the final summary.
func (kb *KeyboardBuilder) BuildNewGame() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{
					Text: "🎮 Новая игра",
					Data: NewGameCallback,
				},
			},
		},
	}
}

// FormatQuestion renders a question as message text.
func FormatQuestion(q *Question) string {
	return fmt.Sprintf("🎬 Вопрос %d/%d\n\nУгадайте фильм по описанию:\n\n%s", q.Ordinal, q.Total, q.Clue)
}

// FormatVerdict renders the correct/incorrect feedback with the running score.
func FormatVerdict(v *Verdict) string {
	var b strings.Builder
	if v.Correct {
		b.WriteString("✅ Верно!\n\n")
	} else {
		fmt.Fprintf(&b, "❌ Неверно. Это был фильм «%s».\n\n", v.Answer.Title)
	}
	fmt.Fprintf(&b, "Счёт: %d/%d", v.Score, v.Total)
	return b.String()
}

// FormatSummary renders the final score report.
func FormatSummary(s *Summary) string {
	return fmt.Sprintf("🏁 Игра окончена!\n\nВаш результат: %d/%d (%d%%)\n\n%s", s.Score, s.Total, s.Percent, s.Message)
}
