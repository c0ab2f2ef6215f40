package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinema-bot/internal/model"
)

func TestAnswerCodec(t *testing.T) {
	data := EncodeAnswer("447301")
	assert.Equal(t, "game_447301", data)

	id, ok := DecodeAnswer(data)
	require.True(t, ok)
	assert.Equal(t, "447301", id)
}

func TestDecodeAnswer_Invalid(t *testing.T) {
	tests := []string{"", "game_", "movie_3", "next_question"}
	for _, data := range tests {
		_, ok := DecodeAnswer(data)
		assert.False(t, ok, data)
	}
}

func TestBuildOptions(t *testing.T) {
	kb := NewKeyboardBuilder()
	q := &Question{
		Options: []Option{
			{MovieID: "1", Title: "Начало"},
			{MovieID: "2", Title: "Матрица"},
			{MovieID: "3", Title: "Память"},
			{MovieID: "4", Title: "Помни"},
		},
	}

	markup := kb.BuildOptions(q)
	require.Len(t, markup.InlineKeyboard, 4)
	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, q.Options[i].Title, row[0].Text)
		assert.Equal(t, EncodeAnswer(q.Options[i].MovieID), row[0].Data)
	}
}

func TestBuildNext(t *testing.T) {
	kb := NewKeyboardBuilder()

	markup := kb.BuildNext(false)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, NextQuestionCallback, markup.InlineKeyboard[0][0].Data)

	finished := kb.BuildNext(true)
	assert.Equal(t, NextQuestionCallback, finished.InlineKeyboard[0][0].Data)
	assert.NotEqual(t, markup.InlineKeyboard[0][0].Text, finished.InlineKeyboard[0][0].Text)
}

func TestBuildNewGame(t *testing.T) {
	markup := NewKeyboardBuilder().BuildNewGame()
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, NewGameCallback, markup.InlineKeyboard[0][0].Data)
}

func TestFormatVerdict(t *testing.T) {
	correct := FormatVerdict(&Verdict{Correct: true, Score: 2, Total: 3})
	assert.Contains(t, correct, "✅")
	assert.Contains(t, correct, "2/3")

	wrong := FormatVerdict(&Verdict{
		Correct: false,
		Answer:  model.MovieInfo{Title: "Начало"},
		Score:   1,
		Total:   3,
	})
	assert.Contains(t, wrong, "❌")
	assert.Contains(t, wrong, "Начало")
	assert.Contains(t, wrong, "1/3")
}

func TestFormatQuestion(t *testing.T) {
	text := FormatQuestion(&Question{Ordinal: 2, Total: 5, Clue: "Герои крадут идеи из снов."})
	assert.Contains(t, text, "2/5")
	assert.Contains(t, text, "Герои крадут идеи из снов.")
}

func TestFormatSummary(t *testing.T) {
	text := FormatSummary(&Summary{Score: 4, Total: 5, Percent: 80, Message: "🎉 Отличный результат!"})
	assert.Contains(t, text, "4/5")
	assert.Contains(t, text, "80%")
	assert.Contains(t, text, "Отличный")
}
