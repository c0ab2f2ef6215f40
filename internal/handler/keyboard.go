// Package handler provides Telegram bot command and callback handlers.
package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"
)

// Callback payloads carried in the Telegram callback-data field. Stable
// tokens; changing them breaks buttons in existing chat history.
const (
	// MoviePrefix prefixes result-set navigation: movie_{index}.
	MoviePrefix = "movie_"

	// RandomCallback requests another random movie.
	RandomCallback = "random_movie"
)

// EncodeMovieIndex encodes a result-set index into a callback payload.
func EncodeMovieIndex(index int) string {
	return fmt.Sprintf("%s%d", MoviePrefix, index)
}

// ParseMovieIndex extracts the result-set index from a callback payload.
func ParseMovieIndex(data string) (int, bool) {
	if !strings.HasPrefix(data, MoviePrefix) {
		return 0, false
	}
	index, err := strconv.Atoi(strings.TrimPrefix(data, MoviePrefix))
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

// callbackData strips the \f prefix telebot v3 may add to callback data.
func callbackData(cb *tele.Callback) string {
	return strings.TrimPrefix(cb.Data, "\f")
}

// navKeyboard builds the previous/next navigation row for result card index
// out of total. Returns nil when there is nothing to navigate to.
func navKeyboard(index, total int) *tele.ReplyMarkup {
	var row []tele.InlineButton
	if index > 0 {
		row = append(row, tele.InlineButton{
			Text: "⬅️ Назад",
			Data: EncodeMovieIndex(index - 1),
		})
	}
	if index < total-1 {
		row = append(row, tele.InlineButton{
			Text: "Вперёд ➡️",
			Data: EncodeMovieIndex(index + 1),
		})
	}
	if len(row) == 0 {
		return nil
	}
	return &tele.ReplyMarkup{InlineKeyboard: [][]tele.InlineButton{row}}
}

// randomKeyboard builds the "one more random pick" row.
func randomKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{
		InlineKeyboard: [][]tele.InlineButton{
			{
				{
					Text: "🎲 Ещё фильм",
					Data: RandomCallback,
				},
			},
		},
	}
}
