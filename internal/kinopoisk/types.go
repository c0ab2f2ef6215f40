package kinopoisk

import (
	"encoding/json"
	"strconv"
	"strings"
)

// searchResponse mirrors /api/v2.1/films/search-by-keyword.
type searchResponse struct {
	Films []searchFilm `json:"films"`
}

type searchFilm struct {
	FilmID int64 `json:"filmId"`
}

// filmResponse mirrors /api/v2.2/films/{id}.
// Several fields arrive as a number in some records and a string in others,
// hence the loose types.
type filmResponse struct {
	KinopoiskID  int64          `json:"kinopoiskId"`
	NameRu       string         `json:"nameRu"`
	NameEn       string         `json:"nameEn"`
	NameOriginal string         `json:"nameOriginal"`
	Description  string         `json:"description"`
	Rating       looseFloat     `json:"ratingKinopoisk"`
	PosterURL    string         `json:"posterUrl"`
	Year         looseString    `json:"year"`
	FilmLength   looseString    `json:"filmLength"`
	Genres       []genreEntry   `json:"genres"`
	Countries    []countryEntry `json:"countries"`
}

type genreEntry struct {
	Genre string `json:"genre"`
}

type countryEntry struct {
	Country string `json:"country"`
}

// topResponse mirrors /api/v2.2/films/top.
type topResponse struct {
	PagesCount int            `json:"pagesCount"`
	Films      []topFilmEntry `json:"films"`
}

type topFilmEntry struct {
	FilmID int64  `json:"filmId"`
	NameRu string `json:"nameRu"`
	NameEn string `json:"nameEn"`
}

// looseFloat decodes a JSON number, a quoted number, or null.
// Anything that fails to parse coerces to 0 instead of failing the decode.
type looseFloat float64

func (f *looseFloat) UnmarshalJSON(b []byte) error {
	*f = 0
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	*f = looseFloat(v)
	return nil
}

// looseString decodes a JSON string, a bare number, or null into a string.
type looseString string

func (ls *looseString) UnmarshalJSON(b []byte) error {
	*ls = ""
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return nil
		}
		*ls = looseString(v)
		return nil
	}
	*ls = looseString(s)
	return nil
}
