// Package model defines the data models for the cinema bot.
package model

import "time"

// MovieInfo holds the full metadata of a single movie as shown to the user.
// Values are immutable once constructed by the catalog client; a MovieInfo
// produced by a successful detail lookup always carries a non-empty MovieID.
type MovieInfo struct {
	Title        string
	Overview     string
	Rating       float64
	PosterURL    string
	ReleaseYear  string
	MovieID      string
	ViewingLinks []string
	Genres       []string
	Countries    []string
	FilmLength   string
}

// TopFilm is a lightweight entry from the top-250 listing. It carries just
// enough to resolve the full record via a detail lookup.
type TopFilm struct {
	FilmID int64
	NameRu string
	NameEn string
}

// SearchRecord represents one row of the search history log.
type SearchRecord struct {
	ID         int64     `db:"id"`
	UserID     int64     `db:"user_id"`
	Query      string    `db:"query"`
	MovieID    string    `db:"movie_id"`
	MovieTitle string    `db:"movie_title"`
	CreatedAt  time.Time `db:"created_at"`
}

// MovieStat represents a per-user per-movie view counter.
type MovieStat struct {
	UserID     int64  `db:"user_id"`
	MovieID    string `db:"movie_id"`
	MovieTitle string `db:"movie_title"`
	TimesShown int64  `db:"times_shown"`
}
