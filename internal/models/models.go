package models

import (
	"time"
)

// IDName is the minimal shape shared by every catalog sub-entity when it is
// attached to a game (designer, artist, publisher, mechanic, genre).
type IDName struct {
	ID   int    `json:"id" db:"id" bson:"id"`
	Name string `json:"name" db:"name" bson:"name"`
}

// Game is the catalog's central entity. The integer ID is reused verbatim as
// the relational primary key, the Mongo _id and the Neo4j node id property,
// which is what keeps a record addressable across backends.
type Game struct {
	ID               int      `json:"id" db:"id"`
	Name             string   `json:"name" db:"name"`
	Slug             *string  `json:"slug" db:"slug"`
	YearPublished    *string  `json:"year_published" db:"year_published"`
	BggRating        *float64 `json:"bgg_rating" db:"bgg_rating"`
	DifficultyRating *float64 `json:"difficulty_rating" db:"difficulty_rating"`
	Description      *string  `json:"description" db:"description"`
	PlayingTime      *int     `json:"playing_time" db:"playing_time"`
	Available        *bool    `json:"available" db:"available"`
	MinPlayers       *int     `json:"min_players" db:"min_players"`
	MaxPlayers       *int     `json:"max_players" db:"max_players"`
	MinimumAge       *int     `json:"minimum_age" db:"minimum_age"`
	Image            *string  `json:"image" db:"image"`
	Thumbnail        *string  `json:"thumbnail" db:"thumbnail"`
}

// GameDetail is a game plus its eagerly loaded many-to-many relations.
type GameDetail struct {
	Game
	Designers  []IDName `json:"designers"`
	Artists    []IDName `json:"artists"`
	Publishers []IDName `json:"publishers"`
	Mechanics  []IDName `json:"mechanics"`
	Genres     []IDName `json:"genres"`
}

// Person covers designers and artists, which share a shape.
type Person struct {
	ID   int        `json:"id" db:"id"`
	Name string     `json:"name" db:"name"`
	DOB  *time.Time `json:"dob" db:"dob"`
}

// NamedEntity covers publishers, mechanics and genres.
type NamedEntity struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type User struct {
	ID          int        `json:"id" db:"id"`
	DisplayName string     `json:"display_name" db:"display_name"`
	Username    string     `json:"username" db:"username"`
	Password    string     `json:"-" db:"password"`
	Email       string     `json:"email" db:"email"`
	DOB         *time.Time `json:"dob" db:"dob"`
	IsAdmin     bool       `json:"is_admin" db:"is_admin"`
}

// Review always references exactly one user and one game.
type Review struct {
	ID         int    `json:"id" db:"id"`
	Title      string `json:"title" db:"title"`
	Text       string `json:"text" db:"text"`
	StarAmount int    `json:"star_amount" db:"star_amount"`
	UserID     int    `json:"user_id" db:"user_id"`
	GameID     int    `json:"game_id" db:"game_id"`
}

// ReviewWithUser is the read-side join used for game detail pages and for
// the document migration, which denormalizes the author snapshot.
type ReviewWithUser struct {
	Review
	DisplayName string `json:"display_name" db:"display_name"`
	Username    string `json:"username" db:"username"`
}

type Video struct {
	ID         int     `json:"id" db:"id"`
	Title      string  `json:"title" db:"title"`
	Category   *string `json:"category" db:"category"`
	Link       string  `json:"link" db:"link"`
	GameID     int     `json:"game_id" db:"game_id"`
	LanguageID *int    `json:"language_id" db:"language_id"`
}

type Language struct {
	ID       int    `json:"id" db:"id"`
	Language string `json:"language" db:"language"`
}

type Matchup struct {
	ID              int        `json:"id" db:"id"`
	GameID          int        `json:"game_id" db:"game_id"`
	UserID1         int        `json:"user_id_1" db:"user_id_1"`
	UserID2         int        `json:"user_id_2" db:"user_id_2"`
	UserIDWinner    *int       `json:"user_id_winner" db:"user_id_winner"`
	CreatedByUserID *int       `json:"created_by_user_id" db:"created_by_user_id"`
	StartTime       *time.Time `json:"start_time" db:"start_time"`
	EndTime         *time.Time `json:"end_time" db:"end_time"`
	CreatedAt       *time.Time `json:"created_at" db:"created_at"`
	IsPrivate       bool       `json:"is_private" db:"is_private"`
	IsExpired       bool       `json:"is_expired" db:"is_expired"`
}

// Move is one ply of a matchup. End coordinates are nil while the move is
// still in progress.
type Move struct {
	ID        int  `json:"id" db:"id"`
	MatchupID int  `json:"matchup_id" db:"matchup_id"`
	Ply       int  `json:"ply" db:"ply"`
	StartX    int  `json:"start_x" db:"start_x"`
	StartY    int  `json:"start_y" db:"start_y"`
	EndX      *int `json:"end_x" db:"end_x"`
	EndY      *int `json:"end_y" db:"end_y"`
}

type MatchupComment struct {
	ID        int        `json:"id" db:"id"`
	MatchupID int        `json:"matchup_id" db:"matchup_id"`
	UserID    int        `json:"user_id" db:"user_id"`
	Text      string     `json:"text" db:"text"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

type Spectator struct {
	MatchupID int `json:"matchup_id" db:"matchup_id"`
	UserID    int `json:"user_id" db:"user_id"`
}

type Friendship struct {
	UserID1   int        `json:"user_id_1" db:"user_id_1"`
	UserID2   int        `json:"user_id_2" db:"user_id_2"`
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
}

type Message struct {
	ID      int        `json:"id" db:"id"`
	UserID1 int        `json:"user_id_1" db:"user_id_1"`
	UserID2 int        `json:"user_id_2" db:"user_id_2"`
	Text    string     `json:"text" db:"text"`
	SentAt  *time.Time `json:"sent_at" db:"sent_at"`
}

// GamePair is a join-table row (game_id plus the related entity's id).
type GamePair struct {
	GameID    int `json:"game_id" db:"game_id"`
	RelatedID int `json:"related_id" db:"related_id"`
}
