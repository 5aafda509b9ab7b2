package models

// Document shapes for the MongoDB backend. The games collection is the
// single source of truth there: designers, artists, publishers, mechanics
// and genres exist only as embedded arrays inside each game document.

type GameRatings struct {
	BggRating         *float64 `bson:"bgg_rating"`
	DifficultyRating  *float64 `bson:"difficulty_rating"`
	AverageUserRating float64  `bson:"average_user_rating"`
	TotalReviews      int      `bson:"total_reviews"`
}

type PlayerCount struct {
	Min *int `bson:"min"`
	Max *int `bson:"max"`
}

type GameImages struct {
	Thumbnail *string `bson:"thumbnail"`
	Image     *string `bson:"image"`
}

// DocMetadata is migration provenance, not domain data.
type DocMetadata struct {
	SourceID   int    `bson:"source_id"`
	MigratedAt string `bson:"migrated_at"`
}

type VideoDoc struct {
	ID       int     `bson:"id"`
	Title    string  `bson:"title"`
	Category *string `bson:"category"`
	Link     string  `bson:"link"`
	Language *string `bson:"language"`
}

type GameDocument struct {
	ID            int         `bson:"_id"`
	Name          string      `bson:"name"`
	Slug          *string     `bson:"slug"`
	YearPublished *string     `bson:"year_published"`
	Ratings       GameRatings `bson:"ratings"`
	Description   *string     `bson:"description"`
	PlayingTime   *int        `bson:"playing_time"`
	PlayerCount   PlayerCount `bson:"player_count"`
	MinimumAge    *int        `bson:"minimum_age"`
	Images        GameImages  `bson:"images"`
	Designers     []IDName    `bson:"designers"`
	Artists       []IDName    `bson:"artists"`
	Genres        []IDName    `bson:"genres"`
	Publishers    []IDName    `bson:"publishers"`
	Mechanics     []IDName    `bson:"mechanics"`
	Videos        []VideoDoc  `bson:"videos"`
	ReviewIDs     []int       `bson:"review_ids"`
	Metadata      DocMetadata `bson:"metadata"`
}

// ReviewUserSnapshot denormalizes the author onto the review document so the
// read path needs no join. It is a snapshot taken at write/migration time.
type ReviewUserSnapshot struct {
	ID          int    `bson:"id"`
	DisplayName string `bson:"display_name"`
	Username    string `bson:"username"`
}

type ReviewDocument struct {
	ID         int                `bson:"_id"`
	Title      string             `bson:"title"`
	Text       string             `bson:"text"`
	StarAmount int                `bson:"star_amount"`
	GameID     int                `bson:"game_id"`
	User       ReviewUserSnapshot `bson:"user"`
	Metadata   DocMetadata        `bson:"metadata"`
}

type FriendDoc struct {
	UserID    int     `bson:"user_id"`
	CreatedAt *string `bson:"created_at"`
}

type MessageDoc struct {
	WithUserID int     `bson:"with_user_id"`
	Text       string  `bson:"text"`
	SentAt     *string `bson:"sent_at"`
	Direction  string  `bson:"direction"` // "sent" or "received"
}

type UserDocument struct {
	ID          int          `bson:"_id"`
	DisplayName string       `bson:"display_name"`
	Username    string       `bson:"username"`
	Password    string       `bson:"password"`
	Email       string       `bson:"email"`
	DOB         *string      `bson:"dob"`
	IsAdmin     bool         `bson:"is_admin"`
	Friends     []FriendDoc  `bson:"friends"`
	Messages    []MessageDoc `bson:"messages"`
	Metadata    DocMetadata  `bson:"metadata"`
}

type MoveDoc struct {
	ID     int  `bson:"id"`
	Ply    int  `bson:"ply"`
	StartX int  `bson:"start_x"`
	StartY int  `bson:"start_y"`
	EndX   *int `bson:"end_x"`
	EndY   *int `bson:"end_y"`
}

type MatchupCommentDoc struct {
	UserID    int     `bson:"user_id"`
	Text      string  `bson:"text"`
	CreatedAt *string `bson:"created_at"`
}

type MatchupDocument struct {
	ID              int                 `bson:"_id"`
	GameID          int                 `bson:"game_id"`
	UserID1         int                 `bson:"user_id_1"`
	UserID2         int                 `bson:"user_id_2"`
	UserIDWinner    *int                `bson:"user_id_winner"`
	CreatedByUserID *int                `bson:"created_by_user_id"`
	StartTime       *string             `bson:"start_time"`
	EndTime         *string             `bson:"end_time"`
	CreatedAt       *string             `bson:"created_at"`
	IsPrivate       bool                `bson:"is_private"`
	IsExpired       bool                `bson:"is_expired"`
	Moves           []MoveDoc           `bson:"moves"`
	Comments        []MatchupCommentDoc `bson:"comments"`
	Spectators      []int               `bson:"spectators"`
	Metadata        DocMetadata         `bson:"metadata"`
}
