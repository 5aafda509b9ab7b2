package migrate

import (
	"time"

	"github.com/gamevault/gamevault-go/internal/models"
)

// GameRelations bundles everything embedded into one game document.
type GameRelations struct {
	Designers  []models.IDName
	Artists    []models.IDName
	Publishers []models.IDName
	Mechanics  []models.IDName
	Genres     []models.IDName
	Videos     []VideoWithLanguage
	ReviewIDs  []int
}

func orEmpty(items []models.IDName) []models.IDName {
	if items == nil {
		return []models.IDName{}
	}
	return items
}

func stamp(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// ToGameDocument nests a flat game row and its relations into the document
// shape. Average user rating and review totals start at zero; the
// orchestrator recomputes them once reviews are in place.
func ToGameDocument(game models.Game, rel GameRelations, now time.Time) models.GameDocument {
	videos := make([]models.VideoDoc, 0, len(rel.Videos))
	for _, v := range rel.Videos {
		videos = append(videos, models.VideoDoc{
			ID:       v.ID,
			Title:    v.Title,
			Category: v.Category,
			Link:     v.Link,
			Language: v.Language,
		})
	}
	reviewIDs := rel.ReviewIDs
	if reviewIDs == nil {
		reviewIDs = []int{}
	}

	return models.GameDocument{
		ID:            game.ID,
		Name:          game.Name,
		Slug:          game.Slug,
		YearPublished: game.YearPublished,
		Ratings: models.GameRatings{
			BggRating:        game.BggRating,
			DifficultyRating: game.DifficultyRating,
		},
		Description: game.Description,
		PlayingTime: game.PlayingTime,
		PlayerCount: models.PlayerCount{Min: game.MinPlayers, Max: game.MaxPlayers},
		MinimumAge:  game.MinimumAge,
		Images:      models.GameImages{Thumbnail: game.Thumbnail, Image: game.Image},
		Designers:   orEmpty(rel.Designers),
		Artists:     orEmpty(rel.Artists),
		Genres:      orEmpty(rel.Genres),
		Publishers:  orEmpty(rel.Publishers),
		Mechanics:   orEmpty(rel.Mechanics),
		Videos:      videos,
		ReviewIDs:   reviewIDs,
		Metadata:    models.DocMetadata{SourceID: game.ID, MigratedAt: stamp(now)},
	}
}

// ToUserDocument nests a user row with their friendships and messages. Both
// relation slices are the full tables; the transformer picks the rows
// involving this user and normalizes message direction to the document owner.
func ToUserDocument(user models.User, friendships []models.Friendship, messages []models.Message, now time.Time) models.UserDocument {
	friends := []models.FriendDoc{}
	for _, f := range friendships {
		switch user.ID {
		case f.UserID1:
			friends = append(friends, models.FriendDoc{UserID: f.UserID2, CreatedAt: formatTime(f.CreatedAt)})
		case f.UserID2:
			friends = append(friends, models.FriendDoc{UserID: f.UserID1, CreatedAt: formatTime(f.CreatedAt)})
		}
	}

	msgs := []models.MessageDoc{}
	for _, m := range messages {
		switch user.ID {
		case m.UserID1:
			msgs = append(msgs, models.MessageDoc{
				WithUserID: m.UserID2, Text: m.Text, SentAt: formatTime(m.SentAt), Direction: "sent",
			})
		case m.UserID2:
			msgs = append(msgs, models.MessageDoc{
				WithUserID: m.UserID1, Text: m.Text, SentAt: formatTime(m.SentAt), Direction: "received",
			})
		}
	}

	return models.UserDocument{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Username:    user.Username,
		Password:    user.Password,
		Email:       user.Email,
		DOB:         formatDate(user.DOB),
		IsAdmin:     user.IsAdmin,
		Friends:     friends,
		Messages:    msgs,
		Metadata:    models.DocMetadata{SourceID: user.ID, MigratedAt: stamp(now)},
	}
}

// ToReviewDocument flattens the joined author into a snapshot.
func ToReviewDocument(review models.ReviewWithUser, now time.Time) models.ReviewDocument {
	return models.ReviewDocument{
		ID:         review.ID,
		Title:      review.Title,
		Text:       review.Text,
		StarAmount: review.StarAmount,
		GameID:     review.GameID,
		User: models.ReviewUserSnapshot{
			ID:          review.UserID,
			DisplayName: review.DisplayName,
			Username:    review.Username,
		},
		Metadata: models.DocMetadata{SourceID: review.ID, MigratedAt: stamp(now)},
	}
}

// ToMatchupDocument embeds the matchup's moves, comments and spectators.
func ToMatchupDocument(matchup models.Matchup, moves []models.Move, comments []models.MatchupComment, spectators []int, now time.Time) models.MatchupDocument {
	moveDocs := make([]models.MoveDoc, 0, len(moves))
	for _, m := range moves {
		moveDocs = append(moveDocs, models.MoveDoc{
			ID: m.ID, Ply: m.Ply,
			StartX: m.StartX, StartY: m.StartY,
			EndX: m.EndX, EndY: m.EndY,
		})
	}
	commentDocs := make([]models.MatchupCommentDoc, 0, len(comments))
	for _, c := range comments {
		commentDocs = append(commentDocs, models.MatchupCommentDoc{
			UserID: c.UserID, Text: c.Text, CreatedAt: formatTime(c.CreatedAt),
		})
	}
	if spectators == nil {
		spectators = []int{}
	}

	return models.MatchupDocument{
		ID:              matchup.ID,
		GameID:          matchup.GameID,
		UserID1:         matchup.UserID1,
		UserID2:         matchup.UserID2,
		UserIDWinner:    matchup.UserIDWinner,
		CreatedByUserID: matchup.CreatedByUserID,
		StartTime:       formatTime(matchup.StartTime),
		EndTime:         formatTime(matchup.EndTime),
		CreatedAt:       formatTime(matchup.CreatedAt),
		IsPrivate:       matchup.IsPrivate,
		IsExpired:       matchup.IsExpired,
		Moves:           moveDocs,
		Comments:        commentDocs,
		Spectators:      spectators,
		Metadata:        models.DocMetadata{SourceID: matchup.ID, MigratedAt: stamp(now)},
	}
}
