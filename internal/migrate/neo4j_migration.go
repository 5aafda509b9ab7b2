package migrate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-go/internal/database"
	"github.com/gamevault/gamevault-go/internal/models"
	"github.com/gamevault/gamevault-go/internal/repository/neorepo"
)

// Neo4jMigration copies the relational store into the graph: uniqueness
// constraints, then parent nodes, games, association edges, reviews, videos,
// matchups with their moves and spectators, friendships and messages.
type Neo4jMigration struct {
	source *Source
	client *database.Neo4jClient
	logger *logrus.Logger
	now    func() time.Time
}

func NewNeo4jMigration(source *Source, client *database.Neo4jClient, logger *logrus.Logger) *Neo4jMigration {
	return &Neo4jMigration{
		source: source,
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// constraintLabels get a best-effort id uniqueness constraint each. Failures
// are logged and skipped; older server editions reject the syntax.
var constraintLabels = []string{
	"Game", "User", "Designer", "Artist", "Publisher",
	"Mechanic", "Genre", "Language", "Review", "Video", "Matchup", "Move",
}

func (m *Neo4jMigration) Run(ctx context.Context) (*Report, error) {
	report := NewReport()
	defer report.Finish()

	m.logger.WithField("run_id", report.RunID).Info("graph migration starting")

	m.ensureConstraints(ctx)

	if err := m.migrateParents(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateGames(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateReviews(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateVideos(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateMatchups(ctx, report); err != nil {
		return report, err
	}
	if err := m.migrateSocial(ctx, report); err != nil {
		return report, err
	}

	m.logger.WithFields(logrus.Fields{
		"run_id":   report.RunID,
		"counts":   report.Counts,
		"failures": len(report.Failures),
	}).Info("graph migration finished")
	return report, nil
}

func (m *Neo4jMigration) ensureConstraints(ctx context.Context) {
	for _, label := range constraintLabels {
		query := `CREATE CONSTRAINT IF NOT EXISTS FOR (n:` + label + `) REQUIRE n.id IS UNIQUE`
		if _, err := m.client.Run(ctx, query, nil); err != nil {
			m.logger.WithError(err).WithField("label", label).Warn("constraint creation skipped")
		}
	}
}

func (m *Neo4jMigration) run(ctx context.Context, report *Report, entity string, id int, stmt CypherStatement) bool {
	if _, err := m.client.Run(ctx, stmt.Query, stmt.Params); err != nil {
		m.logger.WithError(err).WithFields(logrus.Fields{"entity": entity, "id": id}).Warn("statement failed")
		report.Fail(entity, id, err)
		return false
	}
	return true
}

// migrateParents creates every node kind games link to, so edge creation
// later always finds its endpoints.
func (m *Neo4jMigration) migrateParents(ctx context.Context, report *Report) error {
	now := m.now()

	users, err := m.source.Users(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		if m.run(ctx, report, "user", user.ID, UserNode(user, now)) {
			report.Add("users", 1)
		}
	}

	designers, err := m.source.Designers(ctx)
	if err != nil {
		return err
	}
	if len(designers) > 0 && m.run(ctx, report, "designers", 0, PersonNodes("Designer", designers, now)) {
		report.Add("designers", len(designers))
	}

	artists, err := m.source.Artists(ctx)
	if err != nil {
		return err
	}
	if len(artists) > 0 && m.run(ctx, report, "artists", 0, PersonNodes("Artist", artists, now)) {
		report.Add("artists", len(artists))
	}

	for label, fetch := range map[string]func(context.Context) ([]models.NamedEntity, error){
		"Publisher": m.source.Publishers,
		"Mechanic":  m.source.Mechanics,
		"Genre":     m.source.Genres,
	} {
		entities, err := fetch(ctx)
		if err != nil {
			return err
		}
		if len(entities) > 0 && m.run(ctx, report, label, 0, NamedNodes(label, entities, now)) {
			report.Add(label, len(entities))
		}
	}

	languages, err := m.source.Languages(ctx)
	if err != nil {
		return err
	}
	if len(languages) > 0 && m.run(ctx, report, "languages", 0, LanguageNodes(languages, now)) {
		report.Add("languages", len(languages))
	}
	return nil
}

func (m *Neo4jMigration) migrateGames(ctx context.Context, report *Report) error {
	games, err := m.source.Games(ctx)
	if err != nil {
		return err
	}

	relationEdges := []struct {
		kind    string
		relType string
		label   string
	}{
		{"designers", neorepo.RelDesignedBy, "Designer"},
		{"artists", neorepo.RelArtBy, "Artist"},
		{"publishers", neorepo.RelPublishedBy, "Publisher"},
		{"mechanics", neorepo.RelUsesMechanic, "Mechanic"},
		{"genres", neorepo.RelInGenre, "Genre"},
	}
	relations := map[string]map[int][]models.IDName{}
	for _, edge := range relationEdges {
		byGame, err := m.source.RelationsByGame(ctx, edge.kind)
		if err != nil {
			return err
		}
		relations[edge.kind] = byGame
	}

	now := m.now()
	for _, game := range games {
		if !m.run(ctx, report, "game", game.ID, GameNode(game, now)) {
			continue
		}
		report.Add("games", 1)

		for _, edge := range relationEdges {
			items := relations[edge.kind][game.ID]
			if len(items) == 0 {
				continue
			}
			if m.run(ctx, report, "game_"+edge.kind, game.ID, GameRelationEdges(game.ID, edge.relType, edge.label, items)) {
				report.Add("game_"+edge.kind, len(items))
			}
		}
	}
	return nil
}

func (m *Neo4jMigration) migrateReviews(ctx context.Context, report *Report) error {
	now := m.now()
	for offset := 0; ; offset += ReviewBatchSize {
		batch, err := m.source.ReviewsBatch(ctx, offset, ReviewBatchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			break
		}
		for _, review := range batch {
			if m.run(ctx, report, "review", review.ID, ReviewNode(review, now)) {
				report.Add("reviews", 1)
			}
		}
		if len(batch) < ReviewBatchSize {
			break
		}
	}
	return nil
}

func (m *Neo4jMigration) migrateVideos(ctx context.Context, report *Report) error {
	videos, err := m.source.Videos(ctx)
	if err != nil {
		return err
	}
	now := m.now()
	for _, video := range videos {
		if m.run(ctx, report, "video", video.ID, VideoNode(video, now)) {
			report.Add("videos", 1)
		}
	}
	return nil
}

func (m *Neo4jMigration) migrateMatchups(ctx context.Context, report *Report) error {
	matchups, err := m.source.Matchups(ctx)
	if err != nil {
		return err
	}
	moves, err := m.source.MovesByMatchup(ctx)
	if err != nil {
		return err
	}
	spectators, err := m.source.SpectatorsByMatchup(ctx)
	if err != nil {
		return err
	}

	now := m.now()
	for _, matchup := range matchups {
		failed := false
		for _, stmt := range MatchupStatements(matchup, moves[matchup.ID], spectators[matchup.ID], now) {
			if !m.run(ctx, report, "matchup", matchup.ID, stmt) {
				failed = true
				break
			}
		}
		if !failed {
			report.Add("matchups", 1)
			report.Add("moves", len(moves[matchup.ID]))
		}
	}
	return nil
}

func (m *Neo4jMigration) migrateSocial(ctx context.Context, report *Report) error {
	friendships, err := m.source.Friendships(ctx)
	if err != nil {
		return err
	}
	for _, friendship := range friendships {
		if m.run(ctx, report, "friendship", friendship.UserID1, FriendshipEdge(friendship)) {
			report.Add("friendships", 1)
		}
	}

	messages, err := m.source.Messages(ctx)
	if err != nil {
		return err
	}
	for _, message := range messages {
		if m.run(ctx, report, "message", message.ID, MessageEdge(message)) {
			report.Add("messages", 1)
		}
	}
	return nil
}
