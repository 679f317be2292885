package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultCollection = "player_stats"

// Mongo keeps one document per player and updates it with atomic operators,
// so concurrent writers never lose an increment.
type Mongo struct {
	coll *mongo.Collection
}

func NewMongo(db *mongo.Database, collection string) *Mongo {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Mongo{coll: db.Collection(collection)}
}

// EnsureIndexes creates the unique user index.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (m *Mongo) Record(ctx context.Context, r Result) error {
	update, err := recordUpdate(r)
	if err != nil {
		return err
	}

	_, err = m.coll.UpdateOne(ctx,
		bson.M{"user_id": r.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("record stats for user %d: %w", r.UserID, err)
	}

	if r.Won {
		// best_win_streak needs the post-increment streak, which $max cannot see in the same update
		_, err = m.coll.UpdateOne(ctx,
			bson.M{"user_id": r.UserID},
			mongo.Pipeline{{{Key: "$set", Value: bson.M{
				"best_win_streak": bson.M{"$max": bson.A{"$best_win_streak", "$win_streak"}},
			}}}},
		)
		if err != nil {
			return fmt.Errorf("update best streak for user %d: %w", r.UserID, err)
		}
	}
	return nil
}

func recordUpdate(r Result) (bson.M, error) {
	now := time.Now()
	if !r.Won {
		return bson.M{
			"$inc":         bson.M{"games_played": 1},
			"$set":         bson.M{"win_streak": 0, "updated_at": now},
			"$setOnInsert": bson.M{"total_earnings": primitive.NewDecimal128(0, 0), "best_win": primitive.NewDecimal128(0, 0)},
		}, nil
	}

	earnings, err := primitive.ParseDecimal128(r.Earnings.String())
	if err != nil {
		return nil, fmt.Errorf("convert earnings %s: %w", r.Earnings, err)
	}
	return bson.M{
		"$inc": bson.M{
			"games_played":   1,
			"games_won":      1,
			"win_streak":     1,
			"total_earnings": earnings,
		},
		"$max": bson.M{"best_win": earnings},
		"$set": bson.M{"updated_at": now},
	}, nil
}

type statsDoc struct {
	UserID        int64                `bson:"user_id"`
	GamesPlayed   int64                `bson:"games_played"`
	GamesWon      int64                `bson:"games_won"`
	WinStreak     int64                `bson:"win_streak"`
	BestWinStreak int64                `bson:"best_win_streak"`
	TotalEarnings primitive.Decimal128 `bson:"total_earnings"`
	BestWin       primitive.Decimal128 `bson:"best_win"`
}

func (m *Mongo) Get(ctx context.Context, userID int64) (Stats, error) {
	var doc statsDoc
	err := m.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Stats{UserID: userID}, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("get stats for user %d: %w", userID, err)
	}

	return Stats{
		UserID:        doc.UserID,
		GamesPlayed:   doc.GamesPlayed,
		GamesWon:      doc.GamesWon,
		WinStreak:     doc.WinStreak,
		BestWinStreak: doc.BestWinStreak,
		TotalEarnings: fromDecimal128(doc.TotalEarnings),
		BestWin:       fromDecimal128(doc.BestWin),
	}, nil
}

func fromDecimal128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
