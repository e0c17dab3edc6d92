package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/tick/alert"
)

// GetEntry returns the suppression entry for key. The expiry filter
// runs at read time because the TTL reaper only sweeps periodically.
func (s *Store) GetEntry(ctx context.Context, key string) (*alert.Entry, error) {
	filter := bson.M{
		"_id": key,
		"$or": []bson.M{
			{"expires_at": nil},
			{"expires_at": bson.M{"$gt": utcNow()}},
		},
	}

	var m alertModel
	err := s.db.Collection(colAlerts).FindOne(ctx, filter).Decode(&m)
	if err != nil {
		if errors.Is(err, mongod.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("tick/mongo: get entry: %w", err)
	}
	return fromAlertModel(&m), nil
}

// PutEntry upserts the suppression entry. A non-positive ttl stores it
// without expiry.
func (s *Store) PutEntry(ctx context.Context, e *alert.Entry, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := utcNow().Add(ttl)
		expiresAt = &t
	}

	m := toAlertModel(e, expiresAt)
	opts := options.Replace().SetUpsert(true)

	if _, err := s.db.Collection(colAlerts).ReplaceOne(ctx, bson.M{"_id": m.Key}, m, opts); err != nil {
		return fmt.Errorf("tick/mongo: put entry: %w", err)
	}
	return nil
}
