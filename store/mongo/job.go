package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/tick"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// CreateJob persists a new job.
func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	cp := j.Clone()
	if cp.CreatedAt.IsZero() {
		cp.Touch(utcNow())
	}

	m, err := toJobModel(cp)
	if err != nil {
		return err
	}

	if _, err := s.db.Collection(colJobs).InsertOne(ctx, m); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return tick.ErrJobExists
		}
		return fmt.Errorf("tick/mongo: create job: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(ctx context.Context, jobID id.JobID) (*job.Job, error) {
	var m jobModel
	err := s.db.Collection(colJobs).FindOne(ctx, bson.M{"_id": jobID.String()}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongod.ErrNoDocuments) {
			return nil, tick.ErrJobNotFound
		}
		return nil, fmt.Errorf("tick/mongo: get job: %w", err)
	}
	return fromJobModel(&m)
}

// ListJobs returns jobs matching the filter, newest first.
func (s *Store) ListJobs(ctx context.Context, f job.Filter) ([]*job.Job, error) {
	filter := bson.M{}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.TenantID != "" {
		filter["tenant_id"] = f.TenantID
	}
	if f.FunctionName != "" {
		filter["function_name"] = f.FunctionName
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		findOpts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		findOpts.SetSkip(int64(f.Offset))
	}

	cur, err := s.db.Collection(colJobs).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("tick/mongo: list jobs: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // read-only cursor

	return collectJobs(ctx, cur)
}

// ListDueJobs returns active jobs whose next run is unset or not after
// now. BSON null sorts before dates, so ascending next_run puts the
// never-run jobs first.
func (s *Store) ListDueJobs(ctx context.Context, now time.Time) ([]*job.Job, error) {
	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"next_run": nil},
			{"next_run": bson.M{"$lte": now}},
		},
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "next_run", Value: 1}})

	cur, err := s.db.Collection(colJobs).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("tick/mongo: list due jobs: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck // read-only cursor

	return collectJobs(ctx, cur)
}

// UpdateJob persists changes to an existing job. The lease fields are
// deliberately excluded from the $set; ClaimJob and ReleaseJob own
// them.
func (s *Store) UpdateJob(ctx context.Context, j *job.Job) error {
	meta, err := metadataToDoc(j.Metadata)
	if err != nil {
		return fmt.Errorf("tick/mongo: encode metadata: %w", err)
	}

	update := bson.M{"$set": bson.M{
		"tenant_id":     j.TenantID,
		"name":          j.Name,
		"schedule":      j.Schedule,
		"function_name": j.FunctionName,
		"is_active":     j.Active,
		"next_run":      j.NextRunAt,
		"last_run":      j.LastRunAt,
		"metadata":      meta,
		"updated_at":    utcNow(),
	}}

	res, err := s.db.Collection(colJobs).UpdateOne(ctx, bson.M{"_id": j.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("tick/mongo: update job: %w", err)
	}
	if res.MatchedCount == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job by ID.
func (s *Store) DeleteJob(ctx context.Context, jobID id.JobID) error {
	res, err := s.db.Collection(colJobs).DeleteOne(ctx, bson.M{"_id": jobID.String()})
	if err != nil {
		return fmt.Errorf("tick/mongo: delete job: %w", err)
	}
	if res.DeletedCount == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// ClaimJob acquires an execution lease with an atomic FindOneAndUpdate
// so concurrent schedulers cannot both win.
func (s *Store) ClaimJob(ctx context.Context, jobID id.JobID, owner id.WorkerID, ttl time.Duration) (bool, error) {
	t := utcNow()
	wID := owner.String()

	filter := bson.M{
		"_id": jobID.String(),
		"$or": []bson.M{
			{"claimed_by": ""},
			{"claimed_by": wID},
			{"claimed_until": nil},
			{"claimed_until": bson.M{"$lte": t}},
		},
	}
	update := bson.M{"$set": bson.M{
		"claimed_by":    wID,
		"claimed_until": t.Add(ttl),
	}}

	err := s.db.Collection(colJobs).FindOneAndUpdate(ctx, filter, update).Err()
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, mongod.ErrNoDocuments) {
		return false, fmt.Errorf("tick/mongo: claim job: %w", err)
	}

	// Blocked or missing; disambiguate for the caller.
	n, cErr := s.db.Collection(colJobs).CountDocuments(ctx, bson.M{"_id": jobID.String()})
	if cErr != nil {
		return false, fmt.Errorf("tick/mongo: claim job count: %w", cErr)
	}
	if n == 0 {
		return false, tick.ErrJobNotFound
	}
	return false, nil
}

// ReleaseJob drops the lease if owner still holds it.
func (s *Store) ReleaseJob(ctx context.Context, jobID id.JobID, owner id.WorkerID) error {
	filter := bson.M{"_id": jobID.String(), "claimed_by": owner.String()}
	update := bson.M{"$set": bson.M{"claimed_by": "", "claimed_until": nil}}

	res, err := s.db.Collection(colJobs).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("tick/mongo: release job: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// Not holding the lease is a no-op, but a missing job is an error.
	n, cErr := s.db.Collection(colJobs).CountDocuments(ctx, bson.M{"_id": jobID.String()})
	if cErr != nil {
		return fmt.Errorf("tick/mongo: release job count: %w", cErr)
	}
	if n == 0 {
		return tick.ErrJobNotFound
	}
	return nil
}

// collectJobs drains a cursor into jobs.
func collectJobs(ctx context.Context, cur *mongod.Cursor) ([]*job.Job, error) {
	var jobs []*job.Job
	for cur.Next(ctx) {
		var m jobModel
		if err := cur.Decode(&m); err != nil {
			return nil, fmt.Errorf("tick/mongo: decode job: %w", err)
		}
		j, convErr := fromJobModel(&m)
		if convErr != nil {
			return nil, convErr
		}
		jobs = append(jobs, j)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("tick/mongo: iterate jobs: %w", err)
	}
	return jobs, nil
}
