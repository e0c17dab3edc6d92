package mongo

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xraph/tick"
	"github.com/xraph/tick/alert"
	"github.com/xraph/tick/id"
	"github.com/xraph/tick/job"
)

// ── Job model ─────────────────────────────────────────────────────

type jobModel struct {
	ID           string     `bson:"_id"`
	TenantID     string     `bson:"tenant_id"`
	Name         string     `bson:"name"`
	Schedule     string     `bson:"schedule"`
	FunctionName string     `bson:"function_name"`
	Active       bool       `bson:"is_active"`
	NextRunAt    *time.Time `bson:"next_run,omitempty"`
	LastRunAt    *time.Time `bson:"last_run,omitempty"`
	ClaimedBy    string     `bson:"claimed_by"`
	ClaimedUntil *time.Time `bson:"claimed_until,omitempty"`
	Metadata     bson.M     `bson:"metadata"`
	CreatedAt    time.Time  `bson:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
}

func toJobModel(j *job.Job) (*jobModel, error) {
	meta, err := metadataToDoc(j.Metadata)
	if err != nil {
		return nil, fmt.Errorf("tick/mongo: encode metadata: %w", err)
	}

	return &jobModel{
		ID:           j.ID.String(),
		TenantID:     j.TenantID,
		Name:         j.Name,
		Schedule:     j.Schedule,
		FunctionName: j.FunctionName,
		Active:       j.Active,
		NextRunAt:    j.NextRunAt,
		LastRunAt:    j.LastRunAt,
		ClaimedBy:    j.ClaimedBy,
		ClaimedUntil: j.ClaimedUntil,
		Metadata:     meta,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}, nil
}

func fromJobModel(m *jobModel) (*job.Job, error) {
	parsedID, err := id.ParseJobID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("tick/mongo: parse job id %q: %w", m.ID, err)
	}

	meta, err := docToMetadata(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("tick/mongo: decode metadata: %w", err)
	}

	return &job.Job{
		Entity: tick.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:           parsedID,
		TenantID:     m.TenantID,
		Name:         m.Name,
		Schedule:     m.Schedule,
		FunctionName: m.FunctionName,
		Active:       m.Active,
		NextRunAt:    m.NextRunAt,
		LastRunAt:    m.LastRunAt,
		ClaimedBy:    m.ClaimedBy,
		ClaimedUntil: m.ClaimedUntil,
		Metadata:     meta,
	}, nil
}

// metadataToDoc converts metadata to a queryable BSON document by
// going through its flat JSON form, the single source of truth for
// the stored shape.
func metadataToDoc(m job.Metadata) (bson.M, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func docToMetadata(doc bson.M) (job.Metadata, error) {
	var m job.Metadata
	if len(doc) == 0 {
		return m, nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return m, err
	}
	return m, nil
}

// ── Alert model ───────────────────────────────────────────────────

type alertModel struct {
	Key       string     `bson:"_id"`
	Reference string     `bson:"reference"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

func toAlertModel(e *alert.Entry, expiresAt *time.Time) *alertModel {
	return &alertModel{
		Key:       e.Key,
		Reference: e.Reference,
		CreatedAt: e.CreatedAt,
		ExpiresAt: expiresAt,
	}
}

func fromAlertModel(m *alertModel) *alert.Entry {
	return &alert.Entry{
		Key:       m.Key,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
	}
}
