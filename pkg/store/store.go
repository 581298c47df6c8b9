// Package store persists run results: submission metadata and comparison
// records in bbolt, with an optional bleve sidecar index for free-text
// history search.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/musuliman/codesim/pkg/similarity"
)

// ErrNotFound is returned for lookups of unknown keys.
var ErrNotFound = errors.New("not found")

// Bucket names.
var (
	BucketSubmissions = []byte("submissions")
	BucketComparisons = []byte("comparisons")
	BucketMeta        = []byte("meta")
)

// SubmissionRecord is the persisted view of a tokenized submission.
type SubmissionRecord struct {
	Name       string    `json:"name"`
	Root       string    `json:"root"`
	Files      []string  `json:"files"`
	TokenCount int       `json:"tokenCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ComparisonRecord is the persisted view of one pairwise comparison.
type ComparisonRecord struct {
	ID                string             `json:"id"` // ULID, lexically time-ordered
	First             string             `json:"first"`
	Second            string             `json:"second"`
	Similarity        float64            `json:"similarity"`
	Matches           []similarity.Match `json:"matches"`
	MinimumTokenMatch int                `json:"minimumTokenMatch"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// BoltStore implements storage using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the store at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{BucketSubmissions, BucketComparisons, BucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Close releases the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// newID generates a ULID for record keys.
func newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.New(rand.NewSource(time.Now().UnixNano()))).String()
}

// SaveSubmission upserts a submission record keyed by name.
func (s *BoltStore) SaveSubmission(rec *SubmissionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketSubmissions).Put([]byte(rec.Name), raw)
	})
}

// GetSubmission loads a submission record by name.
func (s *BoltStore) GetSubmission(name string) (*SubmissionRecord, error) {
	var rec SubmissionRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(BucketSubmissions).Get([]byte(name))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveComparison stores a comparison result and returns its assigned
// record.
func (s *BoltStore) SaveComparison(c *similarity.Comparison, minMatch int) (*ComparisonRecord, error) {
	rec := &ComparisonRecord{
		ID:                newID(),
		First:             c.First,
		Second:            c.Second,
		Similarity:        c.Similarity(),
		Matches:           c.Matches,
		MinimumTokenMatch: minMatch,
		CreatedAt:         time.Now(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketComparisons).Put([]byte(rec.ID), raw)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetComparison loads a comparison record by ID.
func (s *BoltStore) GetComparison(id string) (*ComparisonRecord, error) {
	var rec ComparisonRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(BucketComparisons).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListComparisons returns up to limit records, newest first. ULID keys
// sort chronologically, so a reverse cursor walk does the ordering.
func (s *BoltStore) ListComparisons(limit int) ([]*ComparisonRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []*ComparisonRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(BucketComparisons).Cursor()
		for k, v := cur.Last(); k != nil && len(recs) < limit; k, v = cur.Prev() {
			var rec ComparisonRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt comparison %s: %w", k, err)
			}
			recs = append(recs, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}
