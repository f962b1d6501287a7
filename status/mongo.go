package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/conveyal/r5-sub005/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo persists job status records to a MongoDB collection, keyed by jobId.
type Mongo struct {
	coll *mongo.Collection
}

// Compile-time assertion that Mongo implements StatusStore.
var _ types.StatusStore = (*Mongo)(nil)

// NewMongo creates a status store writing to the given collection.
func NewMongo(coll *mongo.Collection) *Mongo {
	return &Mongo{coll: coll}
}

// Update upserts the status record for status.JobID.
func (s *Mongo) Update(ctx context.Context, status types.JobStatus) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"jobId": status.JobID},
		bson.M{"$set": status},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upserting status for job %s: %w", status.JobID, err)
	}

	return nil
}

// Get returns the status record for jobID.
func (s *Mongo) Get(ctx context.Context, jobID string) (types.JobStatus, error) {
	var st types.JobStatus
	err := s.coll.FindOne(ctx, bson.M{"jobId": jobID}).Decode(&st)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.JobStatus{}, fmt.Errorf("%w: %s", types.ErrJobNotFound, jobID)
	}
	if err != nil {
		return types.JobStatus{}, fmt.Errorf("fetching status for job %s: %w", jobID, err)
	}

	return st, nil
}
