package model

import "go.mongodb.org/mongo-driver/v2/bson"

// Document is a schemaless catalog or cart record. Attributes are stored
// and returned as-is; the only field this system cares about is _id.
type Document = bson.M

// UpdateResult reports match/modify counts from an update operation.
type UpdateResult struct {
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
	UpsertedCount int64 `json:"upserted_count"`
}
