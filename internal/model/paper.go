package model

import "time"

// Paper is the catalog entry for one exam past-paper.
// This is a pure domain model with no database-specific dependencies or tags;
// it is shared across the HTTP, service and storage layers.
//
// JSON field names match the wire contract the browsing client consumes
// (the record id is exposed as "_id").
type Paper struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Course    string    `json:"course"`
	Year      int       `json:"year"`
	FilePath  string    `json:"filePath"`
	CreatedAt time.Time `json:"createdAt"`
}
