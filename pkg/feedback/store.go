// Copyright 2025 The Parkpilot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package feedback persists user verdicts on recommended parking spots so
// operators can judge recommendation quality over time.
package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Record is one user verdict on a recommended spot.
type Record struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId,omitempty"`
	Destination string    `json:"destination"`
	SpotName    string    `json:"spotName"`
	Profile     string    `json:"profile,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary aggregates the verdicts for one spot.
type Summary struct {
	SpotName      string  `json:"spotName"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

// StoreError represents an error in the feedback store.
type StoreError struct {
	Component string
	Operation string
	Message   string
	Err       error
	Timestamp time.Time
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Component, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Component, e.Operation, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func newStoreError(operation, message string, err error) *StoreError {
	return &StoreError{
		Component: "FeedbackStore",
		Operation: operation,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS feedback (
    id VARCHAR(64) PRIMARY KEY,
    task_id VARCHAR(64),
    destination TEXT NOT NULL,
    spot_name TEXT NOT NULL,
    profile VARCHAR(64),
    rating INTEGER NOT NULL,
    comment TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_feedback_spot_name ON feedback(spot_name);
CREATE INDEX IF NOT EXISTS idx_feedback_destination ON feedback(destination);
CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback(created_at);
`

// Store is a SQLite-backed feedback store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the feedback database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, newStoreError("Open", "database path is required", nil)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newStoreError("Open", "failed to open database "+path, err)
	}
	// database/sql pooling does not mix with SQLite writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		db.Close()
		return nil, newStoreError("Open", "failed to initialize schema", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save validates and persists one record, assigning its ID and timestamp.
func (s *Store) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return newStoreError("Save", "record cannot be nil", nil)
	}
	if record.Destination == "" || record.SpotName == "" {
		return newStoreError("Save", "destination and spotName are required", nil)
	}
	if record.Rating < 1 || record.Rating > 5 {
		return newStoreError("Save",
			fmt.Sprintf("rating must be 1..5, got %d", record.Rating), nil)
	}

	record.ID = uuid.NewString()
	record.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO feedback (id, task_id, destination, spot_name, profile, rating, comment, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.TaskID, record.Destination, record.SpotName,
		record.Profile, record.Rating, record.Comment, record.CreatedAt)
	if err != nil {
		return newStoreError("Save", "failed to insert record", err)
	}
	return nil
}

// Recent returns the newest records, capped at limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, task_id, destination, spot_name, profile, rating, comment, created_at
FROM feedback ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, newStoreError("Recent", "query failed", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ForSpot returns all records for one spot, newest first.
func (s *Store) ForSpot(ctx context.Context, spotName string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, task_id, destination, spot_name, profile, rating, comment, created_at
FROM feedback WHERE spot_name = ? ORDER BY created_at DESC, id`, spotName)
	if err != nil {
		return nil, newStoreError("ForSpot", "query failed", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Summaries aggregates ratings per spot, most-reviewed first.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT spot_name, COUNT(*), AVG(rating)
FROM feedback GROUP BY spot_name ORDER BY COUNT(*) DESC, spot_name`)
	if err != nil {
		return nil, newStoreError("Summaries", "query failed", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.SpotName, &s.Count, &s.AverageRating); err != nil {
			return nil, newStoreError("Summaries", "scan failed", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Destination, &r.SpotName,
			&r.Profile, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, newStoreError("scanRecords", "scan failed", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
