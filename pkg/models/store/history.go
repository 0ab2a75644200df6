package store

import "time"

// RunRecord is one row of the local run-history database: a single
// (server, KB) extraction and its headline numbers.
type RunRecord struct {
	ID                int64
	Server            string
	KBNumber          int
	Architecture      string
	Format            string
	UpdatesMatched    int
	ComputersReported int
	InstalledCount    int
	FailedCount       int
	StartedAt         time.Time
	CompletedAt       time.Time
	Error             string
}
