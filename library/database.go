// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package library keeps the analysis run history in PostgreSQL. The
// leaderboards themselves live in the blob store; the library records
// who ran what and when.
package library

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/market-scout/msrank/data"
)

type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// SaveRun records the summary of a finished batch analysis run
func (myLibrary *Library) SaveRun(ctx context.Context, run *data.RunSummary) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO analysis_runs (id, exchange, start_time, end_time, total, completed, ranked, skipped, failed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.Exchange, run.StartTime, run.EndTime, run.Total,
		run.Completed, run.Ranked, run.Skipped, run.Failed)
	return err
}

// Runs returns the run history, most recent first
func (myLibrary *Library) Runs(ctx context.Context) ([]*data.RunSummary, error) {
	var runs []*data.RunSummary
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT id, exchange, start_time, end_time, total, completed, ranked, skipped, failed
FROM analysis_runs ORDER BY start_time DESC`)
	return runs, err
}

// NumRuns returns the total count of recorded analysis runs
func (myLibrary *Library) NumRuns(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM analysis_runs").Scan(&count)
	return count, err
}

// TotalRanked returns the number of companies ranked across all runs
func (myLibrary *Library) TotalRanked(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT coalesce(sum(ranked), 0) FROM analysis_runs").Scan(&count)
	return count, err
}

// LastRun returns the end time of the most recent run
func (myLibrary *Library) LastRun(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastRun time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(end_time), '0001-01-01'::timestamp) FROM analysis_runs").Scan(&lastRun)
	if err != nil {
		return time.Time{}, err
	}

	return lastRun, nil
}
