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
package data

import (
	"time"

	"github.com/google/uuid"
)

// RunSummary records the outcome of one batch analysis run.
type RunSummary struct {
	ID        uuid.UUID `db:"id"`
	Exchange  string    `db:"exchange"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`

	// Total is the number of candidates after name deduplication.
	Total int `db:"total"`

	// Completed counts every candidate that settled, including failures
	// and skips. The controller guarantees Completed == Total.
	Completed int `db:"completed"`

	// Ranked counts candidates that produced a leaderboard upsert.
	Ranked int `db:"ranked"`

	// Skipped counts penny stocks and candidates with no fundamentals.
	Skipped int `db:"skipped"`

	// Failed counts candidates that errored during fetch, normalization
	// or the store write.
	Failed int `db:"failed"`
}
