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

package rankings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/gosimple/slug"

	"github.com/market-scout/msrank/data"
)

// Leaderboard names. Sector leaderboards live under the sectors/
// namespace, keyed by a slug of the sector name.
const (
	TopList      = "top300"
	DividendList = "dividends"
	UpsideList   = "upside"
)

const (
	topCap      = 300
	sectorCap   = 30
	dividendCap = 300
	upsideCap   = 300

	// Yields above this are data errors, not income opportunities.
	maxDividendYield = 25
)

// SectorSlug converts a sector name into its leaderboard key, e.g.
// "Consumer Defensive" -> "consumer-defensive".
func SectorSlug(sector string) string {
	return slug.Make(sector)
}

// SectorList returns the leaderboard name for a sector.
func SectorList(sector string) string {
	return "sectors/" + SectorSlug(sector)
}

// Aggregator owns leaderboard mutation. Each incoming record is upserted
// into the global, sector, dividend, and upside leaderboards; the four
// upserts run concurrently. Each upsert is a logical read-modify-write
// against the store; concurrent writers racing on the same leaderboard
// can lose updates, which consumers tolerate.
type Aggregator struct {
	store Store
}

// NewAggregator builds an aggregator over the given store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// Upsert places a record into every leaderboard it qualifies for. All
// four upserts are attempted even when some fail; the returned error
// joins the individual failures.
func (agg *Aggregator) Upsert(ctx context.Context, record data.RankingRecord) error {
	upserts := []func(context.Context, data.RankingRecord) error{
		agg.upsertTop,
		agg.upsertSector,
		agg.upsertDividends,
		agg.upsertUpside,
	}

	var wg sync.WaitGroup
	errs := make([]error, len(upserts))
	for idx, upsert := range upserts {
		wg.Add(1)
		go func(idx int, upsert func(context.Context, data.RankingRecord) error) {
			defer wg.Done()
			errs[idx] = upsert(ctx, record)
		}(idx, upsert)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Leaderboard reads a leaderboard and returns it sorted by its key.
func (agg *Aggregator) Leaderboard(ctx context.Context, name string) ([]data.RankingRecord, error) {
	records, err := agg.store.List(ctx, name)
	if err != nil {
		return nil, err
	}

	sortRecords(records, keyFor(name))
	return records, nil
}

// Sectors enumerates the sector leaderboard slugs known to the store.
func (agg *Aggregator) Sectors(ctx context.Context) ([]string, error) {
	sectors, err := agg.store.Sectors(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(sectors)
	return sectors, nil
}

func (agg *Aggregator) upsertTop(ctx context.Context, record data.RankingRecord) error {
	return agg.upsertList(ctx, TopList, record, topCap, scoreKey, nil)
}

func (agg *Aggregator) upsertSector(ctx context.Context, record data.RankingRecord) error {
	return agg.upsertList(ctx, SectorList(record.Sector), record, sectorCap, scoreKey, nil)
}

func (agg *Aggregator) upsertDividends(ctx context.Context, record data.RankingRecord) error {
	if record.DividendYield == nil || *record.DividendYield <= 0 {
		return nil
	}
	return agg.upsertList(ctx, DividendList, record, dividendCap, dividendKey, payingDividend)
}

func (agg *Aggregator) upsertUpside(ctx context.Context, record data.RankingRecord) error {
	return agg.upsertList(ctx, UpsideList, record, upsideCap, upsideKey, nil)
}

// upsertList runs one read-modify-write cycle: fetch the list, drop any
// entry matching the incoming record by symbol or by normalized name,
// append the record, dedup the remainder by name, filter, sort
// descending by the list's key, truncate to the cap, and write back.
func (agg *Aggregator) upsertList(ctx context.Context, name string, record data.RankingRecord, limit int, key func(data.RankingRecord) float64, keep func(data.RankingRecord) bool) error {
	existing, err := agg.store.List(ctx, name)
	if err != nil {
		return err
	}

	records := merge(existing, record)
	if keep != nil {
		records = filter(records, keep)
	}

	sortRecords(records, key)
	if len(records) > limit {
		records = records[:limit]
	}

	return agg.store.Put(ctx, name, records)
}

// merge removes any existing entry for the same company before appending
// the incoming record, so a re-analysis always replaces the stored entry
// even when the company trades under a different ticker. The remainder
// is deduplicated by normalized name, first occurrence winning.
func merge(existing []data.RankingRecord, record data.RankingRecord) []data.RankingRecord {
	name := data.NormalizeName(record.Name)

	merged := make([]data.RankingRecord, 0, len(existing)+1)
	for _, item := range existing {
		if item.Symbol == "" {
			continue
		}
		if strings.EqualFold(item.Symbol, record.Symbol) || data.NormalizeName(item.Name) == name {
			continue
		}
		merged = append(merged, item)
	}
	merged = append(merged, record)

	return dedupeByName(merged)
}

func dedupeByName(records []data.RankingRecord) []data.RankingRecord {
	seen := make(map[string]bool, len(records))
	deduped := records[:0]
	for _, item := range records {
		name := data.NormalizeName(item.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		deduped = append(deduped, item)
	}
	return deduped
}

func filter(records []data.RankingRecord, keep func(data.RankingRecord) bool) []data.RankingRecord {
	kept := records[:0]
	for _, item := range records {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	return kept
}

func payingDividend(record data.RankingRecord) bool {
	return record.DividendYield != nil &&
		*record.DividendYield > 0 &&
		*record.DividendYield <= maxDividendYield
}

func sortRecords(records []data.RankingRecord, key func(data.RankingRecord) float64) {
	sort.SliceStable(records, func(i, j int) bool {
		return key(records[i]) > key(records[j])
	})
}

func keyFor(name string) func(data.RankingRecord) float64 {
	switch name {
	case DividendList:
		return dividendKey
	case UpsideList:
		return upsideKey
	default:
		return scoreKey
	}
}

func scoreKey(record data.RankingRecord) float64 {
	return float64(record.OverallScore)
}

func dividendKey(record data.RankingRecord) float64 {
	if record.DividendYield == nil {
		return 0
	}
	return *record.DividendYield
}

func upsideKey(record data.RankingRecord) float64 {
	return record.Upside
}
