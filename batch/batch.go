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

// Package batch drives the analysis pipeline over a list of candidate
// companies: fetch fundamentals and price, normalize, score, value, and
// upsert into the leaderboards. Work proceeds in fixed-size batches with
// soft pacing delays so the provider's rate limit is respected. A failed
// item never aborts its batch; every deduplicated candidate is processed
// exactly once and the completion hook always fires.
package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/normalize"
	"github.com/market-scout/msrank/provider"
	"github.com/market-scout/msrank/strategy"
)

const (
	batchSize = 5

	// Soft pacing, not admission control: items inside a batch stagger
	// their start by index, and batches are separated by a fixed delay.
	staggerDelay    = 500 * time.Millisecond
	interBatchDelay = 2 * time.Second

	// Companies trading under a dollar are skipped after the fetch.
	pennyStockPrice = 1.0
)

// DataSource supplies raw fundamentals and prices for one symbol.
type DataSource interface {
	Fundamentals(ctx context.Context, symbol string) (*provider.Fundamentals, error)
	RealTimePrice(ctx context.Context, symbol string) (*float64, error)
}

// Ranker accepts finished ranking records.
type Ranker interface {
	Upsert(ctx context.Context, record data.RankingRecord) error
}

// Progress is delivered to the progress callback as items start and
// settle.
type Progress struct {
	Completed     int
	Total         int
	CurrentSymbol string
}

// Controller runs batch analyses. OnProgress and OnComplete are optional;
// OnComplete fires exactly once per run, after the last batch settles,
// even when every item failed.
type Controller struct {
	source DataSource
	ranker Ranker

	OnProgress func(Progress)
	OnComplete func()

	// sleep is context-aware so a cancelled run does not sit in a pacing
	// delay. Tests substitute a recording fake.
	sleep func(ctx context.Context, d time.Duration)
	now   func() time.Time
}

// NewController builds a controller over a data source and a ranker.
func NewController(source DataSource, ranker Ranker) *Controller {
	return &Controller{
		source: source,
		ranker: ranker,
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

// Run analyzes every candidate and returns a summary of the run. The
// candidate list is deduplicated by normalized company name before
// processing, first occurrence winning. Batches run strictly in order;
// items inside one batch run concurrently with staggered starts.
func (ctrl *Controller) Run(ctx context.Context, companies []data.Company) *data.RunSummary {
	unique := dedupe(companies)

	summary := &data.RunSummary{
		ID:        uuid.New(),
		StartTime: ctrl.now(),
		Total:     len(unique),
	}

	var completed, ranked, skipped, failed atomic.Int64

	for start := 0; start < len(unique); start += batchSize {
		end := start + batchSize
		if end > len(unique) {
			end = len(unique)
		}
		group := unique[start:end]

		var wg sync.WaitGroup
		for idx, company := range group {
			wg.Add(1)
			go func(idx int, company data.Company) {
				defer wg.Done()

				ctrl.sleep(ctx, time.Duration(idx)*staggerDelay)
				ctrl.progress(int(completed.Load()), summary.Total, company.Symbol)

				outcome := ctrl.analyze(ctx, company)
				switch outcome {
				case outcomeRanked:
					ranked.Add(1)
				case outcomeSkipped:
					skipped.Add(1)
				case outcomeFailed:
					failed.Add(1)
				}
				completed.Add(1)

				ctrl.progress(int(completed.Load()), summary.Total, company.Symbol)
			}(idx, company)
		}
		wg.Wait()

		if end < len(unique) {
			ctrl.sleep(ctx, interBatchDelay)
		}
	}

	summary.EndTime = ctrl.now()
	summary.Completed = int(completed.Load())
	summary.Ranked = int(ranked.Load())
	summary.Skipped = int(skipped.Load())
	summary.Failed = int(failed.Load())

	if ctrl.OnComplete != nil {
		ctrl.OnComplete()
	}

	return summary
}

type outcome int

const (
	outcomeRanked outcome = iota
	outcomeSkipped
	outcomeFailed
)

// analyze runs the full pipeline for one company. Every failure mode is
// terminal for the item only: missing fundamentals and penny stocks are
// skips, fetch and store errors are failures, and all of them count the
// item as completed.
func (ctrl *Controller) analyze(ctx context.Context, company data.Company) outcome {
	subLog := log.With().Str("Symbol", company.Symbol).Logger()

	fundamentals, err := ctrl.source.Fundamentals(ctx, company.Symbol)
	if err != nil {
		subLog.Warn().Err(err).Msg("error fetching fundamentals")
		return outcomeFailed
	}
	if fundamentals == nil {
		subLog.Debug().Msg("no fundamentals available, skipping")
		return outcomeSkipped
	}

	price, err := ctrl.source.RealTimePrice(ctx, company.Symbol)
	if err != nil {
		subLog.Warn().Err(err).Msg("error fetching price")
		price = nil
	}

	metrics := normalize.Metrics(company.Symbol, fundamentals, price)
	if metrics.Price < pennyStockPrice {
		subLog.Debug().Float64("Price", metrics.Price).Msg("penny stock, skipping")
		return outcomeSkipped
	}

	record := strategy.Record(metrics, ctrl.now())
	if record.Name == "" {
		record.Name = company.Name
	}
	if record.Sector == "" {
		record.Sector = company.Sector
	}
	if record.Industry == "" {
		record.Industry = company.Industry
	}

	if err := ctrl.ranker.Upsert(ctx, record); err != nil {
		subLog.Warn().Err(err).Msg("error saving ranking record")
		return outcomeFailed
	}

	return outcomeRanked
}

func (ctrl *Controller) progress(completed, total int, symbol string) {
	if ctrl.OnProgress == nil {
		return
	}
	ctrl.OnProgress(Progress{
		Completed:     completed,
		Total:         total,
		CurrentSymbol: symbol,
	})
}

// dedupe drops candidates whose normalized names have been seen already.
func dedupe(companies []data.Company) []data.Company {
	seen := make(map[string]bool, len(companies))
	unique := make([]data.Company, 0, len(companies))
	for _, company := range companies {
		name := data.NormalizeName(company.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, company)
	}
	return unique
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
