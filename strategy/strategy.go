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

// Package strategy scores companies and estimates fair value per share
// through the lens of six well-known value investors. Scores are integers
// in [0, 100]; clauses whose inputs are missing contribute nothing, so a
// record with no data scores zero everywhere. Fair values are clamped to
// a band around the current price; see fairvalue.go.
package strategy

import (
	"time"

	"github.com/market-scout/msrank/data"
)

// Strategy pairs a display name with its scoring and valuation models.
type Strategy struct {
	Name      string
	Score     func(*data.Metrics) int
	FairValue func(*data.Metrics) float64
}

// All returns the six strategies in evaluation order. The order is load
// bearing: score ties resolve to the earliest strategy in this slice.
func All() []Strategy {
	return []Strategy{
		{Name: "Warren Buffett", Score: BuffettScore, FairValue: BuffettFairValue},
		{Name: "Benjamin Graham", Score: GrahamScore, FairValue: GrahamFairValue},
		{Name: "Peter Lynch", Score: LynchScore, FairValue: LynchFairValue},
		{Name: "Joel Greenblatt", Score: GreenblattScore, FairValue: GreenblattFairValue},
		{Name: "John Templeton", Score: TempletonScore, FairValue: TempletonFairValue},
		{Name: "Howard Marks", Score: MarksScore, FairValue: MarksFairValue},
	}
}

// StrategyScore is one strategy's verdict on a company.
type StrategyScore struct {
	Name   string      `json:"name"`
	Score  int         `json:"score"`
	Signal data.Signal `json:"signal"`
}

// ScoreSummary aggregates the six strategy scores for one company.
type ScoreSummary struct {
	OverallScore int             `json:"overallScore"`
	TopStrategy  string          `json:"topStrategy"`
	Strategies   []StrategyScore `json:"strategies"`
}

// StrategyValuation is one strategy's fair-value estimate and its
// implied recommendation.
type StrategyValuation struct {
	Name      string      `json:"name"`
	FairValue float64     `json:"fairValue"`
	Upside    float64     `json:"upside"`
	Signal    data.Signal `json:"signal"`
}

// ValuationSummary aggregates the six fair values for one company.
type ValuationSummary struct {
	AverageFairValue float64             `json:"averageFairValue"`
	Upside           float64             `json:"upside"`
	PerStrategy      []StrategyValuation `json:"perStrategy"`
}

// Upside is the percentage gap between a fair value and the current
// price. Zero when the price is not positive.
func Upside(price, fairValue float64) float64 {
	if price <= 0 {
		return 0
	}
	return (fairValue - price) / price * 100
}

// Scores runs every strategy's scoring model against the metrics.
func Scores(metrics *data.Metrics) ScoreSummary {
	strategies := All()

	summary := ScoreSummary{
		Strategies: make([]StrategyScore, 0, len(strategies)),
	}

	total := 0
	best := -1
	for _, strat := range strategies {
		score := strat.Score(metrics)
		total += score
		if score > best {
			best = score
			summary.TopStrategy = strat.Name
		}
		summary.Strategies = append(summary.Strategies, StrategyScore{
			Name:   strat.Name,
			Score:  score,
			Signal: data.SignalFromScore(score),
		})
	}

	summary.OverallScore = int(float64(total)/float64(len(strategies)) + 0.5)
	return summary
}

// Valuations runs every strategy's fair-value model against the metrics.
func Valuations(metrics *data.Metrics) ValuationSummary {
	strategies := All()

	summary := ValuationSummary{
		PerStrategy: make([]StrategyValuation, 0, len(strategies)),
	}

	total := 0.0
	for _, strat := range strategies {
		fairValue := strat.FairValue(metrics)
		total += fairValue
		upside := Upside(metrics.Price, fairValue)
		summary.PerStrategy = append(summary.PerStrategy, StrategyValuation{
			Name:      strat.Name,
			FairValue: fairValue,
			Upside:    upside,
			Signal:    data.SignalFromUpside(upside),
		})
	}

	summary.AverageFairValue = total / float64(len(strategies))
	summary.Upside = Upside(metrics.Price, summary.AverageFairValue)
	return summary
}

// Record combines the score and valuation summaries into a persisted
// leaderboard entry.
func Record(metrics *data.Metrics, analyzedAt time.Time) data.RankingRecord {
	scores := Scores(metrics)
	valuations := Valuations(metrics)

	return data.RankingRecord{
		Symbol:        metrics.Symbol,
		Name:          metrics.Name,
		Sector:        metrics.Sector,
		Industry:      metrics.Industry,
		ISIN:          metrics.ISIN,
		OverallScore:  scores.OverallScore,
		TopStrategy:   scores.TopStrategy,
		AnalysisDate:  analyzedAt.UTC().Format(time.RFC3339),
		DividendYield: metrics.DividendYield,
		CurrentPrice:  metrics.Price,
		AverageTarget: valuations.AverageFairValue,
		Upside:        valuations.Upside,
	}
}

// above reports whether v is present and greater than x.
func above(v *float64, x float64) bool {
	return v != nil && *v > x
}

// below reports whether v is present and less than x.
func below(v *float64, x float64) bool {
	return v != nil && *v < x
}
