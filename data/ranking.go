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

// Signal is a coarse buy/hold/sell recommendation.
type Signal string

const (
	Buy  Signal = "buy"
	Hold Signal = "hold"
	Sell Signal = "sell"
)

// SignalFromScore maps a 0-100 score to a recommendation.
func SignalFromScore(score int) Signal {
	switch {
	case score >= 80:
		return Buy
	case score >= 60:
		return Hold
	default:
		return Sell
	}
}

// SignalFromUpside maps an upside percentage to a recommendation. Upside
// above 50% reads as a strong buy; any non-negative upside holds.
func SignalFromUpside(upside float64) Signal {
	switch {
	case upside > 50:
		return Buy
	case upside >= 0:
		return Hold
	default:
		return Sell
	}
}

// RankingRecord is the persisted leaderboard entry for one analyzed company.
type RankingRecord struct {
	Symbol   string `json:"symbol" csv:"symbol"`
	Name     string `json:"name" csv:"name"`
	Sector   string `json:"sector" csv:"sector"`
	Industry string `json:"industry,omitempty" csv:"industry"`
	ISIN     string `json:"isin,omitempty" csv:"isin"`

	// OverallScore is the rounded mean of the six strategy scores.
	OverallScore int `json:"overallScore" csv:"overall_score"`

	// TopStrategy is the arg-max strategy by score; ties resolve to the
	// first strategy in evaluation order.
	TopStrategy string `json:"topStrategy" csv:"top_strategy"`

	// AnalysisDate is an ISO-8601 timestamp of the analysis run.
	AnalysisDate string `json:"analysisDate" csv:"analysis_date"`

	DividendYield *float64 `json:"dividendYield" csv:"dividend_yield"`
	CurrentPrice  float64  `json:"currentPrice" csv:"current_price"`

	// AverageTarget is the arithmetic mean of the six fair values.
	AverageTarget float64 `json:"averageTarget" csv:"average_target"`

	// Upside is (averageTarget - currentPrice) / currentPrice * 100 when
	// the price is positive, otherwise 0.
	Upside float64 `json:"upside" csv:"upside"`
}
