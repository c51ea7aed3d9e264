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

// Metrics is the canonical per-company fundamentals entity produced by the
// normalizer and consumed by the scoring and fair-value engines. Monetary
// aggregates (market cap, revenue, income, debt, equity, assets, cash flow)
// are expressed in billions; per-share amounts and ratios are not rescaled.
//
// Every numeric field is either a finite value or nil. Absence is never
// coerced to zero: zero debt and unknown debt are different facts, and the
// scorers skip clauses whose inputs are nil.
type Metrics struct {
	Symbol   string
	Name     string
	Sector   string
	Industry string
	ISIN     string

	// Price is the current price per share. Zero when no price could be
	// obtained; such records are excluded by the penny-stock filter.
	Price float64

	// Valuation
	MarketCap       *float64 // billions
	PERatio         *float64
	PBRatio         *float64
	PEGRatio        *float64 // clamped to [-50, 50]
	PriceToSales    *float64
	EnterpriseValue *float64 // billions
	EVToEBITDA      *float64

	// Performance
	Revenue            *float64 // billions
	RevenueGrowth      *float64 // percent, quarterly YoY
	NetIncome          *float64 // billions
	NetIncomeGrowth    *float64 // percent, quarterly YoY
	OperatingIncome    *float64 // billions
	EBITDA             *float64 // billions
	FreeCashFlow       *float64 // billions
	FreeCashFlowGrowth *float64 // percent

	// Profitability
	ROE             *float64 // percent
	ROA             *float64 // percent
	ROIC            *float64 // percent, NOPAT over average invested capital
	NOPAT           *float64 // billions
	GrossMargin     *float64 // percent
	OperatingMargin *float64 // percent
	NetMargin       *float64 // percent

	// Financial health
	CurrentRatio     *float64
	QuickRatio       *float64
	DebtToEquity     *float64
	DebtToAssets     *float64
	InterestCoverage *float64
	TotalDebt        *float64 // billions
	TotalEquity      *float64 // billions
	TotalAssets      *float64 // billions
	WorkingCapital   *float64 // billions

	// Dividends
	DividendYield      *float64 // percentage points
	DividendGrowthRate *float64 // percent
	PayoutRatio        *float64 // percent
	DividendsPerShare  *float64

	// Market data
	Beta              *float64
	BookValuePerShare *float64
	TangibleBookValue *float64 // per share
	CashPerShare      *float64
	EarningsPerShare  *float64
	SharesOutstanding *float64

	// Growth
	EarningsGrowth5Y *float64 // percent, net income CAGR
	RevenueGrowth5Y  *float64 // percent, revenue CAGR

	// Working-capital components
	CurrentAssets      *float64 // billions
	CurrentLiabilities *float64 // billions
	Inventory          *float64 // billions
	CostOfGoodsSold    *float64 // billions
}

// Float returns a pointer to v. Convenience for building Metrics literals.
func Float(v float64) *float64 {
	return &v
}
