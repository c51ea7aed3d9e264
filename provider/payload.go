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
package provider

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Number is a nullable numeric field in a provider payload. EODHD encodes
// numbers inconsistently as JSON numbers, quoted strings, empty strings or
// null; anything that does not parse to a finite float is absent. Decoding
// never fails on malformed values, it degrades them to absent.
type Number struct {
	Value float64
	Valid bool
}

var jsonNull = []byte("null")

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(raw []byte) error {
	n.Value = 0
	n.Valid = false

	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil
		}
		text = unquoted
	}

	if text == "" {
		return nil
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}

	n.Value = value
	n.Valid = true
	return nil
}

// Float returns the value as a nullable pointer.
func (n Number) Float() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// Statement is one reporting period of a financial statement, keyed by the
// provider's camelCase field names.
type Statement map[string]Number

// Value returns the first present field among names.
func (s Statement) Value(names ...string) *float64 {
	if s == nil {
		return nil
	}
	for _, name := range names {
		if n, ok := s[name]; ok && n.Valid {
			return n.Float()
		}
	}
	return nil
}

// StatementSeries holds statements keyed by period-end date (YYYY-MM-DD).
type StatementSeries map[string]Statement

// Dates returns the period-end dates in ascending order.
func (series StatementSeries) Dates() []string {
	dates := make([]string, 0, len(series))
	for date := range series {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// Latest returns the statement with the maximal period-end date.
func (series StatementSeries) Latest() (string, Statement) {
	dates := series.Dates()
	if len(dates) == 0 {
		return "", nil
	}
	latest := dates[len(dates)-1]
	return latest, series[latest]
}

// Previous returns the second most recent statement, if any.
func (series StatementSeries) Previous() (string, Statement) {
	dates := series.Dates()
	if len(dates) < 2 {
		return "", nil
	}
	prev := dates[len(dates)-2]
	return prev, series[prev]
}

// StatementGroup carries the yearly and quarterly series of one statement.
type StatementGroup struct {
	Yearly    StatementSeries `json:"yearly"`
	Quarterly StatementSeries `json:"quarterly"`
}

// Series prefers the yearly series, falling back to quarterly data for
// companies that only file quarterly.
func (g StatementGroup) Series() StatementSeries {
	if len(g.Yearly) > 0 {
		return g.Yearly
	}
	return g.Quarterly
}

// Fundamentals is the raw provider payload for one company.
type Fundamentals struct {
	General         General         `json:"General"`
	SharesStats     SharesStats     `json:"SharesStats"`
	SplitsDividends SplitsDividends `json:"SplitsDividends"`
	Technicals      Technicals      `json:"Technicals"`
	Highlights      Highlights      `json:"Highlights"`
	Valuation       Valuation       `json:"Valuation"`
	Financials      Financials      `json:"Financials"`
}

type General struct {
	Code                 string `json:"Code"`
	Name                 string `json:"Name"`
	Exchange             string `json:"Exchange"`
	Country              string `json:"CountryName"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	ISIN                 string `json:"ISIN"`
	MarketCapitalization Number `json:"MarketCapitalization"`
	SharesOutstanding    Number `json:"SharesOutstanding"`
}

type SharesStats struct {
	SharesOutstanding Number `json:"SharesOutstanding"`
}

type SplitsDividends struct {
	ForwardAnnualDividendRate  Number `json:"ForwardAnnualDividendRate"`
	ForwardAnnualDividendYield Number `json:"ForwardAnnualDividendYield"`
	PayoutRatio                Number `json:"PayoutRatio"`
}

type Technicals struct {
	Beta Number `json:"Beta"`
}

type Highlights struct {
	MarketCapitalization       Number `json:"MarketCapitalization"`
	EBITDA                     Number `json:"EBITDA"`
	PERatio                    Number `json:"PERatio"`
	PEGRatio                   Number `json:"PEGRatio"`
	BookValue                  Number `json:"BookValue"`
	DividendShare              Number `json:"DividendShare"`
	DividendYield              Number `json:"DividendYield"`
	EarningsShare              Number `json:"EarningsShare"`
	EPSEstimateCurrentYear     Number `json:"EPSEstimateCurrentYear"`
	EPSEstimateNextYear        Number `json:"EPSEstimateNextYear"`
	ProfitMargin               Number `json:"ProfitMargin"`
	OperatingMarginTTM         Number `json:"OperatingMarginTTM"`
	ReturnOnAssetsTTM          Number `json:"ReturnOnAssetsTTM"`
	ReturnOnEquityTTM          Number `json:"ReturnOnEquityTTM"`
	RevenueTTM                 Number `json:"RevenueTTM"`
	QuarterlyRevenueGrowthYOY  Number `json:"QuarterlyRevenueGrowthYOY"`
	QuarterlyEarningsGrowthYOY Number `json:"QuarterlyEarningsGrowthYOY"`
	DilutedEpsTTM              Number `json:"DilutedEpsTTM"`
}

type Valuation struct {
	TrailingPE             Number `json:"TrailingPE"`
	ForwardPE              Number `json:"ForwardPE"`
	PriceSalesTTM          Number `json:"PriceSalesTTM"`
	PriceBookMRQ           Number `json:"PriceBookMRQ"`
	EnterpriseValue        Number `json:"EnterpriseValue"`
	EnterpriseValueRevenue Number `json:"EnterpriseValueRevenue"`
	EnterpriseValueEbitda  Number `json:"EnterpriseValueEbitda"`
}

type Financials struct {
	BalanceSheet    StatementGroup `json:"Balance_Sheet"`
	CashFlow        StatementGroup `json:"Cash_Flow"`
	IncomeStatement StatementGroup `json:"Income_Statement"`
}

// ParseFundamentals decodes a raw fundamentals payload.
func ParseFundamentals(raw []byte) (*Fundamentals, error) {
	fundamentals := &Fundamentals{}
	if err := json.Unmarshal(raw, fundamentals); err != nil {
		return nil, err
	}
	return fundamentals, nil
}
