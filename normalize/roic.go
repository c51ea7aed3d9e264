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
package normalize

import (
	"github.com/market-scout/msrank/provider"
)

const (
	// nonOperatingCashRatio is the fixed share of cash plus short-term
	// investments treated as non-operating when computing invested
	// capital.
	nonOperatingCashRatio = 0.7

	// effectiveTaxRate is the flat rate applied to EBIT for NOPAT.
	effectiveTaxRate = 0.21
)

// investedCapital computes invested capital for one balance-sheet period:
// equity + total debt - non-operating cash + goodwill + intangibles + net
// working capital. Equity is required; other components default to zero
// when the statement omits them. Values are in the statement's raw
// currency units.
func investedCapital(balance provider.Statement) *float64 {
	equity := balance.Value("totalStockholderEquity", "commonStockTotalEquity")
	if equity == nil {
		return nil
	}

	shortDebt := orZero(balance.Value("shortTermDebt", "shortLongTermDebt"))
	longDebt := orZero(balance.Value("longTermDebt", "longTermDebtTotal"))
	cash := orZero(balance.Value("cash", "cashAndEquivalents"))
	shortTermInvestments := orZero(balance.Value("shortTermInvestments", "cashAndShortTermInvestments"))
	goodwill := orZero(balance.Value("goodWill"))
	intangibles := orZero(balance.Value("intangibleAssets"))

	netWorkingCapital := 0.0
	currentAssets := balance.Value("totalCurrentAssets")
	currentLiabilities := balance.Value("totalCurrentLiabilities")
	if currentAssets != nil && currentLiabilities != nil {
		netWorkingCapital = *currentAssets - *currentLiabilities
	}

	nonOperatingCash := nonOperatingCashRatio * (cash + shortTermInvestments)

	capital := *equity + shortDebt + longDebt - nonOperatingCash + goodwill + intangibles + netWorkingCapital
	return &capital
}

// averageInvestedCapital averages invested capital across the latest and
// prior balance-sheet periods, or returns the single period when no prior
// exists.
func averageInvestedCapital(balance provider.StatementSeries) *float64 {
	_, latest := balance.Latest()
	if latest == nil {
		return nil
	}

	current := investedCapital(latest)
	if current == nil {
		return nil
	}

	_, previous := balance.Previous()
	if previous == nil {
		return current
	}

	prior := investedCapital(previous)
	if prior == nil {
		return current
	}

	average := (*current + *prior) / 2
	return &average
}

// nopat is EBIT after the flat effective tax rate.
func nopat(ebit *float64) *float64 {
	if ebit == nil {
		return nil
	}
	value := *ebit * (1 - effectiveTaxRate)
	return &value
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
