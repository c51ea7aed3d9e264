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

// Package normalize converts raw provider fundamentals into the canonical
// metrics entity. Missing payload sections degrade individual fields to
// nil; normalization never fails on incomplete data. Monetary aggregates
// are divided by 1e9 here and nowhere else; fields the provider encodes as
// decimal ratios (dividend yield, margins, quarterly growth) are converted
// to percentage points.
package normalize

import (
	"math"

	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/provider"
)

const billion = 1e9

// cagrLookback is the number of yearly periods considered for the 5-year
// growth figures. Ten periods matches the provider's history depth so the
// earliest usable entry anchors the rate.
const cagrLookback = 10

// Metrics builds the canonical metrics entity for one company from its raw
// fundamentals payload and an optional externally fetched price.
func Metrics(symbol string, fundamentals *provider.Fundamentals, price *float64) *data.Metrics {
	general := fundamentals.General
	highlights := fundamentals.Highlights
	valuation := fundamentals.Valuation

	balance := fundamentals.Financials.BalanceSheet.Series()
	income := fundamentals.Financials.IncomeStatement.Series()
	cashflow := fundamentals.Financials.CashFlow.Series()

	_, latestBS := balance.Latest()
	_, latestIS := income.Latest()
	_, latestCF := cashflow.Latest()

	// Balance sheet
	equity := latestBS.Value("totalStockholderEquity", "commonStockTotalEquity")
	assets := latestBS.Value("totalAssets")
	currentAssets := latestBS.Value("totalCurrentAssets")
	currentLiabilities := latestBS.Value("totalCurrentLiabilities")
	shortDebt := latestBS.Value("shortTermDebt", "shortLongTermDebt")
	longDebt := latestBS.Value("longTermDebt", "longTermDebtTotal")

	// Income statement
	netIncome := latestIS.Value("netIncome", "netIncomeFromContinuingOperations")
	revenue := latestIS.Value("totalRevenue")
	grossProfit := latestIS.Value("grossProfit")
	operatingIncome := latestIS.Value("operatingIncome")
	ebit := coalesce(latestIS.Value("ebit"), operatingIncome)
	interestExpense := latestIS.Value("interestExpense")

	// Cash flow
	operatingCashFlow := latestCF.Value("operatingCashFlow", "cashFlowFromOperations", "totalCashFromOperatingActivities")
	capex := latestCF.Value("capitalExpenditures", "capitalExpenditure")

	// Total debt is present when at least one component is reported; a
	// reported zero stays zero, which is different from unknown debt.
	var totalDebt *float64
	if shortDebt != nil || longDebt != nil {
		sum := orZero(shortDebt) + orZero(longDebt)
		totalDebt = &sum
	}

	var workingCapital *float64
	if currentAssets != nil && currentLiabilities != nil {
		wc := (*currentAssets - *currentLiabilities) / billion
		workingCapital = &wc
	}

	var freeCashFlow *float64
	if operatingCashFlow != nil && capex != nil {
		fcf := *operatingCashFlow - math.Abs(*capex)
		freeCashFlow = &fcf
	}

	currentPrice := 0.0
	if price != nil {
		currentPrice = *price
	}

	// ROIC via average invested capital and a flat tax rate on EBIT.
	averageCapital := averageInvestedCapital(balance)
	netOperatingProfit := nopat(ebit)
	roic := positiveRatioPercent(netOperatingProfit, averageCapital)

	pe := coalesce(highlights.PERatio.Float(), valuation.TrailingPE.Float())
	peg := pegRatio(pe, bestEarningsGrowth(fundamentals), highlights.PEGRatio.Float())

	earningsPerShare := highlights.EarningsShare.Float()
	dividendsPerShare := highlights.DividendShare.Float()

	var payoutRatio *float64
	if dividendsPerShare != nil && earningsPerShare != nil && *earningsPerShare > 0 {
		payout := *dividendsPerShare / *earningsPerShare * 100
		payoutRatio = &payout
	}

	sharesOutstanding := coalesce(
		fundamentals.SharesStats.SharesOutstanding.Float(),
		general.SharesOutstanding.Float(),
	)

	metrics := &data.Metrics{
		Symbol:   fallback(general.Code, symbol),
		Name:     fallback(general.Name, symbol),
		Sector:   fallback(general.Sector, "Unknown"),
		Industry: general.Industry,
		ISIN:     general.ISIN,
		Price:    currentPrice,

		MarketCap:       scale(coalesce(highlights.MarketCapitalization.Float(), general.MarketCapitalization.Float())),
		PERatio:         pe,
		PBRatio:         valuation.PriceBookMRQ.Float(),
		PEGRatio:        peg,
		PriceToSales:    valuation.PriceSalesTTM.Float(),
		EnterpriseValue: scale(valuation.EnterpriseValue.Float()),
		EVToEBITDA:      valuation.EnterpriseValueEbitda.Float(),

		Revenue:         scale(revenue),
		RevenueGrowth:   percent(highlights.QuarterlyRevenueGrowthYOY.Float()),
		NetIncome:       scale(netIncome),
		NetIncomeGrowth: percent(highlights.QuarterlyEarningsGrowthYOY.Float()),
		OperatingIncome: scale(operatingIncome),
		EBITDA:          scale(highlights.EBITDA.Float()),
		FreeCashFlow:    scale(freeCashFlow),

		ROE:             ratioPercent(netIncome, equity),
		ROA:             ratioPercent(netIncome, assets),
		ROIC:            roic,
		NOPAT:           scale(netOperatingProfit),
		GrossMargin:     ratioPercent(grossProfit, revenue),
		OperatingMargin: percent(highlights.OperatingMarginTTM.Float()),
		NetMargin:       coalesce(percent(highlights.ProfitMargin.Float()), ratioPercent(netIncome, revenue)),

		CurrentRatio:     ratio(currentAssets, currentLiabilities),
		QuickRatio:       ratio(currentAssets, currentLiabilities),
		DebtToEquity:     ratio(totalDebt, equity),
		DebtToAssets:     ratio(totalDebt, assets),
		InterestCoverage: positiveRatio(ebit, interestExpense),
		TotalDebt:        scale(totalDebt),
		TotalEquity:      scale(equity),
		TotalAssets:      scale(assets),
		WorkingCapital:   workingCapital,

		DividendYield: percent(coalesce(
			fundamentals.SplitsDividends.ForwardAnnualDividendYield.Float(),
			highlights.DividendYield.Float(),
		)),
		PayoutRatio:       payoutRatio,
		DividendsPerShare: fundamentals.SplitsDividends.ForwardAnnualDividendRate.Float(),

		Beta:              fundamentals.Technicals.Beta.Float(),
		BookValuePerShare: highlights.BookValue.Float(),
		TangibleBookValue: tangibleBookValue(latestBS),
		CashPerShare:      cashPerShare(latestBS),
		EarningsPerShare:  earningsPerShare,
		SharesOutstanding: sharesOutstanding,

		EarningsGrowth5Y: CAGR(income, cagrLookback, "netIncome"),
		RevenueGrowth5Y:  CAGR(income, cagrLookback, "totalRevenue"),

		CurrentAssets:      scale(currentAssets),
		CurrentLiabilities: scale(currentLiabilities),
		Inventory:          scale(latestQuarterly(fundamentals.Financials.BalanceSheet, "inventory")),
		CostOfGoodsSold:    scale(latestQuarterly(fundamentals.Financials.IncomeStatement, "costOfRevenue")),
	}

	return metrics
}

// tangibleBookValue is equity less goodwill and intangibles, per share.
func tangibleBookValue(balance provider.Statement) *float64 {
	equity := balance.Value("totalStockholderEquity", "commonStockTotalEquity")
	if equity == nil {
		return nil
	}

	shares := sharesFromBalance(balance)
	if shares == nil {
		return nil
	}

	goodwill := orZero(balance.Value("goodWill"))
	intangibles := orZero(balance.Value("intangibleAssets"))

	tangible := (*equity - goodwill - intangibles) / *shares
	return finite(tangible)
}

// cashPerShare is cash plus short-term investments over shares outstanding.
func cashPerShare(balance provider.Statement) *float64 {
	cash := orZero(balance.Value("cash", "cashAndEquivalents"))
	shortTermInvestments := orZero(balance.Value("shortTermInvestments"))
	totalCash := cash + shortTermInvestments
	if totalCash == 0 {
		return nil
	}

	shares := sharesFromBalance(balance)
	if shares == nil {
		return nil
	}

	perShare := totalCash / *shares
	return finite(perShare)
}

// sharesFromBalance reads shares outstanding off the balance sheet. Older
// filings report the count in millions; values under 1000 are scaled up.
func sharesFromBalance(balance provider.Statement) *float64 {
	shares := balance.Value("commonStockSharesOutstanding")
	if shares == nil || *shares <= 0 {
		return nil
	}

	count := *shares
	if count < 1000 {
		count *= 1e6
	}

	return &count
}

// latestQuarterly reads a field from the most recent quarterly statement.
func latestQuarterly(group provider.StatementGroup, field string) *float64 {
	_, latest := group.Quarterly.Latest()
	return latest.Value(field)
}

func scale(v *float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v / billion
	return &scaled
}

func percent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	pct := *v * 100
	return &pct
}

func ratio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	return finite(*numerator / *denominator)
}

func ratioPercent(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	return finite(*numerator / *denominator * 100)
}

// positiveRatio requires a strictly positive denominator, used for
// interest coverage where a zero or negative expense is meaningless.
func positiveRatio(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator <= 0 {
		return nil
	}
	return finite(*numerator / *denominator)
}

// positiveRatioPercent is positiveRatio expressed as a percentage; ROIC
// on a zero or negative capital base is meaningless.
func positiveRatioPercent(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator <= 0 {
		return nil
	}
	return finite(*numerator / *denominator * 100)
}

func coalesce(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func fallback(value, alt string) string {
	if value == "" {
		return alt
	}
	return value
}
