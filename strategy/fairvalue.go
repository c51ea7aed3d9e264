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

package strategy

import (
	"math"

	"github.com/market-scout/msrank/data"
)

// Per-strategy multipliers applied to the current price when a company
// fails the health gate. None of these investors would put a quality
// multiple on a structurally troubled business.
const (
	buffettUnhealthyDiscount    = 0.8
	grahamUnhealthyDiscount     = 0.7
	lynchUnhealthyDiscount      = 0.8
	greenblattUnhealthyDiscount = 0.75
	templetonUnhealthyDiscount  = 0.6
	marksUnhealthyDiscount      = 0.7
)

// Healthy reports whether a company clears the fundamental health gate:
// positive net income, or positive free cash flow, or an operating
// margin above -10% (temporary losses at growth companies pass).
func Healthy(m *data.Metrics) bool {
	return above(m.NetIncome, 0) || above(m.FreeCashFlow, 0) || above(m.OperatingMargin, -10)
}

// validEPS rejects EPS values that are too small to multiply, too large
// to be real, or inconsistent with a deeply negative net income
// (under -$100M). Rejected EPS is treated as absent.
func validEPS(m *data.Metrics) *float64 {
	eps := m.EarningsPerShare
	if eps == nil || *eps <= 0.01 || *eps > 1000 {
		return nil
	}
	if m.NetIncome != nil && *m.NetIncome < -0.1 {
		return nil
	}
	return eps
}

// maxMultiplier bounds how far above the current price any fair value
// may land. Unhealthy companies are pinned to a flat 2x regardless of
// everything else; healthy companies start at 10x, widen by market-cap
// tier, and shift with P/E and beta, hard-capped at 24x.
func maxMultiplier(m *data.Metrics) float64 {
	if !Healthy(m) {
		return 2.0
	}

	marketCap := 0.1
	if m.MarketCap != nil && *m.MarketCap != 0 {
		marketCap = *m.MarketCap
	}

	var upsidePercent float64
	switch {
	case marketCap < 0.05:
		upsidePercent = 2000
	case marketCap < 0.5:
		upsidePercent = 1500
	case marketCap < 5:
		upsidePercent = 1200
	default:
		upsidePercent = 1000
	}

	if above(m.PERatio, 0) && above(m.NetIncome, 0) {
		switch {
		case *m.PERatio < 5:
			upsidePercent += 300
		case *m.PERatio < 10:
			upsidePercent += 150
		case *m.PERatio > 30:
			upsidePercent *= 0.7
		}
	}

	if m.Beta != nil {
		if math.Abs(*m.Beta) > 2 {
			upsidePercent += 200
		} else if math.Abs(*m.Beta) < 0.5 {
			upsidePercent *= 0.9
		}
	}

	if upsidePercent > 2400 {
		upsidePercent = 2400
	}

	return upsidePercent / 100
}

// clampFairValue pins a computed fair value into [0.1x, maxMultiplier x]
// of the current price.
func clampFairValue(fairValue float64, m *data.Metrics) float64 {
	upper := m.Price * maxMultiplier(m)
	lower := m.Price * 0.1
	return math.Max(lower, math.Min(upper, fairValue))
}

// BuffettFairValue prices the company at a quality-adjusted P/E starting
// from a conservative 15x and capped at 30x. Without a usable EPS it
// falls back to a 20% premium over book value.
func BuffettFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*buffettUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if eps == nil {
		if above(m.BookValuePerShare, 0) {
			return clampFairValue(*m.BookValuePerShare*1.2, m)
		}
		return m.Price
	}

	fairPE := 15.0
	if above(m.ROE, 20) {
		fairPE += 3
	}
	if above(m.NetMargin, 15) {
		fairPE += 2
	}
	if below(m.DebtToEquity, 0.5) {
		fairPE += 2
	}
	if m.FreeCashFlow != nil && m.NetIncome != nil && *m.FreeCashFlow > *m.NetIncome*0.8 {
		fairPE += 2
	}

	switch {
	case above(m.EarningsGrowth5Y, 10):
		fairPE += 3
	case above(m.EarningsGrowth5Y, 5):
		fairPE += 1
	}

	fairPE = math.Min(30, fairPE)

	return clampFairValue(*eps*fairPE, m)
}

// GrahamFairValue is the Graham Number, sqrt(22.5 x EPS x book value per
// share). The fallbacks discount tangible book or book value.
func GrahamFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*grahamUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if m.BookValuePerShare == nil || eps == nil {
		if above(m.TangibleBookValue, 0) {
			return clampFairValue(*m.TangibleBookValue*0.8, m)
		}
		if above(m.BookValuePerShare, 0) {
			return clampFairValue(*m.BookValuePerShare*0.7, m)
		}
		return m.Price
	}

	if *m.BookValuePerShare <= 0 {
		return clampFairValue(m.Price*0.7, m)
	}

	fairValue := math.Sqrt(22.5 * *eps * *m.BookValuePerShare)
	return clampFairValue(fairValue, m)
}

// LynchFairValue targets a PEG-implied P/E: growth banded into 8-30%
// times a quality-adjusted target PEG, capped at 50x. Without a usable
// EPS it reprices the stock toward a conservative price-to-sales.
func LynchFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*lynchUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if eps == nil {
		if m.PriceToSales != nil && *m.PriceToSales > 0 && *m.PriceToSales < 10 {
			fairPS := math.Min(5, *m.PriceToSales*1.2)
			fairValue := m.Price * fairPS / *m.PriceToSales
			return clampFairValue(fairValue, m)
		}
		return m.Price
	}

	growthRate := 8.0
	if m.EarningsGrowth5Y != nil {
		growthRate = math.Abs(*m.EarningsGrowth5Y)
	}
	adjustedGrowth := math.Min(30, math.Max(8, growthRate))

	targetPEG := 1.3
	if above(m.ROE, 25) {
		targetPEG = 1.6
	} else if above(m.ROE, 20) {
		targetPEG = 1.4
	}

	fairPE := math.Min(50, adjustedGrowth*targetPEG)
	return clampFairValue(*eps*fairPE, m)
}

// GreenblattFairValue targets an earnings yield of 6-8%, letting higher
// ROIC justify a lower required yield, with a quality premium up to
// 1.2x. Without a usable EPS it reprices toward a capped EV/EBITDA.
func GreenblattFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*greenblattUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if eps == nil {
		if above(m.EBITDA, 0) && above(m.EVToEBITDA, 0) {
			fairEVEbitda := math.Min(15, *m.EVToEBITDA)
			fairValue := m.Price * (fairEVEbitda / *m.EVToEBITDA)
			return clampFairValue(fairValue, m)
		}
		return m.Price
	}

	roic := 15.0
	if m.ROIC != nil {
		roic = *m.ROIC
	}
	roic = math.Max(5, math.Min(50, roic))

	targetYield := math.Max(6, 8-(roic-15)*0.1)
	targetPE := math.Min(25, 100/targetYield)

	quality := 1.0
	switch {
	case roic > 25:
		quality = 1.2
	case roic > 20:
		quality = 1.15
	case roic > 15:
		quality = 1.05
	}

	return clampFairValue(*eps*targetPE*quality, m)
}

// TempletonFairValue is the strictest model: a target P/E of 6 with
// small concessions for a clean balance sheet, a big dividend, or a
// sub-book price, and an absolute ceiling of 8x.
func TempletonFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*templetonUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if eps == nil {
		if above(m.BookValuePerShare, 0) {
			return clampFairValue(*m.BookValuePerShare*0.6, m)
		}
		if above(m.TangibleBookValue, 0) {
			return clampFairValue(*m.TangibleBookValue*0.5, m)
		}
		return clampFairValue(m.Price*0.7, m)
	}

	targetPE := 6.0
	if below(m.DebtToEquity, 0.1) {
		targetPE = 7
	}
	if above(m.DividendYield, 5) {
		targetPE += 0.5
	}
	if below(m.PBRatio, 0.8) {
		targetPE += 0.5
	}
	targetPE = math.Min(8, targetPE)

	return clampFairValue(*eps*targetPE, m)
}

// MarksFairValue starts from a conservative 14x and works the multiple
// down for leverage and cycle risk, up a little for quality, capped at
// 20x. The EPS fallbacks discount tangible book, then book.
func MarksFairValue(m *data.Metrics) float64 {
	if !Healthy(m) {
		return clampFairValue(m.Price*marksUnhealthyDiscount, m)
	}

	eps := validEPS(m)
	if eps == nil {
		if above(m.TangibleBookValue, 0) {
			return clampFairValue(*m.TangibleBookValue*0.7, m)
		}
		if above(m.BookValuePerShare, 0) {
			return clampFairValue(*m.BookValuePerShare*0.6, m)
		}
		return clampFairValue(m.Price*0.8, m)
	}

	multiple := 14.0

	debtRatio := 0.0
	if m.DebtToEquity != nil {
		debtRatio = *m.DebtToEquity
	}
	switch {
	case debtRatio > 2.0:
		multiple *= 0.6
	case debtRatio > 1.5:
		multiple *= 0.75
	case debtRatio > 1.0:
		multiple *= 0.85
	case debtRatio < 0.5:
		multiple *= 1.05
	}

	switch {
	case above(m.ROE, 25):
		multiple *= 1.1
	case above(m.ROE, 20):
		multiple *= 1.05
	case below(m.ROE, 12):
		multiple *= 0.9
	}

	switch {
	case above(m.NetMargin, 20):
		multiple *= 1.08
	case below(m.NetMargin, 8):
		multiple *= 0.9
	}

	if above(m.PERatio, 25) {
		multiple *= 0.9
	}

	multiple = math.Min(20, multiple)

	return clampFairValue(*eps*multiple, m)
}
