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

// Raw clause-table maxima. Lynch and Templeton tables sum short of 100,
// so raw scores rescale before they are surfaced.
const (
	buffettMax    = 100
	grahamMax     = 100
	lynchMax      = 96
	greenblattMax = 100
	templetonMax  = 96
	marksMax      = 100
)

func scaled(raw, max int) int {
	return int(math.Round(float64(raw) / float64(max) * 100))
}

// BuffettScore rewards quality franchises: high returns on equity, low
// leverage, fat margins, steady growth, and cash earnings that back up
// the accounting earnings.
func BuffettScore(m *data.Metrics) int {
	return scaled(buffettRaw(m), buffettMax)
}

func buffettRaw(m *data.Metrics) int {
	score := 0

	switch {
	case above(m.ROE, 20):
		score += 25
	case above(m.ROE, 15):
		score += 20
	case above(m.ROE, 10):
		score += 10
	}

	switch {
	case below(m.DebtToEquity, 0.3):
		score += 20
	case below(m.DebtToEquity, 0.6):
		score += 15
	case below(m.DebtToEquity, 1):
		score += 10
	}

	switch {
	case above(m.EarningsGrowth5Y, 10):
		score += 15
	case above(m.EarningsGrowth5Y, 5):
		score += 10
	}

	switch {
	case above(m.NetMargin, 15):
		score += 15
	case above(m.NetMargin, 10):
		score += 10
	}

	switch {
	case below(m.PERatio, 20):
		score += 15
	case below(m.PERatio, 25):
		score += 10
	case below(m.PERatio, 30):
		score += 5
	}

	if m.FreeCashFlow != nil && m.NetIncome != nil && *m.FreeCashFlow > *m.NetIncome*0.8 {
		score += 10
	}

	return capScore(score)
}

// GrahamScore is deep value with a margin of safety: cheap on earnings
// and book, liquid, lightly levered, and ideally priced under the
// Graham Number.
func GrahamScore(m *data.Metrics) int {
	return scaled(grahamRaw(m), grahamMax)
}

func grahamRaw(m *data.Metrics) int {
	score := 0

	switch {
	case below(m.PERatio, 10):
		score += 15
	case below(m.PERatio, 15):
		score += 12
	case below(m.PERatio, 20):
		score += 8
	}

	switch {
	case below(m.PBRatio, 1):
		score += 15
	case below(m.PBRatio, 1.5):
		score += 12
	case below(m.PBRatio, 2.5):
		score += 8
	}

	switch {
	case above(m.CurrentRatio, 2):
		score += 12
	case above(m.CurrentRatio, 1.5):
		score += 10
	case above(m.CurrentRatio, 1.2):
		score += 6
	}

	switch {
	case below(m.DebtToAssets, 0.3):
		score += 8
	case below(m.DebtToAssets, 0.5):
		score += 6
	}

	switch {
	case above(m.CashPerShare, m.Price*0.1):
		score += 12
	case above(m.CashPerShare, m.Price*0.05):
		score += 8
	}

	switch {
	case above(m.BookValuePerShare, m.Price):
		score += 10
	case above(m.BookValuePerShare, m.Price*0.8):
		score += 6
	}

	// Graham Number: sqrt(22.5 x EPS x book value per share). Full marks
	// for trading at or under it.
	if above(m.EarningsPerShare, 0) && above(m.BookValuePerShare, 0) && m.Price > 0 {
		grahamNumber := math.Sqrt(22.5 * *m.EarningsPerShare * *m.BookValuePerShare)
		switch {
		case m.Price <= grahamNumber:
			score += 20
		case m.Price <= grahamNumber*1.2:
			score += 12
		case m.Price <= grahamNumber*1.5:
			score += 6
		}
	}

	if above(m.EarningsGrowth5Y, 0) {
		score += 8
	}

	return capScore(score)
}

// LynchScore is growth at a reasonable price: a low PEG ratio carries
// the most weight, backed by earnings growth, ROE, and fast inventory
// turnover.
func LynchScore(m *data.Metrics) int {
	return scaled(lynchRaw(m), lynchMax)
}

func lynchRaw(m *data.Metrics) int {
	score := 0

	if m.PEGRatio != nil && *m.PEGRatio != 0 {
		switch {
		case *m.PEGRatio < 0.5:
			score += 25
		case *m.PEGRatio < 1:
			score += 20
		case *m.PEGRatio < 1.5:
			score += 12
		case *m.PEGRatio < 2:
			score += 8
		}
	}

	switch {
	case above(m.EarningsGrowth5Y, 20):
		score += 20
	case above(m.EarningsGrowth5Y, 15):
		score += 16
	case above(m.EarningsGrowth5Y, 10):
		score += 12
	}

	switch {
	case above(m.ROE, 20):
		score += 16
	case above(m.ROE, 15):
		score += 12
	case above(m.ROE, 10):
		score += 8
	}

	switch {
	case below(m.DebtToEquity, 0.5):
		score += 12
	case below(m.DebtToEquity, 1):
		score += 8
	}

	if above(m.RevenueGrowth5Y, 10) {
		score += 8
	}

	if m.CostOfGoodsSold != nil && above(m.Inventory, 0) {
		turnover := *m.CostOfGoodsSold / *m.Inventory
		switch {
		case turnover >= 12:
			score += 15
		case turnover >= 6:
			score += 12
		case turnover >= 4:
			score += 8
		case turnover >= 2:
			score += 4
		}
	}

	return capScore(score)
}

// GreenblattScore is the magic formula: high return on invested capital
// paired with a high earnings yield.
func GreenblattScore(m *data.Metrics) int {
	return scaled(greenblattRaw(m), greenblattMax)
}

func greenblattRaw(m *data.Metrics) int {
	score := 0

	switch {
	case above(m.ROIC, 25):
		score += 35
	case above(m.ROIC, 20):
		score += 30
	case above(m.ROIC, 15):
		score += 25
	case above(m.ROIC, 10):
		score += 15
	}

	if m.PERatio != nil && *m.PERatio != 0 {
		earningsYield := 100 / *m.PERatio
		switch {
		case earningsYield > 15:
			score += 35
		case earningsYield > 10:
			score += 30
		case earningsYield > 7:
			score += 25
		case earningsYield > 5:
			score += 15
		}
	}

	switch {
	case below(m.EVToEBITDA, 8):
		score += 20
	case below(m.EVToEBITDA, 12):
		score += 15
	case below(m.EVToEBITDA, 15):
		score += 10
	}

	if above(m.FreeCashFlow, 0) {
		score += 10
	}

	return capScore(score)
}

// TempletonScore is contrarian income value: very low multiples, a
// well-covered dividend, and hard asset backing.
func TempletonScore(m *data.Metrics) int {
	return scaled(templetonRaw(m), templetonMax)
}

func templetonRaw(m *data.Metrics) int {
	score := 0

	switch {
	case below(m.PERatio, 8):
		score += 20
	case below(m.PERatio, 12):
		score += 16
	case below(m.PERatio, 15):
		score += 10
	}

	switch {
	case below(m.PBRatio, 0.8):
		score += 16
	case below(m.PBRatio, 1.2):
		score += 12
	case below(m.PBRatio, 1.8):
		score += 8
	}

	switch {
	case above(m.DividendYield, 4):
		score += 16
	case above(m.DividendYield, 3):
		score += 12
	case above(m.DividendYield, 2):
		score += 8
	}

	if m.EarningsPerShare != nil && above(m.DividendsPerShare, 0) {
		coverage := *m.EarningsPerShare / *m.DividendsPerShare
		switch {
		case coverage >= 3:
			score += 16
		case coverage >= 2:
			score += 12
		case coverage >= 1.5:
			score += 8
		case coverage >= 1:
			score += 4
		}
	}

	switch {
	case above(m.CashPerShare, m.Price*0.15):
		score += 10
	case above(m.CashPerShare, m.Price*0.1):
		score += 6
	}

	if above(m.TangibleBookValue, 0) {
		score += 6
	}

	if m.CurrentRatio != nil && m.DebtToEquity != nil {
		switch {
		case *m.CurrentRatio > 1.5 && *m.DebtToEquity < 0.6:
			score += 8
		case *m.CurrentRatio > 1.2 && *m.DebtToEquity < 1:
			score += 6
		}
	}

	if above(m.OperatingMargin, 10) {
		score += 4
	}

	return capScore(score)
}

// MarksScore is risk first: low leverage, comfortable interest coverage,
// and quality bought at a sane multiple.
func MarksScore(m *data.Metrics) int {
	return scaled(marksRaw(m), marksMax)
}

func marksRaw(m *data.Metrics) int {
	score := 0

	switch {
	case below(m.DebtToEquity, 0.2):
		score += 25
	case below(m.DebtToEquity, 0.4):
		score += 20
	case below(m.DebtToEquity, 0.7):
		score += 15
	}

	switch {
	case above(m.InterestCoverage, 10):
		score += 20
	case above(m.InterestCoverage, 5):
		score += 15
	case above(m.InterestCoverage, 3):
		score += 10
	}

	if m.ROE != nil && m.ROA != nil {
		switch {
		case *m.ROE > 15 && *m.ROA > 8:
			score += 25
		case *m.ROE > 12 && *m.ROA > 6:
			score += 20
		case *m.ROE > 10 && *m.ROA > 4:
			score += 15
		}
	}

	if m.PERatio != nil && m.PBRatio != nil {
		switch {
		case *m.PERatio < 18 && *m.PBRatio < 2.5:
			score += 20
		case *m.PERatio < 22 && *m.PBRatio < 3:
			score += 15
		}
	}

	if m.FreeCashFlow != nil && m.NetIncome != nil && *m.FreeCashFlow > *m.NetIncome*0.9 {
		score += 10
	}

	return capScore(score)
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
