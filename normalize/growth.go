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
	"math"
	"strconv"

	"github.com/market-scout/msrank/provider"
)

// growthBound caps growth rates used for PEG at +/-100 percent; anything
// outside the band is treated as a data artifact.
const growthBound = 100.0

// pegBound caps the PEG ratio at +/-50.
const pegBound = 50.0

// CAGR computes the compound annual growth rate, in percent, of the first
// present field among fields between the earliest entry within the last
// lookback periods and the latest entry of series. It returns nil when
// fewer than two usable points exist, the start value is not positive, or
// the period spans zero years.
func CAGR(series provider.StatementSeries, lookback int, fields ...string) *float64 {
	dates := series.Dates()
	if len(dates) < 2 {
		return nil
	}

	startIdx := len(dates) - lookback
	if startIdx < 0 {
		startIdx = 0
	}

	startDate := dates[startIdx]
	endDate := dates[len(dates)-1]

	startValue := series[startDate].Value(fields...)
	endValue := series[endDate].Value(fields...)
	if startValue == nil || *startValue <= 0 || endValue == nil {
		return nil
	}

	years := yearOf(endDate) - yearOf(startDate)
	if years <= 0 {
		return nil
	}

	cagr := (math.Pow(*endValue / *startValue, 1/float64(years)) - 1) * 100
	return finite(cagr)
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// bestEarningsGrowth selects the earnings growth rate used for the PEG
// ratio via a priority waterfall: forward EPS estimates, then quarterly
// YoY earnings growth, then the 5-year EPS CAGR, then the 3-year EPS CAGR.
// The first candidate inside the +/-100% band wins; candidates are never
// blended.
func bestEarningsGrowth(fundamentals *provider.Fundamentals) *float64 {
	highlights := fundamentals.Highlights

	currentYear := highlights.EPSEstimateCurrentYear.Float()
	nextYear := highlights.EPSEstimateNextYear.Float()
	if currentYear != nil && nextYear != nil && *currentYear != 0 {
		forward := (*nextYear - *currentYear) / math.Abs(*currentYear) * 100
		if forward >= -growthBound && forward <= growthBound {
			return &forward
		}
	}

	// QuarterlyEarningsGrowthYOY arrives as a decimal ratio.
	if quarterly := highlights.QuarterlyEarningsGrowthYOY.Float(); quarterly != nil {
		if *quarterly >= -1 && *quarterly <= 1 {
			annualized := *quarterly * 100
			return &annualized
		}
	}

	income := fundamentals.Financials.IncomeStatement.Yearly

	for _, lookback := range []int{5, 3} {
		if cagr := CAGR(income, lookback, "eps"); cagr != nil {
			if *cagr >= -growthBound && *cagr <= growthBound {
				return cagr
			}
		}
	}

	return nil
}

// pegRatio derives PEG from the P/E ratio and the selected growth rate,
// clamped to [-50, 50]. When P/E or the growth rate is unavailable it
// falls back to the provider's own PEG figure under the same clamp. A
// present-but-zero growth rate yields nil rather than the fallback.
func pegRatio(pe *float64, growth *float64, providerPEG *float64) *float64 {
	if pe != nil && *pe > 0 && growth != nil {
		if *growth == 0 {
			return nil
		}
		peg := clamp(*pe / *growth, -pegBound, pegBound)
		return &peg
	}

	if providerPEG == nil {
		return nil
	}

	peg := clamp(*providerPEG, -pegBound, pegBound)
	return &peg
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// finite guards derived values against NaN and infinities, which can arise
// from fractional powers of negative ratios.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
