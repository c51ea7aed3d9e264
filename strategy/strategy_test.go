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
package strategy_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"

	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/strategy"
)

var _ = Describe("Strategies", func() {
	Describe("All", func() {
		It("returns the six investors in evaluation order", func() {
			names := []string{}
			for _, strat := range strategy.All() {
				names = append(names, strat.Name)
			}
			Expect(names).To(Equal([]string{
				"Warren Buffett",
				"Benjamin Graham",
				"Peter Lynch",
				"Joel Greenblatt",
				"John Templeton",
				"Howard Marks",
			}))
		})
	})

	Describe("Scores", func() {
		It("resolves an all-zero tie to the first strategy", func() {
			summary := strategy.Scores(&data.Metrics{Symbol: "NODATA"})
			Expect(summary.OverallScore).To(BeZero())
			Expect(summary.TopStrategy).To(Equal("Warren Buffett"))
			Expect(summary.Strategies).To(HaveLen(6))
			for _, score := range summary.Strategies {
				Expect(score.Score).To(BeZero())
				Expect(score.Signal).To(Equal(data.Sell))
			}
		})

		It("picks the highest-scoring strategy and rounds the mean", func() {
			m := &data.Metrics{
				Price:        10,
				ROIC:         data.Float(30),
				PERatio:      data.Float(5),
				EVToEBITDA:   data.Float(6),
				FreeCashFlow: data.Float(1),
			}
			summary := strategy.Scores(m)

			// Buffett and Graham each pick up 15 from the P/E alone,
			// Templeton 21 after rescaling, Greenblatt the full 100.
			Expect(summary.TopStrategy).To(Equal("Joel Greenblatt"))
			Expect(summary.OverallScore).To(Equal(25))
		})
	})

	Describe("Valuations", func() {
		It("averages the six fair values and derives the upside", func() {
			m := &data.Metrics{
				Symbol:           "VAL",
				Price:            40,
				NetIncome:        data.Float(-50),
				FreeCashFlow:     data.Float(-10),
				OperatingMargin:  data.Float(-20),
				EarningsPerShare: data.Float(5),
			}
			summary := strategy.Valuations(m)

			// Unhealthy discounts: 32, 28, 32, 30, 24, 28.
			Expect(summary.PerStrategy).To(HaveLen(6))
			Expect(summary.AverageFairValue).To(BeNumerically("~", 29, 1e-9))
			Expect(summary.Upside).To(BeNumerically("~", -27.5, 1e-9))
			for _, valuation := range summary.PerStrategy {
				Expect(valuation.Signal).To(Equal(data.Sell))
			}
		})
	})

	Describe("Record", func() {
		It("builds a leaderboard entry from metrics", func() {
			analyzedAt := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
			m := &data.Metrics{
				Symbol:        "ACME",
				Name:          "Acme Industries",
				Sector:        "Industrials",
				Industry:      "Machinery",
				ISIN:          "US0000000001",
				Price:         50,
				DividendYield: data.Float(2.5),
				NetIncome:     data.Float(3),
			}

			record := strategy.Record(m, analyzedAt)

			Expect(record.Symbol).To(Equal("ACME"))
			Expect(record.Name).To(Equal("Acme Industries"))
			Expect(record.Sector).To(Equal("Industrials"))
			Expect(record.Industry).To(Equal("Machinery"))
			Expect(record.ISIN).To(Equal("US0000000001"))
			Expect(record.CurrentPrice).To(Equal(50.0))
			Expect(record.DividendYield).To(gstruct.PointTo(BeNumerically("~", 2.5, 1e-9)))
			Expect(record.AnalysisDate).To(Equal("2025-03-14T14:30:00Z"))
			Expect(record.Upside).To(BeNumerically("~", strategy.Upside(50, record.AverageTarget), 1e-9))
		})

		It("is repeatable for an unchanged company", func() {
			analyzedAt := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)
			m := &data.Metrics{
				Symbol:           "ACME",
				Name:             "Acme Industries",
				Sector:           "Industrials",
				Price:            50,
				MarketCap:        data.Float(12),
				NetIncome:        data.Float(3),
				FreeCashFlow:     data.Float(2.5),
				EarningsPerShare: data.Float(4),
				ROE:              data.Float(18),
				DebtToEquity:     data.Float(0.6),
				PERatio:          data.Float(12.5),
				OperatingMargin:  data.Float(14),
			}

			first := strategy.Record(m, analyzedAt)
			second := strategy.Record(m, analyzedAt)

			Expect(second).To(Equal(first))
			Expect(strategy.Scores(m)).To(Equal(strategy.Scores(m)))
			Expect(strategy.Valuations(m)).To(Equal(strategy.Valuations(m)))
		})
	})
})
