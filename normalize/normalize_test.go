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
package normalize_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gstruct"

	"github.com/market-scout/msrank/normalize"
	"github.com/market-scout/msrank/provider"
)

func num(v float64) provider.Number {
	return provider.Number{Value: v, Valid: true}
}

func ptr(v float64) *float64 {
	return &v
}

func approx(v float64) OmegaMatcher {
	return gstruct.PointTo(BeNumerically("~", v, 1e-6))
}

var _ = Describe("Metrics", func() {
	Describe("identity", func() {
		It("prefers the provider's identity fields", func() {
			fundamentals := &provider.Fundamentals{
				General: provider.General{
					Code:     "AAPL",
					Name:     "Apple Inc",
					Sector:   "Technology",
					Industry: "Consumer Electronics",
					ISIN:     "US0378331005",
				},
			}

			m := normalize.Metrics("aapl.us", fundamentals, ptr(230))
			Expect(m.Symbol).To(Equal("AAPL"))
			Expect(m.Name).To(Equal("Apple Inc"))
			Expect(m.Sector).To(Equal("Technology"))
			Expect(m.Industry).To(Equal("Consumer Electronics"))
			Expect(m.ISIN).To(Equal("US0378331005"))
			Expect(m.Price).To(Equal(230.0))
		})

		It("falls back to the symbol and an unknown sector", func() {
			m := normalize.Metrics("XYZ", &provider.Fundamentals{}, nil)
			Expect(m.Symbol).To(Equal("XYZ"))
			Expect(m.Name).To(Equal("XYZ"))
			Expect(m.Sector).To(Equal("Unknown"))
			Expect(m.Price).To(BeZero())
		})
	})

	Describe("missing data", func() {
		It("leaves every derived field nil on an empty payload", func() {
			m := normalize.Metrics("EMPTY", &provider.Fundamentals{}, nil)
			Expect(m.MarketCap).To(BeNil())
			Expect(m.PERatio).To(BeNil())
			Expect(m.PEGRatio).To(BeNil())
			Expect(m.NetIncome).To(BeNil())
			Expect(m.ROE).To(BeNil())
			Expect(m.ROIC).To(BeNil())
			Expect(m.DebtToEquity).To(BeNil())
			Expect(m.TotalDebt).To(BeNil())
			Expect(m.FreeCashFlow).To(BeNil())
			Expect(m.DividendYield).To(BeNil())
			Expect(m.EarningsGrowth5Y).To(BeNil())
		})
	})

	Describe("monetary scaling", func() {
		It("expresses aggregates in billions", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					MarketCapitalization: num(3.5e12),
					EBITDA:               num(130e9),
				},
				Financials: provider.Financials{
					IncomeStatement: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-09-30": provider.Statement{
								"totalRevenue": num(391e9),
								"netIncome":    num(93.7e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("AAPL", fundamentals, ptr(230))
			Expect(m.MarketCap).To(approx(3500))
			Expect(m.EBITDA).To(approx(130))
			Expect(m.Revenue).To(approx(391))
			Expect(m.NetIncome).To(approx(93.7))
		})
	})

	Describe("ratio conversions", func() {
		It("converts decimal ratios to percentage points", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					ProfitMargin:               num(0.24),
					OperatingMarginTTM:         num(0.31),
					QuarterlyRevenueGrowthYOY:  num(0.06),
					QuarterlyEarningsGrowthYOY: num(0.15),
				},
				SplitsDividends: provider.SplitsDividends{
					ForwardAnnualDividendYield: num(0.004),
				},
			}

			m := normalize.Metrics("AAPL", fundamentals, nil)
			Expect(m.NetMargin).To(approx(24))
			Expect(m.OperatingMargin).To(approx(31))
			Expect(m.RevenueGrowth).To(approx(6))
			Expect(m.NetIncomeGrowth).To(approx(15))
			Expect(m.DividendYield).To(approx(0.4))
		})

		It("keeps the dividend yield nil when the provider omits it", func() {
			m := normalize.Metrics("NODIV", &provider.Fundamentals{}, nil)
			Expect(m.DividendYield).To(BeNil())
		})
	})

	Describe("balance sheet", func() {
		It("derives leverage and liquidity from the latest period", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity":  num(80e9),
								"totalAssets":             num(200e9),
								"totalCurrentAssets":      num(60e9),
								"totalCurrentLiabilities": num(40e9),
								"shortTermDebt":           num(10e9),
								"longTermDebt":            num(30e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.TotalDebt).To(approx(40))
			Expect(m.TotalEquity).To(approx(80))
			Expect(m.DebtToEquity).To(approx(0.5))
			Expect(m.DebtToAssets).To(approx(0.2))
			Expect(m.CurrentRatio).To(approx(1.5))
			Expect(m.WorkingCapital).To(approx(20))
		})

		It("aliases the quick ratio to the current ratio", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalCurrentAssets":      num(60e9),
								"totalCurrentLiabilities": num(40e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.QuickRatio).To(Equal(m.CurrentRatio))
		})

		It("treats one reported debt component as known debt", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"longTermDebt": num(30e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.TotalDebt).To(approx(30))
		})

		It("keeps unknown debt distinct from zero debt", func() {
			m := normalize.Metrics("ACME", &provider.Fundamentals{}, nil)
			Expect(m.TotalDebt).To(BeNil())
		})
	})

	Describe("free cash flow", func() {
		It("subtracts the magnitude of capital expenditures", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					CashFlow: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalCashFromOperatingActivities": num(110e9),
								"capitalExpenditures":              num(-9.5e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("AAPL", fundamentals, nil)
			Expect(m.FreeCashFlow).To(approx(100.5))
		})

		It("requires both operating cash flow and capex", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					CashFlow: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalCashFromOperatingActivities": num(110e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("AAPL", fundamentals, nil)
			Expect(m.FreeCashFlow).To(BeNil())
		})
	})

	Describe("PEG waterfall", func() {
		It("prefers forward estimate growth", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					PERatio:                num(20),
					EPSEstimateCurrentYear: num(1.0),
					EPSEstimateNextYear:    num(1.3),
					// The provider's own figure must lose to the estimate.
					PEGRatio: num(3.1),
				},
			}

			m := normalize.Metrics("GROW", fundamentals, nil)
			// 30% forward growth at a P/E of 20.
			Expect(m.PEGRatio).To(approx(20.0 / 30.0))
		})

		It("falls through to quarterly earnings growth", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					PERatio:                    num(20),
					QuarterlyEarningsGrowthYOY: num(0.25),
				},
			}

			m := normalize.Metrics("GROW", fundamentals, nil)
			Expect(m.PEGRatio).To(approx(0.8))
		})

		It("uses the provider's PEG when no P/E is available", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{PEGRatio: num(2.2)},
			}

			m := normalize.Metrics("GROW", fundamentals, nil)
			Expect(m.PEGRatio).To(approx(2.2))
		})

		It("clamps extreme PEG values", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{PEGRatio: num(120)},
			}

			m := normalize.Metrics("GROW", fundamentals, nil)
			Expect(m.PEGRatio).To(approx(50))
		})
	})

	Describe("returns on capital", func() {
		It("computes ROE and ROA from the latest statements", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity": num(50e9),
								"totalAssets":            num(250e9),
							},
						},
					},
					IncomeStatement: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"netIncome": num(10e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.ROE).To(approx(20))
			Expect(m.ROA).To(approx(4))
		})

		It("computes ROIC as NOPAT over average invested capital", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity": num(8e9),
							},
						},
					},
					IncomeStatement: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"ebit": num(2e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			// NOPAT = 2 * (1 - 0.21) = 1.58 on 8 of invested capital.
			Expect(m.ROIC).To(approx(19.75))
			Expect(m.NOPAT).To(approx(1.58))
		})

		It("averages invested capital across the last two periods", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2023-12-31": provider.Statement{
								"totalStockholderEquity": num(6e9),
							},
							"2024-12-31": provider.Statement{
								"totalStockholderEquity": num(10e9),
							},
						},
					},
					IncomeStatement: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"ebit": num(2e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			// 1.58 over an average capital of 8.
			Expect(m.ROIC).To(approx(19.75))
		})

		It("reports no ROIC when invested capital is not positive", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity": num(-200e9),
							},
						},
					},
					IncomeStatement: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"ebit": num(10e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.ROIC).To(BeNil())
			Expect(m.NOPAT).To(approx(7.9))
		})
	})

	Describe("per-share figures", func() {
		It("computes tangible book value per share", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity":        num(10e9),
								"goodWill":                      num(1e9),
								"intangibleAssets":              num(0.5e9),
								"commonStockSharesOutstanding":  num(1e8),
								"cash":                          num(2e9),
								"shortTermInvestments":          num(0.5e9),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.TangibleBookValue).To(approx(85))
			Expect(m.CashPerShare).To(approx(25))
		})

		It("scales share counts reported in millions", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Yearly: provider.StatementSeries{
							"2024-12-31": provider.Statement{
								"totalStockholderEquity":       num(10e9),
								"commonStockSharesOutstanding": num(100),
							},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.TangibleBookValue).To(approx(100))
		})
	})

	Describe("payout ratio", func() {
		It("derives the payout from dividends over earnings", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					EarningsShare: num(4),
					DividendShare: num(1),
				},
			}

			m := normalize.Metrics("DIV", fundamentals, nil)
			Expect(m.PayoutRatio).To(approx(25))
		})

		It("refuses a payout on non-positive earnings", func() {
			fundamentals := &provider.Fundamentals{
				Highlights: provider.Highlights{
					EarningsShare: num(-2),
					DividendShare: num(1),
				},
			}

			m := normalize.Metrics("DIV", fundamentals, nil)
			Expect(m.PayoutRatio).To(BeNil())
		})
	})

	Describe("inventory turnover inputs", func() {
		It("reads inventory and cost of revenue from the latest quarter", func() {
			fundamentals := &provider.Fundamentals{
				Financials: provider.Financials{
					BalanceSheet: provider.StatementGroup{
						Quarterly: provider.StatementSeries{
							"2024-06-30": provider.Statement{"inventory": num(3e9)},
							"2024-09-30": provider.Statement{"inventory": num(4e9)},
						},
					},
					IncomeStatement: provider.StatementGroup{
						Quarterly: provider.StatementSeries{
							"2024-09-30": provider.Statement{"costOfRevenue": num(24e9)},
						},
					},
				},
			}

			m := normalize.Metrics("ACME", fundamentals, nil)
			Expect(m.Inventory).To(approx(4))
			Expect(m.CostOfGoodsSold).To(approx(24))
		})
	})

	Describe("unpopulated growth fields", func() {
		It("leaves free cash flow growth and dividend growth absent", func() {
			m := normalize.Metrics("ACME", &provider.Fundamentals{}, nil)
			Expect(m.FreeCashFlowGrowth).To(BeNil())
			Expect(m.DividendGrowthRate).To(BeNil())
		})
	})
})

var _ = Describe("CAGR", func() {
	series := func(values map[string]float64) provider.StatementSeries {
		out := provider.StatementSeries{}
		for date, v := range values {
			out[date] = provider.Statement{"netIncome": num(v)}
		}
		return out
	}

	It("compounds between the earliest and latest usable periods", func() {
		s := series(map[string]float64{
			"2019-12-31": 100e9,
			"2024-12-31": 200e9,
		})
		cagr := normalize.CAGR(s, 10, "netIncome")
		// Doubling over five years.
		Expect(cagr).To(approx(14.869835))
	})

	It("returns nil for a single period", func() {
		s := series(map[string]float64{"2024-12-31": 100e9})
		Expect(normalize.CAGR(s, 10, "netIncome")).To(BeNil())
	})

	It("returns nil when the starting value is not positive", func() {
		s := series(map[string]float64{
			"2019-12-31": -50e9,
			"2024-12-31": 200e9,
		})
		Expect(normalize.CAGR(s, 10, "netIncome")).To(BeNil())
	})

	It("anchors at the lookback boundary", func() {
		s := series(map[string]float64{
			"2014-12-31": 1e9,
			"2021-12-31": 100e9,
			"2024-12-31": 200e9,
		})
		// A lookback of 2 starts at 2021, not 2014.
		cagr := normalize.CAGR(s, 2, "netIncome")
		Expect(cagr).To(approx(25.992105))
	})

	It("reports losses as a negative rate", func() {
		s := series(map[string]float64{
			"2019-12-31": 200e9,
			"2024-12-31": 100e9,
		})
		cagr := normalize.CAGR(s, 10, "netIncome")
		Expect(*cagr).To(BeNumerically("<", 0))
	})

	It("misses when the field is absent", func() {
		s := series(map[string]float64{
			"2019-12-31": 100e9,
			"2024-12-31": 200e9,
		})
		Expect(normalize.CAGR(s, 10, "totalRevenue")).To(BeNil())
	})

	It("prefers earlier field names in the waterfall", func() {
		s := provider.StatementSeries{
			"2019-12-31": provider.Statement{"netIncome": num(100e9)},
			"2024-12-31": provider.Statement{"netIncome": num(400e9)},
		}
		// Quadrupling over five years.
		cagr := normalize.CAGR(s, 10, "netIncome", "netIncomeFromContinuingOperations")
		Expect(cagr).To(approx(31.950791))
	})
})
