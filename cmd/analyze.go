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
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/market-scout/msrank/normalize"
	"github.com/market-scout/msrank/strategy"
)

var saveResults bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL...",
	Short: "Score and value individual companies",
	Long: `The analyze sub-command fetches fundamentals and a real-time price for
each symbol, evaluates all six investor strategies, and prints the scores
and fair-value estimates. With --save the result is also upserted into the
persisted leaderboards.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := providerClient()

		for _, symbol := range args {
			fundamentals, err := client.Fundamentals(ctx, symbol)
			if err != nil {
				log.Fatal().Err(err).Str("Symbol", symbol).Msg("could not fetch fundamentals")
			}
			if fundamentals == nil {
				log.Warn().Str("Symbol", symbol).Msg("no fundamentals available")
				continue
			}

			price, err := client.RealTimePrice(ctx, symbol)
			if err != nil {
				log.Warn().Err(err).Str("Symbol", symbol).Msg("could not fetch price")
			}

			metrics := normalize.Metrics(symbol, fundamentals, price)
			scores := strategy.Scores(metrics)
			valuations := strategy.Valuations(metrics)

			printAnalysis(metrics.Name, metrics.Price, scores, valuations)

			if saveResults {
				record := strategy.Record(metrics, time.Now())
				if err := aggregator().Upsert(ctx, record); err != nil {
					log.Fatal().Err(err).Str("Symbol", symbol).Msg("could not save ranking record")
				}
			}
		}
	},
}

func printAnalysis(name string, price float64, scores strategy.ScoreSummary, valuations strategy.ValuationSummary) {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n\n", name))
	builder.WriteString(fmt.Sprintf("Price: $%.2f | Overall Score: %d | Top Strategy: %s\n\n", price, scores.OverallScore, scores.TopStrategy))
	builder.WriteString(fmt.Sprintf("Average Fair Value: $%.2f (%+.1f%%)\n\n", valuations.AverageFairValue, valuations.Upside))

	builder.WriteString("| Strategy | Score | Signal | Fair Value | Upside |\n")
	builder.WriteString("|---|---|---|---|---|\n")
	for idx, score := range scores.Strategies {
		valuation := valuations.PerStrategy[idx]
		builder.WriteString(fmt.Sprintf("| %s | %d | %s | $%.2f | %+.1f%% |\n",
			score.Name, score.Score, score.Signal, valuation.FairValue, valuation.Upside))
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	out, err := r.Render(builder.String())
	if err != nil {
		log.Fatal().Err(err).Msg("could not render analysis")
	}

	fmt.Print(out)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&saveResults, "save", false, "upsert the result into the leaderboards")
}
