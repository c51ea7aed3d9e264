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
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"

	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/rankings"
)

var csvFile string

// rankingsCmd represents the rankings command
var rankingsCmd = &cobra.Command{
	Use:   "rankings [top|dividends|upside|sectors|sector NAME]",
	Short: "Display the persisted leaderboards",
	Long: `The rankings sub-command reads a leaderboard from the persisted store and
prints it as a ranked table. Without arguments it shows the global top 300.
"sectors" lists the known sector leaderboards; "sector NAME" shows one of
them. With --csv the leaderboard is exported to a file instead.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		agg := aggregator()

		listName := rankings.TopList
		if len(args) > 0 {
			switch args[0] {
			case "top":
				listName = rankings.TopList
			case "dividends":
				listName = rankings.DividendList
			case "upside":
				listName = rankings.UpsideList
			case "sectors":
				printSectors(ctx, agg)
				return
			case "sector":
				if len(args) < 2 {
					log.Fatal().Msg("sector requires a sector name")
				}
				listName = rankings.SectorList(args[1])
			default:
				log.Fatal().Str("List", args[0]).Msg("unknown leaderboard")
			}
		}

		records, err := agg.Leaderboard(ctx, listName)
		if err != nil {
			log.Fatal().Err(err).Str("List", listName).Msg("could not load leaderboard")
		}

		if csvFile != "" {
			if err := writeCSV(csvFile, records); err != nil {
				log.Fatal().Err(err).Str("FileName", csvFile).Msg("could not export leaderboard")
			}
			log.Info().Str("FileName", csvFile).Int("NumRecords", len(records)).Msg("leaderboard exported")
			return
		}

		printLeaderboard(listName, records)
	},
}

func printSectors(ctx context.Context, agg *rankings.Aggregator) {
	sectors, err := agg.Sectors(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("could not list sectors")
	}

	for _, sector := range sectors {
		fmt.Println(sector)
	}
}

func printLeaderboard(listName string, records []data.RankingRecord) {
	builder := strings.Builder{}

	builder.WriteString(fmt.Sprintf("# %s\n\n", listName))
	builder.WriteString("| # | Symbol | Name | Sector | Score | Strategy | Yield | Price | Target | Upside | Age |\n")
	builder.WriteString("|---|---|---|---|---|---|---|---|---|---|---|\n")

	for idx, record := range records {
		yield := "-"
		if record.DividendYield != nil {
			yield = fmt.Sprintf("%.2f%%", *record.DividendYield)
		}

		age := "-"
		if analyzed, err := time.Parse(time.RFC3339, record.AnalysisDate); err == nil {
			age = timeago.English.Format(analyzed)
		}

		builder.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %d | %s | %s | $%.2f | $%.2f | %+.1f%% | %s |\n",
			idx+1, record.Symbol, record.Name, record.Sector, record.OverallScore,
			record.TopStrategy, yield, record.CurrentPrice, record.AverageTarget,
			record.Upside, age))
	}

	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(160),
	)

	out, err := r.Render(builder.String())
	if err != nil {
		log.Fatal().Err(err).Msg("could not render leaderboard")
	}

	fmt.Print(out)
}

func writeCSV(fileName string, records []data.RankingRecord) error {
	fh, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer fh.Close()

	return gocsv.MarshalFile(&records, fh)
}

func init() {
	rootCmd.AddCommand(rankingsCmd)
	rankingsCmd.Flags().StringVar(&csvFile, "csv", "", "export the leaderboard to a CSV file")
}
