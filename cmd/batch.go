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
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/market-scout/msrank/batch"
	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/healthcheck"
	"github.com/market-scout/msrank/library"
)

var (
	batchFile  string
	batchLimit int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze every company on an exchange and update the leaderboards",
	Long: `The batch sub-command runs the analysis pipeline over a list of candidate
companies. By default the candidate list is the full symbol list of the
configured exchange; --file reads candidates from a CSV instead. When a
healthchecks.io check id is configured the run is bracketed with
start/success/fail pings, and when a database is configured the run summary
is recorded in the run-history library.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		client := providerClient()
		exchange := viper.GetString("eodhd.exchange")

		var (
			companies []data.Company
			err       error
		)

		if batchFile != "" {
			companies, err = readCandidates(batchFile)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", batchFile).Msg("could not read candidate file")
			}
		} else {
			listed, err := client.ListSymbols(ctx, exchange)
			if err != nil {
				log.Fatal().Err(err).Str("Exchange", exchange).Msg("could not list exchange symbols")
			}
			companies = make([]data.Company, 0, len(listed))
			for _, company := range listed {
				companies = append(companies, *company)
			}
		}

		if batchLimit > 0 && len(companies) > batchLimit {
			companies = companies[:batchLimit]
		}

		checkID := viper.GetString("healthCheckId")
		if err := healthcheck.Start(checkID); err != nil {
			log.Warn().Err(err).Msg("could not ping healthcheck start")
		}

		controller := batch.NewController(client, aggregator())
		controller.OnProgress = func(progress batch.Progress) {
			log.Info().
				Int("Completed", progress.Completed).
				Int("Total", progress.Total).
				Str("Symbol", progress.CurrentSymbol).
				Msg("analyzing")
		}
		controller.OnComplete = func() {
			log.Info().Msg("rankings updated")
		}

		summary := controller.Run(ctx, companies)
		summary.Exchange = exchange

		runTime := summary.EndTime.Sub(summary.StartTime).Round(time.Second)
		log.Info().
			Int("Total", summary.Total).
			Int("Ranked", summary.Ranked).
			Int("Skipped", summary.Skipped).
			Int("Failed", summary.Failed).
			Str("RunTime", runTime.String()).
			Msg("batch analysis finished")

		if summary.Failed == summary.Total && summary.Total > 0 {
			if err := healthcheck.Fail(checkID); err != nil {
				log.Warn().Err(err).Msg("could not ping healthcheck fail")
			}
		} else {
			if err := healthcheck.Success(checkID); err != nil {
				log.Warn().Err(err).Msg("could not ping healthcheck success")
			}
		}

		if dbURL := viper.GetString("dbUrl"); dbURL != "" {
			myLibrary := &library.Library{DBUrl: dbURL}
			if err := myLibrary.Connect(ctx); err != nil {
				log.Error().Err(err).Msg("could not connect to run-history library")
				return
			}
			defer myLibrary.Close()

			if err := myLibrary.SaveRun(ctx, summary); err != nil {
				log.Error().Err(err).Msg("could not save run summary")
			}
		}
	},
}

// readCandidates loads batch candidates from a CSV file with at least
// symbol and name columns.
func readCandidates(fileName string) ([]data.Company, error) {
	fh, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var companies []data.Company
	if err := gocsv.UnmarshalFile(fh, &companies); err != nil {
		return nil, err
	}

	return companies, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "CSV file of candidate companies")
	batchCmd.Flags().IntVarP(&batchLimit, "limit", "l", 0, "maximum number of candidates to analyze (0 = no limit)")
}
