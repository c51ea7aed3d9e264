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
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/market-scout/msrank/db"
	"github.com/market-scout/msrank/healthcheck"
	"github.com/market-scout/msrank/library"
)

type eodhdSettings struct {
	Token     string `toml:"token"`
	Exchange  string `toml:"exchange"`
	RateLimit int    `toml:"rateLimit"`
}

type storeSettings struct {
	URL string `toml:"url"`
}

type healthchecksSettings struct {
	APIKey string `toml:"apikey,omitempty"`
}

type settings struct {
	DBUrl         string               `toml:"dbUrl,omitempty"`
	HealthCheckID string               `toml:"healthCheckId,omitempty"`
	EODHD         eodhdSettings        `toml:"eodhd"`
	Store         storeSettings        `toml:"store"`
	Healthchecks  healthchecksSettings `toml:"healthchecks,omitempty"`
}

// batchSchedule is the cron expression registered with healthchecks.io
// for the batch monitor: weekday mornings before the US open.
const batchSchedule = "0 6 * * 1-5"

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather provider, store, and database configuration",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		config := settings{
			// Carry an existing monitor forward unless it is replaced
			// below.
			HealthCheckID: viper.GetString("healthCheckId"),
			EODHD: eodhdSettings{
				Exchange:  "US",
				RateLimit: 1000,
			},
		}

		monitored := false
		myLibrary := &library.Library{}

		form := huh.NewForm(
			// Gather provider credentials
			huh.NewGroup(
				huh.NewInput().
					Title("EODHD API token:").
					Value(&config.EODHD.Token),

				huh.NewInput().
					Title("Default exchange code (e.g. US):").
					Value(&config.EODHD.Exchange),
			),

			// Leaderboard store
			huh.NewGroup(
				huh.NewInput().
					Title("Base URL of the leaderboard store (e.g. https://example.firebasedatabase.app):").
					Value(&config.Store.URL),

				huh.NewInput().
					Title("healthchecks.io API key (optional):").
					Value(&config.Healthchecks.APIKey),

				huh.NewConfirm().
					Title("Should a healthchecks.io monitor be created for batch runs?").
					Value(&monitored),
			),

			// Optional run-history library
			huh.NewGroup(
				huh.NewInput().
					Title("DSN of a PostgreSQL database for run history, leave empty to skip (postgres://[user[:password]@][netloc][:port][/dbname])").
					Value(&config.DBUrl).
					Validate(func(dsn string) error {
						if dsn == "" {
							return nil
						}
						_, err := pgx.ParseConfig(dsn)
						return err
					}),

				huh.NewInput().
					Title("Give the run-history library a name:").
					Value(&myLibrary.Name),

				huh.NewInput().
					Title("Who owns the library?").
					Value(&myLibrary.Owner),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		if monitored {
			// Create reads the API key from viper, so make the freshly
			// entered key visible before the call.
			viper.Set("healthchecks.apikey", config.Healthchecks.APIKey)

			if config.HealthCheckID != "" {
				if err := healthcheck.Delete(config.HealthCheckID); err != nil {
					log.Warn().Err(err).Str("CheckID", config.HealthCheckID).Msg("could not remove old healthcheck")
				}
			}

			checkName := "msrank batch " + config.EODHD.Exchange
			checkID, err := healthcheck.Create(checkName, slug.Make(checkName), []string{"msrank", "batch"}, batchSchedule)
			if err != nil {
				log.Fatal().Err(err).Msg("creating healthcheck failed")
			}
			config.HealthCheckID = checkID
		}

		if config.DBUrl != "" {
			log.Info().Msg("creating database tables")

			// run migration
			dbURL := strings.Replace(config.DBUrl, "postgres://", "pgx5://", -1)
			err = db.Migrate(dbURL)
			if err != nil {
				log.Fatal().Err(err).Msg("error running database migration")
			}

			log.Info().Msg("database tables created")
			log.Info().Msg("Saving library name and owner to database")

			myLibrary.DBUrl = config.DBUrl
			if err := myLibrary.Connect(ctx); err != nil {
				log.Fatal().Err(err).Msg("could not connect to database")
			}
			defer myLibrary.Close()

			err = myLibrary.SaveDB(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("error saving library settings to database")
			}
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".msrank.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving settings to config file")
		configData, err := toml.Marshal(config)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0644)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("msrank has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
