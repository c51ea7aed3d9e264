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
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/market-scout/msrank/provider"
	"github.com/market-scout/msrank/rankings"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "msrank",
	Short: "msrank scores and ranks listed companies by legendary investor criteria",
	Long: `msrank builds and maintains ranked leaderboards of listed companies. For
every company it fetches fundamentals and a real-time price from EODHD,
normalizes them into a canonical set of metrics, and evaluates them against
the published criteria of six legendary investors:

	* Warren Buffett
	* Benjamin Graham
	* Peter Lynch
	* Joel Greenblatt
	* John Templeton
	* Howard Marks

Each strategy produces a 0-100 score and a fair-value estimate. The results
feed four persisted leaderboards: the global top 300 by score, per-sector
top 30 lists, the top dividend payers, and the largest upside to fair
value. Analyses run one-off with the analyze sub-command or exchange-wide
with batch.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.msrank.toml)")

	rootCmd.PersistentFlags().String("dbUrl", "", "database connection string for the run-history library")
	if err := viper.BindPFlag("dbUrl", rootCmd.PersistentFlags().Lookup("dbUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for dbUrl failed")
	}

	rootCmd.PersistentFlags().String("storeUrl", "", "base URL of the leaderboard store")
	if err := viper.BindPFlag("store.url", rootCmd.PersistentFlags().Lookup("storeUrl")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for storeUrl failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".msrank" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".msrank")
	}

	viper.SetDefault("eodhd.exchange", "US")
	viper.SetDefault("eodhd.rateLimit", 1000)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// providerClient builds an EODHD client from the active configuration.
func providerClient() *provider.Client {
	return provider.NewClient(
		viper.GetString("eodhd.token"),
		viper.GetString("eodhd.exchange"),
		viper.GetInt("eodhd.rateLimit"),
	)
}

// aggregator builds a leaderboard aggregator from the active configuration.
func aggregator() *rankings.Aggregator {
	store := rankings.NewBlobStore(viper.GetString("store.url"))
	return rankings.NewAggregator(store)
}
