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

// Package rankings maintains the persisted leaderboards. A Store holds
// each leaderboard as a JSON document named <list>.json; the Aggregator
// owns all mutation through read-modify-write upserts.
package rankings

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/market-scout/msrank/data"
)

var ErrInvalidStatusCode = errors.New("invalid status code")

// Store is the persistence surface for leaderboards. List returns the
// current contents of a leaderboard (empty when it does not exist yet),
// Put replaces it wholesale, and Sectors enumerates the known sector
// leaderboard slugs.
type Store interface {
	List(ctx context.Context, name string) ([]data.RankingRecord, error)
	Put(ctx context.Context, name string, records []data.RankingRecord) error
	Sectors(ctx context.Context) ([]string, error)
}

// BlobStore persists leaderboards against a JSON-document HTTP store,
// e.g. a Firebase realtime database. Each list lives at <base>/<name>.json
// and PUT replaces the whole document.
type BlobStore struct {
	api *resty.Client
}

// NewBlobStore builds a store client for the given base URL.
func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{
		api: resty.New().SetBaseURL(baseURL),
	}
}

// List fetches a leaderboard. Stores that have never seen the list
// return 404 or a literal null body; both read as an empty list. The
// document may be a JSON array or an object whose values are records.
func (store *BlobStore) List(ctx context.Context, name string) ([]data.RankingRecord, error) {
	resp, err := store.api.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/%s.json", name))
	if err != nil {
		log.Error().Err(err).Str("list", name).Msg("error fetching leaderboard")
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return []data.RankingRecord{}, nil
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("list", name).Msg("invalid status code received")
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
	}

	return decodeRecords(resp.Body())
}

// Put replaces the leaderboard document.
func (store *BlobStore) Put(ctx context.Context, name string, records []data.RankingRecord) error {
	body, err := json.Marshal(records)
	if err != nil {
		return err
	}

	resp, err := store.api.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Put(fmt.Sprintf("/%s.json", name))
	if err != nil {
		log.Error().Err(err).Str("list", name).Msg("error writing leaderboard")
		return err
	}

	if resp.StatusCode() >= 300 {
		log.Error().Int("StatusCode", resp.StatusCode()).Str("list", name).Msg("invalid status code received")
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
	}

	return nil
}

// Sectors lists the slugs of all sector leaderboards currently in the
// store. A missing sectors document reads as no sectors.
func (store *BlobStore) Sectors(ctx context.Context) ([]string, error) {
	resp, err := store.api.R().
		SetContext(ctx).
		Get("/sectors.json")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return []string{}, nil
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
	}

	var byName map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body(), &byName); err != nil {
		return []string{}, nil
	}

	sectors := make([]string, 0, len(byName))
	for name := range byName {
		sectors = append(sectors, name)
	}

	return sectors, nil
}

// decodeRecords tolerates the document shapes the store can produce:
// null, an array of records, or an object keyed by arbitrary ids.
func decodeRecords(body []byte) ([]data.RankingRecord, error) {
	if len(body) == 0 || string(body) == "null" {
		return []data.RankingRecord{}, nil
	}

	var asArray []*data.RankingRecord
	if err := json.Unmarshal(body, &asArray); err == nil {
		records := make([]data.RankingRecord, 0, len(asArray))
		for _, item := range asArray {
			if item != nil {
				records = append(records, *item)
			}
		}
		return records, nil
	}

	var asObject map[string]data.RankingRecord
	if err := json.Unmarshal(body, &asObject); err != nil {
		return nil, err
	}

	records := make([]data.RankingRecord, 0, len(asObject))
	for _, item := range asObject {
		records = append(records, item)
	}

	return records, nil
}
