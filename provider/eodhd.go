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
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	json "github.com/goccy/go-json"
	"github.com/market-scout/msrank/cache"
	"github.com/market-scout/msrank/data"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

var ErrInvalidStatusCode = errors.New("invalid status code received")

const defaultBaseURL = "https://eodhd.com/api"

const (
	symbolsTTL      = 12 * time.Hour
	fundamentalsTTL = time.Hour
	priceTTL        = 5 * time.Minute
)

// Client queries the EODHD market-data API. Requests are paced by a shared
// rate limiter and responses are memoized in process-local TTL caches.
type Client struct {
	api      *resty.Client
	limiter  *rate.Limiter
	exchange string

	symbols      *cache.Cache[[]*data.Company]
	fundamentals *cache.Cache[*Fundamentals]
	prices       *cache.Cache[*float64]
}

// NewClient creates a client for the given exchange suffix (e.g. "US").
// rateLimit is the maximum number of requests per minute.
func NewClient(apiToken string, exchange string, rateLimit int) *Client {
	if rateLimit <= 0 {
		rateLimit = 1000
	}

	if exchange == "" {
		exchange = "US"
	}

	return &Client{
		api: resty.New().
			SetBaseURL(defaultBaseURL).
			SetQueryParam("api_token", apiToken).
			SetQueryParam("fmt", "json"),
		limiter:      rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1),
		exchange:     exchange,
		symbols:      cache.New[[]*data.Company](),
		fundamentals: cache.New[*Fundamentals](),
		prices:       cache.New[*float64](),
	}
}

// SetBaseURL overrides the API endpoint.
func (client *Client) SetBaseURL(baseURL string) {
	client.api.SetBaseURL(baseURL)
}

// ListSymbols returns the tradeable companies on an exchange.
func (client *Client) ListSymbols(ctx context.Context, exchange string) ([]*data.Company, error) {
	return cache.Fetch(ctx, client.symbols, "exchange_"+exchange, symbolsTTL,
		func(ctx context.Context) ([]*data.Company, error) {
			if err := client.limiter.Wait(ctx); err != nil {
				return nil, err
			}

			resp, err := client.api.R().
				SetContext(ctx).
				Get(fmt.Sprintf("/exchange-symbol-list/%s", exchange))
			if err != nil {
				return nil, err
			}

			if resp.StatusCode() >= 300 {
				return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
			}

			companies := make([]*data.Company, 0, 6000)
			if err := json.Unmarshal(resp.Body(), &companies); err != nil {
				return nil, err
			}

			return companies, nil
		})
}

// Fundamentals returns the raw fundamentals payload for symbol, or nil when
// the provider has no record of the company. A 404 is not an error.
func (client *Client) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	return cache.Fetch(ctx, client.fundamentals, "fundamentals_"+symbol, fundamentalsTTL,
		func(ctx context.Context) (*Fundamentals, error) {
			logger := zerolog.Ctx(ctx)

			if err := client.limiter.Wait(ctx); err != nil {
				return nil, err
			}

			resp, err := client.api.R().
				SetContext(ctx).
				Get(fmt.Sprintf("/fundamentals/%s.%s", symbol, client.exchange))
			if err != nil {
				return nil, err
			}

			if resp.StatusCode() == http.StatusNotFound {
				logger.Debug().Str("Symbol", symbol).Msg("no fundamentals for symbol")
				return nil, nil
			}

			if resp.StatusCode() >= 300 {
				return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
			}

			return ParseFundamentals(resp.Body())
		})
}

type realtimeQuote struct {
	Close         Number `json:"close"`
	PreviousClose Number `json:"previousClose"`
}

// RealTimePrice returns the delayed real-time price for symbol, or nil when
// no quote is available.
func (client *Client) RealTimePrice(ctx context.Context, symbol string) (*float64, error) {
	return cache.Fetch(ctx, client.prices, "price_"+symbol, priceTTL,
		func(ctx context.Context) (*float64, error) {
			if err := client.limiter.Wait(ctx); err != nil {
				return nil, err
			}

			resp, err := client.api.R().
				SetContext(ctx).
				Get(fmt.Sprintf("/real-time/%s.%s", symbol, client.exchange))
			if err != nil {
				return nil, err
			}

			if resp.StatusCode() >= 300 {
				return nil, fmt.Errorf("%w: %d", ErrInvalidStatusCode, resp.StatusCode())
			}

			quote := realtimeQuote{}
			if err := json.Unmarshal(resp.Body(), &quote); err != nil {
				return nil, err
			}

			if quote.Close.Valid {
				return quote.Close.Float(), nil
			}

			return quote.PreviousClose.Float(), nil
		})
}
