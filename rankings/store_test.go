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
package rankings_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/market-scout/msrank/data"
	"github.com/market-scout/msrank/rankings"
)

var _ = Describe("BlobStore", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		store   *rankings.BlobStore
		ctx     context.Context
	)

	BeforeEach(func() {
		handler = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		store = rankings.NewBlobStore(server.URL)
		ctx = context.Background()
	})

	Describe("List", func() {
		It("fetches a leaderboard document by name", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodGet))
				Expect(r.URL.Path).To(Equal("/top300.json"))
				w.Write([]byte(`[
					{"symbol": "AAPL", "name": "Apple Inc", "overallScore": 82},
					{"symbol": "MSFT", "name": "Microsoft Corporation", "overallScore": 79}
				]`))
			}

			records, err := store.List(ctx, rankings.TopList)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].Symbol).To(Equal("AAPL"))
			Expect(records[1].OverallScore).To(Equal(79))
		})

		It("reads an object-shaped document", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{
					"0": {"symbol": "AAPL", "name": "Apple Inc", "overallScore": 82}
				}`))
			}

			records, err := store.List(ctx, rankings.TopList)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].Symbol).To(Equal("AAPL"))
		})

		It("drops null entries from sparse arrays", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[null, {"symbol": "AAPL", "name": "Apple Inc"}, null]`))
			}

			records, err := store.List(ctx, rankings.TopList)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
		})

		It("reads a null document as an empty leaderboard", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			}

			records, err := store.List(ctx, rankings.TopList)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("reads a missing document as an empty leaderboard", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}

			records, err := store.List(ctx, rankings.UpsideList)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})

		It("surfaces other error statuses", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}

			_, err := store.List(ctx, rankings.TopList)
			Expect(err).To(MatchError(rankings.ErrInvalidStatusCode))
		})
	})

	Describe("Put", func() {
		It("replaces the document wholesale", func() {
			var body []byte
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPut))
				Expect(r.URL.Path).To(Equal("/dividends.json"))
				Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
				var err error
				body, err = io.ReadAll(r.Body)
				Expect(err).NotTo(HaveOccurred())
			}

			err := store.Put(ctx, rankings.DividendList, []data.RankingRecord{
				{Symbol: "T", Name: "AT&T Inc", OverallScore: 55},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring(`"symbol":"T"`))
		})

		It("surfaces write failures", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			}

			err := store.Put(ctx, rankings.TopList, nil)
			Expect(err).To(MatchError(rankings.ErrInvalidStatusCode))
		})
	})

	Describe("Sectors", func() {
		It("lists the sector document's keys", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/sectors.json"))
				w.Write([]byte(`{"technology": [], "energy": []}`))
			}

			sectors, err := store.Sectors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sectors).To(ConsistOf("technology", "energy"))
		})

		It("reads a missing document as no sectors", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}

			sectors, err := store.Sectors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sectors).To(BeEmpty())
		})

		It("reads an unparseable document as no sectors", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`garbage`))
			}

			sectors, err := store.Sectors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sectors).To(BeEmpty())
		})
	})
})
