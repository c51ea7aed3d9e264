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
package data

import (
	"regexp"
	"strings"
)

// Company is a batch-analysis candidate, typically sourced from an exchange
// symbol list or a CSV file.
type Company struct {
	Symbol   string `json:"code" csv:"symbol"`
	Name     string `json:"name" csv:"name"`
	Country  string `json:"country,omitempty" csv:"country"`
	Exchange string `json:"exchange,omitempty" csv:"exchange"`
	Sector   string `json:"sector,omitempty" csv:"sector"`
	Industry string `json:"industry,omitempty" csv:"industry"`
	ISIN     string `json:"isin,omitempty" csv:"isin"`
}

var (
	corporateSuffixRe = regexp.MustCompile(`(?i)\s+(ltd\.?|limited|inc\.?|incorporated|corp\.?|corporation|co\.?|company)$`)
	punctuationRe     = regexp.MustCompile(`[^\w\s]`)
)

// NormalizeName reduces a company name to a canonical form for
// deduplication: lower-cased, trailing corporate suffix stripped,
// punctuation removed, whitespace trimmed. The same company listed under
// multiple tickers normalizes to the same string.
func NormalizeName(name string) string {
	normalized := strings.ToLower(name)
	normalized = corporateSuffixRe.ReplaceAllString(normalized, "")
	normalized = punctuationRe.ReplaceAllString(normalized, "")
	return strings.TrimSpace(normalized)
}
