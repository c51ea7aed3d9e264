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

package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBUrl)); err != nil {
		return "", err
	}

	// Number of recorded runs
	numRuns, err := myLibrary.NumRuns(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Num Runs: %d\n", numRuns)); err != nil {
		return "", err
	}

	// Companies ranked across all runs
	totalRanked, err := myLibrary.TotalRanked(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Companies Ranked: %d\n\n", totalRanked)); err != nil {
		return "", err
	}

	// Last run time
	lastRun, err := myLibrary.LastRun(ctx)
	if err != nil {
		return "", err
	}

	age := timeago.English.Format(lastRun)

	if lastRun.Equal(time.Time{}) {
		if _, err := builder.WriteString("Last Run: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		if _, err := builder.WriteString(fmt.Sprintf("Last Run: %s (%s)\n\n", age, lastRun.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Run history
	if _, err := builder.WriteString("## Runs\n\n"); err != nil {
		return "", err
	}

	runs, err := myLibrary.Runs(ctx)
	if err != nil {
		return "", err
	}

	for _, run := range runs {
		duration := run.EndTime.Sub(run.StartTime).Round(time.Second)
		if _, err := builder.WriteString(p.Sprintf("  * %s %s: %d ranked / %d skipped / %d failed of %d in %s [%s]\n",
			run.StartTime.Local().Format("01/02/2006 15:04"), run.Exchange, run.Ranked, run.Skipped,
			run.Failed, run.Total, duration, run.ID.String()[:6])); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
