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
package data_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/market-scout/msrank/data"
)

var _ = Describe("Signals", func() {
	Describe("SignalFromScore", func() {
		It("maps score bands to recommendations", func() {
			Expect(data.SignalFromScore(95)).To(Equal(data.Buy))
			Expect(data.SignalFromScore(80)).To(Equal(data.Buy))
			Expect(data.SignalFromScore(79)).To(Equal(data.Hold))
			Expect(data.SignalFromScore(60)).To(Equal(data.Hold))
			Expect(data.SignalFromScore(59)).To(Equal(data.Sell))
			Expect(data.SignalFromScore(0)).To(Equal(data.Sell))
		})
	})

	Describe("SignalFromUpside", func() {
		It("maps upside bands to recommendations", func() {
			Expect(data.SignalFromUpside(120)).To(Equal(data.Buy))
			Expect(data.SignalFromUpside(50)).To(Equal(data.Hold))
			Expect(data.SignalFromUpside(0)).To(Equal(data.Hold))
			Expect(data.SignalFromUpside(-0.1)).To(Equal(data.Sell))
		})
	})
})
