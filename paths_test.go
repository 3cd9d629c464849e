// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Path validation", func() {
	It("builds the documented directory layout", func() {
		path := mbp.DayFilePath("/data", mbp.Kind_Trades, "XXBTZUSD", "04_12_2024.bin")
		Expect(path).To(Equal("/data/trades/XXBTZUSD/04_12_2024.bin"))
	})

	It("accepts a well-formed, recognized path", func() {
		err := mbp.ValidateDataPath("/data", mbp.Kind_Snapshots, "/data/snapshots/XXBTZUSD/04_12_2024.bin")
		Expect(err).To(BeNil())
	})

	It("rejects an unrecognized feedcode", func() {
		err := mbp.ValidateDataPath("/data", mbp.Kind_Snapshots, "/data/snapshots/NOTAFEED/04_12_2024.bin")
		Expect(err).To(MatchError(mbp.ErrInvalidSymbol))
	})

	It("rejects a non-.bin suffix", func() {
		err := mbp.ValidateDataPath("/data", mbp.Kind_Trades, "/data/trades/XXBTZUSD/04_12_2024.txt")
		Expect(err).To(MatchError(mbp.ErrMissingFile))
	})
})
