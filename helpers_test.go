// Copyright (c) 2024 Neomantra Corp

package mbp_test

import (
	"time"

	"github.com/krakenquant/mbpreplay"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Helpers", func() {
	Context("conversion", func() {
		It("converts millis to seconds by truncation", func() {
			Expect(mbp.MillisToSeconds(1000)).To(Equal(uint64(1)))
			Expect(mbp.MillisToSeconds(1999)).To(Equal(uint64(1)))
			Expect(mbp.MillisToSeconds(2000)).To(Equal(uint64(2)))
		})
		It("converts Times to YMD correctly", func() {
			Expect(mbp.TimeToYMD(time.Time{})).To(Equal(uint32(0)))
			Expect(mbp.TimeToYMD(time.Date(2024, 04, 12, 0, 0, 0, 0, time.UTC))).To(Equal(uint32(20240412)))
		})
		It("formats the YMD file name", func() {
			Expect(mbp.YMDFileName(time.Date(2024, 04, 12, 0, 0, 0, 0, time.UTC))).To(Equal("04_12_2024.bin"))
		})
	})
})
