// Copyright (c) 2024 Neomantra Corp

package mbp

import (
	"math"
	"time"
	"unicode/utf8"
)

// float32bits/float32frombits/float64bits/float64frombits centralize the
// math<->binary bit-twiddling used by messages.go's wire codec.
func float32bits(f float32) uint32        { return math.Float32bits(f) }
func float32frombits(b uint32) float32    { return math.Float32frombits(b) }
func float64bits(f float64) uint64        { return math.Float64bits(f) }
func float64frombits(b uint64) float64    { return math.Float64frombits(b) }
func utf8ValidImpl(b []byte) bool         { return utf8.Valid(b) }

// MillisToSeconds truncates (integer divides) an API millisecond timestamp
// to whole seconds, the earliest point deltas are aggregated at per §4.5.
func MillisToSeconds(millis int64) uint64 {
	return uint64(millis / 1000)
}

// TimeToYMD returns YYYYMMDD for t in t's own location. A zero time returns 0.
// From https://github.com/neomantra/ymdflag/blob/main/ymdflag.go#L49
func TimeToYMD(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	return uint32(10000*t.Year() + 100*int(t.Month()) + t.Day())
}

// YMDFileName returns the "MM_DD_YYYY.bin" file name used under
// trades/<feedcode>/ and snapshots/<feedcode>/, see paths.go.
func YMDFileName(t time.Time) string {
	return t.Format("01_02_2006") + ".bin"
}
