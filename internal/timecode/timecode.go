// Package timecode converts between playback seconds and the "hh:mm:ss" wire format
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zero timecode used for invalid input
const Zero = "00:00:00"

// FromSeconds format seconds as hh:mm:ss, hours are not wrapped at 24
func FromSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return Zero
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ToSeconds parse a hh:mm:ss string into total seconds.
//
// It never fails: malformed input yields 0.
func ToSeconds(text string) float64 {
	total, _ := parse(text)
	return float64(total)
}

// Valid reports whether text is a well formed hh:mm:ss value
func Valid(text string) bool {
	_, ok := parse(text)
	return ok
}

func parse(text string) (int64, bool) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, false
	}

	var total int64
	for _, part := range parts {
		// unsigned parse rejects explicit signs
		u, err := strconv.ParseUint(part, 10, 63)
		if err != nil {
			return 0, false
		}
		n := int64(u)
		if total > (math.MaxInt64-n)/60 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
