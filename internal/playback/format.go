package playback

import (
	"fmt"
	"math"
)

// Unknown is shown for a time that is not known yet
const Unknown = "--"

// FormatSeconds renders seconds as mm:ss. Minutes are not wrapped at an
// hour. Zero, negative and non-finite values render as Unknown.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return Unknown
	}
	whole := int64(seconds)
	return fmt.Sprintf("%02d:%02d", whole/60, whole%60)
}
