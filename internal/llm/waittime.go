package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// compact Go-style tokens: "20s", "350ms", "1m30s", "6.5s"
	compactDurationPattern = regexp.MustCompile(`\b(?:\d+(?:\.\d+)?(?:ms|us|µs|ns|h|m|s))+\b`)
	// spelled-out tokens: "2 seconds", "1.5 minutes", "500 milliseconds"
	wordDurationPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(milliseconds?|seconds?|secs?|minutes?|mins?|hours?|hrs?)\b`)
)

// ParseWaitTime extracts the first duration-like token from a provider error
// message. It returns false when the text carries no usable duration.
func ParseWaitTime(message string) (time.Duration, bool) {
	compact := compactDurationPattern.FindStringIndex(message)
	word := wordDurationPattern.FindStringSubmatchIndex(message)

	switch {
	case compact == nil && word == nil:
		return 0, false
	case word == nil || (compact != nil && compact[0] <= word[0]):
		d, err := time.ParseDuration(message[compact[0]:compact[1]])
		if err != nil || d <= 0 {
			return 0, false
		}
		return d, true
	default:
		value, err := strconv.ParseFloat(message[word[2]:word[3]], 64)
		if err != nil || value <= 0 {
			return 0, false
		}
		unit := wordUnit(message[word[4]:word[5]])
		return time.Duration(value * float64(unit)), true
	}
}

func wordUnit(unit string) time.Duration {
	unit = strings.ToLower(unit)
	switch {
	case strings.HasPrefix(unit, "milli"):
		return time.Millisecond
	case strings.HasPrefix(unit, "min"):
		return time.Minute
	case strings.HasPrefix(unit, "h"):
		return time.Hour
	default:
		return time.Second
	}
}
