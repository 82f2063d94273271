package ingestmetrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const microsPerMilli = 1000.0

var errTimingOutOfRange = errors.New("timing value out of range")

// Normalize resolves the captured millisecond and microsecond variants of a
// category into milliseconds. An empty string means the variant was not captured.
// Microseconds win when both are present; neither present yields 0.
func Normalize(ms, us string) (float64, error) {
	switch {
	case us != "":
		v, err := parseTiming(us)
		if err != nil {
			return 0, err
		}

		return v / microsPerMilli, nil
	case ms != "":
		return parseTiming(ms)
	default:
		return 0, nil
	}
}

func parseTiming(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse timing %q: %w", s, err)
	}

	if math.IsInf(v, 0) || math.IsNaN(v) || v < 0 {
		return 0, fmt.Errorf("%w: %q", errTimingOutOfRange, s)
	}

	return v, nil
}
