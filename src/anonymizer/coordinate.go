package anonymizer

import (
	"fmt"
	"math/rand"
	"strconv"
)

type coordinateStrategy struct {
	rng *rand.Rand
}

func (s *coordinateStrategy) clean(raw string) string {
	return raw
}

// produce moves the point by a uniformly random offset in [-0.5, +0.5)
// degrees at 0.001 resolution and keeps three decimals, enough to stay in
// the same town without pinpointing the original.
func (s *coordinateStrategy) produce(norm string, _ map[string]string) (string, *Warning) {
	val, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return norm, &Warning{
			Kind:   BAD_COORDINATE_WARNING,
			Detail: fmt.Sprintf("cannot parse coordinate %q", norm),
		}
	}
	offset := float64(s.rng.Intn(1000)-500) * 0.001
	return strconv.FormatFloat(val+offset, 'f', 3, 64), nil
}
