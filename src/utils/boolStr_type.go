package utils

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// BoolStr is a pflag.Value that accepts the usual spellings of a boolean
// (true/false, 1/0, yes/no, ...) instead of cobra's bare --flag toggle.

type BoolStr bool

var trueSpellings = []string{"true", "1", "t", "y", "yes"}
var falseSpellings = []string{"false", "0", "f", "n", "no"}

func (b *BoolStr) Set(s string) error {
	s = strings.ToLower(s)
	if !slices.Contains(trueSpellings, s) && !slices.Contains(falseSpellings, s) {
		return fmt.Errorf("invalid boolean value: %q (valid values: true, false)", s)
	}
	*b = BoolStr(slices.Contains(trueSpellings, s))
	return nil
}

func (b *BoolStr) Type() string {
	return "boolean"
}

func (b *BoolStr) String() string {
	if *b {
		return "true"
	}
	return "false"
}
