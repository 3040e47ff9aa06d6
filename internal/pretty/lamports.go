package pretty

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

var solInLamports = big.NewInt(1e9)

var boundary = big.NewInt(1e4)
var solBoundary = new(big.Int).Div(solInLamports, boundary)

// Lamports implements a String() formatter that dynamically adjusts to a
// closer denomination based on the value.
type Lamports uint64

func (l Lamports) String() string {
	i := new(big.Int).SetUint64(uint64(l))
	unit := "lamports"
	denom := big.NewInt(1)

	if i.CmpAbs(solBoundary) >= 0 {
		unit = "sol"
		denom = solInLamports
	}
	s := new(big.Rat).SetFrac(i, denom).FloatString(4)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		s = "0"
	}
	return s + " " + unit
}

// ParseLamports takes a string like "2 sol" and converts it to the
// lamports equivalent.
func ParseLamports(s string) (uint64, error) {
	var splitPos int
	for pos, ch := range s {
		if !unicode.IsNumber(ch) && ch != '.' {
			splitPos = pos
			break
		}
	}

	if splitPos == 0 {
		// Must be raw lamports
		var r uint64
		if _, err := fmt.Sscanf(s, "%d", &r); err != nil {
			return 0, fmt.Errorf("failed to parse lamports value: %q", s)
		}
		return r, nil
	}

	number, unit := s[:splitPos], s[splitPos:]

	n, ok := new(big.Rat).SetString(number)
	if !ok {
		return 0, fmt.Errorf("failed to parse lamports value: %q", s)
	}

	mul := new(big.Rat).SetInt64(1)
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "lamports", "lamport":
	case "sol":
		mul.SetInt(solInLamports)
	default:
		return 0, fmt.Errorf("failed to parse lamports unit: %q", s)
	}

	n.Mul(n, mul)
	if !n.IsInt() {
		return 0, fmt.Errorf("lamports value has a fractional remainder: %q", s)
	}
	return n.Num().Uint64(), nil
}
