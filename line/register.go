package line

import "strings"

var registerNames = map[string]Register{
	"A": RegA, "B": RegB, "C": RegC, "D": RegD,
	"E": RegE, "H": RegH, "L": RegL, "M": RegM,
}

var regPairNames = map[string]RegPair{
	"B":   PairB,
	"D":   PairD,
	"H":   PairH,
	"SP":  PairSP,
	"PSW": PairPSW,
}

// ParseRegister recognizes a single register name, case-insensitively.
func ParseRegister(s string) (Register, bool) {
	r, ok := registerNames[strings.ToUpper(strings.TrimSpace(s))]
	return r, ok
}

// ParseRegPair recognizes a register-pair name, case-insensitively.
func ParseRegPair(s string) (RegPair, bool) {
	p, ok := regPairNames[strings.ToUpper(strings.TrimSpace(s))]
	return p, ok
}

func (r Register) String() string {
	for name, v := range registerNames {
		if v == r {
			return name
		}
	}
	return "?"
}

func (p RegPair) String() string {
	for name, v := range regPairNames {
		if v == p {
			return name
		}
	}
	return "?"
}
