package starfield

import "github.com/lucasb-eyer/go-colorful"

// Class is a stellar color class.
type Class struct {
	Name       string
	Cumulative float64 // probability that a star is this class or rarer
	Color      colorful.Color
}

// Classes is the cumulative probability table, rarest first. The last
// entry's threshold is 1 so every draw resolves to a class.
var Classes = []Class{
	{"O", 0.0000003, mustHex("#9bb0ff")},
	{"B", 0.0013, mustHex("#aabfff")},
	{"A", 0.0073, mustHex("#cad7ff")},
	{"F", 0.0373, mustHex("#f8f7ff")},
	{"G", 0.1133, mustHex("#fff4e8")},
	{"K", 0.2333, mustHex("#ffd2a1")},
	{"M", 1, mustHex("#ffa07a")},
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClassFor maps a uniform draw u in [0, 1) to an index into Classes.
func ClassFor(u float64) int {
	for i, c := range Classes[:len(Classes)-1] {
		if u < c.Cumulative {
			return i
		}
	}
	return len(Classes) - 1
}

// Probability is the chance that a single draw lands in class i.
func Probability(i int) float64 {
	if i == 0 {
		return Classes[0].Cumulative
	}
	return Classes[i].Cumulative - Classes[i-1].Cumulative
}
