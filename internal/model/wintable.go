// Package model describes the type space of a growth simulation: how many
// vertex types exist, what they are called, and which ordered parent pairs
// let the first parent's type win.
package model

// Type identifies a vertex type in [0, T).
type Type int

// Pair is an ordered (first parent, second parent) type pair. It encodes
// as a two-element array in both JSON and YAML.
type Pair struct {
	First  Type
	Second Type
}

// WinTable is the static first-parent-wins relation over T types.
// Pairs that were not listed credit the second parent.
type WinTable struct {
	n     int
	first []bool // row-major n*n
}

// NewWinTable builds a table for typeCount types where exactly the listed
// pairs are first-parent wins. Duplicate pairs are accepted.
func NewWinTable(typeCount int, firstWins []Pair) (*WinTable, error) {
	if typeCount < 1 {
		return nil, Configf("type_count", "must be at least 1, got %d", typeCount)
	}
	t := &WinTable{
		n:     typeCount,
		first: make([]bool, typeCount*typeCount),
	}
	for i, p := range firstWins {
		if !t.valid(p.First) || !t.valid(p.Second) {
			return nil, Configf("first_wins", "pair %d (%d,%d) references a type outside [0,%d)", i, p.First, p.Second, typeCount)
		}
		t.first[int(p.First)*t.n+int(p.Second)] = true
	}
	return t, nil
}

// TypeCount returns the number of types.
func (t *WinTable) TypeCount() int {
	return t.n
}

// FirstWins reports whether a first parent of type a beats a second parent
// of type b. Out-of-range types never win.
func (t *WinTable) FirstWins(a, b Type) bool {
	if !t.valid(a) || !t.valid(b) {
		return false
	}
	return t.first[int(a)*t.n+int(b)]
}

// Winner returns the type the child takes for parents (a, b).
func (t *WinTable) Winner(a, b Type) Type {
	if t.FirstWins(a, b) {
		return a
	}
	return b
}

// Pairs returns the first-win pairs in row-major order.
func (t *WinTable) Pairs() []Pair {
	var pairs []Pair
	for a := 0; a < t.n; a++ {
		for b := 0; b < t.n; b++ {
			if t.first[a*t.n+b] {
				pairs = append(pairs, Pair{First: Type(a), Second: Type(b)})
			}
		}
	}
	return pairs
}

func (t *WinTable) valid(x Type) bool {
	return x >= 0 && int(x) < t.n
}
