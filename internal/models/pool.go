package models

// LineupPool collects built lineups in insertion order, rejecting repeats of a competitor set
type LineupPool struct {
	lineups    []Lineup
	signatures map[string]int
}

func NewLineupPool() *LineupPool {
	return &LineupPool{signatures: make(map[string]int)}
}

// Add appends l and assigns its ID (1-based insertion position). It returns false, leaving
// the pool unchanged, when the pool already holds the same competitor set.
func (p *LineupPool) Add(l Lineup) bool {
	sig := l.Signature()
	if _, dup := p.signatures[sig]; dup {
		return false
	}
	l.ID = len(p.lineups) + 1
	p.signatures[sig] = l.ID
	p.lineups = append(p.lineups, l)
	return true
}

func (p *LineupPool) Len() int {
	return len(p.lineups)
}

// Lineups returns the pooled lineups in insertion order
func (p *LineupPool) Lineups() []Lineup {
	out := make([]Lineup, len(p.lineups))
	copy(out, p.lineups)
	return out
}
