package models

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

// SalaryEntry is one row of the salary pool
type SalaryEntry struct {
	Name   string `json:"name"`
	Salary int    `json:"salary"`
}

// SalaryPool maps a competitor name to its budget cost
type SalaryPool map[string]int

// NewSalaryPool indexes salary rows by name. Later rows for the same name win.
func NewSalaryPool(entries []SalaryEntry) SalaryPool {
	pool := make(SalaryPool, len(entries))
	for _, e := range entries {
		pool[strings.TrimSpace(e.Name)] = e.Salary
	}
	return pool
}

// ProjectionEntry is one competitor's projected score and cost in a projection set
type ProjectionEntry struct {
	Competitor string  `json:"competitor"`
	PairingID  string  `json:"pairing_id"`
	Projection float64 `json:"projection"`
	Salary     int     `json:"salary"`
}

// ProjectionSet is the input of one optimizer run
type ProjectionSet struct {
	Index        int               `json:"index"`
	TrialIndices []int             `json:"trial_indices"`
	Entries      []ProjectionEntry `json:"entries"`
}

// LineupPlayer is a competitor selected into a lineup
type LineupPlayer struct {
	Name       string  `json:"name"`
	PairingID  string  `json:"pairing_id"`
	Salary     int     `json:"salary"`
	Projection float64 `json:"projection"`
}

// Lineup is a constraint-satisfying selection of competitors
type Lineup struct {
	ID              int            `json:"id"`
	Key             uuid.UUID      `json:"key"`
	ProjectionSet   int            `json:"projection_set"`
	Players         []LineupPlayer `json:"players"`
	TotalProjection float64        `json:"total_projection"`
	TotalSalary     int            `json:"total_salary"`
}

var lineupNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tennis-sim/lineup"))

// NewLineup validates the selection and computes its totals.
// It fails with ErrInvalidLineup rather than returning a lineup that breaks a constraint.
func NewLineup(players []LineupPlayer, salaryCap, rosterSize int) (Lineup, error) {
	if len(players) != rosterSize {
		return Lineup{}, fmt.Errorf("%w: %d players, roster size is %d", ErrInvalidLineup, len(players), rosterSize)
	}

	pairings := make(map[string]string, len(players))
	names := make(map[string]struct{}, len(players))
	projections := make([]float64, len(players))
	salary := 0
	for i, p := range players {
		if _, dup := names[p.Name]; dup {
			return Lineup{}, fmt.Errorf("%w: %s selected twice", ErrInvalidLineup, p.Name)
		}
		names[p.Name] = struct{}{}
		if other, dup := pairings[p.PairingID]; dup {
			return Lineup{}, fmt.Errorf("%w: %s and %s share pairing %s", ErrInvalidLineup, other, p.Name, p.PairingID)
		}
		pairings[p.PairingID] = p.Name
		projections[i] = p.Projection
		salary += p.Salary
	}
	if salary > salaryCap {
		return Lineup{}, fmt.Errorf("%w: salary %d exceeds cap %d", ErrInvalidLineup, salary, salaryCap)
	}

	owned := make([]LineupPlayer, len(players))
	copy(owned, players)
	l := Lineup{
		Players:         owned,
		TotalProjection: floats.Sum(projections),
		TotalSalary:     salary,
	}
	l.Key = uuid.NewSHA1(lineupNamespace, []byte(l.Signature()))
	return l, nil
}

// Signature is an order-independent identity of the competitor set
func (l Lineup) Signature() string {
	names := l.Names()
	sort.Strings(names)
	return strings.Join(names, "|")
}

// Names lists the lineup's competitors in selection order
func (l Lineup) Names() []string {
	names := make([]string, len(l.Players))
	for i, p := range l.Players {
		names[i] = p.Name
	}
	return names
}

// Overlap counts competitors shared with other
func (l Lineup) Overlap(other Lineup) int {
	set := make(map[string]struct{}, len(other.Players))
	for _, p := range other.Players {
		set[p.Name] = struct{}{}
	}
	n := 0
	for _, p := range l.Players {
		if _, ok := set[p.Name]; ok {
			n++
		}
	}
	return n
}

// FinalLineupSet is the diversity-filtered output, ordered by total projection
type FinalLineupSet struct {
	Requested int      `json:"requested"`
	Lineups   []Lineup `json:"lineups"`
}

// Partial reports whether fewer lineups than requested satisfied the diversity rule
func (s FinalLineupSet) Partial() bool {
	return len(s.Lineups) < s.Requested
}
