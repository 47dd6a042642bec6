package models

import (
	"fmt"
	"strings"
)

// RosterEntry is one prepared row of the match roster: a competitor in a pairing
type RosterEntry struct {
	PairingID string  `json:"pairing_id"`
	Name      string  `json:"name"`
	Opponent  string  `json:"opponent"`
	Metrics   Metrics `json:"metrics"`
}

// Side selects one of the two competitors of a pairing
type Side int

const (
	SideA Side = iota
	SideB
)

// Other returns the opposing side
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Pairing is a scheduled match between exactly two distinct competitors
type Pairing struct {
	ID string            `json:"id"`
	A  CompetitorProfile `json:"a"`
	B  CompetitorProfile `json:"b"`
}

// Competitor returns the profile on the given side
func (p Pairing) Competitor(s Side) CompetitorProfile {
	if s == SideA {
		return p.A
	}
	return p.B
}

// NewPairing builds a pairing from the roster rows sharing one pairing id.
// Rows keep their input order: the first row becomes side A and serves first.
func NewPairing(id string, entries []RosterEntry) (Pairing, error) {
	if len(entries) != 2 {
		return Pairing{}, fmt.Errorf("%w: pairing %q has %d competitors", ErrMalformedPairing, id, len(entries))
	}
	a, err := NewCompetitorProfile(entries[0].Name, entries[0].Metrics)
	if err != nil {
		return Pairing{}, fmt.Errorf("%w: pairing %q: %v", ErrMalformedPairing, id, err)
	}
	b, err := NewCompetitorProfile(entries[1].Name, entries[1].Metrics)
	if err != nil {
		return Pairing{}, fmt.Errorf("%w: pairing %q: %v", ErrMalformedPairing, id, err)
	}
	if strings.EqualFold(a.Name, b.Name) {
		return Pairing{}, fmt.Errorf("%w: pairing %q lists %s twice", ErrMalformedPairing, id, a.Name)
	}
	return Pairing{ID: id, A: a, B: b}, nil
}

// GroupRoster splits roster rows by pairing id, preserving first-appearance order of ids and rows
func GroupRoster(entries []RosterEntry) (ids []string, groups map[string][]RosterEntry) {
	groups = make(map[string][]RosterEntry)
	for _, e := range entries {
		if _, ok := groups[e.PairingID]; !ok {
			ids = append(ids, e.PairingID)
		}
		groups[e.PairingID] = append(groups[e.PairingID], e)
	}
	return ids, groups
}
