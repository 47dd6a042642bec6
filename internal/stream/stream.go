// Package stream derives independent, reproducible random streams from one top-level seed.
//
// Every stochastic consumer (a simulated trial, a projection set) gets its own PCG generator keyed
// by (seed, domain, ids...). Results therefore do not depend on worker count or scheduling order.
package stream

import "math/rand/v2"

// Domain separates consumers that would otherwise share ids
type Domain uint64

const (
	Trials      Domain = 0x7472_6961_6c73_0001
	Projections Domain = 0x7072_6f6a_6563_0002
)

// New returns a generator for the given seed, domain and ids
func New(seed uint64, domain Domain, ids ...int) *rand.Rand {
	key := mix(uint64(domain))
	for _, id := range ids {
		key = mix(key ^ uint64(id))
	}
	return rand.New(rand.NewPCG(seed, key))
}

// splitmix64 finalizer
func mix(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
