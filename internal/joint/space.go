// Package joint provides row-major indexing over the joint action space
// of a normal-form game: conversion between a joint action profile (one
// action index per player) and its flat tensor offset.
package joint

// Space is the joint action space defined by per-player action counts.
// The flat ordering is row-major: the last player's action varies fastest.
type Space struct {
	counts  []int
	strides []int
	size    int
}

func NewSpace(actionCounts []int) Space {
	counts := make([]int, len(actionCounts))
	copy(counts, actionCounts)

	strides := make([]int, len(counts))
	size := 1
	for i := len(counts) - 1; i >= 0; i-- {
		strides[i] = size
		size *= counts[i]
	}

	return Space{counts: counts, strides: strides, size: size}
}

// Size returns the number of joint action profiles, ∏ actionCounts[i].
func (s Space) Size() int {
	return s.size
}

func (s Space) NumPlayers() int {
	return len(s.counts)
}

func (s Space) ActionCounts() []int {
	counts := make([]int, len(s.counts))
	copy(counts, s.counts)
	return counts
}

// Contains reports whether profile is a valid joint action profile.
func (s Space) Contains(profile []int) bool {
	if len(profile) != len(s.counts) {
		return false
	}
	for i, a := range profile {
		if a < 0 || a >= s.counts[i] {
			return false
		}
	}
	return true
}

// Index returns the flat offset of profile. The profile must be valid.
func (s Space) Index(profile []int) int {
	idx := 0
	for i, a := range profile {
		idx += a * s.strides[i]
	}
	return idx
}

// Profile writes the joint action profile at flat offset idx into dst,
// which must have length NumPlayers, and returns dst.
func (s Space) Profile(idx int, dst []int) []int {
	for i, stride := range s.strides {
		dst[i] = idx / stride
		idx %= stride
	}
	return dst
}

// SwapIndex returns the flat offset of the profile at idx with player's
// action replaced by action. The profile itself is never materialized.
func (s Space) SwapIndex(idx, player, action int) int {
	current := (idx / s.strides[player]) % s.counts[player]
	return idx + (action-current)*s.strides[player]
}

// Each calls fn for every flat offset and its profile. The profile slice
// is reused across calls and must not be retained.
func (s Space) Each(fn func(idx int, profile []int)) {
	profile := make([]int, len(s.counts))
	for idx := 0; idx < s.size; idx++ {
		fn(idx, s.Profile(idx, profile))
	}
}
