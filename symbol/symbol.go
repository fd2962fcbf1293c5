// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package symbol implements the track-assignment symbols that label
// transitions of the symbolic automata, plus the workshop that
// interns them.
//
// A symbol assigns each track (one per formula variable) a value in
// {0, 1, don't-care}. Symbols are immutable and hash-consed: two
// structurally equal symbols minted by the same Workshop are the
// same pointer, so callers may compare symbols by identity.
package symbol

import (
	"strings"
)

// Value is the assignment of a single track.
type Value byte

const (
	Zero     Value = iota // track carries 0
	One                   // track carries 1
	DontCare              // track is projected out
)

func (v Value) String() string {
	switch v {
	case Zero:
		return "0"
	case One:
		return "1"
	case DontCare:
		return "X"
	}
	return "?"
}

// Symbol is an immutable assignment of every track to a Value.
// Symbols must be created through a Workshop.
type Symbol struct {
	tracks []Value
	hash   uint64
}

// Arity returns the number of tracks.
func (s *Symbol) Arity() int { return len(s.tracks) }

// Track returns the value of track i. Tracks beyond the arity read
// as DontCare so that narrower automata can ignore them.
func (s *Symbol) Track(i int) Value {
	if i < 0 || i >= len(s.tracks) {
		return DontCare
	}
	return s.tracks[i]
}

// Hash returns the interning hash of the symbol.
func (s *Symbol) Hash() uint64 { return s.hash }

// Equals reports structural equality. Interned symbols compare by
// pointer first.
func (s *Symbol) Equals(o *Symbol) bool {
	if s == o {
		return true
	}
	if o == nil || len(s.tracks) != len(o.tracks) {
		return false
	}
	for i := range s.tracks {
		if s.tracks[i] != o.tracks[i] {
			return false
		}
	}
	return true
}

// Matches reports whether s is compatible with o on every track:
// a DontCare on either side matches anything. Base automata use this
// to match edge labels against projected symbols.
func (s *Symbol) Matches(o *Symbol) bool {
	n := len(s.tracks)
	if len(o.tracks) > n {
		n = len(o.tracks)
	}
	for i := 0; i < n; i++ {
		a, b := s.Track(i), o.Track(i)
		if a == DontCare || b == DontCare {
			continue
		}
		if a != b {
			return false
		}
	}
	return true
}

func (s *Symbol) String() string {
	var sb strings.Builder
	for _, v := range s.tracks {
		sb.WriteString(v.String())
	}
	return sb.String()
}
