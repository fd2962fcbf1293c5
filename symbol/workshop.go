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

package symbol

import (
	"github.com/dchest/siphash"
)

// siphash keys for the intern table; any fixed pair works, the hash
// only has to be stable within one workshop lifetime.
const (
	hashK0 = 0x676173746f6e2121
	hashK1 = 0x73796d626f6c7773
)

// Workshop interns symbols of a fixed arity. The zero symbol (all
// tracks DontCare) is minted eagerly and shared.
type Workshop struct {
	arity int
	zero  *Symbol
	table map[uint64][]*Symbol
}

// NewWorkshop returns a workshop for symbols with the given number
// of tracks.
func NewWorkshop(arity int) *Workshop {
	w := &Workshop{
		arity: arity,
		table: make(map[uint64][]*Symbol),
	}
	all := make([]Value, arity)
	for i := range all {
		all[i] = DontCare
	}
	w.zero = w.intern(all)
	return w
}

// Arity returns the track count of symbols minted by this workshop.
func (w *Workshop) Arity() int { return w.arity }

// Zero returns the shared all-don't-care symbol.
func (w *Workshop) Zero() *Symbol { return w.zero }

// New interns a symbol with the given track values. The slice is
// copied; len(tracks) must equal the workshop arity.
func (w *Workshop) New(tracks []Value) *Symbol {
	if len(tracks) != w.arity {
		panic("symbol: track count does not match workshop arity")
	}
	cp := make([]Value, len(tracks))
	copy(cp, tracks)
	return w.intern(cp)
}

// ProjectBy returns the symbol with track v replaced by DontCare.
func (w *Workshop) ProjectBy(s *Symbol, v int) *Symbol {
	return w.WithValue(s, v, DontCare)
}

// WithValue returns the symbol equal to s except that track v
// carries val.
func (w *Workshop) WithValue(s *Symbol, v int, val Value) *Symbol {
	if v < 0 || v >= w.arity {
		panic("symbol: track index out of range")
	}
	if s.Track(v) == val {
		return s
	}
	cp := make([]Value, w.arity)
	for i := range cp {
		cp[i] = s.Track(i)
	}
	cp[v] = val
	return w.intern(cp)
}

// RestrictTo returns the symbol that agrees with s on the listed
// tracks and is DontCare everywhere else.
func (w *Workshop) RestrictTo(s *Symbol, vars []int) *Symbol {
	cp := make([]Value, w.arity)
	for i := range cp {
		cp[i] = DontCare
	}
	for _, v := range vars {
		if v >= 0 && v < w.arity {
			cp[v] = s.Track(v)
		}
	}
	return w.intern(cp)
}

func (w *Workshop) intern(tracks []Value) *Symbol {
	buf := make([]byte, len(tracks))
	for i, v := range tracks {
		buf[i] = byte(v)
	}
	h := siphash.Hash(hashK0, hashK1, buf)
	for _, s := range w.table[h] {
		if len(s.tracks) != len(tracks) {
			continue
		}
		same := true
		for i := range tracks {
			if s.tracks[i] != tracks[i] {
				same = false
				break
			}
		}
		if same {
			return s
		}
	}
	s := &Symbol{tracks: tracks, hash: h}
	w.table[h] = append(w.table[h], s)
	return s
}
