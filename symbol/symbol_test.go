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
	"testing"
)

func TestInterning(t *testing.T) {
	w := NewWorkshop(3)
	tests := [][]Value{
		{Zero, One, DontCare},
		{Zero, Zero, Zero},
		{One, One, One},
		{DontCare, DontCare, DontCare},
	}
	for i, tracks := range tests {
		a := w.New(tracks)
		b := w.New(tracks)
		if a != b {
			t.Errorf("case %d: %s interned twice", i, a)
		}
		if !a.Equals(b) {
			t.Errorf("case %d: %s not equal to itself", i, a)
		}
	}
	if w.New(tests[3]) != w.Zero() {
		t.Errorf("all-don't-care symbol is not the zero symbol")
	}
}

func TestProjectBy(t *testing.T) {
	w := NewWorkshop(3)
	s := w.New([]Value{Zero, One, Zero})
	p := w.ProjectBy(s, 1)
	if got, want := p.String(), "0X0"; got != want {
		t.Errorf("projected symbol is %s, want %s", got, want)
	}
	// projection of an already-projected track is the identity
	if w.ProjectBy(p, 1) != p {
		t.Errorf("re-projection returned a different symbol")
	}
	// the source is untouched
	if got, want := s.String(), "010"; got != want {
		t.Errorf("source symbol mutated to %s, want %s", got, want)
	}
}

func TestRestrictTo(t *testing.T) {
	w := NewWorkshop(4)
	s := w.New([]Value{One, Zero, One, Zero})
	tests := []struct {
		vars []int
		want string
	}{
		{[]int{0, 1, 2, 3}, "1010"},
		{[]int{0, 2}, "1X1X"},
		{[]int{3}, "XXX0"},
		{nil, "XXXX"},
	}
	for i := range tests {
		got := w.RestrictTo(s, tests[i].vars)
		if got.String() != tests[i].want {
			t.Errorf("case %d: restricted to %s, want %s", i, got, tests[i].want)
		}
	}
	if w.RestrictTo(s, nil) != w.Zero() {
		t.Errorf("restriction to no tracks is not the zero symbol")
	}
}

func TestMatches(t *testing.T) {
	w := NewWorkshop(2)
	tests := []struct {
		a, b []Value
		want bool
	}{
		{[]Value{Zero, One}, []Value{Zero, One}, true},
		{[]Value{Zero, One}, []Value{One, One}, false},
		{[]Value{Zero, DontCare}, []Value{Zero, One}, true},
		{[]Value{DontCare, DontCare}, []Value{One, Zero}, true},
		{[]Value{One, Zero}, []Value{DontCare, One}, false},
	}
	for i := range tests {
		a, b := w.New(tests[i].a), w.New(tests[i].b)
		if got := a.Matches(b); got != tests[i].want {
			t.Errorf("case %d: %s matches %s = %v, want %v", i, a, b, got, tests[i].want)
		}
		// matching is symmetric
		if got := b.Matches(a); got != tests[i].want {
			t.Errorf("case %d: %s matches %s = %v, want %v", i, b, a, got, tests[i].want)
		}
	}
}

func TestWithValue(t *testing.T) {
	w := NewWorkshop(2)
	z := w.Zero()
	s0 := w.WithValue(z, 0, Zero)
	s1 := w.WithValue(z, 0, One)
	if s0 == s1 {
		t.Fatalf("distinct assignments interned to one symbol")
	}
	if got, want := s0.String(), "0X"; got != want {
		t.Errorf("s0 = %s, want %s", got, want)
	}
	if w.WithValue(s0, 0, Zero) != s0 {
		t.Errorf("identity assignment returned a new symbol")
	}
}
