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

package gaston

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/gastonlogic/gaston/automaton"
	"github.com/gastonlogic/gaston/symbol"
)

// FormulaSpec is the on-disk description of a compiled formula: an
// automaton tree over a fixed number of symbol tracks.
type FormulaSpec struct {
	Tracks  int       `json:"tracks"`
	Ground  bool      `json:"ground,omitempty"`
	Formula *NodeSpec `json:"formula"`
}

// NodeSpec is one vertex of the described tree. Op selects the
// variant; the remaining fields apply per Op.
type NodeSpec struct {
	Op string `json:"op"` // "base", "and", "or", "not", "exists"

	// and/or
	Left  *NodeSpec `json:"left,omitempty"`
	Right *NodeSpec `json:"right,omitempty"`

	// not/exists
	Of *NodeSpec `json:"of,omitempty"`

	// exists
	Var int `json:"var,omitempty"`

	// base
	Tracks  []int      `json:"tracks,omitempty"`
	States  uint32     `json:"states,omitempty"`
	Initial []uint32   `json:"initial,omitempty"`
	Final   []uint32   `json:"final,omitempty"`
	Edges   []EdgeSpec `json:"edges,omitempty"`
}

// EdgeSpec is one base-automaton transition. The label is one
// character per track: '0', '1', or 'X' for don't-care.
type EdgeSpec struct {
	From  uint32 `json:"from"`
	Label string `json:"label"`
	To    uint32 `json:"to"`
}

// LoadFormula reads a YAML formula description.
func LoadFormula(path string) (*FormulaSpec, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	spec := &FormulaSpec{}
	if err := yaml.Unmarshal(buf, spec); err != nil {
		return nil, fmt.Errorf("gaston: parsing formula %s: %w", path, err)
	}
	return spec, nil
}

// BuildEngine compiles a formula description into a decision engine.
func BuildEngine(spec *FormulaSpec, cfg *Config) (*Engine, error) {
	if spec.Formula == nil {
		return nil, fmt.Errorf("gaston: formula description has no root node")
	}
	if spec.Tracks <= 0 {
		return nil, fmt.Errorf("gaston: formula needs a positive track count, got %d", spec.Tracks)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	search, err := cfg.searchOrder()
	if err != nil {
		return nil, err
	}
	env := automaton.NewEnv(spec.Tracks)
	env.Search = search
	env.Prune = cfg.PruneFixpoints
	env.UseContinuations = cfg.UseContinuations

	root, err := buildNode(env, spec, spec.Formula)
	if err != nil {
		return nil, err
	}
	return &Engine{Root: env, Aut: root, Ground: spec.Ground}, nil
}

func buildNode(env *automaton.Env, spec *FormulaSpec, n *NodeSpec) (automaton.Node, error) {
	switch n.Op {
	case "base":
		edges := make([]automaton.Edge, 0, len(n.Edges))
		for _, e := range n.Edges {
			label, err := parseLabel(env, spec.Tracks, n.Tracks, e.Label)
			if err != nil {
				return nil, err
			}
			edges = append(edges, automaton.Edge{From: e.From, Label: label, To: e.To})
		}
		return automaton.NewBase(env, n.Tracks, n.States, n.Initial, n.Final, edges)
	case "and", "or":
		if n.Left == nil || n.Right == nil {
			return nil, fmt.Errorf("gaston: %q node needs left and right children", n.Op)
		}
		left, err := buildNode(env, spec, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildNode(env, spec, n.Right)
		if err != nil {
			return nil, err
		}
		if n.Op == "and" {
			return automaton.NewIntersection(env, left, right), nil
		}
		return automaton.NewUnion(env, left, right), nil
	case "not":
		if n.Of == nil {
			return nil, fmt.Errorf("gaston: %q node needs a child", n.Op)
		}
		child, err := buildNode(env, spec, n.Of)
		if err != nil {
			return nil, err
		}
		return automaton.NewComplement(env, child), nil
	case "exists":
		if n.Of == nil {
			return nil, fmt.Errorf("gaston: %q node needs a child", n.Op)
		}
		if n.Var < 0 || n.Var >= spec.Tracks {
			return nil, fmt.Errorf("gaston: projected track %d outside 0..%d", n.Var, spec.Tracks-1)
		}
		child, err := buildNode(env, spec, n.Of)
		if err != nil {
			return nil, err
		}
		return automaton.NewProjection(env, child, n.Var), nil
	}
	return nil, fmt.Errorf("gaston: unknown node op %q", n.Op)
}

// parseLabel reads a per-track label string. The label may cover
// either all formula tracks or just the base automaton's own tracks,
// in declaration order.
func parseLabel(env *automaton.Env, formulaTracks int, baseTracks []int, label string) (*symbol.Symbol, error) {
	vals := make([]symbol.Value, formulaTracks)
	for i := range vals {
		vals[i] = symbol.DontCare
	}
	assign := func(track int, c byte) error {
		switch c {
		case '0':
			vals[track] = symbol.Zero
		case '1':
			vals[track] = symbol.One
		case 'X', 'x':
			vals[track] = symbol.DontCare
		default:
			return fmt.Errorf("gaston: bad label character %q in %q", c, label)
		}
		return nil
	}
	switch len(label) {
	case formulaTracks:
		for i := 0; i < len(label); i++ {
			if err := assign(i, label[i]); err != nil {
				return nil, err
			}
		}
	case len(baseTracks):
		for i := 0; i < len(label); i++ {
			if err := assign(baseTracks[i], label[i]); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("gaston: label %q covers neither %d formula tracks nor %d base tracks",
			label, formulaTracks, len(baseTracks))
	}
	return env.Syms.New(vals), nil
}
