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

	"github.com/gastonlogic/gaston/term"
)

// Config holds the tunable engine options. The zero value matches
// the compiled-in defaults: BFS worklists, no pruning, no deferred
// evaluation.
type Config struct {
	// Search is the fixpoint worklist order, "bfs" or "dfs".
	Search string `json:"search,omitempty"`
	// PruneFixpoints enables shrinking fixpoints during membership
	// tests.
	PruneFixpoints bool `json:"prune_fixpoints,omitempty"`
	// UseContinuations defers right operands of decided binary nodes.
	UseContinuations bool `json:"use_continuations,omitempty"`
	// TracePath, when set, receives a compressed dump of the run
	// counters.
	TracePath string `json:"trace_path,omitempty"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Config{}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("gaston: parsing config %s: %w", path, err)
	}
	if _, err := c.searchOrder(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) searchOrder() (term.SearchOrder, error) {
	switch c.Search {
	case "", "bfs":
		return term.BFS, nil
	case "dfs":
		return term.DFS, nil
	}
	return term.BFS, fmt.Errorf("gaston: unknown search order %q", c.Search)
}
