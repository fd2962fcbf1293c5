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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// WriteTrace dumps a run report as a zstd-compressed text stream,
// one line per field, counters sorted by name so that runs diff
// cleanly.
func WriteTrace(w io.Writer, run *Run) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(enc)
	fmt.Fprintf(bw, "gaston-trace %s\n", run.ID)
	fmt.Fprintf(bw, "verdict %s\n", run.Verdict)
	fmt.Fprintf(bw, "elapsed %s\n", run.Elapsed)
	names := maps.Keys(run.Counters)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(bw, "counter %s %d\n", name, run.Counters[name])
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadTraceCounters decompresses a trace stream and returns its
// counters.
func ReadTraceCounters(r io.Reader) (map[string]uint64, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	counters := make(map[string]uint64)
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 || fields[0] != "counter" {
			continue
		}
		v, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("gaston: bad counter line %q: %w", sc.Text(), err)
		}
		counters[fields[1]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return counters, nil
}
