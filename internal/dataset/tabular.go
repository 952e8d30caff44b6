// Package dataset loads metric objects from the flat-file formats the
// original engine's metricdata classes read: a header line of field
// counts followed by one row per line. Parsing and normalization are
// kept out of the detection core entirely; dataset code never touches
// pkg/detect, pkg/pivot, or pkg/triangleindex.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/umad/orca/pkg/metricobj"
)

// LoadTabularOptions configures LoadTabular.
type LoadTabularOptions struct {
	// MaxObjects caps how many rows are read; 0 means unlimited.
	MaxObjects int
	// Dimension caps how many fields per row are kept; 0 means whatever
	// the header declares.
	Dimension int
}

// LoadTabular reads the "dim num" header, then num lines of dim
// whitespace-separated floats followed by a trailing 0/1 tag (1 =
// normal), producing one metricobj.Object per row with a []float64
// payload. Grounded in DoubleVectorClass.cpp's loadData.
func LoadTabular(r io.Reader, opts LoadTabularOptions) ([]*metricobj.Object, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("dataset: empty tabular file")
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("dataset: malformed header %q, want \"dim num\"", scanner.Text())
	}
	dim, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("dataset: invalid dimension in header: %w", err)
	}
	num, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("dataset: invalid row count in header: %w", err)
	}
	if opts.Dimension > 0 && opts.Dimension < dim {
		dim = opts.Dimension
	}
	if opts.MaxObjects > 0 && opts.MaxObjects < num {
		num = opts.MaxObjects
	}

	objects := make([]*metricobj.Object, 0, num)
	id := 0
	for len(objects) < num && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < dim+1 {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want at least %d", id, len(fields), dim+1)
		}
		row := make([]float64, dim)
		for j := 0; j < dim; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d field %d: %w", id, j, err)
			}
			row[j] = v
		}
		tag, err := strconv.Atoi(fields[dim])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d tag: %w", id, err)
		}
		objects = append(objects, &metricobj.Object{ID: id, Payload: row, IsNormal: tag == 1})
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading tabular file: %w", err)
	}
	return objects, nil
}
