package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/umad/orca/pkg/metricobj"
)

// LoadDNAOptions configures LoadDNA.
type LoadDNAOptions struct {
	MaxObjects int
}

// LoadDNA reads a "dim size" header followed by one "sequence tag" line
// per record, producing string payloads distancefn.DNAEdit operates on
// directly. Grounded in DNAClass.cpp's loadData.
func LoadDNA(r io.Reader, opts LoadDNAOptions) ([]*metricobj.Object, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("dataset: empty dna file")
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("dataset: malformed header %q, want \"dim size\"", scanner.Text())
	}
	size, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("dataset: invalid size in header: %w", err)
	}
	if opts.MaxObjects > 0 && opts.MaxObjects < size {
		size = opts.MaxObjects
	}

	objects := make([]*metricobj.Object, 0, size)
	id := 0
	for len(objects) < size && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want \"sequence tag\"", id, len(fields))
		}
		sequence := fields[0]
		isNormal, err := strconv.ParseBool(fields[1])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d tag: %w", id, err)
		}
		objects = append(objects, &metricobj.Object{ID: id, Payload: sequence, IsNormal: isNormal})
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading dna file: %w", err)
	}
	return objects, nil
}
