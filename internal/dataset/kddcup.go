package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/umad/orca/pkg/metricobj"
)

// KddCup99Row is the payload LoadKddCup99 attaches to each object: the
// numeric fields followed by the categorical fields, kept in one slice
// so distancefn.EuclideanHamming can be called directly against
// Data[0:NumLen] and Data[NumLen:NumLen+CateLen].
type KddCup99Row struct {
	Data    []float64
	NumLen  int
	CateLen int
}

// LoadKddCup99Options configures LoadKddCup99.
type LoadKddCup99Options struct {
	MaxObjects int
	NumLen     int
	CateLen    int
}

// LoadKddCup99 reads a "dim num" header followed by num rows of
// NumLen+CateLen whitespace-separated fields and a trailing 0/1 tag,
// producing KddCup99Row payloads. Grounded in KddCup99.cpp's loadData,
// which reads the same shape but splits it into separate numeric and
// categorical arrays; this keeps both halves in one slice since Go slices
// make the split trivial at distance-computation time.
func LoadKddCup99(r io.Reader, opts LoadKddCup99Options) ([]*metricobj.Object, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("dataset: empty kddcup99 file")
	}
	header := strings.Fields(scanner.Text())
	if len(header) < 2 {
		return nil, fmt.Errorf("dataset: malformed header %q, want \"dim num\"", scanner.Text())
	}
	num, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, fmt.Errorf("dataset: invalid row count in header: %w", err)
	}
	if opts.MaxObjects > 0 && opts.MaxObjects < num {
		num = opts.MaxObjects
	}
	fieldCount := opts.NumLen + opts.CateLen
	if fieldCount <= 0 {
		return nil, fmt.Errorf("dataset: NumLen+CateLen must be positive")
	}

	objects := make([]*metricobj.Object, 0, num)
	id := 0
	for len(objects) < num && scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < fieldCount+1 {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want at least %d", id, len(fields), fieldCount+1)
		}
		data := make([]float64, fieldCount)
		for j := 0; j < fieldCount; j++ {
			v, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d field %d: %w", id, j, err)
			}
			data[j] = v
		}
		tag, err := strconv.Atoi(fields[fieldCount])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d tag: %w", id, err)
		}
		objects = append(objects, &metricobj.Object{
			ID:       id,
			Payload:  KddCup99Row{Data: data, NumLen: opts.NumLen, CateLen: opts.CateLen},
			IsNormal: tag == 1,
		})
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading kddcup99 file: %w", err)
	}
	return objects, nil
}
