package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/umad/orca/pkg/metricobj"
)

// StockSeries is the payload LoadStock attaches to each object: an
// identified price series, the shape distancefn.Pearson compares.
type StockSeries struct {
	StockID   int
	StockName string
	Prices    []float64
}

// LoadStockOptions configures LoadStock.
type LoadStockOptions struct {
	MaxObjects int
	Dimension  int
}

// LoadStock reads a "dim num" header followed by num lines of
// "id name price1 price2 ... priceN", producing StockSeries payloads.
// Fields after the prices are ignored; no class tag is read, and every
// stock object is marked normal. Grounded in Stock.cpp's loadData.
func LoadStock(r io.Reader, opts LoadStockOptions) ([]*metricobj.Object, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("dataset: empty stock file")
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
		if len(fields) < dim+2 {
			return nil, fmt.Errorf("dataset: row %d has %d fields, want at least %d", id, len(fields), dim+2)
		}
		stockID, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("dataset: row %d stock id: %w", id, err)
		}
		name := fields[1]
		prices := make([]float64, dim)
		for j := 0; j < dim; j++ {
			v, err := strconv.ParseFloat(fields[2+j], 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d price %d: %w", id, j, err)
			}
			prices[j] = v
		}
		objects = append(objects, &metricobj.Object{
			ID:       id,
			Payload:  StockSeries{StockID: stockID, StockName: name, Prices: prices},
			IsNormal: true,
		})
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dataset: reading stock file: %w", err)
	}
	return objects, nil
}
