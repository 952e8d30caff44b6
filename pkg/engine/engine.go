// Package engine wires dataset loading, the metric appropriate to a
// dataset's format, and the detector together into the single call a
// server handler or CLI driver needs to go from a file path to a report.
package engine

import (
	"fmt"
	"os"

	"github.com/umad/orca/internal/dataset"
	"github.com/umad/orca/internal/distancefn"
	"github.com/umad/orca/pkg/config"
	"github.com/umad/orca/pkg/detect"
	"github.com/umad/orca/pkg/metricobj"
)

// LoadDataset opens and parses the dataset named by cfg.Path using the
// parser selected by cfg.Format, returning the object store and the
// distance metric that knows how to compare that format's payloads.
func LoadDataset(cfg config.DatasetConfig) (*metricobj.Store, metricobj.Metric, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("engine: opening dataset %q: %w", cfg.Path, err)
	}
	defer f.Close()

	switch cfg.Format {
	case "tabular", "":
		objs, err := dataset.LoadTabular(f, dataset.LoadTabularOptions{MaxObjects: cfg.MaxObjects})
		if err != nil {
			return nil, nil, err
		}
		return metricobj.NewStore(objs), euclideanMetric{}, nil

	case "kddcup99":
		objs, err := dataset.LoadKddCup99(f, dataset.LoadKddCup99Options{MaxObjects: cfg.MaxObjects})
		if err != nil {
			return nil, nil, err
		}
		return metricobj.NewStore(objs), kddCup99Metric{}, nil

	case "stock":
		objs, err := dataset.LoadStock(f, dataset.LoadStockOptions{MaxObjects: cfg.MaxObjects})
		if err != nil {
			return nil, nil, err
		}
		return metricobj.NewStore(objs), stockMetric{}, nil

	case "dna":
		objs, err := dataset.LoadDNA(f, dataset.LoadDNAOptions{MaxObjects: cfg.MaxObjects})
		if err != nil {
			return nil, nil, err
		}
		return metricobj.NewStore(objs), dnaMetric{}, nil

	default:
		return nil, nil, fmt.Errorf("engine: unknown dataset format %q", cfg.Format)
	}
}

type euclideanMetric struct{}

func (euclideanMetric) Distance(a, b *metricobj.Object) (float64, error) {
	return distancefn.Euclidean(a.Payload.([]float64), b.Payload.([]float64))
}

type kddCup99Metric struct{}

func (kddCup99Metric) Distance(a, b *metricobj.Object) (float64, error) {
	ra := a.Payload.(dataset.KddCup99Row)
	rb := b.Payload.(dataset.KddCup99Row)
	return distancefn.EuclideanHamming(ra.Data, rb.Data, ra.NumLen, ra.CateLen)
}

type stockMetric struct{}

func (stockMetric) Distance(a, b *metricobj.Object) (float64, error) {
	sa := a.Payload.(dataset.StockSeries)
	sb := b.Payload.(dataset.StockSeries)
	return distancefn.Pearson(sa.Prices, sb.Prices)
}

type dnaMetric struct{}

func (dnaMetric) Distance(a, b *metricobj.Object) (float64, error) {
	return distancefn.DNAEdit(a.Payload.(string), b.Payload.(string)), nil
}

// DistanceFunc adapts a Store and the Metric appropriate to it into the
// positional callback detect.Detect expects.
func DistanceFunc(store *metricobj.Store, metric metricobj.Metric) detect.DistanceFunc {
	return func(i, j int) (float64, error) {
		return metric.Distance(store.At(i), store.At(j))
	}
}

// Run loads a dataset per cfg.Dataset and runs a detection sweep over it
// configured by detectCfg, returning both the store (so callers can map
// result object IDs back to ground truth) and the sweep's report.
func Run(cfg *config.Config, detectCfg detect.Config) (*metricobj.Store, *detect.Report, error) {
	store, metric, err := LoadDataset(cfg.Dataset)
	if err != nil {
		return nil, nil, err
	}

	report, err := detect.Detect(store.Len(), DistanceFunc(store, metric), detectCfg)
	if err != nil {
		return store, nil, err
	}
	return store, report, nil
}
