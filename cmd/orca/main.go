// Command orca is the reproducible, in-process driver: pick a dataset,
// a metric, an outlier definition, and a pivot strategy by flag, run one
// sweep, print the Top-N list and its accuracy against ground truth.
//
// No network, no registry, no cache — just engine.LoadDataset,
// detect.Detect and a report.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/umad/orca/pkg/config"
	"github.com/umad/orca/pkg/detect"
	"github.com/umad/orca/pkg/engine"
	"github.com/umad/orca/pkg/evalreport"
	"github.com/umad/orca/pkg/normalize"
	"github.com/umad/orca/pkg/pivot"
)

func main() {
	var (
		datasetPath      = flag.String("dataset", "", "path to dataset file (required)")
		format           = flag.String("format", "tabular", "dataset format: tabular, kddcup99, stock, dna")
		n                = flag.Int("n", 30, "number of outliers to report")
		k                = flag.Int("k", 5, "neighbors per object")
		blockSize        = flag.Int("block-size", 200, "block size for the sweep")
		numPivots        = flag.Int("pivots", 1, "number of reference pivots (1 = prefilter, >1 = pruning)")
		pivotName        = flag.String("pivot-selector", "fft", "fft, density, density-dispar, df-dispar, density-peak, density-peak-farthest")
		outlierKind      = flag.String("kind", "kth", "outlier weight: kth or knn")
		hiddenCandidates = flag.Bool("hidden-candidates", false, "enable HOD-style hidden candidate deflation")
		normalizeCols    = flag.Bool("normalize", false, "min-max rescale tabular columns before detection")
		maxObjects       = flag.Int("max-objects", 0, "cap on objects loaded (0 = unlimited)")
	)
	flag.Parse()

	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "orca: -dataset is required")
		os.Exit(2)
	}

	var startRow, endRow int = -1, -1
	if *format == "stock" {
		rest := flag.Args()
		if len(rest) == 2 {
			var err error
			startRow, err = strconv.Atoi(rest[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "orca: invalid startRow %q: %v\n", rest[0], err)
				os.Exit(2)
			}
			endRow, err = strconv.Atoi(rest[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "orca: invalid endRow %q: %v\n", rest[1], err)
				os.Exit(2)
			}
		} else if len(rest) != 0 {
			fmt.Fprintln(os.Stderr, "orca: stock format takes exactly [startRow endRow] as positional args")
			os.Exit(2)
		}
	}

	selector, err := pivot.ByName(*pivotName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "orca: %v\n", err)
		os.Exit(2)
	}

	kind := detect.KthOutlierKind
	if *outlierKind == "knn" {
		kind = detect.KnnOutlierKind
	} else if *outlierKind != "kth" {
		fmt.Fprintf(os.Stderr, "orca: unknown outlier kind %q\n", *outlierKind)
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.Dataset.Path = *datasetPath
	cfg.Dataset.Format = *format
	cfg.Dataset.MaxObjects = *maxObjects

	detectCfg := detect.Config{
		N:                *n,
		K:                *k,
		BlockSize:        *blockSize,
		NumPivots:        *numPivots,
		Kind:             kind,
		Pivot:            selector,
		HiddenCandidates: *hiddenCandidates,
	}

	store, metric, err := engine.LoadDataset(cfg.Dataset)
	if err != nil {
		reportError(err)
	}

	if *normalizeCols && *format == "tabular" {
		rows := make([][]float64, store.Len())
		for i := 0; i < store.Len(); i++ {
			rows[i] = store.At(i).Payload.([]float64)
		}
		normalize.MinMax(rows)
	}

	if startRow >= 0 {
		objs := store.Objects()
		if endRow >= len(objs) {
			endRow = len(objs) - 1
		}
		if startRow < 0 || startRow > endRow {
			fmt.Fprintf(os.Stderr, "orca: invalid row window [%d, %d]\n", startRow, endRow)
			os.Exit(2)
		}
		store = store.Window(startRow, endRow+1)
	}

	report, err := detect.Detect(store.Len(), engine.DistanceFunc(store, metric), detectCfg)
	if err != nil {
		reportError(err)
	}

	printReport(report)

	totalOutliers := store.OutlierCount()
	if totalOutliers > 0 {
		objects := store.Objects()
		idIndex := make(map[int]bool, len(objects))
		for _, o := range objects {
			idIndex[o.ID] = !o.IsNormal
		}
		result := evalreport.Evaluate(report.TopN, func(id int) bool { return idIndex[id] }, totalOutliers, store.Len())
		printEvaluation(result)
	}
}

func printReport(report *detect.Report) {
	fmt.Printf("blocks processed:       %d\n", report.BlocksProcessed)
	fmt.Printf("distance computations:  %d\n", report.DistanceComputations)
	fmt.Printf("truncated:              %v\n", report.Truncated)
	fmt.Println()
	fmt.Printf("%-6s %-10s %s\n", "rank", "object id", "weight")
	for i, r := range report.TopN {
		fmt.Printf("%-6d %-10d %.6f\n", i+1, r.ObjectID, r.Weight)
	}
	fmt.Println()
}

func printEvaluation(result evalreport.Report) {
	fmt.Printf("mean accuracy: %.4f\n", result.MeanAccuracy)
	fmt.Printf("AUC:           %.4f\n", result.AUC)
}

func reportError(err error) {
	switch err.(type) {
	case *detect.ConfigError:
		fmt.Fprintf(os.Stderr, "orca: configuration error: %v\n", err)
		os.Exit(1)
	case *detect.DataError:
		fmt.Fprintf(os.Stderr, "orca: data error: %v\n", err)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "orca: %v\n", err)
		os.Exit(1)
	}
	os.Exit(1)
}
