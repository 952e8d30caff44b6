package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/umad/orca/pkg/api/grpc/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const version = "1.0.0"

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flag.StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	command := os.Args[1]

	switch command {
	case "detect":
		handleDetect(os.Args[2:])
	case "runs":
		handleListRuns(os.Args[2:])
	case "run":
		handleGetRun(os.Args[2:])
	case "health":
		handleHealth(os.Args[2:])
	case "version":
		fmt.Printf("detectctl version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleDetect(args []string) {
	fs := flag.NewFlagSet("detect", flag.ExitOnError)
	var (
		datasetPath      = fs.String("dataset", "", "path to dataset file (required)")
		format           = fs.String("format", "tabular", "dataset format: tabular, kddcup99, stock, dna")
		n                = fs.Int("n", 30, "number of outliers to report")
		k                = fs.Int("k", 5, "neighbors per object")
		blockSize        = fs.Int("block-size", 200, "block size for the sweep")
		numPivots        = fs.Int("pivots", 1, "number of reference pivots")
		pivot            = fs.String("pivot-selector", "fft", "pivot selector: fft, density, density-dispar, df-dispar, density-peak, density-peak-farthest")
		outlierKind      = fs.String("kind", "kth", "outlier weight: kth or knn")
		hiddenCandidates = fs.Bool("hidden-candidates", false, "enable HOD-style hidden candidate deflation")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	if *datasetPath == "" {
		fmt.Println("Error: -dataset is required")
		fs.Usage()
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	req := proto.DetectRequest{
		DatasetPath:      *datasetPath,
		Format:           *format,
		N:                *n,
		K:                *k,
		BlockSize:        *blockSize,
		NumPivots:        *numPivots,
		HiddenCandidates: *hiddenCandidates,
		Pivot:            *pivot,
		OutlierKind:      *outlierKind,
	}
	reqStruct, err := req.ToStruct()
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Detect(ctx, reqStruct)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	result := proto.DetectResponseFromStruct(resp)
	if result.Error != "" {
		fmt.Printf("Detect failed: %s\n", result.Error)
		os.Exit(1)
	}

	displayDetectResponse(result)
}

func handleListRuns(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	status := fs.String("status", "", "filter by run status")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	req, err := proto.ListRunsRequest{Status: *status}.ToStruct()
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListRuns(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	list := proto.ListRunsResponseFromStruct(resp)
	if len(list.Runs) == 0 {
		fmt.Println("No runs found")
		return
	}

	fmt.Printf("%-36s %-30s %-10s %s\n", "RUN ID", "DATASET", "STATUS", "CREATED")
	for _, run := range list.Runs {
		fmt.Printf("%-36s %-30s %-10s %s\n", run.RunID, run.DatasetPath, run.Status, run.CreatedAt)
	}
}

func handleGetRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Println("Error: run id is required")
		fmt.Println("Usage: detectctl run <run-id>")
		os.Exit(1)
	}
	runID := fs.Arg(0)

	client, conn := connectToServer()
	defer conn.Close()

	req, err := proto.GetRunRequest{RunID: runID}.ToStruct()
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.GetRun(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	result := proto.DetectResponseFromStruct(resp)
	displayDetectResponse(result)
}

func handleHealth(args []string) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	req, err := proto.NewStruct(nil)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.HealthCheck(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	health := proto.HealthResponseFromStruct(resp)
	fmt.Printf("Status:       %s\n", health.Status)
	fmt.Printf("Uptime:       %.0f seconds\n", health.UptimeSecs)
	fmt.Printf("Active runs:  %d\n", health.ActiveRuns)
	fmt.Printf("Total runs:   %d\n", health.TotalRuns)
	fmt.Printf("Cache hits:   %d\n", health.CacheHits)
	fmt.Printf("Cache misses: %d\n", health.CacheMisses)

	if health.Status != "ok" {
		os.Exit(1)
	}
}

func connectToServer() (proto.DetectServiceClient, *grpc.ClientConn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		fmt.Printf("Failed to connect to server at %s: %v\n", serverAddr, err)
		os.Exit(1)
	}

	return proto.NewDetectServiceClient(conn), conn
}

func displayDetectResponse(result proto.DetectResponse) {
	fmt.Printf("Run ID:       %s\n", result.RunID)
	fmt.Printf("Status:       %s\n", result.Status)
	if result.Error != "" {
		fmt.Printf("Error:        %s\n", result.Error)
		return
	}
	fmt.Printf("Truncated:    %v\n", result.Truncated)
	fmt.Printf("Blocks:       %d\n", result.BlocksProcessed)
	fmt.Printf("Distances:    %d\n", result.DistanceComputations)
	fmt.Println()

	if len(result.TopN) == 0 {
		fmt.Println("No outliers reported")
		return
	}

	fmt.Printf("%-6s %-10s %s\n", "RANK", "OBJECT ID", "WEIGHT")
	for i, entry := range result.TopN {
		fmt.Printf("%-6d %-10d %.6f\n", i+1, entry.ObjectID, entry.Weight)
	}
}

func showUsage() {
	fmt.Println(`detectctl - client for the orca outlier detection server

Usage:
  detectctl <command> [options]

Commands:
  detect   Run a detection sweep against a dataset
  runs     List tracked runs
  run      Get a single run's status and result
  health   Check server health
  version  Show version
  help     Show this help message

Options accepted by every command (after the command name):
  -server ADDRESS    gRPC server address (default: localhost:50051)

Requests time out after 30s; no flag changes this.

Examples:

  # Run a detection sweep
  detectctl detect -dataset data/kddcup.csv -format kddcup99 -n 30 -k 5

  # Run with DPiORCA-style pruning via multiple pivots
  detectctl detect -dataset data/stock.csv -format stock -pivots 3 -pivot-selector density

  # List completed runs
  detectctl runs -status completed

  # Inspect a single run
  detectctl run 3fa9c1d2-...

  # Check server health
  detectctl health -server my-server:50051`)
}
