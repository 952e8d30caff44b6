package grpc

import (
	"context"
	"time"

	"github.com/umad/orca/pkg/api/grpc/proto"
	"github.com/umad/orca/pkg/detect"
	"github.com/umad/orca/pkg/engine"
	"github.com/umad/orca/pkg/pivot"
	"google.golang.org/protobuf/types/known/structpb"
)

// Detect runs a detection sweep synchronously against the dataset and
// configuration named in the request, serving a cached report when one
// matches.
func (s *Server) Detect(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	req := proto.DetectRequestFromStruct(in)

	if err := validateDetectRequest(req); err != nil {
		s.metrics.RecordError("Detect", "validation_error")
		return errorResponse(err)
	}

	if err := s.registry.CheckObjectLimit(s.config.Dataset.MaxObjects); err != nil {
		s.metrics.RecordError("Detect", "limit_exceeded")
		return errorResponse(err)
	}

	run, err := s.registry.CreateRun(req.DatasetPath)
	if err != nil {
		s.metrics.RecordError("Detect", "limit_exceeded")
		return errorResponse(err)
	}
	run.MarkRunning()

	detectCfg, err := buildDetectConfig(req)
	if err != nil {
		run.MarkFailed(err)
		s.metrics.RecordError("Detect", "invalid_config")
		return errorResponse(err)
	}

	datasetCfg := s.config.Dataset
	datasetCfg.Path = req.DatasetPath
	if req.Format != "" {
		datasetCfg.Format = req.Format
	}

	store, metric, err := engine.LoadDataset(datasetCfg)
	if err != nil {
		run.MarkFailed(err)
		s.metrics.RecordError("Detect", "dataset_load_error")
		return errorResponse(err)
	}

	report, err := s.cache.Detect(req.DatasetPath, store.Len(), engine.DistanceFunc(store, metric), detectCfg)
	if err != nil {
		run.MarkFailed(err)
		s.metrics.RecordError("Detect", "detect_error")
		return errorResponse(err)
	}

	run.MarkCompleted(report)

	s.metrics.RecordRun(time.Since(start), store.Len(), len(report.TopN), report.Truncated)
	s.metrics.RecordSweep(report.BlocksProcessed, report.DistanceComputations, lastWeight(report))
	s.metrics.RecordRequest("Detect", "success", time.Since(start))

	return reportToResponse(run.ID, report).ToStruct()
}

// ListRuns returns tracked runs, optionally filtered by status.
func (s *Server) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := proto.ListRunsRequestFromStruct(in)

	var summaries []proto.RunSummary
	for _, run := range s.registry.ListRuns() {
		status := string(run.CurrentStatus())
		if req.Status != "" && status != req.Status {
			continue
		}
		summaries = append(summaries, proto.RunSummary{
			RunID:       run.ID,
			DatasetPath: run.DatasetPath,
			Status:      status,
			CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		})
	}

	s.metrics.RecordRequest("ListRuns", "success", 0)
	return proto.ListRunsResponse{Runs: summaries}.ToStruct()
}

// GetRun returns a single tracked run's current status and, once
// completed, its report.
func (s *Server) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := proto.GetRunRequestFromStruct(in)

	run, err := s.registry.GetRun(req.RunID)
	if err != nil {
		s.metrics.RecordError("GetRun", "not_found")
		return errorResponse(err)
	}

	resp := proto.DetectResponse{
		RunID:  run.ID,
		Status: string(run.CurrentStatus()),
		Error:  run.Err,
	}
	if run.Result != nil {
		resp.TopN = toResultEntries(run.Result.TopN)
		resp.Truncated = run.Result.Truncated
		resp.BlocksProcessed = run.Result.BlocksProcessed
		resp.DistanceComputations = run.Result.DistanceComputations
	}

	s.metrics.RecordRequest("GetRun", "success", 0)
	return resp.ToStruct()
}

// HealthCheck reports liveness and basic run-registry/cache stats.
func (s *Server) HealthCheck(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	cacheStats := s.cache.CacheStats()
	resp := proto.HealthResponse{
		Status:      "ok",
		UptimeSecs:  s.Uptime().Seconds(),
		ActiveRuns:  s.registry.ActiveCount(),
		TotalRuns:   len(s.registry.ListRuns()),
		CacheHits:   cacheStats.Hits,
		CacheMisses: cacheStats.Misses,
	}
	return resp.ToStruct()
}

func validateDetectRequest(req proto.DetectRequest) error {
	if req.DatasetPath == "" {
		return &validationError{field: "dataset_path", reason: "must not be empty"}
	}
	if req.N < 0 || req.K < 0 || req.BlockSize < 0 || req.NumPivots < 0 {
		return &validationError{field: "n/k/block_size/num_pivots", reason: "must not be negative"}
	}
	return nil
}

func buildDetectConfig(req proto.DetectRequest) (detect.Config, error) {
	selector, err := pivot.ByName(req.Pivot)
	if err != nil {
		return detect.Config{}, err
	}

	kind := detect.KthOutlierKind
	if req.OutlierKind == "knn" {
		kind = detect.KnnOutlierKind
	}

	cfg := detect.Config{
		N:                req.N,
		K:                req.K,
		BlockSize:        req.BlockSize,
		NumPivots:        req.NumPivots,
		Kind:             kind,
		Pivot:            selector,
		HiddenCandidates: req.HiddenCandidates,
	}
	if cfg.N == 0 {
		cfg.N = 30
	}
	if cfg.K == 0 {
		cfg.K = 5
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 200
	}
	if cfg.NumPivots == 0 {
		cfg.NumPivots = 1
	}
	return cfg, nil
}

func toResultEntries(results []detect.Result) []proto.ResultEntry {
	entries := make([]proto.ResultEntry, len(results))
	for i, r := range results {
		entries[i] = proto.ResultEntry{ObjectID: r.ObjectID, Weight: r.Weight}
	}
	return entries
}

func reportToResponse(runID string, report *detect.Report) proto.DetectResponse {
	return proto.DetectResponse{
		RunID:                runID,
		Status:               "completed",
		TopN:                 toResultEntries(report.TopN),
		Truncated:            report.Truncated,
		BlocksProcessed:      report.BlocksProcessed,
		DistanceComputations: report.DistanceComputations,
	}
}

func lastWeight(report *detect.Report) float64 {
	if len(report.TopN) == 0 {
		return 0
	}
	return report.TopN[len(report.TopN)-1].Weight
}

func errorResponse(err error) (*structpb.Struct, error) {
	resp := proto.DetectResponse{Status: "failed", Error: err.Error()}
	s, encErr := resp.ToStruct()
	if encErr != nil {
		return nil, encErr
	}
	return s, nil
}

type validationError struct {
	field  string
	reason string
}

func (e *validationError) Error() string {
	return "invalid " + e.field + ": " + e.reason
}
