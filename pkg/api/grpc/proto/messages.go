package proto

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// NewStruct builds a structpb.Struct from plain Go values, panicking only
// on a value structpb can't represent (which every type used by this
// package's message helpers can).
func NewStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	return structpb.NewStruct(fields)
}

// DetectRequest is the Detect RPC's request shape, encoded as a Struct
// with these fields: "dataset_path" (string), "format" (string),
// "n"/"k"/"block_size"/"num_pivots" (numbers), "hidden_candidates"
// (bool), "pivot" (string), "outlier_kind" (string, "kth" or "knn").
type DetectRequest struct {
	DatasetPath      string
	Format           string
	N                int
	K                int
	BlockSize        int
	NumPivots        int
	HiddenCandidates bool
	Pivot            string
	OutlierKind      string
}

// ToStruct encodes the request as a structpb.Struct.
func (r DetectRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"dataset_path":      r.DatasetPath,
		"format":            r.Format,
		"n":                 float64(r.N),
		"k":                 float64(r.K),
		"block_size":        float64(r.BlockSize),
		"num_pivots":        float64(r.NumPivots),
		"hidden_candidates": r.HiddenCandidates,
		"pivot":             r.Pivot,
		"outlier_kind":      r.OutlierKind,
	})
}

// DetectRequestFromStruct decodes a structpb.Struct produced by ToStruct.
func DetectRequestFromStruct(s *structpb.Struct) DetectRequest {
	fields := s.GetFields()
	return DetectRequest{
		DatasetPath:      fields["dataset_path"].GetStringValue(),
		Format:           fields["format"].GetStringValue(),
		N:                int(fields["n"].GetNumberValue()),
		K:                int(fields["k"].GetNumberValue()),
		BlockSize:        int(fields["block_size"].GetNumberValue()),
		NumPivots:        int(fields["num_pivots"].GetNumberValue()),
		HiddenCandidates: fields["hidden_candidates"].GetBoolValue(),
		Pivot:            fields["pivot"].GetStringValue(),
		OutlierKind:      fields["outlier_kind"].GetStringValue(),
	}
}

// ResultEntry mirrors detect.Result for wire encoding.
type ResultEntry struct {
	ObjectID int
	Weight   float64
}

// DetectResponse is the Detect/GetRun RPC's response shape: "run_id",
// "status", "top_n" (list of {object_id, weight}), "truncated",
// "blocks_processed", "distance_computations", "error".
type DetectResponse struct {
	RunID                string
	Status               string
	TopN                 []ResultEntry
	Truncated            bool
	BlocksProcessed      int
	DistanceComputations int
	Error                string
}

// ToStruct encodes the response as a structpb.Struct.
func (r DetectResponse) ToStruct() (*structpb.Struct, error) {
	topN := make([]interface{}, len(r.TopN))
	for i, entry := range r.TopN {
		topN[i] = map[string]interface{}{
			"object_id": float64(entry.ObjectID),
			"weight":    entry.Weight,
		}
	}
	return structpb.NewStruct(map[string]interface{}{
		"run_id":                r.RunID,
		"status":                r.Status,
		"top_n":                 topN,
		"truncated":             r.Truncated,
		"blocks_processed":      float64(r.BlocksProcessed),
		"distance_computations": float64(r.DistanceComputations),
		"error":                 r.Error,
	})
}

// DetectResponseFromStruct decodes a structpb.Struct produced by ToStruct.
func DetectResponseFromStruct(s *structpb.Struct) DetectResponse {
	fields := s.GetFields()

	var topN []ResultEntry
	if list := fields["top_n"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			entryFields := v.GetStructValue().GetFields()
			topN = append(topN, ResultEntry{
				ObjectID: int(entryFields["object_id"].GetNumberValue()),
				Weight:   entryFields["weight"].GetNumberValue(),
			})
		}
	}

	return DetectResponse{
		RunID:                fields["run_id"].GetStringValue(),
		Status:               fields["status"].GetStringValue(),
		TopN:                 topN,
		Truncated:            fields["truncated"].GetBoolValue(),
		BlocksProcessed:      int(fields["blocks_processed"].GetNumberValue()),
		DistanceComputations: int(fields["distance_computations"].GetNumberValue()),
		Error:                fields["error"].GetStringValue(),
	}
}

// ListRunsRequest filters ListRuns by status; empty means all statuses.
type ListRunsRequest struct {
	Status string
}

func (r ListRunsRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"status": r.Status})
}

func ListRunsRequestFromStruct(s *structpb.Struct) ListRunsRequest {
	return ListRunsRequest{Status: s.GetFields()["status"].GetStringValue()}
}

// RunSummary is one entry of a ListRuns response.
type RunSummary struct {
	RunID       string
	DatasetPath string
	Status      string
	CreatedAt   string
}

// ListRunsResponse wraps the matching run summaries.
type ListRunsResponse struct {
	Runs []RunSummary
}

func (r ListRunsResponse) ToStruct() (*structpb.Struct, error) {
	runs := make([]interface{}, len(r.Runs))
	for i, run := range r.Runs {
		runs[i] = map[string]interface{}{
			"run_id":       run.RunID,
			"dataset_path": run.DatasetPath,
			"status":       run.Status,
			"created_at":   run.CreatedAt,
		}
	}
	return structpb.NewStruct(map[string]interface{}{"runs": runs})
}

func ListRunsResponseFromStruct(s *structpb.Struct) ListRunsResponse {
	var runs []RunSummary
	if list := s.GetFields()["runs"].GetListValue(); list != nil {
		for _, v := range list.GetValues() {
			f := v.GetStructValue().GetFields()
			runs = append(runs, RunSummary{
				RunID:       f["run_id"].GetStringValue(),
				DatasetPath: f["dataset_path"].GetStringValue(),
				Status:      f["status"].GetStringValue(),
				CreatedAt:   f["created_at"].GetStringValue(),
			})
		}
	}
	return ListRunsResponse{Runs: runs}
}

// GetRunRequest identifies a single tracked run.
type GetRunRequest struct {
	RunID string
}

func (r GetRunRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{"run_id": r.RunID})
}

func GetRunRequestFromStruct(s *structpb.Struct) GetRunRequest {
	return GetRunRequest{RunID: s.GetFields()["run_id"].GetStringValue()}
}

// HealthResponse reports liveness, uptime, and run-registry counts.
type HealthResponse struct {
	Status      string
	UptimeSecs  float64
	ActiveRuns  int
	TotalRuns   int
	CacheHits   int64
	CacheMisses int64
}

func (r HealthResponse) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"status":       r.Status,
		"uptime_secs":  r.UptimeSecs,
		"active_runs":  float64(r.ActiveRuns),
		"total_runs":   float64(r.TotalRuns),
		"cache_hits":   float64(r.CacheHits),
		"cache_misses": float64(r.CacheMisses),
	})
}

func HealthResponseFromStruct(s *structpb.Struct) HealthResponse {
	fields := s.GetFields()
	return HealthResponse{
		Status:      fields["status"].GetStringValue(),
		UptimeSecs:  fields["uptime_secs"].GetNumberValue(),
		ActiveRuns:  int(fields["active_runs"].GetNumberValue()),
		TotalRuns:   int(fields["total_runs"].GetNumberValue()),
		CacheHits:   int64(fields["cache_hits"].GetNumberValue()),
		CacheMisses: int64(fields["cache_misses"].GetNumberValue()),
	}
}
