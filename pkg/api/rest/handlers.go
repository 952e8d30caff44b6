package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	pb "github.com/umad/orca/pkg/api/grpc/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Handler implements the HTTP side of the DetectService gateway,
// translating JSON requests into gRPC calls against client.
type Handler struct {
	client pb.DetectServiceClient
}

// NewHandler wraps a DetectService client as an HTTP handler set.
func NewHandler(client pb.DetectServiceClient) *Handler {
	return &Handler{client: client}
}

// HealthCheck proxies GET /v1/health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	req, _ := structpb.NewStruct(nil)
	resp, err := h.client.HealthCheck(ctx, req)
	if err != nil {
		writeError(w, fmt.Sprintf("health check failed: %v", err), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, pb.HealthResponseFromStruct(resp), http.StatusOK)
}

// detectRequestBody is the JSON shape POST /v1/detect accepts.
type detectRequestBody struct {
	DatasetPath      string `json:"dataset_path"`
	Format           string `json:"format"`
	N                int    `json:"n"`
	K                int    `json:"k"`
	BlockSize        int    `json:"block_size"`
	NumPivots        int    `json:"num_pivots"`
	HiddenCandidates bool   `json:"hidden_candidates"`
	Pivot            string `json:"pivot"`
	OutlierKind      string `json:"outlier_kind"`
}

// Detect proxies POST /v1/detect, running a sweep and returning its
// Top-N list.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body detectRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if body.DatasetPath == "" {
		writeError(w, "dataset_path is required", http.StatusBadRequest)
		return
	}

	req := pb.DetectRequest{
		DatasetPath:      body.DatasetPath,
		Format:           body.Format,
		N:                body.N,
		K:                body.K,
		BlockSize:        body.BlockSize,
		NumPivots:        body.NumPivots,
		HiddenCandidates: body.HiddenCandidates,
		Pivot:            body.Pivot,
		OutlierKind:      body.OutlierKind,
	}
	reqStruct, err := req.ToStruct()
	if err != nil {
		writeError(w, fmt.Sprintf("failed to encode request: %v", err), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	resp, err := h.client.Detect(ctx, reqStruct)
	if err != nil {
		writeError(w, fmt.Sprintf("detect failed: %v", err), http.StatusInternalServerError)
		return
	}

	result := pb.DetectResponseFromStruct(resp)
	if result.Error != "" {
		writeError(w, result.Error, http.StatusBadRequest)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

// ListRuns proxies GET /v1/runs?status=completed.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := pb.ListRunsRequest{Status: r.URL.Query().Get("status")}.ToStruct()
	if err != nil {
		writeError(w, fmt.Sprintf("failed to encode request: %v", err), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.client.ListRuns(ctx, req)
	if err != nil {
		writeError(w, fmt.Sprintf("list runs failed: %v", err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, pb.ListRunsResponseFromStruct(resp), http.StatusOK)
}

// GetRun proxies GET /v1/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if runID == "" {
		writeError(w, "run id is required", http.StatusBadRequest)
		return
	}

	req, err := pb.GetRunRequest{RunID: runID}.ToStruct()
	if err != nil {
		writeError(w, fmt.Sprintf("failed to encode request: %v", err), http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.client.GetRun(ctx, req)
	if err != nil {
		writeError(w, fmt.Sprintf("get run failed: %v", err), http.StatusNotFound)
		return
	}

	writeJSON(w, pb.DetectResponseFromStruct(resp), http.StatusOK)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  message,
		"status": statusCode,
	})
}

// ServeDocs serves the OpenAPI spec.
func ServeDocs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := os.ReadFile("docs/api/openapi.yaml")
	if err != nil {
		writeError(w, "OpenAPI spec not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// ServeSwaggerUI serves a Swagger UI page pointed at the OpenAPI spec.
func ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head>
    <title>orca API Documentation</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: "/docs/openapi.yaml",
                dom_id: '#swagger-ui',
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.SwaggerUIStandalonePreset
                ],
                layout: "BaseLayout"
            });
        };
    </script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// ParseIntQuery parses an integer query parameter, falling back to
// defaultValue when absent or malformed.
func ParseIntQuery(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
