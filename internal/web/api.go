// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"net/http"

	"loom/internal/events"
	"loom/internal/layout"
)

// StatusResponse is the JSON answer of GET /api/status.
type StatusResponse struct {
	Version string `json:"version"`
	Files   int    `json:"files"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Active  []int  `json:"active"`
	WorkDir string `json:"work_dir"`
}

// NodeResponse is the JSON representation of one pane tree node.
type NodeResponse struct {
	Kind       string         `json:"kind"`
	Proportion float64        `json:"proportion,omitempty"`
	Children   []NodeResponse `json:"children,omitempty"`
	Files      []FileResponse `json:"files,omitempty"`
	Active     int            `json:"active,omitempty"`
}

// FileResponse names one open file inside a tabs node.
type FileResponse struct {
	Name     string `json:"name"`
	Modified bool   `json:"modified"`
}

// SpanResponse is the JSON representation of one frame rectangle.
// Rows and cols are half-open [start, end) cell ranges.
type SpanResponse struct {
	Path    []int  `json:"path"`
	Rows    [2]int `json:"rows"`
	Cols    [2]int `json:"cols"`
	Divider bool   `json:"divider,omitempty"`
}

// LayoutResponse is the JSON answer of GET /api/layout.
type LayoutResponse struct {
	Tree   NodeResponse   `json:"tree"`
	Spans  []SpanResponse `json:"spans"`
	Active []int          `json:"active"`
}

// OpenRequest is the JSON body for POST /api/open.
type OpenRequest struct {
	Path string `json:"path"`
}

func buildNodeResponse(n layout.Node) NodeResponse {
	resp := NodeResponse{
		Kind:       n.Kind,
		Proportion: n.Proportion,
		Active:     n.Active,
	}
	for _, c := range n.Children {
		resp.Children = append(resp.Children, buildNodeResponse(c))
	}
	for _, f := range n.Files {
		resp.Files = append(resp.Files, FileResponse{Name: f.Name, Modified: f.Modified})
	}
	return resp
}

func buildSpanResponses(spans []layout.Span) []SpanResponse {
	result := make([]SpanResponse, 0, len(spans))
	for _, s := range spans {
		result = append(result, SpanResponse{
			Path:    s.Path,
			Rows:    [2]int{s.Rows.Start, s.Rows.End},
			Cols:    [2]int{s.Cols.Start, s.Cols.End},
			Divider: s.Divider,
		})
	}
	return result
}

// handleStatus handles GET /api/status. Before the first snapshot
// arrives the counts and sizes are zero; the version is always known.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.latest()

	writeJSON(w, http.StatusOK, StatusResponse{
		Version: s.version,
		Files:   snap.FileCount,
		Width:   snap.Width,
		Height:  snap.Height,
		Active:  snap.Active,
		WorkDir: s.workDir,
	})
}

// handleLayout handles GET /api/layout. Returns the pane tree plus
// the spans of the current frame.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "editor has not drawn yet")
		return
	}

	writeJSON(w, http.StatusOK, LayoutResponse{
		Tree:   buildNodeResponse(snap.Tree),
		Spans:  buildSpanResponses(snap.Spans),
		Active: snap.Active,
	})
}

// handleOpen handles POST /api/open. The path is forwarded into the
// running program as an OpenFileMsg; the editor resolves and opens it
// on its own goroutine, so acceptance here does not mean the file
// opened.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	if s.notifyTUI == nil {
		writeError(w, http.StatusServiceUnavailable, "no editor attached")
		return
	}

	s.notifyTUI(events.OpenFileMsg{Path: req.Path})
	s.logger.Info("remote open forwarded", "path", req.Path)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code
// and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
