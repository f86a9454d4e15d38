// pattern: Imperative Shell

package web

import (
	_ "embed"
	"net/http"
)

//go:embed inspector.html
var inspectorHTML []byte

// handleInspector serves the embedded single-page inspector at the
// root path.
func (s *Server) handleInspector(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(inspectorHTML)
}
