package handler

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

type indexResponse struct {
	Version string `json:"version"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}

// GetIndex handles GET /api.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, indexResponse{Version: s.opts.Version})
}

// RedirectToIndex handles GET /.
func (s *Server) RedirectToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api", http.StatusFound)
}
