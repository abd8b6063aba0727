package relation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"RMDB/internal/application"
	"RMDB/internal/domain"
	"RMDB/internal/platform/storage"
)

type RelationHandler struct {
	exec    *application.Executor
	catalog domain.CatalogRepository
	eng     *storage.Engine
}

func NewRelationHandler(exec *application.Executor, catalog domain.CatalogRepository, eng *storage.Engine) *RelationHandler {
	return &RelationHandler{exec: exec, catalog: catalog, eng: eng}
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ListResponse struct {
	Tables   []string `json:"tables"`
	Matrices []string `json:"matrices"`
}

func (h *RelationHandler) List(w http.ResponseWriter, r *http.Request) {
	resp := ListResponse{
		Tables:   h.catalog.List(domain.KindTable),
		Matrices: h.catalog.List(domain.KindMatrix),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *RelationHandler) Print(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rel, ok := h.catalog.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, QueryResponse{Error: domain.ErrRelationNotFound.Error()})
		return
	}
	query := "PRINT " + name
	if rel.Kind() == domain.KindMatrix {
		query = "PRINT MATRIX " + name
	}
	output, err := h.exec.Execute(query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, QueryResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Output: output})
}

func (h *RelationHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, QueryResponse{Error: err.Error()})
		return
	}
	output, err := h.exec.Execute(req.Query)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, QueryResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Output: output})
}

type StatsResponse struct {
	BlocksRead    int `json:"blocks_read"`
	BlocksWritten int `json:"blocks_written"`
}

func (h *RelationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	bm := h.eng.BufferManager()
	writeJSON(w, http.StatusOK, StatsResponse{
		BlocksRead:    bm.BlocksRead(),
		BlocksWritten: bm.BlocksWritten(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
