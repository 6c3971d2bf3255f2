package httpapi

import (
	"net/http"
	"strings"

	"github.com/YossiCharash/project-menagment-sub004/internal/audit"
	"github.com/YossiCharash/project-menagment-sub004/internal/session"
)

func (a *API) handleSuppliers(w http.ResponseWriter, r *http.Request, _ session.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	suppliers, err := a.deps.Backend.ListSuppliers(r.Context())
	if err != nil {
		handleBackendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": suppliers})
}

type uploadDocumentRequest struct {
	Name    string `json:"name"`
	FileURL string `json:"file_url"`
}

// handleSupplierResource routes /ui/suppliers/{id}/documents.
func (a *API) handleSupplierResource(w http.ResponseWriter, r *http.Request, _ session.Session) {
	path := strings.TrimPrefix(r.URL.Path, "/ui/suppliers/")
	id, ok := strings.CutSuffix(path, "/documents")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		docs, err := a.deps.Backend.SupplierDocuments(r.Context(), id)
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": docs})
	case http.MethodPost:
		var req uploadDocumentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.FileURL) == "" {
			writeError(w, r, http.StatusBadRequest, "name and file_url are required")
			return
		}
		doc, err := a.deps.Backend.UploadSupplierDocument(r.Context(), id, req.Name, req.FileURL)
		if err != nil {
			handleBackendError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "supplier.document.upload", map[string]any{
			"supplier_id": id,
			"name":        req.Name,
		})
		writeJSON(w, http.StatusCreated, doc)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleSupplierDocument(w http.ResponseWriter, r *http.Request, _ session.Session) {
	id := strings.TrimPrefix(r.URL.Path, "/ui/supplier-documents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}
	if err := a.deps.Backend.DeleteSupplierDocument(r.Context(), id); err != nil {
		handleBackendError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "supplier.document.delete", map[string]any{"document_id": id})
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}
