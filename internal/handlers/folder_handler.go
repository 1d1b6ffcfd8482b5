package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/services"
)

// FolderHandler manages the sync folder catalog
type FolderHandler struct {
	catalog *services.CatalogService
}

// NewFolderHandler creates a new FolderHandler
func NewFolderHandler(catalog *services.CatalogService) *FolderHandler {
	return &FolderHandler{catalog: catalog}
}

// SetAutoSyncRequest for PUT /api/folders/auto-sync
type SetAutoSyncRequest struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

// AddFolderRequest for POST /api/folders
type AddFolderRequest struct {
	Path string `json:"path"`
}

// ListFolders returns every media folder, the live scan merged with
// the persisted catalog
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.catalog.ListSyncFolders(r.Context())
	if err != nil {
		log.Printf("Error listing folders: %v", err)
		http.Error(w, "Failed to list folders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(folders)
}

// ListAutoSyncFolders returns only folders with auto-sync enabled
func (h *FolderHandler) ListAutoSyncFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.catalog.GetAutoSyncFolders(r.Context())
	if err != nil {
		log.Printf("Error listing auto-sync folders: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(folders)
}

// SetAutoSync toggles auto-sync for a folder
func (h *FolderHandler) SetAutoSync(w http.ResponseWriter, r *http.Request) {
	var req SetAutoSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	folder, err := h.catalog.SetAutoSync(r.Context(), req.Path, req.Enabled)
	if err != nil {
		if errors.Is(err, models.ErrEmptyFolderPath) {
			http.Error(w, "Folder path is required", http.StatusBadRequest)
			return
		}
		log.Printf("Error setting auto-sync for %s: %v", req.Path, err)
		http.Error(w, "Failed to update folder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(folder)
}

// AddFolder persists a user-supplied folder with auto-sync enabled
func (h *FolderHandler) AddFolder(w http.ResponseWriter, r *http.Request) {
	var req AddFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if info, err := os.Stat(req.Path); err != nil || !info.IsDir() {
		http.Error(w, "Folder does not exist", http.StatusBadRequest)
		return
	}

	folder, err := h.catalog.AddCustomFolder(r.Context(), req.Path)
	if err != nil {
		if errors.Is(err, models.ErrEmptyFolderPath) {
			http.Error(w, "Folder path is required", http.StatusBadRequest)
			return
		}
		log.Printf("Error adding folder %s: %v", req.Path, err)
		http.Error(w, "Failed to add folder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(folder)
}

// RemoveFolder drops a persisted folder record
func (h *FolderHandler) RemoveFolder(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "path query parameter required", http.StatusBadRequest)
		return
	}

	if err := h.catalog.RemoveFolder(r.Context(), path); err != nil {
		log.Printf("Error removing folder %s: %v", path, err)
		http.Error(w, "Failed to remove folder", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
