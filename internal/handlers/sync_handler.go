package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/repository"
	"github.com/teledrop/syncd/internal/services"
)

// SyncHandler exposes run triggering and status
type SyncHandler struct {
	scheduler  *services.SchedulerService
	uploader   *services.UploaderService
	settings   *services.SettingsService
	uploadRepo repository.UploadRecordRepo
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(
	scheduler *services.SchedulerService,
	uploader *services.UploaderService,
	settings *services.SettingsService,
	uploadRepo repository.UploadRecordRepo,
) *SyncHandler {
	return &SyncHandler{
		scheduler:  scheduler,
		uploader:   uploader,
		settings:   settings,
		uploadRepo: uploadRepo,
	}
}

// SyncStatusResponse for GET /api/sync/status
type SyncStatusResponse struct {
	Configured  bool                     `json:"configured"`
	Scheduler   services.SchedulerStatus `json:"scheduler"`
	LastOutcome *models.RunOutcome       `json:"lastOutcome,omitempty"`
	LedgerCount int                      `json:"ledgerCount"`
}

// TriggerSync launches a sync run. Manual selections travel as
// locators; autoSync runs sweep the enabled folder catalog instead.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	var req models.TriggerSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Locators) == 0 && !req.AutoSync {
		http.Error(w, "Either locators or autoSync is required", http.StatusBadRequest)
		return
	}

	if !h.settings.IsConfigured() {
		http.Error(w, "Bot token and chat are not configured", http.StatusConflict)
		return
	}

	runReq := services.RunRequest{AutoSync: req.AutoSync}
	if len(req.Locators) > 0 {
		var err error
		runReq, err = h.uploader.SpoolLocators(req.Locators)
		if err != nil {
			log.Printf("Error spooling locators: %v", err)
			http.Error(w, "Failed to stage selection", http.StatusInternalServerError)
			return
		}
		runReq.AutoSync = req.AutoSync
	}

	slot := h.scheduler.TriggerManual(runReq)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(models.TriggerSyncResponse{
		Accepted: true,
		Slot:     slot,
	})
}

// GetSyncStatus reports scheduler registrations, the most recent run
// outcome, and the ledger size
func (h *SyncHandler) GetSyncStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.uploadRepo.Count(r.Context())
	if err != nil {
		log.Printf("Error counting upload records: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	response := SyncStatusResponse{
		Configured:  h.settings.IsConfigured(),
		Scheduler:   h.scheduler.Status(),
		LastOutcome: h.uploader.LastOutcome(),
		LedgerCount: count,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
