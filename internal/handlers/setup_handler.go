package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/teledrop/syncd/internal/models"
	"github.com/teledrop/syncd/internal/services"
	"github.com/teledrop/syncd/internal/telegram"
)

// SetupHandler drives the bot credential setup flow: validate a token,
// discover the chat the user messages the bot from, and persist both.
type SetupHandler struct {
	settings   *services.SettingsService
	transports telegram.Factory
}

// NewSetupHandler creates a new SetupHandler
func NewSetupHandler(settings *services.SettingsService, transports telegram.Factory) *SetupHandler {
	return &SetupHandler{
		settings:   settings,
		transports: transports,
	}
}

// ValidateTokenRequest for POST /api/setup/validate-token
type ValidateTokenRequest struct {
	BotToken string `json:"botToken"`
}

// DetectChatRequest for POST /api/setup/detect-chat
type DetectChatRequest struct {
	BotToken string `json:"botToken"`
}

// CompleteSetupRequest for POST /api/setup/complete
type CompleteSetupRequest struct {
	BotToken string `json:"botToken"`
	ChatID   string `json:"chatId"`
}

// SettingsResponse for GET /api/settings. The token itself is never
// echoed back.
type SettingsResponse struct {
	Configured     bool   `json:"configured"`
	BotTokenSet    bool   `json:"botTokenSet"`
	BotUsername    string `json:"botUsername,omitempty"`
	ChatID         string `json:"chatId,omitempty"`
	BackupInterval string `json:"backupInterval"`
	WiFiOnly       bool   `json:"wifiOnly"`
}

// UpdateSettingsRequest for PUT /api/settings
type UpdateSettingsRequest struct {
	BackupInterval *string `json:"backupInterval,omitempty"`
	WiFiOnly       *bool   `json:"wifiOnly,omitempty"`
}

// ValidateToken checks a bot token against the messaging API and
// returns the bot's identity
func (h *SetupHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	identity, err := h.botIdentity(r, req.BotToken)
	if err != nil {
		log.Printf("Token validation failed: %v", err)
		http.Error(w, "Token validation failed", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}

// DetectChat lists recent chats seen by the bot, so the user can pick
// the one they just messaged it from
func (h *SetupHandler) DetectChat(w http.ResponseWriter, r *http.Request) {
	var req DetectChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	transport, err := h.transports(strings.TrimSpace(req.BotToken))
	if err != nil {
		http.Error(w, "Token validation failed", http.StatusUnauthorized)
		return
	}

	activities, err := transport.GetRecentActivity(r.Context(), 0)
	if err != nil {
		log.Printf("Chat detection failed: %v", err)
		http.Error(w, "Failed to read bot activity", http.StatusBadGateway)
		return
	}

	// Collapse to one entry per chat, keeping the most recent
	byChat := make(map[int64]telegram.Activity)
	order := make([]int64, 0, len(activities))
	for _, a := range activities {
		if _, seen := byChat[a.ChatID]; !seen {
			order = append(order, a.ChatID)
		}
		byChat[a.ChatID] = a
	}

	chats := make([]telegram.Activity, 0, len(order))
	for _, id := range order {
		chats = append(chats, byChat[id])
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chats)
}

// CompleteSetup validates the token, persists the credentials, and
// sends a confirmation message to the selected chat
func (h *SetupHandler) CompleteSetup(w http.ResponseWriter, r *http.Request) {
	var req CompleteSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(req.BotToken)
	chatID := strings.TrimSpace(req.ChatID)
	if token == "" || chatID == "" {
		http.Error(w, "botToken and chatId are required", http.StatusBadRequest)
		return
	}
	if _, err := strconv.ParseInt(chatID, 10, 64); err != nil {
		http.Error(w, "chatId must be numeric", http.StatusBadRequest)
		return
	}

	identity, err := h.botIdentity(r, token)
	if err != nil {
		log.Printf("Setup token validation failed: %v", err)
		http.Error(w, "Token validation failed", http.StatusUnauthorized)
		return
	}

	if err := h.settings.SaveCredentials(token, chatID, identity.Username); err != nil {
		log.Printf("Error saving credentials: %v", err)
		http.Error(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	// Confirmation is best-effort; setup already succeeded
	if transport, err := h.transports(token); err == nil {
		numericChat, _ := strconv.ParseInt(chatID, 10, 64)
		notice := fmt.Sprintf("✅ <b>TeleDrop connected</b>\nBackups from this device will appear in this chat via @%s.", identity.Username)
		if err := transport.SendTextMessage(r.Context(), numericChat, notice, true, 0); err != nil {
			log.Printf("Registration notice failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(identity)
}

// GetSettings returns the current settings with the token redacted
func (h *SetupHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st := h.settings.Get()

	response := SettingsResponse{
		Configured:     st.Configured(),
		BotTokenSet:    st.BotToken != "",
		BotUsername:    st.BotUsername,
		ChatID:         st.ChatID,
		BackupInterval: string(st.BackupInterval),
		WiFiOnly:       st.WiFiOnly,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdateSettings applies schedule preference changes. The scheduler
// re-registers its slots through the settings subscription.
func (h *SetupHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.BackupInterval != nil {
		interval := models.ParseBackupInterval(*req.BackupInterval)
		if err := h.settings.SaveBackupInterval(interval); err != nil {
			log.Printf("Error saving backup interval: %v", err)
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}

	if req.WiFiOnly != nil {
		if err := h.settings.SaveWiFiOnly(*req.WiFiOnly); err != nil {
			log.Printf("Error saving wifi-only flag: %v", err)
			http.Error(w, "Failed to save settings", http.StatusInternalServerError)
			return
		}
	}

	h.GetSettings(w, r)
}

func (h *SetupHandler) botIdentity(r *http.Request, token string) (*telegram.BotIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("empty bot token")
	}

	transport, err := h.transports(token)
	if err != nil {
		return nil, err
	}

	return transport.GetBotIdentity(r.Context())
}
