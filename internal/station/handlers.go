package station

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// failure is the generic error body
func failure(message string) map[string]interface{} {
	return map[string]interface{}{"success": false, "error": message}
}

// handleIndex serves the scanning page
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleSettings serves the settings page
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(settingsHTML)
}

// handleCSS serves the shared stylesheet
func (s *Server) handleCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write(appCSS)
}

// handleListUsers returns all operators
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.service.ListUsers()
	if err != nil {
		slog.Error("Error listing users", "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
	})
}

// handleAddUser creates a new operator
func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, failure("Name is required"))
		return
	}

	user, err := s.service.AddUser(name)
	if errors.Is(err, ErrUserExists) {
		writeJSON(w, http.StatusBadRequest, failure("User already exists"))
		return
	}
	if err != nil {
		slog.Error("Error adding user", "name", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      user.ID,
		"name":    user.Name,
	})
}

// handleDeleteUser removes an operator
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid user id"))
		return
	}

	deleted, err := s.service.DeleteUser(id)
	if err != nil {
		slog.Error("Error deleting user", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, failure("User not found"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted",
	})
}

// handleGetConnection returns the saved configuration without the password
func (s *Server) handleGetConnection(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.service.GetConnection()
	if err != nil {
		slog.Error("Error loading connection config", "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Internal server error"))
		return
	}
	if cfg == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": "No configuration found",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  cfg.View(),
	})
}

// decodeConnection reads and validates connection credentials from a request
func decodeConnection(r *http.Request) (*ConnectionConfig, bool) {
	var req ConnectionConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, false
	}
	req.Server = strings.TrimSpace(req.Server)
	req.Database = strings.TrimSpace(req.Database)
	req.Username = strings.TrimSpace(req.Username)
	req.Driver = strings.TrimSpace(req.Driver)
	if req.Server == "" || req.Database == "" || req.Username == "" || req.Password == "" {
		return nil, false
	}
	return &req, true
}

// handleSaveConnection stores the quotation-database configuration
func (s *Server) handleSaveConnection(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeConnection(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("All fields are required"))
		return
	}

	if err := s.service.SaveConnection(cfg); err != nil {
		slog.Error("Error saving connection config", "error", err)
		writeJSON(w, http.StatusInternalServerError, failure("Failed to save configuration"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SQL Server configuration saved",
	})
}

// handleTestConnection opens and pings the quotation database
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	cfg, ok := decodeConnection(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, failure("All fields are required for testing"))
		return
	}

	if err := s.service.TestConnection(cfg); err != nil {
		writeJSON(w, http.StatusOK, failure(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Connection successful",
	})
}

// handleScan processes a quotation scan
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuotationNumber string `json:"quotation_number"`
		Username        string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure("Invalid request body"))
		return
	}

	quotationNumber := strings.TrimSpace(req.QuotationNumber)
	username := strings.TrimSpace(req.Username)

	if quotationNumber == "" {
		writeJSON(w, http.StatusBadRequest, failure("Quotation number is required"))
		return
	}
	if username == "" {
		writeJSON(w, http.StatusBadRequest, failure("Please select a user first"))
		return
	}

	result, err := s.service.ProcessScan(quotationNumber, username)
	if errors.Is(err, ErrNotConfigured) {
		writeJSON(w, http.StatusBadRequest, failure("SQL Server not configured. Please configure in Settings."))
		return
	}
	if err != nil {
		slog.Error("Error processing scan", "quotation", quotationNumber, "error", err)
		writeJSON(w, http.StatusInternalServerError, failure(fmt.Sprintf("Error processing scan: %v", err)))
		return
	}

	// Business rejections (not found, cooldown, over-scan) are regular
	// results with success false, not HTTP errors.
	writeJSON(w, http.StatusOK, result)
}

// handleHealth is the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
