package services

import (
	"itam_platform/platform/auth"
	"itam_platform/platform/schema"
	"itam_platform/utils"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogService exposes the DB-backed audit trail written by the other
// services.
type LogService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *LogService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)
	r.Use(auth.AdminOnly(s.db))

	r.Get("/", s.List)

	return r
}

type LogEntry struct {
	Id uuid.UUID `json:"log_id"`

	ActionTimestamp time.Time `json:"action_timestamp"`
	ActionBy        string    `json:"action_by"`

	Module     string `json:"module"`
	ActionType string `json:"action_type"`

	RecordId       string `json:"record_id,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

const defaultLogLimit = 500

func (s *LogService) List(w http.ResponseWriter, r *http.Request) {
	var query *gorm.DB = s.db
	if module := r.URL.Query().Get("module"); module != "" {
		query = query.Where("module = ?", module)
	}
	if actionType := r.URL.Query().Get("action_type"); actionType != "" {
		query = query.Where("action_type = ?", actionType)
	}
	if actionBy := r.URL.Query().Get("action_by"); actionBy != "" {
		query = query.Where("action_by = ?", actionBy)
	}

	limit := defaultLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	var records []schema.AuditRecord
	result := query.Order("action_timestamp desc").Limit(limit).Find(&records)
	if result.Error != nil {
		slog.Error("sql error listing audit records", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	entries := make([]LogEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, LogEntry{
			Id:              record.Id,
			ActionTimestamp: record.ActionTimestamp,
			ActionBy:        record.ActionBy,
			Module:          record.Module,
			ActionType:      record.ActionType,
			RecordId:        record.RecordId,
			AdditionalInfo:  record.AdditionalInfo,
		})
	}

	utils.WriteJsonResponse(w, entries)
}
