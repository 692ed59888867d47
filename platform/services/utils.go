package services

import (
	"errors"
	"itam_platform/platform/schema"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

// ErrNoChanges indicates an update whose diff payload is empty. Surfaced
// to the caller as "no changes to update" rather than performing a write.
var ErrNoChanges = errors.New("no changes to update")

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

var actionMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "itam_record_actions",
	Help: "Entity mutations by module and action type",
}, []string{"module", "action"})

// recordAction appends to the DB-backed audit trail, inside the caller's
// transaction so the trail row lands iff the mutation does.
func recordAction(txn *gorm.DB, actionBy, module, actionType, recordId, info string) error {
	entry := schema.AuditRecord{
		Id:              uuid.New(),
		ActionTimestamp: time.Now().UTC(),
		ActionBy:        actionBy,
		Module:          module,
		ActionType:      actionType,
		RecordId:        recordId,
		AdditionalInfo:  info,
	}

	result := txn.Create(&entry)
	if result.Error != nil {
		slog.Error("sql error recording audit action", "module", module, "action", actionType, "error", result.Error)
		return schema.ErrDbAccessFailed
	}

	actionMetric.WithLabelValues(module, actionType).Inc()
	return nil
}
