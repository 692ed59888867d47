package services

import (
	"itam_platform/platform/auth"
	"itam_platform/utils"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var verifyMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "itam_master_password_verifications",
	Help: "Master password verification attempts by outcome",
}, []string{"outcome"})

// SecurityService verifies the shared master password that confirms
// destructive dashboard actions.
type SecurityService struct {
	db             *gorm.DB
	masterPassword *auth.MasterPassword
	userAuth       auth.IdentityProvider
}

func (s *SecurityService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(s.userAuth.AuthMiddleware()...)

		r.Post("/master-password/verify", s.Verify)
		// Older dashboard builds call this path and read the 'valid' key.
		r.Post("/verify-master-password", s.Verify)
	})

	return r
}

type verifyMasterPasswordRequest struct {
	Password string `json:"password"`
}

type verifyMasterPasswordResponse struct {
	Verified bool `json:"verified"`
	Valid    bool `json:"valid"`
}

// Verify answers 200 with verified=false for a wrong password. Only
// malformed requests and auth failures are non-2xx: a mismatch is a
// normal outcome, not an error.
func (s *SecurityService) Verify(w http.ResponseWriter, r *http.Request) {
	var params verifyMasterPasswordRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	verified := s.masterPassword.Check(params.Password)

	outcome := "verified"
	if !verified {
		outcome = "rejected"
	}
	verifyMetric.WithLabelValues(outcome).Inc()

	err = s.db.Transaction(func(txn *gorm.DB) error {
		return recordAction(txn, user.Username, "security", "VerifyMasterPassword", "", outcome)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !verified {
		slog.Info("master password verification rejected", "user", user.Username)
	}

	utils.WriteJsonResponse(w, verifyMasterPasswordResponse{Verified: verified, Valid: verified})
}
