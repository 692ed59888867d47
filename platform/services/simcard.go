package services

import (
	"errors"
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/platform/catalog"
	"itam_platform/platform/schema"
	"itam_platform/utils"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SimCardService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *SimCardService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Get("/{sim_card_id}", s.Get)
	r.Put("/{sim_card_id}", s.Update)

	r.With(auth.AdminOnly(s.db)).Delete("/{sim_card_id}", s.Delete)

	return r
}

type simCardRequest struct {
	CellNo   string `json:"cell_no"`
	Provider string `json:"provider"`

	CurrentUserName  string `json:"current_user_name"`
	CurrentUserEmail string `json:"current_user_email"`

	Department string `json:"department"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

type SimCardInfo struct {
	Id uuid.UUID `json:"id"`

	CellNo   string `json:"cell_no"`
	Provider string `json:"provider"`

	CurrentUserName  string `json:"current_user_name"`
	CurrentUserEmail string `json:"current_user_email"`

	PreviousUser  string   `json:"previous_user"`
	PreviousUsers []string `json:"previous_users"`

	Department string `json:"department"`
	Location   string `json:"location"`
	Status     string `json:"status"`
	Remarks    string `json:"remarks"`
}

func convertToSimCardInfo(sim *schema.SimCard) SimCardInfo {
	return SimCardInfo{
		Id:               sim.Id,
		CellNo:           sim.CellNo,
		Provider:         sim.Provider,
		CurrentUserName:  sim.CurrentUserName,
		CurrentUserEmail: sim.CurrentUserEmail,
		PreviousUser:     sim.PreviousUser,
		PreviousUsers:    catalog.Holders(sim.PreviousUser),
		Department:       sim.Department,
		Location:         sim.Location,
		Status:           sim.Status,
		Remarks:          sim.Remarks,
	}
}

func (s *SimCardService) List(w http.ResponseWriter, r *http.Request) {
	var sims []schema.SimCard
	result := s.db.Order("cell_no").Find(&sims)
	if result.Error != nil {
		slog.Error("sql error listing sim cards", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]SimCardInfo, 0, len(sims))
	for i := range sims {
		infos = append(infos, convertToSimCardInfo(&sims[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

type createSimCardResponse struct {
	SimCardId uuid.UUID `json:"sim_card_id"`
}

func (s *SimCardService) Create(w http.ResponseWriter, r *http.Request) {
	var params simCardRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.CellNo == "" {
		http.Error(w, "cell_no is required", http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := params.Status
	if status == "" {
		status = "Active"
	}

	sim := schema.SimCard{
		Id:               uuid.New(),
		CellNo:           params.CellNo,
		Provider:         params.Provider,
		CurrentUserName:  params.CurrentUserName,
		CurrentUserEmail: params.CurrentUserEmail,
		Department:       params.Department,
		Location:         params.Location,
		Status:           status,
		Remarks:          params.Remarks,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Create(&sim)
		if result.Error != nil {
			slog.Error("sql error creating sim card", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "simcard-users", "Create", sim.Id.String(), sim.CellNo)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating sim card: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createSimCardResponse{SimCardId: sim.Id})
}

func (s *SimCardService) getSimCard(r *http.Request) (schema.SimCard, error) {
	simCardId, err := utils.URLParamUUID(r, "sim_card_id")
	if err != nil {
		return schema.SimCard{}, CodedError(err, http.StatusBadRequest)
	}

	sim, err := schema.GetSimCard(simCardId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrSimCardNotFound) {
			return schema.SimCard{}, CodedError(err, http.StatusNotFound)
		}
		return schema.SimCard{}, CodedError(err, http.StatusInternalServerError)
	}

	return sim, nil
}

func (s *SimCardService) Get(w http.ResponseWriter, r *http.Request) {
	sim, err := s.getSimCard(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToSimCardInfo(&sim))
}

type updateSimCardRequest struct {
	ChangedFields map[string]string `json:"changed_fields"`
}

// applySimCardField handles everything except CurrentUserName, which has
// displacement semantics and is handled by Update directly.
func applySimCardField(sim *schema.SimCard, key, value string) error {
	switch key {
	case "CellNo":
		sim.CellNo = value
	case "Provider":
		sim.Provider = value
	case "CurrentUserEmail":
		sim.CurrentUserEmail = value
	case "Department":
		sim.Department = value
	case "Location":
		sim.Location = value
	case "Status":
		sim.Status = value
	case "Remarks":
		sim.Remarks = value
	default:
		return fmt.Errorf("field '%v' is not an updatable sim card field", key)
	}
	return nil
}

func (s *SimCardService) Update(w http.ResponseWriter, r *http.Request) {
	sim, err := s.getSimCard(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params updateSimCardRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if len(params.ChangedFields) == 0 {
		http.Error(w, ErrNoChanges.Error(), http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for key, value := range params.ChangedFields {
		if key == "CurrentUserName" {
			if value != sim.CurrentUserName {
				sim.PreviousUser = catalog.Displace(sim.PreviousUser, sim.CurrentUserName)
				// A returning user moves out of the trail instead of being
				// listed as both current and previous.
				sim.PreviousUser = catalog.Remove(sim.PreviousUser, value)
				sim.CurrentUserName = value
			}
			continue
		}
		if err := applySimCardField(&sim, key, value); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Save(&sim)
		if result.Error != nil {
			slog.Error("sql error updating sim card", "sim_card_id", sim.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "simcard-users", "Update", sim.Id.String(), fmt.Sprintf("%v fields changed", len(params.ChangedFields)))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating sim card: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *SimCardService) Delete(w http.ResponseWriter, r *http.Request) {
	sim, err := s.getSimCard(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Delete(&schema.SimCard{Id: sim.Id})
		if result.Error != nil {
			slog.Error("sql error deleting sim card", "sim_card_id", sim.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "simcard-users", "Delete", sim.Id.String(), sim.CellNo)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting sim card: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
