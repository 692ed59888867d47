package services

import (
	"errors"
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/platform/schema"
	"itam_platform/utils"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailService tracks the shared mailboxes handed out to employees. Mail
// delivery and forwarding happen on the mail server, this only records who
// has what.
type EmailService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *EmailService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Get("/active", s.ListActive)
	r.Get("/count", s.Count)
	r.Get("/users", s.AssignableEmployees)
	r.Get("/user/{employee_id}", s.ListForEmployee)

	r.Get("/{email_id}", s.Get)
	r.Put("/{email_id}", s.Update)
	r.Post("/{email_id}/forward", s.SetForwarding)
	r.Post("/{email_id}/assign", s.Assign)
	r.Delete("/{email_id}/assign/{employee_id}", s.Unassign)

	r.With(auth.AdminOnly(s.db)).Delete("/{email_id}", s.Delete)

	return r
}

type EmailInfo struct {
	Id uuid.UUID `json:"id"`

	Address   string `json:"email_address"`
	Password  string `json:"email_password"`
	Status    string `json:"status"`
	ForwardTo string `json:"forward_to,omitempty"`

	AssignedUsers []string `json:"assigned_users"`
}

func convertToEmailInfo(email *schema.EmailAccount) EmailInfo {
	assigned := make([]string, 0, len(email.Assignments))
	for _, assignment := range email.Assignments {
		if assignment.Employee != nil {
			assigned = append(assigned, assignment.Employee.UserName)
		}
	}

	return EmailInfo{
		Id:            email.Id,
		Address:       email.Address,
		Password:      email.Password,
		Status:        email.Status,
		ForwardTo:     email.ForwardTo,
		AssignedUsers: assigned,
	}
}

func (s *EmailService) listEmails(w http.ResponseWriter, activeOnly bool) {
	var query *gorm.DB = s.db.Preload("Assignments").Preload("Assignments.Employee")
	if activeOnly {
		query = query.Where("status = ?", "Active")
	}

	var emails []schema.EmailAccount
	result := query.Order("address").Find(&emails)
	if result.Error != nil {
		slog.Error("sql error listing email accounts", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]EmailInfo, 0, len(emails))
	for i := range emails {
		infos = append(infos, convertToEmailInfo(&emails[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

func (s *EmailService) List(w http.ResponseWriter, r *http.Request) {
	s.listEmails(w, false)
}

func (s *EmailService) ListActive(w http.ResponseWriter, r *http.Request) {
	s.listEmails(w, true)
}

type emailCountResponse struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

func (s *EmailService) Count(w http.ResponseWriter, r *http.Request) {
	var total, active int64

	result := s.db.Model(&schema.EmailAccount{}).Count(&total)
	if result.Error != nil {
		slog.Error("sql error counting email accounts", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	result = s.db.Model(&schema.EmailAccount{}).Where("status = ?", "Active").Count(&active)
	if result.Error != nil {
		slog.Error("sql error counting active email accounts", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	utils.WriteJsonResponse(w, emailCountResponse{Total: total, Active: active})
}

// AssignableEmployees lists employees a mailbox can be assigned to.
func (s *EmailService) AssignableEmployees(w http.ResponseWriter, r *http.Request) {
	var employees []schema.Employee
	result := s.db.Where("status = ?", "Active User").Order("user_name").Find(&employees)
	if result.Error != nil {
		slog.Error("sql error listing assignable employees", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]EmployeeInfo, 0, len(employees))
	for i := range employees {
		infos = append(infos, convertToEmployeeInfo(&employees[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

func (s *EmailService) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeId, err := utils.URLParamUUID(r, "employee_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var assignments []schema.EmailAssignment
	result := s.db.Find(&assignments, "employee_id = ?", employeeId)
	if result.Error != nil {
		slog.Error("sql error listing email assignments", "employee_id", employeeId, "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]EmailInfo, 0, len(assignments))
	for _, assignment := range assignments {
		email, err := schema.GetEmailAccount(assignment.EmailAccountId, s.db, true)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		infos = append(infos, convertToEmailInfo(&email))
	}

	utils.WriteJsonResponse(w, infos)
}

type createEmailRequest struct {
	Address  string `json:"email_address"`
	Password string `json:"email_password"`
	Status   string `json:"status"`
}

type createEmailResponse struct {
	EmailId uuid.UUID `json:"email_id"`
}

func (s *EmailService) Create(w http.ResponseWriter, r *http.Request) {
	var params createEmailRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Address == "" {
		http.Error(w, "email_address is required", http.StatusUnprocessableEntity)
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

	email := schema.EmailAccount{
		Id:       uuid.New(),
		Address:  params.Address,
		Password: params.Password,
		Status:   status,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Create(&email)
		if result.Error != nil {
			slog.Error("sql error creating email account", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "Create", email.Id.String(), email.Address)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating email account: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createEmailResponse{EmailId: email.Id})
}

func (s *EmailService) getEmail(r *http.Request) (schema.EmailAccount, error) {
	emailId, err := utils.URLParamUUID(r, "email_id")
	if err != nil {
		return schema.EmailAccount{}, CodedError(err, http.StatusBadRequest)
	}

	email, err := schema.GetEmailAccount(emailId, s.db, true)
	if err != nil {
		if errors.Is(err, schema.ErrEmailAccountNotFound) {
			return schema.EmailAccount{}, CodedError(err, http.StatusNotFound)
		}
		return schema.EmailAccount{}, CodedError(err, http.StatusInternalServerError)
	}

	return email, nil
}

func (s *EmailService) Get(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToEmailInfo(&email))
}

type updateEmailRequest struct {
	ChangedFields map[string]string `json:"changed_fields"`
}

func applyEmailField(email *schema.EmailAccount, key, value string) error {
	switch key {
	case "EmailAddress":
		email.Address = value
	case "EmailPassword":
		email.Password = value
	case "Status":
		email.Status = value
	default:
		return fmt.Errorf("field '%v' is not an updatable email field", key)
	}
	return nil
}

func (s *EmailService) Update(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params updateEmailRequest
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
		if err := applyEmailField(&email, key, value); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Omit("Assignments").Save(&email)
		if result.Error != nil {
			slog.Error("sql error updating email account", "email_id", email.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "Update", email.Id.String(), fmt.Sprintf("%v fields changed", len(params.ChangedFields)))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating email account: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

type forwardEmailRequest struct {
	ForwardTo string `json:"forward_to"`
}

// SetForwarding records the forwarding destination for a mailbox. An empty
// forward_to turns forwarding off.
func (s *EmailService) SetForwarding(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params forwardEmailRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Model(&schema.EmailAccount{Id: email.Id}).Update("forward_to", params.ForwardTo)
		if result.Error != nil {
			slog.Error("sql error updating email forwarding", "email_id", email.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "SetForwarding", email.Id.String(), params.ForwardTo)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating email forwarding: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

type assignEmailRequest struct {
	EmployeeId uuid.UUID `json:"employee_id"`
}

func (s *EmailService) Assign(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params assignEmailRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		employee, err := schema.GetEmployee(params.EmployeeId, txn)
		if err != nil {
			if errors.Is(err, schema.ErrEmployeeNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		var existing schema.EmailAssignment
		result := txn.Limit(1).Find(&existing, "email_account_id = ? and employee_id = ?", email.Id, employee.Id)
		if result.Error != nil {
			slog.Error("sql error checking for existing email assignment", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if result.RowsAffected != 0 {
			return CodedError(fmt.Errorf("mailbox is already assigned to %v", employee.UserName), http.StatusConflict)
		}

		assignment := schema.EmailAssignment{EmailAccountId: email.Id, EmployeeId: employee.Id}
		result = txn.Create(&assignment)
		if result.Error != nil {
			slog.Error("sql error creating email assignment", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "Assign", email.Id.String(), employee.UserName)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error assigning email: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *EmailService) Unassign(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	employeeId, err := utils.URLParamUUID(r, "employee_id")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Delete(&schema.EmailAssignment{EmailAccountId: email.Id, EmployeeId: employeeId})
		if result.Error != nil {
			slog.Error("sql error deleting email assignment", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "Unassign", email.Id.String(), employeeId.String())
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error unassigning email: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *EmailService) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := s.getEmail(r)
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
		result := txn.Select("Assignments").Delete(&schema.EmailAccount{Id: email.Id})
		if result.Error != nil {
			slog.Error("sql error deleting email account", "email_id", email.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "emails", "Delete", email.Id.String(), email.Address)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting email account: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
