package services

import (
	"errors"
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/platform/schema"
	"itam_platform/utils"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmployeeService manages the corporate account records shown on the
// dashboard's user screens. These are directory entries, not login
// accounts; operator accounts live in UserService.
type EmployeeService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *EmployeeService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Get("/{employee_id}", s.Get)
	r.Put("/{employee_id}", s.Update)

	r.With(auth.AdminOnly(s.db)).Delete("/{employee_id}", s.Delete)

	return r
}

type employeeRequest struct {
	UserName       string `json:"user_name"`
	EmailId        string `json:"email_id"`
	EmailPassword  string `json:"email_password"`
	DomainId       string `json:"domain_id"`
	DomainPassword string `json:"domain_password"`
	Department     string `json:"department"`
	Location       string `json:"location"`
	Status         string `json:"status"`

	AssetId *uuid.UUID `json:"asset_id,omitempty"`

	Remarks  string `json:"remarks"`
	Comments string `json:"comments"`
}

type EmployeeInfo struct {
	Id uuid.UUID `json:"id"`

	UserName       string `json:"user_name"`
	EmailId        string `json:"email_id"`
	EmailPassword  string `json:"email_password"`
	DomainId       string `json:"domain_id"`
	DomainPassword string `json:"domain_password"`
	Department     string `json:"department"`
	Location       string `json:"location"`
	Status         string `json:"status"`

	AssetId           *uuid.UUID `json:"asset_id,omitempty"`
	AssetHostName     string     `json:"asset_host_name,omitempty"`
	AssetAssignedDate *time.Time `json:"asset_assigned_date,omitempty"`

	Remarks  string `json:"remarks"`
	Comments string `json:"comments"`
}

func convertToEmployeeInfo(employee *schema.Employee) EmployeeInfo {
	info := EmployeeInfo{
		Id:                employee.Id,
		UserName:          employee.UserName,
		EmailId:           employee.EmailId,
		EmailPassword:     employee.EmailPassword,
		DomainId:          employee.DomainId,
		DomainPassword:    employee.DomainPassword,
		Department:        employee.Department,
		Location:          employee.Location,
		Status:            employee.Status,
		AssetId:           employee.AssetId,
		AssetAssignedDate: employee.AssetAssignedDate,
		Remarks:           employee.Remarks,
		Comments:          employee.Comments,
	}
	if employee.Asset != nil {
		info.AssetHostName = employee.Asset.HostName
	}
	return info
}

func (s *EmployeeService) List(w http.ResponseWriter, r *http.Request) {
	query := s.db.Preload("Asset")
	if department := r.URL.Query().Get("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var employees []schema.Employee
	result := query.Order("user_name").Find(&employees)
	if result.Error != nil {
		slog.Error("sql error listing employees", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]EmployeeInfo, 0, len(employees))
	for i := range employees {
		infos = append(infos, convertToEmployeeInfo(&employees[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

type createEmployeeResponse struct {
	EmployeeId uuid.UUID `json:"employee_id"`
}

func (s *EmployeeService) Create(w http.ResponseWriter, r *http.Request) {
	var params employeeRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.UserName == "" {
		http.Error(w, "user_name is required", http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	status := params.Status
	if status == "" {
		status = "Active User"
	}

	employee := schema.Employee{
		Id:             uuid.New(),
		UserName:       params.UserName,
		EmailId:        params.EmailId,
		EmailPassword:  params.EmailPassword,
		DomainId:       params.DomainId,
		DomainPassword: params.DomainPassword,
		Department:     params.Department,
		Location:       params.Location,
		Status:         status,
		AssetId:        params.AssetId,
		Remarks:        params.Remarks,
		Comments:       params.Comments,
	}
	if params.AssetId != nil {
		now := time.Now().UTC()
		employee.AssetAssignedDate = &now
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if params.AssetId != nil {
			if _, err := schema.GetAsset(*params.AssetId, txn, false); err != nil {
				if errors.Is(err, schema.ErrAssetNotFound) {
					return CodedError(err, http.StatusNotFound)
				}
				return CodedError(err, http.StatusInternalServerError)
			}
		}

		result := txn.Create(&employee)
		if result.Error != nil {
			slog.Error("sql error creating employee", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "users", "Create", employee.Id.String(), employee.UserName)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating employee: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createEmployeeResponse{EmployeeId: employee.Id})
}

func (s *EmployeeService) getEmployee(r *http.Request) (schema.Employee, error) {
	employeeId, err := utils.URLParamUUID(r, "employee_id")
	if err != nil {
		return schema.Employee{}, CodedError(err, http.StatusBadRequest)
	}

	employee, err := schema.GetEmployee(employeeId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrEmployeeNotFound) {
			return schema.Employee{}, CodedError(err, http.StatusNotFound)
		}
		return schema.Employee{}, CodedError(err, http.StatusInternalServerError)
	}

	return employee, nil
}

func (s *EmployeeService) Get(w http.ResponseWriter, r *http.Request) {
	employee, err := s.getEmployee(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToEmployeeInfo(&employee))
}

type updateEmployeeRequest struct {
	ChangedFields map[string]string `json:"changed_fields"`

	AssetId      *uuid.UUID `json:"asset_id,omitempty"`
	ClearAssetId bool       `json:"clear_asset_id,omitempty"`
}

func applyEmployeeField(employee *schema.Employee, key, value string) error {
	switch key {
	case "UserName":
		employee.UserName = value
	case "EmailId":
		employee.EmailId = value
	case "EmailPassword":
		employee.EmailPassword = value
	case "DomainId":
		employee.DomainId = value
	case "DomainPassword":
		employee.DomainPassword = value
	case "Department":
		employee.Department = value
	case "Location":
		employee.Location = value
	case "Status":
		employee.Status = value
	case "Remarks":
		employee.Remarks = value
	case "Comments":
		employee.Comments = value
	default:
		return fmt.Errorf("field '%v' is not an updatable employee field", key)
	}
	return nil
}

func (s *EmployeeService) Update(w http.ResponseWriter, r *http.Request) {
	employee, err := s.getEmployee(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params updateEmployeeRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if len(params.ChangedFields) == 0 && params.AssetId == nil && !params.ClearAssetId {
		http.Error(w, ErrNoChanges.Error(), http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for key, value := range params.ChangedFields {
		if err := applyEmployeeField(&employee, key, value); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if params.ClearAssetId {
			employee.AssetId = nil
			employee.AssetAssignedDate = nil
		} else if params.AssetId != nil {
			if _, err := schema.GetAsset(*params.AssetId, txn, false); err != nil {
				if errors.Is(err, schema.ErrAssetNotFound) {
					return CodedError(err, http.StatusNotFound)
				}
				return CodedError(err, http.StatusInternalServerError)
			}
			now := time.Now().UTC()
			employee.AssetId = params.AssetId
			employee.AssetAssignedDate = &now
		}

		result := txn.Omit("Asset").Save(&employee)
		if result.Error != nil {
			slog.Error("sql error updating employee", "employee_id", employee.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "users", "Update", employee.Id.String(), fmt.Sprintf("%v fields changed", len(params.ChangedFields)))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating employee: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *EmployeeService) Delete(w http.ResponseWriter, r *http.Request) {
	employee, err := s.getEmployee(r)
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
		result := txn.Delete(&schema.Employee{Id: employee.Id})
		if result.Error != nil {
			slog.Error("sql error deleting employee", "employee_id", employee.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "users", "Delete", employee.Id.String(), employee.UserName)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting employee: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
