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

type VendorService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *VendorService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Get("/{vendor_id}", s.Get)
	r.Put("/{vendor_id}", s.Update)

	r.With(auth.AdminOnly(s.db)).Delete("/{vendor_id}", s.Delete)

	return r
}

type vendorRequest struct {
	VendorName string `json:"vendor_name"`
	Category   string `json:"category"`
	Location   string `json:"location"`
	Address    string `json:"address"`

	Gstin              string `json:"gstin"`
	RegistrationNumber string `json:"registration_number"`

	ContactPerson string `json:"contact_person"`
	ContactPhone  string `json:"contact_phone"`
	ContactEmail  string `json:"contact_email"`
	Website       string `json:"website"`

	BankName          string `json:"bank_name"`
	BankAccountNumber string `json:"bank_account_number"`
	IfscCode          string `json:"ifsc_code"`

	PaymentTerms string `json:"payment_terms"`
	CreditLimit  string `json:"credit_limit"`

	Status string `json:"status"`
}

type VendorInfo struct {
	Id uuid.UUID `json:"id"`
	vendorRequest
}

func convertToVendorInfo(vendor *schema.Vendor) VendorInfo {
	return VendorInfo{
		Id: vendor.Id,
		vendorRequest: vendorRequest{
			VendorName:         vendor.VendorName,
			Category:           vendor.Category,
			Location:           vendor.Location,
			Address:            vendor.Address,
			Gstin:              vendor.Gstin,
			RegistrationNumber: vendor.RegistrationNumber,
			ContactPerson:      vendor.ContactPerson,
			ContactPhone:       vendor.ContactPhone,
			ContactEmail:       vendor.ContactEmail,
			Website:            vendor.Website,
			BankName:           vendor.BankName,
			BankAccountNumber:  vendor.BankAccountNumber,
			IfscCode:           vendor.IfscCode,
			PaymentTerms:       vendor.PaymentTerms,
			CreditLimit:        vendor.CreditLimit,
			Status:             vendor.Status,
		},
	}
}

func (s *VendorService) List(w http.ResponseWriter, r *http.Request) {
	var query *gorm.DB = s.db
	if category := r.URL.Query().Get("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var vendors []schema.Vendor
	result := query.Order("vendor_name").Find(&vendors)
	if result.Error != nil {
		slog.Error("sql error listing vendors", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]VendorInfo, 0, len(vendors))
	for i := range vendors {
		infos = append(infos, convertToVendorInfo(&vendors[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

type createVendorResponse struct {
	VendorId uuid.UUID `json:"vendor_id"`
}

func (s *VendorService) Create(w http.ResponseWriter, r *http.Request) {
	var params vendorRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.VendorName == "" {
		http.Error(w, "vendor_name is required", http.StatusUnprocessableEntity)
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

	vendor := schema.Vendor{
		Id:                 uuid.New(),
		VendorName:         params.VendorName,
		Category:           params.Category,
		Location:           params.Location,
		Address:            params.Address,
		Gstin:              params.Gstin,
		RegistrationNumber: params.RegistrationNumber,
		ContactPerson:      params.ContactPerson,
		ContactPhone:       params.ContactPhone,
		ContactEmail:       params.ContactEmail,
		Website:            params.Website,
		BankName:           params.BankName,
		BankAccountNumber:  params.BankAccountNumber,
		IfscCode:           params.IfscCode,
		PaymentTerms:       params.PaymentTerms,
		CreditLimit:        params.CreditLimit,
		Status:             status,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Create(&vendor)
		if result.Error != nil {
			slog.Error("sql error creating vendor", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "vendors", "Create", vendor.Id.String(), vendor.VendorName)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating vendor: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createVendorResponse{VendorId: vendor.Id})
}

func (s *VendorService) getVendor(r *http.Request) (schema.Vendor, error) {
	vendorId, err := utils.URLParamUUID(r, "vendor_id")
	if err != nil {
		return schema.Vendor{}, CodedError(err, http.StatusBadRequest)
	}

	vendor, err := schema.GetVendor(vendorId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrVendorNotFound) {
			return schema.Vendor{}, CodedError(err, http.StatusNotFound)
		}
		return schema.Vendor{}, CodedError(err, http.StatusInternalServerError)
	}

	return vendor, nil
}

func (s *VendorService) Get(w http.ResponseWriter, r *http.Request) {
	vendor, err := s.getVendor(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToVendorInfo(&vendor))
}

type updateVendorRequest struct {
	ChangedFields map[string]string `json:"changed_fields"`
}

func applyVendorField(vendor *schema.Vendor, key, value string) error {
	switch key {
	case "VendorName":
		vendor.VendorName = value
	case "Category":
		vendor.Category = value
	case "Location":
		vendor.Location = value
	case "Address":
		vendor.Address = value
	case "Gstin":
		vendor.Gstin = value
	case "RegistrationNumber":
		vendor.RegistrationNumber = value
	case "ContactPerson":
		vendor.ContactPerson = value
	case "ContactPhone":
		vendor.ContactPhone = value
	case "ContactEmail":
		vendor.ContactEmail = value
	case "Website":
		vendor.Website = value
	case "BankName":
		vendor.BankName = value
	case "BankAccountNumber":
		vendor.BankAccountNumber = value
	case "IfscCode":
		vendor.IfscCode = value
	case "PaymentTerms":
		vendor.PaymentTerms = value
	case "CreditLimit":
		vendor.CreditLimit = value
	case "Status":
		vendor.Status = value
	default:
		return fmt.Errorf("field '%v' is not an updatable vendor field", key)
	}
	return nil
}

func (s *VendorService) Update(w http.ResponseWriter, r *http.Request) {
	vendor, err := s.getVendor(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	var params updateVendorRequest
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
		if err := applyVendorField(&vendor, key, value); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Save(&vendor)
		if result.Error != nil {
			slog.Error("sql error updating vendor", "vendor_id", vendor.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "vendors", "Update", vendor.Id.String(), fmt.Sprintf("%v fields changed", len(params.ChangedFields)))
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error updating vendor: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *VendorService) Delete(w http.ResponseWriter, r *http.Request) {
	vendor, err := s.getVendor(r)
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
		var count int64
		result := txn.Model(&schema.Invoice{}).Where("vendor_id = ?", vendor.Id).Count(&count)
		if result.Error != nil {
			slog.Error("sql error counting vendor invoices", "vendor_id", vendor.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if count > 0 {
			return CodedError(fmt.Errorf("vendor %v has %v invoices attached", vendor.VendorName, count), http.StatusUnprocessableEntity)
		}

		result = txn.Delete(&schema.Vendor{Id: vendor.Id})
		if result.Error != nil {
			slog.Error("sql error deleting vendor", "vendor_id", vendor.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "vendors", "Delete", vendor.Id.String(), vendor.VendorName)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting vendor: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}
