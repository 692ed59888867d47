package services

import (
	"errors"
	"fmt"
	"io"
	"itam_platform/platform/auth"
	"itam_platform/platform/schema"
	"itam_platform/platform/storage"
	"itam_platform/utils"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceService struct {
	db       *gorm.DB
	storage  storage.Storage
	userAuth auth.IdentityProvider
}

func (s *InvoiceService) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.With(checkSufficientStorage(s.storage)).Post("/{invoice_id}/upload", s.Upload)
	r.Get("/{invoice_id}/download", s.Download)

	r.Get("/{invoice_id}", s.Get)

	r.With(auth.AdminOnly(s.db)).Delete("/{invoice_id}", s.Delete)

	return r
}

func checkDiskUsage(store storage.Storage) error {
	stats, err := store.Usage()
	if err != nil {
		slog.Error("unable to get disk usage from storage", "error", err)
		return CodedError(errors.New("unable to get disk usage"), http.StatusInternalServerError)
	}
	oneMib := uint64(1024 * 1024)
	// Either 20% disk needs to be free or 20Gb (in case the disk is very large)
	threshold := min(stats.TotalBytes/5, 20*1024*oneMib)
	if stats.FreeBytes < threshold {
		used := (stats.TotalBytes - stats.FreeBytes) / oneMib
		total := stats.TotalBytes / oneMib
		delta := (threshold - stats.FreeBytes) / oneMib
		return CodedError(fmt.Errorf("insufficient disk space available, usage: %d/%d Mib, please clear %d Mib", used, total, delta), http.StatusInsufficientStorage)
	}
	return nil
}

func checkSufficientStorage(store storage.Storage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		handler := func(w http.ResponseWriter, r *http.Request) {
			if err := checkDiskUsage(store); err != nil {
				slog.Error(err.Error())
				http.Error(w, err.Error(), GetResponseCode(err))
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(handler)
	}
}

type invoiceRequest struct {
	ReceivedName  string `json:"recieved_name"`
	InvoiceNumber string `json:"invoice_number"`

	InvoiceDate time.Time `json:"invoice_date"`

	Amount  float64 `json:"amount"`
	Purpose string  `json:"purpose"`

	VendorId *uuid.UUID `json:"vendor_id,omitempty"`
}

type InvoiceInfo struct {
	Id uuid.UUID `json:"id"`

	ReceivedName  string `json:"recieved_name"`
	InvoiceNumber string `json:"invoice_number"`

	UploadDate  time.Time `json:"upload_date"`
	InvoiceDate time.Time `json:"invoice_date"`

	Amount  float64 `json:"amount"`
	Purpose string  `json:"purpose"`

	FilePath string `json:"file_path,omitempty"`

	VendorId   *uuid.UUID `json:"vendor_id,omitempty"`
	VendorName string     `json:"vendor_name,omitempty"`
}

func convertToInvoiceInfo(invoice *schema.Invoice) InvoiceInfo {
	info := InvoiceInfo{
		Id:            invoice.Id,
		ReceivedName:  invoice.ReceivedName,
		InvoiceNumber: invoice.InvoiceNumber,
		UploadDate:    invoice.UploadDate,
		InvoiceDate:   invoice.InvoiceDate,
		Amount:        invoice.Amount,
		Purpose:       invoice.Purpose,
		FilePath:      invoice.FilePath,
		VendorId:      invoice.VendorId,
	}
	if invoice.Vendor != nil {
		info.VendorName = invoice.Vendor.VendorName
	}
	return info
}

func (s *InvoiceService) List(w http.ResponseWriter, r *http.Request) {
	var query *gorm.DB = s.db.Preload("Vendor")
	if vendorId := r.URL.Query().Get("vendor_id"); vendorId != "" {
		id, err := uuid.Parse(vendorId)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid uuid '%v' provided: %v", vendorId, err), http.StatusBadRequest)
			return
		}
		query = query.Where("vendor_id = ?", id)
	}

	var invoices []schema.Invoice
	result := query.Order("invoice_date desc").Find(&invoices)
	if result.Error != nil {
		slog.Error("sql error listing invoices", "error", result.Error)
		http.Error(w, schema.ErrDbAccessFailed.Error(), http.StatusInternalServerError)
		return
	}

	infos := make([]InvoiceInfo, 0, len(invoices))
	for i := range invoices {
		infos = append(infos, convertToInvoiceInfo(&invoices[i]))
	}

	utils.WriteJsonResponse(w, infos)
}

type createInvoiceResponse struct {
	InvoiceId uuid.UUID `json:"invoice_id"`
}

func (s *InvoiceService) Create(w http.ResponseWriter, r *http.Request) {
	var params invoiceRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.InvoiceNumber == "" {
		http.Error(w, "invoice_number is required", http.StatusUnprocessableEntity)
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	invoice := schema.Invoice{
		Id:            uuid.New(),
		ReceivedName:  params.ReceivedName,
		InvoiceNumber: params.InvoiceNumber,
		UploadDate:    time.Now().UTC(),
		InvoiceDate:   params.InvoiceDate,
		Amount:        params.Amount,
		Purpose:       params.Purpose,
		VendorId:      params.VendorId,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if params.VendorId != nil {
			if _, err := schema.GetVendor(*params.VendorId, txn); err != nil {
				if errors.Is(err, schema.ErrVendorNotFound) {
					return CodedError(err, http.StatusNotFound)
				}
				return CodedError(err, http.StatusInternalServerError)
			}
		}

		result := txn.Create(&invoice)
		if result.Error != nil {
			slog.Error("sql error creating invoice", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "invoices", "Create", invoice.Id.String(), invoice.InvoiceNumber)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error creating invoice: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, createInvoiceResponse{InvoiceId: invoice.Id})
}

func (s *InvoiceService) getInvoice(r *http.Request) (schema.Invoice, error) {
	invoiceId, err := utils.URLParamUUID(r, "invoice_id")
	if err != nil {
		return schema.Invoice{}, CodedError(err, http.StatusBadRequest)
	}

	invoice, err := schema.GetInvoice(invoiceId, s.db)
	if err != nil {
		if errors.Is(err, schema.ErrInvoiceNotFound) {
			return schema.Invoice{}, CodedError(err, http.StatusNotFound)
		}
		return schema.Invoice{}, CodedError(err, http.StatusInternalServerError)
	}

	return invoice, nil
}

func (s *InvoiceService) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.getInvoice(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	utils.WriteJsonResponse(w, convertToInvoiceInfo(&invoice))
}

const maxInvoiceUploadBytes = 50 << 20

// Upload attaches the invoice document. Multipart form with a single
// 'file' part; replaces any previously attached document.
func (s *InvoiceService) Upload(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.getInvoice(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	user, err := auth.UserFromContext(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(maxInvoiceUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("error parsing multipart form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("error reading file from request: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	path := storage.InvoicePath(invoice.Id.String(), filepath.Base(header.Filename))

	if invoice.FilePath != "" && invoice.FilePath != path {
		if err := s.storage.Delete(invoice.FilePath); err != nil {
			slog.Error("error removing old invoice document", "invoice_id", invoice.Id, "error", err)
		}
	}

	if err := s.storage.Write(path, file); err != nil {
		http.Error(w, fmt.Sprintf("error storing invoice document: %v", err), http.StatusInternalServerError)
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		result := txn.Model(&schema.Invoice{Id: invoice.Id}).Updates(map[string]interface{}{
			"file_path":   path,
			"upload_date": time.Now().UTC(),
		})
		if result.Error != nil {
			slog.Error("sql error updating invoice file path", "invoice_id", invoice.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "invoices", "Upload", invoice.Id.String(), header.Filename)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error uploading invoice document: %v", err), GetResponseCode(err))
		return
	}

	utils.WriteSuccess(w)
}

func (s *InvoiceService) Download(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.getInvoice(r)
	if err != nil {
		http.Error(w, err.Error(), GetResponseCode(err))
		return
	}

	if invoice.FilePath == "" {
		http.Error(w, fmt.Sprintf("invoice %v has no document attached", invoice.Id), http.StatusNotFound)
		return
	}

	file, err := s.storage.Read(invoice.FilePath)
	if err != nil {
		http.Error(w, fmt.Sprintf("error reading invoice document: %v", err), http.StatusInternalServerError)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(invoice.FilePath)))

	if _, err := io.Copy(w, file); err != nil {
		slog.Error("error streaming invoice document", "invoice_id", invoice.Id, "error", err)
	}
}

func (s *InvoiceService) Delete(w http.ResponseWriter, r *http.Request) {
	invoice, err := s.getInvoice(r)
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
		result := txn.Delete(&schema.Invoice{Id: invoice.Id})
		if result.Error != nil {
			slog.Error("sql error deleting invoice", "invoice_id", invoice.Id, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return recordAction(txn, user.Username, "invoices", "Delete", invoice.Id.String(), invoice.InvoiceNumber)
	})

	if err != nil {
		http.Error(w, fmt.Sprintf("error deleting invoice: %v", err), GetResponseCode(err))
		return
	}

	if invoice.FilePath != "" {
		if err := s.storage.Delete(filepath.Dir(invoice.FilePath)); err != nil {
			slog.Error("error removing invoice document", "invoice_id", invoice.Id, "error", err)
		}
	}

	utils.WriteSuccess(w)
}
