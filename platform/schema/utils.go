package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrSimCardNotFound      = errors.New("sim card not found")
	ErrVendorNotFound       = errors.New("vendor not found")
	ErrEmailAccountNotFound = errors.New("email account not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrDbAccessFailed       = errors.New("db access failed")
)

func GetUser(userId uuid.UUID, db *gorm.DB) (User, error) {
	var user User

	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user", "user_id", userId, "error", result.Error)
		return user, ErrDbAccessFailed
	}

	return user, nil
}

func GetAsset(assetId uuid.UUID, db *gorm.DB, loadAttrs bool) (Asset, error) {
	var asset Asset

	var result *gorm.DB = db
	if loadAttrs {
		result = result.Preload("Attributes")
	}
	result = result.First(&asset, "id = ?", assetId)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return asset, ErrAssetNotFound
		}
		slog.Error("sql error in get asset", "asset_id", assetId, "error", result.Error)
		return asset, ErrDbAccessFailed
	}

	return asset, nil
}

func GetEmployee(employeeId uuid.UUID, db *gorm.DB) (Employee, error) {
	var employee Employee

	result := db.Preload("Asset").First(&employee, "id = ?", employeeId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return employee, ErrEmployeeNotFound
		}
		slog.Error("sql error in get employee", "employee_id", employeeId, "error", result.Error)
		return employee, ErrDbAccessFailed
	}

	return employee, nil
}

func GetSimCard(simCardId uuid.UUID, db *gorm.DB) (SimCard, error) {
	var sim SimCard

	result := db.First(&sim, "id = ?", simCardId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return sim, ErrSimCardNotFound
		}
		slog.Error("sql error in get sim card", "sim_card_id", simCardId, "error", result.Error)
		return sim, ErrDbAccessFailed
	}

	return sim, nil
}

func GetVendor(vendorId uuid.UUID, db *gorm.DB) (Vendor, error) {
	var vendor Vendor

	result := db.First(&vendor, "id = ?", vendorId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return vendor, ErrVendorNotFound
		}
		slog.Error("sql error in get vendor", "vendor_id", vendorId, "error", result.Error)
		return vendor, ErrDbAccessFailed
	}

	return vendor, nil
}

func GetEmailAccount(emailId uuid.UUID, db *gorm.DB, loadAssignments bool) (EmailAccount, error) {
	var email EmailAccount

	var result *gorm.DB = db
	if loadAssignments {
		result = result.Preload("Assignments").Preload("Assignments.Employee")
	}
	result = result.First(&email, "id = ?", emailId)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return email, ErrEmailAccountNotFound
		}
		slog.Error("sql error in get email account", "email_id", emailId, "error", result.Error)
		return email, ErrDbAccessFailed
	}

	return email, nil
}

func GetInvoice(invoiceId uuid.UUID, db *gorm.DB) (Invoice, error) {
	var invoice Invoice

	result := db.Preload("Vendor").First(&invoice, "id = ?", invoiceId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return invoice, ErrInvoiceNotFound
		}
		slog.Error("sql error in get invoice", "invoice_id", invoiceId, "error", result.Error)
		return invoice, ErrDbAccessFailed
	}

	return invoice, nil
}
