package tests

import (
	"errors"
	"strings"
	"testing"
)

func TestVendorLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createVendor(map[string]interface{}{"category": "Hardware"})
	if err == nil || !strings.Contains(err.Error(), "vendor_name is required") {
		t.Fatalf("vendor without name should be rejected: %v", err)
	}

	vendorId, err := user.createVendor(map[string]interface{}{
		"vendor_name":    "Acme Supplies",
		"category":       "Hardware",
		"location":       "Mumbai",
		"gstin":          "27AAACA1234A1Z5",
		"contact_person": "Ravi",
		"ifsc_code":      "HDFC0000123",
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getVendor(vendorId)
	if err != nil {
		t.Fatal(err)
	}
	if info.VendorName != "Acme Supplies" || info.Gstin != "27AAACA1234A1Z5" {
		t.Fatalf("unexpected vendor %v", info)
	}
	if info.Status != "Active" {
		t.Fatalf("default status not applied: %v", info.Status)
	}

	err = user.updateVendor(vendorId, map[string]string{"ContactPhone": "022-5551234", "Status": "Inactive"})
	if err != nil {
		t.Fatal(err)
	}

	err = user.updateVendor(vendorId, map[string]string{})
	if err == nil || !strings.Contains(err.Error(), "no changes to update") {
		t.Fatalf("empty update should be rejected: %v", err)
	}

	err = user.updateVendor(vendorId, map[string]string{"TaxBracket": "30"})
	if err == nil {
		t.Fatal("unknown field should be rejected")
	}

	info, err = user.getVendor(vendorId)
	if err != nil {
		t.Fatal(err)
	}
	if info.ContactPhone != "022-5551234" || info.Status != "Inactive" {
		t.Fatalf("update not applied: %v", info)
	}

	err = user.deleteVendor(vendorId)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("only admins can delete vendors")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.deleteVendor(vendorId); err != nil {
		t.Fatal(err)
	}
}

func TestVendorDeleteBlockedByInvoices(t *testing.T) {
	env := setupTestEnv(t)

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	vendorId, err := admin.createVendor(map[string]interface{}{"vendor_name": "Acme Supplies"})
	if err != nil {
		t.Fatal(err)
	}

	invoiceId, err := admin.createInvoice(map[string]interface{}{
		"recieved_name":  "Acme Supplies",
		"invoice_number": "INV-100",
		"amount":         1250.50,
		"vendor_id":      vendorId,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = admin.deleteVendor(vendorId)
	if err == nil || !strings.Contains(err.Error(), "invoices attached") {
		t.Fatalf("vendor with invoices should not be deletable: %v", err)
	}

	if err := admin.deleteInvoice(invoiceId); err != nil {
		t.Fatal(err)
	}
	if err := admin.deleteVendor(vendorId); err != nil {
		t.Fatal(err)
	}
}
