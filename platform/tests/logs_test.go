package tests

import (
	"errors"
	"testing"
)

func TestAuditLogAccessAndFilters(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.auditLogs("")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("audit logs should be admin only")
	}

	vendorId, err := user.createVendor(map[string]interface{}{"vendor_name": "Acme"})
	if err != nil {
		t.Fatal(err)
	}
	if err := user.updateVendor(vendorId, map[string]string{"Status": "Inactive"}); err != nil {
		t.Fatal(err)
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := admin.createEmail("ops@corp.example", "pw", ""); err != nil {
		t.Fatal(err)
	}

	vendorLogs, err := admin.auditLogs("module=vendors")
	if err != nil {
		t.Fatal(err)
	}
	if len(vendorLogs) != 2 {
		t.Fatalf("expected 2 vendor entries, got %d", len(vendorLogs))
	}
	for _, entry := range vendorLogs {
		if entry.ActionBy != "abc" || entry.RecordId != vendorId {
			t.Fatalf("unexpected entry %v", entry)
		}
	}

	created, err := admin.auditLogs("module=vendors&action_type=Create")
	if err != nil {
		t.Fatal(err)
	}
	if len(created) != 1 || created[0].AdditionalInfo != "Acme" {
		t.Fatalf("unexpected create entries %v", created)
	}

	byAdmin, err := admin.auditLogs("action_by=" + adminUsername)
	if err != nil {
		t.Fatal(err)
	}
	if len(byAdmin) != 1 || byAdmin[0].Module != "emails" {
		t.Fatalf("unexpected admin entries %v", byAdmin)
	}

	limited, err := admin.auditLogs("limit=1")
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit not applied, got %d entries", len(limited))
	}

	_, err = admin.auditLogs("limit=zero")
	if err == nil {
		t.Fatal("non-numeric limit should be rejected")
	}
	_, err = admin.auditLogs("limit=0")
	if err == nil {
		t.Fatal("zero limit should be rejected")
	}
}
