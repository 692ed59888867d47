package tests

import (
	"errors"
	"strings"
	"testing"

	"itam_platform/platform/catalog"
)

func TestAssetLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	assetId, err := user.createAsset(catalog.Laptop, map[string]string{
		"HostName": "LT-0042",
		"Brand":    "Dell",
		"SerialNo": "SN-991",
		"RAM":      "16GB",
		"Storage":  "1TB SSD",
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}

	if info.Category != catalog.Laptop {
		t.Fatalf("wrong category %v", info.Category)
	}
	if info.Fields["HostName"] != "LT-0042" || info.Fields["Brand"] != "Dell" {
		t.Fatalf("fields not stored: %v", info.Fields)
	}
	if info.Fields["Status"] != "Active" || info.Fields["Location"] != "Mumbai" {
		t.Fatalf("defaults not applied: %v", info.Fields)
	}
	if info.Fields["Storage"] != "1TB SSD" {
		t.Fatalf("attribute not stored: %v", info.Fields)
	}

	if _, err := user.getAsset(catalog.Desktop, assetId); err == nil {
		t.Fatal("asset should not be visible under another category")
	}

	err = user.updateAsset(catalog.Laptop, assetId, map[string]string{
		"Status":  "Repairing",
		"Storage": "2TB SSD",
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err = user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.Fields["Status"] != "Repairing" || info.Fields["Storage"] != "2TB SSD" {
		t.Fatalf("update not applied: %v", info.Fields)
	}

	assets, err := user.listAssets(catalog.Laptop)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].Id.String() != assetId {
		t.Fatalf("unexpected asset list: %v", assets)
	}

	err = user.deleteAsset(catalog.Laptop, assetId)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("only admins can delete assets")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	err = admin.deleteAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}

	assets, err = user.listAssets(catalog.Laptop)
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 0 {
		t.Fatal("asset should be deleted")
	}

	logs, err := admin.auditLogs("module=assets")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected create, update, and delete audit entries, got %d", len(logs))
	}
}

func TestAssetValidation(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createAsset(catalog.Laptop, map[string]string{"Cpu": "i7"}, "")
	if err == nil || !strings.Contains(err.Error(), "not part of the Laptop field set") {
		t.Fatalf("unknown field should be rejected: %v", err)
	}

	_, err = user.createAsset(catalog.Laptop, map[string]string{"Brand": "Apple"}, "")
	if err == nil || !strings.Contains(err.Error(), "not a valid option") {
		t.Fatalf("invalid select option should be rejected: %v", err)
	}

	_, err = user.createAsset(catalog.Category("Toaster"), map[string]string{}, "")
	if err == nil {
		t.Fatal("unknown category should be rejected")
	}

	assetId, err := user.createAsset(catalog.Printer, map[string]string{"HostName": "PRN-1"}, "")
	if err != nil {
		t.Fatal(err)
	}

	// Storage is a laptop/desktop field, printers reject it.
	err = user.updateAsset(catalog.Printer, assetId, map[string]string{"Storage": "1TB SSD"})
	if err == nil {
		t.Fatal("field from another category should be rejected")
	}

	err = user.updateAsset(catalog.Printer, assetId, map[string]string{})
	if err == nil || !strings.Contains(err.Error(), "no changes to update") {
		t.Fatalf("empty update should be rejected: %v", err)
	}

	err = user.updateAsset(catalog.Printer, assetId, map[string]string{"Category": "Laptop"})
	if err == nil || !strings.Contains(err.Error(), "cannot be updated") {
		t.Fatalf("category should be immutable: %v", err)
	}
}

func TestAssetAllotment(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	assetId, err := user.createAsset(catalog.Laptop, map[string]string{"HostName": "LT-1"}, "alice")
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentHolder != "alice" || len(info.PreviousHolders) != 0 {
		t.Fatalf("unexpected allotment %v", info)
	}

	for _, holder := range []string{"bob", "carol"} {
		if err := user.reassignAsset(catalog.Laptop, assetId, holder); err != nil {
			t.Fatal(err)
		}
	}

	info, err = user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentHolder != "carol" {
		t.Fatalf("expected carol as holder, got %v", info.CurrentHolder)
	}
	if len(info.PreviousHolders) != 2 || info.PreviousHolders[0] != "bob" || info.PreviousHolders[1] != "alice" {
		t.Fatalf("previous holders should be most recently displaced first: %v", info.PreviousHolders)
	}
	if info.AllotedUserName != "alice/bob/carol" {
		t.Fatalf("unexpected stored allotment %v", info.AllotedUserName)
	}

	// Reassigning to the current holder changes nothing.
	if err := user.reassignAsset(catalog.Laptop, assetId, "carol"); err != nil {
		t.Fatal(err)
	}
	info, err = user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.AllotedUserName != "alice/bob/carol" {
		t.Fatalf("identity reassignment should not grow the history: %v", info.AllotedUserName)
	}

	// A holder returning to the machine is removed from the history.
	if err := user.reassignAsset(catalog.Laptop, assetId, "alice"); err != nil {
		t.Fatal(err)
	}
	info, err = user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentHolder != "alice" {
		t.Fatalf("expected alice as holder, got %v", info.CurrentHolder)
	}
	if len(info.PreviousHolders) != 2 || info.PreviousHolders[0] != "carol" || info.PreviousHolders[1] != "bob" {
		t.Fatalf("unexpected previous holders: %v", info.PreviousHolders)
	}
}

func TestSwapHostnames(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	first, err := user.createAsset(catalog.Laptop, map[string]string{"HostName": "LT-1"}, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := user.createAsset(catalog.Desktop, map[string]string{"HostName": "DT-1"}, "")
	if err != nil {
		t.Fatal(err)
	}

	err = user.swapHostnames(first, first)
	if err == nil {
		t.Fatal("self swap should be rejected")
	}

	err = user.swapHostnames(first, second)
	if err != nil {
		t.Fatal(err)
	}

	firstInfo, err := user.getAsset(catalog.Laptop, first)
	if err != nil {
		t.Fatal(err)
	}
	secondInfo, err := user.getAsset(catalog.Desktop, second)
	if err != nil {
		t.Fatal(err)
	}
	if firstInfo.Fields["HostName"] != "DT-1" || secondInfo.Fields["HostName"] != "LT-1" {
		t.Fatal("hostnames should be swapped")
	}

	hostnames, err := user.hostnames()
	if err != nil {
		t.Fatal(err)
	}
	if len(hostnames) != 2 || hostnames[0].HostName != "DT-1" || hostnames[1].HostName != "LT-1" {
		t.Fatalf("unexpected hostname list: %v", hostnames)
	}
}

func TestCategories(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	categories, err := user.categories()
	if err != nil {
		t.Fatal(err)
	}
	if len(categories) != 9 {
		t.Fatalf("expected 9 categories, got %d", len(categories))
	}

	for _, info := range categories {
		if info.Defaults["Status"] != "Active" || info.Defaults["Location"] != "Mumbai" {
			t.Fatalf("missing defaults for %v: %v", info.Name, info.Defaults)
		}

		hasWarranty := false
		for _, field := range info.Fields {
			if field == "WarrantyStatus" {
				hasWarranty = true
			}
		}
		if info.Name == catalog.AP && hasWarranty {
			t.Fatal("access points should not carry warranty status")
		}
		if info.Name != catalog.AP && !hasWarranty {
			t.Fatalf("category %v should carry warranty status", info.Name)
		}

		if info.Rules["Status"].Kind != catalog.BoundedSelect {
			t.Fatalf("Status should be a bounded select for %v", info.Name)
		}
		if info.Rules["HostName"].Kind != catalog.PlainText {
			t.Fatalf("HostName should be plain text for %v", info.Name)
		}
	}
}

func TestAssetSecretMasking(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	assetId, err := user.createAsset(catalog.Laptop, map[string]string{
		"HostName":       "LT-7",
		"LaptopPassword": "hunter2",
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getAsset(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if info.Fields["LaptopPassword"] != catalog.Mask {
		t.Fatalf("secret should be masked, got %q", info.Fields["LaptopPassword"])
	}
	if info.Fields["HostName"] != "LT-7" {
		t.Fatal("non-secret fields should be untouched")
	}

	listed, err := user.listAssets(catalog.Laptop)
	if err != nil {
		t.Fatal(err)
	}
	if listed[0].Fields["LaptopPassword"] != catalog.Mask {
		t.Fatal("secrets should be masked in listings")
	}

	revealed, err := user.getAssetRevealed(catalog.Laptop, assetId)
	if err != nil {
		t.Fatal(err)
	}
	if revealed.Fields["LaptopPassword"] != "hunter2" {
		t.Fatalf("reveal should return the stored value, got %q", revealed.Fields["LaptopPassword"])
	}

	// Empty secrets stay empty rather than gaining a mask.
	deskId, err := user.createAsset(catalog.Desktop, map[string]string{"HostName": "DT-7"}, "")
	if err != nil {
		t.Fatal(err)
	}
	deskInfo, err := user.getAsset(catalog.Desktop, deskId)
	if err != nil {
		t.Fatal(err)
	}
	if deskInfo.Fields["DesktopPassword"] != "" {
		t.Fatalf("unset secret should stay empty, got %q", deskInfo.Fields["DesktopPassword"])
	}
}
