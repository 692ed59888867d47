package tests

import (
	"errors"
	"strings"
	"testing"

	"itam_platform/platform/catalog"
)

func TestEmployeeLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createEmployee(map[string]interface{}{"department": "Accounts"})
	if err == nil || !strings.Contains(err.Error(), "user_name is required") {
		t.Fatalf("employee without user_name should be rejected: %v", err)
	}

	employeeId, err := user.createEmployee(map[string]interface{}{
		"user_name":  "John Doe",
		"email_id":   "john@corp.example",
		"domain_id":  "CORP\\jdoe",
		"department": "Accounts",
		"location":   "Pune",
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getEmployee(employeeId)
	if err != nil {
		t.Fatal(err)
	}
	if info.UserName != "John Doe" || info.Department != "Accounts" {
		t.Fatalf("unexpected employee %v", info)
	}
	if info.Status != "Active User" {
		t.Fatalf("default status not applied: %v", info.Status)
	}
	if info.AssetId != nil || info.AssetAssignedDate != nil {
		t.Fatal("no asset should be assigned yet")
	}

	err = user.updateEmployee(employeeId, map[string]interface{}{
		"changed_fields": map[string]string{"Status": "Resigned"},
	})
	if err != nil {
		t.Fatal(err)
	}

	err = user.updateEmployee(employeeId, map[string]interface{}{
		"changed_fields": map[string]string{},
	})
	if err == nil || !strings.Contains(err.Error(), "no changes to update") {
		t.Fatalf("empty update should be rejected: %v", err)
	}

	err = user.updateEmployee(employeeId, map[string]interface{}{
		"changed_fields": map[string]string{"Salary": "1"},
	})
	if err == nil {
		t.Fatal("unknown field should be rejected")
	}

	info, err = user.getEmployee(employeeId)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "Resigned" {
		t.Fatalf("update not applied: %v", info.Status)
	}

	err = user.deleteEmployee(employeeId)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("only admins can delete employees")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.deleteEmployee(employeeId); err != nil {
		t.Fatal(err)
	}
}

func TestEmployeeAssetAssignment(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	assetId, err := user.createAsset(catalog.Laptop, map[string]string{"HostName": "LT-7"}, "")
	if err != nil {
		t.Fatal(err)
	}

	employeeId, err := user.createEmployee(map[string]interface{}{
		"user_name": "Jane Doe",
		"asset_id":  assetId,
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getEmployee(employeeId)
	if err != nil {
		t.Fatal(err)
	}
	if info.AssetId == nil || info.AssetId.String() != assetId {
		t.Fatalf("asset not linked: %v", info)
	}
	if info.AssetHostName != "LT-7" {
		t.Fatalf("asset hostname not resolved: %v", info.AssetHostName)
	}
	if info.AssetAssignedDate == nil {
		t.Fatal("assignment date should be recorded")
	}

	_, err = user.createEmployee(map[string]interface{}{
		"user_name": "Ghost",
		"asset_id":  "8b9f34c1-0000-0000-0000-000000000000",
	})
	if err == nil {
		t.Fatal("linking a missing asset should fail")
	}

	err = user.updateEmployee(employeeId, map[string]interface{}{
		"changed_fields": map[string]string{},
		"clear_asset_id": true,
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err = user.getEmployee(employeeId)
	if err != nil {
		t.Fatal(err)
	}
	if info.AssetId != nil || info.AssetAssignedDate != nil {
		t.Fatal("asset link should be cleared")
	}
}
