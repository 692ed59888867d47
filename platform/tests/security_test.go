package tests

import (
	"errors"
	"testing"
)

func TestVerifyMasterPassword(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	verified, err := user.verifyMasterPassword(masterPassword)
	if err != nil {
		t.Fatal(err)
	}
	if !verified {
		t.Fatal("correct master password should verify")
	}

	verified, err = user.verifyMasterPassword("not the password")
	if err != nil {
		t.Fatal("a wrong master password is not a request error")
	}
	if verified {
		t.Fatal("wrong master password should not verify")
	}

	verified, err = user.verifyMasterPassword("")
	if err != nil {
		t.Fatal(err)
	}
	if verified {
		t.Fatal("empty master password should not verify")
	}

	anon := env.newClient()
	_, err = anon.verifyMasterPassword(masterPassword)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("verification requires a logged in user")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}

	logs, err := admin.auditLogs("module=security")
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 verification attempts in the audit trail, got %d", len(logs))
	}
	rejected := 0
	for _, entry := range logs {
		if entry.ActionType != "VerifyMasterPassword" {
			t.Fatalf("unexpected action type %v", entry.ActionType)
		}
		if entry.AdditionalInfo == "rejected" {
			rejected++
		}
	}
	if rejected != 2 {
		t.Fatalf("expected 2 rejected attempts, got %d", rejected)
	}

	// Both route spellings hit the same handler.
	var res map[string]bool
	err = user.Post("/verify-master-password").Json(map[string]string{"password": masterPassword}).Do(&res)
	if err != nil {
		t.Fatal(err)
	}
	if !res["verified"] || !res["valid"] {
		t.Fatalf("legacy route should set both keys: %v", res)
	}
}
