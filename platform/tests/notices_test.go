package tests

import (
	"strings"
	"testing"
)

func TestComposeNotice(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	notice, err := user.composeNotice("data-usage-90", "name=Alice&cell_no=9876543210&month=March")
	if err != nil {
		t.Fatal(err)
	}
	if notice["subject"] != "Data usage alert for 9876543210" {
		t.Fatalf("unexpected subject %q", notice["subject"])
	}
	if !strings.Contains(notice["body"], "Hi Alice,") ||
		!strings.Contains(notice["body"], "90% of its data") ||
		!strings.Contains(notice["body"], "for March.") {
		t.Fatalf("unexpected body %q", notice["body"])
	}

	notice, err = user.composeNotice("bill-approval", "name=Bob&vendor=Airtel&month=April&amount=12000")
	if err != nil {
		t.Fatal(err)
	}
	if notice["subject"] != "Approval required: Airtel bill for April" {
		t.Fatalf("unexpected subject %q", notice["subject"])
	}
	if !strings.Contains(notice["body"], "amounting to 12000") {
		t.Fatalf("unexpected body %q", notice["body"])
	}

	// Missing values render as empty strings rather than failing.
	notice, err = user.composeNotice("data-usage-100", "cell_no=9876543210")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(notice["body"], "Hi ,") {
		t.Fatalf("unexpected body %q", notice["body"])
	}

	_, err = user.composeNotice("password-reset", "")
	if err == nil || !strings.Contains(err.Error(), "unknown notice type") {
		t.Fatalf("unknown notice type should be rejected: %v", err)
	}
}
