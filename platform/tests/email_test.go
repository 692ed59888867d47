package tests

import (
	"errors"
	"strings"
	"testing"
)

func TestEmailAccountLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createEmail("", "pw", "")
	if err == nil || !strings.Contains(err.Error(), "email_address is required") {
		t.Fatalf("mailbox without address should be rejected: %v", err)
	}

	emailId, err := user.createEmail("support@corp.example", "hunter2", "")
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if info.Address != "support@corp.example" || info.Password != "hunter2" {
		t.Fatalf("unexpected mailbox %v", info)
	}
	if info.Status != "Active" {
		t.Fatalf("expected default status Active, got %v", info.Status)
	}
	if len(info.AssignedUsers) != 0 {
		t.Fatal("new mailbox should have no assignments")
	}

	err = user.updateEmail(emailId, map[string]string{"Status": "Suspended", "EmailPassword": "hunter3"})
	if err != nil {
		t.Fatal(err)
	}

	info, err = user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if info.Status != "Suspended" || info.Password != "hunter3" {
		t.Fatalf("update not applied: %v", info)
	}

	err = user.updateEmail(emailId, nil)
	if err == nil {
		t.Fatal("empty update should be rejected")
	}

	err = user.updateEmail(emailId, map[string]string{"MailQuota": "10G"})
	if err == nil || !strings.Contains(err.Error(), "not an updatable email field") {
		t.Fatalf("unknown field should be rejected: %v", err)
	}

	err = user.deleteEmail(emailId)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("only admins can delete mailboxes")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.deleteEmail(emailId); err != nil {
		t.Fatal(err)
	}

	_, err = user.getEmail(emailId)
	if err == nil {
		t.Fatal("deleted mailbox should not be readable")
	}
}

func TestEmailListAndCounts(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	for _, account := range []struct{ address, status string }{
		{"billing@corp.example", "Active"},
		{"alerts@corp.example", "Active"},
		{"retired@corp.example", "Deactivated"},
	} {
		if _, err := user.createEmail(account.address, "pw", account.status); err != nil {
			t.Fatal(err)
		}
	}

	all, err := user.listEmails(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 mailboxes, got %d", len(all))
	}
	// Ordered by address.
	if all[0].Address != "alerts@corp.example" || all[1].Address != "billing@corp.example" {
		t.Fatalf("unexpected order %v, %v", all[0].Address, all[1].Address)
	}

	active, err := user.listEmails(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active mailboxes, got %d", len(active))
	}
	for _, info := range active {
		if info.Status != "Active" {
			t.Fatalf("inactive mailbox in active list: %v", info)
		}
	}

	counts, err := user.emailCounts()
	if err != nil {
		t.Fatal(err)
	}
	if counts["total"] != 3 || counts["active"] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestEmailForwarding(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	emailId, err := user.createEmail("sales@corp.example", "pw", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := user.forwardEmail(emailId, "manager@corp.example"); err != nil {
		t.Fatal(err)
	}

	info, err := user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if info.ForwardTo != "manager@corp.example" {
		t.Fatalf("forwarding not recorded: %v", info.ForwardTo)
	}

	// Empty destination turns forwarding off.
	if err := user.forwardEmail(emailId, ""); err != nil {
		t.Fatal(err)
	}

	info, err = user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if info.ForwardTo != "" {
		t.Fatalf("forwarding should be off, got %v", info.ForwardTo)
	}
}

func TestEmailAssignments(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	aliceId, err := user.createEmployee(map[string]interface{}{"user_name": "alice"})
	if err != nil {
		t.Fatal(err)
	}
	resignedId, err := user.createEmployee(map[string]interface{}{"user_name": "bob", "status": "Resigned"})
	if err != nil {
		t.Fatal(err)
	}

	assignable, err := user.assignableEmployees()
	if err != nil {
		t.Fatal(err)
	}
	if len(assignable) != 1 || assignable[0].UserName != "alice" {
		t.Fatalf("only active employees should be assignable: %v", assignable)
	}

	emailId, err := user.createEmail("helpdesk@corp.example", "pw", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := user.assignEmail(emailId, aliceId); err != nil {
		t.Fatal(err)
	}

	err = user.assignEmail(emailId, aliceId)
	if err == nil || !strings.Contains(err.Error(), "already assigned") {
		t.Fatalf("duplicate assignment should be rejected: %v", err)
	}

	err = user.assignEmail(emailId, "1f1b2d66-0000-0000-0000-000000000000")
	if err == nil {
		t.Fatal("assignment to a missing employee should fail")
	}

	info, err := user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if len(info.AssignedUsers) != 1 || info.AssignedUsers[0] != "alice" {
		t.Fatalf("unexpected assignments %v", info.AssignedUsers)
	}

	forAlice, err := user.emailsForEmployee(aliceId)
	if err != nil {
		t.Fatal(err)
	}
	if len(forAlice) != 1 || forAlice[0].Address != "helpdesk@corp.example" {
		t.Fatalf("unexpected mailboxes for employee: %v", forAlice)
	}

	forBob, err := user.emailsForEmployee(resignedId)
	if err != nil {
		t.Fatal(err)
	}
	if len(forBob) != 0 {
		t.Fatalf("expected no mailboxes for unassigned employee, got %v", forBob)
	}

	if err := user.unassignEmail(emailId, aliceId); err != nil {
		t.Fatal(err)
	}

	info, err = user.getEmail(emailId)
	if err != nil {
		t.Fatal(err)
	}
	if len(info.AssignedUsers) != 0 {
		t.Fatalf("assignment should be removed: %v", info.AssignedUsers)
	}
}
