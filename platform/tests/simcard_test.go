package tests

import (
	"errors"
	"strings"
	"testing"
)

func TestSimCardLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	_, err = user.createSimCard(map[string]interface{}{"provider": "Airtel"})
	if err == nil || !strings.Contains(err.Error(), "cell_no is required") {
		t.Fatalf("sim card without cell_no should be rejected: %v", err)
	}

	simId, err := user.createSimCard(map[string]interface{}{
		"cell_no":           "9820012345",
		"provider":          "Airtel",
		"current_user_name": "alice",
		"department":        "Sales",
	})
	if err != nil {
		t.Fatal(err)
	}

	info, err := user.getSimCard(simId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CellNo != "9820012345" || info.CurrentUserName != "alice" {
		t.Fatalf("unexpected sim card %v", info)
	}
	if info.Status != "Active" {
		t.Fatalf("default status not applied: %v", info.Status)
	}
	if info.PreviousUser != "" || len(info.PreviousUsers) != 0 {
		t.Fatal("new sim card should have no previous users")
	}

	err = user.updateSimCard(simId, map[string]string{})
	if err == nil || !strings.Contains(err.Error(), "no changes to update") {
		t.Fatalf("empty update should be rejected: %v", err)
	}

	err = user.updateSimCard(simId, map[string]string{"Imei": "0"})
	if err == nil {
		t.Fatal("unknown field should be rejected")
	}

	err = user.Delete("/simcard-users/" + simId).Do(nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("only admins can delete sim cards")
	}

	admin, err := env.adminClient()
	if err != nil {
		t.Fatal(err)
	}
	if err := admin.Delete("/simcard-users/" + simId).Do(nil); err != nil {
		t.Fatal(err)
	}
}

func TestSimCardUserDisplacement(t *testing.T) {
	env := setupTestEnv(t)

	user, err := env.newUser("abc")
	if err != nil {
		t.Fatal(err)
	}

	simId, err := user.createSimCard(map[string]interface{}{
		"cell_no":           "9820012345",
		"current_user_name": "alice",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, holder := range []string{"bob", "carol"} {
		err := user.updateSimCard(simId, map[string]string{"CurrentUserName": holder})
		if err != nil {
			t.Fatal(err)
		}
	}

	info, err := user.getSimCard(simId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentUserName != "carol" {
		t.Fatalf("expected carol as current user, got %v", info.CurrentUserName)
	}
	if len(info.PreviousUsers) != 2 || info.PreviousUsers[0] != "bob" || info.PreviousUsers[1] != "alice" {
		t.Fatalf("previous users should be most recently displaced first: %v", info.PreviousUsers)
	}

	// A returning user is not duplicated in the history.
	err = user.updateSimCard(simId, map[string]string{"CurrentUserName": "bob"})
	if err != nil {
		t.Fatal(err)
	}

	info, err = user.getSimCard(simId)
	if err != nil {
		t.Fatal(err)
	}
	if info.CurrentUserName != "bob" {
		t.Fatalf("expected bob as current user, got %v", info.CurrentUserName)
	}
	if len(info.PreviousUsers) != 2 || info.PreviousUsers[0] != "carol" || info.PreviousUsers[1] != "alice" {
		t.Fatalf("unexpected previous users: %v", info.PreviousUsers)
	}
}
