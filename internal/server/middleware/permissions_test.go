package middleware

import "testing"

func TestHasPermission(t *testing.T) {
	user := &AppUser{
		UserID:      "user-1",
		Role:        "user",
		Permissions: []string{"workflow.view", "record.view"},
	}

	if !HasPermission(user, "workflow.view") {
		t.Fatal("expected user to have workflow.view")
	}
	if HasPermission(user, "workflow.trigger") {
		t.Fatal("expected user to lack workflow.trigger")
	}
	if HasPermission(nil, "workflow.view") {
		t.Fatal("expected nil user to have no permissions")
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(&AppUser{UserID: "user-1", Role: "admin"}) {
		t.Fatal("expected admin role to be admin")
	}
	if IsAdmin(&AppUser{UserID: "user-2", Role: "user"}) {
		t.Fatal("expected user role to not be admin")
	}
	if IsAdmin(nil) {
		t.Fatal("expected nil user to not be admin")
	}
}
