package core_test

import (
	"context"
	"errors"
	"testing"

	"jewellery-backoffice/internal/core"
)

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewUserService(pool)
	ctx := context.Background()

	var invalid *core.ValidationError
	_, err := svc.Create(ctx, core.User{UserName: "meena"}, "secret123", "secret124")
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError for mismatched passwords, got %v", err)
	}

	id, err := svc.Create(ctx, core.User{
		UserName:    "meena",
		Email:       "meena@example.com",
		PhoneNumber: "9876500200",
		Role:        "Manager",
	}, "secret123", "secret123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, err := svc.Authenticate(ctx, "meena", "secret123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != id || u.Role != "Manager" {
		t.Errorf("unexpected authenticated user: %+v", u)
	}

	// Wrong password and unknown user fail identically.
	_, wrongPass := svc.Authenticate(ctx, "meena", "nope")
	_, unknownUser := svc.Authenticate(ctx, "ghost", "secret123")
	if !errors.As(wrongPass, &invalid) || !errors.As(unknownUser, &invalid) {
		t.Fatalf("expected ValidationError for both failures, got %v / %v", wrongPass, unknownUser)
	}
	if wrongPass.Error() != unknownUser.Error() {
		t.Errorf("credential failures must be indistinguishable: %q vs %q",
			wrongPass.Error(), unknownUser.Error())
	}
}

func TestUserService_RolePermissionsUpsert(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := core.NewUserService(pool)
	ctx := context.Background()

	err := svc.SaveRolePermissions(ctx, "Cashier", map[string]core.MenuPermission{
		"Sales":    {Add: true, View: true},
		"Receipts": {Add: true, Modify: true, View: true},
	})
	if err != nil {
		t.Fatalf("SaveRolePermissions failed: %v", err)
	}

	types, err := svc.ListUserTypes(ctx)
	if err != nil {
		t.Fatalf("ListUserTypes failed: %v", err)
	}
	if len(types) != 1 || types[0].UserType != "Cashier" {
		t.Fatalf("expected single Cashier user type, got %+v", types)
	}

	// Resubmitting grants for the same type updates in place.
	err = svc.SaveRolePermissions(ctx, "Cashier", map[string]core.MenuPermission{
		"Sales": {Add: true, Modify: true, Delete: true, View: true, Print: true},
	})
	if err != nil {
		t.Fatalf("second SaveRolePermissions failed: %v", err)
	}

	permissions, err := svc.GetPermissions(ctx, types[0].ID)
	if err != nil {
		t.Fatalf("GetPermissions failed: %v", err)
	}
	if len(permissions) != 2 {
		t.Fatalf("expected grants for two menus, got %d", len(permissions))
	}
	sales := permissions["Sales"]
	if !sales.Modify || !sales.Delete || !sales.Print {
		t.Errorf("expected widened Sales grants, got %+v", sales)
	}
	receipts := permissions["Receipts"]
	if !receipts.Add || !receipts.Modify || receipts.Delete {
		t.Errorf("unexpected Receipts grants: %+v", receipts)
	}
}
