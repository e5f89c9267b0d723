package domain

import (
	"context"
	"testing"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role   Role
		valid  bool
		spend  bool
		manage bool
		decide bool
	}{
		{RoleAdmin, true, true, true, true},
		{RoleCustodian, true, true, false, false},
		{RoleViewer, true, false, false, false},
		{Role("owner"), false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.role.CanSpend(); got != tt.spend {
				t.Errorf("CanSpend() = %v, want %v", got, tt.spend)
			}
			if got := tt.role.CanManageAccounts(); got != tt.manage {
				t.Errorf("CanManageAccounts() = %v, want %v", got, tt.manage)
			}
			if got := tt.role.CanDecide(); got != tt.decide {
				t.Errorf("CanDecide() = %v, want %v", got, tt.decide)
			}
		})
	}
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := UserFromContext(ctx); ok {
		t.Fatal("expected no user in empty context")
	}
	if got := ActorID(ctx); got != "system" {
		t.Fatalf("ActorID() = %q, want system", got)
	}

	ctx = ContextWithUser(ctx, &User{ID: "u-1", Role: RoleAdmin})
	user, ok := UserFromContext(ctx)
	if !ok || user.ID != "u-1" {
		t.Fatalf("UserFromContext() = %+v, %v", user, ok)
	}
	if got := ActorID(ctx); got != "u-1" {
		t.Fatalf("ActorID() = %q, want u-1", got)
	}

	ctx = ContextWithBoardingHouse(ctx, "bh-7")
	if got := BoardingHouseFromContext(ctx); got != "bh-7" {
		t.Fatalf("BoardingHouseFromContext() = %q, want bh-7", got)
	}
}
