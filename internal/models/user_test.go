package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"user role", RoleUser, true},
		{"invalid role", "manager", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestClaims_IsAdmin(t *testing.T) {
	var nilClaims *Claims
	if nilClaims.IsAdmin() {
		t.Error("nil claims must not be admin")
	}
	if (&Claims{Role: RoleUser}).IsAdmin() {
		t.Error("user role reported as admin")
	}
	if !(&Claims{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role not reported as admin")
	}
}

func TestUser_Summary(t *testing.T) {
	now := time.Now()
	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         "Test User",
		Email:        "user@test.com",
		Phone:        "9876543211",
		PasswordHash: "hashedpassword",
		Role:         RoleUser,
		CreatedAt:    now,
	}

	s := user.Summary()
	if s.ID != user.ID {
		t.Errorf("Expected ID %s, got %s", user.ID.Hex(), s.ID.Hex())
	}
	if s.Name != "Test User" || s.Email != "user@test.com" || s.Phone != "9876543211" {
		t.Errorf("unexpected summary %+v", s)
	}
}
