package session

import (
	"encoding/json"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"engineer", RoleEngineer, false},
		{"sub", RoleSub, false},
		{"Admin", 0, true},
		{"root", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr != (err != nil) {
			t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(RoleEngineer)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"engineer"` {
		t.Fatalf("expected \"engineer\", got %s", data)
	}

	var r Role
	if err := json.Unmarshal([]byte(`"sub"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != RoleSub {
		t.Fatalf("expected RoleSub, got %v", r)
	}

	if err := json.Unmarshal([]byte(`"superuser"`), &r); err == nil {
		t.Fatal("unknown role must fail to unmarshal")
	}
	if err := json.Unmarshal([]byte(`3`), &r); err == nil {
		t.Fatal("numeric role must fail to unmarshal")
	}
	if _, err := json.Marshal(Role(0)); err == nil {
		t.Fatal("zero role must fail to marshal")
	}
}

func TestVariantAccessors(t *testing.T) {
	admin := NewAdmin("a@example.com")
	eng := NewEngineer("e@example.com", "nadia")
	sub := NewSub("s@example.com", SubScope{
		Engineers: []string{"nadia"},
		Projects:  []string{"p-1"},
		Promos:    []string{"WELCOME"},
	})

	if _, ok := admin.Engineer(); ok {
		t.Fatal("admin must not expose an engineer name")
	}
	if _, ok := admin.Sub(); ok {
		t.Fatal("admin must not expose sub scope")
	}
	if !admin.IsAdmin() {
		t.Fatal("admin session must report IsAdmin")
	}

	name, ok := eng.Engineer()
	if !ok || name != "nadia" {
		t.Fatalf("engineer accessor = (%q, %v)", name, ok)
	}
	if _, ok := eng.Sub(); ok {
		t.Fatal("engineer must not expose sub scope")
	}

	scope, ok := sub.Sub()
	if !ok {
		t.Fatal("sub accessor must succeed for sub role")
	}
	if len(scope.Projects) != 1 || scope.Projects[0] != "p-1" {
		t.Fatalf("unexpected sub scope: %+v", scope)
	}
	if _, ok := sub.Engineer(); ok {
		t.Fatal("sub must not expose an engineer name")
	}

	var nilSess *Session
	if nilSess.IsAdmin() {
		t.Fatal("nil session must not be admin")
	}
	if _, ok := nilSess.Engineer(); ok {
		t.Fatal("nil session must not expose an engineer name")
	}
	if _, ok := nilSess.Sub(); ok {
		t.Fatal("nil session must not expose sub scope")
	}
}
