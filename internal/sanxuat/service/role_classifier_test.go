package service

import (
	"testing"
)

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Quấn dây hạ", "quandayha"},
		{"quan_day_ha", "quandayha"},
		{"QUAN-DAY-CAO", "quandaycao"},
		{"Ép bối dây", "epboiday"},
		{"bối dây ép", "boidayep"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalizeTag(c.in); got != c.want {
			t.Errorf("normalizeTag(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassifyRoleSingleMatch(t *testing.T) {
	cases := []struct {
		name    string
		profile RoleProfile
		want    StageRole
	}{
		{"khau_sx ha", RoleProfile{KhauSx: "quandayha"}, RoleLow},
		{"khau_sx ha co dau", RoleProfile{KhauSx: "Quấn dây hạ"}, RoleLow},
		{"role_name cao", RoleProfile{RoleName: "boidaycao"}, RoleHigh},
		{"roles ep", RoleProfile{Roles: []string{"epboiday"}}, RolePress},
		{"khau_sx boidayep", RoleProfile{KhauSx: "boidayep"}, RolePress},
		{"khong khop", RoleProfile{KhauSx: "kcs", RoleName: "kcs"}, RoleNone},
		{"rong", RoleProfile{}, RoleNone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			role, err := ClassifyRole(c.profile)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if role != c.want {
				t.Errorf("ClassifyRole = %v, want %v", role, c.want)
			}
		})
	}
}

func TestClassifyRoleAmbiguous(t *testing.T) {
	// Hồ sơ khớp cả hạ lẫn cao: vẫn trả về hạ (ưu tiên hạ → cao → ép)
	// nhưng kèm lỗi để caller biết hồ sơ nhập nhằng
	role, err := ClassifyRole(RoleProfile{KhauSx: "quandayha", RoleName: "quandaycao"})
	if err == nil {
		t.Fatal("expected error for ambiguous profile")
	}
	if !IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}
	if role != RoleLow {
		t.Errorf("ambiguous profile should still return first match, got %v", role)
	}
}

func TestClassifyRoleIsPure(t *testing.T) {
	p := RoleProfile{KhauSx: "quandaycao"}
	first, _ := ClassifyRole(p)
	for i := 0; i < 10; i++ {
		got, _ := ClassifyRole(p)
		if got != first {
			t.Fatalf("ClassifyRole not deterministic: %v then %v", first, got)
		}
	}
	if first != RoleHigh {
		t.Errorf("ClassifyRole = %v, want %v", first, RoleHigh)
	}
}

func TestStageRoleStage(t *testing.T) {
	if RoleLow.Stage() != "low" || RoleHigh.Stage() != "high" || RolePress.Stage() != "press" {
		t.Error("Stage() mapping mismatch")
	}
	if RoleNone.Stage() != "" {
		t.Errorf("RoleNone.Stage() = %q, want empty", RoleNone.Stage())
	}
}
