package service

import (
	"strings"
	"unicode"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StageRole vai trò khâu sản xuất của một thợ, suy ra từ hồ sơ mỗi lần gọi,
// không bao giờ lưu hay cache
type StageRole string

const (
	RoleLow   StageRole = "low"
	RoleHigh  StageRole = "high"
	RolePress StageRole = "press"
	RoleNone  StageRole = "none"
)

// Stage khâu tương ứng với vai trò, "" nếu RoleNone
func (r StageRole) Stage() string {
	switch r {
	case RoleLow:
		return entity.StageLow
	case RoleHigh:
		return entity.StageHigh
	case RolePress:
		return entity.StagePress
	}
	return ""
}

// RoleProfile các trường hồ sơ dùng để phân loại vai trò
type RoleProfile struct {
	KhauSx   string
	RoleName string
	Roles    []string
}

// Bộ từ khóa cho từng khâu. Thứ tự kiểm tra: hạ → cao → ép.
var (
	lowKeywords   = []string{"quandayha", "boidayha", "ha"}
	highKeywords  = []string{"quandaycao", "boidaycao", "cao"}
	pressKeywords = []string{"epboiday", "boidayep", "ep"}
)

var diacriticReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// normalizeTag hạ chữ thường, bỏ dấu tiếng Việt và bỏ ký tự phân cách
// để "Quấn dây hạ" và "quan_day_ha" cùng chuẩn hóa về "quandayha"
func normalizeTag(s string) string {
	s = diacriticReplacer.Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '_' || r == '-' {
			return -1
		}
		return r
	}, s)
}

func matchAny(fields []string, keywords []string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(f, kw) {
				return true
			}
		}
	}
	return false
}

// ClassifyRole phân loại hồ sơ thành một trong bốn vai trò. Hàm thuần, không
// trạng thái; luôn trả về một vai trò (tổng quát trên mọi hồ sơ). Ba bộ từ
// khóa được kiểm tra độc lập; nếu hồ sơ khớp nhiều hơn một bộ thì vẫn trả về
// bộ khớp đầu tiên theo thứ tự hạ → cao → ép nhưng kèm ValidationError để
// caller biết hồ sơ nhập nhằng thay vì lặng lẽ chọn bừa.
func ClassifyRole(p RoleProfile) (StageRole, error) {
	fields := make([]string, 0, 3)
	fields = append(fields, normalizeTag(p.KhauSx))
	fields = append(fields, normalizeTag(p.RoleName))
	if len(p.Roles) > 0 {
		fields = append(fields, normalizeTag(strings.Join(p.Roles, ",")))
	}

	isLow := matchAny(fields, lowKeywords)
	isHigh := matchAny(fields, highKeywords)
	isPress := matchAny(fields, pressKeywords)

	role := RoleNone
	switch {
	case isLow:
		role = RoleLow
	case isHigh:
		role = RoleHigh
	case isPress:
		role = RolePress
	}

	matches := 0
	for _, m := range []bool{isLow, isHigh, isPress} {
		if m {
			matches++
		}
	}
	if matches > 1 {
		return role, newValidationError("ambiguous worker profile: matches %d stage keyword sets", matches)
	}
	return role, nil
}

// ProfileOf trích RoleProfile từ bản ghi người dùng
func ProfileOf(u *entity.User) RoleProfile {
	if u == nil {
		return RoleProfile{}
	}
	return RoleProfile{
		KhauSx:   u.KhauSx,
		RoleName: u.RoleName,
		Roles:    u.Roles,
	}
}
