package entity

import "time"

// User người dùng: quản đốc, thợ quấn dây, KCS
type User struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	FirebaseUID string `json:"firebase_uid" gorm:"size:64;uniqueIndex"`
	Username    string `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Name        string `json:"name" gorm:"size:128;not null"`
	Email       string `json:"email" gorm:"size:128;index"`
	// KhauSx thẻ khâu sản xuất dạng chữ trên hồ sơ, nguồn phân loại vai trò
	KhauSx      string      `json:"khau_sx" gorm:"column:khau_sx;size:64"`
	RoleName    string      `json:"role_name" gorm:"size:64"`
	Roles       StringArray `json:"roles,omitempty" gorm:"type:jsonb"`
	Status      string      `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// IsManager quyền phân công bảng vẽ
func (u *User) IsManager() bool {
	if u.RoleName == "admin" || u.RoleName == "quandoc" {
		return true
	}
	for _, r := range u.Roles {
		if r == "admin" || r == "quandoc" {
			return true
		}
	}
	return false
}

// IsInspector quyền duyệt KCS
func (u *User) IsInspector() bool {
	if u.RoleName == "kcs" {
		return true
	}
	for _, r := range u.Roles {
		if r == "kcs" {
			return true
		}
	}
	return false
}
