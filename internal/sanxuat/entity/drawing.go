package entity

import "time"

// Trạng thái tổng của bảng vẽ (trang_thai). Chỉ tiến, không lùi.
const (
	DrawingStatusNew        = 0
	DrawingStatusInProgress = 1
	DrawingStatusCompleted  = 2
)

// Trạng thái duyệt KCS
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Drawing bảng vẽ sản xuất máy biến áp
type Drawing struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	Symbol         string `json:"ky_hieu" gorm:"column:ky_hieu;size:64;not null;index"`
	Power          string `json:"cong_suat" gorm:"column:cong_suat;size:32"`
	Voltage        string `json:"dien_ap" gorm:"column:dien_ap;size:32"`
	Specs          JSONB  `json:"thong_so,omitempty" gorm:"column:thong_so;type:jsonb"`
	OverallStatus  int    `json:"trang_thai" gorm:"column:trang_thai;not null;default:0;index"`
	ApprovalStatus string `json:"approval_status,omitempty" gorm:"size:20"`
	// KhauSx thẻ khâu sản xuất dạng chữ của dữ liệu cũ, giữ lại cho fallback
	KhauSx    string    `json:"khau_sx,omitempty" gorm:"column:khau_sx;size:64"`
	CreatedBy uint      `json:"created_by" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Quan hệ
	Creator *User `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (Drawing) TableName() string {
	return "bangve"
}
