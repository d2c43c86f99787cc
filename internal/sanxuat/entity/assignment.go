package entity

import "time"

// Khâu sản xuất của một phân công
const (
	StageLow   = "low"   // bối dây hạ
	StageHigh  = "high"  // bối dây cao
	StagePress = "press" // bối dây ép
)

// Trạng thái khâu (trang_thai trên phân công)
const (
	StageStatusNotStarted = 0
	StageStatusInProgress = 1
	StageStatusDone       = 2
)

// Assignment phân công một thợ vào một khâu của một bảng vẽ.
// Mỗi (bảng vẽ, khâu) chỉ có một phân công đang hoạt động.
type Assignment struct {
	ID            string  `json:"id" gorm:"primaryKey;size:36"`
	DrawingID     string  `json:"bangve_id" gorm:"column:bangve_id;size:32;not null;index"`
	WorkerID      uint    `json:"user_id" gorm:"column:user_id;not null;index"`
	FirebaseUID   string  `json:"firebase_uid" gorm:"size:64;index"`
	Stage         string  `json:"stage" gorm:"size:10;not null"`
	StageStatus   int     `json:"trang_thai" gorm:"column:trang_thai;not null;default:0"`
	StageDetailID *string `json:"stage_detail_id,omitempty" gorm:"size:36"`
	// KhauSx thẻ khâu dạng chữ trên bản ghi cũ, chỉ dùng khi lọc fallback
	KhauSx     string    `json:"khau_sx,omitempty" gorm:"column:khau_sx;size:64"`
	AssignedBy uint      `json:"assigned_by" gorm:"not null"`
	AssignedAt time.Time `json:"assigned_at"`
	Active     bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Quan hệ
	Drawing     *Drawing     `json:"drawing,omitempty" gorm:"foreignKey:DrawingID"`
	Worker      *User        `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	StageDetail *StageDetail `json:"stage_detail,omitempty" gorm:"foreignKey:StageDetailID"`
}

func (Assignment) TableName() string {
	return "phan_cong"
}
