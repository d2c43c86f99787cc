package entity

import "time"

// StageDetail số liệu kỹ thuật một lần nộp của thợ cho một khâu.
// Mỗi chu kỳ nộp tạo một bản ghi mới; bản bị từ chối giữ lại làm lịch sử.
type StageDetail struct {
	ID             string     `json:"id" gorm:"primaryKey;size:36"`
	AssignmentID   string     `json:"assignment_id" gorm:"size:36;not null;index"`
	DrawingID      string     `json:"bangve_id" gorm:"column:bangve_id;size:32;not null;index"`
	Stage          string     `json:"stage" gorm:"size:10;not null"`
	Data           JSONB      `json:"data" gorm:"type:jsonb"`
	ApprovalStatus string     `json:"approval_status" gorm:"size:20;not null;default:'pending';index"`
	SubmittedBy    uint       `json:"submitted_by" gorm:"not null"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	ReviewedBy     *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment  string     `json:"review_comment,omitempty" gorm:"type:text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Quan hệ
	Submitter *User `json:"submitter,omitempty" gorm:"foreignKey:SubmittedBy"`
	Reviewer  *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewedBy"`
}

func (StageDetail) TableName() string {
	return "stage_details"
}
