package entity

import "time"

// DrawingFile tệp bản vẽ đính kèm, quản lý theo phiên bản (v1, v2...)
type DrawingFile struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	DrawingID   string    `json:"bangve_id" gorm:"column:bangve_id;size:32;not null;index"`
	Version     string    `json:"version" gorm:"size:16;not null"`
	FileName    string    `json:"file_name" gorm:"size:256;not null"`
	ObjectKey   string    `json:"object_key" gorm:"size:512;not null"`
	FileSize    int64     `json:"file_size" gorm:"default:0"`
	ContentType string    `json:"content_type" gorm:"size:128"`
	UploadedBy  uint      `json:"uploaded_by" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`

	// Quan hệ
	Uploader *User `json:"uploader,omitempty" gorm:"foreignKey:UploadedBy"`
}

func (DrawingFile) TableName() string {
	return "bangve_files"
}
