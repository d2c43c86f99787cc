package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Định nghĩa lỗi
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories tập hợp repository
type Repositories struct {
	User        *UserRepository
	Drawing     *DrawingRepository
	Assignment  *AssignmentRepository
	StageDetail *StageDetailRepository
	DrawingFile *DrawingFileRepository
}

// NewRepositories tạo tập hợp repository
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Drawing:     NewDrawingRepository(db),
		Assignment:  NewAssignmentRepository(db),
		StageDetail: NewStageDetailRepository(db),
		DrawingFile: NewDrawingFileRepository(db),
	}
}
