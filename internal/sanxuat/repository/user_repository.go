package repository

import (
	"context"
	"errors"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID tìm người dùng theo id số
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByFirebaseUID tìm người dùng theo định danh Firebase
func (r *UserRepository) FindByFirebaseUID(ctx context.Context, uid string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "firebase_uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create tạo người dùng
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update lưu thay đổi hồ sơ
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// ListActive danh sách người dùng đang hoạt động
func (r *UserRepository) ListActive(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("name ASC").
		Find(&users).Error
	return users, err
}

// Search tìm theo tên hoặc email
func (r *UserRepository) Search(ctx context.Context, query string) ([]entity.User, error) {
	var users []entity.User
	like := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Where("name ILIKE ? OR email ILIKE ? OR username ILIKE ?", like, like, like).
		Limit(50).
		Find(&users).Error
	return users, err
}
