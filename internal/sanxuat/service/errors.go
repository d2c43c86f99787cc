package service

import (
	"errors"
	"fmt"
)

// ValidationError dữ liệu vào không hợp lệ, thao tác chưa được thực hiện
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError trạng thái hiện tại không cho phép thao tác (ví dụ bảng vẽ
// đã được phân công), không có thay đổi dở dang
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// PreconditionError điều kiện tiên quyết chưa đạt tại thời điểm gọi
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// StorageError lỗi tầng lưu trữ, gói lỗi gốc; caller có thể thử lại cả thao tác
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func newValidationError(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func newConflictError(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}

func newPreconditionError(format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

func wrapStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsValidation kiểm tra lỗi thuộc loại ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict kiểm tra lỗi thuộc loại ConflictError
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsPrecondition kiểm tra lỗi thuộc loại PreconditionError
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// IsStorage kiểm tra lỗi thuộc loại StorageError
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
