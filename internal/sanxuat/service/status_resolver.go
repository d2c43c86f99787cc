package service

import (
	"strings"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
)

// Bucket ngăn hàng đợi của thợ
type Bucket string

const (
	BucketNew        Bucket = "new"
	BucketInProgress Bucket = "in_progress"
	BucketCompleted  Bucket = "completed"
)

// legacyStageTags giá trị khau_sx dạng chữ của dữ liệu cũ cho từng khâu
var legacyStageTags = map[string][]string{
	entity.StageLow:   {"quandayha", "boidayha"},
	entity.StageHigh:  {"quandaycao", "boidaycao"},
	entity.StagePress: {"epboiday", "boidayep"},
}

// matchesLegacyTag so thẻ khâu dạng chữ với khâu mong đợi
func matchesLegacyTag(tag, stage string) bool {
	if tag == "" {
		return false
	}
	normalized := normalizeTag(tag)
	for _, want := range legacyStageTags[stage] {
		if strings.Contains(normalized, want) {
			return true
		}
	}
	return false
}

// isRelevantAssignment lọc phân công thuộc đúng khâu của vai trò. Hai đường
// kiểm tra vì bản ghi lịch sử chỉ điền một trong hai: (a) đã có
// stage_detail_id cho khâu này, hoặc (b) thẻ khâu dạng chữ khớp giá trị
// mong đợi. Phân công ghi đúng cột stage đương nhiên hợp lệ.
func isRelevantAssignment(a *entity.Assignment, stage string) bool {
	if a.Stage != stage {
		// Bản ghi lịch sử có thể chưa điền cột stage; khi đó thẻ chữ là
		// đường nhận khâu duy nhất
		return a.Stage == "" && matchesLegacyTag(a.KhauSx, stage)
	}
	if a.StageDetailID != nil && *a.StageDetailID != "" {
		return true
	}
	if matchesLegacyTag(a.KhauSx, stage) {
		return true
	}
	// Bản ghi mới ghi stage tường minh, không cần thẻ cũ
	return a.KhauSx == ""
}

// resolveBucket tính ngăn hàng đợi cho một cặp (phân công, bảng vẽ). Nguồn
// chính là trang_thai trên phân công; bản ghi lịch sử tạo trước khi có
// trạng thái theo khâu (stageStatus < 0 coi như thiếu) rơi về trang_thai
// của bảng vẽ kết hợp thẻ khâu cũ. Fallback này giữ nguyên để tương thích
// dữ liệu cũ, không phải dọn dẹp tùy chọn.
func resolveBucket(a *entity.Assignment, d *entity.Drawing, stage string) Bucket {
	status := a.StageStatus
	if status < entity.StageStatusNotStarted || status > entity.StageStatusDone {
		status = -1
	}

	if status < 0 {
		if d == nil {
			return BucketNew
		}
		if matchesLegacyTag(d.KhauSx, stage) || matchesLegacyTag(a.KhauSx, stage) {
			status = d.OverallStatus
		} else {
			status = entity.DrawingStatusNew
		}
	}

	switch status {
	case entity.StageStatusInProgress:
		return BucketInProgress
	case entity.StageStatusDone:
		return BucketCompleted
	default:
		return BucketNew
	}
}
