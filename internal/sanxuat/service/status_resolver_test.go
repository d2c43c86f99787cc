package service

import (
	"testing"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
)

func strPtr(s string) *string { return &s }

func TestIsRelevantAssignment(t *testing.T) {
	cases := []struct {
		name string
		a    entity.Assignment
		want bool
	}{
		{
			"khac khau",
			entity.Assignment{Stage: entity.StageHigh},
			false,
		},
		{
			"co stage_detail_id",
			entity.Assignment{Stage: entity.StageLow, StageDetailID: strPtr("sd-1"), KhauSx: "khac"},
			true,
		},
		{
			"the khau cu khop",
			entity.Assignment{Stage: entity.StageLow, KhauSx: "quandayha"},
			true,
		},
		{
			"the khau cu co dau",
			entity.Assignment{Stage: entity.StageLow, KhauSx: "Quấn dây hạ"},
			true,
		},
		{
			"the khau cu sai khau",
			entity.Assignment{Stage: entity.StageLow, KhauSx: "quandaycao"},
			false,
		},
		{
			"ban ghi moi khong co the",
			entity.Assignment{Stage: entity.StageLow},
			true,
		},
		{
			"cot stage rong, chi co the chu",
			entity.Assignment{Stage: "", KhauSx: "quandayha", StageStatus: -1},
			true,
		},
		{
			"cot stage rong, the chu co dau",
			entity.Assignment{Stage: "", KhauSx: "Quấn dây hạ"},
			true,
		},
		{
			"cot stage rong, the chu sai khau",
			entity.Assignment{Stage: "", KhauSx: "quandaycao"},
			false,
		},
		{
			"cot stage rong, khong co the",
			entity.Assignment{Stage: ""},
			false,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := isRelevantAssignment(&c.a, entity.StageLow); got != c.want {
				t.Errorf("isRelevantAssignment = %v, want %v", got, c.want)
			}
		})
	}
}

func TestResolveBucketFromStageStatus(t *testing.T) {
	d := &entity.Drawing{OverallStatus: entity.DrawingStatusCompleted}

	cases := []struct {
		status int
		want   Bucket
	}{
		{entity.StageStatusNotStarted, BucketNew},
		{entity.StageStatusInProgress, BucketInProgress},
		{entity.StageStatusDone, BucketCompleted},
	}
	for _, c := range cases {
		a := &entity.Assignment{Stage: entity.StageLow, StageStatus: c.status}
		if got := resolveBucket(a, d, entity.StageLow); got != c.want {
			t.Errorf("resolveBucket(status=%d) = %v, want %v", c.status, got, c.want)
		}
	}
}

// Bản ghi lịch sử không có trạng thái theo khâu thì rơi về trang_thai
// của bảng vẽ, nhưng chỉ khi thẻ khâu cũ khớp.
func TestResolveBucketLegacyFallback(t *testing.T) {
	a := &entity.Assignment{Stage: entity.StageLow, StageStatus: -1, KhauSx: "quandayha"}
	d := &entity.Drawing{OverallStatus: entity.DrawingStatusInProgress}

	if got := resolveBucket(a, d, entity.StageLow); got != BucketInProgress {
		t.Errorf("legacy fallback = %v, want %v", got, BucketInProgress)
	}

	d.OverallStatus = entity.DrawingStatusCompleted
	if got := resolveBucket(a, d, entity.StageLow); got != BucketCompleted {
		t.Errorf("legacy fallback = %v, want %v", got, BucketCompleted)
	}

	// Thẻ trên bảng vẽ cũng đủ để kích hoạt fallback
	a2 := &entity.Assignment{Stage: entity.StageLow, StageStatus: -1}
	d2 := &entity.Drawing{OverallStatus: entity.DrawingStatusInProgress, KhauSx: "boidayha"}
	if got := resolveBucket(a2, d2, entity.StageLow); got != BucketInProgress {
		t.Errorf("drawing tag fallback = %v, want %v", got, BucketInProgress)
	}
}

func TestResolveBucketLegacyNoTagMatch(t *testing.T) {
	// Thiếu trạng thái theo khâu và thẻ không khớp: coi như chưa bắt đầu,
	// không mượn trang_thai của bảng vẽ
	a := &entity.Assignment{Stage: entity.StageLow, StageStatus: -1, KhauSx: "khac"}
	d := &entity.Drawing{OverallStatus: entity.DrawingStatusCompleted}

	if got := resolveBucket(a, d, entity.StageLow); got != BucketNew {
		t.Errorf("no tag match = %v, want %v", got, BucketNew)
	}
}

func TestResolveBucketNilDrawing(t *testing.T) {
	a := &entity.Assignment{Stage: entity.StageLow, StageStatus: -1}
	if got := resolveBucket(a, nil, entity.StageLow); got != BucketNew {
		t.Errorf("nil drawing = %v, want %v", got, BucketNew)
	}
}

func TestResolveBucketOutOfRangeStatus(t *testing.T) {
	// Giá trị ngoài khoảng coi như thiếu
	a := &entity.Assignment{Stage: entity.StageLow, StageStatus: 99}
	d := &entity.Drawing{OverallStatus: entity.DrawingStatusNew}
	if got := resolveBucket(a, d, entity.StageLow); got != BucketNew {
		t.Errorf("out of range status = %v, want %v", got, BucketNew)
	}
}
