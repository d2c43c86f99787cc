package service

import (
	"context"
	"testing"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/sse"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAssignmentTest(t *testing.T) (*gorm.DB, *AssignmentService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAssignmentService(db, repos, sse.NewHub(), zap.NewNop())
	return db, svc
}

func TestAssignCreatesTwoAssignments(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-001", "1K-400", entity.DrawingStatusNew, manager.ID)

	result, err := svc.Assign(ctx, "bv-001", low.ID, high.ID, manager.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	if result.LowAssignmentID == "" || result.HighAssignmentID == "" {
		t.Fatal("expected both assignment ids")
	}

	var drawing entity.Drawing
	db.First(&drawing, "id = ?", "bv-001")
	if drawing.OverallStatus != entity.DrawingStatusInProgress {
		t.Errorf("drawing status = %d, want %d", drawing.OverallStatus, entity.DrawingStatusInProgress)
	}

	var assignments []entity.Assignment
	db.Where("bangve_id = ?", "bv-001").Order("stage").Find(&assignments)
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	for _, a := range assignments {
		if a.StageStatus != entity.StageStatusNotStarted {
			t.Errorf("assignment %s status = %d, want not started", a.ID, a.StageStatus)
		}
		if !a.Active {
			t.Errorf("assignment %s should be active", a.ID)
		}
	}
	if assignments[0].Stage != entity.StageHigh || assignments[1].Stage != entity.StageLow {
		t.Errorf("unexpected stages: %s, %s", assignments[0].Stage, assignments[1].Stage)
	}
}

func TestAssignSameWorkerRejected(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	worker := testutil.SeedUser(t, db, "fb-w1", "Thợ A", "a@test.vn", "quandayha", "")
	testutil.SeedDrawing(t, db, "bv-002", "1K-250", entity.DrawingStatusNew, manager.ID)

	_, err := svc.Assign(ctx, "bv-002", worker.ID, worker.ID, manager.ID)
	if err == nil {
		t.Fatal("expected error for same worker on both stages")
	}
	if !IsValidation(err) {
		t.Errorf("expected ValidationError, got %T", err)
	}

	// Không được để lại thay đổi nào
	var drawing entity.Drawing
	db.First(&drawing, "id = ?", "bv-002")
	if drawing.OverallStatus != entity.DrawingStatusNew {
		t.Errorf("drawing status mutated to %d on rejected assign", drawing.OverallStatus)
	}
	var count int64
	db.Model(&entity.Assignment{}).Where("bangve_id = ?", "bv-002").Count(&count)
	if count != 0 {
		t.Errorf("expected 0 assignments, got %d", count)
	}
}

func TestAssignSameWorkerByEmail(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	// Hai bản ghi user khác id nhưng cùng email: vẫn là một người
	w1 := testutil.SeedUser(t, db, "fb-w1", "Thợ A", "tho@test.vn", "quandayha", "")
	w2 := testutil.SeedUser(t, db, "fb-w2", "Thợ A Bis", "THO@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-003", "3K-630", entity.DrawingStatusNew, manager.ID)

	_, err := svc.Assign(ctx, "bv-003", w1.ID, w2.ID, manager.ID)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for same email, got %v", err)
	}
}

func TestAssignConflictOnInProgress(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	low2 := testutil.SeedUser(t, db, "fb-low2", "Thợ Hạ 2", "ha2@test.vn", "quandayha", "")
	high2 := testutil.SeedUser(t, db, "fb-high2", "Thợ Cao 2", "cao2@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-004", "1K-400", entity.DrawingStatusNew, manager.ID)

	if _, err := svc.Assign(ctx, "bv-004", low.ID, high.ID, manager.ID); err != nil {
		t.Fatalf("first assign failed: %v", err)
	}

	_, err := svc.Assign(ctx, "bv-004", low2.ID, high2.ID, manager.ID)
	if err == nil {
		t.Fatal("expected conflict on second assign")
	}
	if !IsConflict(err) {
		t.Errorf("expected ConflictError, got %T", err)
	}
}

func TestAssignUnknownDrawing(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")

	_, err := svc.Assign(ctx, "bv-khong-ton-tai", low.ID, high.ID, manager.ID)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStartAndSubmitStage(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-005", "1K-400", entity.DrawingStatusNew, manager.ID)

	result, err := svc.Assign(ctx, "bv-005", low.ID, high.ID, manager.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// Thợ khác không được bắt đầu phân công không phải của mình
	if err := svc.StartStage(ctx, result.LowAssignmentID, high); !IsValidation(err) {
		t.Errorf("expected ValidationError for wrong worker, got %v", err)
	}

	if err := svc.StartStage(ctx, result.LowAssignmentID, low); err != nil {
		t.Fatalf("StartStage failed: %v", err)
	}
	// Bắt đầu lần hai là xung đột
	if err := svc.StartStage(ctx, result.LowAssignmentID, low); !IsConflict(err) {
		t.Errorf("expected ConflictError on double start, got %v", err)
	}

	data := entity.JSONB{"so_vong": 120, "tiet_dien": "2.5mm2"}
	detail, err := svc.SubmitStageData(ctx, result.LowAssignmentID, data, low)
	if err != nil {
		t.Fatalf("SubmitStageData failed: %v", err)
	}
	if detail.ApprovalStatus != entity.ApprovalStatusPending {
		t.Errorf("detail status = %s, want pending", detail.ApprovalStatus)
	}

	var assignment entity.Assignment
	db.First(&assignment, "id = ?", result.LowAssignmentID)
	if assignment.StageStatus != entity.StageStatusDone {
		t.Errorf("stage status = %d, want done", assignment.StageStatus)
	}
	if assignment.StageDetailID == nil || *assignment.StageDetailID != detail.ID {
		t.Error("assignment should point at the submitted stage detail")
	}

	// Nộp lại khi bản nộp còn chờ duyệt là xung đột
	if _, err := svc.SubmitStageData(ctx, result.LowAssignmentID, data, low); !IsConflict(err) {
		t.Errorf("expected ConflictError on resubmit, got %v", err)
	}
}

func TestAssignPress(t *testing.T) {
	db, svc := setupAssignmentTest(t)
	ctx := context.Background()

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	press := testutil.SeedUser(t, db, "fb-press", "Thợ Ép", "ep@test.vn", "epboiday", "")
	testutil.SeedDrawing(t, db, "bv-006", "1K-400", entity.DrawingStatusNew, manager.ID)

	if _, err := svc.Assign(ctx, "bv-006", low.ID, high.ID, manager.ID); err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	id, err := svc.AssignPress(ctx, "bv-006", press.ID, manager.ID)
	if err != nil {
		t.Fatalf("AssignPress failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected press assignment id")
	}

	// Khâu ép không đổi trạng thái bảng vẽ
	var drawing entity.Drawing
	db.First(&drawing, "id = ?", "bv-006")
	if drawing.OverallStatus != entity.DrawingStatusInProgress {
		t.Errorf("drawing status = %d, want in progress", drawing.OverallStatus)
	}

	// Gán ép lần hai là xung đột
	if _, err := svc.AssignPress(ctx, "bv-006", press.ID, manager.ID); !IsConflict(err) {
		t.Errorf("expected ConflictError on duplicate press assign, got %v", err)
	}
}
