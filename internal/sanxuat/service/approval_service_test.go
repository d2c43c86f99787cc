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

type approvalTestEnv struct {
	db         *gorm.DB
	assignSvc  *AssignmentService
	approveSvc *ApprovalService
	manager    *entity.User
	inspector  *entity.User
	low        *entity.User
	high       *entity.User
}

func setupApprovalTest(t *testing.T) *approvalTestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	hub := sse.NewHub()
	logger := zap.NewNop()

	env := &approvalTestEnv{
		db:         db,
		assignSvc:  NewAssignmentService(db, repos, hub, logger),
		approveSvc: NewApprovalService(db, repos, hub, logger),
	}
	env.manager = testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	env.inspector = testutil.SeedUser(t, db, "fb-kcs", "KCS", "kcs@test.vn", "", "kcs")
	env.low = testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	env.high = testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	return env
}

func (e *approvalTestEnv) submit(t *testing.T, ctx context.Context, assignmentID string, worker *entity.User) *entity.StageDetail {
	t.Helper()
	detail, err := e.assignSvc.SubmitStageData(ctx, assignmentID, entity.JSONB{"so_vong": 100}, worker)
	if err != nil {
		t.Fatalf("SubmitStageData failed: %v", err)
	}
	return detail
}

func TestReviewRequiresInspector(t *testing.T) {
	env := setupApprovalTest(t)
	ctx := context.Background()

	err := env.approveSvc.Review(ctx, "sd-bat-ky", true, "", env.low)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError for non-inspector, got %v", err)
	}
}

func TestReviewTerminalVerdict(t *testing.T) {
	env := setupApprovalTest(t)
	ctx := context.Background()

	testutil.SeedDrawing(t, env.db, "bv-rv", "1K-400", entity.DrawingStatusNew, env.manager.ID)
	result, err := env.assignSvc.Assign(ctx, "bv-rv", env.low.ID, env.high.ID, env.manager.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	detail := env.submit(t, ctx, result.LowAssignmentID, env.low)

	if err := env.approveSvc.Review(ctx, detail.ID, true, "đạt", env.inspector); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	// Đã duyệt rồi thì không duyệt lại được
	if err := env.approveSvc.Review(ctx, detail.ID, false, "", env.inspector); !IsConflict(err) {
		t.Errorf("expected ConflictError on double review, got %v", err)
	}

	var stored entity.StageDetail
	env.db.First(&stored, "id = ?", detail.ID)
	if stored.ApprovalStatus != entity.ApprovalStatusApproved {
		t.Errorf("approval status = %s, want approved", stored.ApprovalStatus)
	}
	if stored.ReviewedBy == nil || *stored.ReviewedBy != env.inspector.ID {
		t.Error("reviewed_by not recorded")
	}
}

func TestRejectionAllowsResubmit(t *testing.T) {
	env := setupApprovalTest(t)
	ctx := context.Background()

	testutil.SeedDrawing(t, env.db, "bv-rej", "1K-400", entity.DrawingStatusNew, env.manager.ID)
	result, err := env.assignSvc.Assign(ctx, "bv-rej", env.low.ID, env.high.ID, env.manager.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}
	first := env.submit(t, ctx, result.LowAssignmentID, env.low)

	if err := env.approveSvc.Review(ctx, first.ID, false, "sai số vòng", env.inspector); err != nil {
		t.Fatalf("Review failed: %v", err)
	}

	// Sau khi bị từ chối, thợ nộp bản mới; bản cũ giữ nguyên rejected
	second := env.submit(t, ctx, result.LowAssignmentID, env.low)
	if second.ID == first.ID {
		t.Fatal("resubmit must create a new stage detail")
	}

	var firstStored entity.StageDetail
	env.db.First(&firstStored, "id = ?", first.ID)
	if firstStored.ApprovalStatus != entity.ApprovalStatusRejected {
		t.Errorf("rejected detail mutated to %s", firstStored.ApprovalStatus)
	}

	var assignment entity.Assignment
	env.db.First(&assignment, "id = ?", result.LowAssignmentID)
	if assignment.StageDetailID == nil || *assignment.StageDetailID != second.ID {
		t.Error("assignment should point at the new submission")
	}
}

func TestFinalizeGate(t *testing.T) {
	env := setupApprovalTest(t)
	ctx := context.Background()

	testutil.SeedDrawing(t, env.db, "bv-fin", "1K-400", entity.DrawingStatusNew, env.manager.ID)
	result, err := env.assignSvc.Assign(ctx, "bv-fin", env.low.ID, env.high.ID, env.manager.ID)
	if err != nil {
		t.Fatalf("Assign failed: %v", err)
	}

	// Chưa có bản nộp nào: không chốt được
	ok, err := env.approveSvc.CanFinalize(ctx, "bv-fin")
	if err != nil {
		t.Fatalf("CanFinalize failed: %v", err)
	}
	if ok {
		t.Error("CanFinalize should be false with no submissions")
	}
	if err := env.approveSvc.Finalize(ctx, "bv-fin", env.inspector); !IsPrecondition(err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}

	// Một khâu duyệt, một khâu chưa nộp: vẫn chưa chốt được
	lowDetail := env.submit(t, ctx, result.LowAssignmentID, env.low)
	if err := env.approveSvc.Review(ctx, lowDetail.ID, true, "", env.inspector); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if err := env.approveSvc.Finalize(ctx, "bv-fin", env.inspector); !IsPrecondition(err) {
		t.Fatalf("expected PreconditionError while high stage missing, got %v", err)
	}

	// Khâu cao nộp nhưng còn chờ duyệt: vẫn chưa
	highDetail := env.submit(t, ctx, result.HighAssignmentID, env.high)
	if ok, _ := env.approveSvc.CanFinalize(ctx, "bv-fin"); ok {
		t.Error("CanFinalize should be false with pending review")
	}

	// Đủ hai khâu duyệt: chốt được
	if err := env.approveSvc.Review(ctx, highDetail.ID, true, "", env.inspector); err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if err := env.approveSvc.Finalize(ctx, "bv-fin", env.inspector); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	var drawing entity.Drawing
	env.db.First(&drawing, "id = ?", "bv-fin")
	if drawing.OverallStatus != entity.DrawingStatusCompleted {
		t.Errorf("drawing status = %d, want completed", drawing.OverallStatus)
	}
	if drawing.ApprovalStatus != entity.ApprovalStatusApproved {
		t.Errorf("drawing approval = %s, want approved", drawing.ApprovalStatus)
	}

	// Chốt lần hai là xung đột
	if err := env.approveSvc.Finalize(ctx, "bv-fin", env.inspector); !IsConflict(err) {
		t.Errorf("expected ConflictError on double finalize, got %v", err)
	}
}

func TestFinalizeRequiresInspectorOrManager(t *testing.T) {
	env := setupApprovalTest(t)
	ctx := context.Background()

	testutil.SeedDrawing(t, env.db, "bv-perm", "1K-400", entity.DrawingStatusNew, env.manager.ID)
	if err := env.approveSvc.Finalize(ctx, "bv-perm", env.low); !IsValidation(err) {
		t.Errorf("expected ValidationError for worker finalize, got %v", err)
	}
}
