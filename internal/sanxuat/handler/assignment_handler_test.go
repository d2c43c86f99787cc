package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/service"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/sse"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAssignmentAPITest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	hub := sse.NewHub()
	logger := zap.NewNop()

	assignSvc := service.NewAssignmentService(db, repos, hub, logger)
	queueSvc := service.NewQueueService(repos.User, repos.Assignment, repos.Drawing, logger)

	assignH := NewAssignmentHandler(assignSvc, repos.User)
	queueH := NewQueueHandler(queueSvc, repos.User)

	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/bangve/:id/assign", assignH.Assign)
	api.POST("/assignments/:id/start", assignH.Start)
	api.POST("/assignments/:id/submit", assignH.Submit)
	api.GET("/queues/me", queueH.MyQueues)
	api.GET("/queues/:workerId", queueH.WorkerQueues)

	return db, router
}

func tokenFor(u *entity.User) string {
	return testutil.GenerateTestToken(u.ID, u.Name, u.Email, u.FirebaseUID)
}

func TestAssignAPI(t *testing.T) {
	db, router := setupAssignmentAPITest(t)

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-api-1", "1K-400", entity.DrawingStatusNew, manager.ID)

	body := map[string]interface{}{
		"low_worker_id":  low.ID,
		"high_worker_id": high.ID,
	}

	// Không có token
	w := testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-1/assign", body, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	// Thợ thường không được phân công
	w = testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-1/assign", body, tokenFor(low))
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for worker, got %d: %s", w.Code, w.Body.String())
	}

	// Quản đốc phân công thành công
	w = testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-1/assign", body, tokenFor(manager))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["low_assignment_id"] == "" || data["high_assignment_id"] == "" {
		t.Error("expected both assignment ids in response")
	}

	// Phân công lần hai: xung đột
	w = testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-1/assign", body, tokenFor(manager))
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 on second assign, got %d: %s", w.Code, w.Body.String())
	}

	// Thiếu trường bắt buộc
	w = testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-1/assign",
		map[string]interface{}{"low_worker_id": low.ID}, tokenFor(manager))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing field, got %d", w.Code)
	}
}

func TestWorkerQueuesManagerOnly(t *testing.T) {
	db, router := setupAssignmentAPITest(t)

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	other := testutil.SeedUser(t, db, "fb-other", "Thợ Khác", "khac@test.vn", "quandayha", "")

	path := fmt.Sprintf("/api/v1/queues/%d", low.ID)

	// Thợ thường không được xem hàng đợi của người khác
	w := testutil.DoRequest(router, "GET", path, nil, tokenFor(other))
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for worker, got %d: %s", w.Code, w.Body.String())
	}

	// Quản đốc thì được
	w = testutil.DoRequest(router, "GET", path, nil, tokenFor(manager))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for manager, got %d: %s", w.Code, w.Body.String())
	}
}

func TestStartSubmitAndQueueAPI(t *testing.T) {
	db, router := setupAssignmentAPITest(t)

	manager := testutil.SeedUser(t, db, "fb-mgr", "Quản đốc", "quandoc@test.vn", "", "quandoc")
	low := testutil.SeedUser(t, db, "fb-low", "Thợ Hạ", "ha@test.vn", "quandayha", "")
	high := testutil.SeedUser(t, db, "fb-high", "Thợ Cao", "cao@test.vn", "quandaycao", "")
	testutil.SeedDrawing(t, db, "bv-api-2", "1K-250", entity.DrawingStatusNew, manager.ID)

	w := testutil.DoRequest(router, "POST", "/api/v1/bangve/bv-api-2/assign",
		map[string]interface{}{"low_worker_id": low.ID, "high_worker_id": high.ID}, tokenFor(manager))
	if w.Code != http.StatusCreated {
		t.Fatalf("assign failed: %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	lowAssignmentID := data["low_assignment_id"].(string)

	// Hàng đợi thợ hạ: bảng vẽ nằm ngăn mới
	w = testutil.DoRequest(router, "GET", "/api/v1/queues/me", nil, tokenFor(low))
	if w.Code != http.StatusOK {
		t.Fatalf("queues failed: %d: %s", w.Code, w.Body.String())
	}
	buckets := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if newBucket, ok := buckets["new"].([]interface{}); !ok || len(newBucket) != 1 {
		t.Errorf("expected 1 drawing in new bucket, got %v", buckets["new"])
	}

	// Bắt đầu rồi nộp số liệu
	startPath := fmt.Sprintf("/api/v1/assignments/%s/start", lowAssignmentID)
	if w = testutil.DoRequest(router, "POST", startPath, nil, tokenFor(low)); w.Code != http.StatusOK {
		t.Fatalf("start failed: %d: %s", w.Code, w.Body.String())
	}

	submitPath := fmt.Sprintf("/api/v1/assignments/%s/submit", lowAssignmentID)
	w = testutil.DoRequest(router, "POST", submitPath,
		map[string]interface{}{"data": map[string]interface{}{"so_vong": 120}}, tokenFor(low))
	if w.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d: %s", w.Code, w.Body.String())
	}

	// Sau khi nộp, bảng vẽ chuyển sang ngăn hoàn thành
	w = testutil.DoRequest(router, "GET", "/api/v1/queues/me", nil, tokenFor(low))
	buckets = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if done, ok := buckets["completed"].([]interface{}); !ok || len(done) != 1 {
		t.Errorf("expected 1 drawing in completed bucket, got %v", buckets["completed"])
	}
}
