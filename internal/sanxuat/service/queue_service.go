package service

import (
	"context"
	"sort"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"go.uber.org/zap"
)

// DrawingView bảng vẽ kèm trạng thái khâu của thợ đang xem
type DrawingView struct {
	entity.Drawing
	AssignmentID  string `json:"assignment_id"`
	Stage         string `json:"stage"`
	StageStatus   int    `json:"stage_status"`
	StageDetailID string `json:"stage_detail_id,omitempty"`
}

// QueueBuckets ba ngăn hàng đợi của một thợ
type QueueBuckets struct {
	New        []DrawingView `json:"new"`
	InProgress []DrawingView `json:"in_progress"`
	Completed  []DrawingView `json:"completed"`
}

// QueueTrace vết trung gian của pipeline đối soát, cho màn hình kiểm tra.
// Một vết duy nhất thay cho việc mỗi màn hình tự lặp lại pipeline.
type QueueTrace struct {
	WorkerID    uint                `json:"worker_id"`
	FirebaseUID string              `json:"firebase_uid,omitempty"`
	Role        StageRole           `json:"role"`
	RoleError   string              `json:"role_error,omitempty"`
	Raw         []entity.Assignment `json:"raw_assignments"`
	Relevant    []entity.Assignment `json:"relevant_assignments"`
	Joined      []DrawingView       `json:"joined"`
	Buckets     QueueBuckets        `json:"buckets"`
}

// QueueService đối soát trạng thái: ghép phân công với bảng vẽ và chia
// ba ngăn theo vai trò của thợ. Chỉ đọc, không ghi.
type QueueService struct {
	userRepo       *repository.UserRepository
	assignmentRepo *repository.AssignmentRepository
	drawingRepo    *repository.DrawingRepository
	logger         *zap.Logger
}

// NewQueueService tạo service đối soát hàng đợi
func NewQueueService(userRepo *repository.UserRepository, assignmentRepo *repository.AssignmentRepository, drawingRepo *repository.DrawingRepository, logger *zap.Logger) *QueueService {
	return &QueueService{
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		drawingRepo:    drawingRepo,
		logger:         logger,
	}
}

// Queues trả về ba ngăn hàng đợi của một thợ. Gọi hai lần không có ghi xen
// giữa cho kết quả giống hệt nhau; mỗi bảng vẽ chỉ nằm trong đúng một ngăn.
func (s *QueueService) Queues(ctx context.Context, workerID uint) (*QueueBuckets, error) {
	trace, err := s.trace(ctx, workerID)
	if err != nil {
		return nil, err
	}
	return &trace.Buckets, nil
}

// QueuesTrace như Queues nhưng kèm toàn bộ vết trung gian
func (s *QueueService) QueuesTrace(ctx context.Context, workerID uint) (*QueueTrace, error) {
	return s.trace(ctx, workerID)
}

func (s *QueueService) trace(ctx context.Context, workerID uint) (*QueueTrace, error) {
	trace := &QueueTrace{WorkerID: workerID, Role: RoleNone}

	// Vai trò phân loại lại từ hồ sơ mỗi lần gọi, hồ sơ có thể đổi giữa
	// các phiên
	user, err := s.userRepo.FindByID(ctx, workerID)
	if err != nil {
		if err == repository.ErrNotFound {
			return trace, nil
		}
		return nil, wrapStorage("load worker profile", err)
	}
	trace.FirebaseUID = user.FirebaseUID

	role, roleErr := ClassifyRole(ProfileOf(user))
	trace.Role = role
	if roleErr != nil {
		// Hồ sơ nhập nhằng: vẫn chạy tiếp với vai trò khớp đầu tiên
		// nhưng ghi lại để màn hình kiểm tra nhìn thấy
		trace.RoleError = roleErr.Error()
		s.logger.Warn("ambiguous worker profile",
			zap.Uint("worker_id", workerID),
			zap.String("khau_sx", user.KhauSx),
			zap.Error(roleErr),
		)
	}
	if role == RoleNone {
		return trace, nil
	}
	stage := role.Stage()

	// Tra cứu hai khóa, đã khử trùng lặp theo id trong repository
	assignments, err := s.assignmentRepo.ByWorker(ctx, user.ID, user.FirebaseUID)
	if err != nil {
		return nil, wrapStorage("load assignments", err)
	}
	trace.Raw = assignments

	for _, a := range assignments {
		if isRelevantAssignment(&a, stage) {
			trace.Relevant = append(trace.Relevant, a)
		}
	}

	drawingIDs := make([]string, 0, len(trace.Relevant))
	for _, a := range trace.Relevant {
		drawingIDs = append(drawingIDs, a.DrawingID)
	}
	drawings, err := s.drawingRepo.ListByIDs(ctx, drawingIDs)
	if err != nil {
		return nil, wrapStorage("load drawings", err)
	}
	byID := make(map[string]*entity.Drawing, len(drawings))
	for i := range drawings {
		byID[drawings[i].ID] = &drawings[i]
	}

	for _, a := range trace.Relevant {
		drawing, ok := byID[a.DrawingID]
		if !ok {
			// Phân công trỏ tới bảng vẽ đã mất: bỏ qua thay vì lỗi
			s.logger.Warn("assignment references missing drawing",
				zap.String("assignment_id", a.ID),
				zap.String("bangve_id", a.DrawingID),
			)
			continue
		}
		view := DrawingView{
			Drawing:      *drawing,
			AssignmentID: a.ID,
			Stage:        a.Stage,
			StageStatus:  a.StageStatus,
		}
		if a.StageDetailID != nil {
			view.StageDetailID = *a.StageDetailID
		}
		trace.Joined = append(trace.Joined, view)

		switch resolveBucket(&a, drawing, stage) {
		case BucketInProgress:
			trace.Buckets.InProgress = append(trace.Buckets.InProgress, view)
		case BucketCompleted:
			trace.Buckets.Completed = append(trace.Buckets.Completed, view)
		default:
			trace.Buckets.New = append(trace.Buckets.New, view)
		}
	}

	sortViews(trace.Buckets.New)
	sortViews(trace.Buckets.InProgress)
	sortViews(trace.Buckets.Completed)
	return trace, nil
}

func sortViews(views []DrawingView) {
	sort.Slice(views, func(i, j int) bool {
		if views[i].Symbol != views[j].Symbol {
			return views[i].Symbol < views[j].Symbol
		}
		return views[i].ID < views[j].ID
	})
}
