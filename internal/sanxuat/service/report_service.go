package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService xuất báo cáo tiến độ sản xuất ra Excel
type ReportService struct {
	drawingRepo    *repository.DrawingRepository
	assignmentRepo *repository.AssignmentRepository
}

// NewReportService tạo service báo cáo
func NewReportService(repos *repository.Repositories) *ReportService {
	return &ReportService{
		drawingRepo:    repos.Drawing,
		assignmentRepo: repos.Assignment,
	}
}

var drawingStatusLabels = map[int]string{
	entity.DrawingStatusNew:        "Chưa sản xuất",
	entity.DrawingStatusInProgress: "Đang sản xuất",
	entity.DrawingStatusCompleted:  "Hoàn thành",
}

var stageStatusLabels = map[int]string{
	entity.StageStatusNotStarted: "Chưa bắt đầu",
	entity.StageStatusInProgress: "Đang làm",
	entity.StageStatusDone:       "Đã nộp",
}

var stageLabels = map[string]string{
	entity.StageLow:   "Bối dây hạ",
	entity.StageHigh:  "Bối dây cao",
	entity.StagePress: "Bối dây ép",
}

// ExportProgress xuất toàn bộ bảng vẽ kèm trạng thái từng khâu ra một file
// xlsx, trả về nội dung file
func (s *ReportService) ExportProgress(ctx context.Context) ([]byte, error) {
	drawings, _, err := s.drawingRepo.List(ctx, -1, 0, 0)
	if err != nil {
		return nil, wrapStorage("list drawings", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "TienDo"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Ký hiệu", "Công suất", "Điện áp", "Trạng thái", "Khâu", "Trạng thái khâu", "Thợ"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, d := range drawings {
		assignments, err := s.assignmentRepo.ByDrawing(ctx, d.ID)
		if err != nil {
			return nil, wrapStorage("load assignments", err)
		}
		if len(assignments) == 0 {
			s.writeRow(f, sheet, row, &d, nil)
			row++
			continue
		}
		for i := range assignments {
			s.writeRow(f, sheet, row, &d, &assignments[i])
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *ReportService) writeRow(f *excelize.File, sheet string, row int, d *entity.Drawing, a *entity.Assignment) {
	values := []interface{}{
		d.Symbol,
		d.Power,
		d.Voltage,
		drawingStatusLabels[d.OverallStatus],
	}
	if a != nil {
		values = append(values,
			stageLabels[a.Stage],
			stageStatusLabels[a.StageStatus],
			a.WorkerID,
		)
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}
