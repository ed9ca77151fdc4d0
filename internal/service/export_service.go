package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/availability"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSections   = errors.New("该院系暂无班级")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportRoomAvailability 导出教室周可用性（行 = 星期，列 = 小时）
	ExportRoomAvailability(ctx context.Context, roomID string) (*bytes.Buffer, string, error)
	// ExportDepartmentSections 导出院系班级与分组名册
	ExportDepartmentSections(ctx context.Context, departmentID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoomAvailability
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题（教室名）
//   - 第 2 行：Day | 8 AM | 9 AM | … | 7 PM
//   - 第 3~8 行：Monday ~ Saturday，可用 "Available"，占用 "Blocked"
//   - 末尾：可用/占用计数与摘要

func (s *exportService) ExportRoomAvailability(ctx context.Context, roomID string) (*bytes.Buffer, string, error) {
	room, err := s.repo.Room.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRoomNotFound
		}
		s.logger.Error("查询教室失败", zap.String("room_id", roomID), zap.Error(err))
		return nil, "", err
	}

	grid, err := room.AvailabilityGrid()
	if err != nil {
		s.logger.Error("教室可用性数据损坏，无法导出", zap.String("room_id", roomID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrCorruptAvailability, err)
	}
	matrix := availability.ToMatrix(grid)
	available, blocked := availability.Counts(grid)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Availability"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, colName(1), colName(availability.SlotsPerDay), 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	blockedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F4CCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	availableStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9EAD3"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s - weekly availability", room.Name))
	f.MergeCell(sheetName, "A1", cell(colName(availability.SlotsPerDay), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "Day")
	for slot := 0; slot < availability.SlotsPerDay; slot++ {
		f.SetCellValue(sheetName, cell(colName(slot+1), 2), availability.FormatHour(availability.FirstHour+slot))
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(availability.SlotsPerDay), 2), headerStyle)

	// 数据行
	row := 3
	for _, day := range matrix {
		f.SetCellValue(sheetName, cell("A", row), day.DayName)
		for i, slot := range day.Slots {
			c := cell(colName(i+1), row)
			if slot.IsAvailable {
				f.SetCellValue(sheetName, c, "Available")
				f.SetCellStyle(sheetName, c, c, availableStyle)
			} else {
				f.SetCellValue(sheetName, c, "Blocked")
				f.SetCellStyle(sheetName, c, c, blockedStyle)
			}
		}
		row++
	}

	// 汇总
	row++
	f.SetCellValue(sheetName, cell("A", row), "Available slots")
	f.SetCellValue(sheetName, cell("B", row), available)
	row++
	f.SetCellValue(sheetName, cell("A", row), "Blocked slots")
	f.SetCellValue(sheetName, cell("B", row), blocked)
	row++
	f.SetCellValue(sheetName, cell("A", row), "Summary")
	f.SetCellValue(sheetName, cell("B", row), availability.Summarize(grid))

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("availability_%s.xlsx", room.Name), nil
}

// ═══════════════════════════════════════════════════════════
// ExportDepartmentSections
// ═══════════════════════════════════════════════════════════
//
// 每个分组一行：Section | Batch Year | Section Total | Batch | Count | Preferred Room

func (s *exportService) ExportDepartmentSections(ctx context.Context, departmentID string) (*bytes.Buffer, string, error) {
	dept, err := s.repo.Department.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.String("department_id", departmentID), zap.Error(err))
		return nil, "", err
	}

	sections, err := s.repo.Section.List(ctx, repository.SectionListFilter{DepartmentID: departmentID})
	if err != nil {
		s.logger.Error("列出班级失败", zap.String("department_id", departmentID), zap.Error(err))
		return nil, "", err
	}
	if len(sections) == 0 {
		return nil, "", ErrExportNoSections
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sections"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Section", "Batch Year", "Section Total", "Batch", "Count", "Preferred Room"}
	widths := []float64{10, 14, 14, 10, 10, 20}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, widths[i])
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s - sections (%d students)", dept.Name, dept.TotalStudents))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 2), headerStyle)

	row := 3
	for _, sec := range sections {
		if len(sec.Batches) == 0 {
			f.SetCellValue(sheetName, cell("A", row), sec.Name)
			f.SetCellValue(sheetName, cell("B", row), sec.BatchYearRange)
			f.SetCellValue(sheetName, cell("C", row), sec.TotalCount)
			f.SetCellValue(sheetName, cell("F", row), sec.PreferredRoom)
			row++
			continue
		}
		for _, b := range sec.Batches {
			room := b.PreferredRoom
			if room == "" {
				room = sec.PreferredRoom
			}
			f.SetCellValue(sheetName, cell("A", row), sec.Name)
			f.SetCellValue(sheetName, cell("B", row), sec.BatchYearRange)
			f.SetCellValue(sheetName, cell("C", row), sec.TotalCount)
			f.SetCellValue(sheetName, cell("D", row), b.Name)
			f.SetCellValue(sheetName, cell("E", row), b.Count)
			f.SetCellValue(sheetName, cell("F", row), room)
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("sections_%s.xlsx", dept.Name), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
