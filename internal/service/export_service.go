package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"time-tracker/internal/model"
	"time-tracker/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoEntries    = errors.New("暂无打卡记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 仅导出原始打卡记录，不做任何汇总（工时汇总由下游流程负责）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTimeEntries 导出 TIME 分区的全部打卡记录为 Excel
	ExportTimeEntries(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// exportHeaders 表头，顺序即列顺序
var exportHeaders = []string{"ID", "员工", "打卡时间", "类型", "已汇总", "版本"}

func (s *exportService) ExportTimeEntries(ctx context.Context) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "打卡记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 22)
	f.SetColWidth(sheetName, "D", "F", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	dateStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 22}) // m/d/yy h:mm

	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)

	// 数据行：流式读取，逐行写入
	row := 2
	for entry, err := range s.repo.TimeEntry.ScanAll(ctx, model.TimePartition) {
		if err != nil {
			s.logger.Error("读取打卡记录失败", zap.Error(err))
			return nil, "", err
		}
		f.SetCellValue(sheetName, cell("A", row), entry.ID)
		f.SetCellValue(sheetName, cell("B", row), entry.EmployeeID)
		f.SetCellValue(sheetName, cell("C", row), entry.Date.UTC())
		f.SetCellStyle(sheetName, cell("C", row), cell("C", row), dateStyle)
		f.SetCellValue(sheetName, cell("D", row), entry.Type.String())
		f.SetCellValue(sheetName, cell("E", row), entry.IsConsolidated)
		f.SetCellValue(sheetName, cell("F", row), entry.Version)
		row++
	}
	if row == 2 {
		return nil, "", ErrExportNoEntries
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("time_%s.xlsx", s.now().UTC().Format("20060102_150405"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
