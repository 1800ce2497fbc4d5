package api

import (
	"fmt"
	"net/http"
	"time"

	"spendlog/database"
	"spendlog/middleware"
	"spendlog/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler serves data export endpoints.
type ExportHandler struct{}

// NewExportHandler creates the export handler.
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// ExportExcel writes the authenticated user's expenses in a date range
// as an .xlsx attachment.
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	startStr := c.Query("start_time")
	endStr := c.Query("end_time")
	if startStr == "" || endStr == "" {
		BadRequest(c, "start_time and end_time are required")
		return
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.Local)
	if err != nil {
		BadRequest(c, "start_time must be formatted as 2006-01-02")
		return
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err != nil {
		BadRequest(c, "end_time must be formatted as 2006-01-02")
		return
	}
	// Include the whole end day.
	end = end.Add(24*time.Hour - time.Second)

	type row struct {
		ID          uint
		Amount      float64
		Description string
		Category    string
		CreatedAt   time.Time
	}
	var rows []row
	if err := database.DB.Model(&models.Expense{}).
		Select("expenses.id, expenses.amount, expenses.description, categories.name AS category, expenses.created_at").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.created_at >= ? AND expenses.created_at <= ?", userID, start, end).
		Order("expenses.created_at DESC").
		Scan(&rows).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "could not query expenses"))
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Expenses"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"ID", "Amount", "Category", "Description", "Created At"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	f.SetCellStyle(sheet, "A1", "E1", headerStyle)
	f.SetColWidth(sheet, "D", "D", 40)
	f.SetColWidth(sheet, "E", "E", 20)

	for i, r := range rows {
		line := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", line), r.ID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", line), r.Amount)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", line), r.Category)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", line), r.Description)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", line), r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		InternalError(c, "could not build the export file")
		return
	}

	filename := fmt.Sprintf("expenses_%s_%s.xlsx", startStr, endStr)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
