package api

import (
	"time"

	"spendlog/database"
	"spendlog/middleware"
	"spendlog/models"

	"github.com/gin-gonic/gin"
)

// SummaryHandler serves aggregation endpoints.
type SummaryHandler struct{}

// NewSummaryHandler creates the summary handler.
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// Weekly sums the authenticated user's expense amounts per category
// name over the trailing 7 days (created_at >= now-7d, lower bound
// inclusive). Categories without expenses in the window are omitted.
func (h *SummaryHandler) Weekly(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	since := time.Now().Add(-7 * 24 * time.Hour)

	type bucket struct {
		Name  string
		Total float64
	}
	var buckets []bucket
	if err := database.DB.Model(&models.Expense{}).
		Select("categories.name AS name, COALESCE(SUM(expenses.amount), 0) AS total").
		Joins("JOIN categories ON categories.id = expenses.category_id").
		Where("expenses.user_id = ? AND expenses.created_at >= ?", userID, since).
		Group("categories.name").
		Scan(&buckets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "could not compute summary"))
		return
	}

	summary := make(map[string]float64, len(buckets))
	for _, b := range buckets {
		summary[b.Name] = b.Total
	}

	OK(c, summary)
}
