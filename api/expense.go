package api

import (
	"log"
	"strings"

	"spendlog/database"
	"spendlog/middleware"
	"spendlog/models"

	"github.com/gin-gonic/gin"
)

// ExpenseHandler serves the expense endpoints.
type ExpenseHandler struct{}

// NewExpenseHandler creates the expense handler.
func NewExpenseHandler() *ExpenseHandler {
	return &ExpenseHandler{}
}

// CreateExpenseRequest expense creation payload. The owner is always
// the authenticated user; any client-supplied user id is ignored.
type CreateExpenseRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description" binding:"required,max=255"`
	CategoryID  uint    `json:"category_id" binding:"required"`
}

// ExpenseListRequest list query parameters.
type ExpenseListRequest struct {
	Page       int  `form:"page"`
	PageSize   int  `form:"page_size"`
	CategoryID uint `form:"category_id"`
}

// Create records an expense for the authenticated user with a
// server-assigned timestamp.
func (h *ExpenseHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	if strings.TrimSpace(req.Description) == "" {
		BadRequest(c, "description must not be empty")
		return
	}

	// The category must exist before anything is persisted.
	var category models.Category
	if err := database.DB.First(&category, req.CategoryID).Error; err != nil {
		BadRequest(c, "unknown category")
		return
	}

	expense := models.Expense{
		UserID:      userID,
		CategoryID:  category.ID,
		Amount:      req.Amount,
		Description: req.Description,
	}

	if err := database.DB.Create(&expense).Error; err != nil {
		log.Printf("create expense failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not create expense"))
		return
	}

	Created(c, gin.H{"id": expense.ID})
}

// List returns the authenticated user's expenses, newest first, paged.
func (h *ExpenseHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid query"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 10
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	query := database.DB.Model(&models.Expense{}).Where("user_id = ?", userID)
	if req.CategoryID != 0 {
		query = query.Where("category_id = ?", req.CategoryID)
	}

	var total int64
	query.Count(&total)

	var expenses []models.Expense
	offset := (req.Page - 1) * req.PageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(req.PageSize).Find(&expenses).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "could not list expenses"))
		return
	}

	OK(c, PageResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		List:     expenses,
	})
}
