package api

import (
	"errors"
	"log"
	"strings"

	"spendlog/database"
	"spendlog/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves the category endpoints.
type CategoryHandler struct{}

// NewCategoryHandler creates the category handler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CreateCategoryRequest category creation payload.
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// List returns all categories as id/name pairs.
func (h *CategoryHandler) List(c *gin.Context) {
	var categories []models.Category
	if err := database.DB.Order("id ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "could not list categories"))
		return
	}
	OK(c, categories)
}

// Create adds a category. Names are unique; a duplicate is a conflict.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "name must not be empty")
		return
	}

	var existing models.Category
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		Conflict(c, "category name already exists")
		return
	}

	category := models.Category{Name: req.Name}
	if err := database.DB.Create(&category).Error; err != nil {
		// A concurrent create can slip past the lookup above and hit
		// the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, "category name already exists")
			return
		}
		log.Printf("create category failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not create category"))
		return
	}

	Created(c, gin.H{"id": category.ID})
}
