// controllers/item_controller.go
package controllers

import (
	"net/http"

	"Gin_postgres_redis_booking_system/app"
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

type createItemReq struct {
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Condition string `json:"condition"`
	Status    string `json:"status"`
	Capacity  int    `json:"capacity"`
	ImageURL  string `json:"imageUrl"`
}

// 管理员创建物品；设备 capacity=1，活动票务填场地容量
func (ic *ItemController) CreateItem(c *gin.Context) {
	var in createItemReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if in.Capacity == 0 {
		in.Capacity = 1
	}
	if in.Capacity < 1 {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "capacity must be >= 1"})
		return
	}
	if in.Condition == "" {
		in.Condition = models.ItemConditionGood
	}
	if in.Status == "" {
		in.Status = models.ItemStatusAvailable
	}
	if !models.ValidItemCondition(in.Condition) || !models.ValidItemStatus(in.Status) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "bad condition or status"})
		return
	}

	it := &models.Item{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Category:  in.Category,
		Condition: in.Condition,
		Status:    in.Status,
		Capacity:  in.Capacity,
		ImageURL:  in.ImageURL,
	}
	if err := ic.Repo.CreateItem(c.Request.Context(), it); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, it)
}

// GET /api/items/:id
func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it})
}

// GET /api/items?q=&category=&status=
func (ic *ItemController) ListItems(c *gin.Context) {
	items, err := ic.Repo.ListItems(c.Request.Context(), db.ItemsQuery{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// PUT /api/items/:id — 部分更新
func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in db.UpdateItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "capacity must be >= 1"})
		return
	}
	if in.Status != nil && !models.ValidItemStatus(*in.Status) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "bad status"})
		return
	}
	if in.Condition != nil && !models.ValidItemCondition(*in.Condition) {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "bad condition"})
		return
	}

	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"item": it})
}

// DELETE /api/items/:id
func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Repo.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
