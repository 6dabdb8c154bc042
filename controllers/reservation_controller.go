// controllers/reservation_controller.go
package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_booking_system/app"
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/models"

	"github.com/gin-gonic/gin"
)

// ReservationStore 由 *db.Repo 实现；测试时可换假实现
type ReservationStore interface {
	CreateReservation(ctx context.Context, in db.CreateReservationInput) ([]models.Reservation, error)
	UpdateReservation(ctx context.Context, id string, in db.UpdateReservationInput) (*models.Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
	FindReservationByID(ctx context.Context, id string) (*models.Reservation, error)
	FindByBookingRef(ctx context.Context, ref string) ([]models.Reservation, error)
	ListReservations(ctx context.Context, q db.ReservationQuery) ([]models.Reservation, error)
	ListBookedDates(ctx context.Context, itemID string) ([]string, error)
}

// 只有本人或管理员能看/改/取消一条预订
func canTouchReservation(c *gin.Context, res *models.Reservation) bool {
	if v, ok := c.Get("isAdmin"); ok {
		if admin, _ := v.(bool); admin {
			return true
		}
	}
	v, ok := c.Get("email")
	if !ok {
		return false
	}
	email, _ := v.(string)
	return email != "" && strings.EqualFold(email, res.UserEmail)
}

type ReservationController struct{ store ReservationStore }

func NewReservationController(store ReservationStore) *ReservationController {
	return &ReservationController{store: store}
}

type requesterBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

type createReservationReq struct {
	ItemID    string        `json:"itemId" binding:"required"`
	Dates     []string      `json:"dates" binding:"required"`
	Quantity  int           `json:"quantity"`
	Requester requesterBody `json:"requester" binding:"required"`
	Note      string        `json:"note"`
}

// POST /api/reservations
func (rc *ReservationController) Create(c *gin.Context) {
	var req createReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	dates, err := parseDates(req.Dates)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1 // 票数缺省 1
	}

	rows, err := rc.store.CreateReservation(c.Request.Context(), db.CreateReservationInput{
		ItemID:         req.ItemID,
		Dates:          dates,
		Quantity:       qty,
		FullName:       req.Requester.Name,
		UserEmail:      req.Requester.Email,
		UserPhone:      req.Requester.Phone,
		SpecialRequest: req.Note,
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{
		"bookingRef":   rows[0].BookingRef,
		"reservations": rows,
	})
}

type updateReservationReq struct {
	ItemID   *string `json:"itemId"`
	Date     *string `json:"date"`
	Quantity *int    `json:"quantity"`
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Note     *string `json:"note"`
}

// PUT /api/reservations/:id
func (rc *ReservationController) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "missing reservation id"})
		return
	}
	var req updateReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	existing, err := rc.store.FindReservationByID(c.Request.Context(), id)
	if err != nil {
		writeReservationError(c, err)
		return
	}
	if !canTouchReservation(c, existing) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden", "message": "not your reservation"})
		return
	}

	in := db.UpdateReservationInput{
		ItemID:         req.ItemID,
		Quantity:       req.Quantity,
		FullName:       req.Name,
		UserEmail:      req.Email,
		UserPhone:      req.Phone,
		SpecialRequest: req.Note,
	}
	if req.Date != nil {
		d, err := models.ParseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "bad date: " + *req.Date})
			return
		}
		in.ReservationDate = &d
	}

	res, err := rc.store.UpdateReservation(c.Request.Context(), id, in)
	if err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DELETE /api/reservations/:id — 取消即释放名额，重复取消 404
func (rc *ReservationController) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "missing reservation id"})
		return
	}
	res, err := rc.store.FindReservationByID(c.Request.Context(), id)
	if err != nil {
		writeReservationError(c, err)
		return
	}
	if !canTouchReservation(c, res) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden", "message": "not your reservation"})
		return
	}
	if err := rc.store.DeleteReservation(c.Request.Context(), id); err != nil {
		writeReservationError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/reservations/:id
func (rc *ReservationController) Get(c *gin.Context) {
	res, err := rc.store.FindReservationByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeReservationError(c, err)
		return
	}
	if !canTouchReservation(c, res) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden", "message": "not your reservation"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/reservations/ref/:ref — 一笔多日预订的全部记录
func (rc *ReservationController) GetByRef(c *gin.Context) {
	rows, err := rc.store.FindByBookingRef(c.Request.Context(), c.Param("ref"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, app.H{"error": "not_found", "message": "booking not found"})
		return
	}
	// 同一 bookingRef 的记录同属一人，看第一条就够
	if !canTouchReservation(c, &rows[0]) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden", "message": "not your reservation"})
		return
	}
	c.JSON(http.StatusOK, app.H{"reservations": rows})
}

// GET /api/reservations?itemId=&date=&email=
func (rc *ReservationController) List(c *gin.Context) {
	q := db.ReservationQuery{
		ItemID: c.Query("itemId"),
		Email:  c.Query("email"),
	}
	if s := c.Query("date"); s != "" {
		d, err := models.ParseDate(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "bad date: " + s})
			return
		}
		q.Date = &d
	}
	rows, err := rc.store.ListReservations(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"reservations": rows})
}

// GET /api/reservations/booked-dates/:itemId — 已订满的日期
func (rc *ReservationController) BookedDates(c *gin.Context) {
	itemID := c.Param("itemId")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "missing item id"})
		return
	}
	dates, err := rc.store.ListBookedDates(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"bookedDates": dates})
}

func parseDates(raw []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := models.ParseDate(s)
		if err != nil {
			return nil, errors.New("bad date: " + s)
		}
		out = append(out, d)
	}
	return out, nil
}

// 准入结果是业务语义，按哨兵错误翻译状态码；剩下的才是 500
func writeReservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, db.ErrItemNotFound), errors.Is(err, db.ErrReservationNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not_found", "message": err.Error()})
	case errors.Is(err, db.ErrItemUnavailable):
		c.JSON(http.StatusConflict, app.H{"error": "item_unavailable", "message": err.Error()})
	case errors.Is(err, db.ErrCapacityExceeded):
		c.JSON(http.StatusConflict, app.H{"error": "capacity_exceeded", "message": err.Error()})
	case errors.Is(err, db.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": "conflict", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
	}
}
