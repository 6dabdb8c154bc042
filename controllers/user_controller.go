package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"Gin_postgres_redis_booking_system/app"
	"Gin_postgres_redis_booking_system/auth"
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

type signupReq struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/users/signup
func (uc *UserController) Signup(c *gin.Context) {
	var in signupReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if _, err := uc.Repo.FindUserByEmail(c.Request.Context(), email); err == nil {
		c.JSON(http.StatusConflict, app.H{"error": "conflict", "message": "email already registered"})
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: hash,
	}
	if err := uc.Repo.CreateUser(c.Request.Context(), u); err != nil {
		// 预检挡不住并发注册，唯一索引兜底后同样按 409 报
		if db.IsUniqueViolation(err) {
			c.JSON(http.StatusConflict, app.H{"error": "conflict", "message": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}

	// 注册完直接登录
	if err := uc.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, app.H{"user": u})
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/users/login
func (uc *UserController) Login(c *gin.Context) {
	var in loginReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": err.Error()})
		return
	}

	u, err := uc.Repo.FindUserByEmail(c.Request.Context(), in.Email)
	if err != nil {
		// 不区分“用户不存在”和“密码错”
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized", "message": "bad credentials"})
		return
	}
	if err := auth.VerifyPassword(u.PasswordHash, in.Password); err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized", "message": "bad credentials"})
		return
	}

	if err := uc.issueSession(c.Request.Context(), c.Writer, u.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": u})
}

// POST /api/users/logout — 删 Redis 会话，Cookie 置空
func (uc *UserController) Logout(c *gin.Context) {
	if ck, err := c.Request.Cookie(app.AppSessionCookie); err == nil && ck.Value != "" {
		_ = uc.AppSess.Delete(c.Request.Context(), ck.Value)
	}
	uc.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/users/me
func (uc *UserController) Me(c *gin.Context) {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	u, err := uc.Repo.FindUserByID(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	isAdmin, _ := c.Get("isAdmin")
	c.JSON(http.StatusOK, app.H{"user": u, "isAdmin": isAdmin})
}

// GET /api/users?q=alice&page=1&size=20
func (uc *UserController) ListUsers(c *gin.Context) {
	q := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), q, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "invalid uuid"})
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		if db.IsNotFound(err) {
			c.JSON(http.StatusNotFound, app.H{"error": "not_found", "message": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")

	// 不允许删除自己，避免锁死
	if v, ok := c.Get("userID"); ok {
		if uid, _ := v.(string); uid == id {
			c.JSON(http.StatusBadRequest, app.H{"error": "invalid_request", "message": "cannot delete yourself"})
			return
		}
	}

	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "not_found", "message": "user not found"})
		return
	}
	if target.IsAdmin {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden", "message": "cannot delete an admin"})
		return
	}

	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal", "message": err.Error()})
		return
	}
	// 撤销该用户的所有登录会话
	_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
