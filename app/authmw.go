package app

import (
	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/session"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 这里确认用户仍存在，并把 isAdmin 放进 Context（只查一次）
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("userID", as.UserID)
		c.Set("email", u.Email)
		c.Set("isAdmin", u.IsAdmin || isAdminEmail(cfg, u.Email))

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 已有 AuthRequired 设置的 isAdmin
		if v, ok := c.Get("isAdmin"); ok {
			if admin, _ := v.(bool); admin {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}

func isAdminEmail(cfg Config, email string) bool {
	email = strings.ToLower(email)
	for _, admin := range cfg.AdminEmails {
		if email == admin {
			return true
		}
	}
	return false
}
