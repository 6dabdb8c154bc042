package routes

import (
	"Gin_postgres_redis_booking_system/app"
	"Gin_postgres_redis_booking_system/controllers"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	uc := controllers.GetUserController(s)
	itemCtl := controllers.NewItemController(s)
	resCtl := controllers.NewReservationController(s.Repo)
	dashCtl := controllers.NewDashboardController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a.AppSessions(), s.Repo, a.Config)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 用户 / 会话
	// ------------------------------
	users := r.Group("/api/users")
	{
		users.POST("/signup", uc.Signup)
		users.POST("/login", uc.Login)
	}
	usersAuth := users.Group("", authMW, seenMW)
	{
		usersAuth.POST("/logout", uc.Logout)
		usersAuth.GET("/me", uc.Me)
	}
	usersAdmin := users.Group("", authMW, adminMW)
	{
		usersAdmin.GET("", uc.ListUsers) // ?q=&page=&size=
		usersAdmin.GET("/:id", uc.GetUser)
		usersAdmin.DELETE("/:id", uc.DeleteUser)
	}

	// ------------------------------
	// 物品：浏览公开，管理需要管理员
	// ------------------------------
	items := r.Group("/api/items")
	{
		items.GET("", itemCtl.ListItems) // ?q=&category=&status=
		items.GET("/:id", itemCtl.GetItem)
	}
	itemsAdmin := items.Group("", authMW, adminMW)
	{
		itemsAdmin.POST("", itemCtl.CreateItem)
		itemsAdmin.PUT("/:id", itemCtl.UpdateItem)
		itemsAdmin.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// 预订：日历公开，下单/改/取消需要登录
	// ------------------------------
	r.GET("/api/reservations/booked-dates/:itemId", resCtl.BookedDates)

	res := r.Group("/api/reservations", authMW, seenMW)
	{
		res.POST("", resCtl.Create)
		res.GET("", resCtl.List) // ?itemId=&date=&email=
		res.GET("/:id", resCtl.Get)
		res.GET("/ref/:ref", resCtl.GetByRef)
		res.PUT("/:id", resCtl.Update)
		res.DELETE("/:id", resCtl.Cancel)
	}

	// ------------------------------
	// 管理后台：看板与报表
	// ------------------------------
	admin := r.Group("/api", authMW, adminMW)
	{
		admin.GET("/dashboard", dashCtl.Dashboard)
		admin.GET("/reports/usage", dashCtl.UsageReport)
	}
}
