package routes

import (
	"time"

	"Gin_postgres_redis_inventory_tool/app"
	"Gin_postgres_redis_inventory_tool/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	userCtl := controllers.GetUserController(s)
	inviteCtl := controllers.GetInviteController(s)
	itemCtl := controllers.GetItemController(s)
	reqCtl := controllers.GetRequestController(s)
	usageCtl := controllers.GetUsageController(s)
	fcCtl := controllers.GetForecastController(s)
	reportCtl := controllers.GetReportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	// ------------------------------
	// 认证（注册需要邀请 token）
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// 邀请（仅管理员）
	// ------------------------------
	admin := r.Group("/admin", authMW, adminMW)
	{
		admin.POST("/invites", inviteCtl.CreateInvite)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.GET("/:id", userCtl.GetUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}

	// ------------------------------
	// 物品与库存
	// ------------------------------
	items := r.Group("/api/items", authMW, seenMW)
	{
		items.GET("", itemCtl.ListItems) // ?q=&category=&department=&stockStatus=&page=&size=
		items.GET("/low-stock", itemCtl.LowStock)
		items.GET("/stats", itemCtl.Stats)
		items.GET("/:id", itemCtl.GetItem)
		items.POST("", itemCtl.CreateItem)
		items.PUT("/:id", itemCtl.UpdateItem)
	}
	itemsAdmin := r.Group("/api/items", authMW, adminMW)
	{
		itemsAdmin.DELETE("/:id", itemCtl.DeleteItem)
		itemsAdmin.POST("/:id/adjust", itemCtl.AdjustStock)
	}

	// ------------------------------
	// 领用申请
	// ------------------------------
	requests := r.Group("/api/requests", authMW, seenMW)
	{
		requests.POST("", reqCtl.CreateRequest)
		requests.GET("", reqCtl.ListRequests) // ?status=&department=&userId=&page=&size=
		requests.GET("/stats", reqCtl.Stats)
		requests.GET("/:id", reqCtl.GetRequest)
		requests.POST("/:id/complete", reqCtl.Complete)
	}
	requestsAdmin := r.Group("/api/requests", authMW, adminMW)
	{
		requestsAdmin.POST("/:id/approve", reqCtl.Approve)
		requestsAdmin.POST("/:id/decline", reqCtl.Decline)
	}

	// ------------------------------
	// 用量台账
	// ------------------------------
	usage := r.Group("/api/usage", authMW, seenMW)
	{
		usage.POST("", usageCtl.RecordUsage)
		usage.GET("", usageCtl.ListUsage) // ?itemId=&department=&sinceDays=&page=&size=
	}

	// ------------------------------
	// 预测与报表
	// ------------------------------
	fc := r.Group("/api/forecast", authMW, seenMW)
	{
		fc.GET("", fcCtl.GetForecast) // ?months=&department=
		fc.GET("/top-used", fcCtl.TopUsed)
		fc.GET("/departments", fcCtl.DepartmentUsage)
	}

	reports := r.Group("/api/reports", authMW, seenMW)
	{
		reports.GET("/monthly", reportCtl.MonthlyUsage) // ?year=&department=
		reports.GET("/categories", reportCtl.CategoryDistribution)
		reports.GET("/dashboard", reportCtl.Dashboard)
	}
}
