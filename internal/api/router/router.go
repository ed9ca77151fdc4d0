package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rohitrode264/SchedulizerEMS--sub000/config"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/api/handler"
	"github.com/Rohitrode264/SchedulizerEMS--sub000/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时限流降级为进程内令牌桶；db 为 nil 时健康检查不探测数据库
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimitStore, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Operator())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		ContentSecurityPolicy: cfg.Server.Security.ContentSecurityPolicy,
		HSTSMaxAge:            cfg.Server.Security.HSTSMaxAge,
	}))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst))
	{
		// 大学模块
		universities := v1.Group("/universities")
		{
			universities.GET("", h.University.ListUniversities)
			universities.GET("/:id", h.University.GetUniversity)
			universities.POST("", h.University.CreateUniversity)
			universities.PUT("/:id", h.University.UpdateUniversity)
			universities.DELETE("/:id", h.University.DeleteUniversity)
		}

		// 学院模块
		schools := v1.Group("/schools")
		{
			schools.GET("", h.School.ListSchools)
			schools.GET("/:id", h.School.GetSchool)
			schools.POST("", h.School.CreateSchool)
			schools.PUT("/:id", h.School.UpdateSchool)
			schools.DELETE("/:id", h.School.DeleteSchool)
		}

		// 院系模块
		departments := v1.Group("/departments")
		{
			departments.GET("", h.Department.ListDepartments)
			departments.GET("/:id", h.Department.GetDepartment)
			departments.POST("", h.Department.CreateDepartment)
			departments.PUT("/:id", h.Department.UpdateDepartment)
			departments.DELETE("/:id", h.Department.DeleteDepartment)
			departments.POST("/:id/sections/distribute", h.Section.DistributeDepartment)
		}

		// 课程方案模块
		schemes := v1.Group("/schemes")
		{
			schemes.GET("", h.Scheme.ListSchemes)
			schemes.GET("/:id", h.Scheme.GetScheme)
			schemes.POST("", h.Scheme.CreateScheme)
			schemes.PUT("/:id", h.Scheme.UpdateScheme)
			schemes.DELETE("/:id", h.Scheme.DeleteScheme)
		}

		// 教室与可用性模块
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", h.Room.ListRooms)
			rooms.GET("/available", h.Room.FindAvailable)
			rooms.GET("/:id", h.Room.GetRoom)
			rooms.POST("", h.Room.CreateRoom)
			rooms.PUT("/:id", h.Room.UpdateRoom)
			rooms.DELETE("/:id", h.Room.DeleteRoom)
			rooms.GET("/:id/availability", h.Room.GetAvailability)
			rooms.PUT("/:id/availability", h.Room.ReplaceAvailability)
			rooms.PATCH("/:id/availability/slot", h.Room.ToggleSlot)
			rooms.PUT("/:id/availability/bulk", h.Room.BulkSetAvailability)
		}

		// 班级规划模块
		sections := v1.Group("/sections")
		{
			sections.POST("/plan", h.Section.PlanSections)
			sections.POST("/config", h.Section.SubmitConfig)
			sections.GET("", h.Section.ListSections)
			sections.GET("/:id", h.Section.GetSection)
			sections.PUT("/:id/name", h.Section.RenameSection)
			sections.PUT("/:id/batches", h.Section.ResizeBatches)
			sections.PUT("/:id/total", h.Section.Redistribute)
			sections.PUT("/:id/batches/:position/room", h.Section.UpdateBatchRoom)
			sections.DELETE("/:id", h.Section.DeleteSection)
		}

		// 规划参数
		settings := v1.Group("/settings")
		{
			settings.GET("/planner", h.Settings.GetSettings)
			settings.PUT("/planner", h.Settings.UpdateSettings)
		}

		// 外部排课结果
		v1.GET("/timetables/:id", h.Timetable.GetTimetable)

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/rooms/:id/availability", h.Export.ExportRoomAvailability)
			export.GET("/departments/:id/sections", h.Export.ExportDepartmentSections)
		}
	}

	return r
}
