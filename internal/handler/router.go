package handler

import (
	"pokerpot/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 用户相关
		user := api.Group("/user")
		{
			user.POST("/signup", h.Signup)
			user.POST("/login", h.Login)
			user.GET("/detail", h.GetProfile)
			user.GET("/transactions", h.ListUserTransactions)
		}

		// 设备相关
		device := api.Group("/device")
		{
			device.POST("/register", h.RegisterDevice)
		}

		// 奖池相关
		pool := api.Group("/pool")
		{
			pool.POST("/create", h.CreatePool)
			pool.GET("/detail", h.GetPool)
			pool.GET("/list/user", h.ListPoolsByUser)
			pool.GET("/list/device", h.ListPoolsByDevice)
			pool.POST("/join", h.JoinPool)
			pool.POST("/settings/update", h.UpdateSettings)
			pool.POST("/transaction", h.CreateTransaction)
			pool.GET("/transaction/detail", h.GetTransaction)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
