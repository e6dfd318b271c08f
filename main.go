package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"store-service/config"
	"store-service/consumers"
	"store-service/controllers"
	"store-service/database"
	"store-service/middlewares"
	"store-service/rabbitmq"
	"store-service/services"
	"store-service/storage"
)

func main() {
	// 加载配置
	cfg := config.LoadConfig()

	// 初始化数据库
	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer db.Close()

	// 图片存储
	images, err := storage.NewFileImageStore(cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		log.Fatalf("Image store initialization failed: %v", err)
	}

	// 各服务持有注入的连接池句柄
	orderService := services.NewOrderService(db)
	userService := services.NewUserService(db, cfg.JWTSecret)
	productService := services.NewProductService(db, images)
	categoryService := services.NewCategoryService(db)
	reportService := services.NewReportService(db)

	// 初始化RabbitMQ
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	// 设置队列和交换机
	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	// 启动消息消费者
	go consumers.StartOrderConsumer(rmq.Channel, cfg, orderService)

	authCtl := controllers.NewAuthController(userService)
	orderCtl := controllers.NewOrderController(orderService, rmq)
	productCtl := controllers.NewProductController(productService)
	categoryCtl := controllers.NewCategoryController(categoryService)
	reportCtl := controllers.NewReportController(reportService)

	// 创建Gin路由
	r := gin.Default()

	// 应用Prometheus中间件
	r.Use(middlewares.PrometheusMiddleware())

	// 暴露Prometheus指标端点
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查端点
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 商品图片静态目录
	r.Static("/images", cfg.ImageDir)

	api := r.Group("/api")

	// 公开路由
	api.POST("/register", authCtl.Register)
	api.POST("/login", authCtl.Login)
	api.GET("/products", productCtl.ListProducts)
	api.GET("/categories", categoryCtl.ListCategories)
	api.GET("/categories/:categoryName/products", categoryCtl.GetProductsByCategory)

	// 需要认证的路由组
	authGroup := api.Group("")
	authGroup.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		authGroup.GET("/profile", authCtl.Profile)
		authGroup.POST("/orders", orderCtl.PlaceOrder)
		authGroup.GET("/orders", orderCtl.GetUserOrders)
		authGroup.GET("/orders/:id", orderCtl.GetOrderDetails)
	}

	// 管理端路由组
	adminGroup := api.Group("")
	adminGroup.Use(middlewares.AuthMiddleware(cfg.JWTSecret), middlewares.AdminMiddleware())
	{
		adminGroup.PUT("/orders/:id/status", orderCtl.UpdateOrderStatus)
		adminGroup.GET("/admin/orders", orderCtl.GetAllOrders)
		adminGroup.GET("/admin/report", reportCtl.GetSalesReport)
		adminGroup.POST("/products", productCtl.AddProduct)
		adminGroup.PUT("/products/:id", productCtl.UpdateProduct)
		adminGroup.DELETE("/products/:id", productCtl.DeleteProduct)
		adminGroup.POST("/admin/categories", categoryCtl.AddCategory)
		adminGroup.PUT("/admin/categories/:id", categoryCtl.UpdateCategory)
		adminGroup.DELETE("/admin/categories/:id", categoryCtl.DeleteCategory)
	}

	// 死信队列处理端点
	r.POST("/dead-letter", orderCtl.HandleDeadLetter)

	// 启动服务器
	port := ":8080"
	log.Printf("Store service starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
