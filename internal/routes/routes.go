package routes

import (
	"os"
	"strings"
	"time"

	"libro_back_end/internal/handlers/admin"
	"libro_back_end/internal/handlers/order"
	"libro_back_end/internal/handlers/payment"
	"libro_back_end/internal/handlers/product"
	"libro_back_end/internal/handlers/support"
	"libro_back_end/internal/handlers/user"
	"libro_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware())

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// ================== AUTH ==================
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/refresh", user.RefreshAccessToken)
		auth.POST("/logout", middleware.AuthRequired(), user.Logout)

		auth.GET("/:provider", user.BeginSocialAuth)
		auth.GET("/:provider/callback", user.SocialCallback)
	}

	// ================== PROFIL ==================
	me := api.Group("/users/me", middleware.AuthRequired())
	{
		me.GET("", user.GetMe)
		me.PUT("", user.UpdateProfile)
		me.PUT("/password", user.ChangePassword)
		me.DELETE("", user.DeleteAccount)
	}

	// ================== CATALOGUE ==================
	products := api.Group("/products")
	{
		products.GET("", product.ListProducts)
		products.GET("/search", product.SearchProducts)
		products.GET("/search/advanced", product.SearchProductsAdvanced)
		products.GET("/filters", product.GetProductFilters)
		products.GET("/:id", product.GetProduct)
	}

	// ================== PANIER ==================
	cart := api.Group("/cart", middleware.AuthRequired(), middleware.CartRateLimit())
	{
		cart.GET("", user.GetCart)
		cart.POST("", user.AddToCart)
		cart.PUT("/:lineId", user.UpdateCartLine)
		cart.DELETE("/:lineId", user.RemoveCartLine)
		cart.DELETE("", user.ClearCart)
		cart.GET("/ws", user.CartWebSocket)
	}

	// ================== COMMANDES ==================
	orders := api.Group("/orders", middleware.AuthRequired())
	{
		orders.POST("/checkout", order.Checkout)
		orders.GET("", order.ListMyOrders)
		orders.GET("/:id", order.GetMyOrder)
		orders.GET("/:id/invoice", order.DownloadInvoice)
	}

	// ================== PAIEMENTS ==================
	payments := api.Group("/payments", middleware.AuthRequired())
	{
		payments.POST("", payment.InitiatePayment)
		payments.GET("", payment.ListMyPayments)
		payments.GET("/:id", payment.GetMyPayment)
		payments.POST("/:id/cancel", payment.CancelPayment)
	}

	// ================== SUPPORT ==================
	api.GET("/support/faqs", support.ListFAQ)

	inquiries := api.Group("/support/inquiries", middleware.AuthRequired())
	{
		inquiries.POST("", support.CreateInquiry)
		inquiries.GET("", support.ListMyInquiries)
		inquiries.GET("/:id", support.GetMyInquiry)
	}

	// ================== ADMIN ==================
	adminGroup := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.GET("/stats/dashboard", admin.Dashboard)
		adminGroup.GET("/stats/rankings", admin.ProductRanking)

		adminGroup.POST("/products", product.CreateProduct)
		adminGroup.PUT("/products/:id", product.UpdateProduct)
		adminGroup.PUT("/products/:id/stock", product.UpdateStock)
		adminGroup.DELETE("/products/:id", product.DeleteProduct)
		adminGroup.POST("/products/images", product.UploadProductImage)
		adminGroup.POST("/products/images/attach", product.AddImageToProduct)
		adminGroup.GET("/products/images/signed-url", product.GetSignedImageURL)

		adminGroup.GET("/support/faqs", support.AdminListFAQ)
		adminGroup.POST("/support/faqs", support.AdminCreateFAQ)
		adminGroup.PUT("/support/faqs/:id", support.AdminUpdateFAQ)
		adminGroup.DELETE("/support/faqs/:id", support.AdminDeleteFAQ)

		adminGroup.GET("/support/inquiries", support.AdminListInquiries)
		adminGroup.GET("/support/inquiries/:id", support.AdminGetInquiry)
		adminGroup.PUT("/support/inquiries/:id/status", support.AdminUpdateInquiryStatus)
		adminGroup.POST("/support/inquiries/:id/replies", support.AdminReplyToInquiry)

		adminGroup.GET("/audit-logs", admin.GetAuditLogs)

		adminGroup.GET("/users", admin.ListUsers)
		adminGroup.POST("/users/:id/ban", admin.BanUser)
		adminGroup.POST("/users/:id/unban", admin.UnbanUser)
	}
}

func corsMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:3000"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
