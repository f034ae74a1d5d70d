// internal/api/routes.go
package api

import (
	"database/sql"
	"shiftness-api/internal/api/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

func SetupRouter(db *sql.DB, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))
	router.Use(RequestIDMiddleware())

	h := handlers.NewHandler(db, log)

	//Swagger Route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/", h.Home)

	// Auth routes
	router.POST("/signup", h.Signup)
	router.POST("/signin", h.Signin)
	router.POST("/signout", h.Signout)

	// Token verification and business routes require a valid bearer token
	authed := router.Group("/")
	authed.Use(AuthMiddleware())
	{
		authed.POST("/verify_token", h.VerifyToken)
		authed.GET("/get_businesses", h.GetBusinesses)

		admin := authed.Group("/")
		admin.Use(AdminMiddleware(db))
		{
			admin.POST("/create_business", h.CreateBusiness)
			admin.POST("/add_user_to_business", h.AddUserToBusiness)
		}
	}

	// Generic user directory CRUD
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	return router
}
