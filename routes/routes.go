package routes

import (
	"Pixelhop/controllers"
	"Pixelhop/middleware"
	"Pixelhop/services/invitations"
	utils "Pixelhop/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, invites *invitations.Channel) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.GET("/users/:username", controllers.GetPublicProfile(db))

	api.GET("/ranking", controllers.GetRanking(db))

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.GET("/me", controllers.GetUserPrivateInfo(db))

		authentication.GET("/matches", controllers.GetMatchHistory(db))

		authentication.GET("/invitations", controllers.GetPendingInvitations(db, invites))
	}
}
