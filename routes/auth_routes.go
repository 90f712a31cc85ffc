package routes

import (
	"complaint-portal/controllers"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(api *gin.RouterGroup, ctl *controllers.Controller, protected gin.HandlerFunc) {
	auth := api.Group("/auth")

	// Public auth routes
	auth.POST("/register", ctl.Register)
	auth.POST("/login", ctl.Login)

	auth.GET("/profile", protected, ctl.GetProfile)
	auth.PUT("/profile", protected, ctl.UpdateProfile)
	auth.PUT("/password", protected, ctl.ChangePassword)
	auth.POST("/logout", protected, ctl.Logout)
}
