package routes

import (
	"complaint-portal/controllers"
	middlewares "complaint-portal/middleware"
	"complaint-portal/services"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Options struct {
	CORSOrigins []string
	Metrics     *middlewares.Metrics
	Logger      *zap.Logger
}

// NewRouter builds the engine with the shared middleware and every route.
func NewRouter(ctl *controllers.Controller, opts Options) (*gin.Engine, error) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := services.RegisterValidations(v); err != nil {
			return nil, fmt.Errorf("register validations: %w", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", ctl.Health)
	SetupRoutes(r.Group("/api"), ctl, opts.Logger)
	return r, nil
}

func SetupRoutes(api *gin.RouterGroup, ctl *controllers.Controller, logger *zap.Logger) {
	protected := middlewares.AuthMiddleware(ctl.Auth, logger)

	SetupAuthRoutes(api, ctl, protected)
	SetupComplaintRoutes(api, ctl, protected)
	SetupDraftRoutes(api, ctl, protected)
	SetupHRRoutes(api, ctl, protected)
	SetupReportRoutes(api, ctl, protected)
}

func SetupComplaintRoutes(api *gin.RouterGroup, ctl *controllers.Controller, protected gin.HandlerFunc) {
	complaints := api.Group("/complaints", protected)
	handler := middlewares.RequireHandler()
	complainant := middlewares.RequireComplainant()

	complaints.POST("", complainant, ctl.CreateComplaint)
	complaints.GET("/user", complainant, ctl.GetUserComplaints)
	complaints.GET("/hr", handler, ctl.GetHRComplaints)
	complaints.GET("/perpetrators", handler, ctl.GetPerpetrators)
	complaints.GET("/perpetrators/export", handler, ctl.ExportPerpetrators)
	complaints.PUT("/:id/status", handler, ctl.UpdateComplaintStatus)
	complaints.PUT("/:id/report-to-ngo", handler, ctl.ReportToNGO)
	complaints.GET("/:id/download/:fileType/*filename", ctl.DownloadAttachment)
	complaints.GET("/:id/pdf", ctl.DownloadComplaintPDF)
	complaints.GET("/:id", ctl.GetComplaint)
}

func SetupDraftRoutes(api *gin.RouterGroup, ctl *controllers.Controller, protected gin.HandlerFunc) {
	drafts := api.Group("/drafts", protected, middlewares.RequireComplainant())
	drafts.POST("", ctl.SaveDraft)
	drafts.GET("", ctl.GetDrafts)
	drafts.GET("/:id", ctl.GetDraft)
	drafts.DELETE("/:id", ctl.DeleteDraft)
	drafts.POST("/:id/submit", ctl.SubmitDraft)
}

func SetupHRRoutes(api *gin.RouterGroup, ctl *controllers.Controller, protected gin.HandlerFunc) {
	api.GET("/hr", ctl.GetHRs)
	api.GET("/hr/:id", ctl.GetHR)
	api.PUT("/hr/:id", protected, middlewares.RequireHandler(), ctl.UpdateHR)
}

func SetupReportRoutes(api *gin.RouterGroup, ctl *controllers.Controller, protected gin.HandlerFunc) {
	api.POST("/harassment", protected, ctl.CreateReport)
	api.GET("/reports", protected, ctl.GetReports)
	api.GET("/reports/:id", protected, ctl.GetReport)
}
