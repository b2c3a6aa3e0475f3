package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jobconnect/jobboard-api/internal/auth"
	"github.com/jobconnect/jobboard-api/internal/config"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"github.com/jobconnect/jobboard-api/internal/metrics"
	"github.com/jobconnect/jobboard-api/internal/services"
	log "github.com/sirupsen/logrus"
)

const maxUploadSize = 5 << 20

type Services struct {
	Auth          *services.AuthService
	Jobs          *services.JobService
	Employers     *services.EmployerService
	Companies     *services.CompanyService
	Candidates    *services.CandidateService
	Skills        *services.SkillService
	Interviews    *services.InterviewService
	Notifications *services.NotificationService
}

type handler struct {
	services Services
}

func NewRouter(cfg config.ServerConfig, issuer *auth.Issuer, svc Services) (*gin.Engine, error) {

	r := gin.New()
	// ClientIP keys the auth rate limiter, so forwarded headers count only from listed proxies
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.MaxMultipartMemory = maxUploadSize
	r.Use(gin.Recovery(), requestLogger(), requestMetrics())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	h := &handler{services: svc}
	limiter := newRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)
	authed := authenticate(issuer)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/sign-up", limiter.middleware(), h.signUp)
		authGroup.POST("/sign-in", limiter.middleware(), h.signIn)
		authGroup.POST("/refresh", h.refreshSession)
		authGroup.POST("/reset-password", limiter.middleware(), h.resetPassword)
		authGroup.POST("/reset-password/confirm", h.confirmPasswordReset)
		authGroup.POST("/sign-out", authed, h.signOut)
	}

	me := v1.Group("/me", authed)
	{
		me.GET("", h.currentUser)
		me.PATCH("", h.updateProfile)
		me.POST("/avatar", h.uploadAvatar)
	}

	v1.GET("/jobs", h.getJobs)
	v1.GET("/jobs/:id", h.getJob)

	v1.GET("/companies", h.getCompanies)
	v1.GET("/companies/:id", h.getCompany)
	companies := v1.Group("/companies", authed, requireRole(models.RoleEmployer))
	{
		companies.POST("", h.createCompany)
		companies.PATCH("/:id", h.updateCompany)
		companies.POST("/:id/logo", h.uploadLogo)
	}

	v1.GET("/skills", h.getSkills)
	v1.POST("/skills", authed, h.createSkill)

	employer := v1.Group("/employer", authed, requireRole(models.RoleEmployer))
	{
		employer.GET("/profile", h.getEmployerProfile)
		employer.POST("/profile", h.createEmployerProfile)
		employer.PATCH("/profile", h.updateEmployerProfile)
		employer.GET("/stats", h.getJobStats)
		employer.GET("/jobs", h.getEmployerJobs)
		employer.POST("/jobs", h.createJob)
		employer.PATCH("/jobs/:id", h.updateJob)
		employer.PUT("/jobs/:id/active", h.toggleJobActive)
		employer.DELETE("/jobs/:id", h.deleteJob)
		employer.GET("/jobs/:id/applications", h.getJobApplications)
		employer.GET("/candidates", h.getCandidates)
		employer.PUT("/applications/:id/status", h.updateApplicationStatus)
		employer.GET("/interviews/schedulable", h.getSchedulableApplications)
		employer.POST("/interviews", h.scheduleInterviews)
		employer.GET("/interviews", h.getInterviews)
		employer.GET("/interviews/:id", h.getInterview)
		employer.PATCH("/interviews/:id", h.updateInterview)
		employer.POST("/interviews/:id/no-show", h.markNoShow)
	}

	candidate := v1.Group("/candidate", authed, requireRole(models.RoleCandidate))
	{
		candidate.GET("/profile", h.getCandidateProfile)
		candidate.PUT("/profile", h.upsertCandidateProfile)
		candidate.GET("/experiences", h.getExperiences)
		candidate.POST("/experiences", h.addExperience)
		candidate.PUT("/experiences/:id", h.updateExperience)
		candidate.DELETE("/experiences/:id", h.deleteExperience)
		candidate.GET("/educations", h.getEducations)
		candidate.POST("/educations", h.addEducation)
		candidate.PUT("/educations/:id", h.updateEducation)
		candidate.DELETE("/educations/:id", h.deleteEducation)
		candidate.GET("/skills", h.getCandidateSkills)
		candidate.POST("/skills", h.addCandidateSkill)
		candidate.DELETE("/skills/:id", h.removeCandidateSkill)
		candidate.GET("/saved-jobs", h.getSavedJobs)
		candidate.GET("/saved-jobs/:id", h.isJobSaved)
		candidate.PUT("/saved-jobs/:id", h.saveJob)
		candidate.DELETE("/saved-jobs/:id", h.unsaveJob)
		candidate.POST("/jobs/:id/apply", h.applyToJob)
		candidate.GET("/applications", h.getMyApplications)
		candidate.DELETE("/applications/:id", h.withdrawApplication)
		candidate.GET("/interviews", h.getCandidateInterviews)
		candidate.POST("/interviews/:id/respond", h.respondToInvitation)
	}

	notifications := v1.Group("/notifications", authed)
	{
		notifications.GET("", h.getNotifications)
		notifications.GET("/unread-count", h.unreadCount)
		notifications.POST("/:id/read", h.markRead)
		notifications.POST("/read-all", h.markAllRead)
		notifications.PUT("/telegram", h.linkTelegram)
	}

	return r, nil
}

type Server struct {
	http *http.Server
}

func NewServer(addr string, router http.Handler) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Run blocks until the server stops; a graceful shutdown is not an error.
func (s *Server) Run() error {
	log.Infof("HTTP server listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
