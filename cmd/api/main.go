package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dining/internal/auth"
	"dining/internal/cloudinary"
	"dining/internal/config"
	"dining/internal/httpmiddleware"
	"dining/internal/meal"
	"dining/internal/metrics"
	"dining/internal/queue"
	"dining/internal/store"
)

const dateLayout = "2006-01-02"

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	domain := meal.NewStore()
	if cfg.SeedDemo {
		meal.SeedDemo(domain)
		log.Println("demo roster seeded")
	}
	svc := meal.NewService(domain)

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "dining:events")
	}
	ctx := context.Background()

	// Cloudinary client (nil when not configured)
	var cdnClient *cloudinary.Client
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cdnClient = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured (CLOUDINARY_CLOUD_NAME / API_KEY / API_SECRET not set)")
	}

	publish := func(eventType string, payload any) {
		body, err := json.Marshal(payload)
		if err != nil {
			log.Printf("event %s marshal failed: %v", eventType, err)
			return
		}
		if err := q.Publish(ctx, queue.Message{Type: eventType, Body: body}); err != nil {
			log.Printf("queue publish failed: %v", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := cfg.QueueBackend == "memory" || redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	r.POST("/v1/auth/login", func(c *gin.Context) {
		var req struct {
			Role     string `json:"role" binding:"required"`
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		principal, err := svc.Login(meal.Role(req.Role), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}

		tokens, err := auth.Issue(principal.ID(), string(principal.Role), cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
			"principal":     principal,
		})
	})

	authed := r.Group("/v1", auth.Bearer(cfg.JWTSigningKey, cfg.JWTIssuer))

	// Logout is client-side token disposal; the server just acknowledges.
	authed.POST("/auth/logout", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "logged out"})
	})

	authed.GET("/dashboard", func(c *gin.Context) {
		claims := auth.FromContext(c)
		now := time.Now()
		resp := gin.H{"stats": domain.Stats(now)}
		if dm, err := domain.ActiveDiningMonth(); err == nil {
			resp["active_dining_month"] = dm
			resp["dining_day_number"] = meal.DiningDayNumber(now, dm.StartDate)
			resp["managers"] = domain.ManagersForMonth(dm.ID)
		}
		if claims.Role == string(meal.RoleStudent) {
			resp["tokens"] = domain.TokensByStudent(claims.Subject)
			resp["cancellations"] = domain.Cancellations("", claims.Subject)
			if st, err := domain.Student(claims.Subject); err == nil {
				resp["balance"] = st.Balance
			}
		}
		c.JSON(http.StatusOK, resp)
	})

	// Roster management is admin-only.
	admin := authed.Group("", auth.RequireRole(string(meal.RoleAdmin)))

	admin.GET("/students", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"students": domain.Students()})
	})

	admin.POST("/students", func(c *gin.Context) {
		var req studentPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.CreateStudent(req.toStudent(""))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"student": st})
	})

	admin.PUT("/students/:id", func(c *gin.Context) {
		var req studentPayload
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		st, err := svc.UpdateStudent(req.toStudent(c.Param("id")))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"student": st})
	})

	// Profile photo is self-service: the token subject must own the record.
	authed.POST("/students/:id/photo", func(c *gin.Context) {
		claims := auth.FromContext(c)
		studentID := c.Param("id")
		if claims.Role != string(meal.RoleAdmin) && claims.Subject != studentID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your profile"})
			return
		}
		if cdnClient == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
			return
		}

		var result *cloudinary.UploadResult
		var err error
		if strings.Contains(c.ContentType(), "multipart/form-data") {
			file, header, ferr := c.Request.FormFile("file")
			if ferr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
				return
			}
			defer file.Close()
			data, ferr := io.ReadAll(file)
			if ferr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "read file failed"})
				return
			}
			result, err = cdnClient.UploadBytes(data, header.Filename)
		} else {
			var body struct {
				Data string `json:"data" binding:"required"`
			}
			if berr := c.ShouldBindJSON(&body); berr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
				return
			}
			result, err = cdnClient.UploadBase64(body.Data)
		}
		if err != nil {
			log.Printf("cloudinary upload failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "image upload failed"})
			return
		}

		st, err := svc.UpdateStudentPhoto(studentID, result.SecureURL)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"student": st, "photo_url": result.SecureURL})
	})

	studentOnly := authed.Group("", auth.RequireRole(string(meal.RoleStudent)))

	studentOnly.POST("/tokens", func(c *gin.Context) {
		var req struct {
			Duration int    `json:"duration" binding:"required"`
			MealType string `json:"meal_type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		t, err := svc.PurchaseToken(auth.FromContext(c).Subject, req.Duration, meal.TokenMealType(req.MealType))
		if err != nil {
			respondErr(c, err)
			return
		}
		metrics.TokenPurchased(string(t.MealType))
		publish(queue.EventTokenPurchased, t)
		c.JSON(http.StatusCreated, gin.H{"token": t})
	})

	studentOnly.GET("/tokens", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tokens": domain.TokensByStudent(auth.FromContext(c).Subject)})
	})

	studentOnly.POST("/cancellations", func(c *gin.Context) {
		var req struct {
			Date     string `json:"date" binding:"required"`
			MealType string `json:"meal_type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		cd, err := svc.RequestCancellation(auth.FromContext(c).Subject, date, meal.CancelMealType(req.MealType))
		if err != nil {
			respondErr(c, err)
			return
		}
		metrics.CancellationRequested()
		publish(queue.EventCancellationRequested, cd)
		c.JSON(http.StatusCreated, gin.H{"cancellation": cd})
	})

	authed.GET("/cancellations", func(c *gin.Context) {
		claims := auth.FromContext(c)
		status := meal.CancellationStatus(c.Query("status"))
		studentID := ""
		if claims.Role == string(meal.RoleStudent) {
			studentID = claims.Subject
		}
		c.JSON(http.StatusOK, gin.H{"cancellations": domain.Cancellations(status, studentID)})
	})

	managerOnly := authed.Group("", auth.RequireRole(string(meal.RoleManager)))

	managerOnly.POST("/cancellations/:id/decision", func(c *gin.Context) {
		var req struct {
			Decision string `json:"decision" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cd, err := svc.ResolveCancellation(c.Param("id"), req.Decision, auth.FromContext(c).Subject)
		if err != nil {
			respondErr(c, err)
			return
		}
		metrics.CancellationResolved(string(cd.Status), cd.RefundAmount)
		publish(queue.EventCancellationResolved, cd)
		c.JSON(http.StatusOK, gin.H{"cancellation": cd})
	})

	studentOnly.POST("/payments", func(c *gin.Context) {
		var req struct {
			Amount         float64 `json:"amount" binding:"required"`
			Method         string  `json:"method" binding:"required"`
			TransactionRef string  `json:"transaction_ref" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := svc.AddBalance(auth.FromContext(c).Subject, req.Amount, meal.PaymentMethod(req.Method), req.TransactionRef)
		if err != nil {
			respondErr(c, err)
			return
		}
		metrics.PaymentCompleted()
		publish(queue.EventPaymentCompleted, p)
		c.JSON(http.StatusCreated, gin.H{"transaction": p})
	})

	studentOnly.GET("/payments", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transactions": domain.PaymentsByStudent(auth.FromContext(c).Subject)})
	})

	authed.GET("/dining-months", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"dining_months": domain.DiningMonths()})
	})

	openMonth := authed.Group("", auth.RequireRole(string(meal.RoleManager), string(meal.RoleAdmin)))

	openMonth.POST("/dining-months", func(c *gin.Context) {
		var req struct {
			StartDate string `json:"start_date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		dm, err := svc.OpenDiningMonth(start, auth.FromContext(c).Subject)
		if err != nil {
			respondErr(c, err)
			return
		}
		publish(queue.EventDiningMonthOpened, dm)
		c.JSON(http.StatusCreated, gin.H{"dining_month": dm})
	})

	admin.PUT("/dining-months/:id/managers", func(c *gin.Context) {
		var req struct {
			StudentIDs []string `json:"student_ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		managers, err := svc.AssignManagers(c.Param("id"), req.StudentIDs, auth.FromContext(c).Subject)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"managers": managers})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// studentPayload is the roster record shape accepted from admins.
type studentPayload struct {
	Name               string  `json:"name" binding:"required"`
	Email              string  `json:"email" binding:"required"`
	Password           string  `json:"password"`
	HallID             string  `json:"hall_id"`
	RegistrationNumber string  `json:"registration_number"`
	StudentNumber      string  `json:"student_number"`
	Department         string  `json:"department"`
	RoomNumber         string  `json:"room_number"`
	PhoneNumber        string  `json:"phone_number"`
	Balance            float64 `json:"balance"`
}

func (p studentPayload) toStudent(id string) meal.Student {
	return meal.Student{
		ID:                 id,
		Name:               p.Name,
		Email:              p.Email,
		Password:           p.Password,
		HallID:             p.HallID,
		RegistrationNumber: p.RegistrationNumber,
		StudentNumber:      p.StudentNumber,
		Department:         p.Department,
		RoomNumber:         p.RoomNumber,
		PhoneNumber:        p.PhoneNumber,
		Balance:            p.Balance,
	}
}

// respondErr maps domain error kinds to HTTP status codes.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, meal.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, meal.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, meal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, meal.ErrConflict),
		errors.Is(err, meal.ErrInsufficientBalance),
		errors.Is(err, meal.ErrNoActiveDiningMonth):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
