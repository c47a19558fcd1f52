// Auth is a backend that issues and verifies one time passcodes for the venbook marketplace
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/robfig/cron/v3"
	"github.com/venbook/auth/config"
	"github.com/venbook/auth/connect"
	"github.com/venbook/auth/controllers"
	"github.com/venbook/auth/middleware"
	"github.com/venbook/auth/services"
	"github.com/venbook/auth/storage"
	"github.com/venbook/auth/utils"
)

var (
	env  config.Env
	conn connect.Connector
)

func init() {
	env.Load()

	// the storage backend is chosen once for the process lifetime, a database
	// that comes back later does not cause a switch back
	if err := conn.InitDatabase(&env); err != nil {
		logger.Error(err)
	}
	if conn.DB != nil {
		utils.CheckForMigrations(&conn, &env)
	}

	conn.InitRatelimiter(&env)
	conn.InitRedis(&env)
}

func main() {
	otpService := &services.OTP{
		Store:    storage.Select(conn.DB),
		Sender:   &utils.Email{Env: &env},
		Cooldown: conn.R.Cooldown,
	}

	app := fiber.New()
	if config.GetDevEnv(&env) == config.Dev {
		app.Use(fiberLogger.New())
	}

	app.Use(cors.New(cors.Config{
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowOrigins:     env.FrontendHostname,
		AllowCredentials: true,
		AllowMethods:     "*",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusTooManyRequests)
		},
		SkipFailedRequests:     false,
		SkipSuccessfulRequests: false,
		LimiterMiddleware:      limiter.SlidingWindow{},
		Storage:                conn.Ratelimter,
	}))

	otpC := controllers.Otp{Service: otpService}
	adminC := controllers.Admin{Service: otpService}
	systemC := controllers.System{Conn: &conn}
	adminM := middleware.Admin{Env: &env}

	app.Route("/otp", func(router fiber.Router) {
		router.Post("/send", otpC.SendOTP)
		router.Post("/verify", otpC.VerifyOTP)
	})

	app.Route("/admin", func(router fiber.Router) {
		router.Use(adminM.CheckAdmin)
		router.Post("/otp/cleanup", adminC.CleanupExpiredOTP)
	})

	app.Get("/system/health", systemC.Health)

	app.Route("/monitor", func(router fiber.Router) {
		router.Get("/metrics", monitor.New(monitor.Config{
			Title: "Monitor Auth",
		}))
	})

	scheduler := cron.New()
	scheduler.AddFunc("@every 10m", func() {
		removed, err := otpService.Cleanup(context.Background())
		if err != nil {
			logger.Error(err)
			return
		}
		if removed > 0 {
			logger.Log(fmt.Sprintf("Removed %d expired passcodes", removed))
		}
	})
	scheduler.Start()
	defer scheduler.Stop()

	logger.Errorf(app.Listen(fmt.Sprintf(":%s", env.Port)))
}
