package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/swapit-app/swapit/app/controllers"
	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/internal/pkg/cache"
	"github.com/swapit-app/swapit/internal/pkg/database"
	"github.com/swapit-app/swapit/internal/pkg/env"
	"github.com/swapit-app/swapit/internal/pkg/middleware"
	"github.com/swapit-app/swapit/internal/pkg/payments"
)

type ApiRouter struct {
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Public reads resolve the caller when a token is sent, but never require one.
	public := v1.Group("", middleware.OptionalAPITokenMiddleware())
	public.Get("/items", controllers.HandleListItems)
	public.Get("/items/boosted", controllers.HandleBoostedItems)
	public.Get("/items/:uuid", controllers.HandleGetItem)
	public.Get("/users/:id", controllers.HandleGetPublicProfile)
	public.Get("/reviews", controllers.HandleListReviews)

	// Payment webhook is authenticated by its signature, not a bearer token.
	paymentService := payments.NewServiceFromDB(database.GetDB(), payments.NewStripeClientFromEnv())
	webhookSecret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")
	v1.Post("/payments/webhook", controllers.HandleStripeWebhook(paymentService, webhookSecret))

	// Everything below requires a bearer API token.
	authed := v1.Group("", middleware.APITokenAuthMiddleware())

	authed.Post("/items", controllers.HandleCreateItem)
	authed.Patch("/items/:uuid", controllers.HandleUpdateItem)
	authed.Delete("/items/:uuid", controllers.HandleDeleteItem)
	authed.Get("/user/items", controllers.HandleMyItems)

	authed.Get("/swaps", controllers.HandleListSwapRequests)
	authed.Post("/swaps", controllers.HandleCreateSwapRequest)
	authed.Get("/swaps/:id", controllers.HandleGetSwapRequest)
	authed.Post("/swaps/:id/accept", controllers.HandleSwapStatusChange(models.SwapStatusAccepted))
	authed.Post("/swaps/:id/decline", controllers.HandleSwapStatusChange(models.SwapStatusDeclined))
	authed.Post("/swaps/:id/cancel", controllers.HandleSwapStatusChange(models.SwapStatusCanceled))
	authed.Post("/swaps/:id/complete", controllers.HandleSwapStatusChange(models.SwapStatusCompleted))

	authed.Get("/swaps/:id/messages", controllers.HandleListMessages)
	authed.Post("/swaps/:id/messages", controllers.HandleSendMessage)

	authed.Post("/reviews", controllers.HandleCreateReview)

	authed.Get("/notifications", controllers.HandleListNotifications)
	authed.Get("/notifications/unread-count", controllers.HandleUnreadCount)
	authed.Post("/notifications/:id/read", controllers.HandleMarkNotificationRead)

	authed.Get("/user/profile", controllers.HandleGetProfile)
	authed.Patch("/user/profile", controllers.HandleUpdateProfile)

	authed.Post("/payments/intents", controllers.HandleCreateBoostIntent(paymentService))
}

// newLimiterStorage backs the rate limiter with the same Redis the cache uses,
// on database 1 so limiter keys never collide with cache entries.
func newLimiterStorage() *redisstorage.Storage {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := 6379
	if v, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379")); err == nil {
		port = v
	}
	password := env.GetEnv("CACHE_PASSWORD", "")
	if client := cache.GetClient(); client != nil {
		if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redisstorage.New(redisstorage.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
		Reset:    false,
	})
}
