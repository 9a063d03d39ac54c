package controllers

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/swapit-app/swapit/app/repository"
	"github.com/swapit-app/swapit/internal/pkg/cache"
)

const unreadCountCacheTTL = 30 * time.Second

func unreadCountCacheKey(userID uint) string {
	return fmt.Sprintf("swapit:notifications:unread:%d", userID)
}

func invalidateUnreadCount(userID uint) {
	if err := cache.Delete(unreadCountCacheKey(userID)); err != nil {
		log.Printf("unread count invalidation failed for user %d: %v", userID, err)
	}
}

// HandleListNotifications lists the caller's notifications, newest first.
func HandleListNotifications(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	offset, limit := paginationParams(c)

	notifications, err := repository.GetGlobalFactory().GetNotificationRepository().GetByUserID(user.UserID, offset, limit)
	if err != nil {
		log.Printf("notification list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load notifications")
	}

	return c.JSON(fiber.Map{"notifications": notifications, "success": true})
}

// HandleUnreadCount serves the badge counter. Cached briefly per user.
func HandleUnreadCount(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	key := unreadCountCacheKey(user.UserID)
	if count, err := cache.GetInt(key); err == nil {
		return c.JSON(fiber.Map{"count": count, "success": true})
	} else if !cache.IsNil(err) {
		log.Printf("unread count cache read failed: %v", err)
	}

	count, err := repository.GetGlobalFactory().GetNotificationRepository().CountUnread(user.UserID)
	if err != nil {
		log.Printf("unread count query failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load unread count")
	}
	if err := cache.Set(key, strconv.FormatInt(count, 10), unreadCountCacheTTL); err != nil {
		log.Printf("unread count cache write failed: %v", err)
	}

	return c.JSON(fiber.Map{"count": count, "success": true})
}

// HandleMarkNotificationRead marks one of the caller's notifications as read.
func HandleMarkNotificationRead(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Invalid notification id")
	}

	notificationRepo := repository.GetGlobalFactory().GetNotificationRepository()
	notification, err := notificationRepo.GetByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Notification not found")
		}
		log.Printf("notification lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load notification")
	}
	if notification.UserID != user.UserID {
		return apiError(c, fiber.StatusForbidden, "forbidden", "Not your notification")
	}

	if err := notificationRepo.MarkRead(notification.ID); err != nil {
		log.Printf("notification mark-read failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not update notification")
	}
	invalidateUnreadCount(user.UserID)

	return c.JSON(fiber.Map{"success": true})
}
