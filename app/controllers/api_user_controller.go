package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/swapit-app/swapit/app/repository"
)

type updateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	City      *string `json:"city"`
	AvatarURL *string `json:"avatarUrl"`
}

// HandleGetProfile serves the caller's own profile with the aggregated rating.
func HandleGetProfile(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	account, err := userRepo.GetByID(user.UserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		log.Printf("profile lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load profile")
	}

	rating, reviewCount, err := userRepo.AverageRating(account.ID)
	if err != nil {
		log.Printf("rating aggregation failed for user %d: %v", account.ID, err)
	}

	unread, err := repository.GetGlobalFactory().GetNotificationRepository().CountUnread(account.ID)
	if err != nil {
		log.Printf("unread count failed for user %d: %v", account.ID, err)
	}

	return c.JSON(fiber.Map{
		"user":        account,
		"rating":      rating,
		"reviewCount": reviewCount,
		"unreadCount": unread,
		"success":     true,
	})
}

// HandleUpdateProfile applies a partial update to the caller's profile.
func HandleUpdateProfile(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	account, err := userRepo.GetByID(user.UserID)
	if err != nil {
		log.Printf("profile lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load profile")
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Bio != nil {
		account.Bio = *req.Bio
	}
	if req.City != nil {
		account.City = strings.TrimSpace(*req.City)
	}
	if req.AvatarURL != nil {
		account.AvatarURL = *req.AvatarURL
	}

	if err := account.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := userRepo.Update(account); err != nil {
		log.Printf("profile update failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not update profile")
	}

	return c.JSON(fiber.Map{"user": account, "success": true})
}

// HandleGetPublicProfile serves another user's public profile and rating.
func HandleGetPublicProfile(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil || userID < 1 {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Invalid user id")
	}

	userRepo := repository.GetGlobalFactory().GetUserRepository()
	account, err := userRepo.GetByID(uint(userID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "User not found")
		}
		log.Printf("user lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load user")
	}

	rating, reviewCount, err := userRepo.AverageRating(account.ID)
	if err != nil {
		log.Printf("rating aggregation failed for user %d: %v", account.ID, err)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         account.ID,
			"name":       account.Name,
			"bio":        account.Bio,
			"city":       account.City,
			"avatar_url": account.AvatarURL,
			"created_at": account.CreatedAt,
		},
		"rating":      rating,
		"reviewCount": reviewCount,
		"success":     true,
	})
}
