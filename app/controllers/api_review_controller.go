package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/app/repository"
)

type createReviewRequest struct {
	SwapRequestID uint   `json:"swapRequestId"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
}

// HandleCreateReview records feedback for a completed swap. Each participant
// may review once; the counterpart of the swap is the reviewee.
func HandleCreateReview(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}
	if req.SwapRequestID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "swapRequestId is required")
	}

	factory := repository.GetGlobalFactory()
	swap, err := factory.GetSwapRequestRepository().GetByID(req.SwapRequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Swap request not found")
		}
		log.Printf("swap request lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load swap request")
	}
	if swap.OwnerID != user.UserID && swap.RequesterID != user.UserID {
		return apiError(c, fiber.StatusForbidden, "forbidden", "You are not part of this swap request")
	}
	if swap.Status != models.SwapStatusCompleted {
		return apiError(c, fiber.StatusConflict, "swap_not_completed", "Reviews are only possible after completion")
	}

	exists, err := factory.GetReviewRepository().ExistsForSwapAndReviewer(swap.ID, user.UserID)
	if err != nil {
		log.Printf("review existence check failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not create review")
	}
	if exists {
		return apiError(c, fiber.StatusConflict, "already_reviewed", "You already reviewed this swap")
	}

	revieweeID := swap.OwnerID
	if user.UserID == swap.OwnerID {
		revieweeID = swap.RequesterID
	}

	review := &models.Review{
		SwapRequestID: swap.ID,
		ReviewerID:    user.UserID,
		RevieweeID:    revieweeID,
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
	}
	if err := review.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	if err := factory.GetReviewRepository().Create(review); err != nil {
		log.Printf("review create failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not create review")
	}

	err = factory.GetNotificationRepository().Create(&models.Notification{
		UserID:      revieweeID,
		Type:        models.NotificationTypeReview,
		Content:     "You received a new review.",
		ReferenceID: review.ID,
	})
	if err != nil {
		log.Printf("review notification failed for user %d: %v", revieweeID, err)
	}
	invalidateUnreadCount(revieweeID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review, "success": true})
}

// HandleListReviews lists reviews received by ?userId, or by the caller when
// the parameter is absent.
func HandleListReviews(c *fiber.Ctx) error {
	userID := c.QueryInt("userId", 0)
	if userID == 0 {
		user, ok := requireUser(c)
		if !ok {
			return nil
		}
		userID = int(user.UserID)
	}
	offset, limit := paginationParams(c)

	reviews, err := repository.GetGlobalFactory().GetReviewRepository().GetByRevieweeID(uint(userID), offset, limit)
	if err != nil {
		log.Printf("review list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load reviews")
	}

	return c.JSON(fiber.Map{"reviews": reviews, "success": true})
}
