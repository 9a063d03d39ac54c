package controllers

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/app/repository"
)

type createSwapRequest struct {
	ItemID        uint   `json:"itemId"`
	OfferedItemID *uint  `json:"offeredItemId"`
	Message       string `json:"message"`
}

// HandleCreateSwapRequest opens a swap request against someone else's item.
func HandleCreateSwapRequest(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req createSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}
	if req.ItemID == 0 {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "itemId is required")
	}

	factory := repository.GetGlobalFactory()
	item, err := factory.GetItemRepository().GetByID(req.ItemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Item not found")
		}
		log.Printf("item lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load item")
	}
	if item.UserID == user.UserID {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "You cannot request your own item")
	}
	if item.Status != models.ItemStatusAvailable {
		return apiError(c, fiber.StatusConflict, "item_unavailable", "Item is no longer available")
	}
	if req.OfferedItemID != nil {
		offered, err := factory.GetItemRepository().GetByID(*req.OfferedItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return apiError(c, fiber.StatusBadRequest, "invalid_request", "Offered item not found")
			}
			log.Printf("offered item lookup failed: %v", err)
			return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load offered item")
		}
		if offered.UserID != user.UserID {
			return apiError(c, fiber.StatusForbidden, "forbidden", "You do not own the offered item")
		}
	}

	swap := &models.SwapRequest{
		ItemID:        item.ID,
		OfferedItemID: req.OfferedItemID,
		RequesterID:   user.UserID,
		OwnerID:       item.UserID,
		Status:        models.SwapStatusPending,
		Message:       strings.TrimSpace(req.Message),
	}
	if err := factory.GetSwapRequestRepository().Create(swap); err != nil {
		log.Printf("swap request create failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not create swap request")
	}

	notifySwap(item.UserID, fmt.Sprintf("%s wants to swap for \"%s\".", user.Username, item.Title), swap.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"swapRequest": swap, "success": true})
}

// HandleListSwapRequests lists swaps where the caller is owner or requester.
func HandleListSwapRequests(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	offset, limit := paginationParams(c)

	swaps, err := repository.GetGlobalFactory().GetSwapRequestRepository().GetByUserID(user.UserID, offset, limit)
	if err != nil {
		log.Printf("swap request list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load swap requests")
	}

	return c.JSON(fiber.Map{"swapRequests": swaps, "success": true})
}

// HandleGetSwapRequest serves a single swap request to its participants.
func HandleGetSwapRequest(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	swap, errResp := loadSwapForParticipant(c, user.UserID)
	if swap == nil {
		return errResp
	}
	return c.JSON(fiber.Map{"swapRequest": swap, "success": true})
}

// HandleSwapStatusChange drives the swap lifecycle: the owner accepts or
// declines, the requester cancels, either side completes an accepted swap.
func HandleSwapStatusChange(targetStatus string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := requireUser(c)
		if !ok {
			return nil
		}
		swap, errResp := loadSwapForParticipant(c, user.UserID)
		if swap == nil {
			return errResp
		}

		switch targetStatus {
		case models.SwapStatusAccepted, models.SwapStatusDeclined:
			if swap.OwnerID != user.UserID {
				return apiError(c, fiber.StatusForbidden, "forbidden", "Only the item owner can respond")
			}
		case models.SwapStatusCanceled:
			if swap.RequesterID != user.UserID {
				return apiError(c, fiber.StatusForbidden, "forbidden", "Only the requester can cancel")
			}
		}

		if !swap.CanTransition(targetStatus) {
			return apiError(c, fiber.StatusConflict, "invalid_transition",
				fmt.Sprintf("Cannot move swap request from %s to %s", swap.Status, targetStatus))
		}

		factory := repository.GetGlobalFactory()
		if err := factory.GetSwapRequestRepository().UpdateStatus(swap, targetStatus); err != nil {
			log.Printf("swap status update failed: %v", err)
			return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not update swap request")
		}

		switch targetStatus {
		case models.SwapStatusAccepted:
			if err := factory.GetItemRepository().UpdateStatus(swap.ItemID, models.ItemStatusReserved); err != nil {
				log.Printf("item reserve failed for swap %d: %v", swap.ID, err)
			}
			notifySwap(swap.RequesterID, "Your swap request was accepted.", swap.ID)
		case models.SwapStatusDeclined:
			notifySwap(swap.RequesterID, "Your swap request was declined.", swap.ID)
		case models.SwapStatusCanceled:
			notifySwap(swap.OwnerID, "A swap request for your item was withdrawn.", swap.ID)
		case models.SwapStatusCompleted:
			finalStatus := models.ItemStatusSwapped
			if item, err := factory.GetItemRepository().GetByID(swap.ItemID); err == nil && item.GiveAway {
				finalStatus = models.ItemStatusGivenAway
			}
			if err := factory.GetItemRepository().UpdateStatus(swap.ItemID, finalStatus); err != nil {
				log.Printf("item close-out failed for swap %d: %v", swap.ID, err)
			}
			declineRemainingRequests(swap.ItemID, swap.ID)
			other := swap.OwnerID
			if user.UserID == swap.OwnerID {
				other = swap.RequesterID
			}
			notifySwap(other, "Your swap was marked as completed. You can now leave a review.", swap.ID)
		}

		return c.JSON(fiber.Map{"swapRequest": swap, "success": true})
	}
}

func loadSwapForParticipant(c *fiber.Ctx, userID uint) (*models.SwapRequest, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return nil, apiError(c, fiber.StatusBadRequest, "invalid_request", "Invalid swap request id")
	}

	swap, err := repository.GetGlobalFactory().GetSwapRequestRepository().GetByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError(c, fiber.StatusNotFound, "not_found", "Swap request not found")
		}
		log.Printf("swap request lookup failed: %v", err)
		return nil, apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load swap request")
	}
	if swap.OwnerID != userID && swap.RequesterID != userID {
		return nil, apiError(c, fiber.StatusForbidden, "forbidden", "You are not part of this swap request")
	}
	return swap, nil
}

// declineRemainingRequests closes out pending requests for an item that just
// left the market through another swap.
func declineRemainingRequests(itemID, completedSwapID uint) {
	factory := repository.GetGlobalFactory()
	pending, err := factory.GetSwapRequestRepository().GetPendingForItem(itemID)
	if err != nil {
		log.Printf("pending request lookup failed for item %d: %v", itemID, err)
		return
	}
	for i := range pending {
		req := &pending[i]
		if req.ID == completedSwapID {
			continue
		}
		if err := factory.GetSwapRequestRepository().UpdateStatus(req, models.SwapStatusDeclined); err != nil {
			log.Printf("auto-decline failed for swap %d: %v", req.ID, err)
			continue
		}
		notifySwap(req.RequesterID, "The item you requested was swapped with someone else.", req.ID)
	}
}

func notifySwap(userID uint, content string, swapRequestID uint) {
	err := repository.GetGlobalFactory().GetNotificationRepository().Create(&models.Notification{
		UserID:      userID,
		Type:        models.NotificationTypeSwap,
		Content:     content,
		ReferenceID: swapRequestID,
	})
	if err != nil {
		log.Printf("swap notification failed for user %d: %v", userID, err)
	}
	invalidateUnreadCount(userID)
}
