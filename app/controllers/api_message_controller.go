package controllers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/app/repository"
)

type sendMessageRequest struct {
	Content string `json:"content"`
}

const maxMessageLength = 4000

// HandleListMessages serves the chat thread of one swap request and marks the
// other side's messages as read for the caller.
func HandleListMessages(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	swap, errResp := loadSwapForParticipant(c, user.UserID)
	if swap == nil {
		return errResp
	}
	offset, limit := paginationParams(c)

	messageRepo := repository.GetGlobalFactory().GetMessageRepository()
	messages, err := messageRepo.GetBySwapRequestID(swap.ID, offset, limit)
	if err != nil {
		log.Printf("message list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load messages")
	}

	if err := messageRepo.MarkThreadRead(swap.ID, user.UserID); err != nil {
		log.Printf("thread mark-read failed for swap %d: %v", swap.ID, err)
	}

	return c.JSON(fiber.Map{"messages": messages, "success": true})
}

// HandleSendMessage appends a chat message to a swap request thread.
func HandleSendMessage(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	swap, errResp := loadSwapForParticipant(c, user.UserID)
	if swap == nil {
		return errResp
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "content is required")
	}
	if len(content) > maxMessageLength {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "content is too long")
	}

	message := &models.Message{
		SwapRequestID: swap.ID,
		SenderID:      user.UserID,
		Content:       content,
	}
	if err := repository.GetGlobalFactory().GetMessageRepository().Create(message); err != nil {
		log.Printf("message create failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not send message")
	}

	recipient := swap.OwnerID
	if user.UserID == swap.OwnerID {
		recipient = swap.RequesterID
	}
	err := repository.GetGlobalFactory().GetNotificationRepository().Create(&models.Notification{
		UserID:      recipient,
		Type:        models.NotificationTypeMessage,
		Content:     "New message in one of your swaps.",
		ReferenceID: swap.ID,
	})
	if err != nil {
		log.Printf("message notification failed for user %d: %v", recipient, err)
	}
	invalidateUnreadCount(recipient)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message, "success": true})
}
