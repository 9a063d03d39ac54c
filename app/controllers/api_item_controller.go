package controllers

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/swapit-app/swapit/app/models"
	"github.com/swapit-app/swapit/app/repository"
	"github.com/swapit-app/swapit/internal/pkg/cache"
	"github.com/swapit-app/swapit/internal/pkg/metrics/counter"
	"github.com/swapit-app/swapit/internal/pkg/usercontext"
)

const boostedFeedCacheKey = "swapit:items:boosted"
const boostedFeedCacheTTL = 60 * time.Second

type createItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	City        string `json:"city"`
	ImageURL    string `json:"imageUrl"`
	GiveAway    bool   `json:"giveAway"`
}

type updateItemRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Condition   *string `json:"condition"`
	City        *string `json:"city"`
	ImageURL    *string `json:"imageUrl"`
	GiveAway    *bool   `json:"giveAway"`
	Status      *string `json:"status"`
}

// HandleListItems serves the public item feed with optional filters.
func HandleListItems(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	filter := repository.ItemFilter{
		Category: strings.TrimSpace(c.Query("category")),
		Status:   strings.TrimSpace(c.Query("status")),
		City:     strings.TrimSpace(c.Query("city")),
		Query:    strings.TrimSpace(c.Query("q")),
		Sort:     strings.TrimSpace(c.Query("sort")),
		Offset:   offset,
		Limit:    limit,
	}
	// Anonymous browsing only sees available items.
	if filter.Status == "" || !usercontext.IsLoggedIn(c) {
		filter.Status = models.ItemStatusAvailable
	}

	itemRepo := repository.GetGlobalFactory().GetItemRepository()
	items, err := itemRepo.List(filter)
	if err != nil {
		log.Printf("item list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load items")
	}
	total, err := itemRepo.Count(filter)
	if err != nil {
		log.Printf("item count failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load items")
	}

	return c.JSON(fiber.Map{
		"items":   items,
		"total":   total,
		"success": true,
	})
}

// HandleBoostedItems serves the boosted item strip shown on top of the feed.
// The result is cached briefly; expired boosts age out of the query itself.
func HandleBoostedItems(c *fiber.Ctx) error {
	if cached, err := cache.Get(boostedFeedCacheKey); err == nil {
		c.Set("Content-Type", "application/json")
		return c.SendString(cached)
	} else if !cache.IsNil(err) {
		log.Printf("boosted feed cache read failed: %v", err)
	}

	items, err := repository.GetGlobalFactory().GetItemRepository().GetBoosted(12)
	if err != nil {
		log.Printf("boosted item query failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load boosted items")
	}

	payload, err := json.Marshal(fiber.Map{"items": items, "success": true})
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load boosted items")
	}
	if err := cache.Set(boostedFeedCacheKey, string(payload), boostedFeedCacheTTL); err != nil {
		log.Printf("boosted feed cache write failed: %v", err)
	}

	c.Set("Content-Type", "application/json")
	return c.Send(payload)
}

// HandleGetItem serves one item by uuid and counts the view.
func HandleGetItem(c *fiber.Ctx) error {
	itemUUID := c.Params("uuid")
	itemRepo := repository.GetGlobalFactory().GetItemRepository()
	item, err := itemRepo.GetByUUID(itemUUID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Item not found")
		}
		log.Printf("item lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load item")
	}

	// Owners refreshing their own listing are not views.
	if usercontext.GetUserID(c) != item.UserID {
		recordItemView(itemRepo, item.ID, counter.AddItemView)
	}

	return c.JSON(fiber.Map{"item": item, "success": true})
}

// recordItemView counts a view through the Redis counter and falls back to a
// direct database increment when the counter is unavailable, so views are not
// lost during a cache outage.
func recordItemView(itemRepo repository.ItemRepository, itemID uint, bump func(uint) error) {
	err := bump(itemID)
	if err == nil {
		return
	}
	log.Printf("view counter unavailable for item %d, writing through: %v", itemID, err)
	if err := itemRepo.IncrementViewCount(itemID); err != nil {
		log.Printf("view count write-through failed for item %d: %v", itemID, err)
	}
}

// HandleCreateItem creates a new listing for the authenticated user.
func HandleCreateItem(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	var req createItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}

	item := &models.Item{
		UserID:      user.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		Condition:   req.Condition,
		City:        strings.TrimSpace(req.City),
		ImageURL:    req.ImageURL,
		GiveAway:    req.GiveAway,
		Status:      models.ItemStatusAvailable,
	}
	if err := item.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}

	if err := repository.GetGlobalFactory().GetItemRepository().Create(item); err != nil {
		log.Printf("item create failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not create item")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"item": item, "success": true})
}

// HandleUpdateItem applies a partial update to an item owned by the caller.
func HandleUpdateItem(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	itemRepo := repository.GetGlobalFactory().GetItemRepository()
	item, err := itemRepo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Item not found")
		}
		log.Printf("item lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load item")
	}
	if item.UserID != user.UserID && !user.IsAdmin {
		return apiError(c, fiber.StatusForbidden, "forbidden", "You do not own this item")
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", "Malformed JSON body")
	}

	if req.Title != nil {
		item.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.City != nil {
		item.City = strings.TrimSpace(*req.City)
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.GiveAway != nil {
		item.GiveAway = *req.GiveAway
	}
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := item.Validate(); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := itemRepo.Update(item); err != nil {
		log.Printf("item update failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not update item")
	}

	return c.JSON(fiber.Map{"item": item, "success": true})
}

// HandleDeleteItem soft-deletes an item owned by the caller.
func HandleDeleteItem(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}

	itemRepo := repository.GetGlobalFactory().GetItemRepository()
	item, err := itemRepo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apiError(c, fiber.StatusNotFound, "not_found", "Item not found")
		}
		log.Printf("item lookup failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load item")
	}
	if item.UserID != user.UserID && !user.IsAdmin {
		return apiError(c, fiber.StatusForbidden, "forbidden", "You do not own this item")
	}

	if err := itemRepo.Delete(item.ID); err != nil {
		log.Printf("item delete failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not delete item")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleMyItems lists the caller's own items regardless of status.
func HandleMyItems(c *fiber.Ctx) error {
	user, ok := requireUser(c)
	if !ok {
		return nil
	}
	offset, limit := paginationParams(c)

	items, err := repository.GetGlobalFactory().GetItemRepository().GetByUserID(user.UserID, offset, limit)
	if err != nil {
		log.Printf("own item list failed: %v", err)
		return apiError(c, fiber.StatusInternalServerError, "internal_server_error", "Could not load items")
	}

	return c.JSON(fiber.Map{"items": items, "success": true})
}
