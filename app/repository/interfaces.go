package repository

import (
	"github.com/swapit-app/swapit/app/models"
	"gorm.io/gorm"
)

// ItemFilter narrows item listings. Zero values mean "no filter".
type ItemFilter struct {
	Category string
	Status   string
	City     string
	Query    string
	Sort     string // newest | boosted
	Offset   int
	Limit    int
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPITokenHash(hash string) (*models.User, error)
	Update(user *models.User) error
	TouchTokenUsage(id uint) error
	AverageRating(userID uint) (float64, int64, error)
}

// ItemRepository defines the interface for item-related database operations
type ItemRepository interface {
	Create(item *models.Item) error
	GetByID(id uint) (*models.Item, error)
	GetByUUID(uuid string) (*models.Item, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Item, error)
	Update(item *models.Item) error
	Delete(id uint) error
	List(filter ItemFilter) ([]models.Item, error)
	Count(filter ItemFilter) (int64, error)
	GetBoosted(limit int) ([]models.Item, error)
	UpdateStatus(id uint, status string) error
	IncrementViewCount(id uint) error
}

// SwapRequestRepository defines the interface for swap request operations
type SwapRequestRepository interface {
	Create(req *models.SwapRequest) error
	GetByID(id uint) (*models.SwapRequest, error)
	GetByUserID(userID uint, offset, limit int) ([]models.SwapRequest, error)
	GetPendingForItem(itemID uint) ([]models.SwapRequest, error)
	UpdateStatus(req *models.SwapRequest, status string) error
}

// ReviewRepository defines the interface for review operations
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByRevieweeID(revieweeID uint, offset, limit int) ([]models.Review, error)
	ExistsForSwapAndReviewer(swapRequestID, reviewerID uint) (bool, error)
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	Create(notification *models.Notification) error
	GetByUserID(userID uint, offset, limit int) ([]models.Notification, error)
	GetByID(id uint) (*models.Notification, error)
	MarkRead(id uint) error
	CountUnread(userID uint) (int64, error)
}

// MessageRepository defines the interface for chat message operations
type MessageRepository interface {
	Create(message *models.Message) error
	GetBySwapRequestID(swapRequestID uint, offset, limit int) ([]models.Message, error)
	MarkThreadRead(swapRequestID, readerID uint) error
	CountUnreadForUser(userID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User         UserRepository
	Item         ItemRepository
	SwapRequest  SwapRequestRepository
	Review       ReviewRepository
	Notification NotificationRepository
	Message      MessageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Item:         NewItemRepository(db),
		SwapRequest:  NewSwapRequestRepository(db),
		Review:       NewReviewRepository(db),
		Notification: NewNotificationRepository(db),
		Message:      NewMessageRepository(db),
	}
}
