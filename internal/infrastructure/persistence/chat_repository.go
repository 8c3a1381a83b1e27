package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormChatRepository implements chat.Repository using GORM
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GormChatRepository
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Create inserts a message
func (r *GormChatRepository) Create(ctx context.Context, m *chat.Message) error {
	var model models.ChatMessageModel
	model.FromDomain(m)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindRecentDuplicate returns the newest identical message created at or after since
func (r *GormChatRepository) FindRecentDuplicate(ctx context.Context, senderID, receiverID uuid.UUID, body string, since time.Time) (*chat.Message, error) {
	var model models.ChatMessageModel
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND body = ? AND created_at >= ?",
			senderID, receiverID, chat.NormalizeBody(body), since).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "Message")
	}
	return model.ToDomain(), nil
}

// FindForUser lists the user's messages in an apartment, oldest first
func (r *GormChatRepository) FindForUser(ctx context.Context, userID uuid.UUID, apartmentName string) ([]*chat.Message, error) {
	return r.find(r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Where(lowerEq("apartment_name"), strings.TrimSpace(apartmentName)))
}

// FindBetween lists the messages exchanged by a and b, oldest first
func (r *GormChatRepository) FindBetween(ctx context.Context, a, b uuid.UUID) ([]*chat.Message, error) {
	return r.find(r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a))
}

func (r *GormChatRepository) find(query *gorm.DB) ([]*chat.Message, error) {
	var rows []models.ChatMessageModel
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*chat.Message, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

var _ chat.Repository = (*GormChatRepository)(nil)
