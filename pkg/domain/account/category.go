package account

import (
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/google/uuid"
)

// DefaultCategoryColor is used when a category is created implicitly.
const DefaultCategoryColor = "#6b7280"

// Category labels transactions of one kind (income or expense).
type Category struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewCategory validates and builds a category.
func NewCategory(userID uuid.UUID, name string, typ TransactionType, color string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("il nome della categoria è obbligatorio")
	}
	if !typ.Valid() {
		return nil, domain.Invalid("tipo di categoria non valido: %s", typ)
	}
	if color == "" {
		color = DefaultCategoryColor
	}
	return &Category{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Type:      typ,
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}, nil
}
