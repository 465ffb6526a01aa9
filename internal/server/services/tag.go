package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipevault/internal/validation"
)

// TagService exposes the ownership-scoped tag operations: list the caller's
// tags and create new ones owned by the caller.
type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTagService(db *sql.DB, m repomanager.RepositoryManager) *TagService {
	return &TagService{db: db, repomanager: m}
}

// List returns the caller's tags, name descending.
func (s *TagService) List(ctx context.Context, userID string) ([]*models.Tag, error) {
	result, err := s.repomanager.Tags(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return result, nil
}

// Create stores a new tag. The owner is always the caller; there is no way to
// create a tag on another user's behalf.
func (s *TagService) Create(ctx context.Context, userID, name string) (*models.Tag, error) {
	ve := common.NewValidationError()
	validation.Required(ve, "name", name)
	validation.MaxLen(ve, "name", name, validation.MaxNameLength)
	if !ve.Empty() {
		return nil, ve
	}

	tag := &models.Tag{UserID: userID, Name: name}
	created, err := s.repomanager.Tags(s.db).Create(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return created, nil
}
