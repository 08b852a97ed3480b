package repository

import (
	"context"

	"notesboard/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

// FindByOwner returns the owner's collection in insertion order.
func (d *DefaultNoteRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*entity.Note, error) {
	notes := []*entity.Note{}
	err := d.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

func (d *DefaultNoteRepository) Append(ctx context.Context, note *entity.Note) error {
	return d.db.WithContext(ctx).Create(note).Error
}

// DeleteOwned removes the note only when it belongs to 'ownerID'.
// The returned flag is false when nothing matched.
func (d *DefaultNoteRepository) DeleteOwned(ctx context.Context, ownerID int64, noteID string) (bool, error) {
	result := d.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", noteID, ownerID).
		Delete(&entity.Note{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
