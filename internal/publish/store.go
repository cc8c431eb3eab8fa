package publish

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound is returned when no publication matches the lookup.
var ErrNotFound = errors.New("publication not found")

// Publication is one published document and its build metadata.
type Publication struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	ProjectName string    `json:"projectName"`
	TemplateID  string    `json:"templateId"`
	Technology  string    `json:"technology"`
	HTML        string    `json:"-"`
	Metadata    string    `json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store persists publications in a local SQLite database.
type Store struct {
	db *gorm.DB
}

// OpenStore opens (and migrates) the publication database at path.
func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open publication db: %w", err)
	}
	return NewStore(db)
}

// NewStore wraps an existing gorm handle and runs migrations.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Publication{}); err != nil {
		return nil, fmt.Errorf("failed to migrate publications table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save inserts or updates a publication by primary key.
func (s *Store) Save(p *Publication) error {
	if err := s.db.Save(p).Error; err != nil {
		return fmt.Errorf("failed to save publication %s: %w", p.ID, err)
	}
	return nil
}

// GetBySlug returns the publication behind a public viewer slug.
func (s *Store) GetBySlug(slug string) (*Publication, error) {
	var p Publication
	err := s.db.Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: slug %s", ErrNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publication %s: %w", slug, err)
	}
	return &p, nil
}

// GetByID returns a publication by record id.
func (s *Store) GetByID(id string) (*Publication, error) {
	var p Publication
	err := s.db.First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load publication %s: %w", id, err)
	}
	return &p, nil
}

// List returns publications newest first. HTML bodies are omitted to
// keep listings light.
func (s *Store) List(limit, offset int) ([]Publication, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []Publication
	err := s.db.
		Select("id", "slug", "project_name", "template_id", "technology", "metadata", "created_at", "updated_at").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	return out, nil
}

// Delete removes a publication by id.
func (s *Store) Delete(id string) error {
	res := s.db.Delete(&Publication{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete publication %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}
