// Package store persists extraction outcomes so they can be replayed later.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/btouchard/tmplexpr/internal/extract"
)

// ErrNotFound is returned when no extraction has the requested ID.
var ErrNotFound = errors.New("extraction not found")

// Extraction is one recorded ReadExpression run.
type Extraction struct {
	ID            string    `gorm:"primaryKey" json:"id" yaml:"id"`
	File          string    `gorm:"index" json:"file" yaml:"file"`
	Template      string    `json:"-" yaml:"-"`
	Offset        int       `json:"offset" yaml:"offset"`
	Loose         bool      `json:"loose" yaml:"loose"`
	TypeScript    bool      `json:"typescript" yaml:"typescript"`
	OpeningToken  string    `json:"opening_token" yaml:"opening_token"`
	DisallowLoose bool      `json:"disallow_loose" yaml:"disallow_loose"`
	Index         int       `json:"index" yaml:"index"`
	NodeType      string    `json:"node_type,omitempty" yaml:"node_type,omitempty"`
	ErrorCode     string    `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	Fingerprint   string    `json:"-" yaml:"-"`
	CreatedAt     time.Time `json:"created_at" yaml:"created_at"`
}

// Validate checks the record is self-consistent before it is stored.
func (e *Extraction) Validate() error {
	if e.Offset < 0 || e.Offset > len(e.Template) {
		return fmt.Errorf("offset: %d is outside the template (length %d)", e.Offset, len(e.Template))
	}
	if e.Index < e.Offset || e.Index > len(e.Template) {
		return fmt.Errorf("index: %d is outside [%d, %d]", e.Index, e.Offset, len(e.Template))
	}
	if e.Fingerprint == "" {
		return errors.New("fingerprint: must not be empty")
	}
	return nil
}

// BeforeCreate is a GORM hook that assigns the ID and validates the record
func (e *Extraction) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("generate id: %w", err)
		}
		e.ID = id.String()
	}
	return e.Validate()
}

// Options returns the parse options the extraction was recorded with.
func (e *Extraction) Options() extract.Options {
	return extract.Options{
		Loose:         e.Loose,
		TypeScript:    e.TypeScript,
		OpeningToken:  e.OpeningToken,
		DisallowLoose: e.DisallowLoose,
	}
}

// NewExtraction builds a record from an outcome.
func NewExtraction(file, template string, opts extract.Options, out extract.Outcome) (*Extraction, error) {
	fingerprint, err := out.Fingerprint()
	if err != nil {
		return nil, err
	}

	e := &Extraction{
		File:          file,
		Template:      template,
		Offset:        out.Offset,
		Loose:         opts.Loose,
		TypeScript:    opts.TypeScript,
		OpeningToken:  opts.OpeningToken,
		DisallowLoose: opts.DisallowLoose,
		Index:         out.Index,
		Fingerprint:   fingerprint,
	}
	if out.Node != nil {
		e.NodeType = out.Node.Type()
	}
	if out.Err != nil {
		e.ErrorCode = out.Err.Code
	}
	return e, nil
}

type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the sqlite database at dsn and migrates it.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&Extraction{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", dsn, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Save(ctx context.Context, e *Extraction) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func (s *Store) Find(ctx context.Context, id string) (*Extraction, error) {
	var e Extraction
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// All returns every record, oldest first.
func (s *Store) All(ctx context.Context) ([]Extraction, error) {
	var all []Extraction
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// Recent returns at most limit records, newest first. A limit <= 0 means no
// limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]Extraction, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recent []Extraction
	if err := q.Find(&recent).Error; err != nil {
		return nil, err
	}
	return recent, nil
}

func (s *Store) Delete(ctx context.Context, e *Extraction) error {
	return s.db.WithContext(ctx).Delete(e).Error
}

// Verify replays every stored extraction and returns how many were checked.
// Every mismatch is reported in the returned error.
func (s *Store) Verify(ctx context.Context) (int, error) {
	all, err := s.All(ctx)
	if err != nil {
		return 0, err
	}

	var result *multierror.Error
	for _, e := range all {
		if _, err := extract.Replay(e.Template, e.Offset, e.Options(), e.Fingerprint); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s (%s): %w", e.ID, e.File, err))
		}
	}
	return len(all), result.ErrorOrNil()
}
