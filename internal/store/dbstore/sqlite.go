package dbstore

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/yiblet/pix/internal/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const legacyPageIndex = "idx_query_page"

// SQLiteStore is a SQLite-backed implementation of store.Store
type SQLiteStore struct {
	db     *gorm.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite-backed store at the specified path.
// It initializes the database schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Prefetch writes pages from several goroutines; SQLite allows one writer.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Enable foreign key constraints in SQLite
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run auto-migration for all models
	if err := db.AutoMigrate(&PageModel{}, &ImageModel{}, &QueryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Older databases keyed pages on (query, page) alone
	if migrator := db.Migrator(); migrator.HasIndex(&PageModel{}, legacyPageIndex) {
		if err := migrator.DropIndex(&PageModel{}, legacyPageIndex); err != nil {
			return nil, fmt.Errorf("failed to drop legacy page index: %w", err)
		}
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Pages returns the page cache
func (s *SQLiteStore) Pages() store.PageStore {
	return &sqlitePageStore{db: s.db}
}

// History returns the query history
func (s *SQLiteStore) History() store.HistoryStore {
	return &sqliteHistoryStore{db: s.db}
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// sqlitePageStore implements store.PageStore
type sqlitePageStore struct {
	db *gorm.DB
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

// Get loads a page together with its images
func (s *sqlitePageStore) Get(params, query string, page int) (*store.CachedPage, error) {
	var model PageModel
	err := s.db.
		Preload("Images", orderedImages).
		Where("params = ? AND query = ? AND page = ?", params, query, page).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("page %q/%d: %w", query, page, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return model.ToCachedPage(), nil
}

// Put replaces the cached entry for (params, query, page)
func (s *sqlitePageStore) Put(page *store.CachedPage) error {
	fetchedAt := page.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		// 1. Drop any previous copy of this page
		var existing []uint
		if err := tx.Model(&PageModel{}).
			Where("params = ? AND query = ? AND page = ?", page.Params, page.Query, page.Page).
			Pluck("id", &existing).Error; err != nil {
			return fmt.Errorf("failed to look up page: %w", err)
		}
		if err := deletePages(tx, existing); err != nil {
			return err
		}

		// 2. Create the page record
		model := &PageModel{
			Params:    page.Params,
			Query:     page.Query,
			Page:      page.Page,
			TotalHits: page.TotalHits,
			FetchedAt: fetchedAt,
		}
		if err := tx.Omit("Images").Create(model).Error; err != nil {
			return fmt.Errorf("failed to create page: %w", err)
		}

		// 3. Store images in arrival order
		if len(page.Images) == 0 {
			return nil
		}
		images := make([]ImageModel, len(page.Images))
		for i, img := range page.Images {
			images[i] = newImageModel(model.ID, i, img)
		}
		if err := tx.Create(&images).Error; err != nil {
			return fmt.Errorf("failed to create images: %w", err)
		}

		page.ID = model.ID
		page.FetchedAt = fetchedAt
		return nil
	})
}

// DeleteOlderThan removes pages fetched before cutoff
func (s *sqlitePageStore) DeleteOlderThan(cutoff time.Time) (int, error) {
	var ids []uint
	if err := s.db.Model(&PageModel{}).
		Where("fetched_at < ?", cutoff).
		Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to find expired pages: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return deletePages(tx, ids)
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Count returns the number of cached pages
func (s *sqlitePageStore) Count() (int, error) {
	var count int64
	if err := s.db.Model(&PageModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return int(count), nil
}

// Clear removes every cached page and image
func (s *sqlitePageStore) Clear() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&ImageModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear images: %w", err)
		}
		if err := global.Delete(&PageModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear pages: %w", err)
		}
		return nil
	})
}

// deletePages removes pages by ID. Images are deleted explicitly so the
// result does not depend on the connection's foreign key setting.
func deletePages(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("page_id IN ?", ids).Delete(&ImageModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete images: %w", err)
	}
	if err := tx.Delete(&PageModel{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete pages: %w", err)
	}
	return nil
}

// sqliteHistoryStore implements store.HistoryStore
type sqliteHistoryStore struct {
	db *gorm.DB
}

// Record inserts query or bumps its existing row
func (s *sqliteHistoryStore) Record(query string, at time.Time) (*store.QueryRecord, error) {
	var model QueryModel

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("query = ?", query).First(&model).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			model = QueryModel{Query: query, SearchedAt: at, SearchCount: 1}
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("failed to create query record: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up query: %w", err)
		}

		model.SearchedAt = at
		model.SearchCount++
		if err := tx.Save(&model).Error; err != nil {
			return fmt.Errorf("failed to update query record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return model.ToQueryRecord(), nil
}

// List returns records ordered by last submission (newest first)
func (s *sqliteHistoryStore) List(limit int) ([]*store.QueryRecord, error) {
	var models []*QueryModel

	query := s.db.Order("searched_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	records := make([]*store.QueryRecord, len(models))
	for i, model := range models {
		records[i] = model.ToQueryRecord()
	}
	return records, nil
}

// Delete removes a record by ID
func (s *sqliteHistoryStore) Delete(id uint) error {
	result := s.db.Delete(&QueryModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete query: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("query %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// DeleteOldest removes the N least recently submitted records
func (s *sqliteHistoryStore) DeleteOldest(count int) error {
	if count <= 0 {
		return nil
	}

	var ids []uint
	err := s.db.Model(&QueryModel{}).
		Order("searched_at ASC, id ASC").
		Limit(count).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to find oldest queries: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	if err := s.db.Delete(&QueryModel{}, ids).Error; err != nil {
		return fmt.Errorf("failed to delete queries: %w", err)
	}
	return nil
}

// Count returns the number of records
func (s *sqliteHistoryStore) Count() (int, error) {
	var count int64
	if err := s.db.Model(&QueryModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count queries: %w", err)
	}
	return int(count), nil
}

// Clear removes all records
func (s *sqliteHistoryStore) Clear() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&QueryModel{}).Error; err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Search matches the pattern against recorded queries, newest first
func (s *sqliteHistoryStore) Search(query *store.SearchQuery) ([]*store.QueryRecord, error) {
	if query.Pattern == "" {
		return []*store.QueryRecord{}, nil
	}

	re, err := compilePattern(query)
	if err != nil {
		return nil, err
	}

	all, err := s.List(0)
	if err != nil {
		return nil, err
	}

	results := []*store.QueryRecord{}
	for _, rec := range all {
		if !re.MatchString(rec.Query) {
			continue
		}
		results = append(results, rec)
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

func compilePattern(query *store.SearchQuery) (*regexp.Regexp, error) {
	pattern := query.Pattern
	if !query.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex pattern: %w", err)
	}
	return re, nil
}
