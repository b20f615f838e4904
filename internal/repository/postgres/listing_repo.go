package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/query"
	"gorm.io/gorm"
)

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *listingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Reviews").
		Preload("Reviews.Author").
		First(&listing, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *listingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Listing{}, "id = ?", id).Error
}

func (r *listingRepository) Search(ctx context.Context, q query.Query) ([]*domain.Listing, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Listing{}).Preload("Owner")

	for _, f := range q.Filters {
		sql, args := compileFilter(f)
		if sql == "" {
			continue
		}
		tx = tx.Where(sql, args...)
	}

	tx = tx.Order(orderClause(q.Sort))

	var listings []*domain.Listing
	if err := tx.Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// compileFilter lowers a filter node to a SQL fragment. Substring matches
// use LOWER(col) LIKE rather than ILIKE so the same clause runs on both
// postgres and sqlite.
func compileFilter(f query.Filter) (string, []interface{}) {
	switch f := f.(type) {
	case query.Substring:
		parts := make([]string, 0, len(f.Fields))
		args := make([]interface{}, 0, len(f.Fields))
		pattern := "%" + strings.ToLower(f.Term) + "%"
		for _, field := range f.Fields {
			parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE ?", field))
			args = append(args, pattern)
		}
		return "(" + strings.Join(parts, " OR ") + ")", args

	case query.Or:
		parts := make([]string, 0, len(f.Filters))
		var args []interface{}
		for _, child := range f.Filters {
			sql, childArgs := compileFilter(child)
			if sql == "" {
				continue
			}
			parts = append(parts, sql)
			args = append(args, childArgs...)
		}
		if len(parts) == 0 {
			return "", nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", args

	case query.PriceRange:
		var parts []string
		var args []interface{}
		if f.Min != nil {
			parts = append(parts, "price >= ?")
			args = append(args, *f.Min)
		}
		if f.Max != nil {
			parts = append(parts, "price <= ?")
			args = append(args, *f.Max)
		}
		if len(parts) == 0 {
			return "", nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", args
	}
	return "", nil
}

// orderClause whitelists sortable columns; the sort field comes from the
// query package's fixed set, never from user input directly.
func orderClause(s query.Sort) string {
	field := s.Field
	switch field {
	case query.FieldPrice, query.FieldCreatedAt, query.FieldTitle:
	default:
		field = query.FieldTitle
	}
	if s.Desc {
		return field + " DESC"
	}
	return field + " ASC"
}

func (r *listingRepository) Suggest(ctx context.Context, field, term string, limit int) ([]string, error) {
	switch field {
	case query.FieldTitle, query.FieldLocation:
	default:
		field = query.FieldTitle
	}

	var values []string
	err := r.db.WithContext(ctx).
		Model(&domain.Listing{}).
		Distinct(field).
		Where(fmt.Sprintf("LOWER(%s) LIKE ?", field), "%"+strings.ToLower(term)+"%").
		Order(field + " ASC").
		Limit(limit).
		Pluck(field, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}
