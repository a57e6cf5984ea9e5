// Package user executes parsed filters against the users table.
package user

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	domuser "github.com/kailas-cloud/usersearch/internal/domain/user"
)

// letterCount is the name length with spaces removed.
const letterCount = "LENGTH(REPLACE(full_name, ' ', ''))"

// sortExpr whitelists the ORDER BY expression per sort field.
var sortExpr = map[query.SortField]string{
	query.SortNameLength:     letterCount,
	query.SortUsernameLength: "LENGTH(username)",
	query.SortName:           "full_name",
	query.SortUsername:       "username",
	query.SortCreatedAt:      "created_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repo is the query executor over gorm.
type Repo struct {
	db *gorm.DB
}

// New creates a user repository.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Migrate creates or updates the users table.
func (r *Repo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Model{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	return nil
}

// Apply returns one page of users matching f and the total match count.
// Predicates are conjunctive; the count ignores skip and limit.
func (r *Repo) Apply(ctx context.Context, f query.Filters, skip, limit int) ([]domuser.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&Model{}).Scopes(where(f)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if total == 0 || skip >= int(total) {
		return []domuser.Record{}, total, nil
	}

	var rows []Model
	err := r.db.WithContext(ctx).
		Scopes(where(f), orderBy(f)).
		Offset(skip).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}

	out := make([]domuser.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, total, nil
}

// CreateBatch inserts records, filling in generated ids and timestamps.
func (r *Repo) CreateBatch(ctx context.Context, records []domuser.Record) ([]domuser.Record, error) {
	if len(records) == 0 {
		return records, nil
	}
	rows := make([]Model, len(records))
	for i, rec := range records {
		rows[i] = fromDomain(rec)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(&rows, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	out := make([]domuser.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of users.
func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Model{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func where(f query.Filters) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if g, ok := f.Gender(); ok {
			tx = tx.Where("gender = ?", string(g))
		}
		if name, ok := f.NameSubstr(); ok {
			tx = tx.Where(`LOWER(full_name) LIKE LOWER(?) ESCAPE '\'`, namePattern(name, f.StartsWith()))
		}
		if p, ok := f.Parity(); ok {
			rem := 0
			if p == query.ParityOdd {
				rem = 1
			}
			tx = tx.Where(letterCount+" % 2 = ?", rem)
		}
		if has, ok := f.HasProfilePic(); ok {
			if has {
				tx = tx.Where("profile_pic IS NOT NULL AND profile_pic <> ''")
			} else {
				tx = tx.Where("(profile_pic IS NULL OR profile_pic = '')")
			}
		}
		return tx
	}
}

func orderBy(f query.Filters) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if by, ok := f.SortBy(); ok {
			dir := "DESC"
			if f.SortOrder() == query.Asc {
				dir = "ASC"
			}
			tx = tx.Order(sortExpr[by] + " " + dir)
		}
		return tx.Order("id ASC")
	}
}

// namePattern builds a LIKE pattern: "X%" for prefix, "%X%" for substring.
func namePattern(name string, prefix bool) string {
	esc := likeEscaper.Replace(name)
	if prefix {
		return esc + "%"
	}
	return "%" + esc + "%"
}
