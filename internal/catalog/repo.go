package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db"
)

// Flaggable is the model surface the catalogue layer needs on top of the
// defaults engine: flags must be settable by name so one service can toggle
// defaults on any entity kind.
type Flaggable interface {
	defaults.Defaultable
	SetDefaultFlag(name string, value bool) bool
}

// Model ties the pointer type T to its struct type M so the generic
// repository can allocate fresh records.
type Model[M any] interface {
	Flaggable
	*M
}

// Repository is the persistence layer shared by every defaultable catalogue
// entity. One instantiation per table, one implementation for all of them.
type Repository[M any, T Model[M]] struct {
	client *db.Client
	column string
}

// NewRepository binds the repository to the shared DB client. The column is
// the tenant foreign key used to constrain scoped queries.
func NewRepository[M any, T Model[M]](client *db.Client, column string) *Repository[M, T] {
	return &Repository[M, T]{client: client, column: column}
}

// FindByID loads one record by primary key.
func (r *Repository[M, T]) FindByID(ctx context.Context, id uuid.UUID) (T, error) {
	var m M
	if err := r.client.DB().WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return T(&m), nil
}

// FindByIDTx loads one record by primary key inside the given transaction,
// so deletion guards see the row state the transaction will act on.
func (r *Repository[M, T]) FindByIDTx(tx *gorm.DB, id uuid.UUID) (T, error) {
	var m M
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return T(&m), nil
}

// List returns the scope's records ordered by code.
func (r *Repository[M, T]) List(ctx context.Context, scope defaults.Scope) ([]T, error) {
	var rows []M
	q := r.client.DB().WithContext(ctx).Model(new(M))
	q = scope.Constrain(q, r.column)
	if err := q.Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i := range rows {
		out = append(out, T(&rows[i]))
	}
	return out, nil
}

// FindDefault loads the record holding the given flag within the scope.
func (r *Repository[M, T]) FindDefault(ctx context.Context, flag string, scope defaults.Scope) (T, error) {
	var m M
	q := r.client.DB().WithContext(ctx).Where(flag+" = ?", true)
	q = scope.Constrain(q, r.column)
	if err := q.First(&m).Error; err != nil {
		return nil, err
	}
	return T(&m), nil
}

// Transaction runs fn inside a database transaction.
func (r *Repository[M, T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.client.WithTx(ctx, fn)
}

// CreateTx inserts the record using the provided transaction.
func (r *Repository[M, T]) CreateTx(tx *gorm.DB, rec T) error {
	return tx.Create(rec).Error
}

// SaveTx persists all fields of the record using the provided transaction.
func (r *Repository[M, T]) SaveTx(tx *gorm.DB, rec T) error {
	return tx.Save(rec).Error
}

// DeleteTx removes the record using the provided transaction.
func (r *Repository[M, T]) DeleteTx(tx *gorm.DB, rec T) error {
	return tx.Delete(rec).Error
}
