package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/db"
	"github.com/mercatura/catalog-backend/pkg/enums"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
	"github.com/mercatura/catalog-backend/pkg/logger"
	"github.com/mercatura/catalog-backend/pkg/metrics"
)

// Violation kinds reported to the metrics layer.
const (
	violationMutexFlags    = "mutually_exclusive_defaults"
	violationDuplicateCode = "duplicate_code"
	violationDefaultDelete = "default_record_delete"
	violationDefaultRace   = "concurrent_default_write"
	violationInUseDelete   = "referenced_record_delete"
)

// ReferenceCounter reports how many rows elsewhere still point at the
// record, typically products or prices keeping a foreign key to it.
type ReferenceCounter func(ctx context.Context, id uuid.UUID) (int64, error)

type enforcer interface {
	Apply(ctx context.Context, tx *gorm.DB, rec defaults.Defaultable) ([]defaults.Cleared, error)
}

type entityRepository[M any, T Model[M]] interface {
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (T, error)
	List(ctx context.Context, scope defaults.Scope) ([]T, error)
	FindDefault(ctx context.Context, flag string, scope defaults.Scope) (T, error)
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	CreateTx(tx *gorm.DB, rec T) error
	SaveTx(tx *gorm.DB, rec T) error
	DeleteTx(tx *gorm.DB, rec T) error
}

// Notifier receives the records whose default designation was cleared by a
// committed write. Implemented by the notifications service.
type Notifier interface {
	RecordDefaultCleared(ctx context.Context, cleared []defaults.Cleared)
}

// Config assembles one catalogue entity service. Everything the service
// needs is passed here explicitly; nothing is read from ambient state.
type Config[M any, T Model[M]] struct {
	Kind     enums.CatalogEntity
	Repo     entityRepository[M, T]
	Policy   enforcer
	Resolver defaults.Resolver

	// UniqueCodeConstraint is the storage index behind the per-scope code
	// uniqueness of this entity, used to translate rejections.
	UniqueCodeConstraint string

	// Mutex names two flags that may never both be true, nil when the
	// entity carries a single flag.
	Mutex *defaults.FlagPair

	// References, when set, guards Delete: a record still counted by it
	// is rejected with a conflict instead of orphaning its dependents.
	References ReferenceCounter

	Cache    *defaults.Cache
	Notifier Notifier
	Metrics  *metrics.DefaultsMetrics
	Logger   *logger.Logger
}

// Service is the one CRUD implementation behind all defaultable catalogue
// entities. Instantiated once per entity kind with its own repository.
type Service[M any, T Model[M]] struct {
	cfg Config[M, T]
}

// NewService validates the wiring and returns the entity service.
func NewService[M any, T Model[M]](cfg Config[M, T]) (*Service[M, T], error) {
	if !cfg.Kind.IsValid() {
		return nil, fmt.Errorf("catalog service: unknown entity kind %q", cfg.Kind)
	}
	if cfg.Repo == nil {
		return nil, fmt.Errorf("catalog service: repository required")
	}
	if cfg.Policy == nil {
		return nil, fmt.Errorf("catalog service: defaults policy required")
	}
	return &Service[M, T]{cfg: cfg}, nil
}

// Kind returns the entity kind the service was built for.
func (s *Service[M, T]) Kind() enums.CatalogEntity {
	return s.cfg.Kind
}

// Create validates and persists a new record. Competing defaults in the
// record's scope are cleared in the same transaction, so the insert either
// lands with the invariant intact or not at all.
func (s *Service[M, T]) Create(ctx context.Context, rec T) (T, error) {
	if err := s.validateFlags(rec); err != nil {
		return nil, err
	}
	if _, err := s.persist(ctx, rec, func(tx *gorm.DB) error {
		return s.cfg.Repo.CreateTx(tx, rec)
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update persists changes to an existing record under the same invariant
// guarantees as Create.
func (s *Service[M, T]) Update(ctx context.Context, rec T) (T, error) {
	if rec.GetID() == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "record id is required")
	}
	if err := s.validateFlags(rec); err != nil {
		return nil, err
	}
	if _, err := s.cfg.Repo.FindByID(ctx, rec.GetID()); err != nil {
		return nil, s.translateLoadErr(err)
	}
	if _, err := s.persist(ctx, rec, func(tx *gorm.DB) error {
		return s.cfg.Repo.SaveTx(tx, rec)
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// SetDefault toggles one default flag on an existing record. Turning a flag
// on demotes the scope's previous holder; turning it off leaves the scope
// without a default, which is a legal state.
func (s *Service[M, T]) SetDefault(ctx context.Context, id uuid.UUID, flag string, value bool) (T, error) {
	rec, err := s.cfg.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLoadErr(err)
	}
	if !rec.SetDefaultFlag(flag, value) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s has no default flag %q", s.cfg.Kind, flag))
	}
	if err := s.validateFlags(rec); err != nil {
		return nil, err
	}
	if _, err := s.persist(ctx, rec, func(tx *gorm.DB) error {
		return s.cfg.Repo.SaveTx(tx, rec)
	}); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a record. Records holding any default designation are
// protected, as are records other rows still reference: callers must
// reassign the default or detach the dependents first. The flag check is
// repeated on a fresh read inside the delete transaction so a concurrent
// promotion cannot slip a default past it.
func (s *Service[M, T]) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.cfg.Repo.FindByID(ctx, id)
	if err != nil {
		return s.translateLoadErr(err)
	}
	if err := s.guardDelete(rec); err != nil {
		return err
	}
	if s.cfg.References != nil {
		count, err := s.cfg.References(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("count %s references", s.cfg.Kind))
		}
		if count > 0 {
			s.cfg.Metrics.IncViolation(violationInUseDelete)
			return pkgerrors.NewConstraintViolation(
				fmt.Sprintf("%s is still referenced by %d record(s) and cannot be deleted", s.cfg.Kind, count),
				pkgerrors.ConstraintViolation{
					TenantID: rec.TenantScopeID(),
					Reason:   "detach or delete the referencing records first",
				},
			)
		}
	}
	txErr := s.cfg.Repo.Transaction(ctx, func(tx *gorm.DB) error {
		current, err := s.cfg.Repo.FindByIDTx(tx, id)
		if err != nil {
			return err
		}
		if err := s.guardDelete(current); err != nil {
			return err
		}
		return s.cfg.Repo.DeleteTx(tx, current)
	})
	if txErr != nil {
		if typed := pkgerrors.As(txErr); typed != nil {
			return txErr
		}
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return s.translateLoadErr(txErr)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, fmt.Sprintf("delete %s", s.cfg.Kind))
	}
	return nil
}

func (s *Service[M, T]) guardDelete(rec T) error {
	if defaults.CanDelete(rec) {
		return nil
	}
	s.cfg.Metrics.IncViolation(violationDefaultDelete)
	return pkgerrors.NewConstraintViolation(
		fmt.Sprintf("%s is the current default and cannot be deleted", s.cfg.Kind),
		pkgerrors.ConstraintViolation{
			TenantID: rec.TenantScopeID(),
			Reason:   "reassign the default before deleting this record",
		},
	)
}

// GetByID loads one record.
func (s *Service[M, T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	rec, err := s.cfg.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLoadErr(err)
	}
	return rec, nil
}

// List returns the records visible in the tenant's scope.
func (s *Service[M, T]) List(ctx context.Context, tenantID *uuid.UUID) ([]T, error) {
	scope := s.cfg.Resolver.Resolve(tenantID)
	recs, err := s.cfg.Repo.List(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("list %s", s.cfg.Kind))
	}
	return recs, nil
}

// GetDefault resolves the record currently holding the flag in the
// tenant's scope. Cached lookups fall back to the database on any miss.
// The flag is caller input and must name one of the entity's own default
// columns before it may appear in a query.
func (s *Service[M, T]) GetDefault(ctx context.Context, flag string, tenantID *uuid.UUID) (T, error) {
	var probe M
	if _, known := T(&probe).DefaultFlags()[flag]; !known {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s has no default flag %q", s.cfg.Kind, flag))
	}
	table := T(&probe).TableName()

	scope := s.cfg.Resolver.Resolve(tenantID)

	if id, ok := s.cfg.Cache.GetDefaultID(ctx, table, flag, scope); ok {
		if rec, err := s.cfg.Repo.FindByID(ctx, id); err == nil && rec.DefaultFlags()[flag] {
			return rec, nil
		}
		s.cfg.Cache.Invalidate(ctx, table, scope, flag)
	}

	rec, err := s.cfg.Repo.FindDefault(ctx, flag, scope)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound,
				fmt.Sprintf("no default %s configured for this scope", s.cfg.Kind))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("resolve default %s", s.cfg.Kind))
	}
	s.cfg.Cache.StoreDefaultID(ctx, table, flag, scope, rec.GetID())
	return rec, nil
}

func (s *Service[M, T]) validateFlags(rec T) error {
	if s.cfg.Mutex == nil {
		return nil
	}
	err := s.cfg.Mutex.Validate(defaults.FlagState{
		TenantID: rec.TenantScopeID(),
		Values:   rec.DefaultFlags(),
	})
	if err != nil {
		s.cfg.Metrics.IncViolation(violationMutexFlags)
	}
	return err
}

func (s *Service[M, T]) persist(ctx context.Context, rec T, write func(tx *gorm.DB) error) ([]defaults.Cleared, error) {
	var cleared []defaults.Cleared
	err := s.cfg.Repo.Transaction(ctx, func(tx *gorm.DB) error {
		var applyErr error
		cleared, applyErr = s.cfg.Policy.Apply(ctx, tx, rec)
		if applyErr != nil {
			return applyErr
		}
		return write(tx)
	})
	if err != nil {
		return nil, s.translateWriteErr(ctx, rec, err)
	}
	s.afterWrite(ctx, rec, cleared)
	return cleared, nil
}

func (s *Service[M, T]) translateWriteErr(ctx context.Context, rec T, err error) error {
	if s.cfg.UniqueCodeConstraint != "" && db.IsUniqueViolation(err, s.cfg.UniqueCodeConstraint) {
		s.cfg.Metrics.IncViolation(violationDuplicateCode)
		return pkgerrors.NewConstraintViolation(
			fmt.Sprintf("%s code is already in use within this scope", s.cfg.Kind),
			pkgerrors.ConstraintViolation{
				Fields:   []string{"code"},
				TenantID: rec.TenantScopeID(),
				Reason:   "codes are unique per tenant",
			},
		)
	}
	// The partial unique backstop indexes fire when two writers race for
	// the same default slot. The loser retries against consistent state.
	if db.IsUniqueViolation(err, "") {
		s.cfg.Metrics.IncViolation(violationDefaultRace)
		return pkgerrors.NewConstraintViolation(
			fmt.Sprintf("concurrent default change on %s, retry the request", s.cfg.Kind),
			pkgerrors.ConstraintViolation{TenantID: rec.TenantScopeID(), Reason: "lost a concurrent default update"},
		)
	}
	if s.cfg.Logger != nil {
		s.cfg.Logger.Error(ctx, fmt.Sprintf("persisting %s failed", s.cfg.Kind), err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("persist %s", s.cfg.Kind))
}

func (s *Service[M, T]) afterWrite(ctx context.Context, rec T, cleared []defaults.Cleared) {
	scope := s.cfg.Resolver.Resolve(rec.TenantScopeID())
	flags := make([]string, 0, len(rec.DefaultFlags()))
	for flag := range rec.DefaultFlags() {
		flags = append(flags, flag)
	}
	s.cfg.Cache.Invalidate(ctx, rec.TableName(), scope, flags...)

	for _, c := range cleared {
		s.cfg.Metrics.IncReassigned(s.cfg.Kind.String(), c.Flag)
	}
	if len(cleared) > 0 {
		if s.cfg.Notifier != nil {
			s.cfg.Notifier.RecordDefaultCleared(ctx, cleared)
		}
		if s.cfg.Logger != nil {
			lctx := s.cfg.Logger.WithEntity(ctx, rec.TableName(), rec.GetID().String())
			s.cfg.Logger.Info(lctx, fmt.Sprintf("default reassigned, %d record(s) demoted", len(cleared)))
		}
	}
}

func (s *Service[M, T]) translateLoadErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", s.cfg.Kind))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("load %s", s.cfg.Kind))
}
