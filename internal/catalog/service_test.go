package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatura/catalog-backend/internal/defaults"
	"github.com/mercatura/catalog-backend/pkg/config"
	"github.com/mercatura/catalog-backend/pkg/db/models"
	"github.com/mercatura/catalog-backend/pkg/enums"
	pkgerrors "github.com/mercatura/catalog-backend/pkg/errors"
)

type fakePriceListRepo struct {
	byID map[uuid.UUID]*models.PriceList

	txErr     error
	createErr error

	created *models.PriceList
	saved   *models.PriceList
	deleted *models.PriceList

	defaultRec     *models.PriceList
	defaultQueried []string

	// txRec, when set, is what transactional reloads observe instead of
	// byID, simulating a concurrent writer between load and transaction.
	txRec *models.PriceList
}

func newFakePriceListRepo() *fakePriceListRepo {
	return &fakePriceListRepo{byID: map[uuid.UUID]*models.PriceList{}}
}

func (f *fakePriceListRepo) FindByID(_ context.Context, id uuid.UUID) (*models.PriceList, error) {
	rec, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *rec
	return &cpy, nil
}

func (f *fakePriceListRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*models.PriceList, error) {
	if f.txRec != nil && f.txRec.ID == id {
		cpy := *f.txRec
		return &cpy, nil
	}
	return f.FindByID(context.Background(), id)
}

func (f *fakePriceListRepo) List(_ context.Context, _ defaults.Scope) ([]*models.PriceList, error) {
	out := make([]*models.PriceList, 0, len(f.byID))
	for _, rec := range f.byID {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakePriceListRepo) FindDefault(_ context.Context, flag string, _ defaults.Scope) (*models.PriceList, error) {
	f.defaultQueried = append(f.defaultQueried, flag)
	if f.defaultRec != nil && f.defaultRec.DefaultFlags()[flag] {
		cpy := *f.defaultRec
		return &cpy, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePriceListRepo) Transaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if f.txErr != nil {
		return f.txErr
	}
	return fn(nil)
}

func (f *fakePriceListRepo) CreateTx(_ *gorm.DB, rec *models.PriceList) error {
	if f.createErr != nil {
		return f.createErr
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	f.created = rec
	f.byID[rec.ID] = rec
	return nil
}

func (f *fakePriceListRepo) SaveTx(_ *gorm.DB, rec *models.PriceList) error {
	f.saved = rec
	f.byID[rec.ID] = rec
	return nil
}

func (f *fakePriceListRepo) DeleteTx(_ *gorm.DB, rec *models.PriceList) error {
	f.deleted = rec
	delete(f.byID, rec.ID)
	return nil
}

type fakeEnforcer struct {
	cleared []defaults.Cleared
	err     error
	applied []defaults.Defaultable
}

func (f *fakeEnforcer) Apply(_ context.Context, _ *gorm.DB, rec defaults.Defaultable) ([]defaults.Cleared, error) {
	f.applied = append(f.applied, rec)
	return f.cleared, f.err
}

type fakeNotifier struct {
	recorded [][]defaults.Cleared
}

func (f *fakeNotifier) RecordDefaultCleared(_ context.Context, cleared []defaults.Cleared) {
	f.recorded = append(f.recorded, cleared)
}

var priceListMutex = defaults.FlagPair{A: models.FlagDefault, B: models.FlagDefaultPurchase}

func newPriceListService(t *testing.T, repo *fakePriceListRepo, policy *fakeEnforcer, notifier *fakeNotifier) *Service[models.PriceList, *models.PriceList] {
	t.Helper()
	svc, err := NewService(Config[models.PriceList, *models.PriceList]{
		Kind:                 enums.CatalogEntityPriceList,
		Repo:                 repo,
		Policy:               policy,
		Resolver:             defaults.NewResolver(config.TenancyConfig{Enabled: true, TenantForeignKey: "tenant_id"}),
		UniqueCodeConstraint: "uq_price_lists_code",
		Mutex:                &priceListMutex,
		Notifier:             notifier,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewServiceRejectsBadWiring(t *testing.T) {
	_, err := NewService(Config[models.PriceList, *models.PriceList]{
		Kind: enums.CatalogEntity("unknown"),
		Repo: newFakePriceListRepo(),
	})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}

	_, err = NewService(Config[models.PriceList, *models.PriceList]{
		Kind: enums.CatalogEntityPriceList,
	})
	if err == nil {
		t.Fatal("expected error without repository")
	}
}

func TestCreateRejectsMutuallyExclusiveFlags(t *testing.T) {
	repo := newFakePriceListRepo()
	policy := &fakeEnforcer{}
	svc := newPriceListService(t, repo, policy, nil)
	tenant := uuid.New()

	_, err := svc.Create(context.Background(), &models.PriceList{
		TenantID:          &tenant,
		Code:              "retail",
		Name:              "Retail",
		IsDefault:         true,
		IsDefaultPurchase: true,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.created != nil {
		t.Fatal("nothing may be persisted after a flag violation")
	}
	if len(policy.applied) != 0 {
		t.Fatal("policy must not run for invalid records")
	}
}

func TestCreateAppliesPolicyAndNotifies(t *testing.T) {
	tenant := uuid.New()
	demoted := uuid.New()
	repo := newFakePriceListRepo()
	policy := &fakeEnforcer{cleared: []defaults.Cleared{{
		Table:    "price_lists",
		Flag:     models.FlagDefault,
		RecordID: demoted,
		TenantID: &tenant,
	}}}
	notifier := &fakeNotifier{}
	svc := newPriceListService(t, repo, policy, notifier)

	rec, err := svc.Create(context.Background(), &models.PriceList{
		TenantID:  &tenant,
		Code:      "retail",
		Name:      "Retail",
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if repo.created == nil || repo.created.ID != rec.ID {
		t.Fatal("record not persisted")
	}
	if len(policy.applied) != 1 {
		t.Fatalf("policy applied %d times, want 1", len(policy.applied))
	}
	if len(notifier.recorded) != 1 || notifier.recorded[0][0].RecordID != demoted {
		t.Fatalf("notifier not told about the demotion: %+v", notifier.recorded)
	}
}

func TestCreateTranslatesDuplicateCode(t *testing.T) {
	tenant := uuid.New()
	repo := newFakePriceListRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "uq_price_lists_code"`)
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	_, err := svc.Create(context.Background(), &models.PriceList{TenantID: &tenant, Code: "retail", Name: "Retail"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	violation, ok := pkgerrors.Violation(err)
	if !ok || len(violation.Fields) != 1 || violation.Fields[0] != "code" {
		t.Fatalf("violation must name the code field, got %+v", violation)
	}
}

func TestUpdateUnknownRecord(t *testing.T) {
	svc := newPriceListService(t, newFakePriceListRepo(), &fakeEnforcer{}, nil)

	_, err := svc.Update(context.Background(), &models.PriceList{ID: uuid.New(), Code: "x", Name: "X"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetDefaultTogglesFlag(t *testing.T) {
	tenant := uuid.New()
	existing := &models.PriceList{ID: uuid.New(), TenantID: &tenant, Code: "retail", Name: "Retail"}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing
	policy := &fakeEnforcer{}
	svc := newPriceListService(t, repo, policy, nil)

	rec, err := svc.SetDefault(context.Background(), existing.ID, models.FlagDefault, true)
	if err != nil {
		t.Fatalf("set default: %v", err)
	}
	if !rec.IsDefault {
		t.Fatal("flag not set on returned record")
	}
	if repo.saved == nil || !repo.saved.IsDefault {
		t.Fatal("flag not persisted")
	}
	if len(policy.applied) != 1 {
		t.Fatal("policy must run for the takeover")
	}
}

func TestSetDefaultUnknownFlag(t *testing.T) {
	existing := &models.PriceList{ID: uuid.New(), Code: "retail", Name: "Retail"}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	_, err := svc.SetDefault(context.Background(), existing.ID, "is_primary", true)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteProtectsDefaults(t *testing.T) {
	tenant := uuid.New()
	existing := &models.PriceList{ID: uuid.New(), TenantID: &tenant, Code: "retail", Name: "Retail", IsDefaultPurchase: true}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	err := svc.Delete(context.Background(), existing.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.deleted != nil {
		t.Fatal("default record must not be deleted")
	}
}

func TestDeleteNonDefault(t *testing.T) {
	existing := &models.PriceList{ID: uuid.New(), Code: "retail", Name: "Retail"}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	if err := svc.Delete(context.Background(), existing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deleted == nil || repo.deleted.ID != existing.ID {
		t.Fatal("record not deleted")
	}
}

func TestDeleteRejectsReferencedRecord(t *testing.T) {
	existing := &models.PriceList{ID: uuid.New(), Code: "retail", Name: "Retail"}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing
	svc, err := NewService(Config[models.PriceList, *models.PriceList]{
		Kind:     enums.CatalogEntityPriceList,
		Repo:     repo,
		Policy:   &fakeEnforcer{},
		Resolver: defaults.NewResolver(config.TenancyConfig{Enabled: true, TenantForeignKey: "tenant_id"}),
		Mutex:    &priceListMutex,
		References: func(_ context.Context, _ uuid.UUID) (int64, error) {
			return 3, nil
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.Delete(context.Background(), existing.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for referenced record, got %v", err)
	}
	if repo.deleted != nil {
		t.Fatal("referenced record must not be deleted")
	}
}

func TestDeleteRechecksFlagInTransaction(t *testing.T) {
	tenant := uuid.New()
	existing := &models.PriceList{ID: uuid.New(), TenantID: &tenant, Code: "retail", Name: "Retail"}
	repo := newFakePriceListRepo()
	repo.byID[existing.ID] = existing

	// Between the initial load and the delete transaction another writer
	// promotes the record to default.
	promoted := *existing
	promoted.IsDefault = true
	repo.txRec = &promoted

	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	err := svc.Delete(context.Background(), existing.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for freshly promoted default, got %v", err)
	}
	if repo.deleted != nil {
		t.Fatal("freshly promoted default must not be deleted")
	}
}

func TestGetDefaultRejectsUnknownFlag(t *testing.T) {
	tenant := uuid.New()
	repo := newFakePriceListRepo()
	repo.defaultRec = &models.PriceList{ID: uuid.New(), TenantID: &tenant, Code: "retail", Name: "Retail", IsDefault: true}
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	for _, flag := range []string{"is_primary", "1=1 OR is_default", `is_default" --`} {
		_, err := svc.GetDefault(context.Background(), flag, &tenant)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("flag %q: expected validation error, got %v", flag, err)
		}
	}
	if len(repo.defaultQueried) != 0 {
		t.Fatalf("unknown flags reached the repository: %v", repo.defaultQueried)
	}
}

func TestGetDefaultResolvesAndMisses(t *testing.T) {
	tenant := uuid.New()
	repo := newFakePriceListRepo()
	svc := newPriceListService(t, repo, &fakeEnforcer{}, nil)

	_, err := svc.GetDefault(context.Background(), models.FlagDefault, &tenant)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found with no default configured, got %v", err)
	}

	repo.defaultRec = &models.PriceList{ID: uuid.New(), TenantID: &tenant, Code: "retail", Name: "Retail", IsDefault: true}
	rec, err := svc.GetDefault(context.Background(), models.FlagDefault, &tenant)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if rec.ID != repo.defaultRec.ID {
		t.Fatalf("wrong default resolved: %s", rec.ID)
	}
}
