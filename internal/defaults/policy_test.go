package defaults

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mercatura/catalog-backend/pkg/config"
)

// listRow mirrors the shape of a defaultable catalogue table.
type listRow struct {
	ID                uuid.UUID  `gorm:"column:id;primaryKey"`
	TenantID          *uuid.UUID `gorm:"column:tenant_id"`
	IsDefault         bool       `gorm:"column:is_default"`
	IsDefaultPurchase bool       `gorm:"column:is_default_purchase"`
}

func (listRow) TableName() string { return "list_rows" }

func (r *listRow) GetID() uuid.UUID          { return r.ID }
func (r *listRow) TenantScopeID() *uuid.UUID { return r.TenantID }

func (r *listRow) DefaultFlags() map[string]bool {
	return map[string]bool{
		"is_default":          r.IsDefault,
		"is_default_purchase": r.IsDefaultPurchase,
	}
}

func openEngineDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := conn.AutoMigrate(&listRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func mustCreateRow(t *testing.T, conn *gorm.DB, tenantID *uuid.UUID, def, defPurchase bool) *listRow {
	t.Helper()
	row := &listRow{
		ID:                uuid.New(),
		TenantID:          tenantID,
		IsDefault:         def,
		IsDefaultPurchase: defPurchase,
	}
	if err := conn.Create(row).Error; err != nil {
		t.Fatalf("create row: %v", err)
	}
	return row
}

func reload(t *testing.T, conn *gorm.DB, id uuid.UUID) *listRow {
	t.Helper()
	var row listRow
	if err := conn.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload row %s: %v", id, err)
	}
	return &row
}

func tenantPolicy() *Policy {
	return NewPolicy(NewResolver(config.TenancyConfig{Enabled: true, TenantForeignKey: "tenant_id"}))
}

func TestApplyClearsCompetingDefaultInScope(t *testing.T) {
	conn := openEngineDB(t)
	tenant := uuid.New()

	previous := mustCreateRow(t, conn, &tenant, true, false)
	candidate := mustCreateRow(t, conn, &tenant, false, false)
	candidate.IsDefault = true

	cleared, err := tenantPolicy().Apply(context.Background(), conn, candidate)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := conn.Save(candidate).Error; err != nil {
		t.Fatalf("save candidate: %v", err)
	}

	if len(cleared) != 1 || cleared[0].RecordID != previous.ID {
		t.Fatalf("expected previous default cleared, got %+v", cleared)
	}
	if cleared[0].Flag != "is_default" || cleared[0].Table != "list_rows" {
		t.Fatalf("cleared entry mislabeled: %+v", cleared[0])
	}
	if reload(t, conn, previous.ID).IsDefault {
		t.Fatal("previous default still set")
	}
	if !reload(t, conn, candidate.ID).IsDefault {
		t.Fatal("candidate default not persisted")
	}

	var count int64
	conn.Model(&listRow{}).Where("is_default = ? AND tenant_id = ?", true, tenant).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one default in scope, got %d", count)
	}
}

func TestApplyIsSelfIdempotent(t *testing.T) {
	conn := openEngineDB(t)
	tenant := uuid.New()

	current := mustCreateRow(t, conn, &tenant, true, false)
	other := mustCreateRow(t, conn, &tenant, false, false)

	cleared, err := tenantPolicy().Apply(context.Background(), conn, current)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cleared) != 0 {
		t.Fatalf("re-saving the default must not clear anything, got %+v", cleared)
	}
	if !reload(t, conn, current.ID).IsDefault {
		t.Fatal("current default lost")
	}
	if reload(t, conn, other.ID).IsDefault {
		t.Fatal("unrelated record gained default")
	}
}

func TestApplyLeavesOtherTenantsAlone(t *testing.T) {
	conn := openEngineDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()

	otherTenants := mustCreateRow(t, conn, &tenantB, true, false)
	unassigned := mustCreateRow(t, conn, nil, true, false)
	candidate := mustCreateRow(t, conn, &tenantA, false, false)
	candidate.IsDefault = true

	cleared, err := tenantPolicy().Apply(context.Background(), conn, candidate)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cleared) != 0 {
		t.Fatalf("no record in tenant A held the default, got %+v", cleared)
	}
	if !reload(t, conn, otherTenants.ID).IsDefault {
		t.Fatal("tenant B default must survive")
	}
	if !reload(t, conn, unassigned.ID).IsDefault {
		t.Fatal("nil-tenant default must survive")
	}
}

func TestApplyNilTenantPartitionIsItsOwnScope(t *testing.T) {
	conn := openEngineDB(t)
	tenant := uuid.New()

	unassignedDefault := mustCreateRow(t, conn, nil, true, false)
	tenantDefault := mustCreateRow(t, conn, &tenant, true, false)
	candidate := mustCreateRow(t, conn, nil, false, false)
	candidate.IsDefault = true

	cleared, err := tenantPolicy().Apply(context.Background(), conn, candidate)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cleared) != 1 || cleared[0].RecordID != unassignedDefault.ID {
		t.Fatalf("expected only the nil-tenant default cleared, got %+v", cleared)
	}
	if !reload(t, conn, tenantDefault.ID).IsDefault {
		t.Fatal("tenant default must survive a nil-partition change")
	}
}

func TestApplyGlobalScopeWhenTenancyDisabled(t *testing.T) {
	conn := openEngineDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()

	a := mustCreateRow(t, conn, &tenantA, true, false)
	b := mustCreateRow(t, conn, &tenantB, true, false)
	candidate := mustCreateRow(t, conn, nil, false, false)
	candidate.IsDefault = true

	policy := NewPolicy(NewResolver(config.TenancyConfig{Enabled: false}))
	cleared, err := policy.Apply(context.Background(), conn, candidate)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cleared) != 2 {
		t.Fatalf("tenancy off means one shared scope; expected both cleared, got %+v", cleared)
	}
	if reload(t, conn, a.ID).IsDefault || reload(t, conn, b.ID).IsDefault {
		t.Fatal("previous defaults survived in global scope")
	}
}

func TestApplyHandlesBothFlagsIndependently(t *testing.T) {
	conn := openEngineDB(t)
	tenant := uuid.New()

	selling := mustCreateRow(t, conn, &tenant, true, false)
	purchase := mustCreateRow(t, conn, &tenant, false, true)
	candidate := mustCreateRow(t, conn, &tenant, false, false)
	candidate.IsDefaultPurchase = true

	cleared, err := tenantPolicy().Apply(context.Background(), conn, candidate)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(cleared) != 1 || cleared[0].RecordID != purchase.ID || cleared[0].Flag != "is_default_purchase" {
		t.Fatalf("expected only the purchase default cleared, got %+v", cleared)
	}
	if !reload(t, conn, selling.ID).IsDefault {
		t.Fatal("selling default must be untouched by a purchase takeover")
	}
}

func TestCanDelete(t *testing.T) {
	tenant := uuid.New()

	if CanDelete(&listRow{ID: uuid.New(), TenantID: &tenant, IsDefault: true}) {
		t.Fatal("selling default must not be deletable")
	}
	if CanDelete(&listRow{ID: uuid.New(), TenantID: &tenant, IsDefaultPurchase: true}) {
		t.Fatal("purchase default must not be deletable")
	}
	if !CanDelete(&listRow{ID: uuid.New(), TenantID: &tenant}) {
		t.Fatal("non-default record must be deletable")
	}
}
