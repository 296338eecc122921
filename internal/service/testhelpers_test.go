package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"otka-backend/internal/model"
	"otka-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated file-backed sqlite database. A throwaway file
// rather than :memory: lets concurrent transactions queue on the write lock
// through busy_timeout instead of failing on shared-cache table locks.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000", filepath.Join(t.TempDir(), "test.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.TaxRate{},
		&model.CompanySettings{},
		&model.Category{},
		&model.Brand{},
		&model.Product{},
		&model.Partner{},
		&model.Order{},
		&model.OrderItem{},
		&model.Proforma{},
		&model.ProformaItem{},
		&model.AuditLog{},
	))

	return db
}

func mustParse(t *testing.T, id string) uuid.UUID {
	t.Helper()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	return parsed
}

// --- Test doubles for the proforma collaborators ---

type stubRenderer struct {
	calls int
	fail  bool
}

func (r *stubRenderer) Render(p *model.Proforma, s *model.CompanySettings) ([]byte, error) {
	r.calls++
	if r.fail {
		return nil, fmt.Errorf("render blew up")
	}
	return []byte("%PDF-1.7 " + p.FullNumber), nil
}

type stubMailer struct {
	sent []MailMessage
	fail bool
}

func (m *stubMailer) Send(ctx context.Context, msg MailMessage) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

type stubBroadcaster struct {
	events []string
}

func (b *stubBroadcaster) BroadcastEvent(event string, payload interface{}) {
	b.events = append(b.events, event)
}

// proformaFixture bundles the full dependency graph backed by one test DB.
type proformaFixture struct {
	db       *gorm.DB
	service  ProformaService
	taxRates repository.TaxRateRepository
	settings repository.SettingsRepository
	renderer *stubRenderer
	mailer   *stubMailer
	events   *stubBroadcaster
}

func newProformaFixture(t *testing.T) *proformaFixture {
	t.Helper()

	db := newTestDB(t)
	renderer := &stubRenderer{}
	mailer := &stubMailer{}
	events := &stubBroadcaster{}

	taxRates := repository.NewTaxRateRepository(db)
	settings := repository.NewSettingsRepository(db)

	svc := NewProformaService(
		repository.NewProformaRepository(db),
		taxRates,
		settings,
		repository.NewProductRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		renderer,
		mailer,
		events,
	)

	return &proformaFixture{
		db:       db,
		service:  svc,
		taxRates: taxRates,
		settings: settings,
		renderer: renderer,
		mailer:   mailer,
		events:   events,
	}
}

// seedDefaultRate inserts an active default VAT rate and returns it.
func (f *proformaFixture) seedDefaultRate(t *testing.T, rate string) *model.TaxRate {
	t.Helper()
	tr := &model.TaxRate{
		Name:      "TVA " + rate + "%",
		Rate:      d(rate),
		Active:    true,
		IsDefault: true,
	}
	require.NoError(t, f.taxRates.Create(context.Background(), tr))
	return tr
}
