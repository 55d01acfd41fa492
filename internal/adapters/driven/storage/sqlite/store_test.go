package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "invoices.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

// createTestSeller inserts a seller and returns it with its ID set.
func createTestSeller(t *testing.T, store *Store, taxCode, name string) *domain.Seller {
	t.Helper()
	seller := &domain.Seller{TaxCode: taxCode, Name: name}
	require.NoError(t, store.SellerStore().Save(context.Background(), seller))
	require.NotZero(t, seller.ID)
	return seller
}

// createTestProvider inserts a tax provider and returns it with its ID set.
func createTestProvider(t *testing.T, store *Store, name string) *domain.TaxProvider {
	t.Helper()
	provider := &domain.TaxProvider{Name: name, Status: domain.StatusResolved}
	require.NoError(t, store.TaxProviderStore().Save(context.Background(), provider))
	require.NotZero(t, provider.ID)
	return provider
}

func testInvoice(key domain.InvoiceKey, sellerID int64) *domain.Invoice {
	return &domain.Invoice{
		Key:      key,
		IssuedAt: time.Date(2023, time.March, 15, 10, 30, 0, 0, time.UTC),
		SellerID: sellerID,
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path/invoices.db")
	assert.Error(t, err)
}

func TestNewStore_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "invoices.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "invoices.db")

	store, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening must not re-apply migrations.
	store, err = NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	var version int
	err = store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

// ==================== Seller Store Tests ====================

func TestSellerStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	got, err := store.SellerStore().GetByTaxCode(ctx, "0312345678")
	require.NoError(t, err)
	assert.Equal(t, seller.ID, got.ID)
	assert.Equal(t, "Cong Ty ABC", got.Name)
}

func TestSellerStore_GetByTaxCode_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.SellerStore().GetByTaxCode(context.Background(), "9999999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSellerStore_Save_UpdatesNameKeepsID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	seller := createTestSeller(t, store, "0312345678", "Old Name")

	renamed := &domain.Seller{TaxCode: "0312345678", Name: "New Name"}
	require.NoError(t, store.SellerStore().Save(ctx, renamed))
	assert.Equal(t, seller.ID, renamed.ID)

	got, err := store.SellerStore().GetByTaxCode(ctx, "0312345678")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	sellers, err := store.SellerStore().List(ctx)
	require.NoError(t, err)
	assert.Len(t, sellers, 1)
}

func TestSellerStore_List_OrderedByTaxCode(t *testing.T) {
	store := setupTestStore(t)

	createTestSeller(t, store, "0400000000", "B")
	createTestSeller(t, store, "0100000000", "A")
	createTestSeller(t, store, "0300000000", "C")

	sellers, err := store.SellerStore().List(context.Background())
	require.NoError(t, err)
	require.Len(t, sellers, 3)
	assert.Equal(t, "0100000000", sellers[0].TaxCode)
	assert.Equal(t, "0300000000", sellers[1].TaxCode)
	assert.Equal(t, "0400000000", sellers[2].TaxCode)
}

// ==================== Tax Provider Store Tests ====================

func TestTaxProviderStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	provider := &domain.TaxProvider{
		Name:      "VIETTEL",
		Status:    domain.StatusResolved,
		SearchURL: "https://sinvoice.viettel.vn/tra-cuu-hoa-don",
	}
	require.NoError(t, store.TaxProviderStore().Save(ctx, provider))
	require.NotZero(t, provider.ID)

	got, err := store.TaxProviderStore().GetByName(ctx, "VIETTEL")
	require.NoError(t, err)
	assert.Equal(t, provider.ID, got.ID)
	assert.Equal(t, domain.StatusResolved, got.Status)
	assert.Equal(t, "https://sinvoice.viettel.vn/tra-cuu-hoa-don", got.SearchURL)
}

func TestTaxProviderStore_Save_DefaultsStatusToTBD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	provider := &domain.TaxProvider{Name: "UNKNOWN-PROVIDER"}
	require.NoError(t, store.TaxProviderStore().Save(ctx, provider))

	got, err := store.TaxProviderStore().GetByName(ctx, "UNKNOWN-PROVIDER")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTBD, got.Status)
}

func TestTaxProviderStore_Save_RefreshesAttributes(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := &domain.TaxProvider{Name: "MISA", Status: domain.StatusTBD}
	require.NoError(t, store.TaxProviderStore().Save(ctx, first))

	second := &domain.TaxProvider{
		Name:      "MISA",
		Status:    domain.StatusResolved,
		SearchURL: "https://www.meinvoice.vn/tra-cuu",
	}
	require.NoError(t, store.TaxProviderStore().Save(ctx, second))
	assert.Equal(t, first.ID, second.ID)

	got, err := store.TaxProviderStore().GetByName(ctx, "MISA")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
	assert.Equal(t, "https://www.meinvoice.vn/tra-cuu", got.SearchURL)
}

// ==================== Invoice Store Tests ====================

func TestInvoiceStore_InsertBatch_AndGetByKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")
	provider := createTestProvider(t, store, "VIETTEL")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	inv := testInvoice(key, seller.ID)
	inv.TaxProviderID = provider.ID
	inv.TrackingCode = "TRK123"

	n, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{inv})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.InvoiceStore().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, got.Key)
	assert.Equal(t, "TRK123", got.TrackingCode)
	assert.Equal(t, seller.ID, got.SellerID)
	assert.False(t, got.IsDownloaded)
	require.NotNil(t, got.Seller)
	assert.Equal(t, "Cong Ty ABC", got.Seller.Name)
	require.NotNil(t, got.TaxProvider)
	assert.Equal(t, "VIETTEL", got.TaxProvider.Name)
}

func TestInvoiceStore_InsertBatch_SkipsNaturalKeyCollisions(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	n, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{testInvoice(key, seller.ID)})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Re-inserting the same key plus one fresh invoice: only the fresh
	// row counts, and the collision does not fail the batch.
	fresh := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000043"}
	n, err = store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{
		testInvoice(key, seller.ID),
		testInvoice(fresh, seller.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	invoices, err := store.InvoiceStore().List(ctx, domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
}

func TestInvoiceStore_InsertBatch_Empty(t *testing.T) {
	store := setupTestStore(t)

	n, err := store.InvoiceStore().InsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInvoiceStore_GetBySeriesNumber(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{testInvoice(key, seller.ID)})
	require.NoError(t, err)

	got, err := store.InvoiceStore().GetBySeriesNumber(ctx, "C23TAB", "00000042")
	require.NoError(t, err)
	assert.Equal(t, key, got.Key)

	_, err = store.InvoiceStore().GetBySeriesNumber(ctx, "C23TAB", "99999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoiceStore_SetTrackingCode_MonotonicFill(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{testInvoice(key, seller.ID)})
	require.NoError(t, err)

	written, err := store.InvoiceStore().SetTrackingCode(ctx, key, "FIRST")
	require.NoError(t, err)
	assert.True(t, written)

	// A stored code is never overwritten.
	written, err = store.InvoiceStore().SetTrackingCode(ctx, key, "SECOND")
	require.NoError(t, err)
	assert.False(t, written)

	got, err := store.InvoiceStore().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", got.TrackingCode)
}

func TestInvoiceStore_SetTrackingCode_EmptyCodeIsNoop(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{testInvoice(key, seller.ID)})
	require.NoError(t, err)

	written, err := store.InvoiceStore().SetTrackingCode(ctx, key, "")
	require.NoError(t, err)
	assert.False(t, written)
}

func TestInvoiceStore_MarkDownloaded(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	key := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000042"}
	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{testInvoice(key, seller.ID)})
	require.NoError(t, err)

	require.NoError(t, store.InvoiceStore().MarkDownloaded(ctx, key))

	got, err := store.InvoiceStore().GetByKey(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.IsDownloaded)

	missing := domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "99999999"}
	assert.ErrorIs(t, store.InvoiceStore().MarkDownloaded(ctx, missing), domain.ErrNotFound)
}

func TestInvoiceStore_List_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sellerA := createTestSeller(t, store, "0100000000", "Seller A")
	sellerB := createTestSeller(t, store, "0200000000", "Seller B")

	mk := func(number string, sellerID int64, issued time.Time) *domain.Invoice {
		inv := testInvoice(domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: number}, sellerID)
		inv.IssuedAt = issued
		return inv
	}
	jan := time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)

	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{
		mk("00000001", sellerA.ID, jan),
		mk("00000002", sellerB.ID, mar),
		mk("00000003", sellerA.ID, jun),
	})
	require.NoError(t, err)
	require.NoError(t, store.InvoiceStore().MarkDownloaded(ctx,
		domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000002"}))

	// Date range.
	got, err := store.InvoiceStore().List(ctx, domain.InvoiceFilter{
		From: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "00000002", got[0].Key.Number)

	// Seller tax code.
	got, err = store.InvoiceStore().List(ctx, domain.InvoiceFilter{SellerTaxCode: "0100000000"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Pending only.
	got, err = store.InvoiceStore().List(ctx, domain.InvoiceFilter{OnlyPending: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, inv := range got {
		assert.False(t, inv.IsDownloaded)
	}
}

func TestInvoiceStore_List_OrderedByTimestampThenKey(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")

	issued := time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC)
	mk := func(number string, issued time.Time) *domain.Invoice {
		inv := testInvoice(domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: number}, seller.ID)
		inv.IssuedAt = issued
		return inv
	}

	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{
		mk("00000009", issued),
		mk("00000001", issued.Add(-time.Hour)),
		mk("00000005", issued),
	})
	require.NoError(t, err)

	got, err := store.InvoiceStore().List(ctx, domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "00000001", got[0].Key.Number)
	assert.Equal(t, "00000005", got[1].Key.Number)
	assert.Equal(t, "00000009", got[2].Key.Number)
}

func TestInvoiceStore_Stats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	seller := createTestSeller(t, store, "0312345678", "Cong Ty ABC")
	viettel := createTestProvider(t, store, "VIETTEL")
	misa := createTestProvider(t, store, "MISA")

	mk := func(number string, providerID int64, issued time.Time) *domain.Invoice {
		inv := testInvoice(domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: number}, seller.ID)
		inv.TaxProviderID = providerID
		inv.IssuedAt = issued
		return inv
	}
	jan := time.Date(2023, time.January, 10, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, time.June, 10, 0, 0, 0, 0, time.UTC)

	_, err := store.InvoiceStore().InsertBatch(ctx, []*domain.Invoice{
		mk("00000001", viettel.ID, jan),
		mk("00000002", viettel.ID, jun),
		mk("00000003", misa.ID, jan),
		mk("00000004", 0, jun),
	})
	require.NoError(t, err)
	require.NoError(t, store.InvoiceStore().MarkDownloaded(ctx,
		domain.InvoiceKey{Form: "1", Series: "C23TAB", Number: "00000001"}))

	stats, err := store.InvoiceStore().Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalInvoices)
	assert.Equal(t, 1, stats.Downloaded)
	assert.Equal(t, 1, stats.Sellers)
	assert.Equal(t, 2, stats.TaxProviders)
	assert.Equal(t, jan, stats.EarliestIssued.UTC())
	assert.Equal(t, jun, stats.LatestIssued.UTC())
	require.Len(t, stats.ByProvider, 2)
	assert.Equal(t, domain.ProviderCount{Provider: "MISA", Count: 1}, stats.ByProvider[0])
	assert.Equal(t, domain.ProviderCount{Provider: "VIETTEL", Count: 2}, stats.ByProvider[1])
}
