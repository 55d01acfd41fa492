package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantoi-labs/hoadon-cli/internal/adapters/driven/storage/memory"
	"github.com/vantoi-labs/hoadon-cli/internal/core/domain"
)

// --- Mock implementations ---

// mockRetriever implements driven.DocumentRetriever.
type mockRetriever struct {
	name  string
	data  []byte
	err   error
	calls int
}

func (m *mockRetriever) Name() string { return m.name }

func (m *mockRetriever) Retrieve(_ context.Context, _ domain.Invoice) ([]byte, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

// mockValidator implements driven.DocumentValidator.
type mockValidator struct {
	err   error
	calls int
}

func (m *mockValidator) Validate(_ []byte) error {
	m.calls++
	return m.err
}

// mockArtifacts implements driven.ArtifactStore over a map.
type mockArtifacts struct {
	files    map[string][]byte
	writeErr error
}

func newMockArtifacts() *mockArtifacts {
	return &mockArtifacts{files: make(map[string][]byte)}
}

func (m *mockArtifacts) Exists(name string) bool {
	_, ok := m.files[name]
	return ok
}

func (m *mockArtifacts) Write(name string, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.files[name] = data
	return nil
}

func (m *mockArtifacts) Delete(name string) error {
	delete(m.files, name)
	return nil
}

func (m *mockArtifacts) Path(name string) string {
	return filepath.Join("/tmp/downloads", name)
}

// --- Test fixtures ---

type downloadFixture struct {
	orch      *DownloadOrchestrator
	invoices  *memory.InvoiceStore
	sellers   *memory.SellerStore
	providers *memory.TaxProviderStore
	artifacts *mockArtifacts
	retriever *mockRetriever
	validator *mockValidator
}

func newDownloadFixture(t *testing.T) *downloadFixture {
	t.Helper()

	profile := &domain.Profile{
		DownloadDelay:    time.Nanosecond,
		SellerShortNames: map[string]string{"ABC Co Ltd": "abc"},
	}
	profile.ApplyDefaults()

	sellers := memory.NewSellerStore()
	providers := memory.NewTaxProviderStore()
	invoices := memory.NewInvoiceStore(sellers, providers)

	retriever := &mockRetriever{name: "misa", data: []byte("%PDF-1.7 fake")}
	validator := &mockValidator{}
	artifacts := newMockArtifacts()

	wrapper := NewRetrievalWrapper(validator, artifacts, 3)
	wrapper.retryWait = time.Millisecond

	return &downloadFixture{
		orch:      NewDownloadOrchestrator(profile, invoices, NewRegistry(retriever), wrapper, artifacts),
		invoices:  invoices,
		sellers:   sellers,
		providers: providers,
		artifacts: artifacts,
		retriever: retriever,
		validator: validator,
	}
}

// seedInvoice stores one pending invoice with a seller and, unless
// providerName is empty, a tax provider.
func (f *downloadFixture) seedInvoice(t *testing.T, number, tracking, providerName string) domain.InvoiceKey {
	t.Helper()
	ctx := context.Background()

	seller := &domain.Seller{TaxCode: "0101243150", Name: "ABC Co Ltd"}
	require.NoError(t, f.sellers.Save(ctx, seller))

	var providerID int64
	if providerName != "" {
		prov, err := f.providers.GetByName(ctx, providerName)
		if isNotFound(err) {
			prov = &domain.TaxProvider{Name: providerName}
			require.NoError(t, f.providers.Save(ctx, prov))
		} else {
			require.NoError(t, err)
		}
		providerID = prov.ID
	}

	inv := &domain.Invoice{
		Key:           domain.InvoiceKey{Form: "1", Series: "C22TAB", Number: number},
		IssuedAt:      time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
		TrackingCode:  tracking,
		SellerID:      seller.ID,
		TaxProviderID: providerID,
	}
	n, err := f.invoices.InsertBatch(ctx, []*domain.Invoice{inv})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	return inv.Key
}

func (f *downloadFixture) get(t *testing.T, key domain.InvoiceKey) *domain.Invoice {
	t.Helper()
	inv, err := f.invoices.GetByKey(context.Background(), key)
	require.NoError(t, err)
	return inv
}

// ==================== Run ====================

func TestDownloadOrchestrator_Run_Success(t *testing.T) {
	f := newDownloadFixture(t)
	key := f.seedInvoice(t, "00000001", "TRACK1", "MISA")

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, f.retriever.calls)
	assert.True(t, f.artifacts.Exists("Mar_abc_00000001.pdf"))
	assert.True(t, f.get(t, key).IsDownloaded)
}

func TestDownloadOrchestrator_Run_ReconcilesExistingArtifact(t *testing.T) {
	f := newDownloadFixture(t)
	key := f.seedInvoice(t, "00000001", "TRACK1", "MISA")
	require.NoError(t, f.artifacts.Write("Mar_abc_00000001.pdf", []byte("already here")))

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Reconciled)
	assert.Zero(t, summary.Succeeded)
	assert.Zero(t, f.retriever.calls)
	assert.True(t, f.get(t, key).IsDownloaded)
}

func TestDownloadOrchestrator_Run_SkipsWithoutShortName(t *testing.T) {
	f := newDownloadFixture(t)
	key := f.seedInvoice(t, "00000001", "TRACK1", "MISA")

	seller, err := f.sellers.GetByTaxCode(context.Background(), "0101243150")
	require.NoError(t, err)
	seller.Name = "Unmapped Seller"
	require.NoError(t, f.sellers.Save(context.Background(), seller))

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped[domain.ReasonConfigurationError])
	assert.Zero(t, f.retriever.calls)
	assert.False(t, f.get(t, key).IsDownloaded)
}

func TestDownloadOrchestrator_Run_SkipsWithoutTrackingCode(t *testing.T) {
	f := newDownloadFixture(t)
	key := f.seedInvoice(t, "00000001", "", "MISA")

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped[domain.ReasonMissingTrackingCode])
	assert.Zero(t, f.retriever.calls)
	assert.False(t, f.get(t, key).IsDownloaded)
}

func TestDownloadOrchestrator_Run_SkipsWithoutProvider(t *testing.T) {
	f := newDownloadFixture(t)
	f.seedInvoice(t, "00000001", "TRACK1", "")

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped[domain.ReasonNoTaxProvider])
	assert.Zero(t, f.retriever.calls)
}

func TestDownloadOrchestrator_Run_SkipsUnknownProvider(t *testing.T) {
	f := newDownloadFixture(t)
	f.seedInvoice(t, "00000001", "TRACK1", "UNKNOWN_TVAN")

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped[domain.ReasonNoRetriever])
	assert.Zero(t, f.retriever.calls)
}

func TestDownloadOrchestrator_Run_FailureDoesNotAbortRun(t *testing.T) {
	f := newDownloadFixture(t)
	f.seedInvoice(t, "00000001", "TRACK1", "MISA")
	f.seedInvoice(t, "00000002", "TRACK2", "MISA")
	f.validator.err = domain.ErrValidationFailed

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Outcomes, 2)
	assert.Equal(t, domain.OutcomeFailed, summary.Outcomes[0].Status)
	assert.NotEmpty(t, summary.Outcomes[0].Err)
}

func TestDownloadOrchestrator_Run_SkipsDownloadedInvoices(t *testing.T) {
	f := newDownloadFixture(t)
	key := f.seedInvoice(t, "00000001", "TRACK1", "MISA")
	require.NoError(t, f.invoices.MarkDownloaded(context.Background(), key))

	summary, err := f.orch.Run(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
	assert.Zero(t, f.retriever.calls)
}

func TestDownloadOrchestrator_Run_DelayAfterEachInvoice(t *testing.T) {
	f := newDownloadFixture(t)
	f.seedInvoice(t, "00000001", "TRACK1", "MISA")
	f.seedInvoice(t, "00000002", "TRACK2", "MISA")

	delay := 25 * time.Millisecond
	profile := &domain.Profile{
		DownloadDelay:    delay,
		SellerShortNames: map[string]string{"ABC Co Ltd": "abc"},
	}
	profile.ApplyDefaults()

	wrapper := NewRetrievalWrapper(f.validator, f.artifacts, 3)
	wrapper.retryWait = time.Millisecond
	orch := NewDownloadOrchestrator(profile, f.invoices, NewRegistry(f.retriever), wrapper, f.artifacts)

	start := time.Now()
	summary, err := orch.Run(context.Background(), domain.InvoiceFilter{})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}

// ==================== RetrievalWrapper ====================

func TestRetrievalWrapper_Retrieve_DeletesInvalidArtifact(t *testing.T) {
	validator := &mockValidator{err: domain.ErrValidationFailed}
	artifacts := newMockArtifacts()
	retriever := &mockRetriever{name: "misa", data: []byte("<html>error page</html>")}

	w := NewRetrievalWrapper(validator, artifacts, 3)
	w.retryWait = time.Millisecond

	err := w.Retrieve(context.Background(), retriever, domain.Invoice{}, "Mar_abc_1.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRetrieveFailed)
	assert.Equal(t, 3, retriever.calls)
	assert.Equal(t, 3, validator.calls)
	assert.False(t, artifacts.Exists("Mar_abc_1.pdf"))
}

func TestRetrievalWrapper_Retrieve_SucceedsAfterTransientFailure(t *testing.T) {
	validator := &mockValidator{}
	artifacts := newMockArtifacts()

	failures := 2
	retriever := &flakyRetriever{failures: &failures, data: []byte("%PDF-1.7")}

	w := NewRetrievalWrapper(validator, artifacts, 3)
	w.retryWait = time.Millisecond

	err := w.Retrieve(context.Background(), retriever, domain.Invoice{}, "Mar_abc_1.pdf")
	require.NoError(t, err)
	assert.True(t, artifacts.Exists("Mar_abc_1.pdf"))
}

func TestRetrievalWrapper_Retrieve_WriteFailureIsPermanent(t *testing.T) {
	validator := &mockValidator{}
	artifacts := newMockArtifacts()
	artifacts.writeErr = errors.New("disk full")
	retriever := &mockRetriever{name: "misa", data: []byte("%PDF-1.7")}

	w := NewRetrievalWrapper(validator, artifacts, 3)
	w.retryWait = time.Millisecond

	err := w.Retrieve(context.Background(), retriever, domain.Invoice{}, "Mar_abc_1.pdf")
	require.Error(t, err)
	assert.Equal(t, 1, retriever.calls)
	assert.Zero(t, validator.calls)
}

func TestRetrievalWrapper_Retrieve_HonoursContext(t *testing.T) {
	validator := &mockValidator{err: domain.ErrValidationFailed}
	artifacts := newMockArtifacts()
	retriever := &mockRetriever{name: "misa", data: []byte("x")}

	w := NewRetrievalWrapper(validator, artifacts, 5)
	w.retryWait = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.Retrieve(ctx, retriever, domain.Invoice{}, "Mar_abc_1.pdf")
	require.Error(t, err)
	assert.Equal(t, 1, retriever.calls)
}

// flakyRetriever fails a set number of times, then returns data.
type flakyRetriever struct {
	failures *int
	data     []byte
}

func (f *flakyRetriever) Name() string { return "misa" }

func (f *flakyRetriever) Retrieve(_ context.Context, _ domain.Invoice) ([]byte, error) {
	if *f.failures > 0 {
		*f.failures--
		return nil, domain.ErrTransport
	}
	return f.data, nil
}
