package server

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/aid-escrow/internal/auth"
	"github.com/oshokin/aid-escrow/internal/clock"
	"github.com/oshokin/aid-escrow/internal/contract"
	domain "github.com/oshokin/aid-escrow/internal/domain/escrow"
	"github.com/oshokin/aid-escrow/internal/events"
	"github.com/oshokin/aid-escrow/internal/repository/ledger"
	"github.com/oshokin/aid-escrow/internal/repository/token"
)

const (
	testAdmin   domain.Identity = "admin"
	testAlice   domain.Identity = "alice"
	testCustody domain.Identity = "custody"
	testAsset   domain.Asset    = "USDC"
)

var errTestCommit = errors.New("test commit error")

// testHarness bundles a service with the collaborators a test inspects.
type testHarness struct {
	svc      *service
	store    *ledger.MemoryStore
	clock    *clock.Manual
	recorder *events.Recorder
}

// newHarness builds a service over an in-memory store that authorizes everyone.
func newHarness(t *testing.T, mode contract.ExpiryAccounting) *testHarness {
	t.Helper()

	h := &testHarness{
		store:    ledger.NewMemoryStore(),
		clock:    clock.NewManual(1000),
		recorder: new(events.Recorder),
	}

	h.svc = newService(params{
		store:            h.store,
		clock:            h.clock,
		auth:             auth.AllowAll{},
		sink:             h.recorder,
		custody:          testCustody,
		expiryAccounting: mode,
	})

	ctx := context.Background()
	require.NoError(t, h.svc.Init(ctx, testAdmin))
	require.NoError(t, h.svc.Mint(ctx, testAsset, testAdmin, decimal.NewFromInt(1000)))
	require.NoError(t, h.svc.Fund(ctx, testAsset, testAdmin, decimal.NewFromInt(1000)))

	return h
}

func (h *testHarness) create(id uint64, amount int64, expiresAt uint64) error {
	_, err := h.svc.CreatePackage(context.Background(), contract.PackageRequest{
		ID:        id,
		Recipient: testAlice,
		Amount:    decimal.NewFromInt(amount),
		Asset:     testAsset,
		ExpiresAt: expiresAt,
	})

	return err
}

func (h *testHarness) requireAmount(t *testing.T, got decimal.Decimal, err error, want int64) {
	t.Helper()

	require.NoError(t, err)
	require.True(t, got.Equal(decimal.NewFromInt(want)), "got %s want %d", got, want)
}

// TestService_CommitsSuccessfulCalls checks writes and events of a successful flow.
func TestService_CommitsSuccessfulCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, contract.ReleaseOnExpiry)

	require.NoError(t, h.create(1, 400, 0))

	locked, err := h.svc.Locked(ctx, testAsset)
	h.requireAmount(t, locked, err, 400)

	available, err := h.svc.Available(ctx, testAsset)
	h.requireAmount(t, available, err, 600)

	require.NoError(t, h.svc.Claim(ctx, 1))

	balance, err := h.svc.Balance(ctx, testAsset, testAlice)
	h.requireAmount(t, balance, err, 400)

	p, err := h.svc.Package(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, domain.StatusClaimed, p.Status)

	admin, err := h.svc.Admin(ctx)
	require.NoError(t, err)
	require.Equal(t, testAdmin, admin)

	require.Equal(t, []domain.EventType{
		domain.EventFunded, domain.EventPackageCreated, domain.EventClaimed,
	}, h.recorder.Types())
}

// TestService_DiscardsFailedCalls verifies a call failing after its first
// write leaves no trace in the store or the event sink.
func TestService_DiscardsFailedCalls(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newHarness(t, contract.ReleaseOnExpiry)

	// Drain half of the custody through a revoked package so that the next
	// payout cannot be covered.
	require.NoError(t, h.create(1, 500, 0))
	require.NoError(t, h.svc.Revoke(ctx, 1))
	require.NoError(t, h.create(2, 1000, 0))
	require.NoError(t, h.svc.Refund(ctx, 1))

	eventsBefore := len(h.recorder.Events())
	sizeBefore := h.store.Len()

	err := h.svc.Claim(ctx, 2)
	require.ErrorIs(t, err, token.ErrInsufficientBalance)

	p, err := h.svc.Package(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCreated, p.Status)

	locked, err := h.svc.Locked(ctx, testAsset)
	h.requireAmount(t, locked, err, 1000)

	require.Len(t, h.recorder.Events(), eventsBefore)
	require.Equal(t, sizeBefore, h.store.Len())

	// Validation failures are discarded as well.
	require.ErrorIs(t, h.create(2, 1, 0), domain.ErrPackageIDExists)
	require.Len(t, h.recorder.Events(), eventsBefore)
}

// TestService_KeepsLazyExpiry commits the Expired transition of a failed claim.
func TestService_KeepsLazyExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	for _, tc := range []struct {
		mode   contract.ExpiryAccounting
		locked int64
	}{
		{contract.ReleaseOnExpiry, 0},
		{contract.LegacyExpiry, 300},
	} {
		h := newHarness(t, tc.mode)
		require.NoError(t, h.create(1, 300, 1100))
		h.clock.Set(1101)

		require.ErrorIs(t, h.svc.Claim(ctx, 1), domain.ErrPackageExpired)

		p, err := h.svc.Package(ctx, 1)
		require.NoError(t, err)
		require.Equal(t, domain.StatusExpired, p.Status)

		locked, err := h.svc.Locked(ctx, testAsset)
		h.requireAmount(t, locked, err, tc.locked)

		require.NoError(t, h.svc.Refund(ctx, 1))

		balance, err := h.svc.Balance(ctx, testAsset, testAdmin)
		h.requireAmount(t, balance, err, 300)
	}
}

// TestService_Mint requires the administrator and a positive amount.
func TestService_Mint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(params{
		store:   ledger.NewMemoryStore(),
		clock:   clock.NewManual(1),
		auth:    auth.Signed{},
		sink:    new(events.Recorder),
		custody: testCustody,
	})

	adminCtx := auth.WithSigner(ctx, testAdmin)
	amount := decimal.NewFromInt(10)

	require.ErrorIs(t, svc.Mint(adminCtx, testAsset, testAlice, amount), domain.ErrNotInitialized)
	require.NoError(t, svc.Init(adminCtx, testAdmin))

	require.ErrorIs(t, svc.Mint(ctx, testAsset, testAlice, amount), domain.ErrNotAuthorized)
	require.ErrorIs(t, svc.Mint(adminCtx, testAsset, testAlice, decimal.Zero), domain.ErrInvalidAmount)
	require.NoError(t, svc.Mint(adminCtx, testAsset, testAlice, amount))

	balance, err := svc.Balance(ctx, testAsset, testAlice)
	require.NoError(t, err)
	require.True(t, balance.Equal(amount))
}

// failingStore rejects every batch commit.
type failingStore struct {
	*ledger.MemoryStore
}

// SetBatch always fails.
func (failingStore) SetBatch(context.Context, []ledger.Write) error {
	return errTestCommit
}

// TestService_CommitFailure drops events when the store rejects the commit.
func TestService_CommitFailure(t *testing.T) {
	t.Parallel()

	recorder := new(events.Recorder)
	svc := newService(params{
		store:   failingStore{ledger.NewMemoryStore()},
		clock:   clock.NewManual(1),
		auth:    auth.AllowAll{},
		sink:    recorder,
		custody: testCustody,
	})

	err := svc.Init(context.Background(), testAdmin)
	require.ErrorIs(t, err, errTestCommit)
	require.Empty(t, recorder.Events())

	_, err = svc.Admin(context.Background())
	require.ErrorIs(t, err, domain.ErrNotInitialized)
}
