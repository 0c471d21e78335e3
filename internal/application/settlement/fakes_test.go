package settlement

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/ledger"
	"swap-settlement/internal/domain/service"
	domain "swap-settlement/internal/domain/settlement"
	"swap-settlement/internal/domain/venue"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

// memStore インメモリ台帳（トランザクションはスナップショットで再現）
type memStore struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*account.Account
	entries  []*ledger.Entry
	results  map[string]*domain.Result
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[solana.PublicKey]*account.Account{},
		results:  map[string]*domain.Result{},
	}
}

func cloneAccount(a *account.Account) *account.Account {
	return account.MustNewAccount(a.Address(), a.Mint(), a.Owner(), a.Balance(), a.Version())
}

type memAccountRepo struct{ s *memStore }

func (r memAccountRepo) FindByAddress(ctx context.Context, address solana.PublicKey) (*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[address]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r memAccountRepo) Save(ctx context.Context, a *account.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.accounts[a.Address()]
	if !ok {
		return account.ErrAccountNotFound
	}
	if stored.Version() != a.Version() {
		return account.ErrVersionConflict
	}
	r.s.accounts[a.Address()] = account.MustNewAccount(a.Address(), a.Mint(), a.Owner(), a.Balance(), a.Version()+1)
	a.IncrementVersion()
	return nil
}

func (r memAccountRepo) Create(ctx context.Context, a *account.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.accounts[a.Address()] = cloneAccount(a)
	return nil
}

type memEntryRepo struct{ s *memStore }

func (r memEntryRepo) Save(ctx context.Context, e *ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.entries = append(r.s.entries, e)
	return nil
}

func (r memEntryRepo) FindByReference(ctx context.Context, reference string) ([]*ledger.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*ledger.Entry
	for _, e := range r.s.entries {
		if e.Reference() == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

type memResultRepo struct{ s *memStore }

func (r memResultRepo) Save(ctx context.Context, result *domain.Result) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.results[result.OrderID()]; ok {
		return domain.ErrDuplicateOrder
	}
	r.s.results[result.OrderID()] = result
	return nil
}

func (r memResultRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.Result, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result, ok := r.s.results[orderID]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	return result, nil
}

func (r memResultRepo) FindByMerchant(ctx context.Context, merchant solana.PublicKey, limit, offset int) ([]*domain.Result, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Result
	for _, result := range r.s.results {
		if result.Merchant().Equals(merchant) {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SettledAt().After(out[j].SettledAt()) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memTxManager fn が失敗した場合にスナップショットへ戻す
type memTxManager struct{ s *memStore }

func (m memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.s.mu.Lock()
	accounts := make(map[solana.PublicKey]*account.Account, len(m.s.accounts))
	for k, v := range m.s.accounts {
		accounts[k] = cloneAccount(v)
	}
	entries := append([]*ledger.Entry(nil), m.s.entries...)
	results := make(map[string]*domain.Result, len(m.s.results))
	for k, v := range m.s.results {
		results[k] = v
	}
	m.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.s.mu.Lock()
		m.s.accounts = accounts
		m.s.entries = entries
		m.s.results = results
		m.s.mu.Unlock()
		return err
	}
	return nil
}

// stubVenue 固定の出力額を返すスワップ先
type stubVenue struct {
	transfers  *service.TransferService
	reserveIn  solana.PublicKey
	reserveOut solana.PublicKey
	authority  solana.PublicKey
	out        uint64
	err        error
	calls      []venue.SwapCall
}

func (v *stubVenue) Swap(ctx context.Context, call venue.SwapCall) error {
	v.calls = append(v.calls, call)
	if v.err != nil {
		return v.err
	}
	if v.out < call.MinAmountOut {
		return venue.ErrSlippageExceeded
	}
	if _, err := v.transfers.Transfer(ctx, service.TransferInput{
		Reference: call.Reference,
		Kind:      ledger.EntryKindSwapIn,
		From:      call.Source,
		To:        v.reserveIn,
		Authority: call.Authority,
		Amount:    call.AmountIn,
	}); err != nil {
		return err
	}
	if v.out == 0 {
		return nil
	}
	_, err := v.transfers.Transfer(ctx, service.TransferInput{
		Reference: call.Reference,
		Kind:      ledger.EntryKindSwapOut,
		From:      v.reserveOut,
		To:        call.Destination,
		Authority: v.authority,
		Amount:    v.out,
	})
	return err
}

// failingTransferer 指定種別の送金を失敗させる
type failingTransferer struct {
	Transferer
	failKind ledger.EntryKind
}

func (f failingTransferer) Transfer(ctx context.Context, in service.TransferInput) (*ledger.Entry, error) {
	if in.Kind == f.failKind {
		return nil, account.ErrInsufficientBalance
	}
	return f.Transferer.Transfer(ctx, in)
}

// MockSink モック通知先
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Publish(ctx context.Context, result *domain.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

type fixture struct {
	store     *memStore
	transfers *service.TransferService
	venue     *stubVenue
	sink      *MockSink
	clock     *fixedClock
	policy    Policy
	logs      *bytes.Buffer
	svc       *SettlementApplicationService

	programID       solana.PublicKey
	payer           solana.PublicKey
	merchant        solana.PublicKey
	treasuryOwner   solana.PublicKey
	poolAuthority   solana.PublicKey
	ammID           solana.PublicKey
	inMint          solana.PublicKey
	outMint         solana.PublicKey
	source          solana.PublicKey
	destination     solana.PublicKey
	treasury        solana.PublicKey
	merchantAccount solana.PublicKey
	reserveIn       solana.PublicKey
	reserveOut      solana.PublicKey
}

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// newFixture 支払者の残高 1,000,000、プールの出力側残高 1,000,000 の状態を作る
func newFixture(t *testing.T, mode domain.FeeMode) *fixture {
	t.Helper()

	f := &fixture{
		store:           newMemStore(),
		sink:            &MockSink{},
		clock:           &fixedClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		logs:            &bytes.Buffer{},
		programID:       newKey(),
		payer:           newKey(),
		merchant:        newKey(),
		treasuryOwner:   newKey(),
		poolAuthority:   newKey(),
		ammID:           newKey(),
		inMint:          newKey(),
		outMint:         newKey(),
		source:          newKey(),
		destination:     newKey(),
		treasury:        newKey(),
		merchantAccount: newKey(),
		reserveIn:       newKey(),
		reserveOut:      newKey(),
	}

	treasuryMint := f.outMint
	if mode == domain.FeeModePreSwap {
		treasuryMint = f.inMint
	}

	repo := memAccountRepo{s: f.store}
	ctx := context.Background()
	for _, a := range []*account.Account{
		account.MustNewAccount(f.source, f.inMint, f.payer, 1_000_000, 1),
		account.MustNewAccount(f.destination, f.outMint, f.payer, 0, 1),
		account.MustNewAccount(f.treasury, treasuryMint, f.treasuryOwner, 0, 1),
		account.MustNewAccount(f.merchantAccount, f.outMint, f.merchant, 0, 1),
		account.MustNewAccount(f.reserveIn, f.inMint, f.poolAuthority, 0, 1),
		account.MustNewAccount(f.reserveOut, f.outMint, f.poolAuthority, 1_000_000, 1),
	} {
		require.NoError(t, repo.Create(ctx, a))
	}

	f.transfers = service.NewTransferService(repo, memEntryRepo{s: f.store})
	f.venue = &stubVenue{
		transfers:  f.transfers,
		reserveIn:  f.reserveIn,
		reserveOut: f.reserveOut,
		authority:  f.poolAuthority,
		out:        9500,
	}
	f.policy = Policy{
		FeeBps:         100,
		FeeMode:        mode,
		VenueProgramID: f.programID,
		TreasuryOwner:  f.treasuryOwner,
	}
	f.svc = f.newService(f.transfers)
	return f
}

func (f *fixture) newService(transfers Transferer) *SettlementApplicationService {
	logger := otelinfra.NewLoggerWithWriter(otel.Tracer("test"), f.logs, otelinfra.LogLevelDebug)
	metrics, _ := otelinfra.NewMetrics("test")
	return NewSettlementApplicationService(
		memAccountRepo{s: f.store},
		memResultRepo{s: f.store},
		memTxManager{s: f.store},
		transfers,
		f.venue,
		[]domain.Sink{f.sink},
		f.clock,
		f.policy,
		logger,
		metrics,
	)
}

func (f *fixture) request(orderID string, payIn uint64) *SettleRequest {
	return &SettleRequest{
		OrderID:      orderID,
		PayInAmount:  payIn,
		PayOutAmount: 9500,
		Merchant:     f.merchant.String(),
		Expiry:       f.clock.now.Add(time.Minute).Unix(),
		Payer:        f.payer.String(),
		Accounts: AccountsInput{
			Source:          f.source.String(),
			Destination:     f.destination.String(),
			Treasury:        f.treasury.String(),
			MerchantAccount: f.merchantAccount.String(),
			PayInMint:       f.inMint.String(),
			PayOutMint:      f.outMint.String(),
			Venue: VenueAccountsInput{
				AmmID:                f.ammID.String(),
				AmmAuthority:         f.poolAuthority.String(),
				PoolCoinTokenAccount: f.reserveOut.String(),
				PoolPcTokenAccount:   f.reserveIn.String(),
			},
		},
	}
}

func (f *fixture) balance(t *testing.T, address solana.PublicKey) uint64 {
	t.Helper()
	a, err := memAccountRepo{s: f.store}.FindByAddress(context.Background(), address)
	require.NoError(t, err)
	return a.Balance()
}

// balances 決済に関わる全アカウントの残高
func (f *fixture) balances(t *testing.T) map[solana.PublicKey]uint64 {
	t.Helper()
	out := map[solana.PublicKey]uint64{}
	for _, pk := range []solana.PublicKey{f.source, f.destination, f.treasury, f.merchantAccount, f.reserveIn, f.reserveOut} {
		out[pk] = f.balance(t, pk)
	}
	return out
}
