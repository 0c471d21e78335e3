package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"swap-settlement/internal/domain/account"
	"swap-settlement/internal/domain/ledger"
)

// TransferInput 送金入力
type TransferInput struct {
	Reference string           // 紐づく決済ID
	Kind      ledger.EntryKind // 台帳エントリ種別
	From      solana.PublicKey // 送金元アカウント
	To        solana.PublicKey // 送金先アカウント
	Authority solana.PublicKey // 送金元の所有者として署名する主体
	Amount    uint64
}

// TransferService アカウント間送金のドメインサービス
// 呼び出し側のトランザクション内で動作し、自身ではコミットしない
type TransferService struct {
	accountRepo account.AccountRepository
	entryRepo   ledger.EntryRepository
	now         func() time.Time
}

// NewTransferService 新しいTransferServiceを作成
func NewTransferService(accountRepo account.AccountRepository, entryRepo ledger.EntryRepository) *TransferService {
	return &TransferService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		now:         time.Now,
	}
}

// BalanceOf アカウントの現在残高を取得
func (s *TransferService) BalanceOf(ctx context.Context, address solana.PublicKey) (uint64, error) {
	acc, err := s.accountRepo.FindByAddress(ctx, address)
	if err != nil {
		return 0, err
	}
	return acc.Balance(), nil
}

// Transfer 同一ミントのアカウント間で残高を移動し、台帳エントリを記録する
func (s *TransferService) Transfer(ctx context.Context, in TransferInput) (*ledger.Entry, error) {
	if in.Amount == 0 {
		return nil, account.ErrInvalidAmount
	}
	if in.From.Equals(in.To) {
		return nil, fmt.Errorf("%w: source and destination are the same account", account.ErrInvalidAddress)
	}

	from, err := s.accountRepo.FindByAddress(ctx, in.From)
	if err != nil {
		return nil, fmt.Errorf("load source %s: %w", in.From, err)
	}
	to, err := s.accountRepo.FindByAddress(ctx, in.To)
	if err != nil {
		return nil, fmt.Errorf("load destination %s: %w", in.To, err)
	}

	if !from.Mint().Equals(to.Mint()) {
		return nil, account.ErrMintMismatch
	}
	if !from.IsOwnedBy(in.Authority) {
		return nil, account.ErrOwnerMismatch
	}

	if err := from.Debit(in.Amount); err != nil {
		return nil, err
	}
	if err := to.Credit(in.Amount); err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, from); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, to); err != nil {
		return nil, err
	}

	entry, err := ledger.NewEntry(
		uuid.NewString(),
		in.Reference,
		in.Kind,
		from.Address(),
		to.Address(),
		from.Mint(),
		in.Amount,
		from.Balance(),
		to.Balance(),
		s.now(),
	)
	if err != nil {
		return nil, err
	}
	if err := s.entryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}
