package cash

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	registers map[id.ID]Register
	entries   []Entry
}

func newFakeRepo(registers ...Register) *fakeRepo {
	r := &fakeRepo{registers: make(map[id.ID]Register)}
	for _, reg := range registers {
		r.registers[reg.ID] = reg
	}
	return r
}

func (r *fakeRepo) GetRegister(_ context.Context, registerID id.ID) (Register, error) {
	if reg, ok := r.registers[registerID]; ok {
		return reg, nil
	}
	return Register{}, apperror.NewNotFound("cash register", registerID)
}

func (r *fakeRepo) GetRegisterForUpdate(ctx context.Context, registerID id.ID) (Register, error) {
	return r.GetRegister(ctx, registerID)
}

func (r *fakeRepo) UpdateRegisterAmount(_ context.Context, registerID id.ID, amount types.Money) error {
	reg, ok := r.registers[registerID]
	if !ok {
		return apperror.NewNotFound("cash register", registerID)
	}
	reg.CurrentAmount = amount
	r.registers[registerID] = reg
	return nil
}

func (r *fakeRepo) InsertEntry(_ context.Context, entry Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeRepo) ListEntries(_ context.Context, registerID id.ID, _ EntryFilter) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.RegisterID == registerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecord_DepositAndWithdrawal(t *testing.T) {
	registerID := id.New()
	repo := newFakeRepo(Register{ID: registerID, Name: "front desk", CurrentAmount: types.NewMoneyFromInt(1000)})
	svc := NewService(repo, fakeTxManager{})
	ctx := context.Background()

	_, err := svc.Record(ctx, registerID, EntryDeposit, types.NewMoneyFromInt(250), "sale")
	require.NoError(t, err)
	_, err = svc.Record(ctx, registerID, EntryWithdrawal, types.NewMoneyFromInt(100), "supplier payout")
	require.NoError(t, err)

	reg, err := svc.GetRegister(ctx, registerID)
	require.NoError(t, err)
	assert.True(t, reg.CurrentAmount.Equal(types.NewMoneyFromInt(1150)),
		"balance = %s", reg.CurrentAmount)
	assert.Len(t, repo.entries, 2)
}

func TestRecord_WithdrawalMayGoNegative(t *testing.T) {
	registerID := id.New()
	repo := newFakeRepo(Register{ID: registerID, CurrentAmount: types.NewMoneyFromInt(50)})
	svc := NewService(repo, fakeTxManager{})

	_, err := svc.Record(context.Background(), registerID, EntryWithdrawal, types.NewMoneyFromInt(80), "payout")
	require.NoError(t, err)

	reg, err := svc.GetRegister(context.Background(), registerID)
	require.NoError(t, err)
	assert.True(t, reg.CurrentAmount.Equal(types.NewMoneyFromInt(-30)),
		"balance = %s", reg.CurrentAmount)
}

func TestRecord_RejectsNonPositiveAmount(t *testing.T) {
	registerID := id.New()
	repo := newFakeRepo(Register{ID: registerID, CurrentAmount: types.NewMoneyFromInt(100)})
	svc := NewService(repo, fakeTxManager{})

	for _, amount := range []types.Money{types.Zero(), types.NewMoneyFromInt(-5)} {
		_, err := svc.Record(context.Background(), registerID, EntryDeposit, amount, "bad")
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeInvalidAmount, appErr.Code)
	}
	assert.Empty(t, repo.entries)
}

func TestRecord_UnknownRegister(t *testing.T) {
	svc := NewService(newFakeRepo(), fakeTxManager{})

	_, err := svc.Record(context.Background(), id.New(), EntryDeposit, types.NewMoneyFromInt(10), "x")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestBalanceAt_ReplaysLedger(t *testing.T) {
	registerID := id.New()
	repo := newFakeRepo(Register{ID: registerID, CurrentAmount: types.Zero()})
	svc := NewService(repo, fakeTxManager{})
	ctx := context.Background()

	amounts := []struct {
		entryType EntryType
		amount    int64
	}{
		{EntryDeposit, 500},
		{EntryDeposit, 300},
		{EntryWithdrawal, 200},
	}
	for _, a := range amounts {
		_, err := svc.Record(ctx, registerID, a.entryType, types.NewMoneyFromInt(a.amount), "t")
		require.NoError(t, err)
	}

	reg, err := svc.GetRegister(ctx, registerID)
	require.NoError(t, err)

	// Replayed ledger must agree with the stored balance.
	replayed, err := svc.BalanceAt(ctx, registerID, time.Now())
	require.NoError(t, err)
	assert.True(t, replayed.Equal(reg.CurrentAmount),
		"replayed %s, stored %s", replayed, reg.CurrentAmount)
	assert.True(t, replayed.Equal(types.NewMoneyFromInt(600)))
}
