package ledger

import (
	"context"
	"testing"
	"time"

	"poker_ledger/internal/db/dbtest"
	"poker_ledger/internal/domain"
	"poker_ledger/internal/store"
	"poker_ledger/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"pgregory.net/rapid"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func input(buyIn, cashOut string, buyIns int, date string) SessionInput {
	day, _ := time.Parse("2006-01-02", date)
	return SessionInput{
		BuyInAmount:    d(buyIn),
		CashOutAmount:  d(cashOut),
		NumberOfBuyIns: buyIns,
		Stakes:         "1/3",
		GameType:       domain.GameNLH,
		Location:       "Casino",
		SessionDate:    day,
	}
}

// setup returns a ledger with two registered users
func setup(t *testing.T) (*Ledger, *gorm.DB, uint, uint) {
	t.Helper()
	gdb := dbtest.Open(t)
	users := store.NewUserStore(gdb)
	u1, err := users.Register(context.Background(), "One", "one@x.com", "hash")
	require.NoError(t, err)
	u2, err := users.Register(context.Background(), "Two", "two@x.com", "hash")
	require.NoError(t, err)
	return New(gdb, utils.NewCache(nil)), gdb, u1.ID, u2.ID
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), "want %s got %s", want, got)
}

func TestCreateComputesWinLossAndTotal(t *testing.T) {
	ctx := context.Background()
	l, _, u1, _ := setup(t)

	s, total, err := l.Create(ctx, u1, input("100", "250", 2, "2024-01-01"))
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, u1, s.UserID)
	assertDecimal(t, "50", s.WinLoss)
	assertDecimal(t, "50", total)

	_, total, err = l.Create(ctx, u1, input("0.10", "0.20", 3, "2024-01-02"))
	require.NoError(t, err)
	assertDecimal(t, "49.90", total)
}

func TestListOrdersBySessionDateDesc(t *testing.T) {
	ctx := context.Background()
	l, _, u1, u2 := setup(t)

	for _, day := range []string{"2024-01-02", "2024-03-01", "2023-12-31"} {
		_, _, err := l.Create(ctx, u1, input("10", "20", 1, day))
		require.NoError(t, err)
	}
	_, _, err := l.Create(ctx, u2, input("10", "0", 1, "2024-06-01"))
	require.NoError(t, err)

	sessions, total, err := l.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "2024-03-01", sessions[0].SessionDate.Format("2006-01-02"))
	assert.Equal(t, "2024-01-02", sessions[1].SessionDate.Format("2006-01-02"))
	assert.Equal(t, "2023-12-31", sessions[2].SessionDate.Format("2006-01-02"))
	assertDecimal(t, "30", total)

	empty, total, err := l.List(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
	assertDecimal(t, "0", total)
}

func TestUpdateNotesKeepsWinLoss(t *testing.T) {
	ctx := context.Background()
	l, _, u1, _ := setup(t)

	s, _, err := l.Create(ctx, u1, input("100", "250", 2, "2024-01-01"))
	require.NoError(t, err)

	updated, total, err := l.Update(ctx, u1, s.ID, SessionPatch{Notes: ptr("tilted")})
	require.NoError(t, err)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "tilted", *updated.Notes)
	assertDecimal(t, "50", updated.WinLoss)
	assertDecimal(t, "50", total)
}

func TestUpdateCashOutRecomputesFromStoredFields(t *testing.T) {
	ctx := context.Background()
	l, _, u1, _ := setup(t)

	s, _, err := l.Create(ctx, u1, input("100", "250", 2, "2024-01-01"))
	require.NoError(t, err)

	updated, total, err := l.Update(ctx, u1, s.ID, SessionPatch{CashOutAmount: ptr(d("150"))})
	require.NoError(t, err)
	assertDecimal(t, "-50", updated.WinLoss)
	assertDecimal(t, "-50", total)
	assertDecimal(t, "100", updated.BuyInAmount)
	assert.Equal(t, 2, updated.NumberOfBuyIns)

	updated, total, err = l.Update(ctx, u1, s.ID, SessionPatch{NumberOfBuyIns: ptr(1)})
	require.NoError(t, err)
	assertDecimal(t, "50", updated.WinLoss)
	assertDecimal(t, "50", total)
}

func TestUpdateKeepsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	l, _, u1, _ := setup(t)

	in := input("100", "250", 2, "2024-01-01")
	in.Notes = ptr("first")
	s, _, err := l.Create(ctx, u1, in)
	require.NoError(t, err)

	day := time.Date(2024, 2, 3, 15, 4, 5, 0, time.UTC)
	updated, _, err := l.Update(ctx, u1, s.ID, SessionPatch{GameType: ptr(domain.GamePLO), SessionDate: &day})
	require.NoError(t, err)
	assert.Equal(t, domain.GamePLO, updated.GameType)
	assert.Equal(t, "2024-02-03", updated.SessionDate.Format("2006-01-02"))
	assert.Equal(t, "1/3", updated.Stakes)
	assert.Equal(t, "Casino", updated.Location)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "first", *updated.Notes)
}

func TestUpdateEmptyPatch(t *testing.T) {
	l, _, u1, _ := setup(t)
	_, _, err := l.Update(context.Background(), u1, 1, SessionPatch{})
	assert.ErrorIs(t, err, domain.ErrNoFields)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	l, gdb, u1, _ := setup(t)

	keep, _, err := l.Create(ctx, u1, input("100", "250", 2, "2024-01-01"))
	require.NoError(t, err)
	gone, _, err := l.Create(ctx, u1, input("50", "0", 1, "2024-01-02"))
	require.NoError(t, err)

	deleted, total, err := l.SoftDelete(ctx, u1, gone.ID)
	require.NoError(t, err)
	assert.True(t, deleted.DeletedAt.Valid)
	assertDecimal(t, "50", total)

	sessions, total, err := l.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, keep.ID, sessions[0].ID)
	assertDecimal(t, "50", total)

	// Second attempt is a clean not-found
	_, _, err = l.SoftDelete(ctx, u1, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = l.Update(ctx, u1, gone.ID, SessionPatch{Notes: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The row itself survives
	var row domain.Session
	require.NoError(t, gdb.Unscoped().First(&row, gone.ID).Error)
	assert.True(t, row.DeletedAt.Valid)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	ctx := context.Background()
	l, _, u1, u2 := setup(t)

	a, _, err := l.Create(ctx, u1, input("100", "250", 2, "2024-01-01"))
	require.NoError(t, err)

	_, _, err = l.Update(ctx, u2, a.ID, SessionPatch{CashOutAmount: ptr(d("0"))})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = l.SoftDelete(ctx, u2, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Same outcome as a session that never existed
	_, _, err = l.SoftDelete(ctx, u2, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sessions, total, err := l.List(ctx, u1)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assertDecimal(t, "50", sessions[0].WinLoss)
	assertDecimal(t, "250", sessions[0].CashOutAmount)
	assertDecimal(t, "50", total)

	others, total, err := l.List(ctx, u2)
	require.NoError(t, err)
	assert.Empty(t, others)
	assertDecimal(t, "0", total)
}

// The total always equals the sum over the user's live sessions, whatever
// sequence of creates, patches and deletes two users run.
func TestCumulativeMatchesModelProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gdb, closeDB, err := dbtest.New()
		if err != nil {
			rt.Fatalf("open db: %v", err)
		}
		defer closeDB()

		ctx := context.Background()
		users := store.NewUserStore(gdb)
		owners := make([]uint, 2)
		for i, email := range []string{"one@x.com", "two@x.com"} {
			u, err := users.Register(ctx, "U", email, "hash")
			if err != nil {
				rt.Fatalf("register: %v", err)
			}
			owners[i] = u.ID
		}
		l := New(gdb, nil)

		type entry struct {
			owner   uint
			buyIn   decimal.Decimal
			cashOut decimal.Decimal
			buyIns  int
			deleted bool
		}
		model := map[uint]*entry{}
		var ids []uint
		cents := func(label string, lo int64) decimal.Decimal {
			return decimal.New(rapid.Int64Range(lo, 500_00).Draw(rt, label), -2)
		}

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			owner := owners[rapid.IntRange(0, 1).Draw(rt, "owner")]
			op := rapid.IntRange(0, 2).Draw(rt, "op")
			if len(ids) == 0 {
				op = 0
			}
			switch op {
			case 0:
				in := SessionInput{
					BuyInAmount: cents("buyIn", 1), CashOutAmount: cents("cashOut", 0),
					NumberOfBuyIns: rapid.IntRange(1, 5).Draw(rt, "buyIns"),
					Stakes:         "1/2", GameType: domain.GameNLH, Location: "L",
					SessionDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
				}
				s, _, err := l.Create(ctx, owner, in)
				if err != nil {
					rt.Fatalf("create: %v", err)
				}
				model[s.ID] = &entry{owner: owner, buyIn: in.BuyInAmount, cashOut: in.CashOutAmount, buyIns: in.NumberOfBuyIns}
				ids = append(ids, s.ID)
			case 1:
				id := rapid.SampledFrom(ids).Draw(rt, "id")
				e := model[id]
				cashOut := cents("newCashOut", 0)
				_, _, err := l.Update(ctx, owner, id, SessionPatch{CashOutAmount: &cashOut})
				if e.owner != owner || e.deleted {
					if err == nil {
						rt.Fatalf("update of foreign or deleted session %d succeeded", id)
					}
					continue
				}
				if err != nil {
					rt.Fatalf("update: %v", err)
				}
				e.cashOut = cashOut
			case 2:
				id := rapid.SampledFrom(ids).Draw(rt, "id")
				e := model[id]
				_, _, err := l.SoftDelete(ctx, owner, id)
				if e.owner != owner || e.deleted {
					if err == nil {
						rt.Fatalf("delete of foreign or deleted session %d succeeded", id)
					}
					continue
				}
				if err != nil {
					rt.Fatalf("delete: %v", err)
				}
				e.deleted = true
			}
		}

		for _, owner := range owners {
			want := decimal.Zero
			live := 0
			for _, e := range model {
				if e.owner == owner && !e.deleted {
					want = want.Add(domain.ComputeWinLoss(e.buyIn, e.cashOut, e.buyIns))
					live++
				}
			}
			sessions, got, err := l.List(ctx, owner)
			if err != nil {
				rt.Fatalf("list: %v", err)
			}
			if !got.Equal(want) {
				rt.Fatalf("user %d: cumulative %s, want %s", owner, got, want)
			}
			if len(sessions) != live {
				rt.Fatalf("user %d: %d sessions listed, want %d", owner, len(sessions), live)
			}
		}
	})
}
