package api

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/finance-ledger/ledger"
	"github.com/warp/finance-ledger/ledger/store"
)

func TestAuditScheduler_RunNow(t *testing.T) {
	// GIVEN: two owners, one of whose balances drifted outside the engine
	ctx := context.Background()
	s := store.NewMemory()
	engine := ledger.NewEngine(s)

	alice, err := s.CreateAccount(ctx, ledger.Account{OwnerID: "alice", Name: "Cash", Currency: "USD", OpeningBalance: 100})
	require.NoError(t, err)
	bob, err := s.CreateAccount(ctx, ledger.Account{OwnerID: "bob", Name: "Cash", Currency: "USD"})
	require.NoError(t, err)
	_, err = engine.Create(ctx, "bob", ledger.Params{Kind: ledger.KindIncome, Date: 1, AccountID: bob.ID, AmountCents: 40})
	require.NoError(t, err)
	require.NoError(t, s.AddBalance(ctx, "alice", alice.ID, 5))

	logs := &bytes.Buffer{}
	scheduler := NewAuditScheduler(s, engine, time.Hour)
	scheduler.Logger = log.New(logs, "", 0)
	assert.Nil(t, scheduler.LastRun())

	// WHEN: running a pass
	run := scheduler.RunNow(ctx)

	// THEN: only alice is reported
	assert.Equal(t, 2, run.Owners)
	assert.False(t, run.Consistent())
	require.Len(t, run.Discrepancies, 1)
	assert.Equal(t, []ledger.Discrepancy{{AccountID: alice.ID, Stored: 105, Expected: 100}}, run.Discrepancies["alice"])
	assert.Contains(t, logs.String(), "owner=alice")
	assert.Equal(t, run.Owners, scheduler.LastRun().Owners)
}

type failingOwners struct{}

func (failingOwners) ListOwners(context.Context) ([]ledger.OwnerID, error) {
	return nil, errors.New("disk on fire")
}

func TestAuditScheduler_ListFailure(t *testing.T) {
	scheduler := NewAuditScheduler(failingOwners{}, ledger.NewEngine(store.NewMemory()), time.Hour)
	scheduler.Logger = log.New(&bytes.Buffer{}, "", 0)

	run := scheduler.RunNow(context.Background())
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.Consistent())
}

func TestAuditScheduler_StartStop(t *testing.T) {
	s := store.NewMemory()
	logs := &bytes.Buffer{}

	disabled := NewAuditScheduler(s, ledger.NewEngine(s), 0)
	disabled.Logger = log.New(logs, "", 0)
	disabled.Start()
	disabled.Stop()
	assert.Contains(t, logs.String(), "Disabled")

	scheduler := NewAuditScheduler(s, ledger.NewEngine(s), time.Hour)
	scheduler.Logger = log.New(&bytes.Buffer{}, "", 0)
	scheduler.Start()
	require.Eventually(t, func() bool { return scheduler.LastRun() != nil }, time.Second, 10*time.Millisecond)
	scheduler.Stop()
	assert.True(t, scheduler.LastRun().Consistent())
}
