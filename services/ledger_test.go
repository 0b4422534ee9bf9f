package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/store"
)

func newTestStore(t *testing.T) (store.Store, *models.Team) {
	t.Helper()
	s := store.NewMemStore()
	team := &models.Team{
		Name:                     "1조",
		LeaderName:               "김조장",
		DepartmentBudget:         600000,
		StudentBudget:            500000,
		OriginalDepartmentBudget: 600000,
		OriginalStudentBudget:    500000,
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.SaveTeam(team)
	})
	if err != nil {
		t.Fatalf("seed team: %v", err)
	}
	return s, team
}

func addPurchase(t *testing.T, s store.Store, teamID, cost int64) *models.Purchase {
	t.Helper()
	p := &models.Purchase{
		TeamID:        teamID,
		ItemName:      "저항 키트",
		Quantity:      1,
		EstimatedCost: cost,
		Store:         "디바이스마트",
		CreatedAt:     time.Now(),
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.SavePurchase(p)
	})
	if err != nil {
		t.Fatalf("add purchase: %v", err)
	}
	return p
}

func addMultiPurchase(t *testing.T, s store.Store, teamID int64, items []models.MultiPurchaseItem) *models.MultiPurchase {
	t.Helper()
	var total int64
	for _, item := range items {
		total += item.Quantity * item.UnitPrice
	}
	m := &models.MultiPurchase{
		TeamID:    teamID,
		Store:     "4science",
		TotalCost: total,
		Items:     items,
		CreatedAt: time.Now(),
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.SaveMultiPurchase(m)
	})
	if err != nil {
		t.Fatalf("add multi purchase: %v", err)
	}
	return m
}

func getTeam(t *testing.T, s store.Store, id int64) *models.Team {
	t.Helper()
	var team *models.Team
	err := s.View(context.Background(), func(tx store.Tx) error {
		var err error
		team, err = tx.Team(id)
		return err
	})
	if err != nil {
		t.Fatalf("get team: %v", err)
	}
	return team
}

func getPurchase(t *testing.T, s store.Store, id int64) *models.Purchase {
	t.Helper()
	var p *models.Purchase
	err := s.View(context.Background(), func(tx store.Tx) error {
		var err error
		p, err = tx.Purchase(id)
		return err
	})
	if err != nil {
		t.Fatalf("get purchase: %v", err)
	}
	return p
}

func TestApprovePurchaseDebitsChosenPool(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 200000)

	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolStudent); err != nil {
		t.Fatalf("ApprovePurchase() error = %v", err)
	}

	got := getTeam(t, s, team.ID)
	if got.StudentBudget != 300000 {
		t.Errorf("student budget = %d, want 300000", got.StudentBudget)
	}
	if got.DepartmentBudget != 600000 {
		t.Errorf("department budget = %d, want 600000 (untouched)", got.DepartmentBudget)
	}
	if gotP := getPurchase(t, s, p.ID); gotP.Pool != models.PoolStudent || !gotP.Approved() {
		t.Errorf("purchase pool = %q, approved = %v", gotP.Pool, gotP.Approved())
	}
}

func TestApproveExactBalanceThenOneMore(t *testing.T) {
	// Scenario A: an approval may drain a pool to exactly zero, after which
	// even a 1-won request must be refused.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	first := addPurchase(t, s, team.ID, 600000)
	if err := ledger.ApprovePurchase(context.Background(), first.ID, models.PoolDepartment); err != nil {
		t.Fatalf("ApprovePurchase(cost == budget) error = %v", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 0 {
		t.Fatalf("department budget = %d, want 0", got.DepartmentBudget)
	}

	second := addPurchase(t, s, team.ID, 1)
	err := ledger.ApprovePurchase(context.Background(), second.ID, models.PoolDepartment)
	if !errors.Is(err, ErrInsufficientBudget) {
		t.Fatalf("ApprovePurchase() error = %v, want ErrInsufficientBudget", err)
	}
	if gotP := getPurchase(t, s, second.ID); gotP.Approved() {
		t.Error("failed approval must leave the purchase pending")
	}
}

func TestApproveBudgetPlusOneFailsWithoutMutation(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 600001)

	err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment)
	if !errors.Is(err, ErrInsufficientBudget) {
		t.Fatalf("ApprovePurchase() error = %v, want ErrInsufficientBudget", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 {
		t.Errorf("department budget = %d, want 600000 (no mutation)", got.DepartmentBudget)
	}
}

func TestApproveRequiresExplicitPool(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 1000)

	for _, pool := range []models.Pool{models.PoolNone, models.Pool("petty-cash")} {
		if err := ledger.ApprovePurchase(context.Background(), p.ID, pool); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ApprovePurchase(pool=%q) error = %v, want ErrInvalidInput", pool, err)
		}
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 || got.StudentBudget != 500000 {
		t.Error("rejected approvals must not touch budgets")
	}
}

func TestApproveUnknownPurchase(t *testing.T) {
	s, _ := newTestStore(t)
	ledger := NewLedgerService(s)

	if err := ledger.ApprovePurchase(context.Background(), 999, models.PoolDepartment); !errors.Is(err, ErrNotFound) {
		t.Errorf("ApprovePurchase(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestApproveTwiceRejected(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 1000)

	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolStudent); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("second approve error = %v, want ErrAlreadyApproved", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 599000 || got.StudentBudget != 500000 {
		t.Error("second approve must not debit again")
	}
}

func TestCancelRoundTripRestoresBudget(t *testing.T) {
	// Scenario B: approve 200000 on the student pool, then cancel.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 200000)

	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolStudent); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.StudentBudget != 300000 {
		t.Fatalf("student budget after approve = %d, want 300000", got.StudentBudget)
	}

	if err := ledger.CancelPurchase(context.Background(), p.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.StudentBudget != 500000 {
		t.Errorf("student budget after cancel = %d, want 500000", got.StudentBudget)
	}
	if gotP := getPurchase(t, s, p.ID); gotP.Approved() || gotP.Pool != models.PoolNone {
		t.Errorf("cancelled purchase pool = %q, want pending", gotP.Pool)
	}
}

func TestCancelPendingRejected(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 200000)

	if err := ledger.CancelPurchase(context.Background(), p.ID); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("CancelPurchase(pending) error = %v, want ErrNotApproved", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 || got.StudentBudget != 500000 {
		t.Error("rejected cancel must not touch budgets")
	}
}

func TestCancelTwiceRejectedNotReapplied(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 100000)

	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}
	if err := ledger.CancelPurchase(context.Background(), p.ID); err != nil {
		t.Fatal(err)
	}
	if err := ledger.CancelPurchase(context.Background(), p.ID); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("second cancel error = %v, want ErrNotApproved", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 {
		t.Errorf("department budget = %d, want 600000 (credited exactly once)", got.DepartmentBudget)
	}
}

func TestDeleteApprovedCreditsExactlyOnce(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 250000)

	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeletePurchase(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 {
		t.Errorf("department budget = %d, want 600000", got.DepartmentBudget)
	}

	if err := ledger.DeletePurchase(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 {
		t.Errorf("department budget after second delete = %d, want 600000 (no double credit)", got.DepartmentBudget)
	}
}

func TestDeletePendingHasNoBudgetEffect(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 250000)

	if err := ledger.DeletePurchase(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 || got.StudentBudget != 500000 {
		t.Error("deleting a pending purchase must not touch budgets")
	}
}

func TestMultiPurchaseApprovedAsSingleUnit(t *testing.T) {
	// Scenario C: items (2 × 1000) and (1 × 500) debit 2500 once, not per line.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	m := addMultiPurchase(t, s, team.ID, []models.MultiPurchaseItem{
		{ItemName: "브레드보드", Quantity: 2, UnitPrice: 1000},
		{ItemName: "점퍼 케이블", Quantity: 1, UnitPrice: 500},
	})
	if m.TotalCost != 2500 {
		t.Fatalf("total cost = %d, want 2500", m.TotalCost)
	}

	if err := ledger.ApproveMultiPurchase(context.Background(), m.ID, models.PoolDepartment); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 597500 {
		t.Errorf("department budget = %d, want 597500", got.DepartmentBudget)
	}

	if err := ledger.CancelMultiPurchase(context.Background(), m.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 {
		t.Errorf("department budget after cancel = %d, want 600000", got.DepartmentBudget)
	}
}

func TestDeleteMultiPurchaseRemovesItems(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	m := addMultiPurchase(t, s, team.ID, []models.MultiPurchaseItem{
		{ItemName: "시약", Quantity: 1, UnitPrice: 30000},
	})

	if err := ledger.ApproveMultiPurchase(context.Background(), m.ID, models.PoolStudent); err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeleteMultiPurchase(context.Background(), m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := getTeam(t, s, team.ID); got.StudentBudget != 500000 {
		t.Errorf("student budget = %d, want 500000", got.StudentBudget)
	}
	err := s.View(context.Background(), func(tx store.Tx) error {
		_, err := tx.MultiPurchase(m.ID)
		return err
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("multi purchase lookup after delete = %v, want store.ErrNotFound", err)
	}
}

func TestSetBudgetResetsCurrentAndOriginal(t *testing.T) {
	// Scenario D: a manual re-budget is an authoritative reset that forgets
	// earlier debits.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)
	p := addPurchase(t, s, team.ID, 300000)
	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}

	if err := ledger.SetBudget(context.Background(), team.ID, 700000, 500000); err != nil {
		t.Fatalf("SetBudget() error = %v", err)
	}
	got := getTeam(t, s, team.ID)
	if got.DepartmentBudget != 700000 || got.OriginalDepartmentBudget != 700000 {
		t.Errorf("department = %d/%d, want 700000/700000", got.DepartmentBudget, got.OriginalDepartmentBudget)
	}
	if got.StudentBudget != 500000 || got.OriginalStudentBudget != 500000 {
		t.Errorf("student = %d/%d, want 500000/500000", got.StudentBudget, got.OriginalStudentBudget)
	}
}

func TestSetBudgetOutOfRange(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	cases := []struct{ dept, student int64 }{
		{-1, 500000},
		{600000, -1},
		{10000001, 500000},
		{600000, 10000001},
	}
	for _, tc := range cases {
		if err := ledger.SetBudget(context.Background(), team.ID, tc.dept, tc.student); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetBudget(%d, %d) error = %v, want ErrOutOfRange", tc.dept, tc.student, err)
		}
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 600000 || got.StudentBudget != 500000 {
		t.Error("rejected SetBudget must not touch budgets")
	}

	// Ceiling itself is allowed.
	if err := ledger.SetBudget(context.Background(), team.ID, MaxPoolBudget, 0); err != nil {
		t.Errorf("SetBudget(MaxPoolBudget, 0) error = %v", err)
	}
}

func TestSetBudgetUnknownTeam(t *testing.T) {
	s, _ := newTestStore(t)
	ledger := NewLedgerService(s)

	if err := ledger.SetBudget(context.Background(), 999, 1000, 1000); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBudget(unknown team) error = %v, want ErrNotFound", err)
	}
}

func TestTeamSummaryMatchesLedger(t *testing.T) {
	// The standing invariant: current pool = original − Σ approved costs.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	p1 := addPurchase(t, s, team.ID, 100000)
	p2 := addPurchase(t, s, team.ID, 50000)
	m := addMultiPurchase(t, s, team.ID, []models.MultiPurchaseItem{
		{ItemName: "납땜 세트", Quantity: 3, UnitPrice: 10000},
	})

	if err := ledger.ApprovePurchase(context.Background(), p1.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}
	if err := ledger.ApprovePurchase(context.Background(), p2.ID, models.PoolStudent); err != nil {
		t.Fatal(err)
	}
	if err := ledger.ApproveMultiPurchase(context.Background(), m.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}

	sum, err := ledger.TeamSummary(context.Background(), team.ID)
	if err != nil {
		t.Fatalf("TeamSummary() error = %v", err)
	}
	if sum.TotalBudget != 1100000 {
		t.Errorf("total budget = %d, want 1100000", sum.TotalBudget)
	}
	if sum.DepartmentSpent != 130000 || sum.StudentSpent != 50000 {
		t.Errorf("spent = %d/%d, want 130000/50000", sum.DepartmentSpent, sum.StudentSpent)
	}
	if sum.TotalSpent != 180000 || sum.TotalRemaining != 920000 {
		t.Errorf("total spent/remaining = %d/%d, want 180000/920000", sum.TotalSpent, sum.TotalRemaining)
	}

	got := getTeam(t, s, team.ID)
	if got.DepartmentBudget != got.OriginalDepartmentBudget-sum.DepartmentSpent {
		t.Errorf("department pool drifted: current %d, original %d, spent %d",
			got.DepartmentBudget, got.OriginalDepartmentBudget, sum.DepartmentSpent)
	}
	if got.StudentBudget != got.OriginalStudentBudget-sum.StudentSpent {
		t.Errorf("student pool drifted: current %d, original %d, spent %d",
			got.StudentBudget, got.OriginalStudentBudget, sum.StudentSpent)
	}
}

func TestGlobalSummarySumsTeams(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	second := &models.Team{
		Name:                     "2조",
		DepartmentBudget:         700000,
		StudentBudget:            500000,
		OriginalDepartmentBudget: 700000,
		OriginalStudentBudget:    500000,
	}
	if err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.SaveTeam(second)
	}); err != nil {
		t.Fatal(err)
	}

	p := addPurchase(t, s, team.ID, 100000)
	if err := ledger.ApprovePurchase(context.Background(), p.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}

	global, err := ledger.GlobalSummary(context.Background())
	if err != nil {
		t.Fatalf("GlobalSummary() error = %v", err)
	}
	if len(global.Teams) != 2 {
		t.Fatalf("teams in summary = %d, want 2", len(global.Teams))
	}
	if global.TotalBudget != 2300000 {
		t.Errorf("total budget = %d, want 2300000", global.TotalBudget)
	}
	if global.TotalSpent != 100000 || global.TotalRemaining != 2200000 {
		t.Errorf("spent/remaining = %d/%d, want 100000/2200000", global.TotalSpent, global.TotalRemaining)
	}
}

func TestListPendingAndApproved(t *testing.T) {
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	p1 := addPurchase(t, s, team.ID, 1000)
	addPurchase(t, s, team.ID, 2000)
	m := addMultiPurchase(t, s, team.ID, []models.MultiPurchaseItem{
		{ItemName: "부품", Quantity: 1, UnitPrice: 5000},
	})

	if err := ledger.ApprovePurchase(context.Background(), p1.ID, models.PoolDepartment); err != nil {
		t.Fatal(err)
	}

	pending, err := ledger.ListPending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(pending.Purchases) != 1 || len(pending.MultiPurchases) != 1 {
		t.Errorf("pending = %d purchases, %d multi; want 1, 1", len(pending.Purchases), len(pending.MultiPurchases))
	}

	approved, err := ledger.ListApproved(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(approved.Purchases) != 1 || approved.Purchases[0].ID != p1.ID {
		t.Errorf("approved purchases = %v, want just %d", approved.Purchases, p1.ID)
	}
	if len(approved.MultiPurchases) != 0 {
		t.Errorf("approved multi purchases = %d, want 0", len(approved.MultiPurchases))
	}
	_ = m
}

func TestConcurrentApprovalsCannotOverdraw(t *testing.T) {
	// Two approvals whose combined cost exceeds the pool: exactly one may
	// pass the sufficiency check.
	s, team := newTestStore(t)
	ledger := NewLedgerService(s)

	p1 := addPurchase(t, s, team.ID, 400000)
	p2 := addPurchase(t, s, team.ID, 400000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{p1.ID, p2.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = ledger.ApprovePurchase(context.Background(), id, models.PoolDepartment)
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientBudget):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("got %d successes and %d refusals, want exactly 1 of each", ok, insufficient)
	}
	if got := getTeam(t, s, team.ID); got.DepartmentBudget != 200000 {
		t.Errorf("department budget = %d, want 200000 (single debit)", got.DepartmentBudget)
	}
}
