package services

import (
	"context"

	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/store"
)

// MaxPoolBudget is the admin-settable ceiling per pool, in won.
const MaxPoolBudget = 10_000_000

// LedgerService owns the approval state machine and is the only component
// that mutates a team's current budget fields. Every operation that pairs a
// budget change with a request transition runs in one store.Update call, so
// it either fully applies or fully fails.
type LedgerService struct {
	store store.Store
}

func NewLedgerService(s store.Store) *LedgerService {
	return &LedgerService{store: s}
}

// debit checks pool sufficiency and takes cost from the team. The caller is
// inside a transaction; a returned error rolls everything back.
func debit(team *models.Team, pool models.Pool, cost int64) error {
	balance := team.PoolBalance(pool)
	if balance < cost {
		return ErrInsufficientBudget
	}
	team.SetPoolBalance(pool, balance-cost)
	return nil
}

func credit(team *models.Team, pool models.Pool, cost int64) {
	team.SetPoolBalance(pool, team.PoolBalance(pool)+cost)
}

// ApprovePurchase commits a pending purchase against the chosen pool,
// debiting the team. The pool must be supplied: requests are never
// auto-assigned one.
func (s *LedgerService) ApprovePurchase(ctx context.Context, id int64, pool models.Pool) error {
	if _, ok := models.ParsePool(string(pool)); !ok {
		return ErrInvalidInput
	}
	return s.store.Update(ctx, func(tx store.Tx) error {
		p, err := tx.Purchase(id)
		if err != nil {
			return notFound(err)
		}
		if p.Approved() {
			return ErrAlreadyApproved
		}
		team, err := tx.Team(p.TeamID)
		if err != nil {
			return notFound(err)
		}
		if err := debit(team, pool, p.Cost()); err != nil {
			return err
		}
		p.Pool = pool
		if err := tx.SaveTeam(team); err != nil {
			return err
		}
		return tx.SavePurchase(p)
	})
}

// CancelPurchase reverts an approval, crediting the pool it was charged to
// and returning the purchase to pending. A purchase that is not approved is
// rejected, never silently re-credited.
func (s *LedgerService) CancelPurchase(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		p, err := tx.Purchase(id)
		if err != nil {
			return notFound(err)
		}
		if !p.Approved() {
			return ErrNotApproved
		}
		team, err := tx.Team(p.TeamID)
		if err != nil {
			return notFound(err)
		}
		credit(team, p.Pool, p.Cost())
		p.Pool = models.PoolNone
		if err := tx.SaveTeam(team); err != nil {
			return err
		}
		return tx.SavePurchase(p)
	})
}

// DeletePurchase removes a purchase permanently. If it was approved, the
// credit and the removal happen in the same transaction, so the pool can
// never be credited twice: a second delete finds nothing.
func (s *LedgerService) DeletePurchase(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		p, err := tx.Purchase(id)
		if err != nil {
			return notFound(err)
		}
		if p.Approved() {
			team, err := tx.Team(p.TeamID)
			if err != nil {
				return notFound(err)
			}
			credit(team, p.Pool, p.Cost())
			if err := tx.SaveTeam(team); err != nil {
				return err
			}
		}
		return tx.DeletePurchase(id)
	})
}

// ApproveMultiPurchase approves a multi-item request as a single unit,
// debiting the stored total cost, not the per-item amounts.
func (s *LedgerService) ApproveMultiPurchase(ctx context.Context, id int64, pool models.Pool) error {
	if _, ok := models.ParsePool(string(pool)); !ok {
		return ErrInvalidInput
	}
	return s.store.Update(ctx, func(tx store.Tx) error {
		m, err := tx.MultiPurchase(id)
		if err != nil {
			return notFound(err)
		}
		if m.Approved() {
			return ErrAlreadyApproved
		}
		team, err := tx.Team(m.TeamID)
		if err != nil {
			return notFound(err)
		}
		if err := debit(team, pool, m.Cost()); err != nil {
			return err
		}
		m.Pool = pool
		if err := tx.SaveTeam(team); err != nil {
			return err
		}
		return tx.SaveMultiPurchase(m)
	})
}

func (s *LedgerService) CancelMultiPurchase(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		m, err := tx.MultiPurchase(id)
		if err != nil {
			return notFound(err)
		}
		if !m.Approved() {
			return ErrNotApproved
		}
		team, err := tx.Team(m.TeamID)
		if err != nil {
			return notFound(err)
		}
		credit(team, m.Pool, m.Cost())
		m.Pool = models.PoolNone
		if err := tx.SaveTeam(team); err != nil {
			return err
		}
		return tx.SaveMultiPurchase(m)
	})
}

// DeleteMultiPurchase credits the pool if the request was approved and
// removes the request together with all of its line items.
func (s *LedgerService) DeleteMultiPurchase(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		m, err := tx.MultiPurchase(id)
		if err != nil {
			return notFound(err)
		}
		if m.Approved() {
			team, err := tx.Team(m.TeamID)
			if err != nil {
				return notFound(err)
			}
			credit(team, m.Pool, m.Cost())
			if err := tx.SaveTeam(team); err != nil {
				return err
			}
		}
		return tx.DeleteMultiPurchase(id)
	})
}

// SetBudget sets both pools to new values, current and original alike. This
// is an authoritative reset: debits recorded against the old budget are
// deliberately discarded, matching how the admin re-budget has always
// behaved. Values outside [0, MaxPoolBudget] are rejected untouched.
func (s *LedgerService) SetBudget(ctx context.Context, teamID, department, student int64) error {
	if department < 0 || department > MaxPoolBudget || student < 0 || student > MaxPoolBudget {
		return ErrOutOfRange
	}
	return s.store.Update(ctx, func(tx store.Tx) error {
		team, err := tx.Team(teamID)
		if err != nil {
			return notFound(err)
		}
		team.DepartmentBudget = department
		team.OriginalDepartmentBudget = department
		team.StudentBudget = student
		team.OriginalStudentBudget = student
		return tx.SaveTeam(team)
	})
}

// TeamSummary reports the budget ceiling, committed spend and remainder for
// one team. Spent figures are summed from currently approved requests.
func (s *LedgerService) TeamSummary(ctx context.Context, teamID int64) (*models.TeamSummary, error) {
	var summary *models.TeamSummary
	err := s.store.View(ctx, func(tx store.Tx) error {
		team, err := tx.Team(teamID)
		if err != nil {
			return notFound(err)
		}
		sum, err := summarize(tx, team)
		if err != nil {
			return err
		}
		summary = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GlobalSummary sums TeamSummary across every team.
func (s *LedgerService) GlobalSummary(ctx context.Context) (*models.GlobalSummary, error) {
	var global models.GlobalSummary
	err := s.store.View(ctx, func(tx store.Tx) error {
		teams, err := tx.Teams()
		if err != nil {
			return err
		}
		for _, team := range teams {
			sum, err := summarize(tx, team)
			if err != nil {
				return err
			}
			global.Teams = append(global.Teams, *sum)
			global.TotalBudget += sum.TotalBudget
			global.TotalSpent += sum.TotalSpent
			global.TotalRemaining += sum.TotalRemaining
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &global, nil
}

func summarize(tx store.Tx, team *models.Team) (*models.TeamSummary, error) {
	purchases, err := tx.Purchases()
	if err != nil {
		return nil, err
	}
	multis, err := tx.MultiPurchases()
	if err != nil {
		return nil, err
	}

	sum := &models.TeamSummary{
		TeamID:      team.ID,
		TeamName:    team.Name,
		LeaderName:  team.LeaderName,
		TotalBudget: team.OriginalDepartmentBudget + team.OriginalStudentBudget,
	}
	for _, p := range purchases {
		if p.TeamID != team.ID || !p.Approved() {
			continue
		}
		if p.Pool == models.PoolDepartment {
			sum.DepartmentSpent += p.Cost()
		} else {
			sum.StudentSpent += p.Cost()
		}
	}
	for _, m := range multis {
		if m.TeamID != team.ID || !m.Approved() {
			continue
		}
		if m.Pool == models.PoolDepartment {
			sum.DepartmentSpent += m.Cost()
		} else {
			sum.StudentSpent += m.Cost()
		}
	}
	sum.TotalSpent = sum.DepartmentSpent + sum.StudentSpent
	sum.TotalRemaining = sum.TotalBudget - sum.TotalSpent
	sum.DepartmentRemaining = team.OriginalDepartmentBudget - sum.DepartmentSpent
	sum.StudentRemaining = team.OriginalStudentBudget - sum.StudentSpent
	return sum, nil
}

// ListPending returns every request still awaiting approval.
func (s *LedgerService) ListPending(ctx context.Context) (*models.RequestList, error) {
	return s.listByState(ctx, false)
}

// ListApproved returns every currently approved request.
func (s *LedgerService) ListApproved(ctx context.Context) (*models.RequestList, error) {
	return s.listByState(ctx, true)
}

func (s *LedgerService) listByState(ctx context.Context, approved bool) (*models.RequestList, error) {
	list := &models.RequestList{
		Purchases:      []*models.Purchase{},
		MultiPurchases: []*models.MultiPurchase{},
	}
	err := s.store.View(ctx, func(tx store.Tx) error {
		purchases, err := tx.Purchases()
		if err != nil {
			return err
		}
		for _, p := range purchases {
			if p.Approved() == approved {
				list.Purchases = append(list.Purchases, p)
			}
		}
		multis, err := tx.MultiPurchases()
		if err != nil {
			return err
		}
		for _, m := range multis {
			if m.Approved() == approved {
				list.MultiPurchases = append(list.MultiPurchases, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
