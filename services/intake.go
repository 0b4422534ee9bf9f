package services

import (
	"context"
	"strings"
	"time"

	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/store"
)

// IntakeService validates and creates new requests. The leader-name claim is
// the shared-secret identity check for team-initiated actions; intake never
// touches budget fields.
type IntakeService struct {
	store store.Store
}

func NewIntakeService(s store.Store) *IntakeService {
	return &IntakeService{store: s}
}

// authorizeTeam resolves the team by name and checks the leader claim.
func authorizeTeam(tx store.Tx, teamName, leaderClaim string) (*models.Team, error) {
	team, err := tx.TeamByName(teamName)
	if err != nil {
		return nil, notFound(err)
	}
	if team.LeaderName != leaderClaim {
		return nil, ErrIdentityMismatch
	}
	return team, nil
}

// CreatePurchase records a single-item request in the pending state.
func (s *IntakeService) CreatePurchase(ctx context.Context, in models.CreatePurchaseInput) (*models.Purchase, error) {
	if strings.TrimSpace(in.ItemName) == "" || strings.TrimSpace(in.Store) == "" {
		return nil, ErrInvalidInput
	}
	if in.Quantity < 1 || in.EstimatedCost < 0 {
		return nil, ErrInvalidInput
	}

	var purchase *models.Purchase
	err := s.store.Update(ctx, func(tx store.Tx) error {
		team, err := authorizeTeam(tx, in.TeamName, in.LeaderName)
		if err != nil {
			return err
		}
		purchase = &models.Purchase{
			TeamID:        team.ID,
			ItemName:      strings.TrimSpace(in.ItemName),
			Quantity:      in.Quantity,
			EstimatedCost: in.EstimatedCost,
			Link:          strings.TrimSpace(in.Link),
			Store:         strings.TrimSpace(in.Store),
			Attachment:    in.Attachment,
			Pool:          models.PoolNone,
			CreatedAt:     time.Now().UTC(),
		}
		return tx.SavePurchase(purchase)
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// CreateMultiPurchase records a multi-item request. Lines without an item
// name are dropped, the rest are validated, and the total is computed here
// once; the ledger later debits that stored total as a single unit.
func (s *IntakeService) CreateMultiPurchase(ctx context.Context, in models.CreateMultiPurchaseInput) (*models.MultiPurchase, error) {
	if strings.TrimSpace(in.Store) == "" {
		return nil, ErrInvalidInput
	}

	var items []models.MultiPurchaseItem
	var total int64
	for _, line := range in.Items {
		name := strings.TrimSpace(line.ItemName)
		if name == "" {
			continue
		}
		if line.Quantity < 1 || line.UnitPrice < 0 {
			return nil, ErrInvalidInput
		}
		items = append(items, models.MultiPurchaseItem{
			ItemName:  name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
		total += line.Quantity * line.UnitPrice
	}
	if len(items) == 0 {
		return nil, ErrInvalidInput
	}

	var multi *models.MultiPurchase
	err := s.store.Update(ctx, func(tx store.Tx) error {
		team, err := authorizeTeam(tx, in.TeamName, in.LeaderName)
		if err != nil {
			return err
		}
		multi = &models.MultiPurchase{
			TeamID:     team.ID,
			Store:      strings.TrimSpace(in.Store),
			TotalCost:  total,
			Attachment: in.Attachment,
			Pool:       models.PoolNone,
			Items:      items,
			CreatedAt:  time.Now().UTC(),
		}
		return tx.SaveMultiPurchase(multi)
	})
	if err != nil {
		return nil, err
	}
	return multi, nil
}

// CreateOtherRequest records a free-text request. It never affects budgets.
func (s *IntakeService) CreateOtherRequest(ctx context.Context, in models.CreateOtherRequestInput) (*models.OtherRequest, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrInvalidInput
	}

	var req *models.OtherRequest
	err := s.store.Update(ctx, func(tx store.Tx) error {
		team, err := authorizeTeam(tx, in.TeamName, in.LeaderName)
		if err != nil {
			return err
		}
		req = &models.OtherRequest{
			TeamID:    team.ID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		return tx.SaveOtherRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApproveOtherRequest flips the informational flag. No ledger involvement.
func (s *IntakeService) ApproveOtherRequest(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		req, err := tx.OtherRequest(id)
		if err != nil {
			return notFound(err)
		}
		if req.Approved {
			return ErrAlreadyApproved
		}
		req.Approved = true
		return tx.SaveOtherRequest(req)
	})
}

// DeleteOtherRequest removes a free-text request.
func (s *IntakeService) DeleteOtherRequest(ctx context.Context, id int64) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		if err := tx.DeleteOtherRequest(id); err != nil {
			return notFound(err)
		}
		return nil
	})
}

// UpdateTeamLeader sets the leader name used by the identity gate. Admin
// metadata only; budgets are untouched.
func (s *IntakeService) UpdateTeamLeader(ctx context.Context, teamID int64, leaderName string) error {
	return s.store.Update(ctx, func(tx store.Tx) error {
		team, err := tx.Team(teamID)
		if err != nil {
			return notFound(err)
		}
		team.LeaderName = strings.TrimSpace(leaderName)
		return tx.SaveTeam(team)
	})
}
