// Package store is the durable record store for teams and requests.
// Every ledger mutation runs inside a single Update call so that budget
// arithmetic and request state always change together or not at all.
package store

import (
	"context"
	"errors"

	"github.com/lbin817/MSE/models"
)

// ErrNotFound is returned by Tx lookups when no record matches.
var ErrNotFound = errors.New("store: record not found")

// Tx is the record access available inside a transaction. Save inserts when
// the record's ID is zero (assigning a new one) and updates otherwise.
type Tx interface {
	Team(id int64) (*models.Team, error)
	TeamByName(name string) (*models.Team, error)
	Teams() ([]*models.Team, error)
	SaveTeam(t *models.Team) error

	Purchase(id int64) (*models.Purchase, error)
	Purchases() ([]*models.Purchase, error)
	SavePurchase(p *models.Purchase) error
	DeletePurchase(id int64) error

	MultiPurchase(id int64) (*models.MultiPurchase, error)
	MultiPurchases() ([]*models.MultiPurchase, error)
	SaveMultiPurchase(m *models.MultiPurchase) error
	DeleteMultiPurchase(id int64) error

	OtherRequest(id int64) (*models.OtherRequest, error)
	OtherRequests() ([]*models.OtherRequest, error)
	SaveOtherRequest(r *models.OtherRequest) error
	DeleteOtherRequest(id int64) error
}

// Store runs transactions over the records. Update is atomic and at least
// serializable over the records it touches: if fn returns an error, none of
// its writes are visible afterwards.
type Store interface {
	Update(ctx context.Context, fn func(Tx) error) error
	View(ctx context.Context, fn func(Tx) error) error
	Close() error
}

// Seed inserts the given teams unless a team with the same name already
// exists. Returns how many were added. Existing rosters are left untouched.
func Seed(ctx context.Context, s Store, teams []*models.Team) (int, error) {
	added := 0
	err := s.Update(ctx, func(tx Tx) error {
		for _, t := range teams {
			_, err := tx.TeamByName(t.Name)
			if err == nil {
				continue
			}
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			seed := *t
			seed.ID = 0
			if err := tx.SaveTeam(&seed); err != nil {
				return err
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
