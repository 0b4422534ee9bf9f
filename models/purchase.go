package models

import "time"

// Purchase is a single-item purchase request. Pool doubles as the approval
// state: PoolNone while pending, the charged pool once approved.
type Purchase struct {
	ID            int64     `json:"id"`
	TeamID        int64     `json:"team_id"`
	ItemName      string    `json:"item_name"`
	Quantity      int64     `json:"quantity"`
	EstimatedCost int64     `json:"estimated_cost"`
	Link          string    `json:"link"`
	Store         string    `json:"store"`
	Attachment    string    `json:"attachment,omitempty"`
	Pool          Pool      `json:"budget_type"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *Purchase) Approved() bool { return p.Pool != PoolNone }

// Cost is the amount the ledger debits or credits for this request.
func (p *Purchase) Cost() int64 { return p.EstimatedCost }

// MultiPurchaseItem is one line of a multi-item request. Items belong to
// exactly one parent and are removed with it.
type MultiPurchaseItem struct {
	ID        int64  `json:"id"`
	ItemName  string `json:"item_name"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// MultiPurchase is a purchase request made of several line items that are
// approved as one unit. TotalCost is fixed at intake time and is the
// authoritative amount for ledger arithmetic; it is never recomputed from
// the items afterwards.
type MultiPurchase struct {
	ID         int64               `json:"id"`
	TeamID     int64               `json:"team_id"`
	Store      string              `json:"store"`
	TotalCost  int64               `json:"total_cost"`
	Attachment string              `json:"attachment,omitempty"`
	Pool       Pool                `json:"budget_type"`
	Items      []MultiPurchaseItem `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func (m *MultiPurchase) Approved() bool { return m.Pool != PoolNone }

func (m *MultiPurchase) Cost() int64 { return m.TotalCost }

// OtherRequest is a free-text request with no budget effect. Its approved
// flag is informational and never reaches the ledger engine.
type OtherRequest struct {
	ID        int64     `json:"id"`
	TeamID    int64     `json:"team_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestList groups both request kinds for the pending/approved queues.
type RequestList struct {
	Purchases      []*Purchase      `json:"purchases"`
	MultiPurchases []*MultiPurchase `json:"multi_purchases"`
}
