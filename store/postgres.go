package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/utils"
)

// PostgresStore implements Store over database/sql. Update runs fn inside a
// SERIALIZABLE transaction so two concurrent approvals against the same pool
// cannot both pass the sufficiency check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Update(ctx context.Context, fn func(Tx) error) error {
	return s.transact(ctx, sql.LevelSerializable, false, fn)
}

func (s *PostgresStore) View(ctx context.Context, fn func(Tx) error) error {
	return s.transact(ctx, sql.LevelReadCommitted, true, fn)
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) transact(ctx context.Context, iso sql.IsolationLevel, readOnly bool, fn func(Tx) error) error {
	opts := &sql.TxOptions{Isolation: iso, ReadOnly: readOnly}
	return utils.WithTransaction(ctx, s.db, opts, func(tx *sql.Tx) error {
		return fn(&pgTx{ctx: ctx, tx: tx})
	})
}

type pgTx struct {
	ctx context.Context
	tx  *sql.Tx
}

const teamColumns = `id, name, leader_name, department_budget, student_budget,
	original_department_budget, original_student_budget`

func (t *pgTx) scanTeam(row *sql.Row) (*models.Team, error) {
	var team models.Team
	err := row.Scan(&team.ID, &team.Name, &team.LeaderName,
		&team.DepartmentBudget, &team.StudentBudget,
		&team.OriginalDepartmentBudget, &team.OriginalStudentBudget)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (t *pgTx) Team(id int64) (*models.Team, error) {
	return t.scanTeam(t.tx.QueryRowContext(t.ctx,
		`SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
}

func (t *pgTx) TeamByName(name string) (*models.Team, error) {
	return t.scanTeam(t.tx.QueryRowContext(t.ctx,
		`SELECT `+teamColumns+` FROM teams WHERE name = $1`, name))
}

func (t *pgTx) Teams() ([]*models.Team, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT `+teamColumns+` FROM teams ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LeaderName,
			&team.DepartmentBudget, &team.StudentBudget,
			&team.OriginalDepartmentBudget, &team.OriginalStudentBudget); err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	return teams, rows.Err()
}

func (t *pgTx) SaveTeam(team *models.Team) error {
	if team.ID == 0 {
		return t.tx.QueryRowContext(t.ctx, `
			INSERT INTO teams (name, leader_name, department_budget, student_budget,
				original_department_budget, original_student_budget)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, team.Name, team.LeaderName, team.DepartmentBudget, team.StudentBudget,
			team.OriginalDepartmentBudget, team.OriginalStudentBudget).Scan(&team.ID)
	}
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE teams
		SET name = $1, leader_name = $2, department_budget = $3, student_budget = $4,
			original_department_budget = $5, original_student_budget = $6
		WHERE id = $7
	`, team.Name, team.LeaderName, team.DepartmentBudget, team.StudentBudget,
		team.OriginalDepartmentBudget, team.OriginalStudentBudget, team.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const purchaseColumns = `id, team_id, item_name, quantity, estimated_cost,
	link, store, attachment, budget_type, created_at`

func scanPurchase(scan func(...any) error) (*models.Purchase, error) {
	var p models.Purchase
	var pool string
	err := scan(&p.ID, &p.TeamID, &p.ItemName, &p.Quantity, &p.EstimatedCost,
		&p.Link, &p.Store, &p.Attachment, &pool, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Pool = models.Pool(pool)
	return &p, nil
}

func (t *pgTx) Purchase(id int64) (*models.Purchase, error) {
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	return scanPurchase(row.Scan)
}

func (t *pgTx) Purchases() ([]*models.Purchase, error) {
	rows, err := t.tx.QueryContext(t.ctx,
		`SELECT `+purchaseColumns+` FROM purchases ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *pgTx) SavePurchase(p *models.Purchase) error {
	if p.ID == 0 {
		return t.tx.QueryRowContext(t.ctx, `
			INSERT INTO purchases (team_id, item_name, quantity, estimated_cost,
				link, store, attachment, budget_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, p.TeamID, p.ItemName, p.Quantity, p.EstimatedCost,
			p.Link, p.Store, p.Attachment, string(p.Pool), p.CreatedAt).Scan(&p.ID)
	}
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE purchases
		SET team_id = $1, item_name = $2, quantity = $3, estimated_cost = $4,
			link = $5, store = $6, attachment = $7, budget_type = $8
		WHERE id = $9
	`, p.TeamID, p.ItemName, p.Quantity, p.EstimatedCost,
		p.Link, p.Store, p.Attachment, string(p.Pool), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *pgTx) DeletePurchase(id int64) error {
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *pgTx) MultiPurchase(id int64) (*models.MultiPurchase, error) {
	var m models.MultiPurchase
	var pool string
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT id, team_id, store, total_cost, attachment, budget_type, created_at
		FROM multi_purchases WHERE id = $1
	`, id).Scan(&m.ID, &m.TeamID, &m.Store, &m.TotalCost, &m.Attachment, &pool, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Pool = models.Pool(pool)
	if err := t.loadItems(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *pgTx) MultiPurchases() ([]*models.MultiPurchase, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT id, team_id, store, total_cost, attachment, budget_type, created_at
		FROM multi_purchases ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MultiPurchase
	for rows.Next() {
		var m models.MultiPurchase
		var pool string
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Store, &m.TotalCost,
			&m.Attachment, &pool, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Pool = models.Pool(pool)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, m := range out {
		if err := t.loadItems(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (t *pgTx) loadItems(m *models.MultiPurchase) error {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT id, item_name, quantity, unit_price
		FROM multi_purchase_items WHERE multi_purchase_id = $1 ORDER BY id
	`, m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	m.Items = nil
	for rows.Next() {
		var item models.MultiPurchaseItem
		if err := rows.Scan(&item.ID, &item.ItemName, &item.Quantity, &item.UnitPrice); err != nil {
			return err
		}
		m.Items = append(m.Items, item)
	}
	return rows.Err()
}

func (t *pgTx) SaveMultiPurchase(m *models.MultiPurchase) error {
	if m.ID == 0 {
		err := t.tx.QueryRowContext(t.ctx, `
			INSERT INTO multi_purchases (team_id, store, total_cost, attachment, budget_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, m.TeamID, m.Store, m.TotalCost, m.Attachment, string(m.Pool), m.CreatedAt).Scan(&m.ID)
		if err != nil {
			return err
		}
		for i := range m.Items {
			item := &m.Items[i]
			err := t.tx.QueryRowContext(t.ctx, `
				INSERT INTO multi_purchase_items (multi_purchase_id, item_name, quantity, unit_price)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, m.ID, item.ItemName, item.Quantity, item.UnitPrice).Scan(&item.ID)
			if err != nil {
				return err
			}
		}
		return nil
	}
	// Line items are fixed at intake; updates only touch the parent row.
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE multi_purchases
		SET team_id = $1, store = $2, total_cost = $3, attachment = $4, budget_type = $5
		WHERE id = $6
	`, m.TeamID, m.Store, m.TotalCost, m.Attachment, string(m.Pool), m.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *pgTx) DeleteMultiPurchase(id int64) error {
	// Items go with the parent via ON DELETE CASCADE.
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM multi_purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *pgTx) OtherRequest(id int64) (*models.OtherRequest, error) {
	var r models.OtherRequest
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT id, team_id, content, approved, created_at
		FROM other_requests WHERE id = $1
	`, id).Scan(&r.ID, &r.TeamID, &r.Content, &r.Approved, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (t *pgTx) OtherRequests() ([]*models.OtherRequest, error) {
	rows, err := t.tx.QueryContext(t.ctx, `
		SELECT id, team_id, content, approved, created_at
		FROM other_requests ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.OtherRequest
	for rows.Next() {
		var r models.OtherRequest
		if err := rows.Scan(&r.ID, &r.TeamID, &r.Content, &r.Approved, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (t *pgTx) SaveOtherRequest(r *models.OtherRequest) error {
	if r.ID == 0 {
		return t.tx.QueryRowContext(t.ctx, `
			INSERT INTO other_requests (team_id, content, approved, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, r.TeamID, r.Content, r.Approved, r.CreatedAt).Scan(&r.ID)
	}
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE other_requests SET team_id = $1, content = $2, approved = $3 WHERE id = $4
	`, r.TeamID, r.Content, r.Approved, r.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (t *pgTx) DeleteOtherRequest(id int64) error {
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM other_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
