package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/store"
)

// ReportService is the read-only aggregation over the store: the admin
// dashboard, the leader-gated balance view and the CSV export.
type ReportService struct {
	store  store.Store
	ledger *LedgerService
}

func NewReportService(s store.Store, ledger *LedgerService) *ReportService {
	return &ReportService{store: s, ledger: ledger}
}

const exportTimeFormat = "2006-01-02 15:04"

func statusLabel(approved bool) string {
	if approved {
		return "승인됨"
	}
	return "대기중"
}

func leaderLabel(name string) string {
	if name == "" {
		return "미설정"
	}
	return name
}

// ExportRows flattens every request into tabular rows: one per single
// purchase, one per line item of each multi purchase with the id formatted
// as M<parent>-<item>.
func (s *ReportService) ExportRows(ctx context.Context) ([]models.ExportRow, error) {
	return s.exportRows(ctx, 0)
}

// ExportTeamRows is ExportRows restricted to a single team.
func (s *ReportService) ExportTeamRows(ctx context.Context, teamID int64) ([]models.ExportRow, error) {
	if teamID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.exportRows(ctx, teamID)
}

func (s *ReportService) exportRows(ctx context.Context, teamID int64) ([]models.ExportRow, error) {
	rows := []models.ExportRow{}
	err := s.store.View(ctx, func(tx store.Tx) error {
		teams, err := tx.Teams()
		if err != nil {
			return err
		}
		byID := make(map[int64]*models.Team, len(teams))
		for _, t := range teams {
			byID[t.ID] = t
		}
		if teamID != 0 {
			if _, ok := byID[teamID]; !ok {
				return ErrNotFound
			}
		}

		purchases, err := tx.Purchases()
		if err != nil {
			return err
		}
		for _, p := range purchases {
			if teamID != 0 && p.TeamID != teamID {
				continue
			}
			team := byID[p.TeamID]
			if team == nil {
				continue
			}
			rows = append(rows, models.ExportRow{
				ID:         strconv.FormatInt(p.ID, 10),
				TeamName:   team.Name,
				LeaderName: leaderLabel(team.LeaderName),
				ItemName:   p.ItemName,
				Quantity:   p.Quantity,
				Cost:       p.EstimatedCost,
				Store:      p.Store,
				BudgetType: p.Pool.Label(),
				Status:     statusLabel(p.Approved()),
				CreatedAt:  p.CreatedAt.Format(exportTimeFormat),
			})
		}

		multis, err := tx.MultiPurchases()
		if err != nil {
			return err
		}
		for _, m := range multis {
			if teamID != 0 && m.TeamID != teamID {
				continue
			}
			team := byID[m.TeamID]
			if team == nil {
				continue
			}
			for _, item := range m.Items {
				rows = append(rows, models.ExportRow{
					ID:         fmt.Sprintf("M%d-%d", m.ID, item.ID),
					TeamName:   team.Name,
					LeaderName: leaderLabel(team.LeaderName),
					ItemName:   item.ItemName,
					Quantity:   item.Quantity,
					Cost:       item.UnitPrice * item.Quantity,
					Store:      m.Store,
					BudgetType: m.Pool.Label(),
					Status:     statusLabel(m.Approved()),
					CreatedAt:  m.CreatedAt.Format(exportTimeFormat),
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var exportHeader = []string{"ID", "조 번호", "조장", "품목명", "수량", "예상비용", "쇼핑몰", "예산유형", "상태", "요청일시"}

// WriteCSV renders rows as CSV preceded by a UTF-8 BOM so spreadsheet
// software picks up the Korean labels correctly.
func WriteCSV(w io.Writer, rows []models.ExportRow) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.TeamName,
			r.LeaderName,
			r.ItemName,
			strconv.FormatInt(r.Quantity, 10),
			strconv.FormatInt(r.Cost, 10),
			r.Store,
			r.BudgetType,
			r.Status,
			r.CreatedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CheckBalance is the team-facing balance view, gated by the leader claim.
func (s *ReportService) CheckBalance(ctx context.Context, in models.CheckBalanceInput) (*models.BalanceInfo, error) {
	var info *models.BalanceInfo
	err := s.store.View(ctx, func(tx store.Tx) error {
		team, err := authorizeTeam(tx, in.TeamName, in.LeaderName)
		if err != nil {
			return err
		}
		sum, err := summarize(tx, team)
		if err != nil {
			return err
		}
		info = &models.BalanceInfo{
			TeamName:            team.Name,
			LeaderName:          team.LeaderName,
			DepartmentBudget:    team.OriginalDepartmentBudget,
			StudentBudget:       team.OriginalStudentBudget,
			DepartmentRemaining: sum.DepartmentRemaining,
			StudentRemaining:    sum.StudentRemaining,
			Purchases:           []*models.Purchase{},
			MultiPurchases:      []*models.MultiPurchase{},
		}
		purchases, err := tx.Purchases()
		if err != nil {
			return err
		}
		for _, p := range purchases {
			if p.TeamID == team.ID && p.Approved() {
				info.Purchases = append(info.Purchases, p)
			}
		}
		multis, err := tx.MultiPurchases()
		if err != nil {
			return err
		}
		for _, m := range multis {
			if m.TeamID == team.ID && m.Approved() {
				info.MultiPurchases = append(info.MultiPurchases, m)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Dashboard is the one-call payload behind the admin page: global summary,
// pending queues, full histories and the other-request list.
func (s *ReportService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	summary, err := s.ledger.GlobalSummary(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.ledger.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	dash := &models.Dashboard{
		Summary: *summary,
		Pending: *pending,
	}
	err = s.store.View(ctx, func(tx store.Tx) error {
		if dash.Purchases, err = tx.Purchases(); err != nil {
			return err
		}
		if dash.MultiPurchases, err = tx.MultiPurchases(); err != nil {
			return err
		}
		if dash.OtherRequests, err = tx.OtherRequests(); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dash, nil
}
