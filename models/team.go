package models

// Pool identifies which earmarked budget a request is charged against.
// A request with PoolNone is pending; a request with a concrete pool is
// approved. Keeping the two facts in one field makes the
// "approved ⇔ pool assigned" invariant structural.
type Pool string

const (
	PoolNone       Pool = ""
	PoolDepartment Pool = "department"
	PoolStudent    Pool = "student"
)

// ParsePool accepts the two concrete pool names. Anything else, including
// the empty string, is rejected: approvals must name a pool explicitly.
func ParsePool(s string) (Pool, bool) {
	switch Pool(s) {
	case PoolDepartment, PoolStudent:
		return Pool(s), true
	}
	return PoolNone, false
}

// Label returns the display name used in exports and the admin dashboard.
func (p Pool) Label() string {
	switch p {
	case PoolDepartment:
		return "학과지원사업"
	case PoolStudent:
		return "학생지원사업"
	}
	return "미선택"
}

// Team is one course team with its two budget pools. The Original* fields
// hold the ceiling as last set by the admin and are only touched by
// SetBudget; the current fields are debited and credited by the ledger
// engine as requests move through the approval state machine.
type Team struct {
	ID                       int64  `json:"id"`
	Name                     string `json:"name"`
	LeaderName               string `json:"leader_name"`
	DepartmentBudget         int64  `json:"department_budget"`
	StudentBudget            int64  `json:"student_budget"`
	OriginalDepartmentBudget int64  `json:"original_department_budget"`
	OriginalStudentBudget    int64  `json:"original_student_budget"`
}

// PoolBalance returns the current remaining amount for a pool.
func (t *Team) PoolBalance(p Pool) int64 {
	if p == PoolStudent {
		return t.StudentBudget
	}
	return t.DepartmentBudget
}

// SetPoolBalance overwrites the current remaining amount for a pool.
func (t *Team) SetPoolBalance(p Pool, amount int64) {
	if p == PoolStudent {
		t.StudentBudget = amount
		return
	}
	t.DepartmentBudget = amount
}

// TeamSummary is the per-team reporting view: ceilings, committed spend and
// what is left, overall and per pool.
type TeamSummary struct {
	TeamID              int64  `json:"team_id"`
	TeamName            string `json:"team_name"`
	LeaderName          string `json:"leader_name"`
	TotalBudget         int64  `json:"total_budget"`
	TotalSpent          int64  `json:"total_spent"`
	TotalRemaining      int64  `json:"total_remaining"`
	DepartmentSpent     int64  `json:"department_spent"`
	StudentSpent        int64  `json:"student_spent"`
	DepartmentRemaining int64  `json:"department_remaining"`
	StudentRemaining    int64  `json:"student_remaining"`
}

// GlobalSummary aggregates TeamSummary across every team.
type GlobalSummary struct {
	TotalBudget    int64         `json:"total_budget"`
	TotalSpent     int64         `json:"total_spent"`
	TotalRemaining int64         `json:"total_remaining"`
	Teams          []TeamSummary `json:"teams"`
}
