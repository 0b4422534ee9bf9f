package models

// Binding structs for the HTTP layer. Team-initiated submissions carry the
// leader name claim that intake checks against the roster.

type CreatePurchaseInput struct {
	TeamName      string `json:"team_name" form:"team_name" binding:"required"`
	LeaderName    string `json:"leader_name" form:"leader_name"`
	ItemName      string `json:"item_name" form:"item_name" binding:"required"`
	Quantity      int64  `json:"quantity" form:"quantity" binding:"required"`
	EstimatedCost int64  `json:"estimated_cost" form:"estimated_cost"`
	Link          string `json:"link" form:"link"`
	Store         string `json:"store" form:"store" binding:"required"`
	Attachment    string `json:"-" form:"-"`
}

type LineItemInput struct {
	ItemName  string `json:"item_name" form:"item_name"`
	Quantity  int64  `json:"quantity" form:"quantity"`
	UnitPrice int64  `json:"unit_price" form:"unit_price"`
}

type CreateMultiPurchaseInput struct {
	TeamName   string          `json:"team_name" form:"team_name" binding:"required"`
	LeaderName string          `json:"leader_name" form:"leader_name"`
	Store      string          `json:"store" form:"store" binding:"required"`
	Items      []LineItemInput `json:"items" binding:"required"`
	Attachment string          `json:"-" form:"-"`
}

type CreateOtherRequestInput struct {
	TeamName   string `json:"team_name" form:"team_name" binding:"required"`
	LeaderName string `json:"leader_name" form:"leader_name"`
	Content    string `json:"content" form:"content" binding:"required"`
}

type CheckBalanceInput struct {
	TeamName   string `json:"team_name" form:"team_name" binding:"required"`
	LeaderName string `json:"leader_name" form:"leader_name"`
}

type ApproveInput struct {
	BudgetType string `json:"budget_type" form:"budget_type"`
}

type SetBudgetInput struct {
	DepartmentBudget *int64 `json:"department_budget" binding:"required"`
	StudentBudget    *int64 `json:"student_budget" binding:"required"`
}

type SetLeaderInput struct {
	LeaderName string `json:"leader_name" form:"leader_name"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExportRow is one line of the tabular dump: a single purchase, or one line
// item of a multi purchase (id formatted as M<parent>-<item>).
type ExportRow struct {
	ID         string `json:"id"`
	TeamName   string `json:"team_name"`
	LeaderName string `json:"leader_name"`
	ItemName   string `json:"item_name"`
	Quantity   int64  `json:"quantity"`
	Cost       int64  `json:"cost"`
	Store      string `json:"store"`
	BudgetType string `json:"budget_type"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Dashboard is everything the admin page shows in one payload.
type Dashboard struct {
	Summary        GlobalSummary   `json:"summary"`
	Pending        RequestList     `json:"pending"`
	Purchases      []*Purchase     `json:"purchases"`
	MultiPurchases []*MultiPurchase `json:"multi_purchases"`
	OtherRequests  []*OtherRequest `json:"other_requests"`
}

// BalanceInfo is the leader-gated balance view for one team.
type BalanceInfo struct {
	TeamName            string           `json:"team_name"`
	LeaderName          string           `json:"leader_name"`
	DepartmentBudget    int64            `json:"department_budget"`
	StudentBudget       int64            `json:"student_budget"`
	DepartmentRemaining int64            `json:"department_remaining"`
	StudentRemaining    int64            `json:"student_remaining"`
	Purchases           []*Purchase      `json:"purchases"`
	MultiPurchases      []*MultiPurchase `json:"multi_purchases"`
}
