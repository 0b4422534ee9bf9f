package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/services"
)

// LedgerHandler exposes the approval state machine to the admin UI.
type LedgerHandler struct {
	Ledger *services.LedgerService
	WS     *WSHandler
}

func NewLedgerHandler(ledger *services.LedgerService, ws *WSHandler) *LedgerHandler {
	return &LedgerHandler{Ledger: ledger, WS: ws}
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// bindPool reads the budget_type field from form or JSON body. An empty or
// unknown pool is rejected: approvals must name a pool.
func bindPool(c *gin.Context) (models.Pool, bool) {
	var in models.ApproveInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return models.PoolNone, false
	}
	pool, ok := models.ParsePool(in.BudgetType)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a budget type"})
		return models.PoolNone, false
	}
	return pool, true
}

func (h *LedgerHandler) ApprovePurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pool, ok := bindPool(c)
	if !ok {
		return
	}
	if err := h.Ledger.ApprovePurchase(c.Request.Context(), id, pool); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("purchase_approved", id)
	c.JSON(http.StatusOK, gin.H{"message": "Purchase approved"})
}

func (h *LedgerHandler) CancelPurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Ledger.CancelPurchase(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("purchase_cancelled", id)
	c.JSON(http.StatusOK, gin.H{"message": "Approval cancelled"})
}

func (h *LedgerHandler) DeletePurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Ledger.DeletePurchase(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("purchase_deleted", id)
	c.JSON(http.StatusOK, gin.H{"message": "Purchase deleted"})
}

func (h *LedgerHandler) ApproveMultiPurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pool, ok := bindPool(c)
	if !ok {
		return
	}
	if err := h.Ledger.ApproveMultiPurchase(c.Request.Context(), id, pool); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("multi_purchase_approved", id)
	c.JSON(http.StatusOK, gin.H{"message": "Multi-item purchase approved"})
}

func (h *LedgerHandler) CancelMultiPurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Ledger.CancelMultiPurchase(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("multi_purchase_cancelled", id)
	c.JSON(http.StatusOK, gin.H{"message": "Approval cancelled"})
}

func (h *LedgerHandler) DeleteMultiPurchase(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Ledger.DeleteMultiPurchase(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("multi_purchase_deleted", id)
	c.JSON(http.StatusOK, gin.H{"message": "Multi-item purchase deleted"})
}

// SetBudget resets both pools for a team, current and original together.
// Non-numeric values fail JSON binding and come back as invalid input.
func (h *LedgerHandler) SetBudget(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in models.SetBudgetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.Ledger.SetBudget(c.Request.Context(), id, *in.DepartmentBudget, *in.StudentBudget); err != nil {
		respondServiceError(c, err)
		return
	}
	h.WS.BroadcastLedgerEvent("budget_set", id)
	c.JSON(http.StatusOK, gin.H{"message": "Budget updated"})
}

func (h *LedgerHandler) ListPending(c *gin.Context) {
	list, err := h.Ledger.ListPending(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *LedgerHandler) ListApproved(c *gin.Context) {
	list, err := h.Ledger.ListApproved(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *LedgerHandler) TeamSummary(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	summary, err := h.Ledger.TeamSummary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *LedgerHandler) GlobalSummary(c *gin.Context) {
	summary, err := h.Ledger.GlobalSummary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
