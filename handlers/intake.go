package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lbin817/MSE/models"
	"github.com/lbin817/MSE/services"
)

// MaxAttachmentSize caps quote/receipt uploads at 5 MiB.
const MaxAttachmentSize = 5 << 20

var allowedExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true,
	".gif": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
}

// IntakeHandler owns the team-facing submission endpoints and attachment
// storage. Services only ever see the stored filename.
type IntakeHandler struct {
	Intake    *services.IntakeService
	UploadDir string
}

func NewIntakeHandler(intake *services.IntakeService, uploadDir string) *IntakeHandler {
	return &IntakeHandler{Intake: intake, UploadDir: uploadDir}
}

// saveAttachment stores an optional uploaded file under a uuid-prefixed
// name and returns that name. No file means an empty name, not an error.
func (h *IntakeHandler) saveAttachment(c *gin.Context) (string, error) {
	file, err := c.FormFile("attachment")
	if err != nil {
		return "", nil
	}
	if file.Size > MaxAttachmentSize {
		return "", fmt.Errorf("attachment exceeds %d bytes", int64(MaxAttachmentSize))
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		return "", fmt.Errorf("attachment type %q is not allowed", ext)
	}

	name := uuid.New().String() + "_" + filepath.Base(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.UploadDir, name)); err != nil {
		return "", err
	}
	return name, nil
}

func (h *IntakeHandler) CreatePurchase(c *gin.Context) {
	var in models.CreatePurchaseInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	attachment, err := h.saveAttachment(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.Attachment = attachment

	purchase, err := h.Intake.CreatePurchase(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func (h *IntakeHandler) CreateMultiPurchase(c *gin.Context) {
	var in models.CreateMultiPurchaseInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	// Form submissions carry parallel item arrays, the JSON body a nested
	// list. Merge the form variant when present.
	if len(in.Items) == 0 {
		in.Items = lineItemsFromForm(c)
	}

	attachment, err := h.saveAttachment(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.Attachment = attachment

	multi, err := h.Intake.CreateMultiPurchase(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, multi)
}

// lineItemsFromForm parses the item_name[]/quantity[]/unit_price[] arrays
// of the classic HTML form. Rows that fail to parse are skipped; intake
// validates what remains.
func lineItemsFromForm(c *gin.Context) []models.LineItemInput {
	names := c.PostFormArray("item_name[]")
	quantities := c.PostFormArray("quantity[]")
	prices := c.PostFormArray("unit_price[]")

	var items []models.LineItemInput
	for i, name := range names {
		if i >= len(quantities) || i >= len(prices) {
			break
		}
		qty, err1 := parseInt(quantities[i])
		price, err2 := parseInt(prices[i])
		if err1 != nil || err2 != nil {
			continue
		}
		items = append(items, models.LineItemInput{ItemName: name, Quantity: qty, UnitPrice: price})
	}
	return items
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func (h *IntakeHandler) CreateOtherRequest(c *gin.Context) {
	var in models.CreateOtherRequestInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	req, err := h.Intake.CreateOtherRequest(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *IntakeHandler) ApproveOtherRequest(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Intake.ApproveOtherRequest(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request approved"})
}

func (h *IntakeHandler) DeleteOtherRequest(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.Intake.DeleteOtherRequest(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}

func (h *IntakeHandler) UpdateTeamLeader(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var in models.SetLeaderInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.Intake.UpdateTeamLeader(c.Request.Context(), id, in.LeaderName); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Team leader updated"})
}
