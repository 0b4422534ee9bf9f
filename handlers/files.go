package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// FileHandler serves stored attachments back to the admin.
type FileHandler struct {
	UploadDir string
}

func (h *FileHandler) Download(c *gin.Context) {
	name := c.Param("filename")
	// Stored names are uuid-prefixed flat files; anything with a path
	// separator is not one of ours.
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filename"})
		return
	}

	path := filepath.Join(h.UploadDir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.FileAttachment(path, name)
}
