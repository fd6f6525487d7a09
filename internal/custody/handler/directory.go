package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vaishal-coder/Rakshanethra-Quantum-BlockChain-SupplyChain/internal/custody/model"
)

// ManufacturerLister is the read side of the manufacturer directory.
type ManufacturerLister interface {
	List() []model.Manufacturer
}

// DirectoryHandler serves the trusted manufacturer table.
type DirectoryHandler struct {
	dir ManufacturerLister
}

// NewDirectoryHandler creates a new DirectoryHandler.
func NewDirectoryHandler(dir ManufacturerLister) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

// Register mounts GET /manufacturers.
func (h *DirectoryHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/manufacturers", h.List)
}

// List handles GET /manufacturers.
func (h *DirectoryHandler) List(c *gin.Context) {
	mfgs := h.dir.List()
	c.JSON(http.StatusOK, gin.H{"manufacturers": mfgs, "count": len(mfgs)})
}
