package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messaging-service/internal/models"
	"messaging-service/internal/repositories"
)

// FamilyHandler exposes identity and roster endpoints consumed by inbox
// clients to build their display-name directory.
type FamilyHandler struct {
	userRepo repositories.UserRepository
}

// NewFamilyHandler builds a FamilyHandler.
func NewFamilyHandler(userRepo repositories.UserRepository) *FamilyHandler {
	return &FamilyHandler{userRepo: userRepo}
}

// Me returns the authenticated user's identity.
func (h *FamilyHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// ListMembers returns the caller's family roster.
func (h *FamilyHandler) ListMembers(c *gin.Context) {
	familyID := c.GetString("familyID")

	members, err := h.userRepo.ListFamilyMembers(c.Request.Context(), familyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load family members"})
		return
	}
	if members == nil {
		members = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}
