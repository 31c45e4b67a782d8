package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
)

// ListDuplicates surfaces candidate duplicate groups for review.
func (s *Server) ListDuplicates(c *gin.Context) {
	groups, err := s.dedupeSvc.FindDuplicates(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

type mergeContactsRequest struct {
	PrimaryID    string   `json:"primary_id"`
	DuplicateIDs []string `json:"duplicate_ids"`
}

// MergeContacts folds the listed duplicates into the primary contact.
func (s *Server) MergeContacts(c *gin.Context) {
	var req mergeContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body is not valid JSON"))
		return
	}

	primaryID, err := snowflake.ParseString(req.PrimaryID)
	if err != nil {
		AbortWithError(c, newValidationError("primary_id", "invalid_id", "primary id is not a valid id"))
		return
	}
	duplicateIDs := make([]snowflake.ID, 0, len(req.DuplicateIDs))
	for _, raw := range req.DuplicateIDs {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("duplicate_ids", "invalid_id", "duplicate id is not a valid id"))
			return
		}
		duplicateIDs = append(duplicateIDs, id)
	}

	result, err := s.dedupeSvc.MergeContacts(c.Request.Context(), primaryID, duplicateIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type autoMergeRequest struct {
	Meta identitydomain.SignalInput `json:"meta"`
}

// AutoMergeContact runs the opportunistic merge check for one contact,
// typically right after a signal resolved to it.
func (s *Server) AutoMergeContact(c *gin.Context) {
	contactID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "contact id is not a valid id"))
		return
	}

	var req autoMergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body is not valid JSON"))
		return
	}

	survivor, err := s.automergeSvc.MergeIfHighConfidence(c.Request.Context(), contactID, req.Meta)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	// The survivor differs from the input id when the other contact won
	// the primary election; callers should follow the new id.
	c.JSON(http.StatusOK, gin.H{
		"contact_id": survivor.String(),
		"redirected": survivor != contactID,
	})
}

// AutoMergeStats returns the tenant's auto-merge audit summary.
func (s *Server) AutoMergeStats(c *gin.Context) {
	stats, err := s.automergeSvc.Stats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
