package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
)

// ResolveIdentity maps a connector signal to a contact and company,
// creating them when the rules allow.
func (s *Server) ResolveIdentity(c *gin.Context) {
	var in identitydomain.SignalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body is not valid JSON"))
		return
	}

	res, err := s.identitySvc.Resolve(c.Request.Context(), in)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetIdentityGraph returns the stored identity state of one contact.
func (s *Server) GetIdentityGraph(c *gin.Context) {
	contactID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "contact id is not a valid id"))
		return
	}

	graph, err := s.identitySvc.GetGraph(c.Request.Context(), contactID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}
