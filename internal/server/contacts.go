package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
)

type createContactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Github    string `json:"github"`
	Npm       string `json:"npm"`
	Avatar    string `json:"avatar"`
	CompanyID string `json:"company_id"`
}

func (s *Server) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body is not valid JSON"))
		return
	}

	create := contactdomain.CreateContactRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Github:    req.Github,
		Npm:       req.Npm,
		Avatar:    req.Avatar,
	}
	if req.CompanyID != "" {
		companyID, err := snowflake.ParseString(req.CompanyID)
		if err != nil {
			AbortWithError(c, newValidationError("company_id", "invalid_id", "company id is not a valid id"))
			return
		}
		create.CompanyID = &companyID
	}

	contact, err := s.contactSvc.Create(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (s *Server) GetContact(c *gin.Context) {
	contact, err := s.contactSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (s *Server) UpdateContact(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		AbortWithError(c, newValidationError("body", "invalid_json", "request body is not valid JSON"))
		return
	}

	contact, err := s.contactSvc.Update(c.Request.Context(), contactdomain.UpdateContactRequest{
		ID:     c.Param("id"),
		Fields: fields,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

func (s *Server) DeleteContact(c *gin.Context) {
	if err := s.contactSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetCompany(c *gin.Context) {
	companyID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "company id is not a valid id"))
		return
	}

	company, err := s.companySvc.GetByID(c.Request.Context(), companyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}
