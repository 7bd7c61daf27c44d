package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/faktura/internal/company/domain"
)

func (s *Server) GetCompanyProfile(c *gin.Context) {
	// Resolve never 404s; a fresh install answers with the packaged defaults.
	resp := s.companySvc.Resolve(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertCompanyProfile(c *gin.Context) {
	var req companydomain.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CompanyName = strings.TrimSpace(req.CompanyName)

	resp, err := s.companySvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
