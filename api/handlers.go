package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const defaultPageSize = 50

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListProperties serves either schema depending on the migration
// flag: the legacy flat rows the current frontend renders, or the
// normalized properties.
func (s *Server) handleListProperties(c *gin.Context) {
	city := c.Query("city")
	limit, offset := pagination(c)

	if s.cfg.Flags.UseLegacySchema {
		listings, err := s.store.ListLegacyListings(c.Request.Context(), city, limit, offset)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"listings": listings, "schema": "legacy"})
		return
	}

	properties, err := s.store.ListProperties(c.Request.Context(), city, limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": properties, "schema": "v2"})
}

func (s *Server) handleGetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	ctx := c.Request.Context()
	property, err := s.store.GetPropertyByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	events, err := s.store.ListEventsForProperty(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	contacts, err := s.store.ListContactsForProperty(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property": property,
		"events":   events,
		"contacts": contacts,
	})
}

func (s *Server) handleListLeads(c *gin.Context) {
	stage := c.Query("stage")
	limit, offset := pagination(c)

	leads, err := s.store.ListLeads(c.Request.Context(), stage, limit, offset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.GetPipelineStats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// handleSkipTrace runs an on-demand skip trace for one property.
func (s *Server) handleSkipTrace(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	ctx := c.Request.Context()
	property, err := s.store.GetPropertyByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	result, err := s.skiptrace.Enrich(ctx, property)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": result.Contacts, "no_data": result.NoData})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property id"})
		return
	}

	ctx := c.Request.Context()
	property, err := s.store.GetPropertyByID(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	events, err := s.store.ListEventsForProperty(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}

	analysis, err := s.analysis.AnalyzeProperty(ctx, property, events)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
