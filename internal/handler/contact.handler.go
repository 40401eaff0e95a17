package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/duccv/contact-addin/internal/middleware"
	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/internal/validation"
	"github.com/duccv/contact-addin/pkg/metrics"
	"github.com/gin-gonic/gin"
)

const (
	defaultPage      = 1
	defaultPageLimit = 50
	dataSource       = "Internal Database"
	unknownDept      = "Unknown"
)

var enrichSuggestions = []string{
	"This contact may be new to the system",
	"Contact information might be added in the future",
	"Try searching with a different email address",
}

type ContactHandler struct {
	contacts store.ContactStore
	now      func() time.Time
	debug    bool
}

func NewContactHandler(contacts store.ContactStore, debug bool) *ContactHandler {
	return &ContactHandler{contacts: contacts, now: time.Now, debug: debug}
}

// RegisterRoutes mounts /contacts on rg behind the auth gate.
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup, gate *middleware.JWTAuthMiddleware) {
	contacts := rg.Group("/contacts", gate.Authenticate())
	contacts.GET("/enrich", validation.Validate[any, model.EnrichQuery](), h.Enrich)
	contacts.GET("/search", validation.Validate[any, model.SearchQuery](), h.Search)
	contacts.GET("/directory", validation.Validate[any, model.DirectoryQuery](), h.Directory)
	contacts.GET("/stats", h.Stats)
}

// Enrich godoc
//
//	@Summary		Enrich a contact
//	@Description	Returns directory information for an email address
//	@Tags			Contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			email	query		string	true	"Email address"
//	@Success		200		{object}	model.EnrichResponse
//	@Success		304
//	@Failure		400		{object}	response.ResponseData
//	@Failure		401		{object}	response.ResponseData
//	@Router			/contacts/enrich [get]
func (h *ContactHandler) Enrich(c *gin.Context) {
	email := normalizeEmail(validation.Query[model.EnrichQuery](c).Email)

	data := model.EnrichData{Email: email}
	contact, err := h.contacts.Lookup(c.Request.Context(), email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		metrics.Inc(metrics.ContactLookups, "miss")
		data.Message = "No additional contact information available for this email address"
		data.Suggestions = enrichSuggestions
	case err != nil:
		internalError(c, err, "Internal server error during contact enrichment", h.debug)
		return
	default:
		metrics.Inc(metrics.ContactLookups, "hit")
		info := contact.Info()
		info.Email = ""
		data.Email = contact.Email
		data.Enriched = true
		data.ContactInfo = &info
		data.Metadata = &model.EnrichMetadata{
			DataAge:     int(h.now().Sub(contact.UpdatedAt) / (24 * time.Hour)),
			LastUpdated: contact.UpdatedAt.UTC(),
			DataSource:  dataSource,
		}
	}

	stable := data
	if stable.Metadata != nil {
		meta := *stable.Metadata
		meta.DataAge = 0
		stable.Metadata = &meta
	}
	respondWithETag(c, stable, model.EnrichResponse{
		Success:     true,
		Data:        data,
		RequestedBy: requester(c),
		Timestamp:   h.now().UTC(),
	})
}

// Search godoc
//
//	@Summary		Search contacts
//	@Description	Case-insensitive search over name, department, job title and company, best matches first
//	@Tags			Contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			q	query		string	true	"Search text, at least 2 characters"
//	@Success		200	{object}	model.SearchResponse
//	@Failure		400	{object}	response.ResponseData
//	@Failure		401	{object}	response.ResponseData
//	@Router			/contacts/search [get]
func (h *ContactHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(validation.Query[model.SearchQuery](c).Q)

	found, err := h.contacts.Search(c.Request.Context(), q)
	if err != nil {
		internalError(c, err, "Internal server error during contact search", h.debug)
		return
	}

	results := make([]model.ContactInfo, 0, len(found))
	for _, contact := range found {
		results = append(results, contact.Info())
	}
	respondWithETag(c, results, model.SearchResponse{
		Success:     true,
		Query:       q,
		Results:     results,
		TotalFound:  len(results),
		RequestedBy: requester(c),
		Timestamp:   h.now().UTC(),
	})
}

// Directory godoc
//
//	@Summary		Company directory
//	@Description	Pages through all contacts ordered by name, grouped by department
//	@Tags			Contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page	query		int	false	"Page number, default 1"
//	@Param			limit	query		int	false	"Page size, default 50, at most 100"
//	@Success		200		{object}	model.DirectoryResponse
//	@Failure		401		{object}	response.ResponseData
//	@Router			/contacts/directory [get]
func (h *ContactHandler) Directory(c *gin.Context) {
	q := validation.Query[model.DirectoryQuery](c)
	page, limit := q.Page, q.Limit
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}

	result, err := h.contacts.Paginate(c.Request.Context(), page, limit)
	if err != nil {
		internalError(c, err, "Internal server error during directory access", h.debug)
		return
	}

	data := model.DirectoryData{
		Contacts:             make([]model.ContactInfo, 0, len(result.Contacts)),
		ContactsByDepartment: make(map[string][]model.ContactInfo),
	}
	for _, contact := range result.Contacts {
		info := contact.Info()
		data.Contacts = append(data.Contacts, info)

		dept := contact.Department
		if dept == "" {
			dept = unknownDept
		}
		grouped := info
		grouped.Department = ""
		data.ContactsByDepartment[dept] = append(data.ContactsByDepartment[dept], grouped)
	}

	pagination := model.Pagination{
		CurrentPage:   page,
		TotalPages:    (result.Total + limit - 1) / limit,
		TotalContacts: result.Total,
		Limit:         limit,
		HasNext:       page*limit < result.Total,
		HasPrev:       page > 1,
	}
	respondWithETag(c, []any{data, pagination}, model.DirectoryResponse{
		Success:     true,
		Data:        data,
		Pagination:  pagination,
		RequestedBy: requester(c),
		Timestamp:   h.now().UTC(),
	})
}

// Stats godoc
//
//	@Summary		Contact statistics
//	@Description	Totals and per-department counts
//	@Tags			Contacts
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.StatsResponse
//	@Failure		401	{object}	response.ResponseData
//	@Router			/contacts/stats [get]
func (h *ContactHandler) Stats(c *gin.Context) {
	stats, err := h.contacts.Stats(c.Request.Context())
	if err != nil {
		internalError(c, err, "Internal server error during stats retrieval", h.debug)
		return
	}
	if stats.DepartmentBreakdown == nil {
		stats.DepartmentBreakdown = []model.DepartmentCount{}
	}
	respondWithETag(c, stats, model.StatsResponse{
		Success:     true,
		Statistics:  stats,
		RequestedBy: requester(c),
		Timestamp:   h.now().UTC(),
	})
}
