package notes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bu6030/tag-note/pkg/tagnote/auth"
	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"github.com/gin-gonic/gin"
)

// Handler handles note-related requests
type Handler struct {
	service *Service
}

// NewHandler creates a new notes handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// NoteRequest represents the request to create or update a note. Tags
// is raw user text; each entry may pack several names separated by
// commas.
type NoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content" binding:"required,max=10000"`
	Tags    []string `json:"tags"`
}

// NoteResponse represents a note in API responses
type NoteResponse struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	Tags      []string `json:"tags"`
}

// PageResponse represents one page of notes plus pager bookkeeping
type PageResponse struct {
	Content       []NoteResponse `json:"content"`
	CurrentPage   int            `json:"currentPage"`
	PageSize      int            `json:"pageSize"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	HasNext       bool           `json:"hasNext"`
	HasPrevious   bool           `json:"hasPrevious"`
}

// StatsResponse summarizes an owner's collection
type StatsResponse struct {
	TotalNotes    int64   `json:"totalNotes"`
	TotalTags     int64   `json:"totalTags"`
	FirstNoteDate *string `json:"firstNoteDate"`
}

func noteToResponse(note models.Note) NoteResponse {
	tagNames := make([]string, len(note.Tags))
	for i, tag := range note.Tags {
		tagNames[i] = tag.Name
	}
	return NoteResponse{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: note.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		Tags:      tagNames,
	}
}

func notesToResponses(notes []models.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = noteToResponse(note)
	}
	return responses
}

func pageToResponse(page *Page) PageResponse {
	return PageResponse{
		Content:       notesToResponses(page.Content),
		CurrentPage:   page.CurrentPage,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		HasNext:       page.HasNext,
		HasPrevious:   page.HasPrevious,
	}
}

// pagingParams reads page/size query params. Anything unparsable comes
// back as zero and the service normalizes it from there.
func pagingParams(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "0"))
	return page, size
}

// List returns all of the current user's notes
func (h *Handler) List(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	notes, err := h.service.ListAll(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}

	c.JSON(http.StatusOK, notesToResponses(notes))
}

// Create creates a new note
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.service.Create(ownerID, req.Title, req.Content, req.Tags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	c.JSON(http.StatusCreated, noteToResponse(*note))
}

// Get returns a single note by id
func (h *Handler) Get(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	note, err := h.service.Get(ownerID, uint(id))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		return
	}

	c.JSON(http.StatusOK, noteToResponse(*note))
}

// Update replaces a note's title, content and tag set
func (h *Handler) Update(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note, err := h.service.Update(ownerID, uint(id), req.Title, req.Content, req.Tags)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	c.JSON(http.StatusOK, noteToResponse(*note))
}

// Delete deletes a note
func (h *Handler) Delete(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return
	}

	if err := h.service.Delete(ownerID, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted"})
}

// Search returns notes matching a title substring or any of the given
// tag names. With neither filter it falls back to the full listing.
func (h *Handler) Search(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	title := c.Query("title")
	tagNames := c.QueryArray("tags")

	var (
		notes []models.Note
		err   error
	)
	switch {
	case title != "":
		notes, err = h.service.SearchByTitle(ownerID, title)
	case len(tagNames) > 0:
		notes, err = h.service.SearchByTags(ownerID, tagNames)
	default:
		notes, err = h.service.ListAll(ownerID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search notes"})
		return
	}

	c.JSON(http.StatusOK, notesToResponses(notes))
}

// SearchPaginated is the paginated form of Search. With no filters it
// serves as the paginated listing endpoint.
func (h *Handler) SearchPaginated(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	title := c.Query("title")
	tagNames := c.QueryArray("tags")
	page, size := pagingParams(c)

	var (
		result *Page
		err    error
	)
	switch {
	case title != "":
		result, err = h.service.SearchByTitlePage(ownerID, title, page, size)
	case len(tagNames) > 0:
		result, err = h.service.SearchByTagsPage(ownerID, tagNames, page, size)
	default:
		result, err = h.service.ListPage(ownerID, page, size)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search notes"})
		return
	}

	c.JSON(http.StatusOK, pageToResponse(result))
}

// CalendarDates returns the distinct days on which the user created
// notes, newest first, for the calendar view.
func (h *Handler) CalendarDates(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	dates, err := h.service.DistinctDates(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dates"})
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, formatted)
}

// Stats returns collection totals and the first note date
func (h *Handler) Stats(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	noteCount, tagCount, err := h.service.Counts(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	first, err := h.service.FirstNoteDate(ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	resp := StatsResponse{TotalNotes: noteCount, TotalTags: tagCount}
	if first != nil {
		s := first.Format("2006-01-02T15:04:05Z")
		resp.FirstNoteDate = &s
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers note routes. Search, calendar and stats
// live beside /notes rather than under it so the static segments never
// collide with the :id wildcard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notes", h.List)
	rg.POST("/notes", h.Create)
	rg.GET("/notes/:id", h.Get)
	rg.PUT("/notes/:id", h.Update)
	rg.DELETE("/notes/:id", h.Delete)

	rg.GET("/search", h.Search)
	rg.GET("/search/paginated", h.SearchPaginated)
	rg.GET("/calendar/dates", h.CalendarDates)
	rg.GET("/stats", h.Stats)
}
