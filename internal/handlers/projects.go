package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"project-manager/webapp/internal/middleware"
	"project-manager/webapp/internal/models"
	"project-manager/webapp/internal/services"
	"project-manager/webapp/internal/session"
	"project-manager/webapp/internal/tableview"
)

const dateLayout = "2006-01-02"

type ProjectHandler struct {
	projects  *services.ProjectPageService
	users     *services.UserDirectory
	table     *tableview.Table[models.Project]
	debouncer *tableview.Debouncer
	logger    *slog.Logger
}

func NewProjectHandler(projects *services.ProjectPageService, users *services.UserDirectory, debouncer *tableview.Debouncer, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		users:     users,
		table:     tableview.New(projectColumns()),
		debouncer: debouncer,
		logger:    logger,
	}
}

// Column order: title, status badge, owner, deadline, budget, created-on.
// Status is filtered by equality, never sorted.
func projectColumns() []tableview.Column[models.Project] {
	return []tableview.Column[models.Project]{
		{
			ID: "title", Header: "Title", Sortable: true, Filterable: true,
			Value: func(p models.Project) string { return p.Title },
		},
		{
			ID: "status", Header: "Status",
			Value: func(p models.Project) string { return p.Status.Label() },
		},
		{
			ID: "owner", Header: "Owner",
			Value: func(p models.Project) string {
				if email := p.OwnerEmail(); email != "" {
					return email
				}
				return "—"
			},
		},
		{
			ID: "deadline", Header: "Deadline",
			Value: func(p models.Project) string {
				if p.Deadline == nil {
					return "—"
				}
				return p.Deadline.Format(dateLayout)
			},
		},
		{
			ID: "budget", Header: "Budget", Sortable: true,
			Value: func(p models.Project) string { return p.Budget },
		},
		{
			ID: "created", Header: "Created On", Sortable: true,
			Value: func(p models.Project) string { return p.CreatedAt.Format(dateLayout) },
			SortKey: func(p models.Project) string {
				return p.CreatedAt.Format(time.RFC3339)
			},
		},
	}
}

// tableData is what the table fragment renders: the computed rows plus the
// control state every header, filter and pager needs to draw itself.
type tableData struct {
	Columns      []tableview.Column[models.Project]
	Page         tableview.Page[models.Project]
	View         tableview.State
	Search       string
	StatusFilter string
	Statuses     []models.Status
	ServerPage   int
	CanPrev      bool
	CanNext      bool
}

func (h *ProjectHandler) tableData(st session.State) tableData {
	page := h.table.Compute(st.Projects.Rows, st.Projects.View)
	return tableData{
		Columns:      h.table.Columns(),
		Page:         page,
		View:         st.Projects.View,
		Search:       st.Projects.Search,
		StatusFilter: st.Projects.View.ColumnFilters["status"],
		Statuses:     models.Statuses(),
		ServerPage:   st.Projects.Page,
		// Paging controls track the backend page, not the local slice:
		// a full page means another one may exist.
		CanPrev: st.Projects.Page > 1,
		CanNext: len(st.Projects.Rows) >= st.Projects.View.PageSize,
	}
}

// Page renders the full projects page.
func (h *ProjectHandler) Page(c *gin.Context) {
	sid := middleware.SessionID(c)
	st, err := h.projects.Load(c.Request.Context(), sid)
	if err != nil {
		h.logger.Error("rendering projects page failed", "error", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	c.HTML(http.StatusOK, "projects.tmpl", gin.H{
		"Active": "projects",
		"Table":  h.tableData(st),
	})
}

// Table serves the table fragment. Exactly one of the query parameters
// drives a state transition; with none present it re-renders as is.
//
//	search=<term>   debounced global search
//	sort=<column>   cycle that column's sort order
//	status=<label>  exact status filter, empty clears it
//	page=next|prev  move the backend page
func (h *ProjectHandler) Table(c *gin.Context) {
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()

	var (
		st  session.State
		err error
	)

	switch {
	case c.Query("sort") != "":
		st, err = h.projects.ToggleSort(sid, c.Query("sort"))
	case hasQuery(c, "status"):
		st, err = h.projects.FilterStatus(sid, statusFilterLabel(c.Query("status")))
	case c.Query("page") == "next":
		st, err = h.projects.NextPage(ctx, sid)
	case c.Query("page") == "prev":
		st, err = h.projects.PrevPage(ctx, sid)
	case hasQuery(c, "search"):
		term, ok := <-h.debouncer.Submit(sid, c.Query("search"))
		if !ok {
			// A newer keystroke superseded this one.
			c.Status(http.StatusNoContent)
			return
		}
		st, err = h.projects.ApplySearch(ctx, sid, term)
	default:
		st, err = h.projects.Load(ctx, sid)
	}

	if err != nil {
		h.logger.Error("table update failed", "error", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	c.HTML(http.StatusOK, "projects_table.tmpl", h.tableData(st))
}

// Modal serves the create/edit dialog fragment. A non-empty id marks that
// project as the edit target; without one the form starts blank.
func (h *ProjectHandler) Modal(c *gin.Context) {
	sid := middleware.SessionID(c)

	var err error
	if id := c.Query("id"); id != "" {
		err = h.projects.StartEdit(sid, id)
	} else {
		err = h.projects.StartCreate(sid)
	}
	if err != nil {
		h.logger.Error("opening project modal failed", "error", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	target, err := h.projects.EditTarget(sid)
	if err != nil {
		h.logger.Error("resolving edit target failed", "error", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	users, err := h.users.Users(c.Request.Context())
	if err != nil {
		h.logger.Error("loading owner choices failed", "error", err)
		users = nil
	}

	// New projects start On Hold until the user picks a status.
	selected := models.StatusOnHold
	if target != nil {
		selected = target.Status
	}

	c.HTML(http.StatusOK, "project_modal.tmpl", gin.H{
		"Project":  target,
		"Users":    users,
		"Statuses": models.Statuses(),
		"Selected": selected,
	})
}

// Save handles the modal form. Success returns the refreshed table fragment
// so the page can close the modal and swap the table in one round trip;
// failure returns 422 with no body and the modal stays open.
func (h *ProjectHandler) Save(c *gin.Context) {
	sid := middleware.SessionID(c)
	ctx := c.Request.Context()

	payload := models.SavePayload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Budget:      strings.TrimSpace(c.PostForm("budget")),
	}

	if v, err := strconv.Atoi(c.PostForm("status")); err == nil {
		payload.Status = models.Status(v)
	}

	if raw := c.PostForm("deadline"); raw != "" {
		if t, err := time.Parse(dateLayout, raw); err == nil {
			payload.Deadline = &t
		}
	}

	if ownerID := c.PostForm("user"); ownerID != "" {
		users, err := h.users.Users(ctx)
		if err != nil {
			h.logger.Error("resolving owner failed", "error", err)
		} else {
			payload.User = models.FindUser(users, ownerID)
		}
	}

	st, err := h.projects.Save(ctx, sid, payload)
	if err != nil {
		c.Status(http.StatusUnprocessableEntity)
		return
	}
	c.HTML(http.StatusOK, "projects_table.tmpl", h.tableData(st))
}

// Delete removes one project and returns the refreshed table fragment.
func (h *ProjectHandler) Delete(c *gin.Context) {
	sid := middleware.SessionID(c)

	st, err := h.projects.Delete(c.Request.Context(), sid, c.Param("id"))
	if err != nil {
		h.logger.Error("project delete failed", "error", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}
	c.HTML(http.StatusOK, "projects_table.tmpl", h.tableData(st))
}

func hasQuery(c *gin.Context, key string) bool {
	_, ok := c.GetQuery(key)
	return ok
}

// statusFilterLabel maps the wire value of the status filter (a numeric
// status code, or "all"/empty to clear) to the label the column filter
// matches on. Unknown codes clear the filter.
func statusFilterLabel(raw string) string {
	if raw == "" || raw == "all" {
		return ""
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return ""
	}
	status := models.Status(code)
	if !status.Valid() {
		return ""
	}
	return status.Label()
}
