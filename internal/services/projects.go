package services

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"project-manager/webapp/internal/models"
	"project-manager/webapp/internal/session"
)

// ProjectAPI is the slice of the remote client the page service needs.
type ProjectAPI interface {
	ListProjects(ctx context.Context, page, limit int, title string) ([]models.Project, error)
	CreateProject(ctx context.Context, payload models.SavePayload) (models.Project, error)
	UpdateProject(ctx context.Context, id string, payload models.SavePayload) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectPageService owns the projects page state for every session: the
// loaded rows, the search/page pair, and the modal edit target. Upstream
// failures are logged and swallowed here, so the page keeps showing whatever
// it showed before.
type ProjectPageService struct {
	api    ProjectAPI
	store  *session.Store
	logger *slog.Logger
}

func NewProjectPageService(api ProjectAPI, store *session.Store, logger *slog.Logger) *ProjectPageService {
	return &ProjectPageService{api: api, store: store, logger: logger}
}

// minSearchLen is how long the trimmed search term must be before it is
// forwarded to the backend as a title filter.
const minSearchLen = 2

// Load fetches the current (search, page) pair and applies the rows only if
// this is still the most recently issued fetch. Every fetch records its
// sequence number as issued before going out; a response that a newer issue
// has superseded is discarded whether or not that newer fetch has landed
// yet, so a slow older request can never clobber fresher state.
func (s *ProjectPageService) Load(ctx context.Context, sid string) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}

	seq, err := s.store.NextSeq(sid)
	if err != nil {
		return st, err
	}

	switch {
	case seq > st.Projects.IssuedSeq:
		st.Projects.IssuedSeq = seq
		if err := s.store.Save(sid, st); err != nil {
			return st, err
		}
	case seq <= st.Projects.AppliedSeq:
		// The counter expired while the session idled and restarted low.
		// Rebase so the session does not discard every response until the
		// counter catches up.
		st.Projects.IssuedSeq = seq
		st.Projects.AppliedSeq = seq - 1
		if err := s.store.Save(sid, st); err != nil {
			return st, err
		}
	}

	title := ""
	if q := strings.TrimSpace(st.Projects.Search); len(q) >= minSearchLen {
		title = q
	}

	rows, err := s.api.ListProjects(ctx, st.Projects.Page, s.store.PageSize(), title)
	if err != nil {
		s.logger.Error("project list fetch failed, keeping previous rows",
			"session", sid, "page", st.Projects.Page, "error", err)
		return st, nil
	}

	// Re-read before applying: a newer fetch may have been issued meanwhile.
	cur, err := s.store.Get(sid)
	if err != nil {
		return cur, err
	}
	if seq < cur.Projects.IssuedSeq {
		s.logger.Debug("discarding superseded project list response",
			"session", sid, "seq", seq, "issued", cur.Projects.IssuedSeq)
		return cur, nil
	}

	cur.Projects.Rows = rows
	cur.Projects.AppliedSeq = seq
	if err := s.store.Save(sid, cur); err != nil {
		return cur, err
	}
	return cur, nil
}

// ApplySearch records a new search term (page rewinds to 1) and reloads.
// The caller is expected to have debounced keystrokes already.
func (s *ProjectPageService) ApplySearch(ctx context.Context, sid, term string) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}

	if st.Projects.Search != term {
		st.Projects.Search = term
		st.Projects.Page = 1
		st.Projects.View = st.Projects.View.WithGlobalFilter(term)
		if err := s.store.Save(sid, st); err != nil {
			return st, err
		}
	}
	return s.Load(ctx, sid)
}

// NextPage and PrevPage move the server-side page and reload. Prev stops at
// page 1; callers disable the controls based on the rendered state.
func (s *ProjectPageService) NextPage(ctx context.Context, sid string) (session.State, error) {
	return s.changePage(ctx, sid, +1)
}

func (s *ProjectPageService) PrevPage(ctx context.Context, sid string) (session.State, error) {
	return s.changePage(ctx, sid, -1)
}

func (s *ProjectPageService) changePage(ctx context.Context, sid string, delta int) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}

	page := st.Projects.Page + delta
	if page < 1 {
		page = 1
	}
	if page != st.Projects.Page {
		st.Projects.Page = page
		if err := s.store.Save(sid, st); err != nil {
			return st, err
		}
	}
	return s.Load(ctx, sid)
}

// ToggleSort and FilterStatus are local view-state transitions over the
// already loaded rows; neither touches the backend.
func (s *ProjectPageService) ToggleSort(sid, column string) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}
	st.Projects.View = st.Projects.View.ToggleSort(column)
	return st, s.store.Save(sid, st)
}

func (s *ProjectPageService) FilterStatus(sid, value string) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}
	st.Projects.View = st.Projects.View.WithColumnFilter("status", value)
	return st, s.store.Save(sid, st)
}

// StartCreate clears any edit target; StartEdit records one. Both mirror
// the page's add/edit actions that open the modal.
func (s *ProjectPageService) StartCreate(sid string) error {
	st, err := s.store.Get(sid)
	if err != nil {
		return err
	}
	st.Projects.EditingID = ""
	return s.store.Save(sid, st)
}

func (s *ProjectPageService) StartEdit(sid, id string) error {
	st, err := s.store.Get(sid)
	if err != nil {
		return err
	}
	st.Projects.EditingID = id
	return s.store.Save(sid, st)
}

// EditTarget resolves the session's edit target against the loaded rows.
func (s *ProjectPageService) EditTarget(sid string) (*models.Project, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return nil, err
	}
	if st.Projects.EditingID == "" {
		return nil, nil
	}
	for i := range st.Projects.Rows {
		if st.Projects.Rows[i].ID == st.Projects.EditingID {
			return &st.Projects.Rows[i], nil
		}
	}
	return nil, nil
}

// Save trims and validates the payload, then either updates the session's
// edit target (PUT, row replaced in place) or creates a new project (POST,
// row prepended). A failure leaves the rows and the edit target untouched;
// the caller keeps the modal open with no error surface.
func (s *ProjectPageService) Save(ctx context.Context, sid string, payload models.SavePayload) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}

	payload.Title = strings.TrimSpace(payload.Title)
	payload.Description = strings.TrimSpace(payload.Description)

	if err := validateSave(payload); err != nil {
		s.logger.Error("rejecting invalid save payload", "session", sid, "error", err)
		return st, err
	}

	if st.Projects.EditingID != "" {
		updated, err := s.api.UpdateProject(ctx, st.Projects.EditingID, payload)
		if err != nil {
			s.logger.Error("project update failed", "session", sid, "id", st.Projects.EditingID, "error", err)
			return st, err
		}
		for i := range st.Projects.Rows {
			if st.Projects.Rows[i].ID == updated.ID {
				st.Projects.Rows[i] = updated
				break
			}
		}
		st.Projects.EditingID = ""
		return st, s.store.Save(sid, st)
	}

	created, err := s.api.CreateProject(ctx, payload)
	if err != nil {
		s.logger.Error("project create failed", "session", sid, "error", err)
		return st, err
	}
	st.Projects.Rows = append([]models.Project{created}, st.Projects.Rows...)
	return st, s.store.Save(sid, st)
}

// Delete removes the project upstream and, on success, drops exactly the
// matching row from the session. Failures leave the rows unchanged.
func (s *ProjectPageService) Delete(ctx context.Context, sid, id string) (session.State, error) {
	st, err := s.store.Get(sid)
	if err != nil {
		return st, err
	}

	if err := s.api.DeleteProject(ctx, id); err != nil {
		s.logger.Error("project delete failed", "session", sid, "id", id, "error", err)
		return st, nil
	}

	rows := st.Projects.Rows[:0:0]
	for _, row := range st.Projects.Rows {
		if row.ID != id {
			rows = append(rows, row)
		}
	}
	st.Projects.Rows = rows
	return st, s.store.Save(sid, st)
}

func validateSave(p models.SavePayload) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Status, validation.By(func(interface{}) error {
			if !p.Status.Valid() {
				return validation.NewError("validation_status", "must be one of the four project statuses")
			}
			return nil
		})),
		validation.Field(&p.Budget, validation.Required),
	)
}
