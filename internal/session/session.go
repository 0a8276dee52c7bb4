// Package session keeps per-browser view-state on the server: the project
// list's search/page, the loaded rows, and the table view-state. Sessions
// are keyed by a sid cookie and live in the cache backend until their TTL
// lapses.
package session

import (
	"errors"
	"fmt"
	"time"

	"project-manager/webapp/internal/cache"
	"project-manager/webapp/internal/models"
	"project-manager/webapp/internal/tableview"
)

// ListState is everything the projects page owns for one browser session.
// Rows always holds the most recently applied fetch. IssuedSeq is the newest
// fetch sequence number handed out for the session; AppliedSeq is the one
// whose rows are showing. A response is applied only while no newer fetch
// has been issued, so only the latest request can ever land.
type ListState struct {
	Search     string           `json:"search"`
	Page       int              `json:"page"`
	Rows       []models.Project `json:"rows"`
	IssuedSeq  int64            `json:"issued_seq"`
	AppliedSeq int64            `json:"applied_seq"`
	EditingID  string           `json:"editing_id,omitempty"`
	View       tableview.State  `json:"view"`
}

type State struct {
	Projects ListState `json:"projects"`
}

type Store struct {
	cache    cache.Cache
	ttl      time.Duration
	pageSize int
}

func NewStore(c cache.Cache, ttl time.Duration, pageSize int) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	return &Store{cache: c, ttl: ttl, pageSize: pageSize}
}

func (s *Store) fresh() State {
	return State{
		Projects: ListState{
			Page: 1,
			View: tableview.NewState(s.pageSize),
		},
	}
}

// Get returns the session state, or a fresh one when the session is new or
// has expired. Only real backend failures are reported.
func (s *Store) Get(sid string) (State, error) {
	var st State
	err := s.cache.Get(key(sid), &st)
	if errors.Is(err, cache.ErrCacheMiss) {
		return s.fresh(), nil
	}
	if err != nil {
		return s.fresh(), fmt.Errorf("load session: %w", err)
	}
	if st.Projects.View.PageSize == 0 {
		st.Projects.View.PageSize = s.pageSize
	}
	return st, nil
}

func (s *Store) Save(sid string, st State) error {
	if err := s.cache.Set(key(sid), st, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// NextSeq mints the next fetch sequence number for the session. The counter
// expires with the session TTL, refreshed on every fetch; it only has to
// stay monotonic while fetches for the session can still be in flight.
func (s *Store) NextSeq(sid string) (int64, error) {
	return s.cache.Incr(key(sid), s.ttl)
}

func (s *Store) Delete(sid string) error {
	return s.cache.Delete(key(sid))
}

func (s *Store) PageSize() int {
	return s.pageSize
}

// Health and Stats surface the backing cache, so the store can be wired
// straight into the monitor.
func (s *Store) Health() error {
	return s.cache.Health()
}

func (s *Store) Stats() map[string]interface{} {
	return s.cache.Stats()
}

func key(sid string) string {
	return "session:" + sid
}
