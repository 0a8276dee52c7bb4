package session_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"project-manager/webapp/internal/cache"
	"project-manager/webapp/internal/models"
	"project-manager/webapp/internal/session"
)

func stores(t *testing.T) map[string]*session.Store {
	t.Helper()

	mem := cache.NewMemoryCache(time.Minute)
	t.Cleanup(func() { mem.Close() })

	mr := miniredis.RunT(t)
	cfg := cache.DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	rds := cache.NewRedisCache(cfg)
	t.Cleanup(func() { rds.Close() })

	return map[string]*session.Store{
		"memory": session.NewStore(mem, time.Minute, 6),
		"redis":  session.NewStore(rds, time.Minute, 6),
	}
}

func TestGetFreshSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, err := store.Get("new-sid")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}

			if st.Projects.Page != 1 {
				t.Errorf("Expected fresh session on page 1, got %d", st.Projects.Page)
			}
			if st.Projects.View.PageSize != 6 {
				t.Errorf("Expected page size 6, got %d", st.Projects.View.PageSize)
			}
			if len(st.Projects.Rows) != 0 {
				t.Errorf("Expected no rows, got %d", len(st.Projects.Rows))
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, _ := store.Get("sid-1")
			st.Projects.Search = "alpha"
			st.Projects.Page = 2
			st.Projects.Rows = []models.Project{{ID: "p1", Title: "Alpha"}}
			st.Projects.View = st.Projects.View.ToggleSort("title")

			if err := store.Save("sid-1", st); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			loaded, err := store.Get("sid-1")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}

			if loaded.Projects.Search != "alpha" || loaded.Projects.Page != 2 {
				t.Errorf("Expected search/page round-trip, got %+v", loaded.Projects)
			}
			if len(loaded.Projects.Rows) != 1 || loaded.Projects.Rows[0].ID != "p1" {
				t.Errorf("Expected rows round-trip, got %+v", loaded.Projects.Rows)
			}
			if loaded.Projects.View.SortColumn != "title" {
				t.Errorf("Expected view-state round-trip, got %+v", loaded.Projects.View)
			}
		})
	}
}

func TestNextSeqMonotonic(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var last int64
			for i := 0; i < 4; i++ {
				n, err := store.NextSeq("sid-seq")
				if err != nil {
					t.Fatalf("NextSeq failed: %v", err)
				}
				if n <= last {
					t.Errorf("Expected growing sequence, got %d after %d", n, last)
				}
				last = n
			}
		})
	}
}

func TestSeqIndependentPerSession(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			a, _ := store.NextSeq("sid-a")
			b, _ := store.NextSeq("sid-b")

			if a != 1 || b != 1 {
				t.Errorf("Expected independent counters, got a=%d b=%d", a, b)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			st, _ := store.Get("sid-del")
			st.Projects.Search = "kept?"
			store.Save("sid-del", st)

			if err := store.Delete("sid-del"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}

			loaded, err := store.Get("sid-del")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if loaded.Projects.Search != "" {
				t.Errorf("Expected fresh session after delete, got %+v", loaded.Projects)
			}
		})
	}
}

func TestSessionExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := cache.DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	rds := cache.NewRedisCache(cfg)
	defer rds.Close()

	store := session.NewStore(rds, time.Second, 6)

	st, _ := store.Get("sid-ttl")
	st.Projects.Search = "soon gone"
	store.Save("sid-ttl", st)
	if _, err := store.NextSeq("sid-ttl"); err != nil {
		t.Fatalf("NextSeq failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	loaded, err := store.Get("sid-ttl")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loaded.Projects.Search != "" {
		t.Errorf("Expected expired session to come back fresh, got %+v", loaded.Projects)
	}

	if mr.Exists("session:sid-ttl:seq") {
		t.Error("Expected seq counter to expire with the session")
	}
	n, err := store.NextSeq("sid-ttl")
	if err != nil {
		t.Fatalf("NextSeq failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected counter to restart after expiry, got %d", n)
	}
}
