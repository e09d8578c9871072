// Package state persists the per-day attempt counter so the daily quota
// survives process restarts (the state dir is carried between CI runs by a
// cache). A missing or corrupt file is an empty state, never an error.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// DayCount tracks draw attempts for one calendar day.
type DayCount struct {
	Tries int `json:"tries"`
}

// State is the whole persisted document, keyed by YYYY-MM-DD day keys.
type State struct {
	Days map[string]*DayCount `json:"days,omitempty"`
}

// Store reads and writes State at a fixed path. Day keys are computed in
// Loc so the quota rolls over on the platform's calendar, not the host's.
type Store struct {
	Path string
	Loc  *time.Location
}

// NewStore places the state file under dir.
func NewStore(dir string, loc *time.Location) *Store {
	return &Store{Path: filepath.Join(dir, "state.json"), Loc: loc}
}

// TodayKey is the current day key in the store's timezone.
func (s *Store) TodayKey() string {
	return time.Now().In(s.Loc).Format("2006-01-02")
}

// Load reads the state document. Absent or unreadable files yield an empty
// state so a cold start (or a trashed cache) simply begins at zero.
func (s *Store) Load() *State {
	st := &State{Days: map[string]*DayCount{}}

	data, err := os.ReadFile(s.Path)

	if err != nil {
		return st
	}

	if err := json.Unmarshal(data, st); err != nil {
		return &State{Days: map[string]*DayCount{}}
	}

	if st.Days == nil {
		st.Days = map[string]*DayCount{}
	}

	return st
}

// Save flushes the document synchronously.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return errors.Wrap(err, "create state dir")
	}

	data, err := json.MarshalIndent(st, "", "  ")

	if err != nil {
		return errors.Wrap(err, "encode state")
	}

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return errors.Wrap(err, "write state")
	}

	return nil
}

// TriesToday reads today's attempt count from st.
func (s *Store) TriesToday(st *State) int {
	if d, ok := st.Days[s.TodayKey()]; ok {
		return d.Tries
	}

	return 0
}

// BumpToday increments today's count in st and flushes immediately. A crash
// between an attempt being sent and the flush can at worst under-count by
// one; the counter never runs ahead of attempts actually made.
func (s *Store) BumpToday(st *State) error {
	key := s.TodayKey()
	d, ok := st.Days[key]

	if !ok {
		d = &DayCount{}
		st.Days[key] = d
	}

	d.Tries++

	return s.Save(st)
}
