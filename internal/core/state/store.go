// Package state is the normalized client-state container. One Store per
// signed-in user holds three slices (auth, policy, dashboard); every async
// operation drives its slice through an explicit status lifecycle and the
// whole store snapshots to the encrypted session store after each mutation.
//
// Concurrent invocations of the same operation are last-response-wins by
// design: there is no request token or cancellation, so when two fetches
// overlap, whichever finishes last owns the slice.
package state

import (
	"encoding/json"
	"sync"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/pkg/chartdata"
)

// Persister is where a store snapshots itself. Load returning false means
// no snapshot exists; a snapshot that fails to decode is treated the same.
type Persister interface {
	Save(snapshot []byte) error
	Load() ([]byte, bool)
}

// AuthSlice holds the signed-in identity and the admin user listing
type AuthSlice struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	User       *models.UserResponse   `json:"user,omitempty"`
	Users      []*models.UserResponse `json:"users"`
	UsersTotal int64                  `json:"users_total"`
	Roles      []*models.Role         `json:"roles"`
}

// Filters narrows the loaded enrollment rows. Empty fields do not
// constrain; dates are "2006-01-02" and compare against the joined
// policy's start and end dates.
type Filters struct {
	Type      string `json:"type,omitempty"`
	Status    string `json:"status,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// PolicySlice holds the catalog and the caller's visible enrollments.
// Filtered is the view of Enrollments matching Filters; a fresh fetch
// resets it to the full page.
type PolicySlice struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	Catalog     []*models.Policy             `json:"catalog"`
	Enrollments []*models.EnrollmentResponse `json:"enrollments"`
	Filters     Filters                      `json:"filters"`
	Filtered    []*models.EnrollmentResponse `json:"filtered"`
	Total       int64                        `json:"total"`
	Page        int                          `json:"page"`
	TotalPages  int                          `json:"total_pages"`
}

// DashboardSlice caches the aggregate report rows. Rows are replaced
// wholesale on every fetch, never mutated in place.
type DashboardSlice struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	CountsByTypeStatus []chartdata.TypeStatusCount     `json:"counts_by_type_status"`
	MonthlyCoverage    []chartdata.MonthlyCoverage     `json:"monthly_coverage"`
	CoverageByType     []chartdata.TypeMonthlyCoverage `json:"coverage_by_type"`
	PremiumByType      []chartdata.PremiumByType       `json:"premium_by_type"`
}

// snapshot is the serialized form of a store
type snapshot struct {
	Auth      AuthSlice      `json:"auth"`
	Policy    PolicySlice    `json:"policy"`
	Dashboard DashboardSlice `json:"dashboard"`
}

// Store is one user's state container
type Store struct {
	mu        sync.Mutex
	auth      AuthSlice
	policy    PolicySlice
	dashboard DashboardSlice
	persister Persister
	deps      Deps
	userID    string
}

func defaultSnapshot() snapshot {
	return snapshot{
		Auth:      AuthSlice{Status: StatusIdle, Users: []*models.UserResponse{}, Roles: []*models.Role{}},
		Policy:    PolicySlice{Status: StatusIdle, Catalog: []*models.Policy{}, Enrollments: []*models.EnrollmentResponse{}, Filtered: []*models.EnrollmentResponse{}, Page: 1},
		Dashboard: DashboardSlice{Status: StatusIdle},
	}
}

// newStore builds a store at defaults and then tries to rehydrate it.
// A missing or undecodable snapshot leaves the defaults in place.
func newStore(userID string, deps Deps, persister Persister) *Store {
	s := &Store{persister: persister, deps: deps, userID: userID}
	s.applySnapshot(defaultSnapshot())

	if blob, ok := persister.Load(); ok {
		var snap snapshot
		if err := json.Unmarshal(blob, &snap); err == nil {
			// A rehydrated slice never resumes mid-flight
			if !snap.Auth.Status.Terminal() {
				snap.Auth.Status = StatusIdle
			}
			if !snap.Policy.Status.Terminal() {
				snap.Policy.Status = StatusIdle
			}
			if !snap.Dashboard.Status.Terminal() {
				snap.Dashboard.Status = StatusIdle
			}
			s.applySnapshot(snap)
		}
	}
	return s
}

func (s *Store) applySnapshot(snap snapshot) {
	s.auth = snap.Auth
	s.policy = snap.Policy
	s.dashboard = snap.Dashboard
}

// Auth returns a copy of the auth slice
func (s *Store) Auth() AuthSlice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// Policy returns a copy of the policy slice
func (s *Store) Policy() PolicySlice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy
}

// Dashboard returns a copy of the dashboard slice
func (s *Store) Dashboard() DashboardSlice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard
}

// Reset reinitializes every slice to its defaults in one atomic step and
// persists the cleared snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySnapshot(defaultSnapshot())
	s.persistLocked()
}

// mutate runs fn under the store lock and snapshots afterwards
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.persistLocked()
}

func (s *Store) persistLocked() {
	snap := snapshot{Auth: s.auth, Policy: s.policy, Dashboard: s.dashboard}
	blob, err := json.Marshal(snap)
	if err != nil {
		return
	}
	// Snapshot write failures are swallowed; the in-memory store stays
	// authoritative and the next mutation retries.
	_ = s.persister.Save(blob)
}
