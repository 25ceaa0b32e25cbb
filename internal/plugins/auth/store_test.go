package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pugetsound/eventscope/internal/apperror"
	"github.com/pugetsound/eventscope/internal/kvstore"
)

// --- Mock Provider ---

// mockProvider implements kvstore.Provider for testing. Unset funcs fall
// through to an in-memory map.
type mockProvider struct {
	data     map[string][]byte
	getFn    func(ctx context.Context, key string) ([]byte, error)
	setFn    func(ctx context.Context, key string, value []byte) error
	removeFn func(ctx context.Context, key string) error
}

func newMockProvider() *mockProvider {
	return &mockProvider{data: map[string][]byte{}}
}

func (m *mockProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, kvstore.ErrNotFound
	}
	return v, nil
}

func (m *mockProvider) Set(ctx context.Context, key string, value []byte) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value)
	}
	m.data[key] = value
	return nil
}

func (m *mockProvider) Remove(ctx context.Context, key string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, key)
	}
	delete(m.data, key)
	return nil
}

// snapshot decodes what the store persisted under the fixed key.
func (m *mockProvider) snapshot(t *testing.T) *User {
	t.Helper()
	raw, ok := m.data[snapshotKey]
	if !ok {
		return nil
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	return &u
}

var errStorageDown = errors.New("storage unavailable")

// --- Test Helpers ---

func testUsers() []User {
	return []User{
		{ID: "1", Name: "John Doe", Email: "john@example.com"},
		{ID: "2", Name: "Admin User", Email: "admin@example.com", IsAdmin: true},
	}
}

func newTestDirectory(t *testing.T) Directory {
	t.Helper()
	dir, err := newStaticDirectory(testUsers(), "password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("building directory: %v", err)
	}
	return dir
}

func newTestStore(t *testing.T, p *mockProvider) *Store {
	t.Helper()
	return NewStore(p, newTestDirectory(t), true)
}

// assertAppError checks that err is an AppError with the expected status code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status code %d, got %d", expectedCode, appErr.Code)
	}
}

// --- Directory ---

func TestNewStaticDirectory_RejectsDuplicates(t *testing.T) {
	users := append(testUsers(), User{ID: "3", Email: "john@example.com"})
	if _, err := newStaticDirectory(users, "password", bcrypt.MinCost); err == nil {
		t.Error("expected duplicate email to be rejected")
	}
	if _, err := newStaticDirectory(testUsers(), "", bcrypt.MinCost); err == nil {
		t.Error("expected empty sentinel to be rejected")
	}
}

func TestDirectory_ExactEmailMatch(t *testing.T) {
	dir := newTestDirectory(t)
	if _, ok := dir.FindByEmail("john@example.com"); !ok {
		t.Error("expected exact match")
	}
	for _, email := range []string{"John@example.com", " john@example.com", "john@example"} {
		if _, ok := dir.FindByEmail(email); ok {
			t.Errorf("expected %q not to match", email)
		}
	}
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	dir := newTestDirectory(t)
	u, _ := dir.FindByID("1")
	u.FavoriteEvents = append(u.FavoriteEvents, "x")
	u.IsAdmin = true

	again, _ := dir.FindByID("1")
	if again.IsAdmin || len(again.FavoriteEvents) != 0 {
		t.Error("directory entry was mutated through a lookup")
	}
}

// --- Login ---

func TestLogin_AdminSucceeds(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)

	u, err := s.Login(context.Background(), "admin@example.com", "password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "2" || !u.IsAdmin {
		t.Errorf("unexpected user %+v", u)
	}
	if !s.IsAuthenticated() || !s.IsAdmin() {
		t.Error("expected authenticated admin")
	}

	snap := p.snapshot(t)
	if snap == nil || snap.Email != "admin@example.com" || !snap.IsAdmin {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.FavoriteEvents == nil || snap.CreatedEvents == nil {
		t.Error("snapshot lists should encode as [] not null")
	}
}

func TestLogin_NonAdmin(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	if _, err := s.Login(context.Background(), "john@example.com", "password"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsAdmin() {
		t.Error("john is not an admin")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	cases := []struct {
		name, email, password string
	}{
		{"wrong password", "admin@example.com", "hunter2"},
		{"unknown email", "nobody@example.com", "password"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newMockProvider()
			s := newTestStore(t, p)

			_, err := s.Login(context.Background(), tc.email, tc.password)
			if !errors.Is(err, apperror.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			assertAppError(t, err, 401)
			if apperror.SafeMessage(err) != "Invalid credentials" {
				t.Errorf("unexpected message %q", apperror.SafeMessage(err))
			}
			if s.IsAuthenticated() {
				t.Error("failed login must not authenticate")
			}
			if len(p.data) != 0 {
				t.Error("failed login must not persist anything")
			}
		})
	}
}

func TestLogin_FailureKeepsPreviousIdentity(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	ctx := context.Background()
	if _, err := s.Login(ctx, "john@example.com", "password"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Login(ctx, "admin@example.com", "wrong"); err == nil {
		t.Fatal("expected failure")
	}
	if u := s.Current(); u == nil || u.ID != "1" {
		t.Errorf("expected john to remain current, got %+v", u)
	}
}

func TestLogin_PersistFailureRollsBack(t *testing.T) {
	p := newMockProvider()
	p.setFn = func(ctx context.Context, key string, value []byte) error { return errStorageDown }
	s := newTestStore(t, p)

	_, err := s.Login(context.Background(), "admin@example.com", "password")
	assertAppError(t, err, 500)
	if !errors.Is(err, errStorageDown) {
		t.Error("expected provider error to be wrapped")
	}
	if s.IsAuthenticated() {
		t.Error("login must be rolled back when persisting fails")
	}
}

// --- Logout ---

func TestLogout_ClearsIdentityAndSnapshot(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")

	if err := s.Logout(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsAuthenticated() || s.IsAdmin() || s.Current() != nil {
		t.Error("expected logged-out store")
	}
	if _, ok := p.data[snapshotKey]; ok {
		t.Error("expected snapshot to be erased")
	}
}

func TestLogout_WhenLoggedOut(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	if err := s.Logout(context.Background()); err != nil {
		t.Errorf("logout without a session should succeed, got %v", err)
	}
}

func TestLogout_ProviderFailureStillClearsIdentity(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")

	p.removeFn = func(ctx context.Context, key string) error { return errStorageDown }
	err := s.Logout(ctx)
	assertAppError(t, err, 500)
	if s.IsAuthenticated() {
		t.Error("identity must be cleared even when removal fails")
	}
}

// --- ToggleFavorite ---

func TestToggleFavorite_NoIdentityIsNoOp(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	if err := s.ToggleFavorite(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.data) != 0 {
		t.Error("toggle without identity must not persist")
	}
}

func TestToggleFavorite_InsertionOrderSet(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")

	for _, id := range []string{"3", "1", "5"} {
		if err := s.ToggleFavorite(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Current().FavoriteEvents; !slices.Equal(got, []string{"3", "1", "5"}) {
		t.Errorf("unexpected favorites %v", got)
	}

	_ = s.ToggleFavorite(ctx, "1")
	if got := s.Current().FavoriteEvents; !slices.Equal(got, []string{"3", "5"}) {
		t.Errorf("unexpected favorites after removal %v", got)
	}
	if snap := p.snapshot(t); !slices.Equal(snap.FavoriteEvents, []string{"3", "5"}) {
		t.Errorf("snapshot not re-persisted: %v", snap.FavoriteEvents)
	}
}

func TestToggleFavorite_TwiceIsInvolution(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")
	_ = s.ToggleFavorite(ctx, "2")
	before := s.Current().FavoriteEvents

	_ = s.ToggleFavorite(ctx, "4")
	_ = s.ToggleFavorite(ctx, "4")
	if got := s.Current().FavoriteEvents; !slices.Equal(got, before) {
		t.Errorf("expected %v, got %v", before, got)
	}

	_ = s.ToggleFavorite(ctx, "2")
	_ = s.ToggleFavorite(ctx, "2")
	if got := s.Current().FavoriteEvents; !slices.Equal(got, before) {
		t.Errorf("expected %v after remove+add, got %v", before, got)
	}
}

func TestToggleFavorite_PersistFailureRollsBack(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")

	p.setFn = func(ctx context.Context, key string, value []byte) error { return errStorageDown }
	err := s.ToggleFavorite(ctx, "1")
	assertAppError(t, err, 500)
	if s.Current().HasFavorite("1") {
		t.Error("favorite must be rolled back when persisting fails")
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	ctx := context.Background()
	_, _ = s.Login(ctx, "john@example.com", "password")

	u := s.Current()
	u.FavoriteEvents = append(u.FavoriteEvents, "99")
	u.IsAdmin = true

	if s.IsAdmin() || s.Current().HasFavorite("99") {
		t.Error("caller mutation leaked into the store")
	}
}

// --- RecordCreated ---

func TestRecordCreated(t *testing.T) {
	p := newMockProvider()
	s := newTestStore(t, p)
	ctx := context.Background()

	if err := s.RecordCreated(ctx, "event-1"); err != nil || len(p.data) != 0 {
		t.Fatal("record without identity should be a silent no-op")
	}

	_, _ = s.Login(ctx, "john@example.com", "password")
	_ = s.RecordCreated(ctx, "event-1")
	_ = s.RecordCreated(ctx, "event-2")
	_ = s.RecordCreated(ctx, "event-1")

	if got := s.Current().CreatedEvents; !slices.Equal(got, []string{"event-1", "event-2"}) {
		t.Errorf("unexpected created events %v", got)
	}
	if snap := p.snapshot(t); len(snap.CreatedEvents) != 2 {
		t.Errorf("snapshot not re-persisted: %v", snap.CreatedEvents)
	}
}

// --- Restore ---

func persistRaw(t *testing.T, p *mockProvider, u User) {
	t.Helper()
	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	p.data[snapshotKey] = raw
}

func TestRestore_NoSnapshot(t *testing.T) {
	s := newTestStore(t, newMockProvider())
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("expected logged-out store")
	}
}

func TestRestore_RoundTripAfterLogin(t *testing.T) {
	p := newMockProvider()
	ctx := context.Background()
	first := newTestStore(t, p)
	_, _ = first.Login(ctx, "john@example.com", "password")
	_ = first.ToggleFavorite(ctx, "4")

	second := newTestStore(t, p)
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := second.Current()
	if u == nil || u.ID != "1" || !slices.Equal(u.FavoriteEvents, []string{"4"}) {
		t.Errorf("unexpected restored user %+v", u)
	}
}

func TestRestore_RevalidationTakesDirectoryFlags(t *testing.T) {
	p := newMockProvider()
	persistRaw(t, p, User{
		ID: "1", Name: "Forged", Email: "john@example.com", IsAdmin: true,
		FavoriteEvents: []string{"2"},
	})
	s := newTestStore(t, p)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u := s.Current()
	if u.IsAdmin || u.Name != "John Doe" {
		t.Errorf("expected directory flags, got %+v", u)
	}
	if !slices.Equal(u.FavoriteEvents, []string{"2"}) {
		t.Errorf("expected favorites from snapshot, got %v", u.FavoriteEvents)
	}
}

func TestRestore_RevalidationDiscardsStaleSnapshot(t *testing.T) {
	cases := []User{
		{ID: "9", Email: "ghost@example.com"},
		{ID: "1", Email: "admin@example.com"},
	}
	for _, snap := range cases {
		p := newMockProvider()
		persistRaw(t, p, snap)
		s := newTestStore(t, p)

		if err := s.Restore(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.IsAuthenticated() {
			t.Errorf("snapshot %+v should not restore", snap)
		}
		if _, ok := p.data[snapshotKey]; ok {
			t.Errorf("stale snapshot %+v should be erased", snap)
		}
	}
}

func TestRestore_VerbatimWithoutRevalidation(t *testing.T) {
	p := newMockProvider()
	persistRaw(t, p, User{ID: "9", Name: "Ghost", Email: "ghost@example.com", IsAdmin: true})
	s := NewStore(p, newTestDirectory(t), false)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u := s.Current(); u == nil || u.ID != "9" || !s.IsAdmin() {
		t.Errorf("expected verbatim restore, got %+v", u)
	}
}

func TestRestore_UndecodableSnapshotIsErased(t *testing.T) {
	p := newMockProvider()
	p.data[snapshotKey] = []byte("{not json")
	s := newTestStore(t, p)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsAuthenticated() {
		t.Error("expected logged-out store")
	}
	if _, ok := p.data[snapshotKey]; ok {
		t.Error("expected garbage snapshot to be erased")
	}
}

func TestRestore_ProviderFailure(t *testing.T) {
	p := newMockProvider()
	p.getFn = func(ctx context.Context, key string) ([]byte, error) { return nil, errStorageDown }
	s := newTestStore(t, p)

	err := s.Restore(context.Background())
	assertAppError(t, err, 500)
}

// --- Manager ---

func TestManager_IsolatesClients(t *testing.T) {
	backend := kvstore.NewMemory()
	m := NewManager(backend, newTestDirectory(t), true)
	ctx := context.Background()

	a, err := m.For(ctx, "client-a")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := m.For(ctx, "client-b")
	if a == b {
		t.Fatal("expected distinct stores per client")
	}

	_, _ = a.Login(ctx, "admin@example.com", "password")
	if b.IsAuthenticated() {
		t.Error("login leaked across clients")
	}
	if again, _ := m.For(ctx, "client-a"); again != a {
		t.Error("expected cached store for repeat client")
	}
	if _, err := backend.Get(ctx, "client:client-a:user"); err != nil {
		t.Errorf("expected namespaced snapshot, got %v", err)
	}
}

func TestManager_RestoresPersistedClient(t *testing.T) {
	backend := kvstore.NewMemory()
	ctx := context.Background()

	first := NewManager(backend, newTestDirectory(t), true)
	s, _ := first.For(ctx, "client-a")
	_, _ = s.Login(ctx, "john@example.com", "password")

	// A new manager models a server restart over the same backend.
	second := NewManager(backend, newTestDirectory(t), true)
	restored, err := second.For(ctx, "client-a")
	if err != nil {
		t.Fatal(err)
	}
	if u := restored.Current(); u == nil || u.ID != "1" {
		t.Errorf("expected john restored, got %+v", u)
	}
}

func TestManager_AnonymousClientsAreNotCached(t *testing.T) {
	m := NewManager(kvstore.NewMemory(), newTestDirectory(t), true)
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		s, err := m.For(ctx, fmt.Sprintf("client-%d", i))
		if err != nil {
			t.Fatal(err)
		}
		if s.IsAuthenticated() {
			t.Fatal("fresh client should be anonymous")
		}
	}
	if n := m.Len(); n != 0 {
		t.Errorf("expected no cached stores for anonymous clients, got %d", n)
	}
}

func TestManager_LoginAdoptsStore(t *testing.T) {
	m := NewManager(kvstore.NewMemory(), newTestDirectory(t), true)
	ctx := context.Background()

	s, _ := m.For(ctx, "client-a")
	if _, err := s.Login(ctx, "john@example.com", "password"); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("expected login to cache the store, got %d", m.Len())
	}
	if again, _ := m.For(ctx, "client-a"); again != s {
		t.Error("expected the logged-in store back")
	}

	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("expected logout to drop the store, got %d", m.Len())
	}
}

func TestManager_FailedLoginIsNotCached(t *testing.T) {
	m := NewManager(kvstore.NewMemory(), newTestDirectory(t), true)
	ctx := context.Background()

	s, _ := m.For(ctx, "client-a")
	_, _ = s.Login(ctx, "john@example.com", "wrong")
	if m.Len() != 0 {
		t.Errorf("expected nothing cached after failed login, got %d", m.Len())
	}
}

func TestManager_CacheIsBounded(t *testing.T) {
	backend := kvstore.NewMemory()
	m := NewManager(backend, newTestDirectory(t), true, WithCacheSize(3))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		s, _ := m.For(ctx, fmt.Sprintf("client-%d", i))
		if _, err := s.Login(ctx, "john@example.com", "password"); err != nil {
			t.Fatal(err)
		}
	}
	if n := m.Len(); n != 3 {
		t.Fatalf("expected cache capped at 3, got %d", n)
	}

	// client-0 was evicted but its snapshot survives in the provider.
	s, err := m.For(ctx, "client-0")
	if err != nil {
		t.Fatal(err)
	}
	if u := s.Current(); u == nil || u.ID != "1" {
		t.Errorf("expected evicted client restored from snapshot, got %+v", u)
	}
	if m.Len() != 3 {
		t.Errorf("expected cache to stay at 3, got %d", m.Len())
	}
}

func TestManager_RestoreFailureIsNotCached(t *testing.T) {
	p := newMockProvider()
	p.getFn = func(ctx context.Context, key string) ([]byte, error) { return nil, errStorageDown }
	m := NewManager(p, newTestDirectory(t), true)

	if _, err := m.For(context.Background(), "client-a"); err == nil {
		t.Fatal("expected restore error")
	}
	if m.Len() != 0 {
		t.Errorf("expected nothing cached, got %d", m.Len())
	}
}

func TestManager_RestoreDoesNotBlockOtherClients(t *testing.T) {
	p := newMockProvider()
	release := make(chan struct{})
	entered := make(chan struct{})
	p.getFn = func(ctx context.Context, key string) ([]byte, error) {
		if key == "client:slow:user" {
			close(entered)
			<-release
		}
		return nil, kvstore.ErrNotFound
	}
	m := NewManager(p, newTestDirectory(t), true)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.For(ctx, "slow")
	}()
	<-entered

	if _, err := m.For(ctx, "fast"); err != nil {
		t.Errorf("fast client: %v", err)
	}
	close(release)
	wg.Wait()
}

func TestManager_ConcurrentFirstUseSharesStore(t *testing.T) {
	backend := kvstore.NewMemory()
	ctx := context.Background()

	seed := NewManager(backend, newTestDirectory(t), true)
	s, _ := seed.For(ctx, "client-a")
	_, _ = s.Login(ctx, "admin@example.com", "password")

	m := NewManager(backend, newTestDirectory(t), true)
	stores := make([]*Store, 16)
	var wg sync.WaitGroup
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i], _ = m.For(ctx, "client-a")
		}(i)
	}
	wg.Wait()

	cached, _ := m.For(ctx, "client-a")
	for i, got := range stores {
		if got != cached {
			t.Errorf("request %d got a store that is not the cached one", i)
		}
	}
	if m.Len() != 1 {
		t.Errorf("expected one cached store, got %d", m.Len())
	}
}
