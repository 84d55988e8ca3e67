package service

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"
	"time"

	"appointment-scheduler/core/cache"
	"appointment-scheduler/core/constants"
	"appointment-scheduler/core/errors"
	"appointment-scheduler/core/utils"
	"appointment-scheduler/modules/auth/dto"
	"appointment-scheduler/modules/auth/entity"
	userDto "appointment-scheduler/modules/user/dto"
	userEntity "appointment-scheduler/modules/user/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Mocks
// =============================================================================

type mockUserService struct {
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError)
	getByEmailFunc  func(ctx context.Context, email string) (*userEntity.User, *errors.AppError)
	emailExistsFunc func(ctx context.Context, email string) (bool, *errors.AppError)
	createFunc      func(ctx context.Context, input *userDto.CreateUserInput) (*userEntity.User, *errors.AppError)
}

func notImplemented() *errors.AppError {
	return errors.NewAppError(errors.ErrInternalServer, "not implemented", nil)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, *errors.AppError) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, notImplemented()
}

func (m *mockUserService) GetByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]*userEntity.User, *errors.AppError) {
	return nil, notImplemented()
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*userEntity.User, *errors.AppError) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, notImplemented()
}

func (m *mockUserService) EmailExists(ctx context.Context, email string) (bool, *errors.AppError) {
	if m.emailExistsFunc != nil {
		return m.emailExistsFunc(ctx, email)
	}
	return false, notImplemented()
}

func (m *mockUserService) Create(ctx context.Context, input *userDto.CreateUserInput) (*userEntity.User, *errors.AppError) {
	if m.createFunc != nil {
		return m.createFunc(ctx, input)
	}
	return nil, notImplemented()
}

// memTokenRepo is an in-memory token table.
type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]entity.Token
	finds  int
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: map[string]entity.Token{}}
}

func (r *memTokenRepo) Add(_ context.Context, token *entity.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = *token
	return nil
}

func (r *memTokenRepo) FindValid(_ context.Context, token string, now time.Time) (*entity.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	t, ok := r.tokens[token]
	if !ok || !t.ExpiresAt.After(now) {
		return nil, nil
	}
	return &t, nil
}

func (r *memTokenRepo) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *memTokenRepo) DeleteAllForUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted []string
	for k, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, k)
			deleted = append(deleted, k)
		}
	}
	return deleted, nil
}

func (r *memTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if !t.ExpiresAt.After(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

// stickyCache is an in-memory cache whose deletes can be made to fail, leaving the
// entry readable.
type stickyCache struct {
	mu          sync.Mutex
	entries     map[string]string
	failDeletes bool
}

func newStickyCache() *stickyCache {
	return &stickyCache{entries: map[string]string{}}
}

func (c *stickyCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *stickyCache) Set(_ context.Context, key, value string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *stickyCache) Delete(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDeletes {
		return false
	}
	delete(c.entries, key)
	return true
}

func (c *stickyCache) Available() bool { return true }

// =============================================================================
// Test Helpers
// =============================================================================

const testSecret = "auth-service-test-secret-32-bytes!!"

func newRedisCache(t *testing.T) cache.Cache {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCache(client, 3, time.Minute)
}

func newTestUser(t *testing.T, password string) *userEntity.User {
	t.Helper()

	hashed, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	u := &userEntity.User{
		FirstName: "Dana",
		LastName:  "Scully",
		Email:     "dana@example.com",
		Password:  hashed,
		Role:      constants.RoleManager,
	}
	u.ID = uuid.New()
	return u
}

func newService(users *mockUserService, repo *memTokenRepo, c cache.Cache) *AuthService {
	store := NewTokenStore(repo, c, time.Hour)
	return NewAuthService(users, store, utils.NewTokenIssuer(testSecret, 12*time.Hour))
}

// =============================================================================
// Login / Authenticate / Logout
// =============================================================================

func TestAuthService_LoginAuthenticateLogout(t *testing.T) {
	user := newTestUser(t, "correct-horse")
	users := &mockUserService{
		getByEmailFunc: func(_ context.Context, email string) (*userEntity.User, *errors.AppError) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}
	repo := newMemTokenRepo()
	svc := newService(users, repo, newRedisCache(t))
	ctx := context.Background()

	resp, appErr := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "correct-horse"})
	if appErr != nil {
		t.Fatalf("Login() error = %v", appErr)
	}
	if resp.Token == "" || resp.User.ID != user.ID {
		t.Fatalf("Login() = %+v", resp)
	}
	if ttl := time.Until(resp.ExpiresAt); ttl < 11*time.Hour || ttl > 12*time.Hour {
		t.Errorf("token expiry in %v, want about 12h", ttl)
	}

	claims, appErr := svc.Authenticate(ctx, resp.Token)
	if appErr != nil {
		t.Fatalf("Authenticate() error = %v", appErr)
	}
	if claims.UserID != user.ID || !claims.IsManager() {
		t.Errorf("claims = %+v", claims)
	}
	if repo.finds != 0 {
		t.Errorf("Authenticate() after Login should hit the cache, store lookups = %d", repo.finds)
	}

	if appErr := svc.Logout(ctx, resp.Token); appErr != nil {
		t.Fatalf("Logout() error = %v", appErr)
	}
	if _, appErr := svc.Authenticate(ctx, resp.Token); appErr == nil || appErr.Message != "Invalid or expired token" {
		t.Errorf("Authenticate() after Logout = %v, want Invalid or expired token", appErr)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	user := newTestUser(t, "correct-horse")
	users := &mockUserService{
		getByEmailFunc: func(_ context.Context, email string) (*userEntity.User, *errors.AppError) {
			if email == user.Email {
				return user, nil
			}
			return nil, nil
		},
	}
	svc := newService(users, newMemTokenRepo(), cache.NewNoopCache())

	tests := []struct {
		name string
		req  dto.LoginRequest
	}{
		{"unknown email", dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"}},
		{"wrong password", dto.LoginRequest{Email: user.Email, Password: "battery-staple"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := svc.Login(context.Background(), &tt.req)
			if appErr == nil || appErr.Code != errors.ErrUnauthorized || appErr.Message != "Invalid credentials" {
				t.Errorf("Login() error = %v, want Invalid credentials", appErr)
			}
		})
	}
}

func TestAuthService_Authenticate_FallsBackToStore(t *testing.T) {
	user := newTestUser(t, "correct-horse")
	repo := newMemTokenRepo()
	c := newRedisCache(t)
	svc := newService(&mockUserService{}, repo, c)

	token, expiresAt, err := svc.issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	// Stored without going through the cache.
	_ = repo.Add(context.Background(), &entity.Token{Token: token, UserID: user.ID, ExpiresAt: expiresAt})

	if _, appErr := svc.Authenticate(context.Background(), token); appErr != nil {
		t.Fatalf("Authenticate() error = %v", appErr)
	}
	if repo.finds != 1 {
		t.Fatalf("store lookups = %d, want 1", repo.finds)
	}
	if _, ok := c.Get(context.Background(), constants.RedisKeyToken+token); !ok {
		t.Error("token should be written back to the cache")
	}

	if _, appErr := svc.Authenticate(context.Background(), token); appErr != nil {
		t.Fatalf("second Authenticate() error = %v", appErr)
	}
	if repo.finds != 1 {
		t.Errorf("second lookup should be served by the cache, store lookups = %d", repo.finds)
	}
}

func TestAuthService_Authenticate_Errors(t *testing.T) {
	user := newTestUser(t, "correct-horse")
	repo := newMemTokenRepo()
	svc := newService(&mockUserService{}, repo, cache.NewNoopCache())
	ctx := context.Background()

	expiredIssuer := utils.NewTokenIssuer(testSecret, time.Millisecond)
	expired, _, _ := expiredIssuer.GenerateToken(user.ID, user.Email, user.Role)
	// The row outlives the signature.
	_ = repo.Add(ctx, &entity.Token{Token: expired, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)})

	foreign, _, _ := utils.NewTokenIssuer("another-secret-of-sufficient-size!!", time.Hour).GenerateToken(user.ID, user.Email, user.Role)
	_ = repo.Add(ctx, &entity.Token{Token: foreign, UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)})

	time.Sleep(5 * time.Millisecond)

	tests := []struct {
		name     string
		token    string
		wantCode errors.ErrorCode
		wantMsg  string
	}{
		{"not stored", "never-issued", errors.ErrUnauthorized, "Invalid or expired token"},
		{"expired signature", expired, errors.ErrTokenExpired, "Token expired"},
		{"bad signature", foreign, errors.ErrInvalidTokenFormat, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, appErr := svc.Authenticate(ctx, tt.token)
			if appErr == nil || appErr.Code != tt.wantCode || appErr.Message != tt.wantMsg {
				t.Errorf("Authenticate() = %v, want %s %q", appErr, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

// =============================================================================
// Register
// =============================================================================

func TestAuthService_Register(t *testing.T) {
	var got *userDto.CreateUserInput
	users := &mockUserService{
		emailExistsFunc: func(_ context.Context, email string) (bool, *errors.AppError) {
			return email == "taken@example.com", nil
		},
		createFunc: func(_ context.Context, input *userDto.CreateUserInput) (*userEntity.User, *errors.AppError) {
			got = input
			u := &userEntity.User{FirstName: input.FirstName, LastName: input.LastName, Email: input.Email, Role: input.Role}
			u.ID = uuid.New()
			return u, nil
		},
	}
	svc := newService(users, newMemTokenRepo(), cache.NewNoopCache())

	resp, appErr := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Fox", LastName: "Mulder", Email: "fox@example.com", Password: "trustno1!", Role: constants.RoleDeveloper,
	})
	if appErr != nil {
		t.Fatalf("Register() error = %v", appErr)
	}
	if resp.Email != "fox@example.com" || got.Password != "trustno1!" {
		t.Errorf("Register() = %+v, input = %+v", resp, got)
	}

	_, appErr = svc.Register(context.Background(), &dto.RegisterRequest{Email: "taken@example.com"})
	if appErr == nil || appErr.Kind() != errors.KindConflict {
		t.Errorf("Register() with taken email = %v, want conflict", appErr)
	}
}

func TestAuthService_Register_RaceMapsToConflict(t *testing.T) {
	users := &mockUserService{
		emailExistsFunc: func(context.Context, string) (bool, *errors.AppError) { return false, nil },
		createFunc: func(context.Context, *userDto.CreateUserInput) (*userEntity.User, *errors.AppError) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Email already exists", stdErrors.New("23505"))
		},
	}
	svc := newService(users, newMemTokenRepo(), cache.NewNoopCache())

	_, appErr := svc.Register(context.Background(), &dto.RegisterRequest{Email: "fox@example.com"})
	if appErr == nil || appErr.Message != "User with this email already exists" {
		t.Errorf("Register() = %v, want conflict message", appErr)
	}
}

func TestAuthService_PurgeExpiredTokens(t *testing.T) {
	repo := newMemTokenRepo()
	ctx := context.Background()
	_ = repo.Add(ctx, &entity.Token{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	_ = repo.Add(ctx, &entity.Token{Token: "live", ExpiresAt: time.Now().Add(time.Hour)})

	n, err := newService(&mockUserService{}, repo, cache.NewNoopCache()).PurgeExpiredTokens(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpiredTokens() = %d, %v; want 1", n, err)
	}
	if _, ok := repo.tokens["live"]; !ok {
		t.Error("live token must survive the sweep")
	}
}

// =============================================================================
// Token store revocation
// =============================================================================

func TestTokenStore_MissedEvictionFallsBackToStore(t *testing.T) {
	repo := newMemTokenRepo()
	c := newStickyCache()
	store := NewTokenStore(repo, c, time.Hour)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()
	owner := uuid.New()

	if err := store.Save(ctx, "revoked", owner, now.Add(12*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, "live", owner, now.Add(12*time.Hour)); err != nil {
		t.Fatal(err)
	}

	c.failDeletes = true
	if err := store.Revoke(ctx, "revoked"); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	c.failDeletes = false
	if _, ok := c.Get(ctx, constants.RedisKeyToken+"revoked"); !ok {
		t.Fatal("entry should have survived the failed eviction")
	}

	got, err := store.Lookup(ctx, "revoked")
	if err != nil || got != uuid.Nil {
		t.Fatalf("Lookup(revoked) = %v, %v; want uuid.Nil", got, err)
	}
	if _, ok := c.Get(ctx, constants.RedisKeyToken+"revoked"); ok {
		t.Error("stale entry should be dropped once the store rejects it")
	}
	if got, _ := store.Lookup(ctx, "live"); got != owner {
		t.Errorf("Lookup(live) = %v, want %v", got, owner)
	}
	if repo.finds != 2 {
		t.Errorf("store lookups = %d, want 2 while cache hits are being verified", repo.finds)
	}

	// Once every entry cached before the failure has expired, hits are trusted again.
	now = now.Add(time.Hour + time.Minute)
	if got, _ := store.Lookup(ctx, "live"); got != owner {
		t.Errorf("Lookup(live) = %v, want %v", got, owner)
	}
	if repo.finds != 2 {
		t.Errorf("store lookups = %d, want cache hit after the window", repo.finds)
	}
}

func TestAuthService_RevokeAllForUser(t *testing.T) {
	user := newTestUser(t, "correct-horse")
	users := &mockUserService{
		getByEmailFunc: func(context.Context, string) (*userEntity.User, *errors.AppError) { return user, nil },
	}
	repo := newMemTokenRepo()
	c := newRedisCache(t)
	svc := newService(users, repo, c)
	ctx := context.Background()

	first, appErr := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "correct-horse"})
	if appErr != nil {
		t.Fatalf("Login() error = %v", appErr)
	}
	_ = repo.Add(ctx, &entity.Token{Token: "someone-else", UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Hour)})

	if appErr := svc.RevokeAllForUser(ctx, user.ID); appErr != nil {
		t.Fatalf("RevokeAllForUser() error = %v", appErr)
	}
	if _, ok := c.Get(ctx, constants.RedisKeyToken+first.Token); ok {
		t.Error("revoked token should be evicted from the cache")
	}
	if _, appErr := svc.Authenticate(ctx, first.Token); appErr == nil {
		t.Error("Authenticate() after RevokeAllForUser should fail")
	}
	if _, ok := repo.tokens["someone-else"]; !ok {
		t.Error("other users' tokens must survive")
	}
}
