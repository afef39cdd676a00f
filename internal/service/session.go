package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/proconnect/internal/domain"
	"github.com/msomdec/proconnect/internal/event"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTitle        = "Professional"
	defaultLocation     = "Earth"
	defaultAbout        = "Welcome to my profile! I'm excited to connect and share professional experiences."
	defaultProfileImage = "https://images.pexels.com/photos/614810/pexels-photo-614810.jpeg?auto=compress&cs=tinysrgb&w=400"
	defaultCoverImage   = "https://images.pexels.com/photos/1323712/pexels-photo-1323712.jpeg?auto=compress&cs=tinysrgb&w=1200"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterInput is the profile submitted at sign-up.
type RegisterInput struct {
	Name         string `validate:"required"`
	Email        string `validate:"required,email"`
	Password     string `validate:"required"`
	Title        string
	Location     string
	ProfileImage string
}

// SessionOptions configures a SessionService.
type SessionOptions struct {
	Secret     string
	TTL        time.Duration // zero means tokens never expire
	BcryptCost int
	LoginRate  float64
	LoginBurst float64
	Now        func() time.Time
}

// SessionService owns the user directory and the identity of the active
// user. The directory entry is the only writable copy of a user; the
// persisted session snapshot is derived from it on every write.
type SessionService struct {
	mu        sync.RWMutex
	users     []domain.User
	currentID string
	// detached holds a restored snapshot whose user is missing from the
	// directory.
	detached *domain.User

	storage  *Storage
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	throttle *TokenBucket
	events   *event.Bus
	metrics  *Metrics
}

// NewSessionService creates the store and restores any persisted session.
func NewSessionService(ctx context.Context, storage *Storage, opts SessionOptions, events *event.Bus, metrics *Metrics) *SessionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.LoginBurst < 1 {
		opts.LoginBurst = 1
	}
	s := &SessionService{
		storage:  storage,
		secret:   []byte(opts.Secret),
		ttl:      opts.TTL,
		cost:     opts.BcryptCost,
		now:      opts.Now,
		throttle: NewTokenBucket(opts.LoginRate, opts.LoginBurst),
		events:   events,
		metrics:  metrics,
	}
	s.initialize(ctx)
	return s
}

// Close releases background resources.
func (s *SessionService) Close() {
	s.throttle.Close()
}

func (s *SessionService) initialize(ctx context.Context) {
	if _, err := s.storage.load(ctx, domain.KeyUserDirectory, &s.users); err != nil {
		slog.Warn("user directory unreadable, starting empty", "error", err)
		s.users = nil
	}

	var token string
	var snapshot domain.User
	hasToken, err := s.storage.load(ctx, domain.KeySessionToken, &token)
	if err != nil {
		slog.Warn("session token unreadable", "error", err)
		return
	}
	hasSnapshot, err := s.storage.load(ctx, domain.KeySessionUser, &snapshot)
	if err != nil {
		slog.Warn("session snapshot unreadable", "error", err)
		return
	}
	if !hasToken || !hasSnapshot {
		return
	}

	subject, err := s.parseToken(token)
	if err != nil || subject != snapshot.ID {
		slog.Info("discarding persisted session", "reason", "token rejected")
		s.storage.remove(ctx, domain.KeySessionToken)
		s.storage.remove(ctx, domain.KeySessionUser)
		return
	}

	s.currentID = snapshot.ID
	if s.indexOf(snapshot.ID) < 0 {
		snapshot.PasswordHash = ""
		s.detached = &snapshot
	}
	slog.Debug("session restored", "user_id", snapshot.ID)
}

// Register creates a user and makes it the active session.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := s.register(ctx, in)
	s.metrics.observe("session", "register", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(event.Event{Type: event.SessionChanged, UserID: user.ID})
	return user, nil
}

func (s *SessionService) register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: name, a valid email, and password are required", domain.ErrInvalidInput)
	}
	if len(in.Password) > 72 {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfEmail(in.Email) >= 0 {
		return nil, domain.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Email:              in.Email,
		PasswordHash:       string(hash),
		Title:              cmp.Or(in.Title, defaultTitle),
		Location:           cmp.Or(in.Location, defaultLocation),
		ProfileImage:       cmp.Or(in.ProfileImage, defaultProfileImage),
		CoverImage:         defaultCoverImage,
		About:              defaultAbout,
		Experience:         []domain.Experience{},
		Education:          []domain.Education{},
		Skills:             []string{},
		Connections:        []string{},
		ConnectionRequests: []string{},
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	s.users = append(s.users, user)
	s.currentID = user.ID
	s.detached = nil

	s.storage.save(ctx, domain.KeyUserDirectory, s.users)
	s.storage.save(ctx, domain.KeySessionToken, token)
	s.storage.save(ctx, domain.KeySessionUser, user.Public())

	slog.Info("user registered", "user_id", user.ID)
	public := user.Public()
	return &public, nil
}

// Login makes the directory entry matching email and password the active
// session. The returned user never carries the password hash.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.login(ctx, strings.TrimSpace(email), password)
	s.metrics.observe("session", "login", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(event.Event{Type: event.SessionChanged, UserID: user.ID})
	return user, nil
}

func (s *SessionService) login(ctx context.Context, email, password string) (*domain.User, error) {
	if !s.throttle.Allow(email) {
		return nil, domain.ErrRateLimited
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfEmail(email)
	if i < 0 {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.users[i].PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(s.users[i].ID)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	s.throttle.Reset(email)

	s.currentID = s.users[i].ID
	s.detached = nil
	public := s.users[i].Public()

	s.storage.save(ctx, domain.KeySessionToken, token)
	s.storage.save(ctx, domain.KeySessionUser, public)
	return &public, nil
}

// Logout ends the active session. The directory is left untouched.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.currentID == "" {
		s.mu.Unlock()
		s.metrics.observe("session", "logout", domain.ErrUnauthenticated)
		return domain.ErrUnauthenticated
	}
	userID := s.currentID
	s.currentID = ""
	s.detached = nil
	s.storage.remove(ctx, domain.KeySessionToken)
	s.storage.remove(ctx, domain.KeySessionUser)
	s.mu.Unlock()

	s.metrics.observe("session", "logout", nil)
	s.events.Publish(event.Event{Type: event.SessionChanged, UserID: userID})
	return nil
}

// UpdateProfile shallow-merges patch into the active user.
func (s *SessionService) UpdateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	user, err := s.updateProfile(ctx, patch)
	s.metrics.observe("session", "update_profile", err)
	if err != nil {
		return nil, err
	}
	s.events.Publish(event.Event{Type: event.UserUpdated, UserID: user.ID})
	return user, nil
}

func (s *SessionService) updateProfile(ctx context.Context, patch domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.currentLocked()
	if cur == nil {
		return nil, domain.ErrUnauthenticated
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if err := validate.Var(email, "required,email"); err != nil {
			return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
		}
		if i := s.indexOfEmail(email); i >= 0 && s.users[i].ID != cur.ID {
			return nil, domain.ErrDuplicateEmail
		}
		patch.Email = &email
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
	}

	patch.Apply(cur)
	s.persistCurrentLocked(ctx)

	public := cur.Public()
	return &public, nil
}

// RecordConnectionRequest adds the active user to target's inbound requests.
// It returns the acting user and whether a new request was recorded.
func (s *SessionService) RecordConnectionRequest(ctx context.Context, targetID string) (domain.User, bool, error) {
	actor, added, err := s.recordConnectionRequest(ctx, targetID)
	s.metrics.observe("session", "record_connection_request", err)
	if err == nil && added {
		s.events.Publish(event.Event{Type: event.UserUpdated, UserID: targetID})
	}
	return actor, added, err
}

func (s *SessionService) recordConnectionRequest(ctx context.Context, targetID string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.currentLocked()
	if cur == nil {
		return domain.User{}, false, domain.ErrUnauthenticated
	}
	if targetID == cur.ID {
		return domain.User{}, false, fmt.Errorf("%w: cannot connect with yourself", domain.ErrInvalidInput)
	}
	i := s.indexOf(targetID)
	if i < 0 {
		return domain.User{}, false, fmt.Errorf("%w: user %s", domain.ErrNotFound, targetID)
	}
	target := &s.users[i]
	if target.IsConnectedTo(cur.ID) {
		return domain.User{}, false, fmt.Errorf("%w: already connected", domain.ErrInvalidInput)
	}
	if target.HasRequestFrom(cur.ID) {
		return cur.Public(), false, nil
	}

	target.ConnectionRequests = append(target.ConnectionRequests, cur.ID)
	s.storage.save(ctx, domain.KeyUserDirectory, s.users)
	return cur.Public(), true, nil
}

// AcceptConnection connects the active user with requesterID, who must have
// a pending request, and clears that request.
func (s *SessionService) AcceptConnection(ctx context.Context, requesterID string) (domain.User, error) {
	actor, err := s.acceptConnection(ctx, requesterID)
	s.metrics.observe("session", "accept_connection", err)
	if err == nil {
		s.events.Publish(event.Event{Type: event.UserUpdated, UserID: actor.ID})
		s.events.Publish(event.Event{Type: event.UserUpdated, UserID: requesterID})
	}
	return actor, err
}

func (s *SessionService) acceptConnection(ctx context.Context, requesterID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.currentLocked()
	if cur == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	i := s.indexOf(requesterID)
	if i < 0 {
		return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, requesterID)
	}
	if !cur.HasRequestFrom(requesterID) {
		return domain.User{}, fmt.Errorf("%w: no pending request from %s", domain.ErrNotFound, requesterID)
	}
	requester := &s.users[i]

	cur.ConnectionRequests = slices.DeleteFunc(cur.ConnectionRequests, func(id string) bool { return id == requesterID })
	requester.ConnectionRequests = slices.DeleteFunc(requester.ConnectionRequests, func(id string) bool { return id == cur.ID })
	if !cur.IsConnectedTo(requesterID) {
		cur.Connections = append(cur.Connections, requesterID)
	}
	if !requester.IsConnectedTo(cur.ID) {
		requester.Connections = append(requester.Connections, cur.ID)
	}

	s.storage.save(ctx, domain.KeyUserDirectory, s.users)
	s.storage.save(ctx, domain.KeySessionUser, cur.Public())
	return cur.Public(), nil
}

// Current returns the active user, or ErrUnauthenticated.
func (s *SessionService) Current() (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.currentLocked()
	if cur == nil {
		return domain.User{}, domain.ErrUnauthenticated
	}
	return cur.Public(), nil
}

// Session returns a snapshot of the session state.
func (s *SessionService) Session() domain.Session {
	user, err := s.Current()
	if err != nil {
		return domain.Session{}
	}
	return domain.Session{User: &user, Authenticated: true}
}

// IsAuthenticated reports whether a session is active.
func (s *SessionService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID != ""
}

// User returns the directory entry for id without its password hash.
func (s *SessionService) User(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.users[i].Public(), nil
	}
	return domain.User{}, fmt.Errorf("%w: user %s", domain.ErrNotFound, id)
}

// Users returns every directory entry in registration order.
func (s *SessionService) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out
}

// SearchPeople matches query against name and title, case-insensitively.
// An empty query matches everyone.
func (s *SessionService) SearchPeople(query string) []domain.User {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []domain.User
	for _, u := range s.Users() {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Title), q) {
			out = append(out, u)
		}
	}
	return out
}

// MutualConnections counts users connected to both a and b.
func (s *SessionService) MutualConnections(a, b string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mutualLocked(a, b)
}

func (s *SessionService) mutualLocked(a, b string) int {
	ia, ib := s.indexOf(a), s.indexOf(b)
	if ia < 0 || ib < 0 {
		return 0
	}
	n := 0
	for _, id := range s.users[ia].Connections {
		if s.users[ib].IsConnectedTo(id) {
			n++
		}
	}
	return n
}

// Suggestion is a person the active user may know.
type Suggestion struct {
	User   domain.User
	Mutual int
}

// Suggestions lists up to limit users the active user is neither connected
// to nor has a pending request with, most mutual connections first.
func (s *SessionService) Suggestions(limit int) ([]Suggestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.currentLocked()
	if cur == nil {
		return nil, domain.ErrUnauthenticated
	}

	var out []Suggestion
	for _, u := range s.users {
		if u.ID == cur.ID || cur.IsConnectedTo(u.ID) || cur.HasRequestFrom(u.ID) || u.HasRequestFrom(cur.ID) {
			continue
		}
		out = append(out, Suggestion{User: u.Public(), Mutual: s.mutualLocked(cur.ID, u.ID)})
	}
	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Mutual, a.Mutual); c != 0 {
			return c
		}
		return cmp.Compare(a.User.Name, b.User.Name)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PendingRequests returns the users with a pending request to the active user.
func (s *SessionService) PendingRequests() ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.currentLocked()
	if cur == nil {
		return nil, domain.ErrUnauthenticated
	}
	out := make([]domain.User, 0, len(cur.ConnectionRequests))
	for _, id := range cur.ConnectionRequests {
		if i := s.indexOf(id); i >= 0 {
			out = append(out, s.users[i].Public())
		}
	}
	return out, nil
}

func (s *SessionService) currentLocked() *domain.User {
	if s.currentID == "" {
		return nil
	}
	if i := s.indexOf(s.currentID); i >= 0 {
		return &s.users[i]
	}
	return s.detached
}

func (s *SessionService) persistCurrentLocked(ctx context.Context) {
	cur := s.currentLocked()
	if cur == nil {
		return
	}
	if cur != s.detached {
		s.storage.save(ctx, domain.KeyUserDirectory, s.users)
	}
	s.storage.save(ctx, domain.KeySessionUser, cur.Public())
}

func (s *SessionService) indexOf(id string) int {
	return slices.IndexFunc(s.users, func(u domain.User) bool { return u.ID == id })
}

func (s *SessionService) indexOfEmail(email string) int {
	return slices.IndexFunc(s.users, func(u domain.User) bool { return u.Email == email })
}

func (s *SessionService) issueToken(userID string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:  userID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *SessionService) parseToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", errors.Join(domain.ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}
