package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/platform/logger"
	"golang.org/x/sync/singleflight"
)

// AuthProvider is the hosted authentication backend.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string, data map[string]any) (*domain.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*domain.User, error)
	Recover(ctx context.Context, email string) error
	CheckSubscription(ctx context.Context, accessToken string) (*domain.Subscription, error)
}

// TokenStore keeps a user's session tokens.
type TokenStore interface {
	Save(ctx context.Context, userID string, session *domain.Session, ttl time.Duration) error
	// Load returns domain.ErrSessionNotFound when nothing is stored.
	Load(ctx context.Context, userID string) (*domain.Session, error)
	Delete(ctx context.Context, userID string) error
}

// LoginRecorder is the streak side effect of a sign-in.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID string) (*domain.StreakState, bool, error)
}

type SessionConfig struct {
	// RememberMeTTL bounds tokens kept in the persistent store.
	RememberMeTTL time.Duration
	// SubscriptionTTL is how long a subscription lookup stays fresh.
	SubscriptionTTL time.Duration
	// SubscriptionMinInterval is the cool-down between forced refreshes.
	SubscriptionMinInterval time.Duration
	// SubscriptionLookupTimeout bounds a shared lookup, which outlives the
	// caller that started it.
	SubscriptionLookupTimeout time.Duration
	Location                  *time.Location
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		RememberMeTTL:             30 * 24 * time.Hour,
		SubscriptionTTL:           5 * time.Minute,
		SubscriptionMinInterval:   30 * time.Second,
		SubscriptionLookupTimeout: 10 * time.Second,
		Location:                  time.UTC,
	}
}

type SessionService struct {
	auth       AuthProvider
	persistent TokenStore
	ephemeral  TokenStore
	profiles   domain.ProfileRepository
	logins     LoginRecorder
	cfg        SessionConfig
	log        *logger.Logger
	now        Clock

	subs     *SubscriptionCache
	inflight singleflight.Group

	mu          sync.Mutex
	loginLogged map[string]string
	lookups     map[string]*subscriptionLookup
}

// subscriptionLookup tracks a shared lookup. Sign-out drops it so a late
// answer is not cached for a user who is gone.
type subscriptionLookup struct {
	dropped bool
}

func NewSessionService(auth AuthProvider, persistent, ephemeral TokenStore, profiles domain.ProfileRepository, logins LoginRecorder, cfg SessionConfig, log *logger.Logger) *SessionService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.SubscriptionLookupTimeout <= 0 {
		cfg.SubscriptionLookupTimeout = DefaultSessionConfig().SubscriptionLookupTimeout
	}
	return &SessionService{
		auth:        auth,
		persistent:  persistent,
		ephemeral:   ephemeral,
		profiles:    profiles,
		logins:      logins,
		cfg:         cfg,
		log:         log.With("service", "SessionService"),
		now:         time.Now,
		subs:        NewSubscriptionCache(cfg.SubscriptionTTL),
		loginLogged: make(map[string]string),
		lookups:     make(map[string]*subscriptionLookup),
	}
}

func (s *SessionService) SetClock(c Clock) {
	s.now = c
	s.subs.now = c
}

// Subscriptions exposes the cache so billing flows can invalidate it.
func (s *SessionService) Subscriptions() *SubscriptionCache {
	return s.subs
}

type SignInInput struct {
	Email      string
	Password   string
	RememberMe bool
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
}

type SessionResult struct {
	Session      *domain.Session     `json:"session"`
	Profile      *domain.Profile     `json:"profile,omitempty"`
	Subscription domain.Subscription `json:"subscription"`
}

func (s *SessionService) SignIn(ctx context.Context, input SignInInput) (*SessionResult, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.auth.SignIn(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}
	userID := session.User.ID

	// A new identity must never see state cached for a previous sign-in.
	s.forget(userID)

	profile := s.syncProfile(ctx, session.User, "")

	store, other, ttl := s.ephemeral, s.persistent, s.sessionTTL(session)
	if input.RememberMe {
		store, other, ttl = s.persistent, s.ephemeral, s.cfg.RememberMeTTL
	}
	if err := store.Save(ctx, userID, session, ttl); err != nil {
		return nil, fmt.Errorf("session service: store tokens: %w", err)
	}
	if err := other.Delete(ctx, userID); err != nil {
		s.log.Warn("stale tokens not removed", "user_id", userID, "error", err)
	}

	s.EnsureDailyLogin(ctx, userID)

	sub, err := s.Subscription(ctx, userID, session.AccessToken, true)
	if err != nil {
		s.log.Warn("subscription refresh failed after sign in", "user_id", userID, "error", err)
		sub = domain.FreeSubscription()
	}

	s.log.Info("user signed in", "user_id", userID, "remember_me", input.RememberMe)
	return &SessionResult{Session: session, Profile: profile, Subscription: sub}, nil
}

func (s *SessionService) SignUp(ctx context.Context, input SignUpInput) (*SessionResult, error) {
	creds := domain.Credentials{Email: input.Email, Password: input.Password}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	data := map[string]any{}
	fullName := strings.TrimSpace(input.FullName)
	if fullName != "" {
		data["full_name"] = fullName
	}

	session, err := s.auth.SignUp(ctx, creds.Email, creds.Password, data)
	if err != nil {
		return nil, err
	}
	userID := session.User.ID
	s.forget(userID)

	profile := s.syncProfile(ctx, session.User, fullName)
	if err := s.ephemeral.Save(ctx, userID, session, s.sessionTTL(session)); err != nil {
		return nil, fmt.Errorf("session service: store tokens: %w", err)
	}
	s.EnsureDailyLogin(ctx, userID)

	s.log.Info("user signed up", "user_id", userID)
	return &SessionResult{Session: session, Profile: profile, Subscription: domain.FreeSubscription()}, nil
}

// SignOut always clears local state, even when the provider call fails.
func (s *SessionService) SignOut(ctx context.Context, userID, accessToken string) error {
	var providerErr error
	if accessToken != "" {
		if err := s.auth.SignOut(ctx, accessToken); err != nil {
			s.log.Warn("provider sign out failed", "user_id", userID, "error", err)
			providerErr = err
		}
	}

	var errs []error
	for _, store := range []TokenStore{s.persistent, s.ephemeral} {
		if err := store.Delete(ctx, userID); err != nil {
			errs = append(errs, err)
		}
	}
	s.forget(userID)

	if len(errs) > 0 {
		return fmt.Errorf("session service: clear tokens: %w", errors.Join(errs...))
	}
	if providerErr != nil && !errors.Is(providerErr, domain.ErrNotAuthenticated) {
		return fmt.Errorf("session service: sign out: %w", providerErr)
	}
	return nil
}

// Restore returns the stored session, preferring remember-me tokens.
func (s *SessionService) Restore(ctx context.Context, userID string) (*domain.Session, error) {
	for _, store := range []TokenStore{s.persistent, s.ephemeral} {
		session, err := store.Load(ctx, userID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("session service: restore: %w", err)
		}
	}
	return nil, domain.ErrNotAuthenticated
}

func (s *SessionService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.auth.GetUser(ctx, accessToken)
}

func (s *SessionService) RecoverPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	creds := domain.Credentials{Email: email, Password: strings.Repeat("x", domain.MinPasswordLength)}
	if err := creds.Validate(); err != nil {
		return err
	}
	return s.auth.Recover(ctx, email)
}

// Subscription returns the user's tier. Fresh cache hits skip the network;
// force bypasses the cache but not the minimum re-check interval, and
// concurrent callers for one user share a single lookup.
func (s *SessionService) Subscription(ctx context.Context, userID, accessToken string, force bool) (domain.Subscription, error) {
	if !force {
		if sub, ok := s.subs.Get(userID); ok {
			return sub, nil
		}
	} else if sub, at, ok := s.subs.Peek(userID); ok && s.now().Sub(at) < s.cfg.SubscriptionMinInterval {
		return sub, nil
	}

	ch := s.inflight.DoChan(userID, func() (interface{}, error) {
		return s.lookupSubscription(ctx, userID, accessToken)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.Subscription{}, fmt.Errorf("session service: check subscription: %w", ctx.Err())
	}
	if res.Err != nil {
		if cached, _, ok := s.subs.Peek(userID); ok {
			s.log.Warn("subscription lookup failed, serving stale value", "user_id", userID, "error", res.Err)
			return cached, nil
		}
		return domain.Subscription{}, fmt.Errorf("session service: check subscription: %w", res.Err)
	}
	if res.Shared {
		s.log.Debug("subscription lookup shared with in-flight call", "user_id", userID)
	}
	return res.Val.(domain.Subscription), nil
}

// lookupSubscription runs once per in-flight key. It is detached from the
// caller's cancellation because other callers may be waiting on it.
func (s *SessionService) lookupSubscription(ctx context.Context, userID, accessToken string) (domain.Subscription, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SubscriptionLookupTimeout)
	defer cancel()

	l := &subscriptionLookup{}
	s.mu.Lock()
	s.lookups[userID] = l
	s.mu.Unlock()

	sub, err := s.auth.CheckSubscription(ctx, accessToken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookups[userID] == l {
		delete(s.lookups, userID)
	}
	if err != nil {
		return domain.Subscription{}, err
	}
	if !l.dropped {
		s.subs.Set(userID, *sub)
	}
	return *sub, nil
}

// EnsureDailyLogin records today's login once per user per day.
func (s *SessionService) EnsureDailyLogin(ctx context.Context, userID string) {
	if s.logins == nil {
		return
	}
	today := domain.Today(s.now(), s.cfg.Location)

	s.mu.Lock()
	if s.loginLogged[userID] == today {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if _, _, err := s.logins.RecordLogin(ctx, userID); err != nil {
		s.log.Warn("daily login not recorded", "user_id", userID, "error", err)
		return
	}

	s.mu.Lock()
	s.loginLogged[userID] = today
	s.mu.Unlock()
}

// forget drops every piece of per-user session state.
func (s *SessionService) forget(userID string) {
	s.mu.Lock()
	if l, ok := s.lookups[userID]; ok {
		l.dropped = true
		delete(s.lookups, userID)
	}
	delete(s.loginLogged, userID)
	s.subs.Invalidate(userID)
	s.mu.Unlock()

	s.inflight.Forget(userID)
}

func (s *SessionService) sessionTTL(session *domain.Session) time.Duration {
	if session.ExpiresIn > 0 {
		return time.Duration(session.ExpiresIn) * time.Second
	}
	return time.Hour
}

func (s *SessionService) syncProfile(ctx context.Context, user domain.User, fullName string) *domain.Profile {
	if s.profiles == nil {
		return nil
	}

	profile, err := s.profiles.Get(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		profile, err = domain.NewProfile(user)
		if err != nil {
			s.log.Warn("profile not created", "user_id", user.ID, "error", err)
			return nil
		}
	case err != nil:
		s.log.Warn("profile not loaded", "user_id", user.ID, "error", err)
		return nil
	default:
		profile.Email = domain.NormalizeEmail(user.Email)
		profile.UpdatedAt = s.now().UTC()
	}
	if fullName != "" {
		profile.FullName = &fullName
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.log.Warn("profile not synced", "user_id", user.ID, "error", err)
	}
	return profile
}
