// Package mockapi simulates the hosted backend for tests. An Interceptor
// answers the auth, REST and functions endpoint families from an in-memory
// state machine and passes every other request through.
package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/backend"
	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
	"github.com/comitanigiacomo/neko-engine/internal/core/services"
)

type Options struct {
	// Secret and Issuer sign access tokens so the engine's auth middleware
	// accepts them.
	Secret   string
	Issuer   string
	TokenTTL time.Duration

	// Users defaults to DefaultUsers.
	Users []TestUser

	Resources     []map[string]any
	Announcements []map[string]any

	// Next receives requests the mock does not recognise. Defaults to
	// http.DefaultTransport.
	Next http.RoundTripper

	Now func() time.Time
}

// State is a snapshot of the mock session.
type State struct {
	Authenticated bool
	UserData      *UserData
}

type credential struct {
	user TestUser
	hash []byte
	id   string
}

type customHandler struct {
	substring string
	handler   http.HandlerFunc
}

type Interceptor struct {
	mu sync.Mutex

	engine *gin.Engine
	next   http.RoundTripper
	tokens *services.TokenService
	now    func() time.Time

	users   map[string]*credential
	bundles map[string]*UserData

	authenticated bool
	current       *UserData

	custom []customHandler

	resources     []map[string]any
	announcements []map[string]any
}

func New(opts Options) (*Interceptor, error) {
	if opts.Secret == "" {
		return nil, errors.New("mockapi: secret required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Users == nil {
		opts.Users = DefaultUsers()
	}
	if opts.Next == nil {
		opts.Next = http.DefaultTransport
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	i := &Interceptor{
		next:          opts.Next,
		tokens:        services.NewTokenService(opts.Secret, opts.Issuer, opts.TokenTTL),
		now:           opts.Now,
		users:         make(map[string]*credential, len(opts.Users)),
		bundles:       make(map[string]*UserData, len(opts.Users)),
		resources:     defaultRows(opts.Resources, defaultResources),
		announcements: defaultRows(opts.Announcements, defaultAnnouncements),
	}
	for _, u := range opts.Users {
		if err := i.addUser(u); err != nil {
			return nil, err
		}
	}

	if gin.Mode() == gin.DebugMode {
		gin.SetMode(gin.TestMode)
	}
	i.engine = gin.New()
	i.registerRoutes()
	return i, nil
}

func (i *Interceptor) addUser(u TestUser) error {
	email := domain.NormalizeEmail(u.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("mockapi: hash password for %s: %w", email, err)
	}
	u.Email = email
	i.users[email] = &credential{user: u, hash: hash, id: uuid.NewString()}
	return nil
}

// Client returns an http.Client routed through the interceptor.
func (i *Interceptor) Client() *http.Client {
	return &http.Client{Transport: i}
}

// Handle registers an override for every request whose URL contains
// substring. Overrides win over built-in routing; the latest registration
// is checked first.
func (i *Interceptor) Handle(substring string, h http.HandlerFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.custom = append([]customHandler{{substring: substring, handler: h}}, i.custom...)
}

// ClearHandlers drops every override.
func (i *Interceptor) ClearHandlers() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.custom = nil
}

func (i *Interceptor) override(req *http.Request) http.HandlerFunc {
	i.mu.Lock()
	defer i.mu.Unlock()

	u := req.URL.String()
	for _, c := range i.custom {
		if strings.Contains(u, c.substring) {
			return c.handler
		}
	}
	return nil
}

// RoundTrip implements http.RoundTripper.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	var h http.Handler
	if o := i.override(req); o != nil {
		h = o
	} else if Recognizes(req.URL.Path) {
		h = i.engine
	} else {
		return i.next.RoundTrip(req)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// ServeHTTP lets the mock run behind an httptest.Server. Unknown paths get
// a 404 because there is nothing to pass them through to.
func (i *Interceptor) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if o := i.override(req); o != nil {
		o(w, req)
		return
	}
	if !Recognizes(req.URL.Path) {
		http.NotFound(w, req)
		return
	}
	i.engine.ServeHTTP(w, req)
}

var authEndpoints = map[string]bool{
	"user":    true,
	"token":   true,
	"signup":  true,
	"logout":  true,
	"recover": true,
}

// Recognizes reports whether path belongs to a simulated endpoint.
func Recognizes(path string) bool {
	switch {
	case strings.HasPrefix(path, "/auth/v1/"):
		return authEndpoints[strings.TrimPrefix(path, "/auth/v1/")]
	case strings.HasPrefix(path, "/rest/v1/"):
		_, ok := backend.ParseTable(strings.TrimPrefix(path, "/rest/v1/"))
		return ok
	case strings.HasPrefix(path, "/functions/v1/"):
		_, ok := backend.ParseFunction(strings.TrimPrefix(path, "/functions/v1/"))
		return ok
	default:
		return false
	}
}

// MockLogin authenticates directly, bypassing HTTP.
func (i *Interceptor) MockLogin(email, password string) (*backend.TokenResponse, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.login(email, password)
}

// MockLogout clears the session. It is idempotent.
func (i *Interceptor) MockLogout() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.logout()
}

func (i *Interceptor) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()

	st := State{Authenticated: i.authenticated}
	if i.current != nil {
		st.UserData = i.current.clone()
	}
	return st
}

// login must be called with mu held.
func (i *Interceptor) login(email, password string) (*backend.TokenResponse, error) {
	cred, ok := i.users[domain.NormalizeEmail(email)]
	if !ok || bcrypt.CompareHashAndPassword(cred.hash, []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	data, ok := i.bundles[cred.id]
	if !ok {
		u := cred.user
		data = newUserData(cred.id, u.Email, u.FullName, u.Tier, u.Roles, u.Addons, i.now().UTC())
		i.bundles[cred.id] = data
	}

	tok, err := i.issue(data.User)
	if err != nil {
		return nil, err
	}
	i.authenticated = true
	i.current = data
	return tok, nil
}

func (i *Interceptor) logout() {
	i.authenticated = false
	i.current = nil
}

func (i *Interceptor) issue(u domain.User) (*backend.TokenResponse, error) {
	access, err := i.tokens.GenerateToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("mockapi: issue token: %w", err)
	}
	now := i.now().UTC()
	ttl := i.tokens.TTL()
	return &backend.TokenResponse{
		AccessToken:  access,
		TokenType:    "bearer",
		ExpiresIn:    int(ttl.Seconds()),
		ExpiresAt:    now.Add(ttl).Unix(),
		RefreshToken: uuid.NewString(),
		User: backend.UserResponse{
			ID:        u.ID,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
		},
	}, nil
}

var defaultResources = []map[string]any{
	{"id": "res-llc-guide", "title": "Forming your LLC", "module": "business_starter", "min_tier": "free"},
	{"id": "res-duns", "title": "Getting a D-U-N-S number", "module": "business_credit", "min_tier": "start"},
	{"id": "res-brand-kit", "title": "Brand kit template", "module": "personal_brand", "min_tier": "build"},
}

var defaultAnnouncements = []map[string]any{
	{"id": "ann-welcome", "title": "Welcome to NÈKO", "body": "Start with the Business Formation module."},
}

func defaultRows(rows, fallback []map[string]any) []map[string]any {
	if rows == nil {
		rows = fallback
	}
	out := make([]map[string]any, len(rows))
	copy(out, rows)
	return out
}
