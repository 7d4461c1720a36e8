package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/comitanigiacomo/neko-engine/internal/adapters/backend"
	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func (i *Interceptor) registerRoutes() {
	auth := i.engine.Group("/auth/v1")
	{
		auth.POST("/token", i.token)
		auth.POST("/signup", i.signup)
		auth.POST("/logout", i.logoutHandler)
		auth.GET("/user", i.user)
		auth.POST("/recover", i.recoverPassword)
	}

	rest := i.engine.Group("/rest/v1")
	{
		rest.GET("/:table", i.selectRows)
		rest.POST("/:table", i.insertRows)
		rest.PATCH("/:table", i.updateRows)
	}

	i.engine.POST("/functions/v1/:name", i.invoke)
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, backend.ErrorBody{Error: code, ErrorDescription: message, Message: message})
}

func unauthorized(c *gin.Context) {
	fail(c, http.StatusUnauthorized, backend.CodeNotAuthenticated, "not authenticated")
}

type credentialsBody struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	RefreshToken string         `json:"refresh_token"`
	Data         map[string]any `json:"data"`
}

func (i *Interceptor) token(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if c.Query("grant_type") == "refresh_token" {
		if !i.authenticated || i.current == nil {
			unauthorized(c)
			return
		}
		tok, err := i.issue(i.current.User)
		if err != nil {
			fail(c, http.StatusInternalServerError, "server_error", err.Error())
			return
		}
		c.JSON(http.StatusOK, tok)
		return
	}

	tok, err := i.login(body.Email, body.Password)
	if err != nil {
		fail(c, http.StatusBadRequest, backend.CodeInvalidCredentials, "Invalid login credentials")
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (i *Interceptor) signup(c *gin.Context) {
	var body credentialsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}
	creds := domain.Credentials{Email: body.Email, Password: body.Password}
	if err := creds.Validate(); err != nil {
		fail(c, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if _, exists := i.users[creds.Email]; exists {
		fail(c, http.StatusBadRequest, backend.CodeUserAlreadyExists, "User already registered")
		return
	}

	fullName, _ := body.Data["full_name"].(string)
	tier := domain.TierFree
	if t, ok := body.Data["tier"].(string); ok && t != "" {
		tier = domain.Tier(t)
	}
	if err := i.addUser(TestUser{Email: creds.Email, Password: creds.Password, FullName: fullName, Tier: tier}); err != nil {
		fail(c, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	tok, err := i.login(creds.Email, creds.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if fullName != "" {
		tok.User.UserMetadata = map[string]any{"full_name": fullName}
	}
	c.JSON(http.StatusOK, tok)
}

func (i *Interceptor) logoutHandler(c *gin.Context) {
	i.mu.Lock()
	i.logout()
	i.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (i *Interceptor) user(c *gin.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.authenticated || i.current == nil {
		unauthorized(c)
		return
	}
	u := i.current.User
	resp := backend.UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
	if i.current.Profile.FullName != nil {
		resp.UserMetadata = map[string]any{"full_name": *i.current.Profile.FullName}
	}
	c.JSON(http.StatusOK, resp)
}

func (i *Interceptor) recoverPassword(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}

func (i *Interceptor) selectRows(c *gin.Context) {
	table, ok := backend.ParseTable(c.Param("table"))
	if !ok {
		fail(c, http.StatusNotFound, "unknown_table", "relation does not exist")
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !table.Public() && !i.authenticated {
		unauthorized(c)
		return
	}

	rows, err := toRows(i.rows(table))
	if err != nil {
		fail(c, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, filterRows(rows, c.Request.URL.Query()))
}

// rows must be called with mu held.
func (i *Interceptor) rows(table backend.Table) any {
	d := i.current
	switch table {
	case backend.TableResources:
		return i.resources
	case backend.TableAnnouncements:
		return i.announcements
	}
	if d == nil {
		return []any{}
	}

	switch table {
	case backend.TableProfiles:
		return []domain.Profile{d.Profile}
	case backend.TableSubscriptions:
		return []map[string]any{{
			"user_id":              d.User.ID,
			"tier":                 d.Subscription.Tier,
			"subscribed":           d.Subscription.Subscribed,
			"subscription_end":     d.Subscription.SubscriptionEnd,
			"cancel_at_period_end": d.Subscription.CancelAtPeriodEnd,
		}}
	case backend.TableUserRoles:
		out := make([]map[string]any, 0, len(d.Roles))
		for _, r := range d.Roles {
			out = append(out, map[string]any{"user_id": d.User.ID, "role": r})
		}
		return out
	case backend.TableProgress:
		return d.Progress
	case backend.TableUserTasks:
		return d.Tasks
	case backend.TableUserStreaks:
		if d.Streak == nil {
			return []any{}
		}
		return []*domain.StreakState{d.Streak}
	case backend.TableUserAchievements:
		return d.Achievements
	default:
		return []any{}
	}
}

func toRows(v any) ([]map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	rows := []map[string]any{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// filterRows applies column=eq.value filters. Other operators and the
// select/order/limit parameters are ignored.
func filterRows(rows []map[string]any, query map[string][]string) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		keep := true
		for col, values := range query {
			if len(values) == 0 || !strings.HasPrefix(values[0], "eq.") {
				continue
			}
			want := strings.TrimPrefix(values[0], "eq.")
			got, ok := row[col]
			if !ok || fmt.Sprint(got) != want {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (i *Interceptor) insertRows(c *gin.Context) {
	table, ok := backend.ParseTable(c.Param("table"))
	if !ok {
		fail(c, http.StatusNotFound, "unknown_table", "relation does not exist")
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.authenticated || i.current == nil {
		unauthorized(c)
		return
	}
	d := i.current
	now := i.now().UTC()

	switch table {
	case backend.TableProgress:
		var records []domain.ProgressRecord
		if err := decodeOneOrMany(raw, &records); err != nil {
			fail(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		for k := range records {
			r := &records[k]
			r.UserID = d.User.ID
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			if r.CreatedAt.IsZero() {
				r.CreatedAt = now
			}
			if r.UpdatedAt.IsZero() {
				r.UpdatedAt = now
			}
		}
		d.Progress = append(d.Progress, records...)
		c.JSON(http.StatusCreated, records)

	case backend.TableUserAchievements:
		var earned []domain.EarnedAchievement
		if err := decodeOneOrMany(raw, &earned); err != nil {
			fail(c, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		for k := range earned {
			e := &earned[k]
			e.UserID = d.User.ID
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.EarnedAt.IsZero() {
				e.EarnedAt = now
			}
		}
		d.Achievements = append(d.Achievements, earned...)
		c.JSON(http.StatusCreated, earned)

	default:
		fail(c, http.StatusMethodNotAllowed, "method_not_allowed", "inserts are not simulated for "+string(table))
	}
}

func (i *Interceptor) updateRows(c *gin.Context) {
	table, ok := backend.ParseTable(c.Param("table"))
	if !ok {
		fail(c, http.StatusNotFound, "unknown_table", "relation does not exist")
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.authenticated || i.current == nil {
		unauthorized(c)
		return
	}

	if table != backend.TableUserStreaks {
		fail(c, http.StatusMethodNotAllowed, "method_not_allowed", "updates are not simulated for "+string(table))
		return
	}

	var st domain.StreakState
	if err := json.Unmarshal(raw, &st); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	st.UserID = i.current.User.ID
	st.UpdatedAt = i.now().UTC()
	i.current.Streak = &st
	c.Status(http.StatusNoContent)
}

func decodeOneOrMany[T any](raw []byte, out *[]T) error {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(raw, out)
	}
	var one T
	if err := json.Unmarshal(raw, &one); err != nil {
		return err
	}
	*out = []T{one}
	return nil
}

func (i *Interceptor) invoke(c *gin.Context) {
	fn, ok := backend.ParseFunction(c.Param("name"))
	if !ok {
		fail(c, http.StatusNotFound, "unknown_function", "function not found")
		return
	}

	var checkout backend.CheckoutRequest
	if fn == backend.FuncCreateCheckout {
		_ = c.ShouldBindJSON(&checkout)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	authed := i.authenticated && i.current != nil

	switch fn {
	case backend.FuncCheckSubscription:
		if !authed {
			c.JSON(http.StatusOK, domain.FreeSubscription())
			return
		}
		c.JSON(http.StatusOK, i.current.Subscription)

	case backend.FuncCheckAddons:
		if !authed {
			unauthorized(c)
			return
		}
		c.JSON(http.StatusOK, domain.Addons{Addons: append([]string{}, i.current.Addons...)})

	case backend.FuncCreateCheckout:
		if !authed {
			unauthorized(c)
			return
		}
		if checkout.PriceID == "" {
			fail(c, http.StatusBadRequest, "missing_price", "priceId is required")
			return
		}
		c.JSON(http.StatusOK, domain.RedirectURL{URL: "https://checkout.mock.neko.dev/session/" + checkout.PriceID})

	case backend.FuncCustomerPortal:
		if !authed {
			unauthorized(c)
			return
		}
		c.JSON(http.StatusOK, domain.RedirectURL{URL: "https://billing.mock.neko.dev/portal/" + i.current.User.ID})
	}
}
