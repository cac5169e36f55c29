// Package auth bridges the record store's cookie-based authentication into
// the request context. Each request carrying an auth cookie gets its token
// refreshed against the store; the refreshed cookie is written before the
// handler runs so handlers never touch response headers for auth.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/ErFjeldheim/haugalandsved/internal/store"
	"github.com/ErFjeldheim/haugalandsved/pkg/logger"
)

// CookieName is the auth cookie shared with the browser frontend. The
// frontend SDK reads it directly, so it is deliberately not HttpOnly.
const CookieName = "pb_auth"

type contextKey string

const stateKey contextKey = "auth_state"

// State is the resolved authentication state of a request.
type State struct {
	Authenticated bool
	Token         string
	User          store.User
}

// FromContext returns the request's authentication state. Requests without
// a valid auth cookie carry the zero State.
func FromContext(ctx context.Context) State {
	if s, ok := ctx.Value(stateKey).(State); ok {
		return s
	}
	return State{}
}

// NewContext returns a context carrying the given auth state.
func NewContext(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

// Observer is notified when a request's auth state differs from what its
// cookie claimed, i.e. a login was invalidated or a token was refreshed.
type Observer func(ctx context.Context, previous, current State)

// cookiePayload is the JSON document stored URL-escaped in the auth cookie.
type cookiePayload struct {
	Token  string     `json:"token"`
	Record store.User `json:"record"`
}

// Bridge validates and refreshes auth cookies on every request.
type Bridge struct {
	client *store.Client
	logger *slog.Logger
	secure bool

	mu        sync.RWMutex
	observers []Observer
}

// NewBridge creates an auth bridge on top of the public store client.
// secure controls the Secure attribute on written cookies.
func NewBridge(client *store.Client, log *slog.Logger, secure bool) *Bridge {
	return &Bridge{client: client, logger: log, secure: secure}
}

// OnChange registers an observer for auth state changes.
func (b *Bridge) OnChange(obs Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, obs)
}

func (b *Bridge) notify(ctx context.Context, previous, current State) {
	b.mu.RLock()
	observers := b.observers
	b.mu.RUnlock()
	for _, obs := range observers {
		obs(ctx, previous, current)
	}
}

// Middleware resolves the auth cookie into a State on the request context.
// Invalid or expired cookies are cleared; valid ones are rewritten with the
// refreshed token. The store being unreachable degrades the request to
// anonymous without clearing the cookie.
func (b *Bridge) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		cookie, err := r.Cookie(CookieName)
		if err != nil {
			next.ServeHTTP(w, r.WithContext(NewContext(ctx, State{})))
			return
		}

		claimed, ok := parseCookie(cookie.Value)
		if !ok || !structurallyValidToken(claimed.Token) {
			// The cookie never amounted to a session, so observers see an
			// unauthenticated previous state.
			b.clearCookie(w)
			b.notify(ctx, State{}, State{})
			next.ServeHTTP(w, r.WithContext(NewContext(ctx, State{})))
			return
		}

		previous := State{Authenticated: true, Token: claimed.Token, User: claimed.Record}

		res, err := b.client.WithToken(claimed.Token).AuthRefresh(ctx)
		if err != nil {
			if store.IsNotFound(err) || isUnauthorized(err) {
				b.logger.InfoContext(ctx, "auth cookie rejected by store, clearing",
					slog.String("user_id", claimed.Record.ID))
				b.clearCookie(w)
				b.notify(ctx, previous, State{})
				next.ServeHTTP(w, r.WithContext(NewContext(ctx, State{})))
				return
			}
			// Store unreachable: degrade to anonymous but keep the cookie so
			// the session survives the outage.
			b.logger.WarnContext(ctx, "auth refresh unavailable", slog.String("error", err.Error()))
			next.ServeHTTP(w, r.WithContext(NewContext(ctx, State{})))
			return
		}

		current := State{Authenticated: true, Token: res.Token, User: res.Record}
		b.writeCookie(w, cookiePayload{Token: res.Token, Record: res.Record})
		if res.Token != claimed.Token {
			b.notify(ctx, previous, current)
		}

		ctx = NewContext(ctx, current)
		ctx = logger.WithUserID(ctx, res.Record.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func parseCookie(raw string) (cookiePayload, bool) {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return cookiePayload{}, false
	}
	var payload cookiePayload
	if err := json.Unmarshal([]byte(decoded), &payload); err != nil {
		return cookiePayload{}, false
	}
	if payload.Token == "" {
		return cookiePayload{}, false
	}
	return payload, true
}

// structurallyValidToken checks the three-segment JWT shape without
// verifying the signature; verification is the store's job.
func structurallyValidToken(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

func isUnauthorized(err error) bool {
	var apiErr *store.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

func (b *Bridge) writeCookie(w http.ResponseWriter, payload cookiePayload) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(string(encoded)),
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		Secure:   b.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}

func (b *Bridge) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   b.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
}
