package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"autocare/models"
	"autocare/services/query"
	"autocare/utils"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// Event is an auth state change.
type Event string

const (
	SignedIn  Event = "SIGNED_IN"
	SignedOut Event = "SIGNED_OUT"
)

// SessionError is returned for a missing, malformed, expired or revoked token.
type SessionError struct {
	Reason string
}

func (e *SessionError) Error() string {
	return "invalid session: " + e.Reason
}

func (e *SessionError) Describe(string) (string, string) {
	return "Session expired", "Please sign in again."
}

// ErrInvalidSession matches any *SessionError under errors.Is.
var ErrInvalidSession = &SessionError{}

func (e *SessionError) Is(target error) bool {
	_, ok := target.(*SessionError)
	return ok
}

// ErrOAuthState is returned for a callback whose state was never issued,
// has expired, belongs to another provider or was already used.
var ErrOAuthState = &SessionError{Reason: "oauth state is invalid or already used"}

// UnknownProviderError is returned for an OAuth provider with no client configured.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("oauth provider %q is not configured", e.Provider)
}

func (e *UnknownProviderError) Describe(string) (string, string) {
	return "Sign-in unavailable", "That sign-in method isn't available right now."
}

// OAuthProviderError wraps a failed code exchange or profile fetch.
type OAuthProviderError struct {
	Provider string
	Err      error
}

func (e *OAuthProviderError) Error() string {
	return fmt.Sprintf("oauth provider %s: %v", e.Provider, e.Err)
}

func (e *OAuthProviderError) Unwrap() error {
	return e.Err
}

func (e *OAuthProviderError) Describe(string) (string, string) {
	return "Sign-in failed", "We couldn't confirm your account with that provider. Please try again."
}

// Claims is the JWT body of a session.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.StandardClaims
}

// Session is a signed-in user's token and identity.
type Session struct {
	Token     string      `json:"access_token"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Actor returns the caller identity carried by the session.
func (s Session) Actor() models.Actor {
	return models.Actor{UserID: s.UserID, Role: s.Role}
}

// Listener receives auth state changes. Session is nil for SIGNED_OUT when
// the token could not be parsed.
type Listener func(event Event, session *Session)

// OAuthClient holds one provider's credentials.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// OAuthOptions mirrors the options a client passes when starting an OAuth
// flow. RedirectTo is where the callback sends the browser once signed in;
// it must be on the allow list.
type OAuthOptions struct {
	RedirectTo string
	Scopes     []string
}

// OAuthIdentity is the verified account a provider reported.
type OAuthIdentity struct {
	Provider string
	Email    string
	Name     string
}

// Options configures a Service. RedirectURL is the provider callback; a
// "{provider}" placeholder in it is replaced by each provider's name.
type Options struct {
	Secret           []byte
	TTL              time.Duration
	RedirectURL      string
	AllowedRedirects []string
	OAuth            map[string]OAuthClient
}

type oauthProvider struct {
	config      *oauth2.Config
	userInfoURL string
	emailsURL   string
}

type oauthState struct {
	Provider   string `json:"provider"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Service issues and checks sessions.
type Service struct {
	secret  []byte
	ttl     time.Duration
	allowed []*url.URL
	oauth   map[string]*oauthProvider
	cache   query.Cache
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

var defaultScopes = map[string][]string{
	"google": {"openid", "email", "profile"},
	"github": {"read:user", "user:email"},
}

var oauthEndpoints = map[string]oauth2.Endpoint{
	"google": endpoints.Google,
	"github": endpoints.GitHub,
}

var userInfoURLs = map[string]string{
	"google": "https://openidconnect.googleapis.com/v1/userinfo",
	"github": "https://api.github.com/user",
}

// GitHub leaves email empty on /user when the address is private.
const githubEmailsURL = "https://api.github.com/user/emails"

// NewService builds a Service. Revocations and OAuth states live in cache.
func NewService(opts Options, cache query.Cache, logger *zap.Logger) (*Service, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("auth service initialization error: empty signing secret")
	}
	if cache == nil {
		return nil, errors.New("auth service initialization error: nil cache")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	s := &Service{
		secret:    opts.Secret,
		ttl:       opts.TTL,
		oauth:     map[string]*oauthProvider{},
		cache:     cache,
		logger:    logger,
		now:       time.Now,
		listeners: map[uint64]Listener{},
	}
	for name, client := range opts.OAuth {
		name = strings.ToLower(name)
		endpoint, ok := oauthEndpoints[name]
		if !ok || client.ClientID == "" {
			continue
		}
		p := &oauthProvider{
			config: &oauth2.Config{
				ClientID:     client.ClientID,
				ClientSecret: client.ClientSecret,
				Endpoint:     endpoint,
				RedirectURL:  strings.ReplaceAll(opts.RedirectURL, "{provider}", name),
				Scopes:       defaultScopes[name],
			},
			userInfoURL: userInfoURLs[name],
		}
		if name == "github" {
			p.emailsURL = githubEmailsURL
		}
		s.oauth[name] = p
	}
	for _, raw := range opts.AllowedRedirects {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("auth service initialization error: allowed redirect %q is not an absolute URL", raw)
		}
		s.allowed = append(s.allowed, u)
	}
	return s, nil
}

// Providers lists the configured OAuth providers.
func (s *Service) Providers() []string {
	out := make([]string, 0, len(s.oauth))
	for name := range s.oauth {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IssueSession signs a token for u and fires SIGNED_IN.
func (s *Service) IssueSession(u models.User) (*Session, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := utils.GenerateToken(s.secret, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresAt: time.Unix(expires.Unix(), 0).UTC(),
	}
	s.emit(SignedIn, session)
	return session, nil
}

// GetSession validates token and checks that it has not been signed out.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	session, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	_, revoked, err := s.cache.Get(ctx, utils.RevokedSessionPrefix+utils.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		return nil, &SessionError{Reason: "signed out"}
	}
	return session, nil
}

// SignOut revokes token until it would have expired anyway and fires SIGNED_OUT.
func (s *Service) SignOut(ctx context.Context, token string) error {
	session, err := s.parse(token)
	if err != nil {
		return err
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Set(ctx, utils.RevokedSessionPrefix+utils.HashToken(token), []byte(session.UserID), ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info("Session revoked", zap.String("user_id", session.UserID))
	s.emit(SignedOut, session)
	return nil
}

// OnAuthStateChange registers cb and returns a func that unregisters it.
func (s *Service) OnAuthStateChange(cb Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = cb
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignInWithOAuth returns the provider's authorization URL. The generated
// state is remembered for ten minutes and consumed by CompleteOAuth.
func (s *Service) SignInWithOAuth(ctx context.Context, provider string, opts OAuthOptions) (string, error) {
	provider = strings.ToLower(provider)
	p, ok := s.oauth[provider]
	if !ok {
		return "", &UnknownProviderError{Provider: provider}
	}
	if opts.RedirectTo != "" && !s.redirectAllowed(opts.RedirectTo) {
		return "", &models.ValidationError{Field: "redirect_to", Reason: "is not an allowed redirect"}
	}

	cfg := *p.config
	if len(opts.Scopes) > 0 {
		cfg.Scopes = opts.Scopes
	}

	raw, err := json.Marshal(oauthState{Provider: provider, RedirectTo: opts.RedirectTo})
	if err != nil {
		return "", err
	}
	state := uuid.NewString()
	if err := s.cache.Set(ctx, utils.OAuthStatePrefix+state, raw, utils.OAuthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// CompleteOAuth consumes state, exchanges code and returns the account the
// provider vouches for along with the redirect chosen at sign-in. A state
// can be used once.
func (s *Service) CompleteOAuth(ctx context.Context, provider, state, code string) (*OAuthIdentity, string, error) {
	provider = strings.ToLower(provider)
	p, ok := s.oauth[provider]
	if !ok {
		return nil, "", &UnknownProviderError{Provider: provider}
	}

	st, err := s.consumeOAuthState(ctx, state)
	if err != nil {
		return nil, "", err
	}
	if st.Provider != provider {
		return nil, "", ErrOAuthState
	}
	if code == "" {
		return nil, "", &models.ValidationError{Field: "code", Reason: "is required"}
	}

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", &OAuthProviderError{Provider: provider, Err: err}
	}
	identity, err := fetchIdentity(ctx, p.config.Client(ctx, token), p)
	if err != nil {
		return nil, "", &OAuthProviderError{Provider: provider, Err: err}
	}
	identity.Provider = provider
	s.logger.Info("OAuth sign-in verified", zap.String("provider", provider))
	return identity, st.RedirectTo, nil
}

func (s *Service) consumeOAuthState(ctx context.Context, state string) (oauthState, error) {
	var st oauthState
	if state == "" {
		return st, ErrOAuthState
	}
	key := utils.OAuthStatePrefix + state
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return st, fmt.Errorf("failed to read oauth state: %w", err)
	}
	if !ok {
		return st, ErrOAuthState
	}
	// Only the caller whose delete removed the key may use it.
	deleted, err := s.cache.DeletePrefix(ctx, key)
	if err != nil {
		return st, fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if deleted == 0 {
		return st, ErrOAuthState
	}
	if err := json.Unmarshal(raw, &st); err != nil {
		return st, ErrOAuthState
	}
	return st, nil
}

// redirectAllowed matches target against the allow list by scheme, host and
// path prefix.
func (s *Service) redirectAllowed(target string) bool {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	for _, a := range s.allowed {
		if strings.EqualFold(u.Scheme, a.Scheme) && strings.EqualFold(u.Host, a.Host) && strings.HasPrefix(u.Path, a.Path) {
			return true
		}
	}
	return false
}

func fetchIdentity(ctx context.Context, client *http.Client, p *oauthProvider) (*OAuthIdentity, error) {
	var info struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Name          string `json:"name"`
		Login         string `json:"login"`
	}
	if err := getJSON(ctx, client, p.userInfoURL, &info); err != nil {
		return nil, err
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return nil, errors.New("account email is not verified")
	}

	email := info.Email
	if email == "" && p.emailsURL != "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, p.emailsURL, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				email = e.Email
				break
			}
		}
	}
	if email == "" {
		return nil, errors.New("provider returned no verified email")
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	return &OAuthIdentity{Email: strings.ToLower(email), Name: name}, nil
}

func getJSON(ctx context.Context, client *http.Client, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", target, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Service) parse(token string) (*Session, error) {
	if token == "" {
		return nil, &SessionError{Reason: "missing token"}
	}
	var claims Claims
	if _, err := utils.ValidateToken(s.secret, token, &claims); err != nil {
		return nil, &SessionError{Reason: err.Error()}
	}
	if claims.Subject == "" {
		return nil, &SessionError{Reason: "token has no subject"}
	}
	return &Session{
		Token:     token,
		UserID:    claims.Subject,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0).UTC(),
	}, nil
}

func (s *Service) emit(event Event, session *Session) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(event, session)
	}
}
