package graph

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// authorityTenant selects the multi-tenant v2.0 endpoint that accepts both
// work/school and personal Microsoft accounts.
const authorityTenant = "common"

// DefaultScopes are the delegated permissions requested at login.
// offline_access is what makes the server issue a refresh token.
var DefaultScopes = []string{
	"Files.ReadWrite",
	"User.Read",
	"offline_access",
}

// ErrMissingClientID is returned when a login is attempted without an
// application (client) ID.
var ErrMissingClientID = errors.New("graph: client ID is required")

// stateTokenBytes is the number of random bytes for the OAuth2 state parameter.
const stateTokenBytes = 16

// callbackPath is the HTTP path the OAuth2 redirect hits on the local server.
// Root path ensures exact match with the registered "http://localhost" redirect
// URI. Microsoft's v2.0 endpoint allows any port but requires path match.
const callbackPath = "/"

// shutdownTimeout is how long to wait for the callback server to drain.
const shutdownTimeout = 5 * time.Second

// callbackResult carries the authorization code or error from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// OAuthConfig returns the OAuth2 configuration for clientID against the
// common Microsoft identity endpoint. RedirectURL is filled in at login.
func OAuthConfig(clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   DefaultScopes,
		Endpoint: microsoft.AzureADEndpoint(authorityTenant),
	}
}

// LoginWithBrowser performs the authorization code + PKCE flow:
//  1. Binds a localhost HTTP server on a random port
//  2. Calls openURL with Microsoft's authorization URL
//  3. Receives the callback with the authorization code
//  4. Exchanges the code for tokens using PKCE
//
// openURL is responsible for getting the URL in front of the user; when it
// fails the error is logged and the flow keeps waiting for the callback.
// Nothing is persisted; the caller decides what to do with the tokens.
// Blocks until the callback arrives or ctx is canceled.
func LoginWithBrowser(
	ctx context.Context,
	clientID string,
	openURL func(string) error,
	logger *slog.Logger,
) (*LoginResult, error) {
	if clientID == "" {
		return nil, ErrMissingClientID
	}

	if logger == nil {
		logger = slog.Default()
	}

	return doAuthCodeLogin(ctx, OAuthConfig(clientID), openURL, logger)
}

// doAuthCodeLogin implements the authorization code flow. Accepts a pre-built
// oauth2.Config so tests can inject a mock endpoint.
func doAuthCodeLogin(
	ctx context.Context,
	cfg *oauth2.Config,
	openURL func(string) error,
	logger *slog.Logger,
) (*LoginResult, error) {
	logger.Info("starting browser auth flow (authorization code + PKCE)")

	resultCh := make(chan callbackResult, 1)
	mux := http.NewServeMux()

	srv, port, err := startCallbackServer(ctx, mux, resultCh, logger)
	if err != nil {
		return nil, err
	}

	defer shutdownCallbackServer(srv, logger)

	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d", port)

	verifier := oauth2.GenerateVerifier()

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("graph: generating state token: %w", err)
	}

	registerCallbackHandler(mux, state, resultCh)

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	launchBrowser(authURL, openURL, logger)

	code, err := waitForCallback(ctx, resultCh)
	if err != nil {
		return nil, err
	}

	return exchangeCode(ctx, cfg, code, verifier, logger)
}

// startCallbackServer binds a random localhost port and serves mux on it.
func startCallbackServer(
	ctx context.Context,
	mux *http.ServeMux,
	resultCh chan<- callbackResult,
	logger *slog.Logger,
) (*http.Server, int, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, 0, fmt.Errorf("graph: binding localhost listener: %w", err)
	}

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, 0, errors.New("graph: listener address is not TCP")
	}

	port := tcpAddr.Port
	logger.Info("callback server listening", slog.Int("port", port))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			deliver(resultCh, callbackResult{err: fmt.Errorf("graph: callback server error: %w", serveErr)})
		}
	}()

	return srv, port, nil
}

func registerCallbackHandler(mux *http.ServeMux, state string, resultCh chan<- callbackResult) {
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		handleOAuthCallback(w, r, state, resultCh)
	})
}

// handleOAuthCallback validates the state parameter and extracts the code.
func handleOAuthCallback(w http.ResponseWriter, r *http.Request, state string, resultCh chan<- callbackResult) {
	q := r.URL.Query()

	if q.Get("state") != state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		deliver(resultCh, callbackResult{err: errors.New("graph: OAuth2 state mismatch (possible CSRF)")})

		return
	}

	if errParam := q.Get("error"); errParam != "" {
		desc := q.Get("error_description")
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)
		deliver(resultCh, callbackResult{err: fmt.Errorf("graph: authorization failed: %s: %s", errParam, desc)})

		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		deliver(resultCh, callbackResult{err: errors.New("graph: callback missing authorization code")})

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")
	deliver(resultCh, callbackResult{code: code})
}

// deliver sends without blocking. Only the first result matters; later
// callbacks (a browser retry, a favicon request) are dropped.
func deliver(resultCh chan<- callbackResult, res callbackResult) {
	select {
	case resultCh <- res:
	default:
	}
}

func shutdownCallbackServer(srv *http.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("callback server shutdown error", slog.String("error", err.Error()))
	}
}

func launchBrowser(authURL string, openURL func(string) error, logger *slog.Logger) {
	logger.Info("opening browser for authorization")

	if openErr := openURL(authURL); openErr != nil {
		logger.Warn("failed to open browser",
			slog.String("error", openErr.Error()),
		)
	}
}

func waitForCallback(ctx context.Context, resultCh <-chan callbackResult) (string, error) {
	select {
	case result := <-resultCh:
		if result.err != nil {
			return "", result.err
		}

		return result.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("graph: browser auth canceled: %w", ctx.Err())
	}
}

// exchangeCode trades the authorization code for tokens.
func exchangeCode(
	ctx context.Context,
	cfg *oauth2.Config,
	code, verifier string,
	logger *slog.Logger,
) (*LoginResult, error) {
	logger.Info("received authorization code, exchanging for token")

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("graph: token exchange failed: %w", err)
	}

	logger.Info("browser login successful",
		slog.Time("expiry", tok.Expiry),
		slog.Bool("refresh_token", tok.RefreshToken != ""),
	)

	return &LoginResult{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}, nil
}

// generateState creates a cryptographically random hex string for the
// OAuth2 state parameter.
func generateState() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
