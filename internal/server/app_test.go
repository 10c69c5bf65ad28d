package server

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/borderease/internal/jwtx"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.ShutdownTimeout = 2 * time.Second
	return c
}

func TestApp_ServeAndShutdown(t *testing.T) {
	cfg := testConfig()
	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	tok, err := jwtx.GenerateToken("u1", "alice@example.com", "Alice", "", []byte(cfg.LocalSecret), time.Minute)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, base+"/users", strings.NewReader(`{"displayName":"Alice"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), "borderease_http_requests_total")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewApp_DatabaseOpenError(t *testing.T) {
	orig := openPostgres
	t.Cleanup(func() { openPostgres = orig })
	openPostgres = func(context.Context, string) (*sql.DB, error) {
		return nil, errors.New("dial tcp: refused")
	}

	cfg := testConfig()
	cfg.DatabaseDSN = "postgres://localhost/borderease"
	_, err := NewApp(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error: dial tcp: refused")
}

func TestNewApp_FirebaseVerifier(t *testing.T) {
	orig := newFirebaseVerifier
	t.Cleanup(func() { newFirebaseVerifier = orig })

	var gotProject, gotCreds string
	newFirebaseVerifier = func(_ context.Context, projectID, credentialsFile string) (auth.Verifier, error) {
		gotProject, gotCreds = projectID, credentialsFile
		return auth.NewLocalVerifier([]byte("x")), nil
	}

	cfg := testConfig()
	cfg.AuthMode = config.AuthFirebase
	cfg.FirebaseProjectID = "borderease-prod"
	cfg.FirebaseCredentialsFile = "/etc/sa.json"
	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	app.Close()
	assert.Equal(t, "borderease-prod", gotProject)
	assert.Equal(t, "/etc/sa.json", gotCreds)

	newFirebaseVerifier = func(context.Context, string, string) (auth.Verifier, error) {
		return nil, errors.New("no credentials")
	}
	_, err = NewApp(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firebase init error: no credentials")
}
