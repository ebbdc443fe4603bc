package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: sub, ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestUpgradeMissingVaultIdReturns400(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	httpResp, getErr := ts.Client().Get(ts.URL + "/ws/doc-1?token=x")
	require.NoError(t, getErr)
	defer httpResp.Body.Close()
	require.Equal(t, 400, httpResp.StatusCode)
}

func TestUpgradeInvalidTokenReturns401(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	vaultID := uuid.New().String()
	httpResp, err := ts.Client().Get(ts.URL + "/ws/doc-1?vaultId=" + vaultID + "&token=garbage")
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, 401, httpResp.StatusCode)
}

func TestUpgradeSucceedsThenDeniedCapabilityClosesImmediately(t *testing.T) {
	srv, _, _ := newTestServer(t)
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	vaultID := uuid.New().String() // no vault row seeded: capability resolves to None
	principal := uuid.New().String()
	token := sign(t, testSecret, principal, time.Now().Add(time.Hour))

	conn, resp, err := websocket.DefaultDialer.Dial(
		wsURL(ts.URL)+"/ws/doc-1?vaultId="+vaultID+"&token="+token, nil)
	require.NoError(t, err)
	require.Equal(t, 101, resp.StatusCode)
	defer conn.Close()

	_, _, readErr := conn.ReadMessage()
	require.Error(t, readErr)
	require.True(t, websocket.IsCloseError(readErr, websocket.CloseNoStatusReceived) ||
		websocket.IsUnexpectedCloseError(readErr))
}

func TestUpgradeGrantedCapabilityRepliesToHandshake(t *testing.T) {
	srv, _, seed := newTestServer(t)
	ts := httptest.NewServer(srv.http.Handler)
	defer ts.Close()

	vaultID := uuid.New().String()
	principal := uuid.New().String()
	seedVault(t, seed, vaultID, principal)
	token := sign(t, testSecret, principal, time.Now().Add(time.Hour))

	conn, _, err := websocket.DefaultDialer.Dial(
		wsURL(ts.URL)+"/ws/doc-1?vaultId="+vaultID+"&token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0, 0, 1, 0}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NotEmpty(t, payload)
}
