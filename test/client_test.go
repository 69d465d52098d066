//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/2beens/workoutplan/internal/middleware"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

const (
	testUserAgent = "test-agent"
	testPassword  = "testpass123"
)

// do sends a request to the running server and returns the status and the whole body.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", testUserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.SessionTokenHeader, token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, respBytes
}

// doJSON is do, requiring the expected status and decoding the body into dst.
func (s *IntegrationTestSuite) doJSON(ctx context.Context, method, path, token string, body any, expectedStatus int, dst any) {
	t := s.T()
	status, respBytes := s.do(ctx, method, path, token, body)
	require.Equal(t, expectedStatus, status, string(respBytes))
	if dst != nil {
		require.NoError(t, json.Unmarshal(respBytes, dst), string(respBytes))
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *IntegrationTestSuite) register(ctx context.Context) string {
	email := gofakeit.Email()
	s.doJSON(ctx, "POST", "/a/register", "", registerRequest{Email: email, Password: testPassword}, http.StatusCreated, nil)
	return email
}

// activate flips the account flag directly; activation links only go out by mail.
func (s *IntegrationTestSuite) activate(ctx context.Context, email string) {
	res, err := s.DB.ExecContext(ctx, `UPDATE app_user SET active = TRUE WHERE email = $1`, email)
	require.NoError(s.T(), err)
	affected, err := res.RowsAffected()
	require.NoError(s.T(), err)
	require.Equal(s.T(), int64(1), affected)
}

func (s *IntegrationTestSuite) login(ctx context.Context, email string) string {
	var resp loginResponse
	s.doJSON(ctx, "POST", "/a/login", "", registerRequest{Email: email, Password: testPassword}, http.StatusOK, &resp)
	require.NotEmpty(s.T(), resp.Token)
	return resp.Token
}

// newActiveUser registers and activates a fresh account and returns its session token.
func (s *IntegrationTestSuite) newActiveUser(ctx context.Context) string {
	email := s.register(ctx)
	s.activate(ctx, email)
	return s.login(ctx, email)
}
