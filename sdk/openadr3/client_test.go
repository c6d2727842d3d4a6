package openadr3

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openadr/internal/wire"
)

func tokenHandler(counter *atomic.Int64, tokenType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counter.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(wire.TokenResponse{
			AccessToken: "test-token",
			TokenType:   tokenType,
			ExpiresIn:   3600,
		})
	}
}

func TestListAllWalksEveryPage(t *testing.T) {
	var tokenCalls atomic.Int64
	var skips []int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", tokenHandler(&tokenCalls, "Bearer"))
	mux.HandleFunc("/programs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		skip, _ := strconv.ParseInt(r.URL.Query().Get("skip"), 10, 64)
		skips = append(skips, skip)

		count := 50
		if skip >= 100 {
			count = 20
		}
		page := make([]wire.Program, count)
		for i := range page {
			page[i] = wire.Program{
				ID:             wire.Identifier(fmt.Sprintf("program-%d", skip+int64(i))),
				ProgramRequest: wire.ProgramRequest{ProgramName: "p"},
			}
		}
		_ = json.NewEncoder(w).Encode(page)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithCredentials(Credentials{ClientID: "c", ClientSecret: "s"}))

	programs, err := client.Programs(context.Background(), ProgramListOptions{})
	require.NoError(t, err)
	assert.Len(t, programs, 120)
	assert.Equal(t, []int64{0, 50, 100}, skips)

	// The short final page ends the walk; the token is fetched once.
	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestShortFirstPageEndsWalk(t *testing.T) {
	var tokenCalls atomic.Int64
	var listCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", tokenHandler(&tokenCalls, "Bearer"))
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		listCalls.Add(1)
		_ = json.NewEncoder(w).Encode([]wire.Event{})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithCredentials(Credentials{ClientID: "c", ClientSecret: "s"}))

	events, err := client.Events(context.Background(), EventListOptions{})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int64(1), listCalls.Load())
}

func TestTokenCachedAcrossCalls(t *testing.T) {
	var tokenCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", tokenHandler(&tokenCalls, "bearer"))
	mux.HandleFunc("/programs/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(wire.Program{ID: "program-1", ProgramRequest: wire.ProgramRequest{ProgramName: "p"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithCredentials(Credentials{ClientID: "c", ClientSecret: "s"}))

	// token_type is matched case-insensitively.
	for i := 0; i < 3; i++ {
		_, err := client.Program(context.Background(), "program-1")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), tokenCalls.Load())
}

func TestRejectsNonBearerTokenType(t *testing.T) {
	var tokenCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", tokenHandler(&tokenCalls, "mac"))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithCredentials(Credentials{ClientID: "c", ClientSecret: "s"}))

	_, err := client.Programs(context.Background(), ProgramListOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token type")
}

func TestProblemResponsesAreTyped(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/programs/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(wire.NewProblem(http.StatusNotFound, "program not found"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithStaticToken("static"))

	_, err := client.Program(context.Background(), "missing")
	require.Error(t, err)

	var problem *wire.Problem
	require.ErrorAs(t, err, &problem)
	assert.True(t, problem.IsNotFound())
	assert.Equal(t, "program not found", problem.Detail)
}

func TestOAuthErrorSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(wire.NewOAuthError(wire.OAuthInvalidClient, "client authentication failed"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, WithCredentials(Credentials{ClientID: "c", ClientSecret: "bad"}))

	_, err := client.Programs(context.Background(), ProgramListOptions{})
	require.Error(t, err)

	var oauthErr wire.OAuthError
	require.ErrorAs(t, err, &oauthErr)
	assert.Equal(t, wire.OAuthInvalidClient, oauthErr.ErrorCode)
}
