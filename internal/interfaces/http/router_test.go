package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openadr/internal/domain/storage"
	"openadr/internal/infrastructure/auth"
	"openadr/internal/infrastructure/notifier"
	"openadr/internal/shared/config"
	apperrors "openadr/internal/shared/errors"
	"openadr/internal/shared/logger"
	"openadr/internal/wire"
)

type fakeProgramStore struct {
	mu    sync.Mutex
	seq   int
	items map[wire.Identifier]wire.Program
}

func newFakeProgramStore() *fakeProgramStore {
	return &fakeProgramStore{items: make(map[wire.Identifier]wire.Program)}
}

func (f *fakeProgramStore) Create(_ context.Context, req wire.ProgramRequest, _ storage.ReadPrivacy) (*wire.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.items {
		if p.ProgramName == req.ProgramName {
			return nil, apperrors.NewConflictError("program name already exists", req.ProgramName)
		}
	}
	f.seq++
	now := time.Now().UTC()
	req.ObjectType = ""
	p := wire.Program{
		ID:                   wire.Identifier(fmt.Sprintf("program-%d", f.seq)),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		ProgramRequest:       req,
	}
	f.items[p.ID] = p
	return &p, nil
}

func (f *fakeProgramStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.ReadPrivacy) (*wire.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok || !perm.Admits(p.Targets) {
		return nil, apperrors.NewNotFoundError("program not found", string(id))
	}
	return &p, nil
}

func (f *fakeProgramStore) RetrieveAll(_ context.Context, filter *storage.ProgramFilter, perm storage.ReadPrivacy) ([]wire.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []wire.Program
	for _, p := range f.items {
		if !perm.Admits(p.Targets) {
			continue
		}
		if !wire.TargetsSubset(filter.Targets, p.Targets) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProgramStore) Update(_ context.Context, id wire.Identifier, req wire.ProgramRequest, perm storage.ReadPrivacy) (*wire.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("program not found", string(id))
	}
	req.ObjectType = ""
	p.ProgramRequest = req
	p.ModificationDateTime = time.Now().UTC()
	f.items[id] = p
	return &p, nil
}

func (f *fakeProgramStore) Delete(_ context.Context, id wire.Identifier, _ storage.ReadPrivacy) (*wire.Program, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("program not found", string(id))
	}
	delete(f.items, id)
	return &p, nil
}

type fakeEventStore struct {
	mu    sync.Mutex
	seq   int
	items map[wire.Identifier]wire.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{items: make(map[wire.Identifier]wire.Event)}
}

func (f *fakeEventStore) Create(_ context.Context, req wire.EventRequest, _ storage.ReadPrivacy) (*wire.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC()
	req.ObjectType = ""
	e := wire.Event{
		ID:                   wire.Identifier(fmt.Sprintf("event-%d", f.seq)),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		EventRequest:         req,
	}
	f.items[e.ID] = e
	return &e, nil
}

func (f *fakeEventStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.ReadPrivacy) (*wire.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok || !perm.Admits(e.Targets) {
		return nil, apperrors.NewNotFoundError("event not found", string(id))
	}
	return &e, nil
}

func (f *fakeEventStore) RetrieveAll(_ context.Context, filter *storage.EventFilter, perm storage.ReadPrivacy) ([]wire.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []wire.Event
	for _, e := range f.items {
		if !perm.Admits(e.Targets) {
			continue
		}
		if filter.ProgramID != nil && e.ProgramID != *filter.ProgramID {
			continue
		}
		if !wire.TargetsSubset(filter.Targets, e.Targets) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventStore) Update(_ context.Context, id wire.Identifier, req wire.EventRequest, _ storage.ReadPrivacy) (*wire.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("event not found", string(id))
	}
	req.ObjectType = ""
	e.EventRequest = req
	f.items[id] = e
	return &e, nil
}

func (f *fakeEventStore) Delete(_ context.Context, id wire.Identifier, _ storage.ReadPrivacy) (*wire.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("event not found", string(id))
	}
	delete(f.items, id)
	return &e, nil
}

type fakeReportStore struct {
	mu    sync.Mutex
	seq   int
	items map[wire.Identifier]wire.Report
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{items: make(map[wire.Identifier]wire.Report)}
}

func (f *fakeReportStore) Create(_ context.Context, req wire.ReportRequest, perm storage.OwnerPermission) (*wire.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC()
	req.ObjectType = ""
	r := wire.Report{
		ID:                   wire.Identifier(fmt.Sprintf("report-%d", f.seq)),
		CreatedDateTime:      now,
		ModificationDateTime: now,
		ClientID:             perm.ClientID,
		ReportRequest:        req,
	}
	f.items[r.ID] = r
	return &r, nil
}

func (f *fakeReportStore) Retrieve(_ context.Context, id wire.Identifier, perm storage.OwnerPermission) (*wire.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || !perm.Owns(r.ClientID) {
		return nil, apperrors.NewNotFoundError("report not found", string(id))
	}
	return &r, nil
}

func (f *fakeReportStore) RetrieveAll(_ context.Context, filter *storage.ReportFilter, perm storage.OwnerPermission) ([]wire.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []wire.Report
	for _, r := range f.items {
		if !perm.Owns(r.ClientID) {
			continue
		}
		if filter.ClientName != nil && r.ClientName != *filter.ClientName {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReportStore) Update(_ context.Context, id wire.Identifier, req wire.ReportRequest, perm storage.OwnerPermission) (*wire.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || !perm.Owns(r.ClientID) {
		return nil, apperrors.NewNotFoundError("report not found", string(id))
	}
	req.ObjectType = ""
	r.ReportRequest = req
	r.ModificationDateTime = time.Now().UTC()
	f.items[id] = r
	return &r, nil
}

func (f *fakeReportStore) Delete(_ context.Context, id wire.Identifier, perm storage.OwnerPermission) (*wire.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok || !perm.Owns(r.ClientID) {
		return nil, apperrors.NewNotFoundError("report not found", string(id))
	}
	delete(f.items, id)
	return &r, nil
}

// fakeVenStore answers privacy lookups; the CRUD surface is unused in
// these tests.
type fakeVenStore struct {
	storage.VenStore
	targets map[string][]wire.Target
}

func (f *fakeVenStore) TargetsByClientID(_ context.Context, clientID string) ([]wire.Target, bool, error) {
	targets, ok := f.targets[clientID]
	return targets, ok, nil
}

type fakeSubscriptionStore struct {
	storage.SubscriptionStore
	mu   sync.Mutex
	subs []wire.Subscription
}

func (f *fakeSubscriptionStore) add(sub wire.Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
}

func (f *fakeSubscriptionStore) Subscribers(_ context.Context, obj wire.ObjectType, op wire.Operation, _ *wire.Identifier) ([]wire.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []wire.Subscription
	for _, sub := range f.subs {
		for _, oo := range sub.ObjectOperations {
			if oo.Matches(obj, op) {
				matched = append(matched, sub)
				break
			}
		}
	}
	return matched, nil
}

type testEnv struct {
	router      *Router
	tokens      *auth.TokenService
	programs    *fakeProgramStore
	events      *fakeEventStore
	reports     *fakeReportStore
	subs        *fakeSubscriptionStore
	venTargets  map[string][]wire.Target
	credentials *auth.CredentialStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewLogger()

	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	tokens, err := auth.NewTokenService(secret, nil, log)
	require.NoError(t, err)

	hash, err := auth.HashSecret("bl-secret")
	require.NoError(t, err)
	credentials := auth.NewCredentialStore([]config.OAuthClientConfig{{
		ClientID:   "bl-client",
		SecretHash: hash,
		Scopes:     []string{"read_all", "write_programs", "write_events"},
	}})

	env := &testEnv{
		tokens:      tokens,
		programs:    newFakeProgramStore(),
		events:      newFakeEventStore(),
		reports:     newFakeReportStore(),
		venTargets:  make(map[string][]wire.Target),
		credentials: credentials,
	}
	vens := &fakeVenStore{targets: env.venTargets}
	env.subs = &fakeSubscriptionStore{}
	n := notifier.New(env.subs, log)

	env.router = NewRouter(Stores{
		Programs:      env.programs,
		Events:        env.events,
		Reports:       env.reports,
		Vens:          vens,
		Subscriptions: env.subs,
	}, tokens, credentials, n, Options{
		Mode:         gin.TestMode,
		OAuthEnabled: true,
	}, log)
	return env
}

func (e *testEnv) token(t *testing.T, clientID string, scopes ...auth.Scope) string {
	t.Helper()
	token, _, err := e.tokens.Issue(clientID, scopes)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.Engine().ServeHTTP(rec, req)
	return rec
}

func TestProgramCrudRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeWritePrograms)
	base := env.router.BasePath()

	rec := env.do(http.MethodPost, base+"/programs", token, `{"programName":"price-program","targets":["GROUP:group-1"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"objectType":"PROGRAM"`)
	assert.Contains(t, rec.Body.String(), `"id":"program-1"`)

	rec = env.do(http.MethodGet, base+"/programs", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"programName":"price-program"`)

	rec = env.do(http.MethodGet, base+"/programs/program-1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPut, base+"/programs/program-1", token, `{"programName":"renamed-program"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"programName":"renamed-program"`)

	rec = env.do(http.MethodDelete, base+"/programs/program-1", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, base+"/programs/program-1", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateProgramNameConflicts(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeWritePrograms)
	base := env.router.BasePath()

	rec := env.do(http.MethodPost, base+"/programs", token, `{"programName":"p1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodPost, base+"/programs", token, `{"programName":"p1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The first program survives the rejected duplicate.
	rec = env.do(http.MethodGet, base+"/programs", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var programs []wire.Program
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &programs))
	assert.Len(t, programs, 1)
}

func TestEventVisibilityFollowsVenTargets(t *testing.T) {
	env := newTestEnv(t)
	blToken := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeWriteEvents)
	base := env.router.BasePath()

	create := func(targets string) {
		body := `{"programID":"program-1","priority":null,` + targets +
			`"intervals":[{"id":0,"payloads":[{"type":"PRICE","values":[0.25]}]}]}`
		rec := env.do(http.MethodPost, base+"/events", blToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	create(`"targets":["group-1"],`)
	create(`"targets":["group-2"],`)
	create(``)

	env.venTargets["ven-1"] = []wire.Target{"group-1"}
	venToken := env.token(t, "ven-1", auth.ScopeReadTargets)

	rec := env.do(http.MethodGet, base+"/events", venToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"event-1"`)
	assert.NotContains(t, rec.Body.String(), `"id":"event-2"`)
	assert.Contains(t, rec.Body.String(), `"id":"event-3"`)

	// The hidden event is indistinguishable from a missing one.
	rec = env.do(http.MethodGet, base+"/events/event-2", venToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, base+"/events/event-2", blToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownClientSeesOnlyUntargetedEvents(t *testing.T) {
	env := newTestEnv(t)
	blToken := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeWriteEvents)
	base := env.router.BasePath()

	rec := env.do(http.MethodPost, base+"/events", blToken,
		`{"programID":"program-1","priority":null,"targets":["group-1"],"intervals":[{"id":0,"payloads":[{"type":"SIMPLE","values":[1]}]}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(http.MethodPost, base+"/events", blToken,
		`{"programID":"program-1","priority":null,"intervals":[{"id":0,"payloads":[{"type":"SIMPLE","values":[1]}]}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	strangerToken := env.token(t, "no-such-ven", auth.ScopeReadTargets)
	rec = env.do(http.MethodGet, base+"/events", strangerToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"id":"event-1"`)
	assert.Contains(t, rec.Body.String(), `"id":"event-2"`)
}

func TestReportOwnershipHidesForeignReports(t *testing.T) {
	env := newTestEnv(t)
	base := env.router.BasePath()
	body := `{"programID":"program-1","eventID":"event-1","clientName":"ven-1","resources":[]}`

	ownerToken := env.token(t, "ven-1", auth.ScopeReadVenObjects, auth.ScopeWriteReports)
	rec := env.do(http.MethodPost, base+"/reports", ownerToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, base+"/reports/report-1", ownerToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another VEN cannot see or touch it; the response never reveals that
	// the report exists.
	otherToken := env.token(t, "ven-2", auth.ScopeReadVenObjects, auth.ScopeWriteReports)
	rec = env.do(http.MethodGet, base+"/reports/report-1", otherToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodPut, base+"/reports/report-1", otherToken, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	blToken := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeReadVenObjects)
	rec = env.do(http.MethodGet, base+"/reports/report-1", blToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejections(t *testing.T) {
	env := newTestEnv(t)
	base := env.router.BasePath()

	rec := env.do(http.MethodGet, base+"/programs", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, base+"/programs", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	readOnly := env.token(t, "ven-1", auth.ScopeReadTargets)
	rec = env.do(http.MethodPost, base+"/programs", readOnly, `{"programName":"p"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	venObjects := env.token(t, "ven-1", auth.ScopeReadVenObjects)
	rec = env.do(http.MethodGet, base+"/programs", venObjects, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPaginationBoundsRejected(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "bl-client", auth.ScopeReadAll)
	base := env.router.BasePath()

	rec := env.do(http.MethodGet, base+"/programs?skip=-1", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, base+"/programs?limit=51", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, base+"/programs?limit=abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func tokenRequest(env *testEnv, form url.Values, basicUser, basicPass string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, env.router.BasePath()+"/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicUser != "" {
		req.SetBasicAuth(basicUser, basicPass)
	}
	rec := httptest.NewRecorder()
	env.router.Engine().ServeHTTP(rec, req)
	return rec
}

func TestTokenEndpointIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"bl-client"},
		"client_secret": {"bl-secret"},
	}
	rec := tokenRequest(env, form, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp wire.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotZero(t, resp.ExpiresIn)

	listRec := env.do(http.MethodGet, env.router.BasePath()+"/programs", resp.AccessToken, "")
	assert.Equal(t, http.StatusOK, listRec.Code)
}

func TestTokenEndpointRejectsDuplicateCredentials(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"bl-client"},
		"client_secret": {"bl-secret"},
	}
	rec := tokenRequest(env, form, "bl-client", "bl-secret")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_request")
}

func TestTokenEndpointRejectsBadSecret(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {"bl-client"},
		"client_secret": {"wrong"},
	}
	rec := tokenRequest(env, form, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
	assert.Contains(t, rec.Body.String(), "invalid_client")
}

func TestTokenEndpointRejectsUnknownGrant(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {"bl-client"},
		"client_secret": {"bl-secret"},
	}
	rec := tokenRequest(env, form, "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported_grant_type")
}

func wsDial(t *testing.T, rawURL, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return websocket.DefaultDialer.Dial(rawURL, header)
}

func TestWebsocketDoubleOpenConflicts(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router.Engine())
	defer srv.Close()

	token := env.token(t, "ven-1-client-id", auth.ScopeReadTargets)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + env.router.BasePath() + "/notifiers/websocket"

	first, resp, err := wsDial(t, wsURL, token)
	require.NoError(t, err)
	defer first.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	_, resp, err = wsDial(t, wsURL, token)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Other clients are unaffected by the conflict.
	other, resp, err := wsDial(t, wsURL, env.token(t, "ven-2-client-id", auth.ScopeReadTargets))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	_ = other.Close()

	// Closing the first connection frees the slot again.
	require.NoError(t, first.Close())
	require.Eventually(t, func() bool {
		conn, _, err := wsDial(t, wsURL, token)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)
}

func TestWebsocketDeliversMatchingNotifications(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router.Engine())
	defer srv.Close()

	env.subs.add(wire.Subscription{
		ClientID: "ven-1-client-id",
		SubscriptionRequest: wire.SubscriptionRequest{
			ClientName: "ven-1",
			ObjectOperations: []wire.SubscriptionObjectOperation{{
				Objects:    []wire.ObjectType{wire.ObjectEvent},
				Operations: []wire.Operation{wire.OperationCreate},
				Mechanism:  wire.MechanismWebsocket,
			}},
		},
	})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + env.router.BasePath() + "/notifiers/websocket"
	conn, _, err := wsDial(t, wsURL, env.token(t, "ven-1-client-id", auth.ScopeReadTargets))
	require.NoError(t, err)
	defer conn.Close()

	blToken := env.token(t, "bl-client", auth.ScopeReadAll, auth.ScopeWriteEvents)
	rec := env.do(http.MethodPost, env.router.BasePath()+"/events", blToken,
		`{"programID":"program-1","intervals":[{"id":0,"payloads":[{"type":"SIMPLE","values":[1]}]}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var notification wire.Notification
	require.NoError(t, conn.ReadJSON(&notification))
	assert.Equal(t, wire.ObjectEvent, notification.ObjectType)
	assert.Equal(t, wire.OperationCreate, notification.Operation)
	assert.Equal(t, wire.Identifier("event-1"), notification.ID)
	assert.NotNil(t, notification.Object)
}
