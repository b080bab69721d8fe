package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventos/internal/delivery/http/helpers"
	"eventos/internal/delivery/http/middleware"
	"eventos/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// newRequest builds a request with an optional JSON body and authenticated user.
func newRequest(t *testing.T, method, target, userID string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://test"+target, reader)
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dest != nil && envelope.Error == nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
	return envelope.Error
}

type fakeUserService struct {
	registerFn func(name, email, password string) (*domain.User, error)
	loginFn    func(email, password string) (string, *domain.User, error)
	user       *domain.User
	err        error
	lastName   string
	lastPwd    [2]string
}

func (f *fakeUserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	return f.registerFn(name, email, password)
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return f.loginFn(email, password)
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, id, name string) (*domain.User, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.Name = name
	return &u, nil
}

func (f *fakeUserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	f.lastPwd = [2]string{currentPassword, newPassword}
	return f.err
}

type fakePasswordResetService struct {
	requestErr error
	resetErr   error
	lastEmail  string
	lastReset  [3]string
}

func (f *fakePasswordResetService) RequestReset(ctx context.Context, email string) error {
	f.lastEmail = email
	return f.requestErr
}

func (f *fakePasswordResetService) ResetPassword(ctx context.Context, token, password, confirmPassword string) error {
	f.lastReset = [3]string{token, password, confirmPassword}
	return f.resetErr
}

type fakeEventService struct {
	event     *domain.Event
	events    []*domain.EventWithCount
	err       error
	lastOwner string
	lastID    string
	lastInput domain.EventInput
}

func (f *fakeEventService) CreateEvent(ctx context.Context, ownerID string, in domain.EventInput) (*domain.Event, error) {
	f.lastOwner, f.lastInput = ownerID, in
	if f.err != nil {
		return nil, f.err
	}
	e := domain.NewEvent(ownerID, "launch-party", in, time.Time{}, time.Time{})
	e.ID = "ev-1"
	return e, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastID, f.lastOwner = eventID, ownerID
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.EventWithCount, error) {
	f.lastOwner = ownerID
	return f.events, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID, ownerID string, in domain.EventInput) (*domain.Event, error) {
	f.lastID, f.lastOwner, f.lastInput = eventID, ownerID, in
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	f.lastID, f.lastOwner = eventID, ownerID
	return f.err
}

func (f *fakeEventService) GetPublicEvent(ctx context.Context, slug string) (*domain.Event, error) {
	f.lastID = slug
	return f.event, f.err
}

type fakeRSVPService struct {
	rsvp       *domain.RSVP
	list       []*domain.RSVP
	total      int
	err        error
	lastEvent  string
	lastInput  domain.RSVPInput
	lastSearch string
	lastParams domain.PaginationParams
}

func (f *fakeRSVPService) SubmitRSVP(ctx context.Context, eventID string, in domain.RSVPInput) (*domain.RSVP, error) {
	f.lastEvent, f.lastInput = eventID, in
	return f.rsvp, f.err
}

func (f *fakeRSVPService) ListAttendees(ctx context.Context, eventID, ownerID, search string, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	f.lastEvent, f.lastSearch, f.lastParams = eventID, search, params
	return f.list, f.total, f.err
}

type fakeAnalyticsService struct {
	dashboard *domain.Dashboard
	analytics *domain.Analytics
	err       error
}

func (f *fakeAnalyticsService) Dashboard(ctx context.Context, ownerID string) (*domain.Dashboard, error) {
	return f.dashboard, f.err
}

func (f *fakeAnalyticsService) Analytics(ctx context.Context, ownerID string) (*domain.Analytics, error) {
	return f.analytics, f.err
}
