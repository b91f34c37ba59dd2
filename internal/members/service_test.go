package members

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"boxstudio/internal/notifications"
	"boxstudio/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQRToken = "qr-secret"

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *notifications.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestCheckInRecordsVisit(t *testing.T) {
	repo := newMockRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, testQRToken, pub, nil)
	member := repo.addMember("Ana")

	got, err := svc.CheckIn(context.Background(), testQRToken, member.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendanceCount)
	assert.NotNil(t, got.LastActive)

	_, err = svc.CheckIn(context.Background(), testQRToken, member.ID.String())
	require.NoError(t, err)

	require.Len(t, repo.visits, 2)
	assert.Equal(t, SourceQRCheckIn, repo.visits[0].Source)
	assert.Nil(t, repo.visits[0].EventID)
	assert.Equal(t, 2, repo.members[member.ID].AttendanceCount)

	require.Len(t, pub.events, 2)
	assert.Equal(t, notifications.EventMemberCheckedIn, pub.events[0].Type)
}

func TestCheckInRejectsBadToken(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, testQRToken, nil, nil)
	member := repo.addMember("Ana")

	_, err := svc.CheckIn(context.Background(), "nope", member.ID.String())
	assert.True(t, apperror.Is(err, apperror.ErrUnauthorized))
	assert.Empty(t, repo.visits)

	// an unset token never matches
	svc = NewService(repo, "", nil, nil)
	_, err = svc.CheckIn(context.Background(), "", member.ID.String())
	assert.True(t, apperror.Is(err, apperror.ErrUnauthorized))
}

func TestCheckInUnknownMember(t *testing.T) {
	svc := NewService(newMockRepository(), testQRToken, nil, nil)

	_, err := svc.CheckIn(context.Background(), testQRToken, uuid.NewString())
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
	assert.Equal(t, "Member not found", apperror.SafeMessage(err))

	_, err = svc.CheckIn(context.Background(), testQRToken, "not-a-uuid")
	assert.True(t, apperror.Is(err, apperror.ErrNotFound))
}

func TestCheckInStoreFailure(t *testing.T) {
	repo := newMockRepository()
	repo.failErr = errors.New("connection refused")
	svc := NewService(repo, testQRToken, nil, nil)

	_, err := svc.CheckIn(context.Background(), testQRToken, uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(err))
}

func TestCheckInEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := newMockRepository()
	member := repo.addMember("Ana")
	engine := gin.New()
	SetupCheckInRoutes(engine.Group("/api/v1"), NewController(NewService(repo, testQRToken, nil, nil)))

	get := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/checkin"+query, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	w := get("?token=" + testQRToken + "&member_id=" + member.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data CheckInResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Data.OK)
	assert.Equal(t, member.ID.String(), env.Data.MemberID)
	assert.Equal(t, 1, env.Data.AttendanceCount)

	assert.Equal(t, http.StatusUnauthorized, get("?token=wrong&member_id="+member.ID.String()).Code)
	assert.Equal(t, http.StatusNotFound, get("?token="+testQRToken+"&member_id="+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, get("?member_id="+member.ID.String()).Code)
}
