package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigbook/internal/delivery/http/helpers"
	"gigbook/internal/domain"
)

// fakeParticipationService implements domain.ParticipationService for handler tests.
type fakeParticipationService struct {
	acceptErr  error
	rejectErr  error
	joinErr    error
	lastReason *string
}

func (f *fakeParticipationService) Accept(ctx context.Context, eventID, profileID string) error {
	return f.acceptErr
}

func (f *fakeParticipationService) Reject(ctx context.Context, eventID, profileID string, reason *string) error {
	f.lastReason = reason
	return f.rejectErr
}

func (f *fakeParticipationService) RequestToJoin(ctx context.Context, eventID, profileID string) error {
	return f.joinErr
}

func TestParticipationController_Accept(t *testing.T) {
	tests := []struct {
		name       string
		acceptErr  error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"schedule conflict", &domain.ConflictError{Conflicts: []*domain.Event{{ID: "busy"}}}, http.StatusConflict},
		{"already decided", domain.ErrAlreadyDecided, http.StatusConflict},
		{"expired invitation", domain.ErrInvitationExpired, http.StatusConflict},
		{"no participation", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewParticipationController(testLogger, &fakeParticipationService{acceptErr: tt.acceptErr})
			req := authedRequest(http.MethodPost, "/events/ev-1/accept", nil, "artist-1")
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()
			c.Accept(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestParticipationController_Accept_Unauthorized(t *testing.T) {
	c := NewParticipationController(testLogger, &fakeParticipationService{})
	req := authedRequest(http.MethodPost, "/events/ev-1/accept", nil, "")
	req.SetPathValue("eventID", "ev-1")
	rr := httptest.NewRecorder()
	c.Accept(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestParticipationController_Reject(t *testing.T) {
	t.Run("with reason", func(t *testing.T) {
		svc := &fakeParticipationService{}
		c := NewParticipationController(testLogger, svc)
		req := authedRequest(http.MethodPost, "/events/ev-1/reject", []byte(`{"reason":"on tour"}`), "artist-1")
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.Reject(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, svc.lastReason)
		assert.Equal(t, "on tour", *svc.lastReason)
	})

	t.Run("without body", func(t *testing.T) {
		svc := &fakeParticipationService{}
		c := NewParticipationController(testLogger, svc)
		req := authedRequest(http.MethodPost, "/events/ev-1/reject", nil, "artist-1")
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.Reject(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, svc.lastReason)
	})

	t.Run("already decided", func(t *testing.T) {
		c := NewParticipationController(testLogger, &fakeParticipationService{rejectErr: domain.ErrAlreadyDecided})
		req := authedRequest(http.MethodPost, "/events/ev-1/reject", nil, "artist-1")
		req.SetPathValue("eventID", "ev-1")
		rr := httptest.NewRecorder()
		c.Reject(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		envelope := decodeEnvelope(t, rr)
		require.NotNil(t, envelope.Error)
		assert.Equal(t, helpers.ErrCodeConflict, envelope.Error.Code)
	})
}

func TestParticipationController_RequestToJoin(t *testing.T) {
	tests := []struct {
		name       string
		joinErr    error
		wantStatus int
	}{
		{"success", nil, http.StatusCreated},
		{"duplicate", domain.ErrDuplicateParticipant, http.StatusConflict},
		{"block", domain.ErrInvalidInput, http.StatusBadRequest},
		{"event missing", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewParticipationController(testLogger, &fakeParticipationService{joinErr: tt.joinErr})
			req := authedRequest(http.MethodPost, "/events/ev-1/join", nil, "artist-1")
			req.SetPathValue("eventID", "ev-1")
			rr := httptest.NewRecorder()
			c.RequestToJoin(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}
