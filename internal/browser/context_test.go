package browser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quaymarket/storefront/internal/models"
	"github.com/quaymarket/storefront/internal/session"
)

func testClaims(t *testing.T, role models.Role) *session.Claims {
	userID, err := uuid.NewV7()
	require.NoError(t, err)
	return &session.Claims{
		UserID:    userID,
		Name:      "Test User",
		Email:     "test@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func waitForStatus(t *testing.T, sess *SessionContext, status Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return sess.State().Status == status
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSessionContext_initialState(t *testing.T) {
	sess := NewSessionContext(nil)
	defer sess.Close()

	require.Equal(t, StatusLoading, sess.State().Status)
	require.Nil(t, sess.State().Claims)
}

func TestSessionContext_seededInitialSession(t *testing.T) {
	claims := testClaims(t, models.RoleUser)
	sess := NewSessionContext(claims)
	defer sess.Close()

	state := sess.State()
	require.Equal(t, StatusAuthenticated, state.Status)
	require.Equal(t, claims, state.Claims)
}

func TestSessionContext_resolveAuthenticated(t *testing.T) {
	claims := testClaims(t, models.RoleAdmin)
	sess := NewSessionContext(nil)
	defer sess.Close()

	sess.Resolve(context.Background(), FetcherFunc(func(context.Context) (*session.Claims, error) {
		return claims, nil
	}))

	waitForStatus(t, sess, StatusAuthenticated)
	require.Equal(t, claims, sess.State().Claims)
}

func TestSessionContext_resolveNoSession(t *testing.T) {
	sess := NewSessionContext(nil)
	defer sess.Close()

	sess.Resolve(context.Background(), FetcherFunc(func(context.Context) (*session.Claims, error) {
		return nil, nil
	}))

	waitForStatus(t, sess, StatusUnauthenticated)
	require.Nil(t, sess.State().Claims)
}

func TestSessionContext_resolveFailureFailsClosed(t *testing.T) {
	var attempts atomic.Int32
	sess := NewSessionContext(nil)
	defer sess.Close()

	sess.Resolve(context.Background(), FetcherFunc(func(context.Context) (*session.Claims, error) {
		attempts.Add(1)
		return nil, errors.New("service unreachable")
	}))

	waitForStatus(t, sess, StatusUnauthenticated)
	require.Equal(t, int32(3), attempts.Load())
}

func TestSessionContext_resolveRetriesTransientFailure(t *testing.T) {
	claims := testClaims(t, models.RoleUser)
	var attempts atomic.Int32
	sess := NewSessionContext(nil)
	defer sess.Close()

	sess.Resolve(context.Background(), FetcherFunc(func(context.Context) (*session.Claims, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("flaky")
		}
		return claims, nil
	}))

	waitForStatus(t, sess, StatusAuthenticated)
	require.Equal(t, int32(3), attempts.Load())
}

func TestSessionContext_subscribeReceivesTransitions(t *testing.T) {
	sess := NewSessionContext(nil)
	defer sess.Close()

	ch, cancel := sess.Subscribe()
	defer cancel()

	sess.Resolve(context.Background(), FetcherFunc(func(context.Context) (*session.Claims, error) {
		return nil, nil
	}))

	select {
	case state := <-ch:
		require.Equal(t, StatusUnauthenticated, state.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a transition")
	}
}

func TestSessionContext_signOut(t *testing.T) {
	sess := NewSessionContext(testClaims(t, models.RoleUser))
	defer sess.Close()

	ch, cancel := sess.Subscribe()
	defer cancel()

	sess.SignOut()

	// Sign-out re-enters loading before settling unauthenticated, so gates
	// re-evaluate instead of flipping straight to a denial.
	first := <-ch
	require.Equal(t, StatusLoading, first.Status)
	second := <-ch
	require.Equal(t, StatusUnauthenticated, second.Status)
}

func TestSessionContext_closeDiscardsPendingResolution(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})

	sess := NewSessionContext(nil)
	sess.Resolve(context.Background(), FetcherFunc(func(ctx context.Context) (*session.Claims, error) {
		close(fetching)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return testClaims(t, models.RoleUser), nil
	}))

	<-fetching
	sess.Close()
	close(release)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, StatusLoading, sess.State().Status)
}

func TestSessionContext_subscribeCancelIsIdempotent(t *testing.T) {
	sess := NewSessionContext(nil)
	defer sess.Close()

	_, cancel := sess.Subscribe()
	cancel()
	cancel()
}
