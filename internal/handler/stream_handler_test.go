package handler_test

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/events"
)

func startFiberServer(t *testing.T, app *fiber.App) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		if err := app.Listener(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Logf("fiber listener stopped: %v", err)
		}
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)

	t.Cleanup(func() {
		_ = app.Shutdown()
		_ = listener.Close()
		select {
		case <-done:
		case <-time.After(100 * time.Millisecond):
		}
	})
	return listener.Addr().String()
}

func TestStreamDeliversEnrollmentEvents(t *testing.T) {
	env := newTestApp(t)
	unza := env.universityID(t, "UNZA")
	admin := env.login(t, "admin", testAdminPassword)

	var tutor idOnly
	resp := env.request(t, http.MethodPost, "/api/v1/auth/register/tutor", "", map[string]interface{}{
		"username":      "bobtutor",
		"email":         "bob@example.com",
		"full_name":     "Bob Banda",
		"password":      "secret123",
		"university_id": unza,
	})
	decode(t, resp, http.StatusCreated, &tutor)
	decode(t, env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/tutors/%d/approve", tutor.ID), admin, nil), http.StatusOK, nil)
	token := env.login(t, "bobtutor", "secret123")

	addr := startFiberServer(t, env.app)
	url := "ws://" + addr + "/api/v1/stream"
	dialer := websocket.Dialer{HandshakeTimeout: 3 * time.Second}

	_, rejected, err := dialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, rejected)
	require.Equal(t, http.StatusUnauthorized, rejected.StatusCode)

	conn, _, err := dialer.Dial(url, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return env.hub.Subscribers(tutor.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	resp = env.request(t, http.MethodPost, "/api/v1/auth/register/student", "", map[string]interface{}{
		"username":      "alicestudent",
		"email":         "alice@example.com",
		"full_name":     "Alice Phiri",
		"password":      "secret123",
		"university_id": unza,
		"tutor_id":      tutor.ID,
	})
	var registered struct {
		Account    idOnly `json:"account"`
		Enrollment idOnly `json:"enrollment"`
	}
	decode(t, resp, http.StatusCreated, &registered)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var event events.EnrollmentEvent
	require.NoError(t, conn.ReadJSON(&event))
	require.Equal(t, events.TypeSubmitted, event.Type)
	require.Equal(t, registered.Enrollment.ID, event.EnrollmentID)
	require.Equal(t, registered.Account.ID, event.StudentID)
	require.Equal(t, tutor.ID, event.TutorID)
	require.Equal(t, "pending", event.Status)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return env.hub.Subscribers(tutor.ID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
