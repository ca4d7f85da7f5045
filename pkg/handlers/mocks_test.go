package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

// ============================================================================
// Service mocks
// ============================================================================

type mockProjectService struct {
	project  *models.Project
	detail   *models.ProjectDetail
	projects []*models.ProjectSummary
	invite   *models.Invitation
	err      error

	gotName  string
	gotEmail string
	gotRole  models.MemberRole
	gotUser  uuid.UUID
}

func (m *mockProjectService) Create(ctx context.Context, name string, description *string) (*models.Project, error) {
	m.gotName = name
	return m.project, m.err
}
func (m *mockProjectService) GetAll(ctx context.Context) ([]*models.ProjectSummary, error) {
	return m.projects, m.err
}
func (m *mockProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.ProjectDetail, error) {
	return m.detail, m.err
}
func (m *mockProjectService) Update(ctx context.Context, projectID uuid.UUID, name string, description *string) (*models.Project, error) {
	m.gotName = name
	return m.project, m.err
}
func (m *mockProjectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	return m.err
}
func (m *mockProjectService) InviteMember(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	m.gotEmail = email
	return m.invite, m.err
}
func (m *mockProjectService) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error {
	m.gotUser, m.gotRole = userID, role
	return m.err
}
func (m *mockProjectService) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) error {
	m.gotUser = userID
	return m.err
}

type mockActivityService struct {
	activities []*models.Activity
	err        error
	gotLimit   int
}

func (m *mockActivityService) Record(ctx context.Context, activity *models.Activity) error {
	return m.err
}
func (m *mockActivityService) GetByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	return m.activities, m.err
}
func (m *mockActivityService) GetByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error) {
	m.gotLimit = limit
	return m.activities, m.err
}

type mockTaskService struct {
	task       *models.Task
	tasks      []*models.Task
	activities []*models.Activity
	err        error

	gotInput  services.TaskInput
	gotUpdate services.TaskUpdate
	gotStatus models.TaskStatus
}

func (m *mockTaskService) Create(ctx context.Context, projectID uuid.UUID, in services.TaskInput) (*models.Task, error) {
	m.gotInput = in
	return m.task, m.err
}
func (m *mockTaskService) Update(ctx context.Context, taskID uuid.UUID, in services.TaskUpdate) (*models.Task, error) {
	m.gotUpdate = in
	return m.task, m.err
}
func (m *mockTaskService) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	m.gotStatus = status
	return m.task, m.err
}
func (m *mockTaskService) Delete(ctx context.Context, taskID uuid.UUID) error {
	return m.err
}
func (m *mockTaskService) GetByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Task, error) {
	return m.tasks, m.err
}
func (m *mockTaskService) GetTaskActivities(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	return m.activities, m.err
}

type mockInvitationService struct {
	invitation  *models.Invitation
	invitations []*models.Invitation
	err         error
	gotID       uuid.UUID
}

func (m *mockInvitationService) Invite(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	return m.invitation, m.err
}
func (m *mockInvitationService) Accept(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	m.gotID = invitationID
	return m.invitation, m.err
}
func (m *mockInvitationService) Decline(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	m.gotID = invitationID
	return m.invitation, m.err
}
func (m *mockInvitationService) GetPending(ctx context.Context) ([]*models.Invitation, error) {
	return m.invitations, m.err
}

type mockNotificationService struct {
	notifications []*models.Notification
	unread        int
	markedAll     int64
	err           error
	gotID         uuid.UUID
}

func (m *mockNotificationService) Notify(ctx context.Context, notification *models.Notification) error {
	return m.err
}
func (m *mockNotificationService) GetMyNotifications(ctx context.Context) ([]*models.Notification, error) {
	return m.notifications, m.err
}
func (m *mockNotificationService) GetUnreadCount(ctx context.Context) (int, error) {
	return m.unread, m.err
}
func (m *mockNotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	m.gotID = notificationID
	return m.err
}
func (m *mockNotificationService) MarkAllAsRead(ctx context.Context) (int64, error) {
	return m.markedAll, m.err
}
func (m *mockNotificationService) InvalidateUnread(ctx context.Context, userIDs ...uuid.UUID) {}

type mockUserService struct {
	user       *models.User
	prefs      models.UserPreferences
	ensureErr  error
	err        error
	ensureHits int
}

func (m *mockUserService) EnsureFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	m.ensureHits++
	return m.user, m.ensureErr
}
func (m *mockUserService) GetSession(ctx context.Context) (*models.User, error) {
	return m.user, m.err
}
func (m *mockUserService) GetPreferences(ctx context.Context) (models.UserPreferences, error) {
	return m.prefs, m.err
}
func (m *mockUserService) UpdatePreferences(ctx context.Context, prefs models.UserPreferences) (models.UserPreferences, error) {
	m.prefs = prefs
	return prefs, m.err
}

// mockAuthService accepts every request as the configured claims.
type mockAuthService struct {
	claims *auth.Claims
	token  string
	err    error
}

func (m *mockAuthService) ValidateRequest(r *http.Request) (*auth.Claims, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.claims, m.token, nil
}
func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return m.claims, m.err
}

// ============================================================================
// Helpers
// ============================================================================

func testClaims(userID uuid.UUID) *auth.Claims {
	claims := &auth.Claims{Email: "olivia@example.com", Name: "Olivia"}
	claims.Subject = userID.String()
	return claims
}

// authedRequest builds a request carrying claims, as RequireAuth would.
func authedRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := auth.WithClaims(req.Context(), testClaims(uuid.New()), "test-token")
	return req.WithContext(ctx)
}

// decodeError reads the {"error","message"} body.
func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// decodeData reads ApiResponse.Data into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func passthroughScope(next http.HandlerFunc) http.HandlerFunc { return next }
