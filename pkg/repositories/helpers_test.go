//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/testhelpers"
)

// repoTestContext holds test dependencies for repository tests.
type repoTestContext struct {
	t   *testing.T
	ctx context.Context

	users         UserRepository
	projects      ProjectRepository
	members       MemberRepository
	invitations   InvitationRepository
	tasks         TaskRepository
	activities    ActivityRepository
	notifications NotificationRepository
}

// setupRepoTest truncates the shared database and returns a scoped context.
func setupRepoTest(t *testing.T) *repoTestContext {
	engineDB := testhelpers.GetEngineDB(t)
	engineDB.Truncate(t)

	return &repoTestContext{
		t:             t,
		ctx:           engineDB.ScopedContext(t),
		users:         NewUserRepository(),
		projects:      NewProjectRepository(),
		members:       NewMemberRepository(),
		invitations:   NewInvitationRepository(),
		tasks:         NewTaskRepository(),
		activities:    NewActivityRepository(),
		notifications: NewNotificationRepository(),
	}
}

func (tc *repoTestContext) createUser(name string) *models.User {
	tc.t.Helper()
	u := &models.User{ID: uuid.New(), Email: name + "-" + uuid.NewString()[:8] + "@example.com", Name: name}
	require.NoError(tc.t, tc.users.Upsert(tc.ctx, u))
	return u
}

func (tc *repoTestContext) createProject(owner *models.User) *models.Project {
	tc.t.Helper()
	p := &models.Project{Name: "Nest", OwnerID: owner.ID}
	require.NoError(tc.t, tc.projects.Create(tc.ctx, p))
	return p
}

func (tc *repoTestContext) addMember(p *models.Project, u *models.User, role models.MemberRole) {
	tc.t.Helper()
	require.NoError(tc.t, tc.members.Add(tc.ctx, &models.ProjectMember{ProjectID: p.ID, UserID: u.ID, Role: role}))
}

func (tc *repoTestContext) createTask(p *models.Project, creator *models.User, assignee *models.User) *models.Task {
	tc.t.Helper()
	task := &models.Task{
		ProjectID:   p.ID,
		Title:       "Write docs",
		Priority:    models.PriorityMedium,
		Status:      models.StatusTodo,
		Deadline:    time.Now().Add(48 * time.Hour).UTC().Truncate(time.Microsecond),
		CreatedByID: creator.ID,
	}
	if assignee != nil {
		task.AssignedToID = &assignee.ID
	}
	require.NoError(tc.t, tc.tasks.Create(tc.ctx, task))
	return task
}
