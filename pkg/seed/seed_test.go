package seed

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

const nestFixture = `
users:
  - email: Olivia@Example.com
    name: Olivia
  - email: bob@example.com
    name: Bob
  - email: ada@example.com
    name: Ada
projects:
  - name: Nest
    owner: olivia@example.com
    members:
      - email: bob@example.com
      - email: ada@example.com
        role: ADMIN
    tasks:
      - title: Write docs
        deadline: 2026-11-01T00:00:00Z
        assignee: bob@example.com
        tags: [ada@example.com]
      - title: Ship it
        status: IN_PROGRESS
        priority: URGENT
        created_by: bob@example.com
        deadline: 2026-11-02T00:00:00Z
`

func TestParse_Defaults(t *testing.T) {
	f, err := Parse([]byte(nestFixture))
	require.NoError(t, err)

	require.Len(t, f.Users, 3)
	assert.Equal(t, "olivia@example.com", f.Users[0].Email)
	assert.Equal(t, userIDFor("olivia@example.com").String(), f.Users[0].ID)

	p := f.Projects[0]
	assert.Equal(t, models.MemberRoleMember, p.Members[0].Role)
	assert.Equal(t, models.MemberRoleAdmin, p.Members[1].Role)

	assert.Equal(t, "olivia@example.com", p.Tasks[0].CreatedBy)
	assert.Equal(t, models.PriorityMedium, p.Tasks[0].Priority)
	assert.Equal(t, models.StatusTodo, p.Tasks[0].Status)
	assert.Equal(t, 2026, p.Tasks[0].Deadline.Year())
	assert.Equal(t, models.PriorityUrgent, p.Tasks[1].Priority)
}

func TestParse_UnknownUser(t *testing.T) {
	_, err := Parse([]byte(`
users:
  - email: olivia@example.com
projects:
  - name: Nest
    owner: olivia@example.com
    tasks:
      - title: Write docs
        assignee: nobody@example.com
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nobody@example.com")
}

func TestParse_InvalidID(t *testing.T) {
	_, err := Parse([]byte("users:\n  - email: a@example.com\n    id: nope\n"))
	assert.Error(t, err)
}

// ============================================================================
// Recording fakes
// ============================================================================

type call struct {
	op    string
	actor string
	arg   string
}

type recorder struct {
	calls []call
}

func (r *recorder) add(ctx context.Context, op, arg string) {
	claims, _ := auth.GetClaims(ctx)
	actor := ""
	if claims != nil {
		actor = claims.Email
	}
	r.calls = append(r.calls, call{op: op, actor: actor, arg: arg})
}

type fakeUsers struct {
	services.UserService
	*recorder
}

func (f fakeUsers) EnsureFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	f.calls = append(f.calls, call{op: "user", arg: claims.Email})
	return &models.User{ID: uuid.MustParse(claims.Subject), Email: claims.Email}, nil
}

type fakeProjects struct {
	services.ProjectService
	*recorder
}

func (f fakeProjects) Create(ctx context.Context, name string, description *string) (*models.Project, error) {
	f.add(ctx, "create-project", name)
	return &models.Project{ID: uuid.New(), Name: name}, nil
}

func (f fakeProjects) InviteMember(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	f.add(ctx, "invite", email)
	return &models.Invitation{ID: uuid.New(), Email: email}, nil
}

func (f fakeProjects) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error {
	f.add(ctx, "role", string(role))
	return nil
}

type fakeInvitations struct {
	services.InvitationService
	*recorder
}

func (f fakeInvitations) Accept(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	f.add(ctx, "accept", "")
	return &models.Invitation{ID: invitationID}, nil
}

type fakeTasks struct {
	services.TaskService
	*recorder
	tagged []uuid.UUID
}

func (f *fakeTasks) Create(ctx context.Context, projectID uuid.UUID, in services.TaskInput) (*models.Task, error) {
	f.add(ctx, "create-task", in.Title)
	return &models.Task{ID: uuid.New(), Title: in.Title}, nil
}

func (f *fakeTasks) Update(ctx context.Context, taskID uuid.UUID, in services.TaskUpdate) (*models.Task, error) {
	f.add(ctx, "tag", in.Title)
	f.tagged = append(f.tagged, in.TaggedUserIDs...)
	return &models.Task{ID: taskID}, nil
}

func TestSeeder_Apply_ActsAsEachUser(t *testing.T) {
	f, err := Parse([]byte(nestFixture))
	require.NoError(t, err)

	rec := &recorder{}
	tasks := &fakeTasks{recorder: rec}
	s := NewSeeder(fakeUsers{recorder: rec}, fakeProjects{recorder: rec}, fakeInvitations{recorder: rec}, tasks, zap.NewNop())

	res, err := s.Apply(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, &Result{Users: 3, Projects: 1, Members: 2, Tasks: 2}, res)

	want := []call{
		{"user", "", "olivia@example.com"},
		{"user", "", "bob@example.com"},
		{"user", "", "ada@example.com"},
		{"create-project", "olivia@example.com", "Nest"},
		{"invite", "olivia@example.com", "bob@example.com"},
		{"accept", "bob@example.com", ""},
		{"invite", "olivia@example.com", "ada@example.com"},
		{"accept", "ada@example.com", ""},
		{"role", "olivia@example.com", "ADMIN"},
		{"create-task", "olivia@example.com", "Write docs"},
		{"tag", "olivia@example.com", "Write docs"},
		{"create-task", "bob@example.com", "Ship it"},
	}
	assert.Equal(t, want, rec.calls)
	assert.Equal(t, []uuid.UUID{userIDFor("ada@example.com")}, tasks.tagged)
}

func TestLoad_DemoFixture(t *testing.T) {
	f, err := Load("testdata/nest.yaml")
	require.NoError(t, err)
	require.Len(t, f.Projects, 1)
	assert.Len(t, f.Projects[0].Tasks, 3)
	assert.Equal(t, models.StatusBacklog, f.Projects[0].Tasks[2].Status)
}
