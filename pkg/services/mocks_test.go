package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worknest/worknest-engine/pkg/apperrors"
	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/repositories"
)

// memStore is an in-memory backing store shared by the fake repositories
// below. It mirrors the constraints the SQL schema enforces.
type memStore struct {
	mu            sync.Mutex
	clock         time.Time
	users         map[uuid.UUID]*models.User
	projects      map[uuid.UUID]*models.Project
	members       map[uuid.UUID][]*models.ProjectMember
	invitations   map[uuid.UUID]*models.Invitation
	tasks         map[uuid.UUID]*models.Task
	tags          map[uuid.UUID][]*models.TaskTag
	activities    []*models.Activity
	notifications []*models.Notification

	upserts int
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		users:       map[uuid.UUID]*models.User{},
		projects:    map[uuid.UUID]*models.Project{},
		members:     map[uuid.UUID][]*models.ProjectMember{},
		invitations: map[uuid.UUID]*models.Invitation{},
		tasks:       map[uuid.UUID]*models.Task{},
		tags:        map[uuid.UUID][]*models.TaskTag{},
	}
}

// now returns a strictly increasing timestamp so orderings are stable.
func (s *memStore) now() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *memStore) userRef(id uuid.UUID) *models.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	c := *u
	return &c
}

func (s *memStore) addUser(name, email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.New(), Name: name, Email: email, CreatedAt: s.now()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) activitiesOfType(t models.ActivityType) []*models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Activity
	for _, a := range s.activities {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) notificationsFor(userID uuid.UUID) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ---- users ----

type memUserRepository struct{ s *memStore }

var _ repositories.UserRepository = memUserRepository{}

func (r memUserRepository) Upsert(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return apperrors.Conflict("User already exists")
		}
	}
	now := r.s.now()
	if existing, ok := r.s.users[user.ID]; ok {
		existing.Email, existing.Name, existing.Image, existing.UpdatedAt = user.Email, user.Name, user.Image, now
		user.Preferences, user.CreatedAt, user.UpdatedAt = existing.Preferences, existing.CreatedAt, now
	} else {
		user.CreatedAt, user.UpdatedAt = now, now
		c := *user
		r.s.users[user.ID] = &c
	}
	r.s.upserts++
	return nil
}

func (r memUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u := r.s.userRef(userID); u != nil {
		return u, nil
	}
	return nil, apperrors.NotFound("User not found")
}

func (r memUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, u := range r.s.users {
		if u.Email == email {
			return r.s.userRef(id), nil
		}
	}
	return nil, apperrors.NotFound("User not found")
}

func (r memUserRepository) UpdatePreferences(ctx context.Context, userID uuid.UUID, prefs models.UserPreferences) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperrors.NotFound("User not found")
	}
	u.Preferences = prefs
	return nil
}

// ---- projects ----

type memProjectRepository struct{ s *memStore }

var _ repositories.ProjectRepository = memProjectRepository{}

func (r memProjectRepository) Create(ctx context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	now := r.s.now()
	project.CreatedAt, project.UpdatedAt = now, now
	c := *project
	r.s.projects[project.ID] = &c
	return nil
}

func (r memProjectRepository) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.projects[projectID]
	if !ok {
		return nil, apperrors.NotFound("Project not found")
	}
	c := *p
	return &c, nil
}

func (r memProjectRepository) Update(ctx context.Context, project *models.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[project.ID]; !ok {
		return apperrors.NotFound("Project not found")
	}
	project.UpdatedAt = r.s.now()
	c := *project
	r.s.projects[project.ID] = &c
	return nil
}

func (r memProjectRepository) Delete(ctx context.Context, projectID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[projectID]; !ok {
		return apperrors.NotFound("Project not found")
	}
	delete(r.s.projects, projectID)
	delete(r.s.members, projectID)
	for id, inv := range r.s.invitations {
		if inv.ProjectID == projectID {
			delete(r.s.invitations, id)
		}
	}
	for id, t := range r.s.tasks {
		if t.ProjectID == projectID {
			delete(r.s.tasks, id)
			delete(r.s.tags, id)
		}
	}
	return nil
}

func (r memProjectRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.ProjectSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ProjectSummary
	for id, p := range r.s.projects {
		visible := p.OwnerID == userID
		for _, m := range r.s.members[id] {
			if m.UserID == userID {
				visible = true
			}
		}
		if !visible {
			continue
		}
		taskCount := 0
		for _, t := range r.s.tasks {
			if t.ProjectID == id {
				taskCount++
			}
		}
		out = append(out, &models.ProjectSummary{
			Project:     *p,
			Owner:       r.s.userRef(p.OwnerID),
			TaskCount:   taskCount,
			MemberCount: len(r.s.members[id]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// ---- members ----

type memMemberRepository struct{ s *memStore }

var _ repositories.MemberRepository = memMemberRepository{}

func (r memMemberRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.ProjectMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ProjectMember
	for _, m := range r.s.members[projectID] {
		c := *m
		c.User = r.s.userRef(m.UserID)
		out = append(out, &c)
	}
	return out, nil
}

func (r memMemberRepository) Add(ctx context.Context, member *models.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members[member.ProjectID] {
		if m.UserID == member.UserID {
			return apperrors.Conflict("Member already exists")
		}
	}
	member.JoinedAt = r.s.now()
	c := *member
	r.s.members[member.ProjectID] = append(r.s.members[member.ProjectID], &c)
	return nil
}

func (r memMemberRepository) UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role models.MemberRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.members[projectID] {
		if m.UserID == userID {
			m.Role = role
			return nil
		}
	}
	return apperrors.NotFound("Member not found")
}

func (r memMemberRepository) Remove(ctx context.Context, projectID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := r.s.members[projectID]
	for i, m := range list {
		if m.UserID == userID {
			r.s.members[projectID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("Member not found")
}

// ---- invitations ----

type memInvitationRepository struct{ s *memStore }

var _ repositories.InvitationRepository = memInvitationRepository{}

func (r memInvitationRepository) GetByID(ctx context.Context, invitationID uuid.UUID) (*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[invitationID]
	if !ok {
		return nil, apperrors.NotFound("Invitation not found")
	}
	c := *inv
	return &c, nil
}

func (r memInvitationRepository) GetByProjectAndEmail(ctx context.Context, projectID uuid.UUID, email string) (*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invitations {
		if inv.ProjectID == projectID && inv.Email == email {
			c := *inv
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("Invitation not found")
}

func (r memInvitationRepository) Upsert(ctx context.Context, inv *models.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	inv.Status = models.InvitationPending
	for _, existing := range r.s.invitations {
		if existing.ProjectID == inv.ProjectID && existing.Email == inv.Email {
			existing.Status, existing.InviterID, existing.UpdatedAt = models.InvitationPending, inv.InviterID, now
			inv.ID, inv.CreatedAt, inv.UpdatedAt = existing.ID, existing.CreatedAt, now
			return nil
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt, inv.UpdatedAt = now, now
	c := *inv
	r.s.invitations[inv.ID] = &c
	return nil
}

func (r memInvitationRepository) Resolve(ctx context.Context, invitationID uuid.UUID, status models.InvitationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invitations[invitationID]
	if !ok || inv.Status != models.InvitationPending {
		return apperrors.Validation("This invitation is no longer pending")
	}
	inv.Status, inv.UpdatedAt = status, r.s.now()
	return nil
}

func (r memInvitationRepository) ListPendingForEmail(ctx context.Context, email string) ([]*models.Invitation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Invitation
	for _, inv := range r.s.invitations {
		if inv.Email != email || inv.Status != models.InvitationPending {
			continue
		}
		c := *inv
		if p, ok := r.s.projects[inv.ProjectID]; ok {
			pc := *p
			c.Project = &pc
		}
		c.Inviter = r.s.userRef(inv.InviterID)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- tasks ----

type memTaskRepository struct{ s *memStore }

var _ repositories.TaskRepository = memTaskRepository{}

func (r memTaskRepository) expand(t *models.Task) *models.Task {
	c := *t
	c.CreatedBy = r.s.userRef(t.CreatedByID)
	c.AssignedTo = nil
	if t.AssignedToID != nil {
		id := *t.AssignedToID
		c.AssignedToID = &id
		c.AssignedTo = r.s.userRef(id)
	}
	c.Tags = nil
	for _, tag := range r.s.tags[t.ID] {
		tc := *tag
		tc.User = r.s.userRef(tag.UserID)
		c.Tags = append(c.Tags, &tc)
	}
	return &c
}

func (r memTaskRepository) Create(ctx context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := r.s.now()
	task.CreatedAt, task.UpdatedAt = now, now
	c := *task
	r.s.tasks[task.ID] = &c
	return nil
}

func (r memTaskRepository) GetByID(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok {
		return nil, apperrors.NotFound("Task not found")
	}
	return r.expand(t), nil
}

func (r memTaskRepository) Update(ctx context.Context, task *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[task.ID]
	if !ok {
		return apperrors.NotFound("Task not found")
	}
	task.UpdatedAt = r.s.now()
	t.Title, t.Description, t.Priority, t.Status = task.Title, task.Description, task.Priority, task.Status
	t.Deadline, t.AssignedToID, t.UpdatedAt = task.Deadline, task.AssignedToID, task.UpdatedAt
	return nil
}

func (r memTaskRepository) UpdateStatus(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[taskID]
	if !ok {
		return apperrors.NotFound("Task not found")
	}
	t.Status, t.UpdatedAt = status, r.s.now()
	return nil
}

func (r memTaskRepository) Delete(ctx context.Context, taskID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[taskID]; !ok {
		return apperrors.NotFound("Task not found")
	}
	delete(r.s.tasks, taskID)
	delete(r.s.tags, taskID)
	return nil
}

func (r memTaskRepository) ListByProject(ctx context.Context, projectID uuid.UUID, visibleTo *uuid.UUID) ([]*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Task
	for _, t := range r.s.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if visibleTo != nil && !r.visible(t, *visibleTo) {
			continue
		}
		out = append(out, r.expand(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r memTaskRepository) visible(t *models.Task, userID uuid.UUID) bool {
	if t.CreatedByID == userID || t.IsAssignedTo(userID) {
		return true
	}
	for _, tag := range r.s.tags[t.ID] {
		if tag.UserID == userID {
			return true
		}
	}
	return false
}

func (r memTaskRepository) ListTags(ctx context.Context, taskID uuid.UUID) ([]*models.TaskTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.TaskTag
	for _, tag := range r.s.tags[taskID] {
		c := *tag
		c.User = r.s.userRef(tag.UserID)
		out = append(out, &c)
	}
	return out, nil
}

func (r memTaskRepository) AddTag(ctx context.Context, taskID, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tag := range r.s.tags[taskID] {
		if tag.UserID == userID {
			return nil
		}
	}
	r.s.tags[taskID] = append(r.s.tags[taskID], &models.TaskTag{TaskID: taskID, UserID: userID, CreatedAt: r.s.now()})
	return nil
}

func (r memTaskRepository) RemoveTags(ctx context.Context, taskID uuid.UUID, userIDs []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	drop := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		drop[id] = true
	}
	var kept []*models.TaskTag
	for _, tag := range r.s.tags[taskID] {
		if !drop[tag.UserID] {
			kept = append(kept, tag)
		}
	}
	r.s.tags[taskID] = kept
	return nil
}

func (r memTaskRepository) DetachUser(ctx context.Context, projectID, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var unassigned int64
	for id, t := range r.s.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if t.IsAssignedTo(userID) {
			t.AssignedToID = nil
			t.UpdatedAt = r.s.now()
			unassigned++
		}
		var kept []*models.TaskTag
		for _, tag := range r.s.tags[id] {
			if tag.UserID != userID {
				kept = append(kept, tag)
			}
		}
		r.s.tags[id] = kept
	}
	return unassigned, nil
}

// ---- activities ----

type memActivityRepository struct{ s *memStore }

var _ repositories.ActivityRepository = memActivityRepository{}

func (r memActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := models.EncodeActivityMetadata(activity.Type, activity.Metadata); err != nil {
		return err
	}
	activity.ID = uuid.New()
	activity.CreatedAt = r.s.now()
	c := *activity
	r.s.activities = append(r.s.activities, &c)
	return nil
}

func (r memActivityRepository) list(match func(*models.Activity) bool, limit int) []*models.Activity {
	var out []*models.Activity
	for i := len(r.s.activities) - 1; i >= 0; i-- {
		a := r.s.activities[i]
		if !match(a) {
			continue
		}
		c := *a
		c.User = r.s.userRef(a.UserID)
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (r memActivityRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(a *models.Activity) bool { return a.TaskID != nil && *a.TaskID == taskID }, 0), nil
}

func (r memActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*models.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(a *models.Activity) bool { return a.ProjectID == projectID }, limit), nil
}

// ---- notifications ----

type memNotificationRepository struct{ s *memStore }

var _ repositories.NotificationRepository = memNotificationRepository{}

func (r memNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = r.s.now()
	c := *n
	r.s.notifications = append(r.s.notifications, &c)
	return nil
}

func (r memNotificationRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == notificationID {
			c := *n
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("Notification not found")
}

func (r memNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for i := len(r.s.notifications) - 1; i >= 0; i-- {
		if n := r.s.notifications[i]; n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r memNotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.notifications {
		if n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("Notification not found")
}

func (r memNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

// ---- cache ----

// mockUnreadCache records cache traffic and honours version tokens the way
// the Redis cache does.
type mockUnreadCache struct {
	mu          sync.Mutex
	values      map[uuid.UUID]int
	versions    map[uuid.UUID]int64
	invalidated []uuid.UUID
}

func newMockUnreadCache() *mockUnreadCache {
	return &mockUnreadCache{values: map[uuid.UUID]int{}, versions: map[uuid.UUID]int64{}}
}

func (c *mockUnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[userID]
	return v, c.versions[userID], ok
}

func (c *mockUnreadCache) Set(ctx context.Context, userID uuid.UUID, count int, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[userID] != version {
		return
	}
	c.values[userID] = count
}

func (c *mockUnreadCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.values, id)
		c.versions[id]++
		c.invalidated = append(c.invalidated, id)
	}
}

// ---- wiring ----

// passthroughTx runs fn directly; the in-memory store has no transactions.
func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testServices struct {
	store         *memStore
	cache         *mockUnreadCache
	users         UserService
	projects      ProjectService
	invitations   InvitationService
	tasks         TaskService
	activities    ActivityService
	notifications NotificationService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	store := newMemStore()
	cache := newMockUnreadCache()
	logger := zap.NewNop()

	userRepo := memUserRepository{store}
	projectRepo := memProjectRepository{store}
	memberRepo := memMemberRepository{store}
	invitationRepo := memInvitationRepository{store}
	taskRepo := memTaskRepository{store}

	activities := NewActivityService(memActivityRepository{store}, taskRepo, projectRepo, memberRepo, logger)
	notifications := NewNotificationService(memNotificationRepository{store}, cache, logger)
	invitations := NewInvitationService(invitationRepo, userRepo, projectRepo, memberRepo, passthroughTx, logger)

	return &testServices{
		store:         store,
		cache:         cache,
		users:         NewUserService(userRepo, logger),
		projects:      NewProjectService(projectRepo, memberRepo, userRepo, taskRepo, invitations, passthroughTx, logger),
		invitations:   invitations,
		tasks:         NewTaskService(taskRepo, userRepo, projectRepo, memberRepo, activities, notifications, passthroughTx, logger),
		activities:    activities,
		notifications: notifications,
	}
}

// as returns a context authenticated as user.
func as(user *models.User) context.Context {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.ID.String()},
		Email:            user.Email,
		Name:             user.Name,
	}
	return auth.WithClaims(context.Background(), claims, "test-token")
}

// seedProject creates a project owned by owner with the given members.
func (ts *testServices) seedProject(t *testing.T, owner *models.User, members map[*models.User]models.MemberRole) *models.Project {
	t.Helper()
	project, err := ts.projects.Create(as(owner), "Nest", nil)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	for u, role := range members {
		err := memMemberRepository{ts.store}.Add(context.Background(), &models.ProjectMember{ProjectID: project.ID, UserID: u.ID, Role: role})
		if err != nil {
			t.Fatalf("add member: %v", err)
		}
	}
	return project
}

func taskInput(title string) TaskInput {
	return TaskInput{
		Title:    title,
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
		Deadline: time.Date(2024, 6, 1, 17, 0, 0, 0, time.UTC),
	}
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
