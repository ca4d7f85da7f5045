// Package seed loads demo data from a YAML fixture. Every record is created
// through the services as the user who would create it in the app, so the
// fixture produces the same activities and notifications real usage would.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/worknest/worknest-engine/pkg/auth"
	"github.com/worknest/worknest-engine/pkg/models"
	"github.com/worknest/worknest-engine/pkg/services"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Users    []User    `yaml:"users"`
	Projects []Project `yaml:"projects"`
}

// User is a person in the fixture. ID defaults to a UUID derived from the email.
type User struct {
	ID    string `yaml:"id"`
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// Project is created by Owner; members join by accepting an invitation.
type Project struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Owner       string   `yaml:"owner"`
	Members     []Member `yaml:"members"`
	Tasks       []Task   `yaml:"tasks"`
}

// Member references a fixture user by email.
type Member struct {
	Email string            `yaml:"email"`
	Role  models.MemberRole `yaml:"role"`
}

// Task is created by CreatedBy, which defaults to the project owner.
type Task struct {
	Title       string              `yaml:"title"`
	Description string              `yaml:"description"`
	Priority    models.TaskPriority `yaml:"priority"`
	Status      models.TaskStatus   `yaml:"status"`
	Deadline    time.Time           `yaml:"deadline"`
	CreatedBy   string              `yaml:"created_by"`
	Assignee    string              `yaml:"assignee"`
	Tags        []string            `yaml:"tags"`
}

// Result counts what Apply created.
type Result struct {
	Users    int
	Projects int
	Members  int
	Tasks    int
}

// Load reads and validates a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture and fills in defaults. Every email a project
// references must belong to a fixture user.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	known := make(map[string]bool, len(f.Users))
	for i := range f.Users {
		u := &f.Users[i]
		u.Email = strings.ToLower(strings.TrimSpace(u.Email))
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: email is required", i)
		}
		if u.ID == "" {
			u.ID = userIDFor(u.Email).String()
		} else if _, err := uuid.Parse(u.ID); err != nil {
			return nil, fmt.Errorf("user %s: invalid id: %w", u.Email, err)
		}
		known[u.Email] = true
	}

	requireUser := func(where, email string) error {
		if !known[strings.ToLower(email)] {
			return fmt.Errorf("%s: unknown user %q", where, email)
		}
		return nil
	}

	for i := range f.Projects {
		p := &f.Projects[i]
		if err := requireUser("project "+p.Name+" owner", p.Owner); err != nil {
			return nil, err
		}
		for j := range p.Members {
			m := &p.Members[j]
			if err := requireUser("project "+p.Name+" member", m.Email); err != nil {
				return nil, err
			}
			if m.Role == "" {
				m.Role = models.MemberRoleMember
			}
		}
		for j := range p.Tasks {
			t := &p.Tasks[j]
			if t.CreatedBy == "" {
				t.CreatedBy = p.Owner
			}
			if t.Priority == "" {
				t.Priority = models.PriorityMedium
			}
			if t.Status == "" {
				t.Status = models.StatusTodo
			}
			refs := append([]string{t.CreatedBy}, t.Tags...)
			if t.Assignee != "" {
				refs = append(refs, t.Assignee)
			}
			for _, email := range refs {
				if err := requireUser("task "+t.Title, email); err != nil {
					return nil, err
				}
			}
		}
	}

	return &f, nil
}

// userIDFor derives a stable id so re-running a fixture against a fresh
// database yields the same user ids.
func userIDFor(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email))
}

// Seeder applies fixtures through the service layer.
type Seeder struct {
	users       services.UserService
	projects    services.ProjectService
	invitations services.InvitationService
	tasks       services.TaskService
	logger      *zap.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(
	users services.UserService,
	projects services.ProjectService,
	invitations services.InvitationService,
	tasks services.TaskService,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		users:       users,
		projects:    projects,
		invitations: invitations,
		tasks:       tasks,
		logger:      logger.Named("seed"),
	}
}

// Apply creates the fixture's users, projects, memberships and tasks. It is
// meant for empty databases; projects are not de-duplicated.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}
	claims := make(map[string]*auth.Claims, len(f.Users))

	for _, u := range f.Users {
		c := &auth.Claims{Email: u.Email, Name: u.Name}
		c.Subject = u.ID
		if _, err := s.users.EnsureFromClaims(ctx, c); err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
		claims[u.Email] = c
		res.Users++
	}

	as := func(email string) context.Context {
		return auth.WithClaims(ctx, claims[strings.ToLower(email)], "")
	}
	idOf := func(email string) uuid.UUID {
		return uuid.MustParse(claims[strings.ToLower(email)].Subject)
	}

	for _, p := range f.Projects {
		owner := as(p.Owner)

		project, err := s.projects.Create(owner, p.Name, optional(p.Description))
		if err != nil {
			return res, fmt.Errorf("project %s: %w", p.Name, err)
		}
		res.Projects++

		for _, m := range p.Members {
			inv, err := s.projects.InviteMember(owner, project.ID, m.Email)
			if err != nil {
				return res, fmt.Errorf("project %s: invite %s: %w", p.Name, m.Email, err)
			}
			if _, err := s.invitations.Accept(as(m.Email), inv.ID); err != nil {
				return res, fmt.Errorf("project %s: accept %s: %w", p.Name, m.Email, err)
			}
			if m.Role != models.MemberRoleMember {
				if err := s.projects.UpdateMemberRole(owner, project.ID, idOf(m.Email), m.Role); err != nil {
					return res, fmt.Errorf("project %s: role for %s: %w", p.Name, m.Email, err)
				}
			}
			res.Members++
		}

		for _, t := range p.Tasks {
			creator := as(t.CreatedBy)
			in := services.TaskInput{
				Title:       t.Title,
				Description: optional(t.Description),
				Priority:    t.Priority,
				Status:      t.Status,
				Deadline:    t.Deadline,
			}
			if t.Assignee != "" {
				id := idOf(t.Assignee)
				in.AssignedToID = &id
			}

			task, err := s.tasks.Create(creator, project.ID, in)
			if err != nil {
				return res, fmt.Errorf("task %s: %w", t.Title, err)
			}

			if len(t.Tags) > 0 {
				tagged := make([]uuid.UUID, 0, len(t.Tags))
				for _, email := range t.Tags {
					tagged = append(tagged, idOf(email))
				}
				if _, err := s.tasks.Update(creator, task.ID, services.TaskUpdate{TaskInput: in, TaggedUserIDs: tagged}); err != nil {
					return res, fmt.Errorf("task %s: tags: %w", t.Title, err)
				}
			}
			res.Tasks++
		}

		s.logger.Info("Seeded project",
			zap.String("project_id", project.ID.String()),
			zap.String("name", project.Name),
			zap.Int("members", len(p.Members)),
			zap.Int("tasks", len(p.Tasks)))
	}

	return res, nil
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
