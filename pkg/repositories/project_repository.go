package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cairn-ai/cairn-engine/pkg/apperrors"
	"github.com/cairn-ai/cairn-engine/pkg/database"
	"github.com/cairn-ai/cairn-engine/pkg/models"
)

// ProjectRepository provides data access for projects. The updates column is
// an append-only audit log; entries are written whenever status or completion
// changes, or an issue is filed, and are never modified afterwards.
type ProjectRepository interface {
	List(ctx context.Context, limit int) ([]*models.Project, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	// UpdateProgress sets status and completion, appending one audit entry
	// per field that actually changed.
	UpdateProgress(ctx context.Context, id uuid.UUID, status string, completion int) error
	// FileIssue appends an issue and a matching audit entry.
	FileIssue(ctx context.Context, id uuid.UUID, issue models.ProjectIssue) error
}

type projectRepository struct{}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository() ProjectRepository {
	return &projectRepository{}
}

var _ ProjectRepository = (*projectRepository)(nil)

const projectColumns = `id, user_id, name, status, priority, category, start_date, end_date,
	completion, technologies, team_members, stakeholders, tags, risks, dependencies,
	deliverables, notes, current_issues, archived, milestones, tasks, issues, updates,
	created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var technologies, teamMembers, stakeholders, tags, risks []byte
	var dependencies, deliverables, milestones, tasks, issues, updates []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Status, &p.Priority, &p.Category,
		&p.StartDate, &p.EndDate, &p.Completion, &technologies, &teamMembers,
		&stakeholders, &tags, &risks, &dependencies, &deliverables,
		&p.Notes, &p.CurrentIssues, &p.Archived, &milestones, &tasks,
		&issues, &updates, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, col := range []struct {
		raw  []byte
		dest any
	}{
		{technologies, &p.Technologies},
		{teamMembers, &p.TeamMembers},
		{stakeholders, &p.Stakeholders},
		{tags, &p.Tags},
		{risks, &p.Risks},
		{dependencies, &p.Dependencies},
		{deliverables, &p.Deliverables},
		{milestones, &p.Milestones},
		{tasks, &p.Tasks},
		{issues, &p.Issues},
		{updates, &p.Updates},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project column: %w", err)
		}
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, limit int) ([]*models.Project, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE user_id = $1 AND NOT archived
		ORDER BY updated_at DESC
		LIMIT $2`

	rows, err := scope.Conn.Query(ctx, query, scope.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE id = $1 AND user_id = $2`

	p, err := scanProject(scope.Conn.QueryRow(ctx, query, id, scope.UserID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.UserID = scope.UserID
	if project.Status == "" {
		project.Status = models.ProjectStatusActive
	}

	cols := []any{}
	for _, v := range []any{
		project.Technologies, project.TeamMembers, project.Stakeholders,
		project.Tags, project.Risks, project.Dependencies, project.Deliverables,
		project.Milestones, project.Tasks, project.Issues, project.Updates,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal project column: %w", err)
		}
		cols = append(cols, raw)
	}

	query := `
		INSERT INTO projects (id, user_id, name, status, priority, category,
			start_date, end_date, completion, technologies, team_members,
			stakeholders, tags, risks, dependencies, deliverables, notes,
			current_issues, archived, milestones, tasks, issues, updates,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $24)`

	args := []any{
		project.ID, project.UserID, project.Name, project.Status,
		project.Priority, project.Category, project.StartDate, project.EndDate,
		project.Completion, cols[0], cols[1], cols[2], cols[3], cols[4],
		cols[5], cols[6], project.Notes, project.CurrentIssues,
		project.Archived, cols[7], cols[8], cols[9], cols[10], time.Now(),
	}

	if _, err := scope.Conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *projectRepository) UpdateProgress(ctx context.Context, id uuid.UUID, status string, completion int) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	updates := current.Updates
	if status != "" && status != current.Status {
		updates = append(updates, models.ProjectUpdate{
			At: now, Kind: models.ProjectUpdateStatus,
			OldValue: current.Status, NewValue: status,
		})
	} else {
		status = current.Status
	}
	if completion != current.Completion {
		updates = append(updates, models.ProjectUpdate{
			At: now, Kind: models.ProjectUpdateProgress,
			OldValue: fmt.Sprintf("%d", current.Completion),
			NewValue: fmt.Sprintf("%d", completion),
		})
	}
	if len(updates) == len(current.Updates) {
		return nil
	}

	updatesJSON, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("failed to marshal project updates: %w", err)
	}

	query := `
		UPDATE projects
		SET status = $1, completion = $2, updates = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6`

	result, err := scope.Conn.Exec(ctx, query, status, completion, updatesJSON, now, id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to update project progress: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *projectRepository) FileIssue(ctx context.Context, id uuid.UUID, issue models.ProjectIssue) error {
	scope, ok := database.GetUserScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	if issue.FiledAt.IsZero() {
		issue.FiledAt = now
	}
	issues := append(current.Issues, issue)
	updates := append(current.Updates, models.ProjectUpdate{
		At: now, Kind: models.ProjectUpdateIssue, IssueTitle: issue.Title,
	})

	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return fmt.Errorf("failed to marshal project issues: %w", err)
	}
	updatesJSON, err := json.Marshal(updates)
	if err != nil {
		return fmt.Errorf("failed to marshal project updates: %w", err)
	}

	query := `
		UPDATE projects
		SET issues = $1, updates = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5`

	result, err := scope.Conn.Exec(ctx, query, issuesJSON, updatesJSON, now, id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to file project issue: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
