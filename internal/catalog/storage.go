// Package catalog persists project records in SurrealDB so indexed projects
// survive restarts. The catalog is optional; the review service runs without
// it and treats save failures as warnings.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/heefoo/codesight/internal/config"
	"github.com/heefoo/codesight/internal/index"
	"github.com/surrealdb/surrealdb.go"
)

const projectTable = "projects"

type ProjectRecord struct {
	ID             string    `json:"id,omitempty"`
	ProjectID      string    `json:"project_id"`
	RootPath       string    `json:"root_path"`
	TotalFiles     int       `json:"total_files"`
	SupportedFiles int       `json:"supported_files"`
	Languages      []string  `json:"languages"`
	ElementCount   int       `json:"element_count"`
	IndexedAt      time.Time `json:"indexed_at"`
}

type Storage struct {
	db        *surrealdb.DB
	namespace string
	database  string
}

func NewStorage(cfg config.CatalogConfig) (*Storage, error) {
	ctx := context.Background()
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" {
		_, err = db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Storage{
		db:        db,
		namespace: cfg.Namespace,
		database:  cfg.Database,
	}, nil
}

func (s *Storage) Close() error {
	return s.db.Close(context.Background())
}

// RunMigrations defines the projects table and its lookup index.
func (s *Storage) RunMigrations(ctx context.Context) error {
	statements := []string{
		`DEFINE TABLE IF NOT EXISTS projects SCHEMALESS`,
		`DEFINE INDEX IF NOT EXISTS idx_project_id ON TABLE projects COLUMNS project_id UNIQUE`,
	}

	for _, stmt := range statements {
		if _, err := surrealdb.Query[any](ctx, s.db, stmt, nil); err != nil {
			return fmt.Errorf("migration failed (%s): %w", stmt, err)
		}
	}
	return nil
}

// SaveProject upserts the record for one indexed project, keyed by project id.
func (s *Storage) SaveProject(ctx context.Context, idx *index.ProjectIndex) error {
	record := ProjectRecord{
		ProjectID:      idx.ProjectID,
		RootPath:       idx.RootPath,
		TotalFiles:     idx.TotalFiles,
		SupportedFiles: idx.SupportedFiles,
		Languages:      idx.Languages,
		ElementCount:   len(idx.Elements),
		IndexedAt:      time.Now().UTC(),
	}

	query := `
		DELETE FROM projects WHERE project_id = $project_id;
	`
	if _, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"project_id": record.ProjectID,
	}); err != nil {
		return fmt.Errorf("failed to replace project record: %w", err)
	}

	if _, err := surrealdb.Create[ProjectRecord](ctx, s.db, projectTable, &record); err != nil {
		return fmt.Errorf("failed to save project record: %w", err)
	}
	return nil
}

func (s *Storage) GetProject(ctx context.Context, projectID string) (*ProjectRecord, error) {
	query := `SELECT * FROM projects WHERE project_id = $project_id LIMIT 1`
	results, err := surrealdb.Query[[]ProjectRecord](ctx, s.db, query, map[string]any{
		"project_id": projectID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	return &(*results)[0].Result[0], nil
}

func (s *Storage) ListProjects(ctx context.Context) ([]ProjectRecord, error) {
	query := `SELECT * FROM projects ORDER BY indexed_at DESC`
	results, err := surrealdb.Query[[]ProjectRecord](ctx, s.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

func (s *Storage) DeleteProject(ctx context.Context, projectID string) error {
	query := `DELETE FROM projects WHERE project_id = $project_id`
	if _, err := surrealdb.Query[any](ctx, s.db, query, map[string]any{
		"project_id": projectID,
	}); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
