package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifeQuestAPI/internal/types/action"
)

type ActionService struct {
	db *pgxpool.Pool
}

func NewActionService(db *pgxpool.Pool) *ActionService {
	return &ActionService{db: db}
}

func validateActionFields(name string, a *action.CreateActionRequest) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !a.Block.IsValid() {
		return fmt.Errorf("%w: unknown block %q", ErrValidation, a.Block)
	}
	if a.XP < 1 || a.XP > 100 {
		return fmt.Errorf("%w: xp must be 1-100", ErrValidation)
	}
	return nil
}

func (s *ActionService) CreateAction(ctx context.Context, clerkID string, req *action.CreateActionRequest) (*action.Action, error) {
	if err := validateActionFields(req.Name, req); err != nil {
		return nil, err
	}

	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}

	query := `
	INSERT INTO actions (id, user_id, name, block, xp, icon, is_default, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, false, NOW())
	RETURNING id, user_id, name, block, xp, icon, is_default, created_at
	`

	a := &action.Action{}
	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.Name, req.Block, req.XP, req.Icon).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Block, &a.XP, &a.Icon, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create action: %w", err)
	}
	return a, nil
}

func (s *ActionService) GetActions(ctx context.Context, clerkID string) ([]*action.Action, error) {
	query := `
	SELECT a.id, a.user_id, a.name, a.block, a.xp, a.icon, a.is_default, a.created_at
	FROM actions a
	JOIN users u ON u.id = a.user_id
	WHERE u.clerk_id = $1
	ORDER BY a.block, a.name
	`

	rows, err := s.db.Query(ctx, query, clerkID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actions: %w", err)
	}
	defer rows.Close()

	actions := []*action.Action{}
	for rows.Next() {
		a := &action.Action{}
		err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Block, &a.XP, &a.Icon, &a.IsDefault, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		actions = append(actions, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return actions, nil
}

func (s *ActionService) UpdateAction(ctx context.Context, clerkID, actionID string, req *action.UpdateActionRequest) (*action.Action, error) {
	if err := validateActionFields(req.Name, &action.CreateActionRequest{
		Name: req.Name, Block: req.Block, XP: req.XP, Icon: req.Icon,
	}); err != nil {
		return nil, err
	}

	query := `
	UPDATE actions
	SET name = $3, block = $4, xp = $5, icon = $6
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	RETURNING id, user_id, name, block, xp, icon, is_default, created_at
	`

	a := &action.Action{}
	err := s.db.QueryRow(ctx, query, clerkID, actionID, req.Name, req.Block, req.XP, req.Icon).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Block, &a.XP, &a.Icon, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: action", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update action: %w", err)
	}
	return a, nil
}

// DeleteAction removes the template and its log history. XP already earned
// stays on the user row; totals are never recomputed from logs.
func (s *ActionService) DeleteAction(ctx context.Context, clerkID, actionID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
	DELETE FROM log_entries
	WHERE action_id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`, clerkID, actionID)
	if err != nil {
		return fmt.Errorf("failed to delete action logs: %w", err)
	}

	result, err := tx.Exec(ctx, `
	DELETE FROM actions
	WHERE id = $2 AND user_id = (SELECT id FROM users WHERE clerk_id = $1)
	`, clerkID, actionID)
	if err != nil {
		return fmt.Errorf("failed to delete action: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: action", ErrNotFound)
	}

	return tx.Commit(ctx)
}

// SeedDefaultsByClerkID resolves the user and seeds the starter catalog.
func (s *ActionService) SeedDefaultsByClerkID(ctx context.Context, clerkID string) error {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: user", ErrNotFound)
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	return s.SeedDefaults(ctx, userID)
}

// SeedDefaults inserts the starter catalog for a new user. Safe to call once
// per user; it skips users that already own any action.
func (s *ActionService) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	var existing int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM actions WHERE user_id = $1`, userID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("failed to count actions: %w", err)
	}
	if existing > 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
	INSERT INTO actions (id, user_id, name, block, xp, icon, is_default, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, true, NOW())
	`
	for _, d := range action.DefaultActions {
		if _, err := tx.Exec(ctx, query, uuid.New(), userID, d.Name, d.Block, d.XP, d.Icon); err != nil {
			return fmt.Errorf("failed to seed action %q: %w", d.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}
