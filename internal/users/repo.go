package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecobazaar/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, role, eco_score, banned, created_at
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.EcoScore, &u.Banned, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) Save(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		UPDATE users SET name=$2, email=$3, role=$4, eco_score=$5, banned=$6
		WHERE id=$1`,
		u.ID, u.Name, u.Email, u.Role, u.EcoScore, u.Banned)
	return err
}

// Leaderboard returns the top users by eco score.
func (r *Repo) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, email, role, eco_score, banned, created_at
		FROM users WHERE banned=false AND role='USER'
		ORDER BY eco_score DESC, created_at ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.EcoScore, &u.Banned, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
