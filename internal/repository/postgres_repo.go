package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leke-chat/internal/models"
)

type PostgresConversationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresConversationRepo(pool *pgxpool.Pool) *PostgresConversationRepo {
	return &PostgresConversationRepo{pool: pool}
}

func (r *PostgresConversationRepo) Append(ctx context.Context, c *models.Conversation) error {
	query := `INSERT INTO conversations (id, created_at, prompt, document_text, response, has_document)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Timestamp, c.Prompt, c.DocumentText, c.Response, c.HasDocument,
	)
	return err
}

func (r *PostgresConversationRepo) List(ctx context.Context) ([]models.Conversation, error) {
	query := `SELECT id, created_at, prompt, document_text, response, has_document
		FROM conversations ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	all, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Conversation, error) {
		var c models.Conversation
		err := row.Scan(&c.ID, &c.Timestamp, &c.Prompt, &c.DocumentText, &c.Response, &c.HasDocument)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []models.Conversation{}
	}
	return all, nil
}

func (r *PostgresConversationRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM conversations")
	return err
}
