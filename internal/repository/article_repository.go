package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"compliance-platform/internal/domain"
)

type ArticleRepository interface {
	// Create inserts the article and its audit entry in one transaction. A
	// duplicate (regulation, reference) pair surfaces as domain.ErrConflict.
	Create(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error)
	ListByRegulation(ctx context.Context, regulationID uuid.UUID) ([]domain.Article, error)
	Update(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error
	Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error
	CountAll(ctx context.Context) (int64, error)
}

type articleRepository struct {
	db *sqlx.DB
}

func NewArticleRepository(db *sqlx.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO articles (id, regulation_id, title, content, type, reference)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at, updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			article.ID, article.RegulationID, article.Title, article.Content, article.Type, article.Reference,
		).Scan(&article.CreatedAt, &article.UpdatedAt); err != nil {
			return err
		}

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *articleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Article, error) {
	var article domain.Article
	query := `SELECT * FROM articles WHERE id = $1`
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		return nil, mapDBError(err)
	}
	return &article, nil
}

func (r *articleRepository) ListByRegulation(ctx context.Context, regulationID uuid.UUID) ([]domain.Article, error) {
	var articles []domain.Article
	query := `SELECT * FROM articles WHERE regulation_id = $1 ORDER BY reference`
	err := r.db.SelectContext(ctx, &articles, query, regulationID)
	return articles, err
}

func (r *articleRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM articles`)
	return count, err
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE articles
			SET title = $2, content = $3, type = $4, reference = $5, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`

		if err := tx.QueryRowxContext(ctx, query,
			article.ID, article.Title, article.Content, article.Type, article.Reference,
		).Scan(&article.UpdatedAt); err != nil {
			return err
		}

		return insertAuditTx(ctx, tx, entry)
	})
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID, entry *domain.AuditLog) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		return insertAuditTx(ctx, tx, entry)
	})
}
