// internal/catalog/source_postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"

	"yojana-engine/internal/common/errors"
	"yojana-engine/internal/models"
)

// Source fetches raw scheme definitions from an ingestion backend.
type Source interface {
	FetchSchemes(ctx context.Context) ([]*models.Scheme, error)
	Name() string
}

// PostgresSource reads scheme definitions from the schemes table, where the
// full definition lives in a JSONB column maintained by the ingestion
// pipeline.
type PostgresSource struct {
	db *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) FetchSchemes(ctx context.Context) ([]*models.Scheme, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, definition
		FROM schemes
		WHERE active = true
		ORDER BY id`)
	if err != nil {
		return nil, errors.NewSourceQueryFailedError(s.Name(), err)
	}
	defer rows.Close()

	var schemes []*models.Scheme
	for rows.Next() {
		var id string
		var definition []byte
		if err := rows.Scan(&id, &definition); err != nil {
			return nil, errors.NewSourceQueryFailedError(s.Name(), err)
		}

		var sc models.Scheme
		if err := json.Unmarshal(definition, &sc); err != nil {
			return nil, errors.NewCatalogValidationFailedError(id, err.Error())
		}
		if sc.ID == "" {
			sc.ID = id
		}
		schemes = append(schemes, &sc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceQueryFailedError(s.Name(), err)
	}

	return schemes, nil
}
