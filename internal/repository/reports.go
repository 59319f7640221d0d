package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EncounterReport captures the terminal state of one combat session.
type EncounterReport struct {
	SessionID    string
	EnemyID      string
	EnemyName    string
	Outcome      string
	Turns        int
	Duration     time.Duration
	PlayerHealth int
	EnemyHealth  int
	CardsPlayed  int
}

// EncounterReportRepository persists encounter reports.
type EncounterReportRepository interface {
	Create(ctx context.Context, report *EncounterReport) error
}

type encounterReportRepository struct {
	pool *pgxpool.Pool
}

// NewEncounterReportRepository creates a PostgreSQL-backed report store.
func NewEncounterReportRepository(db *DB) EncounterReportRepository {
	return &encounterReportRepository{pool: db.Pool()}
}

func (r *encounterReportRepository) Create(ctx context.Context, report *EncounterReport) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO encounter_reports
			(session_id, enemy_id, enemy_name, outcome, turns, duration_ms,
			 player_health, enemy_health, cards_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING`,
		report.SessionID,
		report.EnemyID,
		report.EnemyName,
		report.Outcome,
		report.Turns,
		report.Duration.Milliseconds(),
		report.PlayerHealth,
		report.EnemyHealth,
		report.CardsPlayed,
	)
	if err != nil {
		return fmt.Errorf("insert encounter report %s: %w", report.SessionID, err)
	}
	return nil
}
