package repo

import (
	"context"
	"fmt"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// StatsRepo computes the aggregate counts broadcast to realtime clients.
type StatsRepo interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

type pgStatsRepo struct {
	db db
}

// NewStatsRepo constructs a StatsRepo backed by the provided db connection.
func NewStatsRepo(db db) StatsRepo {
	return &pgStatsRepo{db: db}
}

func (r *pgStatsRepo) Stats(ctx context.Context) (domain.Stats, error) {
	const q = `
		SELECT (SELECT count(*) FROM users),
		       (SELECT count(*) FROM trips),
		       (SELECT count(*) FROM places)`

	var s domain.Stats
	if err := r.db.QueryRow(ctx, q).Scan(&s.Users, &s.Trips, &s.Places); err != nil {
		return domain.Stats{}, fmt.Errorf("repo.StatsRepo.Stats: %w", err)
	}
	return s, nil
}
