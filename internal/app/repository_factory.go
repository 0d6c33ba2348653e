package app

import (
	"fmt"

	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	inboxPersistence "github.com/ayaanrathod/studybalance/internal/inbox/infrastructure/persistence"
	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	plannerPersistence "github.com/ayaanrathod/studybalance/internal/planner/infrastructure/persistence"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories for the configured database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// PlanRepository creates a study plan repository.
func (f *RepositoryFactory) PlanRepository() (plannerDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return plannerPersistence.NewPostgresPlanRepository(f.conn), nil
	case database.DriverSQLite:
		return plannerPersistence.NewSQLitePlanRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// AnalysisRepository creates an email analysis repository.
func (f *RepositoryFactory) AnalysisRepository() (inboxDomain.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return inboxPersistence.NewPostgresAnalysisRepository(f.conn), nil
	case database.DriverSQLite:
		return inboxPersistence.NewSQLiteAnalysisRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// OutboxRepository creates an outbox repository.
func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return outbox.NewPostgresRepository(f.conn), nil
	case database.DriverSQLite:
		return outbox.NewSQLiteRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}
