package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/config"
	"github.com/dmitrijs2005/securedrop/internal/filex"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/models"
)

// Repositories groups the two namespaces of one client.
type Repositories struct {
	Users    Repository[models.UserRecord]
	Contacts Repository[models.ContactRecord]

	db *sql.DB
}

// Close releases the database handle of the SQLite backend.
func (r *Repositories) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// InitRepositories opens the configured backend for cfg.ClientID.
func InitRepositories(ctx context.Context, cfg *config.Config, log logging.Logger) (*Repositories, error) {
	log = log.With("client", cfg.ClientID, "backend", cfg.Backend)

	switch cfg.Backend {
	case config.BackendJSON:
		return &Repositories{
			Users:    NewJSONRepository[models.UserRecord](cfg.NamespacePath(common.UsersNamespace), cfg.StrictStore, log),
			Contacts: NewJSONRepository[models.ContactRecord](cfg.NamespacePath(common.ContactsNamespace), cfg.StrictStore, log),
		}, nil

	case config.BackendSQLite:
		if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
			return nil, err
		}
		db, err := OpenSQLite(ctx, cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:    NewSQLiteRepository[models.UserRecord](db, common.UsersNamespace, cfg.StrictStore, log),
			Contacts: NewSQLiteRepository[models.ContactRecord](db, common.ContactsNamespace, cfg.StrictStore, log),
			db:       db,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown backend %q", common.ErrConfiguration, cfg.Backend)
	}
}
