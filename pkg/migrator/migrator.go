package migrator

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// ErrMigrate возвращается при ошибке применения миграций
var ErrMigrate = errors.New("migrator: failed to apply migrations")

// Up применяет все миграции из fsys (каталог dir) к базе PostgreSQL
func Up(db *sql.DB, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%w: set dialect: %v", ErrMigrate, err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("%w: %v", ErrMigrate, err)
	}

	return nil
}

// Version возвращает текущую версию схемы
func Version(db *sql.DB) (int64, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("%w: set dialect: %v", ErrMigrate, err)
	}
	return goose.GetDBVersion(db)
}
