// Package gormsqlite opens a sqlite database as a read pool plus a single
// write connection. Funneling every write transaction through one connection
// is what gives the config version chain and the usage counters their
// serialized, race-free behavior.
package gormsqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	gormdriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type DB struct {
	R *gorm.DB
	W *gorm.DB
}

type Tx struct {
	*gorm.DB
}

func (db *DB) ReadTX(ctx context.Context, fn func(tx *Tx) error) error {
	return db.R.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{DB: tx})
	}, &sql.TxOptions{ReadOnly: true})
}

func (db *DB) WriteTX(ctx context.Context, fn func(tx *Tx) error) error {
	return db.W.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Tx{DB: tx})
	})
}

func (db *DB) WriteSQLDB() (*sql.DB, error) {
	return db.W.DB()
}

func (db *DB) Close() error {
	var firstErr error
	for _, g := range []*gorm.DB{db.R, db.W} {
		if g == nil {
			continue
		}
		sqlDB, err := g.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ io.Closer = (*DB)(nil)

func Open(file string) (*DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)

	open := func(dsn string) (*gorm.DB, error) {
		return gorm.Open(gormdriver.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
			PrepareStmt: true,
			Logger:      gormLogger,
		})
	}

	writer, err := open(buildDSN(file, false))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	reader, err := open(buildDSN(file, true))
	if err != nil {
		_ = closeGORM(writer)
		return nil, fmt.Errorf("open read db: %w", err)
	}

	wdb, err := writer.DB()
	if err != nil {
		_ = closeGORM(writer)
		_ = closeGORM(reader)
		return nil, fmt.Errorf("writer sql db: %w", err)
	}
	rdb, err := reader.DB()
	if err != nil {
		_ = closeGORM(writer)
		_ = closeGORM(reader)
		return nil, fmt.Errorf("reader sql db: %w", err)
	}

	// One writer connection; readers scale with CPUs under WAL.
	wdb.SetMaxOpenConns(1)
	wdb.SetMaxIdleConns(1)
	rdb.SetMaxOpenConns(runtime.NumCPU())
	rdb.SetMaxIdleConns(runtime.NumCPU())

	return &DB{R: reader, W: writer}, nil
}

// buildDSN attaches the pragmas as DSN parameters so every pooled connection
// gets them, not just the one that ran an Exec.
func buildDSN(file string, readOnly bool) string {
	dsn := "file:" + file +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=trusted_schema(OFF)"
	if readOnly {
		dsn += "&_pragma=query_only(1)"
	} else {
		dsn += "&_pragma=query_only(0)"
	}
	return dsn
}

func closeGORM(g *gorm.DB) error {
	if g == nil {
		return nil
	}
	sqlDB, err := g.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
