package loader

import (
	"context"
	"database/sql"
	"fmt"

	"git.fiblab.net/sim/fare/fare"

	_ "modernc.org/sqlite"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS distances (
	reference_station TEXT NOT NULL,
	station TEXT NOT NULL,
	route TEXT NOT NULL,
	distance TEXT NOT NULL
)`
	selectRecordsSQL = `SELECT reference_station, station, route, distance FROM distances ORDER BY rowid`
	insertRecordSQL  = `INSERT INTO distances (reference_station, station, route, distance) VALUES (?, ?, ?, ?)`
)

func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func LoadSQLiteFile(ctx context.Context, path string) ([]fare.RouteRecord, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	records, err := LoadSQLite(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded %d records from %s", len(records), path)
	return records, nil
}

// LoadSQLite 读取distances表，distance列以文本读出后统一解析
func LoadSQLite(ctx context.Context, db *sql.DB) ([]fare.RouteRecord, error) {
	rows, err := db.QueryContext(ctx, selectRecordsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make([]fare.RouteRecord, 0)
	for row := 1; rows.Next(); row++ {
		var ref, station, route, distance string
		if err := rows.Scan(&ref, &station, &route, &distance); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", fare.ErrMalformedRecord, row, err)
		}
		record, err := fare.ParseRecord(ref, station, route, distance)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveSQLite 将记录写入distances表（表不存在时创建）
func SaveSQLite(ctx context.Context, db *sql.DB, records []fare.RouteRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ReferenceStation, r.Station, r.Route,
			fmt.Sprintf("%g", r.Distance)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
