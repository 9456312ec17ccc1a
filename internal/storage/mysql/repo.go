// Package mysql persists in-progress inventory check drafts so an unfinished
// stock count survives restarts and is shared between BFF replicas. Every
// write is conditional on the row's version column.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"hotel_desk/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects with the options the repo relies on: parseTime for
// updated_at and UTC locations.
func Open(dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func (r *Repo) SaveDraft(ctx context.Context, d domain.CheckDraftRecord) error {
	items := d.Items
	if items == nil {
		items = []domain.InventoryCheckItem{}
	}
	itemsJSON, err := valJSON(items)
	if err != nil {
		return err
	}
	var staged any
	if len(d.Staged) > 0 {
		if staged, err = valJSON(d.Staged); err != nil {
			return err
		}
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = time.Now()
	}
	if d.Version == 0 {
		_, err = r.db.ExecContext(ctx, insertDraftSQL,
			d.ID,
			d.HotelID,
			valStr(d.Note),
			itemsJSON,
			staged,
			d.UpdatedAt.UTC(),
		)
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == errDupEntry {
			return domain.ErrDraftConflict
		}
		return err
	}
	res, err := r.db.ExecContext(ctx, updateDraftSQL,
		valStr(d.Note),
		itemsJSON,
		staged,
		d.UpdatedAt.UTC(),
		d.ID,
		d.Version,
	)
	return oneRow(res, err)
}

// ER_DUP_ENTRY
const errDupEntry = 1062

// oneRow turns a conditional write that matched nothing into a conflict.
// version always changes on update, so affected rows equal matched rows.
func oneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrDraftConflict
	}
	return nil
}

type scanner interface{ Scan(dest ...any) error }

func scanDraft(s scanner) (domain.CheckDraftRecord, error) {
	var (
		d             domain.CheckDraftRecord
		note          sql.NullString
		items, staged []byte
	)
	if err := s.Scan(&d.ID, &d.HotelID, &note, &items, &staged, &d.UpdatedAt, &d.Version); err != nil {
		return domain.CheckDraftRecord{}, err
	}
	d.Note = note.String
	if err := json.Unmarshal(items, &d.Items); err != nil {
		return domain.CheckDraftRecord{}, err
	}
	if len(staged) > 0 {
		if err := json.Unmarshal(staged, &d.Staged); err != nil {
			return domain.CheckDraftRecord{}, err
		}
	}
	return d, nil
}

func (r *Repo) GetDraft(ctx context.Context, id string) (domain.CheckDraftRecord, error) {
	d, err := scanDraft(r.db.QueryRowContext(ctx, getDraftSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CheckDraftRecord{}, domain.ErrNotFound
	}
	return d, err
}

func (r *Repo) ListDrafts(ctx context.Context, hotelID string) ([]domain.CheckDraftRecord, error) {
	rows, err := r.db.QueryContext(ctx, listDraftsSQL, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CheckDraftRecord
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) DeleteDraft(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, deleteDraftSQL, id)
	return err
}

func (r *Repo) ClaimDraft(ctx context.Context, id string, version int64) error {
	return oneRow(r.db.ExecContext(ctx, claimDraftSQL, id, version))
}
