package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	dberr "github.com/avichaydahan/brandlight-reports/internal/errors"
	"github.com/avichaydahan/brandlight-reports/internal/model"
)

type Download struct {
	storage *Store
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (d *Download) InsertDownloadHistory(ctx context.Context, input *model.NewDownloadHistory) (int64, error) {
	db, err := d.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("insert_download_history", err)
	}

	query := psql.
		Insert("brandlight_reports.download_history").
		Columns("tenant_id", "brand_id", "download_id", "report_type", "status", "created_at", "updated_at").
		Values(input.TenantID, input.BrandID, input.DownloadID, input.ReportType, input.Status, input.CreatedAt, input.CreatedAt).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, dberr.NewDBInternalError("insert_download_history", err)
	}

	var id int64
	if err := db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, dberr.NewDBInternalError("insert_download_history", err)
	}
	return id, nil
}

func (d *Download) UpdateDownloadHistory(ctx context.Context, input *model.UpdateDownloadHistory) error {
	db, err := d.storage.Database()
	if err != nil {
		return dberr.NewDBInternalError("update_download_history", err)
	}

	query := psql.
		Update("brandlight_reports.download_history").
		Set("status", input.Status).
		Set("file_name", input.FileName).
		Set("file_path", input.FilePath).
		Set("error", input.Error).
		Set("updated_at", input.UpdatedAt).
		Where(sq.Eq{"id": input.ID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return dberr.NewDBInternalError("update_download_history", err)
	}

	tag, err := db.Exec(ctx, sqlStr, args...)
	if err != nil {
		return dberr.NewDBInternalError("update_download_history", err)
	}
	if tag.RowsAffected() == 0 {
		return dberr.NewDBNoRowsError("update_download_history")
	}
	return nil
}

func (d *Download) ListDownloadHistory(ctx context.Context, tenantID string, limit, offset int64) ([]*model.DownloadHistory, error) {
	db, err := d.storage.Database()
	if err != nil {
		return nil, dberr.NewDBInternalError("list_download_history", err)
	}

	if limit <= 0 {
		limit = 20
	}

	query := psql.
		Select("id", "tenant_id", "brand_id", "download_id", "report_type",
			"file_name", "file_path", "status", "error", "created_at", "updated_at").
		From("brandlight_reports.download_history").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, dberr.NewDBInternalError("list_download_history", err)
	}

	rows, err := db.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, dberr.NewDBInternalError("list_download_history", err)
	}
	defer rows.Close()

	var records []*model.DownloadHistory
	for rows.Next() {
		var rec model.DownloadHistory
		if err := rows.Scan(
			&rec.ID,
			&rec.TenantID,
			&rec.BrandID,
			&rec.DownloadID,
			&rec.ReportType,
			&rec.FileName,
			&rec.FilePath,
			&rec.Status,
			&rec.Error,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, dberr.NewDBInternalError("list_download_history", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil && !dberr.Is(err, pgx.ErrNoRows) {
		return nil, dberr.NewDBInternalError("list_download_history", err)
	}
	return records, nil
}
