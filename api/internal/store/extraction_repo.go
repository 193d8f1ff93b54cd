package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ocrapp/api/internal/ocr"
)

// ErrNotFound — записи с таким хэшем нет.
var ErrNotFound = sql.ErrNoRows

const schema = `
create table if not exists extractions (
  id            bigserial primary key,
  created_at    timestamptz not null default now(),
  image_sha256  text not null default '',
  mime          text not null default '',
  size_bytes    bigint not null default 0,
  languages     text not null default '',
  engine        text not null default '',
  status        text not null,
  error_kind    text not null default '',
  error_message text not null default '',
  text_len      integer not null default 0,
  duration_ms   bigint not null default 0
);
create index if not exists extractions_created_at_idx on extractions (created_at desc);
create index if not exists extractions_image_sha256_idx on extractions (image_sha256);`

// ExtractionRepo — журнал вызовов распознавания. Это не кэш: текст не хранится.
type ExtractionRepo struct{ DB *sql.DB }

func NewExtractionRepo(db *sql.DB) *ExtractionRepo { return &ExtractionRepo{DB: db} }

// ExtractionRow — строка журнала для /v1/ocr/history.
type ExtractionRow struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	ImageSHA256  string    `json:"image_sha256"`
	MIME         string    `json:"mime"`
	Size         int64     `json:"size_bytes"`
	Languages    string    `json:"languages"`
	Engine       string    `json:"engine"`
	Status       string    `json:"status"` // "ok" | "failed"
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	TextLen      int       `json:"text_len"`
	DurationMS   int64     `json:"duration_ms"`
}

// EnsureSchema создаёт таблицу и индексы, если их нет.
func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Record реализует ocr.Recorder.
func (r *ExtractionRepo) Record(ctx context.Context, o ocr.Outcome) error {
	status := "ok"
	if o.Kind != "" {
		status = "failed"
	}
	at := o.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	const q = `
insert into extractions (
  created_at, image_sha256, mime, size_bytes, languages, engine,
  status, error_kind, error_message, text_len, duration_ms
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.DB.ExecContext(ctx, q,
		at, o.ImageSHA256, o.MIME, o.Size, o.Languages, o.Engine,
		status, string(o.Kind), o.Error, o.TextLen, o.Duration.Milliseconds(),
	)
	return err
}

// Recent возвращает последние записи, свежие сверху.
func (r *ExtractionRepo) Recent(ctx context.Context, limit int) ([]ExtractionRow, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	const q = `
select id, created_at, image_sha256, mime, size_bytes, languages, engine,
       status, error_kind, error_message, text_len, duration_ms
from extractions
order by created_at desc, id desc
limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ExtractionRow, 0, limit)
	for rows.Next() {
		var x ExtractionRow
		if err := rows.Scan(&x.ID, &x.CreatedAt, &x.ImageSHA256, &x.MIME, &x.Size, &x.Languages, &x.Engine,
			&x.Status, &x.ErrorKind, &x.ErrorMessage, &x.TextLen, &x.DurationMS); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// FindByHash — самая свежая запись по хэшу изображения или ErrNotFound.
func (r *ExtractionRepo) FindByHash(ctx context.Context, imageHash string) (*ExtractionRow, error) {
	const q = `
select id, created_at, image_sha256, mime, size_bytes, languages, engine,
       status, error_kind, error_message, text_len, duration_ms
from extractions
where image_sha256 = $1
order by created_at desc, id desc
limit 1`
	var x ExtractionRow
	if err := r.DB.QueryRowContext(ctx, q, imageHash).Scan(&x.ID, &x.CreatedAt, &x.ImageSHA256, &x.MIME, &x.Size,
		&x.Languages, &x.Engine, &x.Status, &x.ErrorKind, &x.ErrorMessage, &x.TextLen, &x.DurationMS); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &x, nil
}

// PurgeOlderThan удаляет старые записи, чтобы не раздувать БД.
func (r *ExtractionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	res, err := r.DB.ExecContext(ctx, `delete from extractions where created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
