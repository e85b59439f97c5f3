package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"exam-reader/api/internal/exam"
	"exam-reader/api/internal/util"
)

type AnswerRepo struct{ DB *sql.DB }

func NewAnswerRepo(db *sql.DB) *AnswerRepo { return &AnswerRepo{DB: db} }

// AnswerRow is one answered block as stored.
type AnswerRow struct {
	ID        int64
	CreatedAt time.Time
	PageID    string
	Source    string // "console" or "chat:<id>"
	ImageHash string
	Engine    string
	Block     []int
	Prompt    string
	Answer    string
	CarryOver bool
}

const schema = `
create table if not exists exam_answers (
	id          bigserial primary key,
	created_at  timestamptz not null default now(),
	page_id     text not null,
	source      text not null default '',
	image_hash  text not null,
	engine      text not null,
	block_json  jsonb not null,
	prompt      text not null,
	answer      text not null,
	carry_over  boolean not null default false
);
create index if not exists exam_answers_page_idx on exam_answers(page_id);`

// EnsureSchema creates the table on first start.
func (r *AnswerRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Insert records one answered block of a page.
func (r *AnswerRepo) Insert(ctx context.Context, pageID, source, imageHash, engine string, a exam.Answer) error {
	js, _ := json.Marshal([]int(a.Block))
	const q = `
insert into exam_answers(page_id, source, image_hash, engine, block_json, prompt, answer, carry_over)
values ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.DB.ExecContext(ctx, q, pageID, source, imageHash, engine, js, a.Prompt, a.Text, a.CarryOver)
	return err
}

// ListByPage returns the answers of one page in the order they were recorded.
func (r *AnswerRepo) ListByPage(ctx context.Context, pageID string) ([]AnswerRow, error) {
	const q = `
select id, created_at, page_id, source, image_hash, engine, block_json, prompt, answer, carry_over
from exam_answers
where page_id = $1
order by id`
	rows, err := r.DB.QueryContext(ctx, q, pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnswerRow
	for rows.Next() {
		var (
			row AnswerRow
			js  []byte
		)
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.PageID, &row.Source, &row.ImageHash,
			&row.Engine, &js, &row.Prompt, &row.Answer, &row.CarryOver); err != nil {
			return nil, err
		}
		// a broken block list keeps the row; the answer text is what matters
		_ = json.Unmarshal(js, &row.Block)
		out = append(out, row)
	}
	return out, rows.Err()
}

// PageRecorder writes the answers of one page. A nil recorder discards them.
type PageRecorder struct {
	repo      *AnswerRepo
	pageID    string
	source    string
	imageHash string
	engine    string
}

// ForPage binds the repo to one processed page. It returns nil when the repo is nil.
func (r *AnswerRepo) ForPage(pageID, source string, image []byte, engine string) *PageRecorder {
	if r == nil {
		return nil
	}
	return &PageRecorder{repo: r, pageID: pageID, source: source, imageHash: util.SHA256Hex(image), engine: engine}
}

func (p *PageRecorder) Record(ctx context.Context, a exam.Answer) error {
	if p == nil {
		return nil
	}
	return p.repo.Insert(ctx, p.pageID, p.source, p.imageHash, p.engine, a)
}
