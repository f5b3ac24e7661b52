package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"mobtakir/api/internal/session"
	"mobtakir/api/internal/util"
)

// Outcome labels stored in solve_journal.outcome.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// Entry is one journal row. Problem text and solutions are never stored,
// only a hash of the problem and counts.
type Entry struct {
	ID          uuid.UUID
	CreatedAt   time.Time
	ChatID      int64
	ProblemHash string
	Engine      string
	Model       string
	TechniqueID string
	Repaired    bool
	Solutions   int
	Outcome     string
	Elapsed     time.Duration
}

var ErrNotFound = sql.ErrNoRows

type SolveRepo struct{ DB *sql.DB }

func NewSolveRepo(db *sql.DB) *SolveRepo { return &SolveRepo{DB: db} }

func (r *SolveRepo) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	const q = `
insert into solve_journal (
  id, chat_id, problem_hash, engine, model,
  technique_id, repaired, solutions, outcome, elapsed_ms
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.DB.ExecContext(ctx, q,
		e.ID, e.ChatID, e.ProblemHash, e.Engine, e.Model,
		e.TechniqueID, e.Repaired, e.Solutions, e.Outcome, e.Elapsed.Milliseconds(),
	)
	return err
}

// Get loads one row by id.
func (r *SolveRepo) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	const q = `
select id, created_at, chat_id, problem_hash, engine, model,
       technique_id, repaired, solutions, outcome, elapsed_ms
from solve_journal
where id = $1`
	var (
		e  Entry
		ms int64
	)
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.CreatedAt, &e.ChatID, &e.ProblemHash, &e.Engine, &e.Model,
		&e.TechniqueID, &e.Repaired, &e.Solutions, &e.Outcome, &ms,
	)
	if err != nil {
		return Entry{}, err
	}
	e.Elapsed = time.Duration(ms) * time.Millisecond
	return e, nil
}

// TechniqueStat is how often a technique was picked since some point.
type TechniqueStat struct {
	TechniqueID string
	Count       int64
	Repaired    int64
}

// TechniqueStats counts successful solves per technique since the given time,
// most used first.
func (r *SolveRepo) TechniqueStats(ctx context.Context, since time.Time) ([]TechniqueStat, error) {
	const q = `
select technique_id, count(*), count(*) filter (where repaired)
from solve_journal
where outcome = $1 and created_at >= $2
group by technique_id
order by count(*) desc, technique_id`
	rows, err := r.DB.QueryContext(ctx, q, OutcomeOK, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TechniqueStat
	for rows.Next() {
		var s TechniqueStat
		if err := rows.Scan(&s.TechniqueID, &s.Count, &s.Repaired); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PurgeOlderThan deletes journal rows older than the given age.
func (r *SolveRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from solve_journal where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// NewEntry maps a finished solve onto a journal row.
func NewEntry(chatID int64, engine, model string, o session.Outcome) Entry {
	e := Entry{
		ChatID:      chatID,
		ProblemHash: util.SHA256Hex(o.Problem),
		Engine:      engine,
		Model:       model,
		Elapsed:     o.Elapsed,
	}
	switch {
	case o.Stale:
		e.Outcome = OutcomeStale
	case o.Err != nil:
		e.Outcome = OutcomeFailed
	default:
		e.Outcome = OutcomeOK
	}
	if o.Result != nil {
		e.TechniqueID = string(o.Result.TechniqueID)
		e.Repaired = o.Result.Repaired
		e.Solutions = len(o.Result.Solutions)
	}
	return e
}

// Journal binds a SolveRepo to one chat and engine so it can be handed to a
// session.Controller.
type Journal struct {
	Repo   *SolveRepo
	ChatID int64
	Engine string
	Model  string
}

func (j Journal) Record(ctx context.Context, o session.Outcome) error {
	return j.Repo.Record(ctx, NewEntry(j.ChatID, j.Engine, j.Model, o))
}
