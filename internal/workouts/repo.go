package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitquest/internal/telemetry/tracing"
)

// Repo stores the whole per-user state document as a JSONB column, with a
// version counter for conditional writes. Different users' documents are
// fully independent, no cross-document locking exists or is needed.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) CreateState(ctx context.Context, userID int, state *UserState) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.createstate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_state (user_id, doc, version) VALUES ($1, $2, 1);`,
		userID, doc,
	)
	if err != nil {
		return fmt.Errorf("insert user state: %w", err)
	}
	return nil
}

func (r *Repo) GetState(ctx context.Context, userID int) (_ *UserState, version int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.getstate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	var doc []byte
	err = r.db.QueryRow(
		ctx,
		`SELECT doc, version FROM user_state WHERE user_id = $1;`,
		userID,
	).Scan(&doc, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrUserStateNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query user state: %w", err)
	}

	var state UserState
	if err := json.Unmarshal(doc, &state); err != nil {
		return nil, 0, fmt.Errorf("unmarshal user state for user %d: %w", userID, err)
	}

	return &state, version, nil
}

// SaveState writes the document conditionally: the update lands only when
// the version still matches the one the caller read. A mismatch means a
// concurrent request got there first and the caller must re-read; this is
// what closes the double-credit race between concurrent completion requests.
func (r *Repo) SaveState(ctx context.Context, userID int, state *UserState, version int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.savestate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("version", version))

	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal user state: %w", err)
	}

	tag, err := r.db.Exec(
		ctx,
		`UPDATE user_state SET doc = $2, version = version + 1 WHERE user_id = $1 AND version = $3;`,
		userID, doc, version,
	)
	if err != nil {
		return fmt.Errorf("update user state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// either the user vanished or somebody else bumped the version
		var exists bool
		if checkErr := r.db.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM user_state WHERE user_id = $1);`,
			userID,
		).Scan(&exists); checkErr != nil {
			return fmt.Errorf("check user state exists: %w", checkErr)
		}
		if !exists {
			return ErrUserStateNotFound
		}
		return ErrVersionConflict
	}

	return nil
}
