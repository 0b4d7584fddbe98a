package links

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/obiajulu/shortcode/internal/db"
	"github.com/obiajulu/shortcode/internal/errx"
)

/***************
 * Mocks / Stubs
 ***************/

// mockQueries implements the querier interface for testing.
type mockQueries struct {
	createLinkFunc    func(ctx context.Context, params db.CreateLinkParams) (db.Link, error)
	getLinkByCodeFunc func(ctx context.Context, code string) (db.Link, error)
	listLinksFunc     func(ctx context.Context) ([]db.Link, error)
	clickLinkFunc     func(ctx context.Context, code string) (db.Link, error)
	deleteLinkFunc    func(ctx context.Context, code string) error
}

func (m *mockQueries) CreateLink(ctx context.Context, params db.CreateLinkParams) (db.Link, error) {
	if m.createLinkFunc != nil {
		return m.createLinkFunc(ctx, params)
	}
	return db.Link{}, nil
}

func (m *mockQueries) GetLinkByCode(ctx context.Context, code string) (db.Link, error) {
	if m.getLinkByCodeFunc != nil {
		return m.getLinkByCodeFunc(ctx, code)
	}
	return db.Link{}, nil
}

func (m *mockQueries) ListLinks(ctx context.Context) ([]db.Link, error) {
	if m.listLinksFunc != nil {
		return m.listLinksFunc(ctx)
	}
	return nil, nil
}

func (m *mockQueries) ClickLink(ctx context.Context, code string) (db.Link, error) {
	if m.clickLinkFunc != nil {
		return m.clickLinkFunc(ctx, code)
	}
	return db.Link{}, nil
}

func (m *mockQueries) DeleteLink(ctx context.Context, code string) error {
	if m.deleteLinkFunc != nil {
		return m.deleteLinkFunc(ctx, code)
	}
	return nil
}

// stubIDGen lets tests control generated IDs deterministically.
type stubIDGen struct {
	id    uuid.UUID
	err   error
	calls int
}

func (g *stubIDGen) Generate() (uuid.UUID, error) {
	g.calls++
	return g.id, g.err
}

/***************
 * Helpers
 ***************/

func makeValidTimestamp(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func makeInvalidTimestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Valid: false}
}

func makeTestDBLink(now time.Time) db.Link {
	return db.Link{
		ID:          uuid.New(),
		Code:        "ab12cd",
		Target:      "https://example.com",
		Clicks:      0,
		CreatedAt:   makeValidTimestamp(now),
		LastClicked: makeInvalidTimestamp(),
	}
}

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{Code: "23505", ConstraintName: "links_code_unique"}
}

/***************
 * Unit tests: helpers
 ***************/

func TestMustTime(t *testing.T) {
	t.Run("returns time when timestamp is valid", func(t *testing.T) {
		now := time.Now()

		got, err := mustTime(makeValidTimestamp(now), "created_at")
		if err != nil {
			t.Fatalf("mustTime() unexpected error: %v", err)
		}
		if !got.Equal(now) {
			t.Errorf("mustTime() = %v, want %v", got, now)
		}
	})

	t.Run("returns error when timestamp is invalid", func(t *testing.T) {
		_, err := mustTime(makeInvalidTimestamp(), "created_at")
		if err == nil {
			t.Fatal("mustTime() expected error, got nil")
		}
		want := "created_at unexpectedly NULL"
		if err.Error() != want {
			t.Errorf("mustTime() error = %q, want %q", err.Error(), want)
		}
	})
}

func TestTimePtr(t *testing.T) {
	t.Run("returns pointer when timestamp is valid", func(t *testing.T) {
		now := time.Now()

		got := timePtr(makeValidTimestamp(now))
		if got == nil {
			t.Fatal("timePtr() = nil, want non-nil")
		}
		if !got.Equal(now) {
			t.Errorf("timePtr() = %v, want %v", *got, now)
		}
	})

	t.Run("returns nil when timestamp is invalid", func(t *testing.T) {
		if got := timePtr(makeInvalidTimestamp()); got != nil {
			t.Errorf("timePtr() = %v, want nil", got)
		}
	})
}

func TestToDomainLink(t *testing.T) {
	t.Run("converts a clicked row", func(t *testing.T) {
		now := time.Now()
		row := db.Link{
			ID:          uuid.New(),
			Code:        "ab12cd",
			Target:      "https://example.com",
			Clicks:      5,
			CreatedAt:   makeValidTimestamp(now),
			LastClicked: makeValidTimestamp(now.Add(-time.Hour)),
		}

		got, err := toDomainLink(row)
		if err != nil {
			t.Fatalf("toDomainLink() unexpected error: %v", err)
		}

		if got.ID != row.ID {
			t.Errorf("ID = %v, want %v", got.ID, row.ID)
		}
		if got.Code != row.Code {
			t.Errorf("Code = %q, want %q", got.Code, row.Code)
		}
		if got.Target != row.Target {
			t.Errorf("Target = %q, want %q", got.Target, row.Target)
		}
		if got.Clicks != 5 {
			t.Errorf("Clicks = %d, want 5", got.Clicks)
		}
		if got.LastClicked == nil {
			t.Error("LastClicked = nil, want non-nil")
		}
	})

	t.Run("leaves LastClicked nil for a never-clicked row", func(t *testing.T) {
		got, err := toDomainLink(makeTestDBLink(time.Now()))
		if err != nil {
			t.Fatalf("toDomainLink() unexpected error: %v", err)
		}
		if got.LastClicked != nil {
			t.Errorf("LastClicked = %v, want nil", got.LastClicked)
		}
	})

	t.Run("returns error when created_at is NULL", func(t *testing.T) {
		row := makeTestDBLink(time.Now())
		row.CreatedAt = makeInvalidTimestamp()

		if _, err := toDomainLink(row); err == nil {
			t.Fatal("toDomainLink() expected error for NULL created_at, got nil")
		}
	})
}

func TestMapRepoError(t *testing.T) {
	t.Run("maps pgx.ErrNoRows to NotFound", func(t *testing.T) {
		err := mapRepoError("test.op", pgx.ErrNoRows)

		if errx.KindOf(err) != errx.NotFound {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.NotFound)
		}
		if errx.OpOf(err) != "test.op" {
			t.Errorf("OpOf(err) = %q, want %q", errx.OpOf(err), "test.op")
		}
	})

	t.Run("maps code unique violation to Conflict", func(t *testing.T) {
		err := mapRepoError("test.op", uniqueViolation())

		if errx.KindOf(err) != errx.Conflict {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Conflict)
		}
	})

	t.Run("maps other unique violations to Internal", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "links_pkey"}
		err := mapRepoError("test.op", pgErr)

		if errx.KindOf(err) != errx.Internal {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Internal)
		}
	})

	t.Run("maps generic errors to Internal", func(t *testing.T) {
		err := mapRepoError("test.op", errors.New("connection refused"))

		if errx.KindOf(err) != errx.Internal {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Internal)
		}
	})
}

/***************
 * Unit tests: repo methods
 ***************/

func TestRepoCreate(t *testing.T) {
	t.Run("generates an ID when link.ID is zero", func(t *testing.T) {
		now := time.Now()
		wantID := uuid.New()
		gen := &stubIDGen{id: wantID}

		row := makeTestDBLink(now)
		row.ID = wantID

		mock := &mockQueries{
			createLinkFunc: func(_ context.Context, params db.CreateLinkParams) (db.Link, error) {
				if params.ID != wantID {
					t.Errorf("params.ID = %v, want %v", params.ID, wantID)
				}
				if params.Code != "ab12cd" {
					t.Errorf("params.Code = %q, want %q", params.Code, "ab12cd")
				}
				if params.Target != "https://example.com" {
					t.Errorf("params.Target = %q, want %q", params.Target, "https://example.com")
				}
				return row, nil
			},
		}

		r := NewRepository(mock, &RepositoryConfig{IDGenerator: gen})

		got, err := r.Create(context.Background(), Link{
			Code:   "ab12cd",
			Target: "https://example.com",
		})
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if gen.calls != 1 {
			t.Fatalf("IDGenerator calls = %d, want 1", gen.calls)
		}
		if got.ID != wantID {
			t.Errorf("created.ID = %v, want %v", got.ID, wantID)
		}
	})

	t.Run("respects a pre-set ID", func(t *testing.T) {
		now := time.Now()
		presetID := uuid.New()
		gen := &stubIDGen{id: uuid.New()}

		mock := &mockQueries{
			createLinkFunc: func(_ context.Context, params db.CreateLinkParams) (db.Link, error) {
				if params.ID != presetID {
					t.Errorf("params.ID = %v, want preset %v", params.ID, presetID)
				}
				return makeTestDBLink(now), nil
			},
		}

		r := NewRepository(mock, &RepositoryConfig{IDGenerator: gen})

		_, err := r.Create(context.Background(), Link{
			ID:     presetID,
			Code:   "ab12cd",
			Target: "https://example.com",
		})
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if gen.calls != 0 {
			t.Fatalf("generator called %d times, want 0", gen.calls)
		}
	})

	t.Run("returns Conflict for duplicate code", func(t *testing.T) {
		mock := &mockQueries{
			createLinkFunc: func(_ context.Context, _ db.CreateLinkParams) (db.Link, error) {
				return db.Link{}, uniqueViolation()
			},
		}

		r := NewRepository(mock, nil)

		_, err := r.Create(context.Background(), Link{Code: "taken1", Target: "https://example.com"})
		if err == nil {
			t.Fatal("Create() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Conflict {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Conflict)
		}
		if errx.OpOf(err) != "links.repo.Create" {
			t.Errorf("OpOf(err) = %q, want %q", errx.OpOf(err), "links.repo.Create")
		}
	})

	t.Run("returns Unavailable when ID generation fails", func(t *testing.T) {
		gen := &stubIDGen{err: errors.New("entropy unavailable")}

		mock := &mockQueries{
			createLinkFunc: func(_ context.Context, _ db.CreateLinkParams) (db.Link, error) {
				t.Fatal("CreateLink should not be called when the generator fails")
				return db.Link{}, nil
			},
		}

		r := NewRepository(mock, &RepositoryConfig{IDGenerator: gen})

		_, err := r.Create(context.Background(), Link{Code: "ab12cd", Target: "https://example.com"})
		if err == nil {
			t.Fatal("Create() expected error, got nil")
		}
		if errx.KindOf(err) != errx.Unavailable {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Unavailable)
		}
	})

	t.Run("defaults to UUID v7 with nil config", func(t *testing.T) {
		now := time.Now()

		var captured uuid.UUID
		mock := &mockQueries{
			createLinkFunc: func(_ context.Context, params db.CreateLinkParams) (db.Link, error) {
				captured = params.ID
				row := makeTestDBLink(now)
				row.ID = params.ID
				return row, nil
			},
		}

		r := NewRepository(mock, nil)

		created, err := r.Create(context.Background(), Link{Code: "ab12cd", Target: "https://example.com"})
		if err != nil {
			t.Fatalf("Create() unexpected error: %v", err)
		}
		if created.ID == uuid.Nil {
			t.Fatal("expected non-zero ID")
		}
		if captured.Version() != 7 {
			t.Errorf("default generator UUID version = %d, want 7", captured.Version())
		}
	})
}

func TestRepoGetByCode(t *testing.T) {
	t.Run("retrieves link", func(t *testing.T) {
		now := time.Now()
		row := makeTestDBLink(now)

		mock := &mockQueries{
			getLinkByCodeFunc: func(_ context.Context, code string) (db.Link, error) {
				if code != "ab12cd" {
					t.Errorf("code = %q, want %q", code, "ab12cd")
				}
				return row, nil
			},
		}

		r := NewRepository(mock, nil)

		got, err := r.GetByCode(context.Background(), "ab12cd")
		if err != nil {
			t.Fatalf("GetByCode() unexpected error: %v", err)
		}
		if got.Code != row.Code {
			t.Errorf("Code = %q, want %q", got.Code, row.Code)
		}
	})

	t.Run("returns NotFound for missing code", func(t *testing.T) {
		mock := &mockQueries{
			getLinkByCodeFunc: func(_ context.Context, _ string) (db.Link, error) {
				return db.Link{}, pgx.ErrNoRows
			},
		}

		r := NewRepository(mock, nil)

		_, err := r.GetByCode(context.Background(), "missing")
		if err == nil {
			t.Fatal("expected error")
		}
		if errx.KindOf(err) != errx.NotFound {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.NotFound)
		}
		if errx.OpOf(err) != "links.repo.GetByCode" {
			t.Errorf("OpOf(err) = %q, want %q", errx.OpOf(err), "links.repo.GetByCode")
		}
	})
}

func TestRepoListAll(t *testing.T) {
	t.Run("converts every row", func(t *testing.T) {
		now := time.Now()
		rows := []db.Link{makeTestDBLink(now), makeTestDBLink(now.Add(-time.Minute))}
		rows[1].Code = "ef34gh"

		mock := &mockQueries{
			listLinksFunc: func(_ context.Context) ([]db.Link, error) {
				return rows, nil
			},
		}

		r := NewRepository(mock, nil)

		got, err := r.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll() unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Code != "ab12cd" || got[1].Code != "ef34gh" {
			t.Errorf("codes = %q, %q; want order preserved", got[0].Code, got[1].Code)
		}
	})

	t.Run("returns empty slice for empty table", func(t *testing.T) {
		mock := &mockQueries{
			listLinksFunc: func(_ context.Context) ([]db.Link, error) {
				return nil, nil
			},
		}

		r := NewRepository(mock, nil)

		got, err := r.ListAll(context.Background())
		if err != nil {
			t.Fatalf("ListAll() unexpected error: %v", err)
		}
		if got == nil {
			t.Fatal("ListAll() = nil, want empty slice")
		}
		if len(got) != 0 {
			t.Errorf("len = %d, want 0", len(got))
		}
	})

	t.Run("maps query failure to Internal", func(t *testing.T) {
		mock := &mockQueries{
			listLinksFunc: func(_ context.Context) ([]db.Link, error) {
				return nil, errors.New("connection reset")
			},
		}

		r := NewRepository(mock, nil)

		_, err := r.ListAll(context.Background())
		if errx.KindOf(err) != errx.Internal {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Internal)
		}
	})
}

func TestRepoRecordClick(t *testing.T) {
	t.Run("returns the updated link", func(t *testing.T) {
		now := time.Now()
		row := makeTestDBLink(now)
		row.Clicks = 1
		row.LastClicked = makeValidTimestamp(now)

		mock := &mockQueries{
			clickLinkFunc: func(_ context.Context, code string) (db.Link, error) {
				if code != "ab12cd" {
					t.Errorf("code = %q, want %q", code, "ab12cd")
				}
				return row, nil
			},
		}

		r := NewRepository(mock, nil)

		got, err := r.RecordClick(context.Background(), "ab12cd")
		if err != nil {
			t.Fatalf("RecordClick() unexpected error: %v", err)
		}
		if got.Clicks != 1 {
			t.Errorf("Clicks = %d, want 1", got.Clicks)
		}
		if got.LastClicked == nil {
			t.Error("LastClicked = nil, want non-nil")
		}
	})

	t.Run("returns NotFound for missing code", func(t *testing.T) {
		mock := &mockQueries{
			clickLinkFunc: func(_ context.Context, _ string) (db.Link, error) {
				return db.Link{}, pgx.ErrNoRows
			},
		}

		r := NewRepository(mock, nil)

		_, err := r.RecordClick(context.Background(), "missing")
		if err == nil {
			t.Fatal("expected error")
		}
		if errx.KindOf(err) != errx.NotFound {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.NotFound)
		}
		if errx.OpOf(err) != "links.repo.RecordClick" {
			t.Errorf("OpOf(err) = %q, want %q", errx.OpOf(err), "links.repo.RecordClick")
		}
	})
}

func TestRepoDelete(t *testing.T) {
	t.Run("deletes successfully", func(t *testing.T) {
		mock := &mockQueries{
			deleteLinkFunc: func(_ context.Context, code string) error {
				if code != "ab12cd" {
					t.Errorf("code = %q, want %q", code, "ab12cd")
				}
				return nil
			},
		}

		r := NewRepository(mock, nil)

		if err := r.Delete(context.Background(), "ab12cd"); err != nil {
			t.Fatalf("Delete() unexpected error: %v", err)
		}
	})

	t.Run("maps storage failure to Internal", func(t *testing.T) {
		mock := &mockQueries{
			deleteLinkFunc: func(_ context.Context, _ string) error {
				return errors.New("connection reset")
			},
		}

		r := NewRepository(mock, nil)

		err := r.Delete(context.Background(), "ab12cd")
		if err == nil {
			t.Fatal("expected error")
		}
		if errx.KindOf(err) != errx.Internal {
			t.Errorf("KindOf(err) = %v, want %v", errx.KindOf(err), errx.Internal)
		}
	})
}
