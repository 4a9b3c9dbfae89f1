package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"library-service/internal/domain/book"
	"library-service/internal/domain/loan"
	"library-service/internal/domain/user"
	loanuc "library-service/internal/usecase/loan"
	pkgerrors "library-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedBook(t *testing.T, repo *BookRepoPG, name, code string, copies int) string {
	id, err := repo.Create(context.Background(), &book.Book{Name: name, Author: "Anon", Code: code, Copies: copies})
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }

// ==================== BOOKS ====================

func TestBookRepoPG_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	id := seedBook(t, repo, "Dune", "SF-001", 2)
	assert.Len(t, id, 36)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Name)
	assert.Equal(t, 2, got.Copies)

	updated, err := repo.Update(ctx, id, book.Patch{Copies: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Copies)
	assert.Equal(t, "Dune", updated.Name)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, pkgerrors.ErrBookNotFound)
}

func TestBookRepoPG_MissingBook(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.Update(ctx, "missing", book.Patch{Name: ptr("X")})
	assert.ErrorIs(t, err, pkgerrors.ErrBookNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "missing"), pkgerrors.ErrBookNotFound)
	assert.ErrorIs(t, repo.IncrementCopies(ctx, "missing"), pkgerrors.ErrBookNotFound)

	ok, err := repo.DecrementCopies(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookRepoPG_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	seedBook(t, repo, "Getting Things Done", "GETH-2001", 1)
	seedBook(t, repo, "Dune", "SF-001", 1)
	seedBook(t, repo, "100% Coverage", "QA_7", 1)
	seedBook(t, repo, "Études Sociales", "ÉT-12", 1)

	tests := []struct {
		name   string
		search string
		want   int
	}{
		{"empty search returns all", "", 4},
		{"non-ascii name folds case", "étu", 1},
		{"non-ascii code folds case", "ét-12", 1},
		{"name is case-insensitive", "dune", 1},
		{"code is case-insensitive", "geth-2001", 1},
		{"percent matches literally", "100%", 1},
		{"underscore matches literally", "a_7", 1},
		{"no match", "tolkien", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.List(ctx, tt.search)
			require.NoError(t, err)
			assert.Len(t, books, tt.want)
		})
	}
}

func TestBookRepoPG_DecrementStopsAtZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()
	id := seedBook(t, repo, "Dune", "SF-001", 1)

	ok, err := repo.DecrementCopies(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementCopies(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Copies)
}

// ==================== USERS ====================

func TestUserRepoPG_CreateAndLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &user.User{Roll: "R1", Email: "r1@example.com", Name: "Rin", Profile: map[string]string{"dept": "cs"}})
	require.NoError(t, err)

	byEmail, err := repo.GetByEmail(ctx, "r1@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "cs", byEmail.Profile["dept"])

	byRoll, err := repo.GetByRoll(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, id, byRoll.ID)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Rin", byID.Name)

	_, err = repo.GetByRoll(ctx, "R404")
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestUserRepoPG_UniqueRollAndEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &user.User{Roll: "R1", Email: "r1@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &user.User{Roll: "R1", Email: "other@example.com"})
	assert.Error(t, err)

	_, err = repo.Create(ctx, &user.User{Roll: "R2", Email: "r1@example.com"})
	assert.Error(t, err)
}

// ==================== LOANS ====================

func TestLoanRepoPG_MarkReturnedOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLoanRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, &loan.Loan{UserID: "u-1", Roll: "R1", Email: "r1@example.com", BookID: "b-1", BorrowDate: time.Now().UTC()})
	require.NoError(t, err)

	ok, err := repo.MarkReturned(ctx, id, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkReturned(ctx, id, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Returned)
	assert.NotNil(t, got.ReturnDate)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrLoanNotFound)
}

func TestLoanRepoPG_ListByUserIDNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLoanRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, uid := range []string{"u-1", "u-2", "u-1"} {
		_, err := repo.Create(ctx, &loan.Loan{UserID: uid, Roll: "R", Email: "e@example.com", BookID: "b-1", BorrowDate: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	loans, err := repo.ListByUserID(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	assert.True(t, loans[0].BorrowDate.After(loans[1].BorrowDate))

	none, err := repo.ListByUserID(ctx, "u-9")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// ==================== TRANSACTIONS ====================

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	log := zaptest.NewLogger(t)
	books := NewBookRepoPG(db, log)
	tx := NewTransactor(db, log)
	ctx := context.Background()
	id := seedBook(t, books, "Dune", "SF-001", 1)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := books.DecrementCopies(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := books.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Copies)
}

func TestTransactor_NestedJoinsOuter(t *testing.T) {
	db := setupTestDB(t)
	log := zaptest.NewLogger(t)
	books := NewBookRepoPG(db, log)
	tx := NewTransactor(db, log)
	ctx := context.Background()
	id := seedBook(t, books, "Dune", "SF-001", 2)

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		inner := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := books.DecrementCopies(ctx, id)
			return err
		})
		require.NoError(t, inner)
		return errors.New("outer fails")
	})
	require.Error(t, err)

	got, err := books.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Copies)
}

// ==================== BORROW WORKFLOW ====================

func setupLoanService(t *testing.T, copies int) (*loanuc.Service, *BookRepoPG, string) {
	db := setupTestDB(t)
	log := zaptest.NewLogger(t)
	books := NewBookRepoPG(db, log)
	users := NewUserRepoPG(db, log)

	for _, u := range []user.User{{Roll: "R1", Email: "r1@example.com"}, {Roll: "R2", Email: "r2@example.com"}} {
		_, err := users.Create(context.Background(), &u)
		require.NoError(t, err)
	}
	bookID := seedBook(t, books, "Dune", "SF-001", copies)

	svc := loanuc.New(NewLoanRepoPG(db, log), books, users, NewTransactor(db, log), log)
	return svc, books, bookID
}

func TestBorrowWorkflow_LastCopyConcurrently(t *testing.T) {
	svc, books, bookID := setupLoanService(t, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, roll := range []string{"R1", "R2"} {
		wg.Add(1)
		go func(i int, roll string) {
			defer wg.Done()
			_, errs[i] = svc.Borrow(ctx, loanuc.BorrowRequest{Roll: roll, BookID: bookID})
		}(i, roll)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, pkgerrors.ErrNoCopiesAvailable)
	}
	assert.Equal(t, 1, succeeded)

	got, err := books.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Copies)
}

func TestBorrowWorkflow_ReturnRestoresCopy(t *testing.T) {
	svc, books, bookID := setupLoanService(t, 1)
	ctx := context.Background()

	borrowed, err := svc.Borrow(ctx, loanuc.BorrowRequest{Roll: "R1", BookID: bookID})
	require.NoError(t, err)
	assert.Equal(t, "Dune", borrowed.Loan.BookName)

	_, err = svc.ReturnLoan(ctx, loanuc.ReturnLoanRequest{LoanID: borrowed.Loan.ID})
	require.NoError(t, err)

	_, err = svc.ReturnLoan(ctx, loanuc.ReturnLoanRequest{LoanID: borrowed.Loan.ID})
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyReturned)

	got, err := books.GetByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Copies)

	listed, err := svc.ListLoansByUser(ctx, loanuc.ListLoansByUserRequest{Email: "r1@example.com"})
	require.NoError(t, err)
	require.Len(t, listed.Loans, 1)
	assert.True(t, listed.Loans[0].Returned)
}

func TestBorrowWorkflow_ReturnAfterBookDeleted(t *testing.T) {
	svc, books, bookID := setupLoanService(t, 1)
	ctx := context.Background()

	borrowed, err := svc.Borrow(ctx, loanuc.BorrowRequest{Roll: "R1", BookID: bookID})
	require.NoError(t, err)
	require.NoError(t, books.Delete(ctx, bookID))

	returned, err := svc.ReturnLoan(ctx, loanuc.ReturnLoanRequest{LoanID: borrowed.Loan.ID})
	require.NoError(t, err)
	assert.True(t, returned.Loan.Returned)

	_, err = svc.ReturnLoan(ctx, loanuc.ReturnLoanRequest{LoanID: borrowed.Loan.ID})
	assert.ErrorIs(t, err, pkgerrors.ErrAlreadyReturned)

	_, err = books.GetByID(ctx, bookID)
	assert.ErrorIs(t, err, pkgerrors.ErrBookNotFound)
}

func TestBookRepoPG_SearchFollowsRename(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBookRepoPG(db, zaptest.NewLogger(t))
	ctx := context.Background()
	id := seedBook(t, repo, "Dune", "SF-001", 1)

	_, err := repo.Update(ctx, id, book.Patch{Name: ptr("Ürümqi Nights"), Code: ptr("TR-9")})
	require.NoError(t, err)

	found, err := repo.List(ctx, "ürüm")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, id, found[0].ID)

	stale, err := repo.List(ctx, "dune")
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestAutoMigrate_BackfillsSearchKeys(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Exec(
		"INSERT INTO books (id, name, author, code, copies, name_key, code_key, created_at, updated_at) VALUES (?, ?, ?, ?, ?, '', '', ?, ?)",
		"legacy-1", "Œuvres", "Anon", "OE-1", 1, time.Now(), time.Now(),
	).Error)

	require.NoError(t, AutoMigrate(db))

	found, err := NewBookRepoPG(db, zaptest.NewLogger(t)).List(context.Background(), "œuv")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "legacy-1", found[0].ID)
}
