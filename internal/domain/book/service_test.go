package book_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/memory"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

var errConnRefused = errors.New("connection refused")

// failingStore 所有操作都返回存储错误
type failingStore struct{}

func (failingStore) FindAll(context.Context) ([]*book.Book, error) { return nil, errConnRefused }
func (failingStore) FindByID(context.Context, int64) (*book.Book, error) {
	return nil, errConnRefused
}
func (failingStore) FindMaxID(context.Context) (int64, error)     { return 0, errConnRefused }
func (failingStore) InsertOne(context.Context, *book.Book) error { return errConnRefused }
func (failingStore) UpdateOne(context.Context, int64, book.Patch) (book.UpdateResult, error) {
	return book.UpdateResult{}, errConnRefused
}
func (failingStore) DeleteOne(context.Context, int64) (int64, error) { return 0, errConnRefused }

// recordingPublisher 记录事件
type recordingPublisher struct {
	events []book.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e book.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func hobbit() book.Book {
	return book.Book{ID: 1, Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "First"}
}

func newService(t *testing.T, seed ...book.Book) (book.Service, *recordingPublisher) {
	t.Helper()
	store := memory.NewBookStore(seed...)
	maxID, err := store.FindMaxID(context.Background())
	require.NoError(t, err)

	events := &recordingPublisher{}
	return book.NewService(store, memory.NewSequence(maxID), events, zap.NewNop()), events
}

func TestListBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("空存储返回空切片", func(t *testing.T) {
		svc, _ := newService(t)
		books, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})

	t.Run("返回全部图书", func(t *testing.T) {
		svc, _ := newService(t, hobbit(), book.Book{ID: 2, Title: "Dune Messiah"})
		books, err := svc.ListBooks(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, hobbit())

	b, err := svc.GetBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", b.Title)

	_, err = svc.GetBook(ctx, 2)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()
	fields := book.Fields{Title: "Dune Messiah", Author: "F Herbert", Year: "1969", Edition: "First"}

	t.Run("空存储第一个ID为1", func(t *testing.T) {
		svc, events := newService(t)

		b, err := svc.CreateBook(ctx, fields)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
		assert.Equal(t, "Dune Messiah", b.Title)

		require.Len(t, events.events, 1)
		assert.Equal(t, book.EventCreated, events.events[0].Type)
		assert.Equal(t, int64(1), events.events[0].BookID)
	})

	t.Run("ID为最大ID加1", func(t *testing.T) {
		svc, _ := newService(t, hobbit(), book.Book{ID: 7, Title: "Seven"})

		b, err := svc.CreateBook(ctx, fields)
		require.NoError(t, err)
		assert.Equal(t, int64(8), b.ID)

		got, err := svc.GetBook(ctx, 8)
		require.NoError(t, err)
		assert.Equal(t, b, got)
	})

	t.Run("事件发布失败不影响结果", func(t *testing.T) {
		store := memory.NewBookStore()
		events := &recordingPublisher{err: errors.New("broker down")}
		svc := book.NewService(store, memory.NewSequence(0), events, zap.NewNop())

		b, err := svc.CreateBook(ctx, fields)
		require.NoError(t, err)
		assert.Equal(t, int64(1), b.ID)
	})
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("修改字段", func(t *testing.T) {
		svc, events := newService(t, hobbit())

		p := book.PatchFrom(book.Fields{Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "Second"})
		b, status, err := svc.UpdateBook(ctx, 1, p)
		require.NoError(t, err)
		assert.Equal(t, book.StatusUpdated, status)
		assert.Equal(t, "Second", b.Edition)

		got, err := svc.GetBook(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Edition)

		require.Len(t, events.events, 1)
		assert.Equal(t, book.EventUpdated, events.events[0].Type)
	})

	t.Run("值未变化", func(t *testing.T) {
		svc, events := newService(t, hobbit())

		h := hobbit()
		p := book.PatchFrom(book.Fields{Title: h.Title, Author: h.Author, Year: h.Year, Edition: h.Edition})
		b, status, err := svc.UpdateBook(ctx, 1, p)
		require.NoError(t, err)
		assert.Equal(t, book.StatusUnchanged, status)
		assert.Equal(t, "unchanged", status.String())
		assert.Equal(t, &h, b)
		assert.Empty(t, events.events)
	})

	t.Run("图书不存在", func(t *testing.T) {
		svc, _ := newService(t)
		_, _, err := svc.UpdateBook(ctx, 42, book.Patch{})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	svc, events := newService(t, hobbit())

	b, err := svc.DeleteBook(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "The Hobbit", b.Title)

	_, err = svc.GetBook(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	_, err = svc.DeleteBook(ctx, 1)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	require.Len(t, events.events, 1)
	assert.Equal(t, book.EventDeleted, events.events[0].Type)
}

func TestStorageErrors(t *testing.T) {
	ctx := context.Background()
	svc := book.NewService(failingStore{}, memory.NewSequence(0), nil, zap.NewNop())

	assertInternal := func(t *testing.T, err error, message string) {
		t.Helper()
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
		assert.Equal(t, message, appErr.Message)
		assert.ErrorIs(t, err, errConnRefused)
	}

	_, err := svc.ListBooks(ctx)
	assertInternal(t, err, "Error fetching all books from the database")

	_, err = svc.GetBook(ctx, 1)
	assertInternal(t, err, "Error fetching the book by id from the database")

	_, err = svc.CreateBook(ctx, book.Fields{Title: "Dune Messiah"})
	assertInternal(t, err, "Error creating the new book")

	_, _, err = svc.UpdateBook(ctx, 1, book.Patch{})
	assertInternal(t, err, "Error fetching the book by id from the database")

	_, err = svc.DeleteBook(ctx, 1)
	assertInternal(t, err, "Error fetching the book by id from the database")
}

// writeFailingStore 查询正常，写入返回指定的结果或错误
type writeFailingStore struct {
	*memory.BookStore
	updateResult book.UpdateResult
	deleted      int64
	err          error
}

func (s *writeFailingStore) UpdateOne(context.Context, int64, book.Patch) (book.UpdateResult, error) {
	return s.updateResult, s.err
}

func (s *writeFailingStore) DeleteOne(context.Context, int64) (int64, error) {
	return s.deleted, s.err
}

// failingSequence ID分配失败
type failingSequence struct{}

func (failingSequence) Next(context.Context) (int64, error) { return 0, errConnRefused }

func TestWriteFailuresAfterLookup(t *testing.T) {
	ctx := context.Background()
	edition := book.PatchFrom(book.Fields{Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "Second"})

	assertInternal := func(t *testing.T, err error, message string) {
		t.Helper()
		appErr := apperrors.GetAppError(err)
		assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
		assert.Equal(t, message, appErr.Message)
		assert.ErrorIs(t, err, errConnRefused)
		assert.NotErrorIs(t, err, book.ErrBookNotFound)
	}

	t.Run("更新写入失败", func(t *testing.T) {
		events := &recordingPublisher{}
		store := &writeFailingStore{BookStore: memory.NewBookStore(hobbit()), err: errConnRefused}
		svc := book.NewService(store, memory.NewSequence(1), events, zap.NewNop())

		_, _, err := svc.UpdateBook(ctx, 1, edition)
		assertInternal(t, err, "Error updating the book")
		assert.Empty(t, events.events)
	})

	t.Run("删除写入失败", func(t *testing.T) {
		events := &recordingPublisher{}
		store := &writeFailingStore{BookStore: memory.NewBookStore(hobbit()), err: errConnRefused}
		svc := book.NewService(store, memory.NewSequence(1), events, zap.NewNop())

		_, err := svc.DeleteBook(ctx, 1)
		assertInternal(t, err, "Error deleting the book data")
		assert.Empty(t, events.events)
	})

	t.Run("更新时图书已被并发删除", func(t *testing.T) {
		store := &writeFailingStore{BookStore: memory.NewBookStore(hobbit())}
		svc := book.NewService(store, memory.NewSequence(1), nil, zap.NewNop())

		_, _, err := svc.UpdateBook(ctx, 1, edition)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
		assert.Equal(t, 404, apperrors.GetAppError(err).HTTPStatus())
	})

	t.Run("删除时图书已被并发删除", func(t *testing.T) {
		store := &writeFailingStore{BookStore: memory.NewBookStore(hobbit())}
		svc := book.NewService(store, memory.NewSequence(1), nil, zap.NewNop())

		_, err := svc.DeleteBook(ctx, 1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("ID分配失败", func(t *testing.T) {
		store := memory.NewBookStore()
		svc := book.NewService(store, failingSequence{}, nil, zap.NewNop())

		_, err := svc.CreateBook(ctx, book.Fields{Title: "Dune Messiah", Author: "F Herbert", Year: "1969", Edition: "First"})
		assertInternal(t, err, "Error creating the new book")

		books, err := store.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}
