package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

func strPtr(s string) *string { return &s }

func TestBookStore(t *testing.T) {
	ctx := context.Background()

	t.Run("空存储", func(t *testing.T) {
		s := NewBookStore()

		books, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)

		maxID, err := s.FindMaxID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), maxID)

		_, err = s.FindByID(ctx, 1)
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})

	t.Run("插入后按ID升序返回", func(t *testing.T) {
		s := NewBookStore()
		require.NoError(t, s.InsertOne(ctx, &book.Book{ID: 3, Title: "Third"}))
		require.NoError(t, s.InsertOne(ctx, &book.Book{ID: 1, Title: "First"}))

		books, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, int64(1), books[0].ID)
		assert.Equal(t, int64(3), books[1].ID)

		maxID, err := s.FindMaxID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), maxID)
	})

	t.Run("UpdateOne区分命中和修改", func(t *testing.T) {
		s := NewBookStore(book.Book{ID: 7, Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "First"})

		res, err := s.UpdateOne(ctx, 7, book.Patch{Author: strPtr("J Tolkien")})
		require.NoError(t, err)
		assert.Equal(t, book.UpdateResult{Matched: 1, Modified: 0}, res)

		res, err = s.UpdateOne(ctx, 7, book.Patch{Edition: strPtr("Second")})
		require.NoError(t, err)
		assert.Equal(t, book.UpdateResult{Matched: 1, Modified: 1}, res)

		got, err := s.FindByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Edition)
		assert.Equal(t, "The Hobbit", got.Title)

		res, err = s.UpdateOne(ctx, 8, book.Patch{Edition: strPtr("Second")})
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Matched)
	})

	t.Run("DeleteOne", func(t *testing.T) {
		s := NewBookStore(book.Book{ID: 1})

		n, err := s.DeleteOne(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.DeleteOne(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("返回值是副本", func(t *testing.T) {
		s := NewBookStore(book.Book{ID: 1, Title: "Original"})

		got, err := s.FindByID(ctx, 1)
		require.NoError(t, err)
		got.Title = "Mutated"

		again, err := s.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Original", again.Title)
	})
}

func TestSequence(t *testing.T) {
	ctx := context.Background()

	t.Run("从start之后开始", func(t *testing.T) {
		seq := NewSequence(0)
		id, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("Seed只向前推进", func(t *testing.T) {
		seq := NewSequence(10)
		require.NoError(t, seq.Seed(ctx, 5))
		id, _ := seq.Next(ctx)
		assert.Equal(t, int64(11), id)

		require.NoError(t, seq.Seed(ctx, 41))
		id, _ = seq.Next(ctx)
		assert.Equal(t, int64(42), id)
	})

	t.Run("并发分配不重复", func(t *testing.T) {
		seq := NewSequence(0)

		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			ids = make(map[int64]struct{})
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := seq.Next(ctx)
				assert.NoError(t, err)
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, ids, 50)
	})
}
