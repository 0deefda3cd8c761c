package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch(t *testing.T) {
	b := &Book{ID: 1, Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "First"}

	t.Run("空补丁", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.False(t, b.Differs(Patch{}))
		assert.Equal(t, b, b.Apply(Patch{}))
	})

	t.Run("Apply返回副本", func(t *testing.T) {
		edition := "Second"
		merged := b.Apply(Patch{Edition: &edition})

		assert.Equal(t, "Second", merged.Edition)
		assert.Equal(t, "The Hobbit", merged.Title)
		assert.Equal(t, "First", b.Edition)
		assert.True(t, b.Differs(Patch{Edition: &edition}))
	})

	t.Run("PatchFrom包含全部字段", func(t *testing.T) {
		p := PatchFrom(Fields{Title: "The Hobbit", Author: "J Tolkien", Year: "1937", Edition: "First"})
		assert.False(t, p.IsEmpty())
		assert.False(t, b.Differs(p))
	})
}
