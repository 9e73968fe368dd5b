package services

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("Hello World"))
	assert.Equal(t, "hello-world", Slugify("hello___world"))
	assert.Equal(t, "hello-world", Slugify("  Hello,  World!  "))
	assert.Equal(t, "a1-b2", Slugify("A1 & B2"))
	assert.Equal(t, "untitled", Slugify("!!!"))
	assert.Equal(t, "untitled", Slugify(""))
	assert.Equal(t, "untitled", Slugify("中文标题"))

	long := Slugify(strings.Repeat("a", 80))
	assert.Len(t, long, 50)
}

func TestValidateSlug(t *testing.T) {
	assert.True(t, ValidateSlug("abc"))
	assert.True(t, ValidateSlug("my-doc-42"))
	assert.False(t, ValidateSlug("ab"))
	assert.False(t, ValidateSlug("My-Doc"))
	assert.False(t, ValidateSlug("has_underscore"))
	assert.False(t, ValidateSlug("has space"))
}

func TestAllocatePromptSlugAppendsSuffixOnCollision(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	seedPrompt(ws, owner, "Report", "report", false)
	seedPrompt(ws, owner, "Report", "report-1", false)

	slug, err := AllocatePromptSlug(database.DB, ws.ID, "Report")
	assert.NoError(t, err)
	assert.Equal(t, "report-2", slug)
}

func TestAllocatePromptSlugScopedPerWorkspace(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws1 := seedWorkspace(owner, "One", "one")
	ws2 := seedWorkspace(owner, "Two", "two")
	seedPrompt(ws1, owner, "Report", "report", false)

	// The same slug is free in a different workspace.
	slug, err := AllocatePromptSlug(database.DB, ws2.ID, "Report")
	assert.NoError(t, err)
	assert.Equal(t, "report", slug)
}

func TestAllocateSlugTimestampFallback(t *testing.T) {
	// With every numbered candidate taken, allocation still terminates.
	slug, err := allocateSlug("base", func(string) (bool, error) {
		return true, nil
	})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(slug, "base-"))

	suffix := strings.TrimPrefix(slug, "base-")
	n, err := strconv.ParseInt(suffix, 10, 64)
	assert.NoError(t, err)
	assert.Greater(t, n, int64(slugMaxAttempts))
}

func TestWithSlugRetry(t *testing.T) {
	// Losing the race once gets exactly one retry.
	calls := 0
	err := withSlugRetry(func() error {
		calls++
		if calls == 1 {
			return fmt.Errorf("UNIQUE constraint failed: prompts.slug")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)

	// Losing it twice surfaces CONFLICT instead of looping.
	calls = 0
	err = withSlugRetry(func() error {
		calls++
		return fmt.Errorf(`duplicate key value violates unique constraint "idx_prompt_ws_slug"`)
	})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	assert.Equal(t, 2, calls)

	// Other failures pass through without a retry.
	calls = 0
	boom := fmt.Errorf("connection refused")
	err = withSlugRetry(func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(fmt.Errorf("UNIQUE constraint failed: prompts.slug")))
	assert.True(t, isUniqueViolation(fmt.Errorf(`duplicate key value violates unique constraint "idx_prompt_ws_slug"`)))
	assert.False(t, isUniqueViolation(fmt.Errorf("connection refused")))
}
