package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/models"
)

const (
	slugMaxLength    = 50
	slugMinLength    = 3
	slugFallbackBase = "untitled"
	slugMaxAttempts  = 100
)

var (
	slugSeparators = regexp.MustCompile(`[\s_]+`)
	slugStrip      = regexp.MustCompile(`[^a-z0-9-]+`)
	slugCollapse   = regexp.MustCompile(`-{2,}`)
	slugValid      = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slugify derives a slug candidate: lowercase, whitespace and underscores to
// single hyphens, everything outside [a-z0-9-] stripped, truncated to 50
// chars. An empty result falls back to a fixed literal.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugSeparators.ReplaceAllString(s, "-")
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > slugMaxLength {
		s = strings.Trim(s[:slugMaxLength], "-")
	}
	if s == "" {
		return slugFallbackBase
	}
	return s
}

// ValidateSlug rejects slugs shorter than 3 characters or containing
// characters outside [a-z0-9-].
func ValidateSlug(slug string) bool {
	return len(slug) >= slugMinLength && slugValid.MatchString(slug)
}

// allocateSlug finds a free slug for base: the base itself, then -1..-100,
// then a nanosecond timestamp suffix as a terminating last resort.
func allocateSlug(base string, taken func(slug string) (bool, error)) (string, error) {
	for i := 0; i <= slugMaxAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixNano()), nil
}

// AllocatePromptSlug returns a slug unique among the workspace's live
// prompts. The check is an optimization only: the creating transaction still
// relies on the unique index and retries once on a violation.
func AllocatePromptSlug(tx *gorm.DB, workspaceID uint, text string) (string, error) {
	return allocateSlug(Slugify(text), func(slug string) (bool, error) {
		var count int64
		err := tx.Model(&models.Prompt{}).
			Where("workspace_id = ? AND slug = ?", workspaceID, slug).
			Count(&count).Error
		if err != nil {
			return false, apperr.Internal(err)
		}
		return count > 0, nil
	})
}

// AllocateCategorySlug returns a slug unique among the workspace's categories.
func AllocateCategorySlug(tx *gorm.DB, workspaceID uint, text string) (string, error) {
	return allocateSlug(Slugify(text), func(slug string) (bool, error) {
		var count int64
		err := tx.Model(&models.Category{}).
			Where("workspace_id = ? AND slug = ?", workspaceID, slug).
			Count(&count).Error
		if err != nil {
			return false, apperr.Internal(err)
		}
		return count > 0, nil
	})
}

// AllocateWorkspaceSlug returns a globally unique workspace slug.
func AllocateWorkspaceSlug(tx *gorm.DB, text string) (string, error) {
	return allocateSlug(Slugify(text), func(slug string) (bool, error) {
		var count int64
		err := tx.Model(&models.Workspace{}).Where("slug = ?", slug).Count(&count).Error
		if err != nil {
			return false, apperr.Internal(err)
		}
		return count > 0, nil
	})
}

// isUniqueViolation reports whether err is a uniqueness-constraint failure
// from any of the supported drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key value")
}

// withSlugRetry runs fn and retries exactly once when it hits a uniqueness
// violation: two concurrent allocations can race between the pre-check and
// the insert. After the single retry the conflict is surfaced, not looped on.
func withSlugRetry(fn func() error) error {
	err := fn()
	if err == nil || !isUniqueViolation(err) {
		return err
	}
	if err = fn(); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("slug is already taken")
		}
		return err
	}
	return nil
}
