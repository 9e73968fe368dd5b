package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"promptvault-backend/internal/models"
)

func TestResolveRole(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	viewer := seedUser("viewer")
	outsider := seedUser("outsider")
	ws := seedWorkspace(owner, "Team", "team")
	seedMember(ws, viewer, models.RoleViewer)

	role, err := ResolveRole(owner.ID, &ws)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleOwner, role)

	role, err = ResolveRole(viewer.ID, &ws)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleViewer, role)

	role, err = ResolveRole(outsider.ID, &ws)
	assert.NoError(t, err)
	assert.Empty(t, role)

	// Anonymous caller has no role.
	role, err = ResolveRole(0, &ws)
	assert.NoError(t, err)
	assert.Empty(t, role)
}

func TestAuthorizeMatrix(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	viewer := seedUser("viewer")
	editor := seedUser("editor")
	outsider := seedUser("outsider")
	ws := seedWorkspace(owner, "Team", "team")
	seedMember(ws, viewer, models.RoleViewer)
	seedMember(ws, editor, models.RoleEditor)

	// VIEWER can read but not write.
	decision, err := Authorize(viewer.ID, &ws, ActionRead)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = Authorize(viewer.ID, &ws, ActionEdit)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInsufficientRole, decision.Reason)

	// EDITOR satisfies every action up to its rank.
	decision, err = Authorize(editor.ID, &ws, ActionEdit)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = Authorize(editor.ID, &ws, ActionManageMembers)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)

	// The owner passes everything.
	decision, err = Authorize(owner.ID, &ws, ActionManageWorkspace)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, models.RoleOwner, decision.EffectiveRole)

	decision, err = Authorize(outsider.ID, &ws, ActionRead)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonNotAMember, decision.Reason)
}

func TestAuthorizePromptPublicRead(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	public := seedPrompt(ws, owner, "Public", "public", true)
	private := seedPrompt(ws, owner, "Private", "private", false)

	// Public read is an alternate success path, even for anonymous callers.
	decision, err := AuthorizePrompt(0, &ws, &public, ActionRead)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = AuthorizePrompt(0, &ws, &private, ActionRead)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)

	// Public does not grant writes.
	decision, err = AuthorizePrompt(0, &ws, &public, ActionEdit)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestAuthorExceptionForMembers(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	author := seedUser("author")
	other := seedUser("other")
	ws := seedWorkspace(owner, "Team", "team")
	seedMember(ws, author, models.RoleMember)
	seedMember(ws, other, models.RoleMember)

	own := seedPrompt(ws, author, "Mine", "mine", false)

	// MEMBER edits content it authored.
	decision, err := AuthorizePrompt(author.ID, &ws, &own, ActionEdit)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	decision, err = AuthorizePrompt(author.ID, &ws, &own, ActionDelete)
	assert.NoError(t, err)
	assert.True(t, decision.Allowed)

	// But not content authored by someone else.
	decision, err = AuthorizePrompt(other.ID, &ws, &own, ActionEdit)
	assert.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonInsufficientRole, decision.Reason)
}

func TestRoleCeilingForAdmins(t *testing.T) {
	// ADMIN generally outranks EDITOR, yet may not touch another ADMIN or
	// the OWNER. The exception is a dedicated rule, not a rank comparison.
	decision := CanManageMember(models.RoleAdmin, models.RoleMember)
	assert.True(t, decision.Allowed)

	decision = CanManageMember(models.RoleAdmin, models.RoleAdmin)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonRoleCeiling, decision.Reason)

	decision = CanManageMember(models.RoleAdmin, models.RoleOwner)
	assert.False(t, decision.Allowed)
	assert.Equal(t, ReasonRoleCeiling, decision.Reason)

	decision = CanManageMember(models.RoleOwner, models.RoleAdmin)
	assert.True(t, decision.Allowed)

	decision = CanManageMember(models.RoleEditor, models.RoleMember)
	assert.False(t, decision.Allowed)
}
