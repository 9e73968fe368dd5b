package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

func TestSnapshotNumbersVersionsSequentially(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")

	prompt, err := CreatePrompt(owner.ID, CreatePromptInput{Title: "Doc", WorkspaceID: ws.ID})
	assert.NoError(t, err)
	assert.Equal(t, 1, prompt.CurrentVersion)

	_, err = CreateBlock(prompt.ID, owner.ID, textBlock("body"))
	assert.NoError(t, err)

	v2, err := SnapshotPrompt(prompt.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	v3, err := SnapshotPrompt(prompt.ID, owner.ID)
	assert.NoError(t, err)
	assert.Equal(t, 3, v3.Version)

	var reloaded models.Prompt
	database.DB.First(&reloaded, prompt.ID)
	assert.Equal(t, 3, reloaded.CurrentVersion)

	var count int64
	database.DB.Model(&models.PromptVersion{}).Where("prompt_id = ?", prompt.ID).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestDuplicateResetsFlagsAndSkipsLineage(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")

	source, err := CreatePrompt(owner.ID, CreatePromptInput{
		Title:       "Doc",
		WorkspaceID: ws.ID,
		IsPublic:    true,
		IsTemplate:  true,
	})
	assert.NoError(t, err)
	_, err = CreateBlock(source.ID, owner.ID, textBlock("body"))
	assert.NoError(t, err)

	copy, err := DuplicatePrompt(source.ID, owner.ID)
	assert.NoError(t, err)

	// Duplicates always start private and non-template, with no lineage.
	assert.Equal(t, "doc-copy", copy.Slug)
	assert.False(t, copy.IsPublic)
	assert.False(t, copy.IsTemplate)
	assert.Nil(t, copy.ParentID)
	assert.Equal(t, 1, copy.CurrentVersion)

	var blocks []models.Block
	database.DB.Where("prompt_id = ?", copy.ID).Order("position asc").Find(&blocks)
	assert.Len(t, blocks, 1)

	var source2 models.Prompt
	database.DB.First(&source2, source.ID)
	assert.Equal(t, 0, source2.ForkCount)
}

func TestForkRecordsLineageCountAndActivity(t *testing.T) {
	setupTestDB()

	ownerA := seedUser("owner-a")
	userC := seedUser("user-c")
	w1 := seedWorkspace(ownerA, "One", "one")
	w2 := seedWorkspace(userC, "Two", "two")
	seedMember(w1, userC, models.RoleViewer)

	source, err := CreatePrompt(ownerA.ID, CreatePromptInput{Title: "Report", WorkspaceID: w1.ID})
	assert.NoError(t, err)
	_, err = CreateBlock(source.ID, ownerA.ID, textBlock("body"))
	assert.NoError(t, err)

	fork, err := ForkPrompt(source.ID, userC.ID, &w2.ID)
	assert.NoError(t, err)

	assert.Equal(t, w2.ID, fork.WorkspaceID)
	assert.NotNil(t, fork.ParentID)
	assert.Equal(t, source.ID, *fork.ParentID)
	assert.Equal(t, "report", fork.Slug)
	assert.False(t, fork.IsPublic)

	var reloaded models.Prompt
	database.DB.First(&reloaded, source.ID)
	assert.Equal(t, 1, reloaded.ForkCount)

	var activity models.Activity
	err = database.DB.Where("action = ?", models.ActivityFork).First(&activity).Error
	assert.NoError(t, err)
	var metadata map[string]interface{}
	assert.NoError(t, json.Unmarshal(activity.Metadata, &metadata))
	assert.EqualValues(t, source.ID, metadata["source_prompt_id"])
	assert.EqualValues(t, fork.ID, metadata["fork_prompt_id"])

	// The fork's initial version embeds the exact source version forked from.
	var version models.PromptVersion
	err = database.DB.Where("prompt_id = ? AND version = ?", fork.ID, 1).First(&version).Error
	assert.NoError(t, err)
	var content map[string]interface{}
	assert.NoError(t, json.Unmarshal(version.Content, &content))
	forkedFrom, ok := content["forked_from"].(map[string]interface{})
	assert.True(t, ok)
	assert.EqualValues(t, source.ID, forkedFrom["prompt_id"])
	assert.EqualValues(t, source.CurrentVersion, forkedFrom["version"])
}

func TestForkRequiresEditorInTargetWorkspace(t *testing.T) {
	setupTestDB()

	ownerA := seedUser("owner-a")
	ownerB := seedUser("owner-b")
	viewer := seedUser("viewer")
	w1 := seedWorkspace(ownerA, "One", "one")
	w2 := seedWorkspace(ownerB, "Two", "two")
	seedMember(w2, viewer, models.RoleViewer)

	source, err := CreatePrompt(ownerA.ID, CreatePromptInput{Title: "Report", WorkspaceID: w1.ID, IsPublic: true})
	assert.NoError(t, err)

	// Readable source, but only VIEWER in the target.
	_, err = ForkPrompt(source.ID, viewer.ID, &w2.ID)
	assert.Equal(t, apperr.CodePermission, apperr.CodeOf(err))

	// No standing in the target at all.
	_, err = ForkPrompt(source.ID, ownerA.ID, &w2.ID)
	assert.Equal(t, apperr.CodePermission, apperr.CodeOf(err))
}

func TestForkIsAllOrNothing(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")

	source, err := CreatePrompt(owner.ID, CreatePromptInput{Title: "Report", WorkspaceID: ws.ID})
	assert.NoError(t, err)

	// Break the activity step; everything before it must roll back.
	assert.NoError(t, database.DB.Migrator().DropTable(&models.Activity{}))

	_, err = ForkPrompt(source.ID, owner.ID, nil)
	assert.Error(t, err)

	var reloaded models.Prompt
	database.DB.First(&reloaded, source.ID)
	assert.Equal(t, 0, reloaded.ForkCount, "a failed fork must not leave an incremented counter")

	var orphans int64
	database.DB.Model(&models.Prompt{}).Where("parent_id = ?", source.ID).Count(&orphans)
	assert.EqualValues(t, 0, orphans, "a failed fork must not leave an orphan prompt")
}

func TestForkInvalidatesSourceCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")
	source := seedPrompt(ws, owner, "Public", "public", true)

	cached, err := GetPrompt("team", "public", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, cached.ForkCount)
	assert.True(t, mr.Exists("prompt:team:public"))

	_, err = ForkPrompt(source.ID, owner.ID, nil)
	assert.NoError(t, err)
	assert.False(t, mr.Exists("prompt:team:public"))

	// The next read sees the incremented counter, not the stale cached row.
	fresh, err := GetPrompt("team", "public", 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, fresh.ForkCount)
}

func TestSnapshotInvalidatesCache(t *testing.T) {
	setupTestDB()
	mr := setupTestRedis()
	defer mr.Close()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")

	doc, err := CreatePrompt(owner.ID, CreatePromptInput{Title: "Public", WorkspaceID: ws.ID, IsPublic: true})
	assert.NoError(t, err)

	cached, err := GetPrompt("team", "public", 0)
	assert.NoError(t, err)
	assert.Equal(t, 1, cached.CurrentVersion)
	assert.True(t, mr.Exists("prompt:team:public"))

	_, err = SnapshotPrompt(doc.ID, owner.ID)
	assert.NoError(t, err)
	assert.False(t, mr.Exists("prompt:team:public"))

	fresh, err := GetPrompt("team", "public", 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, fresh.CurrentVersion)
}

func TestParentIDOutlivesSourceDeletion(t *testing.T) {
	setupTestDB()

	owner := seedUser("owner")
	ws := seedWorkspace(owner, "Team", "team")

	source, err := CreatePrompt(owner.ID, CreatePromptInput{Title: "Report", WorkspaceID: ws.ID})
	assert.NoError(t, err)
	fork, err := ForkPrompt(source.ID, owner.ID, nil)
	assert.NoError(t, err)

	// Deleting the origin must not cascade to forks.
	assert.NoError(t, DeletePrompt(source.ID, owner.ID))

	var reloaded models.Prompt
	assert.NoError(t, database.DB.First(&reloaded, fork.ID).Error)
	assert.NotNil(t, reloaded.ParentID)
	assert.Equal(t, source.ID, *reloaded.ParentID)
}
