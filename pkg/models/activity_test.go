package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityMetadata_EncodeDecode(t *testing.T) {
	taskID := uuid.New()

	data, err := EncodeActivityMetadata(ActivityTaskDeleted, TaskDeletedMetadata{TaskID: taskID, Title: "Ship v1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"taskId":"`+taskID.String()+`","title":"Ship v1"}`, string(data))

	meta, err := DecodeActivityMetadata(ActivityTaskDeleted, data)
	require.NoError(t, err)
	deleted, ok := meta.(TaskDeletedMetadata)
	require.True(t, ok, "expected TaskDeletedMetadata, got %T", meta)
	assert.Equal(t, "Ship v1", deleted.Title)
	assert.Equal(t, taskID, deleted.TaskID)
}

func TestEncodeActivityMetadata_RejectsMismatchedType(t *testing.T) {
	_, err := EncodeActivityMetadata(ActivityTaskCreated, StatusChangedMetadata{OldStatus: StatusTodo, NewStatus: StatusDone})
	assert.Error(t, err)
}

func TestDecodeActivityMetadata_EmptyAndUnknown(t *testing.T) {
	meta, err := DecodeActivityMetadata(ActivityTaskUpdated, nil)
	require.NoError(t, err)
	assert.Nil(t, meta)

	_, err = DecodeActivityMetadata(ActivityType("TASK_ARCHIVED"), []byte(`{}`))
	assert.Error(t, err)
}

func TestProjectRole_Predicates(t *testing.T) {
	assert.True(t, ProjectRoleOwner.CanManage())
	assert.True(t, ProjectRoleAdmin.CanManage())
	assert.False(t, ProjectRoleMember.CanManage())
	assert.True(t, ProjectRoleMember.IsParticipant())
	assert.False(t, ProjectRoleNone.IsParticipant())
}

func TestEnums_IsValid(t *testing.T) {
	assert.True(t, PriorityUrgent.IsValid())
	assert.False(t, TaskPriority("CRITICAL").IsValid())
	assert.True(t, StatusInProgress.IsValid())
	assert.False(t, TaskStatus("ARCHIVED").IsValid())
	assert.True(t, MemberRoleAdmin.IsValid())
	assert.False(t, MemberRole("OWNER").IsValid())
	assert.True(t, InvitationRevoked.IsTerminal())
	assert.False(t, InvitationPending.IsTerminal())
}
