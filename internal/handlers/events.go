package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/auth"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/services"
)

// Side effects of successful writes. Failures are logged, never returned.

func (h *Handler) logActivity(ctx context.Context, familyID, userID uuid.UUID, actionType string, targetID *uuid.UUID, metadata map[string]interface{}) {
	if err := h.activity.Log(ctx, familyID, userID, actionType, targetID, metadata); err != nil {
		h.log.WithError(err).WithField("action", actionType).Warn("failed to log activity")
	}
}

func (h *Handler) notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	if _, err := h.notifications.Notify(ctx, userID, notifType, title, body, metadata); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("failed to create notification")
	}
}

// notifyFamilyMembers notifies every member of a family except the actor
func (h *Handler) notifyFamilyMembers(ctx context.Context, familyID, excludeUserID uuid.UUID, notifType, title, body string, metadata map[string]interface{}) {
	ids, err := h.families.MemberIDs(ctx, familyID)
	if err != nil {
		h.log.WithError(err).WithField("family_id", familyID).Warn("failed to load family members")
		return
	}
	h.notifications.NotifyMany(ctx, ids, excludeUserID, notifType, title, body, metadata)
}

func (h *Handler) familyCreated(ctx context.Context, actor auth.Identity, family *models.Family) {
	h.logActivity(ctx, family.ID, actor.ID, models.ActionFamilyCreated, &family.ID, map[string]interface{}{
		"name": family.Name,
	})
}

func (h *Handler) memberJoined(ctx context.Context, actor auth.Identity, family *models.Family) {
	h.logActivity(ctx, family.ID, actor.ID, models.ActionMemberJoined, &actor.ID, map[string]interface{}{
		"name": actor.Name,
	})
	h.notifyFamilyMembers(ctx, family.ID, actor.ID, models.NotificationMemberJoined,
		"New family member",
		fmt.Sprintf("%s joined %s", actor.Name, family.Name),
		map[string]interface{}{"familyId": family.ID.String()},
	)
	h.hub.Broadcast(family.ID, actor.ID, WSEvent{
		Type:     EventMemberJoined,
		FamilyID: family.ID.String(),
		UserID:   actor.ID.String(),
		Data:     map[string]interface{}{"name": actor.Name},
	})
}

// memberLeft records userID leaving familyID. removedBy is nil when the user
// left on their own.
func (h *Handler) memberLeft(ctx context.Context, familyID, userID uuid.UUID, removedBy *uuid.UUID) {
	var metadata map[string]interface{}
	actor := userID
	if removedBy != nil {
		metadata = map[string]interface{}{"removedBy": removedBy.String()}
		actor = *removedBy
	}
	h.logActivity(ctx, familyID, userID, models.ActionMemberLeft, &userID, metadata)
	h.hub.Broadcast(familyID, actor, WSEvent{
		Type:     EventMemberLeft,
		FamilyID: familyID.String(),
		UserID:   userID.String(),
	})
	h.hub.Disconnect(familyID, userID)
}

func taskMetadata(task *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"familyId": task.FamilyID.String(),
		"taskId":   task.ID.String(),
		"title":    task.Title,
	}
}

func (h *Handler) assigned(ctx context.Context, actor auth.Identity, task *models.Task) {
	if task.AssignedToID == nil || *task.AssignedToID == actor.ID {
		return
	}
	h.notify(ctx, *task.AssignedToID, models.NotificationTaskAssigned,
		"New task assigned",
		fmt.Sprintf("%s assigned you \"%s\"", actor.Name, task.Title),
		taskMetadata(task),
	)
}

func (h *Handler) taskCreated(ctx context.Context, actor auth.Identity, task *models.Task) {
	h.logActivity(ctx, task.FamilyID, actor.ID, models.ActionTaskCreated, &task.ID, taskMetadata(task))
	h.assigned(ctx, actor, task)
	h.broadcastTask(actor, EventTaskCreated, task)
}

func (h *Handler) taskChanged(ctx context.Context, actor auth.Identity, res *services.TaskResult) {
	task := res.Task
	meta := taskMetadata(task)

	if !res.Completed {
		h.logActivity(ctx, task.FamilyID, actor.ID, models.ActionTaskUpdated, &task.ID, meta)
		if res.Reassigned {
			h.assigned(ctx, actor, task)
		}
		h.broadcastTask(actor, EventTaskUpdated, task)
		return
	}

	if res.Grant != nil {
		meta["points"] = res.Grant.Points
	}
	h.logActivity(ctx, task.FamilyID, actor.ID, models.ActionTaskCompleted, &task.ID, meta)
	if res.Reassigned {
		h.assigned(ctx, actor, task)
	}
	if task.CreatedByID != actor.ID {
		h.notify(ctx, task.CreatedByID, models.NotificationTaskCompleted,
			"Task completed",
			fmt.Sprintf("%s completed \"%s\"", actor.Name, task.Title),
			meta,
		)
	}
	h.broadcastTask(actor, EventTaskCompleted, task)
}

func (h *Handler) taskDeleted(ctx context.Context, actor auth.Identity, task *models.Task) {
	h.logActivity(ctx, task.FamilyID, actor.ID, models.ActionTaskDeleted, &task.ID, taskMetadata(task))
	h.hub.Broadcast(task.FamilyID, actor.ID, WSEvent{
		Type:     EventTaskDeleted,
		FamilyID: task.FamilyID.String(),
		UserID:   actor.ID.String(),
		Data:     map[string]interface{}{"taskId": task.ID.String()},
	})
}

func (h *Handler) broadcastTask(actor auth.Identity, eventType string, task *models.Task) {
	h.hub.Broadcast(task.FamilyID, actor.ID, WSEvent{
		Type:     eventType,
		FamilyID: task.FamilyID.String(),
		UserID:   actor.ID.String(),
		Data:     task.View(),
	})
}
