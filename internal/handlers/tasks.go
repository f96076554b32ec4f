package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/habithome/habithome-api/internal/apperr"
	"github.com/habithome/habithome-api/internal/middleware"
	"github.com/habithome/habithome-api/internal/models"
	"github.com/habithome/habithome-api/internal/resp"
	"github.com/habithome/habithome-api/internal/services"
)

// GetTasks lists tasks of ?familyId or of all the caller's families, sorted
// by ?sort when given.
func (h *Handler) GetTasks(c *fiber.Ctx) error {
	locale := resp.Locale(c)

	var familyID *uuid.UUID
	if raw := c.Query("familyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return resp.Fail(c, apperr.BadRequest(apperr.KeyInvalidID), locale)
		}
		familyID = &id
	}
	sortBy, err := services.ParseSortOption(c.Query("sort"))
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	tasks, err := h.tasks.List(c.UserContext(), middleware.GetUserID(c), familyID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	services.SortTasks(tasks, sortBy, time.Now())
	return resp.OK(c, models.TaskViews(tasks))
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	taskID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	task, err := h.tasks.Get(c.UserContext(), middleware.GetUserID(c), taskID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}
	return resp.OK(c, task.View())
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	var req models.CreateTaskRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	task, err := h.tasks.Create(ctx, actor.ID, services.CreateTaskInput{
		FamilyID:     req.FamilyID,
		Title:        req.Title,
		Description:  req.Description,
		Points:       req.Points,
		Category:     req.Category,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.taskCreated(ctx, actor, task)
	return resp.Created(c, task.View())
}

func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	taskID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, resp.Locale(c))
	}

	var req models.UpdateTaskRequest
	locale, err := bind(c, &req, &req.Locale)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	res, err := h.tasks.Update(ctx, actor.ID, taskID, services.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		Points:       req.Points,
		Category:     req.Category,
		Priority:     req.Priority,
		Status:       req.Status,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.taskChanged(ctx, actor, res)
	return resp.OK(c, res.Task.View())
}

func (h *Handler) CompleteTask(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	taskID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	res, err := h.tasks.Complete(ctx, actor.ID, taskID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.taskChanged(ctx, actor, res)
	return resp.OK(c, res.Task.View())
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	locale := resp.Locale(c)
	taskID, err := paramUUID(c, "id")
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	ctx := c.UserContext()
	actor, _ := middleware.GetIdentity(c)
	task, err := h.tasks.Delete(ctx, actor.ID, taskID)
	if err != nil {
		return resp.Fail(c, err, locale)
	}

	h.taskDeleted(ctx, actor, task)
	return resp.OK(c, fiber.Map{"id": task.ID})
}
