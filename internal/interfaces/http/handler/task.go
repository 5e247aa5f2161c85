package handler

import (
	"github.com/gin-gonic/gin"
	workflowapp "github.com/stockcore/backend/internal/application/workflow"
)

// TaskHandler handles task API endpoints
type TaskHandler struct {
	BaseHandler
	taskService *workflowapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *workflowapp.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes registers task routes
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	{
		tasks.GET("", h.List)
		tasks.POST("/:id/complete", h.Complete)
	}
}

// List lists the work items created by the automations
func (h *TaskHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Tenant could not be resolved")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tasks)
}

// Complete marks a task as done
func (h *TaskHandler) Complete(c *gin.Context) {
	tenantID, taskID, ok := h.bindTenantAndID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Complete(c.Request.Context(), tenantID, taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}
