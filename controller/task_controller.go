package controller

import (
	"context"
	"net/http"
	"strconv"

	model "github.com/Itish41/Poligap/models"
	"github.com/Itish41/Poligap/repository"
	service "github.com/Itish41/Poligap/service"

	"github.com/gin-gonic/gin"
)

// TaskManager is the task workflow the routes expose.
type TaskManager interface {
	CreateTask(ctx context.Context, in service.TaskInput) (*model.Task, error)
	ListTasks(ctx context.Context, f repository.TaskFilter) ([]model.Task, error)
	UpdateTask(ctx context.Context, id string, upd service.TaskUpdate) (*model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	AddTaskFromGap(ctx context.Context, in service.GapTaskInput) (*service.AddTaskResult, error)
	AddTaskFromSuggestion(ctx context.Context, in service.SuggestionTaskInput) (*service.AddTaskResult, error)
}

type TaskController struct {
	service TaskManager
}

func NewTaskController(svc TaskManager) *TaskController {
	return &TaskController{service: svc}
}

// GetTasks handles GET /api/tasks?q=&status=&priority=&source=&limit=.
func (tc *TaskController) GetTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	tasks, err := tc.service.ListTasks(c.Request.Context(), repository.TaskFilter{
		Query:    c.Query("q"),
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Source:   c.Query("source"),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "total": len(tasks)})
}

func (tc *TaskController) CreateTask(c *gin.Context) {
	var in service.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	task, err := tc.service.CreateTask(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": task})
}

// UpdateTask handles PATCH /api/tasks?id=<id>.
func (tc *TaskController) UpdateTask(c *gin.Context) {
	id := taskID(c)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task id is required"})
		return
	}
	var upd service.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	task, err := tc.service.UpdateTask(c.Request.Context(), id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (tc *TaskController) DeleteTask(c *gin.Context) {
	id := taskID(c)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task id is required"})
		return
	}
	if err := tc.service.DeleteTask(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (tc *TaskController) AddFromGap(c *gin.Context) {
	var in service.GapTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	res, err := tc.service.AddTaskFromGap(c.Request.Context(), in)
	tc.respondAdded(c, res, err)
}

func (tc *TaskController) AddFromSuggestion(c *gin.Context) {
	var in service.SuggestionTaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	res, err := tc.service.AddTaskFromSuggestion(c.Request.Context(), in)
	tc.respondAdded(c, res, err)
}

// respondAdded answers a duplicate with 200 {success, deduped} so a double
// click is not reported as an error.
func (tc *TaskController) respondAdded(c *gin.Context, res *service.AddTaskResult, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	if res.Deduped {
		c.JSON(http.StatusOK, gin.H{"success": true, "deduped": true, "task": res.Task})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "deduped": false, "task": res.Task})
}

// taskID reads the id from the path or the ?id= query.
func taskID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Query("id")
}
