package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/internal/wire"
)

// errInvalid marks a request the server refuses to pass to the backend.
var errInvalid = errors.New("invalid request")

func invalid(msg string) error {
	return &invalidError{msg: msg}
}

type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return errInvalid }

func respondData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondWrite(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"results": []gin.H{{"success": true, "data": data}},
	})
}

func respondDeleted(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": []gin.H{{"success": true, "message": "deleted"}},
	})
}

// respondError maps err to a status and envelope code.
func (s *Server) respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, wire.CodeInternal
	message := "internal error"
	switch {
	case errors.Is(err, store.ErrNotFound):
		status, code, message = http.StatusNotFound, wire.CodeNotFound, err.Error()
	case errors.Is(err, store.ErrUnknownCategory):
		status, code, message = http.StatusUnprocessableEntity, wire.CodeUnknownCategory, err.Error()
	case errors.Is(err, errInvalid):
		status, code, message = http.StatusBadRequest, wire.CodeInvalid, err.Error()
	default:
		s.logger.Error("backend error", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"success": false, "code": code, "message": message})
}

// paramID parses the :id route parameter.
func paramID(c *gin.Context) (model.ID, error) {
	id, err := model.ParseID(c.Param("id"))
	if err != nil || !id.IsSet() {
		return model.NoID, invalid("invalid id " + c.Param("id"))
	}
	return id, nil
}

func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return invalid("malformed body: " + err.Error())
	}
	return nil
}

// === Tasks ===

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.backend.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	task, err := s.backend.GetTask(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, task)
}

func (s *Server) createTask(c *gin.Context) {
	var task model.Task
	if err := bind(c, &task); err != nil {
		s.respondError(c, err)
		return
	}
	if strings.TrimSpace(task.Title) == "" {
		s.respondError(c, invalid("title is required"))
		return
	}
	if task.Priority != "" && !task.Priority.Valid() {
		s.respondError(c, invalid("unknown priority "+string(task.Priority)))
		return
	}
	task.ID = model.NoID

	created, err := s.backend.CreateTask(c.Request.Context(), task)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusCreated, created)
}

func (s *Server) updateTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var patch model.TaskPatch
	if err := bind(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	if err := validateTaskPatch(patch); err != nil {
		s.respondError(c, err)
		return
	}
	s.patchTask(c, id, patch)
}

func (s *Server) completeTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.patchTask(c, id, model.TaskPatch{Status: model.Ptr(model.StatusCompleted)})
}

func (s *Server) reopenTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.patchTask(c, id, model.TaskPatch{Status: model.Ptr(model.StatusPending)})
}

func (s *Server) patchTask(c *gin.Context, id model.ID, patch model.TaskPatch) {
	task, err := s.backend.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.backend.DeleteTask(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

func validateTaskPatch(p model.TaskPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title must not be blank")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("unknown priority " + string(*p.Priority))
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown status " + string(*p.Status))
	}
	return nil
}

// === Categories ===

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.backend.ListCategories(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, categories)
}

func (s *Server) getCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	category, err := s.backend.GetCategory(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, category)
}

func (s *Server) createCategory(c *gin.Context) {
	var category model.Category
	if err := bind(c, &category); err != nil {
		s.respondError(c, err)
		return
	}
	if strings.TrimSpace(category.Name) == "" {
		s.respondError(c, invalid("name is required"))
		return
	}
	category.ID = model.NoID

	created, err := s.backend.CreateCategory(c.Request.Context(), category)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusCreated, created)
}

func (s *Server) updateCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var patch model.CategoryPatch
	if err := bind(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		s.respondError(c, invalid("name must not be blank"))
		return
	}
	category, err := s.backend.UpdateCategory(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusOK, category)
}

// deleteCategory removes the category; the backend detaches its tasks.
func (s *Server) deleteCategory(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.backend.DeleteCategory(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}

// === Templates ===

func (s *Server) listTemplates(c *gin.Context) {
	templates, err := s.backend.ListTemplates(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, templates)
}

func (s *Server) getTemplate(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	tpl, err := s.backend.GetTemplate(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondData(c, tpl)
}

func (s *Server) createTemplate(c *gin.Context) {
	var tpl model.Template
	if err := bind(c, &tpl); err != nil {
		s.respondError(c, err)
		return
	}
	tpl.ID = model.NoID

	created, err := s.backend.CreateTemplate(c.Request.Context(), tpl)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusCreated, created)
}

func (s *Server) updateTemplate(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var patch model.TemplatePatch
	if err := bind(c, &patch); err != nil {
		s.respondError(c, err)
		return
	}
	tpl, err := s.backend.UpdateTemplate(c.Request.Context(), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondWrite(c, http.StatusOK, tpl)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	id, err := paramID(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.backend.DeleteTemplate(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	respondDeleted(c)
}
