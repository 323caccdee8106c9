package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"clearTask/internal/handlers/dto"
	"clearTask/internal/logger"
	"clearTask/internal/models/task"
	"clearTask/internal/service"
	"clearTask/internal/view"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

type TaskHandler struct {
	Store TaskStore
	now   func() time.Time
}

func NewTaskHandler(store TaskStore) TaskHandler {
	return TaskHandler{
		Store: store,
		now:   time.Now,
	}
}

// ListTasks serves GET /tasks?search=&filter=&sort=&lang=
func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q := r.URL.Query()

	filter, err := view.ParseFilter(q.Get("filter"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("querry", "filter"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	sortKey, err := view.ParseSort(q.Get("sort"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("querry", "sort"),
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	all := s.Store.Tasks()
	projected := view.Project(all, view.Query{
		Search: q.Get("search"),
		Filter: filter,
		Sort:   sortKey,
		Locale: requestLocale(r),
	})

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(projected)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.TaskListResponse{
		Tasks: dto.FromTaskList(projected, s.now()),
		Count: len(projected),
		Stats: view.Count(all),
	})
}

func (s *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")
	responseWithData(w, http.StatusOK, s.Store.Stats())
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	priority, err := task.ParsePriority(request.Priority)
	if err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "priority"),
			zap.String("error", "wrong_value"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := task.Draft{
		Title:       request.Title,
		Description: request.Description,
		Priority:    priority,
		Completed:   request.Completed,
		Pinned:      request.Pinned,
	}
	if request.DueDate != nil && strings.TrimSpace(*request.DueDate) != "" {
		due, err := task.ParseDueDate(*request.DueDate)
		if err != nil {
			logger.Warn("HTTP: Ошибка валидации",
				zap.String("field", "dueDate"),
				zap.String("error", "wrong_value"),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		draft.DueDate = &due
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	created, err := s.Store.Create(r.Context(), draft)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithData(w, http.StatusCreated, dto.FromTask(created, s.now()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, found := s.Store.Get(id)
	if !found {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(t, s.now()))
}

func (s *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	opts, err := updateOptions(request)
	if err != nil {
		handleBusinessError(w, err)
		return
	}

	logger.Info("HTTP: запрос к сервису обновления данных")
	updated, found, err := s.Store.Update(r.Context(), id, opts...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}
	if !found {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithData(w, http.StatusOK, dto.FromTask(updated, s.now()))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if !s.Store.Delete(r.Context(), id) {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) DuplicateTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	dup, found := s.Store.Duplicate(r.Context(), id)
	if !found {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}
	responseWithData(w, http.StatusCreated, dto.FromTask(dup, s.now()))
}

func (s *TaskHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, found := s.Store.TogglePin(r.Context(), id)
	if !found {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(t, s.now()))
}

func (s *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, found := s.Store.ToggleComplete(r.Context(), id)
	if !found {
		handleBusinessError(w, service.NewNotFound("task", id))
		return
	}
	responseWithData(w, http.StatusOK, dto.FromTask(t, s.now()))
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "empty id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return "", false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}
	return true
}

func updateOptions(req dto.UpdateTaskRequest) ([]task.TaskOption, error) {
	var opts []task.TaskOption

	if req.Title != nil {
		opts = append(opts, task.WithTitle(*req.Title))
	}
	if req.Description != nil {
		opts = append(opts, task.WithDescription(*req.Description))
	}
	if req.Priority != nil {
		p, err := task.ParsePriority(*req.Priority)
		if err != nil || *req.Priority == "" {
			return nil, service.NewValidationError("priority", "допустимо low, medium или high")
		}
		opts = append(opts, task.WithPriority(p))
	}
	if req.DueDate != nil {
		var due time.Time
		if *req.DueDate != "" {
			parsed, err := task.ParseDueDate(*req.DueDate)
			if err != nil {
				return nil, service.NewValidationError("dueDate", "ожидается дата RFC3339 или YYYY-MM-DDTHH:MM")
			}
			due = parsed
		}
		opts = append(opts, task.WithDueDate(due))
	}
	if req.Completed != nil {
		opts = append(opts, task.WithCompleted(*req.Completed))
	}
	if req.Pinned != nil {
		opts = append(opts, task.WithPinned(*req.Pinned))
	}
	return opts, nil
}

// requestLocale picks the collation language from ?lang= or Accept-Language.
func requestLocale(r *http.Request) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if tag, err := language.Parse(lang); err == nil {
			return tag
		}
	}
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err == nil && len(tags) > 0 {
		return tags[0]
	}
	return language.English
}
