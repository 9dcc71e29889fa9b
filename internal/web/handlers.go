package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akyairhashvil/deepwork/internal/config"
	"github.com/akyairhashvil/deepwork/internal/database"
	"github.com/akyairhashvil/deepwork/internal/models"
	"github.com/akyairhashvil/deepwork/internal/stats"
)

type taskJSON struct {
	ID             int64     `json:"id"`
	UID            string    `json:"uid"`
	Name           string    `json:"name"`
	Description    *string   `json:"description"`
	DefaultMinutes int       `json:"defaultMinutes"`
	Color          string    `json:"color"`
	Archived       bool      `json:"archived"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toTaskJSON(t models.Task) taskJSON {
	return taskJSON{
		ID:             t.ID,
		UID:            t.UID,
		Name:           t.Name,
		Description:    t.Description,
		DefaultMinutes: t.DefaultMinutes,
		Color:          t.Color,
		Archived:       t.Archived,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

type sessionJSON struct {
	ID              int64     `json:"id"`
	UID             string    `json:"uid"`
	TaskID          int64     `json:"taskId"`
	DurationSeconds int       `json:"durationSeconds"`
	PlannedSeconds  *int      `json:"plannedSeconds"`
	Kind            string    `json:"kind"`
	CompletedAt     time.Time `json:"completedAt"`
}

func toSessionJSON(s models.Session) sessionJSON {
	return sessionJSON{
		ID:              s.ID,
		UID:             s.UID,
		TaskID:          s.TaskID,
		DurationSeconds: s.DurationSec,
		PlannedSeconds:  s.PlannedSec,
		Kind:            string(s.Kind),
		CompletedAt:     s.CompletedAt,
	}
}

type createTaskRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	DefaultMinutes int     `json:"defaultMinutes"`
	Color          string  `json:"color"`
}

type updateTaskRequest struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	DefaultMinutes *int    `json:"defaultMinutes"`
	Color          *string `json:"color"`
}

type createSessionRequest struct {
	TaskID      int64      `json:"taskId"`
	Minutes     int        `json:"minutes"`
	CompletedAt *time.Time `json:"completedAt"`
}

type targetRequest struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// fail maps store errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrInvalidInput):
		status = http.StatusBadRequest
	default:
		s.logger.Error("api request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid task id")
		return 0, false
	}
	return id, true
}

func (s *Server) filterRange(c *gin.Context) (string, time.Time, time.Time, bool) {
	filter := c.DefaultQuery("filter", config.FilterDay)
	from, to, err := stats.Range(filter, s.now())
	if err != nil {
		badRequest(c, err.Error())
		return "", time.Time{}, time.Time{}, false
	}
	return filter, from, to, true
}

func (s *Server) handleListTasks(c *gin.Context) {
	includeArchived := c.Query("archived") == "true"
	tasks, err := s.store.ListTasks(c.Request.Context(), includeArchived)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}
	respond(c, http.StatusOK, out)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := s.store.AddTask(c.Request.Context(), models.Task{
		Name:           req.Name,
		Description:    req.Description,
		DefaultMinutes: req.DefaultMinutes,
		Color:          req.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusCreated, toTaskJSON(task))
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	task, err := s.store.UpdateTask(c.Request.Context(), id, models.TaskUpdate{
		Name:           req.Name,
		Description:    req.Description,
		DefaultMinutes: req.DefaultMinutes,
		Color:          req.Color,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusOK, toTaskJSON(task))
}

func (s *Server) handleArchiveTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	archived, err := s.store.ToggleTaskArchive(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusOK, gin.H{"id": id, "archived": archived})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.store.DeleteTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (s *Server) handleListSessions(c *gin.Context) {
	filter, from, to, ok := s.filterRange(c)
	if !ok {
		return
	}
	sessions, err := s.store.SessionsBetween(c.Request.Context(), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionJSON(sess))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "filter": filter, "data": out})
}

// handleCreateSession records a manual session.
func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Minutes <= 0 {
		badRequest(c, "minutes must be positive")
		return
	}
	sess := models.Session{
		TaskID:      req.TaskID,
		DurationSec: req.Minutes * 60,
		Kind:        models.SessionManual,
	}
	if req.CompletedAt != nil {
		sess.CompletedAt = *req.CompletedAt
	} else {
		sess.CompletedAt = s.now()
	}
	saved, err := s.store.AddSession(c.Request.Context(), sess)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusCreated, toSessionJSON(saved))
}

func (s *Server) handleGetTarget(c *gin.Context) {
	date := c.DefaultQuery("date", stats.DateKey(s.now()))
	target, err := s.store.GetDailyTarget(c.Request.Context(), date)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"date": target.Date, "targetMinutes": target.TargetMinutes})
}

func (s *Server) handleSetTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Date == "" {
		req.Date = stats.DateKey(s.now())
	}
	target, err := s.store.SetDailyTarget(c.Request.Context(), req.Date, req.Minutes)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.changed(c)
	respond(c, http.StatusOK, gin.H{"date": target.Date, "targetMinutes": target.TargetMinutes})
}

type statsResponse struct {
	Filter        string          `json:"filter"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalSeconds  int             `json:"totalSeconds"`
	TodaySeconds  int             `json:"todaySeconds"`
	TargetMinutes int             `json:"targetMinutes"`
	Progress      float64         `json:"progress"`
	Tasks         []taskTotalJSON `json:"tasks"`
	Days          []dayJSON       `json:"days"`
	Streak        map[string]int  `json:"streak"`
}

type taskTotalJSON struct {
	TaskID   int64  `json:"taskId"`
	Name     string `json:"name"`
	Seconds  int    `json:"seconds"`
	Sessions int    `json:"sessions"`
}

type dayJSON struct {
	Date          string `json:"date"`
	Seconds       int    `json:"seconds"`
	TargetMinutes int    `json:"targetMinutes"`
	Level         int    `json:"level"`
}

func (s *Server) handleStats(c *gin.Context) {
	filter, from, to, ok := s.filterRange(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	now := s.now()
	tasks, err := s.store.ListTasks(ctx, true)
	if err != nil {
		s.fail(c, err)
		return
	}
	sessions, err := s.store.SessionsBetween(ctx, from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	stored, err := s.store.ListDailyTargets(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}
	targets := make(map[string]int, len(stored))
	for date, t := range stored {
		targets[date] = t.TargetMinutes
	}
	inRange := stats.FilterSessions(sessions, from, to)
	today := stats.TodayFocus(sessions, now)
	todayTarget := targets[stats.DateKey(now)]

	resp := statsResponse{
		Filter:        filter,
		From:          from,
		To:            to,
		TotalSeconds:  stats.Total(inRange),
		TodaySeconds:  today,
		TargetMinutes: todayTarget,
		Progress:      stats.ProgressRatio(today, todayTarget),
		Tasks:         []taskTotalJSON{},
		Days:          []dayJSON{},
	}
	for _, t := range stats.GroupByTask(inRange, tasks) {
		resp.Tasks = append(resp.Tasks, taskTotalJSON{TaskID: t.TaskID, Name: t.TaskName, Seconds: t.Seconds, Sessions: t.Sessions})
	}
	days, err := stats.Heatmap(inRange, targets, filter, now)
	if err != nil {
		s.fail(c, err)
		return
	}
	for _, d := range days {
		resp.Days = append(resp.Days, dayJSON{Date: d.Date, Seconds: d.Seconds, TargetMinutes: d.TargetMinutes, Level: int(d.Level)})
	}
	current, longest := stats.Streak(upTo(days, stats.DateKey(now)))
	resp.Streak = map[string]int{"current": current, "longest": longest}
	respond(c, http.StatusOK, resp)
}

// upTo drops days after today so future days do not break the streak.
func upTo(days []stats.HeatDay, today string) []stats.HeatDay {
	for i, d := range days {
		if d.Date == today {
			return days[:i+1]
		}
	}
	return days
}
