package database

import (
	"fmt"
	"strings"
	"time"
)

const sessionColumns = "id, uid, task_id, duration_sec, planned_sec, kind, completed_at, created_at"

type SessionQuery struct {
	columns string
	filters []string
	args    []interface{}
	orderBy string
	limit   int
}

func NewSessionQuery() *SessionQuery {
	return &SessionQuery{columns: sessionColumns, orderBy: "completed_at ASC, id ASC"}
}

func (q *SessionQuery) Where(filter string, args ...interface{}) *SessionQuery {
	q.filters = append(q.filters, filter)
	q.args = append(q.args, args...)
	return q
}

func (q *SessionQuery) WhereTask(taskID int64) *SessionQuery {
	return q.Where("task_id = ?", taskID)
}

// WhereCompletedBetween keeps sessions completed in [from, to).
func (q *SessionQuery) WhereCompletedBetween(from, to time.Time) *SessionQuery {
	return q.Where("completed_at >= ? AND completed_at < ?", formatTime(from), formatTime(to))
}

func (q *SessionQuery) WhereKind(kind string) *SessionQuery {
	return q.Where("kind = ?", kind)
}

func (q *SessionQuery) OrderBy(orderBy string) *SessionQuery {
	q.orderBy = orderBy
	return q
}

func (q *SessionQuery) Limit(limit int) *SessionQuery {
	q.limit = limit
	return q
}

func (q *SessionQuery) Build() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM sessions", q.columns)
	if len(q.filters) > 0 {
		query += " WHERE " + strings.Join(q.filters, " AND ")
	}
	if q.orderBy != "" {
		query += " ORDER BY " + q.orderBy
	}
	if q.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.limit)
	}
	return query, q.args
}
