package models

import "time"

// Schedule is one published timetable. IsLocked gates submission of new
// change requests against any of its allocations; it does not block
// review of requests already pending.
type Schedule struct {
	ID        string    `db:"id" json:"id"`
	Term      string    `db:"term" json:"term"`
	IsLocked  bool      `db:"is_locked" json:"is_locked"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
