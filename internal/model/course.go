package model

import "time"

// Course is what the API calls a subject.
type Course struct {
	ID          int64     `json:"id"`
	CenterID    int64     `json:"center_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Enrollment is unique per (student, course).
type Enrollment struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}
