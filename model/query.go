package model

// QueryRequest represents an incoming chat query from the frontend
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// Source identifies where a retrieved passage came from so the UI can
// show attributions below the answer
type Source struct {
	Display string `json:"display"`        // e.g. "Introduction to MCP Servers - Lesson 2"
	Link    string `json:"link,omitempty"` // Lesson link when the catalog has one
}

// QueryResponse represents the answer produced for one user turn
type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id"`
}

// CourseStats summarizes the indexed corpus for the /api/courses endpoint
type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}
