package controller

import (
	"encoding/json"
	"net/http"

	"github.com/SaiNageswarS/go-api-boot/server"

	"github.com/sachin-patro/starting-ragchatbot-codebase/middleware"
	"github.com/sachin-patro/starting-ragchatbot-codebase/rag"
)

type CourseController struct {
	system *rag.System
	auth   *middleware.APIKeyAuth
}

func ProvideCourseController(system *rag.System, auth *middleware.APIKeyAuth) *CourseController {
	return &CourseController{system: system, auth: auth}
}

// HandleCourseStats returns the titles and count of every indexed course.
func (cc *CourseController) HandleCourseStats(w http.ResponseWriter, r *http.Request) {
	stats, err := cc.system.Analytics(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch course stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

func (cc *CourseController) Routes() []server.Route {
	return []server.Route{
		{
			Pattern: "/api/courses",
			Method:  http.MethodGet,
			Handler: cc.auth.Wrap(cc.HandleCourseStats),
		},
	}
}
