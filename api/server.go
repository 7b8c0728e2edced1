package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	"github.com/ukane-philemon/reportcard/internal/auth"
	"github.com/ukane-philemon/reportcard/internal/student"
	"github.com/xeipuuv/gojsonschema"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// maxImportBytes caps the in-memory part of uploaded workbooks.
const maxImportBytes = 32 << 20

type Server struct {
	repo             student.Repository
	authManager      *auth.Manager
	addStudentSchema *gojsonschema.Schema
}

// NewRouter returns the HTTP handler for the student records API. Each client
// IP may send requestsPerMinute requests per minute.
func NewRouter(repo student.Repository, authManager *auth.Manager, requestsPerMinute int) (http.Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(addStudentSchema))
	if err != nil {
		return nil, fmt.Errorf("gojsonschema.NewSchema error: %w", err)
	}

	s := &Server{
		repo:             repo,
		authManager:      authManager,
		addStudentSchema: schema,
	}

	chiMux := chi.NewMux()
	chiMux.Use(middleware.Logger)
	chiMux.Use(middleware.Recoverer)
	chiMux.Use(httprate.LimitByIP(requestsPerMinute, time.Minute))
	chiMux.Use(AuthMiddleware(authManager))

	chiMux.Post("/login", s.login)
	chiMux.Post("/students", s.addStudent)
	chiMux.Post("/students/import", s.importStudents)
	chiMux.Get("/students/{rollNo}", s.student)

	return chiMux, nil
}
