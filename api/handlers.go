package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/ukane-philemon/reportcard/internal/db"
	customerror "github.com/ukane-philemon/reportcard/internal/errors"
	"github.com/ukane-philemon/reportcard/internal/importer"
	"github.com/xeipuuv/gojsonschema"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type addStudentRequest struct {
	RollNo json.Number    `json:"roll_no"`
	Name   string         `json:"name"`
	Marks  map[string]any `json:"marks"`
}

func (s *Server) login(res http.ResponseWriter, req *http.Request) {
	var body loginRequest
	err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxBodyBytes)).Decode(&body)
	if err != nil {
		writeError(res, fmt.Errorf("%w: invalid login request", db.ErrorInvalidRequest))
		return
	}

	token, err := s.authManager.Login(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, db.ErrorInvalidRequest) {
			writeJSON(res, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) addStudent(res http.ResponseWriter, req *http.Request) {
	if !reqAuthenticated(req.Context()) {
		writeError(res, &customerror.ErrorUnauthorized{})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(res, req.Body, maxBodyBytes))
	if err != nil {
		writeError(res, fmt.Errorf("%w: failed to read request body", db.ErrorInvalidEntry))
		return
	}

	rollNo, name, marks, err := s.decodeAddStudent(body)
	if err != nil {
		writeError(res, err)
		return
	}

	record, err := s.repo.Add(rollNo, name, marks)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusCreated, record)
}

// decodeAddStudent validates body against addStudentSchema and decodes it.
// Non-numeric mark values are returned as NaN.
func (s *Server) decodeAddStudent(body []byte) (int, string, map[string]float64, error) {
	result, err := s.addStudentSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return 0, "", nil, fmt.Errorf("%w: request body is not valid JSON", db.ErrorInvalidEntry)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return 0, "", nil, fmt.Errorf("%w: %s", db.ErrorInvalidEntry, strings.Join(errs, "; "))
	}

	var reqBody addStudentRequest
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&reqBody); err != nil {
		return 0, "", nil, fmt.Errorf("%w: %v", db.ErrorInvalidEntry, err)
	}

	rollNo, err := strconv.Atoi(reqBody.RollNo.String())
	if err != nil {
		return 0, "", nil, fmt.Errorf("%w: roll_no must be an integer", db.ErrorInvalidEntry)
	}

	marks := make(map[string]float64, len(reqBody.Marks))
	for subject, value := range reqBody.Marks {
		marks[subject] = math.NaN()
		if number, ok := value.(json.Number); ok {
			if mark, err := number.Float64(); err == nil {
				marks[subject] = mark
			}
		}
	}

	return rollNo, reqBody.Name, marks, nil
}

func (s *Server) student(res http.ResponseWriter, req *http.Request) {
	rollNo, err := strconv.Atoi(chi.URLParam(req, "rollNo"))
	if err != nil {
		writeError(res, fmt.Errorf("%w: roll number must be an integer", db.ErrorInvalidEntry))
		return
	}

	record, err := s.repo.Student(rollNo)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, record)
}

func (s *Server) importStudents(res http.ResponseWriter, req *http.Request) {
	if !reqAuthenticated(req.Context()) {
		writeError(res, &customerror.ErrorUnauthorized{})
		return
	}

	if err := req.ParseMultipartForm(maxImportBytes); err != nil {
		writeError(res, fmt.Errorf("%w: expected a multipart form", db.ErrorInvalidRequest))
		return
	}

	file, _, err := req.FormFile("file")
	if err != nil {
		writeError(res, fmt.Errorf("%w: missing file field", db.ErrorInvalidRequest))
		return
	}
	defer file.Close()

	result, err := importer.FromExcel(s.repo, file)
	if err != nil {
		writeError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, result)
}
