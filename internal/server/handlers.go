package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/pepkit/eido/internal/build"
	"github.com/pepkit/eido/internal/conversion"
	"github.com/pepkit/eido/internal/pep"
	"github.com/pepkit/eido/internal/schema"
	"github.com/pepkit/eido/internal/validation"
)

// Validation targets accepted by POST /api/v1/validate.
const (
	TargetProject = "project"
	TargetConfig  = "config"
	TargetSample  = "sample"
)

type errorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type validateResponse struct {
	Valid      bool   `json:"valid"`
	Target     string `json:"target"`
	Error      string `json:"error,omitempty"`
	Path       string `json:"path,omitempty"`
	SchemaPath string `json:"schema_path,omitempty"`
}

type filterInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type convertResponse struct {
	Filter  string            `json:"filter"`
	Results map[string]string `json:"results"`
}

// requestError is a client error with the status it maps to.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, build.Current())
}

func (s *Server) handleSchemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Catalog)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	filters := s.cfg.Filters.Filters()
	out := make([]filterInfo, 0, len(filters))
	for _, f := range filters {
		out = append(out, filterInfo{Name: f.Name, Description: f.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	err := s.parseUpload(w, r)
	var target string
	if err == nil {
		target = r.FormValue("target")
	} else {
		target = r.URL.Query().Get("target")
	}
	if target == "" {
		target = TargetProject
	}
	if err == nil {
		err = s.validate(r, target)
	}
	label := metricTarget(target)
	if err == nil {
		s.metrics.observeValidation(label, resultValid)
		writeJSON(w, http.StatusOK, validateResponse{Valid: true, Target: target})
		return
	}

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		s.metrics.observeValidation(label, resultInvalid)
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
			Target:     target,
			Error:      verr.Error(),
			Path:       verr.InstancePath,
			SchemaPath: verr.SchemaPath,
		})
		return
	}
	s.metrics.observeValidation(label, resultError)
	s.writeError(w, r, err)
}

// metricTarget keeps the target label bounded.
func metricTarget(target string) string {
	switch target {
	case TargetProject, TargetConfig, TargetSample:
		return target
	default:
		return "unknown"
	}
}

func (s *Server) validate(r *http.Request, target string) error {
	excludeCase, err := formBool(r, "exclude_case")
	if err != nil {
		return err
	}
	var ref pep.SampleRef
	switch target {
	case TargetProject, TargetConfig:
	case TargetSample:
		name := r.FormValue("sample")
		if name == "" {
			return badRequest("target %q needs a sample name or index", TargetSample)
		}
		ref = pep.ParseSampleRef(name)
	default:
		return badRequest("unknown target %q: use %s, %s or %s", target, TargetProject, TargetConfig, TargetSample)
	}

	project, err := s.loadProject(r)
	if err != nil {
		return err
	}
	src, err := s.schemaSource(r)
	if err != nil {
		return err
	}
	docs, err := s.cfg.Validator.ReadSchema(src)
	if err != nil {
		return badRequest("reading schema %s: %v", src, err)
	}
	loaded := schema.Loaded(docs)

	switch target {
	case TargetConfig:
		return s.cfg.Validator.ValidateConfig(project, loaded, excludeCase)
	case TargetSample:
		return s.cfg.Validator.ValidateSample(project, ref, loaded, excludeCase)
	default:
		return s.cfg.Validator.ValidateProject(project, loaded, excludeCase)
	}
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filter")
	results, err := s.convert(w, r, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertResponse{Filter: name, Results: results})
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request, name string) (map[string]string, error) {
	if _, ok := s.cfg.Filters.Get(name); !ok {
		return nil, &conversion.FilterError{Name: name, Available: s.cfg.Filters.Names()}
	}
	if err := s.parseUpload(w, r); err != nil {
		return nil, err
	}
	params := make(map[string]string)
	for _, kv := range r.Form["arg"] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, badRequest("filter argument %q is not key=value", kv)
		}
		params[k] = v
	}
	project, err := s.loadProject(r)
	if err != nil {
		return nil, err
	}
	return conversion.Run(s.cfg.Filters, project, name, params)
}

// parseUpload reads the multipart body within the upload limit.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		return &requestError{
			status: http.StatusRequestEntityTooLarge,
			msg:    fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes),
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{
				status: http.StatusRequestEntityTooLarge,
				msg:    fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit),
			}
		}
		return badRequest("parsing upload: %v", err)
	}
	return nil
}

// loadProject builds a project from the config, sample_table and
// subsample_table parts of the upload.
func (s *Server) loadProject(r *http.Request) (*pep.Project, error) {
	cfg, _, err := r.FormFile("config")
	if err != nil {
		return nil, badRequest("a project config file is required in the %q field", "config")
	}
	defer cfg.Close()

	var sampleTable io.Reader
	if f, _, err := r.FormFile("sample_table"); err == nil {
		defer f.Close()
		sampleTable = f
	}

	var subsampleTables []io.Reader
	for _, fh := range r.MultipartForm.File["subsample_table"] {
		f, err := fh.Open()
		if err != nil {
			return nil, badRequest("opening subsample table %s: %v", fh.Filename, err)
		}
		defer f.Close()
		subsampleTables = append(subsampleTables, f)
	}

	index := r.FormValue("st_index")
	if index == "" {
		index = s.cfg.SampleTableIndex
	}
	p, err := pep.FromReaders(cfg, sampleTable, subsampleTables, pep.WithSampleTableIndex(index))
	if err != nil {
		return nil, badRequest("loading project: %v", err)
	}
	return p, nil
}

// schemaSource takes the schema from the "schema" field (URL, catalog name
// or, when allowed, a server path) or from an uploaded "schema_file".
func (s *Server) schemaSource(r *http.Request) (schema.Source, error) {
	if name := r.FormValue("schema"); name != "" {
		ref := resolveSchemaName(name)
		if !ref.IsURL() && !s.cfg.AllowLocalSchemas {
			return nil, badRequest("schema %q is neither a URL nor a catalog name", name)
		}
		return ref, nil
	}

	f, fh, err := r.FormFile("schema_file")
	if err != nil {
		return nil, badRequest("a schema is required: set %q or upload %q", "schema", "schema_file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, badRequest("reading schema upload: %v", err)
	}
	doc, err := schema.ParseYAML(data, fh.Filename)
	if err != nil {
		return nil, badRequest("%v", err)
	}
	return schema.Inline(doc), nil
}

func formBool(r *http.Request, name string) (bool, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, badRequest("%s: %q is not a boolean", name, raw)
	}
	return v, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("request_id", RequestIDFrom(r.Context())), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Message: err.Error(), RequestID: RequestIDFrom(r.Context())})
}

func statusOf(err error) int {
	var reqErr *requestError
	var filterErr *conversion.FilterError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.Is(err, pep.ErrSampleNotFound), errors.Is(err, pep.ErrSampleIndex):
		return http.StatusNotFound
	case errors.Is(err, conversion.ErrFilterNotFound):
		return http.StatusNotFound
	case errors.Is(err, validation.ErrNoSampleSchema), errors.Is(err, ErrLocalSchema):
		return http.StatusBadRequest
	case errors.As(err, &filterErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
