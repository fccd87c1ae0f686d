package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gogreen-survey/gogreen/src"
	"github.com/gogreen-survey/gogreen/src/expr"
	"github.com/gogreen-survey/gogreen/src/metrics"
	"github.com/gogreen-survey/gogreen/src/query"
	"github.com/gogreen-survey/gogreen/src/store"
	"github.com/gogreen-survey/gogreen/src/table"
)

// Handler serves the query façade over HTTP.
type Handler struct {
	engine  *query.Engine
	metrics *metrics.Registry
	log     src.Logger
}

func New(engine *query.Engine, m *metrics.Registry, log src.Logger) *Handler {
	return &Handler{engine: engine, metrics: m, log: log}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(h.requestID)

	router.HandleFunc("/healthz", h.Health).Methods("GET")
	router.HandleFunc("/clusters", h.Clusters).Methods("GET")
	router.HandleFunc("/clusters/{name}/redshift", h.ClusterRedshift).Methods("GET")
	router.HandleFunc("/clusters/{name}/galaxies", h.ClusterGalaxies).Methods("GET")
	router.HandleFunc("/clusters/{name}/members", h.Members).Methods("GET")
	router.HandleFunc("/clusters/{name}/series", h.ClusterSeries).Methods("GET")
	router.HandleFunc("/search", h.Search).Methods("POST")
	if h.metrics != nil {
		router.Handle("/metrics", h.metrics.Handler()).Methods("GET")
	}

	return router
}

// requestID tags every request so concurrent query logs interleave legibly.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		h.log.Debugf("request %s: %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]any{"clusters": h.engine.Clusters()})
}

func (h *Handler) ClusterRedshift(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	z, err := h.engine.ClusterRedshift(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"cluster": name, "redshift": z})
}

func (h *Handler) ClusterGalaxies(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	galaxies, err := h.engine.ClusterGalaxies(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeTable(w, galaxies)
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	m, err := h.engine.Members(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeTable(w, m)
}

func (h *Handler) ClusterSeries(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	scheme, err := query.ParseColorScheme(q.Get("color"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := query.SeriesRequest{
		Scheme: scheme,
		Axes: query.AxisSpec{
			X:    q.Get("x"),
			Y:    q.Get("y"),
			LogX: q.Get("logx") == "true",
			LogY: q.Get("logy") == "true",
		},
		OnlyMembers:  q.Get("members") != "false",
		UseStandards: q.Get("standards") != "false",
	}
	for param, dst := range map[string]**float64{
		"xmin": &req.Axes.XMin, "xmax": &req.Axes.XMax,
		"ymin": &req.Axes.YMin, "ymax": &req.Axes.YMax,
	} {
		raw := q.Get(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid "+param, http.StatusBadRequest)
			return
		}
		*dst = &v
	}
	for _, raw := range q["criteria"] {
		c, err := expr.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Criteria = append(req.Criteria, c)
	}

	series, err := h.engine.ClusterSeries(name, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]any{"cluster": name, "series": series})
}

type searchRequest struct {
	Clusters   []string `json:"clusters"`
	Properties []string `json:"properties"`
	Criteria   []string `json:"criteria"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	criteria := make([]expr.Criterion, 0, len(req.Criteria))
	for _, raw := range req.Criteria {
		c, err := expr.Parse(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		criteria = append(criteria, c)
	}

	result, err := h.engine.Search(req.Clusters, req.Properties, criteria)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeTable(w, result)
}

// tableResponse is the wire shape of a table: column descriptors plus
// row-major values, nulls as JSON null.
type tableResponse struct {
	Columns []columnDescriptor `json:"columns"`
	Rows    [][]any            `json:"rows"`
}

type columnDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func renderTable(t *table.Table) (tableResponse, error) {
	resp := tableResponse{Rows: make([][]any, t.NumRows())}

	cols := make([]*table.Column, 0, t.NumCols())
	for _, name := range t.ColumnNames() {
		c, err := t.Column(name)
		if err != nil {
			return tableResponse{}, err
		}
		cols = append(cols, c)
		resp.Columns = append(resp.Columns, columnDescriptor{
			Name: c.Name,
			Type: c.Type.String(),
		})
	}

	for row := 0; row < t.NumRows(); row++ {
		vals := make([]any, len(cols))
		for i, c := range cols {
			switch c.Type {
			case table.IntType:
				if v, ok := c.Int(row); ok {
					vals[i] = v
				}
			case table.FloatType:
				if v, ok := c.Float(row); ok {
					vals[i] = v
				}
			case table.StringType:
				if v, ok := c.Str(row); ok {
					vals[i] = v
				}
			}
		}
		resp.Rows[row] = vals
	}
	return resp, nil
}

func (h *Handler) writeTable(w http.ResponseWriter, t *table.Table) {
	resp, err := renderTable(t)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrClusterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrTypeMismatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Errorf("internal error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
