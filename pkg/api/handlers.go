package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowmodel/pkg/errors"
	"github.com/matzehuels/flowmodel/pkg/model"
	"github.com/matzehuels/flowmodel/pkg/pipeline"
	"github.com/matzehuels/flowmodel/pkg/script"
)

// ===== Graph =====

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.graph.GraphData())
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	var doc model.GraphConfig
	if err := decode(r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Load(doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.graph.GraphData())
}

func (s *Server) clearGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.ClearData()
	w.WriteHeader(http.StatusNoContent)
}

// ===== Nodes =====

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var cfg model.NodeConfig
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.graph.AddNode(cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n.Data())
}

// node returns the node named by the {id} parameter or writes a 404.
// Callers hold s.mu.
func (s *Server) node(w http.ResponseWriter, r *http.Request) *model.Node {
	id := chi.URLParam(r, "id")
	n := s.graph.NodeByID(id)
	if n == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeMissingElement, "node %q not found", id))
	}
	return n
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.node(w, r); n != nil {
		writeJSON(w, http.StatusOK, n.Data())
	}
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.node(w, r); n != nil {
		s.graph.DeleteNode(n.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

type moveRequest struct {
	IDs         []string `json:"ids,omitempty"`
	DX          float64  `json:"dx"`
	DY          float64  `json:"dy"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	IgnoreRules bool     `json:"ignoreRules"`
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.node(w, r); n != nil {
		s.graph.MoveNode(n.ID, req.DX, req.DY, req.IgnoreRules)
		writeJSON(w, http.StatusOK, n.Data())
	}
}

func (s *Server) moveNodeTo(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.node(w, r); n != nil {
		s.graph.MoveNode2Coordinate(n.ID, req.X, req.Y, req.IgnoreRules)
		writeJSON(w, http.StatusOK, n.Data())
	}
}

func (s *Server) moveNodes(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "ids cannot be empty"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.MoveNodes(req.IDs, req.DX, req.DY, req.IgnoreRules)
	writeJSON(w, http.StatusOK, s.graph.GraphData())
}

// ===== Edges =====

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var cfg model.EdgeConfig
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range []string{cfg.SourceNodeID, cfg.TargetNodeID} {
		if s.graph.NodeByID(id) == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeMissingElement, "endpoint node %q not found", id))
			return
		}
	}
	e, err := s.graph.AddEdge(cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e.Data())
}

func (s *Server) edge(w http.ResponseWriter, r *http.Request) *model.Edge {
	id := chi.URLParam(r, "id")
	e := s.graph.EdgeByID(id)
	if e == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeMissingElement, "edge %q not found", id))
	}
	return e
}

func (s *Server) getEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.edge(w, r); e != nil {
		writeJSON(w, http.StatusOK, e.Data())
	}
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.edge(w, r); e != nil {
		s.graph.DeleteEdgeByID(e.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== Selection and stacking =====

func (s *Server) selectedIDs() []string {
	ids := []string{}
	for _, el := range s.graph.SelectElements() {
		ids = append(ids, el.ID)
	}
	return ids
}

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.selectedIDs())
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph.ClearSelectElements()
	w.WriteHeader(http.StatusNoContent)
}

// element returns the node or edge named by {id} or writes a 404.
func (s *Server) element(w http.ResponseWriter, r *http.Request) *model.Element {
	id := chi.URLParam(r, "id")
	el := s.graph.ElementByID(id)
	if el == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeMissingElement, "element %q not found", id))
	}
	return el
}

type selectRequest struct {
	Multiple bool `json:"multiple"`
}

func (s *Server) selectElement(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.SelectElementByID(el.ID, req.Multiple)
		writeJSON(w, http.StatusOK, s.selectedIDs())
	}
}

func (s *Server) toFront(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.ToFront(el.ID)
		writeJSON(w, http.StatusOK, el.Data())
	}
}

type zIndexRequest struct {
	ZIndex json.RawMessage `json:"zIndex"`
}

// parseZIndex accepts a JSON number or one of the strings "top", "bottom".
func parseZIndex(raw json.RawMessage) (model.ZIndex, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return model.ZAt(n), nil
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return model.ZIndex{}, errors.New(errors.ErrCodeInvalidInput, "zIndex must be a number, \"top\" or \"bottom\"")
	}
	z, err := model.ParseZIndex(str)
	if err != nil {
		return model.ZIndex{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "zIndex")
	}
	return z, nil
}

func (s *Server) setZIndex(w http.ResponseWriter, r *http.Request) {
	var req zIndexRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	z, err := parseZIndex(req.ZIndex)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.SetElementZIndex(el.ID, z)
		writeJSON(w, http.StatusOK, el.Data())
	}
}

type stateRequest struct {
	State string `json:"state"`
}

func (s *Server) setState(w http.ResponseWriter, r *http.Request) {
	var req stateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	st, err := model.ParseElementState(req.State)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "state"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.SetElementStateByID(el.ID, st, nil)
		writeJSON(w, http.StatusOK, map[string]string{"id": el.ID, "state": el.State.String()})
	}
}

func (s *Server) setProperties(w http.ResponseWriter, r *http.Request) {
	var props map[string]any
	if err := decode(r, &props); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.SetProperties(el.ID, props)
		writeJSON(w, http.StatusOK, el.Data())
	}
}

type textRequest struct {
	Value string `json:"value"`
}

func (s *Server) updateText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if el := s.element(w, r); el != nil {
		s.graph.UpdateText(el.ID, req.Value)
		writeJSON(w, http.StatusOK, el.Data())
	}
}

// ===== Scripts and rendering =====

type scriptResponse struct {
	Applied int    `json:"applied"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) applyScript(w http.ResponseWriter, r *http.Request) {
	sc, err := script.Parse(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.runner.ApplyScript(r.Context(), s.graph, sc)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidInput
		}
		writeJSON(w, errors.HTTPStatus(errors.Wrap(code, err, "apply script")), scriptResponse{Applied: n, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scriptResponse{Applied: n})
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Formats:   []string{format},
		Detailed:  queryBool(q.Get("detailed")),
		Highlight: queryBool(q.Get("highlight")),
		Refresh:   queryBool(q.Get("refresh")),
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "scale"))
			return
		}
		opts.Scale = scale
	}

	s.mu.Lock()
	arts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), s.graph, opts)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(arts[format])
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// ===== Snapshots =====

func (s *Server) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "snapshot storage is not configured"))
		return false
	}
	return true
}

func (s *Server) listSnapshots(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) saveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	s.mu.Lock()
	data := s.graph.GraphData()
	s.mu.Unlock()

	snap, err := s.store.Save(r.Context(), chi.URLParam(r, "name"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap.Data = model.GraphData{}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	snap, err := s.store.Load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.graph.Load(snap.Data.Config()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.graph.GraphData())
}

func (s *Server) deleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w, r) {
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
