package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gmplayout/pkg/buildinfo"
	"github.com/matzehuels/gmplayout/pkg/catalog"
	"github.com/matzehuels/gmplayout/pkg/compliance"
	gerrors "github.com/matzehuels/gmplayout/pkg/errors"
	"github.com/matzehuels/gmplayout/pkg/facility"
	"github.com/matzehuels/gmplayout/pkg/graph"
	"github.com/matzehuels/gmplayout/pkg/pipeline"
	"github.com/matzehuels/gmplayout/pkg/placement"
	"github.com/matzehuels/gmplayout/pkg/store"
)

func layoutID(r *http.Request) string { return chi.URLParam(r, "id") }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

// =============================================================================
// Generation
// =============================================================================

// handleGenerate runs the pipeline and stores the layout unless ?save=false.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("save") != "false" {
		if err := s.save(r, res.Layout); err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Location", "/v1/layouts/"+res.Layout.ID)
	}
	cacheHeader(w, res.CacheInfo.ResultHit)
	writeJSON(w, http.StatusCreated, res)
}

// =============================================================================
// Layout CRUD
// =============================================================================

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, external(err, "list layouts"))
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"layouts": list})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Get(r.Context(), layoutID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// handlePut stores a caller-edited layout in either wire encoding. The body
// id, when present, must match the path.
func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidLayout, err, "%v", err))
		return
	}
	id := layoutID(r)
	switch l.ID {
	case "":
		l.ID = id
	case id:
	default:
		s.writeError(w, r, gerrors.New(gerrors.ErrCodeInvalidInput, "body id %q does not match path id %q", l.ID, id))
		return
	}
	if err := s.save(r, l); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), layoutID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) save(r *http.Request, l *facility.Layout) error {
	if err := s.store.Save(r.Context(), l); err != nil {
		return external(err, "save layout")
	}
	return nil
}

// external marks uncoded store failures as EXTERNAL_DEPENDENCY. Store
// sentinels are left for writeError to map.
func external(err error, what string) error {
	if gerrors.GetCode(err) != "" || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
		return err
	}
	return gerrors.Wrap(gerrors.ErrCodeExternal, err, "%s", what)
}

// =============================================================================
// Compliance
// =============================================================================

func (s *Server) handleCheckStored(w http.ResponseWriter, r *http.Request) {
	l, err := s.store.Get(r.Context(), layoutID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.check(w, r, l)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	l, err := graph.UnmarshalLayout(data)
	if err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidLayout, err, "%v", err))
		return
	}
	s.check(w, r, l)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request, l *facility.Layout) {
	report, hit, err := s.runner.CheckWithCacheInfo(r.Context(), l, r.URL.Query().Get("jurisdiction"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cacheHeader(w, hit)
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// Incremental placement
// =============================================================================

type placeRoomRequest struct {
	Room          *facility.Room          `json:"room"`
	Relationships []facility.Relationship `json:"relationships,omitempty"`
}

type placeRoomResponse struct {
	Layout    *facility.Layout    `json:"layout"`
	Placement placement.Placement `json:"placement"`
}

func (s *Server) handlePlaceRoom(w http.ResponseWriter, r *http.Request) {
	var req placeRoomRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.store.Get(r.Context(), layoutID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, p, err := s.runner.PlaceRoom(r.Context(), l, req.Room, req.Relationships)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.save(r, updated); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeRoomResponse{Layout: updated, Placement: p})
}

// =============================================================================
// Queries and reference data
// =============================================================================

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var p store.Pattern
	if err := s.decode(w, r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	matches, err := s.store.Match(r.Context(), p)
	if err != nil {
		s.writeError(w, r, external(err, "match layouts"))
		return
	}
	if matches == nil {
		matches = []store.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

type catalogResponse struct {
	RoomTypes []catalog.RoomType `json:"room_types"`
	Templates []catalog.Template `json:"templates"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		RoomTypes: s.runner.Catalog.RoomTypes(),
		Templates: s.runner.Catalog.Templates(),
	})
}

type rulesResponse struct {
	Jurisdiction compliance.Jurisdiction `json:"jurisdiction,omitempty"`
	Checkable    []compliance.Rule       `json:"checkable"`
	Reference    []compliance.Rule       `json:"reference"`
}

// handleRules lists the rulebook. With ?jurisdiction= only rules in force
// there are listed.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	book := s.runner.Engine.Rulebook()
	raw := r.URL.Query().Get("jurisdiction")
	if raw == "" {
		resp := rulesResponse{Checkable: []compliance.Rule{}, Reference: []compliance.Rule{}}
		for _, rule := range book.Rules() {
			if rule.Checkable {
				resp.Checkable = append(resp.Checkable, rule)
			} else {
				resp.Reference = append(resp.Reference, rule)
			}
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	zone, err := compliance.ParseJurisdiction(raw)
	if err != nil {
		s.writeError(w, r, gerrors.Wrap(gerrors.ErrCodeInvalidJurisdiction, err, "unknown jurisdiction %q", raw))
		return
	}
	writeJSON(w, http.StatusOK, rulesResponse{
		Jurisdiction: zone,
		Checkable:    nonNil(book.Applicable(zone)),
		Reference:    nonNil(book.Reference(zone)),
	})
}

func nonNil(rules []compliance.Rule) []compliance.Rule {
	if rules == nil {
		return []compliance.Rule{}
	}
	return rules
}
