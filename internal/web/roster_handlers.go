package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edvart/cupkeeper/internal/store"
)

func (s *Server) handleListCups(w http.ResponseWriter, r *http.Request) {
	cups, err := s.store.ListCups(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cups)
}

func (s *Server) handleGetCup(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cup)
}

// handleSaveCup creates or replaces a cup's map pool and bracket link.
func (s *Server) handleSaveCup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Maps       []string `json:"maps"`
		BracketURL string   `json:"bracketUrl"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	cup := store.Cup{Name: chi.URLParam(r, "cup"), Maps: req.Maps, BracketURL: req.BracketURL}
	if err := s.roster.SaveCup(r.Context(), cup); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleGetCup(w, r)
}

func (s *Server) handleDeleteCup(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteCup(r.Context(), cup.Name); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.WithField("cup", cup.Name).Info("Cup deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	groups, err := s.store.ListGroups(r.Context(), cup.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.AddGroup(r.Context(), chi.URLParam(r, "cup"), chi.URLParam(r, "group")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.RemoveGroup(r.Context(), chi.URLParam(r, "cup"), chi.URLParam(r, "group")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	teams, err := s.store.ListTeams(r.Context(), cup.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

func (s *Server) handleSaveTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoleID string `json:"roleId"`
		Group  string `json:"group"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	team := store.Team{
		Cup:    chi.URLParam(r, "cup"),
		Name:   chi.URLParam(r, "team"),
		RoleID: req.RoleID,
		Group:  req.Group,
	}
	if err := s.roster.SaveTeam(r.Context(), team); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.DeleteTeam(r.Context(), cup.Name, chi.URLParam(r, "team")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCaptains(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	captains, err := s.store.ListCaptains(r.Context(), cup.Name, r.URL.Query().Get("team"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, captains)
}

func (s *Server) handleSaveCaptain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team     string `json:"team"`
		Nickname string `json:"nickname"`
		Group    string `json:"group"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	captain := store.Captain{
		Cup:      chi.URLParam(r, "cup"),
		UserID:   chi.URLParam(r, "userID"),
		Nickname: req.Nickname,
		Team:     req.Team,
		Group:    req.Group,
	}
	if err := s.roster.AddCaptain(r.Context(), captain); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveCaptain(w http.ResponseWriter, r *http.Request) {
	if err := s.roster.RemoveCaptain(r.Context(), chi.URLParam(r, "cup"), chi.URLParam(r, "userID")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
