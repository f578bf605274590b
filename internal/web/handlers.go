package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edvart/cupkeeper/internal/auth"
	"github.com/edvart/cupkeeper/internal/coordinator"
	"github.com/edvart/cupkeeper/internal/draft"
)

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coordinator.GetMatches())
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	info := s.coordinator.GetMatch(coordinator.ByID(chi.URLParam(r, "matchID")))
	if info == nil {
		s.writeError(w, coordinator.ErrMatchNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			http.Error(w, "limit must be 1-500", http.StatusBadRequest)
			return
		}
		limit = n
	}
	matches, err := s.store.ListMatches(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

type createMatchRequest struct {
	ChannelID string `json:"channelId"`
	Cup       string `json:"cup"`
	Format    string `json:"format"`
	TeamA     string `json:"teamA"`
	TeamB     string `json:"teamB"`
	FlipCoin  bool   `json:"flip"`
	Replace   bool   `json:"replace"`
}

type createMatchResponse struct {
	Match coordinator.MatchInfo `json:"match"`
	Intro draft.Intro           `json:"intro"`
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req createMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(req.ChannelID) == "" {
		http.Error(w, "channelId required", http.StatusBadRequest)
		return
	}
	format, err := draft.ParseFormat(req.Format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	matchup, err := s.roster.Matchup(r.Context(), req.Cup, req.TeamA, req.TeamB)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cmd := matchup.CreateCommand(req.ChannelID, format)
	cmd.FlipCoin = req.FlipCoin
	cmd.Replace = req.Replace
	resp := make(chan coordinator.CreateMatchResult, 1)
	cmd.Response = resp
	s.coordinator.Send(cmd)

	res, err := waitFor(resp)
	if err == nil {
		err = res.Err
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.log.WithField("match", res.Match.ID).Infof("Referee %s created %s vs %s (%s)",
		auth.RefereeFromContext(r.Context()), res.Match.TeamA, res.Match.TeamB, format)
	writeJSON(w, http.StatusCreated, createMatchResponse{Match: res.Match, Intro: res.Intro})
}

type actionRequest struct {
	Action string `json:"action"`
	Input  string `json:"input"`
}

// handleSubmitAction applies an action on behalf of the party on turn.
func (s *Server) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	referee := auth.RefereeFromContext(r.Context())
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.SubmitAction{
		Target:   coordinator.ByID(matchID),
		Action:   draft.Action(strings.ToLower(req.Action)),
		Actor:    draft.Member{ID: "api:" + referee},
		Input:    req.Input,
		Force:    true,
		Response: resp,
	})
	if err := waitForResponse(resp); err != nil {
		s.writeError(w, err)
		return
	}

	s.log.WithField("match", matchID).Infof("Referee %s applied %s %q", referee, req.Action, req.Input)
	s.writeMatch(w, matchID)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.UndoAction{Target: coordinator.ByID(matchID), Response: resp})
	if err := waitForResponse(resp); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMatch(w, matchID)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.CloseMatch{Target: coordinator.ByID(matchID), Response: resp})
	if err := waitForResponse(resp); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.WithField("match", matchID).Infof("Referee %s closed the match", auth.RefereeFromContext(r.Context()))
	s.writeMatch(w, matchID)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	var req struct {
		URL string `json:"url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.MarkStreamed{Target: coordinator.ByID(matchID), URL: req.URL, Response: resp})
	if err := waitForResponse(resp); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMatch(w, matchID)
}

func (s *Server) handleRemoveMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")
	resp := make(chan error, 1)
	s.coordinator.Send(coordinator.RemoveMatch{Target: coordinator.ByID(matchID), Response: resp})
	if err := waitForResponse(resp); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.WithField("match", matchID).Infof("Referee %s removed the match", auth.RefereeFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeMatch(w http.ResponseWriter, matchID string) {
	info := s.coordinator.GetMatch(coordinator.ByID(matchID))
	if info == nil {
		s.writeError(w, coordinator.ErrMatchNotFound)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleRemoveCupMatches drops every live match of a cup.
func (s *Server) handleRemoveCupMatches(w http.ResponseWriter, r *http.Request) {
	cup, err := s.roster.Cup(r.Context(), chi.URLParam(r, "cup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := make(chan []coordinator.MatchInfo, 1)
	s.coordinator.Send(coordinator.RemoveCupMatches{Cup: cup.Name, Response: resp})
	removed, err := waitFor(resp)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.WithField("cup", cup.Name).Infof("Referee %s removed %d matches", auth.RefereeFromContext(r.Context()), len(removed))
	writeJSON(w, http.StatusOK, removed)
}
