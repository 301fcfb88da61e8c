package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/pythia/pkg/domain/model"
	"github.com/secmon-lab/pythia/pkg/domain/types"
	"github.com/secmon-lab/pythia/pkg/usecase"
	"github.com/secmon-lab/pythia/pkg/utils/errutil"
)

type researchRequest struct {
	Query         string `json:"query"`
	UserID        string `json:"userId,omitempty"`
	Depth         string `json:"depth,omitempty"`
	SkipFactCheck bool   `json:"skipFactCheck,omitempty"`
	SkipCache     bool   `json:"skipCache,omitempty"`
}

func (s *Server) researchHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req researchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	input := &usecase.ResearchInput{
		Query:         req.Query,
		UserID:        req.UserID,
		SkipFactCheck: req.SkipFactCheck,
		SkipCache:     req.SkipCache,
	}
	if input.UserID == "" {
		input.UserID = s.defaultUserID
	}
	if req.Depth != "" {
		depth, err := types.ParseDepthLevel(req.Depth)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid depth level"), http.StatusBadRequest)
			return
		}
		input.DepthOverride = depth
	}

	result, err := s.uc.Research.Research(ctx, input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrEmptyQuery) {
			status = http.StatusBadRequest
		}
		errutil.HandleHTTP(ctx, w, err, status)
		return
	}

	writeJSON(ctx, w, http.StatusOK, result)
}

type knowledgeRequest struct {
	UserID  string `json:"userId,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content"`
	Subject string `json:"subject,omitempty"`
}

func (s *Server) knowledgeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = s.defaultUserID
	}

	stored, err := s.uc.AddKnowledge(ctx, &model.Knowledge{
		UserID:  userID,
		Title:   req.Title,
		URL:     req.URL,
		Content: req.Content,
		Subject: req.Subject,
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, stored)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}
