// Package server implements the leaderboard HTTP service on top of a kv.Store.
package server

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/tempest/internal/kv"
	"github.com/tomz197/tempest/internal/leaderboard"
	"github.com/tomz197/tempest/internal/loop/config"
)

// ListKey is where the top-N list is stored.
const ListKey = "global_leaderboard"

// Response messages.
const (
	msgInvalidRequest = "Invalid request"
	msgInvalidScore   = "Invalid score data"
	msgTooHigh        = "Score exceeds reasonable limits"
	msgRateLimited    = "Too many submissions, please try again later"
	msgServerError    = "Server error"
)

// maxBodySize bounds a submission body.
const maxBodySize = 4 << 10

// Validation failures of a decoded submission.
var (
	errBadScore = errors.New("invalid score data")
	errTooHigh  = errors.New("score exceeds reasonable limits")
)

// Handler serves GET, POST and OPTIONS on the leaderboard endpoint.
type Handler struct {
	store  kv.Store
	logger *log.Logger
	// Now returns the current time. Tests replace it to drive the rate limit window.
	Now func() time.Time
}

// New creates a handler backed by store.
func New(store kv.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{store: store, logger: logger, Now: time.Now}
}

// ServeHTTP dispatches on the request method.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		h.handleOptions(w)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) handleOptions(w http.ResponseWriter) {
	hdr := w.Header()
	hdr.Set("Access-Control-Allow-Origin", "*")
	hdr.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	hdr.Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	data, ok, err := h.store.Get(r.Context(), ListKey)
	if err != nil {
		h.logger.Error("read leaderboard", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msgServerError})
		return
	}
	if ok {
		writeRaw(w, http.StatusOK, []byte(data))
		return
	}

	defaults := leaderboard.Defaults()
	if encoded, err := json.Marshal(defaults); err == nil {
		if err := h.store.Put(r.Context(), ListKey, string(encoded), 0); err != nil {
			h.logger.Error("seed leaderboard", "err", err)
		}
	}
	writeJSON(w, http.StatusOK, defaults)
}

// submission mirrors the POST body. Score stays untyped so non-numeric values
// can be told apart from malformed JSON.
type submission struct {
	Initials *string `json:"initials"`
	Score    any     `json:"score"`
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	var sub submission
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(body).Decode(&sub); err != nil {
		writeFailure(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	initials, score, err := validate(sub)
	switch {
	case errors.Is(err, errTooHigh):
		h.logger.Warn("suspicious score submission", "initials", initials, "score", sub.Score)
		writeFailure(w, http.StatusBadRequest, msgTooHigh)
		return
	case err != nil:
		writeFailure(w, http.StatusBadRequest, msgInvalidScore)
		return
	}

	if !h.allow(r.Context(), clientID(r)) {
		writeFailure(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	entries, err := h.load(r)
	if err != nil {
		h.logger.Error("read leaderboard", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgServerError)
		return
	}

	entry := leaderboard.Entry{Initials: initials, Score: score}
	list, rank := leaderboard.Insert(entries, entry, config.LeaderboardSize)

	encoded, err := json.Marshal(list)
	if err == nil {
		err = h.store.Put(r.Context(), ListKey, string(encoded), 0)
	}
	if err != nil {
		h.logger.Error("write leaderboard", "err", err)
		writeFailure(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.logger.Info("score submitted", "initials", initials, "score", score, "rank", rankValue(rank))
	writeJSON(w, http.StatusOK, leaderboard.Result{Success: true, Rank: rank, Leaderboard: list})
}

// load returns the stored list, empty when nothing is stored.
func (h *Handler) load(r *http.Request) ([]leaderboard.Entry, error) {
	data, ok, err := h.store.Get(r.Context(), ListKey)
	if err != nil || !ok {
		return nil, err
	}
	var entries []leaderboard.Entry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// validate requires non-empty initials and a positive integer score no
// larger than config.MaxReasonableScore.
func validate(sub submission) (string, int, error) {
	if sub.Initials == nil || *sub.Initials == "" {
		return "", 0, errBadScore
	}
	initials := leaderboard.NormalizeInitials(*sub.Initials)
	if initials == "" {
		return "", 0, errBadScore
	}
	f, ok := sub.Score.(float64)
	if !ok || f <= 0 || f != math.Trunc(f) {
		return "", 0, errBadScore
	}
	if f > config.MaxReasonableScore {
		return initials, 0, errTooHigh
	}
	return initials, int(f), nil
}

// clientID identifies the submitter for rate limiting.
func clientID(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func rankValue(rank *int) any {
	if rank == nil {
		return nil
	}
	return *rank
}

type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, failure{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, msgServerError, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	hdr := w.Header()
	hdr.Set("Content-Type", "application/json")
	hdr.Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	w.Write(data)
}
