package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/roach88/awbridge/internal/datastore"
	"github.com/roach88/awbridge/internal/models"
)

// maxBody caps request bodies.
const maxBody = 8 << 20

type infoResponse struct {
	Hostname string `json:"hostname"`
	Version  string `json:"version"`
	Testing  bool   `json:"testing"`
	DeviceID string `json:"device_id"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Hostname: s.state.Hostname,
		Version:  s.state.Version,
		Testing:  s.cfg.Testing,
		DeviceID: s.state.DeviceID,
	})
}

// handleListBuckets returns buckets keyed by id, as aw-server clients expect.
func (s *Service) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.state.Store.GetBuckets(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make(map[string]models.Bucket, len(buckets))
	for _, b := range buckets {
		out[b.ID] = b
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleGetBucket(w http.ResponseWriter, r *http.Request) {
	b, err := s.state.Store.GetBucket(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Service) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	// The path id wins over whatever the body claims.
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		writeMessage(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}
	body["id"] = r.PathValue("id")
	raw, _ = json.Marshal(body)

	b, err := models.ParseBucket(raw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.state.Store.CreateBucket(r.Context(), b); err != nil {
		if datastore.IsCode(err, datastore.CodeBucketExists) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := s.state.Store.DeleteBucket(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := int64(-1)
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
	}

	events, err := s.state.Store.GetEvents(r.Context(), r.PathValue("id"), start, end, limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleInsertEvents(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var events []models.Event
	if isArray(raw) {
		events, err = models.ParseEvents(raw)
	} else {
		var e models.Event
		e, err = models.ParseEvent(raw)
		events = []models.Event{e}
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	inserted, err := s.state.Store.InsertEvents(r.Context(), r.PathValue("id"), events)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inserted)
}

func (s *Service) handleEventCount(w http.ResponseWriter, r *http.Request) {
	start, end, err := timeRange(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := s.state.Store.GetEventCount(r.Context(), r.PathValue("id"), start, end)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Service) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	pulse := r.URL.Query().Get("pulsetime")
	if pulse == "" {
		writeMessage(w, http.StatusBadRequest, "missing pulsetime")
		return
	}
	pulsetime, err := strconv.ParseFloat(pulse, 64)
	if err != nil || pulsetime < 0 {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid pulsetime %q", pulse))
		return
	}

	raw, err := readBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	hb, err := models.ParseEvent(raw)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.state.Store.Heartbeat(r.Context(), r.PathValue("id"), hb, pulsetime)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}

func isArray(raw []byte) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

func timeRange(r *http.Request) (start, end *time.Time, err error) {
	q := r.URL.Query()
	if start, err = parseTime(q.Get("start")); err != nil {
		return nil, nil, err
	}
	if end, err = parseTime(q.Get("end")); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q", v)
	}
	return &t, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	var dsErr *datastore.Error
	if errors.As(err, &dsErr) {
		switch dsErr.Code {
		case datastore.CodeNoSuchBucket:
			writeMessage(w, http.StatusNotFound, fmt.Sprintf("There's no bucket named %s", dsErr.BucketID))
			return
		case datastore.CodeBucketExists:
			w.WriteHeader(http.StatusNotModified)
			return
		case datastore.CodeOutOfRange:
			writeMessage(w, http.StatusBadRequest, dsErr.Err.Error())
			return
		}
	}
	slog.Error("datastore request failed", "error", err)
	writeMessage(w, http.StatusInternalServerError, "internal datastore error")
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}
