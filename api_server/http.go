package main

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tt_signer/headers"
	"tt_signer/ttcrypt"
)

type Server struct {
	cfg     Config
	repo    *Repo
	cache   *APIKeyCache
	devices *DevicePool
	signer  *headers.Signer
}

func NewServer(cfg Config, repo *Repo, cache *APIKeyCache, devices *DevicePool) *Server {
	return &Server{
		cfg:     cfg,
		repo:    repo,
		cache:   cache,
		devices: devices,
		signer:  headers.NewSigner(),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/sign", s.withAuth(s.handleSign))
	mux.HandleFunc("/encrypt", s.withAuth(s.handleEncrypt))
	mux.HandleFunc("/decrypt", s.withAuth(s.handleDecrypt))
	mux.HandleFunc("/devices", s.withAuth(s.handleDevices))
	return mux
}

func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("x-api-key"))
		if key == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing key"})
			return
		}
		row, err := s.validateAPIKey(r.Context(), key)
		if err != nil {
			if err == sql.ErrNoRows {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid key"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "auth error"})
			return
		}
		if !row.IsActive {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "key disabled"})
			return
		}
		next(w, r, key)
	}
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request, apiKey string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	var req SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	// 请求里没带设备信息时从设备池轮转补一台
	params := req.Params
	if s.devices != nil && !strings.Contains(params, "device_id=") {
		if d, err := s.devices.Draw(r.Context()); err == nil && d != nil {
			if params != "" {
				params += "&"
			}
			params += "device_id=" + d.DeviceID
			if req.SecDeviceID == "" {
				req.SecDeviceID = d.SecDeviceID
			}
			if req.Cookie == "" {
				req.Cookie = d.Cookie
			}
		}
	}

	ctx := &headers.RequestContext{
		Params:        params,
		Timestamp:     req.Timestamp,
		Aid:           req.Aid,
		LicenseID:     req.LicenseID,
		SecDeviceID:   req.SecDeviceID,
		SdkVersionStr: req.SdkVersionStr,
		SdkVersion:    req.SdkVersion,
		Cookie:        req.Cookie,
	}
	if req.Body != "" {
		ctx.Body = req.Body
	}

	hs, err := s.signer.GenerateHeaders(ctx)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	requestID := uuid.NewString()
	{
		dbCtx, cancel := withTimeout(r.Context())
		defer cancel()
		if err := s.repo.RecordSign(dbCtx, apiKey, requestID, aidForLog(req.Aid), req.Body != ""); err != nil {
			if err == sql.ErrNoRows {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "quota exhausted"})
				return
			}
			log.Printf("record sign failed: %v", err)
		}
		_ = s.refreshAPIKeyCache(r.Context(), apiKey)
	}

	writeJSON(w, http.StatusOK, SignResponse{RequestID: requestID, Headers: hs})
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil || len(payload) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return
	}
	out, err := ttcrypt.Encrypt(payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": base64.StdEncoding.EncodeToString(out)})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return
	}
	var req struct {
		Data string `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid base64"})
		return
	}
	out, err := ttcrypt.Decrypt(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"data": string(out)})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request, _ string) {
	if s.devices == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "device pool disabled"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		n, err := s.devices.Count(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"count": n})
	case http.MethodPost:
		raw, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body"})
			return
		}
		added, err := s.devices.Import(r.Context(), strings.Split(string(raw), "\n"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"added": added})
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET/POST only"})
	}
}

func (s *Server) validateAPIKey(parent context.Context, key string) (*APIKeyRow, error) {
	if row, ok := s.cache.Get(parent, key); ok {
		return row, nil
	}
	ctx, cancel := withTimeout(parent)
	defer cancel()
	row, err := s.repo.GetAPIKey(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(parent, row)
	return row, nil
}

func (s *Server) refreshAPIKeyCache(parent context.Context, key string) error {
	ctx, cancel := withTimeout(parent)
	defer cancel()
	row, err := s.repo.GetAPIKey(ctx, key)
	if err != nil {
		return err
	}
	s.cache.Set(parent, row)
	return nil
}

func aidForLog(v any) int64 {
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		return n
	default:
		return 0
	}
}

func withTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
