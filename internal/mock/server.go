// Package mock is an in-memory implementation of the DBC editor REST
// contract, used as a development backend and as the test server for the
// API client. It enforces the same uniqueness rules as the real server
// (frame ids, signal names per message) and speaks the same {error} bodies,
// but holds everything in memory: upload takes the JSON database document
// instead of a DBC file, and reload restores the snapshot the server was
// started with.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trailtech/dbcstudio/internal/types"
)

// Server serves the editor REST contract from memory.
type Server struct {
	mu         sync.RWMutex
	db         types.Database
	initial    types.Database // restored by /api/reload
	saved      bool
	httpServer *http.Server
}

// NewServer creates a server seeded with the given database. The seed also
// becomes the reload snapshot.
func NewServer(seed *types.Database) *Server {
	s := &Server{}
	if seed != nil {
		s.db = cloneDatabase(seed)
		s.initial = cloneDatabase(seed)
	}
	if s.db.Filename == "" {
		s.db.Filename = "untitled.dbc"
		s.initial.Filename = "untitled.dbc"
	}
	return s
}

// Handler returns the chi router implementing the contract.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/api/database", s.handleGetDatabase)

	r.Post("/api/messages", s.handleCreateMessage)
	r.Put("/api/messages/{frameID}", s.handleUpdateMessage)
	r.Delete("/api/messages/{frameID}", s.handleDeleteMessage)

	r.Post("/api/messages/{frameID}/signals", s.handleCreateSignal)
	r.Put("/api/messages/{frameID}/signals/{name}", s.handleUpdateSignal)
	r.Delete("/api/messages/{frameID}/signals/{name}", s.handleDeleteSignal)

	r.Post("/api/nodes", s.handleCreateNode)
	r.Put("/api/nodes/{name}", s.handleUpdateNode)
	r.Delete("/api/nodes/{name}", s.handleDeleteNode)

	r.Post("/api/save", s.handleSave)
	r.Get("/api/download", s.handleDownload)
	r.Post("/api/reload", s.handleReload)
	r.Post("/api/upload", s.handleUpload)

	return r
}

// Start begins listening on addr in a background goroutine.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("mock server error: %v", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

func frameIDParam(w http.ResponseWriter, r *http.Request) (uint32, bool) {
	var id uint32
	if _, err := fmt.Sscanf(chi.URLParam(r, "frameID"), "%d", &id); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid frame id")
		return 0, false
	}
	return id, true
}

// --- database ---

func (s *Server) handleGetDatabase(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := cloneDatabase(&s.db)
	s.mu.RUnlock()

	sort.Slice(snapshot.Messages, func(i, j int) bool {
		return snapshot.Messages[i].FrameID < snapshot.Messages[j].FrameID
	})
	for i := range snapshot.Messages {
		signals := snapshot.Messages[i].Signals
		sort.Slice(signals, func(a, b int) bool {
			return signals[a].StartBit < signals[b].StartBit
		})
	}

	writeJSON(w, http.StatusOK, snapshot)
}

// --- messages ---

func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req types.MessageUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.MessageByFrameID(req.FrameID) != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Message with ID %d already exists", req.FrameID))
		return
	}

	msg := types.Message{
		FrameID:         req.FrameID,
		Name:            req.Name,
		Length:          req.Length,
		IsExtendedFrame: req.IsExtendedFrame,
		Comment:         req.Comment,
		Signals:         []types.Signal{},
	}
	if req.Sender != "" {
		msg.Senders = []string{req.Sender}
	}
	s.db.Messages = append(s.db.Messages, msg)

	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleUpdateMessage(w http.ResponseWriter, r *http.Request) {
	frameID, ok := frameIDParam(w, r)
	if !ok {
		return
	}
	var req types.MessageUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.db.MessageByFrameID(frameID)
	if msg == nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Message with ID %d not found", frameID))
		return
	}
	if req.FrameID != frameID && s.db.MessageByFrameID(req.FrameID) != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Message with ID %d already exists", req.FrameID))
		return
	}

	msg.FrameID = req.FrameID
	msg.Name = req.Name
	msg.Length = req.Length
	msg.Comment = req.Comment
	msg.IsExtendedFrame = req.IsExtendedFrame
	if req.Sender != "" {
		msg.Senders = []string{req.Sender}
	}

	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	frameID, ok := frameIDParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.db.Messages {
		if s.db.Messages[i].FrameID == frameID {
			s.db.Messages = append(s.db.Messages[:i], s.db.Messages[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound,
		fmt.Sprintf("Message with ID %d not found", frameID))
}

// --- signals ---

func signalFromUpdate(req *types.SignalUpdate) types.Signal {
	sig := types.Signal{
		Name:      req.Name,
		StartBit:  req.StartBit,
		Length:    req.Length,
		ByteOrder: req.ByteOrder,
		IsSigned:  req.IsSigned,
		Factor:    req.Factor,
		Offset:    req.Offset,
		Minimum:   req.Minimum,
		Maximum:   req.Maximum,
		Unit:      req.Unit,
		Comment:   req.Comment,
		Receivers: req.Receivers,
	}
	if len(req.Choices) > 0 {
		sig.Choices = req.Choices
	}
	if sig.ByteOrder == "" {
		sig.ByteOrder = types.ByteOrderBigEndian
	}
	return sig
}

func (s *Server) handleCreateSignal(w http.ResponseWriter, r *http.Request) {
	frameID, ok := frameIDParam(w, r)
	if !ok {
		return
	}
	var req types.SignalUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.db.MessageByFrameID(frameID)
	if msg == nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Message with ID %d not found", frameID))
		return
	}
	if msg.SignalByName(req.Name) != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Signal %q already exists in this message", req.Name))
		return
	}

	sig := signalFromUpdate(&req)
	msg.Signals = append(msg.Signals, sig)
	writeJSON(w, http.StatusCreated, sig)
}

func (s *Server) handleUpdateSignal(w http.ResponseWriter, r *http.Request) {
	frameID, ok := frameIDParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	var req types.SignalUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.db.MessageByFrameID(frameID)
	if msg == nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Message with ID %d not found", frameID))
		return
	}
	sig := msg.SignalByName(name)
	if sig == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Signal %q not found", name))
		return
	}
	if req.Name != name && msg.SignalByName(req.Name) != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Signal %q already exists", req.Name))
		return
	}

	*sig = signalFromUpdate(&req)
	writeJSON(w, http.StatusOK, sig)
}

func (s *Server) handleDeleteSignal(w http.ResponseWriter, r *http.Request) {
	frameID, ok := frameIDParam(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.db.MessageByFrameID(frameID)
	if msg == nil {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("Message with ID %d not found", frameID))
		return
	}
	for i := range msg.Signals {
		if msg.Signals[i].Name == name {
			msg.Signals = append(msg.Signals[:i], msg.Signals[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Signal %q not found", name))
}

// --- nodes ---

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req types.NodeUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db.NodeByName(req.Name) != nil {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Node %q already exists", req.Name))
		return
	}
	node := types.Node{Name: req.Name, Comment: req.Comment}
	s.db.Nodes = append(s.db.Nodes, node)
	writeJSON(w, http.StatusCreated, node)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	var req types.NodeUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.db.NodeByName(name)
	if node == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Node %q not found", name))
		return
	}
	// Name is identity; only the comment changes.
	node.Comment = req.Comment
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()

	// No cascade: message senders and signal receivers keep dangling
	// references to the deleted node.
	for i := range s.db.Nodes {
		if s.db.Nodes[i].Name == name {
			s.db.Nodes = append(s.db.Nodes[:i], s.db.Nodes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("Node %q not found", name))
}

// --- file operations ---

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.saved = true
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "File saved successfully",
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := cloneDatabase(&s.db)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", snapshot.Filename))
	_ = json.NewEncoder(w).Encode(snapshot)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.db = cloneDatabase(&s.initial)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Database reloaded from disk",
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	var db types.Database
	if err := json.NewDecoder(file).Decode(&db); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid database file: %v", err))
		return
	}
	if db.Filename == "" {
		db.Filename = header.Filename
	}

	s.mu.Lock()
	s.db = db
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Loaded %d messages from uploaded file", len(db.Messages)),
	})
}

// Saved reports whether /api/save has been called, for tests.
func (s *Server) Saved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saved
}

func cloneDatabase(db *types.Database) types.Database {
	out := types.Database{Filename: db.Filename}
	out.Nodes = append([]types.Node(nil), db.Nodes...)
	out.Messages = make([]types.Message, len(db.Messages))
	for i, m := range db.Messages {
		cp := m
		cp.Senders = append([]string(nil), m.Senders...)
		cp.Signals = make([]types.Signal, len(m.Signals))
		for j, sig := range m.Signals {
			sc := sig
			sc.Receivers = append([]string(nil), sig.Receivers...)
			if sig.Choices != nil {
				sc.Choices = make(map[string]string, len(sig.Choices))
				for k, v := range sig.Choices {
					sc.Choices[k] = v
				}
			}
			cp.Signals[j] = sc
		}
		out.Messages[i] = cp
	}
	return out
}
