package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

type HTTPHandler struct {
	Registry    *RoomRegistry
	Gateway     *Gateway
	Broadcaster *Broadcaster
	Sessions    *SessionTokens
}

func NewHTTPServer(registry *RoomRegistry, gateway *Gateway, broadcaster *Broadcaster, sessions *SessionTokens, allowedOrigin string) http.Handler {
	httpHandler := HTTPHandler{registry, gateway, broadcaster, sessions}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(middleware.Heartbeat("/"))

	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)))
		r.Post("/rooms", httpHandler.createRoom())
		r.Post("/rooms/{roomID}/join", httpHandler.joinRoom())
		r.Get("/rooms/{roomID}", httpHandler.roomStatus())
	})

	r.Get("/ws", httpHandler.websocket())
	// The polling binding is not rate limited: a 1s poll alone exceeds the
	// room management budget.
	r.Post("/events", httpHandler.submitEvent())
	r.Get("/events", httpHandler.pollEvents())
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type CreateRoomRequest struct {
	PlayerName  string     `json:"playerName"`
	PuzzleImage string     `json:"puzzleImage"`
	Difficulty  Difficulty `json:"difficulty"`
}

type CreateRoomResponse struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	PuzzleID     string `json:"puzzleId"`
	SessionToken string `json:"sessionToken"`
}

func (h HTTPHandler) createRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.PlayerName == "" || req.PuzzleImage == "" || req.Difficulty == "" {
			writeError(w, http.StatusBadRequest, "missing required fields: playerName, puzzleImage, difficulty")
			return
		}
		roomID, playerID, puzzleID, err := h.Registry.CreateRoom(req.PlayerName, req.PuzzleImage, req.Difficulty)
		if errors.Is(err, ErrUnknownDifficulty) {
			writeError(w, http.StatusBadRequest, "invalid difficulty, must be easy, medium or hard")
			return
		}
		token, err := h.Sessions.Generate(roomID, playerID, req.PlayerName)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusCreated, CreateRoomResponse{
			RoomID:       roomID,
			PlayerID:     playerID,
			PuzzleID:     puzzleID,
			SessionToken: token,
		})
	}
}

type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomResponse struct {
	PlayerID     string    `json:"playerId"`
	Puzzle       Puzzle    `json:"puzzle"`
	GameState    GameState `json:"gameState"`
	SessionToken string    `json:"sessionToken"`
}

func (h HTTPHandler) joinRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		var req JoinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerName == "" {
			writeError(w, http.StatusBadRequest, "missing required field: playerName")
			return
		}
		playerID, err := h.Registry.JoinRoom(roomID, req.PlayerName)
		if errors.Is(err, ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		if errors.Is(err, ErrRoomFull) {
			writeError(w, http.StatusConflict, "room is full")
			return
		}
		status, _ := h.Registry.Status(roomID)
		token, err := h.Sessions.Generate(roomID, playerID, req.PlayerName)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, JoinRoomResponse{
			PlayerID:     playerID,
			Puzzle:       status.Puzzle,
			GameState:    status.GameState,
			SessionToken: token,
		})
	}
}

func (h HTTPHandler) roomStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		status, ok := h.Registry.Status(roomID)
		if !ok {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

type SubmitEventRequest struct {
	RoomID   string          `json:"roomId"`
	PlayerID string          `json:"playerId"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
}

type SubmitEventResponse struct {
	Success bool              `json:"success"`
	Events  []json.RawMessage `json:"events,omitempty"`
}

// submitEvent is the polling binding's inbound side. The event runs through
// the same gateway dispatch as a websocket frame; reply-to-sender events come
// back in the response body, everything else lands in the room log.
func (h HTTPHandler) submitEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.RoomID == "" || req.PlayerID == "" || req.Type == "" {
			writeError(w, http.StatusBadRequest, "missing required fields: roomId, playerId, type")
			return
		}
		event, err := DecodeInbound(req.Type, req.Data)
		if errors.Is(err, ErrUndefinedType) {
			writeError(w, http.StatusBadRequest, "unknown event type")
			return
		}
		if m, ok := event.(JoinRoomEvent); ok {
			if m.RoomID == "" {
				m.RoomID = req.RoomID
			}
			if m.PlayerID == "" {
				m.PlayerID = req.PlayerID
			}
			event = m
		}
		result := h.Gateway.Dispatch(req.PlayerID, event)
		h.deliver(req.PlayerID, result, nil)
		response := SubmitEventResponse{Success: true}
		for _, ev := range result.ToSender {
			response.Events = append(response.Events, EncodeOutbound(ev))
		}
		writeJSON(w, http.StatusOK, response)
	}
}

func (h HTTPHandler) pollEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomId")
		playerID := r.URL.Query().Get("playerId")
		if roomID == "" || playerID == "" {
			writeError(w, http.StatusBadRequest, "missing roomId or playerId")
			return
		}
		lastEventID, _ := strconv.ParseInt(r.URL.Query().Get("lastEventId"), 10, 64)
		writeJSON(w, http.StatusOK, h.Broadcaster.Log.After(roomID, playerID, lastEventID))
	}
}

// deliver routes one dispatch result: reply events to the sender's channel
// when it has one, broadcast batches through the shared fan-out.
func (h HTTPHandler) deliver(authorID string, result DispatchResult, send chan []byte) {
	if send != nil {
		for _, event := range result.ToSender {
			select {
			case send <- EncodeOutbound(event):
			default:
			}
		}
	}
	for _, batch := range result.Broadcasts {
		h.Broadcaster.Fanout(batch.RoomID, authorID, batch.Events)
	}
}
