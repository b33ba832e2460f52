package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myenglish-exercises/internal/domain"
	"github.com/heartmarshall/myenglish-exercises/internal/puzzle"
	"github.com/heartmarshall/myenglish-exercises/internal/service/exercise"
)

const maxBodyBytes = 64 << 10

type exerciseService interface {
	Start(ctx context.Context, input exercise.StartInput) (*exercise.SessionInfo, error)
	Open(ctx context.Context, sessionID uuid.UUID, index int) (*exercise.View, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*exercise.View, error)
	Move(ctx context.Context, sessionID uuid.UUID, input exercise.MoveInput) (*exercise.View, error)
	PickUp(ctx context.Context, sessionID, tokenID uuid.UUID) (*exercise.View, error)
	DropOn(ctx context.Context, sessionID uuid.UUID, zone puzzle.Zone, slot int) (*exercise.View, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) (*exercise.View, error)
	Hint(ctx context.Context, sessionID uuid.UUID) (*exercise.HintView, error)
	Submit(ctx context.Context, sessionID uuid.UUID) (*exercise.SubmitResult, error)
	Finish(ctx context.Context, sessionID uuid.UUID) (*exercise.Summary, error)
	History(ctx context.Context, limit int) ([]domain.Attempt, error)
}

// ExerciseHandler serves the exercise session endpoints.
type ExerciseHandler struct {
	svc exerciseService
	log *slog.Logger
}

// NewExerciseHandler creates an ExerciseHandler.
func NewExerciseHandler(svc exerciseService, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{svc: svc, log: logger.With("handler", "exercise")}
}

// ---------------------------------------------------------------------------
// Request / response bodies
// ---------------------------------------------------------------------------

type itemRequest struct {
	ID            uuid.UUID `json:"id"`
	SourceText    string    `json:"sourceText"`
	TargetText    string    `json:"targetText"`
	LessonContext string    `json:"lessonContext"`
}

type startRequest struct {
	Items     []itemRequest `json:"items"`
	LessonID  uuid.UUID     `json:"lessonId"`
	Direction string        `json:"direction"`
	Kind      string        `json:"kind"`
}

type moveRequest struct {
	TokenID uuid.UUID `json:"tokenId"`
	Zone    string    `json:"zone"`
	Slot    int       `json:"slot"`
}

type pickUpRequest struct {
	TokenID uuid.UUID `json:"tokenId"`
}

type dropRequest struct {
	Zone string `json:"zone"`
	Slot int    `json:"slot"`
}

type sessionResponse struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	Kind      string `json:"kind"`
	Total     int    `json:"total"`
}

type tokenResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type slotResponse struct {
	Index  int            `json:"index"`
	Token  *tokenResponse `json:"token"`
	Status string         `json:"status"`
}

type viewResponse struct {
	SessionID      string          `json:"sessionId"`
	Index          int             `json:"index"`
	Total          int             `json:"total"`
	ItemID         string          `json:"itemId,omitempty"`
	Word           string          `json:"word,omitempty"`
	Translation    string          `json:"translation,omitempty"`
	Fallback       bool            `json:"fallback"`
	Kind           string          `json:"kind,omitempty"`
	Slots          []slotResponse  `json:"slots"`
	Source         []tokenResponse `json:"source"`
	Unused         []tokenResponse `json:"unused,omitempty"`
	Available      []tokenResponse `json:"available,omitempty"`
	Holding        string          `json:"holding,omitempty"`
	IsFilled       bool            `json:"isFilled"`
	IsFullyCorrect bool            `json:"isFullyCorrect"`
	HintsLeft      int             `json:"hintsLeft"`
	Submitted      bool            `json:"submitted"`
	Changed        bool            `json:"changed"`
}

type hintResponse struct {
	viewResponse
	HintedSlots []int `json:"hintedSlots"`
}

type submitResponse struct {
	viewResponse
	Correct       bool   `json:"correct"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correctAnswer"`
	ErrorWord     string `json:"errorWord,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

type summaryResponse struct {
	SessionID string `json:"sessionId"`
	Total     int    `json:"total"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
}

type attemptResponse struct {
	ID            string `json:"id"`
	ItemID        string `json:"itemId"`
	Kind          string `json:"kind"`
	Direction     string `json:"direction"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	WasCorrect    bool   `json:"wasCorrect"`
	CreatedAt     string `json:"createdAt"`
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Start handles POST /api/exercises.
func (h *ExerciseHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}

	input := exercise.StartInput{
		LessonID:  req.LessonID,
		Direction: domain.Direction(req.Direction),
		Kind:      domain.ExerciseKind(req.Kind),
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, domain.VocabItem{
			ID:            it.ID,
			SourceText:    it.SourceText,
			TargetText:    it.TargetText,
			LessonContext: it.LessonContext,
		})
	}

	info, err := h.svc.Start(r.Context(), input)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		ID:        info.ID.String(),
		Direction: info.Direction.String(),
		Kind:      info.Kind.String(),
		Total:     info.Total,
	})
}

// Get handles GET /api/exercises/{id}.
func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respondView(w, r)(h.svc.Get(r.Context(), id))
}

// Open handles POST /api/exercises/{id}/items/{index}.
func (h *ExerciseHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item index")
		return
	}
	h.respondView(w, r)(h.svc.Open(r.Context(), id, index))
}

// Move handles POST /api/exercises/{id}/moves.
func (h *ExerciseHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decode(w, r, &req) {
		return
	}
	h.respondView(w, r)(h.svc.Move(r.Context(), id, exercise.MoveInput{
		TokenID: req.TokenID,
		Zone:    puzzle.Zone(req.Zone),
		Slot:    req.Slot,
	}))
}

// PickUp handles POST /api/exercises/{id}/drag.
func (h *ExerciseHandler) PickUp(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req pickUpRequest
	if !decode(w, r, &req) {
		return
	}
	h.respondView(w, r)(h.svc.PickUp(r.Context(), id, req.TokenID))
}

// DropOn handles POST /api/exercises/{id}/drop.
func (h *ExerciseHandler) DropOn(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req dropRequest
	if !decode(w, r, &req) {
		return
	}
	h.respondView(w, r)(h.svc.DropOn(r.Context(), id, puzzle.Zone(req.Zone), req.Slot))
}

// Cancel handles DELETE /api/exercises/{id}/drag.
func (h *ExerciseHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.respondView(w, r)(h.svc.Cancel(r.Context(), id))
}

// Hint handles POST /api/exercises/{id}/hints.
func (h *ExerciseHandler) Hint(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	hv, err := h.svc.Hint(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	slots := hv.Slots
	if slots == nil {
		slots = []int{}
	}
	writeJSON(w, http.StatusOK, hintResponse{viewResponse: toViewResponse(&hv.View), HintedSlots: slots})
}

// Submit handles POST /api/exercises/{id}/submit.
func (h *ExerciseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	res, err := h.svc.Submit(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		viewResponse:  toViewResponse(&res.View),
		Correct:       res.Correct,
		Answer:        res.Answer,
		CorrectAnswer: res.CorrectAnswer,
		ErrorWord:     res.ErrorWord,
		Explanation:   res.Explanation,
	})
}

// Finish handles DELETE /api/exercises/{id}.
func (h *ExerciseHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sum, err := h.svc.Finish(r.Context(), id)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		SessionID: sum.SessionID.String(),
		Total:     sum.Total,
		Attempted: sum.Attempted,
		Correct:   sum.Correct,
	})
}

// History handles GET /api/attempts?limit=N.
func (h *ExerciseHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	attempts, err := h.svc.History(r.Context(), limit)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	out := make([]attemptResponse, len(attempts))
	for i, a := range attempts {
		out[i] = attemptResponse{
			ID:            a.ID.String(),
			ItemID:        a.ItemID.String(),
			Kind:          a.Kind.String(),
			Direction:     a.Dir.String(),
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			WasCorrect:    a.WasCorrect,
			CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (h *ExerciseHandler) respondView(w http.ResponseWriter, r *http.Request) func(*exercise.View, error) {
	return func(v *exercise.View, err error) {
		if err != nil {
			handleError(h.log, w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toViewResponse(v))
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func toTokens(tokens []puzzle.Token) []tokenResponse {
	if tokens == nil {
		return nil
	}
	out := make([]tokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = tokenResponse{ID: t.ID.String(), Text: t.Text}
	}
	return out
}

func toViewResponse(v *exercise.View) viewResponse {
	resp := viewResponse{
		SessionID:      v.SessionID.String(),
		Index:          v.Index,
		Total:          v.Total,
		Translation:    v.Translation,
		Fallback:       v.Fallback,
		Kind:           v.Puzzle.Kind.String(),
		Slots:          make([]slotResponse, len(v.Puzzle.Slots)),
		Source:         toTokens(v.Puzzle.Source),
		Unused:         toTokens(v.Puzzle.Unused),
		Available:      toTokens(v.Puzzle.Available),
		IsFilled:       v.Puzzle.IsFilled,
		IsFullyCorrect: v.Puzzle.IsFullyCorrect,
		HintsLeft:      v.Puzzle.HintsLeft,
		Submitted:      v.Submitted,
		Changed:        v.Changed,
	}
	if v.ItemID != uuid.Nil {
		resp.ItemID = v.ItemID.String()
		resp.Word = v.Word
	}
	if v.Holding != uuid.Nil {
		resp.Holding = v.Holding.String()
	}
	if resp.Source == nil {
		resp.Source = []tokenResponse{}
	}
	for i, s := range v.Puzzle.Slots {
		sr := slotResponse{Index: s.Index, Status: string(s.Status)}
		if s.Token != nil {
			sr.Token = &tokenResponse{ID: s.Token.ID.String(), Text: s.Token.Text}
		}
		resp.Slots[i] = sr
	}
	return resp
}
