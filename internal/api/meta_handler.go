package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	app_errors "after3am/backend/internal/errors"
	"after3am/backend/internal/prompt"
	"after3am/backend/internal/timegate"
)

// MetaHandler serves the static catalog and the gate state.
type MetaHandler struct {
	gate timegate.Gate
	now  func() time.Time
}

func NewMetaHandler(gate timegate.Gate, now func() time.Time) *MetaHandler {
	if now == nil {
		now = time.Now
	}
	return &MetaHandler{gate: gate, now: now}
}

// HandleListModes godoc
// @Summary      List modes
// @Description  Lists the selectable conversation modes in picker order.
// @Tags         Meta
// @Produce      json
// @Success      200  {array}  prompt.ModeInfo
// @Router       /v1/modes [get]
func (h *MetaHandler) HandleListModes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, prompt.Modes())
}

// HandleGetMode godoc
// @Summary      Get a mode
// @Description  Returns the display name and input placeholder of one mode.
// @Tags         Meta
// @Produce      json
// @Param        modeID  path      string  true  "Mode identifier"
// @Success      200     {object}  prompt.ModeInfo
// @Failure      404     {object}  ErrorResponse
// @Router       /v1/modes/{modeID} [get]
func (h *MetaHandler) HandleGetMode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "modeID")
	mode, ok := prompt.Lookup(id)
	if !ok {
		respondWithError(w, fmt.Errorf("%w: mode %q", app_errors.ErrNotFound, id))
		return
	}
	respondWithJSON(w, http.StatusOK, prompt.ModeInfo{
		ID:          mode,
		Name:        prompt.DisplayName(id),
		Placeholder: prompt.PlaceholderFor(id),
	})
}

// HandleGateStatus godoc
// @Summary      Gate status
// @Description  Reports whether the chat is open and how long until it opens next.
// @Tags         Meta
// @Produce      json
// @Success      200  {object}  timegate.Status
// @Router       /v1/gate [get]
func (h *MetaHandler) HandleGateStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.gate.Status(h.now()))
}

// RequireOpenGate rejects requests while the gate is closed.
func (h *MetaHandler) RequireOpenGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := h.now()
		if !h.gate.Open(now) {
			respondWithError(w, fmt.Errorf("%w: come back in %s", app_errors.ErrPermission, timegate.FormatCountdown(h.gate.Until(now))))
			return
		}
		next.ServeHTTP(w, r)
	})
}
