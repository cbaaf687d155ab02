package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"empregozap-engine/internal/domain"
	"empregozap-engine/internal/worker"
)

// Brazilian number: country code 55, then DDD plus subscriber digits.
var reWhatsApp = regexp.MustCompile(`^55[0-9]{10,11}$`)

// flexID accepts a user id as either a JSON string or a JSON number; older
// clients send numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

type createSearchRequest struct {
	UserID   flexID `json:"user_id"`
	Role     string `json:"cargo"`
	City     string `json:"cidade"`
	State    string `json:"estado"`
	WhatsApp string `json:"whatsapp"`
}

func (req *createSearchRequest) validate() string {
	req.Role = strings.TrimSpace(req.Role)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.ToUpper(strings.TrimSpace(req.State))
	req.WhatsApp = strings.TrimSpace(req.WhatsApp)

	switch {
	case req.UserID == "":
		return "user_id is required"
	case utf8.RuneCountInString(req.Role) < 3 || utf8.RuneCountInString(req.Role) > 100:
		return "cargo must be between 3 and 100 characters"
	case utf8.RuneCountInString(req.City) < 2 || utf8.RuneCountInString(req.City) > 100:
		return "cidade must be between 2 and 100 characters"
	case utf8.RuneCountInString(req.State) != 2:
		return "estado must be the 2-letter state code"
	case !reWhatsApp.MatchString(req.WhatsApp):
		return "whatsapp must start with 55 followed by DDD and number (10 or 11 digits)"
	}
	return ""
}

type SearchesHandler struct {
	Deps
}

type createSearchResponse struct {
	domain.Search
	Message string `json:"message"`
}

// Create registers (or refreshes) the user's search. When the parameters are
// new, a scrape run and a confirmation message are queued; resubmitting the
// identical search is a no-op beyond a contact refresh.
func (h SearchesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		WriteError(w, r, http.StatusBadRequest, "validation", msg)
		return
	}

	s, shouldRun, err := h.Searches.Submit(r.Context(), string(req.UserID), req.Role, req.City, req.State, req.WhatsApp)
	if err != nil {
		h.Log.Errorw("search submit failed", "user_id", req.UserID, "error", err)
		WriteError(w, r, http.StatusInternalServerError, "submit_failed", "could not register search")
		return
	}

	msg := "Busca já configurada com esses critérios"
	if shouldRun {
		msg = "Busca criada e agendada com sucesso"
		if h.Metrics != nil {
			h.Metrics.SearchesCreated.Inc()
		}
		h.queueRun(r, s)
	}

	WriteJSON(w, http.StatusOK, createSearchResponse{Search: s, Message: msg})
}

func (h SearchesHandler) queueRun(r *http.Request, s domain.Search) {
	err := h.Pool.Submit("search-run", func(ctx context.Context) error {
		if h.Confirm != nil {
			if cerr := h.Confirm(ctx, s); cerr != nil {
				h.Log.Warnw("confirmation message failed", "search_id", s.ID, "error", cerr)
			}
		}
		return h.RunSearch(ctx, s)
	})
	if err != nil {
		if errors.Is(err, worker.ErrQueueFull) {
			h.Log.Warnw("run queue full, search waits for next cycle", "search_id", s.ID)
			return
		}
		h.Log.Errorw("queue run failed", "search_id", s.ID, "error", err)
	}
}
