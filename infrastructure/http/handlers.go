package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/Alex-SA1/Efficient-Study-Platform/auth"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/errors"
	"github.com/Alex-SA1/Efficient-Study-Platform/repositories"
	"github.com/Alex-SA1/Efficient-Study-Platform/runtime"
	"github.com/Alex-SA1/Efficient-Study-Platform/services"
)

// historyTimeFormat matches what the chat page renders for paged history,
// e.g. "3 Sep 14:07".
const historyTimeFormat = "2 Jan 15:04"

var validate = validator.New()

// Handler carries every dependency the study-session endpoints need.
type Handler struct {
	log        *slog.Logger
	sessions   services.ISessionService
	chat       services.IChatService
	users      repositories.IUserRepository
	hub        *runtime.Hub
	issuer     auth.TokenIssuer
	pageSize   int
	bufferSize int
}

func NewHandler(log *slog.Logger, sessions services.ISessionService,
	chat services.IChatService, users repositories.IUserRepository,
	hub *runtime.Hub, issuer auth.TokenIssuer, pageSize, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		sessions:   sessions,
		chat:       chat,
		users:      users,
		hub:        hub,
		issuer:     issuer,
		pageSize:   pageSize,
		bufferSize: bufferSize,
	}
}

// Routes wires every endpoint onto a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("POST /generate-study-session-code", h.handleGenerateCode)
	mux.HandleFunc("POST /join-study-session", h.handleJoin)
	mux.HandleFunc("POST /leave-study-session", h.handleLeave)
	mux.HandleFunc("GET /main/study-session/{code}", h.handleHistory)
	mux.HandleFunc("GET /ws/study-session/{code}", h.handleSocket)
	return mux
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// handleLogin verifies seeded credentials and sets the signed session
// cookie. Account registration lives in the account collaborator.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, errors.ErrUnauthenticated)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, errors.ErrUnauthenticated)
		return
	}

	hash, err := h.users.GetCredentials(req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	match, err := auth.ComparePassword(req.Password, hash)
	if err != nil || !match {
		writeError(w, r, errors.ErrUnauthenticated)
		return
	}

	profile, err := h.users.GetProfile(req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.issuer.GenerateToken(profile.Username, profile.Country)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.log.Info("User logged in", "user", req.Username)
	writeJSON(w, http.StatusOK, map[string]string{"username": profile.Username})
}

// handleGenerateCode creates a fresh session with the caller as its first
// member and returns the shareable code.
func (h *Handler) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	identity, err := h.issuer.IdentityFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	code, err := h.sessions.GenerateCode(identity.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"study_session_code": string(code)})
}

type joinRequest struct {
	SessionCode string `json:"session_code"`
}

// handleJoin applies the access predicate and, on success, sends the
// browser into the session page. XHR callers get the code back as JSON.
func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	identity, err := h.issuer.IdentityFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Form first: ParseForm leaves a JSON body untouched, the reverse
	// order would consume it before the fallback could read the form.
	rawCode := r.PostFormValue("session_code")
	if rawCode == "" {
		var req joinRequest
		if err := decodeBody(r, &req); err == nil {
			rawCode = req.SessionCode
		}
	}
	if err := auth.ValidateJoin(auth.JoinRequest{SessionCode: rawCode}); err != nil {
		writeError(w, r, err)
		return
	}

	code, err := h.sessions.Join(rawCode, identity.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	target := "/main/study-session/" + string(code)
	if isXHR(r) {
		writeJSON(w, http.StatusOK, map[string]string{
			"study_session_code": string(code),
			"location":           target,
		})
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// handleLeave removes the caller from the session. The last member's leave
// tears the session down entirely.
func (h *Handler) handleLeave(w http.ResponseWriter, r *http.Request) {
	identity, err := h.issuer.IdentityFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rawCode := r.PostFormValue("session_code")
	if rawCode == "" {
		var req joinRequest
		if err := decodeBody(r, &req); err == nil {
			rawCode = req.SessionCode
		}
	}
	if !domain.ValidSessionCode(rawCode) {
		writeError(w, r, errors.ErrInvalidSessionCode)
		return
	}

	if err := h.sessions.Leave(domain.SessionCode(rawCode), identity.Username); err != nil {
		writeError(w, r, err)
		return
	}

	if isXHR(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/main/menu", http.StatusSeeOther)
}

type historyMessage struct {
	Sender            string `json:"sender"`
	MessageContent    string `json:"message_content"`
	Datetime          string `json:"datetime"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

type historyResponse struct {
	Messages            []historyMessage `json:"messages"`
	HasNextMessagesPage bool             `json:"has_next_messages_page"`
	NextMessagesPage    int              `json:"next_messages_page"`
}

// handleHistory serves one page of session history, oldest first within the
// page, timestamps rendered in the viewer's timezone. Page 1 is the newest.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, err := h.issuer.IdentityFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rawCode := r.PathValue("code")
	if !domain.ValidSessionCode(rawCode) {
		writeError(w, r, errors.ErrInvalidSessionCode)
		return
	}
	code := domain.SessionCode(rawCode)

	if err := h.sessions.Authorize(code, identity.Username); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := strconv.Atoi(r.URL.Query().Get("messages-page"))
	if err != nil || page < 1 {
		page = 1
	}

	messages, hasNext, err := h.chat.HistoryPage(code.Group(), page, h.pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}

	loc := identity.Location()
	avatars := h.avatarsFor(messages)
	resp := historyResponse{
		Messages: lo.Map(messages, func(m domain.Message, _ int) historyMessage {
			return historyMessage{
				Sender:            m.Author,
				MessageContent:    m.Content,
				Datetime:          m.CreatedAt.In(loc).Format(historyTimeFormat),
				ProfilePictureURL: avatars[m.Author],
			}
		}),
		HasNextMessagesPage: hasNext,
	}
	if hasNext {
		resp.NextMessagesPage = page + 1
	}
	writeJSON(w, http.StatusOK, resp)
}

// avatarsFor resolves each distinct author's picture once per request.
// A failed lookup degrades to the default avatar, never fails the page.
func (h *Handler) avatarsFor(messages []domain.Message) map[string]string {
	avatars := make(map[string]string)
	for _, m := range messages {
		if _, ok := avatars[m.Author]; ok {
			continue
		}
		profile, err := h.users.GetProfile(m.Author)
		if err != nil {
			profile = domain.Profile{Username: m.Author}
		}
		avatars[m.Author] = profile.Avatar()
	}
	return avatars
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func isXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the domain taxonomy at the boundary: XHR callers get a
// small JSON body with the mapped status, browsers get sent to /404.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if isXHR(r) || r.Method == http.MethodGet {
		writeJSON(w, errors.MapToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	http.Redirect(w, r, "/404", http.StatusSeeOther)
}
