package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"promo-platform/internal/domain"
	"promo-platform/internal/domain/model"
	"promo-platform/internal/domain/ports/repository"
	"promo-platform/internal/usecase"
)

// writeError maps domain errors onto HTTP status codes. Activation denials
// (inactive, targeting, fraud, capacity) are all 403: the attempt was
// understood and refused.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrPromoInactive),
		errors.Is(err, domain.ErrTargetingMismatch),
		errors.Is(err, domain.ErrFraudDenied),
		errors.Is(err, domain.ErrCapacityExceeded):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid request body"})
		return false
	}
	return true
}

// ===== payloads =====

// apiTime accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
type apiTime struct {
	time.Time
}

func (t *apiTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = ts
		return nil
	}
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	t.Time = ts
	return nil
}

func (t *apiTime) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return &t.Time
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userSignUpRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Country   string   `json:"country"`
	Language  string   `json:"language"`
	Interests []string `json:"interests"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type companySignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Age       int      `json:"age"`
	Country   string   `json:"country,omitempty"`
	Language  string   `json:"language,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Age:       u.Age,
		Country:   u.Country,
		Language:  u.Language,
		Interests: u.Interests,
	}
}

type userPatchRequest struct {
	Name      *string  `json:"name"`
	Password  *string  `json:"password"`
	Age       *int     `json:"age"`
	Country   *string  `json:"country"`
	Language  *string  `json:"language"`
	Interests []string `json:"interests"`
}

type promoCreateRequest struct {
	Mode        string           `json:"mode"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url"`
	PromoCommon string           `json:"promo_common"`
	PromoUnique []string         `json:"promo_unique"`
	Target      *model.Targeting `json:"target"`
	MaxCount    int              `json:"max_count"`
	ActiveFrom  *apiTime         `json:"active_from"`
	ActiveUntil *apiTime         `json:"active_until"`
}

type promoPatchRequest struct {
	Description *string          `json:"description"`
	ImageURL    *string          `json:"image_url"`
	Target      *model.Targeting `json:"target"`
	MaxCount    *int             `json:"max_count"`
	ActiveFrom  *apiTime         `json:"active_from"`
	ActiveUntil *apiTime         `json:"active_until"`
	Active      *bool            `json:"active"`
}

type promoResponse struct {
	PromoID     string           `json:"promo_id"`
	CompanyID   string           `json:"company_id"`
	Mode        string           `json:"mode"`
	Description string           `json:"description"`
	ImageURL    string           `json:"image_url,omitempty"`
	Target      *model.Targeting `json:"target,omitempty"`
	MaxCount    int              `json:"max_count"`
	ActiveFrom  *time.Time       `json:"active_from,omitempty"`
	ActiveUntil *time.Time       `json:"active_until,omitempty"`
	Active      bool             `json:"active"`
	CreatedAt   time.Time        `json:"created_at"`
}

func toPromoResponse(p *model.Promo) promoResponse {
	return promoResponse{
		PromoID:     p.ID,
		CompanyID:   p.CompanyID,
		Mode:        string(p.Mode),
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Target:      p.Targeting,
		MaxCount:    p.MaxCount,
		ActiveFrom:  p.ActiveFrom,
		ActiveUntil: p.ActiveUntil,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}

type promoDetailResponse struct {
	promoResponse
	LikeCount    int  `json:"like_count"`
	CommentCount int  `json:"comment_count"`
	Liked        bool `json:"is_liked_by_user"`
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCommentResponse(c *model.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		Content:   c.Content,
		AuthorID:  c.UserID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type activationResponse struct {
	Promo string `json:"promo"`
}

type historyItem struct {
	PromoID     string    `json:"promo_id"`
	Promo       string    `json:"promo"`
	ActivatedAt time.Time `json:"activated_at"`
}

// ===== account handlers =====

func (s *Server) handleUserSignUp(w http.ResponseWriter, r *http.Request) {
	var req userSignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	usr, err := s.users.SignUp(r.Context(), req.Email, req.Password, usecase.UserProfile{
		Name:      req.Name,
		Age:       req.Age,
		Country:   req.Country,
		Language:  req.Language,
		Interests: req.Interests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(usr.ID, AudienceUser)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleUserSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	usr, err := s.users.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(usr.ID, AudienceUser)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleUserProfile(w http.ResponseWriter, r *http.Request) {
	usr, err := s.users.Profile(r.Context(), Subject(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(usr))
}

func (s *Server) handleUserPatch(w http.ResponseWriter, r *http.Request) {
	var req userPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	usr, err := s.users.UpdateProfile(r.Context(), Subject(r.Context()), usecase.UserPatch{
		Name:      req.Name,
		Password:  req.Password,
		Age:       req.Age,
		Country:   req.Country,
		Language:  req.Language,
		Interests: req.Interests,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(usr))
}

func (s *Server) handleCompanySignUp(w http.ResponseWriter, r *http.Request) {
	var req companySignUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.companies.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(c.ID, AudienceCompany)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

func (s *Server) handleCompanySignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.companies.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(c.ID, AudienceCompany)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// ===== business promo handlers =====

func (s *Server) handlePromoCreate(w http.ResponseWriter, r *http.Request) {
	var req promoCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	promo, err := s.promos.Create(r.Context(), Subject(r.Context()), model.PromoMode(req.Mode), req.Description, &model.Promo{
		ImageURL:    req.ImageURL,
		CommonCode:  req.PromoCommon,
		CodePool:    req.PromoUnique,
		Targeting:   req.Target,
		MaxCount:    req.MaxCount,
		ActiveFrom:  req.ActiveFrom.ptr(),
		ActiveUntil: req.ActiveUntil.ptr(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": promo.ID})
}

func (s *Server) handlePromoList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.PromoListFilter{
		SortBy: q.Get("sort_by"),
	}
	if countries := q.Get("country"); countries != "" {
		for _, c := range strings.Split(countries, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Countries = append(f.Countries, c)
			}
		}
	}
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	if f.Limit <= 0 {
		f.Limit = 10
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	promos, total, err := s.promos.List(r.Context(), Subject(r.Context()), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]promoResponse, 0, len(promos))
	for _, p := range promos {
		out = append(out, toPromoResponse(p))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePromoGet(w http.ResponseWriter, r *http.Request) {
	promo, err := s.promos.GetForCompany(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromoResponse(promo))
}

func (s *Server) handlePromoPatch(w http.ResponseWriter, r *http.Request) {
	var req promoPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	promo, err := s.promos.Edit(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"), usecase.PromoPatch{
		Description: req.Description,
		ImageURL:    req.ImageURL,
		MaxCount:    req.MaxCount,
		Targeting:   req.Target,
		ActiveFrom:  req.ActiveFrom.ptr(),
		ActiveUntil: req.ActiveUntil.ptr(),
		Active:      req.Active,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPromoResponse(promo))
}

func (s *Server) handlePromoStat(w http.ResponseWriter, r *http.Request) {
	stats, err := s.promos.Stat(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ===== user promo handlers =====

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	promos, total, err := s.promos.Feed(r.Context(), Subject(r.Context()), repository.FeedFilter{
		Country: q.Get("country"),
		Search:  q.Get("search"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]promoResponse, 0, len(promos))
	for _, p := range promos {
		out = append(out, toPromoResponse(p))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePromoDetail(w http.ResponseWriter, r *http.Request) {
	d, err := s.promos.Detail(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, promoDetailResponse{
		promoResponse: toPromoResponse(d.Promo),
		LikeCount:     d.LikeCount,
		CommentCount:  d.CommentCount,
		Liked:         d.Liked,
	})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	code, err := s.redemption.Activate(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activationResponse{Promo: code})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := s.redemption.History(r.Context(), Subject(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]historyItem, 0, len(recs))
	for _, rec := range recs {
		out = append(out, historyItem{PromoID: rec.PromoID, Promo: rec.Code, ActivatedAt: rec.ActivatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

// ===== engagement handlers =====

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.Like(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUnlike(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.Unlike(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCommentAdd(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.engagement.AddComment(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	comments, err := s.engagement.ListComments(r.Context(), chi.URLParam(r, "promoID"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]commentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, toCommentResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCommentGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.engagement.GetComment(r.Context(), chi.URLParam(r, "promoID"), chi.URLParam(r, "commentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (s *Server) handleCommentEdit(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := s.engagement.EditComment(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"), chi.URLParam(r, "commentID"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

func (s *Server) handleCommentDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.engagement.DeleteComment(r.Context(), Subject(r.Context()), chi.URLParam(r, "promoID"), chi.URLParam(r, "commentID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
