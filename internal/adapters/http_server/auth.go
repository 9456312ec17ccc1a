package httpserver

import (
	"context"
	"net/http"
	"strings"

	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
)

// Accounts is the PMS account surface the dashboard's login and sign-up
// screens call through the BFF.
type Accounts interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Register(ctx context.Context, in domain.Registration) error
	Activate(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if verr := requireFields(map[string]string{"email": in.Email, "password": in.Password}); verr != nil {
		h.writeError(w, verr)
		return
	}
	s, err := h.Accounts.Login(r.Context(), strings.TrimSpace(in.Email), in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in domain.Registration
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	verr := requireFields(map[string]string{"name": in.Name, "email": in.Email, "password": in.Password})
	if in.Phone != "" && !app.ValidPhone(in.Phone) {
		if verr == nil {
			verr = &domain.ValidationError{Fields: map[string]string{}}
		}
		verr.Fields["phone"] = domain.CodeInvalidPhone
	}
	if verr != nil {
		h.writeError(w, verr)
		return
	}
	if err := h.Accounts.Register(r.Context(), in); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) activate(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, "token", h.Accounts.Activate)
}

func (h *Handlers) resendVerification(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, "email", h.Accounts.ResendVerification)
}

func (h *Handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	h.accountAction(w, r, "email", h.Accounts.ForgotPassword)
}

// accountAction posts the single required body field to fn.
func (h *Handlers) accountAction(w http.ResponseWriter, r *http.Request, field string, fn func(context.Context, string) error) {
	var in map[string]string
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	v := strings.TrimSpace(in[field])
	if verr := requireFields(map[string]string{field: v}); verr != nil {
		h.writeError(w, verr)
		return
	}
	if err := fn(r.Context(), v); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func requireFields(fields map[string]string) *domain.ValidationError {
	var verr *domain.ValidationError
	for name, v := range fields {
		if strings.TrimSpace(v) != "" {
			continue
		}
		if verr == nil {
			verr = &domain.ValidationError{Fields: map[string]string{}}
		}
		verr.Fields[name] = domain.CodeRequired
	}
	return verr
}

// ---- Hotels ----

func (h *Handlers) myHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Hotels.MyHotels(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, hs)
}

func (h *Handlers) createHotel(w http.ResponseWriter, r *http.Request) {
	var in app.HotelForm
	img, err := decodeForm(r, &in)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	f := &app.HotelForm{}
	f.SetName(in.Name)
	f.SetAddress(in.Address)
	f.SetPhone(in.Phone)
	f.SetImage(img)
	hotel, err := h.Hotels.CreateHotel(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, hotel)
}
