package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
)

const maxUpload = 10 << 20

type Handlers struct {
	Rooms      *app.RoomStore
	Categories *app.CategoryStore
	Bookings   *app.BookingStore
	Inventory  *app.InventoryStore
	Checks     *app.InventoryCheckStore
	Desk       *app.Receptionist
	Feed       *app.Feed
	Hotels     *app.HotelStore
	Accounts   Accounts

	// LoginPath is sent as Location on 401 so the dashboard can redirect.
	LoginPath string
}

type problem struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Code     string            `json:"code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/register", h.register)
		r.Post("/activate", h.activate)
		r.Post("/resend-verification", h.resendVerification)
		r.Post("/forgot-password", h.forgotPassword)
	})

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireBearer(h.LoginPath))
		r.Get("/v1/hotels", h.myHotels)
		r.Post("/v1/hotels", h.createHotel)
		r.Route("/v1/hotels/{hotelID}", h.hotelRoutes)
	})
}

func (h *Handlers) hotelRoutes(r chi.Router) {
	r.Use(h.hotelAccess)
	r.Get("/notifications", h.listNotifications)
	r.Get("/errors", h.storeErrors)
	r.Get("/board", h.getBoard)

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.listRooms)
		r.Post("/", h.createRoom)
		r.Patch("/{roomID}", h.updateRoom)
		r.Delete("/{roomID}", h.deleteRoom)
		r.Post("/{roomID}/check-in", h.checkIn)
		r.Post("/{roomID}/walk-in", h.walkIn)
		r.Post("/{roomID}/status", h.setRoomStatus)
		r.Get("/{roomID}/bookings", h.roomBookings)
		r.Get("/{roomID}/bookings/latest", h.latestRoomBooking)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Patch("/{categoryID}", h.updateCategory)
		r.Delete("/{categoryID}", h.deleteCategory)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.listBookings)
		r.Post("/", h.createBooking)
		r.Get("/search", h.searchBookings)
		r.Get("/search/last", h.lastSearch)
		r.Get("/{bookingID}", h.getBooking)
		r.Patch("/{bookingID}", h.updateBooking)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.listItems)
		r.Post("/", h.createItem)
		r.Patch("/{itemID}", h.updateItem)
		r.Delete("/{itemID}", h.deleteItem)
	})

	r.Route("/inventory-checks", func(r chi.Router) {
		r.Get("/", h.listChecks)
		r.Get("/{checkID}", h.getCheck)
		r.Patch("/{checkID}", h.updateCheck)
		r.Delete("/{checkID}", h.deleteCheck)
		r.Post("/{checkID}/balance", h.balanceCheck)

		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.listDrafts)
			r.Post("/", h.createDraft)
			r.Get("/{draftID}", h.getDraft)
			r.Delete("/{draftID}", h.deleteDraft)
			r.Post("/{draftID}/items", h.addDraftItem)
			r.Delete("/{draftID}/items/{itemID}", h.removeDraftItem)
			r.Post("/{draftID}/items/{itemID}/edit", h.startDraftEdit)
			r.Put("/{draftID}/items/{itemID}/edit", h.stageDraftEdit)
			r.Post("/{draftID}/items/{itemID}/save", h.saveDraftEdit)
			r.Delete("/{draftID}/items/{itemID}/edit", h.cancelDraftEdit)
			r.Post("/{draftID}/submit", h.submitDraft)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemJSON(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemJSON(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps a store error onto a problem response. The detail is the
// same Vietnamese text the toast carried.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	p := problem{Type: "about:blank", Detail: app.UserMessage(err)}

	var ve *domain.ValidationError
	var de *domain.Error
	switch {
	case errors.As(err, &ve):
		p.Status, p.Title, p.Code, p.Fields = http.StatusUnprocessableEntity, "Validation Failed", "VALIDATION", ve.Fields
	case errors.As(err, &de) && de.Kind == domain.KindUnauthorized:
		p.Status, p.Title, p.Redirect = http.StatusUnauthorized, "Unauthorized", h.LoginPath
		if h.LoginPath != "" {
			w.Header().Set("Location", h.LoginPath)
		}
	case errors.Is(err, domain.ErrForbidden):
		p.Status, p.Title = http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		p.Status, p.Title = http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrDraftConflict):
		p.Status, p.Title, p.Code = http.StatusConflict, "Conflict", "DRAFT_CHANGED"
	case errors.As(err, &de) && de.Kind == domain.KindAPI && de.Status >= 400 && de.Status < 500:
		p.Status, p.Title, p.Code = de.Status, http.StatusText(de.Status), de.Code
	case errors.As(err, &de):
		p.Status, p.Title, p.Code = http.StatusBadGateway, "Bad Gateway", de.Code
	case errors.Is(err, domain.ErrSuperseded):
		p.Status, p.Title, p.Code = http.StatusConflict, "Conflict", "SUPERSEDED"
	case errors.Is(err, domain.ErrDuplicateItem), errors.Is(err, domain.ErrPendingEdits),
		errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrEmptyCheck):
		p.Status, p.Title = http.StatusConflict, "Conflict"
	case errors.Is(err, domain.ErrItemNotInCheck), errors.Is(err, domain.ErrNoStagedEdit),
		errors.Is(err, domain.ErrInvalidStock):
		p.Status, p.Title = http.StatusBadRequest, "Bad Request"
	default:
		p.Status, p.Title = http.StatusInternalServerError, "Internal Server Error"
	}
	writeProblemJSON(w, p)
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

type envelope struct {
	Data any `json:"data"`
}

// writeCached answers a GET with an ETag, short-circuiting to 304 when the
// client already holds this version.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(envelope{Data: v})
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("route", routeOf(r)).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: v}); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUpload))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeForm reads v from a JSON body, or from the "data" field of a
// multipart body whose optional "image" part is returned as an upload.
func decodeForm(r *http.Request, v any) (*domain.Upload, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		return nil, decodeJSON(r, v)
	}
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, err
	}
	if data := r.FormValue("data"); data != "" {
		if err := json.Unmarshal([]byte(data), v); err != nil {
			return nil, err
		}
	}
	f, fh, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		return nil, err
	}
	return &domain.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: b}, nil
}

func force(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	return v
}

func (h *Handlers) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 100 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = l
	}
	writeJSON(w, http.StatusOK, h.Feed.Recent(chi.URLParam(r, "hotelID"), session.TokenFrom(r.Context()), limit))
}

// storeErrors reports, per store, the message of the hotel's last failed
// action, or an empty string when the last action succeeded.
func (h *Handlers) storeErrors(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "hotelID")
	last := map[string]error{
		"rooms":      h.Rooms.LastError(hotelID),
		"categories": h.Categories.LastError(hotelID),
		"bookings":   h.Bookings.LastError(hotelID),
		"inventory":  h.Inventory.LastError(hotelID),
		"checks":     h.Checks.LastError(hotelID),
	}
	out := make(map[string]string, len(last))
	for store, err := range last {
		if err != nil {
			out[store] = app.UserMessage(err)
		} else {
			out[store] = ""
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- Board and rooms ----

func (h *Handlers) getBoard(w http.ResponseWriter, r *http.Request) {
	q := app.BoardQuery{Search: r.URL.Query().Get("search")}
	if st := r.URL.Query().Get("status"); st != "" {
		for _, raw := range strings.Split(st, ",") {
			s, err := domain.ParseRoomStatus(raw)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid status", err.Error())
				return
			}
			q.Statuses = append(q.Statuses, s)
		}
	}
	b, err := h.Desk.Board(r.Context(), chi.URLParam(r, "hotelID"), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, b)
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.Rooms(r.Context(), chi.URLParam(r, "hotelID"), force(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, rooms)
}

func (h *Handlers) roomForm(w http.ResponseWriter, r *http.Request) (*app.RoomForm, bool) {
	var in app.RoomForm
	img, err := decodeForm(r, &in)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return nil, false
	}
	f := &app.RoomForm{}
	f.SetHotel(chi.URLParam(r, "hotelID"))
	f.SetNumber(in.Number)
	f.SetFloor(in.Floor)
	f.SetCategory(in.CategoryID)
	f.SetStatus(in.Status)
	f.SetNote(in.Note)
	f.SetImage(img)
	return f, true
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	f, ok := h.roomForm(w, r)
	if !ok {
		return
	}
	room, err := h.Rooms.CreateRoom(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	f, ok := h.roomForm(w, r)
	if !ok {
		return
	}
	room, err := h.Rooms.UpdateRoom(r.Context(), chi.URLParam(r, "roomID"), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := h.Rooms.DeleteRoom(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "roomID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	var in struct {
		BookingID string `json:"bookingId"`
		Note      string `json:"note"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	room, err := h.Desk.CheckIn(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "roomID"), in.BookingID, in.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) walkIn(w http.ResponseWriter, r *http.Request) {
	var in app.WalkInForm
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	f := &app.WalkInForm{}
	f.SetGuestName(in.GuestName)
	f.SetGuestPhone(in.GuestPhone)
	f.SetGuestCount(in.GuestCount)
	f.SetCheckOut(in.CheckOut)
	f.SetNote(in.Note)
	room, err := h.Desk.WalkIn(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "roomID"), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) setRoomStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Action app.RoomAction `json:"action"`
	}
	if err := decodeJSON(r, &in); err != nil || in.Action == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "action is required")
		return
	}
	room, err := h.Rooms.SetStatus(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "roomID"), in.Action)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *Handlers) roomBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.RoomBookings(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, bs)
}

func (h *Handlers) latestRoomBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.LatestRoomBooking(r.Context(), chi.URLParam(r, "roomID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, b)
}

// ---- Categories ----

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Categories.Categories(r.Context(), chi.URLParam(r, "hotelID"), force(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, cs)
}

func (h *Handlers) categoryForm(w http.ResponseWriter, r *http.Request) (*app.CategoryForm, bool) {
	var in app.CategoryForm
	img, err := decodeForm(r, &in)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return nil, false
	}
	f := &app.CategoryForm{}
	f.SetHotel(chi.URLParam(r, "hotelID"))
	f.SetName(in.Name)
	f.SetDescription(in.Description)
	if in.HourlyPrice != nil {
		f.SetHourlyPrice(*in.HourlyPrice)
	}
	if in.DailyPrice != nil {
		f.SetDailyPrice(*in.DailyPrice)
	}
	if in.OvernightPrice != nil {
		f.SetOvernightPrice(*in.OvernightPrice)
	}
	f.SetImage(img)
	return f, true
}

func (h *Handlers) createCategory(w http.ResponseWriter, r *http.Request) {
	f, ok := h.categoryForm(w, r)
	if !ok {
		return
	}
	c, err := h.Categories.CreateCategory(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) updateCategory(w http.ResponseWriter, r *http.Request) {
	f, ok := h.categoryForm(w, r)
	if !ok {
		return
	}
	c, err := h.Categories.UpdateCategory(r.Context(), chi.URLParam(r, "categoryID"), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) deleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.Categories.DeleteCategory(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "categoryID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Bookings ----

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.Bookings(r.Context(), chi.URLParam(r, "hotelID"), force(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, bs)
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var in app.BookingForm
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	f := &app.BookingForm{}
	f.SetHotel(chi.URLParam(r, "hotelID"))
	f.SetRoom(in.RoomID)
	f.SetCheckIn(in.CheckIn)
	f.SetCheckOut(in.CheckOut)
	f.SetGuestName(in.GuestName)
	f.SetGuestPhone(in.GuestPhone)
	f.SetGuestCount(in.GuestCount)
	f.SetNote(in.Note)
	b, err := h.Desk.Book(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) searchBookings(w http.ResponseWriter, r *http.Request) {
	bs, err := h.Bookings.Search(r.Context(), chi.URLParam(r, "hotelID"), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

// lastSearch returns the caller's newest search that landed, for restoring
// the search box after a reload.
func (h *Handlers) lastSearch(w http.ResponseWriter, r *http.Request) {
	res, ok := h.Bookings.LastSearch(r.Context(), chi.URLParam(r, "hotelID"))
	if !ok {
		res = app.SearchResult{Bookings: []domain.Booking{}}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bookings.Booking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, b)
}

func (h *Handlers) updateBooking(w http.ResponseWriter, r *http.Request) {
	var p domain.BookingPatch
	if err := decodeJSON(r, &p); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	b, err := h.Bookings.UpdateBooking(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "bookingID"), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
