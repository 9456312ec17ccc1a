package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hotel_desk/internal/app"
	"hotel_desk/internal/domain"
)

// ---- Inventory items ----

func (h *Handlers) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.Items(r.Context(), chi.URLParam(r, "hotelID"), force(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if q := r.URL.Query().Get("q"); q != "" {
		items = app.SearchItems(items, q)
	}
	writeCached(w, r, items)
}

func (h *Handlers) itemForm(w http.ResponseWriter, r *http.Request) (*app.InventoryItemForm, bool) {
	var in app.InventoryItemForm
	img, err := decodeForm(r, &in)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return nil, false
	}
	f := &app.InventoryItemForm{}
	f.SetHotel(chi.URLParam(r, "hotelID"))
	f.SetCode(in.Code)
	f.SetName(in.Name)
	f.SetUnit(in.Unit)
	f.SetSellingPrice(in.SellingPrice)
	f.SetCostPrice(in.CostPrice)
	f.SetStock(in.Stock)
	f.SetCategory(in.Category)
	f.SetType(in.Type)
	f.SetImage(img)
	return f, true
}

func (h *Handlers) createItem(w http.ResponseWriter, r *http.Request) {
	f, ok := h.itemForm(w, r)
	if !ok {
		return
	}
	it, err := h.Inventory.CreateItem(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	f, ok := h.itemForm(w, r)
	if !ok {
		return
	}
	it, err := h.Inventory.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *Handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.DeleteItem(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "itemID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Inventory checks ----

func (h *Handlers) listChecks(w http.ResponseWriter, r *http.Request) {
	st := app.SortState{Column: app.SortColumn(r.URL.Query().Get("sort"))}
	if !st.Column.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid sort", "unknown sort column")
		return
	}
	st.Desc, _ = strconv.ParseBool(r.URL.Query().Get("desc"))
	if t := r.URL.Query().Get("toggle"); t != "" {
		col := app.SortColumn(t)
		if !col.Valid() {
			writeProblem(w, http.StatusBadRequest, "Invalid sort", "unknown sort column")
			return
		}
		st = st.Toggle(col)
	}
	cs, err := h.Checks.SortedChecks(r.Context(), chi.URLParam(r, "hotelID"), st)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("X-Sort-Column", string(st.Column))
	w.Header().Set("X-Sort-Desc", strconv.FormatBool(st.Desc))
	writeCached(w, r, cs)
}

func (h *Handlers) getCheck(w http.ResponseWriter, r *http.Request) {
	c, err := h.Checks.Check(r.Context(), chi.URLParam(r, "checkID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeCached(w, r, c)
}

func (h *Handlers) updateCheck(w http.ResponseWriter, r *http.Request) {
	var in domain.NewCheckInput
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	c, err := h.Checks.UpdateCheck(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "checkID"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) deleteCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.Checks.DeleteCheck(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "checkID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) balanceCheck(w http.ResponseWriter, r *http.Request) {
	c, err := h.Checks.Balance(r.Context(), chi.URLParam(r, "hotelID"), chi.URLParam(r, "checkID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ---- Check drafts ----

// ownDraft loads the draft and hides drafts of other hotels.
func (h *Handlers) ownDraft(w http.ResponseWriter, r *http.Request) (*app.CheckDraft, bool) {
	d, err := h.Checks.Draft(r.Context(), chi.URLParam(r, "draftID"))
	if err == nil && d.HotelID != chi.URLParam(r, "hotelID") {
		err = domain.ErrNotFound
	}
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return d, true
}

// editDraft applies fn to the hotel's draft and answers with the new view.
func (h *Handlers) editDraft(w http.ResponseWriter, r *http.Request, fn func(*app.CheckDraft) error) {
	if _, ok := h.ownDraft(w, r); !ok {
		return
	}
	d, err := h.Checks.EditDraft(r.Context(), chi.URLParam(r, "draftID"), fn)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handlers) listDrafts(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Checks.Drafts(r.Context(), chi.URLParam(r, "hotelID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]app.DraftView, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.View())
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) createDraft(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	d, err := h.Checks.NewDraft(r.Context(), chi.URLParam(r, "hotelID"), in.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Location", r.URL.Path+"/"+d.ID)
	writeJSON(w, http.StatusCreated, d.View())
}

func (h *Handlers) getDraft(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handlers) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownDraft(w, r); !ok {
		return
	}
	if err := h.Checks.DiscardDraft(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) addDraftItem(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ItemID string `json:"inventoryItemId"`
	}
	if err := decodeJSON(r, &in); err != nil || in.ItemID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "inventoryItemId is required")
		return
	}
	if _, ok := h.ownDraft(w, r); !ok {
		return
	}
	d, err := h.Checks.AddDraftItem(r.Context(), chi.URLParam(r, "draftID"), in.ItemID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d.View())
}

func (h *Handlers) removeDraftItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.editDraft(w, r, func(d *app.CheckDraft) error { return d.RemoveItem(itemID) })
}

func (h *Handlers) startDraftEdit(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.editDraft(w, r, func(d *app.CheckDraft) error { return d.StartEdit(itemID) })
}

// stageDraftEdit takes the raw input text; only non-negative integers stage.
func (h *Handlers) stageDraftEdit(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	itemID := chi.URLParam(r, "itemID")
	h.editDraft(w, r, func(d *app.CheckDraft) error { return d.StageInput(itemID, in.Value) })
}

func (h *Handlers) saveDraftEdit(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.editDraft(w, r, func(d *app.CheckDraft) error { return d.SaveEdit(itemID) })
}

func (h *Handlers) cancelDraftEdit(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	h.editDraft(w, r, func(d *app.CheckDraft) error { d.CancelEdit(itemID); return nil })
}

func (h *Handlers) submitDraft(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.ownDraft(w, r); !ok {
		return
	}
	c, err := h.Checks.SubmitDraft(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
