package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/erazemk/gildedrose/internal/imaging"
	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

// ItemsHandler handles item CRUD, day advance and photo endpoints.
type ItemsHandler struct {
	DB      *sql.DB
	Service *inventory.Service
}

// itemRequest is the body accepted by create and update. ID is ignored.
type itemRequest struct {
	Name    string `json:"name"`
	SellIn  int    `json:"sellIn"`
	Quality int    `json:"quality"`
	Type    string `json:"type"`
}

func (req itemRequest) toItem() (model.Item, error) {
	typ, err := model.ParseItemType(req.Type)
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{
		Name:    req.Name,
		SellIn:  req.SellIn,
		Quality: req.Quality,
		Type:    typ,
	}, nil
}

// writeServiceError maps inventory errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		jsonError(w, r, http.StatusNotFound, "item not found")
	case errors.Is(err, inventory.ErrInvalidItem):
		jsonError(w, r, http.StatusBadRequest, err.Error())
	default:
		logging.FromContext(r.Context()).Error("failed to "+action, "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to "+action)
	}
}

func itemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var typ model.ItemType
	if raw := r.URL.Query().Get("type"); raw != "" {
		parsed, err := model.ParseItemType(raw)
		if err != nil {
			jsonError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		typ = parsed
	}

	items, err := h.Service.ListItems(r.Context(), typ)
	if err != nil {
		writeServiceError(w, r, err, "list items")
		return
	}
	jsonResponse(w, r, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.FindItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "get item")
		return
	}
	jsonResponse(w, r, http.StatusOK, item)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := req.toItem()
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Service.CreateItem(r.Context(), item)
	if err != nil {
		writeServiceError(w, r, err, "create item")
		return
	}

	logging.FromContext(r.Context()).Info("item created",
		logging.FieldItemID, created.ID,
		logging.FieldItem, created.Name,
		logging.FieldUser, GetClaims(r.Context()).Username,
	)
	jsonResponse(w, r, http.StatusCreated, created)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := req.toItem()
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.Service.UpdateItem(r.Context(), id, item)
	if err != nil {
		writeServiceError(w, r, err, "update item")
		return
	}
	jsonResponse(w, r, http.StatusOK, updated)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.Service.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "delete item")
		return
	}

	logging.FromContext(r.Context()).Info("item deleted",
		logging.FieldItemID, id,
		logging.FieldUser, GetClaims(r.Context()).Username,
	)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateQuality handles POST /api/items/quality: every item ages one day.
func (h *ItemsHandler) UpdateQuality(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.UpdateQuality(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "update quality")
		return
	}
	jsonResponse(w, r, http.StatusOK, items)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<10)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, r, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	img, err := imaging.Normalize(file, imaging.Options{})
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "image must be a valid JPEG, PNG, or WebP")
		return
	}

	found, err := store.SetItemImage(r.Context(), h.DB, id, img.Data, img.MIME)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to save image", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to save image")
		return
	}
	if !found {
		jsonError(w, r, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, r, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   img.Width,
		"height":  img.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(r)
	if !ok {
		jsonError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get image", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, r, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Error("failed to write image response", "error", err)
	}
}
