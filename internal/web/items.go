package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/gildedrose/internal/imaging"
	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

type itemsPage struct {
	PageData
	Items  []model.Item
	Filter model.ItemType
}

type itemDetailPage struct {
	PageData
	Item *model.Item
}

// ItemsPage handles GET /items.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	var filter model.ItemType
	if raw := r.URL.Query().Get("type"); raw != "" {
		if parsed, err := model.ParseItemType(raw); err == nil {
			filter = parsed
		}
	}

	var msg string
	if r.URL.Query().Get("advanced") != "" {
		msg = "All items advanced by one day."
	}
	s.renderItems(w, r, http.StatusOK, filter, "", msg)
}

func (s *Server) renderItems(w http.ResponseWriter, r *http.Request, status int, filter model.ItemType, errMsg, okMsg string) {
	items, err := s.Service.ListItems(r.Context(), filter)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list items", "error", err)
		errMsg = "Could not load items."
	}

	s.Templates.RenderStatus(w, r, status, "items.html", &itemsPage{
		PageData: PageData{Title: "Items", User: GetWebClaims(r.Context()), Error: errMsg, Success: okMsg},
		Items:    items,
		Filter:   filter,
	})
}

// itemFromForm reads the shared create/update form fields.
func itemFromForm(r *http.Request) (model.Item, error) {
	typ, err := model.ParseItemType(r.FormValue("type"))
	if err != nil {
		return model.Item{}, err
	}
	sellIn, err := strconv.Atoi(strings.TrimSpace(r.FormValue("sell_in")))
	if err != nil {
		return model.Item{}, errors.New("sell in must be a whole number")
	}
	quality, err := strconv.Atoi(strings.TrimSpace(r.FormValue("quality")))
	if err != nil {
		return model.Item{}, errors.New("quality must be a whole number")
	}
	return model.Item{
		Name:    r.FormValue("name"),
		SellIn:  sellIn,
		Quality: quality,
		Type:    typ,
	}, nil
}

// ItemCreateSubmit handles POST /items.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	item, err := itemFromForm(r)
	if err == nil {
		var created *model.Item
		created, err = s.Service.CreateItem(r.Context(), item)
		if err == nil {
			logger.Info("item created", logging.FieldUser, claims.Username, logging.FieldItem, created.Name, logging.FieldItemID, created.ID)
			http.Redirect(w, r, "/items", http.StatusSeeOther)
			return
		}
		if !errors.Is(err, inventory.ErrInvalidItem) {
			logger.Error("failed to create item", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	s.renderItems(w, r, http.StatusBadRequest, "", "Item not created: "+err.Error(), "")
}

// AdvanceDaySubmit handles POST /items/quality.
func (s *Server) AdvanceDaySubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	items, err := s.Service.UpdateQuality(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to advance inventory", "error", err)
		s.renderItems(w, r, http.StatusInternalServerError, "", "Advancing the inventory failed.", "")
		return
	}

	logging.FromContext(r.Context()).Info("day advanced from web", logging.FieldUser, claims.Username, logging.FieldCount, len(items))
	http.Redirect(w, r, "/items?advanced=1", http.StatusSeeOther)
}

// ItemDetailPage handles GET /items/{id}.
func (s *Server) ItemDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	s.renderItem(w, r, http.StatusOK, id, "")
}

func (s *Server) renderItem(w http.ResponseWriter, r *http.Request, status int, id int64, errMsg string) {
	item, err := s.Service.FindItem(r.Context(), id)
	if errors.Is(err, inventory.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.RenderStatus(w, r, status, "item_detail.html", &itemDetailPage{
		PageData: PageData{Title: item.Name, User: GetWebClaims(r.Context()), Error: errMsg},
		Item:     item,
	})
}

// ItemUpdateSubmit handles POST /items/{id}.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := itemFromForm(r)
	if err != nil {
		s.renderItem(w, r, http.StatusBadRequest, id, "Item not saved: "+err.Error())
		return
	}

	_, err = s.Service.UpdateItem(r.Context(), id, item)
	switch {
	case err == nil:
		logger.Info("item updated", logging.FieldUser, claims.Username, logging.FieldItemID, id)
		http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
	case errors.Is(err, inventory.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, inventory.ErrInvalidItem):
		s.renderItem(w, r, http.StatusBadRequest, id, "Item not saved: "+err.Error())
	default:
		logger.Error("failed to update item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ItemDeleteSubmit handles POST /items/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	err = s.Service.DeleteItem(r.Context(), id)
	if errors.Is(err, inventory.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to delete item", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("item deleted", logging.FieldUser, claims.Username, logging.FieldItemID, id)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// ItemImageSubmit handles POST /items/{id}/image.
func (s *Server) ItemImageSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<10)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		s.renderItem(w, r, http.StatusBadRequest, id, "The photo is too large.")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		s.renderItem(w, r, http.StatusBadRequest, id, "Choose a photo to upload.")
		return
	}
	defer file.Close()

	img, err := imaging.Normalize(file, imaging.Options{})
	if err != nil {
		s.renderItem(w, r, http.StatusBadRequest, id, "The photo must be a JPEG, PNG or WebP image.")
		return
	}

	found, err := store.SetItemImage(r.Context(), s.DB, id, img.Data, img.MIME)
	if err != nil {
		logger.Error("failed to save image", "error", err)
		http.Error(w, "failed to save image", http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	logger.Info("item image uploaded", logging.FieldUser, claims.Username, logging.FieldItemID, id)
	http.Redirect(w, r, fmt.Sprintf("/items/%d", id), http.StatusSeeOther)
}

// ItemImageGet handles GET /items/{id}/image.
func (s *Server) ItemImageGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), s.DB, id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get image", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Error("failed to write image response", "error", err)
	}
}
