package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/query"
	"github.com/jcall/wanderstay/internal/service"
)

type ListingHandler struct {
	listingService *service.ListingService
	uploader       *Uploader
}

func NewListingHandler(listingService *service.ListingService, uploader *Uploader) *ListingHandler {
	return &ListingHandler{listingService: listingService, uploader: uploader}
}

// Index serves the listing index with search/filter/sort applied. Query
// failures fail open to the unfiltered index.
func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query())

	listings, err := h.listingService.List(r.Context(), params)
	if err != nil {
		if params.HasFilters() {
			flashRedirect(w, r, "error", "Something went wrong while searching listings.", "/listings")
			return
		}
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{
		"listings": listings,
		"filters":  filterChips(params),
	}))
}

// filterChips maps each active filter to the listing URL with that filter
// removed, for rendering removable chips.
func filterChips(p query.Params) map[string]string {
	chips := map[string]string{}
	for _, name := range []string{"search", "category", "minPrice", "maxPrice", "location", "country"} {
		if paramActive(p, name) {
			chips[name] = query.RemoveParams(p, name)
		}
	}
	return chips
}

func paramActive(p query.Params, name string) bool {
	switch name {
	case "search":
		return p.Search != ""
	case "category":
		return p.Category != "" && p.Category != "all"
	case "minPrice":
		return p.MinPrice != nil
	case "maxPrice":
		return p.MaxPrice != nil
	case "location":
		return p.Location != ""
	case "country":
		return p.Country != ""
	}
	return false
}

func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		flashRedirect(w, r, "error", "Listing not found!", "/listings")
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings")
		return
	}

	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{
		"listing": listing,
	}))
}

func (h *ListingHandler) New(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{
		"page":       "listings/new",
		"categories": categoryNames(),
	}))
}

func categoryNames() []string {
	names := make([]string, 0, len(query.Categories))
	for name := range query.Categories {
		names = append(names, name)
	}
	return names
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		flashRedirect(w, r, "error", "You must be logged in!", "/login")
		return
	}

	input, err := h.parseListingForm(r)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings/new")
		return
	}

	image, err := h.uploader.Save(r, "image")
	if err != nil {
		flashRedirect(w, r, "error", "Image upload failed, please try again.", "/listings/new")
		return
	}

	_, err = h.listingService.Create(r.Context(), user.ID, service.CreateListingInput{
		Title:       input.title,
		Description: input.description,
		Price:       input.price,
		Location:    input.location,
		Country:     input.country,
		Image:       image,
	})
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings/new")
		return
	}

	flashRedirect(w, r, "success", "New listing created successfully!", "/listings")
}

func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		flashRedirect(w, r, "error", "Listing not found!", "/listings")
		return
	}

	listing, err := h.listingService.Get(r.Context(), id)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings")
		return
	}

	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{
		"page":    "listings/edit",
		"listing": listing,
	}))
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		flashRedirect(w, r, "error", "Listing not found!", "/listings")
		return
	}

	input, err := h.parseListingForm(r)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings/"+id.String()+"/edit")
		return
	}

	upload, err := h.uploader.Save(r, "image")
	if err != nil {
		flashRedirect(w, r, "error", "Image upload failed, please try again.", "/listings/"+id.String()+"/edit")
		return
	}

	_, err = h.listingService.Update(r.Context(), id, service.UpdateListingInput{
		Title:       input.title,
		Description: input.description,
		Price:       input.price,
		Location:    input.location,
		Country:     input.country,
		ImageURL:    r.FormValue("imageUrl"),
		Upload:      upload,
	})
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings")
		return
	}

	flashRedirect(w, r, "success", "Updated successfully!", "/listings/"+id.String())
}

// Delete removes the listing unconditionally; ownership was checked by the
// middleware chain and re-deleting a gone ID still lands on the index.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		flashRedirect(w, r, "error", "Listing not found!", "/listings")
		return
	}

	if err := h.listingService.Delete(r.Context(), id); err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/listings")
		return
	}

	flashRedirect(w, r, "success", "Listing Deleted!", "/listings")
}

func (h *ListingHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	suggestType := r.URL.Query().Get("type")

	suggestions, err := h.listingService.Suggestions(r.Context(), q, suggestType)
	if err != nil {
		renderJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Error fetching suggestions",
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

type listingForm struct {
	title       string
	description string
	price       int
	location    string
	country     string
}

func (h *ListingHandler) parseListingForm(r *http.Request) (listingForm, error) {
	mediaType := r.Header.Get("Content-Type")
	if strings.HasPrefix(mediaType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return listingForm{}, domain.Validationf("Invalid form submission.")
		}
	} else if err := r.ParseForm(); err != nil {
		return listingForm{}, domain.Validationf("Invalid form submission.")
	}

	form := listingForm{
		title:       strings.TrimSpace(r.FormValue("title")),
		description: strings.TrimSpace(r.FormValue("description")),
		location:    strings.TrimSpace(r.FormValue("location")),
		country:     strings.TrimSpace(r.FormValue("country")),
	}

	if form.title == "" {
		return listingForm{}, domain.Validationf("Title is required!")
	}

	rawPrice := strings.TrimSpace(r.FormValue("price"))
	if rawPrice != "" {
		price, err := strconv.Atoi(rawPrice)
		if err != nil || price < 0 {
			return listingForm{}, domain.Validationf("Price must be a non-negative number!")
		}
		form.price = price
	}

	return form, nil
}
