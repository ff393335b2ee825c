package handler

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/James-Git-Repo/eu-market-pulse/internal/catalog"
	"github.com/James-Git-Repo/eu-market-pulse/internal/middleware"
	"github.com/James-Git-Repo/eu-market-pulse/internal/model"
	"github.com/James-Git-Repo/eu-market-pulse/internal/render"
	"github.com/James-Git-Repo/eu-market-pulse/internal/service"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
	"github.com/James-Git-Repo/eu-market-pulse/internal/util"
)

// ResourcesStudioHandler covers resource CRUD and ordering in the
// studio.
type ResourcesStudioHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewResourcesStudioHandler creates a ResourcesStudioHandler.
func NewResourcesStudioHandler(db *sql.DB, renderer *render.Renderer) *ResourcesStudioHandler {
	return &ResourcesStudioHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// List renders all resources grouped by category in display order.
func (h *ResourcesStudioHandler) List(w http.ResponseWriter, r *http.Request) {
	resources, err := h.queries.ListResources(r.Context())
	if err != nil {
		logAndInternalError(w, "listing resources", "error", err)
		return
	}
	if err := h.renderer.Render(w, r, "studio/resources",
		studioData(r, "Resources", catalog.GroupResources(resources))); err != nil {
		logAndInternalError(w, "rendering resource list", "error", err)
	}
}

// resourceForm validates the shared create/update form fields.
func (h *ResourcesStudioHandler) resourceForm(w http.ResponseWriter, r *http.Request) (store.CreateResourceParams, bool) {
	p := store.CreateResourceParams{
		Category:    r.FormValue("category"),
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Metadata:    strings.TrimSpace(r.FormValue("metadata")),
		URL:         strings.TrimSpace(r.FormValue("url")),
		Icon:        strings.TrimSpace(r.FormValue("icon")),
	}
	if p.Title == "" {
		flashError(w, r, h.renderer, RouteStudioLinks, "Title is required.")
		return p, false
	}
	if !model.IsValidResourceCategory(p.Category) {
		flashError(w, r, h.renderer, RouteStudioLinks, "Unknown category.")
		return p, false
	}
	p.SortOrder = util.ParseNullInt64(r.FormValue("sort_order")).Int64
	return p, true
}

// Create inserts a resource; without an explicit sort order it appends
// at the end of its category.
func (h *ResourcesStudioHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioLinks) {
		return
	}
	p, ok := h.resourceForm(w, r)
	if !ok {
		return
	}

	if p.SortOrder == 0 {
		next, err := h.queries.NextResourceSortOrder(r.Context(), p.Category)
		if err != nil {
			logAndInternalError(w, "computing sort order", "error", err)
			return
		}
		p.SortOrder = next
	}

	id, err := h.queries.CreateResource(r.Context(), p)
	if err != nil {
		logAndInternalError(w, "creating resource", "error", err)
		return
	}

	_ = h.eventService.LogResource(r.Context(), model.EventLevelInfo, "Resource created",
		middleware.GetUserIDPtr(r), map[string]any{"resource_id": id, "category": p.Category})

	flashSuccess(w, r, h.renderer, RouteStudioLinks, "Resource created.")
}

// Update rewrites a resource from the form.
func (h *ResourcesStudioHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioLinks, "Invalid resource ID")
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, RouteStudioLinks) {
		return
	}
	existing, ok := requireEntity(w, r, h.renderer, RouteStudioLinks, "Resource", id,
		func(id int64) (model.Resource, error) { return h.queries.GetResourceByID(r.Context(), id) })
	if !ok {
		return
	}
	p, ok := h.resourceForm(w, r)
	if !ok {
		return
	}
	if p.SortOrder == 0 {
		p.SortOrder = existing.SortOrder
	}

	err = h.queries.UpdateResource(r.Context(), store.UpdateResourceParams{
		ID:          id,
		Category:    p.Category,
		Title:       p.Title,
		Description: p.Description,
		Metadata:    p.Metadata,
		URL:         p.URL,
		Icon:        p.Icon,
		SortOrder:   p.SortOrder,
	})
	if err != nil {
		logAndInternalError(w, "updating resource", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, RouteStudioLinks, "Resource updated.")
}

// Delete removes a resource.
func (h *ResourcesStudioHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioLinks, "Invalid resource ID")
		return
	}
	if _, ok := requireEntity(w, r, h.renderer, RouteStudioLinks, "Resource", id,
		func(id int64) (model.Resource, error) { return h.queries.GetResourceByID(r.Context(), id) }); !ok {
		return
	}

	if err := h.queries.DeleteResource(r.Context(), id); err != nil {
		logAndInternalError(w, "deleting resource", "error", err)
		return
	}

	_ = h.eventService.LogResource(r.Context(), model.EventLevelWarning, "Resource deleted",
		middleware.GetUserIDPtr(r), map[string]any{"resource_id": id})

	flashSuccess(w, r, h.renderer, RouteStudioLinks, "Resource deleted.")
}

// Move swaps a resource with its neighbor in display order. direction is
// "up" or "down" from the route.
func (h *ResourcesStudioHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteStudioLinks, "Invalid resource ID")
		return
	}
	resource, ok := requireEntity(w, r, h.renderer, RouteStudioLinks, "Resource", id,
		func(id int64) (model.Resource, error) { return h.queries.GetResourceByID(r.Context(), id) })
	if !ok {
		return
	}

	all, err := h.queries.ListResources(r.Context())
	if err != nil {
		logAndInternalError(w, "listing resources", "error", err)
		return
	}
	siblings := catalog.FilterResources(all, resource.Category)

	idx := -1
	for i, s := range siblings {
		if s.ID == id {
			idx = i
			break
		}
	}

	up := strings.HasSuffix(r.URL.Path, "/up")
	other := -1
	switch {
	case up && idx > 0:
		other = idx - 1
	case !up && idx >= 0 && idx < len(siblings)-1:
		other = idx + 1
	}
	if other < 0 {
		// Already at the edge of its category.
		http.Redirect(w, r, RouteStudioLinks, http.StatusSeeOther)
		return
	}

	siblings[idx], siblings[other] = siblings[other], siblings[idx]
	if err := h.renumber(r, siblings); err != nil {
		logAndInternalError(w, "reordering resources", "error", err)
		return
	}

	http.Redirect(w, r, RouteStudioLinks, http.StatusSeeOther)
}

// renumber rewrites sort orders to match slice position. Swapping keys
// instead would silently do nothing when two rows share an order, so the
// category is renumbered 1..n on every move.
func (h *ResourcesStudioHandler) renumber(r *http.Request, resources []model.Resource) error {
	for i, res := range resources {
		order := int64(i + 1)
		if res.SortOrder == order {
			continue
		}
		err := h.queries.UpdateResource(r.Context(), store.UpdateResourceParams{
			ID:          res.ID,
			Category:    res.Category,
			Title:       res.Title,
			Description: res.Description,
			Metadata:    res.Metadata,
			URL:         res.URL,
			Icon:        res.Icon,
			SortOrder:   order,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
