// Package http provides http transport for listings
package http

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	stdhttp "net/http"
	"strings"

	"flathunt/internal/core/catalog"
	"flathunt/internal/modkit/httpkit"
	"flathunt/internal/services/api/listings/domain"
	svc "flathunt/internal/services/api/listings/service"

	"github.com/go-chi/chi/v5"
)

// cacheControl advertises a short browser TTL and a longer shared one;
// the catalog only changes on deploy
const cacheControl = "public, max-age=60, s-maxage=300"

// Register mounts listings endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	r.Get("/", httpkit.Handle(h.list))
	httpkit.PostBind[domain.SearchInput](r, "/search", h.search)
	httpkit.Get(r, "/filters", h.filters)
	httpkit.Get(r, "/{id}", h.get)
}

type handlers struct{ svc svc.Service }

// swagger:route GET /apartments Listings listApartments
// @Summary One catalog page, narrowed by query filters
// @Tags Listings
// @Produce json
// @Param priceMin query int false "Lower price bound"
// @Param priceMax query int false "Upper price bound"
// @Param areaMin query number false "Lower area bound"
// @Param areaMax query number false "Upper area bound"
// @Param floorMin query int false "Lower floor bound"
// @Param floorMax query int false "Upper floor bound"
// @Param rooms query string false "Room counts, comma separated"
// @Param page query int false "Page number, 1 based"
// @Param limit query int false "Page size, capped at 100"
// @Success 200 {object} catalog.ApartmentListResponse "ok"
// @Router /apartments [get]
func (h *handlers) list(r *stdhttp.Request) httpkit.Response {
	q := r.URL.Query()
	p, _ := catalog.ParamsFromValues(q)
	pg := catalog.PaginationFromValues(q)

	out, err := h.svc.List(r.Context(), p, pg)
	if err != nil {
		return httpkit.Error(err)
	}

	etag := listETag(out.Meta.Total, pg, p)
	hdr := stdhttp.Header{}
	hdr.Set("Cache-Control", cacheControl)
	hdr.Set("ETag", etag)

	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		resp := httpkit.NotModified()
		resp.Header = hdr
		return resp
	}
	resp := httpkit.RawOK(out)
	resp.Header = hdr
	return resp
}

// swagger:route POST /apartments/search Listings searchApartments
// @Summary Strictly validated catalog search
// @Tags Listings
// @Accept json
// @Produce json
// @Param payload body domain.SearchInput true "Filters and paging"
// @Success 200 {object} catalog.ApartmentListResponse "ok"
// @Router /apartments/search [post]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) (any, error) {
	return h.svc.Search(r.Context(), in)
}

// swagger:route GET /apartments/filters Listings apartmentFilters
// @Summary Dataset-derived filter bounds
// @Tags Listings
// @Produce json
// @Success 200 {object} catalog.FilterMetadata "ok"
// @Router /apartments/filters [get]
func (h *handlers) filters(r *stdhttp.Request) (any, error) {
	return h.svc.Bounds(r.Context())
}

// swagger:route GET /apartments/{id} Listings getApartment
// @Summary One apartment by id
// @Tags Listings
// @Produce json
// @Param id path string true "Apartment id"
// @Success 200 {object} catalog.Apartment "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /apartments/{id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	return h.svc.Get(r.Context(), chi.URLParam(r, "id"))
}

// listETag derives a weak validator from everything that shapes the
// body: the match count plus the exact page window and filters
func listETag(total int, pg catalog.PaginationParams, p catalog.FilterParams) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%d:%s", total, pg.Page, pg.Limit, p.Encode())))
	return `W/"` + hex.EncodeToString(sum[:8]) + `"`
}

// matchesETag answers If-None-Match: a comma list of tags or a bare *
func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		if strings.TrimSpace(part) == tag {
			return true
		}
	}
	return false
}
