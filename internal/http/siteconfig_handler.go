package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/JaoPred0/Dinna-Fitness/internal/siteconfig"
)

type SiteHandler struct {
	site    *siteconfig.Service
	timeout time.Duration
}

func NewSiteHandler(site *siteconfig.Service, timeout time.Duration) *SiteHandler {
	return &SiteHandler{
		site:    site,
		timeout: timeout,
	}
}

type SiteResponseDTO struct {
	Banners      []siteconfig.Banner     `json:"banners"`
	NavbarBanner siteconfig.NavbarBanner `json:"bannerConfig"`
	// Remaining is the live countdown, derived server-side so clients don't
	// need the save timestamp.
	Remaining int `json:"remaining"`
}

func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	site, err := h.site.Get(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get site config")
		return
	}

	banners := site.Banners
	if banners == nil {
		banners = []siteconfig.Banner{}
	}

	respondJSON(w, http.StatusOK, &SiteResponseDTO{
		Banners:      banners,
		NavbarBanner: site.NavbarBanner,
		Remaining:    site.NavbarBanner.Remaining(time.Now()),
	})
}

type UpdateBannersRequestDTO struct {
	Banners []siteconfig.Banner `json:"banners"`
}

func (h *SiteHandler) UpdateBanners(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req UpdateBannersRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.site.UpdateBanners(ctx, req.Banners); err != nil {
		if errors.Is(err, siteconfig.ErrInvalidBanner) {
			respondError(w, http.StatusBadRequest, "invalid_banner", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save banners")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SiteHandler) UpdateNavbarBanner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, h.timeout)
	defer cancel()

	var req siteconfig.NavbarBanner
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.site.UpdateNavbarBanner(ctx, req); err != nil {
		if errors.Is(err, siteconfig.ErrInvalidBanner) {
			respondError(w, http.StatusBadRequest, "invalid_banner", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save navbar banner")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
