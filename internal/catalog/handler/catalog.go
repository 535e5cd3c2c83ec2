package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"salonbook/internal/catalog/service"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"
)

type CatalogHandler struct {
	service service.CatalogService
	log     *logger.Logger
}

func NewCatalogHandler(svc service.CatalogService, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, log: log}
}

func (h *CatalogHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.ListServices)
	router.GET("/api/v1/packages", h.ListPackages)
}

func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.service.ListServices(r.Context())
	if err != nil {
		if werr := httputil.WriteError(w, err); werr != nil {
			h.log.Error("failed to write JSON response", "handler", "ListServices", "error", werr)
		}
		return
	}
	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ListServices", "error", err)
	}
}

func (h *CatalogHandler) ListPackages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	packages, err := h.service.ListPackages(r.Context())
	if err != nil {
		if werr := httputil.WriteError(w, err); werr != nil {
			h.log.Error("failed to write JSON response", "handler", "ListPackages", "error", werr)
		}
		return
	}
	if err := httputil.WriteSuccess(w, packages); err != nil {
		h.log.Error("failed to write JSON response", "handler", "ListPackages", "error", err)
	}
}
