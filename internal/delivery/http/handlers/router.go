package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Auth       *middleware.Authenticator
	Catalog    *CatalogHandler
	Ledger     *LedgerHandler
	Validation *ValidationHandler
	Stores     *StoreHandler
	Campaigns  *CampaignHandler
	Coupons    *CouponHandler
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

// NewRouter builds the HTTP router for the coupon service
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimw.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Public
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/campanhas/active/all", d.Catalog.ListActiveCampaigns)
	r.Get("/lojas/categorias", d.Catalog.ListCategories)

	// Any signed-in user
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Middleware)

		r.Get("/campanhas/{id}/cupons", d.Catalog.ListActiveCoupons)
		r.Get("/cupons/{id}", d.Catalog.GetCouponDetail)
		r.Post("/cupons/user", d.Catalog.Claim)
		r.Get("/cupons/user/meuscupons", d.Ledger.ListMine)
		r.Get("/cupons/user/meuscupons/{id}", d.Ledger.GetDetail)
		r.Get("/cupons/user/meuscupons/{id}/qrcode", d.Ledger.QRCode)
	})

	// Store owners
	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Middleware)
		r.Use(middleware.RequireRole(domain.RoleLojista))

		r.Get("/cupons/lojista/verificar/cupom/{codigo}", d.Validation.Resolve)
		r.Patch("/cupons/lojista/{codigo}/status", d.Validation.ConfirmUse)
		r.Get("/cupons/lojista/ultimos-validados", d.Validation.LastValidated)

		r.Get("/cupons/lojista/campanha/{id}", d.Coupons.ListByCampaign)
		r.Get("/cupons/lojista/edit/{id}", d.Coupons.Get)
		r.Get("/cupons/loja/{storeId}", d.Coupons.ListByStore)
		r.Post("/cupons", d.Coupons.Create)
		r.Put("/cupons/{id}", d.Coupons.Update)
		r.Delete("/cupons/{id}", d.Coupons.Delete)

		r.Get("/campanhas/lojista", d.Campaigns.ListMine)
		r.Get("/campanhas/store/{lojaId}", d.Campaigns.ListByStore)
		r.Get("/campanhas/{id}", d.Campaigns.Get)
		r.Post("/campanhas", d.Campaigns.Create)
		r.Put("/campanhas/{id}", d.Campaigns.Update)
		r.Delete("/campanhas/{id}", d.Campaigns.Delete)

		r.Get("/lojas/lojista", d.Stores.ListMine)
		r.Post("/lojas", d.Stores.Create)
		r.Get("/lojas/{id}", d.Stores.Get)
		r.Put("/lojas/{id}", d.Stores.Update)
		r.Delete("/lojas/{id}", d.Stores.Disable)
		r.Get("/lojas/{id}/lojistas", d.Stores.ListMembers)
		r.Post("/lojas/{id}/lojistas", d.Stores.AddMember)
		r.Delete("/lojas/{id}/lojistas/{lojistaId}", d.Stores.RemoveMember)
	})

	return r
}
