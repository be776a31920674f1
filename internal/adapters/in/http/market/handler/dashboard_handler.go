// internal/adapters/in/http/market/handler/dashboard_handler.go
package marketHandler

import (
	"net/http"

	usecase "farmlink/internal/application/usecase"
	"farmlink/internal/adapters/in/http/middleware"
	"farmlink/internal/domain/session"
)

// DashboardHandler serves the role-appropriate stats.
//
//	GET /market/me/dashboard
type DashboardHandler struct {
	uc *usecase.DashboardUsecase
}

func NewDashboardHandler(uc *usecase.DashboardUsecase) http.Handler {
	return &DashboardHandler{uc: uc}
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.uc == nil {
		writeErr(w, http.StatusInternalServerError, "dashboard handler is not configured")
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sess := middleware.SessionFrom(r.Context())

	if sess.Role == session.RoleFarmer {
		stats, err := h.uc.FarmerDashboard(r.Context(), sess)
		if err != nil {
			writeDomainErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := h.uc.BuyerDashboard(r.Context(), sess)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
