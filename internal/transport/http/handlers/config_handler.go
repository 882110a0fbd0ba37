package handlers

import (
	"net/http"

	"github.com/viraj01032007/setmystay/backend/internal/config"
	"github.com/viraj01032007/setmystay/backend/internal/transport/http/dto"
	httperrors "github.com/viraj01032007/setmystay/backend/internal/transport/http/errors"
)

type ConfigHandler struct {
	remote config.RemoteConfig
}

func NewConfigHandler(remote config.RemoteConfig) *ConfigHandler {
	return &ConfigHandler{remote: remote}
}

// Get serves the remote product config: the plan catalog and listing browse
// limits. Public, no auth.
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	plans := make([]dto.PlanResponse, 0, len(h.remote.Plans))
	for _, plan := range h.remote.Plans {
		plans = append(plans, dto.PlanResponse{
			SKU:     plan.SKU,
			Name:    plan.Name,
			Amount:  plan.Amount,
			Credits: plan.Credits,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ConfigResponse{
		Plans: plans,
		Listing: dto.ListingLimitsResponse{
			RentMin:     h.remote.Listing.RentMin,
			RentMax:     h.remote.Listing.RentMax,
			PageSize:    h.remote.Listing.PageSize,
			MaxPageSize: h.remote.Listing.MaxPageSize,
		},
	})
}
