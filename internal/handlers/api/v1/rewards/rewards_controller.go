package rewards

import (
	"encoding/json"
	"net/http"
	"strconv"

	"greenquest/internal/contextutils"
	"greenquest/internal/response"
	"greenquest/internal/services"

	"go.uber.org/zap"
)

// RewardController handles reward, catalog and ledger API endpoints
type RewardController struct {
	services *services.ServiceCollection
	logger   *zap.Logger
	builder  *response.Builder
}

// NewRewardController creates a new reward controller
func NewRewardController(
	sc *services.ServiceCollection,
	logger *zap.Logger,
	builder *response.Builder,
) *RewardController {
	return &RewardController{
		services: sc,
		logger:   logger,
		builder:  builder,
	}
}

// ===============================
// GRANTS & REDEMPTION
// ===============================

// GetMyRewards handles GET /api/v1/rewards
func (c *RewardController) GetMyRewards(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	page, err := c.services.RewardService.GetUserRewards(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}

// Redeem handles POST /api/v1/rewards/redeem. A catalog reward ID of
// zero redeems the whole balance.
//
//	@Summary	Redeem points against a catalog reward or the full balance
//	@Tags		rewards
//	@Security	SessionAuth
//	@Success	200	{object}	response.APIResponse
//	@Router		/api/v1/rewards/redeem [post]
func (c *RewardController) Redeem(w http.ResponseWriter, r *http.Request) {
	var req services.RedeemRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = contextutils.GetUserID(r.Context())

	result, err := c.services.RewardService.RedeemReward(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}

// GrantReward handles POST /api/v1/rewards/grant (admin only)
func (c *RewardController) GrantReward(w http.ResponseWriter, r *http.Request) {
	var req services.GrantRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	reward, err := c.services.RewardService.GrantReward(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, reward)
}

// ===============================
// CATALOG
// ===============================

// GetCatalog handles GET /api/v1/rewards/catalog. Authenticated callers
// also get the redeem-all entry priced at their current balance.
func (c *RewardController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := c.services.RewardService.GetAvailableRewards(r.Context(), contextutils.GetUserID(r.Context()))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, catalog)
}

// CreateCatalogReward handles POST /api/v1/rewards/catalog (admin only)
func (c *RewardController) CreateCatalogReward(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCatalogRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	entry, err := c.services.RewardService.CreateCatalogReward(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, entry)
}

// UpdateCatalogReward handles PUT /api/v1/rewards/catalog/{id} (admin only)
func (c *RewardController) UpdateCatalogReward(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid catalog reward ID", err))
		return
	}

	var req services.UpdateCatalogRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.ID = id

	entry, err := c.services.RewardService.UpdateCatalogReward(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, entry)
}

// ===============================
// LEDGER
// ===============================

// GetBalance handles GET /api/v1/rewards/balance
func (c *RewardController) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	balance, err := c.services.LedgerService.GetBalance(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]int{"balance": balance})
}

// GetTransactions handles GET /api/v1/transactions
func (c *RewardController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	page, err := c.services.LedgerService.GetTransactions(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, page.Data, &page.Pagination)
}
