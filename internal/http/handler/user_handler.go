package handler

import (
	"net/http"
	"strings"

	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/atlasfield/fieldtrack-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type UserHandler struct {
	userRepo *repository.UserRepository
	logger   *zap.Logger
}

func NewUserHandler(userRepo *repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// @Summary Get the authenticated user
// @Description Returns the caller's profile and records it in the user
// @Description table, so ticket numbering has initials to work from.
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.User
// @Security BearerAuth
// @Router /auth/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	first, last := splitName(userCtx.DisplayName)
	user := &domain.User{
		ID:          userCtx.UserID,
		Email:       userCtx.Email,
		DisplayName: userCtx.DisplayName,
		FirstName:   first,
		LastName:    last,
		Roles:       datatypes.JSONSlice[string](userCtx.RolesAsStrings()),
		IsActive:    true,
	}
	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Error("failed to upsert user",
			zap.String("user_id", userCtx.UserID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to store user profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// @Summary List users
// @Tags Auth
// @Produce json
// @Param activeOnly query bool false "Only active users"
// @Success 200 {array} domain.User
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userRepo.List(r.Context(), r.URL.Query().Get("activeOnly") == "true")
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func splitName(displayName string) (first, last string) {
	parts := strings.Fields(displayName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[len(parts)-1]
}
