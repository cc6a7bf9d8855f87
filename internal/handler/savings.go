package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gyu5/Linkwallet/internal/domain"
	"github.com/gyu5/Linkwallet/internal/service"
	customError "github.com/gyu5/Linkwallet/pkg/errors"
	"github.com/gyu5/Linkwallet/pkg/response"
)

type SavingsHandler struct {
	service   *service.SavingsService
	validator *validator.Validate
}

func NewSavingsHandler(service *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *SavingsHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	user, err := h.service.RegisterUser(r.Context(), request.DisplayName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Created(w, user)
}

func (h *SavingsHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}

	var request domain.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	created, err := h.service.CreateGroup(r.Context(), actor, &request)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Created(w, created)
}

func (h *SavingsHandler) GroupProgress(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.GroupProgress(r.Context(), groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, snapshot)
}

func (h *SavingsHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	snapshot, err := h.service.MemberProgress(r.Context(), actor.ID, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, snapshot)
}

func (h *SavingsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	var request domain.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	result, err := h.service.Contribute(r.Context(), actor, groupID, request.Amount, request.Regular)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *SavingsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	result, err := h.service.Withdraw(r.Context(), actor, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *SavingsHandler) Plan(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	plan, err := h.service.PlanRegular(r.Context(), actor.ID, groupID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, plan)
}

func (h *SavingsHandler) SetMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}
	groupID, ok := groupIDFrom(w, r)
	if !ok {
		return
	}

	var request domain.SetMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "validation failed", err)
		return
	}

	if err := h.service.SetMessage(r.Context(), actor.ID, groupID, request.Message); err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, nil)
}

func (h *SavingsHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		response.Unauthorized(w, "missing identity")
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), actor.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	response.Success(w, notifications)
}

func groupIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupID, err := uuid.Parse(mux.Vars(r)["groupId"])
	if err != nil {
		response.BadRequest(w, "invalid group id", err)
		return uuid.Nil, false
	}
	return groupID, true
}

// respondServiceError maps business errors to HTTP statuses; anything
// unrecognized is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	code := ""
	if errors.As(err, &businessErr) {
		code = businessErr.Code
	}

	switch {
	case errors.Is(err, customError.ErrMembershipNotFound),
		errors.Is(err, customError.ErrGroupNotFound):
		response.Error(w, http.StatusNotFound, err.Error(), code, nil)
	case errors.Is(err, customError.ErrInvalidAmount),
		errors.Is(err, customError.ErrInvalidPlanInput),
		errors.Is(err, customError.ErrNoRemainingWindow):
		response.Error(w, http.StatusBadRequest, err.Error(), code, nil)
	case errors.Is(err, customError.ErrConcurrentUpdate):
		response.Error(w, http.StatusConflict, err.Error(), code, nil)
	default:
		response.InternalServerError(w, "internal error", err)
	}
}
