// Package handler exposes the registry workflows over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"foncier/internal/notification"
	"foncier/internal/platform/metrics"
	"foncier/internal/platform/middleware"
	"foncier/internal/registry/models"
	"foncier/internal/transport/http/shared"
	dErrors "foncier/pkg/domain-errors"
	"foncier/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer delegates to.
type Service interface {
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	Approve(ctx context.Context, transactionID, agentID int64) error
	Reject(ctx context.Context, transactionID, agentID int64, reason string) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactionsByStatus(ctx context.Context, status models.TransactionStatus) ([]*models.Transaction, error)
	RegisterParcel(ctx context.Context, parcel *models.Parcel) error
	GetParcel(ctx context.Context, id int64) (*models.Parcel, error)
	GetParcelByNumber(ctx context.Context, number string) (*models.Parcel, error)
	ListParcels(ctx context.Context) ([]*models.Parcel, error)
	RegisterCitizen(ctx context.Context, citizen *models.Citizen) error
}

// NotificationService lists a citizen's inbox.
type NotificationService interface {
	List(ctx context.Context, citizenID int64) ([]notification.Notification, error)
}

// Handler handles registry endpoints.
type Handler struct {
	logger        *slog.Logger
	registry      Service
	notifications NotificationService
	metrics       *metrics.Metrics
	validator     middleware.TokenValidator
}

// New creates a registry Handler.
func New(
	registry Service,
	notifications NotificationService,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:        logger,
		registry:      registry,
		notifications: notifications,
		metrics:       metrics,
		validator:     validator,
	}
}

// Register mounts the registry routes. Everything is agent-authenticated.
func (h *Handler) Register(r chi.Router) {
	registryRouter := chi.NewRouter()
	registryRouter.Use(middleware.Recovery(h.logger))
	registryRouter.Use(middleware.RequestID)
	registryRouter.Use(middleware.Logger(h.logger))
	registryRouter.Use(middleware.Timeout(30 * time.Second))
	if h.metrics != nil {
		registryRouter.Use(h.metrics.Latency)
	}
	registryRouter.Use(middleware.RequireAgent(h.validator, h.logger))

	registryRouter.Post("/registry/parcels", h.handleRegisterParcel)
	registryRouter.Get("/registry/parcels", h.handleListParcels)
	registryRouter.Get("/registry/parcels/{id}", h.handleGetParcel)
	registryRouter.Get("/registry/parcels/number/{number}", h.handleGetParcelByNumber)

	registryRouter.Post("/registry/transactions", h.handleCreateTransaction)
	registryRouter.Get("/registry/transactions", h.handleListTransactions)
	registryRouter.Get("/registry/transactions/{id}", h.handleGetTransaction)
	registryRouter.Post("/registry/transactions/{id}/approve", h.handleApprove)
	registryRouter.Post("/registry/transactions/{id}/reject", h.handleReject)

	registryRouter.Post("/registry/citizens", h.handleRegisterCitizen)
	registryRouter.Get("/registry/citizens/{id}/notifications", h.handleListNotifications)

	r.Mount("/", registryRouter)
}

func (h *Handler) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	transaction := req.ToModel()
	if err := h.registry.CreateTransaction(ctx, transaction); err != nil {
		h.logWorkflowError(ctx, "create transaction failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, TransactionFromModel(transaction))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	transactionID, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	agentID := requestcontext.AgentID(ctx)
	if agentID == 0 {
		h.logger.ErrorContext(ctx, "agent missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx))
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := h.registry.Approve(ctx, transactionID, agentID); err != nil {
		h.logWorkflowError(ctx, "approval failed", err)
		shared.WriteError(w, err)
		return
	}

	transaction, err := h.registry.GetTransaction(ctx, transactionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, TransactionFromModel(transaction))
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	transactionID, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req RejectTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	agentID := requestcontext.AgentID(ctx)
	if err := h.registry.Reject(ctx, transactionID, agentID, req.Reason); err != nil {
		h.logWorkflowError(ctx, "rejection failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	transaction, err := h.registry.GetTransaction(r.Context(), transactionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, TransactionFromModel(transaction))
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	status := models.TransactionStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.TransactionStatusPending
	}

	transactions, err := h.registry.ListTransactionsByStatus(r.Context(), status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		out = append(out, TransactionFromModel(transaction))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRegisterParcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	parcel := req.ToModel()
	if err := h.registry.RegisterParcel(ctx, parcel); err != nil {
		h.logWorkflowError(ctx, "parcel registration failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, ParcelFromModel(parcel))
}

func (h *Handler) handleGetParcel(w http.ResponseWriter, r *http.Request) {
	parcelID, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	parcel, err := h.registry.GetParcel(r.Context(), parcelID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, ParcelFromModel(parcel))
}

func (h *Handler) handleGetParcelByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	parcel, err := h.registry.GetParcelByNumber(r.Context(), number)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, ParcelFromModel(parcel))
}

func (h *Handler) handleListParcels(w http.ResponseWriter, r *http.Request) {
	parcels, err := h.registry.ListParcels(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]ParcelResponse, 0, len(parcels))
	for _, parcel := range parcels {
		out = append(out, ParcelFromModel(parcel))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRegisterCitizen(w http.ResponseWriter, r *http.Request) {
	var req RegisterCitizenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	citizen := req.ToModel()
	if err := h.registry.RegisterCitizen(r.Context(), citizen); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, CitizenFromModel(citizen))
}

func (h *Handler) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	citizenID, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if h.notifications == nil {
		shared.WriteJSON(w, http.StatusOK, []notification.Notification{})
		return
	}

	notifications, err := h.notifications.List(r.Context(), citizenID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications"))
		return
	}
	if notifications == nil {
		notifications = []notification.Notification{}
	}
	shared.WriteJSON(w, http.StatusOK, notifications)
}

func (h *Handler) logWorkflowError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid identifier in path")
	}
	return id, nil
}
