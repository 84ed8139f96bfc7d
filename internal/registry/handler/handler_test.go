package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"foncier/internal/notification"
	"foncier/internal/platform/middleware"
	"foncier/internal/registry/handler/mocks"
	"foncier/internal/registry/models"
	dErrors "foncier/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/registry-mocks.go -package=mocks Service,NotificationService

// =============================================================================
// Registry Handler Test Suite
// =============================================================================

type HandlerSuite struct {
	suite.Suite
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

// stubValidator accepts the fixed token "agent-token" as agent 3.
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.AgentClaims, error) {
	if token != "agent-token" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &middleware.AgentClaims{AgentID: 3, Role: "agent"}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockService, *mocks.MockNotificationService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	mockNotifications := mocks.NewMockNotificationService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, mockNotifications, logger, nil, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService, mockNotifications
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer agent-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Authentication
// =============================================================================

func (s *HandlerSuite) TestRequiresAgentToken() {
	router, _, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodPost, "/registry/transactions/1/approve", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/registry/transactions/1/approve", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

// =============================================================================
// Approve / Reject
// =============================================================================

func (s *HandlerSuite) TestHandleApprove() {
	s.Run("approves with the authenticated agent", func() {
		router, mockService, _ := newTestRouter(s.T())
		agentID := int64(3)
		validatedAt := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
		mockService.EXPECT().Approve(gomock.Any(), int64(42), int64(3)).Return(nil)
		mockService.EXPECT().GetTransaction(gomock.Any(), int64(42)).Return(&models.Transaction{
			ID: 42, ParcelID: 7, Type: models.TransactionTypeSale,
			Status: models.TransactionStatusApproved, NewOwnerID: 20,
			ValidatingAgentID: &agentID, ValidatedAt: &validatedAt,
		}, nil)

		w := doRequest(router, http.MethodPost, "/registry/transactions/42/approve", nil)
		s.Equal(http.StatusOK, w.Code)

		var resp TransactionResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("approved", resp.Status)
		s.Require().NotNil(resp.ValidatingAgentID)
		s.Equal(int64(3), *resp.ValidatingAgentID)
	})

	s.Run("already finalized maps to conflict", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().Approve(gomock.Any(), int64(42), int64(3)).
			Return(dErrors.New(dErrors.CodeInvalidState, "transaction is approved"))

		w := doRequest(router, http.MethodPost, "/registry/transactions/42/approve", nil)
		s.Equal(http.StatusConflict, w.Code)
	})

	s.Run("unknown transaction maps to not found", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().Approve(gomock.Any(), int64(404), int64(3)).
			Return(dErrors.New(dErrors.CodeNotFound, "transaction not found"))

		w := doRequest(router, http.MethodPost, "/registry/transactions/404/approve", nil)
		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("non-numeric identifier maps to bad request", func() {
		router, _, _ := newTestRouter(s.T())
		w := doRequest(router, http.MethodPost, "/registry/transactions/abc/approve", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestHandleReject() {
	router, mockService, _ := newTestRouter(s.T())
	mockService.EXPECT().Reject(gomock.Any(), int64(42), int64(3), "incomplete file").Return(nil)

	w := doRequest(router, http.MethodPost, "/registry/transactions/42/reject",
		RejectTransactionRequest{Reason: "incomplete file"})
	s.Equal(http.StatusNoContent, w.Code)
}

// =============================================================================
// Create Transaction
// =============================================================================

func (s *HandlerSuite) TestHandleCreateTransaction() {
	s.Run("heirs on an inheritance become a subdivision payload", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, transaction *models.Transaction) error {
				s.Require().NotNil(transaction.Payload)
				s.Equal(models.PayloadKindSubdivision, transaction.Payload.Kind)
				s.Equal([]int64{11, 12, 13}, transaction.Payload.Heirs)
				transaction.ID = 101
				transaction.Status = models.TransactionStatusPending
				return nil
			})

		w := doRequest(router, http.MethodPost, "/registry/transactions", CreateTransactionRequest{
			ParcelID: 7, Type: "inheritance", Heirs: []int64{11, 12, 13},
		})
		s.Equal(http.StatusCreated, w.Code)

		var resp TransactionResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal(int64(101), resp.ID)
		s.Equal([]int64{11, 12, 13}, resp.Heirs)
	})

	s.Run("plain sale carries a single owner payload", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, transaction *models.Transaction) error {
				s.Require().NotNil(transaction.Payload)
				s.Equal(models.PayloadKindSingleOwner, transaction.Payload.Kind)
				s.Equal(int64(20), transaction.Payload.CitizenID)
				return nil
			})

		w := doRequest(router, http.MethodPost, "/registry/transactions", CreateTransactionRequest{
			ParcelID: 7, Type: "sale", PreviousOwnerID: 10, NewOwnerID: 20,
		})
		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("malformed body maps to bad request", func() {
		router, _, _ := newTestRouter(s.T())
		req := httptest.NewRequest(http.MethodPost, "/registry/transactions",
			bytes.NewReader([]byte("{not json")))
		req.Header.Set("Authorization", "Bearer agent-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// Parcels
// =============================================================================

func (s *HandlerSuite) TestHandleParcels() {
	s.Run("registration returns the allocated number", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().RegisterParcel(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, parcel *models.Parcel) error {
				s.Equal("Dakar", parcel.Region)
				parcel.ID = 9
				parcel.Number = "DK-2025-0001"
				parcel.Status = models.ParcelStatusAvailable
				return nil
			})

		w := doRequest(router, http.MethodPost, "/registry/parcels", RegisterParcelRequest{
			Region: "Dakar", Area: 250, AreaUnit: "square_meters",
		})
		s.Equal(http.StatusCreated, w.Code)

		var resp ParcelResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("DK-2025-0001", resp.Number)
	})

	s.Run("lookup by number", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().GetParcelByNumber(gomock.Any(), "DK-2025-0001").
			Return(&models.Parcel{ID: 9, Number: "DK-2025-0001",
				Status: models.ParcelStatusOccupied, OwnerID: 20}, nil)

		w := doRequest(router, http.MethodGet, "/registry/parcels/number/DK-2025-0001", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("missing parcel maps to not found", func() {
		router, mockService, _ := newTestRouter(s.T())
		mockService.EXPECT().GetParcel(gomock.Any(), int64(404)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "parcel not found"))

		w := doRequest(router, http.MethodGet, "/registry/parcels/404", nil)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

// =============================================================================
// Notifications
// =============================================================================

func (s *HandlerSuite) TestHandleListNotifications() {
	router, _, mockNotifications := newTestRouter(s.T())
	mockNotifications.EXPECT().List(gomock.Any(), int64(11)).
		Return([]notification.Notification{{CitizenID: 11, ParcelNumber: "DK-2025-0001-A"}}, nil)

	w := doRequest(router, http.MethodGet, "/registry/citizens/11/notifications", nil)
	s.Equal(http.StatusOK, w.Code)

	var resp []notification.Notification
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp, 1)
	s.Equal("DK-2025-0001-A", resp[0].ParcelNumber)
}
