package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appcomplaint "github.com/tenancy/backend/internal/application/complaint"
	"github.com/tenancy/backend/internal/domain/complaint"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

func complaintRouter(repo *testutil.MockComplaintRepository, users *testutil.MockUserRepository, actor *identity.User) *gin.Engine {
	svc := appcomplaint.NewService(repo, users, &testutil.RecordingPublisher{}, zap.NewNop())
	h := NewComplaintHandler(svc)
	r := gin.New()
	r.Use(withActor(testutil.Actor(actor)))
	r.POST("/complaints", h.Create)
	r.PUT("/complaints/:complaintId", h.UpdateStatus)
	r.GET("/complaints/tenant/:tenantId", h.TenantComplaints)
	return r
}

func TestComplaintHandler_Create(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "Oak")
	users := new(testutil.MockUserRepository)
	users.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	users.On("FindLandlordForApartment", mock.Anything, "Oak").Return(landlord, nil)
	repo := new(testutil.MockComplaintRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*complaint.Complaint")).Return(nil)

	w := testutil.DoJSON(t, complaintRouter(repo, users, tenant), http.MethodPost, "/complaints", map[string]any{
		"title":       "Broken heater",
		"description": "No heat since Monday",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := testutil.DecodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Pending", data["status"])
	assert.Equal(t, landlord.ID.String(), data["landlordId"])
}

func TestComplaintHandler_CreateByLandlord(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	w := testutil.DoJSON(t, complaintRouter(new(testutil.MockComplaintRepository), new(testutil.MockUserRepository), landlord),
		http.MethodPost, "/complaints", map[string]any{"title": "t", "description": "d"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestComplaintHandler_UpdateStatus(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "Oak")
	c, err := complaint.NewComplaint(tenant.ID, tenant.Name, tenant.Email, landlord.ID, "Oak", "Leak", "Kitchen sink")
	require.NoError(t, err)

	repo := new(testutil.MockComplaintRepository)
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	router := complaintRouter(repo, new(testutil.MockUserRepository), landlord)

	w := testutil.DoJSON(t, router, http.MethodPut, "/complaints/"+c.ID.String(), map[string]any{
		"status":        "Completed",
		"landlordNotes": "Plumber fixed it",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := testutil.DecodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Completed", data["status"])
	assert.NotNil(t, data["resolvedAt"])

	w = testutil.DoJSON(t, router, http.MethodPut, "/complaints/"+c.ID.String(), map[string]any{"status": "Closed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, testutil.DecodeResponse(t, w).Error.Code)
}

func TestComplaintHandler_TenantComplaintsUnknownTenant(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	users := new(testutil.MockUserRepository)
	missing := testutil.NewTestUUID("missing-tenant")
	users.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	w := testutil.DoJSON(t, complaintRouter(new(testutil.MockComplaintRepository), users, landlord),
		http.MethodGet, "/complaints/tenant/"+missing.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
