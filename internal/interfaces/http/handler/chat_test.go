package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	appchat "github.com/tenancy/backend/internal/application/chat"
	"github.com/tenancy/backend/internal/domain/chat"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

func chatRouter(repo *testutil.MockChatRepository, users *testutil.MockUserRepository, actor *identity.User) *gin.Engine {
	h := NewChatHandler(appchat.NewService(repo, users, nil, nil, zap.NewNop()))
	r := gin.New()
	r.Use(withActor(testutil.Actor(actor)))
	r.POST("/chats", h.Send)
	r.GET("/chats/conversation/:userA/:userB", h.Conversation)
	return r
}

func TestChatHandler_Send(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	tenant := testutil.NewTenant("Tom", "oak")

	users := new(testutil.MockUserRepository)
	users.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	users.On("FindByID", mock.Anything, landlord.ID).Return(landlord, nil)

	repo := new(testutil.MockChatRepository)
	repo.On("FindRecentDuplicate", mock.Anything, tenant.ID, landlord.ID, "The sink leaks", mock.Anything).
		Return(nil, shared.ErrNotFound).Once()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*chat.Message")).Return(nil).Once()

	router := chatRouter(repo, users, tenant)
	body := map[string]any{"receiverId": landlord.ID.String(), "message": "  The sink leaks "}

	w := testutil.DoJSON(t, router, http.MethodPost, "/chats", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := testutil.DecodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "The sink leaks", first["message"])

	stored, err := chat.NewMessage(
		chat.Participant{ID: tenant.ID, Name: tenant.Name, Role: tenant.Role},
		chat.Participant{ID: landlord.ID, Name: landlord.Name, Role: landlord.Role},
		"oak", "The sink leaks")
	require.NoError(t, err)
	repo.On("FindRecentDuplicate", mock.Anything, tenant.ID, landlord.ID, "The sink leaks", mock.Anything).
		Return(stored, nil).Once()

	w = testutil.DoJSON(t, router, http.MethodPost, "/chats", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := testutil.DecodeResponse(t, w)
	assert.Equal(t, stored.ID.String(), resp.Data.(map[string]any)["id"])
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestChatHandler_SendAcrossApartments(t *testing.T) {
	tenant := testutil.NewTenant("Tom", "Oak")
	stranger := testutil.NewLandlord("Sid", "Elm", 900)

	users := new(testutil.MockUserRepository)
	users.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	users.On("FindByID", mock.Anything, stranger.ID).Return(stranger, nil)
	repo := new(testutil.MockChatRepository)

	w := testutil.DoJSON(t, chatRouter(repo, users, tenant), http.MethodPost, "/chats", map[string]any{
		"receiverId": stranger.ID.String(),
		"message":    "hello",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, testutil.DecodeResponse(t, w).Error.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestChatHandler_SendValidation(t *testing.T) {
	tenant := testutil.NewTenant("Tom", "Oak")
	router := chatRouter(new(testutil.MockChatRepository), new(testutil.MockUserRepository), tenant)

	w := testutil.DoJSON(t, router, http.MethodPost, "/chats", map[string]any{"receiverId": uuid.NewString(), "message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(t, router, http.MethodPost, "/chats", map[string]any{"receiverId": "nobody", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, testutil.DecodeResponse(t, w).Error.Code)
}

func TestChatHandler_ConversationOfOthers(t *testing.T) {
	tenant := testutil.NewTenant("Tom", "Oak")
	router := chatRouter(new(testutil.MockChatRepository), new(testutil.MockUserRepository), tenant)

	w := testutil.DoJSON(t, router, http.MethodGet, "/chats/conversation/"+uuid.NewString()+"/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/chats/conversation/x/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
