package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apprules "github.com/tenancy/backend/internal/application/rules"
	"github.com/tenancy/backend/internal/domain/identity"
	"github.com/tenancy/backend/internal/domain/rules"
	"github.com/tenancy/backend/internal/domain/shared"
	"github.com/tenancy/backend/internal/interfaces/http/dto"
	"github.com/tenancy/backend/tests/testutil"
	"go.uber.org/zap"
)

func rulesRouter(repo *testutil.MockRuleBookRepository, actor *identity.User) *gin.Engine {
	h := NewRulesHandler(apprules.NewService(repo, &testutil.RecordingPublisher{}, zap.NewNop()))
	r := gin.New()
	r.Use(withActor(testutil.Actor(actor)))
	r.POST("/rules", h.AddRules)
	r.GET("/rules", h.GetRules)
	r.DELETE("/rules/:ruleId", h.DeleteRule)
	return r
}

func TestRulesHandler_AddAndGet(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	repo := new(testutil.MockRuleBookRepository)
	repo.On("FindByLandlordAndApartment", mock.Anything, landlord.ID, "Oak").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*rules.RuleBook")).Return(nil)

	w := testutil.DoJSON(t, rulesRouter(repo, landlord), http.MethodPost, "/rules", map[string]any{
		"rules": []map[string]any{
			{"title": "Quiet hours", "description": "No noise after 10pm", "category": "noise"},
			{"title": "Rent", "description": "Pay by the 5th"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	added := testutil.DecodeResponse(t, w).Data.([]any)
	require.Len(t, added, 2)
	assert.Equal(t, "general", added[1].(map[string]any)["category"])

	tenant := testutil.NewTenant("Tom", "Oak")
	book := rules.NewRuleBook(landlord.ID, "Oak")
	_, err := book.Add(rules.Draft{Title: "Pets", Description: "No dogs", Category: rules.CategoryPets})
	require.NoError(t, err)
	repo.On("FindByApartment", mock.Anything, "Oak").Return([]*rules.RuleBook{book}, nil)

	w = testutil.DoJSON(t, rulesRouter(repo, tenant), http.MethodGet, "/rules", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := testutil.DecodeResponse(t, w).Data.(map[string]any)
	assert.Len(t, data["rules"], 1)
}

func TestRulesHandler_Validation(t *testing.T) {
	landlord := testutil.NewLandlord("Lara", "Oak", 1000)
	router := rulesRouter(new(testutil.MockRuleBookRepository), landlord)

	w := testutil.DoJSON(t, router, http.MethodPost, "/rules", map[string]any{"rules": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.DoJSON(t, router, http.MethodPost, "/rules", map[string]any{
		"rules": []map[string]any{{"title": "", "description": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, testutil.DecodeResponse(t, w).Error.Code)
}
