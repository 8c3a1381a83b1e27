package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/tenancy/backend/internal/interfaces/http/handler"
)

func stopWith(status int, header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(header, "hit")
		c.AbortWithStatus(status)
	}
}

func passWith(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header(header, "hit")
		c.Next()
	}
}

// emptyHandlers registers routes without serving them
func emptyHandlers() Handlers {
	return Handlers{
		Auth:      &handler.AuthHandler{},
		User:      &handler.UserHandler{},
		Apartment: &handler.ApartmentHandler{},
		Bill:      &handler.BillHandler{},
		Complaint: &handler.ComplaintHandler{},
		Rules:     &handler.RulesHandler{},
		Chat:      &handler.ChatHandler{},
		WebSocket: &handler.WebSocketHandler{},
		System:    &handler.SystemHandler{},
	}
}

func setupAPI(g Guards) *gin.Engine {
	engine := gin.New()
	r := NewRouter(engine)
	RegisterAPI(r, emptyHandlers(), g)
	r.Setup()
	RegisterHealth(engine, emptyHandlers())
	return engine
}

func TestRegisterAPI_RouteTable(t *testing.T) {
	engine := setupAPI(Guards{
		Authenticated:       []gin.HandlerFunc{passWith("X-Auth")},
		SocketAuthenticated: []gin.HandlerFunc{passWith("X-Socket-Auth")},
		Landlord:            passWith("X-Landlord"),
		Tenant:              passWith("X-Tenant"),
		Credentials:         passWith("X-Limit"),
		Idempotent:          passWith("X-Idem"),
	})

	var got []string
	for _, ri := range engine.Routes() {
		got = append(got, ri.Method+" "+ri.Path)
	}
	sort.Strings(got)

	want := []string{
		"DELETE /api/v1/apartments/:id",
		"DELETE /api/v1/rules/:ruleId",
		"GET /api/v1/apartments/:id",
		"GET /api/v1/apartments/available",
		"GET /api/v1/apartments/landlord/my-apartments",
		"GET /api/v1/bills/apartment",
		"GET /api/v1/bills/download-receipt/:billId/:paymentIndex",
		"GET /api/v1/bills/download/:billId",
		"GET /api/v1/bills/me",
		"GET /api/v1/bills/paid",
		"GET /api/v1/bills/unpaid",
		"GET /api/v1/chats/conversation/:userA/:userB",
		"GET /api/v1/chats/conversations",
		"GET /api/v1/chats/me",
		"GET /api/v1/chats/online",
		"GET /api/v1/chats/partners",
		"GET /api/v1/complaints",
		"GET /api/v1/complaints/me",
		"GET /api/v1/complaints/tenant/:tenantId",
		"GET /api/v1/rules",
		"GET /api/v1/system/info",
		"GET /api/v1/users/landlords",
		"GET /api/v1/users/profile",
		"GET /api/v1/users/tenants",
		"GET /api/v1/ws",
		"GET /health",
		"POST /api/v1/apartments",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/logout",
		"POST /api/v1/auth/register",
		"POST /api/v1/bills/generate-monthly",
		"POST /api/v1/bills/pay-cash",
		"POST /api/v1/chats",
		"POST /api/v1/complaints",
		"POST /api/v1/rules",
		"PUT /api/v1/apartments/:id",
		"PUT /api/v1/bills/:billId",
		"PUT /api/v1/complaints/:complaintId",
		"PUT /api/v1/rules/:ruleId",
		"PUT /api/v1/users/rent-amount",
	}
	assert.Equal(t, want, got)
}

func TestRegisterAPI_Guards(t *testing.T) {
	engine := setupAPI(Guards{
		Authenticated:       []gin.HandlerFunc{passWith("X-Auth")},
		SocketAuthenticated: []gin.HandlerFunc{stopWith(http.StatusUnauthorized, "X-Socket-Auth")},
		Landlord:            stopWith(http.StatusForbidden, "X-Landlord"),
		Tenant:              stopWith(http.StatusForbidden, "X-Tenant"),
		Credentials:         stopWith(http.StatusTooManyRequests, "X-Limit"),
		Idempotent:          passWith("X-Idem"),
	})

	tests := []struct {
		method string
		path   string
		status int
		hits   []string
		misses []string
	}{
		{http.MethodPost, "/api/v1/auth/login", http.StatusTooManyRequests, []string{"X-Limit"}, []string{"X-Auth"}},
		{http.MethodPost, "/api/v1/auth/register", http.StatusTooManyRequests, []string{"X-Limit"}, nil},
		{http.MethodGet, "/api/v1/users/tenants", http.StatusForbidden, []string{"X-Auth", "X-Landlord"}, []string{"X-Tenant"}},
		{http.MethodGet, "/api/v1/users/landlords", http.StatusForbidden, []string{"X-Auth", "X-Tenant"}, []string{"X-Landlord"}},
		{http.MethodPost, "/api/v1/apartments", http.StatusForbidden, []string{"X-Auth", "X-Landlord"}, nil},
		{http.MethodPost, "/api/v1/bills/pay-cash", http.StatusForbidden, []string{"X-Auth", "X-Tenant"}, []string{"X-Landlord", "X-Idem"}},
		{http.MethodPut, "/api/v1/bills/abc", http.StatusForbidden, []string{"X-Auth", "X-Landlord"}, nil},
		{http.MethodPost, "/api/v1/complaints", http.StatusForbidden, []string{"X-Auth", "X-Tenant"}, nil},
		{http.MethodDelete, "/api/v1/rules/abc", http.StatusForbidden, []string{"X-Auth", "X-Landlord"}, nil},
		{http.MethodGet, "/api/v1/ws", http.StatusUnauthorized, []string{"X-Socket-Auth"}, []string{"X-Auth"}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			for _, h := range tt.hits {
				assert.Equal(t, "hit", w.Header().Get(h), h)
			}
			for _, h := range tt.misses {
				assert.Empty(t, w.Header().Get(h), h)
			}
		})
	}
}

func TestChainDoesNotShareBackingArray(t *testing.T) {
	pre := make([]gin.HandlerFunc, 1, 4)
	pre[0] = passWith("X-A")
	a := chain(pre, stopWith(http.StatusOK, "X-B"))
	b := chain(pre, stopWith(http.StatusOK, "X-C"))

	engine := gin.New()
	engine.GET("/a", a...)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, "hit", w.Header().Get("X-B"))
	assert.Len(t, b, 2)
}
