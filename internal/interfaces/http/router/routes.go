package router

import (
	"github.com/gin-gonic/gin"
	"github.com/tenancy/backend/internal/interfaces/http/handler"
)

// Handlers holds the HTTP handlers of every API area
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Apartment *handler.ApartmentHandler
	Bill      *handler.BillHandler
	Complaint *handler.ComplaintHandler
	Rules     *handler.RulesHandler
	Chat      *handler.ChatHandler
	WebSocket *handler.WebSocketHandler
	System    *handler.SystemHandler
}

// Guards are the access checks placed in front of routes
type Guards struct {
	// Authenticated resolves the bearer token to an actor
	Authenticated []gin.HandlerFunc
	// SocketAuthenticated also accepts the token as a query parameter
	SocketAuthenticated []gin.HandlerFunc
	Landlord            gin.HandlerFunc
	Tenant              gin.HandlerFunc
	// Credentials throttles register and login
	Credentials gin.HandlerFunc
	// Idempotent rejects a replayed Idempotency-Key on payments
	Idempotent gin.HandlerFunc
}

// RegisterAPI attaches every tenancy route to r. Nothing is served until
// r.Setup is called.
func RegisterAPI(r *Router, h Handlers, g Guards) {
	r.Register(authRoutes(h, g))
	r.Register(userRoutes(h, g))
	r.Register(apartmentRoutes(h, g))
	r.Register(billRoutes(h, g))
	r.Register(complaintRoutes(h, g))
	r.Register(rulesRoutes(h, g))
	r.Register(chatRoutes(h, g))
	r.Register(NewDomainGroup("realtime", "").
		GET("/ws", chain(g.SocketAuthenticated, h.WebSocket.Connect)...))
	r.Register(NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo))
}

// RegisterHealth attaches the unversioned health endpoint
func RegisterHealth(engine *gin.Engine, h Handlers) {
	engine.GET("/health", h.System.Health)
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("auth", "/auth")
	dg.POST("/register", g.Credentials, h.Auth.Register)
	dg.POST("/login", g.Credentials, h.Auth.Login)
	dg.POST("/logout", chain(g.Authenticated, h.Auth.Logout)...)
	return dg
}

func userRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("users", "/users").Use(g.Authenticated...)
	dg.GET("/profile", h.User.Profile)
	dg.GET("/tenants", g.Landlord, h.User.ListTenants)
	dg.GET("/landlords", g.Tenant, h.User.ListLandlords)
	dg.PUT("/rent-amount", g.Landlord, h.User.UpdateRentAmount)
	return dg
}

func apartmentRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("apartments", "/apartments")
	dg.GET("/available", h.Apartment.ListAvailable)
	dg.GET("/:id", h.Apartment.Get)

	manage := dg.Group("apartments-manage", "").Use(g.Authenticated...).Use(g.Landlord)
	manage.POST("", h.Apartment.Create)
	manage.GET("/landlord/my-apartments", h.Apartment.ListMine)
	manage.PUT("/:id", h.Apartment.Update)
	manage.DELETE("/:id", h.Apartment.Delete)
	return dg
}

func billRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("bills", "/bills").Use(g.Authenticated...)
	dg.POST("/generate-monthly", g.Landlord, h.Bill.GenerateMonthly)
	dg.GET("/me", g.Tenant, h.Bill.MyBills)
	dg.GET("/apartment", g.Landlord, h.Bill.ApartmentBills)
	dg.GET("/unpaid", h.Bill.UnpaidBills)
	dg.GET("/paid", h.Bill.PaidBills)
	dg.POST("/pay-cash", g.Tenant, g.Idempotent, h.Bill.PayCash)
	dg.PUT("/:billId", g.Landlord, h.Bill.Update)
	dg.GET("/download/:billId", h.Bill.DownloadBill)
	dg.GET("/download-receipt/:billId/:paymentIndex", h.Bill.DownloadReceipt)
	return dg
}

func complaintRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("complaints", "/complaints").Use(g.Authenticated...)
	dg.POST("", g.Tenant, h.Complaint.Create)
	dg.GET("/me", g.Tenant, h.Complaint.MyComplaints)
	dg.GET("", g.Landlord, h.Complaint.ApartmentComplaints)
	dg.GET("/tenant/:tenantId", g.Landlord, h.Complaint.TenantComplaints)
	dg.PUT("/:complaintId", g.Landlord, h.Complaint.UpdateStatus)
	return dg
}

func rulesRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("rules", "/rules").Use(g.Authenticated...)
	dg.POST("", g.Landlord, h.Rules.AddRules)
	dg.GET("", h.Rules.GetRules)
	dg.PUT("/:ruleId", g.Landlord, h.Rules.UpdateRule)
	dg.DELETE("/:ruleId", g.Landlord, h.Rules.DeleteRule)
	return dg
}

func chatRoutes(h Handlers, g Guards) *DomainGroup {
	dg := NewDomainGroup("chats", "/chats").Use(g.Authenticated...)
	dg.POST("", h.Chat.Send)
	dg.GET("/me", h.Chat.MyMessages)
	dg.GET("/conversations", h.Chat.Conversations)
	dg.GET("/partners", h.Chat.Partners)
	dg.GET("/conversation/:userA/:userB", h.Chat.Conversation)
	dg.GET("/online", h.WebSocket.OnlineUsers)
	return dg
}

// chain copies pre so callers never share a backing array
func chain(pre []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+len(handlers))
	out = append(out, pre...)
	return append(out, handlers...)
}
