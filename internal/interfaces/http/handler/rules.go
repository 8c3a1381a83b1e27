package handler

import (
	"github.com/gin-gonic/gin"
	apprules "github.com/tenancy/backend/internal/application/rules"
	"github.com/tenancy/backend/internal/domain/rules"
)

// RuleRequest is one rule in the body of POST /rules
type RuleRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"required,notblank,max=2000"`
	Category    string `json:"category"`
}

// AddRulesRequest is the body of POST /rules
type AddRulesRequest struct {
	Rules []RuleRequest `json:"rules" binding:"required,min=1,max=50,dive"`
}

// UpdateRuleRequest is the body of PUT /rules/:ruleId
type UpdateRuleRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,notblank,max=2000"`
	Category    *string `json:"category"`
}

// RulesHandler serves the apartment rule book
type RulesHandler struct {
	BaseHandler
	rulesService *apprules.Service
}

// NewRulesHandler creates a new rules handler
func NewRulesHandler(rulesService *apprules.Service) *RulesHandler {
	return &RulesHandler{rulesService: rulesService}
}

// AddRules appends rules to the landlord's rule book
func (h *RulesHandler) AddRules(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req AddRulesRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inputs := make([]apprules.RuleInput, len(req.Rules))
	for i, r := range req.Rules {
		inputs[i] = apprules.RuleInput{
			Title:       r.Title,
			Description: r.Description,
			Category:    rules.Category(r.Category),
		}
	}
	added, err := h.rulesService.AddRules(c.Request.Context(), actor, inputs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, added)
}

// GetRules returns the rule book of the caller's apartment
func (h *RulesHandler) GetRules(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	book, err := h.rulesService.GetRules(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, book)
}

// UpdateRule edits one rule
func (h *RulesHandler) UpdateRule(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ruleID, ok := h.uuidParam(c, "ruleId")
	if !ok {
		return
	}
	var req UpdateRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	patch := apprules.RulePatchInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Category != nil {
		category := rules.Category(*req.Category)
		patch.Category = &category
	}
	rule, err := h.rulesService.UpdateRule(c.Request.Context(), actor, ruleID, patch)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rule)
}

// DeleteRule removes one rule
func (h *RulesHandler) DeleteRule(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ruleID, ok := h.uuidParam(c, "ruleId")
	if !ok {
		return
	}
	if err := h.rulesService.DeleteRule(c.Request.Context(), actor, ruleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, nil, "Rule deleted")
}
