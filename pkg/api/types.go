package api

import "github.com/mihaimyh/badgeapi/pkg/badges"

// NitroResponse is returned by GET /user/{id}/nitro
type NitroResponse struct {
	ID            string             `json:"id"`
	HasNitro      bool               `json:"has_nitro"`
	Tier          *badges.TierResult `json:"tier"`
	NextMilestone *badges.Milestone  `json:"next_milestone"`
}

// BoosterResponse is returned by GET /user/{id}/booster
type BoosterResponse struct {
	ID      string               `json:"id"`
	Booster badges.BoosterStatus `json:"booster"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
