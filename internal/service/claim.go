package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	propseekerrors "github.com/propseek/propseek/internal/errors"
	"github.com/propseek/propseek/internal/store"
)

// ClaimRequest begins a claim workflow for one property.
type ClaimRequest struct {
	PropertyID      string `json:"property_id" binding:"required"`
	ClaimantName    string `json:"claimant_name" binding:"required"`
	ClaimantAddress string `json:"claimant_address" binding:"required"`
	ClaimantEmail   string `json:"claimant_email" binding:"required,email"`
	ClaimantPhone   string `json:"claimant_phone"`
}

// Claim acknowledges a received claim. Intake is stateless: nothing is
// persisted here, the claim id only correlates follow-up paperwork.
type Claim struct {
	ClaimID     string          `json:"claim_id"`
	Status      string          `json:"status"`
	Property    *store.Property `json:"property"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// StartClaim validates the request, resolves the claimed property, and
// returns an acknowledgment. A missing property surfaces as
// ERR_402_NOT_FOUND for the caller to translate.
func (s *Properties) StartClaim(ctx context.Context, req ClaimRequest) (*Claim, error) {
	if strings.TrimSpace(req.PropertyID) == "" ||
		strings.TrimSpace(req.ClaimantName) == "" ||
		strings.TrimSpace(req.ClaimantEmail) == "" {
		return nil, propseekerrors.Newf(propseekerrors.ErrCodeInvalidInput,
			"property_id, claimant_name, and claimant_email are required")
	}

	p, err := s.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	return &Claim{
		ClaimID:     uuid.NewString(),
		Status:      "received",
		Property:    p,
		SubmittedAt: time.Now().UTC(),
	}, nil
}
