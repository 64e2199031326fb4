package http

import (
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/invoice"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"
)

type TransitionRequest struct {
	Target string `json:"target" validate:"required"`
	Note   string `json:"note" validate:"max=500"`
}

type PriceRequest struct {
	AdminFinalPrice *kernel.Money `json:"adminFinalPrice" validate:"required"`
}

type PostRequest struct {
	Mode              string        `json:"mode" validate:"required,oneof=open invite assign"`
	InvitedCarrierIDs []kernel.UUID `json:"invitedCarrierIds"`
	AssignedCarrierID *kernel.UUID  `json:"assignedCarrierId"`
	AllowCounterBids  bool          `json:"allowCounterBids"`
	KYCVerified       bool          `json:"kycVerified"`
}

type AvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

type InvoiceActionRequest struct {
	Note          string        `json:"note" validate:"max=500"`
	RevisedAmount *kernel.Money `json:"revisedAmount"`
}

type PlaceBidRequest struct {
	TruckID *kernel.UUID  `json:"truckId"`
	Amount  *kernel.Money `json:"amount" validate:"required"`
	Notes   string        `json:"notes" validate:"max=1000"`
}

type AcceptBidRequest struct {
	FinalPrice     *kernel.Money `json:"finalPrice"`
	IdempotencyKey string        `json:"idempotencyKey" validate:"max=128"`
}

type CounterBidRequest struct {
	Amount *kernel.Money `json:"amount" validate:"required"`
	Note   string        `json:"note" validate:"max=500"`
}

type RejectBidRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type MessageRequest struct {
	Content string        `json:"content" validate:"max=2000"`
	Amount  *kernel.Money `json:"amount"`
}

type BidResponse struct {
	ID              kernel.UUID   `json:"id"`
	LoadID          kernel.UUID   `json:"loadId"`
	CarrierID       kernel.UUID   `json:"carrierId"`
	TruckID         *kernel.UUID  `json:"truckId,omitempty"`
	Amount          kernel.Money  `json:"amount"`
	CounterAmount   *kernel.Money `json:"counterAmount,omitempty"`
	AcceptedAmount  *kernel.Money `json:"acceptedAmount,omitempty"`
	Status          bid.Status    `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	ExpiresAt       *time.Time    `json:"expiresAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func newBidResponse(b *bid.Bid) BidResponse {
	return BidResponse{
		ID:              b.ID(),
		LoadID:          b.LoadID(),
		CarrierID:       b.CarrierID(),
		TruckID:         b.TruckID(),
		Amount:          b.Amount(),
		CounterAmount:   b.CounterAmount(),
		AcceptedAmount:  b.AcceptedAmount(),
		Status:          b.Status(),
		Notes:           b.Notes(),
		RejectionReason: b.RejectionReason(),
		ExpiresAt:       b.ExpiresAt(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
}

type PlaceBidResponse struct {
	Bid         BidResponse                `json:"bid"`
	Eligibility services.EligibilityResult `json:"eligibility"`
	Compliance  services.ComplianceResult  `json:"compliance"`
}

// InvoiceResponse hides the carrier payout from everyone but admins.
type InvoiceResponse struct {
	ID              kernel.UUID    `json:"id"`
	LoadID          kernel.UUID    `json:"loadId"`
	Number          string         `json:"number"`
	Status          invoice.Status `json:"status"`
	Total           kernel.Money   `json:"total"`
	CarrierAmount   *kernel.Money  `json:"carrierAmount,omitempty"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func newInvoiceResponse(actor user.Actor, i *invoice.Invoice) *InvoiceResponse {
	if i == nil {
		return nil
	}
	res := &InvoiceResponse{
		ID:              i.ID(),
		LoadID:          i.LoadID(),
		Number:          i.Number(),
		Status:          i.Status(),
		Total:           i.Total(),
		RejectionReason: i.RejectionReason(),
		UpdatedAt:       i.UpdatedAt(),
	}
	if actor.IsAdmin() {
		amount := i.CarrierAmount()
		res.CarrierAmount = &amount
	}
	return res
}

type AcceptBidResponse struct {
	Bid             BidResponse       `json:"bid"`
	Load            services.LoadView `json:"load"`
	InvoiceID       *kernel.UUID      `json:"invoiceId,omitempty"`
	ShipmentID      *kernel.UUID      `json:"shipmentId,omitempty"`
	AlreadyAccepted bool              `json:"alreadyAccepted"`
	Warnings        []string          `json:"warnings,omitempty"`
}

type InvoiceActionResponse struct {
	Load       services.LoadView `json:"load"`
	Invoice    *InvoiceResponse  `json:"invoice,omitempty"`
	ShipmentID *kernel.UUID      `json:"shipmentId,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
}

type RepairResponse struct {
	LoadID     kernel.UUID  `json:"loadId"`
	InvoiceID  *kernel.UUID `json:"invoiceId,omitempty"`
	ShipmentID *kernel.UUID `json:"shipmentId,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
}

func newRepairResponses(outcomes []commands.RepairOutcome) []RepairResponse {
	res := make([]RepairResponse, 0, len(outcomes))
	for _, o := range outcomes {
		res = append(res, RepairResponse{
			LoadID:     o.LoadID,
			InvoiceID:  o.InvoiceID,
			ShipmentID: o.ShipmentID,
			Warnings:   warningMessages(o.Warnings),
		})
	}
	return res
}

type MessageResponse struct {
	ID         kernel.UUID             `json:"id"`
	BidID      kernel.UUID             `json:"bidId"`
	SenderID   kernel.UUID             `json:"senderId"`
	SenderRole user.Role               `json:"senderRole"`
	Type       negotiation.MessageType `json:"type"`
	Content    string                  `json:"content"`
	Amount     *kernel.Money           `json:"amount,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

func newMessageResponse(m *negotiation.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID(),
		BidID:      m.BidID(),
		SenderID:   m.SenderID(),
		SenderRole: m.SenderRole(),
		Type:       m.Type(),
		Content:    m.Content(),
		Amount:     m.Amount(),
		CreatedAt:  m.CreatedAt(),
	}
}

func warningMessages(warnings []*errs.DependencyFailureError) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}

func postingOptions(r PostRequest) load.PostingOptions {
	return load.PostingOptions{
		Mode:              load.PostingMode(r.Mode),
		InvitedCarrierIDs: r.InvitedCarrierIDs,
		AssignedCarrierID: r.AssignedCarrierID,
		AllowCounterBids:  r.AllowCounterBids,
		KYCVerified:       r.KYCVerified,
	}
}
