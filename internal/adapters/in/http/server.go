// Package http is the REST and websocket boundary of the brokerage engine.
// Handlers translate requests into commands and queries, and map the error
// families of internal/pkg/errs onto status codes.
package http

import (
	"context"
	"net/http"
	"time"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/bid"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/load"
	"freight/internal/core/domain/model/negotiation"
	"freight/internal/core/domain/model/user"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Handler is the shape shared by every command and query handler.
type Handler[C, R any] interface {
	Handle(ctx context.Context, request C) (R, error)
}

// Handlers lists the use cases the server exposes. Every field is required.
type Handlers struct {
	TransitionLoad      Handler[commands.TransitionLoadCommand, *load.Load]
	PriceLoad           Handler[commands.PriceLoadCommand, *load.Load]
	PostLoad            Handler[commands.PostLoadCommand, *load.Load]
	SetLoadAvailability Handler[commands.SetLoadAvailabilityCommand, *load.Load]
	AdvanceInvoice      Handler[commands.AdvanceInvoiceCommand, commands.AdvanceInvoiceResult]
	RepairArtifacts     Handler[commands.RepairAwardArtifactsCommand, []commands.RepairOutcome]
	PlaceBid            Handler[commands.PlaceBidCommand, commands.PlaceBidResult]
	AcceptBid           Handler[commands.AcceptBidCommand, commands.AcceptBidResult]
	CounterBid          Handler[commands.CounterBidCommand, *bid.Bid]
	RejectBid           Handler[commands.RejectBidCommand, *bid.Bid]
	PostMessage         Handler[commands.PostNegotiationMessageCommand, *negotiation.Message]

	VisibleLoads      Handler[queries.GetVisibleLoadsQuery, []services.LoadView]
	LoadHistory       Handler[queries.GetLoadHistoryQuery, []queries.LoadHistoryEntry]
	NegotiationThread Handler[queries.GetNegotiationThreadQuery, *queries.NegotiationThread]
	Eligibility       Handler[queries.CheckEligibilityQuery, services.EligibilityResult]
	Compliance        Handler[queries.CheckComplianceQuery, services.ComplianceResult]
}

// Streamer attaches a websocket client to the event stream of an actor.
type Streamer interface {
	Serve(w http.ResponseWriter, r *http.Request, actor user.Actor) error
}

type Server struct {
	handlers  Handlers
	projector services.VisibilityProjector
	streamer  Streamer
	now       func() time.Time
}

// NewServer creates a server over the use case handlers. The projector shapes
// load bodies in command responses the same way GET /loads does.
func NewServer(handlers Handlers, projector services.VisibilityProjector, streamer Streamer) *Server {
	return &Server{
		handlers:  handlers,
		projector: projector,
		streamer:  streamer,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for compliance checks.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

func (s *Server) Health(c echo.Context) error {
	return c.String(http.StatusOK, "Healthy")
}

// Stream handles GET /ws.
func (s *Server) Stream(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	// Serve answers the client itself, failures included.
	_ = s.streamer.Serve(c.Response(), c.Request(), actor)
	return nil
}

// GetLoads handles GET /loads.
func (s *Server) GetLoads(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetVisibleLoadsQuery(actor)
	if err != nil {
		return err
	}
	views, err := s.handlers.VisibleLoads.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, views)
}

// GetLoadHistory handles GET /loads/:id/history.
func (s *Server) GetLoadHistory(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetLoadHistoryQuery(loadID, actor)
	if err != nil {
		return err
	}
	entries, err := s.handlers.LoadHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// TransitionLoad handles POST /loads/:id/transition.
func (s *Server) TransitionLoad(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req TransitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewTransitionLoadCommand(loadID, load.Status(req.Target), actor, req.Note)
	if err != nil {
		return err
	}
	l, err := s.handlers.TransitionLoad.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.loadView(actor, l))
}

// PriceLoad handles POST /loads/:id/price.
func (s *Server) PriceLoad(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req PriceRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewPriceLoadCommand(loadID, *req.AdminFinalPrice, actor)
	if err != nil {
		return err
	}
	l, err := s.handlers.PriceLoad.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.loadView(actor, l))
}

// PostLoad handles POST /loads/:id/post.
func (s *Server) PostLoad(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req PostRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewPostLoadCommand(loadID, postingOptions(req), actor)
	if err != nil {
		return err
	}
	l, err := s.handlers.PostLoad.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.loadView(actor, l))
}

// SetLoadAvailability handles POST /loads/:id/availability.
func (s *Server) SetLoadAvailability(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req AvailabilityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewSetLoadAvailabilityCommand(loadID, *req.Available, actor)
	if err != nil {
		return err
	}
	l, err := s.handlers.SetLoadAvailability.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.loadView(actor, l))
}

// AdvanceInvoice handles POST /loads/:id/invoice/:action.
func (s *Server) AdvanceInvoice(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req InvoiceActionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	action := commands.InvoiceAction(c.Param("action"))
	cmd, err := commands.NewAdvanceInvoiceCommand(loadID, action, actor, req.Note, req.RevisedAmount)
	if err != nil {
		return err
	}
	res, err := s.handlers.AdvanceInvoice.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, InvoiceActionResponse{
		Load:       s.loadView(actor, res.Load),
		Invoice:    newInvoiceResponse(actor, res.Invoice),
		ShipmentID: res.ShipmentID,
		Warnings:   warningMessages(res.Warnings),
	})
}

// RepairLoad handles POST /loads/:id/repair.
func (s *Server) RepairLoad(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewRepairAwardArtifactsCommand(loadID, &actor)
	if err != nil {
		return err
	}
	outcomes, err := s.handlers.RepairArtifacts.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newRepairResponses(outcomes))
}

// CheckEligibility handles GET /loads/:id/eligibility/:carrierId.
func (s *Server) CheckEligibility(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	carrierID, err := pathID(c, "carrierId")
	if err != nil {
		return err
	}
	query, err := queries.NewCheckEligibilityQuery(loadID, carrierID, actor)
	if err != nil {
		return err
	}
	res, err := s.handlers.Eligibility.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// CheckCompliance handles GET /carriers/:id/compliance.
func (s *Server) CheckCompliance(c echo.Context) error {
	actor, carrierID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewCheckComplianceQuery(carrierID, actor, s.now())
	if err != nil {
		return err
	}
	res, err := s.handlers.Compliance.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// PlaceBid handles POST /loads/:id/bids.
func (s *Server) PlaceBid(c echo.Context) error {
	actor, loadID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req PlaceBidRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewPlaceBidCommand(loadID, actor, req.TruckID, *req.Amount, req.Notes)
	if err != nil {
		return err
	}
	res, err := s.handlers.PlaceBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, PlaceBidResponse{
		Bid:         newBidResponse(res.Bid),
		Eligibility: res.Eligibility,
		Compliance:  res.Compliance,
	})
}

// AcceptBid handles POST /bids/:id/accept. A replayed acceptance answers 200
// with alreadyAccepted set.
func (s *Server) AcceptBid(c echo.Context) error {
	actor, bidID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req AcceptBidRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewAcceptBidCommand(bidID, actor, req.FinalPrice, req.IdempotencyKey)
	if err != nil {
		return err
	}
	res, err := s.handlers.AcceptBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AcceptBidResponse{
		Bid:             newBidResponse(res.Bid),
		Load:            s.loadView(actor, res.Load),
		InvoiceID:       res.InvoiceID,
		ShipmentID:      res.ShipmentID,
		AlreadyAccepted: res.AlreadyAccepted,
		Warnings:        warningMessages(res.Warnings),
	})
}

// CounterBid handles POST /bids/:id/counter.
func (s *Server) CounterBid(c echo.Context) error {
	actor, bidID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req CounterBidRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewCounterBidCommand(bidID, *req.Amount, actor, req.Note)
	if err != nil {
		return err
	}
	b, err := s.handlers.CounterBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBidResponse(b))
}

// RejectBid handles POST /bids/:id/reject.
func (s *Server) RejectBid(c echo.Context) error {
	actor, bidID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req RejectBidRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewRejectBidCommand(bidID, actor, req.Reason)
	if err != nil {
		return err
	}
	b, err := s.handlers.RejectBid.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newBidResponse(b))
}

// PostMessage handles POST /bids/:id/messages.
func (s *Server) PostMessage(c echo.Context) error {
	actor, bidID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	var req MessageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cmd, err := commands.NewPostNegotiationMessageCommand(bidID, actor, req.Content, req.Amount)
	if err != nil {
		return err
	}
	m, err := s.handlers.PostMessage.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newMessageResponse(m))
}

// GetNegotiation handles GET /bids/:id/negotiation.
func (s *Server) GetNegotiation(c echo.Context) error {
	actor, bidID, err := actorAndID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetNegotiationThreadQuery(bidID, actor)
	if err != nil {
		return err
	}
	thread, err := s.handlers.NegotiationThread.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, thread)
}

// loadView projects a changed load for the actor who changed it. An actor who
// may not see the load afterwards only learns its id and status.
func (s *Server) loadView(actor user.Actor, l *load.Load) services.LoadView {
	if view, ok := s.projector.ProjectOne(actor, l, nil); ok {
		return view
	}
	return services.LoadView{ID: l.ID(), Status: l.Status(), UpdatedAt: l.UpdatedAt()}
}

func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.ParseUUID(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func actorAndID(c echo.Context, name string) (user.Actor, kernel.UUID, error) {
	actor, err := actorFrom(c)
	if err != nil {
		return user.Actor{}, kernel.UUID{}, err
	}
	id, err := pathID(c, name)
	if err != nil {
		return user.Actor{}, kernel.UUID{}, err
	}
	return actor, id, nil
}
