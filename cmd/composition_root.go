package cmd

import (
	httpin "freight/internal/adapters/in/http"
	"freight/internal/adapters/out/postgres"
	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"
	"freight/internal/jobs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	logger     *zap.Logger
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	publisher  ports.Publisher

	codes       services.CodeGenerator
	eligibility services.EligibilityFilter
	compliance  services.ComplianceChecker
	projector   services.VisibilityProjector
}

// NewCompositionRoot expects a validated config.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, publisher ports.Publisher, logger *zap.Logger) CompositionRoot {
	eligibility := services.NewEligibilityFilter(cfg.EligibilityPolicy())
	return CompositionRoot{
		cfg:         cfg,
		logger:      logger,
		gormDB:      gormDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:   publisher,
		codes:       services.NewCodeGenerator(),
		eligibility: eligibility,
		compliance:  services.NewComplianceChecker(cfg.Compliance.MissingBlocks),
		projector:   services.NewVisibilityProjector(eligibility),
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.New()
	})
}

func (c *CompositionRoot) loadUoW() commands.LoadUoWFactory {
	return FuncLoadUoWFactory(func() commands.LoadUoW {
		return c.uowFactory.New()
	})
}

func (c *CompositionRoot) readUoW() queries.ReadUoWFactory {
	return FuncReadUoWFactory(func() queries.ReadUoW {
		return c.uowFactory.New()
	})
}

func (c *CompositionRoot) Projector() services.VisibilityProjector {
	return c.projector
}

func (c *CompositionRoot) UserRepository() ports.UserRepository {
	return c.uowFactory.New().UserRepository()
}

func (c *CompositionRoot) CreateTransitionLoadCommandHandler() commands.TransitionLoadCommandHandler {
	return commands.NewTransitionLoadCommandHandler(c.uow(), c.codes, c.cfg.AwardOptions().ShipmentPolicy, c.publisher, c.logger)
}

func (c *CompositionRoot) CreatePriceLoadCommandHandler() commands.PriceLoadCommandHandler {
	return commands.NewPriceLoadCommandHandler(c.loadUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreatePostLoadCommandHandler() commands.PostLoadCommandHandler {
	return commands.NewPostLoadCommandHandler(c.loadUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateSetLoadAvailabilityCommandHandler() commands.SetLoadAvailabilityCommandHandler {
	return commands.NewSetLoadAvailabilityCommandHandler(c.loadUoW(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateAdvanceInvoiceCommandHandler() commands.AdvanceInvoiceCommandHandler {
	return commands.NewAdvanceInvoiceCommandHandler(c.uow(), c.codes, c.cfg.AwardOptions().ShipmentPolicy, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRepairAwardArtifactsCommandHandler() commands.RepairAwardArtifactsCommandHandler {
	return commands.NewRepairAwardArtifactsCommandHandler(c.uow(), c.codes, c.cfg.AwardOptions().ShipmentPolicy, c.logger)
}

func (c *CompositionRoot) CreatePlaceBidCommandHandler() commands.PlaceBidCommandHandler {
	return commands.NewPlaceBidCommandHandler(c.uow(), c.eligibility, c.compliance, c.cfg.Bids.TTL, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateAcceptBidCommandHandler() commands.AcceptBidCommandHandler {
	return commands.NewAcceptBidCommandHandler(c.uow(), c.codes, c.cfg.AwardOptions(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCounterBidCommandHandler() commands.CounterBidCommandHandler {
	return commands.NewCounterBidCommandHandler(c.uow(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRejectBidCommandHandler() commands.RejectBidCommandHandler {
	return commands.NewRejectBidCommandHandler(c.uow(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreatePostNegotiationMessageCommandHandler() commands.PostNegotiationMessageCommandHandler {
	return commands.NewPostNegotiationMessageCommandHandler(c.uow(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateExpireBidsCommandHandler() commands.ExpireBidsCommandHandler {
	return commands.NewExpireBidsCommandHandler(c.uow(), c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetVisibleLoadsQueryHandler() queries.GetVisibleLoadsQueryHandler {
	return queries.NewGetVisibleLoadsQueryHandler(c.readUoW(), c.projector)
}

func (c *CompositionRoot) CreateGetLoadHistoryQueryHandler() queries.GetLoadHistoryQueryHandler {
	return queries.NewGetLoadHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetNegotiationThreadQueryHandler() queries.GetNegotiationThreadQueryHandler {
	// Validate has already parsed the floor.
	floor, _ := c.cfg.AmountFloor()
	return queries.NewGetNegotiationThreadQueryHandler(c.readUoW(), floor)
}

func (c *CompositionRoot) CreateCheckEligibilityQueryHandler() queries.CheckEligibilityQueryHandler {
	return queries.NewCheckEligibilityQueryHandler(c.readUoW(), c.eligibility)
}

func (c *CompositionRoot) CreateCheckComplianceQueryHandler() queries.CheckComplianceQueryHandler {
	return queries.NewCheckComplianceQueryHandler(c.readUoW(), c.compliance)
}

// CreateHTTPHandlers binds every use case to its HTTP route.
func (c *CompositionRoot) CreateHTTPHandlers() httpin.Handlers {
	return httpin.Handlers{
		TransitionLoad:      c.CreateTransitionLoadCommandHandler(),
		PriceLoad:           c.CreatePriceLoadCommandHandler(),
		PostLoad:            c.CreatePostLoadCommandHandler(),
		SetLoadAvailability: c.CreateSetLoadAvailabilityCommandHandler(),
		AdvanceInvoice:      c.CreateAdvanceInvoiceCommandHandler(),
		RepairArtifacts:     c.CreateRepairAwardArtifactsCommandHandler(),
		PlaceBid:            c.CreatePlaceBidCommandHandler(),
		AcceptBid:           c.CreateAcceptBidCommandHandler(),
		CounterBid:          c.CreateCounterBidCommandHandler(),
		RejectBid:           c.CreateRejectBidCommandHandler(),
		PostMessage:         c.CreatePostNegotiationMessageCommandHandler(),

		VisibleLoads:      c.CreateGetVisibleLoadsQueryHandler(),
		LoadHistory:       c.CreateGetLoadHistoryQueryHandler(),
		NegotiationThread: c.CreateGetNegotiationThreadQueryHandler(),
		Eligibility:       c.CreateCheckEligibilityQueryHandler(),
		Compliance:        c.CreateCheckComplianceQueryHandler(),
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.cfg.JobsConfig(),
		c.CreateExpireBidsCommandHandler(),
		c.CreateRepairAwardArtifactsCommandHandler(),
		c.logger,
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncLoadUoWFactory func() commands.LoadUoW

func (f FuncLoadUoWFactory) Create() commands.LoadUoW {
	return f()
}

type FuncReadUoWFactory func() queries.ReadUoW

func (f FuncReadUoWFactory) Create() queries.ReadUoW {
	return f()
}
