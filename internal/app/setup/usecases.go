package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/arbitration"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/expiry"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/offer"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/request"
	"github.com/LavaJover/shvark-dish-request-service/internal/usecase/wizard"
)

type UseCases struct {
	RequestStore *request.DefaultStore
	OfferLedger  *offer.DefaultLedger
	Scheduler    *expiry.Scheduler
	Wizard       *wizard.Wizard
	Sessions     *wizard.Registry
	Arbitration  *arbitration.Service
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	negotiation := deps.Config.Negotiation
	repos := deps.Repositories

	policy, err := arbitration.ParseSiblingPolicy(negotiation.SiblingPolicy)
	if err != nil {
		return nil, fmt.Errorf("arbitration: %w", err)
	}

	ledger := offer.NewDefaultLedger(
		repos.OfferRepo,
		repos.RequestRepo,
		repos.HistoryRepo,
		deps.Publisher,
		deps.Metrics,
		deps.Logger.With("component", "offer_ledger"),
		negotiation.OfferTTL,
	)
	scheduler := expiry.NewScheduler(
		repos.OfferRepo,
		ledger,
		negotiation.SweepInterval,
		negotiation.SweepBatchSize,
		deps.Metrics,
		deps.Logger.With("component", "expiry_scheduler"),
	)
	ledger.AttachScheduler(scheduler)

	store := request.NewDefaultStore(repos.RequestRepo, ledger, deps.Metrics, deps.Logger.With("component", "request_store"))

	return &UseCases{
		RequestStore: store,
		OfferLedger:  ledger,
		Scheduler:    scheduler,
		Wizard:       wizard.NewWizard(store, ledger, deps.Metrics, deps.Logger.With("component", "wizard")),
		Sessions:     wizard.NewRegistry(negotiation.WizardSessionTTL),
		Arbitration: arbitration.NewService(
			ledger,
			repos.RequestRepo,
			policy,
			deps.Metrics,
			deps.Logger.With("component", "arbitration"),
		),
	}, nil
}
