package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/store"
)

// FortService ties the store, the snapshot cache and the mutation flows
// together. Both the web handlers and the CLI go through it.
type FortService struct {
	store   store.FortStore
	cache   *catalog.SnapshotCache
	guard   *flow.Guard
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// NewFortService creates a new fort service.
func NewFortService(st store.FortStore, cache *catalog.SnapshotCache, logger *zap.Logger) *FortService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FortService{
		store:  st,
		cache:  cache,
		guard:  flow.NewGuard(),
		logger: logger,
	}
}

// SetMetrics sets the recorder used for flow outcomes.
func (s *FortService) SetMetrics(m *metrics.Recorder) {
	s.metrics = m
}

// Guard returns the in-flight registry shared by all flows of this service.
func (s *FortService) Guard() *flow.Guard {
	return s.guard
}

// List builds a presenter over the current snapshot. Fetch failures have
// already been absorbed by the cache, so this never fails.
func (s *FortService) List(ctx context.Context, c model.Criteria) *catalog.Presenter {
	return catalog.NewPresenter(s.cache.Get(ctx), c)
}

// Refresh drops the cached snapshot and refetches it.
func (s *FortService) Refresh(ctx context.Context) []*model.Fort {
	return s.cache.Refresh(ctx)
}

// Get reads one fort straight from the store.
func (s *FortService) Get(ctx context.Context, id string) (*model.Fort, error) {
	return s.store.Get(ctx, id)
}

// CreateResult is what a create submission produced.
type CreateResult struct {
	Fort    *model.Fort
	Outcome flow.Outcome
}

// Create validates the form and, if it is valid, runs the create flow.
//
// Invalid input is returned as a ValidationErrors before any flow starts and
// without touching the store. A duplicate submission of the same token
// returns flow.ErrInFlight. A store failure is not an error here: it is a
// Failed outcome carrying the destructive notification.
func (s *FortService) Create(ctx context.Context, in model.FormInput, token string) (*CreateResult, error) {
	draft, err := model.NewDraft(in)
	if err != nil {
		s.metrics.ObserveFlow(flow.Create.String(), "invalid")
		return nil, err
	}

	res := &CreateResult{}
	f := flow.NewCreateFlow(s.cache.Invalidate).WithGuard(s.guard, token)
	out, err := f.Submit(ctx, func(ctx context.Context) error {
		created, err := s.store.Insert(ctx, draft)
		if err != nil {
			return err
		}
		res.Fort = created
		return nil
	})
	if err != nil {
		s.metrics.ObserveFlow(flow.Create.String(), "rejected")
		return nil, err
	}
	res.Outcome = out

	s.metrics.ObserveFlow(flow.Create.String(), out.State.String())
	if out.State == flow.Failed {
		s.logger.Error("error adding fort", zap.String("name", draft.Name), zap.Error(out.Err))
	} else {
		s.logger.Info("fort added", zap.String("id", res.Fort.ID), zap.String("name", res.Fort.Name))
	}
	return res, nil
}

// Delete runs the delete flow for id. confirmed reflects the user's answer
// to the confirmation gate; an unconfirmed delete returns
// flow.ErrNotConfirmed and the store is not called.
func (s *FortService) Delete(ctx context.Context, id string, confirmed bool) (flow.Outcome, error) {
	f := flow.NewDeleteFlow(s.cache.Invalidate).WithGuard(s.guard, flow.DeleteKey(id))
	if confirmed {
		if err := f.RequestConfirmation(); err != nil {
			return flow.Outcome{}, err
		}
	}

	out, err := f.Submit(ctx, func(ctx context.Context) error {
		return s.store.Delete(ctx, id)
	})
	if err != nil {
		s.metrics.ObserveFlow(flow.Delete.String(), "rejected")
		return flow.Outcome{}, err
	}

	s.metrics.ObserveFlow(flow.Delete.String(), out.State.String())
	if out.State == flow.Failed {
		s.logger.Error("error deleting fort", zap.String("id", id), zap.Error(out.Err))
	} else {
		s.logger.Info("fort deleted", zap.String("id", id))
	}
	return out, nil
}

// Options lists the values each selector offers.
type Options struct {
	Types            []model.FortType       `json:"types"`
	Regions          []model.Region         `json:"regions"`
	FilterRegions    []model.Region         `json:"filter_regions"`
	TrekDifficulties []model.TrekDifficulty `json:"trek_difficulties"`
	AllLabel         string                 `json:"all_label"`
}

// SelectOptions returns the enumerations in display order.
func SelectOptions() Options {
	return Options{
		Types:            model.AllFortTypes(),
		Regions:          model.AllRegions(),
		FilterRegions:    model.FilterRegions(),
		TrekDifficulties: model.AllTrekDifficulties(),
		AllLabel:         model.FilterAllLabel,
	}
}
