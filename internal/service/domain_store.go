package service

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/repository"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

// StoreBackends holds one persistence handle per collection.
type StoreBackends struct {
	Cases    repository.Store[models.Case]
	Plans    repository.Store[models.SupportPlan]
	Alerts   repository.Store[models.EmotionalAlert]
	Students repository.Store[models.Student]
}

// NewStoreBackends builds JSON stores for every collection over one substrate.
func NewStoreBackends(kv repository.KeyValue, prefix string, observer repository.QueryObserver) StoreBackends {
	return StoreBackends{
		Cases:    repository.NewJSONStore[models.Case](kv, prefix, observer),
		Plans:    repository.NewJSONStore[models.SupportPlan](kv, prefix, observer),
		Alerts:   repository.NewJSONStore[models.EmotionalAlert](kv, prefix, observer),
		Students: repository.NewJSONStore[models.Student](kv, prefix, observer),
	}
}

// DomainStore owns cases, support plans, emotional alerts and students.
// Mutations are persisted before they become visible. Their events are queued
// under the store lock and delivered outside it, in commit order.
type DomainStore struct {
	mu       sync.RWMutex
	backends StoreBackends

	// outMu guards outbox and draining. At most one goroutine drains at a time.
	outMu    sync.Mutex
	outbox   []models.Event
	draining bool

	cases    []models.Case
	plans    []models.SupportPlan
	alerts   []models.EmotionalAlert
	students []models.Student

	bus       *EventBus
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewDomainStore loads every collection and returns a ready store.
func NewDomainStore(ctx context.Context, backends StoreBackends, validate *validator.Validate, logger *zap.Logger) (*DomainStore, error) {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validate.RegisterTagNameFunc(jsonFieldName)
	s := &DomainStore{
		backends:  backends,
		bus:       NewEventBus(logger),
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.cases, err = backends.Cases.Load(gctx, models.CollectionCases)
		return err
	})
	g.Go(func() (err error) {
		s.plans, err = backends.Plans.Load(gctx, models.CollectionSupportPlans)
		return err
	})
	g.Go(func() (err error) {
		s.alerts, err = backends.Alerts.Load(gctx, models.CollectionEmotionalAlerts)
		return err
	})
	g.Go(func() (err error) {
		s.students, err = backends.Students.Load(gctx, models.CollectionStudents)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load domain store")
	}

	logger.Info("domain store loaded",
		zap.Int("cases", len(s.cases)),
		zap.Int("support_plans", len(s.plans)),
		zap.Int("emotional_alerts", len(s.alerts)),
		zap.Int("students", len(s.students)))
	return s, nil
}

// Subscribe registers a listener for every mutation across all collections.
func (s *DomainStore) Subscribe(listener Listener) (unsubscribe func()) {
	return s.bus.Subscribe(listener)
}

// enqueue records the event of a committed mutation. Callers hold s.mu for writing.
func (s *DomainStore) enqueue(kind models.EventKind, entity models.Entity, at time.Time) {
	s.outMu.Lock()
	s.outbox = append(s.outbox, models.Event{Kind: kind, EntityID: entity.EntityID(), Entity: entity, OccurredAt: at})
	s.outMu.Unlock()
}

// flush delivers queued events in order. When another call is already draining,
// including an outer call on the same goroutine from inside a listener, the
// queued events are left to that drainer.
func (s *DomainStore) flush() {
	s.outMu.Lock()
	if s.draining {
		s.outMu.Unlock()
		return
	}
	s.draining = true
	for len(s.outbox) > 0 {
		evt := s.outbox[0]
		s.outbox[0] = models.Event{}
		s.outbox = s.outbox[1:]
		s.outMu.Unlock()
		s.bus.Publish(evt)
		s.outMu.Lock()
	}
	s.outbox = nil
	s.draining = false
	s.outMu.Unlock()
}

func (s *DomainStore) validate(v interface{}) error {
	if err := s.validator.Struct(v); err != nil {
		e := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e.Field = verrs[0].Field()
		}
		return e
	}
	return nil
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func persistError(err error, collection string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist "+collection)
}

func indexOf[T models.Entity](items []T, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

// withAppended and withReplaced never alias the input so a failed save leaves state untouched.
func withAppended[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func withReplaced[T any](items []T, idx int, item T) []T {
	out := make([]T, len(items))
	copy(out, items)
	out[idx] = item
	return out
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
