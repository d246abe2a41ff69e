package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
	"github.com/ersonp/datacatalog/internal/domain/mocks"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

type reconcilerFixture struct {
	ids        entities.Identifiers
	registry   *mocks.Registry
	translator *mocks.Translator
	store      *mocks.SnapshotStore
	audit      *mocks.AuditLog
	index      *mocks.ProductIndex
	reconciler *Reconciler
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()

	f := &reconcilerFixture{
		ids:        testIdentifiers(),
		registry:   mocks.NewRegistry(),
		translator: &mocks.Translator{},
		store:      mocks.NewSnapshotStore(),
		audit:      &mocks.AuditLog{},
		index:      mocks.NewProductIndex(),
	}
	discovery := NewDiscoveryService(&mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2}}, f.index)
	f.reconciler = NewReconciler(NewDeltaBuilder(f.ids, testBrokerEndpoint), ReconcilerDeps{
		Registry:   f.registry,
		Translator: f.translator,
		Store:      f.store,
		Audit:      f.audit,
		Indexer:    discovery,
		Logger:     zaptest.NewLogger(t),
	})
	return f
}

func newBootstrappedFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := newReconcilerFixture(t)
	require.NoError(t, f.reconciler.Bootstrap(context.Background()))
	return f
}

func (f *reconcilerFixture) register(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := f.reconciler.Register(context.Background(), testRegistration(id))
		require.NoError(t, err)
	}
}

func (f *reconcilerFixture) catalogMembers() []entities.Term {
	return f.reconciler.Snapshot().Objects(f.ids.Catalog(), entities.RelationDataProduct)
}

func (f *reconcilerFixture) lastTranslated(t *testing.T) mocks.TranslateCall {
	t.Helper()
	require.NotEmpty(t, f.translator.Calls)
	return f.translator.Calls[len(f.translator.Calls)-1]
}

func TestReconciler_Bootstrap_CreatesBaseEntities(t *testing.T) {
	f := newBootstrappedFixture(t)

	for _, e := range entities.BaseEntities {
		assert.True(t, f.registry.Has(e.ID(f.ids)), e.Name)
	}
	stored := f.store.Stored(f.ids.Catalog())
	require.NotNil(t, stored)
	assert.True(t, stored.Equal(f.reconciler.Snapshot()))
	assert.Equal(t, []string{entities.ActionBootstrap}, f.audit.Actions())
}

func TestReconciler_Bootstrap_LoadsSnapshot(t *testing.T) {
	f := newReconcilerFixture(t)
	existing := graph.FromFacts(
		entities.NewFact(f.ids.Catalog(), entities.RelationType, entities.IRI(entities.ClassCatalog)),
		entities.NewFact(f.ids.Catalog(), entities.RelationDataProduct, entities.IRI(f.ids.DataProduct("air"))),
	)
	f.store.Graphs[f.ids.Catalog()] = existing

	require.NoError(t, f.reconciler.Bootstrap(context.Background()))

	assert.True(t, existing.Equal(f.reconciler.Snapshot()))
	assert.Empty(t, f.registry.Upserts)
	assert.Zero(t, f.store.SaveCallCount)
}

func TestReconciler_Bootstrap_Errors(t *testing.T) {
	t.Run("snapshot store unavailable", func(t *testing.T) {
		f := newReconcilerFixture(t)
		f.store.LoadErr = fmt.Errorf("%w: disk gone", entities.ErrPersistenceUnavailable)

		err := f.reconciler.Bootstrap(context.Background())

		require.ErrorIs(t, err, entities.ErrPersistenceUnavailable)
	})

	t.Run("registry unavailable", func(t *testing.T) {
		f := newReconcilerFixture(t)
		f.registry.UpsertErr = fmt.Errorf("%w: connection refused", entities.ErrRegistryUnavailable)

		err := f.reconciler.Bootstrap(context.Background())

		require.ErrorIs(t, err, entities.ErrRegistryUnavailable)
		assert.Zero(t, f.store.SaveCallCount)
	})
}

func TestReconciler_Register(t *testing.T) {
	f := newBootstrappedFixture(t)
	dp := f.ids.DataProduct("air")

	iri, err := f.reconciler.Register(context.Background(), testRegistration("air"))

	require.NoError(t, err)
	assert.Equal(t, dp, iri)

	g := f.reconciler.Snapshot()
	assert.True(t, g.Has(entities.NewFact(dp, entities.RelationType, entities.IRI(entities.ClassDataProduct))))
	assert.True(t, g.Has(entities.NewFact(f.ids.Catalog(), entities.RelationDataProduct, entities.IRI(dp))))
	assert.True(t, g.Has(entities.NewFact(f.ids.ContextBroker(), entities.RelationServesDataProduct, entities.IRI(dp))))

	assert.True(t, f.registry.Has(dp))
	assert.True(t, f.registry.Has(f.ids.Distribution("air")))
	assert.True(t, f.store.Stored(f.ids.Catalog()).Equal(g))
	assert.True(t, f.index.Has("air"))
	assert.Equal(t, []string{entities.ActionBootstrap, entities.ActionRegister}, f.audit.Actions())
}

func TestReconciler_Register_PushesFullMembership(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "a", "b")

	call := f.lastTranslated(t)

	assert.Equal(t, entities.ReplaceRelations, call.Replace)
	want := []entities.Term{entities.IRI(f.ids.DataProduct("a")), entities.IRI(f.ids.DataProduct("b"))}
	assert.Equal(t, want, call.Graph.Objects(f.ids.Catalog(), entities.RelationDataProduct))
	assert.Equal(t, want, call.Graph.Objects(f.ids.ContextBroker(), entities.RelationServesDataProduct))
}

func TestReconciler_Register_Conflict(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")
	before := f.reconciler.Snapshot()
	upserts := len(f.registry.Upserts)

	_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

	require.ErrorIs(t, err, entities.ErrAlreadyExists)
	assert.True(t, before.Equal(f.reconciler.Snapshot()))
	assert.Len(t, f.registry.Upserts, upserts)
	assert.Len(t, f.catalogMembers(), 1)
}

func TestReconciler_Register_RegistryAuthoritative(t *testing.T) {
	t.Run("registry has id the local graph lacks", func(t *testing.T) {
		f := newBootstrappedFixture(t)
		f.registry.Entities[f.ids.DataProduct("air")] = mocks.Entity{ID: f.ids.DataProduct("air")}

		_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

		require.ErrorIs(t, err, entities.ErrAlreadyExists)
		assert.Empty(t, f.catalogMembers())
	})

	t.Run("unexpected registry status is treated as present", func(t *testing.T) {
		f := newBootstrappedFixture(t)
		unknown := ports.PresenceUnknown
		f.registry.Presence = &unknown

		_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

		require.ErrorIs(t, err, entities.ErrAlreadyExists)
	})

	t.Run("transport failure", func(t *testing.T) {
		f := newBootstrappedFixture(t)
		f.registry.LookupErr = fmt.Errorf("%w: timeout", entities.ErrRegistryUnavailable)

		_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

		require.ErrorIs(t, err, entities.ErrRegistryUnavailable)
		assert.Empty(t, f.catalogMembers())
	})
}

func TestReconciler_Register_Invalid(t *testing.T) {
	f := newBootstrappedFixture(t)

	_, err := f.reconciler.Register(context.Background(), &entities.Registration{ID: "air"})

	require.ErrorIs(t, err, entities.ErrInvalidRequest)
	assert.Empty(t, f.registry.Lookups)
}

func TestReconciler_Register_RejectsTermsSnapshotCannotHold(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *entities.Registration)
	}{
		{name: "space in glossary term", mutate: func(r *entities.Registration) { r.GlossaryTerms = []string{"urn:term:a b"} }},
		{name: "angle bracket in mapping", mutate: func(r *entities.Registration) { r.Mappings = []string{"https://example.org/map<1>"} }},
		{name: "quote in owner uri", mutate: func(r *entities.Registration) { r.Owner = `urn:user:"bob"` }},
		{name: "invalid utf-8 description", mutate: func(r *entities.Registration) { r.Description = "bad\xffutf8" }},
		{name: "invalid utf-8 keyword", mutate: func(r *entities.Registration) { r.Keywords = []string{"\xfe"} }},
		{name: "padded id", mutate: func(r *entities.Registration) { r.ID = " air" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBootstrappedFixture(t)
			before := f.reconciler.Snapshot()
			req := testRegistration("air")
			tt.mutate(req)

			_, err := f.reconciler.Register(context.Background(), req)

			require.ErrorIs(t, err, entities.ErrInvalidRequest)
			assert.Empty(t, f.registry.Lookups)
			assert.True(t, before.Equal(f.reconciler.Snapshot()))
		})
	}
}

func TestReconciler_Register_SnapshotReloadsAfterRestart(t *testing.T) {
	f := newBootstrappedFixture(t)
	req := testRegistration("air quality/ü")
	req.Owner = "https://example.org/people/alice"
	req.Description = "Line one\nwith \"quotes\" and \\ backslash"
	req.Mappings = []string{"https://example.org/mappings/air.ttl#TriplesMap1"}
	_, err := f.reconciler.Register(context.Background(), req)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.store.Stored(f.reconciler.CatalogID()).WriteNQuads(&buf))
	reloaded, err := graph.ReadNQuads(&buf)
	require.NoError(t, err)
	require.True(t, reloaded.Equal(f.reconciler.Snapshot()))

	store := mocks.NewSnapshotStore()
	store.Graphs[f.reconciler.CatalogID()] = reloaded
	restarted := NewReconciler(NewDeltaBuilder(f.ids, testBrokerEndpoint), ReconcilerDeps{
		Registry:   f.registry,
		Translator: &mocks.Translator{},
		Store:      store,
		Logger:     zaptest.NewLogger(t),
	})
	require.NoError(t, restarted.Bootstrap(context.Background()))

	p, err := NewCatalogService(restarted).Get(context.Background(), "air quality/ü")
	require.NoError(t, err)
	assert.Equal(t, req.Description, p.Description)
	assert.Equal(t, req.Mappings, p.Mappings)
	assert.Contains(t, p.Publishers, "https://example.org/people/alice")
}

func TestReconciler_Register_PushFailureKeepsLocalChange(t *testing.T) {
	f := newBootstrappedFixture(t)
	saves := f.store.SaveCallCount
	f.registry.UpsertErr = fmt.Errorf("%w: 503", entities.ErrRegistryUnavailable)

	_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

	require.ErrorIs(t, err, entities.ErrRegistryUnavailable)
	assert.Equal(t, []entities.Term{entities.IRI(f.ids.DataProduct("air"))}, f.catalogMembers())
	assert.Equal(t, saves, f.store.SaveCallCount)
	assert.False(t, f.index.Has("air"))
}

func TestReconciler_Register_PersistFailure(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.store.SaveErr = fmt.Errorf("%w: read-only", entities.ErrPersistenceUnavailable)

	_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

	require.ErrorIs(t, err, entities.ErrPersistenceUnavailable)
	assert.True(t, f.registry.Has(f.ids.DataProduct("air")))
	assert.Len(t, f.catalogMembers(), 1)
}

func TestReconciler_Register_SideEffectFailuresIgnored(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.audit.Err = errors.New("audit down")
	f.index.Err = errors.New("index down")

	_, err := f.reconciler.Register(context.Background(), testRegistration("air"))

	require.NoError(t, err)
}

// cancelingRegistry cancels the caller's context once the existence check
// has passed, and fails pushes made with a canceled context.
type cancelingRegistry struct {
	*mocks.Registry
	cancel context.CancelFunc
}

func (r *cancelingRegistry) Lookup(ctx context.Context, id string) (ports.Presence, error) {
	p, err := r.Registry.Lookup(ctx, id)
	r.cancel()
	return p, err
}

func (r *cancelingRegistry) Upsert(ctx context.Context, batch []ports.RegistryEntity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.Registry.Upsert(ctx, batch)
}

func TestReconciler_Register_CompletesAfterCallerCancels(t *testing.T) {
	f := newBootstrappedFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := &cancelingRegistry{Registry: f.registry, cancel: cancel}
	f.reconciler.registry = registry

	_, err := f.reconciler.Register(ctx, testRegistration("air"))

	require.NoError(t, err)
	assert.True(t, f.registry.Has(f.ids.DataProduct("air")))
	assert.True(t, f.store.Stored(f.ids.Catalog()).Equal(f.reconciler.Snapshot()))
}

func TestReconciler_Delete(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air", "water")
	dp := f.ids.DataProduct("air")
	dist := f.ids.Distribution("air")

	err := f.reconciler.Delete(context.Background(), "air")
	require.NoError(t, err)

	g := f.reconciler.Snapshot()
	assert.Empty(t, g.Objects(dp, graph.AnyRelation))
	assert.Empty(t, g.Objects(dist, graph.AnyRelation))
	for fact := range g.Query(graph.AnySubject, graph.AnyRelation, entities.IRI(dp)) {
		t.Errorf("dangling reference: %s", fact)
	}
	assert.Equal(t, []entities.Term{entities.IRI(f.ids.DataProduct("water"))}, f.catalogMembers())

	assert.Equal(t, []string{dp, dist}, f.registry.Deletes)
	assert.False(t, f.registry.Has(dp))
	assert.False(t, f.registry.Has(dist))

	call := f.lastTranslated(t)
	want := []entities.Term{entities.IRI(f.ids.DataProduct("water"))}
	assert.Equal(t, want, call.Graph.Objects(f.ids.Catalog(), entities.RelationDataProduct))
	assert.Equal(t, want, call.Graph.Objects(f.ids.ContextBroker(), entities.RelationServesDataProduct))

	assert.True(t, f.store.Stored(f.ids.Catalog()).Equal(g))
	assert.False(t, f.index.Has("air"))
	assert.True(t, f.index.Has("water"))
}

func TestReconciler_Delete_LastMemberPushesNull(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")

	require.NoError(t, f.reconciler.Delete(context.Background(), "air"))

	call := f.lastTranslated(t)
	assert.Equal(t, []entities.Term{entities.Null}, call.Graph.Objects(f.ids.Catalog(), entities.RelationDataProduct))
	assert.Equal(t, []entities.Term{entities.Null}, call.Graph.Objects(f.ids.ContextBroker(), entities.RelationServesDataProduct))

	g := f.reconciler.Snapshot()
	for fact := range g.Query(graph.AnySubject, graph.AnyRelation, entities.Null) {
		t.Errorf("null sentinel stored locally: %s", fact)
	}

	f.register(t, "water")
	call = f.lastTranslated(t)
	assert.Equal(t, []entities.Term{entities.IRI(f.ids.DataProduct("water"))},
		call.Graph.Objects(f.ids.Catalog(), entities.RelationDataProduct))
}

func TestReconciler_Delete_NotFound(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")
	before := f.reconciler.Snapshot()

	err := f.reconciler.Delete(context.Background(), "missing")

	require.ErrorIs(t, err, entities.ErrNotFound)
	assert.True(t, before.Equal(f.reconciler.Snapshot()))
	assert.Empty(t, f.registry.Deletes)
}

func TestReconciler_Delete_RegistryAuthoritative(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")
	delete(f.registry.Entities, f.ids.DataProduct("air"))
	before := f.reconciler.Snapshot()

	err := f.reconciler.Delete(context.Background(), "air")

	require.ErrorIs(t, err, entities.ErrNotFound)
	assert.True(t, before.Equal(f.reconciler.Snapshot()))
}

func TestReconciler_Delete_RemoteFailureKeepsLocalRemoval(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")
	f.registry.DeleteErr = fmt.Errorf("%w: 500", entities.ErrRegistryUnavailable)

	err := f.reconciler.Delete(context.Background(), "air")

	require.ErrorIs(t, err, entities.ErrRegistryUnavailable)
	assert.Empty(t, f.catalogMembers())
}

func TestReconciler_Persist(t *testing.T) {
	f := newBootstrappedFixture(t)
	saves := f.store.SaveCallCount

	require.NoError(t, f.reconciler.Persist(context.Background()))

	assert.Equal(t, saves+1, f.store.SaveCallCount)
}

func TestReconciler_ConcurrentRegistrations(t *testing.T) {
	f := newBootstrappedFixture(t)
	const n = 16

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reconciler.Register(context.Background(), testRegistration(fmt.Sprintf("dp-%02d", i)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, f.catalogMembers(), n)

	call := f.lastTranslated(t)
	assert.Len(t, call.Graph.Objects(f.ids.Catalog(), entities.RelationDataProduct), n)
}
