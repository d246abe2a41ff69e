package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/domain/graph"
	"github.com/ersonp/datacatalog/internal/domain/ports"
)

// ProductIndexer receives completed mutations for the discovery index.
type ProductIndexer interface {
	IndexProduct(ctx context.Context, p *entities.DataProduct) error
	RemoveProduct(ctx context.Context, localID string) error
}

// ReconcilerDeps holds the collaborators of a Reconciler. Audit and Indexer
// are optional.
type ReconcilerDeps struct {
	Registry   ports.Registry
	Translator ports.Translator
	Store      ports.SnapshotStore
	Audit      ports.AuditLog
	Indexer    ProductIndexer
	Logger     *zap.Logger
}

// Reconciler owns the catalog graph and keeps it, the persisted snapshot and
// the remote registry converging. Mutations hold the graph exclusively for
// their whole state machine; reads share it.
//
// There is no rollback: a mutation applied locally stays applied when a later
// remote or persistence step fails, and the error is returned to the caller.
type Reconciler struct {
	mu    sync.RWMutex
	graph *graph.CatalogGraph

	builder    *DeltaBuilder
	registry   ports.Registry
	translator ports.Translator
	store      ports.SnapshotStore
	audit      ports.AuditLog
	indexer    ProductIndexer
	logger     *zap.Logger
}

// NewReconciler creates a Reconciler. Bootstrap must run before serving.
func NewReconciler(builder *DeltaBuilder, deps ReconcilerDeps) *Reconciler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		graph:      graph.New(),
		builder:    builder,
		registry:   deps.Registry,
		translator: deps.Translator,
		store:      deps.Store,
		audit:      deps.Audit,
		indexer:    deps.Indexer,
		logger:     logger.Named("reconciler"),
	}
}

// Identifiers returns the identifiers of the catalog deployment.
func (r *Reconciler) Identifiers() entities.Identifiers {
	return r.builder.Identifiers()
}

// CatalogID is the fixed key of the persisted snapshot.
func (r *Reconciler) CatalogID() string {
	return r.builder.Identifiers().Catalog()
}

// View runs fn with shared access to the graph. fn must not retain g.
func (r *Reconciler) View(fn func(g *graph.CatalogGraph)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.graph)
}

// Snapshot returns a copy of the current graph.
func (r *Reconciler) Snapshot() *graph.CatalogGraph {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Clone()
}

// Bootstrap loads the persisted snapshot into memory. If none exists, the
// base entities are created, pushed to the registry and persisted.
func (r *Reconciler) Bootstrap(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalogID := r.CatalogID()
	snapshot, err := r.store.Load(ctx, catalogID)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	if snapshot != nil {
		r.graph = snapshot
		r.checkBaseEntities()
		r.logger.Info("loaded catalog snapshot",
			zap.String("catalog", catalogID),
			zap.Int("facts", snapshot.Len()))
		return nil
	}

	r.logger.Info("no snapshot found, creating base entities",
		zap.String("catalog", catalogID),
		zap.Strings("entities", entities.BaseEntityNames()))

	base := r.builder.Base()
	g := graph.New()
	base.ApplyTo(g)
	r.graph = g

	if err := r.push(ctx, base); err != nil {
		return fmt.Errorf("pushing base entities: %w", err)
	}
	if err := r.persist(ctx); err != nil {
		return err
	}

	r.record(ctx, entities.ActionBootstrap, "", map[string]any{"facts": g.Len()})
	return nil
}

// Register adds a data product. It fails with entities.ErrAlreadyExists if
// the registry reports the id present; the registry, not the local graph, is
// the authority on existence. Returns the data product identifier.
func (r *Reconciler) Register(ctx context.Context, req *entities.Registration) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dp := r.builder.Identifiers().DataProduct(req.ID)
	log := r.logger.With(zap.String("data_product", dp))

	log.Debug("checking registry for existing entity")
	presence, err := r.registry.Lookup(ctx, dp)
	if err != nil {
		return "", fmt.Errorf("checking data product exists: %w", err)
	}
	if presence != ports.PresenceAbsent {
		log.Debug("registry reports entity present", zap.Stringer("presence", presence))
		return "", fmt.Errorf("%w: %s", entities.ErrAlreadyExists, req.ID)
	}

	delta, err := r.builder.Registration(r.graph, req)
	if err != nil {
		return "", err
	}

	delta.ApplyTo(r.graph)
	log.Debug("applied registration locally", zap.Int("delta_facts", delta.Facts.Len()))

	// The local graph already reflects the registration; finish even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)

	if err := r.push(ctx, delta); err != nil {
		log.Error("registry push failed, local graph ahead of registry", zap.Error(err))
		return "", fmt.Errorf("pushing registration: %w", err)
	}
	if err := r.persist(ctx); err != nil {
		log.Error("persist failed after registry push", zap.Error(err))
		return "", err
	}

	log.Info("registered data product")
	r.record(ctx, entities.ActionRegister, req.ID, map[string]any{
		"title":          req.Name,
		"owner":          req.Owner,
		"glossary_terms": len(req.GlossaryTerms),
	})
	r.index(ctx, productFromGraph(r.graph, r.builder.Identifiers(), dp))

	return dp, nil
}

// Delete removes a data product and its distribution. It fails with
// entities.ErrNotFound unless the registry reports the id present.
func (r *Reconciler) Delete(ctx context.Context, localID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dp := r.builder.Identifiers().DataProduct(localID)
	log := r.logger.With(zap.String("data_product", dp))

	log.Debug("checking registry for entity")
	presence, err := r.registry.Lookup(ctx, dp)
	if err != nil {
		return fmt.Errorf("checking data product exists: %w", err)
	}
	if presence != ports.PresenceFound {
		log.Debug("registry does not report entity", zap.Stringer("presence", presence))
		return fmt.Errorf("%w: %s", entities.ErrNotFound, localID)
	}

	deletion := r.builder.Deletion(localID)
	deletion.ApplyTo(r.graph)
	log.Debug("removed data product locally")

	ctx = context.WithoutCancel(ctx)

	for _, id := range deletion.DeleteIDs {
		if err := r.registry.Delete(ctx, id); err != nil {
			log.Error("registry delete failed, local graph ahead of registry",
				zap.String("entity", id), zap.Error(err))
			return fmt.Errorf("deleting %s from registry: %w", id, err)
		}
	}

	cleanup := r.builder.Cleanup(r.graph)
	if err := r.push(ctx, cleanup); err != nil {
		log.Error("relationship cleanup push failed", zap.Error(err))
		return fmt.Errorf("pushing relationship cleanup: %w", err)
	}
	if err := r.persist(ctx); err != nil {
		log.Error("persist failed after registry update", zap.Error(err))
		return err
	}

	log.Info("deleted data product")
	r.record(ctx, entities.ActionDelete, localID, nil)
	r.unindex(ctx, localID)

	return nil
}

// Persist writes the current graph to the snapshot store. It is called on
// shutdown, unconditionally.
func (r *Reconciler) Persist(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.persist(ctx)
}

func (r *Reconciler) push(ctx context.Context, d *Delta) error {
	if !d.HasPush() {
		return nil
	}
	batch, err := r.translator.Translate(d.Facts, d.Replace)
	if err != nil {
		return fmt.Errorf("translating delta: %w", err)
	}
	if err := r.registry.Upsert(ctx, batch); err != nil {
		return fmt.Errorf("upserting %d entities: %w", len(batch), err)
	}
	r.logger.Debug("pushed delta to registry", zap.Int("entities", len(batch)))
	return nil
}

func (r *Reconciler) persist(ctx context.Context) error {
	info, err := r.store.Save(ctx, r.CatalogID(), r.graph)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	if info != nil {
		r.logger.Debug("persisted snapshot",
			zap.Int("version", info.Version),
			zap.Int("facts", info.FactCount))
	}
	return nil
}

func (r *Reconciler) checkBaseEntities() {
	ids := r.builder.Identifiers()
	for _, e := range entities.BaseEntities {
		f := entities.NewFact(e.ID(ids), entities.RelationType, entities.IRI(e.Class))
		if !r.graph.Has(f) {
			r.logger.Warn("snapshot is missing base entity", zap.String("entity", e.Name))
		}
	}
}

// record appends to the audit log. Failures are logged only.
func (r *Reconciler) record(ctx context.Context, action, localID string, details map[string]any) {
	if r.audit == nil {
		return
	}
	if err := r.audit.LogAction(ctx, action, localID, details); err != nil {
		r.logger.Warn("audit log write failed", zap.String("action", action), zap.Error(err))
	}
}

// index updates the discovery index. Failures are logged only.
func (r *Reconciler) index(ctx context.Context, p *entities.DataProduct) {
	if r.indexer == nil || p == nil {
		return
	}
	if err := r.indexer.IndexProduct(ctx, p); err != nil {
		r.logger.Warn("discovery index update failed", zap.String("data_product", p.ID), zap.Error(err))
	}
}

func (r *Reconciler) unindex(ctx context.Context, localID string) {
	if r.indexer == nil {
		return
	}
	if err := r.indexer.RemoveProduct(ctx, localID); err != nil && !errors.Is(err, entities.ErrNotFound) {
		r.logger.Warn("discovery index removal failed", zap.String("data_product", localID), zap.Error(err))
	}
}
