package reservation

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StockReserver applies a stock change to one combo. Swapping the
// implementation (read-modify-write, conditional update, lock) does not
// touch the reconciler or the orchestrator.
type StockReserver interface {
	ReserveStock(ctx context.Context, comboID uuid.UUID, qty int) error
	ReleaseStock(ctx context.Context, comboID uuid.UUID, qty int) error
}

// StoreStockReserver decrements through the combo store with a
// read-modify-write. Concurrent writers can race between the read and the write.
type StoreStockReserver struct {
	combos ComboStore
}

func NewStoreStockReserver(combos ComboStore) *StoreStockReserver {
	return &StoreStockReserver{combos: combos}
}

func (r *StoreStockReserver) ReserveStock(ctx context.Context, comboID uuid.UUID, qty int) error {
	combo, err := r.combos.FindByID(ctx, comboID)
	if err != nil {
		return fmt.Errorf("get combo %s: %w", comboID, err)
	}
	if combo == nil {
		return &StockInsufficientError{ComboID: comboID, Requested: qty, Missing: true}
	}
	return r.combos.UpdateStock(ctx, comboID, max(0, combo.Stock()-qty))
}

func (r *StoreStockReserver) ReleaseStock(ctx context.Context, comboID uuid.UUID, qty int) error {
	combo, err := r.combos.FindByID(ctx, comboID)
	if err != nil {
		return fmt.Errorf("get combo %s: %w", comboID, err)
	}
	if combo == nil {
		return fmt.Errorf("release stock: combo %s no longer exists", comboID)
	}
	return r.combos.UpdateStock(ctx, comboID, combo.Stock()+qty)
}

// ConditionalStockStore performs the stock change server side in a single
// statement that refuses to go below zero.
type ConditionalStockStore interface {
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
}

type ConditionalStockReserver struct {
	store ConditionalStockStore
}

func NewConditionalStockReserver(store ConditionalStockStore) *ConditionalStockReserver {
	return &ConditionalStockReserver{store: store}
}

func (r *ConditionalStockReserver) ReserveStock(ctx context.Context, comboID uuid.UUID, qty int) error {
	ok, err := r.store.DecrementStock(ctx, comboID, qty)
	if err != nil {
		return err
	}
	if !ok {
		return &StockInsufficientError{ComboID: comboID, Requested: qty}
	}
	return nil
}

func (r *ConditionalStockReserver) ReleaseStock(ctx context.Context, comboID uuid.UUID, qty int) error {
	return r.store.IncrementStock(ctx, comboID, qty)
}

// Demand is the aggregated quantity wanted per combo.
type Demand map[uuid.UUID]int

// AggregateDemand sums the quantities of lines that reference the same combo.
func AggregateDemand(lines []ComboLine) Demand {
	demand := make(Demand, len(lines))
	for _, l := range lines {
		demand[l.ComboID] += l.Quantity
	}
	return demand
}

// ids returns the combo ids in a stable order.
func (d Demand) ids() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}

// StockReservation records the decrements that were applied so they can be
// given back.
type StockReservation struct {
	Applied Demand
}

func (r *StockReservation) empty() bool {
	return r == nil || len(r.Applied) == 0
}

type InventoryReconciler struct {
	combos   ComboStore
	reserver StockReserver
	log      *zap.Logger
}

func NewInventoryReconciler(combos ComboStore, reserver StockReserver, log *zap.Logger) *InventoryReconciler {
	if reserver == nil {
		reserver = NewStoreStockReserver(combos)
	}
	return &InventoryReconciler{
		combos:   combos,
		reserver: reserver,
		log:      log.With(zap.String("component", "inventory")),
	}
}

// Reconcile checks and decrements stock for the given lines.
func (r *InventoryReconciler) Reconcile(ctx context.Context, lines []ComboLine) (*StockReservation, error) {
	return r.ReconcileDemand(ctx, AggregateDemand(lines))
}

// ReconcileDemand validates every combo first and only then decrements.
// The decrements are independent calls: if one fails the ones already
// applied are given back on a best-effort basis.
func (r *InventoryReconciler) ReconcileDemand(ctx context.Context, demand Demand) (*StockReservation, error) {
	reservation := &StockReservation{Applied: Demand{}}
	if len(demand) == 0 {
		return reservation, nil
	}

	ids := demand.ids()
	for _, id := range ids {
		want := demand[id]
		combo, err := r.combos.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get combo %s: %w", id, err)
		}
		if combo == nil {
			return nil, &StockInsufficientError{ComboID: id, Requested: want, Missing: true}
		}
		if stock := combo.Stock(); stock <= 0 || want > stock {
			return nil, &StockInsufficientError{
				ComboID:   id,
				ComboName: combo.Name,
				Requested: want,
				Available: stock,
			}
		}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, id := range ids {
		id, qty := id, demand[id]
		g.Go(func() error {
			if err := r.reserver.ReserveStock(ctx, id, qty); err != nil {
				return fmt.Errorf("decrement stock of combo %s: %w", id, err)
			}
			mu.Lock()
			reservation.Applied[id] = qty
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.log.Error("Combo stock decrement failed partway",
			zap.Error(err),
			zap.Int("applied", len(reservation.Applied)),
			zap.Int("requested", len(ids)),
		)
		r.Release(ctx, reservation)
		return nil, err
	}

	r.log.Debug("Combo stock reserved", zap.Int("combos", len(ids)))
	return reservation, nil
}

// Release gives back every decrement recorded in res. Failures are logged.
func (r *InventoryReconciler) Release(ctx context.Context, res *StockReservation) {
	if res.empty() {
		return
	}
	r.ReleaseDemand(ctx, res.Applied)
	res.Applied = Demand{}
}

// ReleaseDemand returns quantities to stock, one call per combo.
func (r *InventoryReconciler) ReleaseDemand(ctx context.Context, demand Demand) {
	for _, id := range demand.ids() {
		qty := demand[id]
		if qty <= 0 {
			continue
		}
		if err := r.reserver.ReleaseStock(ctx, id, qty); err != nil {
			r.log.Warn("Failed to give combo stock back",
				zap.Error(err),
				zap.String("combo_id", id.String()),
				zap.Int("quantity", qty),
			)
		}
	}
}
