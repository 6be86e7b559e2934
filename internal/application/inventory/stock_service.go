package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stocklot/backend/internal/domain/inventory"
	"go.uber.org/zap"
)

// StockAlertSink receives stock level alerts after adjustments. Implementations
// must be best-effort: the stock service ignores their outcome.
type StockAlertSink interface {
	NotifyStockAlert(ctx context.Context, alert StockAlert)
}

// StockService orchestrates stock adjustments: batch mutation first, then the
// movement append that synchronizes the cached product quantity. Mutations for
// the same product are serialized with a per-product mutex so concurrent
// adjustments cannot interleave their batch and ledger writes.
type StockService struct {
	productRepo  inventory.ProductRepository
	batchRepo    inventory.BatchRepository
	movementRepo inventory.MovementRepository
	alerts       StockAlertSink
	logger       *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo inventory.ProductRepository,
	batchRepo inventory.BatchRepository,
	movementRepo inventory.MovementRepository,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		productRepo:  productRepo,
		batchRepo:    batchRepo,
		movementRepo: movementRepo,
		logger:       logger.Named("stock"),
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// SetAlertSink sets the sink for stock level alerts (optional)
func (s *StockService) SetAlertSink(sink StockAlertSink) {
	s.alerts = sink
}

// productLock returns the mutex serializing mutations for one product.
// Locks are never evicted; the map grows with the number of distinct
// products touched, which is bounded by the catalog size.
func (s *StockService) productLock(productID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}

// Adjust applies a stock delta to a product. A positive delta stores a new
// batch and appends an IN movement; a negative delta consumes open batches
// FIFO and appends an OUT movement for the amount actually consumed, so the
// ledger never claims stock that was not there. A zero delta is a no-op.
// Insufficient stock is not an error; the result carries the shortfall.
func (s *StockService) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.Delta.IsZero() {
		return &AdjustResult{}, nil
	}

	lock := s.productLock(input.ProductID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	var result *AdjustResult
	if input.Delta.IsPositive() {
		result, err = s.receive(ctx, input)
	} else {
		result, err = s.consume(ctx, input)
	}
	if err != nil {
		return nil, err
	}

	if err := s.syncNextExpiry(ctx, input.ProductID); err != nil {
		return nil, err
	}

	s.emitStockAlert(ctx, input.ProductID, product.Name)
	return result, nil
}

// receive stores a new batch and appends the matching IN movement
func (s *StockService) receive(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	batch, err := inventory.NewStockBatch(input.ProductID, input.Delta, input.ExpiryDate, input.PurchaseDate, input.Cost)
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.Add(ctx, batch); err != nil {
		return nil, err
	}
	if _, err := s.movementRepo.Append(ctx, input.ProductID, inventory.MovementIn, input.Delta, input.Note); err != nil {
		// The batch is already stored; no compensation is attempted.
		s.logger.Error("movement append failed after batch insert",
			zap.String("product_id", input.ProductID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &AdjustResult{Requested: input.Delta, Applied: input.Delta}, nil
}

// consume draws the requested amount from open batches FIFO, then appends an
// OUT movement for what was actually consumed. When nothing could be consumed
// no movement is appended; a ledger row for a consumption that moved no stock
// would be a lie.
func (s *StockService) consume(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	requested := input.Delta.Abs()
	consumed, err := s.batchRepo.ConsumeFIFO(ctx, input.ProductID, requested)
	if err != nil {
		return nil, err
	}

	result := &AdjustResult{
		Requested: requested,
		Applied:   consumed,
		Shortfall: requested.Sub(consumed),
	}
	if consumed.IsZero() {
		return result, nil
	}

	if _, err := s.movementRepo.Append(ctx, input.ProductID, inventory.MovementOut, consumed, input.Note); err != nil {
		s.logger.Error("movement append failed after batch consumption",
			zap.String("product_id", input.ProductID.String()),
			zap.String("consumed", consumed.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if result.Shortfall.IsPositive() {
		s.logger.Warn("consumption fell short of requested quantity",
			zap.String("product_id", input.ProductID.String()),
			zap.String("requested", requested.String()),
			zap.String("consumed", consumed.String()),
		)
	}
	return result, nil
}

// Annotate appends an ADJUST movement: an audit note that changes no stock.
// The quantity is clamped to at least 1 like every other movement.
func (s *StockService) Annotate(ctx context.Context, productID uuid.UUID, qty decimal.Decimal, note *string) (*inventory.Movement, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.movementRepo.Append(ctx, productID, inventory.MovementAdjust, qty, note)
}

// ListBatches returns a product's batches in FIFO consumption order
func (s *StockService) ListBatches(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	return s.batchRepo.ListByProduct(ctx, productID)
}

// ListMovements returns a product's movement history, newest first
func (s *StockService) ListMovements(ctx context.Context, productID uuid.UUID) ([]inventory.Movement, error) {
	return s.movementRepo.ListByProduct(ctx, productID)
}

// ExpirySummary aggregates expired and soon-expiring stock per product
func (s *StockService) ExpirySummary(ctx context.Context, daysAhead int) ([]inventory.ExpirySummaryRow, error) {
	return s.batchRepo.ExpirySummary(ctx, daysAhead)
}

// SyncNextExpiry recomputes a product's cached soonest expiry from its open
// batches. Exposed for callers that mutate batches outside Adjust.
func (s *StockService) SyncNextExpiry(ctx context.Context, productID uuid.UUID) error {
	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()
	return s.syncNextExpiry(ctx, productID)
}

func (s *StockService) syncNextExpiry(ctx context.Context, productID uuid.UUID) error {
	next, err := s.batchRepo.NextExpiry(ctx, productID)
	if err != nil {
		return err
	}
	return s.productRepo.SetNextExpiry(ctx, productID, next)
}

// emitStockAlert notifies the alert sink when the product's stock level left
// "ok". Best-effort: failures here never fail the adjustment.
func (s *StockService) emitStockAlert(ctx context.Context, productID uuid.UUID, name string) {
	if s.alerts == nil {
		return
	}
	// Reload to see the quantity the movement append just wrote.
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		s.logger.Debug("skipping stock alert, product reload failed",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return
	}
	status := inventory.StockStatusOf(product.Qty, product.MinStock)
	if status == inventory.StockStatusOK {
		return
	}
	s.alerts.NotifyStockAlert(ctx, StockAlert{
		Name:     name,
		Status:   status,
		Qty:      product.Qty,
		MinStock: product.MinStock,
	})
}
