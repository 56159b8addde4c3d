package pos

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"
)

// bloomFPR keeps false positives rare enough that almost every unknown scan
// is rejected without touching the loaded product list.
const bloomFPR = 0.001

// BarcodeIndex is a probabilistic prefilter over the catalog's barcodes.
// A scanned code that the filter rejects is definitely not in the catalog and
// can be dropped immediately; a false positive just falls through to the
// normal "no matching product" path. Rebuilt whenever the catalog changes.
type BarcodeIndex struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewBarcodeIndex builds an index over the given barcodes.
func NewBarcodeIndex(codes []string) *BarcodeIndex {
	idx := &BarcodeIndex{}
	idx.Reload(codes)
	return idx
}

// Reload replaces the filter contents with a fresh set of barcodes.
func (x *BarcodeIndex) Reload(codes []string) {
	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	f := bloom.NewWithEstimates(n, bloomFPR)
	for _, c := range codes {
		f.AddString(c)
	}

	x.mu.Lock()
	x.filter = f
	x.mu.Unlock()
}

// MayContain reports whether code could be a catalog barcode. A nil or
// not-yet-loaded index never rejects, so the prefilter is strictly optional.
func (x *BarcodeIndex) MayContain(code string) bool {
	if x == nil {
		return true
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.filter == nil {
		return true
	}
	return x.filter.TestString(code)
}

// CatalogSource lists every barcode in the catalog.
type CatalogSource interface {
	AllBarcodes(ctx context.Context) ([]string, error)
}

// Refresh rebuilds the filter from the catalog. On error the previous filter
// keeps serving; a filter that went stale is still better than one that
// rejects everything.
func (x *BarcodeIndex) Refresh(ctx context.Context, src CatalogSource) error {
	codes, err := src.AllBarcodes(ctx)
	if err != nil {
		return err
	}
	x.Reload(codes)
	return nil
}

// CatalogInvalidator couples cache invalidation with the barcode prefilter:
// dropping the products prefix means the catalog changed, so the filter must
// learn any new barcodes or scans for them would be rejected until restart.
type CatalogInvalidator struct {
	lg    *zap.Logger
	cache Invalidator
	index *BarcodeIndex
	src   CatalogSource
}

// NewCatalogInvalidator wraps cache. index and src may be nil together to
// disable the rebuild.
func NewCatalogInvalidator(lg *zap.Logger, cache Invalidator, index *BarcodeIndex, src CatalogSource) *CatalogInvalidator {
	return &CatalogInvalidator{lg: lg, cache: cache, index: index, src: src}
}

// Invalidate forwards to the wrapped cache and, for the products prefix,
// rebuilds the barcode index in place.
func (c *CatalogInvalidator) Invalidate(prefix string) {
	c.cache.Invalidate(prefix)
	if prefix != "products" || c.index == nil || c.src == nil {
		return
	}
	if err := c.index.Refresh(context.Background(), c.src); err != nil {
		c.lg.Warn("Barcode prefilter refresh failed", zap.Error(err))
	}
}
