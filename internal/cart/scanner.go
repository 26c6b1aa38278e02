package cart

import (
	"time"

	"github.com/talkincode/fairpos/internal/catalog"
	"github.com/talkincode/fairpos/internal/domain"
	"github.com/talkincode/fairpos/internal/sound"
)

// Scanner turns raw barcode input into cart adds. A scan resolving to
// the same product within the debounce window of the previous successful
// scan is scanner re-fire noise and is ignored.
type Scanner struct {
	catalog *catalog.Catalog
	cart    *Cart
	sounds  *sound.Bus
	window  time.Duration
	now     func() time.Time

	lastID   string
	lastScan time.Time
}

func NewScanner(cat *catalog.Catalog, c *Cart, sounds *sound.Bus, window time.Duration) *Scanner {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Scanner{
		catalog: cat,
		cart:    c,
		sounds:  sounds,
		window:  window,
		now:     time.Now,
	}
}

// Scan resolves code against the catalog and adds one unit to the cart.
// added is false when the scan was debounced; an unknown code plays the
// error cue and returns NotFoundError.
func (s *Scanner) Scan(code string) (product domain.Product, added bool, err error) {
	product, ok := s.catalog.FindByBarcode(code)
	if !ok {
		s.sounds.Play(domain.SoundError)
		return domain.Product{}, false, &domain.NotFoundError{
			Kind: "barcode", ID: catalog.NormalizeBarcode(code),
		}
	}
	now := s.now()
	if product.ID == s.lastID && now.Sub(s.lastScan) < s.window {
		return product, false, nil
	}
	if err := s.cart.Add(product, 1); err != nil {
		return product, false, err
	}
	s.lastID = product.ID
	s.lastScan = now
	return product, true, nil
}
