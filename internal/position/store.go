package position

import (
	"cmp"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-execution/pkg/errors"
)

// Store owns every position created during a run. Besides the insertion
// ordered list and the id index it keeps a working set of open positions.
// Closed positions leave the working set lazily, on the next sweep, so that
// closing a position costs O(1) instead of a search through the open list.
type Store struct {
	positions []*Position
	byID      map[uint64]*Position
	open      []*Position
	// pending counts closes that have not been swept out of the working set yet.
	pending int
	// iterating is the depth of ForEachOpen walks in progress.
	iterating int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		positions: nil,
		byID:      make(map[uint64]*Position),
		open:      nil,
		pending:   0,
		iterating: 0,
	}
}

// Add appends the position and links it into the working set if it is open.
func (s *Store) Add(p *Position) error {
	if p == nil {
		return errors.New(errors.ErrCodeNilPosition, "cannot add a nil position")
	}

	if _, ok := s.byID[p.ID]; ok {
		return errors.Newf(errors.ErrCodeDuplicatePositionId, "position id %d already exists", p.ID)
	}

	s.positions = append(s.positions, p)
	s.byID[p.ID] = p

	if p.IsOpen() {
		s.open = append(s.open, p)
	}

	return nil
}

// Close marks a position for removal from the working set at the next sweep.
// The position itself must already be closed by the caller.
func (s *Store) Close(p *Position) {
	if p != nil && p.IsClosed() {
		s.pending++
	}
}

// ForEachOpen walks the working set. For every enabled open position
// accepted by predicate (nil accepts all) handler is invoked; it returns
// false to stop the walk early. The first handler error stops the walk and
// is returned. Handlers may close, add or count positions, and may start a
// nested walk. Closed entries are unlinked once the outermost walk returns.
func (s *Store) ForEachOpen(predicate func(*Position) bool, handler func(*Position) (bool, error)) error {
	s.iterating++

	defer func() {
		s.iterating--
		if s.iterating == 0 {
			s.compact()
		}
	}()

	// positions added by handler sit after n
	n := len(s.open)

	for i := 0; i < n; i++ {
		p := s.open[i]
		if p.IsClosed() || !p.IsEnabled() {
			continue
		}

		if predicate != nil && !predicate(p) {
			continue
		}

		more, err := handler(p)
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}

	return nil
}

// compact unlinks closed positions from the working set. It must not run
// while a walk holds indexes into s.open.
func (s *Store) compact() {
	s.open = slices.DeleteFunc(s.open, func(p *Position) bool { return p.IsClosed() })
	s.pending = 0
}

func (s *Store) sweep() {
	if s.pending == 0 || s.iterating > 0 {
		return
	}

	s.compact()
}

// OpenCount returns the number of enabled open positions.
func (s *Store) OpenCount() int {
	s.sweep()

	count := 0

	for _, p := range s.open {
		if p.IsOpen() && p.IsEnabled() {
			count++
		}
	}

	return count
}

// OpenPositions returns the enabled open positions in entry order.
func (s *Store) OpenPositions() []*Position {
	s.sweep()

	open := make([]*Position, 0, len(s.open))

	for _, p := range s.open {
		if p.IsOpen() && p.IsEnabled() {
			open = append(open, p)
		}
	}

	return open
}

// ForEach calls handler for every enabled position, open or closed, in store
// order, until handler returns false.
func (s *Store) ForEach(handler func(*Position) bool) {
	for _, p := range s.positions {
		if !p.IsEnabled() {
			continue
		}

		if !handler(p) {
			return
		}
	}
}

// ForEachClosed is ForEach restricted to closed positions.
func (s *Store) ForEachClosed(handler func(*Position) bool) {
	s.ForEach(func(p *Position) bool {
		if p.IsOpen() {
			return true
		}

		return handler(p)
	})
}

// Positions returns all positions in store order.
func (s *Store) Positions() []*Position {
	return slices.Clone(s.positions)
}

// GetByID looks up a position by id.
func (s *Store) GetByID(id uint64) (*Position, bool) {
	p, ok := s.byID[id]

	return p, ok
}

// Count returns the number of positions, enabled or not.
func (s *Store) Count() int {
	return len(s.positions)
}

// EnabledCount returns the number of enabled positions.
func (s *Store) EnabledCount() int {
	count := 0

	for _, p := range s.positions {
		if p.IsEnabled() {
			count++
		}
	}

	return count
}

// LastPosition returns the most recently added enabled position.
func (s *Store) LastPosition() optional.Option[*Position] {
	for i := len(s.positions) - 1; i >= 0; i-- {
		if s.positions[i].IsEnabled() {
			return optional.Some(s.positions[i])
		}
	}

	return optional.None[*Position]()
}

// LastOpenPosition returns the most recently opened enabled position that is still open.
func (s *Store) LastOpenPosition() optional.Option[*Position] {
	for i := len(s.open) - 1; i >= 0; i-- {
		p := s.open[i]
		if p.IsOpen() && p.IsEnabled() {
			return optional.Some(p)
		}
	}

	return optional.None[*Position]()
}

func (s *Store) EnableAll() {
	for _, p := range s.positions {
		p.Enable()
	}
}

func (s *Store) DisableAll() {
	for _, p := range s.positions {
		p.Disable()
	}
}

// Append moves every position of other into s and leaves other empty.
// Nothing is moved if an id would collide. Appending nil or s itself is a no-op.
func (s *Store) Append(other *Store) error {
	if other == nil || other == s {
		return nil
	}

	if err := s.AppendCopy(other); err != nil {
		return err
	}

	other.positions = nil
	other.byID = make(map[uint64]*Position)
	other.open = nil
	other.pending = 0

	return nil
}

// AppendCopy adds every position of other to s and leaves other untouched.
// Both stores then share the position values.
func (s *Store) AppendCopy(other *Store) error {
	if other == nil || other == s {
		return nil
	}

	for _, p := range other.positions {
		if _, ok := s.byID[p.ID]; ok {
			return errors.Newf(errors.ErrCodeDuplicatePositionId, "position id %d already exists", p.ID)
		}
	}

	for _, p := range other.positions {
		s.positions = append(s.positions, p)
		s.byID[p.ID] = p

		if p.IsOpen() {
			s.open = append(s.open, p)
		}
	}

	return nil
}

// SortByEntryTime stable-sorts all positions by entry time.
func (s *Store) SortByEntryTime(ascending bool) {
	s.sortBy(ascending, func(a, b *Position) int {
		return a.Entry.Time.Compare(b.Entry.Time)
	})
}

// SortByExitTime stable-sorts all positions by exit time. Open positions
// compare as later than any closed position.
func (s *Store) SortByExitTime(ascending bool) {
	s.sortBy(ascending, func(a, b *Position) int {
		switch {
		case a.IsOpen() && b.IsOpen():
			return 0
		case a.IsOpen():
			return 1
		case b.IsOpen():
			return -1
		}

		return a.exit.Unwrap().Time.Compare(b.exit.Unwrap().Time)
	})
}

// SortByGain stable-sorts all positions by realized gain.
func (s *Store) SortByGain(ascending bool) {
	s.sortBy(ascending, func(a, b *Position) int {
		return cmp.Compare(a.Gain(), b.Gain())
	})
}

func (s *Store) sortBy(ascending bool, compare func(a, b *Position) int) {
	if !ascending {
		asc := compare
		compare = func(a, b *Position) int { return asc(b, a) }
	}

	slices.SortStableFunc(s.positions, compare)
}
