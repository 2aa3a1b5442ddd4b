// Package pending manages the owner's list of found reports awaiting
// confirmation.
//
// A ViewModel loads the pending reports, enriches each one with live item
// details and prunes entries as they are confirmed. All state changes happen
// under one mutex, so each response is applied atomically. Responses that
// arrive after Close are dropped.
package pending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/lostfound/internal/model"
)

// DefaultConcurrency bounds the parallel item fetches made by Load.
const DefaultConcurrency = 8

// Errors returned by the view-model.
var (
	ErrClosed       = errors.New("pending list closed")
	ErrInFlight     = errors.New("confirmation already in progress")
	ErrUnknownEntry = errors.New("no such pending confirmation")
)

// Source is the slice of the API client the view-model needs.
type Source interface {
	PendingConfirmations(ctx context.Context) ([]model.Confirmation, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ConfirmFound(ctx context.Context, id int64) error
}

// State is the load state of the list.
type State int

// List states.
const (
	Loading State = iota
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EntryState tracks a confirm action on one entry.
type EntryState int

// Entry states.
const (
	Idle EntryState = iota
	Confirming
)

func (s EntryState) String() string {
	if s == Confirming {
		return "confirming"
	}
	return "idle"
}

// ItemData is the item detail shown next to a pending report. Live is false
// when the item could not be fetched and only the report's title snapshot is
// available.
type ItemData struct {
	Name     string
	Category string
	Location string
	ImageURL string
	Reward   *float64
	Status   model.Status
	Live     bool
}

// Entry is one pending report with its item detail.
type Entry struct {
	model.Confirmation
	Item               ItemData
	CreatedAtFormatted string
}

// Option configures a ViewModel.
type Option func(*ViewModel)

// WithConcurrency sets how many item fetches Load runs at once.
func WithConcurrency(n int) Option {
	return func(vm *ViewModel) {
		if n > 0 {
			vm.limit = n
		}
	}
}

// WithClock sets the clock used for relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(vm *ViewModel) { vm.now = now }
}

// ViewModel holds the pending confirmation list.
type ViewModel struct {
	src   Source
	limit int
	now   func() time.Time

	mu         sync.Mutex
	state      State
	err        error
	entries    []Entry
	confirming map[int64]bool
	pruned     map[int64]bool // confirmed since the current load began
	gen        uint64
	closed     bool
}

// New returns a view-model in the Loading state.
func New(src Source, opts ...Option) *ViewModel {
	vm := &ViewModel{
		src:        src,
		limit:      DefaultConcurrency,
		now:        time.Now,
		state:      Loading,
		confirming: make(map[int64]bool),
		pruned:     make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Load fetches the pending reports and their item details. A failed item
// fetch never fails the load; the entry keeps its title snapshot instead.
// When a newer Load or Close supersedes this call its result is dropped.
// Reports confirmed while the load was in flight stay removed.
func (vm *ViewModel) Load(ctx context.Context) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrClosed
	}
	vm.gen++
	gen := vm.gen
	vm.state = Loading
	vm.err = nil
	clear(vm.pruned)
	vm.mu.Unlock()

	confs, err := vm.src.PendingConfirmations(ctx)
	if err != nil {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if vm.closed {
			return ErrClosed
		}
		if gen == vm.gen {
			vm.state = Failed
			vm.err = err
			vm.entries = nil
		}
		return err
	}

	entries := vm.enrich(ctx, confs)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return ErrClosed
	}
	if gen != vm.gen {
		return nil
	}
	vm.state = Loaded
	vm.entries = slices.DeleteFunc(entries, func(e Entry) bool { return vm.pruned[e.ID] })
	return nil
}

// enrich fetches item details for every report in parallel. The result
// keeps the order of confs.
func (vm *ViewModel) enrich(ctx context.Context, confs []model.Confirmation) []Entry {
	now := vm.now()
	entries := make([]Entry, len(confs))

	var g errgroup.Group
	g.SetLimit(vm.limit)
	for i, conf := range confs {
		entries[i] = Entry{
			Confirmation:       conf,
			Item:               ItemData{Name: conf.ItemTitle},
			CreatedAtFormatted: relativeTime(conf.CreatedAt, now),
		}
		g.Go(func() error {
			item, err := vm.src.GetItem(ctx, conf.ItemID)
			if err != nil || item == nil {
				slog.Debug("item detail unavailable, using title snapshot",
					"confirmation", conf.ID, "item", conf.ItemID, "error", err)
				return nil
			}
			entries[i].Item = ItemData{
				Name:     item.Name,
				Category: item.Category,
				Location: item.Location,
				ImageURL: item.ImageURL,
				Reward:   item.Reward,
				Status:   model.EffectiveStatus(*item),
				Live:     true,
			}
			if entries[i].Item.Name == "" {
				entries[i].Item.Name = conf.ItemTitle
			}
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

// Confirm confirms the report with the given id. On success the entry is
// removed from the list; on failure the list is left as it was and the
// error is returned. Confirms on different entries run independently.
func (vm *ViewModel) Confirm(ctx context.Context, id int64) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrClosed
	}
	if !slices.ContainsFunc(vm.entries, func(e Entry) bool { return e.ID == id }) {
		vm.mu.Unlock()
		return ErrUnknownEntry
	}
	if vm.confirming[id] {
		vm.mu.Unlock()
		return ErrInFlight
	}
	vm.confirming[id] = true
	vm.mu.Unlock()

	err := vm.src.ConfirmFound(ctx, id)

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.closed {
		return err
	}
	delete(vm.confirming, id)
	if err != nil {
		slog.Warn("confirm failed", "confirmation", id, "error", err)
		return err
	}
	vm.pruned[id] = true
	vm.entries = slices.DeleteFunc(slices.Clone(vm.entries), func(e Entry) bool { return e.ID == id })
	return nil
}

// Close stops the view-model. Later responses are discarded.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.gen++
	vm.mu.Unlock()
}

// State returns the load state.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Err returns the error of a failed load.
func (vm *ViewModel) Err() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.err
}

// Entries returns a copy of the current list.
func (vm *ViewModel) Entries() []Entry {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.entries)
}

// Len returns the number of pending entries.
func (vm *ViewModel) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.entries)
}

// EntryState returns whether a confirm is in flight for id.
func (vm *ViewModel) EntryState(id int64) EntryState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.confirming[id] {
		return Confirming
	}
	return Idle
}

func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
