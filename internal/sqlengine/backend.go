package sqlengine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// Backend implements pdtypes.Dict over a concrete pdtypes.SQLDriver and a
// read-only list of maps passed to NewBackend. It holds no mutex around
// the maps slice once attached: maps are immutable after load and freely
// shared across handles.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	maps     []pdtypes.Map
	driver   pdtypes.SQLDriver

	// inflight counts goroutines spawned by LookupAsync and CommitAsync;
	// Wait blocks until it drops to zero.
	inflight  sync.WaitGroup
	closeOnce sync.Once
}

// NewBackend creates a Backend bound to driver and maps. The backend is
// considered attached immediately: driver construction (opening the
// connection pool) happens separately, in the caller's chosen
// pdtypes.SQLDriver implementation, before NewBackend is called.
func NewBackend(driver pdtypes.SQLDriver, maps []pdtypes.Map) *Backend {
	return &Backend{
		attached: true,
		maps:     maps,
		driver:   driver,
	}
}

func (b *Backend) checkAttached() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return pdtypes.ErrDetached
	}
	return nil
}

// Wait blocks until all goroutines spawned by async operations issued on
// this handle have returned.
func (b *Backend) Wait() {
	b.inflight.Wait()
}

// Close releases the backend's driver. Idempotent.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.attached = false
		b.mu.Unlock()
		b.inflight.Wait()
		err = b.driver.Close()
	})
	return err
}

var _ pdtypes.Dict = (*Backend)(nil)

func (b *Backend) runAsync(fn func()) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		fn()
	}()
}

// nowFunc is a process-wide timestamp source kept as an indirection point
// so tests can freeze it via SetNowFunc.
var nowFunc atomic.Value

func init() {
	nowFunc.Store(func() int64 { return time.Now().Unix() })
}

// SetNowFunc overrides the clock used by ExpireScan and by the expired-row
// checks in Lookup and iteration. Set's expire-field computation uses
// OpSettings.EffectiveTimestamp instead. Tests use this to pin time
// without sleeping.
func SetNowFunc(f func() int64) {
	nowFunc.Store(f)
}

func currentNow() int64 {
	return nowFunc.Load().(func() int64)()
}
