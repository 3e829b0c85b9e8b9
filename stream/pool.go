package stream

import "sync"

// PoolConfig configures Writer pooling behavior. Adapted from the
// teacher's object-pooling package (pool.PoolConfig): pooling exists to
// reduce allocations on high-frequency paths, here the per-step
// serialization a StorageEngine performs on every commit.
type PoolConfig struct {
	// Enabled controls whether AcquireWriter draws from the pool at all.
	Enabled bool

	// MaxCap discards a returned Writer instead of pooling it once its
	// internal buffer has grown past this capacity, so one oversized
	// write cannot pin a large allocation in the pool forever.
	MaxCap int
}

var poolConfig = PoolConfig{Enabled: true, MaxCap: 1 << 20}

// ConfigurePool overrides the package's Writer pooling behavior. Should be
// called, if at all, during initialization.
func ConfigurePool(cfg PoolConfig) {
	poolConfig = cfg
}

var writerPool = sync.Pool{
	New: func() any { return &Writer{} },
}

// AcquireWriter returns an empty Writer, reused from the pool when pooling
// is enabled. Pair with ReleaseWriter once the caller is done with the
// Writer's Bytes().
func AcquireWriter() *Writer {
	if !poolConfig.Enabled {
		return NewWriter()
	}
	w := writerPool.Get().(*Writer)
	w.buf.Reset()
	return w
}

// ReleaseWriter returns w to the pool, unless pooling is disabled or w's
// buffer has grown past PoolConfig.MaxCap.
func ReleaseWriter(w *Writer) {
	if !poolConfig.Enabled || w == nil {
		return
	}
	if w.buf.Cap() > poolConfig.MaxCap {
		return
	}
	writerPool.Put(w)
}
