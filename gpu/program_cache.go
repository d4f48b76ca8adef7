package gpu

import "github.com/gogpu/drawpipe/internal/cache"

// DefaultMaxProgramCount bounds a ProgramCache when no limit is set.
const DefaultMaxProgramCount = 128

// ProgramCacheStats counts cache activity.
type ProgramCacheStats struct {
	Hits            uint64
	Misses          uint64
	Evictions       uint64
	CreateFailures  uint64
	KeyCollisions   uint64
	LivePrograms    int
	MaxProgramCount int
}

// ProgramCache maps program fingerprints to compiled programs, evicting
// the least recently used program once the bound is exceeded. It belongs
// to one Context and performs no locking.
type ProgramCache struct {
	ctx         *Context
	maxPrograms int
	verifyKeys  bool
	programs    *cache.LRU[string, Program]
	// retired programs were evicted during a flush and are released once
	// the work that may reference them has been submitted.
	retired []Program
	stats   ProgramCacheStats
}

func newProgramCache(ctx *Context, maxPrograms int, verifyKeys bool) *ProgramCache {
	if maxPrograms <= 0 {
		maxPrograms = DefaultMaxProgramCount
	}
	return &ProgramCache{
		ctx:         ctx,
		maxPrograms: maxPrograms,
		verifyKeys:  verifyKeys,
		programs:    cache.NewLRU[string, Program](),
	}
}

// Empty reports whether the cache holds no programs.
func (c *ProgramCache) Empty() bool { return c.programs.Len() == 0 }

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int { return c.programs.Len() }

// Stats returns a snapshot of cache counters.
func (c *ProgramCache) Stats() ProgramCacheStats {
	s := c.stats
	s.LivePrograms = c.programs.Len()
	s.MaxProgramCount = c.maxPrograms
	return s
}

// GetProgram returns the cached program for creator's key, creating and
// inserting it on a miss. It returns nil if creation fails; nothing is
// cached in that case.
func (c *ProgramCache) GetProgram(creator ProgramCreator) Program {
	var key BytesKey
	creator.ComputeProgramKey(c.ctx, &key)
	k := key.String()

	if program, ok := c.programs.Get(k); ok {
		if c.verifyKeys && !c.sameSource(creator, program) {
			c.stats.KeyCollisions++
			slogger().Error("gpu: program key collision, creator key omits source-affecting state",
				"keyWords", key.Len())
			return nil
		}
		c.stats.Hits++
		return program
	}

	c.stats.Misses++
	program := creator.CreateProgram(c.ctx)
	if program == nil {
		c.stats.CreateFailures++
		return nil
	}
	c.programs.Add(k, program)
	for c.programs.Len() > c.maxPrograms {
		c.removeOldestProgram(true)
	}
	return program
}

// sameSource regenerates the creator's source and compares it with the
// cached program's. Creators or programs without digests are trusted.
func (c *ProgramCache) sameSource(creator ProgramCreator, program Program) bool {
	d, ok := creator.(sourceDigester)
	if !ok {
		return true
	}
	p, ok := program.(digestedProgram)
	if !ok {
		return true
	}
	digest, ok := d.SourceDigest(c.ctx)
	if !ok {
		return false
	}
	return digest == p.sourceDigest()
}

// removeOldestProgram drops the least recently used program. With
// releaseGPU its GPU state is queued for release after the next submit;
// the cache slot is freed immediately.
func (c *ProgramCache) removeOldestProgram(releaseGPU bool) {
	k, program, ok := c.programs.Oldest()
	if !ok {
		return
	}
	if releaseGPU {
		c.retired = append(c.retired, program)
	}
	c.programs.Remove(k)
	c.stats.Evictions++
	slogger().Debug("gpu: program evicted", "live", c.programs.Len(), "releasedGPU", releaseGPU)
}

// NumRetired returns the number of evicted programs awaiting release.
func (c *ProgramCache) NumRetired() int { return len(c.retired) }

// releaseRetired frees the GPU state of evicted programs. It runs after
// the commands recorded with them were submitted.
func (c *ProgramCache) releaseRetired() {
	for _, p := range c.retired {
		p.ReleaseGPU()
	}
	clear(c.retired)
	c.retired = c.retired[:0]
}

// releaseAll empties the cache. Without releaseGPU the programs are
// dropped without touching the device, for use after device loss.
func (c *ProgramCache) releaseAll(releaseGPU bool) {
	if releaseGPU {
		c.releaseRetired()
		c.programs.Range(func(_ string, p Program) bool {
			p.ReleaseGPU()
			return true
		})
	}
	c.retired = nil
	c.programs.Clear()
}
