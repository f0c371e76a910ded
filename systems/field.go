package systems

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"
)

// parallelThreshold is the minimum ray count to update across workers.
// Below this, a single goroutine is faster.
const parallelThreshold = 256

// Lifecycle selects who retires rays that left the view or stayed absorbed.
type Lifecycle uint8

const (
	// LifecycleReset lets each ray reset itself in place. The field never prunes.
	LifecycleReset Lifecycle = iota
	// LifecyclePrune removes expired rays and relies on batch spawning to refill.
	LifecyclePrune
)

var lifecycleNames = [...]string{"reset", "prune"}

func (l Lifecycle) String() string {
	if int(l) < len(lifecycleNames) {
		return lifecycleNames[l]
	}
	return fmt.Sprintf("Lifecycle(%d)", l)
}

// ParseLifecycle maps a config name to a lifecycle.
func ParseLifecycle(name string) (Lifecycle, error) {
	for i, n := range lifecycleNames {
		if n == name {
			return Lifecycle(i), nil
		}
	}
	return LifecycleReset, fmt.Errorf("unknown lifecycle %q", name)
}

// FieldParams holds spawn cadence and capacity settings.
type FieldParams struct {
	BatchSize     int
	SpawnInterval float64 // seconds between batches
	MaxRays       int
	Speed         float64 // base speed handed to new rays
	TrailCapacity int
	Lifecycle     Lifecycle
	Workers       int // 0 = GOMAXPROCS, 1 = serial
}

// DefaultFieldParams returns the default field settings.
func DefaultFieldParams() FieldParams {
	return FieldParams{
		BatchSize:     80,
		SpawnInterval: 1.5,
		MaxRays:       800,
		Speed:         0.3,
		TrailCapacity: 500,
		Lifecycle:     LifecycleReset,
	}
}

// FieldStats summarizes the field after the last Update.
type FieldStats struct {
	Live        int
	Absorbed    int
	Orbiting    int
	Spawned     int // rays created this tick
	Absorptions int // rays absorbed this tick
	Resets      int // rays reset this tick
	Pruned      int // rays removed this tick

	// Free rays only
	MeanAngularMomentum float64 // mean |r × v| about the hole
	MaxProperTime       float64 // oldest free ray, in dilated seconds
}

// RayField owns the live rays, spawns batches on a timer and retires rays
// according to its Lifecycle. Rays live in an ECS world as plain values.
type RayField struct {
	world     *ecs.World
	rayMap    *ecs.Map1[Ray]
	rayFilter *ecs.Filter1[Ray]

	spawner *Spawner
	params  FieldParams

	timeSinceLastSpawn float64
	count              int
	stats              FieldStats

	// Scratch buffers reused between ticks
	active   []*Ray
	events   []RayEvent
	toRemove []ecs.Entity
}

// NewRayField creates an empty field. Call Reset or wait one interval for the first batch.
func NewRayField(params FieldParams, spawner *Spawner) *RayField {
	world := ecs.NewWorld()
	if params.Workers <= 0 {
		params.Workers = runtime.GOMAXPROCS(0)
	}
	return &RayField{
		world:     world,
		rayMap:    ecs.NewMap1[Ray](world),
		rayFilter: ecs.NewFilter1[Ray](world),
		spawner:   spawner,
		params:    params,
	}
}

// Update advances the spawn timer, updates every ray against env and
// applies the lifecycle policy.
func (f *RayField) Update(dt float64, env Environment) {
	f.stats = FieldStats{}
	env.SelfReset = f.params.Lifecycle == LifecycleReset

	f.timeSinceLastSpawn += dt
	if f.timeSinceLastSpawn >= f.params.SpawnInterval {
		f.timeSinceLastSpawn = 0
		f.spawnBatch()
	}

	f.updateRays(dt, env)

	if f.params.Lifecycle == LifecyclePrune {
		f.prune()
	}
	f.tally()
}

// spawnBatch adds up to BatchSize rays without exceeding MaxRays.
func (f *RayField) spawnBatch() {
	n := min(f.params.BatchSize, f.params.MaxRays-f.count)
	if n <= 0 {
		return
	}
	for _, r := range f.spawner.CreateBatch(n, f.params.Speed, f.params.TrailCapacity) {
		f.rayMap.NewEntity(r)
	}
	f.count += n
	f.stats.Spawned += n
}

func (f *RayField) updateRays(dt float64, env Environment) {
	// Collect pointers first; storage is stable until the next structural change.
	f.active = f.active[:0]
	query := f.rayFilter.Query()
	for query.Next() {
		f.active = append(f.active, query.Get())
	}

	n := len(f.active)
	if cap(f.events) < n {
		f.events = make([]RayEvent, n)
	}
	f.events = f.events[:n]

	workers := f.params.Workers
	if workers <= 1 || n < parallelThreshold {
		for i, r := range f.active {
			f.events[i] = r.Update(dt, env)
		}
	} else {
		chunk := (n + workers - 1) / workers
		var wg sync.WaitGroup
		for start := 0; start < n; start += chunk {
			end := min(start+chunk, n)
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				for i := start; i < end; i++ {
					f.events[i] = f.active[i].Update(dt, env)
				}
			}(start, end)
		}
		wg.Wait()
	}

	for _, ev := range f.events {
		switch ev {
		case EventAbsorbed:
			f.stats.Absorptions++
		case EventReset:
			f.stats.Resets++
		}
	}
}

// prune removes expired rays. Collect first, then remove (query must finish before modifying).
func (f *RayField) prune() {
	f.toRemove = f.toRemove[:0]
	query := f.rayFilter.Query()
	for query.Next() {
		if query.Get().Expired() {
			f.toRemove = append(f.toRemove, query.Entity())
		}
	}
	for _, e := range f.toRemove {
		f.world.RemoveEntity(e)
	}
	f.count -= len(f.toRemove)
	f.stats.Pruned += len(f.toRemove)
}

func (f *RayField) tally() {
	var free int
	var momentum float64
	query := f.rayFilter.Query()
	for query.Next() {
		r := query.Get()
		f.stats.Live++
		if r.IsAbsorbed() {
			f.stats.Absorbed++
			continue
		}
		if r.IsOrbiting() {
			f.stats.Orbiting++
		}
		free++
		momentum += math.Abs(r.AngularMomentum())
		f.stats.MaxProperTime = max(f.stats.MaxProperTime, r.ProperTime())
	}
	if free > 0 {
		f.stats.MeanAngularMomentum = momentum / float64(free)
	}
}

// Reset clears the field and spawns one fresh batch immediately.
func (f *RayField) Reset() {
	f.Clear()
	f.spawnBatch()
	f.tally()
}

// SetPattern switches the spawn pattern, clears the field and spawns one fresh batch.
func (f *RayField) SetPattern(p SpawnPattern) {
	f.spawner.SetPattern(p)
	f.Reset()
}

// Pattern returns the active spawn pattern.
func (f *RayField) Pattern() SpawnPattern { return f.spawner.Pattern() }

// Clear removes every ray and restarts the spawn timer.
func (f *RayField) Clear() {
	f.toRemove = f.toRemove[:0]
	query := f.rayFilter.Query()
	for query.Next() {
		f.toRemove = append(f.toRemove, query.Entity())
	}
	for _, e := range f.toRemove {
		f.world.RemoveEntity(e)
	}
	f.count = 0
	f.timeSinceLastSpawn = 0
	f.stats = FieldStats{}
}

// Count returns the number of live rays.
func (f *RayField) Count() int { return f.count }

// Stats returns the summary computed by the last Update.
func (f *RayField) Stats() FieldStats { return f.stats }

// Params returns the field settings.
func (f *RayField) Params() FieldParams { return f.params }

// ForEach calls fn for every ray. fn must not retain r or modify the field.
func (f *RayField) ForEach(fn func(r *Ray)) {
	query := f.rayFilter.Query()
	for query.Next() {
		fn(query.Get())
	}
}

// EachNewSegment calls fn with every trail segment written during the last Update.
func (f *RayField) EachNewSegment(fn func(s Segment)) {
	query := f.rayFilter.Query()
	for query.Next() {
		if s, ok := query.Get().NewSegment(); ok {
			fn(s)
		}
	}
}

// SetSpeed changes the base speed of every live ray and of future batches.
func (f *RayField) SetSpeed(s float64) {
	if s <= 0 {
		return
	}
	f.params.Speed = s
	query := f.rayFilter.Query()
	for query.Next() {
		query.Get().SetSpeed(s)
	}
}

// Speed returns the base speed handed to new rays.
func (f *RayField) Speed() float64 { return f.params.Speed }
