// Package carousel models the auto advancing image carousel state used by the public
// gallery views: a current index, a paused flag and a pending auto advance deadline.
// All index arithmetic is modular so any sequence of operations stays in bounds.
package carousel

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultInterval = 3 * time.Second
	// TouchGrace is how long the carousel stays paused after a touch ends.
	TouchGrace = 2 * time.Second
)

type State int

const (
	Playing State = iota
	Paused
)

type Carousel struct {
	mu         sync.Mutex
	count      int
	index      int
	state      State
	autoScroll bool
	interval   time.Duration
	// nextTick is when the next auto advance fires. Manual navigation pushes it out a
	// full interval. resumeAt implements the touch grace window.
	nextTick time.Time
	resumeAt time.Time
}

func New(count int, autoScroll bool, interval time.Duration) *Carousel {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Carousel{
		count:      count,
		state:      Playing,
		autoScroll: autoScroll,
		interval:   interval,
		nextTick:   time.Now().Add(interval),
	}
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index
}

func (c *Carousel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Next advances one slide. Manual navigation always succeeds regardless of pause state
// and implicitly resets the pending auto advance.
func (c *Carousel) Next() int {
	return c.step(1)
}

// Prev moves one slide back, wrapping from the first slide to the last.
func (c *Carousel) Prev() int {
	return c.step(-1)
}

func (c *Carousel) step(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return 0
	}

	c.index = ((c.index+delta)%c.count + c.count) % c.count
	c.nextTick = time.Now().Add(c.interval)

	return c.index
}

// Select jumps to a specific slide via an indicator dot.
func (c *Carousel) Select(index int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		return 0
	}

	c.index = ((index % c.count) + c.count) % c.count
	c.nextTick = time.Now().Add(c.interval)

	return c.index
}

// PointerEnter pauses auto advance while a pointer hovers the carousel.
func (c *Carousel) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Paused
	c.resumeAt = time.Time{}
}

// PointerLeave resumes auto advance.
func (c *Carousel) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Playing
	c.resumeAt = time.Time{}
	c.nextTick = time.Now().Add(c.interval)
}

// TouchStart pauses like PointerEnter.
func (c *Carousel) TouchStart() {
	c.PointerEnter()
}

// TouchEnd keeps the carousel paused for a short grace window, then resumes.
func (c *Carousel) TouchEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Paused
	c.resumeAt = time.Now().Add(TouchGrace)
}

// Tick advances the carousel if an auto advance is due at now. It reports whether the
// index changed. Carousels with fewer than two images never advance.
func (c *Carousel) Tick(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.autoScroll || c.count <= 1 {
		return false
	}

	if c.state == Paused {
		if c.resumeAt.IsZero() || now.Before(c.resumeAt) {
			return false
		}

		c.state = Playing
		c.resumeAt = time.Time{}
		c.nextTick = now.Add(c.interval)

		return false
	}

	if now.Before(c.nextTick) {
		return false
	}

	c.index = (c.index + 1) % c.count
	c.nextTick = now.Add(c.interval)

	return true
}

// Run drives auto advance until ctx is cancelled, so a torn down carousel never leaves
// an orphaned timer behind. Each advance is delivered on the returned channel.
func (c *Carousel) Run(ctx context.Context) <-chan int {
	updates := make(chan int, 1)

	go func() {
		defer close(updates)

		ticker := time.NewTicker(c.tickResolution())
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if c.Tick(now) {
					select {
					case updates <- c.Index():
					default:
					}
				}
			}
		}
	}()

	return updates
}

func (c *Carousel) tickResolution() time.Duration {
	resolution := c.interval / 10
	if resolution < 50*time.Millisecond {
		resolution = 50 * time.Millisecond
	}

	return resolution
}

// DisplayMode is the presentation hint hosts use to pick between carousel and a plain
// scrollable strip.
type DisplayMode string

const (
	DisplayNone     DisplayMode = "none"
	DisplayCarousel DisplayMode = "carousel"
	DisplayStrip    DisplayMode = "strip"
)

// StripMaxImages is the largest gallery a wide viewport renders as a strip before
// degrading to a carousel to avoid unbounded horizontal layouts.
const StripMaxImages = 5

// ModeFor selects the display mode for a gallery of imageCount images. Narrow
// viewports always use the carousel when any image exists; wide viewports switch to it
// past StripMaxImages.
func ModeFor(narrowViewport bool, imageCount int) DisplayMode {
	switch {
	case imageCount == 0:
		return DisplayNone
	case narrowViewport:
		return DisplayCarousel
	case imageCount > StripMaxImages:
		return DisplayCarousel
	default:
		return DisplayStrip
	}
}
