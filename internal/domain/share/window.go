package share

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Share is the owner-held artifact for an active share link.
type Share struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// WindowController enforces the fixed-duration validity window on generated
// share links. It is owner-session state only: one live window per owner,
// starting a new one replaces the old, and expiry clears the owner's held
// share. The resolver never consults it, so a link stays reachable after
// the window lapses; that is the specified behavior, not an oversight.
type WindowController struct {
	window time.Duration

	mu     sync.Mutex
	active map[uuid.UUID]*activeWindow
}

type activeWindow struct {
	share Share
	timer *time.Timer
}

func NewWindowController(window time.Duration) *WindowController {
	return &WindowController{
		window: window,
		active: make(map[uuid.UUID]*activeWindow),
	}
}

// Window returns the configured duration.
func (w *WindowController) Window() time.Duration { return w.window }

// Start arms a one-shot expiry timer for the owner's share. A prior window
// for the same owner is cancelled with no callback. onExpire fires exactly
// once, only if the window runs its full course.
func (w *WindowController) Start(ownerID uuid.UUID, share Share, onExpire func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.active[ownerID]; ok {
		prev.timer.Stop()
		delete(w.active, ownerID)
	}

	aw := &activeWindow{share: share}
	aw.timer = time.AfterFunc(w.window, func() {
		w.mu.Lock()
		cur, ok := w.active[ownerID]
		expired := ok && cur == aw
		if expired {
			delete(w.active, ownerID)
		}
		w.mu.Unlock()

		if expired && onExpire != nil {
			onExpire()
		}
	})
	w.active[ownerID] = aw
}

// Active returns the owner's live share, if any.
func (w *WindowController) Active(ownerID uuid.UUID) (Share, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	aw, ok := w.active[ownerID]
	if !ok {
		return Share{}, false
	}
	return aw.share, true
}

// Cancel stops the owner's pending timer with no side effect.
func (w *WindowController) Cancel(ownerID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if aw, ok := w.active[ownerID]; ok {
		aw.timer.Stop()
		delete(w.active, ownerID)
	}
}
