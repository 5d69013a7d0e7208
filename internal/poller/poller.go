package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/eventbus"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/langgraph"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
)

// Searcher finds interrupted threads on the workflow API.
type Searcher interface {
	SearchInterrupted(ctx context.Context, limit int) ([]langgraph.ThreadInfo, error)
}

// Notifier delivers an extracted record to the operator and reports where it
// landed.
type Notifier interface {
	NotifyInterrupt(ctx context.Context, rec *interrupt.Record) (chatID int64, messageID int, err error)
}

// Poller periodically discovers interrupted threads, extracts them and hands
// new ones to the notifier. One failing thread never stops the cycle.
type Poller struct {
	searcher  Searcher
	extractor *interrupt.Extractor
	manager   *state.Manager
	notifier  Notifier
	bus       *eventbus.Bus
	interval  time.Duration
	limit     int
	waitGroup *conc.WaitGroup
}

func New(searcher Searcher, extractor *interrupt.Extractor, manager *state.Manager,
	notifier Notifier, bus *eventbus.Bus, interval time.Duration, limit int) *Poller {
	return &Poller{
		searcher:  searcher,
		extractor: extractor,
		manager:   manager,
		notifier:  notifier,
		bus:       bus,
		interval:  interval,
		limit:     limit,
		waitGroup: conc.NewWaitGroup(),
	}
}

// SetNotifier wires the delivery target. The bot and the poller reference
// each other, so one of them is attached after construction. Must be called
// before Start.
func (p *Poller) SetNotifier(n Notifier) {
	p.notifier = n
}

// Start runs polling cycles until the context is canceled. The first cycle
// runs immediately.
func (p *Poller) Start(ctx context.Context) {
	p.waitGroup.Go(func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.runCycle(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.runCycle(ctx)
			}
		}
	})
}

// Wait blocks until the polling goroutine has exited.
func (p *Poller) Wait() {
	p.waitGroup.Wait()
}

// RunOnce executes a single cycle, used by the manual check command.
func (p *Poller) RunOnce(ctx context.Context) (delivered int, err error) {
	return p.cycle(ctx)
}

func (p *Poller) runCycle(ctx context.Context) {
	delivered, err := p.cycle(ctx)
	if err != nil {
		slog.Error("polling cycle failed", "error", err)
		return
	}
	slog.Debug("polling cycle completed", "delivered", delivered)
}

func (p *Poller) cycle(ctx context.Context) (int, error) {
	threads, err := p.searcher.SearchInterrupted(ctx, p.limit)
	if err != nil {
		return 0, err
	}

	for _, thread := range threads {
		// Completed threads are done; everything else is re-extracted each
		// cycle so the stored record always mirrors the remote state. Track
		// keeps the delivery bookkeeping of an existing entry, so updating a
		// record never causes a second notification.
		entry, tracked := p.manager.Get(thread.ThreadID)
		if tracked && entry.Status == state.StatusCompleted {
			continue
		}
		rec, err := p.extractor.Extract(ctx, thread.ThreadID)
		if err != nil {
			slog.Warn("skipping thread, extraction failed", "thread_id", thread.ThreadID, "error", err)
			continue
		}
		if err := p.manager.Track(ctx, rec); err != nil {
			slog.Warn("could not track interrupt", "thread_id", thread.ThreadID, "error", err)
			continue
		}
		if !tracked {
			p.bus.PublishNew(eventbus.TypeInterruptDetected, thread.ThreadID, string(rec.ActionKind), nil)
		}
	}

	delivered := p.deliverPending(ctx)

	if err := p.manager.TouchLastChecked(ctx); err != nil {
		slog.Warn("could not stamp polling cycle", "error", err)
	}
	p.bus.PublishNew(eventbus.TypePollCompleted, "", "", nil)
	return delivered, nil
}

func (p *Poller) deliverPending(ctx context.Context) int {
	delivered := 0
	for _, threadID := range p.manager.Pending() {
		entry, ok := p.manager.Get(threadID)
		if !ok {
			continue
		}
		chatID, messageID, err := p.notifier.NotifyInterrupt(ctx, entry.Data)
		if err != nil {
			slog.Warn("could not deliver interrupt", "thread_id", threadID, "error", err)
			continue
		}
		if err := p.manager.MarkSent(ctx, threadID, chatID, messageID); err != nil {
			slog.Warn("could not mark interrupt sent", "thread_id", threadID, "error", err)
			continue
		}
		p.bus.PublishNew(eventbus.TypeInterruptDelivered, threadID, "", nil)
		delivered++
	}
	return delivered
}
