package bot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one update. Implemented by the service dispatcher.
type Handler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller drives the long-poll loop and fans updates out to per-chat
// workers. Updates for the same chat run strictly in order, so two
// messages from one user can never interleave inside a conversation
// step; different chats run concurrently.
type Poller struct {
	client  *Client
	handler Handler
	logger  *zap.Logger

	mu     sync.Mutex
	queues map[int64]chan Update
	wg     sync.WaitGroup
}

func NewPoller(client *Client, handler Handler, logger *zap.Logger) *Poller {
	return &Poller{
		client:  client,
		handler: handler,
		logger:  logger,
		queues:  make(map[int64]chan Update),
	}
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (p *Poller) Run(ctx context.Context) {
	var offset int64

	for {
		select {
		case <-ctx.Done():
			p.shutdown()
			return
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				p.shutdown()
				return
			}
			p.logger.Error("failed to poll updates", zap.Error(err))
			time.Sleep(2 * time.Second)
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			p.dispatch(ctx, update)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, update Update) {
	chatID := update.ChatID()
	if chatID == 0 {
		return
	}

	p.mu.Lock()
	queue, ok := p.queues[chatID]
	if !ok {
		queue = make(chan Update, 16)
		p.queues[chatID] = queue
		p.wg.Add(1)
		go p.worker(ctx, queue)
	}
	p.mu.Unlock()

	select {
	case queue <- update:
	default:
		// A chat flooding its queue loses updates rather than
		// stalling every other chat.
		p.logger.Warn("chat queue full, dropping update",
			zap.Int64("chat_id", chatID),
			zap.Int64("update_id", update.UpdateID))
	}
}

func (p *Poller) worker(ctx context.Context, queue chan Update) {
	defer p.wg.Done()
	for update := range queue {
		p.handler.HandleUpdate(ctx, update)
	}
}

func (p *Poller) shutdown() {
	p.mu.Lock()
	for _, queue := range p.queues {
		close(queue)
	}
	p.queues = make(map[int64]chan Update)
	p.mu.Unlock()

	p.wg.Wait()
}
