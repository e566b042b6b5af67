package application

import (
	"context"
	"sync"

	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/delivery"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
)

// Dispatcher routes a message to the sender registered for the connection's
// platform tag. The set of platforms is closed: adding one means registering
// one more sender, dispatch logic stays untouched.
type Dispatcher struct {
	mu      sync.RWMutex
	senders map[platform.Type]delivery.Sender
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		senders: make(map[platform.Type]delivery.Sender),
	}
}

func (d *Dispatcher) Register(t platform.Type, sender delivery.Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[t] = sender
}

func (d *Dispatcher) Dispatch(ctx context.Context, conn platform.Connection, identifier, message string) error {
	d.mu.RLock()
	sender, ok := d.senders[conn.Type]
	d.mu.RUnlock()

	if !ok {
		return common.ErrUnsupportedPlatform
	}
	return sender.Send(ctx, conn, identifier, message)
}
