package durable

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Service string
	Handler string
	ID      string
	Key     string
	Logger  *zap.Logger
	Journal *Journal
	Now     func() time.Time // default time.Now
}

// Invocation is the local Context implementation: effects go to an
// in-memory Journal, sleeps are plain timers.
type Invocation struct {
	context.Context

	service string
	handler string
	id      string
	key     string

	journal *Journal
	cursor  int
	log     *zap.Logger
	now     func() time.Time

	recorded int
	replayed int
}

var _ Context = (*Invocation)(nil)

func NewInvocation(parent context.Context, o Options) *Invocation {
	if o.Journal == nil {
		o.Journal = &Journal{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	l := o.Logger
	if l == nil {
		l = zap.NewNop()
	}
	return &Invocation{
		Context: parent,
		service: o.Service,
		handler: o.Handler,
		id:      o.ID,
		key:     o.Key,
		journal: o.Journal,
		now:     o.Now,
		log: l.With(
			zap.String("service", o.Service),
			zap.String("handler", o.Handler),
			zap.String("invocationId", o.ID),
		),
	}
}

func (i *Invocation) Service() string      { return i.service }
func (i *Invocation) Handler() string      { return i.handler }
func (i *Invocation) InvocationID() string { return i.id }
func (i *Invocation) Key() string          { return i.key }

// Recorded is the number of effects journaled by this execution.
func (i *Invocation) Recorded() int { return i.recorded }

// Replayed is the number of effects served from the journal.
func (i *Invocation) Replayed() int { return i.replayed }

func (i *Invocation) replaying() bool { return i.cursor < i.journal.Len() }

func (i *Invocation) Log() *zap.Logger {
	if i.replaying() {
		return zap.NewNop()
	}
	return i.log
}

func (i *Invocation) Run(name string, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	pos := i.cursor
	if e, ok := i.journal.At(pos); ok {
		if e.Kind != KindRun || e.Name != name {
			return nil, mismatch(pos, e, KindRun, name)
		}
		i.cursor++
		i.replayed++
		return e.Value, nil
	}
	if err := i.Err(); err != nil {
		return nil, err
	}

	out, err := fn(i.Context)
	if err != nil {
		return nil, err
	}
	i.journal.append(Entry{Kind: KindRun, Name: name, Value: out, Done: true})
	i.cursor++
	i.recorded++
	return out, nil
}

func (i *Invocation) Sleep(d time.Duration) error {
	pos := i.cursor
	var wakeAt time.Time
	if e, ok := i.journal.At(pos); ok {
		if e.Kind != KindSleep {
			return mismatch(pos, e, KindSleep, "")
		}
		i.cursor++
		i.replayed++
		if e.Done {
			return nil
		}
		wakeAt = e.WakeAt
	} else {
		wakeAt = i.now().Add(d)
		i.journal.append(Entry{Kind: KindSleep, WakeAt: wakeAt})
		i.cursor++
		i.recorded++
	}

	if remaining := wakeAt.Sub(i.now()); remaining > 0 {
		t := time.NewTimer(remaining)
		defer t.Stop()
		select {
		case <-i.Done():
			return i.Err()
		case <-t.C:
		}
	}
	i.journal.complete(pos)
	return nil
}
