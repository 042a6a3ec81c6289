package dashboard

import (
	"context"
	"time"

	"mqttdash/internal/logger"
)

// Presenter draws rendered rows. speed is how long a changed value should
// take to fade in.
type Presenter interface {
	Present(rows []Row, speed time.Duration)
}

// Recorder counts what happens to inbound messages.
type Recorder interface {
	Received(broker string)
	Dropped(broker string)
	Updated(broker, topic string)
}

type nopRecorder struct{}

func (nopRecorder) Received(string)        {}
func (nopRecorder) Dropped(string)         {}
func (nopRecorder) Updated(string, string) {}

// Pipeline feeds messages into a Store one at a time and presents the result.
type Pipeline struct {
	store      *Store
	log        logger.Logger
	rec        Recorder
	presenters []Presenter
}

func NewPipeline(store *Store, log logger.Logger, rec Recorder, presenters ...Presenter) *Pipeline {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Pipeline{store: store, log: log, rec: rec, presenters: presenters}
}

// Run presents the initial rows and then handles messages until ctx is done
// or msgs is closed.
func (p *Pipeline) Run(ctx context.Context, msgs <-chan Message) {
	p.present(p.store.AnimationSpeed())

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			p.Handle(msg)
		}
	}
}

// Handle ingests a single message.
func (p *Pipeline) Handle(msg Message) {
	p.rec.Received(msg.URL)

	upd, ok := p.store.Ingest(msg)
	if !ok {
		p.rec.Dropped(msg.URL)
		p.log.With(logger.Fields{"module": "dashboard"}).Debugf("no subscription for %s %s", msg.URL, msg.Topic)
		return
	}

	p.rec.Updated(upd.Broker, upd.Topic)
	p.log.With(logger.Fields{"module": "dashboard"}).Debugf("updated %s %s from topic %s", upd.Broker, upd.Topic, msg.Topic)
	p.present(upd.AnimationSpeed)
}

func (p *Pipeline) present(speed time.Duration) {
	rows := p.store.Render()
	for _, pr := range p.presenters {
		pr.Present(rows, speed)
	}
}
