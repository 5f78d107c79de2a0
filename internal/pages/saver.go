package pages

import (
	"context"
	"sync"

	"hkm-site/internal/domain/data"

	"go.uber.org/zap"
)

// Saver writes pages to the graph from a pool of workers so page responses
// never wait on the database.
type Saver struct {
	logger *zap.SugaredLogger
	graph  SiteGraph
	ch     chan *data.SitePage
	wg     sync.WaitGroup
	once   sync.Once
}

func NewSaver(logger *zap.SugaredLogger, graph SiteGraph) *Saver {
	return &Saver{
		logger: logger,
		graph:  graph,
		ch:     make(chan *data.SitePage, saverBuffer),
	}
}

func (s *Saver) StartSaverWorkers(workers int) {
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.saverWorker()
	}
}

func (s *Saver) saverWorker() {
	defer s.wg.Done()

	for page := range s.ch {
		if err := s.graph.SavePage(context.Background(), page); err != nil {
			s.logger.Warnw("Failed to save page", "url", page.URL, "err", err)
		}
	}
}

// Record queues page for saving and drops it when the queue is full.
func (s *Saver) Record(page *data.SitePage) {
	select {
	case s.ch <- page:
	default:
		s.logger.Warnw("Saver channel full, dropping page", "url", page.URL)
	}
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Saver) Stop(ctx context.Context) error {
	s.once.Do(func() { close(s.ch) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
