package worker_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"flashcards.app/generator/internal/worker"
)

type blockingStopper struct {
	mu      sync.Mutex
	name    string
	release chan struct{}
	order   *[]string
}

func (s *blockingStopper) Stop() {
	if s.release != nil {
		<-s.release
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.order = append(*s.order, s.name)
}

var _ = Describe("Shutdown", func() {
	It("stops every loop in order", func() {
		var order []string
		a := &blockingStopper{name: "reclaimer", order: &order}
		b := &blockingStopper{name: "worker", order: &order}

		Expect(worker.Shutdown(context.Background(), a, nil, b)).To(Succeed())
		Expect(order).To(Equal([]string{"reclaimer", "worker"}))
	})

	It("returns when the deadline passes while a loop is still stopping", func() {
		var order []string
		release := make(chan struct{})
		defer close(release)
		busy := &blockingStopper{name: "worker", release: release, order: &order}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := worker.Shutdown(ctx, busy)

		Expect(err).To(MatchError(context.DeadlineExceeded))
		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})

	It("bounds a worker blocked in an in-flight generation", func() {
		consumer := &mockConsumer{}
		processor := &mockProcessor{}
		w := worker.New(consumer, &mockGenerations{}, processor, &mockRunner{}, worker.Config{})

		// Run never started, so Stop blocks on the stopped channel.
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		Expect(worker.Shutdown(ctx, w)).To(MatchError(context.DeadlineExceeded))

		// Run sees the closed stop channel and releases the pending Stop.
		Expect(w.Run(context.Background())).To(Succeed())
	})
})
