package worker_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"flashcards.app/generator/internal/generation"
	"flashcards.app/generator/internal/model"
	"flashcards.app/generator/internal/queue"
	"flashcards.app/generator/internal/worker"
)

var _ = Describe("Worker", func() {
	var (
		ctx         context.Context
		consumer    *mockConsumer
		generations *mockGenerations
		processor   *mockProcessor
		runner      *mockRunner
		w           *worker.Worker
	)

	BeforeEach(func() {
		ctx = context.Background()
		consumer = &mockConsumer{}
		generations = &mockGenerations{generations: map[int64]*model.Generation{
			42: {ID: 42, Status: model.GenerationStatusPending},
		}}
		processor = &mockProcessor{result: generation.Result{Success: true, CandidatesCreated: 3}}
		runner = &mockRunner{}
		w = worker.New(consumer, generations, processor, runner, worker.Config{MaxAttempts: 3, ErrorDelay: time.Millisecond})
	})

	Describe("ProcessMessage", func() {
		It("runs the processor for a generation job and acks it", func() {
			msg := queue.Message{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			Expect(processor.processedIDs()).To(Equal([]int64{42}))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(Equal([]string{"1-0"}))
		})

		It("acks a job whose generation failed since the failure is recorded on the row", func() {
			processor.result = generation.Result{ErrorCode: "rate_limit", Error: "llm rate_limit"}
			msg := queue.Message{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			acked, requeued, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("1-0"))
			Expect(requeued).To(BeEmpty())
		})

		It("drops jobs for generations that no longer exist", func() {
			msg := queue.Message{ID: "2-0", TaskType: queue.TaskTypeGeneration, GenerationID: 999, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			Expect(processor.processedIDs()).To(BeEmpty())
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("2-0"))
		})

		It("returns an error without acking when the generation cannot be loaded", func() {
			generations.getErr = errors.New("connection reset")
			msg := queue.Message{ID: "3-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1}

			err := w.ProcessMessage(ctx, msg)

			Expect(err).To(MatchError(ContainSubstring("loading generation")))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(BeEmpty())
		})

		It("runs the batch runner for a process_pending job", func() {
			runner.result = generation.BatchResult{Processed: 2, Succeeded: 2}
			msg := queue.Message{ID: "4-0", TaskType: queue.TaskTypeProcessPending, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())

			Expect(runner.callCount()).To(Equal(1))
			acked, _, _ := consumer.snapshot()
			Expect(acked).To(ConsistOf("4-0"))
		})

		It("returns the batch error for a failed process_pending job", func() {
			runner.err = errors.New("db down")
			msg := queue.Message{ID: "5-0", TaskType: queue.TaskTypeProcessPending, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(MatchError(ContainSubstring("db down")))
		})

		It("still succeeds when the ack fails", func() {
			consumer.ackErr = errors.New("redis gone")
			msg := queue.Message{ID: "6-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1}

			Expect(w.ProcessMessage(ctx, msg)).To(Succeed())
			Expect(processor.processedIDs()).To(Equal([]int64{42}))
		})
	})

	Describe("Run", func() {
		runUntil := func(done func() bool) {
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- w.Run(runCtx) }()

			Eventually(done).WithTimeout(2 * time.Second).Should(BeTrue())
			w.Stop()
			Expect(<-errCh).To(Succeed())
		}

		It("processes every message read from the stream", func() {
			generations.generations[43] = &model.Generation{ID: 43, Status: model.GenerationStatusPending}
			consumer.batches = [][]queue.Message{{
				{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1},
				{ID: "1-1", TaskType: queue.TaskTypeGeneration, GenerationID: 43, Attempt: 1},
			}}

			runUntil(func() bool {
				acked, _, _ := consumer.snapshot()
				return len(acked) == 2
			})

			Expect(processor.processedIDs()).To(Equal([]int64{42, 43}))
		})

		It("requeues a failed message below the attempt limit", func() {
			generations.getErr = errors.New("timeout")
			consumer.batches = [][]queue.Message{{
				{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1},
			}}

			runUntil(func() bool {
				_, requeued, _ := consumer.snapshot()
				return len(requeued) == 1
			})

			_, _, dlq := consumer.snapshot()
			Expect(dlq).To(BeEmpty())
		})

		It("sends a failed message to the DLQ on its last attempt", func() {
			generations.getErr = errors.New("timeout")
			consumer.batches = [][]queue.Message{{
				{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 3},
			}}

			runUntil(func() bool {
				_, _, dlq := consumer.snapshot()
				return len(dlq) == 1
			})

			_, requeued, _ := consumer.snapshot()
			Expect(requeued).To(BeEmpty())
		})

		It("recovers from a panicking processor and requeues the message", func() {
			processor.panicWith = "boom"
			consumer.batches = [][]queue.Message{{
				{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1},
			}}

			runUntil(func() bool {
				_, requeued, _ := consumer.snapshot()
				return len(requeued) == 1
			})
		})

		It("keeps running after a read error", func() {
			consumer.readErr = errors.New("NOGROUP")
			consumer.batches = [][]queue.Message{{
				{ID: "1-0", TaskType: queue.TaskTypeGeneration, GenerationID: 42, Attempt: 1},
			}}

			runUntil(func() bool {
				acked, _, _ := consumer.snapshot()
				return len(acked) == 1
			})
		})

		It("returns the context error when the context is cancelled", func() {
			runCtx, cancel := context.WithCancel(ctx)
			errCh := make(chan error, 1)
			go func() { errCh <- w.Run(runCtx) }()

			cancel()

			Eventually(errCh).WithTimeout(time.Second).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
