package navigation_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/zoobzio/capitan"

	"github.com/san-kum/fmriviz/internal/events"
	"github.com/san-kum/fmriviz/internal/navigation"
	"github.com/san-kum/fmriviz/internal/scene"
)

func samples(names ...string) []scene.SampleResult {
	out := make([]scene.SampleResult, len(names))
	for i, n := range names {
		out[i] = scene.SampleResult{Input: n}
	}
	return out
}

func immediate(names ...string) navigation.BuildFunc {
	return func(context.Context) ([]scene.SampleResult, error) {
		return samples(names...), nil
	}
}

// gated blocks until release is closed.
func gated(release <-chan struct{}, names ...string) navigation.BuildFunc {
	return func(context.Context) ([]scene.SampleResult, error) {
		<-release
		return samples(names...), nil
	}
}

func pollStatus(s *navigation.State) func() navigation.Status {
	return func() navigation.Status {
		st, err := s.Poll()
		Expect(err).NotTo(HaveOccurred())
		return st
	}
}

var _ = Describe("State", func() {
	var s *navigation.State

	BeforeEach(func() {
		s = navigation.New()
	})

	Context("before any load", func() {
		It("is empty", func() {
			Expect(s.Status()).To(Equal(navigation.Empty))
			Expect(s.Len()).To(BeZero())
			Expect(s.Elapsed()).To(BeZero())
		})

		It("rejects navigation", func() {
			Expect(s.Next()).To(MatchError(navigation.ErrNotReady))
			Expect(s.Previous()).To(MatchError(navigation.ErrNotReady))
			_, err := s.Current()
			Expect(err).To(MatchError(navigation.ErrNotReady))
		})

		It("polls without changing state", func() {
			Expect(pollStatus(s)()).To(Equal(navigation.Empty))
		})
	})

	Context("while loading", func() {
		var release chan struct{}

		BeforeEach(func() {
			release = make(chan struct{})
			Expect(s.BeginLoad(gated(release, "a", "b"))).To(Succeed())
		})

		AfterEach(func() {
			select {
			case <-release:
			default:
				close(release)
			}
		})

		It("reports loading on every poll", func() {
			Consistently(pollStatus(s), 50*time.Millisecond, 5*time.Millisecond).Should(Equal(navigation.Loading))
		})

		It("rejects navigation instead of queueing it", func() {
			Expect(s.Next()).To(MatchError(navigation.ErrNotReady))
			close(release)
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))
			Expect(s.Cursor()).To(BeZero())
		})

		It("refuses a second load", func() {
			Expect(s.BeginLoad(immediate("c"))).To(MatchError(navigation.ErrLoadInFlight))
		})

		It("tracks elapsed time", func() {
			Eventually(s.Elapsed).Should(BeNumerically(">", 0))
		})
	})

	Context("after a load completes", func() {
		BeforeEach(func() {
			Expect(s.BeginLoad(immediate("a", "b", "c"))).To(Succeed())
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))
		})

		It("installs the sequence at the first sample", func() {
			Expect(s.Len()).To(Equal(3))
			cur, err := s.Current()
			Expect(err).NotTo(HaveOccurred())
			Expect(cur.Input).To(Equal("a"))
			Expect(s.Elapsed()).To(BeZero())
		})

		It("transitions only once", func() {
			Expect(s.Next()).To(Succeed())
			Expect(pollStatus(s)()).To(Equal(navigation.Ready))
			Expect(s.Cursor()).To(Equal(1))
		})

		It("wraps backwards from the first sample", func() {
			Expect(s.Previous()).To(Succeed())
			Expect(s.Cursor()).To(Equal(2))
		})

		It("wraps forwards from the last sample", func() {
			for i := 0; i < 3; i++ {
				Expect(s.Next()).To(Succeed())
			}
			Expect(s.Cursor()).To(BeZero())
		})

		It("keeps the old sequence until a reload finishes", func() {
			Expect(s.Next()).To(Succeed())
			release := make(chan struct{})
			Expect(s.BeginLoad(gated(release, "x", "y"))).To(Succeed())

			Expect(pollStatus(s)()).To(Equal(navigation.Loading))
			Expect(s.Len()).To(Equal(3))
			_, err := s.Current()
			Expect(err).To(MatchError(navigation.ErrNotReady))

			close(release)
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))
			Expect(s.Len()).To(Equal(2))
			Expect(s.Cursor()).To(BeZero())
			cur, _ := s.Current()
			Expect(cur.Input).To(Equal("x"))
		})
	})

	Context("when a load fails", func() {
		boom := errors.New("malformed model")

		It("surfaces the worker error", func() {
			Expect(s.BeginLoad(func(context.Context) ([]scene.SampleResult, error) {
				return nil, boom
			})).To(Succeed())

			var err error
			Eventually(func() error {
				_, err = s.Poll()
				return err
			}).Should(HaveOccurred())
			Expect(errors.Is(err, navigation.ErrLoadFailed)).To(BeTrue())
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(s.Status()).To(Equal(navigation.Empty))
		})
	})

	Context("with an empty sequence", func() {
		It("is ready but has nothing to show", func() {
			Expect(s.BeginLoad(immediate())).To(Succeed())
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))
			Expect(s.Next()).To(MatchError(navigation.ErrNoSamples))
			_, err := s.Current()
			Expect(err).To(MatchError(navigation.ErrNoSamples))
		})
	})

	Context("with a poll timeout", func() {
		It("picks up a load that finishes within the timeout", func() {
			s = navigation.New(navigation.WithPollTimeout(time.Second))
			release := make(chan struct{})
			Expect(s.BeginLoad(gated(release, "a"))).To(Succeed())

			go func() {
				time.Sleep(5 * time.Millisecond)
				close(release)
			}()
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))
		})

		It("never waits longer than the cap", func() {
			s = navigation.New(navigation.WithPollTimeout(time.Hour))
			release := make(chan struct{})
			defer close(release)
			Expect(s.BeginLoad(gated(release, "a"))).To(Succeed())

			start := time.Now()
			Expect(pollStatus(s)()).To(Equal(navigation.Loading))
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})

		It("keeps readers responsive while a poll waits", func() {
			s = navigation.New(navigation.WithPollTimeout(navigation.MaxPollTimeout))
			release := make(chan struct{})
			defer close(release)
			Expect(s.BeginLoad(gated(release, "a"))).To(Succeed())

			polling := make(chan struct{})
			done := make(chan struct{})
			go func() {
				defer GinkgoRecover()
				close(polling)
				_, _ = s.Poll()
				close(done)
			}()
			<-polling
			time.Sleep(5 * time.Millisecond)

			start := time.Now()
			Expect(s.Status()).To(Equal(navigation.Loading))
			Expect(s.Len()).To(BeZero())
			Expect(s.Elapsed()).To(BeNumerically(">", 0))
			Expect(time.Since(start)).To(BeNumerically("<", 20*time.Millisecond))
			Eventually(done).Should(BeClosed())
		})
	})

	Context("events", func() {
		It("emits a completion event carrying the load id", func() {
			var (
				mu  sync.Mutex
				ids []string
			)
			listener := capitan.Hook(events.LoadCompleted, func(_ context.Context, e *capitan.Event) {
				id, _ := events.LoadIDKey.From(e)
				mu.Lock()
				ids = append(ids, id)
				mu.Unlock()
			})
			defer listener.Close()

			Expect(s.BeginLoad(immediate("a"))).To(Succeed())
			Eventually(pollStatus(s)).Should(Equal(navigation.Ready))

			Eventually(func() []string {
				mu.Lock()
				defer mu.Unlock()
				return append([]string(nil), ids...)
			}).Should(ContainElement(s.LoadID()))
		})
	})
})
