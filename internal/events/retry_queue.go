package events

import "time"

type retryQueue struct {
	out  chan<- publishJob
	done <-chan struct{}
}

func newRetryQueue(out chan<- publishJob, done <-chan struct{}) *retryQueue {
	return &retryQueue{out: out, done: done}
}

func (q *retryQueue) Enqueue(job publishJob, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	time.AfterFunc(delay, func() {
		select {
		case <-q.done:
			metricEventsRetryDroppedTotal.Add(1)
			return
		case q.out <- job:
			metricEventsQueueLen.Set(int64(len(q.out)))
		}
	})
}
