// Package thread
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Threading toolkit for long-lived workers: a recursion-tolerant lock, a
// condition variable bound to that lock, a one-shot signal event, a scoped
// lock guard and a managed thread with cooperative-then-forced cancellation.
//
// The intended pattern is one long-lived worker per Thread, coordinated with
// its owner through a RecursiveLock protecting shared state plus either a
// CondVar (repeated wait/notify) or an Event (one-shot "work ready" /
// "shutdown requested"):
//
//	type demuxer struct {
//		*thread.Thread
//		mu    thread.RecursiveLock
//		ready thread.CondVar
//		queue [][]byte
//	}
//
//	func (d *demuxer) action(ctx context.Context) {
//		for d.Running() {
//			g := thread.NewScopedLock(&d.mu)
//			for len(d.queue) == 0 && d.Running() {
//				d.ready.TimedWait(&d.mu, 100)
//			}
//			...
//			g.Release()
//		}
//	}
//
// Ownership of RecursiveLock and main-thread registration is per goroutine.
// A Thread's action runs on a goroutine locked to a dedicated OS thread that
// exits together with it.
package thread
