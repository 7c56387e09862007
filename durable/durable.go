// Package durable is the vocabulary flow source files write against: sleep,
// wait-for-event, webhooks, scatter-gather, and try/catch. The analyzer
// recognises calls into this package by name and lowers them to graph
// structure instead of executing them; the bodies here exist so a flow file
// type-checks like any other Go package and so a reader unfamiliar with the
// compiler still understands what a call means by reading its signature.
package durable

import (
	"context"
	"fmt"
	"time"
)

// Sleep suspends the calling flow for d. The analyzer lowers a call of this
// exact shape to a "sleep" node; it is never actually invoked at runtime
// through this function body.
func Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitForEvent suspends the flow until an external signal named eventName
// arrives, returning its payload. Lowers to a "wait" node.
func WaitForEvent(ctx context.Context, eventName string) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// Webhook is the handle returned by CreateWebhook: a durable callback URL a
// flow can hand to an external system and then await.
type Webhook struct {
	URL string
}

// CreateWebhook mints a callback URL and a handle to await its first
// invocation. Lowers to a "webhook" node.
func CreateWebhook(ctx context.Context) (*Webhook, error) {
	return &Webhook{URL: "about:blank"}, nil
}

// Await blocks until the webhook has been invoked, returning the request
// body delivered to it.
func (w *Webhook) Await(ctx context.Context) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// Gather runs each call concurrently and returns their results in argument
// order once every call has completed, the scatter-gather analogue of
// Promise.all. Lowers to a fan-out from the current node into a "gather"
// node configured with an all-join strategy.
func Gather(calls ...func() (any, error)) ([]any, error) {
	type outcome struct {
		idx int
		val any
		err error
	}
	results := make([]any, len(calls))
	done := make(chan outcome, len(calls))
	for i, call := range calls {
		i, call := i, call
		go func() {
			v, err := call()
			done <- outcome{idx: i, val: v, err: err}
		}()
	}
	var firstErr error
	for range calls {
		o := <-done
		results[o.idx] = o.val
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Try runs try and, if it returns a non-nil error, runs catch with that
// error instead of propagating it. Lowers to a node chain whose fallback
// configuration points at catch's first node.
func Try(try func() error, catch func(err error)) error {
	if err := try(); err != nil {
		if catch != nil {
			catch(err)
			return nil
		}
		return fmt.Errorf("durable: unhandled error in try block: %w", err)
	}
	return nil
}
