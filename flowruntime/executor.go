// Package flowruntime hydrates a flattened Blueprint against a step
// registry and executes it: arrival-counter scheduling, the per-node
// resiliency envelope (retries, timeout, fallback), context propagation,
// and event emission, per spec §4.4/§5.
package flowruntime

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/emit"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Dependencies is the ambient dependency-injection record every node
// handle carries (spec §4.4): HTTP clients, model clients, an event
// waiter, a webhook provider, anything a step or built-in needs besides
// the context.
type Dependencies map[string]any

// EventWaiter resolves a durable.WaitForEvent call. The default (nil) wait
// dependency returns immediately with a nil payload: there is no event
// source wired by default, matching the built-in registry's "wait" kind
// having no opinion about where events come from.
type EventWaiter interface {
	Await(ctx context.Context, eventName string) (any, error)
}

// WebhookProvider resolves a durable.CreateWebhook call, returning the
// externally reachable URL and a function that blocks until the webhook
// fires.
type WebhookProvider interface {
	Create(ctx context.Context) (url string, await func(context.Context) (any, error), err error)
}

// Executor runs one flattened Blueprint at a time against a step registry.
type Executor struct {
	steps   map[string]StepFunc
	deps    Dependencies
	emitter emit.Emitter
	metrics *Metrics
}

// Option configures an Executor.
type Option func(*Executor)

// WithDependencies attaches the ambient dependency-injection record.
func WithDependencies(deps Dependencies) Option {
	return func(e *Executor) { e.deps = deps }
}

// WithEmitter attaches an event-bus implementation. Defaults to
// emit.NewNullEmitter().
func WithEmitter(em emit.Emitter) Option {
	return func(e *Executor) { e.emitter = em }
}

// WithMetrics attaches a Prometheus metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New builds an Executor over steps (typically manifest.Registry, adapted).
func New(steps map[string]StepFunc, opts ...Option) *Executor {
	e := &Executor{steps: steps, emitter: emit.NewNullEmitter()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunStatus is the terminal state of one execution.
type RunStatus string

const (
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// RunResult is what Run returns: the final context plus metadata, matching
// spec §4.4's "{context, metadata: {status, startedAt, completedAt,
// duration, error?}}".
type RunResult struct {
	Context     *blueprint.Context
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Err         error
}

// run carries per-execution mutable state through the recursive walk.
type run struct {
	bp      *blueprint.Blueprint
	ctx     *blueprint.Context
	execID  string
	joins   *joinTracker
	emitter emit.Emitter
	metrics *Metrics

	mu      sync.Mutex
	failed  error
	started time.Time
}

func (r *run) aborted() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *run) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failed == nil {
		r.failed = err
	}
}

func (r *run) emitEvent(nodeID, msg string, meta map[string]any) {
	r.emitter.Emit(emit.Event{ExecutionID: r.execID, BlueprintID: r.bp.ID, NodeID: nodeID, Msg: msg, Meta: meta})
}

// Run hydrates bp against the executor's step registry and executes it to
// completion, starting at bp.StartNodeID with no input.
func (e *Executor) Run(ctx context.Context, bp *blueprint.Blueprint) (*RunResult, error) {
	if err := hydrate(bp, e.steps); err != nil {
		return nil, err
	}

	execID := uuid.NewString()
	meta := blueprint.Metadata{ExecutionID: execID, BlueprintID: bp.ID, CurrentNodeID: bp.StartNodeID, StartedAt: time.Now()}
	r := &run{
		bp:      bp,
		ctx:     blueprint.NewContext(meta),
		execID:  execID,
		joins:   newJoinTracker(),
		emitter: e.emitter,
		metrics: e.metrics,
		started: meta.StartedAt,
	}

	r.emitEvent("", "workflow:start", nil)
	err := e.runFrom(ctx, r, bp.StartNodeID, nil)
	if err == nil {
		err = r.aborted()
	}

	completed := time.Now()
	result := &RunResult{
		Context:     r.ctx,
		StartedAt:   r.started,
		CompletedAt: completed,
		Duration:    completed.Sub(r.started),
	}
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		r.emitEvent("", "workflow:finish", map[string]any{"status": string(StatusFailed), "error": err.Error()})
		return result, err
	}
	result.Status = StatusSucceeded
	r.emitEvent("", "workflow:finish", map[string]any{"status": string(StatusSucceeded)})
	return result, nil
}

// runFrom executes nodeID with the given input, then propagates its output
// to every selected successor, recursing synchronously (this is the
// "single-threaded cooperative" event loop of spec §5) except for a
// parallel-container node's branches, which fan out concurrently via
// errgroup before the walk continues.
func (e *Executor) runFrom(ctx context.Context, r *run, nodeID string, input any) error {
	if err := ctx.Err(); err != nil {
		r.fail(fmt.Errorf("%w: %v", ErrAborted, err))
		return r.failed
	}
	if err := r.aborted(); err != nil {
		return err
	}

	node, ok := r.bp.NodeByID(nodeID)
	if !ok {
		return fmt.Errorf("flowruntime: unknown node %q", nodeID)
	}
	// This round's arrival condition for nodeID (if any) was already
	// satisfied by the caller (deliver) or this is the start node; clear its
	// bookkeeping now so a later round (a loop iteration revisiting this
	// same node) starts from a clean slate instead of finding itself
	// permanently "already started".
	r.joins.reset(nodeID)

	r.ctx.Meta.CurrentNodeID = nodeID
	start := time.Now()
	r.emitEvent(nodeID, "node:start", nil)

	output, action, err := e.execNode(ctx, r, node, input)

	if r.metrics != nil {
		r.metrics.ObserveNode(r.bp.ID, nodeID, time.Since(start), err == nil)
	}

	if err != nil {
		if node.Config != nil && node.Config.Fallback != "" {
			r.emitEvent(nodeID, "node:fallback", map[string]any{"error": err.Error(), "fallback": node.Config.Fallback})
			return e.deliver(ctx, r, nodeID, node.Config.Fallback, err)
		}
		r.emitEvent(nodeID, "node:error", map[string]any{"error": err.Error()})
		wrapped := &NodeExecutionError{NodeID: nodeID, BlueprintID: r.bp.ID, ExecutionID: r.execID, Cause: err}
		r.fail(wrapped)
		return wrapped
	}
	r.emitEvent(nodeID, "node:finish", nil)

	if node.Uses == blueprint.UsesParallelRoot {
		return e.runParallel(ctx, r, node, output)
	}

	targets := selectEdges(r.bp, r.ctx, nodeID, action)
	if len(targets) == 0 {
		return nil
	}
	for _, target := range targets {
		if err := e.deliver(ctx, r, nodeID, target, output); err != nil {
			return err
		}
	}
	return nil
}

// deliver records fromNodeID's output arriving at targetNodeID and, once
// targetNodeID's join condition is satisfied, continues the walk there.
func (e *Executor) deliver(ctx context.Context, r *run, fromNodeID, targetNodeID string, output any) error {
	target, ok := r.bp.NodeByID(targetNodeID)
	if !ok {
		return fmt.Errorf("flowruntime: edge targets unknown node %q", targetNodeID)
	}
	joinAll := target.Config != nil && target.Config.JoinStrategy == blueprint.JoinAll
	required := r.bp.PredecessorCountMap[targetNodeID]

	runnable, combined := r.joins.arrive(targetNodeID, fromNodeID, output, required, joinAll)
	if !runnable {
		return nil
	}

	var nextInput any = combined
	if joinAll {
		order := predecessorOrder(r.bp, targetNodeID)
		nextInput = orderInputs(order, combined.(map[string]any))
	}
	return e.runFrom(ctx, r, targetNodeID, nextInput)
}

func predecessorOrder(bp *blueprint.Blueprint, nodeID string) []string {
	in := bp.IncomingEdges(nodeID)
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, e := range in {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	return out
}

// runParallel fans node's direct successors out as concurrent branches
// (spec §4.4's parallel-container "nodesToRun"), joining via errgroup
// before returning. Each branch continues the ordinary recursive walk, so
// convergence on a shared join/gather node downstream is handled by the
// same joinTracker, now genuinely exercised under concurrency.
func (e *Executor) runParallel(ctx context.Context, r *run, node blueprint.NodeDefinition, output any) error {
	targets := r.bp.OutgoingEdges(node.ID)
	if r.metrics != nil {
		r.metrics.SetInflight(len(targets))
		defer r.metrics.SetInflight(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, edge := range targets {
		target := edge.Target
		g.Go(func() error {
			return e.deliver(gctx, r, node.ID, target, output)
		})
	}
	return g.Wait()
}

// selectEdges implements spec §4.4 point 3: an action string selects the
// matching edge(s); otherwise edges carrying a condition are evaluated
// against the current context and those that hold are selected. Edges with
// neither are selected only when the node has no conditional edges at all.
func selectEdges(bp *blueprint.Blueprint, ctx *blueprint.Context, nodeID, action string) []string {
	edges := bp.OutgoingEdges(nodeID)
	if action != "" {
		var out []string
		for _, e := range edges {
			if e.Action == action {
				out = append(out, e.Target)
			}
		}
		return out
	}

	var conditional []blueprint.EdgeDefinition
	var def []string
	for _, e := range edges {
		if e.Action != "" {
			continue
		}
		if e.Condition != "" {
			conditional = append(conditional, e)
			continue
		}
		def = append(def, e.Target)
	}
	if len(conditional) == 0 {
		return def
	}
	var out []string
	for _, e := range conditional {
		ok, err := EvalBool(e.Condition, ctx)
		if err == nil && ok {
			out = append(out, e.Target)
		}
	}
	return out
}

// execNode dispatches one node to its built-in or user-registered
// implementation and returns its output, selected action, and error.
func (e *Executor) execNode(ctx context.Context, r *run, node blueprint.NodeDefinition, input any) (any, string, error) {
	switch node.Uses {
	case blueprint.UsesStart, blueprint.UsesNoop, blueprint.UsesJoin, blueprint.UsesGather,
		blueprint.UsesConditionalJoin, blueprint.UsesOutputMapper, blueprint.UsesParallelRoot:
		return input, "", nil

	case blueprint.UsesSubflow:
		return nil, "", fmt.Errorf("flowruntime: encountered an unflattened subflow node %q; graphbuilder.Flatten must run before execution", node.ID)

	case blueprint.UsesInputMapper:
		return e.execInputMapper(r, node), "", nil

	case blueprint.UsesLoopController:
		return e.execLoopController(r, node)

	case blueprint.UsesSleep:
		out, err := runWithResiliency(ctx, node.Config, func(ctx context.Context) (any, error) {
			return nil, e.execSleep(ctx, r, node)
		}, e.retryRecorder(r, node.ID))
		return out, "", err

	case blueprint.UsesWait:
		out, err := runWithResiliency(ctx, node.Config, func(ctx context.Context) (any, error) {
			return e.execWait(ctx, r, node)
		}, e.retryRecorder(r, node.ID))
		return out, "", err

	case blueprint.UsesWebhook:
		out, err := runWithResiliency(ctx, node.Config, func(ctx context.Context) (any, error) {
			return e.execWebhook(ctx, r, node)
		}, e.retryRecorder(r, node.ID))
		return out, "", err

	default:
		fn, ok := e.steps[node.Uses]
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", ErrUnknownUses, node.Uses)
		}
		args := e.resolveArgs(r, node)
		handle := &NodeHandle{ctx: r.ctx, input: input, args: args, deps: e.deps}
		out, err := runWithResiliency(ctx, node.Config, func(ctx context.Context) (any, error) {
			return fn(ctx, handle)
		}, e.retryRecorder(r, node.ID))
		return out, "", err
	}
}

func (e *Executor) retryRecorder(r *run, nodeID string) func(attempt int, err error) {
	return func(attempt int, err error) {
		r.emitEvent(nodeID, "node:retry", map[string]any{"attempt": attempt, "error": err.Error()})
		if r.metrics != nil {
			r.metrics.ObserveRetry(r.bp.ID, nodeID)
		}
	}
}

func (e *Executor) resolveArgs(r *run, node blueprint.NodeDefinition) []any {
	return evalOrderedArgs(node.Params, r.ctx)
}

func evalOrderedArgs(params map[string]any, ctx *blueprint.Context) []any {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.HasPrefix(k, "arg") {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, _ := strconv.Atoi(strings.TrimPrefix(keys[i], "arg"))
		nj, _ := strconv.Atoi(strings.TrimPrefix(keys[j], "arg"))
		return ni < nj
	})
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		text, _ := params[k].(string)
		v, err := EvalValue(text, ctx)
		if err != nil {
			out = append(out, nil)
			continue
		}
		out = append(out, v)
	}
	return out
}

func (e *Executor) execInputMapper(r *run, node blueprint.NodeDefinition) []any {
	argsParam, _ := node.Params["args"].(map[string]any)
	return evalOrderedArgs(argsParam, r.ctx)
}

func (e *Executor) execLoopController(r *run, node blueprint.NodeDefinition) (any, string, error) {
	rangeExpr, isRange := node.Params["range"].(string)
	if isRange {
		return e.execRangeController(r, node, rangeExpr)
	}
	condText, _ := node.Params["condition"].(string)
	ok, err := EvalBool(condText, r.ctx)
	if err != nil {
		return nil, "", err
	}
	if ok {
		return nil, "true", nil
	}
	return nil, "false", nil
}

func (e *Executor) execRangeController(r *run, node blueprint.NodeDefinition, rangeExpr string) (any, string, error) {
	collection, err := EvalValue(rangeExpr, r.ctx)
	if err != nil {
		return nil, "", err
	}
	idxKey := "__range_idx_" + node.ID
	idx := 0
	if v, ok := r.ctx.Get(idxKey); ok {
		idx, _ = v.(int)
	}

	v := reflect.ValueOf(collection)
	length := 0
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.String:
		length = v.Len()
	case reflect.Map:
		length = v.Len()
	default:
		return nil, "", fmt.Errorf("flowruntime: range expression %q is not iterable (%T)", rangeExpr, collection)
	}

	if idx >= length {
		r.ctx.Set(idxKey, 0) // reset so a re-entrant outer loop iterates again
		return nil, "false", nil
	}

	if key, ok := node.Params["rangeKey"].(string); ok {
		r.ctx.Set(key, rangeElementKey(v, idx))
	}
	if val, ok := node.Params["rangeValue"].(string); ok {
		r.ctx.Set(val, rangeElementValue(v, idx))
	}
	r.ctx.Set(idxKey, idx+1)
	return nil, "true", nil
}

func rangeElementKey(v reflect.Value, idx int) any {
	if v.Kind() == reflect.Map {
		return v.MapKeys()[idx].Interface()
	}
	return idx
}

func rangeElementValue(v reflect.Value, idx int) any {
	if v.Kind() == reflect.Map {
		return v.MapIndex(v.MapKeys()[idx]).Interface()
	}
	return v.Index(idx).Interface()
}

func (e *Executor) execSleep(ctx context.Context, r *run, node blueprint.NodeDefinition) error {
	var d time.Duration
	if text, ok := node.Params["duration"].(string); ok && text != "" {
		var err error
		d, err = EvalDuration(text, r.ctx)
		if err != nil {
			return err
		}
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) execWait(ctx context.Context, r *run, node blueprint.NodeDefinition) (any, error) {
	waiter, ok := e.deps["eventWaiter"].(EventWaiter)
	if !ok {
		return nil, nil
	}
	eventName, _ := node.Params["eventName"].(string)
	return waiter.Await(ctx, eventName)
}

func (e *Executor) execWebhook(ctx context.Context, r *run, node blueprint.NodeDefinition) (any, error) {
	provider, ok := e.deps["webhookProvider"].(WebhookProvider)
	if !ok {
		return nil, nil
	}
	_, await, err := provider.Create(ctx)
	if err != nil {
		return nil, err
	}
	return await(ctx)
}
