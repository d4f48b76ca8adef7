package gpu

import (
	"fmt"

	"github.com/gogpu/drawpipe/geom"
)

// RenderFlags modify FillRTWithFP.
type RenderFlags uint32

const (
	// RenderFlagClear clears the target to transparent before drawing.
	RenderFlagClear RenderFlags = 1 << iota
)

// FlushResult counts the outcome of the tasks run by one Flush.
type FlushResult struct {
	Completed int
	Failed    int
}

// DrawingManager queues render tasks and runs them on Flush in the order
// they were added.
type DrawingManager struct {
	ctx   *Context
	tasks []RenderTask
	pass  *RenderPass
}

func newDrawingManager(ctx *Context) *DrawingManager {
	return &DrawingManager{ctx: ctx, pass: newRenderPass(ctx)}
}

// NumTasks returns the number of queued tasks.
func (dm *DrawingManager) NumTasks() int { return len(dm.tasks) }

// AddTask queues a recorded task. The task holds references to its
// target and inputs until the flush that runs it ends.
func (dm *DrawingManager) AddTask(task RenderTask) error {
	if dm.ctx.released {
		return ErrContextReleased
	}
	b := task.taskBase()
	if b.state != TaskRecorded {
		return fmt.Errorf("%w: %q is %s", ErrTaskNotQueued, b.label, b.state)
	}
	b.queue()
	dm.tasks = append(dm.tasks, task)
	return nil
}

// AddOpsTask queues a task drawing ops into target and returns it. More
// ops may be added until the next flush.
func (dm *DrawingManager) AddOpsTask(target *RenderTargetProxy, ops ...DrawOp) *OpsRenderTask {
	task := NewOpsRenderTask("OpsRenderTask", target, ops...)
	if err := dm.AddTask(task); err != nil {
		return nil
	}
	return task
}

// AddRuntimeDrawTask queues a runtime effect draw into target.
func (dm *DrawingManager) AddRuntimeDrawTask(target *RenderTargetProxy, effect RuntimeEffect, inputs []*TextureProxy, offset geom.Point) *RuntimeDrawTask {
	task := NewRuntimeDrawTask(target, effect, inputs, offset)
	if err := dm.AddTask(task); err != nil {
		return nil
	}
	return task
}

// FillRTWithFP queues a full-target draw of fp, replacing the target's
// pixels. It returns false if nothing could be queued.
func (dm *DrawingManager) FillRTWithFP(target *RenderTargetProxy, fp FragmentProcessor, flags RenderFlags) bool {
	if target == nil || fp == nil {
		return false
	}
	task := NewOpsRenderTask("FillRTWithFP", target)
	if flags&RenderFlagClear != 0 {
		task.AddOp(&ClearOp{})
	}
	op := NewFillRectOp(geom.MakeWH(float64(target.Width()), float64(target.Height())), ColorWhite, fp)
	op.BlendMode = BlendModeSrc
	task.AddOp(op)
	return dm.AddTask(task) == nil
}

// Flush runs every queued task in order, then submits the recorded work.
// A failing task is logged and marked failed; the remaining tasks still
// run. The returned error reports only a failed submission.
func (dm *DrawingManager) Flush() (FlushResult, error) {
	var result FlushResult
	tasks := dm.tasks
	dm.tasks = nil
	for _, task := range tasks {
		if dm.execute(task) {
			result.Completed++
		} else {
			result.Failed++
		}
	}
	for _, task := range tasks {
		task.taskBase().release()
	}
	if len(tasks) == 0 {
		dm.ctx.programs.releaseRetired()
		return result, nil
	}
	err := dm.ctx.backend.Submit(dm.ctx.opts.SyncSubmit)
	// Programs evicted while recording are released only now, after the
	// commands that bound them have left the encoder.
	dm.ctx.programs.releaseRetired()
	if err != nil {
		return result, fmt.Errorf("submit: %w", err)
	}
	slogger().Debug("gpu: flush", "completed", result.Completed, "failed", result.Failed)
	return result, nil
}

func (dm *DrawingManager) execute(task RenderTask) bool {
	b := task.taskBase()
	if b.state != TaskQueued {
		b.state, b.err = TaskFailed, fmt.Errorf("%w: %q is %s", ErrTaskNotQueued, b.label, b.state)
		return false
	}
	b.state = TaskExecuting
	err := task.Execute(dm.pass)
	if dm.pass.Active() {
		if endErr := dm.pass.End(); err == nil {
			err = endErr
		}
	}
	if err != nil {
		b.state, b.err = TaskFailed, err
		slogger().Warn("gpu: render task failed", "task", b.label, "err", err)
		return false
	}
	b.state = TaskCompleted
	return true
}

// discardAll drops queued tasks without running them.
func (dm *DrawingManager) discardAll() {
	for _, task := range dm.tasks {
		b := task.taskBase()
		b.release()
		b.state = TaskFailed
		b.err = ErrContextReleased
	}
	dm.tasks = nil
}
