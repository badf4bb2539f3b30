package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
)

type JobController struct {
	jobs JobQueue
}

func NewJobController(jobs JobQueue) *JobController {
	return &JobController{jobs: jobs}
}

// HandleGetJob reports status and result of a queued sync.
func (jc *JobController) HandleGetJob(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondBadRequest(c, "Missing job id", nil)
	}
	if jc.jobs == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Error: "JobQueueUnavailable", Message: "Job queue is not running"})
	}

	job, err := jc.jobs.GetJob(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", job)
}

type queueStats struct {
	Pending    int64                        `json:"pending"`
	Processing int64                        `json:"processing"`
	Statuses   map[jobqueue.JobStatus]int64 `json:"statuses"`
}

// HandleJobStats reports queue depth and the per-status job counters.
func (jc *JobController) HandleJobStats(c *fiber.Ctx) error {
	if jc.jobs == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(Response{Error: "JobQueueUnavailable", Message: "Job queue is not running"})
	}

	ctx := c.UserContext()
	pending, err := jc.jobs.GetQueueSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	processing, err := jc.jobs.GetProcessingSize(ctx)
	if err != nil {
		return respondError(c, err)
	}
	statuses, err := jc.jobs.GetJobStats(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", queueStats{Pending: pending, Processing: processing, Statuses: statuses})
}
