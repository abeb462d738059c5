package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
)

const (
	JobsTopic     = "jobs"
	TaskTypeQuery = "query"
)

type JobService struct {
	publisher message.Publisher
	repo      JobRepository
	logger    watermill.LoggerAdapter
	processor system.Processor
}

type JobMessage struct {
	JobID    int             `json:"job_id"`
	TaskType string          `json:"task_type"`
	Payload  json.RawMessage `json:"payload"`
}

// QueryPayload is the payload of a query job.
type QueryPayload struct {
	Query    string `json:"query"`
	Evaluate bool   `json:"evaluate"`
}

// NewJobService wires the queue and the store. processor may be nil for
// services that only enqueue.
func NewJobService(
	publisher message.Publisher,
	repo JobRepository,
	logger watermill.LoggerAdapter,
	processor system.Processor,
) *JobService {
	return &JobService{
		publisher: publisher,
		repo:      repo,
		logger:    logger,
		processor: processor,
	}
}

// EnqueueJob creates a new job and publishes it to the message queue
func (s *JobService) EnqueueJob(ctx context.Context, taskType string, payload json.RawMessage) (*Job, error) {
	job, err := s.repo.Create(ctx, taskType, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	jobMsg := JobMessage{
		JobID:    job.ID,
		TaskType: job.TaskType,
		Payload:  job.Payload,
	}

	msgPayload, err := json.Marshal(jobMsg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), msgPayload)
	msg.SetContext(ctx)
	if err := s.publisher.Publish(JobsTopic, msg); err != nil {
		return nil, fmt.Errorf("failed to publish job message: %w", err)
	}

	return job, nil
}

// EnqueueQuery schedules query for background processing.
func (s *JobService) EnqueueQuery(ctx context.Context, query string, evaluate bool) (*Job, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	payload, err := json.Marshal(QueryPayload{Query: query, Evaluate: evaluate})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query payload: %w", err)
	}
	return s.EnqueueJob(ctx, TaskTypeQuery, payload)
}

// ProcessJobMessage processes a job message from the queue
func (s *JobService) ProcessJobMessage(msg *message.Message) error {
	var jobMsg JobMessage
	if err := json.Unmarshal(msg.Payload, &jobMsg); err != nil {
		return fmt.Errorf("failed to unmarshal job message: %w", err)
	}

	ctx := msg.Context()

	job, err := s.repo.Get(ctx, jobMsg.JobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return fmt.Errorf("%w: %d", ErrJobNotFound, jobMsg.JobID)
	}

	if err := s.repo.UpdateStatus(ctx, job.ID, JobStatusRunning, nil); err != nil {
		return fmt.Errorf("failed to update job status to running: %w", err)
	}

	result, err := s.processJob(ctx, job)
	if err != nil {
		errStr := err.Error()
		if updateErr := s.repo.UpdateStatus(ctx, job.ID, JobStatusFailed, &errStr); updateErr != nil {
			s.logger.Error("Failed to update job status to failed", updateErr, watermill.LogFields{
				"job_id": job.ID,
			})
		}
		return fmt.Errorf("failed to process job: %w", err)
	}

	if err := s.repo.Complete(ctx, job.ID, result); err != nil {
		return fmt.Errorf("failed to update job status to completed: %w", err)
	}

	s.logger.Info("Job completed", watermill.LogFields{
		"job_id":    job.ID,
		"task_type": job.TaskType,
	})
	return nil
}

// processJob handles different types of jobs
func (s *JobService) processJob(ctx context.Context, job *Job) (json.RawMessage, error) {
	switch job.TaskType {
	case TaskTypeQuery:
		if s.processor == nil {
			return nil, errors.New("no query processor configured")
		}
		var payload QueryPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal query payload: %w", err)
		}
		result, err := s.processor.ProcessQuery(ctx, payload.Query, payload.Evaluate)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	default:
		return nil, fmt.Errorf("unknown task type: %s", job.TaskType)
	}
}

// Get returns the job with id.
func (s *JobService) Get(ctx context.Context, id int) (*Job, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %d", ErrJobNotFound, id)
	}
	return job, nil
}

// Result shapes the stored result of a query job. It returns nil while the
// job has not completed.
func (s *JobService) Result(ctx context.Context, id int) (*Job, *schema.QueryResult, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var payload QueryPayload
	_ = json.Unmarshal(job.Payload, &payload)

	switch job.Status {
	case JobStatusCompleted:
		var raw map[string]any
		if err := json.Unmarshal(job.Result, &raw); err != nil {
			return job, schema.NewEmptyResult(payload.Query, fmt.Sprintf("Schema conversion failed: %v", err)), nil
		}
		return job, schema.FromRaw(raw, payload.Query), nil
	case JobStatusFailed:
		msg := "Query processing failed"
		if job.Error != nil {
			msg = *job.Error
		}
		return job, schema.NewEmptyResult(payload.Query, msg), nil
	}
	return job, nil, nil
}
