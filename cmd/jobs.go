package cmd

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-amqp/pkg/amqp"

	"ragrouter/src/core/system"
	jobctrl "ragrouter/src/infrastructure/job"
	"ragrouter/src/log"
)

// jobService connects the job table and the AMQP publisher. processor is nil
// for processes that only enqueue.
func (a *application) jobService(processor system.Processor) (*jobctrl.JobService, error) {
	db, err := a.database()
	if err != nil {
		return nil, err
	}

	repo := jobctrl.NewPostgresJobRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}

	logger := log.NewWatermillAdapter("jobs")
	publisher, err := amqp.NewPublisher(amqp.NewDurableQueueConfig(a.settings.AMQP.URL), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create publisher: %w", err)
	}
	a.closers = append(a.closers, publisher.Close)

	return jobctrl.NewJobService(publisher, repo, logger, processor), nil
}
