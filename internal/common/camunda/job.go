package camunda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/metrics"
)

// DecodeVariables unmarshals the job variables into out. Malformed variables
// are an INVALID_ARGUMENT error.
func DecodeVariables(job entities.Job, out interface{}) error {
	raw := job.Variables
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.NewInvalidArgumentError("Invalid job variables", fmt.Sprintf("parse input: %v", err))
	}
	return nil
}

// CompleteJob completes the job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// Finish completes the job on success or routes err through the error handler,
// counting the outcome for taskType.
func Finish(ctx context.Context, client worker.JobClient, job entities.Job, taskType string, output interface{}, err error, errHandler *apperrors.ErrorHandler, log logger.Logger) {
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(taskType, string(apperrors.CodeOf(err))).Inc()
		errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := CompleteJob(ctx, client, job, output); err != nil {
		log.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	log.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}
