package advanceapplicationstatus

import (
	"context"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"jobmarket-workers/internal/common/camunda"
	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

const (
	TaskType = "advance-application-status"
)

type StatusAdvancer interface {
	AdvanceStatus(ctx context.Context, actor models.Principal, applicationID, target string) (*models.ApplicationView, error)
}

type Handler struct {
	config     *Config
	engine     StatusAdvancer
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine StatusAdvancer, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		engine:     engine,
		errHandler: apperrors.NewErrorHandler(scoped),
		logger:     scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	output, err := h.process(job)
	camunda.Finish(context.Background(), client, job, TaskType, output, err, h.errHandler, h.logger)
}

func (h *Handler) process(job entities.Job) (*Output, error) {
	if result := validation.ValidateJSON(job.Variables, GetInputSchema()); !result.Valid {
		return nil, apperrors.NewInvalidArgumentError("Invalid status update input", strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return h.Execute(ctx, &input)
}

// Execute applies the employer transition. Final reports whether the
// application can no longer change.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	view, err := h.engine.AdvanceStatus(ctx, models.Principal{Email: input.ActorEmail}, input.ApplicationID, input.Status)
	if err != nil {
		return nil, err
	}

	h.logger.Info("application status advanced", map[string]interface{}{
		"applicationId": view.ID,
		"status":        view.Status,
	})

	return &Output{
		ApplicationID:     view.ID,
		ApplicationStatus: view.Status,
		Final:             view.Status.IsFinal(),
		Application:       view,
	}, nil
}
