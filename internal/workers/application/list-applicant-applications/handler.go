package listapplicantapplications

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
	TaskType = "list-applicant-applications"
)

type ApplicantLister interface {
	ListForApplicant(ctx context.Context, actor models.Principal) ([]models.ApplicationView, error)
}

type Handler struct {
	config     *Config
	engine     ApplicantLister
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine ApplicantLister, log logger.Logger) *Handler {
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
		return nil, apperrors.NewInvalidArgumentError("Invalid list input", strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return h.Execute(ctx, &input)
}

// Execute lists the caller's applications newest first. An applicant with no
// applications gets an empty list, never null.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	views, err := h.engine.ListForApplicant(ctx, models.Principal{Email: input.ActorEmail})
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []models.ApplicationView{}
	}
	return &Output{Applications: views, Count: len(views)}, nil
}
