package listjobapplications

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
	TaskType = "list-job-applications"
)

type JobLister interface {
	ListForJob(ctx context.Context, actor models.Principal, jobPostingID, statusFilter string, page, pageSize int) (*models.ApplicationPage, error)
}

type Handler struct {
	config     *Config
	engine     JobLister
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, engine JobLister, log logger.Logger) *Handler {
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	page, err := h.engine.ListForJob(ctx, models.Principal{Email: input.ActorEmail},
		input.JobPostingID, input.Status, input.Page, input.PageSize)
	if err != nil {
		return nil, err
	}

	h.logger.Debug("listed job applications", map[string]interface{}{
		"jobPostingId": input.JobPostingID,
		"total":        page.TotalElements,
	})

	return &Output{
		Applications:  page.Items,
		Page:          page.Page,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
	}, nil
}
