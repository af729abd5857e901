package applicationdashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"jobmarket-workers/internal/common/camunda"
	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/common/validation"
	"jobmarket-workers/internal/models"
)

const TaskType = "application-dashboard"

type Dashboards interface {
	Seeker(ctx context.Context, actor models.Principal) (*models.SeekerDashboard, error)
	Employer(ctx context.Context, actor models.Principal) (*models.EmployerDashboard, error)
}

type Handler struct {
	config     *Config
	dashboards Dashboards
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, dashboards Dashboards, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		dashboards: dashboards,
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
		return nil, apperrors.NewInvalidArgumentError("Invalid dashboard input", strings.Join(result.GetErrorMessages(), "; "))
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
	actor := models.Principal{Email: input.ActorEmail}

	switch input.Role {
	case RoleSeeker:
		d, err := h.dashboards.Seeker(ctx, actor)
		if err != nil {
			return nil, err
		}
		return &Output{Role: RoleSeeker, Seeker: d}, nil
	case RoleEmployer:
		d, err := h.dashboards.Employer(ctx, actor)
		if err != nil {
			return nil, err
		}
		return &Output{Role: RoleEmployer, Employer: d}, nil
	default:
		return nil, apperrors.NewInvalidArgumentError("Unknown dashboard role", fmt.Sprintf("role: %s", input.Role))
	}
}
