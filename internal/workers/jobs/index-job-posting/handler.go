package indexjobposting

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

const TaskType = "index-job-posting"

type PostingReader interface {
	Get(ctx context.Context, id string) (*models.JobPosting, error)
}

type PostingIndex interface {
	Index(ctx context.Context, posting *models.JobPosting) error
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	config     *Config
	postings   PostingReader
	index      PostingIndex
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, postings PostingReader, index PostingIndex, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		postings:   postings,
		index:      index,
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
		return nil, apperrors.NewInvalidArgumentError("Invalid index input", strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := camunda.DecodeVariables(job, &input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	return h.Execute(ctx, &input)
}

// Execute mirrors one posting into the index. Postings of every status are
// indexed because search filters on status itself; a posting that no longer
// exists is removed.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	posting, err := h.postings.Get(ctx, input.JobPostingID)
	if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		if err := h.index.Delete(ctx, input.JobPostingID); err != nil {
			return nil, err
		}
		h.logger.Info("posting removed from index", map[string]interface{}{"jobPostingId": input.JobPostingID})
		return &Output{JobPostingID: input.JobPostingID, Action: ActionDeleted}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := h.index.Index(ctx, posting); err != nil {
		return nil, err
	}

	h.logger.Info("posting indexed", map[string]interface{}{
		"jobPostingId": posting.ID,
		"status":       posting.Status,
	})
	return &Output{JobPostingID: posting.ID, Action: ActionIndexed, Status: string(posting.Status)}, nil
}
