package listjobapplications

import (
	"context"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "jobmarket-workers/internal/common/errors"
	"jobmarket-workers/internal/common/logger"
	"jobmarket-workers/internal/models"
)

type MockJobLister struct {
	mock.Mock
}

func (m *MockJobLister) ListForJob(ctx context.Context, actor models.Principal, jobPostingID, statusFilter string, page, pageSize int) (*models.ApplicationPage, error) {
	args := m.Called(ctx, actor, jobPostingID, statusFilter, page, pageSize)
	if v := args.Get(0); v != nil {
		return v.(*models.ApplicationPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func newJob(variables string) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 7, Variables: variables}}
}

// ==========================
// Process Tests
// ==========================

func TestHandler_Process_PassesFilterAndPaging(t *testing.T) {
	engine := new(MockJobLister)
	engine.On("ListForJob", mock.Anything, models.Principal{Email: "boss@example.com"}, "job-1", "interview", 1, 2).
		Return(&models.ApplicationPage{
			Items:         []models.ApplicationView{{ID: "app-3"}},
			Page:          1,
			PageSize:      2,
			TotalElements: 3,
			TotalPages:    2,
		}, nil)

	h := NewHandler(LoadConfig(), engine, logger.NewNoOpLogger())
	out, err := h.process(newJob(`{"actorEmail":"boss@example.com","jobPostingId":"job-1","status":"interview","page":1,"pageSize":2}`))

	require.NoError(t, err)
	assert.Equal(t, int64(3), out.TotalElements)
	assert.Equal(t, 2, out.TotalPages)
	require.Len(t, out.Applications, 1)
	engine.AssertExpectations(t)
}

func TestHandler_Process_DefaultsWhenPagingOmitted(t *testing.T) {
	engine := new(MockJobLister)
	engine.On("ListForJob", mock.Anything, mock.Anything, "job-1", "", 0, 0).
		Return(&models.ApplicationPage{Items: []models.ApplicationView{}, PageSize: 20}, nil)

	h := NewHandler(LoadConfig(), engine, logger.NewNoOpLogger())
	out, err := h.process(newJob(`{"actorEmail":"boss@example.com","jobPostingId":"job-1","status":null}`))

	require.NoError(t, err)
	assert.Equal(t, 20, out.PageSize)
	assert.Empty(t, out.Applications)
}

func TestHandler_Process_RejectsInvalidPage(t *testing.T) {
	tests := []struct {
		name      string
		variables string
	}{
		{"negative page", `{"actorEmail":"boss@example.com","jobPostingId":"job-1","page":-1}`},
		{"page beyond result window", `{"actorEmail":"boss@example.com","jobPostingId":"job-1","page":10000}`},
		{"overflowing page", `{"actorEmail":"boss@example.com","jobPostingId":"job-1","page":184467440737095516,"pageSize":100}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := new(MockJobLister)
			h := NewHandler(LoadConfig(), engine, logger.NewNoOpLogger())

			_, err := h.process(newJob(tt.variables))

			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument), "got %v", err)
			engine.AssertNotCalled(t, "ListForJob", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestHandler_Execute_ForeignPosting(t *testing.T) {
	engine := new(MockJobLister)
	engine.On("ListForJob", mock.Anything, mock.Anything, "job-9", "", 0, 0).
		Return(nil, apperrors.NewForbiddenError("You are not allowed to view applications for this job", "jobPostingId: job-9"))

	h := NewHandler(LoadConfig(), engine, logger.NewNoOpLogger())
	_, err := h.Execute(context.Background(), &Input{ActorEmail: "rival@example.com", JobPostingID: "job-9"})

	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeForbidden))
}
