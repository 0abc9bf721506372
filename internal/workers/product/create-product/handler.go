// internal/workers/product/create-product/handler.go
package createproduct

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/models"
)

const (
	TaskType = "create-product"
)

type Service interface {
	CreateProduct(ctx context.Context, franchiseID, branchID, name string, stock int) (models.Product, models.ProductLocation, error)
}

type Validator interface {
	Validate(taskType string, vars map[string]interface{}) error
}

type Handler struct {
	config    *Config
	svc       Service
	validator Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, svc Service, validator Validator, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		svc:       svc,
		validator: validator,
		errors:    apperrors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	vars, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, apperrors.NewInvalidInputError("job variables are not a JSON object")
	}
	if h.validator != nil {
		if err := h.validator.Validate(TaskType, vars); err != nil {
			return nil, err
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, apperrors.NewInvalidInputError("parse input: " + err.Error())
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	p, loc, err := h.svc.CreateProduct(ctx, input.FranchiseID, input.BranchID, input.Name, input.Stock)
	if err != nil {
		return nil, err
	}

	h.logger.Info("product created", map[string]interface{}{
		"productId": p.ID,
		"branchId":  p.BranchID,
		"storage":   loc.Strategy(),
	})

	return &Output{
		ProductID: p.ID,
		BranchID:  p.BranchID,
		Name:      p.Name,
		Stock:     p.Stock,
		Storage:   string(loc.Strategy()),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}
