// internal/workers/product/top-stock-report/handler.go
package topstockreport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"golang.org/x/sync/errgroup"

	apperrors "franchise-inventory/internal/common/errors"
	"franchise-inventory/internal/common/logger"
	"franchise-inventory/internal/common/metrics"
	"franchise-inventory/internal/inventory"
	"franchise-inventory/internal/models"
)

const (
	TaskType = "top-stock-report"
)

type Service interface {
	TopStockProductPerBranchWithName(ctx context.Context, franchiseID string) ([]inventory.BranchTopProduct, error)
	TopStockProductsGlobal(ctx context.Context, franchiseID string, n int) ([]models.Product, error)
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
	now       func() time.Time
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
		now:       time.Now,
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

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
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

// execute builds both rankings concurrently. A zero limit uses the service
// default.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Limit < 0 {
		return nil, apperrors.NewInvalidInputError("limit must not be negative")
	}

	var (
		perBranch []inventory.BranchTopProduct
		global    []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		perBranch, err = h.svc.TopStockProductPerBranchWithName(gctx, input.FranchiseID)
		return err
	})
	g.Go(func() error {
		var err error
		global, err = h.svc.TopStockProductsGlobal(gctx, input.FranchiseID, input.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{
		FranchiseID: input.FranchiseID,
		PerBranch:   make([]Entry, 0, len(perBranch)),
		Global:      make([]Entry, 0, len(global)),
		GeneratedAt: h.now().UTC().Format(time.RFC3339),
	}
	for _, p := range perBranch {
		e := entry(p.Product)
		e.BranchName = p.BranchName
		out.PerBranch = append(out.PerBranch, e)
	}
	for _, p := range global {
		out.Global = append(out.Global, entry(p))
	}

	h.logger.Info("top stock report built", map[string]interface{}{
		"franchiseId": input.FranchiseID,
		"branches":    len(out.PerBranch),
		"global":      len(out.Global),
	})
	return out, nil
}

func entry(p models.Product) Entry {
	return Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		BranchID:  p.BranchID,
	}
}
