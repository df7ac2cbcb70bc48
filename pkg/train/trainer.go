// Package train fits a multi-layer perceptron to a set of samples with
// full-batch gradient descent.
//
// Every iteration builds one fresh expression graph per sample. Samples are
// evaluated concurrently, each on its own graph; parameters are only updated
// once every sample has finished.
package train

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/joelsearcy/micrograd-go/pkg/autograd"
	"github.com/joelsearcy/micrograd-go/pkg/data"
	"github.com/joelsearcy/micrograd-go/pkg/nn"
	"github.com/joelsearcy/micrograd-go/pkg/optim"
)

// Report summarizes one iteration. Loss and Predictions are measured before
// the iteration's parameter update.
type Report struct {
	Iteration   int
	Loss        float64
	Predictions []float64
}

// Trainer owns a model, its optimizer and the training samples.
//
// Trainer is NOT safe for concurrent use.
type Trainer struct {
	cfg       Config
	model     *nn.MLP
	opt       optim.Optimizer
	samples   []data.Sample
	logger    *slog.Logger
	runID     string
	iteration int
}

// sampleResult is the outcome of one forward/backward pass.
type sampleResult struct {
	loss  float64
	pred  float64
	grads []float64
}

// New validates cfg and builds the model, optimizer and samples.
//
// Inputs:
//
//	cfg - The run configuration.
//	logger - Logger for progress logs. If nil, uses slog.Default().
func New(cfg Config, logger *slog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	samples, err := cfg.Samples()
	if err != nil {
		return nil, err
	}

	act, err := nn.ActivationByName(cfg.Activation)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	model := nn.NewMLP(cfg.Inputs, cfg.Layers, act, rng)

	opt, err := optim.New(cfg.Optimizer, cfg.LearningRate, len(model.Params()))
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()[:12]
	return &Trainer{
		cfg:     cfg,
		model:   model,
		opt:     opt,
		samples: samples,
		logger:  logger.With(slog.String("run_id", runID)),
		runID:   runID,
	}, nil
}

// Model returns the network being trained.
func (t *Trainer) Model() *nn.MLP {
	return t.model
}

// RunID identifies this trainer in logs.
func (t *Trainer) RunID() string {
	return t.runID
}

// Samples returns the training samples.
func (t *Trainer) Samples() []data.Sample {
	return t.samples
}

// Iteration returns the number of completed iterations.
func (t *Trainer) Iteration() int {
	return t.iteration
}

// Run performs cfg.Iterations steps, calling fn (if non-nil) after each.
// It stops early when ctx is done and returns the last complete report.
func (t *Trainer) Run(ctx context.Context, fn func(Report)) (Report, error) {
	t.logger.Info("training started",
		slog.Int("iterations", t.cfg.Iterations),
		slog.Int("params", len(t.model.Params())),
		slog.Int("samples", len(t.samples)),
		slog.String("optimizer", t.cfg.Optimizer),
		slog.Float64("learning_rate", t.cfg.LearningRate),
	)
	start := time.Now()

	var last Report
	for k := 0; k < t.cfg.Iterations; k++ {
		if err := ctx.Err(); err != nil {
			t.logger.Warn("training canceled", slog.Int("iteration", t.iteration), slog.Any("error", err))
			return last, err
		}

		report, err := t.Step(ctx)
		if err != nil {
			return last, err
		}
		last = report

		if t.cfg.LogEvery > 0 && (k%t.cfg.LogEvery == 0 || k == t.cfg.Iterations-1) {
			t.logger.Info("iteration",
				slog.Int("iteration", report.Iteration),
				slog.Float64("loss", report.Loss),
			)
		}
		if fn != nil {
			fn(report)
		}
	}

	t.logger.Info("training finished",
		slog.Float64("loss", last.Loss),
		slog.Duration("elapsed", time.Since(start)),
	)
	return last, nil
}

// Step runs one full-batch iteration: forward and backward passes for every
// sample, then one optimizer update with the summed gradients.
func (t *Trainer) Step(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "train.Step",
		trace.WithAttributes(
			attribute.String("train.run_id", t.runID),
			attribute.Int("train.iteration", t.iteration),
			attribute.Int("train.samples", len(t.samples)),
		),
	)
	defer span.End()

	params := t.model.Params()
	results := make([]sampleResult, len(t.samples))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(t.cfg.workers())
	for i, s := range t.samples {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			r, err := t.evaluate(s, params)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	// Sum in sample order so the result does not depend on scheduling.
	report := Report{
		Iteration:   t.iteration,
		Predictions: make([]float64, len(results)),
	}
	total := make([]float64, len(params))
	for i, r := range results {
		report.Loss += r.loss
		report.Predictions[i] = r.pred
		for j, g := range r.grads {
			total[j] += g
		}
	}

	t.opt.Step(params, total)
	t.iteration++

	iterationsTotal.Inc()
	lossGauge.Set(report.Loss)
	span.SetAttributes(attribute.Float64("train.loss", report.Loss))

	t.logger.Debug("step complete",
		slog.Int("iteration", report.Iteration),
		slog.Float64("loss", report.Loss),
	)
	return report, nil
}

// evaluate builds a private graph for s, computes the squared error and
// returns the gradient for each of params.
func (t *Trainer) evaluate(s data.Sample, params []*nn.Param) (sampleResult, error) {
	g := autograd.NewGraph()
	b := nn.NewBinding(g)

	pred := t.model.ForwardFloats(b, s.X)[0]
	loss, err := pred.RSub(s.Y).Pow(2)
	if err != nil {
		return sampleResult{}, err
	}

	start := time.Now()
	grads := loss.Backward()
	backwardDuration.Observe(time.Since(start).Seconds())
	graphNodes.Observe(float64(g.Len()))

	return sampleResult{
		loss:  loss.Data(),
		pred:  pred.Data(),
		grads: b.Grads(grads, params),
	}, nil
}

// Predict evaluates the current model on x.
func (t *Trainer) Predict(x []float64) ([]float64, error) {
	if len(x) != t.cfg.Inputs {
		return nil, fmt.Errorf("got %d inputs, want %d", len(x), t.cfg.Inputs)
	}
	return t.model.Predict(x), nil
}
