// # internal/app/convert.go
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"wavetrace/internal/reorder"
	"wavetrace/internal/shared/observability"
	"wavetrace/internal/vcd"
	"wavetrace/internal/verilog"
	"wavetrace/internal/wavedrom"
)

// Result is the outcome of converting one sample.
type Result struct {
	Sample    Sample
	Document  *wavedrom.Document
	Reordered bool
	Err       error
}

// SignalCount returns the number of signal rows in the document, zero on
// failure.
func (r *Result) SignalCount() int {
	if r.Document == nil {
		return 0
	}
	return len(r.Document.Signal)
}

// ConvertSample runs the full pipeline for one sample: port extraction,
// dump parsing, waveform encoding and optional reordering. Failures carry
// the stage they happened in.
func (a *App) ConvertSample(ctx context.Context, sample Sample) *Result {
	ctx, span := observability.Tracer.Start(ctx, "convert_sample")
	span.SetAttributes(attribute.String("sample", sample.Name))
	defer span.End()

	res := &Result{Sample: sample}

	module, err := a.extractPorts(ctx, sample)
	if err != nil {
		return res.fail("verilog", err)
	}

	data, err := a.parseDump(ctx, sample)
	if err != nil {
		return res.fail("vcd", err)
	}

	doc := a.encode(ctx, module, data)
	if len(doc.Signal) == 0 {
		return res.fail("waveform", errors.New("no value changes recorded"))
	}
	res.Document = doc

	if sample.OrderPath != "" {
		doc, err := a.realign(ctx, doc, sample)
		if err != nil {
			return res.fail("reorder", err)
		}
		res.Document = doc
		res.Reordered = true
	}

	return res
}

func (r *Result) fail(stage string, err error) *Result {
	observability.StageFailuresTotal.WithLabelValues(stage).Inc()
	r.Err = &StageError{Stage: stage, Err: err}
	return r
}

func (a *App) extractPorts(ctx context.Context, sample Sample) (*verilog.Module, error) {
	_, span := observability.Tracer.Start(ctx, "extract_ports")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("verilog").Observe(time.Since(start).Seconds())
	}()

	src, err := os.ReadFile(sample.VerilogPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", sample.VerilogPath, err)
	}
	return verilog.Parse(string(src))
}

func (a *App) parseDump(ctx context.Context, sample Sample) (*vcd.Data, error) {
	_, span := observability.Tracer.Start(ctx, "parse_dump")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("vcd").Observe(time.Since(start).Seconds())
	}()

	content, err := os.ReadFile(sample.VCDPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", sample.VCDPath, err)
	}

	data := vcd.Parse(string(content))
	if len(data.Signals) == 0 {
		return nil, fmt.Errorf("no signal declarations in %q", sample.VCDPath)
	}
	return data, nil
}

func (a *App) encode(ctx context.Context, module *verilog.Module, data *vcd.Data) *wavedrom.Document {
	_, span := observability.Tracer.Start(ctx, "encode_waveform")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("waveform").Observe(time.Since(start).Seconds())
	}()

	gen := wavedrom.NewGenerator(wavedrom.Options{
		MaxSignals:      a.cfg.Encoder.MaxSignals,
		MaxTimeSteps:    a.cfg.Encoder.MaxTimeSteps,
		IncludeInternal: a.cfg.Encoder.IncludeInternal,
		Order:           a.order(),
		IOPortNames:     module.PortNames(),
		Ports:           module.Ports,
		ExcludeGlobs:    a.excludeGlobs,
		Config:          map[string]any{"hscale": a.cfg.WaveDrom.HScale},
		Head:            map[string]any{"text": a.cfg.WaveDrom.HeadText, "tick": 0},
		Foot:            map[string]any{"text": a.cfg.WaveDrom.FootText, "tick": 0},
	})
	return gen.Generate(data)
}

func (a *App) realign(ctx context.Context, doc *wavedrom.Document, sample Sample) (*wavedrom.Document, error) {
	_, span := observability.Tracer.Start(ctx, "realign_signals")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.StageDuration.WithLabelValues("reorder").Observe(time.Since(start).Seconds())
	}()

	ref, err := reorder.LoadOrderFile(sample.OrderPath)
	if err != nil {
		return nil, fmt.Errorf("load order file %q: %w", sample.OrderPath, err)
	}
	if len(ref) == 0 {
		return doc, nil
	}
	return reorder.Reorder(doc, ref, a.cfg.Reorder.FilterToReference), nil
}

func (a *App) order() wavedrom.Order {
	switch a.cfg.Encoder.Order {
	case "vcd":
		return wavedrom.OrderVCD
	case "grouped":
		return wavedrom.OrderGrouped
	default:
		return wavedrom.OrderPort
	}
}
