package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pcsummary/internal/logger"
	"pcsummary/internal/metrics"
	"pcsummary/internal/report"
	"pcsummary/internal/store"
	"pcsummary/internal/summary"
	"pcsummary/internal/validate"
	"pcsummary/pkg/models"
)

type processOptions struct {
	*options
	metricsFile string
}

func newProcessCommand(opts *options) *cobra.Command {
	po := &processOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Summarize collected Policies and Alerts as tab separated sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return po.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&po.metricsFile, "metrics_file", "", "(Optional) Write summary counters as a Prometheus textfile")
	return cmd
}

func (po *processOptions) run(ctx context.Context) error {
	docs, err := po.openStore(ctx)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer docs.Close()

	policyData, err := loadDocument(ctx, docs, store.PolicyDocument(po.customer), "Policy", validate.Policies)
	if err != nil {
		return err
	}
	alertData, err := loadDocument(ctx, docs, store.AlertDocument(po.customer), "Alert", validate.Alerts)
	if err != nil {
		return err
	}

	s, err := summarize(policyData, alertData)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	logger.Infof("Processed %d policies and %d alerts for %s", len(s.Index.Policies), s.TotalAlerts, po.customer)

	if err := report.NewRenderer(po.stdout, po.timeRange().Label()).Render(s); err != nil {
		return &exitError{code: 1, err: err}
	}

	metricsFile := po.metricsFile
	if metricsFile == "" {
		metricsFile = po.cfg.PCSummary.Metrics.File
	}
	if metricsFile != "" {
		m := metrics.New(po.customer)
		m.Observe(s)
		if err := m.WriteTextfile(metricsFile); err != nil {
			logger.Warnf("Metrics not written: %v", err)
		} else {
			logger.Infof("Metrics written to %s", metricsFile)
		}
	}
	return nil
}

func loadDocument(ctx context.Context, docs store.Store, name, label string, kind validate.Kind) ([]byte, error) {
	data, err := docs.Load(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &exitError{code: 1, err: fmt.Errorf("%s file does not exist: %s", label, location(docs, name))}
	}
	if err != nil {
		return nil, &exitError{code: 1, err: err}
	}
	if err := validate.Document(kind, data); err != nil {
		return nil, &exitError{code: 1, err: fmt.Errorf("%s file %s: %w", label, location(docs, name), err)}
	}
	return data, nil
}

// summarize indexes policies and aggregates alerts. Nothing is returned
// unless both passes succeed.
func summarize(policyData, alertData []byte) (*summary.Summary, error) {
	var (
		policies []models.Policy
		alerts   []models.Alert
		err      error
	)
	if policies, err = summary.DecodePolicies(policyData); err != nil {
		return nil, err
	}
	if alerts, err = summary.DecodeAlerts(alertData); err != nil {
		return nil, err
	}

	ix, err := summary.IndexPolicies(policies)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Indexed %d policies referencing %d compliance standards", len(ix.Policies), len(ix.Standards))

	return summary.Aggregate(ix, alerts)
}
