package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pcsummary/internal/logger"
	"pcsummary/internal/prisma"
	"pcsummary/internal/store"
)

type collectOptions struct {
	*options
	url          string
	accessKey    string
	secretKey    string
	cloudAccount string
}

func newCollectCommand(opts *options) *cobra.Command {
	co := &collectOptions{options: opts}
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Query the API and save Policies and Alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return co.run(cmd)
		},
	}
	cmd.Flags().StringVarP(&co.url, "url", "u", "", "(Required) Prisma Cloud API URL")
	cmd.Flags().StringVarP(&co.accessKey, "access_key", "a", "", "(Required) API Access Key")
	cmd.Flags().StringVarP(&co.secretKey, "secret_key", "s", "", "(Required) API Secret Key")
	cmd.Flags().StringVar(&co.cloudAccount, "cloud_account", "", "(Optional) Cloud Account ID to limit the Alert query")
	return cmd
}

// apiConfig merges flags over config file and environment values.
func (co *collectOptions) apiConfig() prisma.Config {
	api := co.cfg.PCSummary.API
	if co.url != "" {
		api.URL = co.url
	}
	if co.accessKey != "" {
		api.AccessKey = co.accessKey
	}
	if co.secretKey != "" {
		api.SecretKey = co.secretKey
	}
	return prisma.Config{
		URL:            api.URL,
		AccessKey:      api.AccessKey,
		SecretKey:      api.SecretKey,
		ConnectTimeout: api.ConnectTimeout,
		ReadTimeout:    api.ReadTimeout,
	}
}

// run reports user and API errors on stdout and returns nil.
func (co *collectOptions) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := co.stdout
	apiCfg := co.apiConfig()

	for _, req := range []struct{ flag, value string }{
		{"--url", apiCfg.URL},
		{"--access_key", apiCfg.AccessKey},
		{"--secret_key", apiCfg.SecretKey},
	} {
		if req.value == "" {
			fmt.Fprintf(out, "Error: '%s' is required with 'collect'\n", req.flag)
			return nil
		}
	}

	client, err := prisma.NewClient(apiCfg)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return nil
	}

	docs, err := co.openStore(ctx)
	if err != nil {
		return &exitError{code: 1, err: err}
	}
	defer docs.Close()

	logger.Infof("Collecting for customer %s from %s (access key %s)", co.customer, apiCfg.URL, logger.Mask(apiCfg.AccessKey))

	fmt.Fprintln(out, "Generating Prisma Cloud API Token")
	token, err := client.Login(ctx)
	if err != nil {
		logger.Errorf("Login failed: %v", err)
		fmt.Fprintf(out, "Error with API Login: %v\n", err)
		return nil
	}
	if co.debug {
		fmt.Fprintf(out, "\n%s\n\n", logger.Mask(token))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Querying Policies")
	policies, err := client.FetchPolicies(ctx)
	if err != nil {
		logger.Errorf("Policy query failed: %v", err)
		fmt.Fprintf(out, "Error with API: %v\n", err)
		return nil
	}
	name := store.PolicyDocument(co.customer)
	if err := docs.Save(ctx, name, policies); err != nil {
		return &exitError{code: 1, err: err}
	}
	fmt.Fprintf(out, "Results saved as: %s\n\n", location(docs, name))

	fmt.Fprintln(out, "Querying Alerts")
	alerts, err := client.FetchAlerts(ctx, prisma.AlertQuery{
		CloudAccountID: co.cloudAccount,
		TimeRange:      co.timeRange(),
	})
	if err != nil {
		logger.Errorf("Alert query failed: %v", err)
		fmt.Fprintf(out, "Error with API: %v\n", err)
		return nil
	}
	name = store.AlertDocument(co.customer)
	if err := docs.Save(ctx, name, alerts); err != nil {
		return &exitError{code: 1, err: err}
	}
	fmt.Fprintf(out, "Results saved as: %s\n\n", location(docs, name))

	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(out, "Run '%s process --customer_name %s' to process the collected data.\n", prog, co.customer)
	fmt.Fprintf(out, "To save the processed data to a file, redirect the above command by adding ' > %s-summary.tab'\n", co.customer)
	return nil
}
