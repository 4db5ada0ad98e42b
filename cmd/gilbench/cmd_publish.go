package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gilbench/gilbench/internal/models"
	"github.com/gilbench/gilbench/internal/publish"
)

var (
	publishSuite      string
	publishResultsDir string
	publishAccountURL string
	publishContainer  string
	publishBlobName   string
	publishDryRun     bool
)

// newUploader is swapped in tests.
var newUploader = func(accountURL string) (publish.Uploader, error) {
	return publish.NewAzureUploader(accountURL)
}

func newPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a results directory to Azure Blob Storage",
		Long: `Bundle every result JSON file in --results-dir, summary.json included,
into one tar.zst archive and upload it as a single blob.

Credentials come from the default Azure credential chain (environment,
workload identity, managed identity or an Azure CLI login).`,
		Args: cobra.NoArgs,
		RunE: publishCommandE,
	}

	cmd.Flags().StringVar(&publishSuite, "suite", string(models.SuiteMicro), "Benchmark suite: micro or concurrency")
	cmd.Flags().StringVar(&publishResultsDir, "results-dir", "", "Directory to publish (default: <results>/<suite>)")
	cmd.Flags().StringVar(&publishAccountURL, "account-url", "", "Storage account URL (default: publish.account_url)")
	cmd.Flags().StringVar(&publishContainer, "container", "", "Blob container (default: publish.container)")
	cmd.Flags().StringVar(&publishBlobName, "blob-name", "", "Blob name (default: <suite>/<UTC timestamp>.tar.zst)")
	cmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Build the archive but do not upload it")

	return cmd
}

func publishCommandE(cmd *cobra.Command, _ []string) error {
	suite, err := models.ParseSuite(publishSuite)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := publishResultsDir
	if dir == "" {
		dir = cfg.ResultsDirFor(suite)
	}
	accountURL := publishAccountURL
	if accountURL == "" {
		accountURL = cfg.Publish.AccountURL
	}
	container := publishContainer
	if container == "" {
		container = cfg.Publish.Container
	}
	blob := publishBlobName
	if blob == "" {
		blob = publish.BlobName(string(suite), time.Now())
	}

	data, names, err := publish.ArchiveBytes(dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Archived %d files from %s (%d bytes)\n", len(names), dir, len(data)) //nolint:errcheck

	if publishDryRun {
		fmt.Fprintf(out, "Dry run: would upload %s to container %s\n", blob, container) //nolint:errcheck
		return nil
	}
	if accountURL == "" {
		return fmt.Errorf("no storage account URL: pass --account-url or set publish.account_url")
	}

	uploader, err := newUploader(accountURL)
	if err != nil {
		return err
	}
	if err := uploader.Upload(cmd.Context(), container, blob, data); err != nil {
		return err
	}
	fmt.Fprintf(out, "Uploaded %s to container %s\n", blob, container) //nolint:errcheck
	return nil
}
