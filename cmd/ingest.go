package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"ragrouter/src/config"
	"ragrouter/src/core/vectorstore"
	"ragrouter/src/fsutil"
	"ragrouter/src/log"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the HR, IT and Finance documents into the vector stores",
	Long: `The ingest command rebuilds the vector store of every domain from its
document folder. With --upload the local folders are first copied to the
MinIO bucket, so that rag.source=minio picks them up.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().Bool("upload", false, "upload the local data directory to MinIO before indexing")
}

func runIngest(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if upload, _ := cmd.Flags().GetBool("upload"); upload {
		if err := uploadDocuments(cmd.Context(), settings); err != nil {
			return err
		}
	}

	settings.RAG.Reindex = true
	app, err := newStoreManager(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.manager.SetupAllStores(cmd.Context()); err != nil {
		return fmt.Errorf("failed to index documents: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed stores: %v\n", app.manager.Names())
	return nil
}

func uploadDocuments(ctx context.Context, settings *config.Settings) error {
	svc, err := newMinioService(settings)
	if err != nil {
		return err
	}

	dataDir, bucket := settings.RAG.DataDir, settings.Minio.Bucket
	if err := svc.EnsureBucketExists(ctx, bucket); err != nil {
		return err
	}

	fs := fsutil.NewLocalFileStore()
	for _, d := range vectorstore.Domains {
		files, err := fs.ListFiles(filepath.Join(dataDir, d.Dir), ".txt")
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", d.Dir, err)
		}
		for _, path := range files {
			data, err := readFile(fs, path)
			if err != nil {
				return err
			}
			object := d.Dir + "/" + filepath.Base(path)
			if err := svc.PutObject(ctx, bucket, object, data); err != nil {
				return err
			}
			log.Info("Uploaded document", "bucket", bucket, "object", object)
		}
	}
	return nil
}

func readFile(fs fsutil.FileStore, path string) ([]byte, error) {
	r, err := fs.ReadFileAsStream(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
