package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/wunderfauks/receiptguard/internal/config"
	"github.com/wunderfauks/receiptguard/internal/forensic"
	"github.com/wunderfauks/receiptguard/internal/semantic"
	"github.com/wunderfauks/receiptguard/internal/storage"
)

// initStorage opens the local database and applies pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initValidator builds the semantic validator. Without an API key the
// pipeline runs on the conservative fallback assessment.
func initValidator() semantic.Validator {
	apiKey := viper.GetString("openai.api_key")
	if apiKey == "" {
		return semantic.Unavailable()
	}

	oracle, err := semantic.NewOpenAIOracle(semantic.Config{
		APIKey:  apiKey,
		Model:   viper.GetString("openai.model"),
		BaseURL: viper.GetString("openai.base_url"),
	})
	if err != nil {
		return semantic.Unavailable()
	}
	return semantic.NewAdapter(oracle)
}

// sidecarOCR satisfies the OCR contract for file-based CLI runs: the text
// for image.jpg is read from image.jpg.txt when present. Production
// deployments plug a real OCR service in here.
type sidecarOCR struct {
	paths map[string]string
}

func newSidecarOCR(imagePaths []string, images [][]byte) *sidecarOCR {
	ocr := &sidecarOCR{paths: make(map[string]string, len(imagePaths))}
	for i, path := range imagePaths {
		if i < len(images) {
			ocr.paths[contentKey(images[i])] = path
		}
	}
	return ocr
}

func (o *sidecarOCR) ExtractText(_ context.Context, image []byte) (string, error) {
	path, ok := o.paths[contentKey(image)]
	if !ok {
		return "", nil
	}

	text, err := os.ReadFile(path + ".txt")
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading OCR sidecar for %s: %w", path, err)
	}
	return strings.TrimSpace(string(text)), nil
}

func contentKey(data []byte) string {
	return forensic.ContentHash(data)
}
