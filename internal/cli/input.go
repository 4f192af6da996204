package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cad-exporter/internal/exporter/models"
)

// readRequest читает запрос выгрузки из файла или stdin ("-").
// Допускается и голый массив элементов.
func readRequest(cmd *cobra.Command, path string) (models.ExportRequest, error) {
	var req models.ExportRequest

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return req, fmt.Errorf("reading %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &req.Elements)
	} else {
		err = json.Unmarshal(trimmed, &req)
	}
	if err != nil {
		return req, fmt.Errorf("decoding %s: %w", path, err)
	}
	return req, nil
}

// writeOutput пишет результат в файл или, если путь пустой или "-", в stdout.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, err := fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return err
}
