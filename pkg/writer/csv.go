package writer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
)

// csvHeader matches the Arrow schema column order.
var csvHeader = []string{
	"txn_id", "store_id", "customer_id", "product_id",
	"quantity", "unit_price", "total", "sold_at",
}

// CSVWriter writes the dataset as plain delimited text with a header
// row. Timestamps are RFC3339, prices carry two decimals.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a CSV format writer targeting path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Kind implements FormatWriter.
func (w *CSVWriter) Kind() model.FormatKind {
	return model.FormatCSV
}

// Write implements FormatWriter.
func (w *CSVWriter) Write(ctx context.Context, ds *model.Dataset) (*model.FormatArtifact, error) {
	start := time.Now()

	rows, err := w.writeFile(ctx, ds)
	if err != nil {
		return nil, berrors.WriteFailed(string(model.FormatCSV), err)
	}

	dur := time.Since(start)

	stat, err := os.Stat(w.path)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CodeWriteFlush, "failed to stat csv artifact")
	}

	return &model.FormatArtifact{
		Kind:          model.FormatCSV,
		Path:          w.path,
		WriteDuration: dur,
		SizeBytes:     stat.Size(),
		Rows:          rows,
	}, nil
}

func (w *CSVWriter) writeFile(ctx context.Context, ds *model.Dataset) (int64, error) {
	file, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("failed to create csv file: %w", err)
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(csvHeader); err != nil {
		file.Close()
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(csvHeader))
	var written int64

	for i := range ds.Records {
		if i%4096 == 0 {
			select {
			case <-ctx.Done():
				file.Close()
				return written, ctx.Err()
			default:
			}
		}

		r := &ds.Records[i]
		row[0] = r.TxnID
		row[1] = strconv.FormatInt(int64(r.StoreID), 10)
		row[2] = strconv.FormatInt(r.CustomerID, 10)
		row[3] = strconv.FormatInt(int64(r.ProductID), 10)
		row[4] = strconv.FormatInt(int64(r.Quantity), 10)
		row[5] = strconv.FormatFloat(r.UnitPrice, 'f', 2, 64)
		row[6] = strconv.FormatFloat(r.Total, 'f', 2, 64)
		row[7] = r.SoldAt.UTC().Format(time.RFC3339)

		if err := cw.Write(row); err != nil {
			file.Close()
			return written, fmt.Errorf("failed to write csv row %d: %w", i, err)
		}
		written++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close()
		return written, fmt.Errorf("csv flush failed: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close csv file: %w", err)
	}

	return written, nil
}
