package writer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
)

// salesTimestampType is the Arrow type for the sold_at column.
var salesTimestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// SalesSchema returns the Arrow schema for the sales dataset.
func SalesSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "txn_id", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "store_id", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "customer_id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "product_id", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "unit_price", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "total", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "sold_at", Type: salesTimestampType, Nullable: false},
	}, nil)
}

// ParquetWriter writes the dataset to a single Parquet file using
// Apache Arrow record batches.
type ParquetWriter struct {
	path string
	cfg  Config
}

// NewParquetWriter creates a Parquet format writer targeting path.
func NewParquetWriter(path string, cfg Config) *ParquetWriter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &ParquetWriter{path: path, cfg: cfg}
}

// Kind implements FormatWriter.
func (w *ParquetWriter) Kind() model.FormatKind {
	return model.FormatParquet
}

// Write implements FormatWriter.
func (w *ParquetWriter) Write(ctx context.Context, ds *model.Dataset) (*model.FormatArtifact, error) {
	start := time.Now()

	rows, err := WriteParquetFile(ctx, ds, w.path, w.cfg)
	if err != nil {
		return nil, berrors.WriteFailed(string(model.FormatParquet), err)
	}

	dur := time.Since(start)

	stat, err := os.Stat(w.path)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CodeWriteFlush, "failed to stat parquet artifact")
	}

	return &model.FormatArtifact{
		Kind:          model.FormatParquet,
		Path:          w.path,
		WriteDuration: dur,
		SizeBytes:     stat.Size(),
		Rows:          rows,
	}, nil
}

// WriteParquetFile serializes a dataset to a Parquet file at path,
// overwriting any existing file. It is also used by the generator to
// persist the canonical dataset artifact.
func WriteParquetFile(ctx context.Context, ds *model.Dataset, path string, cfg Config) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet file: %w", err)
	}

	var codec compress.Compression
	switch cfg.Compression {
	case CompressionSnappy:
		codec = compress.Codecs.Snappy
	case CompressionGzip:
		codec = compress.Codecs.Gzip
	case CompressionZstd:
		codec = compress.Codecs.Zstd
	case CompressionLZ4:
		codec = compress.Codecs.Lz4
	default:
		codec = compress.Codecs.Uncompressed
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(codec),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	schema := SalesSchema()
	fw, err := pqarrow.NewFileWriter(schema, file, writerProps, arrowProps)
	if err != nil {
		file.Close()
		return 0, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	alloc := memory.NewGoAllocator()
	var written int64

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}

	for off := 0; off < len(ds.Records); off += batchSize {
		select {
		case <-ctx.Done():
			fw.Close()
			file.Close()
			return written, ctx.Err()
		default:
		}

		end := off + batchSize
		if end > len(ds.Records) {
			end = len(ds.Records)
		}

		rec := buildRecord(alloc, schema, ds.Records[off:end])
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			file.Close()
			return written, fmt.Errorf("failed to write record batch: %w", err)
		}
		written += int64(end - off)
	}

	// An empty dataset still gets a valid file carrying the schema.
	if err := fw.Close(); err != nil {
		file.Close()
		return written, fmt.Errorf("failed to close parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("failed to close parquet file: %w", err)
	}

	return written, nil
}

// buildRecord converts a slice of sales records into one Arrow record.
func buildRecord(alloc memory.Allocator, schema *arrow.Schema, records []model.SalesRecord) arrow.Record {
	txnB := array.NewStringBuilder(alloc)
	storeB := array.NewInt32Builder(alloc)
	custB := array.NewInt64Builder(alloc)
	prodB := array.NewInt32Builder(alloc)
	qtyB := array.NewInt32Builder(alloc)
	priceB := array.NewFloat64Builder(alloc)
	totalB := array.NewFloat64Builder(alloc)
	soldB := array.NewTimestampBuilder(alloc, salesTimestampType)

	n := len(records)
	txnB.Reserve(n)
	storeB.Reserve(n)
	custB.Reserve(n)
	prodB.Reserve(n)
	qtyB.Reserve(n)
	priceB.Reserve(n)
	totalB.Reserve(n)
	soldB.Reserve(n)

	for i := range records {
		r := &records[i]
		txnB.Append(r.TxnID)
		storeB.Append(r.StoreID)
		custB.Append(r.CustomerID)
		prodB.Append(r.ProductID)
		qtyB.Append(r.Quantity)
		priceB.Append(r.UnitPrice)
		totalB.Append(r.Total)
		soldB.Append(arrow.Timestamp(r.SoldAt.UnixMicro()))
	}

	cols := []arrow.Array{
		txnB.NewArray(),
		storeB.NewArray(),
		custB.NewArray(),
		prodB.NewArray(),
		qtyB.NewArray(),
		priceB.NewArray(),
		totalB.NewArray(),
		soldB.NewArray(),
	}
	defer func() {
		for _, c := range cols {
			c.Release()
		}
	}()

	txnB.Release()
	storeB.Release()
	custB.Release()
	prodB.Release()
	qtyB.Release()
	priceB.Release()
	totalB.Release()
	soldB.Release()

	return array.NewRecord(schema, cols, int64(n))
}
